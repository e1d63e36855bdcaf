package tabular_test

import (
	"testing"

	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildXLSX creates an in-memory workbook from raw rows.
func buildXLSX(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	data := buildXLSX(t, "Sales", [][]interface{}{
		{"Month", "Revenue", "Active"},
		{"Jan", 100.5, true},
		{"Feb", 200, false},
	})

	table, err := tabular.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "Sales", table.SheetName)
	assert.Equal(t, []string{"Month", "Revenue", "Active"}, table.Headers)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, tabular.String("Jan"), table.Rows[0][0])
	assert.Equal(t, tabular.Number(100.5), table.Rows[0][1])
	assert.Equal(t, tabular.Boolean(true), table.Rows[0][2])
	assert.Equal(t, tabular.Number(200), table.Rows[1][1])
}

func TestParseXLSXFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	row := []interface{}{"OnlyHere"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"First"}))
	require.NoError(t, f.SetSheetRow("Second", "A1", &row))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, parseErr := tabular.Parse(buf.Bytes())
	require.NoError(t, parseErr)
	assert.Equal(t, "Sheet1", table.SheetName)
	assert.Equal(t, []string{"First"}, table.Headers)
}

func TestParseXLSXEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, parseErr := tabular.Parse(buf.Bytes())
	require.NoError(t, parseErr)
	assert.True(t, table.Empty())
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestParseCSV(t *testing.T) {
	data := []byte("Month,Revenue\nJan,100\nFeb,-3.5\n")

	table, err := tabular.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", table.SheetName)
	assert.Equal(t, []string{"Month", "Revenue"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, tabular.Number(100), table.Rows[0][1])
	assert.Equal(t, tabular.Number(-3.5), table.Rows[1][1])
}

func TestParseCSVRaggedRows(t *testing.T) {
	// Rows are kept at their source width, never padded to the header row.
	data := []byte("A,B,C\n1,2\nx,y,z,extra\n")

	table, err := tabular.Parse(data)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
}

func TestParseCSVBlankCellIsAbsent(t *testing.T) {
	data := []byte("A,B\n,5\n")

	table, err := tabular.Parse(data)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0][0].IsAbsent())
	assert.Equal(t, tabular.Number(5), table.Rows[0][1])
}

func TestParseCSVMalformed(t *testing.T) {
	data := []byte("A,B\n\"unterminated\n")

	_, err := tabular.Parse(data)
	var parseErr *tabular.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseRejectsCorruptContainer(t *testing.T) {
	cases := map[string][]byte{
		"empty":         nil,
		"zip junk":      {0x50, 0x4b, 0x03, 0x04, 0xde, 0xad, 0xbe, 0xef},
		"binary noise":  {0xff, 0xfe, 0x00, 0x01, 0x02},
		"ole junk":      {0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1, 0x00},
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tabular.Parse(data)
			var parseErr *tabular.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseHeadersKeptVerbatim(t *testing.T) {
	// Duplicate and blank headers are preserved as-is.
	data := []byte("Name,,Name\n1,2,3\n")

	table, err := tabular.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "", "Name"}, table.Headers)
}
