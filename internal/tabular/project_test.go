package tabular_test

import (
	"testing"

	"github.com/sheetcharts/sheetcharts/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable() *tabular.Table {
	return &tabular.Table{
		SheetName: "Sheet1",
		Headers:   []string{"Month", "Revenue", "Region"},
		Rows: [][]tabular.Cell{
			{tabular.String("Jan"), tabular.Number(100), tabular.String("North")},
			{tabular.String("Feb"), tabular.Number(200), tabular.String("South")},
			{tabular.String("Jan"), tabular.Number(50), tabular.String("South")},
		},
	}
}

func TestProject(t *testing.T) {
	points, err := tabular.Project(salesTable(), "Month", "Revenue")
	require.NoError(t, err)

	// Row order preserved, repeated labels kept, never aggregated.
	assert.Equal(t, []tabular.Point{
		{Label: "Jan", Value: 100},
		{Label: "Feb", Value: 200},
		{Label: "Jan", Value: 50},
	}, points)
}

func TestProjectUnknownColumn(t *testing.T) {
	_, err := tabular.Project(salesTable(), "Month", "Profit")
	assert.ErrorIs(t, err, tabular.ErrUnknownColumn)

	_, err = tabular.Project(salesTable(), "month", "Revenue")
	assert.ErrorIs(t, err, tabular.ErrUnknownColumn, "column match is case sensitive")
}

func TestProjectSkipsAbsentCells(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"X", "Y"},
		Rows: [][]tabular.Cell{
			{tabular.Absent(), tabular.Number(10)},
			{tabular.String("a"), tabular.Absent()},
			{tabular.String("b")},
			{tabular.String("1"), tabular.Number(2)},
		},
	}

	points, err := tabular.Project(table, "X", "Y")
	require.NoError(t, err)

	// Only the fully-populated row survives; short rows are skipped whole.
	assert.Equal(t, []tabular.Point{{Label: "1", Value: 2}}, points)
}

func TestProjectCoercions(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"Cat", "Val"},
		Rows: [][]tabular.Cell{
			{tabular.Number(3.5), tabular.String("12")},
			{tabular.Boolean(true), tabular.String("n/a")},
			{tabular.String("zero"), tabular.Boolean(false)},
		},
	}

	points, err := tabular.Project(table, "Cat", "Val")
	require.NoError(t, err)

	assert.Equal(t, []tabular.Point{
		{Label: "3.5", Value: 12},
		{Label: "true", Value: 0},
		{Label: "zero", Value: 0},
	}, points)
}

func TestProjectDuplicateHeaderUsesFirstMatch(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"Name", "Name", "Score"},
		Rows: [][]tabular.Cell{
			{tabular.String("first"), tabular.String("second"), tabular.Number(9)},
		},
	}

	points, err := tabular.Project(table, "Name", "Score")
	require.NoError(t, err)
	assert.Equal(t, []tabular.Point{{Label: "first", Value: 9}}, points)
}

func TestProjectSameColumnTwice(t *testing.T) {
	table := &tabular.Table{
		Headers: []string{"N"},
		Rows:    [][]tabular.Cell{{tabular.Number(4)}},
	}

	points, err := tabular.Project(table, "N", "N")
	require.NoError(t, err)
	assert.Equal(t, []tabular.Point{{Label: "4", Value: 4}}, points)
}
