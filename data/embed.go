package data

import "embed"

// Samples holds bundled example spreadsheets used by the e2e tests and
// local demos.
//
//go:embed samples/*.csv
var Samples embed.FS

// SampleCSV returns the bundled sales spreadsheet.
func SampleCSV() []byte {
	b, err := Samples.ReadFile("samples/sales.csv")
	if err != nil {
		// The file is compiled in, a read failure is a build defect.
		panic(err)
	}
	return b
}
