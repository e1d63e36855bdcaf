package tabular

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn is returned when a projection selector does not match any
// header of the table.
var ErrUnknownColumn = errors.New("unknown column")

// Point is one (label, value) pair of a projected series, ready to feed a
// chart renderer.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Project derives a (label, value) series from a table by selecting a category
// column and a value column by header name. Rows where either selected cell is
// absent are skipped entirely. Row order is preserved and repeated labels are
// kept as separate points; no aggregation is performed.
func Project(t *Table, categoryColumn, valueColumn string) ([]Point, error) {
	catIdx := headerIndex(t.Headers, categoryColumn)
	if catIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, categoryColumn)
	}
	valIdx := headerIndex(t.Headers, valueColumn)
	if valIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, valueColumn)
	}

	points := make([]Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		if catIdx >= len(row) || valIdx >= len(row) {
			continue
		}
		cat, val := row[catIdx], row[valIdx]
		if cat.IsAbsent() || val.IsAbsent() {
			continue
		}
		points = append(points, Point{
			Label: cat.Label(),
			Value: val.NumberValue(),
		})
	}

	return points, nil
}

// headerIndex resolves a column selector to its first positional match.
func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
