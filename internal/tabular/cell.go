package tabular

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	KindAbsent CellKind = iota
	KindString
	KindNumber
	KindBool
)

// Cell is one spreadsheet cell with source-driven typing. A blank or missing
// cell is Absent, which is distinct from an empty string.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

// Absent returns the absent cell.
func Absent() Cell {
	return Cell{Kind: KindAbsent}
}

// String returns a string-valued cell.
func String(s string) Cell {
	return Cell{Kind: KindString, Str: s}
}

// Number returns a number-valued cell.
func Number(f float64) Cell {
	return Cell{Kind: KindNumber, Num: f}
}

// Bool returns a boolean-valued cell.
func Boolean(b bool) Cell {
	return Cell{Kind: KindBool, Bool: b}
}

// IsAbsent reports whether the cell holds no value.
func (c Cell) IsAbsent() bool {
	return c.Kind == KindAbsent
}

// Label coerces the cell to its string form, the way a chart axis label is
// rendered. Absent cells coerce to the empty string.
func (c Cell) Label() string {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	}
	return ""
}

// NumberValue coerces the cell to a number. Non-numeric strings and absent
// cells coerce to 0; booleans coerce to 1 or 0.
func (c Cell) NumberValue() float64 {
	switch c.Kind {
	case KindNumber:
		return c.Num
	case KindBool:
		if c.Bool {
			return 1
		}
		return 0
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64); err == nil {
			return f
		}
	}
	return 0
}

// MarshalJSON encodes the cell as the native JSON scalar it carries,
// with Absent encoded as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindString:
		return json.Marshal(c.Str)
	case KindNumber:
		return json.Marshal(c.Num)
	case KindBool:
		return json.Marshal(c.Bool)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a JSON scalar back into a typed cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*c = Absent()
	case string:
		*c = String(val)
	case float64:
		*c = Number(val)
	case bool:
		*c = Boolean(val)
	default:
		// Arrays/objects cannot appear in a parsed sheet; treat as absent.
		*c = Absent()
	}
	return nil
}

// cellFromRaw types a raw cell string the way the source typed it: blanks are
// absent, numeric text stays numeric, TRUE/FALSE stays boolean, everything
// else is text.
func cellFromRaw(s string) Cell {
	if s == "" {
		return Absent()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	switch s {
	case "TRUE", "true", "True":
		return Boolean(true)
	case "FALSE", "false", "False":
		return Boolean(false)
	}
	return String(s)
}
