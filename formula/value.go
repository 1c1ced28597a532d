package formula

import (
	"github.com/shopspring/decimal"

	"vellum/grid"
)

// Value is the evaluator's working representation: either a scalar
// grid.CellValue or a 2-D array of them. Array results become the output of
// the DataTable anchored at the evaluating cell's position.
type Value struct {
	IsArray bool
	Scalar  grid.CellValue
	Array   [][]grid.CellValue
}

func Scalar(v grid.CellValue) Value { return Value{Scalar: v} }

func Num(d decimal.Decimal) Value { return Scalar(grid.NewNumber(d)) }

func NumFromInt(i int64) Value { return Num(decimal.NewFromInt(i)) }

func Str(s string) Value { return Scalar(grid.NewText(s)) }

func Bool(b bool) Value { return Scalar(grid.NewBoolean(b)) }

func ErrVal(kind grid.ErrorKind, msg string) Value { return Scalar(grid.NewError(kind, msg)) }

func FromArray(rows [][]grid.CellValue) Value { return Value{IsArray: true, Array: rows} }

// Shape returns the array's (width, height), or (1,1) for a scalar.
func (v Value) Shape() (int, int) {
	if !v.IsArray {
		return 1, 1
	}
	h := len(v.Array)
	if h == 0 {
		return 0, 0
	}
	return len(v.Array[0]), h
}

// At returns the element at (col,row), broadcasting a scalar to every
// position.
func (v Value) At(col, row int) grid.CellValue {
	if !v.IsArray {
		return v.Scalar
	}
	if row < 0 || row >= len(v.Array) || col < 0 || col >= len(v.Array[row]) {
		return grid.Blank
	}
	return v.Array[row][col]
}

// IsError reports whether the value (or, for an array, its first element)
// is an error — used to short-circuit propagation.
func (v Value) IsError() bool {
	return v.At(0, 0).Kind == grid.ValueError
}

// AsNumber coerces a scalar value to a decimal, defaulting blank to zero.
func (v Value) AsNumber() (decimal.Decimal, bool) {
	s := v.Scalar
	switch s.Kind {
	case grid.ValueNumber:
		return s.Number, true
	case grid.ValueBlank:
		return decimal.Zero, true
	case grid.ValueBoolean:
		if s.Boolean {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	default:
		return decimal.Decimal{}, false
	}
}

// Flatten returns every scalar element in row-major order (for aggregate
// functions like SUM that accept ranges).
func (v Value) Flatten() []grid.CellValue {
	if !v.IsArray {
		return []grid.CellValue{v.Scalar}
	}
	var out []grid.CellValue
	for _, row := range v.Array {
		out = append(out, row...)
	}
	return out
}
