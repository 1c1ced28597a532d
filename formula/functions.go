package formula

import (
	"github.com/shopspring/decimal"

	"vellum/grid"
)

func decimalFromInt(i int) decimal.Decimal { return decimal.NewFromInt(int64(i)) }

// Function is a built-in's dispatch entry. ZipMap is a registry flag only:
// the evaluator does not read it, and each Call does its own array handling
// (AND and OR carry the flag but aggregate over all their arguments).
type Function struct {
	Name   string
	ZipMap bool
	Call   func(ctx EvalContext, args []Value) Value
}

// Builtins is the name -> Function registry the evaluator dispatches
// through.
var Builtins = map[string]Function{}

func register(f Function) { Builtins[f.Name] = f }

func init() {
	registerMathFunctions()
	registerLogicalFunctions()
	registerTextFunctions()
	registerLookupFunctions()
}

// broadcastUnary applies fn to every scalar element of args[0] (an array
// broadcasts elementwise, a scalar applies once), used for zip-mapped
// single-argument text/logical functions.
func broadcastUnary(args []Value, fn func(grid.CellValue) grid.CellValue) Value {
	if len(args) == 0 {
		return ErrVal(grid.ErrValue, "missing argument")
	}
	return mapUnary(args[0], fn)
}

// flattenAll concatenates every argument's flattened scalar elements, for
// aggregate functions like SUM that accept any mix of scalars and ranges.
func flattenAll(args []Value) []grid.CellValue {
	var out []grid.CellValue
	for _, a := range args {
		out = append(out, a.Flatten()...)
	}
	return out
}
