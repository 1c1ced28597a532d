package formula

import (
	"vellum/geom"
	"vellum/grid"
)

// EvalContext is the bridge the evaluator uses to read the grid and record
// cell accesses, without formula depending on the controller package
// directly. Implementations live in the controller package.
type EvalContext interface {
	Sheet() geom.SheetId
	Pos() geom.Position
	A1() geom.A1Context
	// GetCell returns the value at sp, recording the access so the
	// controller can build its reverse dependency index.
	GetCell(sp geom.SheetPosition) grid.CellValue
	// GetRange returns every cell in rect on sheet, row-major, recording
	// an access for each cell it reads.
	GetRange(sheet geom.SheetId, rect geom.Rect) [][]grid.CellValue
}

// Eval parses and evaluates src (with any leading "=" already stripped)
// against ctx, returning a scalar or array Value.
func Eval(src string, ctx EvalContext) (Value, error) {
	expr, err := Parse(src)
	if err != nil {
		return ErrVal(grid.ErrParse, err.Error()), err
	}
	return expr.Eval(ctx), nil
}
