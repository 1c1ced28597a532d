package formula

import "vellum/grid"

// registerLookupFunctions implements the lookup family described in
// SPEC_FULL.md §4.4, stubbed to VLOOKUP's exact-match and range-match
// cases.
func registerLookupFunctions() {
	register(Function{Name: "VLOOKUP", Call: func(ctx EvalContext, args []Value) Value {
		if len(args) < 3 {
			return ErrVal(grid.ErrValue, "VLOOKUP requires at least 3 arguments")
		}
		lookup := args[0].Scalar
		table := args[1]
		colIdx, ok := args[2].AsNumber()
		if !ok {
			return ErrVal(grid.ErrValue, "VLOOKUP column index must be a number")
		}
		col := int(colIdx.IntPart()) - 1
		rangeLookup := true
		if len(args) > 3 {
			rangeLookup = isTruthy(args[3].Scalar)
		}
		if !table.IsArray {
			return ErrVal(grid.ErrRef, "VLOOKUP table_array must be a range")
		}
		w, h := table.Shape()
		if col < 0 || col >= w {
			return ErrVal(grid.ErrRef, "VLOOKUP column index out of range")
		}

		if rangeLookup {
			var best *int
			for row := 0; row < h; row++ {
				key := table.At(0, row)
				if compareCellValues(key, lookup) <= 0 {
					r := row
					best = &r
				} else {
					break
				}
			}
			if best == nil {
				return ErrVal(grid.ErrNotAvailable, "")
			}
			return Scalar(table.At(col, *best))
		}

		for row := 0; row < h; row++ {
			if compareCellValues(table.At(0, row), lookup) == 0 {
				return Scalar(table.At(col, row))
			}
		}
		return ErrVal(grid.ErrNotAvailable, "")
	}})
}
