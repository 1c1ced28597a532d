package formula

import "vellum/grid"

func registerLogicalFunctions() {
	register(Function{Name: "IF", Call: func(ctx EvalContext, args []Value) Value {
		if len(args) < 2 {
			return ErrVal(grid.ErrValue, "IF requires at least 2 arguments")
		}
		cond := args[0]
		thenV := args[1]
		elseV := Scalar(grid.Blank)
		if len(args) > 2 {
			elseV = args[2]
		}
		return zipMap3(cond, thenV, elseV, func(c, t, e grid.CellValue) grid.CellValue {
			if isTruthy(c) {
				return t
			}
			return e
		})
	}})

	register(Function{Name: "AND", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			if !isTruthy(cv) {
				return Bool(false)
			}
		}
		return Bool(true)
	}})

	register(Function{Name: "OR", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			if isTruthy(cv) {
				return Bool(true)
			}
		}
		return Bool(false)
	}})

	register(Function{Name: "NOT", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		return broadcastUnary(args, func(cv grid.CellValue) grid.CellValue {
			if cv.Kind == grid.ValueError {
				return cv
			}
			return grid.NewBoolean(!isTruthy(cv))
		})
	}})
}

func isTruthy(v grid.CellValue) bool {
	switch v.Kind {
	case grid.ValueBoolean:
		return v.Boolean
	case grid.ValueNumber:
		return !v.Number.IsZero()
	case grid.ValueText:
		return v.Text != ""
	default:
		return false
	}
}

// zipMap3 broadcasts three values elementwise, the same way zipMap2 does
// for two (spec §4.4 zip-map: array arguments broadcast to a common shape,
// scalars are lifted).
func zipMap3(a, b, c Value, fn func(a, b, c grid.CellValue) grid.CellValue) Value {
	if !a.IsArray && !b.IsArray && !c.IsArray {
		return Scalar(fn(a.Scalar, b.Scalar, c.Scalar))
	}
	aw, ah := a.Shape()
	bw, bh := b.Shape()
	cw, ch := c.Shape()
	w, h := aw, ah
	if bw > w {
		w = bw
	}
	if cw > w {
		w = cw
	}
	if bh > h {
		h = bh
	}
	if ch > h {
		h = ch
	}
	out := make([][]grid.CellValue, h)
	for y := 0; y < h; y++ {
		out[y] = make([]grid.CellValue, w)
		for x := 0; x < w; x++ {
			out[y][x] = fn(a.At(x, y), b.At(x, y), c.At(x, y))
		}
	}
	return FromArray(out)
}
