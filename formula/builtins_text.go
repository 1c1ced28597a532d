package formula

import (
	"strings"

	"vellum/grid"
)

func registerTextFunctions() {
	register(Function{Name: "CONCAT", Call: func(ctx EvalContext, args []Value) Value {
		var b strings.Builder
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			b.WriteString(cv.Inspect())
		}
		return Str(b.String())
	}})

	register(Function{Name: "LEN", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		return broadcastUnary(args, func(cv grid.CellValue) grid.CellValue {
			if cv.Kind == grid.ValueError {
				return cv
			}
			return grid.NewNumber(decimalFromInt(len(cv.Inspect())))
		})
	}})

	register(Function{Name: "UPPER", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		return broadcastUnary(args, func(cv grid.CellValue) grid.CellValue {
			if cv.Kind == grid.ValueError {
				return cv
			}
			return grid.NewText(strings.ToUpper(cv.Inspect()))
		})
	}})

	register(Function{Name: "LOWER", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		return broadcastUnary(args, func(cv grid.CellValue) grid.CellValue {
			if cv.Kind == grid.ValueError {
				return cv
			}
			return grid.NewText(strings.ToLower(cv.Inspect()))
		})
	}})

	register(Function{Name: "TRIM", ZipMap: true, Call: func(ctx EvalContext, args []Value) Value {
		return broadcastUnary(args, func(cv grid.CellValue) grid.CellValue {
			if cv.Kind == grid.ValueError {
				return cv
			}
			return grid.NewText(strings.TrimSpace(cv.Inspect()))
		})
	}})
}
