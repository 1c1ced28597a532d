package formula

import (
	"github.com/shopspring/decimal"

	"vellum/grid"
)

func registerMathFunctions() {
	register(Function{Name: "SUM", Call: func(ctx EvalContext, args []Value) Value {
		sum := decimal.Zero
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			if d, ok := coerceNumber(cv); ok {
				sum = sum.Add(d)
			}
		}
		return Num(sum)
	}})

	register(Function{Name: "AVERAGE", Call: func(ctx EvalContext, args []Value) Value {
		sum := decimal.Zero
		count := 0
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			if cv.Kind == grid.ValueBlank {
				continue
			}
			if d, ok := coerceNumber(cv); ok {
				sum = sum.Add(d)
				count++
			}
		}
		if count == 0 {
			return ErrVal(grid.ErrDivZero, "AVERAGE of zero values")
		}
		return Num(sum.Div(decimal.NewFromInt(int64(count))))
	}})

	register(Function{Name: "MIN", Call: reduceNumbers(func(a, b decimal.Decimal) decimal.Decimal {
		if a.LessThan(b) {
			return a
		}
		return b
	})})

	register(Function{Name: "MAX", Call: reduceNumbers(func(a, b decimal.Decimal) decimal.Decimal {
		if a.GreaterThan(b) {
			return a
		}
		return b
	})})

	register(Function{Name: "PRODUCT", Call: func(ctx EvalContext, args []Value) Value {
		product := decimal.NewFromInt(1)
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			if d, ok := coerceNumber(cv); ok {
				product = product.Mul(d)
			}
		}
		return Num(product)
	}})

	register(Function{Name: "COUNT", Call: func(ctx EvalContext, args []Value) Value {
		var n int64
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueNumber {
				n++
			}
		}
		return NumFromInt(n)
	}})

	register(Function{Name: "COUNTA", Call: func(ctx EvalContext, args []Value) Value {
		var n int64
		for _, cv := range flattenAll(args) {
			if !cv.IsBlank() {
				n++
			}
		}
		return NumFromInt(n)
	}})
}

func reduceNumbers(pick func(a, b decimal.Decimal) decimal.Decimal) func(ctx EvalContext, args []Value) Value {
	return func(ctx EvalContext, args []Value) Value {
		var result decimal.Decimal
		found := false
		for _, cv := range flattenAll(args) {
			if cv.Kind == grid.ValueError {
				return Scalar(cv)
			}
			d, ok := coerceNumber(cv)
			if !ok || cv.Kind == grid.ValueBlank {
				continue
			}
			if !found {
				result, found = d, true
			} else {
				result = pick(result, d)
			}
		}
		if !found {
			return Num(decimal.Zero)
		}
		return Num(result)
	}
}
