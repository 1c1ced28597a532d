package formula

import (
	"github.com/shopspring/decimal"

	"vellum/geom"
	"vellum/grid"
)

// Expr is a parsed formula expression, evaluated directly against an
// EvalContext (a tree-walking interpreter, matching the teacher's
// direct-dispatch evaluator style rather than a separate AST/bytecode
// split).
type Expr interface {
	Eval(ctx EvalContext) Value
}

type NumberLit struct{ Value decimal.Decimal }

func (n NumberLit) Eval(ctx EvalContext) Value { return Num(n.Value) }

type StringLit struct{ Value string }

func (s StringLit) Eval(ctx EvalContext) Value { return Str(s.Value) }

type BoolLit struct{ Value bool }

func (b BoolLit) Eval(ctx EvalContext) Value { return Bool(b.Value) }

// RefNode is an unresolved A1 reference; resolution happens at Eval time
// since it requires the A1Context (table/sheet name lookups).
type RefNode struct{ Text string }

func (r RefNode) Eval(ctx EvalContext) Value {
	ref, err := geom.Parse(r.Text, ctx.A1())
	if err != nil {
		return ErrVal(grid.ErrRef, err.Error())
	}
	sheet := ctx.Sheet()
	if ref.IsTable {
		region, ok := ctx.A1().LookupTable(ref.Table.TableName)
		if !ok {
			return ErrVal(grid.ErrRef, "unknown table "+ref.Table.TableName)
		}
		rows := ctx.GetRange(region.Sheet, region.DataRect)
		return FromArray(rows)
	}
	rect := ref.Sheet.Rect()
	if rect.Width() == 1 && rect.Height() == 1 {
		return Scalar(ctx.GetCell(geom.SheetPosition{Sheet: sheet, Position: rect.Min}))
	}
	return FromArray(ctx.GetRange(sheet, rect))
}

type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryPercent
)

type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

func (u UnaryExpr) Eval(ctx EvalContext) Value {
	v := u.Operand.Eval(ctx)
	return mapUnary(v, func(cv grid.CellValue) grid.CellValue {
		d, ok := coerceNumber(cv)
		if !ok {
			return grid.NewError(grid.ErrValue, "expected number")
		}
		switch u.Op {
		case UnaryNeg:
			return grid.NewNumber(d.Neg())
		case UnaryPercent:
			return grid.NewNumber(d.Div(decimal.NewFromInt(100)))
		default:
			return cv
		}
	})
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpConcat
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

func (be BinaryExpr) Eval(ctx EvalContext) Value {
	left := be.Left.Eval(ctx)
	right := be.Right.Eval(ctx)
	op := be.Op
	return zipMap2(left, right, func(a, b grid.CellValue) grid.CellValue {
		return applyBinary(op, a, b)
	})
}

func applyBinary(op BinaryOp, a, b grid.CellValue) grid.CellValue {
	if a.Kind == grid.ValueError {
		return a
	}
	if b.Kind == grid.ValueError {
		return b
	}
	switch op {
	case OpConcat:
		return grid.NewText(a.Inspect() + b.Inspect())
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return compareValues(op, a, b)
	default:
		da, ok1 := coerceNumber(a)
		db, ok2 := coerceNumber(b)
		if !ok1 || !ok2 {
			return grid.NewError(grid.ErrValue, "expected number")
		}
		switch op {
		case OpAdd:
			return grid.NewNumber(da.Add(db))
		case OpSub:
			return grid.NewNumber(da.Sub(db))
		case OpMul:
			return grid.NewNumber(da.Mul(db))
		case OpDiv:
			if db.IsZero() {
				return grid.NewError(grid.ErrDivZero, "")
			}
			return grid.NewNumber(da.Div(db))
		case OpPow:
			return grid.NewNumber(da.Pow(db))
		default:
			return grid.NewError(grid.ErrValue, "unsupported operator")
		}
	}
}

func compareValues(op BinaryOp, a, b grid.CellValue) grid.CellValue {
	cmp := compareCellValues(a, b)
	switch op {
	case OpEq:
		return grid.NewBoolean(cmp == 0)
	case OpNeq:
		return grid.NewBoolean(cmp != 0)
	case OpLt:
		return grid.NewBoolean(cmp < 0)
	case OpLte:
		return grid.NewBoolean(cmp <= 0)
	case OpGt:
		return grid.NewBoolean(cmp > 0)
	case OpGte:
		return grid.NewBoolean(cmp >= 0)
	default:
		return grid.NewBoolean(false)
	}
}

func compareCellValues(a, b grid.CellValue) int {
	if a.Kind == grid.ValueNumber && b.Kind == grid.ValueNumber {
		return a.Number.Cmp(b.Number)
	}
	as, bs := a.Inspect(), b.Inspect()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func coerceNumber(v grid.CellValue) (decimal.Decimal, bool) {
	switch v.Kind {
	case grid.ValueNumber:
		return v.Number, true
	case grid.ValueBlank:
		return decimal.Zero, true
	case grid.ValueBoolean:
		if v.Boolean {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	default:
		return decimal.Decimal{}, false
	}
}

// zipMap2 broadcasts two Values elementwise: if both are arrays they must
// share a shape (spec testable property 6); a scalar operand is lifted to
// every position of the other's shape.
func zipMap2(a, b Value, fn func(a, b grid.CellValue) grid.CellValue) Value {
	aw, ah := a.Shape()
	bw, bh := b.Shape()
	if !a.IsArray && !b.IsArray {
		return Scalar(fn(a.Scalar, b.Scalar))
	}
	w, h := aw, ah
	if bw > w {
		w = bw
	}
	if bh > h {
		h = bh
	}
	out := make([][]grid.CellValue, h)
	for y := 0; y < h; y++ {
		out[y] = make([]grid.CellValue, w)
		for x := 0; x < w; x++ {
			out[y][x] = fn(a.At(x, y), b.At(x, y))
		}
	}
	return FromArray(out)
}

func mapUnary(v Value, fn func(grid.CellValue) grid.CellValue) Value {
	if !v.IsArray {
		return Scalar(fn(v.Scalar))
	}
	out := make([][]grid.CellValue, len(v.Array))
	for y, row := range v.Array {
		out[y] = make([]grid.CellValue, len(row))
		for x, cv := range row {
			out[y][x] = fn(cv)
		}
	}
	return FromArray(out)
}

// CallExpr is a built-in function invocation.
type CallExpr struct {
	Name string
	Args []Expr
}

func (c CallExpr) Eval(ctx EvalContext) Value {
	fn, ok := Builtins[c.Name]
	if !ok {
		return ErrVal(grid.ErrName, "unknown function "+c.Name)
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Eval(ctx)
	}
	return fn.Call(ctx, args)
}
