package formula

import (
	"testing"

	"github.com/shopspring/decimal"

	"vellum/geom"
	"vellum/grid"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeEvalContext backs a single sheet with a plain map of cell values, for
// evaluator tests that don't need the full controller/grid pipeline.
type fakeEvalContext struct {
	sheet  geom.SheetId
	pos    geom.Position
	cells  map[geom.Position]grid.CellValue
	tables map[string]geom.TableRegion
}

func newFakeCtx() *fakeEvalContext {
	return &fakeEvalContext{
		sheet: geom.NewSheetId(),
		pos:   geom.New(1, 1),
		cells: map[geom.Position]grid.CellValue{},
	}
}

func (c *fakeEvalContext) set(x, y int64, v grid.CellValue) { c.cells[geom.New(x, y)] = v }

func (c *fakeEvalContext) Sheet() geom.SheetId { return c.sheet }
func (c *fakeEvalContext) Pos() geom.Position  { return c.pos }
func (c *fakeEvalContext) A1() geom.A1Context  { return c }

func (c *fakeEvalContext) GetCell(sp geom.SheetPosition) grid.CellValue {
	return c.cells[sp.Position]
}

func (c *fakeEvalContext) GetRange(sheet geom.SheetId, rect geom.Rect) [][]grid.CellValue {
	h := rect.Height()
	w := rect.Width()
	out := make([][]grid.CellValue, h)
	for y := int64(0); y < h; y++ {
		out[y] = make([]grid.CellValue, w)
		for x := int64(0); x < w; x++ {
			out[y][x] = c.cells[geom.New(rect.Min.X+x, rect.Min.Y+y)]
		}
	}
	return out
}

func (c *fakeEvalContext) LookupTable(name string) (geom.TableRegion, bool) {
	r, ok := c.tables[name]
	return r, ok
}

func (c *fakeEvalContext) LookupSheet(name string) (geom.SheetId, bool) { return geom.SheetId{}, false }
func (c *fakeEvalContext) SheetName(id geom.SheetId) string             { return "" }

func evalNumber(t *testing.T, src string, ctx EvalContext) string {
	t.Helper()
	v, err := Eval(src, ctx)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", src, err)
	}
	return v.Scalar.Inspect()
}

func TestEvalArithmeticReferencesSpecScenario(t *testing.T) {
	// spec §8: A1=2, A2=3, B1 = "=A1+A2" evaluates to 5.
	ctx := newFakeCtx()
	ctx.set(1, 1, grid.NewNumber(mustDecimal("2")))
	ctx.set(1, 2, grid.NewNumber(mustDecimal("3")))
	if got := evalNumber(t, "A1+A2", ctx); got != "5" {
		t.Fatalf("A1+A2 = %s, want 5", got)
	}
}

func TestEvalOperatorPrecedence(t *testing.T) {
	ctx := newFakeCtx()
	if got := evalNumber(t, "2+3*4", ctx); got != "14" {
		t.Fatalf("2+3*4 = %s, want 14", got)
	}
	if got := evalNumber(t, "(2+3)*4", ctx); got != "20" {
		t.Fatalf("(2+3)*4 = %s, want 20", got)
	}
	if got := evalNumber(t, "2^3^2", ctx); got != "512" {
		t.Fatalf("2^3^2 = %s, want 512 (right-associative)", got)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	ctx := newFakeCtx()
	v, err := Eval("1/0", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar.Kind != grid.ValueError || v.Scalar.Err.Kind != grid.ErrDivZero {
		t.Fatalf("got %+v, want #DIV/0", v.Scalar)
	}
}

func TestEvalConcatAndComparison(t *testing.T) {
	ctx := newFakeCtx()
	if got := evalNumber(t, `"foo"&"bar"`, ctx); got != "foobar" {
		t.Fatalf(`"foo"&"bar" = %s, want foobar`, got)
	}
	v, err := Eval("1<2", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Scalar.Boolean {
		t.Fatalf("1<2 should be TRUE")
	}
}

func TestEvalZipMapArrayBroadcast(t *testing.T) {
	// spec testable property 6: array + scalar broadcasts elementwise, and
	// array + array of equal shape broadcasts pairwise.
	ctx := newFakeCtx()
	ctx.set(1, 1, grid.NewNumber(mustDecimal("1")))
	ctx.set(1, 2, grid.NewNumber(mustDecimal("2")))
	ctx.set(2, 1, grid.NewNumber(mustDecimal("3")))
	ctx.set(2, 2, grid.NewNumber(mustDecimal("4")))
	v, err := Eval("A1:B2+10", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsArray {
		t.Fatalf("expected array result")
	}
	want := [][]string{{"11", "13"}, {"12", "14"}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := v.Array[y][x].Inspect(); got != want[y][x] {
				t.Errorf("[%d][%d] = %s, want %s", y, x, got, want[y][x])
			}
		}
	}
}

func TestEvalSumAndAverageOverRange(t *testing.T) {
	ctx := newFakeCtx()
	ctx.set(1, 1, grid.NewNumber(mustDecimal("1")))
	ctx.set(1, 2, grid.NewNumber(mustDecimal("2")))
	ctx.set(1, 3, grid.NewNumber(mustDecimal("3")))
	if got := evalNumber(t, "SUM(A1:A3)", ctx); got != "6" {
		t.Fatalf("SUM = %s, want 6", got)
	}
	if got := evalNumber(t, "AVERAGE(A1:A3)", ctx); got != "2" {
		t.Fatalf("AVERAGE = %s, want 2", got)
	}
}

func TestEvalIfBranches(t *testing.T) {
	ctx := newFakeCtx()
	if got := evalNumber(t, `IF(1<2,"yes","no")`, ctx); got != "yes" {
		t.Fatalf("IF = %s, want yes", got)
	}
	if got := evalNumber(t, `IF(1>2,"yes","no")`, ctx); got != "no" {
		t.Fatalf("IF = %s, want no", got)
	}
}

func TestEvalVlookupExactAndRange(t *testing.T) {
	ctx := newFakeCtx()
	rows := [][2]string{{"1", "one"}, {"2", "two"}, {"3", "three"}}
	for i, r := range rows {
		ctx.set(1, int64(i+1), grid.NewNumber(mustDecimal(r[0])))
		ctx.set(2, int64(i+1), grid.NewText(r[1]))
	}
	if got := evalNumber(t, "VLOOKUP(2,A1:B3,2,FALSE)", ctx); got != "two" {
		t.Fatalf("exact VLOOKUP = %s, want two", got)
	}
	if got := evalNumber(t, "VLOOKUP(2.5,A1:B3,2)", ctx); got != "two" {
		t.Fatalf("range VLOOKUP = %s, want two", got)
	}
}

func TestEvalUnknownFunctionIsNameError(t *testing.T) {
	ctx := newFakeCtx()
	v, err := Eval("NOPE(1)", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar.Kind != grid.ValueError || v.Scalar.Err.Kind != grid.ErrName {
		t.Fatalf("got %+v, want #NAME", v.Scalar)
	}
}

func TestEvalErrorPropagatesThroughArithmetic(t *testing.T) {
	ctx := newFakeCtx()
	v, err := Eval("1/0+1", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar.Kind != grid.ValueError {
		t.Fatalf("expected error to propagate, got %+v", v.Scalar)
	}
}
