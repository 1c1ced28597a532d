package geom

import "testing"

type fakeCtx struct {
	tables map[string]TableRegion
	sheets map[string]SheetId
}

func (c fakeCtx) LookupTable(name string) (TableRegion, bool) {
	r, ok := c.tables[name]
	return r, ok
}

func (c fakeCtx) LookupSheet(name string) (SheetId, bool) {
	id, ok := c.sheets[name]
	return id, ok
}

func (c fakeCtx) SheetName(id SheetId) string { return "" }

func TestParseCellRef(t *testing.T) {
	ref, err := Parse("B3", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Sheet.Kind != RangeCell || ref.Sheet.Start.Col != 2 || ref.Sheet.Start.Row != 3 {
		t.Fatalf("got %+v", ref)
	}
	if got := ref.Format(); got != "B3" {
		t.Errorf("Format() = %q, want B3", got)
	}
}

func TestParseRectRange(t *testing.T) {
	ref, err := Parse("A1:C5", nil)
	if err != nil {
		t.Fatal(err)
	}
	rect := ref.Sheet.Rect()
	if rect != NewRect(1, 1, 3, 5) {
		t.Fatalf("got %+v", rect)
	}
	if got := ref.Format(); got != "A1:C5" {
		t.Errorf("Format() = %q", got)
	}
}

func TestParseFullColumnRange(t *testing.T) {
	ref, err := Parse("A:C", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Sheet.Kind != RangeFullColumns {
		t.Fatalf("want RangeFullColumns, got %v", ref.Sheet.Kind)
	}
	rect := ref.Sheet.Rect()
	if rect.Min.Y != 1 || rect.Max.Y != Infinity {
		t.Fatalf("got %+v", rect)
	}
	if got := ref.Format(); got != "A:C" {
		t.Errorf("Format() = %q", got)
	}
}

func TestParseFullRowRange(t *testing.T) {
	ref, err := Parse("2:4", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Sheet.Kind != RangeFullRows {
		t.Fatalf("want RangeFullRows, got %v", ref.Sheet.Kind)
	}
	if got := ref.Format(); got != "2:4" {
		t.Errorf("Format() = %q", got)
	}
}

func TestParseWholeSheet(t *testing.T) {
	ref, err := Parse("*", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Sheet.Kind != RangeWholeSheet {
		t.Fatalf("got %v", ref.Sheet.Kind)
	}
	if ref.Sheet.Rect() != WholeSheet() {
		t.Fatalf("got %+v", ref.Sheet.Rect())
	}
}

func TestParseAbsoluteMarkers(t *testing.T) {
	ref, err := Parse("$A$1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ref.Sheet.Start.ColAbs || !ref.Sheet.Start.RowAbs {
		t.Fatalf("expected both markers absolute, got %+v", ref.Sheet.Start)
	}
	if got := ref.Format(); got != "$A$1" {
		t.Errorf("Format() = %q", got)
	}
}

func TestParseTableRef(t *testing.T) {
	ctx := fakeCtx{tables: map[string]TableRegion{
		"Table1": {DataRect: NewRect(1, 2, 3, 10)},
	}}
	ref, err := Parse("Table1[Col1]", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ref.IsTable || ref.Table.TableName != "Table1" || ref.Table.ColStart != "Col1" {
		t.Fatalf("got %+v", ref.Table)
	}
}

func TestParseTableRefSelectors(t *testing.T) {
	ctx := fakeCtx{tables: map[string]TableRegion{"T": {}}}
	ref, err := Parse("T[#Headers]", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ref.Table.Headers || ref.Table.Data {
		t.Fatalf("got %+v", ref.Table)
	}
}

func TestParseUnknownTableFallsBackToSheetRange(t *testing.T) {
	// "Foo[Bar]" isn't a known table and isn't a valid sheet range either, so
	// this must fail rather than silently succeed as a cell reference.
	ctx := fakeCtx{tables: map[string]TableRegion{}}
	if _, err := Parse("Foo[Bar]", ctx); err == nil {
		t.Fatalf("expected error for unknown table reference")
	}
}

func TestParseInvalidRanges(t *testing.T) {
	for _, s := range []string{"", "1A", "$", "A1:"} {
		if _, err := Parse(s, nil); err == nil {
			t.Errorf("Parse(%q) expected error", s)
		}
	}
}
