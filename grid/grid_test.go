package grid

import (
	"testing"

	"vellum/geom"
)

func TestSheetSetGetCellRoundTrip(t *testing.T) {
	s := NewSheet("Sheet1", "m")
	pos := geom.New(1, 1)

	prev := s.SetCell(pos, NewText("hello"))
	if !prev.IsBlank() {
		t.Fatalf("expected blank previous value")
	}
	if got := s.GetCell(pos); got.Kind != ValueText || got.Text != "hello" {
		t.Fatalf("got %+v", got)
	}

	prev = s.SetCell(pos, Blank)
	if prev.Text != "hello" {
		t.Fatalf("expected reverse value hello, got %+v", prev)
	}
	if got := s.GetCell(pos); !got.IsBlank() {
		t.Fatalf("expected blank after clearing, got %+v", got)
	}
	if _, ok := s.Columns[pos.X]; ok {
		t.Fatalf("expected empty column to be removed")
	}
}

func TestFormatMergeLayering(t *testing.T) {
	cell := Format{Bold: SetBool(true)}
	row := Format{Bold: SetBool(false), TextColor: SetString("red")}
	column := Format{TextColor: SetString("blue"), FillColor: SetString("yellow")}

	merged := cell.Merge(row).Merge(column)
	if !merged.Bold.Value {
		t.Fatalf("expected cell bold to win")
	}
	if merged.TextColor.Value != "red" {
		t.Fatalf("expected row text color to win over column, got %q", merged.TextColor.Value)
	}
	if merged.FillColor.Value != "yellow" {
		t.Fatalf("expected column fill color to apply, got %q", merged.FillColor.Value)
	}
}

func TestSheetEffectiveFormat(t *testing.T) {
	s := NewSheet("Sheet1", "m")
	pos := geom.New(2, 2)
	s.ColumnFormats[2] = Format{Bold: SetBool(true)}
	s.RowFormats[2] = Format{Italic: SetBool(true)}
	s.CellFormats.SetRect(geom.SinglePos(pos), Format{TextColor: SetString("green")})

	eff := s.EffectiveFormat(pos)
	if !eff.Bold.Value || !eff.Italic.Value || eff.TextColor.Value != "green" {
		t.Fatalf("got %+v", eff)
	}
}

func TestDataTableTrackedInTablesOrder(t *testing.T) {
	s := NewSheet("Sheet1", "m")
	a1, a2 := geom.New(1, 1), geom.New(10, 10)
	s.Tables.Insert(-1, a1, &DataTable{Name: "T1", Anchor: a1, Width: 2, Height: 2})
	s.Tables.Insert(-1, a2, &DataTable{Name: "T2", Anchor: a2, Width: 2, Height: 2})

	if s.Tables.IndexOf(a1) != 0 || s.Tables.IndexOf(a2) != 1 {
		t.Fatalf("unexpected order: %v", s.Tables.order)
	}
	dt, ok := s.Tables.Get(a1)
	if !ok || dt.Name != "T1" {
		t.Fatalf("got %+v, %v", dt, ok)
	}
}

func TestGridUniqueName(t *testing.T) {
	g := NewGrid()
	s1 := NewSheet("Sheet1", "m")
	g.AddSheet(s1)

	if got := g.UniqueName("Sheet2"); got != "Sheet2" {
		t.Fatalf("got %q", got)
	}
	if got := g.UniqueName("Sheet1"); got != "Sheet1 Copy" {
		t.Fatalf("got %q", got)
	}

	dup := NewSheet("Sheet1 Copy", "n")
	g.AddSheet(dup)
	if got := g.UniqueName("Sheet1"); got != "Sheet1 Copy 1" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyBetweenOrdersCorrectly(t *testing.T) {
	k1 := KeyBetween("", "")
	k2 := KeyBetween(k1, "")
	if !(k1 < k2) {
		t.Fatalf("expected k1 < k2, got %q, %q", k1, k2)
	}
	k3 := KeyBetween(k1, k2)
	if !(k1 < k3 && k3 < k2) {
		t.Fatalf("expected k1 < k3 < k2, got %q %q %q", k1, k3, k2)
	}
}

func TestGridLookupSheetAndTable(t *testing.T) {
	g := NewGrid()
	s := NewSheet("Data", "m")
	anchor := geom.New(1, 1)
	s.Tables.Insert(-1, anchor, &DataTable{
		Name: "Table1", Anchor: anchor, Width: 2, Height: 3,
		Columns: []TableColumn{{Name: "A", Visible: true}, {Name: "B", Visible: true}},
	})
	g.AddSheet(s)

	id, ok := g.LookupSheet("Data")
	if !ok || id != s.Id {
		t.Fatalf("got %v, %v", id, ok)
	}
	region, ok := g.LookupTable("Table1")
	if !ok || region.Sheet != s.Id || len(region.Columns) != 2 {
		t.Fatalf("got %+v, %v", region, ok)
	}
}

func TestValidationCheckNumberRange(t *testing.T) {
	v := NewValidation(geom.A1Selection{}, ValidationNumber)
	v.NumberOp = NumberRange
	v.NumberMin = mustDecimal("1")
	v.NumberMax = mustDecimal("10")

	if !v.Check(NewNumber(mustDecimal("5")), nil) {
		t.Fatalf("expected 5 to satisfy [1,10]")
	}
	if v.Check(NewNumber(mustDecimal("11")), nil) {
		t.Fatalf("expected 11 to violate [1,10]")
	}
}

func TestValidationCheckTextContains(t *testing.T) {
	v := NewValidation(geom.A1Selection{}, ValidationText)
	v.TextOp = TextContains
	v.TextValue = "oo"
	if !v.Check(NewText("foobar"), nil) {
		t.Fatalf("expected match")
	}
	if v.Check(NewText("abc"), nil) {
		t.Fatalf("expected no match")
	}
}
