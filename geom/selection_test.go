package geom

import "testing"

func rectRange(x0, y0, x1, y1 int64) CellRefRange {
	r := NewRect(x0, y0, x1, y1)
	return CellRefRange{Sheet: SheetRange{
		Kind:  RangeRect,
		Start: RefEnd{Col: r.Min.X, Row: r.Min.Y},
		End:   RefEnd{Col: r.Max.X, Row: r.Max.Y},
	}}
}

func TestInsertThenDeleteColumnIsRoundTrip(t *testing.T) {
	sheet := NewSheetId()
	orig := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(2, 2, 5, 5)}}

	sel := orig
	sel.InsertColumn(3)
	sel.DeleteColumn(3)

	if len(sel.Ranges) != 1 || sel.Ranges[0] != orig.Ranges[0] {
		t.Fatalf("round trip failed: got %+v, want %+v", sel.Ranges, orig.Ranges)
	}
}

func TestInsertThenDeleteColumnConsumesExactColumn(t *testing.T) {
	sheet := NewSheetId()
	// a single-column range sitting exactly where the insert lands
	sel := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(3, 1, 3, 10)}}
	sel.InsertColumn(3)
	if len(sel.Ranges) != 1 {
		t.Fatalf("insert should not drop the range, got %+v", sel.Ranges)
	}
	if sel.Ranges[0].Sheet.Start.Col != 4 {
		t.Fatalf("expected shift to col 4, got %+v", sel.Ranges[0].Sheet)
	}

	sel.DeleteColumn(3)
	if len(sel.Ranges) != 1 || sel.Ranges[0].Sheet.Start.Col != 3 {
		t.Fatalf("expected restored range at col 3, got %+v", sel.Ranges)
	}
}

func TestDeleteColumnDropsRangeEntirelyConsumed(t *testing.T) {
	sheet := NewSheetId()
	sel := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(3, 1, 3, 10)}}
	sel.DeleteColumn(3)
	if len(sel.Ranges) != 0 {
		t.Fatalf("expected range to be dropped, got %+v", sel.Ranges)
	}
}

func TestInsertRowShiftsEndpointsAtOrAfterIndex(t *testing.T) {
	sheet := NewSheetId()
	sel := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(1, 5, 1, 5)}}
	sel.InsertRow(5)
	if sel.Ranges[0].Sheet.Start.Row != 6 {
		t.Fatalf("got %+v", sel.Ranges[0].Sheet)
	}
}

func TestInsertColumnLeavesEarlierRangesUntouched(t *testing.T) {
	sheet := NewSheetId()
	sel := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(1, 1, 2, 2)}}
	changed := sel.InsertColumn(5)
	if changed {
		t.Fatalf("expected no change for range entirely before the insert point")
	}
	if sel.Ranges[0] != rectRange(1, 1, 2, 2) {
		t.Fatalf("got %+v", sel.Ranges[0])
	}
}

func TestSelectionOverlapsAndIntersection(t *testing.T) {
	sheet := NewSheetId()
	a := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(1, 1, 5, 5)}}
	b := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(3, 3, 8, 8)}}
	if !a.Overlaps(b) {
		t.Fatalf("expected overlap")
	}
	ix, ok := a.Intersection(b)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if ix.Ranges[0].Sheet.Rect() != NewRect(3, 3, 5, 5) {
		t.Fatalf("got %+v", ix.Ranges[0].Sheet.Rect())
	}
}

func TestSaturatingAdjustClampsToBounds(t *testing.T) {
	sheet := NewSheetId()
	sel := A1Selection{Sheet: sheet, Ranges: []CellRefRange{rectRange(1, 1, 3, 3)}}
	out := sel.SaturatingAdjust(true, 1, -5)
	if out == nil {
		t.Fatalf("expected a surviving selection")
	}
	if out.Ranges[0].Sheet.Start.Col != 1 {
		t.Fatalf("expected clamp to 1, got %+v", out.Ranges[0].Sheet)
	}
}

func TestParseSelectionFormatRoundTrip(t *testing.T) {
	sheet := NewSheetId()
	sel, err := ParseSelection("A1,B2:C3", sheet, New(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Format(), "A1,B2:C3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
