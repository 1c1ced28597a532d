package geom

import "strings"

// A1Selection is a cursor plus an ordered list of ranges, all scoped to one
// sheet.
type A1Selection struct {
	Sheet  SheetId
	Cursor Position
	Ranges []CellRefRange
}

// ParseSelection parses a comma-separated list of ranges into a selection.
func ParseSelection(s string, sheet SheetId, cursor Position, ctx A1Context) (A1Selection, error) {
	sel := A1Selection{Sheet: sheet, Cursor: cursor}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rng, err := Parse(part, ctx)
		if err != nil {
			return A1Selection{}, err
		}
		sel.Ranges = append(sel.Ranges, rng)
	}
	return sel, nil
}

// Format renders the selection back to its comma-separated A1 textual form.
func (s A1Selection) Format() string {
	parts := make([]string, len(s.Ranges))
	for i, r := range s.Ranges {
		parts[i] = r.Format()
	}
	return strings.Join(parts, ",")
}

// Contains reports whether pos falls within any range of the selection on
// its sheet (table-typed ranges are checked against their resolved data
// rectangle via ctx; pass a nil ctx to skip table ranges).
func (s A1Selection) Contains(sheet SheetId, pos Position, ctx A1Context) bool {
	if s.Sheet != sheet {
		return false
	}
	for _, r := range s.Ranges {
		if r.IsTable {
			if ctx == nil {
				continue
			}
			if region, ok := ctx.LookupTable(r.Table.TableName); ok && region.Sheet == sheet && region.DataRect.Contains(pos) {
				return true
			}
			continue
		}
		if r.Sheet.Rect().Contains(pos) {
			return true
		}
	}
	return false
}

// Overlaps reports whether any range in s intersects any range in other.
func (s A1Selection) Overlaps(other A1Selection) bool {
	if s.Sheet != other.Sheet {
		return false
	}
	for _, a := range s.Ranges {
		if a.IsTable {
			continue
		}
		ra := a.Sheet.Rect()
		for _, b := range other.Ranges {
			if b.IsTable {
				continue
			}
			if ra.Intersects(b.Sheet.Rect()) {
				return true
			}
		}
	}
	return false
}

// Intersection computes the componentwise intersection of matching sheet
// ranges. The result's cursor is chosen, in order: the original cursor if it
// lies inside the result; otherwise other's cursor if inside; otherwise the
// last endpoint of the result; otherwise the original cursor unchanged.
func (s A1Selection) Intersection(other A1Selection) (A1Selection, bool) {
	if s.Sheet != other.Sheet {
		return A1Selection{}, false
	}
	var ranges []CellRefRange
	for _, a := range s.Ranges {
		if a.IsTable {
			continue
		}
		ra := a.Sheet.Rect()
		for _, b := range other.Ranges {
			if b.IsTable {
				continue
			}
			if ir, ok := ra.Intersection(b.Sheet.Rect()); ok {
				ranges = append(ranges, CellRefRange{Sheet: SheetRange{
					Kind:  RangeRect,
					Start: RefEnd{Col: ir.Min.X, Row: ir.Min.Y},
					End:   RefEnd{Col: ir.Max.X, Row: ir.Max.Y},
				}})
			}
		}
	}
	if len(ranges) == 0 {
		return A1Selection{}, false
	}
	result := A1Selection{Sheet: s.Sheet, Ranges: ranges, Cursor: s.Cursor}
	insideAny := func(p Position) bool {
		for _, r := range ranges {
			if r.Sheet.Rect().Contains(p) {
				return true
			}
		}
		return false
	}
	switch {
	case insideAny(s.Cursor):
		result.Cursor = s.Cursor
	case insideAny(other.Cursor):
		result.Cursor = other.Cursor
	default:
		last := ranges[len(ranges)-1].Sheet
		result.Cursor = Position{X: last.End.Col, Y: last.End.Row}
	}
	return result, true
}

// adjustRect describes the structural edit applied by an insert/delete
// operation on one axis: an insert shifts every endpoint >= index by +1; a
// delete (delta < 0) shifts endpoints > index by -1 and pulls an end
// endpoint sitting exactly at index back by one, so a range lying wholly on
// the deleted index becomes empty and is dropped. "insert(i) then
// remove(i)" is a round trip (spec testable property 3), since insert
// always moves index-i content to i+1
// before a same-index delete ever sees it.
type adjustRect struct {
	column bool // true = column axis, false = row axis
	index  int64
	delta  int64 // +1 insert, -1 delete
}

// InsertColumn shifts endpoints >= index right by one. Returns whether the
// selection changed.
func (s *A1Selection) InsertColumn(index int64) bool {
	return s.adjust(adjustRect{column: true, index: index, delta: 1})
}

// DeleteColumn shifts endpoints > index left by one and drops ranges
// entirely consumed by the deleted column.
func (s *A1Selection) DeleteColumn(index int64) bool {
	return s.adjust(adjustRect{column: true, index: index, delta: -1})
}

// InsertRow shifts endpoints >= index down by one.
func (s *A1Selection) InsertRow(index int64) bool {
	return s.adjust(adjustRect{column: false, index: index, delta: 1})
}

// DeleteRow shifts endpoints > index up by one and drops ranges entirely
// consumed by the deleted row.
func (s *A1Selection) DeleteRow(index int64) bool {
	return s.adjust(adjustRect{column: false, index: index, delta: -1})
}

func (s *A1Selection) adjust(a adjustRect) bool {
	changed := false
	var kept []CellRefRange
	for _, r := range s.Ranges {
		if r.IsTable {
			// Table-typed ranges are left untouched: spec §9 Open Question
			// (ii) — no adjustment semantics are adopted for structured
			// references yet.
			kept = append(kept, r)
			continue
		}
		nr, ok, rchanged := adjustSheetRange(r.Sheet, a)
		if rchanged {
			changed = true
		}
		if ok {
			kept = append(kept, CellRefRange{Sheet: nr})
		}
	}
	s.Ranges = kept
	return changed
}

// adjustSheetRange applies a to both endpoints of r. The bool results are
// (keep, changed): keep is false when the range collapsed to empty and must
// be dropped.
func adjustSheetRange(r SheetRange, a adjustRect) (SheetRange, bool, bool) {
	orig := r
	axisVal := func(e RefEnd) int64 {
		if a.column {
			return e.Col
		}
		return e.Row
	}
	setAxis := func(e RefEnd, v int64) RefEnd {
		if a.column {
			e.Col = v
		} else {
			e.Row = v
		}
		return e
	}
	shift := func(e RefEnd, isEnd bool) (RefEnd, bool) {
		v := axisVal(e)
		if v == 0 {
			return e, true
		}
		if a.delta < 0 {
			// The line after index slides into it, so a start endpoint at
			// index stays while an end endpoint there moves back by one.
			if v > a.index || (isEnd && v == a.index) {
				return setAxis(e, v-1), true
			}
			return e, true
		}
		if v >= a.index {
			return setAxis(e, v+a.delta), true
		}
		return e, true
	}

	start, okStart := shift(r.Start, false)
	end, okEnd := shift(r.End, true)
	if !okStart || !okEnd {
		return SheetRange{}, false, true
	}
	r.Start, r.End = start, end

	startAxis, endAxis := axisVal(r.Start), axisVal(r.End)
	if axisVal(orig.Start) > 0 && axisVal(orig.End) > 0 && startAxis > endAxis {
		return SheetRange{}, false, true
	}
	changed := r != orig
	return r, true, changed
}

// AdjustCellRefRange applies a single structural insert (delta=+1) or
// delete (delta=-1) at index on one axis to a single reference, the same
// rule A1Selection.InsertColumn/DeleteColumn use. Table-typed ranges are
// returned unchanged (spec §9 Open Question (ii)). ok is false when the
// range collapsed to empty and should be dropped; changed reports whether
// anything moved.
func AdjustCellRefRange(r CellRefRange, column bool, index, delta int64) (result CellRefRange, ok, changed bool) {
	if r.IsTable {
		return r, true, false
	}
	nr, keep, ch := adjustSheetRange(r.Sheet, adjustRect{column: column, index: index, delta: delta})
	if !keep {
		return CellRefRange{}, false, true
	}
	return CellRefRange{Sheet: nr}, true, ch
}

// SaturatingAdjust applies a bounded translate/insert/delete, clamping
// endpoints to the valid axis range ([1, Infinity]) and dropping ranges that
// clamp to empty. Returns nil if every range vanished.
func (s A1Selection) SaturatingAdjust(column bool, index, delta int64) *A1Selection {
	out := A1Selection{Sheet: s.Sheet, Cursor: s.Cursor}
	clamp := func(v int64) int64 {
		if v < 1 {
			return 1
		}
		if v > Infinity {
			return Infinity
		}
		return v
	}
	for _, r := range s.Ranges {
		if r.IsTable {
			out.Ranges = append(out.Ranges, r)
			continue
		}
		sr := r.Sheet
		shift := func(e RefEnd) RefEnd {
			if column && e.Col != 0 && e.Col >= index {
				e.Col = clamp(e.Col + delta)
			}
			if !column && e.Row != 0 && e.Row >= index {
				e.Row = clamp(e.Row + delta)
			}
			return e
		}
		sr.Start = shift(sr.Start)
		sr.End = shift(sr.End)
		if (column && sr.Start.Col > 0 && sr.End.Col > 0 && sr.Start.Col > sr.End.Col) ||
			(!column && sr.Start.Row > 0 && sr.End.Row > 0 && sr.Start.Row > sr.End.Row) {
			continue
		}
		out.Ranges = append(out.Ranges, CellRefRange{Sheet: sr})
	}
	if len(out.Ranges) == 0 {
		return nil
	}
	return &out
}

// ChangeToTableRefs rewrites sheet ranges that coincide exactly with a known
// table's data area into the structured table form.
func (s *A1Selection) ChangeToTableRefs(ctx A1Context, tables map[string]TableRegion) {
	for i, r := range s.Ranges {
		if r.IsTable {
			continue
		}
		rect := r.Sheet.Rect()
		for name, region := range tables {
			if region.Sheet == s.Sheet && region.DataRect == rect {
				s.Ranges[i] = CellRefRange{IsTable: true, Table: TableRef{TableName: name, Data: true}}
				break
			}
		}
	}
}
