package grid

import (
	"vellum/geom"
	"vellum/store"
)

// tables is an order-preserving map from anchor position to DataTable: spill
// precedence is determined by insertion order, so a plain map cannot be
// used directly (spec invariant: "data tables are order-preserving").
type tables struct {
	order []geom.Position
	byPos map[geom.Position]*DataTable
}

func newTables() *tables {
	return &tables{byPos: make(map[geom.Position]*DataTable)}
}

func (t *tables) Get(pos geom.Position) (*DataTable, bool) {
	dt, ok := t.byPos[pos]
	return dt, ok
}

// Insert places table at index within the insertion order (clamped to
// [0, len]), or appends if index < 0.
func (t *tables) Insert(index int, pos geom.Position, table *DataTable) {
	if _, exists := t.byPos[pos]; exists {
		t.byPos[pos] = table
		return
	}
	t.byPos[pos] = table
	if index < 0 || index > len(t.order) {
		t.order = append(t.order, pos)
		return
	}
	t.order = append(t.order, geom.Position{})
	copy(t.order[index+1:], t.order[index:])
	t.order[index] = pos
}

func (t *tables) Remove(pos geom.Position) {
	if _, exists := t.byPos[pos]; !exists {
		return
	}
	delete(t.byPos, pos)
	for i, p := range t.order {
		if p == pos {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// IndexOf returns the insertion-order index of pos, or -1.
func (t *tables) IndexOf(pos geom.Position) int {
	for i, p := range t.order {
		if p == pos {
			return i
		}
	}
	return -1
}

// Each iterates tables in insertion order.
func (t *tables) Each(fn func(pos geom.Position, table *DataTable)) {
	for _, pos := range t.order {
		fn(pos, t.byPos[pos])
	}
}

func (t *tables) Len() int { return len(t.order) }

// Sheet is one sheet of the grid: its cell values, formats, borders,
// validations, and data tables, plus display metadata.
type Sheet struct {
	Id       geom.SheetId
	Name     string
	Color    string
	OrderKey string

	// Columns maps column index to that column's sparse row->value map.
	Columns map[int64]*store.ColumnMap[CellValue]

	CellFormats   *store.Contiguous2D[Format]
	ColumnFormats map[int64]Format
	RowFormats    map[int64]Format

	Borders     Borders
	Validations []Validation
	// Warnings records non-fatal validation hits (warning/info style) by
	// position, with the index into Validations of the rule that produced
	// them.
	Warnings map[geom.Position]uidAndMessage

	Tables *tables

	// CodeRuns holds the execution record for each code/formula cell,
	// keyed by the same anchor position as its output DataTable.
	CodeRuns map[geom.Position]*CodeRun

	ColumnWidths *store.ColumnMap[float64]
	RowHeights   *store.ColumnMap[float64]

	RegionIndex *store.RegionMap
}

type uidAndMessage struct {
	ValidationIndex int
	Message         string
}

// NewSheet constructs an empty sheet with a fresh SheetId.
func NewSheet(name, orderKey string) *Sheet {
	return &Sheet{
		Id:            geom.NewSheetId(),
		Name:          name,
		OrderKey:      orderKey,
		Columns:       make(map[int64]*store.ColumnMap[CellValue]),
		CellFormats:   store.NewContiguous2D[Format](),
		ColumnFormats: make(map[int64]Format),
		RowFormats:    make(map[int64]Format),
		Borders:       NewBorders(),
		Warnings:      make(map[geom.Position]uidAndMessage),
		Tables:        newTables(),
		CodeRuns:      make(map[geom.Position]*CodeRun),
		ColumnWidths:  store.NewColumnMap[float64](),
		RowHeights:    store.NewColumnMap[float64](),
		RegionIndex:   store.NewRegionMap(),
	}
}

// GetCell returns the value at pos, or Blank if unset.
func (s *Sheet) GetCell(pos geom.Position) CellValue {
	col, ok := s.Columns[pos.X]
	if !ok {
		return Blank
	}
	v, ok := col.Get(pos.Y)
	if !ok {
		return Blank
	}
	return v
}

// HasContentOtherThan reports whether any non-blank cell value lies within
// rect, ignoring the cell at exclude (a table's own anchor, which holds the
// code/formula source that produced the table and so does not occlude it).
// Used to detect when plain cell content — not just another table — blocks
// a data table's un-spilled output rectangle (spec §3, §4.4).
func (s *Sheet) HasContentOtherThan(rect geom.Rect, exclude geom.Position) bool {
	for x := rect.Min.X; x <= rect.Max.X; x++ {
		col, ok := s.Columns[x]
		if !ok {
			continue
		}
		found := false
		col.Range(func(row int64, v CellValue) bool {
			pos := geom.New(x, row)
			if row < rect.Min.Y || row > rect.Max.Y || pos == exclude {
				return true
			}
			if !v.IsBlank() {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// SetCell stores value at pos, or removes the entry entirely when value is
// blank (blank and absent are storage-equivalent). Returns the previous
// value, for reverse-operation construction.
func (s *Sheet) SetCell(pos geom.Position, value CellValue) CellValue {
	prev := s.GetCell(pos)
	if value.IsBlank() {
		if col, ok := s.Columns[pos.X]; ok {
			col.Remove(pos.Y)
			if col.Len() == 0 {
				delete(s.Columns, pos.X)
			}
		}
		return prev
	}
	col, ok := s.Columns[pos.X]
	if !ok {
		col = store.NewColumnMap[CellValue]()
		s.Columns[pos.X] = col
	}
	col.Set(pos.Y, value)
	return prev
}

// RecordValidationWarning records that pos triggered the validationIndex'th
// rule at warning/info severity (spec §4.6: these styles accept the change
// and record a warning id rather than rejecting it).
func (s *Sheet) RecordValidationWarning(pos geom.Position, validationIndex int, message string) {
	s.Warnings[pos] = uidAndMessage{ValidationIndex: validationIndex, Message: message}
}

// ClearValidationWarning removes any recorded warning at pos, used when a
// later write satisfies every applicable rule.
func (s *Sheet) ClearValidationWarning(pos geom.Position) {
	delete(s.Warnings, pos)
}

// EffectiveFormat computes the merged format at pos: cell > row > column >
// default (an empty Format).
func (s *Sheet) EffectiveFormat(pos geom.Position) Format {
	cell := s.CellFormats.Get(pos.X, pos.Y)
	row := s.RowFormats[pos.Y]
	column := s.ColumnFormats[pos.X]
	return cell.Merge(row).Merge(column)
}

// Clone deep-copies the sheet's content, used by DuplicateSheet. The copy
// keeps s's Id, Name, and OrderKey.
func (s *Sheet) Clone() *Sheet {
	out := NewSheet(s.Name, s.OrderKey)
	out.Id = s.Id
	out.Color = s.Color
	for col, cm := range s.Columns {
		out.Columns[col] = cm.Clone()
	}
	out.CellFormats = s.CellFormats.Clone()
	for k, v := range s.ColumnFormats {
		out.ColumnFormats[k] = v
	}
	for k, v := range s.RowFormats {
		out.RowFormats[k] = v
	}
	out.Borders = Borders{Left: s.Borders.Left.Clone(), Right: s.Borders.Right.Clone(), Top: s.Borders.Top.Clone(), Bottom: s.Borders.Bottom.Clone()}
	out.Validations = append([]Validation(nil), s.Validations...)
	for k, v := range s.Warnings {
		out.Warnings[k] = v
	}
	s.Tables.Each(func(pos geom.Position, dt *DataTable) {
		copyDt := *dt
		out.Tables.Insert(-1, pos, &copyDt)
	})
	for pos, run := range s.CodeRuns {
		copyRun := *run
		out.CodeRuns[pos] = &copyRun
	}
	out.ColumnWidths = s.ColumnWidths.Clone()
	out.RowHeights = s.RowHeights.Clone()
	for pos, rect := range s.regionSnapshot() {
		out.RegionIndex.Set(pos, rect)
	}
	return out
}

func (s *Sheet) regionSnapshot() map[geom.Position]geom.Rect {
	out := make(map[geom.Position]geom.Rect)
	s.Tables.Each(func(pos geom.Position, dt *DataTable) { out[pos] = dt.DataRect() })
	return out
}

// InsertColumn shifts every cell value, format, border, table anchor, and
// sized column/row at or after index one column right (spec §4.3
// structural pass 2). It does not touch Validations or formula source text
// — those are the controller's responsibility (A1Selection adjustment and
// reference rewriting respectively), since this package has no A1 parser
// dependency.
func (s *Sheet) InsertColumn(index int64) {
	s.shiftColumns(index, 1)
}

// DeleteColumn removes column index's content and shifts later columns
// left.
func (s *Sheet) DeleteColumn(index int64) {
	s.shiftColumns(index, -1)
}

// InsertRow shifts every cell value, format, border, and table anchor at or
// after index one row down.
func (s *Sheet) InsertRow(index int64) {
	s.shiftRows(index, 1)
}

// DeleteRow removes row index's content and shifts later rows up.
func (s *Sheet) DeleteRow(index int64) {
	s.shiftRows(index, -1)
}

func (s *Sheet) shiftColumns(index, delta int64) {
	newColumns := make(map[int64]*store.ColumnMap[CellValue], len(s.Columns))
	for col, cm := range s.Columns {
		nc := shiftIndex(col, index, delta)
		if nc < 0 {
			continue
		}
		newColumns[nc] = cm
	}
	s.Columns = newColumns

	newColFormats := make(map[int64]Format, len(s.ColumnFormats))
	for col, f := range s.ColumnFormats {
		if nc := shiftIndex(col, index, delta); nc >= 0 {
			newColFormats[nc] = f
		}
	}
	s.ColumnFormats = newColFormats

	if delta > 0 {
		s.CellFormats.InsertColumn(index)
		s.Borders.Left.InsertColumn(index)
		s.Borders.Right.InsertColumn(index)
		s.Borders.Top.InsertColumn(index)
		s.Borders.Bottom.InsertColumn(index)
		s.ColumnWidths.InsertRow(index)
	} else {
		s.CellFormats.DeleteColumn(index)
		s.Borders.Left.DeleteColumn(index)
		s.Borders.Right.DeleteColumn(index)
		s.Borders.Top.DeleteColumn(index)
		s.Borders.Bottom.DeleteColumn(index)
		s.ColumnWidths.DeleteRow(index)
	}
	s.shiftTableAnchors(true, index, delta)
	s.shiftCodeRuns(true, index, delta)
}

func (s *Sheet) shiftRows(index, delta int64) {
	for _, cm := range s.Columns {
		if delta > 0 {
			cm.InsertRow(index)
		} else {
			cm.DeleteRow(index)
		}
	}
	newRowFormats := make(map[int64]Format, len(s.RowFormats))
	for row, f := range s.RowFormats {
		if nr := shiftIndex(row, index, delta); nr >= 0 {
			newRowFormats[nr] = f
		}
	}
	s.RowFormats = newRowFormats

	if delta > 0 {
		s.CellFormats.InsertRow(index)
		s.Borders.Left.InsertRow(index)
		s.Borders.Right.InsertRow(index)
		s.Borders.Top.InsertRow(index)
		s.Borders.Bottom.InsertRow(index)
		s.RowHeights.InsertRow(index)
	} else {
		s.CellFormats.DeleteRow(index)
		s.Borders.Left.DeleteRow(index)
		s.Borders.Right.DeleteRow(index)
		s.Borders.Top.DeleteRow(index)
		s.Borders.Bottom.DeleteRow(index)
		s.RowHeights.DeleteRow(index)
	}
	s.shiftTableAnchors(false, index, delta)
	s.shiftCodeRuns(false, index, delta)
}

// shiftCodeRuns moves CodeRun records the same way shiftTableAnchors moves
// table anchors, since both are keyed by the code cell's position.
func (s *Sheet) shiftCodeRuns(column bool, index, delta int64) {
	newRuns := make(map[geom.Position]*CodeRun, len(s.CodeRuns))
	for pos, run := range s.CodeRuns {
		axis := pos.X
		if !column {
			axis = pos.Y
		}
		nAxis := shiftIndex(axis, index, delta)
		if nAxis < 0 {
			continue
		}
		np := pos
		if column {
			np.X = nAxis
		} else {
			np.Y = nAxis
		}
		newRuns[np] = run
	}
	s.CodeRuns = newRuns
}

// shiftTableAnchors moves every DataTable's anchor the same way a structural
// insert/delete moves a cell, rebuilding the table and region index order
// (insertion order is preserved since Tables.Insert is called at each
// table's existing index).
func (s *Sheet) shiftTableAnchors(column bool, index, delta int64) {
	type entry struct {
		oldPos, newPos geom.Position
		dt             *DataTable
	}
	var moved []entry
	s.Tables.Each(func(pos geom.Position, dt *DataTable) {
		axis := pos.X
		if !column {
			axis = pos.Y
		}
		nAxis := shiftIndex(axis, index, delta)
		if nAxis < 0 {
			moved = append(moved, entry{pos, geom.Position{X: -1, Y: -1}, dt})
			return
		}
		np := pos
		if column {
			np.X = nAxis
		} else {
			np.Y = nAxis
		}
		moved = append(moved, entry{pos, np, dt})
	})
	for _, e := range moved {
		idx := s.Tables.IndexOf(e.oldPos)
		s.Tables.Remove(e.oldPos)
		s.RegionIndex.Remove(e.oldPos)
		if e.newPos.X < 0 {
			continue // anchor fell on the deleted column/row
		}
		e.dt.Anchor = e.newPos
		s.Tables.Insert(idx, e.newPos, e.dt)
		s.RegionIndex.Set(e.newPos, e.dt.DataRect())
	}
}

// shiftIndex applies a single structural insert (delta=+1) or delete
// (delta=-1) to one axis value: delete drops a value at the exact index
// rather than shifting it, which is what makes insert(i) then delete(i) a
// round trip.
func shiftIndex(v, index, delta int64) int64 {
	if delta < 0 {
		if v == index {
			return -1
		}
		if v > index {
			return v - 1
		}
		return v
	}
	if v >= index {
		return v + delta
	}
	return v
}

// Bounds returns the smallest rectangle containing every non-blank cell and
// every data table, or a zero Rect if the sheet is empty.
func (s *Sheet) Bounds() (geom.Rect, bool) {
	var result geom.Rect
	found := false
	for col, cm := range s.Columns {
		cm.Range(func(row int64, _ CellValue) bool {
			r := geom.SinglePos(geom.New(col, row))
			if !found {
				result, found = r, true
			} else {
				result = result.Union(r)
			}
			return true
		})
	}
	s.Tables.Each(func(pos geom.Position, dt *DataTable) {
		r := dt.VisibleRect()
		if !found {
			result, found = r, true
		} else {
			result = result.Union(r)
		}
	})
	return result, found
}
