package controller

import (
	"vellum/geom"
	"vellum/grid"
)

// SpecialMarker flags a cell needing a non-text rendering hint, independent
// of its display string (spec §4.8).
type SpecialMarker int

const (
	SpecialNone SpecialMarker = iota
	SpecialChart
	SpecialCheckbox
	SpecialSpillError
	SpecialRunError
	SpecialList
	SpecialValidation
)

// CellSnapshot is the read-only per-cell projection the rendering host
// consumes: position, display string, effective format, language marker for
// code cells, and any special marker (spec §4.8).
type CellSnapshot struct {
	Pos      geom.Position
	Display  string
	Format   grid.Format
	Language string // empty unless the cell holds code
	Special  SpecialMarker
}

// TileHash identifies one renderable tile (a fixed-size block of cells) a
// viewport buffer has requested.
type TileHash struct {
	Sheet geom.SheetId
	TileX int64
	TileY int64
}

const tileSize = 64

func tileOf(pos geom.Position) (int64, int64) {
	tx := pos.X / tileSize
	if pos.X < 0 && pos.X%tileSize != 0 {
		tx--
	}
	ty := pos.Y / tileSize
	if pos.Y < 0 && pos.Y%tileSize != 0 {
		ty--
	}
	return tx, ty
}

// SnapshotBuffer tracks which tiles a viewport cares about and which of
// those are dirty, so Snapshot only ever recomputes tiles a viewport is
// actually showing (spec §4.8: "produced only for dirty hashes and only
// while a viewport buffer is present").
type SnapshotBuffer struct {
	viewport map[TileHash]bool
	dirty    map[TileHash]bool
}

// NewSnapshotBuffer returns an empty buffer: no viewport registered, nothing
// dirty.
func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{viewport: make(map[TileHash]bool), dirty: make(map[TileHash]bool)}
}

// SetViewport replaces the set of tiles the host's viewport currently
// covers. Every tile in the new viewport is marked dirty so it renders at
// least once after being scrolled into view.
func (b *SnapshotBuffer) SetViewport(tiles []TileHash) {
	b.viewport = make(map[TileHash]bool, len(tiles))
	for _, t := range tiles {
		b.viewport[t] = true
		b.dirty[t] = true
	}
}

// MarkDirty flags pos's tile as needing re-snapshot, if a viewport buffer
// is watching it.
func (c *Controller) MarkDirty(buf *SnapshotBuffer, sheet geom.SheetId, pos geom.Position) {
	if buf == nil {
		return
	}
	tx, ty := tileOf(pos)
	h := TileHash{Sheet: sheet, TileX: tx, TileY: ty}
	if buf.viewport[h] {
		buf.dirty[h] = true
	}
}

// MarkDirtyRect flags every tile rect overlaps.
func (c *Controller) MarkDirtyRect(buf *SnapshotBuffer, sheet geom.SheetId, rect geom.Rect) {
	if buf == nil {
		return
	}
	x0, y0 := tileOf(rect.Min)
	x1, y1 := tileOf(rect.Max)
	for tx := x0; tx <= x1; tx++ {
		for ty := y0; ty <= y1; ty++ {
			h := TileHash{Sheet: sheet, TileX: tx, TileY: ty}
			if buf.viewport[h] {
				buf.dirty[h] = true
			}
		}
	}
}

// Snapshot renders every dirty, viewport-covered tile into its cell
// projections and clears the dirty flag on each one returned.
func (c *Controller) Snapshot(buf *SnapshotBuffer) map[TileHash][]CellSnapshot {
	out := make(map[TileHash][]CellSnapshot)
	for h, isDirty := range buf.dirty {
		if !isDirty {
			continue
		}
		sheet, ok := c.Grid.Sheets[h.Sheet]
		if !ok {
			delete(buf.dirty, h)
			continue
		}
		rect := geom.RectFromSize(h.TileX*tileSize, h.TileY*tileSize, tileSize, tileSize)
		out[h] = c.snapshotTile(sheet, rect)
		delete(buf.dirty, h)
	}
	return out
}

func (c *Controller) snapshotTile(sheet *grid.Sheet, rect geom.Rect) []CellSnapshot {
	var cells []CellSnapshot
	for y := rect.Min.Y; y <= rect.Max.Y; y++ {
		for x := rect.Min.X; x <= rect.Max.X; x++ {
			pos := geom.New(x, y)
			v := sheet.GetCell(pos)
			dt, hasTable := sheet.Tables.Get(pos)
			if v.IsBlank() && !hasTable {
				continue
			}
			cells = append(cells, c.snapshotCell(sheet, pos, v, dt))
		}
	}
	return cells
}

func (c *Controller) snapshotCell(sheet *grid.Sheet, pos geom.Position, v grid.CellValue, dt *grid.DataTable) CellSnapshot {
	snap := CellSnapshot{Pos: pos, Format: sheet.EffectiveFormat(pos)}

	if _, ok := sheet.Warnings[pos]; ok {
		snap.Special = SpecialValidation
	}
	for _, val := range sheet.Validations {
		if val.Kind == grid.ValidationList || val.Kind == grid.ValidationListSource {
			if val.Selection.Contains(sheet.Id, pos, c.Grid) {
				if snap.Special == SpecialNone {
					snap.Special = SpecialList
				}
			}
		}
	}

	if v.Kind == grid.ValueCode {
		snap.Language = v.Code.Language
	}

	if dt != nil {
		if dt.Anchor == pos {
			if dt.ChartOutput {
				snap.Special = SpecialChart
			}
			if dt.Spill {
				snap.Special = SpecialSpillError
				snap.Display = grid.CellError{Kind: grid.ErrSpill}.String()
				return snap
			}
			if run, ok := sheet.CodeRuns[pos]; ok && run.Error != nil {
				snap.Special = SpecialRunError
				snap.Display = run.Error.String()
				return snap
			}
		}
		snap.Display = tableCellDisplay(dt, pos)
		return snap
	}

	if v.Kind == grid.ValueBoolean {
		snap.Special = SpecialCheckbox
	}
	if v.Kind == grid.ValueError {
		snap.Special = SpecialRunError
	}
	snap.Display = v.Inspect()
	return snap
}

// tableCellDisplay renders the display string for a position inside a
// table's visible rectangle, accounting for the ShowName/ShowColumns header
// rows the same way evalCtx.GetCell does for values.
func tableCellDisplay(dt *grid.DataTable, pos geom.Position) string {
	row := pos.Y - dt.Anchor.Y
	col := pos.X - dt.Anchor.X
	if dt.ShowName {
		if row == 0 {
			if col == 0 {
				return dt.Name
			}
			return ""
		}
		row--
	}
	if dt.ShowColumns {
		if row == 0 {
			if col >= 0 && int(col) < len(dt.Columns) {
				return dt.Columns[col].Name
			}
			return ""
		}
		row--
	}
	if row < 0 || row >= dt.Height || col < 0 || col >= dt.Width {
		return ""
	}
	return dt.Values[row][col].Inspect()
}
