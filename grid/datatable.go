package grid

import (
	"vellum/geom"
	"vellum/store"
)

// DataTableKind discriminates what produced a DataTable.
type DataTableKind int

const (
	TableFromFormula DataTableKind = iota
	TableFromCode
	TableFromImport
)

// TableColumn describes one output column: its display name and whether it
// is currently shown.
type TableColumn struct {
	Name    string
	Visible bool
}

// SortSpec describes the row-sort order applied to a table's output.
type SortSpec struct {
	Column     int
	Descending bool
}

// DataTable is a rectangular output produced by a code cell, an
// array-returning formula, or an external import. It is anchored at a
// single position; its logical extent is (Width, Height), which may differ
// from its un-spilled rectangle when Spill is true (a spilled table's
// visible rectangle is just its anchor cell, showing a spill error).
type DataTable struct {
	Name   string
	Anchor geom.Position
	Kind   DataTableKind

	Width  int64
	Height int64

	ChartOutput bool
	ChartWidth  int64
	ChartHeight int64

	Columns []TableColumn
	Sort    *SortSpec

	Formats *store.Contiguous2D[Format]

	ShowName    bool
	ShowColumns bool

	Spill bool

	// Values holds the raw table data row-major, Height rows of Width
	// columns. Header/name rows occupy the front of the anchor's output
	// rectangle (ShowName/ShowColumns) but are not part of Values.
	Values [][]CellValue
}

// DataRect returns the table's logical output rectangle, as if unspilled.
func (t DataTable) DataRect() geom.Rect {
	headerRows := int64(0)
	if t.ShowName {
		headerRows++
	}
	if t.ShowColumns {
		headerRows++
	}
	return geom.RectFromSize(t.Anchor.X, t.Anchor.Y, t.Width, t.Height+headerRows)
}

// VisibleRect returns the rectangle the table actually occupies: its full
// DataRect normally, or just the anchor cell while spilled (showing a spill
// error in place of the table body).
func (t DataTable) VisibleRect() geom.Rect {
	if t.Spill {
		return geom.SinglePos(t.Anchor)
	}
	return t.DataRect()
}

// Get returns the value at the given offset within the table body (0-based,
// relative to the anchor, below any header rows), or Blank if out of range.
func (t DataTable) Get(col, row int64) CellValue {
	if row < 0 || row >= int64(len(t.Values)) {
		return Blank
	}
	r := t.Values[row]
	if col < 0 || col >= int64(len(r)) {
		return Blank
	}
	return r[col]
}
