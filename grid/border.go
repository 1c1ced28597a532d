package grid

import "vellum/store"

// BorderStyle is the style and color applied to one cell edge.
type BorderStyle struct {
	Style string // "line1", "line2", "line3", "dashed", "dotted", "double", ""
	Color string
}

// Borders stores the four per-edge sparse overlays for a sheet: left/right
// edges vary along columns, top/bottom edges vary along rows, but all four
// are indexed by the (x,y) of the cell that owns the edge, matching the
// spec's "four sparse per-axis maps ... of run-length blocks".
type Borders struct {
	Left   *store.Contiguous2D[BorderStyle]
	Right  *store.Contiguous2D[BorderStyle]
	Top    *store.Contiguous2D[BorderStyle]
	Bottom *store.Contiguous2D[BorderStyle]
}

// NewBorders returns an empty border set.
func NewBorders() Borders {
	return Borders{
		Left:   store.NewContiguous2D[BorderStyle](),
		Right:  store.NewContiguous2D[BorderStyle](),
		Top:    store.NewContiguous2D[BorderStyle](),
		Bottom: store.NewContiguous2D[BorderStyle](),
	}
}
