package geom

// Rect is an inclusive, axis-aligned rectangle, normalized on construction so
// that Min <= Max componentwise. Either axis of Max may be the Infinity
// sentinel, representing a full-column or full-row (or whole-sheet) range.
type Rect struct {
	Min Position
	Max Position
}

// NewRect builds a normalized Rect from two arbitrary corners. Per testable
// property 2 in the spec, NewRect(a,b,c,d) == NewRect(c,d,a,b) for all
// coordinates.
func NewRect(x0, y0, x1, y1 int64) Rect {
	return Rect{
		Min: Position{X: min64(x0, x1), Y: min64(y0, y1)},
		Max: Position{X: max64(x0, x1), Y: max64(y0, y1)},
	}
}

// RectFromPositions builds a normalized Rect spanning two positions.
func RectFromPositions(a, b Position) Rect {
	return NewRect(a.X, a.Y, b.X, b.Y)
}

// SinglePos returns a 1x1 Rect containing only pos.
func SinglePos(pos Position) Rect {
	return Rect{Min: pos, Max: pos}
}

// RectFromSize builds a rectangle from an origin and a width/height.
func RectFromSize(x, y, w, h int64) Rect {
	return Rect{
		Min: Position{X: x, Y: y},
		Max: Position{X: x + w - 1, Y: y + h - 1},
	}
}

// FullColumns returns the rectangle spanning columns [x0, x1] and every row.
func FullColumns(x0, x1 int64) Rect {
	return NewRect(x0, 1, x1, Infinity)
}

// FullRows returns the rectangle spanning rows [y0, y1] and every column.
func FullRows(y0, y1 int64) Rect {
	return NewRect(1, y0, Infinity, y1)
}

// WholeSheet returns the unbounded rectangle covering the entire sheet.
func WholeSheet() Rect {
	return NewRect(1, 1, Infinity, Infinity)
}

// Width returns the number of columns spanned. Unbounded rectangles report
// Infinity.
func (r Rect) Width() int64 {
	if r.Max.X >= Infinity {
		return Infinity
	}
	return r.Max.X - r.Min.X + 1
}

// Height returns the number of rows spanned. Unbounded rectangles report
// Infinity.
func (r Rect) Height() int64 {
	if r.Max.Y >= Infinity {
		return Infinity
	}
	return r.Max.Y - r.Min.Y + 1
}

// IsEmpty reports whether the rectangle spans zero cells.
func (r Rect) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Contains reports whether pos falls within the rectangle.
func (r Rect) Contains(pos Position) bool {
	return pos.X >= r.Min.X && pos.X <= r.Max.X && pos.Y >= r.Min.Y && pos.Y <= r.Max.Y
}

// ContainsRect reports whether other is fully contained within r.
func (r Rect) ContainsRect(other Rect) bool {
	return r.Contains(other.Min) && r.Contains(other.Max)
}

// Intersects reports whether r and other share at least one cell.
func (r Rect) Intersects(other Rect) bool {
	return !(other.Max.X < r.Min.X || other.Min.X > r.Max.X ||
		other.Max.Y < r.Min.Y || other.Min.Y > r.Max.Y)
}

// Intersection returns the overlapping rectangle, if any.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	minX := max64(r.Min.X, other.Min.X)
	minY := max64(r.Min.Y, other.Min.Y)
	maxX := min64(r.Max.X, other.Max.X)
	maxY := min64(r.Max.Y, other.Max.Y)
	if minX > maxX || minY > maxY {
		return Rect{}, false
	}
	return Rect{Min: Position{X: minX, Y: minY}, Max: Position{X: maxX, Y: maxY}}, true
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Position{X: min64(r.Min.X, other.Min.X), Y: min64(r.Min.Y, other.Min.Y)},
		Max: Position{X: max64(r.Max.X, other.Max.X), Y: max64(r.Max.Y, other.Max.Y)},
	}
}

// ClampEnvelope clamps the rectangle's coordinates to the safe int32 range
// for building spatial-index envelopes, while the Rect itself keeps the
// original int64 coordinates (spec §9 "Integer safety").
func ClampEnvelope(r Rect) (minX, minY, maxX, maxY int32) {
	const maxI32 = int64(1<<31 - 1)
	clamp := func(v int64) int32 {
		if v > maxI32 {
			return int32(maxI32)
		}
		if v < -maxI32 {
			return int32(-maxI32)
		}
		return int32(v)
	}
	return clamp(r.Min.X), clamp(r.Min.Y), clamp(r.Max.X), clamp(r.Max.Y)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
