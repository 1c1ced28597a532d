// Package store implements the sparse, run-length storage containers used
// throughout the grid: a per-column sorted value map, the 2-D contiguous
// block container used for every per-axis format and for borders, and a
// sheet-local region index used for spill detection.
package store

import "vellum/geom"

// rowRun is one maximal row range within a column block holding a single
// value.
type rowRun[T comparable] struct {
	rowMin, rowMax int64
	value          T
}

// colBlock is one maximal column range sharing an identical row
// decomposition.
type colBlock[T comparable] struct {
	colMin, colMax int64
	rows           []rowRun[T]
}

// Contiguous2D is a sparse mapping from (x, y) in [1, geom.Infinity] x
// [1, geom.Infinity] to a value of type T, represented as an ordered set of
// non-overlapping column blocks, each holding an ordered set of
// non-overlapping row runs. Blocks are kept maximal: adjacent blocks or runs
// with equal values are coalesced after every mutation, and runs/blocks
// holding the zero value of T are dropped (zero value = "unset").
type Contiguous2D[T comparable] struct {
	cols []colBlock[T]
}

// NewContiguous2D returns an empty container.
func NewContiguous2D[T comparable]() *Contiguous2D[T] {
	return &Contiguous2D[T]{}
}

// Get returns the value at (x, y), or the zero value of T if unset.
func (c *Contiguous2D[T]) Get(x, y int64) T {
	for _, b := range c.cols {
		if x < b.colMin || x > b.colMax {
			continue
		}
		for _, r := range b.rows {
			if y >= r.rowMin && y <= r.rowMax {
				return r.value
			}
		}
		break
	}
	var zero T
	return zero
}

// SetRect sets every cell in rect to value, splitting and coalescing blocks
// as needed. rect may be unbounded on the right or bottom via
// geom.Infinity.
func (c *Contiguous2D[T]) SetRect(rect geom.Rect, value T) {
	c.splitColumnAt(rect.Min.X)
	if rect.Max.X < geom.Infinity {
		c.splitColumnAt(rect.Max.X + 1)
	}
	c.ensureColumnCoverage(rect.Min.X, rect.Max.X)
	for i := range c.cols {
		b := &c.cols[i]
		if b.colMin < rect.Min.X || b.colMax > rect.Max.X {
			continue
		}
		if b.colMin > rect.Max.X || b.colMax < rect.Min.X {
			continue
		}
		b.rows = setRowRun(b.rows, rect.Min.Y, rect.Max.Y, value)
	}
	c.coalesceColumns()
}

// UpdateWithReverse sets every cell in rect to value and returns the inverse
// change: a Contiguous2D[T] holding, for every cell in rect, the value it
// held immediately before the update (so applying it back with SetRect
// restores the prior state, run by run).
func (c *Contiguous2D[T]) UpdateWithReverse(rect geom.Rect, value T) *Contiguous2D[T] {
	reverse := NewContiguous2D[T]()
	c.splitColumnAt(rect.Min.X)
	if rect.Max.X < geom.Infinity {
		c.splitColumnAt(rect.Max.X + 1)
	}
	c.ensureColumnCoverage(rect.Min.X, rect.Max.X)
	for i := range c.cols {
		b := &c.cols[i]
		if b.colMin > rect.Max.X || b.colMax < rect.Min.X {
			continue
		}
		if b.colMin < rect.Min.X || b.colMax > rect.Max.X {
			continue
		}
		colRect := geom.NewRect(b.colMin, rect.Min.Y, b.colMax, rect.Max.Y)
		for _, r := range b.rows {
			lo, hi := maxI64(r.rowMin, rect.Min.Y), minI64(r.rowMax, rect.Max.Y)
			if lo > hi {
				continue
			}
			reverse.SetRect(geom.NewRect(colRect.Min.X, lo, colRect.Max.X, hi), r.value)
		}
		b.rows = setRowRun(b.rows, rect.Min.Y, rect.Max.Y, value)
	}
	c.coalesceColumns()
	return reverse
}

// Iterate yields every non-default block in deterministic order:
// left-to-right by column block, then top-to-bottom within each column
// block.
func (c *Contiguous2D[T]) Iterate(fn func(rect geom.Rect, value T)) {
	var zero T
	for _, b := range c.cols {
		for _, r := range b.rows {
			if r.value == zero {
				continue
			}
			fn(geom.NewRect(b.colMin, r.rowMin, b.colMax, r.rowMax), r.value)
		}
	}
}

// Clone returns a deep copy, used when duplicating a sheet.
func (c *Contiguous2D[T]) Clone() *Contiguous2D[T] {
	out := NewContiguous2D[T]()
	out.cols = make([]colBlock[T], len(c.cols))
	for i, b := range c.cols {
		out.cols[i] = colBlock[T]{colMin: b.colMin, colMax: b.colMax, rows: cloneRows(b.rows)}
	}
	return out
}

// InsertColumn shifts every block at or after index one column right,
// splitting any block straddling index (spec §4.3 structural pass 2).
func (c *Contiguous2D[T]) InsertColumn(index int64) { c.shiftAxis(true, index, 1) }

// DeleteColumn removes column index's content and shifts later columns left.
func (c *Contiguous2D[T]) DeleteColumn(index int64) { c.shiftAxis(true, index, -1) }

// InsertRow shifts every block at or after index one row down.
func (c *Contiguous2D[T]) InsertRow(index int64) { c.shiftAxis(false, index, 1) }

// DeleteRow removes row index's content and shifts later rows up.
func (c *Contiguous2D[T]) DeleteRow(index int64) { c.shiftAxis(false, index, -1) }

// shiftAxis rebuilds the whole container by re-running every existing
// (rect, value) block through a per-axis shift, splitting blocks that
// straddle index. This trades a little work for reusing the same
// split/coalesce machinery SetRect already has, rather than hand-rolling an
// in-place column/row splice.
func (c *Contiguous2D[T]) shiftAxis(column bool, index, delta int64) {
	type entry struct {
		rect  geom.Rect
		value T
	}
	var entries []entry
	c.Iterate(func(r geom.Rect, v T) { entries = append(entries, entry{r, v}) })
	c.cols = nil
	for _, e := range entries {
		for _, nr := range shiftRect(e.rect, column, index, delta) {
			c.SetRect(nr, e.value)
		}
	}
}

// shiftRect applies a single-axis insert (delta=+1) or delete (delta=-1) at
// index to rect, returning zero, one, or two resulting rects (a straddling
// rect splits into its unaffected prefix and its shifted/truncated suffix).
func shiftRect(rect geom.Rect, column bool, index, delta int64) []geom.Rect {
	min, max := rect.Min.X, rect.Max.X
	if !column {
		min, max = rect.Min.Y, rect.Max.Y
	}
	withAxis := func(lo, hi int64) geom.Rect {
		if column {
			return geom.NewRect(lo, rect.Min.Y, hi, rect.Max.Y)
		}
		return geom.NewRect(rect.Min.X, lo, rect.Max.X, hi)
	}
	shiftBound := func(v int64) int64 {
		if v >= geom.Infinity {
			return geom.Infinity
		}
		return v + delta
	}

	if delta > 0 { // insert
		switch {
		case max < index:
			return []geom.Rect{rect}
		case min >= index:
			return []geom.Rect{withAxis(shiftBound(min), shiftBound(max))}
		default:
			return []geom.Rect{withAxis(min, index-1), withAxis(index+1, shiftBound(max))}
		}
	}
	// delete
	switch {
	case max < index:
		return []geom.Rect{rect}
	case min > index:
		return []geom.Rect{withAxis(shiftBound(min), shiftBound(max))}
	case min == index && max == index:
		return nil
	default:
		var out []geom.Rect
		if min < index {
			out = append(out, withAxis(min, index-1))
		}
		if max > index {
			out = append(out, withAxis(index, shiftBound(max)))
		}
		return out
	}
}

// ensureColumnCoverage guarantees a colBlock exists for every column in
// [minX, maxX], inserting empty blocks (rows == nil) into any gap not
// already covered by a block. Without this, SetRect on a container with no
// pre-existing block in the target range (the common case: every sheet's
// CellFormats and border maps start out empty) would have nothing to set
// the rows of and silently store nothing. maxX may be geom.Infinity.
func (c *Contiguous2D[T]) ensureColumnCoverage(minX, maxX int64) {
	sortCols(c.cols)
	var out []colBlock[T]
	cursor := minX
	i := 0
	for i < len(c.cols) {
		b := c.cols[i]
		if b.colMax < cursor {
			out = append(out, b)
			i++
			continue
		}
		if cursor > maxX || b.colMin > maxX {
			break
		}
		if b.colMin > cursor {
			out = append(out, colBlock[T]{colMin: cursor, colMax: b.colMin - 1})
		}
		out = append(out, b)
		if b.colMax >= maxX {
			cursor = maxX + 1
		} else {
			cursor = b.colMax + 1
		}
		i++
	}
	if cursor <= maxX {
		out = append(out, colBlock[T]{colMin: cursor, colMax: maxX})
	}
	out = append(out, c.cols[i:]...)
	c.cols = out
}

func (c *Contiguous2D[T]) splitColumnAt(x int64) {
	if x <= 1 {
		return
	}
	for i, b := range c.cols {
		if x > b.colMin && x <= b.colMax {
			left := colBlock[T]{colMin: b.colMin, colMax: x - 1, rows: cloneRows(b.rows)}
			right := colBlock[T]{colMin: x, colMax: b.colMax, rows: cloneRows(b.rows)}
			c.cols = append(c.cols[:i], append([]colBlock[T]{left, right}, c.cols[i+1:]...)...)
			return
		}
	}
}

func cloneRows[T comparable](rows []rowRun[T]) []rowRun[T] {
	out := make([]rowRun[T], len(rows))
	copy(out, rows)
	return out
}

func setRowRun[T comparable](rows []rowRun[T], rowMin, rowMax int64, value T) []rowRun[T] {
	var out []rowRun[T]
	inserted := false
	for _, r := range rows {
		switch {
		case r.rowMax < rowMin || r.rowMin > rowMax:
			out = append(out, r)
		default:
			if r.rowMin < rowMin {
				out = append(out, rowRun[T]{rowMin: r.rowMin, rowMax: rowMin - 1, value: r.value})
			}
			if !inserted {
				out = append(out, rowRun[T]{rowMin: rowMin, rowMax: rowMax, value: value})
				inserted = true
			}
			if r.rowMax > rowMax {
				out = append(out, rowRun[T]{rowMin: rowMax + 1, rowMax: r.rowMax, value: r.value})
			}
		}
	}
	if !inserted {
		out = append(out, rowRun[T]{rowMin: rowMin, rowMax: rowMax, value: value})
	}
	return coalesceRows(out)
}

func coalesceRows[T comparable](rows []rowRun[T]) []rowRun[T] {
	var zero T
	sortRows(rows)
	var out []rowRun[T]
	for _, r := range rows {
		if r.value == zero {
			continue
		}
		if n := len(out); n > 0 && out[n-1].rowMax+1 == r.rowMin && out[n-1].value == r.value {
			out[n-1].rowMax = r.rowMax
			continue
		}
		out = append(out, r)
	}
	return out
}

func (c *Contiguous2D[T]) coalesceColumns() {
	sortCols(c.cols)
	var out []colBlock[T]
	for _, b := range c.cols {
		if len(b.rows) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].colMax+1 == b.colMin && rowsEqual(out[n-1].rows, b.rows) {
			out[n-1].colMax = b.colMax
			continue
		}
		out = append(out, b)
	}
	c.cols = out
}

func rowsEqual[T comparable](a, b []rowRun[T]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortRows[T comparable](rows []rowRun[T]) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].rowMin > rows[j].rowMin; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

func sortCols[T comparable](cols []colBlock[T]) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].colMin > cols[j].colMin; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
