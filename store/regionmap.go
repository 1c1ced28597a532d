package store

import "vellum/geom"

// Region is one named rectangular reservation within a sheet, tracked in
// the order it was inserted so that spill precedence is stable: an earlier
// region always wins over a later one when they overlap.
type Region struct {
	Anchor geom.Position
	Rect   geom.Rect
}

// RegionMap indexes the rectangular footprints that data tables and code
// runs reserve on a sheet, in insertion order, so that a later table whose
// output would overlap an earlier one's reserved rectangle can be detected
// and made to spill into an error state instead of silently overwriting it.
type RegionMap struct {
	order   []geom.Position // anchors, in insertion order (oldest first)
	regions map[geom.Position]Region
}

// NewRegionMap returns an empty region index.
func NewRegionMap() *RegionMap {
	return &RegionMap{regions: make(map[geom.Position]Region)}
}

// Set reserves rect for the table anchored at anchor, replacing any prior
// reservation for that anchor in place (insertion order is preserved on
// update, not reset to the back).
func (m *RegionMap) Set(anchor geom.Position, rect geom.Rect) {
	if _, exists := m.regions[anchor]; !exists {
		m.order = append(m.order, anchor)
	}
	m.regions[anchor] = Region{Anchor: anchor, Rect: rect}
}

// Remove drops the reservation for anchor.
func (m *RegionMap) Remove(anchor geom.Position) {
	if _, exists := m.regions[anchor]; !exists {
		return
	}
	delete(m.regions, anchor)
	for i, a := range m.order {
		if a == anchor {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns the reserved rectangle for anchor, if any.
func (m *RegionMap) Get(anchor geom.Position) (geom.Rect, bool) {
	r, ok := m.regions[anchor]
	return r.Rect, ok
}

// Blocking returns the first region, other than excludeAnchor, that
// overlaps rect, scanning in insertion order — this is the region that
// takes precedence and forces excludeAnchor's output to spill.
func (m *RegionMap) Blocking(excludeAnchor geom.Position, rect geom.Rect) (Region, bool) {
	for _, anchor := range m.order {
		if anchor == excludeAnchor {
			continue
		}
		r := m.regions[anchor]
		if r.Rect.Intersects(rect) {
			return r, true
		}
	}
	return Region{}, false
}

// Overlapping returns every region, other than excludeAnchor, that overlaps
// rect, in insertion order.
func (m *RegionMap) Overlapping(excludeAnchor geom.Position, rect geom.Rect) []Region {
	var out []Region
	for _, anchor := range m.order {
		if anchor == excludeAnchor {
			continue
		}
		r := m.regions[anchor]
		if r.Rect.Intersects(rect) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of reserved regions.
func (m *RegionMap) Len() int { return len(m.order) }
