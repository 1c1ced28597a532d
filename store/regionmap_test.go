package store

import (
	"testing"

	"vellum/geom"
)

func TestRegionMapBlockingRespectsInsertionOrder(t *testing.T) {
	m := NewRegionMap()
	first := geom.New(1, 1)
	second := geom.New(2, 2)

	m.Set(first, geom.NewRect(1, 1, 5, 5))
	m.Set(second, geom.NewRect(3, 3, 8, 8))

	blocker, ok := m.Blocking(second, geom.NewRect(3, 3, 8, 8))
	if !ok || blocker.Anchor != first {
		t.Fatalf("expected first region to block second, got %+v, %v", blocker, ok)
	}

	// the earlier region is never itself blocked by later ones
	if _, ok := m.Blocking(first, geom.NewRect(1, 1, 5, 5)); ok {
		t.Fatalf("expected no blocker for the first region")
	}
}

func TestRegionMapRemove(t *testing.T) {
	m := NewRegionMap()
	a := geom.New(1, 1)
	m.Set(a, geom.NewRect(1, 1, 3, 3))
	if m.Len() != 1 {
		t.Fatalf("got len %d", m.Len())
	}
	m.Remove(a)
	if m.Len() != 0 {
		t.Fatalf("expected empty after remove")
	}
	if _, ok := m.Get(a); ok {
		t.Fatalf("expected miss after remove")
	}
}

func TestRegionMapOverlapping(t *testing.T) {
	m := NewRegionMap()
	a, b, c := geom.New(1, 1), geom.New(10, 10), geom.New(20, 20)
	m.Set(a, geom.NewRect(1, 1, 5, 5))
	m.Set(b, geom.NewRect(3, 3, 8, 8))
	m.Set(c, geom.NewRect(100, 100, 200, 200))

	overlaps := m.Overlapping(a, geom.NewRect(1, 1, 5, 5))
	if len(overlaps) != 1 || overlaps[0].Anchor != b {
		t.Fatalf("got %+v", overlaps)
	}
}
