package store

import (
	"testing"

	"vellum/geom"
)

func TestContiguous2DGetSet(t *testing.T) {
	c := NewContiguous2D[int]()
	c.SetRect(geom.NewRect(2, 2, 4, 4), 7)

	if got := c.Get(3, 3); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	if got := c.Get(1, 1); got != 0 {
		t.Fatalf("got %d, want 0 (unset)", got)
	}
	if got := c.Get(5, 5); got != 0 {
		t.Fatalf("got %d, want 0 (outside rect)", got)
	}
}

func TestContiguous2DOverwriteSubRect(t *testing.T) {
	c := NewContiguous2D[int]()
	c.SetRect(geom.NewRect(1, 1, 10, 10), 1)
	c.SetRect(geom.NewRect(3, 3, 5, 5), 2)

	if got := c.Get(4, 4); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := c.Get(1, 1); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := c.Get(10, 10); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestContiguous2DIterateCoalescesEqualNeighbors(t *testing.T) {
	c := NewContiguous2D[int]()
	c.SetRect(geom.NewRect(1, 1, 5, 5), 9)
	c.SetRect(geom.NewRect(6, 1, 10, 5), 9)

	var rects []geom.Rect
	c.Iterate(func(r geom.Rect, v int) {
		rects = append(rects, r)
	})
	if len(rects) != 1 {
		t.Fatalf("expected coalesced single block, got %v", rects)
	}
	if rects[0] != geom.NewRect(1, 1, 10, 5) {
		t.Fatalf("got %+v", rects[0])
	}
}

func TestContiguous2DClearingToZeroRemovesEntry(t *testing.T) {
	c := NewContiguous2D[int]()
	c.SetRect(geom.NewRect(1, 1, 3, 3), 5)
	c.SetRect(geom.NewRect(1, 1, 3, 3), 0)

	var count int
	c.Iterate(func(r geom.Rect, v int) { count++ })
	if count != 0 {
		t.Fatalf("expected no remaining blocks, got %d", count)
	}
}

func TestContiguous2DUpdateWithReverseRestores(t *testing.T) {
	c := NewContiguous2D[string]()
	c.SetRect(geom.NewRect(1, 1, 5, 5), "a")

	reverse := c.UpdateWithReverse(geom.NewRect(2, 2, 3, 3), "b")
	if got := c.Get(2, 2); got != "b" {
		t.Fatalf("got %q, want b", got)
	}

	reverse.Iterate(func(r geom.Rect, v string) {
		c.SetRect(r, v)
	})
	// cells inside the original rect but outside the update rect keep "a";
	// reapplying the reverse over the updated sub-rect must restore it too.
	if got := c.Get(2, 2); got != "a" {
		t.Fatalf("after reverse, got %q, want a", got)
	}
	if got := c.Get(1, 1); got != "a" {
		t.Fatalf("got %q, want a", got)
	}
}
