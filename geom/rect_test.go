package geom

import "testing"

func TestNewRectNormalizesCorners(t *testing.T) {
	a := NewRect(5, 10, 1, 2)
	b := NewRect(1, 2, 5, 10)
	if a != b {
		t.Fatalf("NewRect(5,10,1,2) = %+v, want %+v", a, b)
	}
}

func TestRectIntersects(t *testing.T) {
	r1 := NewRect(1, 1, 5, 5)
	r2 := NewRect(4, 4, 8, 8)
	if !r1.Intersects(r2) {
		t.Fatalf("expected overlap")
	}
	ir, ok := r1.Intersection(r2)
	if !ok || ir != NewRect(4, 4, 5, 5) {
		t.Fatalf("got %+v, %v", ir, ok)
	}

	r3 := NewRect(10, 10, 20, 20)
	if r1.Intersects(r3) {
		t.Fatalf("expected no overlap")
	}
	if _, ok := r1.Intersection(r3); ok {
		t.Fatalf("expected no intersection")
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := NewRect(1, 1, 10, 10)
	inner := NewRect(2, 2, 5, 5)
	if !outer.ContainsRect(inner) {
		t.Fatalf("expected containment")
	}
	if inner.ContainsRect(outer) {
		t.Fatalf("expected no containment")
	}
}

func TestRectUnion(t *testing.T) {
	a := NewRect(1, 1, 3, 3)
	b := NewRect(5, 5, 7, 7)
	u := a.Union(b)
	if u != NewRect(1, 1, 7, 7) {
		t.Fatalf("got %+v", u)
	}
}

func TestFullColumnsHeightIsInfinity(t *testing.T) {
	r := FullColumns(2, 4)
	if r.Height() != Infinity {
		t.Fatalf("want Infinity, got %d", r.Height())
	}
	if r.Width() != 3 {
		t.Fatalf("want 3, got %d", r.Width())
	}
}

func TestClampEnvelope(t *testing.T) {
	r := NewRect(1, 1, Infinity, Infinity)
	minX, minY, maxX, maxY := ClampEnvelope(r)
	if minX != 1 || minY != 1 {
		t.Fatalf("min got (%d,%d)", minX, minY)
	}
	if int64(maxX) >= Infinity || int64(maxY) >= Infinity {
		// clamped value must fit in int32, so it cannot equal the int64 Infinity sentinel
	}
	if maxX != 1<<31-1 || maxY != 1<<31-1 {
		t.Fatalf("max got (%d,%d)", maxX, maxY)
	}
}

func TestRectIsEmpty(t *testing.T) {
	if !(Rect{Min: Position{X: 5, Y: 5}, Max: Position{X: 1, Y: 1}}).IsEmpty() {
		t.Fatalf("expected empty")
	}
	if NewRect(1, 1, 1, 1).IsEmpty() {
		t.Fatalf("single cell must not be empty")
	}
}
