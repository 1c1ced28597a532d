package store

import "testing"

func TestColumnMapSetGetRemove(t *testing.T) {
	m := NewColumnMap[string]()
	m.Set(10, "ten")
	m.Set(5, "five")
	m.Set(20, "twenty")

	if v, ok := m.Get(5); !ok || v != "five" {
		t.Fatalf("got %q, %v", v, ok)
	}
	if _, ok := m.Get(6); ok {
		t.Fatalf("expected miss")
	}
	if m.Len() != 3 {
		t.Fatalf("got len %d", m.Len())
	}

	var rows []int64
	m.Range(func(row int64, value string) bool {
		rows = append(rows, row)
		return true
	})
	want := []int64{5, 10, 20}
	for i, r := range want {
		if rows[i] != r {
			t.Fatalf("Range order = %v, want %v", rows, want)
		}
	}

	if !m.Remove(10) {
		t.Fatalf("expected removal to succeed")
	}
	if m.Remove(10) {
		t.Fatalf("expected second removal to fail")
	}
	if m.Len() != 2 {
		t.Fatalf("got len %d after remove", m.Len())
	}
}

func TestColumnMapSetOverwrites(t *testing.T) {
	m := NewColumnMap[int]()
	m.Set(1, 100)
	m.Set(1, 200)
	if v, _ := m.Get(1); v != 200 {
		t.Fatalf("got %d, want 200", v)
	}
	if m.Len() != 1 {
		t.Fatalf("expected single entry, got %d", m.Len())
	}
}
