// Package geom implements the geometry primitives that every other package
// in the core builds on: cell positions, rectangles, sheet identifiers, and
// A1 textual addressing.
package geom

import (
	"fmt"

	"github.com/google/uuid"
)

// SheetId is an opaque unique identifier for a sheet. Only equality and
// hashability matter; there is no meaningful total order.
type SheetId uuid.UUID

// NewSheetId returns a fresh random SheetId.
func NewSheetId() SheetId {
	return SheetId(uuid.New())
}

func (s SheetId) String() string {
	return uuid.UUID(s).String()
}

// Infinity is the sentinel used for unbounded rectangle edges (an
// unbounded-right or unbounded-down axis). It is large enough that real
// sheet coordinates never reach it, but still fits comfortably in an int64.
const Infinity int64 = 1<<62 - 1

// Position is a signed column/row coordinate. The origin is (1,1).
type Position struct {
	X int64 // column
	Y int64 // row
}

// New constructs a Position.
func New(x, y int64) Position { return Position{X: x, Y: y} }

func (p Position) String() string {
	return fmt.Sprintf("%s%d", ColumnName(p.X), p.Y)
}

// Translate returns p shifted by (dx, dy).
func (p Position) Translate(dx, dy int64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// SheetPosition is a Position scoped to a particular sheet.
type SheetPosition struct {
	Sheet SheetId
	Position
}

// ColumnName renders a 1-based column index using bijective base-26 letters:
// 1 -> "A", 26 -> "Z", 27 -> "AA", 702 -> "ZZ", 703 -> "AAA", ...
func ColumnName(col int64) string {
	if col <= 0 {
		return ""
	}
	var buf []byte
	for col > 0 {
		col--
		buf = append([]byte{byte('A' + col%26)}, buf...)
		col /= 26
	}
	return string(buf)
}

// ParseColumnName parses a bijective base-26 column name back to a 1-based
// index. It returns false if s is not composed solely of A-Z letters.
func ParseColumnName(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var col int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		col = col*26 + int64(c-'A'+1)
	}
	return col, true
}
