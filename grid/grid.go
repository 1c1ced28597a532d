package grid

import (
	"fmt"
	"sort"

	"vellum/geom"
)

// Grid is the ordered collection of sheets that makes up one document: a
// SheetId-keyed map plus the name/table lookups needed for A1 reference
// resolution (geom.A1Context).
type Grid struct {
	Sheets map[geom.SheetId]*Sheet
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{Sheets: make(map[geom.SheetId]*Sheet)}
}

// OrderedSheets returns every sheet sorted by OrderKey, the sheet tab order.
func (g *Grid) OrderedSheets() []*Sheet {
	out := make([]*Sheet, 0, len(g.Sheets))
	for _, s := range g.Sheets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderKey < out[j].OrderKey })
	return out
}

// AddSheet inserts s into the grid.
func (g *Grid) AddSheet(s *Sheet) {
	g.Sheets[s.Id] = s
}

// DeleteSheet removes the sheet with the given id. Returns the removed
// sheet, or nil if none existed (callers treat a missing sheet as a
// structural precondition failure: skip silently, no reverse op).
func (g *Grid) DeleteSheet(id geom.SheetId) *Sheet {
	s, ok := g.Sheets[id]
	if !ok {
		return nil
	}
	delete(g.Sheets, id)
	return s
}

// UniqueName returns a name derived from base that does not collide with
// any existing sheet name, trying "base", "base Copy", "base Copy 1", ...
func (g *Grid) UniqueName(base string) string {
	candidate := base
	if !g.nameTaken(candidate) {
		return candidate
	}
	candidate = base + " Copy"
	if !g.nameTaken(candidate) {
		return candidate
	}
	for i := 1; ; i++ {
		candidate = fmt.Sprintf("%s Copy %d", base, i)
		if !g.nameTaken(candidate) {
			return candidate
		}
	}
}

func (g *Grid) nameTaken(name string) bool {
	for _, s := range g.Sheets {
		if s.Name == name {
			return true
		}
	}
	return false
}

// LookupTable implements geom.A1Context: scans every sheet's tables for a
// matching name. Table names are unique across the document.
func (g *Grid) LookupTable(name string) (geom.TableRegion, bool) {
	for _, s := range g.Sheets {
		var found *DataTable
		var anchor geom.Position
		s.Tables.Each(func(pos geom.Position, dt *DataTable) {
			if found == nil && dt.Name == name {
				found, anchor = dt, pos
			}
		})
		if found != nil {
			cols := make([]string, len(found.Columns))
			for i, c := range found.Columns {
				cols[i] = c.Name
			}
			rect := found.DataRect()
			if found.ShowName {
				rect.Min.Y++
			}
			if found.ShowColumns {
				rect.Min.Y++
			}
			return geom.TableRegion{
				Sheet:        s.Id,
				Anchor:       anchor,
				DataRect:     rect,
				Columns:      cols,
				HasHeaderRow: found.ShowColumns,
				HasTotalsRow: false,
			}, true
		}
	}
	return geom.TableRegion{}, false
}

// LookupSheet implements geom.A1Context: resolves a sheet by its display
// name.
func (g *Grid) LookupSheet(name string) (geom.SheetId, bool) {
	for _, s := range g.Sheets {
		if s.Name == name {
			return s.Id, true
		}
	}
	return geom.SheetId{}, false
}

// SheetName implements geom.A1Context.
func (g *Grid) SheetName(id geom.SheetId) string {
	if s, ok := g.Sheets[id]; ok {
		return s.Name
	}
	return ""
}

// KeyBetween returns a fractional-index string strictly between left and
// right (either may be empty, meaning "no neighbor on that side"), so
// inserting or moving a sheet never requires renumbering others. Uses a
// simple base-36 midpoint digit-string scheme.
func KeyBetween(left, right string) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if left == "" && right == "" {
		return "m"
	}
	if left == "" {
		return prefixDecrement(right, digits)
	}
	if right == "" {
		return left + "m"
	}
	return midpoint(left, right, digits)
}

func prefixDecrement(s, digits string) string {
	if s == "" {
		return string(digits[len(digits)/2])
	}
	first := s[0]
	idx := indexByte(digits, first)
	if idx > 0 {
		return string(digits[idx/2])
	}
	return string(digits[0]) + prefixDecrement(s[1:], digits)
}

func midpoint(left, right, digits string) string {
	i := 0
	for {
		var lc, rc byte
		if i < len(left) {
			lc = left[i]
		} else {
			lc = digits[0]
		}
		if i < len(right) {
			rc = right[i]
		} else {
			rc = digits[len(digits)-1]
		}
		li, ri := indexByte(digits, lc), indexByte(digits, rc)
		if ri-li > 1 {
			mid := digits[li+(ri-li)/2]
			return left[:i] + string(mid)
		}
		if li == ri {
			i++
			continue
		}
		// adjacent digits: keep left's prefix through i, then descend
		return left[:min(i+1, len(left))] + midpoint(sub(left, i+1), "", digits)
	}
}

func sub(s string, i int) string {
	if i >= len(s) {
		return ""
	}
	return s[i:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
