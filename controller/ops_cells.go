package controller

import (
	"vellum/geom"
	"vellum/grid"
	"vellum/store"
)

// Apply overwrites every cell in Rect, returning the previous contents as
// the reverse SetCellValues. Out-of-range entries in Values are treated as
// blank.
func (op SetCellValues) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	w, h := op.Rect.Width(), op.Rect.Height()
	prev := make([][]grid.CellValue, h)
	anyApplied := false
	for y := int64(0); y < h; y++ {
		prev[y] = make([]grid.CellValue, w)
		for x := int64(0); x < w; x++ {
			var v grid.CellValue
			if y < int64(len(op.Values)) && x < int64(len(op.Values[y])) {
				v = op.Values[y][x]
			}
			pos := geom.New(op.Rect.Min.X+x, op.Rect.Min.Y+y)
			prev[y][x] = sheet.GetCell(pos)
			if rejected := c.checkValidation(op.Sheet, sheet, pos, v); rejected {
				prev[y][x] = sheet.GetCell(pos) // unchanged: reverse == current
				continue
			}
			sheet.SetCell(pos, v)
			anyApplied = true
			c.Deps.EnqueueDependents(geom.SheetPosition{Sheet: op.Sheet, Position: pos})
		}
	}
	if !anyApplied {
		// Every cell in the rect was rejected by a stop-style validation:
		// spec §7 — no reverse op is produced for a rejected change.
		return nil, ErrValidationRejected
	}
	c.recomputeSpills(op.Sheet, sheet)
	return SetCellValues{Sheet: op.Sheet, Rect: op.Rect, Values: prev}, nil
}

// checkValidation consults the first rule in sheet.Validations whose scope
// contains pos. A stop-style violation rejects the write and reports true
// (do not apply). warning/info styles record the hit and return false
// (accept and apply) — spec §4.6.
func (c *Controller) checkValidation(sheetId geom.SheetId, sheet *grid.Sheet, pos geom.Position, value grid.CellValue) (rejected bool) {
	for i, v := range sheet.Validations {
		if !v.Selection.Contains(sheetId, pos, c.Grid) {
			continue
		}
		var listSource []string
		if v.Kind == grid.ValidationListSource && v.ListSourceSelection != nil {
			listSource = c.resolveListSource(sheetId, *v.ListSourceSelection)
		}
		if v.Check(value, listSource) {
			sheet.ClearValidationWarning(pos)
			return false
		}
		switch v.ErrorStyle {
		case grid.ErrorStyleStop:
			return true
		default:
			sheet.RecordValidationWarning(pos, i, v.ErrorMessage)
			return false
		}
	}
	return false
}

// resolveListSource reads every non-blank cell text in sel's ranges on
// sheetId, used by ValidationListSource rules.
func (c *Controller) resolveListSource(sheetId geom.SheetId, sel geom.A1Selection) []string {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return nil
	}
	var out []string
	for _, r := range sel.Ranges {
		if r.IsTable {
			continue
		}
		rect := r.Sheet.Rect()
		w, h := rect.Width(), rect.Height()
		for y := int64(0); y < h; y++ {
			for x := int64(0); x < w; x++ {
				v := sheet.GetCell(geom.New(rect.Min.X+x, rect.Min.Y+y))
				if !v.IsBlank() {
					out = append(out, v.Inspect())
				}
			}
		}
	}
	return out
}

// Apply patches the per-cell format overlay at each update's position,
// replacing it wholesale (the caller is responsible for pre-merging with
// the prior effective format when a partial patch is desired).
func (op SetCellFormats) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	oldUpdates := make([]FormatUpdate, len(op.Updates))
	for i, u := range op.Updates {
		oldUpdates[i] = FormatUpdate{Pos: u.Pos, Format: sheet.CellFormats.Get(u.Pos.X, u.Pos.Y)}
		sheet.CellFormats.SetRect(geom.SinglePos(u.Pos), u.Format)
	}
	return SetCellFormats{Sheet: op.Sheet, Selection: op.Selection, Updates: oldUpdates}, nil
}

// Apply overwrites every cell format in Rect with Format, returning a
// restoreCellFormats that replays the exact prior layout on undo.
func (op SetCellFormatsLegacy) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	diff := sheet.CellFormats.UpdateWithReverse(op.Rect, op.Format)
	return restoreCellFormats{Sheet: op.Sheet, Rect: op.Rect, Diff: diff}, nil
}

// restoreCellFormats is the internal reverse of SetCellFormatsLegacy (and of
// itself, for redo): it clears Rect back to the unset default and overlays
// Diff's recorded non-zero runs on top, since Contiguous2D.Iterate never
// yields zero-value runs and so cannot express "this region was unset" on
// its own.
type restoreCellFormats struct {
	Sheet geom.SheetId
	Rect  geom.Rect
	Diff  *store.Contiguous2D[grid.Format]
}

func (restoreCellFormats) Kind() string { return "RestoreCellFormats" }

func (op restoreCellFormats) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	var zero grid.Format
	reverse := sheet.CellFormats.UpdateWithReverse(op.Rect, zero)
	op.Diff.Iterate(func(r geom.Rect, v grid.Format) {
		sheet.CellFormats.SetRect(r, v)
	})
	return restoreCellFormats{Sheet: op.Sheet, Rect: op.Rect, Diff: reverse}, nil
}

func edgeContainer(sheet *grid.Sheet, edge BorderEdge) *store.Contiguous2D[grid.BorderStyle] {
	switch edge {
	case BorderLeft:
		return sheet.Borders.Left
	case BorderRight:
		return sheet.Borders.Right
	case BorderTop:
		return sheet.Borders.Top
	default:
		return sheet.Borders.Bottom
	}
}

// Apply paints Style across Rect on one edge, returning a restoreBorders
// that replays the exact prior layout on undo.
func (op SetBorders) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	diff := edgeContainer(sheet, op.Edge).UpdateWithReverse(op.Rect, op.Style)
	return restoreBorders{Sheet: op.Sheet, Edge: op.Edge, Rect: op.Rect, Diff: diff}, nil
}

// restoreBorders mirrors restoreCellFormats for the four border overlays.
type restoreBorders struct {
	Sheet geom.SheetId
	Edge  BorderEdge
	Rect  geom.Rect
	Diff  *store.Contiguous2D[grid.BorderStyle]
}

func (restoreBorders) Kind() string { return "RestoreBorders" }

func (op restoreBorders) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	var zero grid.BorderStyle
	container := edgeContainer(sheet, op.Edge)
	reverse := container.UpdateWithReverse(op.Rect, zero)
	op.Diff.Iterate(func(r geom.Rect, v grid.BorderStyle) {
		container.SetRect(r, v)
	})
	return restoreBorders{Sheet: op.Sheet, Edge: op.Edge, Rect: op.Rect, Diff: reverse}, nil
}
