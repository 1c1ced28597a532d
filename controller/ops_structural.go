package controller

import (
	"vellum/formula"
	"vellum/geom"
	"vellum/grid"
)

// Apply sets a column's pixel width.
func (op ResizeColumn) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	old, _ := sheet.ColumnWidths.Get(op.Index)
	sheet.ColumnWidths.Set(op.Index, op.Size)
	return ResizeColumn{SheetId: op.SheetId, Index: op.Index, Size: old}, nil
}

// Apply sets a row's pixel height.
func (op ResizeRow) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	old, _ := sheet.RowHeights.Get(op.Index)
	sheet.RowHeights.Set(op.Index, op.Size)
	return ResizeRow{SheetId: op.SheetId, Index: op.Index, Size: old}, nil
}

// Apply attaches a validation rule to a sheet.
func (op AddValidation) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	sheet.Validations = append(sheet.Validations, op.Validation)
	return RemoveValidation{SheetId: op.SheetId, ValidationId: op.Validation.Id}, nil
}

// Apply detaches a validation rule by id.
func (op RemoveValidation) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	for i, v := range sheet.Validations {
		if v.Id == op.ValidationId {
			sheet.Validations = append(sheet.Validations[:i:i], sheet.Validations[i+1:]...)
			return AddValidation{SheetId: op.SheetId, Validation: v}, nil
		}
	}
	return nil, nil
}

// Apply changes the scope of an existing validation rule.
func (op SetValidationSelection) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	for i, v := range sheet.Validations {
		if v.Id == op.ValidationId {
			old := v.Selection
			sheet.Validations[i].Selection = op.Selection
			return SetValidationSelection{SheetId: op.SheetId, ValidationId: op.ValidationId, Selection: old}, nil
		}
	}
	return nil, nil
}

// Apply performs the three-pass structural insert described in spec §4.3:
// (1) rewrite formula references, (2) shift stored content, (3) queue
// recomputation for anything whose accessed set may have shifted.
func (op InsertColumn) Apply(c *Controller) (Operation, error) {
	return c.structuralShift(op.SheetId, true, op.Index, 1)
}

// Apply removes column Index, shifting later columns left.
func (op DeleteColumn) Apply(c *Controller) (Operation, error) {
	return c.structuralShift(op.SheetId, true, op.Index, -1)
}

// Apply shifts everything at and after Index one row down.
func (op InsertRow) Apply(c *Controller) (Operation, error) {
	return c.structuralShift(op.SheetId, false, op.Index, 1)
}

// Apply removes row Index, shifting later rows up.
func (op DeleteRow) Apply(c *Controller) (Operation, error) {
	return c.structuralShift(op.SheetId, false, op.Index, -1)
}

func (c *Controller) structuralShift(sheetId geom.SheetId, column bool, index, delta int64) (Operation, error) {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return nil, nil
	}

	// Pass 1: rewrite formula source text in every code/formula cell on
	// this sheet before anything moves, so the rewrite sees original
	// positions.
	type rewrite struct {
		pos    geom.Position
		source string
	}
	var rewrites []rewrite
	for col, cm := range sheet.Columns {
		cm.Range(func(row int64, v grid.CellValue) bool {
			if v.Kind == grid.ValueCode && v.Code.Language == "formula" {
				adjusted := formula.AdjustReferences(v.Code.Source, c.Grid, column, index, delta)
				if adjusted != v.Code.Source {
					rewrites = append(rewrites, rewrite{pos: geom.New(col, row), source: adjusted})
				}
			}
			return true
		})
	}
	for _, r := range rewrites {
		cv := sheet.GetCell(r.pos)
		sheet.SetCell(r.pos, grid.NewCode(cv.Code.Language, r.source))
	}

	// Pass 2: shift stored content — cell values, formats, borders, table
	// anchors, code runs — and every validation's scope.
	if column {
		if delta > 0 {
			sheet.InsertColumn(index)
		} else {
			sheet.DeleteColumn(index)
		}
	} else {
		if delta > 0 {
			sheet.InsertRow(index)
		} else {
			sheet.DeleteRow(index)
		}
	}
	for i := range sheet.Validations {
		if column {
			if delta > 0 {
				sheet.Validations[i].Selection.InsertColumn(index)
			} else {
				sheet.Validations[i].Selection.DeleteColumn(index)
			}
		} else {
			if delta > 0 {
				sheet.Validations[i].Selection.InsertRow(index)
			} else {
				sheet.Validations[i].Selection.DeleteRow(index)
			}
		}
	}

	// Pass 3: any formula anywhere in the grid might reference the shifted
	// sheet, and the dependency graph's own recorded positions are now
	// stale, so re-queue every formula table for recomputation rather than
	// trying to patch the graph's coordinates in place.
	for _, s := range c.Grid.Sheets {
		s.Tables.Each(func(pos geom.Position, dt *grid.DataTable) {
			if dt.Kind == grid.TableFromFormula {
				c.Deps.Enqueue(geom.SheetPosition{Sheet: s.Id, Position: pos})
			}
		})
	}
	c.recomputeSpills(sheetId, sheet)

	if column {
		if delta > 0 {
			return DeleteColumn{SheetId: sheetId, Index: index}, nil
		}
		return InsertColumn{SheetId: sheetId, Index: index}, nil
	}
	if delta > 0 {
		return DeleteRow{SheetId: sheetId, Index: index}, nil
	}
	return InsertRow{SheetId: sheetId, Index: index}, nil
}
