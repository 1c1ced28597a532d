package controller

import (
	"vellum/geom"
	"vellum/grid"
)

// Apply installs or clears the code/formula source at Pos and its run
// record, enqueuing its dependents for recomputation.
func (op SetCodeRun) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	var oldCode *grid.CodeValue
	if cv := sheet.GetCell(op.Pos); cv.Kind == grid.ValueCode {
		code := cv.Code
		oldCode = &code
	}
	oldRun := sheet.CodeRuns[op.Pos]

	sp := geom.SheetPosition{Sheet: op.Sheet, Position: op.Pos}
	if op.Code == nil {
		sheet.SetCell(op.Pos, grid.Blank)
		delete(sheet.CodeRuns, op.Pos)
		c.Deps.Remove(sp)
	} else {
		sheet.SetCell(op.Pos, grid.NewCode(op.Code.Language, op.Code.Source))
		sheet.CodeRuns[op.Pos] = op.Run
		if op.Code.Language == "formula" {
			c.Deps.Enqueue(sp)
		}
	}
	c.Deps.EnqueueDependents(sp)
	return SetCodeRun{Sheet: op.Sheet, Pos: op.Pos, Code: oldCode, Run: oldRun}, nil
}

func kindForLanguage(lang string) grid.DataTableKind {
	if lang == "formula" {
		return grid.TableFromFormula
	}
	return grid.TableFromCode
}

// Apply installs, replaces, or (when Table is nil) removes the DataTable
// anchored at Pos, keeping the region index and spill flags in sync.
func (op SetDataTable) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	old, hadOld := sheet.Tables.Get(op.Pos)
	oldIndex := sheet.Tables.IndexOf(op.Pos)

	if op.Table == nil {
		if !hadOld {
			return nil, nil
		}
		sheet.Tables.Remove(op.Pos)
		sheet.RegionIndex.Remove(op.Pos)
		c.Deps.Remove(geom.SheetPosition{Sheet: op.Sheet, Position: op.Pos})
		c.recomputeSpills(op.Sheet, sheet)
		return SetDataTable{Sheet: op.Sheet, Pos: op.Pos, Table: old, Index: oldIndex, IgnoreOld: true}, nil
	}

	index := op.Index
	if index < 0 {
		index = oldIndex
	}
	sheet.Tables.Insert(index, op.Pos, op.Table)
	sheet.RegionIndex.Set(op.Pos, op.Table.DataRect())
	c.recomputeSpills(op.Sheet, sheet)

	var reverseTable *grid.DataTable
	if hadOld {
		reverseTable = old
	}
	return SetDataTable{Sheet: op.Sheet, Pos: op.Pos, Table: reverseTable, Index: oldIndex, IgnoreOld: true}, nil
}

// Apply inserts Table at Anchor, failing silently (spec §7) if the anchor is
// already occupied.
func (op InsertDataTable) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	if _, exists := sheet.Tables.Get(op.Anchor); exists {
		return nil, nil
	}
	sheet.Tables.Insert(op.Index, op.Anchor, op.Table)
	sheet.RegionIndex.Set(op.Anchor, op.Table.DataRect())
	c.recomputeSpills(op.Sheet, sheet)
	return DeleteDataTable{Sheet: op.Sheet, Pos: op.Anchor}, nil
}

// Apply removes the table anchored at Pos.
func (op DeleteDataTable) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	old, exists := sheet.Tables.Get(op.Pos)
	if !exists {
		return nil, nil
	}
	index := sheet.Tables.IndexOf(op.Pos)
	sheet.Tables.Remove(op.Pos)
	sheet.RegionIndex.Remove(op.Pos)
	c.Deps.Remove(geom.SheetPosition{Sheet: op.Sheet, Position: op.Pos})
	c.recomputeSpills(op.Sheet, sheet)
	return InsertDataTable{Sheet: op.Sheet, Index: index, Anchor: op.Pos, Table: old}, nil
}

// Apply relocates the table anchored at OldPos to NewPos, preserving its
// insertion-order index.
func (op MoveDataTable) Apply(c *Controller) (Operation, error) {
	sheet, ok := c.Grid.Sheets[op.Sheet]
	if !ok {
		return nil, nil
	}
	dt, exists := sheet.Tables.Get(op.OldPos)
	if !exists {
		return nil, nil
	}
	if _, occupied := sheet.Tables.Get(op.NewPos); occupied {
		return nil, nil
	}
	index := sheet.Tables.IndexOf(op.OldPos)
	sheet.Tables.Remove(op.OldPos)
	sheet.RegionIndex.Remove(op.OldPos)

	moved := *dt
	moved.Anchor = op.NewPos
	sheet.Tables.Insert(index, op.NewPos, &moved)
	sheet.RegionIndex.Set(op.NewPos, moved.DataRect())
	c.Deps.Remove(geom.SheetPosition{Sheet: op.Sheet, Position: op.OldPos})
	c.recomputeSpills(op.Sheet, sheet)
	return MoveDataTable{Sheet: op.Sheet, OldPos: op.NewPos, NewPos: op.OldPos}, nil
}

// recomputeSpills re-evaluates every table's spill flag in insertion order
// (spec §4.2: "the table with the earlier index owns the cells; the later
// table is marked spill = true") and, for any anchor whose spill state
// actually flipped, enqueues the cells that depend on it, since a flipped
// spill changes what the table's cells display.
func (c *Controller) recomputeSpills(sheetId geom.SheetId, sheet *grid.Sheet) {
	type entry struct {
		pos geom.Position
		dt  *grid.DataTable
	}
	var list []entry
	sheet.Tables.Each(func(pos geom.Position, dt *grid.DataTable) {
		list = append(list, entry{pos, dt})
	})
	for i, e := range list {
		rect := e.dt.DataRect()
		blocked := sheet.HasContentOtherThan(rect, e.pos)
		for j := 0; !blocked && j < i; j++ {
			if list[j].dt.DataRect().Intersects(rect) {
				blocked = true
			}
		}
		if e.dt.Spill != blocked {
			e.dt.Spill = blocked
			c.Deps.EnqueueDependents(geom.SheetPosition{Sheet: sheetId, Position: e.pos})
		}
		sheet.RegionIndex.Set(e.pos, rect)
	}
}
