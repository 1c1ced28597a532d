package controller

import "vellum/grid"

// Apply inserts a fully-formed sheet into the grid.
func (op AddSheet) Apply(c *Controller) (Operation, error) {
	if _, exists := c.Grid.Sheets[op.Sheet.Id]; exists {
		// Structural precondition failure: duplicate id. Skip silently so
		// a replayed AddSheet is idempotent (spec §7).
		return nil, nil
	}
	c.Grid.AddSheet(op.Sheet)
	return DeleteSheet{SheetId: op.Sheet.Id}, nil
}

// Apply constructs and inserts a sheet from a (possibly migrated) schema.
func (op AddSheetSchema) Apply(c *Controller) (Operation, error) {
	s := grid.NewSheet(op.Schema.Name, op.Schema.OrderKey)
	s.Color = op.Schema.Color
	c.Grid.AddSheet(s)
	return DeleteSheet{SheetId: s.Id}, nil
}

// Apply removes a sheet by id. If this would leave the grid with no sheets
// at all, a fresh empty one is auto-created in its place (spec §3
// lifecycle: "deleting the last sheet in a user transaction auto-creates a
// fresh empty sheet") so the reverse restores the original rather than the
// auto-created stand-in.
func (op DeleteSheet) Apply(c *Controller) (Operation, error) {
	removed := c.Grid.DeleteSheet(op.SheetId)
	if removed == nil {
		return nil, nil
	}
	if len(c.Grid.Sheets) == 0 {
		c.Grid.AddSheet(grid.NewSheet("Sheet1", grid.KeyBetween("", "")))
	}
	return AddSheet{Sheet: removed}, nil
}

// Apply deep-copies SheetId into a new sheet with id NewSheetId, inserted
// immediately after the source with a freshly computed order key and a
// unique "X Copy" name.
func (op DuplicateSheet) Apply(c *Controller) (Operation, error) {
	src, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	if _, exists := c.Grid.Sheets[op.NewSheetId]; exists {
		return nil, nil
	}
	var rightKey string
	ordered := c.Grid.OrderedSheets()
	for i, s := range ordered {
		if s.Id == op.SheetId && i+1 < len(ordered) {
			rightKey = ordered[i+1].OrderKey
			break
		}
	}
	copySheet := src.Clone()
	copySheet.Id = op.NewSheetId
	copySheet.Name = c.Grid.UniqueName(src.Name)
	copySheet.OrderKey = grid.KeyBetween(src.OrderKey, rightKey)
	c.Grid.AddSheet(copySheet)
	return DeleteSheet{SheetId: op.NewSheetId}, nil
}

// Apply moves Target to NewOrderKey in the tab order.
func (op ReorderSheet) Apply(c *Controller) (Operation, error) {
	s, ok := c.Grid.Sheets[op.Target]
	if !ok {
		return nil, nil
	}
	old := s.OrderKey
	s.OrderKey = op.NewOrderKey
	return ReorderSheet{Target: op.Target, NewOrderKey: old}, nil
}

// Apply renames a sheet.
func (op SetSheetName) Apply(c *Controller) (Operation, error) {
	s, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	old := s.Name
	s.Name = op.Name
	return SetSheetName{SheetId: op.SheetId, Name: old}, nil
}

// Apply recolors a sheet's tab.
func (op SetSheetColor) Apply(c *Controller) (Operation, error) {
	s, ok := c.Grid.Sheets[op.SheetId]
	if !ok {
		return nil, nil
	}
	old := s.Color
	s.Color = op.Color
	return SetSheetColor{SheetId: op.SheetId, Color: old}, nil
}
