package controller

import (
	"vellum/formula"
	"vellum/geom"
	"vellum/grid"
)

// evalCtx adapts one sheet/position pair to formula.EvalContext, recording
// every cell and range it reads so RecordAccesses can rebuild the reverse
// dependency index after the formula finishes.
type evalCtx struct {
	c        *Controller
	sheet    geom.SheetId
	pos      geom.Position
	accessed []geom.SheetPosition
}

func (e *evalCtx) Sheet() geom.SheetId { return e.sheet }
func (e *evalCtx) Pos() geom.Position  { return e.pos }
func (e *evalCtx) A1() geom.A1Context  { return e.c.Grid }

func (e *evalCtx) GetCell(sp geom.SheetPosition) grid.CellValue {
	e.accessed = append(e.accessed, sp)
	sheet, ok := e.c.Grid.Sheets[sp.Sheet]
	if !ok {
		return grid.NewError(grid.ErrRef, "no such sheet")
	}
	if v := sheet.GetCell(sp.Position); !v.IsBlank() {
		return v
	}
	for _, dt := range sheetTables(sheet) {
		if dt.table.VisibleRect().Contains(sp.Position) && !dt.table.Spill {
			return dt.valueAt(sp.Position)
		}
	}
	return grid.Blank
}

func (e *evalCtx) GetRange(sheet geom.SheetId, rect geom.Rect) [][]grid.CellValue {
	e.accessed = append(e.accessed, geom.SheetPosition{Sheet: sheet, Position: rect.Min})
	w, h := rect.Width(), rect.Height()
	out := make([][]grid.CellValue, h)
	for y := int64(0); y < h; y++ {
		out[y] = make([]grid.CellValue, w)
		for x := int64(0); x < w; x++ {
			out[y][x] = e.GetCell(geom.SheetPosition{Sheet: sheet, Position: geom.New(rect.Min.X+x, rect.Min.Y+y)})
		}
	}
	return out
}

type anchoredTable struct {
	pos   geom.Position
	table *grid.DataTable
}

func (a anchoredTable) valueAt(pos geom.Position) grid.CellValue {
	headerRows := int64(0)
	if a.table.ShowName {
		headerRows++
	}
	if a.table.ShowColumns {
		headerRows++
	}
	row := pos.Y - a.table.Anchor.Y - headerRows
	col := pos.X - a.table.Anchor.X
	return a.table.Get(col, row)
}

func sheetTables(sheet *grid.Sheet) []anchoredTable {
	var out []anchoredTable
	sheet.Tables.Each(func(pos geom.Position, dt *grid.DataTable) {
		out = append(out, anchoredTable{pos: pos, table: dt})
	})
	return out
}

// recomputeFormulaTable re-evaluates the formula at pos, turning its result
// into the DataTable's new Values (or a cycle/evaluation error at the
// anchor), and enqueues its dependents. Spill is re-derived afterward by
// recomputeSpills since a shrinking/growing array can change which tables
// occlude which.
func (c *Controller) recomputeFormulaTable(tx *Transaction, pos geom.SheetPosition, sheet *grid.Sheet, dt *grid.DataTable) {
	if c.Deps.BeginEvaluating(pos) {
		c.setTableError(tx, pos, sheet, dt, grid.CellError{Kind: grid.ErrCycle, Message: "circular reference"})
		return
	}
	defer c.Deps.EndEvaluating(pos)

	cv := sheet.GetCell(pos.Position)
	if cv.Kind != grid.ValueCode || cv.Code.Language != "formula" {
		return
	}

	ctx := &evalCtx{c: c, sheet: pos.Sheet, pos: pos.Position}
	val, err := formula.Eval(cv.Code.Source, ctx)
	c.Deps.RecordAccesses(pos, ctx.accessed)

	if err != nil {
		c.setTableError(tx, pos, sheet, dt, grid.CellError{Kind: grid.ErrParse, Message: err.Error()})
		return
	}

	w, h := val.Shape()
	values := make([][]grid.CellValue, h)
	for y := 0; y < h; y++ {
		values[y] = make([]grid.CellValue, w)
		for x := 0; x < w; x++ {
			values[y][x] = val.At(x, y)
		}
	}

	updated := *dt
	updated.Width, updated.Height = int64(w), int64(h)
	updated.Values = values

	op := SetDataTable{Sheet: pos.Sheet, Pos: pos.Position, Table: &updated, Index: sheet.Tables.IndexOf(pos.Position), IgnoreOld: true}
	rev, applyErr := op.Apply(c)
	if applyErr != nil {
		return
	}
	tx.record(op, rev)
	c.Deps.EnqueueDependents(pos)
}

func (c *Controller) setTableError(tx *Transaction, pos geom.SheetPosition, sheet *grid.Sheet, dt *grid.DataTable, cellErr grid.CellError) {
	updated := *dt
	updated.Width, updated.Height = 1, 1
	updated.Values = [][]grid.CellValue{{grid.CellValue{Kind: grid.ValueError, Err: cellErr}}}
	op := SetDataTable{Sheet: pos.Sheet, Pos: pos.Position, Table: &updated, Index: sheet.Tables.IndexOf(pos.Position), IgnoreOld: true}
	rev, err := op.Apply(c)
	if err != nil {
		return
	}
	tx.record(op, rev)
	c.Deps.EnqueueDependents(pos)
}

// EnqueueFormula schedules pos for recomputation. Nothing in this package
// calls it: SetCodeRun enqueues formula cells through c.Deps directly.
func (c *Controller) EnqueueFormula(sheetId geom.SheetId, pos geom.Position) {
	c.Deps.Enqueue(geom.SheetPosition{Sheet: sheetId, Position: pos})
}
