package controller

import (
	"errors"
	"log"

	"vellum/geom"
	"vellum/grid"
)

// ErrSheetNotFound is returned, or used to decide a silent skip, when an
// operation names a sheet the grid does not contain.
var ErrSheetNotFound = errors.New("controller: sheet not found")

// ErrValidationRejected is returned when a stop-style validation rule
// rejects an incoming cell value; the caller must not treat it as a reverse
// op to undo.
var ErrValidationRejected = errors.New("controller: value rejected by validation")

// Controller is the single entry point for grid mutation. It owns the grid
// model, the undo/redo stacks, the dependency graph, and the "cells to
// compute" work list, and drives recomputation after every committed
// transaction.
type Controller struct {
	Grid *grid.Grid

	UndoStack []*Transaction
	RedoStack []*Transaction
	// Log is the forward transaction log, append-only, used for broadcast
	// and persistence. Server-replayed transactions are appended here too
	// but never touch UndoStack/RedoStack.
	Log []*Transaction

	Deps *DepGraph

	nextSeq uint64
	current *Transaction
}

// New returns a controller over an empty grid with a single default sheet.
func New() *Controller {
	g := grid.NewGrid()
	sheet := grid.NewSheet("Sheet1", grid.KeyBetween("", ""))
	g.AddSheet(sheet)
	return &Controller{
		Grid: g,
		Deps: NewDepGraph(),
	}
}

// Execute applies op as a new transaction with the given source
// classification and cursor snapshot, driving the compute loop to
// completion (or until an async code cell suspends it) before returning.
func (c *Controller) Execute(op Operation, source TransactionSource, cursor CursorSnapshot) (*Transaction, error) {
	tx := NewTransaction(source, cursor)
	c.current = tx
	defer func() { c.current = nil }()

	if err := c.applyWithCompute(tx, []Operation{op}); err != nil {
		return tx, err
	}

	c.nextSeq++
	tx.SequenceNum = c.nextSeq
	c.Log = append(c.Log, tx)

	switch source {
	case SourceUser:
		c.UndoStack = append(c.UndoStack, tx)
		c.RedoStack = nil
	case SourceUndo:
		c.RedoStack = append(c.RedoStack, tx)
	case SourceRedo:
		c.UndoStack = append(c.UndoStack, tx)
	}
	return tx, nil
}

// ExecuteBatch applies ops in order as one transaction, exactly like
// Execute but for the multi-operation edits (e.g. installing a code cell,
// which pairs SetCodeRun with the DataTable it anchors) that the host needs
// to undo/redo as a single unit.
func (c *Controller) ExecuteBatch(ops []Operation, source TransactionSource, cursor CursorSnapshot) (*Transaction, error) {
	tx := NewTransaction(source, cursor)
	c.current = tx
	defer func() { c.current = nil }()

	if err := c.applyWithCompute(tx, ops); err != nil {
		return tx, err
	}

	c.nextSeq++
	tx.SequenceNum = c.nextSeq
	c.Log = append(c.Log, tx)

	switch source {
	case SourceUser:
		c.UndoStack = append(c.UndoStack, tx)
		c.RedoStack = nil
	case SourceUndo:
		c.RedoStack = append(c.RedoStack, tx)
	case SourceRedo:
		c.UndoStack = append(c.UndoStack, tx)
	}
	return tx, nil
}

// SetCodeCell installs a code or formula cell at pos as a single user
// transaction: the CellValue::Code source plus the DataTable it anchors
// (spec §3: "a CellValue::Code at position P is paired one-to-one with a
// DataTable anchored at P").
func (c *Controller) SetCodeCell(sheetId geom.SheetId, pos geom.Position, language, source string) (*Transaction, error) {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return nil, ErrSheetNotFound
	}
	ops := []Operation{SetCodeRun{Sheet: sheetId, Pos: pos, Code: &grid.CodeValue{Language: language, Source: source}}}
	if _, exists := sheet.Tables.Get(pos); !exists {
		ops = append(ops, InsertDataTable{Sheet: sheetId, Index: -1, Anchor: pos, Table: &grid.DataTable{
			Name: "Table" + pos.String(), Anchor: pos,
			Kind: kindForLanguage(language), Width: 1, Height: 1,
			Values: [][]grid.CellValue{{grid.Blank}},
		}})
	}
	return c.ExecuteBatch(ops, SourceUser, CursorSnapshot{})
}

// DeleteCodeCell removes a code/formula cell and the DataTable anchored at
// its position as a single transaction.
func (c *Controller) DeleteCodeCell(sheetId geom.SheetId, pos geom.Position) (*Transaction, error) {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return nil, ErrSheetNotFound
	}
	ops := []Operation{SetCodeRun{Sheet: sheetId, Pos: pos, Code: nil}}
	if _, exists := sheet.Tables.Get(pos); exists {
		ops = append(ops, DeleteDataTable{Sheet: sheetId, Pos: pos})
	}
	return c.ExecuteBatch(ops, SourceUser, CursorSnapshot{})
}

// applyWithCompute executes ops in order against tx, then drains the
// dependency-ordered compute queue those operations enqueued, appending any
// transient recomputation operations to the same transaction (spec §4.3:
// "transient internal" transactions are scheduled on the same transaction).
func (c *Controller) applyWithCompute(tx *Transaction, ops []Operation) error {
	for _, op := range ops {
		rev, err := op.Apply(c)
		if err != nil {
			return err
		}
		tx.record(op, rev)
	}
	c.drainCompute(tx)
	return nil
}

// drainCompute pops cells from the dependency graph's work list and
// re-evaluates their code cells until it is empty or a cell suspends
// waiting on an external async run.
func (c *Controller) drainCompute(tx *Transaction) {
	for {
		pos, ok := c.Deps.PopQueue()
		if !ok {
			return
		}
		sheet, ok := c.Grid.Sheets[pos.Sheet]
		if !ok {
			continue
		}
		dt, ok := sheet.Tables.Get(pos.Position)
		if !ok {
			continue
		}
		if dt.Kind != grid.TableFromFormula {
			// Only formula-driven tables recompute synchronously here;
			// code-cell runs are resumed externally via
			// CalculationComplete.
			continue
		}
		c.recomputeFormulaTable(tx, pos, sheet, dt)
	}
}

// CalculationComplete resumes the compute loop after an async code cell
// (Python/JavaScript) finishes running on the host, clearing the suspend
// marker and applying the run's result as a SetCodeRun + SetDataTable pair
// recorded transiently on a fresh internal transaction.
func (c *Controller) CalculationComplete(sheetId geom.SheetId, pos geom.Position, run *grid.CodeRun, table *grid.DataTable) (*Transaction, error) {
	tx := NewTransaction(SourceTransientInternal, CursorSnapshot{})
	c.current = tx
	defer func() { c.current = nil }()

	var code *grid.CodeValue
	if sheet, ok := c.Grid.Sheets[sheetId]; ok {
		if cv := sheet.GetCell(pos); cv.Kind == grid.ValueCode {
			existing := cv.Code
			code = &existing
		}
	}
	ops := []Operation{
		SetCodeRun{Sheet: sheetId, Pos: pos, Code: code, Run: run},
		SetDataTable{Sheet: sheetId, Pos: pos, Table: table, Index: c.tableIndexOrAppend(sheetId, pos)},
	}
	if err := c.applyWithCompute(tx, ops); err != nil {
		return tx, err
	}
	c.Log = append(c.Log, tx)
	return tx, nil
}

// BeginCodeRun starts an async (Python/JavaScript) code cell run: it marks
// the cell's CodeRun as waiting for the host to execute it out-of-process
// and returns the language/source to run. The compute loop makes no further
// progress on this cell until CalculationComplete resumes it (spec §4.4,
// §9 "Async code cells").
func (c *Controller) BeginCodeRun(sheetId geom.SheetId, pos geom.Position) (language, source string, ok bool) {
	sheet, exists := c.Grid.Sheets[sheetId]
	if !exists {
		return "", "", false
	}
	cv := sheet.GetCell(pos)
	if cv.Kind != grid.ValueCode || cv.Code.Language == "formula" {
		return "", "", false
	}
	run := sheet.CodeRuns[pos]
	if run == nil {
		run = &grid.CodeRun{}
		sheet.CodeRuns[pos] = run
	}
	run.Language = cv.Code.Language
	run.Source = cv.Code.Source
	run.WaitingForAsync = cv.Code.Language
	return cv.Code.Language, cv.Code.Source, true
}

func (c *Controller) tableIndexOrAppend(sheetId geom.SheetId, pos geom.Position) int {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return -1
	}
	if idx := sheet.Tables.IndexOf(pos); idx >= 0 {
		return idx
	}
	return -1
}

// Undo pops the most recent user transaction and replays its reverse
// operations as a new transaction pushed to the redo stack.
func (c *Controller) Undo() (*Transaction, bool) {
	if len(c.UndoStack) == 0 {
		return nil, false
	}
	last := c.UndoStack[len(c.UndoStack)-1]
	c.UndoStack = c.UndoStack[:len(c.UndoStack)-1]

	tx := NewTransaction(SourceUndo, last.CursorSnapshot)
	c.current = tx
	if err := c.applyWithCompute(tx, last.Reversed()); err != nil {
		log.Printf("controller: undo failed: %v", err)
	}
	c.current = nil
	c.nextSeq++
	tx.SequenceNum = c.nextSeq
	c.Log = append(c.Log, tx)
	c.RedoStack = append(c.RedoStack, tx)
	return tx, true
}

// Redo pops the most recent undone transaction and replays its reverse
// (which is the original forward intent) as a new transaction pushed back
// to the undo stack.
func (c *Controller) Redo() (*Transaction, bool) {
	if len(c.RedoStack) == 0 {
		return nil, false
	}
	last := c.RedoStack[len(c.RedoStack)-1]
	c.RedoStack = c.RedoStack[:len(c.RedoStack)-1]

	tx := NewTransaction(SourceRedo, last.CursorSnapshot)
	c.current = tx
	if err := c.applyWithCompute(tx, last.Reversed()); err != nil {
		log.Printf("controller: redo failed: %v", err)
	}
	c.current = nil
	c.nextSeq++
	tx.SequenceNum = c.nextSeq
	c.Log = append(c.Log, tx)
	c.UndoStack = append(c.UndoStack, tx)
	return tx, true
}

// ApplyReplayed executes operations received from a multiplayer peer. It
// never touches the undo/redo stacks (spec §4.3: server-replayed
// transactions must not touch local undo/redo stacks).
func (c *Controller) ApplyReplayed(ops []Operation, sequenceNum uint64) (*Transaction, error) {
	tx := NewTransaction(SourceServerReplayed, CursorSnapshot{})
	tx.SequenceNum = sequenceNum
	c.current = tx
	defer func() { c.current = nil }()
	if err := c.applyWithCompute(tx, ops); err != nil {
		return tx, err
	}
	c.Log = append(c.Log, tx)
	return tx, nil
}
