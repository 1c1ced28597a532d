// Command gridctl is an interactive line-mode client for the grid engine,
// in the same raw-terminal REPL idiom the teacher used for its language
// shell: type a command, see the result, Ctrl+D to exit. It exercises the
// controller end to end (cell edits, formulas, undo/redo, sheet
// management) without any of the multiplayer or rendering machinery.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"vellum/controller"
	"vellum/geom"
	"vellum/grid"
)

func main() {
	c := controller.New()
	sheet := firstSheet(c)

	out := os.Stdout
	tty, isTTY := newTTYInput(os.Stdin, out)
	if isTTY {
		defer tty.Close()
		runTTY(c, &sheet, tty, out)
		return
	}
	runPiped(c, &sheet, out)
}

// runTTY drives the raw-mode line editor; runPiped is the fallback used
// when stdin/stdout aren't a terminal (pipes, redirected files, tests).
func runTTY(c *controller.Controller, sheet *geom.SheetId, tty *ttyInput, out io.Writer) {
	fmt.Fprintln(out, "gridctl — type `help` for commands, Ctrl+D to quit")
	for {
		line, ok := tty.readLine(prompt(c, *sheet))
		if !ok {
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if dispatch(c, sheet, line, out) == errQuit {
			return
		}
	}
}

func runPiped(c *controller.Controller, sheet *geom.SheetId, out io.Writer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if dispatch(c, sheet, line, out) == errQuit {
			return
		}
	}
}

func prompt(c *controller.Controller, sheet geom.SheetId) string {
	return fmt.Sprintf("%s> ", c.Grid.SheetName(sheet))
}

type dispatchResult int

const (
	ok dispatchResult = iota
	errQuit
)

func dispatch(c *controller.Controller, sheet *geom.SheetId, line string, out io.Writer) dispatchResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ok
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		printHelp(out)
	case "sheets":
		for _, s := range c.Grid.OrderedSheets() {
			marker := "  "
			if s.Id == *sheet {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s\n", marker, s.Name)
		}
	case "addsheet":
		name := "Sheet"
		if len(args) > 0 {
			name = args[0]
		}
		newSheet := grid.NewSheet(c.Grid.UniqueName(name), grid.KeyBetween(lastOrderKey(c), ""))
		if _, err := c.Execute(controller.AddSheet{Sheet: newSheet}, controller.SourceUser, controller.CursorSnapshot{}); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return ok
		}
		*sheet = newSheet.Id
	case "use":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: use <sheet-name>")
			return ok
		}
		if id, found := c.Grid.LookupSheet(args[0]); found {
			*sheet = id
		} else {
			fmt.Fprintf(out, "no such sheet %q\n", args[0])
		}
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(out, "usage: set <cell> <value>")
			return ok
		}
		setCell(c, *sheet, args[0], strings.Join(args[1:], " "), out)
	case "get":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: get <cell>")
			return ok
		}
		getCell(c, *sheet, args[0], out)
	case "undo":
		if _, did := c.Undo(); !did {
			fmt.Fprintln(out, "nothing to undo")
		}
	case "redo":
		if _, did := c.Redo(); !did {
			fmt.Fprintln(out, "nothing to redo")
		}
	default:
		fmt.Fprintf(out, "unknown command %q (try `help`)\n", cmd)
	}
	return ok
}

func lastOrderKey(c *controller.Controller) string {
	sheets := c.Grid.OrderedSheets()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[len(sheets)-1].OrderKey
}

func firstSheet(c *controller.Controller) geom.SheetId {
	sheets := c.Grid.OrderedSheets()
	return sheets[0].Id
}

func setCell(c *controller.Controller, sheet geom.SheetId, cellRef, literal string, out io.Writer) {
	pos, err := parseCellRef(c, sheet, cellRef)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if strings.HasPrefix(literal, "=") {
		if _, err := c.SetCodeCell(sheet, pos, "formula", literal[1:]); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		return
	}
	rect := geom.NewRect(pos.X, pos.Y, pos.X, pos.Y)
	op := controller.SetCellValues{Sheet: sheet, Rect: rect, Values: [][]grid.CellValue{{parseLiteral(literal)}}}
	if _, err := c.Execute(op, controller.SourceUser, controller.CursorSnapshot{SheetId: sheet.String(), X: pos.X, Y: pos.Y}); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}

func getCell(c *controller.Controller, sheet geom.SheetId, cellRef string, out io.Writer) {
	pos, err := parseCellRef(c, sheet, cellRef)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	s, found := c.Grid.Sheets[sheet]
	if !found {
		fmt.Fprintln(out, "no such sheet")
		return
	}
	fmt.Fprintln(out, s.GetCell(pos).Inspect())
}

func parseCellRef(c *controller.Controller, sheet geom.SheetId, s string) (geom.Position, error) {
	ref, err := geom.Parse(s, c.Grid)
	if err != nil {
		return geom.Position{}, err
	}
	if ref.IsTable {
		return geom.Position{}, fmt.Errorf("table references are not addressable single cells")
	}
	return geom.New(ref.Sheet.Start.Col, ref.Sheet.Start.Row), nil
}

func parseLiteral(s string) grid.CellValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return grid.Blank
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return grid.NewNumber(d)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return grid.NewBoolean(b)
	}
	return grid.NewText(s)
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  set <cell> <value>   write a literal, or a formula starting with =
  get <cell>            print a cell's value
  sheets                list sheets, * marks the current one
  addsheet [name]       add and switch to a new sheet
  use <name>            switch the current sheet
  undo / redo
  quit
`)
}
