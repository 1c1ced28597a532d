package controller

import (
	"encoding/json"
	"html"
	"strings"

	"vellum/geom"
	"vellum/grid"
)

// ClipboardCell is the structured payload for one copied cell: its value,
// an optional code source (outputs are never copied, per spec §4.7), and
// its effective per-cell format.
type ClipboardCell struct {
	Pos    geom.Position `json:"pos"`
	Value  grid.CellValue
	Code   *grid.CodeValue `json:"code,omitempty"`
	Format grid.Format
}

// ClipboardBorder is one border edge entry within the copied rectangle.
type ClipboardBorder struct {
	Pos   geom.Position
	Edge  BorderEdge
	Style grid.BorderStyle
}

// Clipboard is the structured copy payload: a rectangle of cells plus the
// border overlays that fall within it. Column/row formats are not copied
// separately — EffectiveFormat already folds them into each cell.
type Clipboard struct {
	Width, Height int64
	Cells         []ClipboardCell
	Borders       []ClipboardBorder
}

// Copy builds the structured clipboard payload for rect on sheet: each
// stored cell's value (or its code source, without outputs), its effective
// format with column/row formats folded in, the border edges inside rect,
// and the rectangle's dimensions. Positions are offsets from rect.Min.
// Table output values and spill references are not included.
func (c *Controller) Copy(sheetId geom.SheetId, rect geom.Rect) (Clipboard, bool) {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return Clipboard{}, false
	}
	out := Clipboard{Width: rect.Width(), Height: rect.Height()}
	for y := rect.Min.Y; y <= rect.Max.Y; y++ {
		for x := rect.Min.X; x <= rect.Max.X; x++ {
			pos := geom.New(x, y)
			v := sheet.GetCell(pos)
			cell := ClipboardCell{Pos: geom.New(x-rect.Min.X, y-rect.Min.Y), Value: v, Format: sheet.EffectiveFormat(pos)}
			if v.Kind == grid.ValueCode {
				code := v.Code
				cell.Code = &code
				cell.Value = grid.Blank
			}
			if v.IsBlank() && cell.Format.IsZero() {
				continue
			}
			out.Cells = append(out.Cells, cell)
		}
	}
	collectBorders(&out, sheet.Borders.Left, BorderLeft, rect)
	collectBorders(&out, sheet.Borders.Right, BorderRight, rect)
	collectBorders(&out, sheet.Borders.Top, BorderTop, rect)
	collectBorders(&out, sheet.Borders.Bottom, BorderBottom, rect)
	return out, true
}

func collectBorders(out *Clipboard, c2d interface {
	Iterate(func(geom.Rect, grid.BorderStyle))
}, edge BorderEdge, rect geom.Rect) {
	c2d.Iterate(func(r geom.Rect, style grid.BorderStyle) {
		ir, ok := r.Intersection(rect)
		if !ok {
			return
		}
		for y := ir.Min.Y; y <= ir.Max.Y; y++ {
			for x := ir.Min.X; x <= ir.Max.X; x++ {
				out.Borders = append(out.Borders, ClipboardBorder{Pos: geom.New(x-rect.Min.X, y-rect.Min.Y), Edge: edge, Style: style})
			}
		}
	})
}

// PlainText renders the copied rectangle as a tab/newline-delimited grid
// (spec §4.7), using each cell's display text (CellValue.Inspect).
func (c *Controller) PlainText(sheetId geom.SheetId, rect geom.Rect) (string, bool) {
	sheet, ok := c.Grid.Sheets[sheetId]
	if !ok {
		return "", false
	}
	var b strings.Builder
	for y := rect.Min.Y; y <= rect.Max.Y; y++ {
		if y > rect.Min.Y {
			b.WriteByte('\n')
		}
		for x := rect.Min.X; x <= rect.Max.X; x++ {
			if x > rect.Min.X {
				b.WriteByte('\t')
			}
			b.WriteString(sheet.GetCell(geom.New(x, y)).Inspect())
		}
	}
	return b.String(), true
}

// HTML wraps the structured payload in a <table data-quadratic="..."> whose
// attribute carries the attribute-escaped JSON clipboard (spec §6.3); the
// table's text content is the plain-text fallback for non-core consumers.
func (c *Controller) HTML(sheetId geom.SheetId, rect geom.Rect) (string, bool) {
	clip, ok := c.Copy(sheetId, rect)
	if !ok {
		return "", false
	}
	payload, err := json.Marshal(clip)
	if err != nil {
		return "", false
	}
	plain, _ := c.PlainText(sheetId, rect)
	var b strings.Builder
	b.WriteString(`<table data-quadratic="`)
	b.WriteString(html.EscapeString(string(payload)))
	b.WriteString(`">`)
	for _, row := range strings.Split(plain, "\n") {
		b.WriteString("<tr>")
		for _, cell := range strings.Split(row, "\t") {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String(), true
}

// PasteHTML extracts the data-quadratic attribute from an HTML clipboard
// payload and unmarshals it, or reports false if none is present.
func PasteHTML(htmlText string) (Clipboard, bool) {
	const marker = `data-quadratic="`
	i := strings.Index(htmlText, marker)
	if i < 0 {
		return Clipboard{}, false
	}
	rest := htmlText[i+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return Clipboard{}, false
	}
	unescaped := html.UnescapeString(rest[:end])
	var clip Clipboard
	if err := json.Unmarshal([]byte(unescaped), &clip); err != nil {
		return Clipboard{}, false
	}
	return clip, true
}

// PastePlainText parses a tab/newline grid into row-major CellValue rows,
// every cell a ValueText (spec §4.7 plain-text fallback).
func PastePlainText(text string) [][]grid.CellValue {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([][]grid.CellValue, len(lines))
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		row := make([]grid.CellValue, len(fields))
		for j, f := range fields {
			row[j] = grid.NewText(f)
		}
		out[i] = row
	}
	return out
}

// Paste writes clip (or, if parse fails, plain text) at anchor on sheetId.
// Values, formats and borders go into one user transaction, which is the
// one returned. Each pasted code cell is then written by SetCodeCell in a
// transaction of its own, which also enqueues it for computation.
func (c *Controller) Paste(sheetId geom.SheetId, anchor geom.Position, htmlText, plainText string) (*Transaction, error) {
	if clip, ok := PasteHTML(htmlText); ok {
		return c.pasteStructured(sheetId, anchor, clip)
	}
	rows := PastePlainText(plainText)
	return c.pastePlain(sheetId, anchor, rows)
}

func (c *Controller) pastePlain(sheetId geom.SheetId, anchor geom.Position, rows [][]grid.CellValue) (*Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	w := int64(0)
	for _, r := range rows {
		if int64(len(r)) > w {
			w = int64(len(r))
		}
	}
	h := int64(len(rows))
	values := make([][]grid.CellValue, h)
	for y := range rows {
		values[y] = make([]grid.CellValue, w)
		copy(values[y], rows[y])
	}
	rect := geom.RectFromSize(anchor.X, anchor.Y, w, h)
	return c.Execute(SetCellValues{Sheet: sheetId, Rect: rect, Values: values}, SourceUser, CursorSnapshot{})
}

func (c *Controller) pasteStructured(sheetId geom.SheetId, anchor geom.Position, clip Clipboard) (*Transaction, error) {
	var ops []Operation
	values := make([][]grid.CellValue, clip.Height)
	for y := range values {
		values[y] = make([]grid.CellValue, clip.Width)
	}
	var formatUpdates []FormatUpdate
	type pastedCode struct {
		pos      geom.Position
		language string
		source   string
	}
	var codeOps []pastedCode
	for _, cell := range clip.Cells {
		dx, dy := cell.Pos.X, cell.Pos.Y
		target := geom.New(anchor.X+dx, anchor.Y+dy)
		if dy >= 0 && dy < clip.Height && dx >= 0 && dx < clip.Width {
			if cell.Code != nil {
				codeOps = append(codeOps, pastedCode{pos: target, language: cell.Code.Language, source: cell.Code.Source})
			} else {
				values[dy][dx] = cell.Value
			}
		}
		if !cell.Format.IsZero() {
			formatUpdates = append(formatUpdates, FormatUpdate{Pos: target, Format: cell.Format})
		}
	}
	rect := geom.RectFromSize(anchor.X, anchor.Y, clip.Width, clip.Height)
	ops = append(ops, SetCellValues{Sheet: sheetId, Rect: rect, Values: values})
	if len(formatUpdates) > 0 {
		sel := geom.A1Selection{Sheet: sheetId, Ranges: []geom.CellRefRange{{Sheet: geom.SheetRange{Kind: geom.RangeRect,
			Start: geom.RefEnd{Col: rect.Min.X, Row: rect.Min.Y}, End: geom.RefEnd{Col: rect.Max.X, Row: rect.Max.Y}}}}}
		ops = append(ops, SetCellFormats{Sheet: sheetId, Selection: sel, Updates: formatUpdates})
	}
	for _, b := range clip.Borders {
		target := geom.New(anchor.X+b.Pos.X, anchor.Y+b.Pos.Y)
		ops = append(ops, SetBorders{Sheet: sheetId, Rect: geom.SinglePos(target), Edge: b.Edge, Style: b.Style})
	}
	tx, err := c.ExecuteBatch(ops, SourceUser, CursorSnapshot{})
	if err != nil {
		return tx, err
	}
	for _, co := range codeOps {
		// Pasted code cells go through SetCodeCell, as its own transaction,
		// so each gets its paired DataTable and compute-queue entry (spec
		// §4.7: "pasted code cells are re-enqueued for computation").
		if _, err := c.SetCodeCell(sheetId, co.pos, co.language, co.source); err != nil {
			return tx, err
		}
	}
	return tx, nil
}
