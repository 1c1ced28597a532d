package formula

import "vellum/geom"

// AdjustReferences rewrites every A1 reference token in src that would be
// affected by a structural column/row insert (delta=+1) or delete
// (delta=-1) at index, returning the rewritten source. References that
// collapse to nothing (entirely consumed by a delete) are rewritten to the
// #REF! error text, matching how spreadsheets surface a dangling reference
// rather than silently dropping it (spec §4.3 pass 1).
//
// Only unqualified references are rewritten; the caller passes formulas
// from the sheet whose structure changed. A sheet-qualified reference such
// as `Sheet2!A1` does not parse with geom.Parse and is left untouched.
func AdjustReferences(src string, ctx geom.A1Context, column bool, index, delta int64) string {
	lex := NewLexer(src)
	var out []byte
	last := 0
	for {
		tok := lex.Next()
		if tok.Type == TokenEOF {
			break
		}
		if tok.Type != TokenRef {
			continue
		}
		ref, err := geom.Parse(tok.Literal, ctx)
		if err != nil {
			continue
		}
		adjusted, ok, changed := geom.AdjustCellRefRange(ref, column, index, delta)
		if !changed {
			continue
		}
		out = append(out, src[last:tok.Offset]...)
		if !ok {
			out = append(out, []byte("#REF!")...)
		} else {
			out = append(out, []byte(adjusted.Format())...)
		}
		last = tok.Offset + len(tok.Literal)
	}
	out = append(out, src[last:]...)
	return string(out)
}
