package controller

import "vellum/geom"

// SchemaVersion identifies an on-disk operation log format (spec §6.1:
// "File format versioning is explicit; every upgrade is a function
// schema_vN → schema_vN+1").
type SchemaVersion int

const (
	SchemaV1 SchemaVersion = iota
	SchemaV2
	CurrentSchemaVersion = SchemaV2
)

// Migrate upgrades a persisted operation log from fromVersion to
// CurrentSchemaVersion, applying each schema_vN → schema_vN+1 step in
// order. Operations already expressed in the current form pass through
// unchanged. Historical variants are retained indefinitely so old logs
// always load (spec §9 Open Question (i): "implementers should accept them
// on load and re-emit as the newer form").
func Migrate(ops []Operation, fromVersion SchemaVersion) []Operation {
	for v := fromVersion; v < CurrentSchemaVersion; v++ {
		ops = migrateStep(ops, v)
	}
	return ops
}

func migrateStep(ops []Operation, from SchemaVersion) []Operation {
	switch from {
	case SchemaV1:
		return upgradeLegacyFormats(ops)
	default:
		return ops
	}
}

// upgradeLegacyFormats rewrites every SetCellFormatsLegacy (a whole-rect
// format paint from schema v1) into the equivalent sparse SetCellFormats
// (one FormatUpdate per cell in the rect), the v2 representation every
// newer operation uses.
func upgradeLegacyFormats(ops []Operation) []Operation {
	out := make([]Operation, len(ops))
	for i, op := range ops {
		legacy, ok := op.(SetCellFormatsLegacy)
		if !ok {
			out[i] = op
			continue
		}
		var updates []FormatUpdate
		for y := legacy.Rect.Min.Y; y <= legacy.Rect.Max.Y; y++ {
			for x := legacy.Rect.Min.X; x <= legacy.Rect.Max.X; x++ {
				updates = append(updates, FormatUpdate{Pos: geom.New(x, y), Format: legacy.Format})
			}
		}
		sel := geom.A1Selection{Sheet: legacy.Sheet, Ranges: []geom.CellRefRange{{Sheet: geom.SheetRange{
			Kind:  geom.RangeRect,
			Start: geom.RefEnd{Col: legacy.Rect.Min.X, Row: legacy.Rect.Min.Y},
			End:   geom.RefEnd{Col: legacy.Rect.Max.X, Row: legacy.Rect.Max.Y},
		}}}}
		out[i] = SetCellFormats{Sheet: legacy.Sheet, Selection: sel, Updates: updates}
	}
	return out
}
