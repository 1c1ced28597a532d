package grid

// OptString, OptBool, OptFloat64, and OptInt carry an explicit "unset" bit
// alongside their value so Format fields can be merged layer over layer
// while staying comparable (required by store.Contiguous2D's T constraint —
// a pointer-based Option would compare by identity, breaking block
// coalescing).
type OptString struct {
	Set   bool
	Value string
}

type OptBool struct {
	Set   bool
	Value bool
}

type OptFloat64 struct {
	Set   bool
	Value float64
}

type OptInt struct {
	Set   bool
	Value int
}

func SetString(s string) OptString   { return OptString{Set: true, Value: s} }
func SetBool(b bool) OptBool         { return OptBool{Set: true, Value: b} }
func SetFloat64(f float64) OptFloat64 { return OptFloat64{Set: true, Value: f} }
func SetInt(i int) OptInt             { return OptInt{Set: true, Value: i} }

// NumberFormatKind enumerates the numeric display kinds.
const (
	NumberFormatPlain       = "number"
	NumberFormatCurrency    = "currency"
	NumberFormatPercentage  = "percentage"
	NumberFormatExponential = "exponential"
)

// Format holds per-cell style overrides. It also exists as a column-wide and
// row-wide overlay (store.Contiguous2D[Format] for cells, plain maps for
// column/row defaults); the effective format for a cell is the layered merge
// cell > row > column > default.
type Format struct {
	HAlign        OptString // "left", "center", "right"
	VAlign        OptString // "top", "middle", "bottom"
	Wrap          OptString // "wrap", "clip", "overflow"
	Bold          OptBool
	Italic        OptBool
	Underline     OptBool
	Strikethrough OptBool
	TextColor     OptString
	FillColor     OptString
	FontSize      OptFloat64

	NumberFormatKind   OptString
	NumberFormatSymbol OptString
	DecimalPlaces      OptInt
	ThousandsSeparator OptBool
	DateTimeFormat     OptString
}

// Merge returns a Format with every field of f set taking precedence, and
// every unset field of f falling through to lower's value. Used to compute
// cell > row > column > default in that order: call
// cell.Merge(row).Merge(column).Merge(sheetDefault).
func (f Format) Merge(lower Format) Format {
	out := f
	if !out.HAlign.Set {
		out.HAlign = lower.HAlign
	}
	if !out.VAlign.Set {
		out.VAlign = lower.VAlign
	}
	if !out.Wrap.Set {
		out.Wrap = lower.Wrap
	}
	if !out.Bold.Set {
		out.Bold = lower.Bold
	}
	if !out.Italic.Set {
		out.Italic = lower.Italic
	}
	if !out.Underline.Set {
		out.Underline = lower.Underline
	}
	if !out.Strikethrough.Set {
		out.Strikethrough = lower.Strikethrough
	}
	if !out.TextColor.Set {
		out.TextColor = lower.TextColor
	}
	if !out.FillColor.Set {
		out.FillColor = lower.FillColor
	}
	if !out.FontSize.Set {
		out.FontSize = lower.FontSize
	}
	if !out.NumberFormatKind.Set {
		out.NumberFormatKind = lower.NumberFormatKind
	}
	if !out.NumberFormatSymbol.Set {
		out.NumberFormatSymbol = lower.NumberFormatSymbol
	}
	if !out.DecimalPlaces.Set {
		out.DecimalPlaces = lower.DecimalPlaces
	}
	if !out.ThousandsSeparator.Set {
		out.ThousandsSeparator = lower.ThousandsSeparator
	}
	if !out.DateTimeFormat.Set {
		out.DateTimeFormat = lower.DateTimeFormat
	}
	return out
}

// IsZero reports whether no field of f is set.
func (f Format) IsZero() bool {
	return f == Format{}
}
