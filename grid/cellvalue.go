// Package grid implements the spreadsheet grid model: cell values, formats,
// validations, borders, data tables, and the sheets and grid that hold them.
// It sits above package store (sparse containers) and below package
// controller (the mutation and recomputation pipeline).
package grid

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vellum/geom"
)

// ValueKind discriminates the tagged union held by a CellValue.
type ValueKind int

const (
	ValueBlank ValueKind = iota
	ValueText
	ValueNumber
	ValueBoolean
	ValueDate
	ValueTime
	ValueDateTime
	ValueDuration
	ValueHTML
	ValueImage
	ValueError
	ValueCode
	ValueImport
)

func (k ValueKind) String() string {
	switch k {
	case ValueBlank:
		return "blank"
	case ValueText:
		return "text"
	case ValueNumber:
		return "number"
	case ValueBoolean:
		return "boolean"
	case ValueDate:
		return "date"
	case ValueTime:
		return "time"
	case ValueDateTime:
		return "datetime"
	case ValueDuration:
		return "duration"
	case ValueHTML:
		return "html"
	case ValueImage:
		return "image"
	case ValueError:
		return "error"
	case ValueCode:
		return "code"
	case ValueImport:
		return "import"
	default:
		return "unknown"
	}
}

// ErrorKind enumerates the semantic error classes a cell can hold.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrCycle
	ErrSpill
	ErrValue
	ErrRef
	ErrDivZero
	ErrName
	ErrNum
	ErrNotAvailable
	ErrParse
	ErrCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCycle:
		return "#CYCLE"
	case ErrSpill:
		return "#SPILL"
	case ErrValue:
		return "#VALUE"
	case ErrRef:
		return "#REF"
	case ErrDivZero:
		return "#DIV/0"
	case ErrName:
		return "#NAME"
	case ErrNum:
		return "#NUM"
	case ErrNotAvailable:
		return "#N/A"
	case ErrParse:
		return "#PARSE"
	case ErrCancelled:
		return "#CANCELLED"
	default:
		return "#ERROR"
	}
}

// CellError is an evaluation or structural error attached to a cell, with an
// optional source span into the formula text that produced it.
type CellError struct {
	Kind    ErrorKind
	Message string
	Span    [2]int // [start, end) byte offsets into the source, or [0,0] if n/a
}

func (e CellError) String() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// CodeValue is the (language, source) pair held by a ValueCode cell. Its
// output is kept separately, in the CodeRun/DataTable anchored at the same
// position — not in the CellValue itself.
type CodeValue struct {
	Language string
	Source   string
}

// ImportValue marks a cell as the anchor of an imported DataTable; the
// DataTable itself, keyed by the same anchor position, holds the data.
type ImportValue struct {
	SourceName string
}

// CellValue is the tagged value stored at a single grid position. Exactly
// one field is meaningful, selected by Kind; the rest hold zero values.
type CellValue struct {
	Kind ValueKind

	Text     string
	Number   decimal.Decimal
	Boolean  bool
	Time     time.Time     // Date, Time, and DateTime all use this field
	Duration time.Duration
	HTML     string
	Image    []byte
	Err      CellError
	Code     CodeValue
	Import   ImportValue
}

// Blank is the canonical empty cell value.
var Blank = CellValue{Kind: ValueBlank}

// IsBlank reports whether v holds no content. Blank and "absent" are
// equivalent at the storage level (spec invariant).
func (v CellValue) IsBlank() bool { return v.Kind == ValueBlank }

// NewText returns a text cell value.
func NewText(s string) CellValue { return CellValue{Kind: ValueText, Text: s} }

// NewNumber returns a numeric cell value.
func NewNumber(d decimal.Decimal) CellValue { return CellValue{Kind: ValueNumber, Number: d} }

// NewBoolean returns a boolean cell value.
func NewBoolean(b bool) CellValue { return CellValue{Kind: ValueBoolean, Boolean: b} }

// NewError returns an error cell value.
func NewError(kind ErrorKind, message string) CellValue {
	return CellValue{Kind: ValueError, Err: CellError{Kind: kind, Message: message}}
}

// NewCode returns a code cell value; its DataTable output is tracked
// separately by the controller.
func NewCode(language, source string) CellValue {
	return CellValue{Kind: ValueCode, Code: CodeValue{Language: language, Source: source}}
}

// Inspect renders the value the way a formula or the clipboard would display
// it as plain text.
func (v CellValue) Inspect() string {
	switch v.Kind {
	case ValueBlank:
		return ""
	case ValueText:
		return v.Text
	case ValueNumber:
		return v.Number.String()
	case ValueBoolean:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case ValueDate:
		return v.Time.Format("2006-01-02")
	case ValueTime:
		return v.Time.Format("15:04:05")
	case ValueDateTime:
		return v.Time.Format(time.RFC3339)
	case ValueDuration:
		return v.Duration.String()
	case ValueHTML:
		return v.HTML
	case ValueImage:
		return "[image]"
	case ValueError:
		return v.Err.String()
	case ValueCode:
		return v.Code.Source
	case ValueImport:
		return "[import:" + v.Import.SourceName + "]"
	default:
		return ""
	}
}

// SheetPosition re-exported for convenience in this package's callers.
type SheetPosition = geom.SheetPosition
