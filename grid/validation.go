package grid

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vellum/geom"
)

// ValidationKind discriminates a validation rule.
type ValidationKind int

const (
	ValidationList ValidationKind = iota
	ValidationListSource
	ValidationLogical
	ValidationNumber
	ValidationText
)

// NumberOp enumerates the numeric comparison a ValidationNumber rule checks.
type NumberOp int

const (
	NumberRange NumberOp = iota
	NumberEqual
	NumberNotEqual
)

// TextOp enumerates the text comparison a ValidationText rule checks.
type TextOp int

const (
	TextExact TextOp = iota
	TextContains
	TextNotContains
	TextLength
)

// ErrorStyle controls what happens when a cell violates a validation rule.
type ErrorStyle int

const (
	ErrorStyleStop ErrorStyle = iota
	ErrorStyleWarning
	ErrorStyleInfo
)

// Validation is a rule attached to an A1Selection scope. On every
// cell-value change, each affected cell consults the first rule whose scope
// contains it.
type Validation struct {
	Id        uuid.UUID
	Selection geom.A1Selection
	Kind      ValidationKind

	ListValues         []string
	ListSourceSelection *geom.A1Selection

	NumberOp  NumberOp
	NumberMin decimal.Decimal
	NumberMax decimal.Decimal

	TextOp     TextOp
	TextValue  string
	TextLength int

	OnInputMessage string
	ErrorStyle     ErrorStyle
	ErrorTitle     string
	ErrorMessage   string
}

// NewValidation returns a Validation with a freshly generated id.
func NewValidation(selection geom.A1Selection, kind ValidationKind) Validation {
	return Validation{Id: uuid.New(), Selection: selection, Kind: kind}
}

// Check evaluates the rule against value, reporting whether it is
// satisfied. listSource supplies the resolved values for
// ValidationListSource rules (the controller resolves the source selection
// against the grid; this package has no grid dependency).
func (v Validation) Check(value CellValue, listSource []string) bool {
	switch v.Kind {
	case ValidationList:
		return containsText(v.ListValues, value.Inspect())
	case ValidationListSource:
		return containsText(listSource, value.Inspect())
	case ValidationLogical:
		return value.Kind == ValueBoolean || value.IsBlank()
	case ValidationNumber:
		if value.Kind != ValueNumber {
			return false
		}
		switch v.NumberOp {
		case NumberRange:
			return !value.Number.LessThan(v.NumberMin) && !value.Number.GreaterThan(v.NumberMax)
		case NumberEqual:
			return value.Number.Equal(v.NumberMin)
		case NumberNotEqual:
			return !value.Number.Equal(v.NumberMin)
		}
		return false
	case ValidationText:
		s := value.Inspect()
		switch v.TextOp {
		case TextExact:
			return s == v.TextValue
		case TextContains:
			return containsSubstring(s, v.TextValue)
		case TextNotContains:
			return !containsSubstring(s, v.TextValue)
		case TextLength:
			return len(s) == v.TextLength
		}
		return false
	default:
		return true
	}
}

func containsText(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func containsSubstring(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
