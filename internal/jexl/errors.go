package jexl

import "fmt"

// Kind classifies a JexlException the way spec §7 enumerates error
// kinds, grounded on the teacher's *Error object (internal/evaluator
// object.go/helpers.go newError) generalized from a runtime value to a
// real Go error.
type Kind int

const (
	KindParsing Kind = iota
	KindTokenization
	KindVariable
	KindProperty
	KindMethod
	KindAmbiguous
	KindOperator
	KindAssignment
	KindLexicalRedeclaration
	KindLexicalShade
	KindConstCapture
	KindAnnotation
	KindStackOverflow
	KindCancel
)

func (k Kind) String() string {
	switch k {
	case KindParsing:
		return "Parsing"
	case KindTokenization:
		return "Tokenization"
	case KindVariable:
		return "Variable"
	case KindProperty:
		return "Property"
	case KindMethod:
		return "Method"
	case KindAmbiguous:
		return "Ambiguous"
	case KindOperator:
		return "Operator"
	case KindAssignment:
		return "Assignment"
	case KindLexicalRedeclaration:
		return "LexicalRedeclaration"
	case KindLexicalShade:
		return "LexicalShade"
	case KindConstCapture:
		return "ConstCapture"
	case KindAnnotation:
		return "Annotation"
	case KindStackOverflow:
		return "StackOverflow"
	case KindCancel:
		return "Cancel"
	}
	return "Unknown"
}

// JexlException is the engine-level error type every public Engine/
// Script method returns on failure (spec §7). Line/Column are populated
// only when Options.Debug is set (spec: "attach source info to errors").
type JexlException struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
	Cause   error
}

func (e *JexlException) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *JexlException) Unwrap() error { return e.Cause }

func newException(kind Kind, debug bool, line, col int, format string, args ...interface{}) *JexlException {
	e := &JexlException{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if debug {
		e.Line, e.Column = line, col
	}
	return e
}
