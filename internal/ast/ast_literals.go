package ast

// NullLiteral is the `null` literal.
type NullLiteral struct{ Base }

func NewNullLiteral(info Info) *NullLiteral {
	return &NullLiteral{NewBase(info, "null", true)}
}

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	Base
	Value bool
}

func NewBoolLiteral(info Info, v bool) *BoolLiteral {
	img := "false"
	if v {
		img = "true"
	}
	return &BoolLiteral{NewBase(info, img, true), v}
}

// NumberLiteral is an integer or float literal; IsFloat distinguishes them
// so the arithmetic provider gets an unambiguous hint.
type NumberLiteral struct {
	Base
	Text    string
	IsFloat bool
}

func NewNumberLiteral(info Info, text string, isFloat bool) *NumberLiteral {
	return &NumberLiteral{NewBase(info, text, true), text, isFloat}
}

// StringLiteral is a quoted string as it appeared in source. JXLT-style
// ${...}/#{...} interpolation is not handled here: internal/jxlt parses
// the raw Value lazily, on its own, only when a caller asks to evaluate
// it as a template rather than a plain expression.
type StringLiteral struct {
	Base
	Value string
}

func NewStringLiteral(info Info, v string) *StringLiteral {
	return &StringLiteral{NewBase(info, v, true), v}
}

// RegexLiteral is a /pattern/flags literal.
type RegexLiteral struct {
	Base
	Pattern string
	Flags   string
}

func NewRegexLiteral(info Info, pattern, flags string) *RegexLiteral {
	return &RegexLiteral{NewBase(info, pattern, true), pattern, flags}
}

// Identifier is a bare name. Symbol is a local-variable slot index, where
// -1 means "not a local"; Captured flags a read from within a nested
// lambda. Nothing in this module resolves slots: Symbol stays -1 and
// Captured stays false, and the interpreter looks names up by Name.
type Identifier struct {
	Base
	Name     string
	Symbol   int
	Captured bool
}

func NewIdentifier(info Info, name string) *Identifier {
	id := &Identifier{NewBase(info, name, false), name, -1, false}
	return id
}

// QualifiedIdentifier is a dotted class/package name, used by `instanceof`,
// constructor calls and namespace-qualified function calls.
type QualifiedIdentifier struct {
	Base
	Parts []string
}

func NewQualifiedIdentifier(info Info, parts []string) *QualifiedIdentifier {
	img := ""
	for i, p := range parts {
		if i > 0 {
			img += "."
		}
		img += p
	}
	return &QualifiedIdentifier{NewBase(info, img, true), parts}
}
