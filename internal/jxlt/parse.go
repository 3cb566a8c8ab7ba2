package jxlt

import "strings"

type exprKind int

const (
	kindConstant exprKind = iota
	kindImmediate
	kindDeferred
	kindNested
)

// templateExpr is one TemplateExpression variant from spec §4.2.9.
// Constant/Immediate/Deferred carry their own text; Nested and the
// implicit top-level Composite carry sub-parts instead. value holds the
// result once Prepare (for Immediate) or Evaluate (for everything) has
// run; a Constant's value is set at parse time.
type templateExpr struct {
	kind  exprKind
	text  string // raw embedded JEXL source for Immediate/Deferred
	value interface{}
	parts []*templateExpr // Nested's reparsed (deferred-only) sub-parts
}

// parseTemplate runs the character-level scan spec §4.2.9 describes:
// CONST accumulates literal text; hitting immediateChar/deferredChar
// followed by '{' switches to IMM1/DEF1 and scanBraces finds the
// balanced, quote-aware closing '}'; a backslash always escapes the next
// rune (the ESCAPE state). Go's switch-driven loop below folds CONST/
// IMM0/DEF0 into one pass rather than an explicit state enum, since none
// of those three ever need to distinguish themselves once the next rune
// is known.
func parseTemplate(src string, immediateChar, deferredChar rune) []*templateExpr {
	runes := []rune(src)
	n := len(runes)
	var parts []*templateExpr
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, &templateExpr{kind: kindConstant, text: buf.String(), value: buf.String()})
			buf.Reset()
		}
	}

	for i := 0; i < n; {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < n:
			buf.WriteRune(runes[i+1])
			i += 2
		case c == immediateChar && i+1 < n && runes[i+1] == '{':
			flush()
			end, inner := scanBraces(runes, i+2)
			parts = append(parts, &templateExpr{kind: kindImmediate, text: inner})
			i = end
		case c == deferredChar && i+1 < n && runes[i+1] == '{':
			flush()
			end, inner := scanBraces(runes, i+2)
			parts = append(parts, &templateExpr{kind: kindDeferred, text: inner})
			i = end
		default:
			buf.WriteRune(c)
			i++
		}
	}
	flush()
	return parts
}

// scanBraces reads a brace-balanced, quote-aware expression body starting
// right after the opening '{' at runes[start-1], returning the index just
// past the matching '}' and the body text. A `'` or `"` toggles a
// string-literal mode during which braces and (only within that literal)
// the escape rune are passed through verbatim until the matching quote.
func scanBraces(runes []rune, start int) (end int, inner string) {
	depth := 1
	var quote rune
	var b strings.Builder
	i := start
	for i < len(runes) {
		c := runes[i]
		if quote != 0 {
			b.WriteRune(c)
			switch {
			case c == '\\' && i+1 < len(runes):
				i++
				b.WriteRune(runes[i])
			case c == quote:
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			b.WriteRune(c)
		case '{':
			depth++
			b.WriteRune(c)
		case '}':
			depth--
			if depth == 0 {
				return i + 1, b.String()
			}
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
		i++
	}
	return i, b.String()
}
