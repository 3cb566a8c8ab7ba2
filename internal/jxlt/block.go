package jxlt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jexl-go/jexl/internal/jexl"
)

// EvaluateBlock reads r line by line, alternating VERBATIM lines (passed
// through as JXLT template text, `${}`/`#{}` substituted) and DIRECTIVE
// lines (lines whose trimmed text starts with directivePrefix, passed
// through verbatim as JEXL statement source) — spec §4.2.9's "block-level
// templates read from a reader line-by-line, alternating VERBATIM and
// DIRECTIVE blocks at a configurable prefix". The whole block compiles to
// one script so directive control flow (if/for/...) can wrap verbatim
// output lines the way a report template's `##if`/`##end` lines do.
func (te *TemplateEngine) EvaluateBlock(goCtx context.Context, r io.Reader, directivePrefix string, ctx jexl.Context) (string, error) {
	var script strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, directivePrefix) {
			script.WriteString(strings.TrimPrefix(trimmed, directivePrefix))
			script.WriteString("\n")
			continue
		}
		script.WriteString(buildPrintStatement(line, te.immediateChar, te.deferredChar))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	var out strings.Builder
	blockCtx := &printContext{inner: ctx, print: func(args []interface{}) (interface{}, error) {
		for _, a := range args {
			fmt.Fprint(&out, a)
		}
		return nil, nil
	}}

	s, err := te.engine.CreateScript(script.String())
	if err != nil {
		return "", err
	}
	if _, err := s.Execute(goCtx, blockCtx); err != nil {
		return "", err
	}
	return out.String(), nil
}

// buildPrintStatement turns one VERBATIM line into a `jxltPrint(...)`
// call: each Constant sub-part becomes a quoted string literal argument,
// each Immediate/Deferred sub-part becomes its raw source parenthesized
// as its own argument — all evaluated as ordinary arguments of a single
// call within the block's one compiled script, so there is no separate
// prepare phase at block granularity.
func buildPrintStatement(line string, immediateChar, deferredChar rune) string {
	parts := parseTemplate(line, immediateChar, deferredChar)
	var b strings.Builder
	b.WriteString("jxltPrint(")
	for _, p := range parts {
		switch p.kind {
		case kindConstant:
			b.WriteString(jexlStringLiteral(p.text))
		default:
			b.WriteString("(")
			b.WriteString(p.text)
			b.WriteString(")")
		}
		b.WriteString(", ")
	}
	b.WriteString(jexlStringLiteral("\n"))
	b.WriteString(");\n")
	return b.String()
}

func jexlStringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// printContext wraps a host Context, additionally resolving "jxltPrint"
// to the block evaluator's accumulating write function — the one binding
// EvaluateBlock's generated script calls, once per VERBATIM line.
type printContext struct {
	inner jexl.Context
	print func([]interface{}) (interface{}, error)
}

func (c *printContext) Has(name string) bool {
	if name == "jxltPrint" {
		return true
	}
	return c.inner != nil && c.inner.Has(name)
}

func (c *printContext) Get(name string) (interface{}, bool) {
	if name == "jxltPrint" {
		return c.print, true
	}
	if c.inner == nil {
		return nil, false
	}
	return c.inner.Get(name)
}

func (c *printContext) Set(name string, value interface{}) error {
	if c.inner == nil {
		return nil
	}
	return c.inner.Set(name, value)
}
