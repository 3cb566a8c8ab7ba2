// Package jxlt implements the JXLT template sub-language (spec §4.2.9):
// verbatim text mixed with immediate ${...} and deferred #{...} embedded
// JEXL expressions, two-phase prepare/evaluate semantics, and
// line-oriented block templates. It sits on top of internal/jexl the way
// the teacher's internal/prettyprinter sits on top of internal/ast —
// a focused pass over another package's types, not a peer evaluator.
package jxlt

import (
	"context"

	"github.com/jexl-go/jexl/internal/jexl"
)

// TemplateEngine parses and evaluates JXLT templates against one Engine,
// using immediateChar/deferredChar as the `${`/`#{` sigils (spec's
// create_jxlt_engine(no_script, cache_size, immediate_char, deferred_char)).
type TemplateEngine struct {
	engine        *jexl.Engine
	immediateChar rune
	deferredChar  rune
}

// New builds a TemplateEngine over engine. A zero immediateChar/
// deferredChar falls back to the JXLT defaults '$' and '#'.
func New(engine *jexl.Engine, immediateChar, deferredChar rune) *TemplateEngine {
	if immediateChar == 0 {
		immediateChar = '$'
	}
	if deferredChar == 0 {
		deferredChar = '#'
	}
	return &TemplateEngine{engine: engine, immediateChar: immediateChar, deferredChar: deferredChar}
}

// CreateTemplate parses src into a Template without evaluating anything
// yet (spec's TemplateExpression construction).
func (te *TemplateEngine) CreateTemplate(src string) *Template {
	parts := parseTemplate(src, te.immediateChar, te.deferredChar)
	return &Template{te: te, source: src, parts: parts}
}

// Expand parses src, then fully evaluates it against ctx in one step:
// Prepare followed by Evaluate (spec's common case — most callers never
// need the two phases to straddle a cache boundary).
func (te *TemplateEngine) Expand(goCtx context.Context, ctx jexl.Context, src string) (interface{}, error) {
	return te.CreateTemplate(src).Evaluate(goCtx, ctx)
}
