package jxlt

import (
	"context"
	"fmt"
	"strings"

	"github.com/jexl-go/jexl/internal/jexl"
)

// Template is a parsed TemplateExpression: Constant/Immediate/Deferred
// for a single embedded form, or an implicit Composite when parts has
// more than one entry (spec §4.2.9).
type Template struct {
	te     *TemplateEngine
	source string
	parts  []*templateExpr
}

// Source returns the original template text.
func (t *Template) Source() string { return t.source }

// Prepare evaluates every Immediate sub-expression against ctx and
// replaces it with a Constant (or, if the result string itself contains
// deferred syntax, a Nested node reparsed in deferred-only mode); it
// leaves Deferred sub-expressions untouched. The returned Template is
// independent of t — callers that need to Evaluate the same prepared
// form repeatedly against different contexts should keep the result.
func (t *Template) Prepare(goCtx context.Context, ctx jexl.Context) (*Template, error) {
	prepared := make([]*templateExpr, len(t.parts))
	for i, p := range t.parts {
		np, err := t.te.prepareOne(goCtx, ctx, p)
		if err != nil {
			return nil, err
		}
		prepared[i] = np
	}
	return &Template{te: t.te, source: t.source, parts: prepared}, nil
}

func (te *TemplateEngine) prepareOne(goCtx context.Context, ctx jexl.Context, p *templateExpr) (*templateExpr, error) {
	if p.kind != kindImmediate {
		return p, nil
	}
	v, err := te.engine.Eval(goCtx, ctx, p.text)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok && strings.ContainsRune(s, te.deferredChar) {
		nested := parseTemplate(s, 0, te.deferredChar)
		if len(nested) > 1 || (len(nested) == 1 && nested[0].kind != kindConstant) {
			return &templateExpr{kind: kindNested, parts: nested}, nil
		}
	}
	return &templateExpr{kind: kindConstant, value: v}, nil
}

// Evaluate runs Prepare then evaluates every remaining sub-expression
// against ctx, concatenating string forms for a Composite. A template
// consisting of exactly one non-constant sub-expression returns that
// sub-expression's raw value instead of its stringified form — the same
// shortcut the source takes for a template that is nothing but one
// `${...}` or `#{...}`.
func (t *Template) Evaluate(goCtx context.Context, ctx jexl.Context) (interface{}, error) {
	prepared, err := t.Prepare(goCtx, ctx)
	if err != nil {
		return nil, err
	}
	if len(t.parts) == 1 && t.parts[0].kind != kindConstant {
		return t.te.evalPart(goCtx, ctx, prepared.parts[0])
	}
	var b strings.Builder
	for _, p := range prepared.parts {
		v, err := t.te.evalPart(goCtx, ctx, p)
		if err != nil {
			return nil, err
		}
		fmt.Fprint(&b, v)
	}
	return b.String(), nil
}

// Render is Evaluate coerced to a string unconditionally, for hosts that
// always want text back regardless of how many sub-expressions it held.
func (t *Template) Render(goCtx context.Context, ctx jexl.Context) (string, error) {
	v, err := t.Evaluate(goCtx, ctx)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

func (te *TemplateEngine) evalPart(goCtx context.Context, ctx jexl.Context, p *templateExpr) (interface{}, error) {
	switch p.kind {
	case kindConstant:
		return p.value, nil
	case kindDeferred:
		return te.engine.Eval(goCtx, ctx, p.text)
	case kindNested:
		var b strings.Builder
		for _, sub := range p.parts {
			v, err := te.evalPart(goCtx, ctx, sub)
			if err != nil {
				return nil, err
			}
			fmt.Fprint(&b, v)
		}
		return b.String(), nil
	default:
		return p.value, nil
	}
}
