package jxlt

import (
	"strings"
	"testing"

	"github.com/jexl-go/jexl/internal/config"
	ijexl "github.com/jexl-go/jexl/internal/jexl"
)

func newTestEngine() *ijexl.Engine {
	return ijexl.New(config.DefaultOptions())
}

func TestParseTemplateSplitsConstantAndImmediate(t *testing.T) {
	parts := parseTemplate("Hello ${name}!", '$', '#')
	if len(parts) != 3 {
		t.Fatalf("want 3 parts, got %d: %#v", len(parts), parts)
	}
	if parts[0].kind != kindConstant || parts[0].text != "Hello " {
		t.Fatalf("part 0 = %#v", parts[0])
	}
	if parts[1].kind != kindImmediate || parts[1].text != "name" {
		t.Fatalf("part 1 = %#v", parts[1])
	}
	if parts[2].kind != kindConstant || parts[2].text != "!" {
		t.Fatalf("part 2 = %#v", parts[2])
	}
}

func TestParseTemplateHandlesDeferredAndEscapes(t *testing.T) {
	parts := parseTemplate(`\${literal} #{1 + 1}`, '$', '#')
	if len(parts) != 2 {
		t.Fatalf("want 2 parts, got %d: %#v", len(parts), parts)
	}
	if parts[0].kind != kindConstant || parts[0].text != "${literal} " {
		t.Fatalf("part 0 = %#v", parts[0])
	}
	if parts[1].kind != kindDeferred || parts[1].text != "1 + 1" {
		t.Fatalf("part 1 = %#v", parts[1])
	}
}

func TestScanBracesIsQuoteAware(t *testing.T) {
	src := `${"}"}` + " tail"
	parts := parseTemplate(src, '$', '#')
	if len(parts) == 0 || parts[0].kind != kindImmediate {
		t.Fatalf("expected first part to be immediate, got %#v", parts)
	}
	if parts[0].text != `"}"` {
		t.Fatalf("brace inside quotes was not preserved: %q", parts[0].text)
	}
}

func TestTemplateEvaluateConcatenatesParts(t *testing.T) {
	engine := newTestEngine()
	te := New(engine, '$', '#')
	ctx := ijexl.NewMapContext().Bind("name", "world")

	out, err := te.Expand(nil, ctx, "Hello ${name}!")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if out != "Hello world!" {
		t.Fatalf("got %q", out)
	}
}

func TestTemplateEvaluateSinglePartReturnsRawValue(t *testing.T) {
	engine := newTestEngine()
	te := New(engine, '$', '#')
	ctx := ijexl.NewMapContext().Bind("n", 42)

	out, err := te.Expand(nil, ctx, "${n}")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if out != 42 {
		t.Fatalf("want raw int 42, got %#v (%T)", out, out)
	}
}

func TestTemplateRenderAlwaysReturnsString(t *testing.T) {
	engine := newTestEngine()
	te := New(engine, '$', '#')
	ctx := ijexl.NewMapContext().Bind("n", 42)

	s, err := te.CreateTemplate("${n}").Render(nil, ctx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if s != "42" {
		t.Fatalf("want %q, got %q", "42", s)
	}
}

func TestTemplateNestedDeferredIsReparsed(t *testing.T) {
	engine := newTestEngine()
	te := New(engine, '$', '#')
	ctx := ijexl.NewMapContext().
		Bind("inner", "literal #{1+1} tail").
		Bind("x", 1)

	out, err := te.Expand(nil, ctx, "${inner}")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if out != "literal 2 tail" {
		t.Fatalf("got %q", out)
	}
}

func TestEvaluateBlockAlternatesVerbatimAndDirective(t *testing.T) {
	engine := newTestEngine()
	te := New(engine, '$', '#')
	ctx := ijexl.NewMapContext().Bind("items", []interface{}{1, 2, 3})

	block := strings.Join([]string{
		"##for (var i : items) {",
		"item ${i}",
		"##}",
	}, "\n")

	out, err := te.EvaluateBlock(nil, strings.NewReader(block), "##", ctx)
	if err != nil {
		t.Fatalf("EvaluateBlock: %v", err)
	}
	want := "item 1\nitem 2\nitem 3\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
