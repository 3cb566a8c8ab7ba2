package jexl

import (
	"sort"
	"strings"
	"testing"

	"github.com/jexl-go/jexl/internal/config"
)

func newTestEngine() *Engine {
	return New(config.DefaultOptions())
}

func TestEvaluateArithmetic(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	v, err := script.Evaluate(nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != int64(7) && v != 7 {
		t.Fatalf("got %#v", v)
	}
}

func TestEvaluateEmptyScriptReturnsNil(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	v, err := script.Evaluate(nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != nil {
		t.Fatalf("want nil, got %#v", v)
	}
}

func TestExecuteBindsPositionalParameters(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateScript("a + b", "a", "b")
	if err != nil {
		t.Fatalf("CreateScript: %v", err)
	}
	v, err := script.Execute(nil, NewMapContext(), 3, 4)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v != int64(7) && v != 7 {
		t.Fatalf("got %#v", v)
	}
}

func TestContextVariableLookup(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("x + 1")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	ctx := NewMapContext().Bind("x", 41)
	v, err := script.Evaluate(nil, ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v != int64(42) && v != 42 {
		t.Fatalf("got %#v", v)
	}
}

func TestLocalVariablesCollectsVarDecls(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("var a = 1; var b = a + 1; b")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	names := script.LocalVariables()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("got %v", names)
	}
}

func TestVariablesCollectModeDotOnly(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("foo.bar + foo['baz']")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	paths := script.Variables()
	joined := flattenPaths(paths)
	sort.Strings(joined)
	if len(joined) != 2 || joined[0] != "foo" || joined[1] != "foo.bar" {
		t.Fatalf("got %v", joined)
	}
}

func TestVariablesCollectModeConstantIndex(t *testing.T) {
	opts := config.DefaultOptions()
	opts.CollectMode = 1
	e := New(opts)
	script, err := e.CreateExpression("foo['baz']")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	paths := script.Variables()
	joined := flattenPaths(paths)
	sort.Strings(joined)
	if len(joined) != 1 || joined[0] != "foo.baz" {
		t.Fatalf("got %v", joined)
	}
}

func TestVariablesExcludesLambdaParams(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("(x) -> x + y")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	paths := script.Variables()
	joined := flattenPaths(paths)
	if len(joined) != 1 || joined[0] != "y" {
		t.Fatalf("got %v", joined)
	}
}

func TestDumpReconstructsSource(t *testing.T) {
	e := newTestEngine()
	script, err := e.CreateExpression("1 + 2")
	if err != nil {
		t.Fatalf("CreateExpression: %v", err)
	}
	dump := script.Dump()
	if !containsAll(dump, "1", "+", "2") {
		t.Fatalf("dump missing reconstructed source: %q", dump)
	}
}

func flattenPaths(paths [][]string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		s := p[0]
		for _, step := range p[1:] {
			s += "." + step
		}
		out[i] = s
	}
	return out
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
