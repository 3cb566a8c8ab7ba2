package prettyprinter

import (
	"strings"
	"testing"

	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/parser"
)

func parseOrFail(t *testing.T, src string) *ast.Script {
	t.Helper()
	tree, errs := parser.Parse("", src, ast.AllFeatures)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	return tree
}

func TestPrintReconstructsBinaryExpression(t *testing.T) {
	tree := parseOrFail(t, "1 + 2 * 3;")
	out := Print(tree)
	if !strings.Contains(out, "1 + 2 * 3") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintParenthesizesLooserNestedOperator(t *testing.T) {
	tree := parseOrFail(t, "(1 + 2) * 3;")
	out := Print(tree)
	if !strings.Contains(out, "(1 + 2) * 3") {
		t.Fatalf("want parens preserved around looser-binding left operand, got %q", out)
	}
}

func TestPrintRendersIfElse(t *testing.T) {
	tree := parseOrFail(t, "if (x > 0) { y = 1; } else { y = 2; }")
	out := Print(tree)
	for _, want := range []string{"if (", "else", "y = 1", "y = 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestPrintRendersForEach(t *testing.T) {
	tree := parseOrFail(t, "for (var i : items) { x = i; }")
	out := Print(tree)
	if !strings.Contains(out, "for (var i : items)") {
		t.Fatalf("got %q", out)
	}
}

func TestPrintExprRendersLambda(t *testing.T) {
	tree := parseOrFail(t, "(x, y) -> x + y;")
	if len(tree.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(tree.Statements))
	}
	out := PrintExpr(tree.Statements[0])
	if !strings.Contains(out, "->") || !strings.Contains(out, "x + y") {
		t.Fatalf("got %q", out)
	}
}
