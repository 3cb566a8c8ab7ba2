package parser

import (
	"testing"

	"github.com/jexl-go/jexl/internal/ast"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	tree, errs := Parse("", src, ast.AllFeatures)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	if len(tree.Statements) != 1 {
		t.Fatalf("parse %q: got %d statements, want 1", src, len(tree.Statements))
	}
	return tree.Statements[0]
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	n, ok := parseOne(t, "1 + 2 * 3").(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", parseOne(t, "1 + 2 * 3"))
	}
	if n.Operator != "+" {
		t.Fatalf("root operator = %q, want \"+\"", n.Operator)
	}
	rhs, ok := n.Right.(*ast.BinaryExpr)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("right operand = %#v, want a \"*\" BinaryExpr", n.Right)
	}
}

func TestTernaryIsRightAssociative(t *testing.T) {
	n, ok := parseOne(t, "a ? b : c ? d : e").(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.TernaryExpr", n)
	}
	if _, ok := n.Else.(*ast.TernaryExpr); !ok {
		t.Fatalf("Else = %#v, want a nested TernaryExpr", n.Else)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	n, ok := parseOne(t, "a = b = 1").(*ast.AssignExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignExpr", n)
	}
	if _, ok := n.Value.(*ast.AssignExpr); !ok {
		t.Fatalf("Value = %#v, want a nested AssignExpr", n.Value)
	}
}

func TestParsesLambdaWithParams(t *testing.T) {
	n, ok := parseOne(t, "(x, y) -> x + y").(*ast.Lambda)
	if !ok {
		t.Fatalf("got %T, want *ast.Lambda", n)
	}
	if len(n.Params) != 2 || n.Params[0].Name != "x" || n.Params[1].Name != "y" {
		t.Fatalf("got params %+v", n.Params)
	}
}

func TestParsesSafeNavigationSteps(t *testing.T) {
	n, ok := parseOne(t, "a?.b?[0]").(*ast.Reference)
	if !ok {
		t.Fatalf("got %T, want *ast.Reference", n)
	}
	if len(n.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(n.Steps))
	}
	idAccess, ok := n.Steps[0].(*ast.IdentifierAccess)
	if !ok || !idAccess.Safe {
		t.Fatalf("step 0 = %#v, want a safe IdentifierAccess", n.Steps[0])
	}
	arrAccess, ok := n.Steps[1].(*ast.ArrayAccess)
	if !ok || !arrAccess.Safe {
		t.Fatalf("step 1 = %#v, want a safe ArrayAccess", n.Steps[1])
	}
}

func TestParsesIfElse(t *testing.T) {
	n, ok := parseOne(t, "if (a) b; else c;").(*ast.IfStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.IfStmt", n)
	}
	if n.Else == nil {
		t.Fatalf("Else branch missing")
	}
}

func TestParsesTryCatchFinally(t *testing.T) {
	n, ok := parseOne(t, "try { a; } catch (e) { b; } finally { c; }").(*ast.TryStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.TryStmt", n)
	}
	if n.CatchVar != "e" || n.CatchBody == nil || n.Finally == nil {
		t.Fatalf("got %+v", n)
	}
}

func TestReportsParseErrorOnUnexpectedToken(t *testing.T) {
	_, errs := Parse("", "1 +", ast.AllFeatures)
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for an incomplete expression")
	}
}
