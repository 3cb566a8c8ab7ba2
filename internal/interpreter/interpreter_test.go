package interpreter

import (
	"context"
	"testing"
	"time"

	"github.com/jexl-go/jexl/internal/arithmetic"
	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/introspection"
	"github.com/jexl-go/jexl/internal/parser"
)

// mapContext is a minimal interpreter.Context for exercising the
// Antish/Strict/Context fallback paths without pulling in internal/jexl.
type mapContext map[string]interface{}

func (m mapContext) Has(name string) bool {
	_, ok := m[name]
	return ok
}

func (m mapContext) Get(name string) (interface{}, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapContext) Set(name string, value interface{}) error {
	m[name] = value
	return nil
}

func newInterp() *Interpreter {
	return &Interpreter{
		Arith:      arithmetic.New(false),
		Introspect: introspection.New(),
		Classes:    NewFqcnResolver(),
		Functions:  make(map[string]interface{}),
		Namespaces: make(map[string]map[string]interface{}),
		MaxDepth:   defaultMaxDepth,
	}
}

func mustParse(t *testing.T, src string) *ast.Script {
	t.Helper()
	tree, errs := parser.Parse("", src, ast.AllFeatures)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	return tree
}

func run(t *testing.T, in *Interpreter, src string) (interface{}, error) {
	t.Helper()
	tree := mustParse(t, src)
	return in.Eval(context.Background(), tree, NewFrame())
}

func TestShortCircuitAndSkipsRightOperand(t *testing.T) {
	in := newInterp()
	called := false
	in.Functions["sideEffect"] = func(args []interface{}) (interface{}, error) {
		called = true
		return true, nil
	}
	v, err := run(t, in, "false && sideEffect()")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != false {
		t.Fatalf("got %#v, want false", v)
	}
	if called {
		t.Fatalf("right operand of && was evaluated despite a falsy left operand")
	}
}

func TestShortCircuitOrSkipsRightOperand(t *testing.T) {
	in := newInterp()
	called := false
	in.Functions["sideEffect"] = func(args []interface{}) (interface{}, error) {
		called = true
		return true, nil
	}
	v, err := run(t, in, "true || sideEffect()")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != true {
		t.Fatalf("got %#v, want true", v)
	}
	if called {
		t.Fatalf("right operand of || was evaluated despite a truthy left operand")
	}
}

func TestNullCoalesceOnlyTriggersOnNull(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "null ?? 5")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("got %#v, want 5", v)
	}

	v, err = run(t, in, "0 ?? 5")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(0) {
		t.Fatalf("got %#v, want 0 (?? only falls through on null, not falsy)", v)
	}
}

func TestSafeNavigationShortCircuitsOnNull(t *testing.T) {
	in := newInterp()
	ctx := mapContext{"a": nil}
	in.Context = ctx
	v, err := run(t, in, "a?.b")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != nil {
		t.Fatalf("got %#v, want nil", v)
	}

	_, err = run(t, in, "a.b")
	if err == nil {
		t.Fatalf("expected an error navigating a null reference without ?.")
	}
}

func TestSafeNavigationOnIndexAccess(t *testing.T) {
	in := newInterp()
	ctx := mapContext{"a": nil}
	in.Context = ctx
	v, err := run(t, in, "a?[0]")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != nil {
		t.Fatalf("got %#v, want nil", v)
	}
}

func TestAntishResolvesDottedContextKeyWhenEnabled(t *testing.T) {
	in := newInterp()
	in.Antish = true
	ctx := mapContext{"request.id": int64(42)}
	in.Context = ctx
	v, err := run(t, in, "request.id")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(42) {
		t.Fatalf("got %#v, want 42", v)
	}
}

func TestAntishDisabledLeavesUnresolvedRootNull(t *testing.T) {
	in := newInterp()
	ctx := mapContext{"request.id": int64(42)}
	in.Context = ctx
	_, err := run(t, in, "request.id")
	if err == nil {
		t.Fatalf("expected an error navigating through an unresolved root without antish")
	}
}

func TestStrictRejectsUnknownIdentifier(t *testing.T) {
	in := newInterp()
	in.Strict = true
	_, err := run(t, in, "undeclared")
	if err == nil {
		t.Fatalf("expected VariableError for an unresolved identifier under Strict")
	}
	if _, ok := err.(*VariableError); !ok {
		t.Fatalf("got %T, want *VariableError", err)
	}
}

func TestLenientUnknownIdentifierEvaluatesToNull(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "undeclared")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != nil {
		t.Fatalf("got %#v, want nil", v)
	}
}

func TestLexicalRejectsSameBlockRedeclaration(t *testing.T) {
	in := newInterp()
	in.Lexical = true
	_, err := run(t, in, "{ var x = 1; var x = 2; x }")
	if err == nil {
		t.Fatalf("expected LexicalError for a same-block var redeclaration")
	}
	le, ok := err.(*LexicalError)
	if !ok {
		t.Fatalf("got %T, want *LexicalError", err)
	}
	if !le.Redeclare {
		t.Fatalf("got Redeclare=false, want true")
	}
}

func TestLexicalShadeRejectsShadowingOuterName(t *testing.T) {
	in := newInterp()
	in.Lexical = true
	in.LexicalShade = true
	_, err := run(t, in, "var x = 1; { var x = 2; x }")
	if err == nil {
		t.Fatalf("expected LexicalError shadowing an outer var under LexicalShade")
	}
	le, ok := err.(*LexicalError)
	if !ok {
		t.Fatalf("got %T, want *LexicalError", err)
	}
	if le.Redeclare {
		t.Fatalf("got Redeclare=true, want false (shadow, not same-block redeclaration)")
	}
}

func TestLexicalDoesNotHoistBlockLocalOutOfBlock(t *testing.T) {
	in := newInterp()
	in.Lexical = true
	_, err := run(t, in, "{ var x = 1; } x")
	if err == nil {
		t.Fatalf("expected an error reading x after its declaring block exited under Lexical")
	}
}

func TestNonLexicalHoistsVarToCallRoot(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "{ var x = 1; } x")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(1) {
		t.Fatalf("got %#v, want 1 (non-lexical var hoists to the call boundary)", v)
	}
}

func TestConstCaptureBlocksWriteToCapturedVariable(t *testing.T) {
	in := newInterp()
	in.ConstCapture = true
	_, err := run(t, in, "var total = 0; var add = (n) -> { total = total + n; }; add(1)")
	if err == nil {
		t.Fatalf("expected ConstCaptureError assigning to a captured outer variable")
	}
	if _, ok := err.(*ConstCaptureError); !ok {
		t.Fatalf("got %T, want *ConstCaptureError", err)
	}
}

func TestWithoutConstCaptureClosureCanMutateCapturedVariable(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "var total = 0; var add = (n) -> { total = total + n; }; add(1); add(2); total")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(3) {
		t.Fatalf("got %#v, want 3", v)
	}
}

func TestConstCaptureAllowsWriteToOwnLocal(t *testing.T) {
	in := newInterp()
	in.ConstCapture = true
	v, err := run(t, in, "var f = () -> { var local = 1; local = local + 1; local }; f()")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(2) {
		t.Fatalf("got %#v, want 2", v)
	}
}

func TestCancellationStopsEvaluation(t *testing.T) {
	in := newInterp()
	tree := mustParse(t, "1 + 1; 2 + 2; 3 + 3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.Eval(ctx, tree, NewFrame())
	if err == nil {
		t.Fatalf("expected CancelError from an already-cancelled context")
	}
	if _, ok := err.(*CancelError); !ok {
		t.Fatalf("got %T, want *CancelError", err)
	}
}

func TestCancellationMidLoop(t *testing.T) {
	in := newInterp()
	tree := mustParse(t, "var i = 0; while (true) { i = i + 1; }")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := in.Eval(ctx, tree, NewFrame())
	if err == nil {
		t.Fatalf("expected an infinite loop to be interrupted by context cancellation")
	}
	if _, ok := err.(*CancelError); !ok {
		t.Fatalf("got %T, want *CancelError", err)
	}
}

func TestStackOverflowOnDeepRecursion(t *testing.T) {
	in := newInterp()
	in.MaxDepth = 50
	src := "var fact = (n) -> n <= 1 ? 1 : n * fact(n - 1); fact(10000)"
	_, err := run(t, in, src)
	if err == nil {
		t.Fatalf("expected StackOverflowError from unbounded recursion")
	}
	if _, ok := err.(*StackOverflowError); !ok {
		t.Fatalf("got %T, want *StackOverflowError", err)
	}
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "var ran = false; try { throw 'boom'; } catch (e) { } finally { ran = true; } ran")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != true {
		t.Fatalf("finally did not run after a caught throw")
	}
}

func TestTryFinallyRunsEvenWithoutCatch(t *testing.T) {
	in := newInterp()
	_, err := run(t, in, "var ran = false; try { throw 'boom'; } finally { ran = true; }")
	if err == nil {
		t.Fatalf("expected the uncaught throw to keep propagating past finally")
	}
	if _, ok := err.(*ThrowError); !ok {
		t.Fatalf("got %T, want *ThrowError", err)
	}
}

func TestTryFinallyErrorReplacesPropagatingError(t *testing.T) {
	in := newInterp()
	_, err := run(t, in, "try { throw 'original'; } finally { throw 'replacement'; }")
	if err == nil {
		t.Fatalf("expected an error from the finally block's own throw")
	}
	te, ok := err.(*ThrowError)
	if !ok {
		t.Fatalf("got %T, want *ThrowError", err)
	}
	if te.Value != "replacement" {
		t.Fatalf("got thrown value %#v, want \"replacement\" (finally's error replaces the try body's)", te.Value)
	}
}

func TestTryCatchesRuntimeErrorsNotJustThrow(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "try { 1 / 0; } catch (e) { 'recovered'; }")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != "recovered" {
		t.Fatalf("got %#v, want \"recovered\" (a RuntimeError should be catchable like a throw)", v)
	}
}

func TestTryDoesNotCatchReturn(t *testing.T) {
	in := newInterp()
	v, err := run(t, in, "var f = () -> { try { return 1; } catch (e) { return 2; } }; f()")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(1) {
		t.Fatalf("got %#v, want 1 (return must unwind past try/catch, not be caught)", v)
	}
}

func TestTryResourceClosedInReverseOrder(t *testing.T) {
	in := newInterp()
	var order []string
	in.Introspect = introspection.New()
	in.Classes = NewFqcnResolver()
	in.Classes.Register("Resource", ClassEntry{
		New: func(args []interface{}) (interface{}, error) {
			name, _ := args[0].(string)
			return &trackedResource{name: name, order: &order}, nil
		},
		InstanceOf: func(value interface{}) bool {
			_, ok := value.(*trackedResource)
			return ok
		},
	})
	_, err := run(t, in, "try (var a = new Resource('a'); var b = new Resource('b')) { }")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("got close order %v, want [b a]", order)
	}
}

// trackedResource records its own name into a shared slice when Close is
// invoked, letting execTry's reverse-declaration-order closing be observed.
type trackedResource struct {
	name  string
	order *[]string
}

func (r *trackedResource) Close() error {
	*r.order = append(*r.order, r.name)
	return nil
}
