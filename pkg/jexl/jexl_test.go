package jexl

import (
	"context"
	"testing"
	"time"
)

func TestEvalArithmetic(t *testing.T) {
	j := New()
	v, err := j.Eval("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(14) && v != 14 {
		t.Fatalf("got %#v", v)
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	j := New()
	j.Set("name", "ada")
	v, ok := j.Get("name")
	if !ok || v != "ada" {
		t.Fatalf("Get returned (%v, %v)", v, ok)
	}
}

func TestEvalReadsSetVariable(t *testing.T) {
	j := New()
	j.Set("x", 10)
	v, err := j.Eval("x * 2")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(20) && v != 20 {
		t.Fatalf("got %#v", v)
	}
}

func TestBindAndCallGoFunction(t *testing.T) {
	j := New()
	j.Bind("double", func(n int64) int64 { return n * 2 })

	v, err := j.Call("double", int64(21))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != int64(42) {
		t.Fatalf("got %#v", v)
	}
}

func TestBindMakesFunctionCallableFromScript(t *testing.T) {
	j := New()
	j.Bind("square", func(n int64) int64 { return n * n })

	v, err := j.Eval("square(6)")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(36) {
		t.Fatalf("got %#v", v)
	}
}

func TestCompileReusesScriptAcrossEvaluations(t *testing.T) {
	j := New()
	script, err := j.Compile("a + b", "a", "b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v1, err := script.Execute(nil, j.Context(), int64(1), int64(2))
	if err != nil {
		t.Fatalf("Execute 1: %v", err)
	}
	v2, err := script.Execute(nil, j.Context(), int64(10), int64(20))
	if err != nil {
		t.Fatalf("Execute 2: %v", err)
	}
	if v1 != int64(3) || v2 != int64(30) {
		t.Fatalf("got %#v, %#v", v1, v2)
	}
}

func TestWithStrictOption(t *testing.T) {
	j := New(WithStrict(true))
	if !j.Engine().Options.Strict {
		t.Fatalf("Strict option was not applied")
	}
}

func TestAdaptFuncSplitsErrorReturn(t *testing.T) {
	j := New()
	j.Bind("fail", func() (int64, error) { return 0, errBoom })

	_, err := j.Call("fail")
	if err == nil {
		t.Fatalf("expected error from bound function")
	}
}

func TestEvalContextCancellationStopsLongRunningScript(t *testing.T) {
	j := New(WithCancellable(true))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := j.EvalContext(ctx, "while (true) {}")
	if err == nil {
		t.Fatalf("expected a cancellation error from an infinite script")
	}
}

func TestEvalUncancellableWithoutContext(t *testing.T) {
	j := New()
	v, err := j.Eval("1 + 1")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != int64(2) && v != 2 {
		t.Fatalf("got %#v", v)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
