package arithmetic

import "testing"

func TestAddWidensToFloatWhenEitherOperandIsFloat(t *testing.T) {
	a := New(false)
	v, err := a.Add(int64(1), 2.5)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v != 3.5 {
		t.Fatalf("got %#v, want 3.5", v)
	}
}

func TestAddKeepsIntegerWhenNeitherOperandIsFloat(t *testing.T) {
	a := New(false)
	v, err := a.Add(int64(1), int64(2))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v != int64(3) {
		t.Fatalf("got %#v (%T), want int64(3)", v, v)
	}
}

func TestAddConcatenatesStrings(t *testing.T) {
	a := New(false)
	v, err := a.Add("foo", int64(1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v != "foo1" {
		t.Fatalf("got %#v, want \"foo1\"", v)
	}
}

func TestDivideByZeroErrors(t *testing.T) {
	a := New(false)
	if _, err := a.Divide(int64(1), int64(0)); err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}

func TestStrictRejectsNullOperand(t *testing.T) {
	a := New(true)
	if _, err := a.Add(nil, int64(1)); err == nil {
		t.Fatalf("expected a null-operand error in strict mode")
	}
}

func TestLenientToleratesNullOperand(t *testing.T) {
	a := New(false)
	v, err := a.Add(nil, int64(1))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if v != int64(1) {
		t.Fatalf("got %#v, want 1 (null coerces to zero outside strict mode)", v)
	}
}

func TestToBooleanTruthiness(t *testing.T) {
	a := New(false)
	cases := []struct {
		v    interface{}
		want bool
	}{
		{nil, false},
		{int64(0), false},
		{int64(1), true},
		{"", false},
		{"x", true},
		{[]interface{}{}, false},
		{[]interface{}{1}, true},
		{false, false},
		{true, true},
	}
	for _, c := range cases {
		if got := a.ToBoolean(c.v); got != c.want {
			t.Errorf("ToBoolean(%#v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestEqualsCoercesMixedNumericTypes(t *testing.T) {
	a := New(false)
	eq, err := a.Equals(int64(1), 1.0)
	if err != nil {
		t.Fatalf("Equals: %v", err)
	}
	if !eq {
		t.Fatalf("1 (int64) != 1.0 (float64), want equal")
	}
}

func TestCompareOperatorsOnStrings(t *testing.T) {
	a := New(false)
	lt, err := a.LessThan("abc", "abd")
	if err != nil {
		t.Fatalf("LessThan: %v", err)
	}
	if !lt {
		t.Fatalf("\"abc\" < \"abd\" should be true")
	}
}

func TestContainsOnSlice(t *testing.T) {
	a := New(false)
	ok, err := a.Contains([]interface{}{int64(1), int64(2), int64(3)}, int64(2))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatalf("expected 2 in [1,2,3]")
	}
}

func TestContainsSubstring(t *testing.T) {
	a := New(false)
	ok, err := a.Contains("hello world", "wor")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatalf("expected \"wor\" in \"hello world\"")
	}
}

func TestMatchesRegex(t *testing.T) {
	a := New(false)
	ok, err := a.Matches("hello123", "^[a-z]+[0-9]+$")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if !ok {
		t.Fatalf("expected \"hello123\" to match pattern")
	}
}

func TestBitwiseOperators(t *testing.T) {
	a := New(false)
	v, err := a.BitAnd(int64(6), int64(3))
	if err != nil {
		t.Fatalf("BitAnd: %v", err)
	}
	if v != int64(2) {
		t.Fatalf("got %#v, want 2", v)
	}
	v, err = a.ShiftLeft(int64(1), int64(4))
	if err != nil {
		t.Fatalf("ShiftLeft: %v", err)
	}
	if v != int64(16) {
		t.Fatalf("got %#v, want 16", v)
	}
}

func TestNegateAndPositivize(t *testing.T) {
	a := New(false)
	v, err := a.Negate(int64(5))
	if err != nil {
		t.Fatalf("Negate: %v", err)
	}
	if v != int64(-5) {
		t.Fatalf("got %#v, want -5", v)
	}
}
