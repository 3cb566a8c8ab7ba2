// Package arithmetic implements the numeric/logical coercion rules JEXL
// scripts rely on: loose equality between mixed numeric types, the
// truthiness of arbitrary Go values, and the small set of overloaded
// operators (+ - * / % & | ^ << >> >>>) dispatched by runtime kind rather
// than static type. It plays the same role the teacher's
// internal/evaluator/expressions_operators.go plays for Funxy's typed
// Object values, adapted to the untyped interface{} values JEXL scripts
// pass in and out of Go.
package arithmetic

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Arithmetic is the pluggable operator provider an Interpreter consults
// for every binary/unary operator and predicate. A host embedding the
// engine can supply its own implementation (e.g. to add decimal money
// types) the way JEXL hosts subclass JexlArithmetic.
type Arithmetic interface {
	Add(left, right interface{}) (interface{}, error)
	Subtract(left, right interface{}) (interface{}, error)
	Multiply(left, right interface{}) (interface{}, error)
	Divide(left, right interface{}) (interface{}, error)
	Mod(left, right interface{}) (interface{}, error)
	Negate(value interface{}) (interface{}, error)
	Positivize(value interface{}) (interface{}, error)

	BitAnd(left, right interface{}) (interface{}, error)
	BitOr(left, right interface{}) (interface{}, error)
	BitXor(left, right interface{}) (interface{}, error)
	BitNot(value interface{}) (interface{}, error)
	ShiftLeft(left, right interface{}) (interface{}, error)
	ShiftRight(left, right interface{}) (interface{}, error)
	ShiftRightUnsigned(left, right interface{}) (interface{}, error)

	Equals(left, right interface{}) (bool, error)
	LessThan(left, right interface{}) (bool, error)
	LessThanOrEqual(left, right interface{}) (bool, error)
	GreaterThan(left, right interface{}) (bool, error)
	GreaterThanOrEqual(left, right interface{}) (bool, error)

	ToBoolean(value interface{}) bool
	ToString(value interface{}) string
	Contains(container, item interface{}) (bool, error)
	Matches(value interface{}, pattern string) (bool, error)
	StrictEquality() bool
}

// JexlArithmetic is the default Arithmetic, modeled on JEXL's own
// org.apache.commons.jexl3.JexlArithmetic: numeric operands are widened
// to the broadest of the two (int64 unless either side is a float64, in
// which case both go through float64), strings concatenate on '+', and
// collections/maps participate in `in`/`=~` via Contains/Matches.
type JexlArithmetic struct {
	// Strict mirrors JEXL's "strict" flag: when true, null operands in an
	// arithmetic context raise an error instead of coercing to zero.
	Strict bool
}

// New returns the default arithmetic provider.
func New(strict bool) *JexlArithmetic { return &JexlArithmetic{Strict: strict} }

func (a *JexlArithmetic) StrictEquality() bool { return a.Strict }

func (a *JexlArithmetic) nullGuard(op string, left, right interface{}) error {
	if a.Strict && (left == nil || right == nil) {
		return fmt.Errorf("%s: null operand not allowed in strict mode", op)
	}
	return nil
}

func (a *JexlArithmetic) Add(left, right interface{}) (interface{}, error) {
	if ls, ok := left.(string); ok {
		return ls + a.ToString(right), nil
	}
	if rs, ok := right.(string); ok {
		return a.ToString(left) + rs, nil
	}
	if err := a.nullGuard("+", left, right); err != nil {
		return nil, err
	}
	return numericOp(left, right, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

func (a *JexlArithmetic) Subtract(left, right interface{}) (interface{}, error) {
	if err := a.nullGuard("-", left, right); err != nil {
		return nil, err
	}
	return numericOp(left, right, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func (a *JexlArithmetic) Multiply(left, right interface{}) (interface{}, error) {
	if err := a.nullGuard("*", left, right); err != nil {
		return nil, err
	}
	return numericOp(left, right, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func (a *JexlArithmetic) Divide(left, right interface{}) (interface{}, error) {
	if err := a.nullGuard("/", left, right); err != nil {
		return nil, err
	}
	lf, rf, isFloat, err := widen(left, right)
	if err != nil {
		return nil, err
	}
	if isFloat {
		if rf == 0 {
			return nil, fmt.Errorf("/: division by zero")
		}
		return lf / rf, nil
	}
	li, ri := int64(lf), int64(rf)
	if ri == 0 {
		return nil, fmt.Errorf("/: division by zero")
	}
	return li / ri, nil
}

func (a *JexlArithmetic) Mod(left, right interface{}) (interface{}, error) {
	if err := a.nullGuard("%", left, right); err != nil {
		return nil, err
	}
	lf, rf, isFloat, err := widen(left, right)
	if err != nil {
		return nil, err
	}
	if isFloat {
		if rf == 0 {
			return nil, fmt.Errorf("%%: division by zero")
		}
		return math.Mod(lf, rf), nil
	}
	li, ri := int64(lf), int64(rf)
	if ri == 0 {
		return nil, fmt.Errorf("%%: division by zero")
	}
	return li % ri, nil
}

func (a *JexlArithmetic) Negate(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int64:
		return -v, nil
	case int:
		return -int64(v), nil
	case float64:
		return -v, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unary -: operand %T is not numeric", value)
}

func (a *JexlArithmetic) Positivize(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int64, int, float64:
		return v, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unary +: operand %T is not numeric", value)
}

func (a *JexlArithmetic) BitAnd(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts("&", left, right)
	if err != nil {
		return nil, err
	}
	return li & ri, nil
}

func (a *JexlArithmetic) BitOr(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts("|", left, right)
	if err != nil {
		return nil, err
	}
	return li | ri, nil
}

func (a *JexlArithmetic) BitXor(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts("^", left, right)
	if err != nil {
		return nil, err
	}
	return li ^ ri, nil
}

func (a *JexlArithmetic) BitNot(value interface{}) (interface{}, error) {
	iv, err := toInt64(value)
	if err != nil {
		return nil, fmt.Errorf("~: %w", err)
	}
	return ^iv, nil
}

func (a *JexlArithmetic) ShiftLeft(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts("<<", left, right)
	if err != nil {
		return nil, err
	}
	return li << uint(ri&63), nil
}

func (a *JexlArithmetic) ShiftRight(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts(">>", left, right)
	if err != nil {
		return nil, err
	}
	return li >> uint(ri&63), nil
}

func (a *JexlArithmetic) ShiftRightUnsigned(left, right interface{}) (interface{}, error) {
	li, ri, err := bothInts(">>>", left, right)
	if err != nil {
		return nil, err
	}
	return int64(uint64(li) >> uint(ri&63)), nil
}

func (a *JexlArithmetic) Equals(left, right interface{}) (bool, error) {
	if left == nil || right == nil {
		return left == right, nil
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return ls == rs, nil
		}
	}
	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			return lb == rb, nil
		}
	}
	lf, rf, _, err := widen(left, right)
	if err == nil {
		return lf == rf, nil
	}
	return reflect.DeepEqual(left, right), nil
}

func (a *JexlArithmetic) LessThan(left, right interface{}) (bool, error) {
	return compare(left, right, func(c int) bool { return c < 0 })
}

func (a *JexlArithmetic) LessThanOrEqual(left, right interface{}) (bool, error) {
	return compare(left, right, func(c int) bool { return c <= 0 })
}

func (a *JexlArithmetic) GreaterThan(left, right interface{}) (bool, error) {
	return compare(left, right, func(c int) bool { return c > 0 })
}

func (a *JexlArithmetic) GreaterThanOrEqual(left, right interface{}) (bool, error) {
	return compare(left, right, func(c int) bool { return c >= 0 })
}

func compare(left, right interface{}, test func(int) bool) (bool, error) {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return test(strings.Compare(ls, rs)), nil
		}
	}
	lf, rf, _, err := widen(left, right)
	if err != nil {
		return false, err
	}
	switch {
	case lf < rf:
		return test(-1), nil
	case lf > rf:
		return test(1), nil
	default:
		return test(0), nil
	}
}

// ToBoolean applies JEXL's truthiness rules (spec §4.2.1): nil is false,
// numbers are false only at zero, strings are false only when empty,
// collections/maps/arrays are false only when empty, everything else
// (host objects) is true.
func (a *JexlArithmetic) ToBoolean(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() != 0
	}
	return true
}

func (a *JexlArithmetic) ToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("%v", value)
}

// Contains implements the `in` operator: substring search for strings,
// membership for slices/arrays, key membership for maps.
func (a *JexlArithmetic) Contains(container, item interface{}) (bool, error) {
	if container == nil {
		return false, nil
	}
	if cs, ok := container.(string); ok {
		return strings.Contains(cs, a.ToString(item)), nil
	}
	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			eq, err := a.Equals(rv.Index(i).Interface(), item)
			if err == nil && eq {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			eq, err := a.Equals(k.Interface(), item)
			if err == nil && eq {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("in: %T is not a container", container)
}

// Matches implements `=~`/`!~` against a compiled regular expression.
func (a *JexlArithmetic) Matches(value interface{}, pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("=~: invalid pattern %q: %w", pattern, err)
	}
	return re.MatchString(a.ToString(value)), nil
}

func numericOp(left, right interface{}, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (interface{}, error) {
	lf, rf, isFloat, err := widen(left, right)
	if err != nil {
		return nil, err
	}
	if isFloat {
		return floatOp(lf, rf), nil
	}
	return intOp(int64(lf), int64(rf)), nil
}

func bothInts(op string, left, right interface{}) (int64, int64, error) {
	li, err := toInt64(left)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	ri, err := toInt64(right)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return li, ri, nil
}

// widen promotes both operands to float64 if either is a float, else
// returns both as integer-valued float64s (isFloat=false) for the caller
// to truncate back to int64.
func widen(left, right interface{}) (lf, rf float64, isFloat bool, err error) {
	lv, lIsFloat, err := toNumber(left)
	if err != nil {
		return 0, 0, false, err
	}
	rv, rIsFloat, err := toNumber(right)
	if err != nil {
		return 0, 0, false, err
	}
	return lv, rv, lIsFloat || rIsFloat, nil
}

func toNumber(v interface{}) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return float64(n), false, nil
	case int:
		return float64(n), false, nil
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case string:
		if n == "" {
			return 0, false, nil
		}
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return float64(i), false, nil
		}
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true, nil
		}
		return 0, false, fmt.Errorf("cannot coerce %q to a number", n)
	case bool:
		if n {
			return 1, false, nil
		}
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("cannot coerce %T to a number", v)
}

func toInt64(v interface{}) (int64, error) {
	f, _, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
