package interpreter

import (
	"fmt"

	"github.com/jexl-go/jexl/internal/ast"
)

func (in *Interpreter) evalBinary(n *ast.BinaryExpr, frame *Frame, st *evalState) (interface{}, error) {
	// Short-circuit logical operators never evaluate the right operand
	// unless needed (spec §4.2.3).
	switch n.Operator {
	case "&&":
		l, err := in.evalNode(n.Left, frame, st)
		if err != nil {
			return nil, err
		}
		if !in.Arith.ToBoolean(l) {
			return false, nil
		}
		r, err := in.evalNode(n.Right, frame, st)
		if err != nil {
			return nil, err
		}
		return in.Arith.ToBoolean(r), nil
	case "||":
		l, err := in.evalNode(n.Left, frame, st)
		if err != nil {
			return nil, err
		}
		if in.Arith.ToBoolean(l) {
			return true, nil
		}
		r, err := in.evalNode(n.Right, frame, st)
		if err != nil {
			return nil, err
		}
		return in.Arith.ToBoolean(r), nil
	}

	left, err := in.evalNode(n.Left, frame, st)
	if err != nil {
		return nil, err
	}
	right, err := in.evalNode(n.Right, frame, st)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "+":
		return in.Arith.Add(left, right)
	case "-":
		return in.Arith.Subtract(left, right)
	case "*":
		return in.Arith.Multiply(left, right)
	case "/":
		return in.Arith.Divide(left, right)
	case "%":
		return in.Arith.Mod(left, right)
	case "&":
		return in.Arith.BitAnd(left, right)
	case "|":
		return in.Arith.BitOr(left, right)
	case "^":
		return in.Arith.BitXor(left, right)
	case "<<":
		return in.Arith.ShiftLeft(left, right)
	case ">>":
		return in.Arith.ShiftRight(left, right)
	case ">>>":
		return in.Arith.ShiftRightUnsigned(left, right)
	case "==":
		return in.Arith.Equals(left, right)
	case "!=":
		eq, err := in.Arith.Equals(left, right)
		return !eq, err
	case "<":
		return in.Arith.LessThan(left, right)
	case "<=":
		return in.Arith.LessThanOrEqual(left, right)
	case ">":
		return in.Arith.GreaterThan(left, right)
	case ">=":
		return in.Arith.GreaterThanOrEqual(left, right)
	case "in":
		return in.Arith.Contains(right, left)
	case "=~":
		return in.Arith.Matches(left, in.Arith.ToString(right))
	case "!~":
		m, err := in.Arith.Matches(left, in.Arith.ToString(right))
		return !m, err
	case "^=":
		return startsWith(in, left, right)
	case "$=":
		return endsWith(in, left, right)
	}
	return nil, in.errorAt(n, "unknown binary operator %q", n.Operator)
}

func startsWith(in *Interpreter, left, right interface{}) (interface{}, error) {
	ls, rs := in.Arith.ToString(left), in.Arith.ToString(right)
	return len(ls) >= len(rs) && ls[:len(rs)] == rs, nil
}

func endsWith(in *Interpreter, left, right interface{}) (interface{}, error) {
	ls, rs := in.Arith.ToString(left), in.Arith.ToString(right)
	return len(ls) >= len(rs) && ls[len(ls)-len(rs):] == rs, nil
}

func (in *Interpreter) evalUnary(n *ast.UnaryExpr, frame *Frame, st *evalState) (interface{}, error) {
	v, err := in.evalNode(n.Operand, frame, st)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		return in.Arith.Negate(v)
	case "+":
		return in.Arith.Positivize(v)
	case "!":
		return !in.Arith.ToBoolean(v), nil
	case "~":
		return in.Arith.BitNot(v)
	}
	return nil, in.errorAt(n, "unknown unary operator %q", n.Operator)
}

func (in *Interpreter) evalIncDec(n *ast.IncDecExpr, frame *Frame, st *evalState) (interface{}, error) {
	old, err := in.evalNode(n.Operand, frame, st)
	if err != nil {
		return nil, err
	}
	delta := int64(1)
	if n.Operator == "--" {
		delta = -1
	}
	next, err := in.Arith.Add(old, delta)
	if err != nil {
		return nil, err
	}
	if err := in.assignTo(n.Operand, next, frame, st); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return old, nil
}

func (in *Interpreter) evalTernary(n *ast.TernaryExpr, frame *Frame, st *evalState) (interface{}, error) {
	cond, err := in.evalNode(n.Cond, frame, st)
	if err != nil {
		return nil, err
	}
	if in.Arith.ToBoolean(cond) {
		return in.evalNode(n.Then, frame, st)
	}
	return in.evalNode(n.Else, frame, st)
}

// evalElvis implements `left ?: right`: left's truthiness (not just
// null-ness) decides, matching JEXL's elvis operator (spec §4.2.3).
func (in *Interpreter) evalElvis(n *ast.ElvisExpr, frame *Frame, st *evalState) (interface{}, error) {
	left, err := in.evalNode(n.Left, frame, st)
	if err != nil {
		return nil, err
	}
	if in.Arith.ToBoolean(left) {
		return left, nil
	}
	return in.evalNode(n.Right, frame, st)
}

// evalCoalesce implements `left ?? right`: only null triggers the right
// side, unlike elvis (spec §4.2.3).
func (in *Interpreter) evalCoalesce(n *ast.CoalesceExpr, frame *Frame, st *evalState) (interface{}, error) {
	left, err := in.evalNode(n.Left, frame, st)
	if err != nil {
		return nil, err
	}
	if left != nil {
		return left, nil
	}
	return in.evalNode(n.Right, frame, st)
}

// jexlRange is the runtime value of `from..to`: a lazily materialized
// integer range, iterable by foreach and convertible to a slice.
type jexlRange struct {
	From, To int64
}

func (r jexlRange) Slice() []interface{} {
	if r.To < r.From {
		return nil
	}
	out := make([]interface{}, 0, r.To-r.From+1)
	for i := r.From; i <= r.To; i++ {
		out = append(out, i)
	}
	return out
}

func (in *Interpreter) evalRange(n *ast.RangeExpr, frame *Frame, st *evalState) (interface{}, error) {
	from, err := in.evalNode(n.From, frame, st)
	if err != nil {
		return nil, err
	}
	to, err := in.evalNode(n.To, frame, st)
	if err != nil {
		return nil, err
	}
	fi, err := toInt(from)
	if err != nil {
		return nil, in.errorAt(n, "range bound: %v", err)
	}
	ti, err := toInt(to)
	if err != nil {
		return nil, in.errorAt(n, "range bound: %v", err)
	}
	return jexlRange{From: fi, To: ti}, nil
}

func toInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("%v is not an integer", v)
}

func (in *Interpreter) evalInstanceOf(n *ast.InstanceOfExpr, frame *Frame, st *evalState) (interface{}, error) {
	v, err := in.evalNode(n.Expr, frame, st)
	if err != nil {
		return nil, err
	}
	className := n.Class.Image()
	entry, ok := in.Classes.Resolve(className)
	result := false
	if ok {
		result = entry.InstanceOf(v)
	}
	if n.Negate {
		return !result, nil
	}
	return result, nil
}

func (in *Interpreter) evalAssign(n *ast.AssignExpr, frame *Frame, st *evalState) (interface{}, error) {
	value, err := in.evalNode(n.Value, frame, st)
	if err != nil {
		return nil, err
	}
	if err := in.assignTo(n.Target, value, frame, st); err != nil {
		return nil, err
	}
	return value, nil
}

func (in *Interpreter) evalCompoundAssign(n *ast.CompoundAssignExpr, frame *Frame, st *evalState) (interface{}, error) {
	current, err := in.evalNode(n.Target, frame, st)
	if err != nil {
		return nil, err
	}
	rhs, err := in.evalNode(n.Value, frame, st)
	if err != nil {
		return nil, err
	}
	var result interface{}
	switch n.Operator {
	case "+":
		result, err = in.Arith.Add(current, rhs)
	case "-":
		result, err = in.Arith.Subtract(current, rhs)
	case "*":
		result, err = in.Arith.Multiply(current, rhs)
	case "/":
		result, err = in.Arith.Divide(current, rhs)
	case "%":
		result, err = in.Arith.Mod(current, rhs)
	case "&":
		result, err = in.Arith.BitAnd(current, rhs)
	case "|":
		result, err = in.Arith.BitOr(current, rhs)
	case "^":
		result, err = in.Arith.BitXor(current, rhs)
	case "<<":
		result, err = in.Arith.ShiftLeft(current, rhs)
	case ">>":
		result, err = in.Arith.ShiftRight(current, rhs)
	default:
		return nil, in.errorAt(n, "unknown compound assignment operator %q", n.Operator)
	}
	if err != nil {
		return nil, err
	}
	if err := in.assignTo(n.Target, result, frame, st); err != nil {
		return nil, err
	}
	return result, nil
}

// assignTo resolves target (an Identifier or Reference) as an lvalue and
// stores value into it (spec §4.2.5).
func (in *Interpreter) assignTo(target ast.Node, value interface{}, frame *Frame, st *evalState) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if frame.Has(t.Name) || in.Context == nil {
			return frame.Set(t.Name, value)
		}
		return in.Context.Set(t.Name, value)
	case *ast.Reference:
		return in.assignReference(t, value, frame, st)
	}
	return in.errorAt(target, "invalid assignment target")
}

func (in *Interpreter) evalArrayLiteral(n *ast.ArrayLiteral, frame *Frame, st *evalState) (interface{}, error) {
	out := make([]interface{}, len(n.Elements))
	for i, e := range n.Elements {
		v, err := in.evalNode(e, frame, st)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (in *Interpreter) evalMapLiteral(n *ast.MapLiteral, frame *Frame, st *evalState) (interface{}, error) {
	out := make(map[interface{}]interface{}, len(n.Entries))
	for _, e := range n.Entries {
		k, err := in.evalNode(e.Key, frame, st)
		if err != nil {
			return nil, err
		}
		v, err := in.evalNode(e.Value, frame, st)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (in *Interpreter) evalSetLiteral(n *ast.SetLiteral, frame *Frame, st *evalState) (interface{}, error) {
	out := make(map[interface{}]struct{}, len(n.Elements))
	for _, e := range n.Elements {
		v, err := in.evalNode(e, frame, st)
		if err != nil {
			return nil, err
		}
		out[v] = struct{}{}
	}
	return out, nil
}
