package interpreter

import "github.com/jexl-go/jexl/internal/ast"

// Closure is the runtime value a *ast.Lambda evaluates to: the lambda's
// AST plus the Frame it was defined in (spec §4.2.1). The Frame is held
// by reference, not snapshotted: Get walks the live enclosing chain, so a
// later reassignment of an outer variable is visible to the closure the
// next time it reads that name.
type Closure struct {
	Lambda *ast.Lambda
	Frame  *Frame
	Interp *Interpreter
}

// Call invokes the closure with positional args, applying parameter
// defaults for missing trailing arguments (spec §4.2.1 lambda params).
// It starts a fresh depth budget; calls made from a running evaluation go
// through call, so nested lambda calls count against the caller's budget.
func (c *Closure) Call(args []interface{}) (interface{}, error) {
	return c.call(args, nil)
}

// call is Call under the caller's evalState; a nil st starts a fresh one.
func (c *Closure) call(args []interface{}, st *evalState) (interface{}, error) {
	run := func(n ast.Node, f *Frame) (interface{}, error) {
		if st == nil {
			return c.Interp.eval(n, f)
		}
		return c.Interp.evalNode(n, f, st)
	}
	frame := c.Frame.Child()
	frame.isCall = true
	frame.closureBoundary = c.Interp.ConstCapture
	for i, param := range c.Lambda.Params {
		if i < len(args) {
			frame.Declare(param.Name, args[i])
			continue
		}
		if param.Default != nil {
			v, err := run(param.Default, frame)
			if err != nil {
				return nil, err
			}
			frame.Declare(param.Name, v)
			continue
		}
		frame.Declare(param.Name, nil)
	}

	result, err := run(c.Lambda.Body, frame)
	if err != nil {
		if ret, ok := err.(*returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return result, nil
}

// FqcnResolver maps a dotted class name (`java.util.ArrayList`-style in
// JEXL, a Go type name here) to a constructible/instanceof-testable Go
// type, and is how `new ClassName(args)` and `expr instanceof ClassName`
// resolve their Class operand (spec §4.2.1, §4.2.3). Hosts register
// types with Engine.RegisterClass; there is no reflection-based global
// class lookup in Go the way java.lang.Class.forName provides one.
type FqcnResolver struct {
	byName map[string]ClassEntry
}

// ClassEntry pairs a constructor (building an instance from the `new`
// call's arguments) with an
// instanceof test for one registered class name.
type ClassEntry struct {
	New        func(args []interface{}) (interface{}, error)
	InstanceOf func(value interface{}) bool
}

// NewFqcnResolver creates an empty resolver; hosts populate it via
// Register before any script using `new`/`instanceof` is run.
func NewFqcnResolver() *FqcnResolver {
	return &FqcnResolver{byName: make(map[string]ClassEntry)}
}

func (r *FqcnResolver) Register(name string, entry ClassEntry) {
	r.byName[name] = entry
}

func (r *FqcnResolver) Resolve(name string) (ClassEntry, bool) {
	e, ok := r.byName[name]
	return e, ok
}
