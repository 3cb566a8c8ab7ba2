package interpreter

import (
	"reflect"
	"strings"

	"github.com/jexl-go/jexl/internal/ast"
)

// funcallCache is the payload a MethodAccess node's *ast.Cache slot holds
// between re-evaluations of the same parsed script (spec's "Funcall
// cache record"): the resolved method name for the last receiver type
// seen at this call site, so a second call against a same-shaped
// receiver skips the exact/capitalized/getter-prefix probing in
// introspection.Default.GetMethod and goes straight to MethodByName.
type funcallCache struct {
	receiverType reflect.Type
	methodName   string
}

// resolveMethod consults and refreshes site's funcall cache before
// falling back to the full introspection probe: once a receiver type has
// resolved name (exact, capitalized, or Get/Is-prefixed) once, later
// calls at the same call site against the same receiver type skip
// straight to MethodByName.
func (in *Interpreter) resolveMethod(site ast.Node, current interface{}, name string) (reflect.Value, bool) {
	rt := reflect.TypeOf(current)
	if cached, ok := site.NodeCache().Load().(*funcallCache); ok && cached.receiverType == rt {
		if m := reflect.ValueOf(current).MethodByName(cached.methodName); m.IsValid() {
			return m, true
		}
	}
	method, ok := in.Introspect.GetMethod(current, name, nil)
	if ok {
		resolvedName := ""
		for _, candidate := range methodNameCandidates(name) {
			if reflect.ValueOf(current).MethodByName(candidate).IsValid() {
				resolvedName = candidate
				break
			}
		}
		if resolvedName != "" {
			site.NodeCache().Store(&funcallCache{receiverType: rt, methodName: resolvedName})
		}
	}
	return method, ok
}

// methodNameCandidates enumerates the same name variants
// introspection.Default.GetMethod tries, in the same order, so the
// funcall cache can record which one actually matched.
func methodNameCandidates(name string) []string {
	if name == "" {
		return nil
	}
	capitalized := strings.ToUpper(name[:1]) + name[1:]
	return []string{name, capitalized, "Get" + capitalized, "Is" + capitalized}
}

// evalReference walks a Reference's Root and Steps left to right,
// implementing safe-navigation short-circuiting and JEXL's "ant-ish"
// dotted-property fallback (spec §4.2.4): `a.b.c` first tries `a`
// resolving to an object with nested members `b`/`c`; if `a` itself is
// unresolved and every step is a plain property name, the whole dotted
// path is retried as a single context variable name, the way
// `request.getParameter.id` style ant variables work in JEXL when no
// `request` object exists but `request.getParameter.id` was bound
// directly as a context key.
func (in *Interpreter) evalReference(ref *ast.Reference, frame *Frame, st *evalState) (interface{}, bool, error) {
	dotted, ok := ant(ref)
	if ok && in.Antish {
		root := ref.Root.(*ast.Identifier).Name
		_, inFrame := frame.Get(root)
		_, isFn := in.Functions[root]
		ok = !inFrame && !isFn && (in.Context == nil || !in.Context.Has(root))
	}
	if in.Antish && ok {
		if v, found := frame.Get(dotted); found {
			return v, true, nil
		}
		if v, found := in.Functions[dotted]; found {
			return v, true, nil
		}
		if in.Context != nil {
			if v, found := in.Context.Get(dotted); found {
				return v, true, nil
			}
		}
	}

	current, err := in.evalNode(ref.Root, frame, st)
	if err != nil {
		return nil, false, err
	}

	for _, step := range ref.Steps {
		if current == nil {
			if step.IsSafe() {
				return nil, false, nil
			}
			return nil, false, in.errorAt(step, "cannot navigate null reference")
		}
		current, err = in.applyStep(current, step, frame, st)
		if err != nil {
			return nil, false, err
		}
	}
	return current, true, nil
}

// ant returns the dotted path for a Reference whose every step is a bare
// property name, or ok=false if it contains an index/method-call step.
func ant(ref *ast.Reference) (string, bool) {
	root, ok := ref.Root.(*ast.Identifier)
	if !ok {
		return "", false
	}
	parts := []string{root.Name}
	for _, s := range ref.Steps {
		ia, ok := s.(*ast.IdentifierAccess)
		if !ok {
			return "", false
		}
		parts = append(parts, ia.Name)
	}
	return strings.Join(parts, "."), true
}

func (in *Interpreter) applyStep(current interface{}, step ast.Node, frame *Frame, st *evalState) (interface{}, error) {
	switch s := step.(type) {
	case *ast.IdentifierAccess:
		v, ok, err := in.Introspect.GetPropertyGet(current, s.Name)
		if err != nil {
			if s.Safe {
				return nil, nil
			}
			return nil, err
		}
		if !ok && !s.Safe {
			return nil, in.errorAt(step, "no readable property %q on %T", s.Name, current)
		}
		return v, nil
	case *ast.ArrayAccess:
		idx, err := in.evalNode(s.Index, frame, st)
		if err != nil {
			return nil, err
		}
		v, err := indexInto(current, idx)
		if err != nil {
			if s.Safe {
				return nil, nil
			}
			return nil, in.errorAt(step, "%v", err)
		}
		return v, nil
	case *ast.MethodAccess:
		args := make([]interface{}, len(s.Args))
		for i, a := range s.Args {
			v, err := in.evalNode(a, frame, st)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		method, ok := in.resolveMethod(step, current, s.Name)
		if !ok {
			if s.Safe {
				return nil, nil
			}
			return nil, in.errorAt(step, "no method %q on %T", s.Name, current)
		}
		v, err := in.Introspect.Invoke(method, args)
		if err != nil {
			return nil, in.errorAt(step, "%v", err)
		}
		return v, nil
	}
	return nil, in.errorAt(step, "unsupported reference step %T", step)
}

func indexInto(container, idx interface{}) (interface{}, error) {
	switch c := container.(type) {
	case []interface{}:
		i, err := toInt(idx)
		if err != nil {
			return nil, err
		}
		if i < 0 || int(i) >= len(c) {
			return nil, nil
		}
		return c[i], nil
	case map[interface{}]interface{}:
		return c[idx], nil
	case string:
		i, err := toInt(idx)
		if err != nil {
			return nil, err
		}
		runes := []rune(c)
		if i < 0 || int(i) >= len(runes) {
			return nil, nil
		}
		return string(runes[i]), nil
	}
	return nil, indexError(container)
}

func indexError(container interface{}) error {
	return &RuntimeError{Message: "cannot index into value of this type", Cause: nil}
}

// assignReference resolves every step but the last to get the target
// container, then applies the assignment on the last step.
func (in *Interpreter) assignReference(ref *ast.Reference, value interface{}, frame *Frame, st *evalState) error {
	if len(ref.Steps) == 0 {
		return in.assignTo(ref.Root, value, frame, st)
	}

	current, err := in.evalNode(ref.Root, frame, st)
	if err != nil {
		return err
	}
	for _, step := range ref.Steps[:len(ref.Steps)-1] {
		if current == nil {
			if dotted, ok := ant(ref); in.Antish && ok && in.Context != nil {
				return in.Context.Set(dotted, value)
			}
			if step.IsSafe() {
				return nil
			}
			return in.errorAt(step, "cannot navigate null reference")
		}
		current, err = in.applyStep(current, step, frame, st)
		if err != nil {
			return err
		}
	}
	if current == nil {
		if dotted, ok := ant(ref); in.Antish && ok && in.Context != nil {
			return in.Context.Set(dotted, value)
		}
		if ref.IsSafeLhs() {
			return nil
		}
		return in.errorAt(ref, "cannot assign through null reference")
	}

	last := ref.Steps[len(ref.Steps)-1]
	switch s := last.(type) {
	case *ast.IdentifierAccess:
		_, err := in.Introspect.GetPropertySet(current, s.Name, value)
		return err
	case *ast.ArrayAccess:
		idx, err := in.evalNode(s.Index, frame, st)
		if err != nil {
			return err
		}
		return assignIndex(current, idx, value)
	}
	return in.errorAt(last, "cannot assign through a method-call step")
}

func assignIndex(container, idx, value interface{}) error {
	switch c := container.(type) {
	case []interface{}:
		i, err := toInt(idx)
		if err != nil {
			return err
		}
		if i < 0 || int(i) >= len(c) {
			return &RuntimeError{Message: "array index out of range"}
		}
		c[i] = value
		return nil
	case map[interface{}]interface{}:
		c[idx] = value
		return nil
	}
	return indexError(container)
}

// evalCall dispatches a free-function, namespace-qualified, or
// arbitrary-callee call expression (spec §4.2.6).
func (in *Interpreter) evalCall(n *ast.CallExpr, frame *Frame, st *evalState) (interface{}, error) {
	args := make([]interface{}, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalNode(a, frame, st)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	var callee interface{}
	switch {
	case n.Callee != nil:
		v, err := in.evalNode(n.Callee, frame, st)
		if err != nil {
			return nil, err
		}
		callee = v
	case n.Namespace != "":
		ns, ok := in.Namespaces[n.Namespace]
		if !ok {
			return nil, in.errorAt(n, "unknown namespace %q", n.Namespace)
		}
		fn, ok := ns[n.Name]
		if !ok {
			return nil, in.errorAt(n, "unknown function %s:%s", n.Namespace, n.Name)
		}
		callee = fn
	default:
		if v, ok := frame.Get(n.Name); ok {
			callee = v
		} else if fn, ok := in.Functions[n.Name]; ok {
			callee = fn
		} else if in.Context != nil {
			if v, ok := in.Context.Get(n.Name); ok {
				callee = v
			} else if in.Strict {
				return nil, &VariableError{Name: n.Name}
			} else {
				return nil, nil
			}
		} else if in.Strict {
			return nil, &VariableError{Name: n.Name}
		} else {
			return nil, nil
		}
	}

	return in.invokeCallable(n, callee, args, st)
}

func (in *Interpreter) invokeCallable(site ast.Node, callee interface{}, args []interface{}, st *evalState) (interface{}, error) {
	switch fn := callee.(type) {
	case *Closure:
		return fn.call(args, st)
	case func([]interface{}) (interface{}, error):
		return fn(args)
	}
	method, ok := in.Introspect.GetMethod(callee, "Call", args)
	if ok {
		return in.Introspect.Invoke(method, args)
	}
	return nil, in.errorAt(site, "%T is not callable", callee)
}

// evalConstructor implements `new ClassName(args)` via the FqcnResolver a
// host populates with Engine.RegisterClass (spec §4.2.1, §9).
func (in *Interpreter) evalConstructor(n *ast.ConstructorCall, frame *Frame, st *evalState) (interface{}, error) {
	name := n.Class.Image()
	entry, ok := in.Classes.Resolve(name)
	if !ok {
		if in.Strict {
			return nil, &VariableError{Name: name}
		}
		return nil, nil
	}
	args := make([]interface{}, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalNode(a, frame, st)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return entry.New(args)
}
