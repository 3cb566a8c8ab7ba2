// Package interpreter tree-walks an internal/ast Script against a Frame
// of local variables and a Context of host bindings, implementing the
// evaluation rules of spec §4.2. It plays the role the teacher's
// internal/evaluator.Evaluator plays for Funxy bytecode-free direct
// evaluation, and its control-flow propagation is grounded on the same
// sentinel-signal idiom the teacher uses in
// internal/evaluator/statements_control.go, adapted into the error
// hierarchy in signals.go.
package interpreter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jexl-go/jexl/internal/arithmetic"
	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/introspection"
)

const defaultMaxDepth = 2000

// Interpreter evaluates parsed scripts. Per-evaluation state (the current
// Frame and the call depth counter) is threaded through eval's parameters
// and a lightweight per-call *evalState; the host Context and the option
// flags are fields of the Interpreter itself, shared by every Eval call
// made on it.
type Interpreter struct {
	Arith      arithmetic.Arithmetic
	Introspect introspection.Introspector
	Classes    *FqcnResolver
	Functions  map[string]interface{}
	Namespaces map[string]map[string]interface{}
	MaxDepth   int

	// Strict rejects unresolved identifiers, free functions, and
	// constructors instead of evaluating them to null (spec §4.1
	// "strict", §7 Variable kind). Default false, matching JEXL's
	// lenient-by-default stance.
	Strict bool

	// Antish enables the dotted-key-as-single-identifier fallback for
	// references whose root never resolves as a variable (spec §4.1
	// "antish", §8 "with antish=false it raises unsolvable"). Default
	// false (spec's DefaultOptions ships antish off).
	Antish bool

	// Lexical enforces ordinary block scoping for `var` declarations:
	// a block's locals do not leak to the rest of the enclosing
	// script/lambda call once the block exits, and re-declaring a name
	// already declared in the same block is an error (spec §4.1
	// "lexical", §7 LexicalRedeclaration). Default false: JEXL's
	// historical (and, left at its default, surprising) non-lexical
	// `var` hoists to the nearest call boundary instead.
	Lexical bool

	// LexicalShade, only meaningful with Lexical set, additionally
	// rejects `var` declarations that shadow a name already visible in
	// an outer scope (spec §4.1 "lexicalShade", §7 LexicalShade).
	LexicalShade bool

	// ConstCapture makes a closure's captured frame read-only: writing
	// to a name a lambda resolved across its capture boundary raises
	// instead of silently rebinding the enclosing scope's variable
	// (spec §4.1 "constCapture", §7 ConstCapture).
	ConstCapture bool

	// Context is the host variable store consulted once a name misses
	// both the current Frame chain and Functions (spec §4.2.4); nil means
	// no host context is bound (e.g. a standalone getProperty/setProperty
	// evaluation that only ever touches its synthetic bean frame).
	Context Context

	// Annotate, if set, wraps execution of an @Name(args)-annotated
	// statement (spec §4.2.8); the default (nil) just runs body.
	Annotate func(name string, args []interface{}, body func() (interface{}, error)) (interface{}, error)
}

// New creates an Interpreter with the default arithmetic/introspection
// providers and empty function/class tables.
func New() *Interpreter {
	return &Interpreter{
		Arith:      arithmetic.New(false),
		Introspect: introspection.New(),
		Classes:    NewFqcnResolver(),
		Functions:  make(map[string]interface{}),
		Namespaces: make(map[string]map[string]interface{}),
		MaxDepth:   defaultMaxDepth,
	}
}

// evalState carries per-Eval-call context that would otherwise need to
// thread through every recursive eval call as extra parameters.
type evalState struct {
	ctx   context.Context
	depth int
	max   int
}

// Eval runs every top-level statement of script against frame in order
// and returns the value of the last one evaluated (JEXL scripts, like
// shell scripts, are "value of the last expression" — spec §4.2.2).
func (in *Interpreter) Eval(ctx context.Context, script *ast.Script, frame *Frame) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st := &evalState{ctx: ctx, max: in.MaxDepth}
	if st.max <= 0 {
		st.max = defaultMaxDepth
	}

	var result interface{}
	for _, stmt := range script.Statements {
		v, err := in.execStatement(stmt, frame, st)
		if err != nil {
			if ret, ok := err.(*returnSignal); ok {
				return ret.value, nil
			}
			return nil, err
		}
		result = v
	}
	return result, nil
}

// eval is the expression-evaluation entry point used by closures and
// other internal callers that already have an *evalState-free context
// (e.g. lambda parameter defaults evaluated outside a running Eval).
// It runs with a fresh depth budget.
func (in *Interpreter) eval(node ast.Node, frame *Frame) (interface{}, error) {
	st := &evalState{ctx: context.Background(), max: in.MaxDepth}
	if st.max <= 0 {
		st.max = defaultMaxDepth
	}
	return in.evalNode(node, frame, st)
}

func (in *Interpreter) checkBudget(st *evalState) error {
	st.depth++
	if st.depth > st.max {
		return &StackOverflowError{}
	}
	select {
	case <-st.ctx.Done():
		return &CancelError{Cause: st.ctx.Err()}
	default:
	}
	return nil
}

// evalNode dispatches on the concrete AST node type. It is the
// expression half of the tree-walk; execStatement (statements.go)
// handles statement nodes and calls back into evalNode for the
// sub-expressions they contain.
func (in *Interpreter) evalNode(node ast.Node, frame *Frame, st *evalState) (interface{}, error) {
	if err := in.checkBudget(st); err != nil {
		return nil, err
	}
	defer func() { st.depth-- }()

	switch n := node.(type) {
	case *ast.NullLiteral:
		return nil, nil
	case *ast.BoolLiteral:
		return n.Value, nil
	case *ast.NumberLiteral:
		return evalNumber(n)
	case *ast.StringLiteral:
		return n.Value, nil
	case *ast.RegexLiteral:
		return n.Pattern, nil
	case *ast.Identifier:
		return in.evalIdentifier(n, frame)
	case *ast.QualifiedIdentifier:
		return n.Image(), nil

	case *ast.BinaryExpr:
		return in.evalBinary(n, frame, st)
	case *ast.UnaryExpr:
		return in.evalUnary(n, frame, st)
	case *ast.IncDecExpr:
		return in.evalIncDec(n, frame, st)
	case *ast.TernaryExpr:
		return in.evalTernary(n, frame, st)
	case *ast.ElvisExpr:
		return in.evalElvis(n, frame, st)
	case *ast.CoalesceExpr:
		return in.evalCoalesce(n, frame, st)
	case *ast.RangeExpr:
		return in.evalRange(n, frame, st)
	case *ast.InstanceOfExpr:
		return in.evalInstanceOf(n, frame, st)
	case *ast.AssignExpr:
		return in.evalAssign(n, frame, st)
	case *ast.CompoundAssignExpr:
		return in.evalCompoundAssign(n, frame, st)

	case *ast.Lambda:
		return &Closure{Lambda: n, Frame: frame, Interp: in}, nil
	case *ast.CallExpr:
		return in.evalCall(n, frame, st)
	case *ast.ConstructorCall:
		return in.evalConstructor(n, frame, st)
	case *ast.Reference:
		v, _, err := in.evalReference(n, frame, st)
		return v, err

	case *ast.ArrayLiteral:
		return in.evalArrayLiteral(n, frame, st)
	case *ast.MapLiteral:
		return in.evalMapLiteral(n, frame, st)
	case *ast.SetLiteral:
		return in.evalSetLiteral(n, frame, st)

	case *ast.Block, *ast.IfStmt, *ast.WhileStmt, *ast.DoWhileStmt, *ast.ForStmt,
		*ast.ForEachStmt, *ast.TryStmt, *ast.ThrowStmt, *ast.ReturnStmt,
		*ast.BreakStmt, *ast.ContinueStmt, *ast.VarDecl, *ast.AnnotatedStatement,
		*ast.Pragma:
		return in.execStatement(node, frame, st)
	}
	return nil, in.errorAt(node, "no evaluation rule for %T", node)
}

func evalNumber(n *ast.NumberLiteral) (interface{}, error) {
	if n.IsFloat {
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number literal %q: %w", n.Text, err)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(n.Text, 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number literal %q: %w", n.Text, err)
		}
		return f, nil
	}
	return i, nil
}

func (in *Interpreter) errorAt(node ast.Node, format string, args ...interface{}) error {
	info := node.NodeInfo()
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Line: info.Line, Column: info.Column}
}

func (in *Interpreter) evalIdentifier(n *ast.Identifier, frame *Frame) (interface{}, error) {
	if v, ok := frame.Get(n.Name); ok {
		return v, nil
	}
	if v, ok := in.Functions[n.Name]; ok {
		return v, nil
	}
	if in.Context != nil {
		if v, ok := in.Context.Get(n.Name); ok {
			return v, nil
		}
	}
	if in.Lexical {
		return nil, &LexicalError{Name: n.Name}
	}
	if in.Strict {
		return nil, &VariableError{Name: n.Name}
	}
	return nil, nil // unresolved identifiers evaluate to null, per JEXL (spec §4.2.1)
}
