package jexl

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/interpreter"
	"github.com/jexl-go/jexl/internal/prettyprinter"
)

func newScriptID() uuid.UUID { return uuid.New() }

// Script wraps a parsed AST with the Engine it came from and its
// declared positional parameter names (spec §6 "Script").
type Script struct {
	id         uuid.UUID
	engine     *Engine
	text       string
	features   ast.Features
	tree       *ast.Script
	parameters []string
}

// ID is a stable per-parse identity, shown in Dump's trailing diagnostic
// comment to tell distinct parses apart (spec §5 domain-stack wiring).
func (s *Script) ID() string { return s.id.String() }

// Text returns the original source this Script was parsed from.
func (s *Script) Text() string { return s.text }

// Parameters returns the positional parameter names CreateScript was
// given, in order.
func (s *Script) Parameters() []string { return append([]string(nil), s.parameters...) }

// LocalVariables returns every name introduced by a `var` declaration
// anywhere in the script, in first-declaration order.
func (s *Script) LocalVariables() []string {
	var names []string
	seen := make(map[string]bool)
	ast.Walk(s.tree, func(n ast.Node) {
		if vd, ok := n.(*ast.VarDecl); ok && !seen[vd.Name] {
			seen[vd.Name] = true
			names = append(names, vd.Name)
		}
	})
	return names
}

// Variables returns the ant-ish variable paths the script references,
// per Options.CollectMode (spec §4.1 "Variable collection", §8 example).
func (s *Script) Variables() [][]string {
	return collectVariables(s.tree, s.engine.Options.CollectMode)
}

// Dump renders a pretty-printed reconstruction of the script from its
// parsed AST, rather than echoing the original source text back, plus a
// trailing human-scale diagnostic comment (spec §6 dump()).
func (s *Script) Dump() string {
	var b strings.Builder
	b.WriteString(prettyprinter.Print(s.tree))
	b.WriteString("\n// ")
	b.WriteString(humanizeDumpFooter(s))
	return b.String()
}

// Execute runs the script against ctx, binding args positionally to
// Parameters, and returns the value of the last top-level statement
// (spec §6 execute()). goCtx governs cancellation (spec §5/§8
// "Cancellable"): a nil goCtx runs uncancellably, the same as
// context.Background(). Cancelling goCtx mid-evaluation surfaces a
// Cancel-kind JexlException when Options.Cancellable is set, or a quiet
// nil result otherwise.
func (s *Script) Execute(goCtx context.Context, ctx Context, args ...interface{}) (interface{}, error) {
	if goCtx == nil {
		goCtx = context.Background()
	}
	opts := s.engine.Options
	if op, ok := ctx.(OptionsProvider); ok {
		opts = op.EngineOptions()
	}

	interp := s.engine.newInterpreter(opts)
	if ctx != nil {
		interp.Context = ctx
		if ap, ok := ctx.(AnnotationProcessor); ok {
			interp.Annotate = ap.ProcessAnnotation
		}
	}

	if err := s.engine.applyPragmas(goCtx, s.tree, ctx, interp, &opts); err != nil {
		return nil, s.engine.wrapError(err)
	}

	frame := interpreter.NewFrame()
	for i, name := range s.parameters {
		if i < len(args) {
			frame.Declare(name, args[i])
		} else {
			frame.Declare(name, nil)
		}
	}

	result, err := interp.Eval(goCtx, s.tree, frame)
	if err != nil {
		if ce, ok := err.(*interpreter.CancelError); ok {
			if !opts.Cancellable {
				return nil, nil
			}
			return nil, s.engine.wrapError(ce)
		}
		if opts.Silent {
			log.Printf("jexl: %v", err)
			return nil, nil
		}
		return nil, s.engine.wrapError(err)
	}
	return result, nil
}

// Evaluate is Execute with no arguments, except an empty script (no
// top-level statements) always returns nil rather than invoking the
// interpreter at all (spec §6 evaluate()).
func (s *Script) Evaluate(goCtx context.Context, ctx Context) (interface{}, error) {
	if len(s.tree.Statements) == 0 {
		return nil, nil
	}
	return s.Execute(goCtx, ctx)
}

// Callable returns a deferred handle that runs Execute(goCtx, ctx, args...)
// when called (spec §6 callable()).
func (s *Script) Callable(goCtx context.Context, ctx Context, args ...interface{}) func() (interface{}, error) {
	return func() (interface{}, error) {
		return s.Execute(goCtx, ctx, args...)
	}
}

func humanizeDumpFooter(s *Script) string {
	return fmt.Sprintf("%s, id %s", humanize.Bytes(uint64(len(s.text))), s.id.String())
}

// collectVariables walks tree producing the ant-ish variable paths a
// Context would need to bind for this script to resolve every free
// name, per spec §4.1's rules. Lambda parameters and foreach/var-decl
// locals are tracked as "bound" while descending so they are excluded,
// approximating the source's Scope-based local/captured distinction
// without a separate resolver pass (see DESIGN.md).
func collectVariables(tree *ast.Script, collectMode int) [][]string {
	var paths [][]string
	seen := make(map[string]bool)
	walkVariables(tree, map[string]bool{}, collectMode, &paths, seen)
	return paths
}

func walkVariables(n ast.Node, bound map[string]bool, mode int, paths *[][]string, seen map[string]bool) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.Lambda:
		child := cloneBound(bound)
		for _, p := range v.Params {
			child[p.Name] = true
			if p.Default != nil {
				walkVariables(p.Default, bound, mode, paths, seen)
			}
		}
		walkVariables(v.Body, child, mode, paths, seen)
		return
	case *ast.VarDecl:
		if v.Init != nil {
			walkVariables(v.Init, bound, mode, paths, seen)
		}
		bound[v.Name] = true
		return
	case *ast.ForEachStmt:
		walkVariables(v.Iterable, bound, mode, paths, seen)
		child := cloneBound(bound)
		child[v.VarName] = true
		walkVariables(v.Body, child, mode, paths, seen)
		return
	case *ast.TryStmt:
		child := cloneBound(bound)
		for _, r := range v.Resources {
			walkVariables(r.Init, bound, mode, paths, seen)
			child[r.Name] = true
		}
		walkVariables(v.Body, child, mode, paths, seen)
		if v.CatchBody != nil {
			catchChild := cloneBound(bound)
			if v.CatchVar != "" {
				catchChild[v.CatchVar] = true
			}
			walkVariables(v.CatchBody, catchChild, mode, paths, seen)
		}
		if v.Finally != nil {
			walkVariables(v.Finally, bound, mode, paths, seen)
		}
		return
	case *ast.Reference:
		path := referencePath(v, mode)
		if len(path) > 0 && !bound[path[0]] {
			addPath(paths, seen, path)
		}
		for _, step := range v.Steps {
			switch s := step.(type) {
			case *ast.ArrayAccess:
				walkVariables(s.Index, bound, mode, paths, seen)
			case *ast.MethodAccess:
				for _, a := range s.Args {
					walkVariables(a, bound, mode, paths, seen)
				}
			}
		}
		return
	case *ast.Identifier:
		if bound[v.Name] {
			return
		}
		addPath(paths, seen, []string{v.Name})
		return
	case *ast.CallExpr:
		if v.Callee != nil {
			walkVariables(v.Callee, bound, mode, paths, seen)
		}
		for _, a := range v.Args {
			walkVariables(a, bound, mode, paths, seen)
		}
		return
	}
	for _, c := range n.Children() {
		walkVariables(c, bound, mode, paths, seen)
	}
}

func cloneBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k, v := range bound {
		out[k] = v
	}
	return out
}

func addPath(paths *[][]string, seen map[string]bool, path []string) {
	key := strings.Join(path, "\x00")
	if seen[key] {
		return
	}
	seen[key] = true
	*paths = append(*paths, path)
}

// referencePath builds the dotted/indexed path for ref, stopping at the
// first step that doesn't qualify under mode (spec: "0: dot only; 1: +
// string/number const index; 2: + any constant index").
func referencePath(ref *ast.Reference, mode int) []string {
	root, ok := ref.Root.(*ast.Identifier)
	if !ok {
		return nil
	}
	path := []string{root.Name}
	for _, step := range ref.Steps {
		switch s := step.(type) {
		case *ast.IdentifierAccess:
			path = append(path, s.Name)
		case *ast.ArrayAccess:
			if mode == 0 || !s.Index.IsConstant() {
				return path
			}
			if lit, ok := constIndexString(s.Index); ok {
				path = append(path, lit)
				continue
			}
			if mode < 2 {
				return path
			}
			path = append(path, s.Index.Image())
		default:
			return path
		}
	}
	return path
}

func constIndexString(n ast.Node) (string, bool) {
	switch v := n.(type) {
	case *ast.StringLiteral:
		return v.Value, true
	case *ast.NumberLiteral:
		return v.Text, true
	}
	return "", false
}
