package jexl

import (
	"context"
	"strconv"
	"strings"

	"github.com/jexl-go/jexl/internal/arithmetic"
	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/config"
	"github.com/jexl-go/jexl/internal/interpreter"
)

// applyPragmas processes every #pragma key value; at the head of tree
// against opts/interp before evaluation starts (spec §4.1 "Pragma
// processing"). Recognized keys are handled directly; anything else is
// offered to ctx's PragmaProcessor, if it implements one.
func (e *Engine) applyPragmas(goCtx context.Context, tree *ast.Script, ctx Context, interp *interpreter.Interpreter, opts *config.Options) error {
	for _, p := range tree.Pragmas {
		value := pragmaLiteral(p.Value)
		switch {
		case p.Key == "jexl.options":
			applyOptionFlags(opts, value)
			interp.Arith = arithmetic.New(opts.Strict)
			interp.Strict = opts.Strict
			interp.Antish = opts.Antish
			interp.Lexical = opts.Lexical
			interp.LexicalShade = opts.LexicalShade
			interp.ConstCapture = opts.ConstCapture
		case p.Key == "jexl.import":
			// This engine resolves classes by registered name rather than by
			// package-root scan (see RegisterClass doc comment), so an import
			// pragma has nothing to add a path to; it is accepted and ignored
			// rather than rejected, matching the source's tolerance of
			// redundant imports.
		case strings.HasPrefix(p.Key, "jexl.namespace."):
			name := strings.TrimPrefix(p.Key, "jexl.namespace.")
			if !e.bindNamespacePragma(name, value, ctx, interp) {
				return newException(KindAnnotation, opts.Debug, 0, 0, "cannot resolve namespace %q", value)
			}
		case strings.HasPrefix(p.Key, "jexl.module."):
			name := strings.TrimPrefix(p.Key, "jexl.module.")
			src, ok := value.(string)
			if !ok {
				return newException(KindAnnotation, opts.Debug, 0, 0, "jexl.module.%s value must be a source string", name)
			}
			if err := e.bindModulePragma(goCtx, name, src, ctx, interp); err != nil {
				return err
			}
		default:
			if pp, ok := ctx.(PragmaProcessor); ok {
				pp.ProcessPragma(opts, p.Key, value)
				continue
			}
		}
	}
	return nil
}

func applyOptionFlags(opts *config.Options, value interface{}) {
	s, ok := value.(string)
	if !ok {
		return
	}
	for _, flag := range strings.Fields(s) {
		neg := strings.HasPrefix(flag, "!")
		flag = strings.TrimPrefix(flag, "!")
		switch flag {
		case "strict":
			opts.Strict = !neg
		case "safe":
			opts.Safe = !neg
		case "silent":
			opts.Silent = !neg
		case "cancellable":
			opts.Cancellable = !neg
		case "debug":
			opts.Debug = !neg
		case "lexical":
			opts.Lexical = !neg
		case "lexicalShade":
			opts.LexicalShade = !neg
		case "constCapture":
			opts.ConstCapture = !neg
		case "antish":
			opts.Antish = !neg
		}
	}
}

func (e *Engine) bindNamespacePragma(name string, value interface{}, ctx Context, interp *interpreter.Interpreter) bool {
	key, _ := value.(string)
	if key == "" {
		key = name
	}
	if cr, ok := ctx.(ClassResolver); ok {
		if ns, ok := cr.ResolveClassName(key); ok {
			interp.Namespaces[name] = toNamespaceMap(ns)
			return true
		}
	}
	if nr, ok := ctx.(NamespaceResolver); ok {
		if ns, ok := nr.ResolveNamespace(key); ok {
			interp.Namespaces[name] = toNamespaceMap(ns)
			return true
		}
	}
	e.mu.RLock()
	ns, ok := e.namespaces[key]
	e.mu.RUnlock()
	if ok {
		interp.Namespaces[name] = toNamespaceMap(ns)
		return true
	}
	return false
}

func toNamespaceMap(ns interface{}) map[string]interface{} {
	if m, ok := ns.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"self": ns}
}

func (e *Engine) bindModulePragma(goCtx context.Context, name, src string, ctx Context, interp *interpreter.Interpreter) error {
	if mp, ok := ctx.(ModuleProcessor); ok {
		if v, ok := mp.ProcessModule(e, name, src); ok {
			interp.Namespaces[name] = toNamespaceMap(v)
			return nil
		}
	}
	v, err := e.Eval(goCtx, ctx, src)
	if err != nil {
		return err
	}
	interp.Namespaces[name] = toNamespaceMap(v)
	return nil
}

// pragmaLiteral evaluates the (necessarily constant) pragma value
// expression without a full interpreter — pragmas run before the
// Frame/Context is ready to evaluate anything else.
func pragmaLiteral(n ast.Node) interface{} {
	switch v := n.(type) {
	case *ast.StringLiteral:
		return v.Value
	case *ast.Identifier:
		return v.Name
	case *ast.BoolLiteral:
		return v.Value
	case *ast.NumberLiteral:
		if i, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil {
			return f
		}
		return v.Text
	case *ast.NullLiteral:
		return nil
	default:
		return n.Image()
	}
}
