// Package jexl implements the Engine facade spec §4.1/§6 describes:
// parse+cache, Script construction, property accessor shortcuts, class
// instantiation, and pragma processing, sitting on top of
// internal/interpreter the way the teacher's internal/vm sits on top of
// internal/evaluator for the top-level Run/Eval entry points.
package jexl

import (
	"context"
	"strings"
	"sync"

	"github.com/jexl-go/jexl/internal/arithmetic"
	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/cache"
	"github.com/jexl-go/jexl/internal/config"
	"github.com/jexl-go/jexl/internal/interpreter"
	"github.com/jexl-go/jexl/internal/introspection"
	"github.com/jexl-go/jexl/internal/parser"
)

// Engine ingests source and produces Scripts, maintaining a parse cache
// and the default configuration every Script evaluates under (spec
// §4.1). One Engine is safe to share across goroutines for parsing and
// caching; each Script.Execute call builds its own Frame and
// Interpreter instance, so interpretation itself is never shared state
// (spec §5 "the engine is intended to be shared... for parsing and
// caching; interpretation is not shared").
type Engine struct {
	Options config.Options

	cache   *cache.ScriptCache
	classes *interpreter.FqcnResolver

	mu         sync.RWMutex
	namespaces map[string]interface{}
	functions  map[string]interface{}
}

// New creates an Engine with the given Options, an empty class registry,
// and a parse cache sized per Options.CacheSize/CacheThreshold.
func New(opts config.Options) *Engine {
	return &Engine{
		Options:    opts,
		cache:      cache.New(opts.CacheSize, opts.CacheThreshold),
		classes:    interpreter.NewFqcnResolver(),
		namespaces: make(map[string]interface{}),
		functions:  make(map[string]interface{}),
	}
}

// RegisterClass makes name resolvable by `new name(args)` and
// `instanceof name` (spec's FqcnResolver, simplified: the source resolves
// simple names against a list of imported package roots via reflection
// over a host class loader; Go has no runtime class loader or package
// root concept, so a host instead registers each constructible type by
// the name scripts should use for it — see DESIGN.md).
func (e *Engine) RegisterClass(name string, entry interpreter.ClassEntry) {
	e.classes.Register(name, entry)
}

// RegisterFunction binds name as a free function callable from any
// script parsed by this Engine (`name(args)`, spec §4.2.6).
func (e *Engine) RegisterFunction(name string, fn interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functions[name] = fn
}

// RegisterNamespace binds prefix so `prefix:fn(args)` calls resolve
// against ns's exported members (spec's namespace table, populated here
// directly rather than only through the jexl.namespace.<name> pragma).
func (e *Engine) RegisterNamespace(prefix string, ns map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.namespaces[prefix] = ns
}

// ClearCache discards every cached parsed Script (spec §6 clear_cache).
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// CacheStats reports the parse cache's current occupancy, for hosts
// logging or exposing Engine diagnostics alongside Script.Dump.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// parse parses src under features, consulting and populating the cache.
// Parser errors become Parsing JexlExceptions (spec §4.1 step 3).
func (e *Engine) parse(features ast.Features, src string) (*ast.Script, error) {
	key := cache.SourceKey{Features: features, Source: src}
	script, err := e.cache.Parse(key, func() (*ast.Script, error) {
		tree, errs := parser.Parse("", src, features)
		if len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, pe := range errs {
				msgs[i] = pe.Error()
			}
			return nil, newException(KindParsing, e.Options.Debug, 0, 0, strings.Join(msgs, "; "))
		}
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return script, nil
}

// CreateExpression parses src as a single expression/script under the
// Engine's full feature set and wraps it as a Script (spec's
// create_expression; this engine does not distinguish an "expression"
// grammar from a "script" grammar the way the source's two entry points
// imply — every Script may contain statements, and evaluate() still
// returns the value of the last one, which subsumes single-expression
// use).
func (e *Engine) CreateExpression(src string) (*Script, error) {
	return e.newScript(ast.AllFeatures, src, nil)
}

// CreateScript parses src under the Engine's full feature set, recording
// paramNames as the Script's positional parameters (spec's
// create_script).
func (e *Engine) CreateScript(src string, paramNames ...string) (*Script, error) {
	return e.newScript(ast.AllFeatures, src, paramNames)
}

func (e *Engine) newScript(features ast.Features, src string, params []string) (*Script, error) {
	tree, err := e.parse(features, src)
	if err != nil {
		return nil, err
	}
	return &Script{
		id:         newScriptID(),
		engine:     e,
		text:       src,
		features:   features,
		tree:       tree,
		parameters: params,
	}, nil
}

// newInterpreter builds a fresh Interpreter configured per opts, sharing
// the Engine's function table, namespace table, and class resolver.
func (e *Engine) newInterpreter(opts config.Options) *interpreter.Interpreter {
	e.mu.RLock()
	functions := make(map[string]interface{}, len(e.functions))
	for k, v := range e.functions {
		functions[k] = v
	}
	namespaces := make(map[string]map[string]interface{}, len(e.namespaces))
	for k, v := range e.namespaces {
		if m, ok := v.(map[string]interface{}); ok {
			namespaces[k] = m
		}
	}
	e.mu.RUnlock()

	interp := interpreter.New()
	interp.Arith = arithmetic.New(opts.Strict)
	interp.Introspect = introspection.New()
	interp.Classes = e.classes
	interp.Functions = functions
	interp.Namespaces = namespaces
	if opts.StackOverflow > 0 {
		interp.MaxDepth = opts.StackOverflow
	}
	interp.Strict = opts.Strict
	interp.Antish = opts.Antish
	interp.Lexical = opts.Lexical
	interp.LexicalShade = opts.LexicalShade
	interp.ConstCapture = opts.ConstCapture
	return interp
}

// GetProperty evaluates expr as a property path rooted at bean and
// returns its value (spec's get_property shortcut).
func (e *Engine) GetProperty(bean interface{}, expr string) (interface{}, error) {
	tree, err := e.parse(ast.PropertyFeatures, expr)
	if err != nil {
		return nil, err
	}
	node, err := singleExpression(tree)
	if err != nil {
		return nil, e.wrapError(err)
	}
	interp := e.newInterpreter(e.Options)
	v, err := interp.GetPropertyPath(bean, node)
	if err != nil {
		return nil, e.wrapError(err)
	}
	return v, nil
}

// SetProperty evaluates expr as a property path rooted at bean and
// assigns value through it (spec's set_property shortcut).
func (e *Engine) SetProperty(bean interface{}, expr string, value interface{}) error {
	tree, err := e.parse(ast.PropertyFeatures, expr)
	if err != nil {
		return err
	}
	node, err := singleExpression(tree)
	if err != nil {
		return e.wrapError(err)
	}
	interp := e.newInterpreter(e.Options)
	if err := interp.SetPropertyPath(bean, node, value); err != nil {
		return e.wrapError(err)
	}
	return nil
}

func singleExpression(tree *ast.Script) (ast.Node, error) {
	if len(tree.Statements) != 1 {
		return nil, &interpreter.RuntimeError{Message: "property expression must be a single expression"}
	}
	return tree.Statements[0], nil
}

// InvokeMethod calls name on obj with args via the default introspector
// (spec's invoke_method).
func (e *Engine) InvokeMethod(obj interface{}, name string, args ...interface{}) (interface{}, error) {
	introspect := introspection.New()
	method, ok := introspect.GetMethod(obj, name, args)
	if !ok {
		return nil, newException(KindMethod, e.Options.Debug, 0, 0, "no method %q on %T", name, obj)
	}
	v, err := introspect.Invoke(method, args)
	if err != nil {
		return nil, newException(KindMethod, e.Options.Debug, 0, 0, "%v", err)
	}
	return v, nil
}

// NewInstance constructs a registered class by name (spec's new_instance;
// class-loader-driven resolution from an arbitrary Class handle has no Go
// analogue, so only the RegisterClass path is supported here).
func (e *Engine) NewInstance(className string, args ...interface{}) (interface{}, error) {
	entry, ok := e.classes.Resolve(className)
	if !ok {
		return nil, newException(KindMethod, e.Options.Debug, 0, 0, "unknown class %q", className)
	}
	v, err := entry.New(args)
	if err != nil {
		return nil, newException(KindMethod, e.Options.Debug, 0, 0, "%v", err)
	}
	return v, nil
}

// Eval is the TemplateEngine's hook back into the Engine: parse src as a
// deferred/immediate sub-expression and evaluate it once against ctx.
// Exported for internal/jxlt, not part of the public Script surface.
func (e *Engine) Eval(goCtx context.Context, ctx Context, src string) (interface{}, error) {
	script, err := e.newScript(ast.AllFeatures&^ast.FeatureScript, src, nil)
	if err != nil {
		return nil, err
	}
	return script.Evaluate(goCtx, ctx)
}

func (e *Engine) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if je, ok := err.(*JexlException); ok {
		return je
	}
	switch v := err.(type) {
	case *interpreter.StackOverflowError:
		return newException(KindStackOverflow, e.Options.Debug, 0, 0, "%v", v)
	case *interpreter.CancelError:
		return newException(KindCancel, e.Options.Debug, 0, 0, "%v", v)
	case *interpreter.ThrowError:
		return newException(KindMethod, e.Options.Debug, 0, 0, "uncaught throw: %v", v.Value)
	case *interpreter.RuntimeError:
		return newException(KindProperty, e.Options.Debug, v.Line, v.Column, "%s", v.Message)
	case *interpreter.VariableError:
		return newException(KindVariable, e.Options.Debug, 0, 0, "%v", v)
	case *interpreter.LexicalError:
		if v.Redeclare {
			return newException(KindLexicalRedeclaration, e.Options.Debug, 0, 0, "%v", v)
		}
		return newException(KindLexicalShade, e.Options.Debug, 0, 0, "%v", v)
	case *interpreter.ConstCaptureError:
		return newException(KindConstCapture, e.Options.Debug, 0, 0, "%v", v)
	}
	return newException(KindMethod, e.Options.Debug, 0, 0, "%v", err)
}
