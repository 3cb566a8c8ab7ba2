// Package jexl is the embedding facade for host programs: a thin layer
// over internal/jexl and internal/jxlt the way the teacher's pkg/embed
// sits over internal/vm — New gives a host one object to Bind/Set/Get
// values into and Eval/Compile scripts against.
package jexl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jexl-go/jexl/internal/config"
	ijexl "github.com/jexl-go/jexl/internal/jexl"
	"github.com/jexl-go/jexl/internal/jxlt"
)

// Option configures the Options an Engine is built with (spec §4.1's
// enumerated engine flags, exposed here as functional options rather
// than a builder chain).
type Option func(*config.Options)

func WithStrict(v bool) Option       { return func(o *config.Options) { o.Strict = v } }
func WithSafe(v bool) Option         { return func(o *config.Options) { o.Safe = v } }
func WithSilent(v bool) Option       { return func(o *config.Options) { o.Silent = v } }
func WithCancellable(v bool) Option  { return func(o *config.Options) { o.Cancellable = v } }
func WithDebug(v bool) Option        { return func(o *config.Options) { o.Debug = v } }
func WithLexical(v bool) Option      { return func(o *config.Options) { o.Lexical = v } }
func WithAntish(v bool) Option       { return func(o *config.Options) { o.Antish = v } }
func WithStackOverflow(n int) Option { return func(o *config.Options) { o.StackOverflow = n } }
func WithCacheSize(n int) Option     { return func(o *config.Options) { o.CacheSize = n } }

// Jexl is the embeddable entry point: one Engine plus a default Context
// that Bind/Set populate and Eval/Call read from.
type Jexl struct {
	engine   *ijexl.Engine
	ctx      *ijexl.MapContext
	bindings map[string]interface{}
}

// New builds a Jexl ready to Bind/Set/Eval against, applying opts over
// config.DefaultOptions().
func New(opts ...Option) *Jexl {
	options := config.DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Jexl{
		engine:   ijexl.New(options),
		ctx:      ijexl.NewMapContext(),
		bindings: make(map[string]interface{}),
	}
}

// Bind registers a Go function under name, callable from scripts as
// `name(args…)` (spec's equivalent of registering a namespace function).
// Non-function values are bound exactly like Set.
func (j *Jexl) Bind(name string, val interface{}) {
	j.bindings[name] = val
	if reflect.ValueOf(val).Kind() == reflect.Func {
		j.engine.RegisterFunction(name, adaptFunc(val))
		return
	}
	j.Set(name, val)
}

// Set stores a plain value under name in the default Context.
func (j *Jexl) Set(name string, val interface{}) {
	_ = j.ctx.Set(name, val)
}

// Get reads name back out of the default Context.
func (j *Jexl) Get(name string) (interface{}, bool) {
	return j.ctx.Get(name)
}

// Call invokes a previously Bind-ed Go function directly, without going
// through script parsing.
func (j *Jexl) Call(name string, args ...interface{}) (interface{}, error) {
	fn, ok := j.bindings[name]
	if !ok {
		return nil, fmt.Errorf("jexl: no function bound as %q", name)
	}
	adapted, ok := adaptFunc(fn).(func([]interface{}) (interface{}, error))
	if !ok {
		return nil, fmt.Errorf("jexl: %q is not callable", name)
	}
	return adapted(args)
}

// Eval parses and evaluates src once against the default Context (spec's
// evaluate() shortcut for one-shot use). It runs uncancellably; callers
// that need to abort a long-running evaluation should use EvalContext.
func (j *Jexl) Eval(src string) (interface{}, error) {
	return j.EvalContext(context.Background(), src)
}

// EvalContext is Eval with an explicit cancellation context (spec §5/§8
// "Cancellable"): cancelling goCtx mid-evaluation surfaces a Cancel-kind
// error when the Engine was built WithCancellable(true), or a quiet nil
// result otherwise.
func (j *Jexl) EvalContext(goCtx context.Context, src string) (interface{}, error) {
	script, err := j.engine.CreateExpression(src)
	if err != nil {
		return nil, err
	}
	return script.Evaluate(goCtx, j.ctx)
}

// Compile parses src once and returns the cached Script for repeated
// evaluation (spec's create_script/create_expression, surfaced for hosts
// that evaluate the same source many times with different bindings).
func (j *Jexl) Compile(src string, paramNames ...string) (*ijexl.Script, error) {
	if len(paramNames) == 0 {
		return j.engine.CreateExpression(src)
	}
	return j.engine.CreateScript(src, paramNames...)
}

// Context exposes the default Context Eval/Call use, for callers that
// want to pass it to a Script obtained from Compile directly.
func (j *Jexl) Context() *ijexl.MapContext { return j.ctx }

// Engine exposes the underlying Engine, for RegisterClass/RegisterNamespace
// and other configuration the functional Options above don't cover.
func (j *Jexl) Engine() *ijexl.Engine { return j.engine }

// TemplateEngine builds a JXLT TemplateEngine over this Jexl's Engine
// (spec's create_jxlt_engine).
func (j *Jexl) TemplateEngine(immediateChar, deferredChar rune) *jxlt.TemplateEngine {
	return jxlt.New(j.engine, immediateChar, deferredChar)
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// adaptFunc wraps an arbitrary Go function as the
// func([]interface{}) (interface{}, error) shape internal/interpreter
// calls directly without a reflection round-trip per call (spec §2's
// Introspector injection point is for method dispatch on bound objects;
// free functions bound by name go through this narrower, cheaper path
// instead, grounded on the teacher's pkg/embed.VM.hostCallHandler
// argument-and-return marshalling).
func adaptFunc(fn interface{}) interface{} {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fn
	}
	t := rv.Type()
	return func(args []interface{}) (interface{}, error) {
		in := make([]reflect.Value, 0, len(args))
		for i, a := range args {
			var pt reflect.Type
			switch {
			case t.IsVariadic() && i >= t.NumIn()-1:
				pt = t.In(t.NumIn() - 1).Elem()
			case i < t.NumIn():
				pt = t.In(i)
			}
			if a == nil && pt != nil {
				in = append(in, reflect.Zero(pt))
				continue
			}
			av := reflect.ValueOf(a)
			if pt != nil && av.IsValid() && av.Type() != pt && av.Type().ConvertibleTo(pt) {
				av = av.Convert(pt)
			}
			in = append(in, av)
		}
		out := rv.Call(in)
		return splitResults(out)
	}
}

func splitResults(out []reflect.Value) (interface{}, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	hasErr := last.Type().Implements(errType)
	values := out
	var err error
	if hasErr {
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		values = out[:len(out)-1]
	}
	switch len(values) {
	case 0:
		return nil, err
	case 1:
		return values[0].Interface(), err
	default:
		vals := make([]interface{}, len(values))
		for i, v := range values {
			vals[i] = v.Interface()
		}
		return vals, err
	}
}
