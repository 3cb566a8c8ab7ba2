package jexl

import "github.com/jexl-go/jexl/internal/config"

// Context is the host-provided variable store and capability bag spec
// §3/§6 describes. The required methods mirror interpreter.Context
// structurally (Go interfaces compose by method set, not declaration, so
// any Context also satisfies interpreter.Context without an explicit
// embedding import). Everything below NamespaceResolver onward is
// optional: the engine probes for each one with a type assertion, the
// Go-idiomatic analogue of the spec's "duck-typed capability test".
type Context interface {
	Has(name string) bool
	Get(name string) (interface{}, bool)
	Set(name string, value interface{}) error
}

// NamespaceResolver lets a Context supply a namespace object for `ns:fn()`
// calls beyond what pragma-driven `jexl.namespace.<name>` registers.
type NamespaceResolver interface {
	ResolveNamespace(prefix string) (interface{}, bool)
}

// ClassResolver lets a Context resolve a class name used by `instanceof`,
// `new`, and `jexl.namespace.<name>` pragmas to a constructible type.
type ClassResolver interface {
	ResolveClassName(name string) (interface{}, bool)
}

// PragmaProcessor receives any pragma key the engine does not itself
// understand (anything outside jexl.options/import/namespace.*/module.*).
type PragmaProcessor interface {
	ProcessPragma(opts *config.Options, key string, value interface{}) bool
}

// AnnotationProcessor lets a Context intercept @Name(args) statement
// execution, e.g. to run the body under a lock (spec §4.2.8).
type AnnotationProcessor interface {
	ProcessAnnotation(name string, args []interface{}, body func() (interface{}, error)) (interface{}, error)
}

// ModuleProcessor lets a Context take over `jexl.module.<name>` pragma
// evaluation instead of the engine's default (evaluate the expression,
// use the result directly as the namespace object).
type ModuleProcessor interface {
	ProcessModule(engine *Engine, name, src string) (interface{}, bool)
}

// OptionsProvider lets a Context override engine-wide Options on a
// per-evaluation basis (spec's get_engine_options).
type OptionsProvider interface {
	EngineOptions() config.Options
}

// MapContext is a minimal, concurrency-unsafe Context backed by a plain
// map — the default a host gets from pkg/jexl.New()'s Bind/Set, and
// generally the right starting point for embedding (spec's Context is
// explicitly "opaque... never mutated by the engine except through set").
type MapContext struct {
	values map[string]interface{}
}

// NewMapContext creates an empty MapContext.
func NewMapContext() *MapContext {
	return &MapContext{values: make(map[string]interface{})}
}

func (c *MapContext) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

func (c *MapContext) Get(name string) (interface{}, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *MapContext) Set(name string, value interface{}) error {
	c.values[name] = value
	return nil
}

// Bind is the builder-style variant of Set, returning the receiver so
// calls can chain the way the teacher's option-constructor methods do.
func (c *MapContext) Bind(name string, value interface{}) *MapContext {
	c.values[name] = value
	return c
}
