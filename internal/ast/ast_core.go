// Package ast defines the immutable tagged-variant tree the parser builds
// and the interpreter walks (spec §3 "AST node").
//
// Structurally this mirrors the teacher's internal/ast package
// (ast_core.go/ast_expressions.go): one small struct per node variant,
// each embedding a common Base for source info and child introspection.
// Two things the teacher's AST does not need are added here because the
// spec's invariants require them: a mutable per-node Cache slot for the
// interpreter's call-site dispatch cache, and IsConstant/IsSafe/IsSafeLhs
// predicates computed once at parse time.
package ast

import "sync"

// Info is the source-position triple every node carries.
type Info struct {
	File   string
	Line   int
	Column int
}

// Cache is the mutable per-node slot the interpreter uses to memoize one
// dispatch hit (method, getter, setter, constructor or Funcall record).
// It is invariant under the same target class/arity/shape; callers must
// re-validate the cached entry by shape before trusting it (spec §3).
type Cache struct {
	mu  sync.Mutex
	val interface{}
}

// Load returns the cached value, or nil if nothing is cached.
func (c *Cache) Load() interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

// Store replaces the cached value.
func (c *Cache) Store(v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
}

// Clear discards any cached value.
func (c *Cache) Clear() {
	c.Store(nil)
}

// Node is the common interface every AST variant implements.
type Node interface {
	Children() []Node
	NodeInfo() Info
	Image() string
	NodeCache() *Cache
	IsConstant() bool
	IsSafe() bool
	IsSafeLhs() bool
	IsExpression() bool
}

// Base provides the default Node implementation; node structs embed it and
// override the predicate methods where their semantics differ from the
// defaults (false/false/true).
type Base struct {
	Info     Info
	image    string
	cache    Cache
	constant bool
}

func NewBase(info Info, image string, constant bool) Base {
	return Base{Info: info, image: image, constant: constant}
}

func (b *Base) NodeInfo() Info       { return b.Info }
func (b *Base) Image() string        { return b.image }
func (b *Base) NodeCache() *Cache    { return &b.cache }
func (b *Base) IsConstant() bool     { return b.constant }
func (b *Base) IsSafe() bool         { return false }
func (b *Base) IsSafeLhs() bool      { return false }
func (b *Base) IsExpression() bool   { return true }
func (b *Base) Children() []Node     { return nil }

// Walk performs a depth-first pre-order traversal, calling fn for every
// node including the root. Traversal order is left-to-right among
// children, matching spec §5's evaluation-order invariant.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
