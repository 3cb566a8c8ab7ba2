package interpreter

import (
	"context"

	"github.com/jexl-go/jexl/internal/ast"
)

// GetPropertyPath and SetPropertyPath implement the engine-level
// getProperty/setProperty shortcuts (spec §4.1). The source spec
// synthesizes a tiny script `#0.<expr>` with a register bound to the
// bean and parses it with the restricted PropertyFeatures set; our
// lexer/parser has no register-sigil token, so instead of fabricating
// source text we parse just `<expr>` under PropertyFeatures and walk its
// Root+Steps directly against bean, skipping Frame/Context lookup for
// the root name entirely — the root identifier names the property to
// read off bean, not a variable to resolve (see DESIGN.md).
func (in *Interpreter) GetPropertyPath(bean interface{}, expr ast.Node) (interface{}, error) {
	steps, err := propertySteps(expr)
	if err != nil {
		return nil, err
	}
	st := &evalState{ctx: context.Background(), max: in.MaxDepth}
	if st.max <= 0 {
		st.max = defaultMaxDepth
	}
	frame := NewFrame()
	current := bean
	for _, step := range steps {
		if current == nil {
			return nil, nil
		}
		current, err = in.applyStep(current, step, frame, st)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// SetPropertyPath mirrors GetPropertyPath but assigns value through the
// last step instead of reading it.
func (in *Interpreter) SetPropertyPath(bean interface{}, expr ast.Node, value interface{}) error {
	steps, err := propertySteps(expr)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return in.errorAt(expr, "setProperty target must name at least one property")
	}
	st := &evalState{ctx: context.Background(), max: in.MaxDepth}
	if st.max <= 0 {
		st.max = defaultMaxDepth
	}
	frame := NewFrame()
	current := bean
	for _, step := range steps[:len(steps)-1] {
		if current == nil {
			return in.errorAt(expr, "cannot navigate null reference")
		}
		current, err = in.applyStep(current, step, frame, st)
		if err != nil {
			return err
		}
	}
	if current == nil {
		return in.errorAt(expr, "cannot assign through null reference")
	}
	switch s := steps[len(steps)-1].(type) {
	case *ast.IdentifierAccess:
		_, err := in.Introspect.GetPropertySet(current, s.Name, value)
		return err
	case *ast.ArrayAccess:
		idx, err := in.eval(s.Index, frame)
		if err != nil {
			return err
		}
		return assignIndex(current, idx, value)
	}
	return in.errorAt(expr, "cannot assign through a method-call step")
}

// propertySteps flattens a parsed property expression into a step list
// rooted at the bean: a bare Identifier becomes one IdentifierAccess
// step; a Reference contributes its Root (as an IdentifierAccess, since
// PropertyFeatures forbids anything else there) followed by its Steps.
func propertySteps(expr ast.Node) ([]ast.Node, error) {
	switch n := expr.(type) {
	case *ast.Identifier:
		return []ast.Node{ast.NewIdentifierAccess(n.NodeInfo(), n.Name, false)}, nil
	case *ast.Reference:
		root, ok := n.Root.(*ast.Identifier)
		if !ok {
			return nil, &RuntimeError{Message: "property expression must be rooted at a plain identifier"}
		}
		steps := make([]ast.Node, 0, len(n.Steps)+1)
		steps = append(steps, ast.NewIdentifierAccess(root.NodeInfo(), root.Name, false))
		steps = append(steps, n.Steps...)
		return steps, nil
	}
	return nil, &RuntimeError{Message: "unsupported property expression shape"}
}
