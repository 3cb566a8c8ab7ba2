package ast

// VarDecl is `var name = init;` (init may be nil).
type VarDecl struct {
	Base
	Name   string
	Symbol int
	Init   Node
}

func NewVarDecl(info Info, name string, init Node) *VarDecl {
	return &VarDecl{NewBase(info, name, false), name, -1, init}
}

func (n *VarDecl) Children() []Node {
	if n.Init == nil {
		return nil
	}
	return []Node{n.Init}
}

func (n *VarDecl) IsExpression() bool { return false }

// Block is `{ stmt; stmt; ... }`.
type Block struct {
	Base
	Statements []Node
}

func NewBlock(info Info, statements []Node) *Block {
	return &Block{NewBase(info, "{}", false), statements}
}

func (n *Block) Children() []Node   { return n.Statements }
func (n *Block) IsExpression() bool { return false }

// IfStmt is `if (cond) then else else` (Else may be nil).
type IfStmt struct {
	Base
	Cond, Then, Else Node
}

func NewIfStmt(info Info, cond, then, els Node) *IfStmt {
	return &IfStmt{NewBase(info, "if", false), cond, then, els}
}

func (n *IfStmt) Children() []Node {
	if n.Else == nil {
		return []Node{n.Cond, n.Then}
	}
	return []Node{n.Cond, n.Then, n.Else}
}
func (n *IfStmt) IsExpression() bool { return false }

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Base
	Cond, Body Node
	Label      string
}

func NewWhileStmt(info Info, cond, body Node) *WhileStmt {
	return &WhileStmt{NewBase(info, "while", false), cond, body, ""}
}

func (n *WhileStmt) Children() []Node   { return []Node{n.Cond, n.Body} }
func (n *WhileStmt) IsExpression() bool { return false }

// DoWhileStmt is `do body while (cond);`.
type DoWhileStmt struct {
	Base
	Body, Cond Node
	Label      string
}

func NewDoWhileStmt(info Info, body, cond Node) *DoWhileStmt {
	return &DoWhileStmt{NewBase(info, "do", false), body, cond, ""}
}

func (n *DoWhileStmt) Children() []Node   { return []Node{n.Body, n.Cond} }
func (n *DoWhileStmt) IsExpression() bool { return false }

// ForStmt is the C-style `for (init; cond; step) body`. Init/Cond/Step may
// be nil.
type ForStmt struct {
	Base
	Init, Cond, Step, Body Node
	Label                  string
}

func NewForStmt(info Info, init, cond, step, body Node) *ForStmt {
	return &ForStmt{NewBase(info, "for", false), init, cond, step, body, ""}
}

func (n *ForStmt) Children() []Node {
	var children []Node
	for _, c := range []Node{n.Init, n.Cond, n.Step, n.Body} {
		if c != nil {
			children = append(children, c)
		}
	}
	return children
}
func (n *ForStmt) IsExpression() bool { return false }

// ForEachStmt is `for (var name : iterable) body`.
type ForEachStmt struct {
	Base
	VarName  string
	Symbol   int
	Iterable Node
	Body     Node
	Label    string
}

func NewForEachStmt(info Info, varName string, iterable, body Node) *ForEachStmt {
	return &ForEachStmt{NewBase(info, "for", false), varName, -1, iterable, body, ""}
}

func (n *ForEachStmt) Children() []Node   { return []Node{n.Iterable, n.Body} }
func (n *ForEachStmt) IsExpression() bool { return false }

// TryResource is one `(var name = init)` clause of try-with-resources.
type TryResource struct {
	Base
	Name   string
	Symbol int
	Init   Node
}

func NewTryResource(info Info, name string, init Node) *TryResource {
	return &TryResource{NewBase(info, name, false), name, -1, init}
}

func (n *TryResource) Children() []Node { return []Node{n.Init} }

// TryStmt is `try (resources) body catch (var) catchBody finally
// finallyBody`. Resources, CatchVar/CatchBody and Finally are each
// optional (spec §4.2.7).
type TryStmt struct {
	Base
	Resources []*TryResource
	Body      Node
	CatchVar  string
	CatchSym  int
	CatchBody Node
	Finally   Node
}

func NewTryStmt(info Info, resources []*TryResource, body Node, catchVar string, catchBody, finallyBody Node) *TryStmt {
	return &TryStmt{NewBase(info, "try", false), resources, body, catchVar, -1, catchBody, finallyBody}
}

func (n *TryStmt) Children() []Node {
	var children []Node
	for _, r := range n.Resources {
		children = append(children, r)
	}
	children = append(children, n.Body)
	if n.CatchBody != nil {
		children = append(children, n.CatchBody)
	}
	if n.Finally != nil {
		children = append(children, n.Finally)
	}
	return children
}
func (n *TryStmt) IsExpression() bool { return false }

// ThrowStmt is `throw expr;`.
type ThrowStmt struct {
	Base
	Expr Node
}

func NewThrowStmt(info Info, expr Node) *ThrowStmt {
	return &ThrowStmt{NewBase(info, "throw", false), expr}
}

func (n *ThrowStmt) Children() []Node   { return []Node{n.Expr} }
func (n *ThrowStmt) IsExpression() bool { return false }

// ReturnStmt is `return expr;` (Expr may be nil).
type ReturnStmt struct {
	Base
	Expr Node
}

func NewReturnStmt(info Info, expr Node) *ReturnStmt {
	return &ReturnStmt{NewBase(info, "return", false), expr}
}

func (n *ReturnStmt) Children() []Node {
	if n.Expr == nil {
		return nil
	}
	return []Node{n.Expr}
}
func (n *ReturnStmt) IsExpression() bool { return false }

// BreakStmt is `break;` or labeled `break label;`.
type BreakStmt struct {
	Base
	Label string
}

func NewBreakStmt(info Info, label string) *BreakStmt {
	return &BreakStmt{NewBase(info, "break", false), label}
}

func (n *BreakStmt) IsExpression() bool { return false }

// ContinueStmt is `continue;` or labeled `continue label;`.
type ContinueStmt struct {
	Base
	Label string
}

func NewContinueStmt(info Info, label string) *ContinueStmt {
	return &ContinueStmt{NewBase(info, "continue", false), label}
}

func (n *ContinueStmt) IsExpression() bool { return false }

// Pragma is a `#pragma key value;` directive (spec §4.1 Pragma processing).
type Pragma struct {
	Base
	Key   string
	Value Node
}

func NewPragma(info Info, key string, value Node) *Pragma {
	return &Pragma{NewBase(info, key, false), key, value}
}

func (n *Pragma) Children() []Node   { return []Node{n.Value} }
func (n *Pragma) IsExpression() bool { return false }

// Script is the root node produced by a parse: a sequence of pragmas
// followed by a sequence of statements.
type Script struct {
	Base
	Pragmas    []*Pragma
	Statements []Node
}

func NewScript(info Info, pragmas []*Pragma, statements []Node) *Script {
	return &Script{NewBase(info, "", false), pragmas, statements}
}

func (n *Script) Children() []Node {
	children := make([]Node, 0, len(n.Pragmas)+len(n.Statements))
	for _, p := range n.Pragmas {
		children = append(children, p)
	}
	return append(children, n.Statements...)
}
func (n *Script) IsExpression() bool { return false }
