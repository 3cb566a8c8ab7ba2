// Package prettyprinter reconstructs JEXL source text from an
// internal/ast tree — the engine for Script.Dump() (spec §6 dump()).
// It is grounded on the teacher's internal/prettyprinter CodePrinter:
// the same shape (an operator-precedence table driving parenthesization,
// an indent-tracked string builder, one big per-node-type dispatch) is
// kept; every Visit* method is rewritten against this package's node set
// instead of Funxy's, since the two ASTs share no types.
package prettyprinter

import (
	"strconv"
	"strings"

	"github.com/jexl-go/jexl/internal/ast"
)

// precedence mirrors spec §4.3's binary operator families; higher binds
// tighter. Anything not listed (assignment, ternary, elvis, coalesce,
// range, instanceof) is always fully parenthesized by its own Visit
// method rather than looked up here.
var precedence = map[string]int{
	"||": 0, "&&": 1,
	"|": 2, "^": 3, "&": 4,
	"==": 5, "!=": 5, "=~": 5, "!~": 5, "^=": 5, "$=": 5,
	"<": 6, ">": 6, "<=": 6, ">=": 6,
	"<<": 7, ">>": 7, ">>>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

// Print renders n as JEXL source text.
func Print(n ast.Node) string {
	p := &printer{}
	p.printStmt(n)
	return strings.TrimRight(p.b.String(), "\n")
}

// PrintExpr renders a single expression node with no trailing statement
// punctuation — used by tests that check one sub-expression's
// reconstruction in isolation.
func PrintExpr(n ast.Node) string {
	p := &printer{}
	p.printExpr(n, 0)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) write(s string)  { p.b.WriteString(s) }
func (p *printer) nl()             { p.b.WriteString("\n") }
func (p *printer) pad()            { p.b.WriteString(strings.Repeat("    ", p.indent)) }
func (p *printer) line(s string)   { p.pad(); p.write(s); p.nl() }

// printStmt dispatches every statement-shaped node plus Script itself;
// anything expression-shaped falls through to printExpr followed by ';'.
func (p *printer) printStmt(n ast.Node) {
	switch v := n.(type) {
	case *ast.Script:
		for _, pr := range v.Pragmas {
			p.printStmt(pr)
		}
		for _, s := range v.Statements {
			p.printStmt(s)
		}
	case *ast.Pragma:
		p.pad()
		p.write("#pragma ")
		p.write(v.Key)
		p.write(" ")
		p.printExpr(v.Value, 0)
		p.write(";")
		p.nl()
	case *ast.Block:
		p.line("{")
		p.indent++
		for _, s := range v.Statements {
			p.printStmt(s)
		}
		p.indent--
		p.line("}")
	case *ast.VarDecl:
		p.pad()
		p.write("var ")
		p.write(v.Name)
		if v.Init != nil {
			p.write(" = ")
			p.printExpr(v.Init, 0)
		}
		p.write(";")
		p.nl()
	case *ast.IfStmt:
		p.pad()
		p.write("if (")
		p.printExpr(v.Cond, 0)
		p.write(") ")
		p.printInline(v.Then)
		if v.Else != nil {
			p.pad()
			p.write("else ")
			p.printInline(v.Else)
		}
	case *ast.WhileStmt:
		p.pad()
		p.write(labelPrefix(v.Label))
		p.write("while (")
		p.printExpr(v.Cond, 0)
		p.write(") ")
		p.printInline(v.Body)
	case *ast.DoWhileStmt:
		p.pad()
		p.write(labelPrefix(v.Label))
		p.write("do ")
		p.printInline(v.Body)
		p.pad()
		p.write("while (")
		p.printExpr(v.Cond, 0)
		p.write(");")
		p.nl()
	case *ast.ForStmt:
		p.pad()
		p.write(labelPrefix(v.Label))
		p.write("for (")
		p.printExpr(v.Init, 0)
		p.write("; ")
		p.printExpr(v.Cond, 0)
		p.write("; ")
		p.printExpr(v.Step, 0)
		p.write(") ")
		p.printInline(v.Body)
	case *ast.ForEachStmt:
		p.pad()
		p.write(labelPrefix(v.Label))
		p.write("for (var ")
		p.write(v.VarName)
		p.write(" : ")
		p.printExpr(v.Iterable, 0)
		p.write(") ")
		p.printInline(v.Body)
	case *ast.TryStmt:
		p.pad()
		p.write("try ")
		if len(v.Resources) > 0 {
			p.write("(")
			for i, r := range v.Resources {
				if i > 0 {
					p.write("; ")
				}
				p.write("var ")
				p.write(r.Name)
				p.write(" = ")
				p.printExpr(r.Init, 0)
			}
			p.write(") ")
		}
		p.printInline(v.Body)
		if v.CatchBody != nil {
			p.pad()
			p.write("catch (")
			p.write(v.CatchVar)
			p.write(") ")
			p.printInline(v.CatchBody)
		}
		if v.Finally != nil {
			p.pad()
			p.write("finally ")
			p.printInline(v.Finally)
		}
	case *ast.ThrowStmt:
		p.pad()
		p.write("throw ")
		p.printExpr(v.Expr, 0)
		p.write(";")
		p.nl()
	case *ast.ReturnStmt:
		p.pad()
		p.write("return")
		if v.Expr != nil {
			p.write(" ")
			p.printExpr(v.Expr, 0)
		}
		p.write(";")
		p.nl()
	case *ast.BreakStmt:
		p.line("break" + labelSuffix(v.Label) + ";")
	case *ast.ContinueStmt:
		p.line("continue" + labelSuffix(v.Label) + ";")
	case *ast.AnnotatedStatement:
		p.pad()
		for _, a := range v.Annotations {
			p.write("@")
			p.write(a.Name)
			if len(a.Args) > 0 {
				p.write("(")
				p.printArgs(a.Args)
				p.write(")")
			}
			p.write(" ")
		}
		p.nl()
		p.printStmt(v.Body)
	case nil:
	default:
		p.pad()
		p.printExpr(v, 0)
		p.write(";")
		p.nl()
	}
}

// printInline prints a statement that is itself a control-flow body
// without the leading indentation printStmt normally applies, so `if (x)
// foo();` doesn't double-indent the single statement case; a Block still
// gets the normal brace treatment.
func (p *printer) printInline(n ast.Node) {
	if _, ok := n.(*ast.Block); ok {
		p.printStmt(n)
		return
	}
	p.nl()
	p.indent++
	p.printStmt(n)
	p.indent--
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}
	return label + ": "
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " " + label
}

// printExpr renders an expression node, parenthesizing a child binary
// expression whenever its operator binds looser than parentPrec (spec
// §4.3's operator layer, mirrored here purely for re-serialization, not
// evaluation).
func (p *printer) printExpr(n ast.Node, parentPrec int) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.NullLiteral:
		p.write("null")
	case *ast.BoolLiteral:
		p.write(v.Image())
	case *ast.NumberLiteral:
		p.write(v.Text)
	case *ast.StringLiteral:
		p.write(strconv.Quote(v.Value))
	case *ast.RegexLiteral:
		p.write("/")
		p.write(v.Pattern)
		p.write("/")
		p.write(v.Flags)
	case *ast.Identifier:
		p.write(v.Name)
	case *ast.QualifiedIdentifier:
		p.write(strings.Join(v.Parts, "."))
	case *ast.IdentifierAccess:
		if v.Safe {
			p.write("?.")
		} else {
			p.write(".")
		}
		p.write(v.Name)
	case *ast.ArrayAccess:
		if v.Safe {
			p.write("?")
		}
		p.write("[")
		p.printExpr(v.Index, 0)
		p.write("]")
	case *ast.MethodAccess:
		if v.Safe {
			p.write("?.")
		} else {
			p.write(".")
		}
		p.write(v.Name)
		p.write("(")
		p.printArgs(v.Args)
		p.write(")")
	case *ast.Reference:
		p.printExpr(v.Root, 11)
		for _, s := range v.Steps {
			p.printExpr(s, 11)
		}
	case *ast.BinaryExpr:
		prec := precedence[v.Operator]
		open := prec < parentPrec
		if open {
			p.write("(")
		}
		p.printExpr(v.Left, prec)
		p.write(" ")
		p.write(v.Operator)
		p.write(" ")
		p.printExpr(v.Right, prec+1)
		if open {
			p.write(")")
		}
	case *ast.UnaryExpr:
		p.write(v.Operator)
		p.printExpr(v.Operand, 10)
	case *ast.IncDecExpr:
		if v.Prefix {
			p.write(v.Operator)
			p.printExpr(v.Operand, 10)
		} else {
			p.printExpr(v.Operand, 10)
			p.write(v.Operator)
		}
	case *ast.TernaryExpr:
		open := parentPrec > 0
		if open {
			p.write("(")
		}
		p.printExpr(v.Cond, 1)
		p.write(" ? ")
		p.printExpr(v.Then, 0)
		p.write(" : ")
		p.printExpr(v.Else, 0)
		if open {
			p.write(")")
		}
	case *ast.ElvisExpr:
		p.printExpr(v.Left, 1)
		p.write(" ?: ")
		p.printExpr(v.Right, 1)
	case *ast.CoalesceExpr:
		p.printExpr(v.Left, 1)
		p.write(" ?? ")
		p.printExpr(v.Right, 1)
	case *ast.RangeExpr:
		p.printExpr(v.From, 8)
		p.write("..")
		p.printExpr(v.To, 8)
	case *ast.InstanceOfExpr:
		p.printExpr(v.Expr, 5)
		if v.Negate {
			p.write(" !instanceof ")
		} else {
			p.write(" instanceof ")
		}
		p.write(strings.Join(v.Class.Parts, "."))
	case *ast.AssignExpr:
		p.printExpr(v.Target, 0)
		p.write(" = ")
		p.printExpr(v.Value, 0)
	case *ast.CompoundAssignExpr:
		p.printExpr(v.Target, 0)
		p.write(" ")
		p.write(v.Operator)
		p.write(" ")
		p.printExpr(v.Value, 0)
	case *ast.Lambda:
		p.write("(")
		for i, param := range v.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Name)
			if param.Default != nil {
				p.write(" = ")
				p.printExpr(param.Default, 0)
			}
		}
		p.write(") -> ")
		p.printExpr(v.Body, 0)
	case *ast.CallExpr:
		switch {
		case v.Callee != nil:
			p.printExpr(v.Callee, 11)
		case v.Namespace != "":
			p.write(v.Namespace)
			p.write(":")
			p.write(v.Name)
		default:
			p.write(v.Name)
		}
		p.write("(")
		p.printArgs(v.Args)
		p.write(")")
	case *ast.ConstructorCall:
		p.write("new ")
		p.write(strings.Join(v.Class.Parts, "."))
		p.write("(")
		p.printArgs(v.Args)
		p.write(")")
	case *ast.ArrayLiteral:
		p.write("[")
		p.printArgs(v.Elements)
		p.write("]")
	case *ast.MapLiteral:
		p.write("{")
		for i, e := range v.Entries {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(e.Key, 0)
			p.write(": ")
			p.printExpr(e.Value, 0)
		}
		p.write("}")
	case *ast.SetLiteral:
		p.write("{")
		p.printArgs(v.Elements)
		p.write("}")
	default:
		p.write(v.Image())
	}
}

func (p *printer) printArgs(args []ast.Node) {
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(a, 0)
	}
}
