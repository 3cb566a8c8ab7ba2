// Package parser implements a recursive-descent (Pratt-style) parser that
// turns a token stream from internal/lexer into an internal/ast tree.
//
// Structurally this follows the teacher's internal/parser
// (funvibe/funxy): a Parser struct holding cur/peek tokens, per-token-type
// prefix/infix parse function tables, and parseExpression driven by an
// operator precedence table (internal/parser/expressions_core.go in the
// teacher). The grammar itself is unrelated — JEXL-style expressions and
// statements instead of funxy's type-class-heavy language — so every
// production below is new.
package parser

import (
	"fmt"

	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/lexer"
	"github.com/jexl-go/jexl/internal/token"
)

// ParseError is a single parse/tokenization failure with source position.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

const maxParseDepth = 300

type (
	prefixParseFn func() ast.Node
	infixParseFn  func(ast.Node) ast.Node
)

// Parser parses one source string under a given Features set.
type Parser struct {
	l    *lexer.Lexer
	file string

	features ast.Features

	curToken   token.Token
	peekToken  token.Token
	peek2Token token.Token

	errors []error
	depth  int

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over src. file is used only for diagnostics.
func New(file, src string, features ast.Features) *Parser {
	p := &Parser{l: lexer.New(src), file: file, features: features}
	p.prefixFns = make(map[token.Type]prefixParseFn)
	p.infixFns = make(map[token.Type]infixParseFn)
	p.registerPrefix()
	p.registerInfix()

	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses src under features and returns the Script root, or the
// accumulated parse errors.
func Parse(file, src string, features ast.Features) (*ast.Script, []error) {
	p := New(file, src, features)
	script := p.ParseScript()
	return script, p.errors
}

func (p *Parser) info() ast.Info {
	return ast.Info{File: p.file, Line: p.curToken.Line, Column: p.curToken.Column}
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.peek2Token
	p.peek2Token = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.peekToken.Type, p.peekToken.Lexeme)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    p.curToken.Line,
		Column:  p.curToken.Column,
	})
}

func (p *Parser) skipSemicolons() {
	for p.curIs(token.SEMI) {
		p.nextToken()
	}
}

// ParseScript parses the full top-level production: a run of pragmas
// (spec §4.1) followed by a run of statements, terminated by EOF.
func (p *Parser) ParseScript() *ast.Script {
	info := p.info()
	var pragmas []*ast.Pragma
	p.skipSemicolons()
	for p.curIs(token.HASH) && p.peekIs(token.PRAGMA) {
		pragmas = append(pragmas, p.parsePragma())
		p.nextToken()
		p.skipSemicolons()
	}

	var statements []ast.Node
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			statements = append(statements, stmt)
		}
		p.nextToken()
		p.skipSemicolons()
	}
	return ast.NewScript(info, pragmas, statements)
}

func (p *Parser) parsePragma() *ast.Pragma {
	info := p.info()
	p.nextToken() // consume '#'
	p.nextToken() // consume 'pragma'
	if !p.curIs(token.IDENT) {
		p.errorf("expected pragma key, got %q", p.curToken.Lexeme)
		return ast.NewPragma(info, "", ast.NewNullLiteral(info))
	}
	key := p.curToken.Lexeme
	for p.peekIs(token.DOT) && p.peek2Token.Type == token.IDENT {
		p.nextToken() // cur -> '.'
		p.nextToken() // cur -> next key segment
		key += "." + p.curToken.Lexeme
	}
	p.nextToken()
	value := p.parseExpression(lowest)
	return ast.NewPragma(info, key, value)
}
