package parser

import (
	"strings"

	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/token"
)

func (p *Parser) registerPrefix() {
	p.prefixFns[token.INT] = p.parseNumberLiteral
	p.prefixFns[token.FLOAT] = p.parseNumberLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.REGEX] = p.parseRegexLiteral
	p.prefixFns[token.TRUE] = p.parseBoolLiteral
	p.prefixFns[token.FALSE] = p.parseBoolLiteral
	p.prefixFns[token.NULL] = p.parseNullLiteral
	p.prefixFns[token.IDENT] = p.parseIdentifierOrLambda
	p.prefixFns[token.LPAREN] = p.parseGroupedOrLambda
	p.prefixFns[token.LBRACKET] = p.parseArrayLiteral
	p.prefixFns[token.LBRACE] = p.parseMapOrSetLiteral
	p.prefixFns[token.MINUS] = p.parseUnaryExpr
	p.prefixFns[token.PLUS] = p.parseUnaryExpr
	p.prefixFns[token.BANG] = p.parseUnaryExpr
	p.prefixFns[token.TILDE] = p.parseUnaryExpr
	p.prefixFns[token.INC] = p.parsePrefixIncDec
	p.prefixFns[token.DEC] = p.parsePrefixIncDec
	p.prefixFns[token.NEW] = p.parseConstructorCall
}

func (p *Parser) registerInfix() {
	for _, t := range []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.AND_AND, token.OR_OR, token.AMP, token.PIPE, token.CARET,
		token.SHL, token.SHR, token.USHR, token.MATCH, token.NOT_MATCH,
		token.STARTS_WITH, token.ENDS_WITH, token.IN,
	} {
		p.infixFns[t] = p.parseBinaryExpr
	}
	p.infixFns[token.DOTDOT] = p.parseRangeExpr
	p.infixFns[token.QUESTION] = p.parseTernaryExpr
	p.infixFns[token.ELVIS] = p.parseElvisExpr
	p.infixFns[token.COALESCE] = p.parseCoalesceExpr
	p.infixFns[token.INSTANCEOF] = p.parseInstanceOfExpr
	p.infixFns[token.ASSIGN] = p.parseAssignExpr
	for _, t := range []token.Type{
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.PERCENT_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN,
	} {
		p.infixFns[t] = p.parseCompoundAssignExpr
	}
	p.infixFns[token.INC] = p.parsePostfixIncDec
	p.infixFns[token.DEC] = p.parsePostfixIncDec
	p.infixFns[token.DOT] = p.parseReference
	p.infixFns[token.SAFE_DOT] = p.parseReference
	p.infixFns[token.LBRACKET] = p.parseReference
	p.infixFns[token.SAFE_LBRACKET] = p.parseReference
	p.infixFns[token.LPAREN] = p.parseCallArgsAsFunctionCall
}

// parseExpression is the Pratt driver described in spec §4.2.3 /
// §9 (recursive-descent, left-to-right evaluation order).
func (p *Parser) parseExpression(precedence int) ast.Node {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		p.errorf("expression nesting too deep")
		return ast.NewNullLiteral(p.info())
	}

	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("unexpected token %q", p.curToken.Lexeme)
		p.nextToken()
		return ast.NewNullLiteral(p.info())
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNumberLiteral() ast.Node {
	info := p.info()
	n := ast.NewNumberLiteral(info, p.curToken.Lexeme, p.curToken.Type == token.FLOAT)
	return n
}

func (p *Parser) parseStringLiteral() ast.Node {
	return ast.NewStringLiteral(p.info(), p.curToken.Lexeme)
}

func (p *Parser) parseRegexLiteral() ast.Node {
	text := p.curToken.Lexeme
	info := p.info()
	// text is "/pattern/flags"
	last := strings.LastIndexByte(text, '/')
	if last <= 0 {
		return ast.NewRegexLiteral(info, text, "")
	}
	return ast.NewRegexLiteral(info, text[1:last], text[last+1:])
}

func (p *Parser) parseBoolLiteral() ast.Node {
	return ast.NewBoolLiteral(p.info(), p.curToken.Type == token.TRUE)
}

func (p *Parser) parseNullLiteral() ast.Node {
	return ast.NewNullLiteral(p.info())
}

// parseIdentifierOrLambda disambiguates a bare identifier from the start
// of a `(x) -> ...`-free single-parameter lambda `x -> expr`.
func (p *Parser) parseIdentifierOrLambda() ast.Node {
	info := p.info()
	name := p.curToken.Lexeme
	if p.peekIs(token.ARROW) {
		p.nextToken() // consume '->'
		p.nextToken() // move to body
		body := p.parseLambdaBody()
		return ast.NewLambda(info, []ast.Param{{Name: name, Symbol: -1}}, body)
	}
	// Namespace-qualified call `ns:name(args)` (spec §4.2.6): only a bare
	// identifier immediately followed by ':' IDENT '(' counts — anywhere
	// else a ':' following an identifier belongs to an enclosing ternary.
	if p.peekIs(token.COLON) && p.peek2Token.Type == token.IDENT {
		savedLexer := *p.l
		savedCur, savedPeek, savedPeek2 := p.curToken, p.peekToken, p.peek2Token
		p.nextToken() // cur -> ':'
		p.nextToken() // cur -> fn name
		fname := p.curToken.Lexeme
		if p.peekIs(token.LPAREN) {
			p.nextToken() // cur -> '('
			args := p.parseExprList(token.LPAREN, token.RPAREN)
			return ast.NewCallExpr(info, name, fname, args)
		}
		// Not a call: rewind so the ':' is left for an enclosing ternary.
		*p.l = savedLexer
		p.curToken, p.peekToken, p.peek2Token = savedCur, savedPeek, savedPeek2
	}
	return ast.NewIdentifier(info, name)
}

func (p *Parser) parseLambdaBody() ast.Node {
	if p.curIs(token.LBRACE) {
		return p.parseBlock()
	}
	return p.parseExpression(precAssign)
}

// parseGroupedOrLambda handles `(expr)` and `(params) -> body`.
func (p *Parser) parseGroupedOrLambda() ast.Node {
	info := p.info()
	if p.looksLikeLambdaParams() {
		params := p.parseLambdaParams()
		if !p.expect(token.ARROW) {
			return ast.NewNullLiteral(info)
		}
		p.nextToken()
		body := p.parseLambdaBody()
		return ast.NewLambda(info, params, body)
	}

	p.nextToken() // consume '('
	expr := p.parseExpression(lowest)
	if !p.expect(token.RPAREN) {
		return expr
	}
	return expr
}

// looksLikeLambdaParams scans the token run starting at the current '('
// for `ident, ident, ...) ->` without consuming, the way the teacher's
// parser disambiguates lambda headers from parenthesized expressions
// (internal/parser/expressions_functions.go uses an equivalent bounded
// lookahead over a peekable token stream).
func (p *Parser) looksLikeLambdaParams() bool {
	if p.peekIs(token.RPAREN) {
		return true // `() -> ...` — can't tell without a third token; caller checks ARROW after
	}
	if !p.peekIs(token.IDENT) {
		return false
	}
	// Single lookahead only covers `(x` — reuse peek2Token for one more.
	if p.peek2Token.Type == token.RPAREN || p.peek2Token.Type == token.COMMA {
		return true
	}
	return false
}

func (p *Parser) parseLambdaParams() []ast.Param {
	var params []ast.Param
	p.nextToken() // consume '('
	if p.curIs(token.RPAREN) {
		return params
	}
	for {
		if !p.curIs(token.IDENT) {
			p.errorf("expected parameter name, got %q", p.curToken.Lexeme)
			break
		}
		param := ast.Param{Name: p.curToken.Lexeme, Symbol: -1}
		if p.peekIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(precAssign)
		}
		params = append(params, param)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseUnaryExpr() ast.Node {
	info := p.info()
	op := p.curToken.Lexeme
	p.nextToken()
	operand := p.parseExpression(precUnary)
	return ast.NewUnaryExpr(info, op, operand)
}

func (p *Parser) parsePrefixIncDec() ast.Node {
	info := p.info()
	op := p.curToken.Lexeme
	p.nextToken()
	operand := p.parseExpression(precUnary)
	return ast.NewIncDecExpr(info, op, operand, true)
}

func (p *Parser) parsePostfixIncDec(left ast.Node) ast.Node {
	return ast.NewIncDecExpr(left.NodeInfo(), p.curToken.Lexeme, left, false)
}

func (p *Parser) parseBinaryExpr(left ast.Node) ast.Node {
	info := p.info()
	op := p.curToken.Lexeme
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return ast.NewBinaryExpr(info, op, left, right)
}

func (p *Parser) parseRangeExpr(left ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	right := p.parseExpression(precRange)
	return ast.NewRangeExpr(info, left, right)
}

func (p *Parser) parseTernaryExpr(cond ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	then := p.parseExpression(precAssign)
	if !p.expect(token.COLON) {
		return then
	}
	p.nextToken()
	els := p.parseExpression(precTernary - 1)
	return ast.NewTernaryExpr(info, cond, then, els)
}

func (p *Parser) parseElvisExpr(left ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	right := p.parseExpression(precCoalesce)
	return ast.NewElvisExpr(info, left, right)
}

func (p *Parser) parseCoalesceExpr(left ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	right := p.parseExpression(precCoalesce)
	return ast.NewCoalesceExpr(info, left, right)
}

func (p *Parser) parseInstanceOfExpr(left ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	class := p.parseQualifiedIdentifier()
	return ast.NewInstanceOfExpr(info, left, class, false)
}

func (p *Parser) parseQualifiedIdentifier() *ast.QualifiedIdentifier {
	info := p.info()
	if !p.curIs(token.IDENT) {
		p.errorf("expected class name, got %q", p.curToken.Lexeme)
		return ast.NewQualifiedIdentifier(info, nil)
	}
	parts := []string{p.curToken.Lexeme}
	for p.peekIs(token.DOT) {
		p.nextToken()
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.errorf("expected identifier after '.', got %q", p.curToken.Lexeme)
			break
		}
		parts = append(parts, p.curToken.Lexeme)
	}
	return ast.NewQualifiedIdentifier(info, parts)
}

func (p *Parser) parseAssignExpr(target ast.Node) ast.Node {
	info := p.info()
	p.nextToken()
	value := p.parseExpression(precAssign - 1)
	return ast.NewAssignExpr(info, target, value)
}

func (p *Parser) parseCompoundAssignExpr(target ast.Node) ast.Node {
	info := p.info()
	op := strings.TrimSuffix(p.curToken.Lexeme, "=")
	p.nextToken()
	value := p.parseExpression(precAssign - 1)
	return ast.NewCompoundAssignExpr(info, op, target, value)
}

func (p *Parser) parseArrayLiteral() ast.Node {
	info := p.info()
	elements := p.parseExprList(token.LBRACKET, token.RBRACKET)
	return ast.NewArrayLiteral(info, elements)
}

// parseMapOrSetLiteral parses `{}` and disambiguates map vs. set by
// whether the first entry is followed by `:`.
func (p *Parser) parseMapOrSetLiteral() ast.Node {
	info := p.info()
	p.nextToken() // consume '{'
	if p.curIs(token.RBRACE) {
		return ast.NewMapLiteral(info, nil)
	}

	first := p.parseExpression(precAssign)
	if p.curIs(token.COLON) || p.peekIs(token.COLON) {
		if p.peekIs(token.COLON) {
			p.nextToken()
		}
		p.nextToken()
		value := p.parseExpression(precAssign)
		entries := []*ast.MapEntry{ast.NewMapEntry(first.NodeInfo(), first, value)}
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			k := p.parseExpression(precAssign)
			if !p.expect(token.COLON) {
				break
			}
			p.nextToken()
			v := p.parseExpression(precAssign)
			entries = append(entries, ast.NewMapEntry(k.NodeInfo(), k, v))
		}
		p.expect(token.RBRACE)
		return ast.NewMapLiteral(info, entries)
	}

	elements := []ast.Node{first}
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		elements = append(elements, p.parseExpression(precAssign))
	}
	p.expect(token.RBRACE)
	return ast.NewSetLiteral(info, elements)
}

// parseExprList parses a comma-separated expression list delimited by
// open/close, with cur positioned on open at entry and on close at exit.
func (p *Parser) parseExprList(open, close token.Type) []ast.Node {
	var list []ast.Node
	p.nextToken() // consume open
	if p.curIs(close) {
		return list
	}
	list = append(list, p.parseExpression(precAssign))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(precAssign))
	}
	p.expect(close)
	return list
}

func (p *Parser) parseConstructorCall() ast.Node {
	info := p.info()
	p.nextToken() // consume 'new'
	class := p.parseQualifiedIdentifier()
	var args []ast.Node
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		args = p.parseExprList(token.LPAREN, token.RPAREN)
	}
	return ast.NewConstructorCall(info, class, args)
}

// parseReference handles the `.`/`?.`/`[`/`?[` chain described in spec
// §4.2.4/§3: it builds (or extends) a *ast.Reference over left.
func (p *Parser) parseReference(left ast.Node) ast.Node {
	info := left.NodeInfo()
	var root ast.Node
	var steps []ast.Node
	if ref, ok := left.(*ast.Reference); ok {
		root = ref.Root
		steps = append(steps, ref.Steps...)
	} else {
		root = left
	}

	for {
		switch p.curToken.Type {
		case token.DOT, token.SAFE_DOT:
			safe := p.curToken.Type == token.SAFE_DOT
			p.nextToken()
			if !p.curIs(token.IDENT) {
				p.errorf("expected identifier after '.', got %q", p.curToken.Lexeme)
				return ast.NewReference(info, root, steps)
			}
			name := p.curToken.Lexeme
			stepInfo := p.info()
			if p.peekIs(token.LPAREN) {
				p.nextToken()
				args := p.parseExprList(token.LPAREN, token.RPAREN)
				steps = append(steps, ast.NewMethodAccess(stepInfo, name, args, safe))
			} else {
				steps = append(steps, ast.NewIdentifierAccess(stepInfo, name, safe))
			}
		case token.LBRACKET, token.SAFE_LBRACKET:
			safe := p.curToken.Type == token.SAFE_LBRACKET
			stepInfo := p.info()
			p.nextToken()
			idx := p.parseExpression(lowest)
			p.expect(token.RBRACKET)
			steps = append(steps, ast.NewArrayAccess(stepInfo, idx, safe))
		default:
			return ast.NewReference(info, root, steps)
		}

		switch p.peekToken.Type {
		case token.DOT, token.SAFE_DOT, token.LBRACKET, token.SAFE_LBRACKET:
			p.nextToken()
			continue
		}
		return ast.NewReference(info, root, steps)
	}
}

// parseCallArgsAsFunctionCall handles `name(args)` when the left-hand side
// parsed as a bare identifier (free function call, spec §4.2.6), and
// `callee(args)` for any other left-hand side. Namespace calls
// `ns:name(args)` are built in parseIdentifierOrLambda instead.
func (p *Parser) parseCallArgsAsFunctionCall(left ast.Node) ast.Node {
	info := left.NodeInfo()
	if id, ok := left.(*ast.Identifier); ok {
		args := p.parseExprList(token.LPAREN, token.RPAREN)
		return ast.NewCallExpr(info, "", id.Name, args)
	}
	args := p.parseExprList(token.LPAREN, token.RPAREN)
	return ast.NewCalleeCallExpr(info, left, args)
}

