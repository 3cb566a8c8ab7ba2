package parser

import (
	"github.com/jexl-go/jexl/internal/ast"
	"github.com/jexl-go/jexl/internal/token"
)

// parseStatement dispatches on the current token to the right statement
// production, falling back to an expression statement (spec §4.2.2).
func (p *Parser) parseStatement() ast.Node {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.DO:
		return p.parseDoWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.TRY:
		return p.parseTryStmt()
	case token.THROW:
		return p.parseThrowStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		return p.parseBreakStmt()
	case token.CONTINUE:
		return p.parseContinueStmt()
	case token.AT:
		return p.parseAnnotatedStatement()
	case token.SEMI:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	info := p.info()
	p.nextToken() // consume '{'
	var stmts []ast.Node
	p.skipSemicolons()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
		p.skipSemicolons()
	}
	return ast.NewBlock(info, stmts)
}

func (p *Parser) parseVarDecl() ast.Node {
	info := p.info()
	p.nextToken() // consume 'var'
	if !p.curIs(token.IDENT) {
		p.errorf("expected variable name, got %q", p.curToken.Lexeme)
		return ast.NewVarDecl(info, "", nil)
	}
	name := p.curToken.Lexeme
	var init ast.Node
	if p.peekIs(token.ASSIGN) {
		p.nextToken() // '='
		p.nextToken() // start of expr
		init = p.parseExpression(precAssign)
	}
	return ast.NewVarDecl(info, name, init)
}

// parseParenExpr expects cur to be '(' and leaves cur on the matching ')'.
func (p *Parser) parseParenExpr() ast.Node {
	p.expect(token.LPAREN)
	p.nextToken()
	expr := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) parseIfStmt() ast.Node {
	info := p.info()
	cond := p.parseParenExpr()
	p.nextToken()
	then := p.parseStatement()
	for p.peekIs(token.SEMI) {
		p.nextToken()
	}
	var els ast.Node
	if p.peekIs(token.ELSE) {
		p.nextToken() // 'else'
		p.nextToken()
		els = p.parseStatement()
	}
	return ast.NewIfStmt(info, cond, then, els)
}

func (p *Parser) parseWhileStmt() ast.Node {
	info := p.info()
	cond := p.parseParenExpr()
	p.nextToken()
	body := p.parseStatement()
	return ast.NewWhileStmt(info, cond, body)
}

func (p *Parser) parseDoWhileStmt() ast.Node {
	info := p.info()
	p.nextToken() // consume 'do'
	body := p.parseStatement()
	for p.peekIs(token.SEMI) {
		p.nextToken()
	}
	if !p.expect(token.WHILE) {
		return ast.NewDoWhileStmt(info, body, ast.NewNullLiteral(info))
	}
	cond := p.parseParenExpr()
	return ast.NewDoWhileStmt(info, body, cond)
}

// parseForStmt parses both the C-style `for (init; cond; step) body` and
// the foreach `for (var name : iterable) body` forms (spec §4.2.2), which
// share a `for (` prefix and diverge once the first clause is read.
func (p *Parser) parseForStmt() ast.Node {
	info := p.info()
	p.expect(token.LPAREN)

	if p.peekIs(token.VAR) {
		// Tentatively a foreach; look past `var name` for ':'. The token
		// buffer alone isn't deep enough to see that far, so snapshot the
		// lexer's scan position too and rewind both on mismatch.
		savedLexer := *p.l
		savedCur, savedPeek, savedPeek2 := p.curToken, p.peekToken, p.peek2Token

		p.nextToken() // 'var'
		p.nextToken() // name
		name := p.curToken.Lexeme
		if p.peekIs(token.COLON) {
			p.nextToken() // ':'
			p.nextToken() // start of iterable
			iterable := p.parseExpression(lowest)
			p.expect(token.RPAREN)
			p.nextToken()
			body := p.parseStatement()
			return ast.NewForEachStmt(info, name, iterable, body)
		}

		*p.l = savedLexer
		p.curToken, p.peekToken, p.peek2Token = savedCur, savedPeek, savedPeek2
	}

	p.nextToken() // move past '(' to the init clause (or ';')
	var init ast.Node
	if p.curIs(token.VAR) {
		init = p.parseVarDecl()
		p.nextToken()
	} else if !p.curIs(token.SEMI) {
		init = p.parseExpression(lowest)
		p.nextToken()
	}
	if !p.curIs(token.SEMI) {
		p.errorf("expected ';' in for statement, got %q", p.curToken.Lexeme)
	}

	p.nextToken() // move past ';' to the cond clause (or ';')
	var cond ast.Node
	if !p.curIs(token.SEMI) {
		cond = p.parseExpression(lowest)
		p.nextToken()
	}
	if !p.curIs(token.SEMI) {
		p.errorf("expected ';' in for statement, got %q", p.curToken.Lexeme)
	}

	p.nextToken() // move past ';' to the step clause (or ')')
	var step ast.Node
	if !p.curIs(token.RPAREN) {
		step = p.parseExpression(lowest)
		p.nextToken()
	}
	if !p.curIs(token.RPAREN) {
		p.errorf("expected ')' in for statement, got %q", p.curToken.Lexeme)
	}

	p.nextToken() // move past ')' to the body
	body := p.parseStatement()
	return ast.NewForStmt(info, init, cond, step, body)
}

// parseTryStmt parses `try (resources)? body catch (var) catchBody?
// finally finallyBody?` (spec §4.2.7). A try with neither catch nor
// finally is accepted here, and nothing else in this module rejects it.
func (p *Parser) parseTryStmt() ast.Node {
	info := p.info()
	p.nextToken() // consume 'try'

	var resources []*ast.TryResource
	if p.curIs(token.LPAREN) {
		p.nextToken() // '('
		for {
			resInfo := p.info()
			if !p.curIs(token.VAR) {
				p.errorf("expected resource declaration, got %q", p.curToken.Lexeme)
				break
			}
			p.nextToken()
			name := p.curToken.Lexeme
			p.expect(token.ASSIGN)
			p.nextToken()
			init := p.parseExpression(precAssign)
			resources = append(resources, ast.NewTryResource(resInfo, name, init))
			if p.peekIs(token.SEMI) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		p.nextToken()
	}

	body := p.parseStatement()
	for p.peekIs(token.SEMI) {
		p.nextToken()
	}

	catchVar := ""
	var catchBody ast.Node
	if p.peekIs(token.CATCH) {
		p.nextToken() // 'catch'
		p.expect(token.LPAREN)
		p.nextToken()
		if p.curIs(token.IDENT) {
			catchVar = p.curToken.Lexeme
		}
		p.expect(token.RPAREN)
		p.nextToken()
		catchBody = p.parseStatement()
		for p.peekIs(token.SEMI) {
			p.nextToken()
		}
	}

	var finallyBody ast.Node
	if p.peekIs(token.FINALLY) {
		p.nextToken() // 'finally'
		p.nextToken()
		finallyBody = p.parseStatement()
	}

	return ast.NewTryStmt(info, resources, body, catchVar, catchBody, finallyBody)
}

func (p *Parser) parseThrowStmt() ast.Node {
	info := p.info()
	p.nextToken() // consume 'throw'
	expr := p.parseExpression(lowest)
	return ast.NewThrowStmt(info, expr)
}

func (p *Parser) parseReturnStmt() ast.Node {
	info := p.info()
	var expr ast.Node
	if !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) {
		p.nextToken()
		expr = p.parseExpression(lowest)
	}
	return ast.NewReturnStmt(info, expr)
}

func (p *Parser) parseBreakStmt() ast.Node {
	info := p.info()
	label := ""
	if p.peekIs(token.IDENT) {
		p.nextToken()
		label = p.curToken.Lexeme
	}
	return ast.NewBreakStmt(info, label)
}

func (p *Parser) parseContinueStmt() ast.Node {
	info := p.info()
	label := ""
	if p.peekIs(token.IDENT) {
		p.nextToken()
		label = p.curToken.Lexeme
	}
	return ast.NewContinueStmt(info, label)
}

// parseAnnotatedStatement parses one or more `@Name(args)` annotations
// followed by the statement they decorate (spec §4.2.8).
func (p *Parser) parseAnnotatedStatement() ast.Node {
	info := p.info()
	var annotations []*ast.Annotation
	for p.curIs(token.AT) {
		annInfo := p.info()
		p.nextToken() // consume '@'
		if !p.curIs(token.IDENT) {
			p.errorf("expected annotation name, got %q", p.curToken.Lexeme)
			break
		}
		name := p.curToken.Lexeme
		var args []ast.Node
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			args = p.parseExprList(token.LPAREN, token.RPAREN)
		}
		annotations = append(annotations, ast.NewAnnotation(annInfo, name, args))
		p.nextToken()
	}
	body := p.parseStatement()
	return ast.NewAnnotatedStatement(info, annotations, body)
}

func (p *Parser) parseExpressionStatement() ast.Node {
	return p.parseExpression(lowest)
}
