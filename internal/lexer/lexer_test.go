package lexer

import (
	"testing"

	"github.com/jexl-go/jexl/internal/token"
)

func tokenTypes(src string) []token.Type {
	l := New(src)
	var types []token.Type
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			return types
		}
	}
}

func TestLexesArithmeticExpression(t *testing.T) {
	got := tokenTypes("1 + 2 * 3")
	want := []token.Type{token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.EOF}
	assertTypes(t, got, want)
}

func TestLexesSafeNavigationOperators(t *testing.T) {
	got := tokenTypes("a?.b?[0]")
	want := []token.Type{token.IDENT, token.SAFE_DOT, token.IDENT, token.SAFE_LBRACKET, token.INT, token.RBRACKET, token.EOF}
	assertTypes(t, got, want)
}

func TestLexesStringLiteral(t *testing.T) {
	l := New(`'hello'`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Lexeme != "hello" {
		t.Fatalf("got %v %q, want STRING \"hello\"", tok.Type, tok.Lexeme)
	}
}

func TestLexesKeywords(t *testing.T) {
	got := tokenTypes("if else while var")
	want := []token.Type{token.IF, token.ELSE, token.WHILE, token.VAR, token.EOF}
	assertTypes(t, got, want)
}

func TestSlashDisambiguatesDivisionFromRegex(t *testing.T) {
	got := tokenTypes("a / b")
	if len(got) < 2 || got[1] != token.SLASH {
		t.Fatalf("got %v, want SLASH after an operand", got)
	}

	got = tokenTypes("x =~ /abc/")
	var sawRegex bool
	for _, ty := range got {
		if ty == token.REGEX {
			sawRegex = true
		}
	}
	if !sawRegex {
		t.Fatalf("got %v, want a REGEX token after an operator position", got)
	}
}

func TestTracksLineAndColumn(t *testing.T) {
	l := New("1\n  2")
	first := l.NextToken()
	if first.Line != 1 {
		t.Fatalf("first token line = %d, want 1", first.Line)
	}
	second := l.NextToken()
	if second.Line != 2 {
		t.Fatalf("second token line = %d, want 2", second.Line)
	}
}

func assertTypes(t *testing.T, got, want []token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (full: got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}
