package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
)

func scanAll(t *testing.T, src string) []scanner.Token {
	t.Helper()
	s := scanner.New([]byte(src))
	var toks []scanner.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []scanner.Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){};:,.-+/*?! = == <= < >= > !=")
	require.Equal(t, []token.Token{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.SEMICOLON, token.COLON, token.COMMA, token.DOT, token.MINUS, token.PLUS,
		token.SLASH, token.STAR, token.QUESTION, token.BANG, token.EQUAL, token.EQUAL_EQUAL,
		token.LESS_EQUAL, token.LESS, token.GREATER_EQUAL, token.GREATER, token.BANG_EQUAL,
		token.EOF,
	}, kinds(toks))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "var x = foo")
	require.Equal(t, []token.Token{token.VAR, token.IDENTIFIER, token.EQUAL, token.IDENTIFIER, token.EOF}, kinds(toks))
	require.Equal(t, "x", toks[1].Lexeme)
	require.Equal(t, "foo", toks[3].Lexeme)
}

func TestNumberLiteral(t *testing.T) {
	toks := scanAll(t, "1 2.5 10")
	require.Equal(t, []token.Token{token.NUMBER, token.NUMBER, token.NUMBER, token.EOF}, kinds(toks))
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, "2.5", toks[1].Lexeme)
}

func TestStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello, world"`)
	require.Len(t, toks, 2)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"hello, world"`, toks[0].Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ERROR, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "Unterminated string")
}

func TestLineCommentsAndWhitespaceSkipped(t *testing.T) {
	toks := scanAll(t, "// a comment\nvar x;")
	require.Equal(t, []token.Token{token.VAR, token.IDENTIFIER, token.SEMICOLON, token.EOF}, kinds(toks))
	require.Equal(t, 2, toks[0].Line)
}

func TestIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.ERROR, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "Unexpected character")
}
