// Package scanner turns ember source bytes into a stream of tokens for the
// compiler's Pratt parser to consume: a byte-at-a-time cursor with
// peek/advance helpers and a big switch in Scan. ember source is treated
// as a single flat byte sequence (strings are byte sequences, not Unicode
// text) and position is tracked as a bare line number, not a
// token.FileSet/Pos pair — the compiler only ever needs "what line is this
// token on" for diagnostics and the chunk's line table.
package scanner

import (
	"fmt"

	"github.com/emberlang/ember/lang/token"
)

// Token is one lexeme produced by the scanner: its kind, the exact slice of
// source text it spans, and the 1-based source line it started on. An
// ERROR kind carries a diagnostic message in Lexeme instead of source text
// (§6).
type Token struct {
	Kind   token.Token
	Lexeme string
	Line   int
}

// Scanner tokenizes a single source buffer.
type Scanner struct {
	src     []byte
	start   int // start of the lexeme currently being scanned
	current int // next byte to be read
	line    int
}

// New returns a Scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, line: 1}
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	b := s.src[s.current]
	s.current++
	return b
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) make(kind token.Token) Token {
	return Token{Kind: kind, Lexeme: string(s.src[s.start:s.current]), Line: s.line}
}

func (s *Scanner) errorToken(format string, args ...any) Token {
	return Token{Kind: token.ERROR, Lexeme: fmt.Sprintf(format, args...), Line: s.line}
}

// Scan returns the next token, advancing past it. Once EOF is returned,
// every subsequent call also returns EOF.
func (s *Scanner) Scan() Token {
	s.skipWhitespaceAndComments()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LEFT_PAREN)
	case ')':
		return s.make(token.RIGHT_PAREN)
	case '{':
		return s.make(token.LEFT_BRACE)
	case '}':
		return s.make(token.RIGHT_BRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ':':
		return s.make(token.COLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '?':
		return s.make(token.QUESTION)
	case '!':
		if s.match('=') {
			return s.make(token.BANG_EQUAL)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQUAL_EQUAL)
		}
		return s.make(token.EQUAL)
	case '<':
		if s.match('=') {
			return s.make(token.LESS_EQUAL)
		}
		return s.make(token.LESS)
	case '>':
		if s.match('=') {
			return s.make(token.GREATER_EQUAL)
		}
		return s.make(token.GREATER)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character '%c'.", c)
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				s.skipLineComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lexeme := string(s.src[s.start:s.current])
	if kind, ok := token.Keywords[lexeme]; ok {
		return s.make(kind)
	}
	return s.make(token.IDENTIFIER)
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
