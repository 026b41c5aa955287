package scanner

import "github.com/emberlang/ember/lang/token"

// string scans a double-quoted STRING literal. ember has no escape
// sequences or interpolation (Non-goals: Unicode-aware string operations);
// the literal runs until the closing quote or end of input. Embedded
// newlines are legal and counted, matching clox.
func (s *Scanner) string() Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}

	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}

	s.advance() // closing quote
	return s.make(token.STRING)
}
