package scanner

import "github.com/emberlang/ember/lang/token"

// number scans a NUMBER literal: a run of decimal digits, optionally
// followed by a '.' and more digits. No exponent or hex/octal/binary
// forms — ember numbers are plain IEEE-754 doubles written in decimal
// (§3, §6).
func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	return s.make(token.NUMBER)
}
