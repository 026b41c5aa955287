package scanner

// skipLineComment consumes a '//' line comment up to (not including) the
// terminating newline, which skipWhitespaceAndComments handles on its next
// iteration. ember has no block comment syntax.
func (s *Scanner) skipLineComment() {
	for s.peek() != '\n' && !s.atEnd() {
		s.advance()
	}
}
