package compiler

import "go/scanner"

// ErrorList reuses go/scanner's error accumulator, so a compile that hits
// several syntax errors keeps all of them, in the order they were reported,
// instead of stopping at the first. Positions are left zero and the line
// number lives in each message — ember compiles one buffer at a time, so a
// filename/column pair would be dead weight. ErrorList.Error() shows only
// the first message; callers that print every diagnostic range over the
// list.
type ErrorList = scanner.ErrorList

// report appends one formatted diagnostic. The message is pre-formatted by
// the caller into the exact shape §7 requires ("[line N] Error ...: ..."),
// so the Position is left zero (invalid): go/scanner.Error.Error() falls
// back to printing the bare message when its Position isn't valid, instead
// of prefixing its own "file:line:" form.
func (c *Compiler) report(message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errs.Add(scanner.Position{}, message)
}
