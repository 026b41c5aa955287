// Package chunk implements the bytecode container of §3: the byte array
// produced by the compiler, its constant pool, and the run-length source
// line table used only for diagnostics.
package chunk

import "github.com/emberlang/ember/lang/value"

// lineRun is one entry of the run-length line table: line holds starting at
// code offset startOffset and continues until the next run's startOffset.
type lineRun struct {
	line        int
	startOffset int
}

// Chunk is the bytecode produced for one function.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	lines     []lineRun
}

// New returns an empty chunk.
func New() *Chunk { return &Chunk{} }

// Write appends one bytecode byte, generated while compiling source line
// line, and returns the offset it was written at.
func (c *Chunk) Write(b byte, line int) int {
	offset := len(c.Code)
	c.Code = append(c.Code, b)
	if n := len(c.lines); n == 0 || c.lines[n-1].line != line {
		c.lines = append(c.lines, lineRun{line: line, startOffset: offset})
	}
	return offset
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// GetLine implements getLine (§3): a linear scan of the run-length table,
// O(run-count), used only for error/stack-trace diagnostics.
func (c *Chunk) GetLine(offset int) int {
	for i := len(c.lines) - 1; i >= 0; i-- {
		if offset >= c.lines[i].startOffset {
			return c.lines[i].line
		}
	}
	return 0
}

// Len reports the number of bytes written so far; used by the compiler to
// compute jump-patch targets.
func (c *Chunk) Len() int { return len(c.Code) }

// PatchByte overwrites a single previously-written byte, used to back-patch
// jump operands once their target offset is known.
func (c *Chunk) PatchByte(offset int, b byte) { c.Code[offset] = b }
