// Package compiler implements ember's single-pass compiler: a Pratt
// expression parser fused with a scope-aware local/upvalue resolver that
// emits bytecode directly into a chunk.Chunk, with no intermediate AST
// (§4.1). A hand-written recursive-descent/Pratt compiler maintaining
// explicit parser state (current/previous token, panicMode, hadError),
// allocating through lang/object/lang/gc and emitting into lang/chunk.
package compiler

import (
	"fmt"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

const maxLocals = 256
const maxUpvalues = 256
const maxJumpDistance = 1<<16 - 1

type funcType uint8

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

type local struct {
	name     string
	depth    int // -1 while the initializer is still being compiled
	mutable  bool
	captured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

// loopState is snapshotted and restored around compiling a loop body, so
// nested loops each track their own continue target and pending breaks
// (§4.1 control flow).
type loopState struct {
	enclosing      *loopState
	continueTarget int
	breakJumps     []int
	localBase      int // index of the first local declared inside the loop's own scope
}

// classState tracks the class currently being compiled, so `this` and
// `super` can be resolved and nested class declarations restore the outer
// class correctly.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// funcCompiler is one frame of the compiler's own call stack: one per
// function body currently being compiled, linked by enclosing to its
// lexically surrounding function (§4.1).
type funcCompiler struct {
	enclosing *funcCompiler
	function  *object.Function
	fnType    funcType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	loop *loopState
}

// Compiler holds all parser and resolver state for one Compile call (and,
// across a REPL session, is reconstructed per line while sharing the same
// Globals and Allocator so global slot numbers and interned strings stay
// consistent).
type Compiler struct {
	scan  *scanner.Scanner
	alloc *object.Allocator
	heap  *gc.Heap

	globals *object.Globals

	current *funcCompiler
	class   *classState

	previous scanner.Token
	cur      scanner.Token

	panicMode bool
	hadError  bool
	errs      ErrorList
}

var _ gc.RootSource = (*Compiler)(nil)

// Compile compiles source into the Function representing the top-level
// script. On any syntax or semantic error it keeps parsing (to surface
// multiple diagnostics) and returns a non-nil error; the returned Function
// is then not meant to be executed.
func Compile(source []byte, alloc *object.Allocator, globals *object.Globals) (*object.Function, error) {
	c := &Compiler{
		scan:    scanner.New(source),
		alloc:   alloc,
		heap:    alloc.Heap,
		globals: globals,
	}
	c.heap.AddRoot(c)
	defer c.heap.RemoveRoot(c)

	c.pushFuncCompiler(typeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if c.hadError {
		return fn, c.errs.Err()
	}
	return fn, nil
}

// MarkRoots implements gc.RootSource: every function still under
// construction anywhere in the compiler's own call chain is a root
// (§4.3 step 1, markCompilerRoots).
func (c *Compiler) MarkRoots(mark func(gc.Obj)) {
	for fc := c.current; fc != nil; fc = fc.enclosing {
		if fc.function != nil {
			mark(fc.function)
		}
	}
}

func (c *Compiler) pushFuncCompiler(ft funcType, name string) {
	fn := c.alloc.NewFunction()
	if name != "" {
		fn.Name = c.alloc.NewString([]byte(name))
	}
	fc := &funcCompiler{enclosing: c.current, function: fn, fnType: ft}
	// Slot 0 is reserved: for methods/initializers it holds the receiver
	// (`this`); for plain functions and the script it holds the callee
	// itself and is never read by name.
	receiver := ""
	if ft == typeMethod || ft == typeInitializer {
		receiver = "this"
	}
	fc.locals = append(fc.locals, local{name: receiver, depth: 0, mutable: false})
	c.current = fc
}

// endCompiler finishes the current function: emits the implicit `nil;
// return`, pops back to the enclosing funcCompiler, and returns the
// finished Function.
func (c *Compiler) endCompiler() *object.Function {
	c.emitReturn()
	fn := c.current.function
	c.current = c.current.enclosing
	return fn
}

func (c *Compiler) emitReturn() {
	if c.current.fnType == typeInitializer {
		c.emitBytes(byte(GET_LOCAL), 0)
	} else {
		c.emit(byte(NIL))
	}
	c.emit(byte(RETURN))
}

func (c *Compiler) chunkOf() *chunk.Chunk { return c.current.function.Chunk }

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ERROR {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *Compiler) check(k token.Token) bool { return c.cur.Kind == k }

func (c *Compiler) match(k token.Token) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Token, message string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.cur, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok scanner.Token, message string) {
	if c.panicMode {
		return
	}
	var where string
	switch {
	case tok.Kind == token.EOF:
		where = " at end"
	case tok.Kind == token.ERROR:
		where = ""
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.report(fmt.Sprintf("[line %d] Error%s: %s", tok.Line, where, message))
}

// synchronize recovers from a syntax error by skipping tokens until a
// statement boundary, so the parser can continue past one error and
// report more (§4.1).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.CONST, token.FOR,
			token.IF, token.WHILE, token.SWITCH, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// ---- byte emission ----

func (c *Compiler) emit(b byte) int                 { return c.chunkOf().Write(b, c.previous.Line) }
func (c *Compiler) emitBytes(a, b byte) int          { c.emit(a); return c.emit(b) }
func (c *Compiler) emitOp(op Opcode)                 { c.emit(byte(op)) }
func (c *Compiler) emitOpByte(op Opcode, operand byte) {
	c.emit(byte(op))
	c.emit(operand)
}

// emit24 writes a big-endian 24-bit operand, used by every _LONG opcode.
func (c *Compiler) emit24(v int) {
	c.emit(byte(v >> 16))
	c.emit(byte(v >> 8))
	c.emit(byte(v))
}

// emitIndexed picks short or _LONG form of op depending on whether index
// fits in one byte (§4.1 emitConstant and the general short/long split).
func (c *Compiler) emitIndexed(op Opcode, index int) {
	if index <= 0xff {
		c.emit(byte(op))
		c.emit(byte(index))
		return
	}
	long, ok := LongVariant(op)
	if !ok {
		c.error("internal error: opcode has no _LONG form")
		return
	}
	c.emit(byte(long))
	c.emit24(index)
}

// emitConstant adds v to the current chunk's constant pool and emits a
// CONSTANT/CONSTANT_LONG to push it.
func (c *Compiler) emitConstant(v value.Value) {
	idx := c.chunkOf().AddConstant(v)
	c.emitIndexed(CONSTANT, idx)
}

// emitJump emits a two-byte-placeholder forward jump and returns the
// offset of its first operand byte, to be patched later.
func (c *Compiler) emitJump(op Opcode) int {
	c.emit(byte(op))
	c.emit(0xff)
	c.emit(0xff)
	return c.chunkOf().Len() - 2
}

// patchJump backpatches the jump at offset to land at the chunk's current
// end.
func (c *Compiler) patchJump(offset int) {
	dist := c.chunkOf().Len() - offset - 2
	if dist > maxJumpDistance {
		c.error("Too much code to jump over.")
		return
	}
	c.chunkOf().PatchByte(offset, byte(dist>>8))
	c.chunkOf().PatchByte(offset+1, byte(dist))
}

// emitLoop emits a LOOP back to target.
func (c *Compiler) emitLoop(target int) {
	c.emitOp(LOOP)
	dist := c.chunkOf().Len() - target + 2
	if dist > maxJumpDistance {
		c.error("Loop body too large.")
	}
	c.emit(byte(dist >> 8))
	c.emit(byte(dist))
}

// ---- scope management ----

func (c *Compiler) beginScope() { c.current.scopeDepth++ }

func (c *Compiler) endScope() {
	c.current.scopeDepth--
	fc := c.current
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		last := fc.locals[len(fc.locals)-1]
		if last.captured {
			c.emitOp(CLOSE_UPVALUE)
		} else {
			c.emitOp(POP)
		}
		fc.locals = fc.locals[:len(fc.locals)-1]
	}
}
