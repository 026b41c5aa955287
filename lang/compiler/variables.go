package compiler

import (
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/token"
)

// resolveLocal searches the current function's locals from the most
// recently declared backward, matching the shadowing rule "innermost wins"
// (§4.1 resolution order step 1).
func (c *Compiler) resolveLocal(fc *funcCompiler, name string) (slot int, mutable bool, found bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name == name {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i, l.mutable, true
		}
	}
	return 0, false, false
}

// resolveUpvalue implements resolution order steps 2: recurse into the
// enclosing function; a local found there is captured and added as a new
// upvalue, an upvalue found there is chained through as a new upvalue of
// the current function.
func (c *Compiler) resolveUpvalue(fc *funcCompiler, name string) (index int, mutable bool, found bool) {
	if fc.enclosing == nil {
		return 0, false, false
	}
	if slot, mut, ok := c.resolveLocal(fc.enclosing, name); ok {
		fc.enclosing.locals[slot].captured = true
		return c.addUpvalue(fc, uint8(slot), true), mut, true
	}
	if idx, mut, ok := c.resolveUpvalue(fc.enclosing, name); ok {
		return c.addUpvalue(fc, uint8(idx), false), mut, true
	}
	return 0, false, false
}

func (c *Compiler) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	for i, u := range fc.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fc.function.UpvalueCount = len(fc.upvalues)
	return len(fc.upvalues) - 1
}

// addLocal declares a new local in the current scope; it is left at depth
// -1 ("uninitialized") until markInitialized runs after its initializer
// has been compiled.
func (c *Compiler) addLocal(name string, mutable bool) {
	fc := c.current
	if len(fc.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := fc.locals[i]
		if l.depth != -1 && l.depth < fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	fc.locals = append(fc.locals, local{name: name, depth: -1, mutable: mutable})
}

func (c *Compiler) markInitialized() {
	fc := c.current
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[len(fc.locals)-1].depth = fc.scopeDepth
}

// declareVariable registers name as a local if we're inside a scope; at
// global scope there is nothing to do yet (defineVariable does the work,
// resolving the global's slot through Globals.Slot).
func (c *Compiler) declareVariable(name string, mutable bool) {
	if c.current.scopeDepth == 0 {
		return
	}
	c.addLocal(name, mutable)
}

// parseVariable consumes an identifier and, for local scope, declares it;
// it returns the lexeme for the caller to later use (global scope resolves
// a slot and emits DEFINE_GLOBAL once the initializer is compiled).
func (c *Compiler) parseVariable(errMsg string, mutable bool) string {
	c.consume(token.IDENTIFIER, errMsg)
	name := c.previous.Lexeme
	c.declareVariable(name, mutable)
	return name
}

// defineVariable finishes a var/const declaration for name: in local
// scope it just unlocks the local (no bytecode); in global scope it emits
// DEFINE_GLOBAL(slot) and records const-ness.
func (c *Compiler) defineVariable(name string, mutable bool) {
	if c.current.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	slot, _ := c.globals.Slot(c.internName(name))
	if !mutable {
		c.globals.MarkConst(slot)
	}
	c.emitIndexed(DEFINE_GLOBAL, slot)
}

func (c *Compiler) internName(name string) *object.String {
	return c.alloc.NewString([]byte(name))
}
