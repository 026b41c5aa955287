package compiler

import (
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varOrConstDeclaration(true)
	case c.match(token.CONST):
		c.varOrConstDeclaration(false)
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varOrConstDeclaration(mutable bool) {
	msg := "Expect variable name."
	if !mutable {
		msg = "Expect constant name."
	}
	name := c.parseVariable(msg, mutable)

	hasInitializer := c.match(token.EQUAL)
	if hasInitializer {
		c.expression()
	} else if !mutable {
		c.error("Const declaration requires an initializer.")
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	if !hasInitializer && mutable && c.current.scopeDepth == 0 {
		// An uninitialized global must stay Undefined (§3, §8 scenario 7),
		// not Nil: registering the slot is enough, since Globals.Slot
		// already seeds it Undefined. Emitting NIL;DEFINE_GLOBAL here would
		// overwrite that with a real Nil value and mask reads of a
		// never-assigned global as succeeding.
		c.globals.Slot(c.internName(name))
		return
	}
	if !hasInitializer {
		c.emitOp(NIL) // local scope: occupy the declared local's stack slot
	}
	c.defineVariable(name, mutable)
}

func (c *Compiler) funDeclaration() {
	name := c.parseVariable("Expect function name.", true)
	c.markInitialized() // allows the function to call itself recursively by name
	c.function(typeFunction, name)
	c.defineVariable(name, true)
}

// function compiles one function's parameter list and body into a fresh
// FunctionCompiler frame, then emits CLOSURE(+upvalue pairs) into the
// *enclosing* chunk (§4.1).
func (c *Compiler) function(ft funcType, name string) {
	c.pushFuncCompiler(ft, name)
	fc := c.current
	c.beginScope()

	c.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !c.check(token.RIGHT_PAREN) {
		for {
			fc.function.Arity++
			if fc.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramName := c.parseVariable("Expect parameter name.", true)
			c.defineVariable(paramName, true)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	c.consume(token.LEFT_BRACE, "Expect '{' before function body.")
	c.block()

	c.emitReturn()
	fn := fc.function
	c.current = fc.enclosing

	idx := c.chunkOf().AddConstant(value.FromObj(fn))
	c.emitIndexed(CLOSURE, idx)
	for _, u := range fc.upvalues {
		if u.isLocal {
			c.emit(1)
		} else {
			c.emit(0)
		}
		c.emit(u.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENTIFIER, "Expect class name.")
	className := c.previous.Lexeme
	nameConst := c.identifierConstant(className)
	c.declareVariable(className, true)

	c.emitIndexed(CLASS, nameConst)
	c.defineVariable(className, true)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.LESS) {
		c.consume(token.IDENTIFIER, "Expect superclass name.")
		superName := c.previous.Lexeme
		c.variable(false)
		if superName == className {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super", false)
		c.defineVariable("super", false)

		c.namedVariable(className, false)
		c.emitOp(INHERIT)
		cs.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	c.emitOp(POP) // the class value pushed for method binding above

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENTIFIER, "Expect method name.")
	name := c.previous.Lexeme
	nameConst := c.identifierConstant(name)

	ft := typeMethod
	if name == "init" {
		ft = typeInitializer
	}
	c.function(ft, name)
	c.emitIndexed(METHOD, nameConst)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.CASE):
		c.error("'case' outside of switch statement.")
	case c.match(token.DEFAULT):
		c.error("'default' outside of switch statement.")
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(POP)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.statement()

	elseJump := c.emitJump(JUMP)
	c.patchJump(thenJump)
	c.emitOp(POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunkOf().Len()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)

	ls := &loopState{enclosing: c.current.loop, continueTarget: loopStart, localBase: len(c.current.locals)}
	c.current.loop = ls

	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(POP)
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.current.loop = ls.enclosing
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer clause
	case c.match(token.VAR):
		c.varOrConstDeclaration(true)
	default:
		c.expressionStatement()
	}

	loopStart := c.chunkOf().Len()
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(JUMP_IF_FALSE)
		c.emitOp(POP)
	}

	if !c.check(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(JUMP)
		incrementStart := c.chunkOf().Len()
		c.expression()
		c.emitOp(POP)
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")
	}

	ls := &loopState{enclosing: c.current.loop, continueTarget: loopStart, localBase: len(c.current.locals)}
	c.current.loop = ls

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(POP)
	}
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.current.loop = ls.enclosing

	c.endScope()
}

func (c *Compiler) switchStatement() {
	c.consume(token.LEFT_PAREN, "Expect '(' after 'switch'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after switch subject.")
	c.consume(token.LEFT_BRACE, "Expect '{' before switch body.")

	var endJumps []int
	sawDefault := false

	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		switch {
		case c.match(token.CASE):
			c.emitOp(DUP)
			c.expression()
			c.consume(token.COLON, "Expect ':' after case value.")
			c.emitOp(EQUAL)
			nextCase := c.emitJump(JUMP_IF_FALSE)
			c.emitOp(POP)
			for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
				c.statement()
			}
			endJumps = append(endJumps, c.emitJump(JUMP))
			c.patchJump(nextCase)
			c.emitOp(POP)

		case c.match(token.DEFAULT):
			if sawDefault {
				c.error("Switch statement can only have one default case.")
			}
			sawDefault = true
			c.consume(token.COLON, "Expect ':' after 'default'.")
			for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
				c.statement()
			}

		default:
			c.errorAtCurrent("Expect 'case' or 'default'.")
			c.advance()
		}
	}

	c.consume(token.RIGHT_BRACE, "Expect '}' after switch body.")
	for _, j := range endJumps {
		c.patchJump(j)
	}
	c.emitOp(POP) // the duplicated switch subject
}

func (c *Compiler) breakStatement() {
	if c.current.loop == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
		return
	}
	c.emitPopsForLoopExit()
	j := c.emitJump(JUMP)
	c.current.loop.breakJumps = append(c.current.loop.breakJumps, j)
	c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
}

func (c *Compiler) continueStatement() {
	if c.current.loop == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
		return
	}
	c.emitPopsForLoopExit()
	c.emitLoop(c.current.loop.continueTarget)
	c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
}

// emitPopsForLoopExit pops every local declared since the loop's own body
// was entered, so stack depth right after a break/continue jump matches
// the depth at the loop body's entry point (§8 property 6).
func (c *Compiler) emitPopsForLoopExit() {
	fc := c.current
	for i := len(fc.locals) - 1; i >= fc.loop.localBase; i-- {
		if fc.locals[i].captured {
			c.emitOp(CLOSE_UPVALUE)
		} else {
			c.emitOp(POP)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.current.fnType == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.current.fnType == typeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(RETURN)
}
