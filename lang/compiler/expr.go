package compiler

import (
	"strconv"

	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	lexeme := c.previous.Lexeme
	raw := lexeme[1 : len(lexeme)-1] // strip the surrounding quotes
	s := c.alloc.NewString([]byte(raw))
	c.heap.Protect(s)
	c.emitConstant(value.FromObj(s))
	c.heap.Unprotect()
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(FALSE)
	case token.TRUE:
		c.emitOp(TRUE)
	case token.NIL:
		c.emitOp(NIL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opType {
	case token.MINUS:
		c.emitOp(NEGATE)
	case token.BANG:
		c.emitOp(NOT)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Kind
	rule := ruleFor(opType)
	c.parsePrecedence(rule.precedence + 1)
	switch opType {
	case token.PLUS:
		c.emitOp(ADD)
	case token.MINUS:
		c.emitOp(SUBTRACT)
	case token.STAR:
		c.emitOp(MULTIPLY)
	case token.SLASH:
		c.emitOp(DIVIDE)
	case token.BANG_EQUAL:
		c.emitOp(EQUAL)
		c.emitOp(NOT)
	case token.EQUAL_EQUAL:
		c.emitOp(EQUAL)
	case token.GREATER:
		c.emitOp(GREATER)
	case token.GREATER_EQUAL:
		c.emitOp(LESS)
		c.emitOp(NOT)
	case token.LESS:
		c.emitOp(LESS)
	case token.LESS_EQUAL:
		c.emitOp(GREATER)
		c.emitOp(NOT)
	}
}

// ternary compiles `cond ? then : else`, right-associative, as two
// conditional branches (§4.1). c.previous is the '?' token when this runs.
func (c *Compiler) ternary(canAssign bool) {
	thenJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.parsePrecedence(precAssignment)

	elseJump := c.emitJump(JUMP)
	c.patchJump(thenJump)
	c.emitOp(POP)

	c.consume(token.COLON, "Expect ':' after then branch of ternary expression.")
	c.parsePrecedence(precAssignment)
	c.patchJump(elseJump)
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(JUMP_IF_FALSE)
	endJump := c.emitJump(JUMP)
	c.patchJump(elseJump)
	c.emitOp(POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp Opcode
	var arg int
	var mutable bool

	if slot, mut, ok := c.resolveLocal(c.current, name); ok {
		arg, mutable = slot, mut
		getOp, setOp = GET_LOCAL, SET_LOCAL
	} else if idx, mut, ok := c.resolveUpvalue(c.current, name); ok {
		arg, mutable = idx, mut
		getOp, setOp = GET_UPVALUE, SET_UPVALUE
	} else {
		slot, _ := c.globals.Slot(c.internName(name))
		arg = slot
		mutable = !c.globals.IsConst(slot)
		getOp, setOp = GET_GLOBAL, SET_GLOBAL
	}

	if canAssign && c.match(token.EQUAL) {
		if !mutable {
			c.error("Cannot assign to a constant.")
		}
		c.expression()
		c.emitIndexed(setOp, arg)
		return
	}
	c.emitIndexed(getOp, arg)
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return argc
}

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(CALL, byte(argc))
}

// identifierConstant adds name's interned String to the current chunk's
// constant pool, for opcodes that name a property/method rather than a
// local/upvalue/global slot.
func (c *Compiler) identifierConstant(name string) int {
	s := c.alloc.NewString([]byte(name))
	c.heap.Protect(s)
	idx := c.chunkOf().AddConstant(value.FromObj(s))
	c.heap.Unprotect()
	return idx
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENTIFIER, "Expect property name after '.'.")
	nameConst := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitIndexed(SET_PROPERTY, nameConst)
	case c.match(token.LEFT_PAREN):
		argc := c.argumentList()
		c.emitIndexed(INVOKE, nameConst)
		c.emit(byte(argc))
	default:
		c.emitIndexed(GET_PROPERTY, nameConst)
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable("this", false)
}

func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENTIFIER, "Expect superclass method name.")
	nameConst := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LEFT_PAREN) {
		argc := c.argumentList()
		c.namedVariable("super", false)
		c.emitIndexed(SUPER_INVOKE, nameConst)
		c.emit(byte(argc))
	} else {
		c.namedVariable("super", false)
		c.emitIndexed(GET_SUPER, nameConst)
	}
}
