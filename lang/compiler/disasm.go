package compiler

import (
	"fmt"
	"strings"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/object"
)

// Disassemble renders every instruction in ch as human-readable text, one
// line per instruction, prefixed with name once. It never panics on
// malformed bytecode; a truncated operand is reported in place rather than
// indexed out of range, since this is also used to sanity-check freshly
// compiled chunks (§8 invariant 1).
func Disassemble(ch *chunk.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(ch.Code); {
		offset = disassembleInstruction(&b, ch, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, ch *chunk.Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	line := ch.GetLine(offset)
	if offset > 0 && line == ch.GetLine(offset-1) {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", line)
	}

	op := Opcode(ch.Code[offset])
	switch op {
	case NIL, TRUE, FALSE, EQUAL, GREATER, LESS, ADD, SUBTRACT, MULTIPLY, DIVIDE,
		NOT, NEGATE, PRINT, POP, DUP, CLOSE_UPVALUE, INHERIT, RETURN:
		return simpleInstruction(b, op, offset)

	case CONSTANT, DEFINE_GLOBAL, GET_GLOBAL, SET_GLOBAL, CLASS, METHOD,
		GET_PROPERTY, SET_PROPERTY, GET_SUPER:
		return shortIndexedInstruction(b, ch, op, offset, true)

	case CONSTANT_LONG, DEFINE_GLOBAL_LONG, GET_GLOBAL_LONG, SET_GLOBAL_LONG,
		CLASS_LONG, METHOD_LONG, GET_PROPERTY_LONG, SET_PROPERTY_LONG, GET_SUPER_LONG:
		return longIndexedInstruction(b, ch, op, offset, true)

	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, CALL:
		return byteOperandInstruction(b, op, ch, offset)

	case JUMP, JUMP_IF_FALSE:
		return jumpInstruction(b, op, 1, ch, offset)
	case LOOP:
		return jumpInstruction(b, op, -1, ch, offset)

	case INVOKE, SUPER_INVOKE:
		return invokeInstruction(b, ch, op, offset, true)
	case INVOKE_LONG, SUPER_INVOKE_LONG:
		return invokeInstruction(b, ch, op, offset, false)

	case CLOSURE, CLOSURE_LONG:
		return closureInstruction(b, ch, op, offset)

	default:
		fmt.Fprintf(b, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(b *strings.Builder, op Opcode, offset int) int {
	fmt.Fprintf(b, "%s\n", op)
	return offset + 1
}

func byteOperandInstruction(b *strings.Builder, op Opcode, ch *chunk.Chunk, offset int) int {
	if offset+1 >= len(ch.Code) {
		fmt.Fprintf(b, "%-16s <truncated>\n", op)
		return offset + 1
	}
	slot := ch.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func shortIndexedInstruction(b *strings.Builder, ch *chunk.Chunk, op Opcode, offset int, withConstant bool) int {
	if offset+1 >= len(ch.Code) {
		fmt.Fprintf(b, "%-16s <truncated>\n", op)
		return offset + 1
	}
	idx := int(ch.Code[offset+1])
	fmt.Fprintf(b, "%-16s %4d %s\n", op, idx, constantRepr(ch, idx))
	return offset + 2
}

func longIndexedInstruction(b *strings.Builder, ch *chunk.Chunk, op Opcode, offset int, withConstant bool) int {
	if offset+3 >= len(ch.Code) {
		fmt.Fprintf(b, "%-16s <truncated>\n", op)
		return offset + 1
	}
	idx := int(ch.Code[offset+1])<<16 | int(ch.Code[offset+2])<<8 | int(ch.Code[offset+3])
	fmt.Fprintf(b, "%-16s %4d %s\n", op, idx, constantRepr(ch, idx))
	return offset + 4
}

func invokeInstruction(b *strings.Builder, ch *chunk.Chunk, op Opcode, offset int, short bool) int {
	var idx, argc, next int
	if short {
		if offset+2 >= len(ch.Code) {
			fmt.Fprintf(b, "%-16s <truncated>\n", op)
			return offset + 1
		}
		idx = int(ch.Code[offset+1])
		argc = int(ch.Code[offset+2])
		next = offset + 3
	} else {
		if offset+4 >= len(ch.Code) {
			fmt.Fprintf(b, "%-16s <truncated>\n", op)
			return offset + 1
		}
		idx = int(ch.Code[offset+1])<<16 | int(ch.Code[offset+2])<<8 | int(ch.Code[offset+3])
		argc = int(ch.Code[offset+4])
		next = offset + 5
	}
	fmt.Fprintf(b, "%-16s (%d args) %4d %s\n", op, argc, idx, constantRepr(ch, idx))
	return next
}

func closureInstruction(b *strings.Builder, ch *chunk.Chunk, op Opcode, offset int) int {
	var idx, next int
	if op == CLOSURE {
		if offset+1 >= len(ch.Code) {
			fmt.Fprintf(b, "%-16s <truncated>\n", op)
			return offset + 1
		}
		idx = int(ch.Code[offset+1])
		next = offset + 2
	} else {
		if offset+3 >= len(ch.Code) {
			fmt.Fprintf(b, "%-16s <truncated>\n", op)
			return offset + 1
		}
		idx = int(ch.Code[offset+1])<<16 | int(ch.Code[offset+2])<<8 | int(ch.Code[offset+3])
		next = offset + 4
	}
	fmt.Fprintf(b, "%-16s %4d %s\n", op, idx, constantRepr(ch, idx))

	upvalueCount := 0
	if idx < len(ch.Constants) && ch.Constants[idx].IsObj() {
		if fn, ok := ch.Constants[idx].AsObj().(*object.Function); ok {
			upvalueCount = fn.UpvalueCount
		}
	}
	for i := 0; i < upvalueCount && next+1 < len(ch.Code); i++ {
		isLocal := ch.Code[next]
		index := ch.Code[next+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(b, "%04d      |                     %s %d\n", next, kind, index)
		next += 2
	}
	return next
}

func jumpInstruction(b *strings.Builder, op Opcode, sign int, ch *chunk.Chunk, offset int) int {
	if offset+2 >= len(ch.Code) {
		fmt.Fprintf(b, "%-16s <truncated>\n", op)
		return offset + 1
	}
	dist := int(ch.Code[offset+1])<<8 | int(ch.Code[offset+2])
	target := offset + 3 + sign*dist
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func constantRepr(ch *chunk.Chunk, idx int) string {
	if idx < 0 || idx >= len(ch.Constants) {
		return "<out of range>"
	}
	return fmt.Sprintf("'%s'", ch.Constants[idx].String())
}
