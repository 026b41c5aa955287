package compiler

import "fmt"

// Opcode is a single bytecode instruction, per the table in §6. Opcodes
// whose operand is a pool/identifier index come in a short (1-byte operand)
// and a _LONG (3-byte, big-endian) form; the compiler picks whichever form
// fits (emitConstant et al.) and the VM dispatch switch handles both.
type Opcode uint8

const (
	CONSTANT Opcode = iota
	CONSTANT_LONG

	NIL
	TRUE
	FALSE

	EQUAL
	GREATER
	LESS

	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE

	NOT
	NEGATE

	PRINT
	POP
	DUP

	DEFINE_GLOBAL
	DEFINE_GLOBAL_LONG
	GET_GLOBAL
	GET_GLOBAL_LONG
	SET_GLOBAL
	SET_GLOBAL_LONG

	GET_LOCAL
	SET_LOCAL

	GET_UPVALUE
	SET_UPVALUE
	CLOSE_UPVALUE

	JUMP
	JUMP_IF_FALSE
	LOOP

	CALL

	CLOSURE
	CLOSURE_LONG

	CLASS
	CLASS_LONG
	INHERIT
	METHOD
	METHOD_LONG

	GET_PROPERTY
	GET_PROPERTY_LONG
	SET_PROPERTY
	SET_PROPERTY_LONG

	GET_SUPER
	GET_SUPER_LONG
	SUPER_INVOKE
	SUPER_INVOKE_LONG
	INVOKE
	INVOKE_LONG

	RETURN
)

var opcodeNames = [...]string{
	CONSTANT:           "CONSTANT",
	CONSTANT_LONG:      "CONSTANT_LONG",
	NIL:                "NIL",
	TRUE:               "TRUE",
	FALSE:              "FALSE",
	EQUAL:              "EQUAL",
	GREATER:            "GREATER",
	LESS:               "LESS",
	ADD:                "ADD",
	SUBTRACT:           "SUBTRACT",
	MULTIPLY:           "MULTIPLY",
	DIVIDE:             "DIVIDE",
	NOT:                "NOT",
	NEGATE:             "NEGATE",
	PRINT:              "PRINT",
	POP:                "POP",
	DUP:                "DUP",
	DEFINE_GLOBAL:      "DEFINE_GLOBAL",
	DEFINE_GLOBAL_LONG: "DEFINE_GLOBAL_LONG",
	GET_GLOBAL:         "GET_GLOBAL",
	GET_GLOBAL_LONG:    "GET_GLOBAL_LONG",
	SET_GLOBAL:         "SET_GLOBAL",
	SET_GLOBAL_LONG:    "SET_GLOBAL_LONG",
	GET_LOCAL:          "GET_LOCAL",
	SET_LOCAL:          "SET_LOCAL",
	GET_UPVALUE:        "GET_UPVALUE",
	SET_UPVALUE:        "SET_UPVALUE",
	CLOSE_UPVALUE:      "CLOSE_UPVALUE",
	JUMP:               "JUMP",
	JUMP_IF_FALSE:      "JUMP_IF_FALSE",
	LOOP:               "LOOP",
	CALL:               "CALL",
	CLOSURE:            "CLOSURE",
	CLOSURE_LONG:       "CLOSURE_LONG",
	CLASS:              "CLASS",
	CLASS_LONG:         "CLASS_LONG",
	INHERIT:            "INHERIT",
	METHOD:             "METHOD",
	METHOD_LONG:        "METHOD_LONG",
	GET_PROPERTY:       "GET_PROPERTY",
	GET_PROPERTY_LONG:  "GET_PROPERTY_LONG",
	SET_PROPERTY:       "SET_PROPERTY",
	SET_PROPERTY_LONG:  "SET_PROPERTY_LONG",
	GET_SUPER:          "GET_SUPER",
	GET_SUPER_LONG:     "GET_SUPER_LONG",
	SUPER_INVOKE:       "SUPER_INVOKE",
	SUPER_INVOKE_LONG:  "SUPER_INVOKE_LONG",
	INVOKE:             "INVOKE",
	INVOKE_LONG:        "INVOKE_LONG",
	RETURN:             "RETURN",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", uint8(op))
}

// LongVariant reports the _LONG form of a short-operand opcode that carries
// a pool/identifier index, and whether op is such an opcode at all.
func LongVariant(op Opcode) (Opcode, bool) {
	switch op {
	case CONSTANT:
		return CONSTANT_LONG, true
	case DEFINE_GLOBAL:
		return DEFINE_GLOBAL_LONG, true
	case GET_GLOBAL:
		return GET_GLOBAL_LONG, true
	case SET_GLOBAL:
		return SET_GLOBAL_LONG, true
	case CLOSURE:
		return CLOSURE_LONG, true
	case CLASS:
		return CLASS_LONG, true
	case METHOD:
		return METHOD_LONG, true
	case GET_PROPERTY:
		return GET_PROPERTY_LONG, true
	case SET_PROPERTY:
		return SET_PROPERTY_LONG, true
	case GET_SUPER:
		return GET_SUPER_LONG, true
	case SUPER_INVOKE:
		return SUPER_INVOKE_LONG, true
	case INVOKE:
		return INVOKE_LONG, true
	default:
		return op, false
	}
}
