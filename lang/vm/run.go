package vm

import (
	"fmt"

	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

func (vm *VM) frame() *CallFrame { return &vm.frames[vm.frameCount-1] }

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := f.chunk().Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) read24() int {
	a, b, c := vm.readByte(), vm.readByte(), vm.readByte()
	return int(a)<<16 | int(b)<<8 | int(c)
}

func (vm *VM) read16() int {
	a, b := vm.readByte(), vm.readByte()
	return int(a)<<8 | int(b)
}

// run is the VM's dispatch loop (§4.2): read one opcode byte, switch on it,
// repeat until RETURN unwinds the last frame or a runtime error aborts the
// call. Every opcode in the §6 table has an arm here; long/short pairs are
// written out symmetrically rather than sharing a branch, so the
// "SET_PROPERTY_LONG falls through" ambiguity of §9 can't recur (Go's
// switch doesn't fall through, and each arm ends by continuing the loop).
func (vm *VM) run() Result {
	for {
		op := compiler.Opcode(vm.readByte())
		switch op {
		case compiler.CONSTANT:
			idx := int(vm.readByte())
			vm.push(vm.frame().chunk().Chunk.Constants[idx])
		case compiler.CONSTANT_LONG:
			idx := vm.read24()
			vm.push(vm.frame().chunk().Chunk.Constants[idx])

		case compiler.NIL:
			vm.push(value.Nil())
		case compiler.TRUE:
			vm.push(value.Bool(true))
		case compiler.FALSE:
			vm.push(value.Bool(false))

		case compiler.EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case compiler.GREATER:
			if r := vm.binaryCompare(func(a, b float64) bool { return a > b }); r != OK {
				return r
			}
		case compiler.LESS:
			if r := vm.binaryCompare(func(a, b float64) bool { return a < b }); r != OK {
				return r
			}

		case compiler.ADD:
			if r := vm.add(); r != OK {
				return r
			}
		case compiler.SUBTRACT:
			if r := vm.binaryArith(func(a, b float64) float64 { return a - b }); r != OK {
				return r
			}
		case compiler.MULTIPLY:
			if r := vm.binaryArith(func(a, b float64) float64 { return a * b }); r != OK {
				return r
			}
		case compiler.DIVIDE:
			if r := vm.binaryArith(func(a, b float64) float64 { return a / b }); r != OK {
				return r
			}

		case compiler.NOT:
			vm.push(value.Bool(!vm.pop().Truthy()))
		case compiler.NEGATE:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case compiler.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())
		case compiler.POP:
			vm.pop()
		case compiler.DUP:
			vm.push(vm.peek(0))

		case compiler.DEFINE_GLOBAL:
			slot := int(vm.readByte())
			vm.globals.Set(slot, vm.pop())
		case compiler.DEFINE_GLOBAL_LONG:
			slot := vm.read24()
			vm.globals.Set(slot, vm.pop())

		case compiler.GET_GLOBAL:
			if r := vm.getGlobal(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.GET_GLOBAL_LONG:
			if r := vm.getGlobal(vm.read24()); r != OK {
				return r
			}

		case compiler.SET_GLOBAL:
			if r := vm.setGlobal(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.SET_GLOBAL_LONG:
			if r := vm.setGlobal(vm.read24()); r != OK {
				return r
			}

		case compiler.GET_LOCAL:
			slot := int(vm.readByte())
			vm.push(vm.stack[vm.frame().slots+slot])
		case compiler.SET_LOCAL:
			slot := int(vm.readByte())
			vm.stack[vm.frame().slots+slot] = vm.peek(0)

		case compiler.GET_UPVALUE:
			idx := int(vm.readByte())
			vm.push(vm.frame().closure.Upvalues[idx].Get())
		case compiler.SET_UPVALUE:
			idx := int(vm.readByte())
			vm.frame().closure.Upvalues[idx].Set(vm.peek(0))
		case compiler.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case compiler.JUMP:
			offset := vm.read16()
			vm.frame().ip += offset
		case compiler.JUMP_IF_FALSE:
			offset := vm.read16()
			if !vm.peek(0).Truthy() {
				vm.frame().ip += offset
			}
		case compiler.LOOP:
			offset := vm.read16()
			vm.frame().ip -= offset

		case compiler.CALL:
			argc := int(vm.readByte())
			if !vm.callValue(vm.peek(argc), argc) {
				return RuntimeError
			}

		case compiler.CLOSURE:
			if r := vm.makeClosure(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.CLOSURE_LONG:
			if r := vm.makeClosure(vm.read24()); r != OK {
				return r
			}

		case compiler.CLASS:
			vm.makeClass(int(vm.readByte()))
		case compiler.CLASS_LONG:
			vm.makeClass(vm.read24())

		case compiler.INHERIT:
			if r := vm.inherit(); r != OK {
				return r
			}

		case compiler.METHOD:
			vm.defineMethod(int(vm.readByte()))
		case compiler.METHOD_LONG:
			vm.defineMethod(vm.read24())

		case compiler.GET_PROPERTY:
			if r := vm.getProperty(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.GET_PROPERTY_LONG:
			if r := vm.getProperty(vm.read24()); r != OK {
				return r
			}

		case compiler.SET_PROPERTY:
			if r := vm.setProperty(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.SET_PROPERTY_LONG:
			if r := vm.setProperty(vm.read24()); r != OK {
				return r
			}

		case compiler.GET_SUPER:
			if r := vm.getSuper(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.GET_SUPER_LONG:
			if r := vm.getSuper(vm.read24()); r != OK {
				return r
			}

		case compiler.INVOKE:
			name := vm.constantString(int(vm.readByte()))
			argc := int(vm.readByte())
			if !vm.invoke(name, argc) {
				return RuntimeError
			}
		case compiler.INVOKE_LONG:
			name := vm.constantString(vm.read24())
			argc := int(vm.readByte())
			if !vm.invoke(name, argc) {
				return RuntimeError
			}

		case compiler.SUPER_INVOKE:
			if r := vm.superInvoke(int(vm.readByte())); r != OK {
				return r
			}
		case compiler.SUPER_INVOKE_LONG:
			if r := vm.superInvoke(vm.read24()); r != OK {
				return r
			}

		case compiler.RETURN:
			result := vm.pop()
			vm.closeUpvalues(vm.frame().slots)
			base := vm.frame().slots
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return OK
			}
			vm.stackTop = base
			vm.push(result)

		default:
			return vm.runtimeError("internal error: unknown opcode %d", op)
		}
	}
}

func (vm *VM) constantString(idx int) *object.String {
	return vm.frame().chunk().Chunk.Constants[idx].AsObj().(*object.String)
}

func (vm *VM) binaryArith(op func(a, b float64) float64) Result {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b, a := vm.pop(), vm.pop()
	vm.push(value.Number(op(a.AsNumber(), b.AsNumber())))
	return OK
}

func (vm *VM) binaryCompare(op func(a, b float64) bool) Result {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b, a := vm.pop(), vm.pop()
	vm.push(value.Bool(op(a.AsNumber(), b.AsNumber())))
	return OK
}

// add implements ADD: number+number is arithmetic, string+string
// concatenates, everything else (including string+number — no implicit
// coercion, per §9's clox-grounded resolution) is a runtime type error.
// The operands are only popped once the result exists, so a GC triggered by
// the concatenation allocation still finds them reachable (§4.2 "peek, not
// pop, until the result String has been installed").
func (vm *VM) add() Result {
	a, b := vm.peek(1), vm.peek(0)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return OK
	case isString(a) && isString(b):
		return vm.concatenate(a, b)
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func isString(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	_, ok := v.AsObj().(*object.String)
	return ok
}

func (vm *VM) concatenate(a, b value.Value) Result {
	as := a.AsObj().(*object.String)
	bs := b.AsObj().(*object.String)
	buf := make([]byte, 0, as.Len()+bs.Len())
	buf = append(buf, as.Bytes()...)
	buf = append(buf, bs.Bytes()...)
	result := vm.alloc.NewString(buf)
	vm.pop()
	vm.pop()
	vm.push(value.FromObj(result))
	return OK
}

func (vm *VM) getGlobal(slot int) Result {
	v := vm.globals.Get(slot)
	if v.IsUndefined() {
		name := "?"
		if n, ok := vm.globals.NameOf(slot); ok {
			name = n.String()
		}
		return vm.runtimeError("Undefined variable '%s'.", name)
	}
	vm.push(v)
	return OK
}

func (vm *VM) setGlobal(slot int) Result {
	if vm.globals.Get(slot).IsUndefined() {
		name := "?"
		if n, ok := vm.globals.NameOf(slot); ok {
			name = n.String()
		}
		return vm.runtimeError("Undefined variable '%s'.", name)
	}
	vm.globals.Set(slot, vm.peek(0))
	return OK
}

// makeClosure implements CLOSURE/CLOSURE_LONG: allocate a Closure over the
// Function at constants[idx], then read function.UpvalueCount (isLocal,
// index) pairs to populate its Upvalues, capturing enclosing locals or
// chaining through the current frame's own upvalues (§4.1, §4.2).
func (vm *VM) makeClosure(idx int) Result {
	fn := vm.frame().chunk().Chunk.Constants[idx].AsObj().(*object.Function)
	upvalues := make([]*object.Upvalue, fn.UpvalueCount)
	for i := range upvalues {
		isLocal := vm.readByte()
		index := int(vm.readByte())
		if isLocal != 0 {
			upvalues[i] = vm.captureUpvalue(vm.frame().slots + index)
		} else {
			upvalues[i] = vm.frame().closure.Upvalues[index]
		}
	}
	closure := vm.alloc.NewClosure(fn, upvalues)
	vm.push(value.FromObj(closure))
	return OK
}

func (vm *VM) makeClass(idx int) {
	name := vm.constantString(idx)
	class := vm.alloc.NewClass(name)
	vm.push(value.FromObj(class))
}

// inherit implements INHERIT: copy the superclass's method table wholesale
// into the subclass's (§4.1 Class doc comment — no runtime superclass
// chain is walked at call time).
func (vm *VM) inherit() Result {
	superVal := vm.peek(1)
	superclass, ok := asClass(superVal)
	if !ok {
		return vm.runtimeError("Superclass must be a class.")
	}
	subclass := vm.peek(0).AsObj().(*object.Class)
	subclass.Methods.AddAllFrom(superclass.Methods)
	vm.pop() // the subclass, leaving the superclass on the stack as the `super` local
	return OK
}

func asClass(v value.Value) (*object.Class, bool) {
	if !v.IsObj() {
		return nil, false
	}
	c, ok := v.AsObj().(*object.Class)
	return c, ok
}

func (vm *VM) defineMethod(idx int) {
	name := vm.constantString(idx)
	method := vm.pop()
	class := vm.peek(0).AsObj().(*object.Class)
	class.Methods.Set(name, method)
}

func (vm *VM) getProperty(idx int) Result {
	receiver := vm.peek(0)
	if !receiver.IsObj() {
		return vm.runtimeError("Only instances have properties.")
	}
	instance, ok := receiver.AsObj().(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}
	name := vm.constantString(idx)

	if fieldVal, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(fieldVal)
		return OK
	}
	if !vm.bindMethod(instance.Class, name) {
		return RuntimeError
	}
	return OK
}

func (vm *VM) setProperty(idx int) Result {
	target := vm.peek(1)
	if !target.IsObj() {
		return vm.runtimeError("Only instances have fields.")
	}
	instance, ok := target.AsObj().(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	name := vm.constantString(idx)
	val := vm.pop()
	instance.Fields.Set(name, val)
	vm.pop() // the instance
	vm.push(val)
	return OK
}

// getSuper implements GET_SUPER/GET_SUPER_LONG: `this` is already on the
// stack below the superclass pushed by namedVariable("super", ...), and
// bindMethod resolves name against the superclass's table, bypassing the
// subclass's own overriding methods (§9 resolution).
func (vm *VM) getSuper(idx int) Result {
	name := vm.constantString(idx)
	superclass := vm.pop().AsObj().(*object.Class)
	if !vm.bindMethod(superclass, name) {
		return RuntimeError
	}
	return OK
}

func (vm *VM) superInvoke(idx int) Result {
	name := vm.constantString(idx)
	argc := int(vm.readByte())
	superclass := vm.pop().AsObj().(*object.Class)
	if !vm.invokeFromClass(superclass, name, argc) {
		return RuntimeError
	}
	return OK
}
