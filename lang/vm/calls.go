package vm

import "github.com/emberlang/ember/lang/object"
import "github.com/emberlang/ember/lang/value"

// callValue implements the Call protocol table of §4.2: dispatch on the
// callee's kind and push a new frame (for a Closure), invoke directly (for
// a Native), construct-and-maybe-init (for a Class), or rebind the
// receiver (for a BoundMethod). Returns false if a runtime error was
// raised (the caller should unwind out of run()).
func (vm *VM) callValue(callee value.Value, argc int) bool {
	if !callee.IsObj() {
		vm.runtimeError("Can only call functions and classes.")
		return false
	}

	switch obj := callee.AsObj().(type) {
	case *object.Closure:
		return vm.call(obj, argc)

	case *object.Native:
		if argc != obj.Arity {
			vm.runtimeError("Expected %d arguments but got %d.", obj.Arity, argc)
			return false
		}
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := obj.Fn(args)
		if err != nil {
			vm.runtimeError("%s", err.Error())
			return false
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return true

	case *object.Class:
		instance := vm.alloc.NewInstance(obj)
		vm.stack[vm.stackTop-argc-1] = value.FromObj(instance)
		if initVal, ok := obj.Methods.Get(vm.internInit()); ok {
			return vm.call(initVal.AsObj().(*object.Closure), argc)
		}
		if argc != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argc)
			return false
		}
		return true

	case *object.BoundMethod:
		vm.stack[vm.stackTop-argc-1] = obj.Receiver
		return vm.call(obj.Method, argc)

	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

// call pushes a new CallFrame for closure, having already verified (or
// about to verify) that the stack has argc arguments above the callee
// slot.
func (vm *VM) call(closure *object.Closure, argc int) bool {
	if argc != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
		return false
	}
	if vm.frameCount == len(vm.frames) {
		vm.runtimeError("Stack overflow.")
		return false
	}

	vm.frames[vm.frameCount] = CallFrame{
		closure: closure,
		ip:      0,
		slots:   vm.stackTop - argc - 1,
	}
	vm.frameCount++
	return true
}

// internInit returns the interned "init" string used to look up a class's
// initializer; computed once per VM since the allocator itself interns the
// bytes on first call.
func (vm *VM) internInit() *object.String {
	if vm.initString == nil {
		vm.initString = vm.alloc.NewString([]byte("init"))
	}
	return vm.initString
}

// bindMethod looks up name in class's method table and, if found, replaces
// the top-of-stack instance with a BoundMethod wrapping it (§4.2
// GET_PROPERTY falling through to the class). Returns false (having
// already raised a runtime error) if no such method exists.
func (vm *VM) bindMethod(class *object.Class, name *object.String) bool {
	methodVal, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.String())
		return false
	}
	bound := vm.alloc.NewBoundMethod(vm.peek(0), methodVal.AsObj().(*object.Closure))
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

// invokeFromClass is the shared tail of INVOKE and SUPER_INVOKE: look up
// name on class's method table and call it directly against the receiver
// already on the stack, without materializing an intermediate BoundMethod
// (§9 resolution: INVOKE/SUPER_INVOKE are fused get-property-then-call fast
// paths).
func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argc int) bool {
	methodVal, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.String())
		return false
	}
	return vm.call(methodVal.AsObj().(*object.Closure), argc)
}

// invoke implements INVOKE/INVOKE_LONG: the receiver (an Instance) might
// have a field by this name (a stored closure value, callable like any
// other), which takes priority over a method of the same name, matching
// clox's invoke().
func (vm *VM) invoke(name *object.String, argc int) bool {
	receiver := vm.peek(argc)
	if !receiver.IsObj() {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	instance, ok := receiver.AsObj().(*object.Instance)
	if !ok {
		vm.runtimeError("Only instances have methods.")
		return false
	}

	if fieldVal, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = fieldVal
		return vm.callValue(fieldVal, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}
