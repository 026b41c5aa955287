package vm

import "github.com/emberlang/ember/lang/object"

// CallFrame is one activation record on the VM's call stack (§4.2): the
// Closure being executed, its instruction pointer into that closure's
// function's Chunk, and the base index into the VM's value stack where its
// locals (and the callee itself, at slot 0) begin.
//
// slots is an index rather than a raw pointer into the stack: the stack is
// preallocated once at VM construction and never reallocated (see
// vm.go), so an index is exactly as stable as a pointer would be here and
// reads more naturally against Go slices.
type CallFrame struct {
	closure *object.Closure
	ip      int
	slots   int
}

func (f *CallFrame) chunk() *object.Function { return f.closure.Function }
