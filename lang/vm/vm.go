// Package vm implements ember's stack-based virtual machine (§4.2): a
// call-frame oriented bytecode dispatcher with closure objects, open/closed
// upvalue management, and class/instance/method dispatch. The dispatch
// loop runs over one contiguous value stack sliced per call frame, sized
// once at startup and never reallocated, so raw Upvalue pointers into it
// stay valid across calls for the VM's lifetime.
package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// Options configures one VM's tunables, exposed as plain fields so the CLI
// layer can wire them to flags via mna/mainer's `flag:"..."` struct tags
// without this package knowing anything about flag parsing.
type Options struct {
	// StackSize is the number of value.Value slots in the VM's operand
	// stack. Defaults to FrameCap*256 (64*256 = 16384 with the default
	// FrameCap), matching §4.2's example sizing.
	StackSize int
	// FrameCap is the maximum call-frame nesting depth before a runtime
	// "Stack overflow." error (§4.2, §7). Defaults to 64.
	FrameCap int
	// StressGC forces a collection on every allocation; for tests that want
	// to flush out missing GC roots (§4.3).
	StressGC bool
	// LogGC, when non-nil, receives one line of text before and after every
	// collection.
	LogGC func(string)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *Options) setDefaults() {
	if o.FrameCap == 0 {
		o.FrameCap = 64
	}
	if o.StackSize == 0 {
		o.StackSize = o.FrameCap * 256
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// VM is the execution state of §4.2: the value stack, the call-frame stack,
// the open-upvalue list, and the shared globals/allocator/heap also used by
// the compiler across a REPL session's successive Compile calls.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	stdin  *bufio.Reader

	stack    []value.Value
	stackTop int

	frames     []CallFrame
	frameCount int

	openUpvalues *object.Upvalue

	globals *object.Globals
	alloc   *object.Allocator
	heap    *gc.Heap

	// initString caches the interned "init" string used to look up a
	// class's initializer on every construction, avoiding a fresh intern
	// lookup per call.
	initString *object.String
}

var _ gc.RootSource = (*VM)(nil)

// New builds a VM ready to Interpret source. Natives (clock, sqrt,
// inputLine) are installed as globals immediately (§6).
func New(opts Options) *VM {
	opts.setDefaults()

	heap := gc.NewHeap()
	heap.StressGC = opts.StressGC
	heap.LogGC = opts.LogGC

	vm := &VM{
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
		Stdin:   opts.Stdin,
		stack:   make([]value.Value, opts.StackSize),
		frames:  make([]CallFrame, opts.FrameCap),
		globals: object.NewGlobals(),
		heap:    heap,
	}
	vm.alloc = object.NewAllocator(heap)
	heap.AddRoot(vm)
	heap.AddRoot(vm.globals)

	vm.defineNatives()
	return vm
}

// MarkRoots implements gc.RootSource (§4.3 step 1): every live value on the
// operand stack, every closure referenced by a call frame, every open
// upvalue, and the cached "init" string (so it stays the interned one).
func (vm *VM) MarkRoots(mark func(gc.Obj)) {
	if vm.initString != nil {
		mark(vm.initString)
	}
	for i := 0; i < vm.stackTop; i++ {
		if vm.stack[i].IsObj() {
			mark(vm.stack[i].AsObj())
		}
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.Next {
		mark(u)
	}
}

// Interpret compiles source and, on success, runs it (§4.2 contract).
func (vm *VM) Interpret(source []byte) Result {
	fn, err := compiler.Compile(source, vm.alloc, vm.globals)
	if err != nil {
		msgs := []string{err.Error()}
		if list, ok := err.(compiler.ErrorList); ok {
			msgs = msgs[:0]
			for _, e := range list {
				msgs = append(msgs, e.Error())
			}
		}
		for _, msg := range msgs {
			for _, line := range splitLines(msg) {
				if line != "" {
					io.WriteString(vm.Stderr, line+"\n")
				}
			}
		}
		return CompileError
	}

	vm.heap.Protect(fn)
	closure := vm.alloc.NewClosure(fn, make([]*object.Upvalue, fn.UpvalueCount))
	vm.heap.Unprotect()

	vm.push(value.FromObj(closure))
	if !vm.call(closure, 0) {
		return RuntimeError
	}
	return vm.run()
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// ---- operand stack ----

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}
