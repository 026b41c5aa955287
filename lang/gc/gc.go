// Package gc implements the precise, non-moving, tri-color mark–sweep
// collector shared by the compiler and the virtual machine. Every heap
// object allocated by ember (strings, functions, closures, upvalues,
// classes, instances, bound methods) is routed through a Heap so that a
// collection can run at any allocation safepoint without losing track of
// objects that are only reachable through a local variable somewhere on the
// Go call stack.
//
// Objects participate in the collector by embedding a Header and
// implementing the Obj interface's Trace method, which reports the other
// Values an object keeps alive. gc itself never imports the object package:
// it knows nothing about strings or closures, only about headers and the
// generic ability to trace a graph of them.
package gc

import "fmt"

// Kind identifies the concrete type of a heap object, stored in its Header
// so the collector and diagnostics can tell objects apart without a type
// switch on the Go type itself.
type Kind uint8

const (
	KindString Kind = iota
	KindFunction
	KindNative
	KindUpvalue
	KindClosure
	KindClass
	KindInstance
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	case KindUpvalue:
		return "upvalue"
	case KindClosure:
		return "closure"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	default:
		return fmt.Sprintf("<invalid kind %d>", uint8(k))
	}
}

// Header is the common prefix every heap object embeds. next threads the
// object onto the Heap's intrusive all-objects list so sweep can enumerate
// every live-or-dead allocation without a second index.
type Header struct {
	kind   Kind
	marked bool
	next   Obj
}

// Init sets the header's kind. Every constructor in the object package must
// call this before the object is reachable from anything else.
func (h *Header) Init(k Kind) { h.kind = k }

// Kind reports the object's concrete kind.
func (h *Header) Kind() Kind { return h.kind }

// Marked reports whether the object survived the most recent mark phase.
// Valid only between markRoots/trace and the final sweep; used by weak
// tables (the string interning set) to decide what to drop.
func (h *Header) Marked() bool { return h.marked }

// Obj is implemented by every heap-allocated type. Header returns the
// object's own embedded Header (so the collector can read/write the mark
// bit and list linkage without knowing the concrete type), and Trace calls
// mark on every Obj this object directly references, if any.
type Obj interface {
	Header() *Header
	Trace(mark func(Obj))
	// Size is a rough byte estimate used to drive the bytesAllocated/nextGC
	// heuristic; it need not be exact.
	Size() uintptr
	// Free releases any non-Go-GC-managed resources held by the object. Most
	// objects have nothing to do here since Go's allocator owns the memory;
	// it exists so the sweep phase has a place to call, matching the
	// type-specific destructors of §4.3.
	Free()
}

// RootSource is implemented by anything that can enumerate and mark its own
// GC roots: the VM (value stack, call frames, open upvalues), the globals
// table (names and values) and the compiler (the chain of in-progress
// FunctionCompiler frames). Interned strings are not roots; the intern table
// is swept as a WeakTable. All are registered with a Heap so that a
// collection triggered mid-compile or mid-run marks every live reference.
type RootSource interface {
	MarkRoots(mark func(Obj))
}

// WeakTable is implemented by the string interning table so the collector
// can perform the weak-reference sweep described in §4.3 step 3: any intern
// entry whose key didn't survive the mark phase must be deleted, or the
// table would keep resurrecting garbage strings forever.
type WeakTable interface {
	DeleteUnmarked()
}

const heapGrowFactor = 2

// Heap owns every object ember allocates, the byte-accounting that decides
// when to collect, and the root sources consulted on each collection.
type Heap struct {
	objects Obj // head of the intrusive all-objects list

	bytesAllocated uintptr
	nextGC         uintptr

	// StressGC forces a collection on every allocation. Intended for tests
	// that want to flush out missing roots.
	StressGC bool
	// LogGC, when set, receives a line of text before and after each
	// collection. Set from vm.Options.LogGC; the ember CLI never sets it, so
	// it is nil in normal operation.
	LogGC func(string)

	roots []RootSource
	weak  []WeakTable

	gray []Obj // the "gray stack" worklist for tracing

	// protected holds objects that must survive until Unprotect is called,
	// even though they aren't yet reachable from any of roots. This is how
	// the compiler and VM satisfy the "push before the next allocation"
	// discipline of §4.3 without literally sharing an operand stack: an
	// object under construction (e.g. the buffer of a concatenation result)
	// is Protect()ed for the duration of the allocations that follow it.
	protected []Obj
}

const initialNextGC = 1 << 20 // 1 MiB, matches clox's default order of magnitude

// NewHeap returns an empty heap ready to register roots and allocate.
func NewHeap() *Heap {
	return &Heap{nextGC: initialNextGC}
}

// AddRoot registers a root source. Both the VM and the compiler's current
// FunctionCompiler chain register themselves (directly or through a small
// adapter) so that MarkRoots walks every live structure during a
// collection.
func (h *Heap) AddRoot(r RootSource) { h.roots = append(h.roots, r) }

// RemoveRoot unregisters a previously added root source (used when a
// compile finishes and its FunctionCompiler chain goes out of scope).
func (h *Heap) RemoveRoot(r RootSource) {
	for i, existing := range h.roots {
		if existing == r {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// AddWeakTable registers a table whose entries must be swept for unmarked
// keys after every mark phase (the string interning set).
func (h *Heap) AddWeakTable(w WeakTable) { h.weak = append(h.weak, w) }

// Protect keeps obj alive across the next allocations until Unprotect pops
// it, even though it may not be reachable from any registered root yet.
func (h *Heap) Protect(obj Obj) {
	if obj != nil {
		h.protected = append(h.protected, obj)
	}
}

// Unprotect releases the most recently Protect()ed object.
func (h *Heap) Unprotect() {
	if n := len(h.protected); n > 0 {
		h.protected = h.protected[:n-1]
	}
}

// Register links a freshly constructed object onto the all-objects list and
// accounts for its size, possibly triggering a collection first if the new
// total would reach or exceed the threshold (or StressGC is set). It returns
// nothing; constructors register and then return the object themselves:
//
//	obj := &String{...}
//	heap.Register(obj)
//	return obj
func (h *Heap) Register(obj Obj) {
	size := obj.Size()
	if h.StressGC || h.bytesAllocated+size >= h.nextGC {
		h.Collect()
	}
	obj.Header().next = h.objects
	h.objects = obj
	h.bytesAllocated += size
}

// Collect runs one full mark–sweep cycle: mark roots, trace the gray stack
// to blacken everything reachable, sweep the weak interning table, then
// sweep the all-objects list, freeing anything left unmarked.
func (h *Heap) Collect() {
	if h.LogGC != nil {
		h.LogGC(fmt.Sprintf("-- gc begin (bytes=%d, next=%d)", h.bytesAllocated, h.nextGC))
	}

	h.markRoots()
	h.trace()
	h.sweepWeakTables()
	freed := h.sweep()

	h.nextGC = h.bytesAllocated * heapGrowFactor
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}

	if h.LogGC != nil {
		h.LogGC(fmt.Sprintf("-- gc end (freed=%d, bytes=%d, next=%d)", freed, h.bytesAllocated, h.nextGC))
	}
}

func (h *Heap) markRoots() {
	for _, r := range h.roots {
		r.MarkRoots(h.mark)
	}
	for _, obj := range h.protected {
		h.mark(obj)
	}
}

// mark is the markObject primitive of §4.3: set the mark bit and push the
// object onto the gray worklist, unless it's already marked (or nil).
func (h *Heap) mark(obj Obj) {
	if obj == nil {
		return
	}
	hdr := obj.Header()
	if hdr.marked {
		return
	}
	hdr.marked = true
	h.gray = append(h.gray, obj)
}

// trace pops objects off the gray stack and blackens them by asking each to
// report its own outgoing references.
func (h *Heap) trace() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		obj.Trace(h.mark)
	}
}

func (h *Heap) sweepWeakTables() {
	for _, w := range h.weak {
		w.DeleteUnmarked()
	}
}

// sweep walks the all-objects list with a trailing pointer, clearing mark
// bits on survivors and unlinking+freeing the rest. It returns the number
// of bytes freed.
func (h *Heap) sweep() uintptr {
	var freed uintptr
	var prev Obj
	obj := h.objects
	for obj != nil {
		hdr := obj.Header()
		if hdr.marked {
			hdr.marked = false
			prev = obj
			obj = hdr.next
			continue
		}

		unreached := obj
		obj = hdr.next
		if prev != nil {
			prev.Header().next = obj
		} else {
			h.objects = obj
		}

		freed += unreached.Size()
		h.bytesAllocated -= unreached.Size()
		unreached.Free()
	}
	return freed
}

// BytesAllocated reports the collector's current byte-accounting total, for
// tests that assert a collection actually reclaimed memory.
func (h *Heap) BytesAllocated() uintptr { return h.bytesAllocated }

// Live walks the all-objects list and returns how many objects are
// currently tracked, live or not yet swept. Intended for tests (property 4
// of §8: reachable-before == live-after a collection).
func (h *Heap) Live() int {
	n := 0
	for obj := h.objects; obj != nil; obj = obj.Header().next {
		n++
	}
	return n
}
