// Package object implements ember's heap-allocated types: the values that
// live behind value.Value's KindObj case. Every type here embeds a
// gc.Header and implements gc.Obj, so it can be registered with a gc.Heap
// and participate in mark-sweep collection.
package object

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

// Allocator is the single point through which the compiler and VM create
// heap objects. It owns the interning table (so the compiler and VM, which
// run as decoupled phases, still share one intern set) and the gc.Heap
// every object is registered against.
type Allocator struct {
	Heap     *gc.Heap
	interned *table.Table[*String]
}

// NewAllocator builds an Allocator backed by heap and registers the
// interning table as a weak root so garbage strings stop being interned
// forever (§4.3 step 3).
func NewAllocator(heap *gc.Heap) *Allocator {
	a := &Allocator{Heap: heap, interned: table.New[*String]()}
	heap.AddWeakTable(internWeakTable{a.interned})
	return a
}

// internWeakTable adapts *table.Table[*String] to gc.WeakTable without
// table importing gc.
type internWeakTable struct {
	t *table.Table[*String]
}

func (w internWeakTable) DeleteUnmarked() {
	w.t.DeleteUnmarkedFunc(func(s *String) bool { return s.header.Marked() })
}

// NewString returns the unique String object for the given bytes, either by
// finding it in the intern table or allocating and interning a new one
// (§3: "strings are interned, equality of string keys is identity").
func (a *Allocator) NewString(b []byte) *String {
	hash := fnv1a(b)
	if existing, ok := a.interned.FindString(hash, func(s *String) bool {
		return s.hash == hash && string(s.bytes) == string(b)
	}); ok {
		return existing
	}
	s := newStringUninterned(append([]byte(nil), b...))
	// Register first: a collection it triggers runs while s is neither on the
	// all-objects list nor in the weak intern table, so it cannot drop s.
	a.Heap.Register(s)
	a.interned.Set(s, value.Bool(true))
	return s
}

// NewFunction allocates an (initially nameless, chunk-less) function object
// that the compiler fills in as it compiles the body.
func (a *Allocator) NewFunction() *Function {
	f := &Function{Chunk: chunk.New()}
	f.header.Init(gc.KindFunction)
	a.Heap.Register(f)
	return f
}

// NewNative wraps a Go function as a callable native (§7.1: clock, sqrt,
// inputLine).
func (a *Allocator) NewNative(name string, arity int, fn NativeFn) *Native {
	n := &Native{Name: name, Arity: arity, Fn: fn}
	n.header.Init(gc.KindNative)
	a.Heap.Register(n)
	return n
}

// NewUpvalue allocates an open upvalue pointing at a VM stack slot.
func (a *Allocator) NewUpvalue(slot *value.Value) *Upvalue {
	u := &Upvalue{location: slot}
	u.header.Init(gc.KindUpvalue)
	a.Heap.Register(u)
	return u
}

// NewClosure allocates a closure over fn with the given upvalue slice
// (already the right length, per fn.UpvalueCount).
func (a *Allocator) NewClosure(fn *Function, upvalues []*Upvalue) *Closure {
	c := &Closure{Function: fn, Upvalues: upvalues}
	c.header.Init(gc.KindClosure)
	a.Heap.Register(c)
	return c
}

// NewClass allocates an empty class named name.
func (a *Allocator) NewClass(name *String) *Class {
	c := &Class{Name: name, Methods: table.New[*String]()}
	c.header.Init(gc.KindClass)
	a.Heap.Register(c)
	return c
}

// NewInstance allocates a fresh instance of class, with no fields set.
func (a *Allocator) NewInstance(class *Class) *Instance {
	i := &Instance{Class: class, Fields: table.New[*String]()}
	i.header.Init(gc.KindInstance)
	a.Heap.Register(i)
	return i
}

// NewBoundMethod allocates a method bound to receiver.
func (a *Allocator) NewBoundMethod(receiver value.Value, method *Closure) *BoundMethod {
	b := &BoundMethod{Receiver: receiver, Method: method}
	b.header.Init(gc.KindBoundMethod)
	a.Heap.Register(b)
	return b
}
