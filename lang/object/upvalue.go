package object

import "github.com/emberlang/ember/lang/gc"
import "github.com/emberlang/ember/lang/value"

// Upvalue is the "cell" a closure uses to share a captured local variable
// with the frame that owns it (§3, §4.1). While open, location points at
// the live stack slot; Close copies the value out of the stack into closed
// and repoints location at it, so the variable keeps working after its
// owning frame returns.
type Upvalue struct {
	header   gc.Header
	location *value.Value
	closed   value.Value

	// Next links this upvalue onto the VM's open-upvalues list, sorted by
	// stack slot, so CLOSE_UPVALUE and frame return can find and close every
	// upvalue at or above a given slot in one pass. Owned and maintained by
	// the VM, not by Upvalue's own methods.
	Next *Upvalue
}

var _ gc.Obj = (*Upvalue)(nil)

func (u *Upvalue) Header() *gc.Header { return &u.header }

func (u *Upvalue) Trace(mark func(gc.Obj)) {
	// While open, location aliases a VM stack slot, which the VM's own
	// MarkRoots already walks; only the closed copy is this object's own.
	if u.closed.IsObj() {
		mark(u.closed.AsObj())
	}
}

func (u *Upvalue) Size() uintptr { return 40 }
func (u *Upvalue) Free()         {}
func (u *Upvalue) String() string { return "<upvalue>" }

// Get reads the current value, whether still open or already closed.
func (u *Upvalue) Get() value.Value { return *u.location }

// Set writes through to whichever storage is current.
func (u *Upvalue) Set(v value.Value) { *u.location = v }

// IsOpen reports whether this upvalue still points into a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.location != &u.closed }

// Location exposes the raw slot pointer so the VM can compare it against a
// stack index when deciding which open upvalues a CLOSE_UPVALUE/return
// must close.
func (u *Upvalue) Location() *value.Value { return u.location }

// Close copies the current value into the upvalue's own storage and
// repoints location at it, detaching it from the stack slot it used to
// alias.
func (u *Upvalue) Close() {
	u.closed = *u.location
	u.location = &u.closed
}
