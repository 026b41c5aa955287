package vm

import (
	"unsafe"

	"github.com/emberlang/ember/lang/object"
)

// slotOf recovers the stack index a still-open upvalue's location points
// at. location is always the address of some vm.stack[i] for an open
// upvalue (captureUpvalue is the only constructor used while open), and
// vm.stack is allocated once and never reallocated, so this pointer
// arithmetic is sound for the VM's lifetime — the one place this package
// reaches for unsafe, to implement the "sorted by stack address" ordering
// natively in Go, where pointers otherwise support only equality, not
// ordering.
func (vm *VM) slotOf(loc *object.Upvalue) int {
	base := uintptr(unsafe.Pointer(&vm.stack[0]))
	addr := uintptr(unsafe.Pointer(loc.Location()))
	return int((addr - base) / unsafe.Sizeof(vm.stack[0]))
}

// captureUpvalue returns the open Upvalue for stack slot, reusing an
// existing one if a sibling closure already captured the same slot, and
// otherwise inserting a new one into vm.openUpvalues at the position that
// keeps the list sorted strictly descending by stack address (§4.2,
// §8 invariant 7).
func (vm *VM) captureUpvalue(slot int) *object.Upvalue {
	var prev *object.Upvalue
	cur := vm.openUpvalues
	for cur != nil && vm.slotOf(cur) > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && vm.slotOf(cur) == slot {
		return cur
	}

	created := vm.alloc.NewUpvalue(&vm.stack[slot])
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose stack slot is at or above
// limit, copying each one's current value into its own storage and
// detaching it from vm.openUpvalues (§4.2 closeUpvalues). Called on block
// exit (CLOSE_UPVALUE) and on RETURN, with limit the returning frame's
// slots base.
func (vm *VM) closeUpvalues(limit int) {
	for vm.openUpvalues != nil && vm.slotOf(vm.openUpvalues) >= limit {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.Next
		u.Next = nil
	}
}
