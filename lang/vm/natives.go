package vm

import (
	"bufio"
	"fmt"
	"math"
	"time"

	"github.com/dolthub/swiss"

	"github.com/emberlang/ember/lang/value"
)

// nativeSpec is the registration record for one built-in function (§6):
// its declared arity (checked by callValue before Fn ever runs) and the Go
// implementation itself.
type nativeSpec struct {
	arity int
	fn    func(vm *VM, args []value.Value) (value.Value, error)
}

// natives is the table VM init walks once to install clock, sqrt and
// inputLine as globals. It is built once, read once at startup and then
// discarded — exactly the "plain fast map, no reverse lookup, no
// deletion" role swiss.Map is suited for (never a GC root, never part of
// the interning or tombstone-sensitive paths that justify lang/table's own
// hand-rolled table).
var natives = func() *swiss.Map[string, nativeSpec] {
	m := swiss.NewMap[string, nativeSpec](4)
	m.Put("clock", nativeSpec{arity: 0, fn: nativeClock})
	m.Put("sqrt", nativeSpec{arity: 1, fn: nativeSqrt})
	m.Put("inputLine", nativeSpec{arity: 0, fn: nativeInputLine})
	return m
}()

// defineNatives installs every entry of natives as a global in vm,
// matching the VM-init registration described in §6.
func (vm *VM) defineNatives() {
	natives.Iter(func(name string, spec nativeSpec) (stop bool) {
		n := vm.alloc.NewNative(name, spec.arity, boundNative(vm, spec.fn))
		slot, _ := vm.globals.Slot(vm.alloc.NewString([]byte(name)))
		vm.globals.Set(slot, value.FromObj(n))
		return false
	})
}

// boundNative closes over vm so a native can read/write VM-owned state
// (inputLine's stdin, clock's start time) without object.NativeFn itself
// needing to know about *VM.
func boundNative(vm *VM, fn func(vm *VM, args []value.Value) (value.Value, error)) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		return fn(vm, args)
	}
}

var processStart = time.Now()

// nativeClock implements clock() -> Number: wall-clock seconds since
// process start. clox's native measures CPU time via C's clock(); Go has
// no portable cheap equivalent without cgo (out of scope for a
// single-process CLI), so wall time elapsed since startup stands in —
// recorded as a std-lib justification in DESIGN.md.
func nativeClock(vm *VM, args []value.Value) (value.Value, error) {
	return value.Number(time.Since(processStart).Seconds()), nil
}

// nativeSqrt implements sqrt(Number) -> Number, erroring on a non-number or
// negative argument (§6).
func nativeSqrt(vm *VM, args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() {
		return value.Nil(), fmt.Errorf("sqrt() argument must be a number.")
	}
	n := args[0].AsNumber()
	if n < 0 {
		return value.Nil(), fmt.Errorf("sqrt() argument must not be negative.")
	}
	return value.Number(math.Sqrt(n)), nil
}

// nativeInputLine implements inputLine() -> String: blocks on Stdin until a
// newline is read, trimming it (§5: the one operation in this system that
// blocks on an external event, no timeout or cancellation).
func nativeInputLine(vm *VM, args []value.Value) (value.Value, error) {
	line, err := vm.stdinReader().ReadString('\n')
	if err != nil && line == "" {
		return value.Nil(), fmt.Errorf("inputLine(): %v", err)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	s := vm.alloc.NewString([]byte(line))
	return value.FromObj(s), nil
}

func (vm *VM) stdinReader() *bufio.Reader {
	if vm.stdin == nil {
		vm.stdin = bufio.NewReader(vm.Stdin)
	}
	return vm.stdin
}
