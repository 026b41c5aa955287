package object

import (
	"fmt"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/value"
)

// Function is a compiled function body: its arity, how many upvalues its
// closures must capture, and the bytecode chunk the compiler emitted for
// it. Function is the result of compiling; Closure (below) is what the VM
// actually calls, since the same Function can be closed over multiple
// times with different captured environments.
type Function struct {
	header       gc.Header
	Name         *String // nil for the implicit top-level script function
	Arity        int
	UpvalueCount int
	Chunk        *chunk.Chunk
}

var _ gc.Obj = (*Function)(nil)

func (f *Function) Header() *gc.Header { return &f.header }

func (f *Function) Trace(mark func(gc.Obj)) {
	if f.Name != nil {
		mark(f.Name)
	}
	for _, c := range f.Chunk.Constants {
		if c.IsObj() {
			mark(c.AsObj())
		}
	}
}

func (f *Function) Size() uintptr { return uintptr(len(f.Chunk.Code)) + 64 }
func (f *Function) Free()         {}

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.String())
}

// NativeFn is the signature every native (Go-implemented) function must
// have. args has already been checked against the Native's declared Arity
// by the VM's call machinery.
type NativeFn func(args []value.Value) (value.Value, error)
