package object

import (
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/value"
)

// BoundMethod pairs a receiver with the Closure looked up for a method
// access (GET_PROPERTY resolving to a method, §4.1), so that calling it
// later still has the right `this` without needing a separate calling
// convention from an ordinary closure call.
type BoundMethod struct {
	header   gc.Header
	Receiver value.Value
	Method   *Closure
}

var _ gc.Obj = (*BoundMethod)(nil)

func (b *BoundMethod) Header() *gc.Header { return &b.header }

func (b *BoundMethod) Trace(mark func(gc.Obj)) {
	if b.Receiver.IsObj() {
		mark(b.Receiver.AsObj())
	}
	mark(b.Method)
}

func (b *BoundMethod) Size() uintptr  { return 40 }
func (b *BoundMethod) Free()          {}
func (b *BoundMethod) String() string { return b.Method.String() }
