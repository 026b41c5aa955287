package object

import "github.com/emberlang/ember/lang/gc"

// Closure pairs a compiled Function with the Upvalues it captured at the
// point it was created (OP_CLOSURE, §4.1). It, not Function, is what the
// VM actually calls: the same Function compiled once may be closed over
// many times with different captured environments.
type Closure struct {
	header   gc.Header
	Function *Function
	Upvalues []*Upvalue
}

var _ gc.Obj = (*Closure)(nil)

func (c *Closure) Header() *gc.Header { return &c.header }

func (c *Closure) Trace(mark func(gc.Obj)) {
	mark(c.Function)
	for _, u := range c.Upvalues {
		if u != nil {
			mark(u)
		}
	}
}

func (c *Closure) Size() uintptr  { return uintptr(len(c.Upvalues))*8 + 32 }
func (c *Closure) Free()          {}
func (c *Closure) String() string { return c.Function.String() }
