package object

import (
	"fmt"

	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

// Class is a runtime class object: its name and its method table, keyed by
// method name and holding a Value wrapping a *Closure (§4.1 CLASS/METHOD).
// Superclass methods are copied in wholesale at INHERIT time (table.
// AddAllFrom), not looked up through a superclass chain at call time; this
// matches clox's model, where a subclass's table simply starts as a copy of
// its superclass's.
type Class struct {
	header  gc.Header
	Name    *String
	Methods *table.Table[*String]
}

var _ gc.Obj = (*Class)(nil)

func (c *Class) Header() *gc.Header { return &c.header }

func (c *Class) Trace(mark func(gc.Obj)) {
	mark(c.Name)
	c.Methods.Each(func(_ *String, v value.Value) {
		if v.IsObj() {
			mark(v.AsObj())
		}
	})
}

func (c *Class) Size() uintptr  { return uintptr(c.Methods.Len())*16 + 48 }
func (c *Class) Free()          {}
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name.String()) }
