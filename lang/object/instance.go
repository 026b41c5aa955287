package object

import (
	"fmt"

	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

// Instance is one runtime instance of a Class: the class it was constructed
// from and its own per-instance field table (§3, §4.1 GET_PROPERTY/
// SET_PROPERTY). Fields and methods share one lookup path at the language
// level (GET_PROPERTY checks Fields first, then Methods on Class), but are
// stored in separate tables since fields are per-instance and methods are
// shared by every instance of a class.
type Instance struct {
	header gc.Header
	Class  *Class
	Fields *table.Table[*String]
}

var _ gc.Obj = (*Instance)(nil)

func (i *Instance) Header() *gc.Header { return &i.header }

func (i *Instance) Trace(mark func(gc.Obj)) {
	mark(i.Class)
	i.Fields.Each(func(_ *String, v value.Value) {
		if v.IsObj() {
			mark(v.AsObj())
		}
	})
}

func (i *Instance) Size() uintptr  { return uintptr(i.Fields.Len())*16 + 48 }
func (i *Instance) Free()          {}
func (i *Instance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name.String()) }
