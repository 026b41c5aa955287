package object

import (
	"fmt"

	"github.com/emberlang/ember/lang/gc"
)

// Native wraps a Go function exposed to ember code as a callable (§7.1).
type Native struct {
	header gc.Header
	Name   string
	Arity  int
	Fn     NativeFn
}

var _ gc.Obj = (*Native)(nil)

func (n *Native) Header() *gc.Header      { return &n.header }
func (n *Native) Trace(mark func(gc.Obj)) {} // closes over no heap objects
func (n *Native) Size() uintptr           { return 48 }
func (n *Native) Free()                   {}
func (n *Native) String() string          { return fmt.Sprintf("<native fn %s>", n.Name) }
