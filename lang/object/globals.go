package object

import (
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

// Globals is the VM-wide global-variable index: a name table mapping each
// declared global's String to a numeric slot, the slots' current values
// (Undefined until DEFINE_GLOBAL runs), and which slots were declared
// const (§3, §4.1). The compiler and the VM share one Globals instance so
// that bytecode emitted with a given slot number keeps meaning the same
// thing across a REPL session's successive compiles.
type Globals struct {
	Names  *table.Table[*String]
	Values []value.Value
	consts []bool
}

var _ gc.RootSource = (*Globals)(nil)

// NewGlobals returns an empty global index.
func NewGlobals() *Globals {
	return &Globals{Names: table.New[*String]()}
}

// Slot returns the slot assigned to name, creating one (initialized to
// Undefined, not const) if this is the first time name has been seen.
func (g *Globals) Slot(name *String) (slot int, isNew bool) {
	if v, ok := g.Names.Get(name); ok {
		return int(v.AsNumber()), false
	}
	slot = len(g.Values)
	g.Values = append(g.Values, value.Undefined())
	g.consts = append(g.consts, false)
	g.Names.Set(name, value.Number(float64(slot)))
	return slot, true
}

// MarkConst records that slot was declared with const semantics; later
// SET_GLOBAL(slot) attempts are a compile-time error (checked by the
// compiler against this, not at runtime).
func (g *Globals) MarkConst(slot int) { g.consts[slot] = true }

// IsConst reports whether slot was declared const.
func (g *Globals) IsConst(slot int) bool { return slot < len(g.consts) && g.consts[slot] }

// Get reads a global's current value (Undefined if declared but never
// assigned, or if DEFINE_GLOBAL for it hasn't run yet).
func (g *Globals) Get(slot int) value.Value { return g.Values[slot] }

// Set overwrites a global's current value.
func (g *Globals) Set(slot int, v value.Value) { g.Values[slot] = v }

// NameOf recovers the name registered for slot, for runtime error messages
// naming an undefined global (tableFindKey, §4.4).
func (g *Globals) NameOf(slot int) (*String, bool) {
	return g.Names.FindKey(value.Number(float64(slot)))
}

// Len reports how many global slots have been assigned.
func (g *Globals) Len() int { return len(g.Values) }

// MarkRoots implements gc.RootSource: every global name and every object
// value currently stored in a slot is a GC root (§4.3 step 1).
func (g *Globals) MarkRoots(mark func(gc.Obj)) {
	g.Names.Each(func(k *String, _ value.Value) { mark(k) })
	for _, v := range g.Values {
		if v.IsObj() {
			mark(v.AsObj())
		}
	}
}
