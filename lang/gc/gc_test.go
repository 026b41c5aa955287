package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/gc"
)

// fakeObj is a minimal heap object for exercising the collector without
// lang/object's String/Closure/etc., so this package's tests stay
// independent of its only consumer.
type fakeObj struct {
	header gc.Header
	refs   []*fakeObj
	freed  bool
}

func newFakeObj(h *gc.Heap, refs ...*fakeObj) *fakeObj {
	o := &fakeObj{refs: refs}
	o.header.Init(gc.KindString)
	h.Register(o)
	return o
}

func (o *fakeObj) Header() *gc.Header { return &o.header }
func (o *fakeObj) Size() uintptr      { return 32 }
func (o *fakeObj) Free()              { o.freed = true }
func (o *fakeObj) Trace(mark func(gc.Obj)) {
	for _, r := range o.refs {
		mark(r)
	}
}

// fakeRoots is a RootSource over a fixed slice of objects, standing in for
// the VM's value stack.
type fakeRoots struct {
	objs []*fakeObj
}

func (r *fakeRoots) MarkRoots(mark func(gc.Obj)) {
	for _, o := range r.objs {
		mark(o)
	}
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	h := gc.NewHeap()
	roots := &fakeRoots{}
	h.AddRoot(roots)

	kept := newFakeObj(h)
	garbage := newFakeObj(h)
	roots.objs = []*fakeObj{kept}

	require.Equal(t, 2, h.Live())
	h.Collect()

	assert.Equal(t, 1, h.Live())
	assert.False(t, kept.freed)
	assert.True(t, garbage.freed)
}

func TestCollectTracesTransitiveReferences(t *testing.T) {
	h := gc.NewHeap()
	roots := &fakeRoots{}
	h.AddRoot(roots)

	leaf := newFakeObj(h)
	middle := newFakeObj(h, leaf)
	root := newFakeObj(h, middle)
	roots.objs = []*fakeObj{root}

	h.Collect()

	assert.Equal(t, 3, h.Live())
	assert.False(t, leaf.freed)
	assert.False(t, middle.freed)
	assert.False(t, root.freed)
}

func TestRemoveRootStopsMarkingItsObjects(t *testing.T) {
	h := gc.NewHeap()
	roots := &fakeRoots{}
	h.AddRoot(roots)

	obj := newFakeObj(h)
	roots.objs = []*fakeObj{obj}

	h.RemoveRoot(roots)
	h.Collect()

	assert.Equal(t, 0, h.Live())
	assert.True(t, obj.freed)
}

func TestProtectKeepsObjectAliveAcrossOneCollection(t *testing.T) {
	h := gc.NewHeap()
	h.AddRoot(&fakeRoots{})

	obj := newFakeObj(h)
	h.Protect(obj)
	h.Collect()
	assert.Equal(t, 1, h.Live())

	h.Unprotect()
	h.Collect()
	assert.Equal(t, 0, h.Live())
}

type fakeWeakTable struct {
	entries []*fakeObj
	dropped int
}

func (w *fakeWeakTable) DeleteUnmarked() {
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.header.Marked() {
			kept = append(kept, e)
		} else {
			w.dropped++
		}
	}
	w.entries = kept
}

func TestWeakTableEntriesDroppedWhenUnreachable(t *testing.T) {
	h := gc.NewHeap()
	h.AddRoot(&fakeRoots{})

	interned := newFakeObj(h)
	weak := &fakeWeakTable{entries: []*fakeObj{interned}}
	h.AddWeakTable(weak)

	h.Collect()

	assert.Equal(t, 1, weak.dropped)
	assert.Equal(t, 0, h.Live())
}

func TestStressGCCollectsOnEveryAllocation(t *testing.T) {
	h := gc.NewHeap()
	h.StressGC = true
	roots := &fakeRoots{}
	h.AddRoot(roots)

	first := newFakeObj(h)
	roots.objs = []*fakeObj{first}

	// Each subsequent Register call collects before linking its own new
	// object in, so the garbage from the previous iteration is swept but the
	// just-registered one isn't yet; first must survive every one of them
	// since it's always reachable from roots.
	for i := 0; i < 5; i++ {
		newFakeObj(h)
	}
	h.Collect() // sweep the final iteration's dangling garbage too

	assert.False(t, first.freed)
	assert.Equal(t, 1, h.Live())
}
