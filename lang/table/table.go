// Package table implements the open-addressed hash table of §4.4: linear
// probing, load factor 0.75, tombstone-on-delete, capacity doubling from a
// minimum of 8. It is the one hash table implementation in ember, reused
// for every String-keyed structure in the system: the VM's global variable
// index, the string-interning set, every class's method table and every
// instance's field table.
//
// A generic github.com/dolthub/swiss map is deliberately not used here: this
// table's exact probing and tombstone behavior is part of the system's
// testable surface (the interning weak-sweep in particular depends on being
// able to walk every slot, tombstone or not, and tell live entries from
// never-used and deleted ones), and no off-the-shelf map exposes that level
// of control. See DESIGN.md.
package table

import "github.com/emberlang/ember/lang/value"

// Key is implemented by any heap object that can be used as a table key.
// Identity (Go's ==) is what the table compares against for ordinary
// lookups — valid for string keys because they're interned, so equal
// content means the same object. Content-addressed lookup before a key
// object exists (used only to find or create an interned string) goes
// through FindString instead of the Key interface.
type Key interface {
	comparable
}

type entryState uint8

const (
	stateEmpty entryState = iota
	stateTombstone
	stateOccupied
)

type entry[K Key] struct {
	key   K
	value value.Value
	state entryState
}

const (
	initialCapacity = 8
	maxLoadFactor   = 0.75
)

// Table is a String-keyed (or, generically, K-keyed) open-addressed hash
// table with linear probing and tombstone deletion.
type Table[K Key] struct {
	entries []entry[K]
	count   int // occupied + tombstones, used to decide when to grow
	live    int // occupied only
}

// New returns an empty table. The table grows lazily on first insert, so an
// empty Table[K]{} zero value is also usable.
func New[K Key]() *Table[K] { return &Table[K]{} }

// Len reports the number of live (non-tombstone) entries.
func (t *Table[K]) Len() int { return t.live }

// A hash is supplied directly by callers that need content-addressed probing
// (FindString's hash argument); ordinary Get/Set/Delete hash the key via hashKey, which
// requires K to additionally implement Hasher below. Table itself stays
// generic over plain comparable keys so it can be reused for non-string
// keys (e.g. a table keyed by small integers) without requiring a Hash
// method on int.
type Hasher interface {
	Hash() uint32
}

func hashKey[K Key](k K) uint32 {
	if h, ok := any(k).(Hasher); ok {
		return h.Hash()
	}
	return fnv1a(fmtKey(k))
}

// fmtKey is the fallback hash source for K that doesn't implement Hasher;
// ember never exercises this path (every real key is a *object.String,
// which implements Hasher) but it keeps Table usable for test doubles.
func fmtKey[K Key](k K) []byte {
	return []byte(any(k).(interface{ String() string }).String())
}

func fnv1a(b []byte) uint32 {
	var h uint32 = 2166136261
	for _, c := range b {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

func (t *Table[K]) grow(capacity int) {
	newEntries := make([]entry[K], capacity)
	var live int
	for _, e := range t.entries {
		if e.state != stateOccupied {
			continue
		}
		dst := findSlot(newEntries, hashKey(e.key), e.key)
		newEntries[dst] = entry[K]{key: e.key, value: e.value, state: stateOccupied}
		live++
	}
	t.entries = newEntries
	t.count = live
	t.live = live
}

// findSlot implements findEntry (§4.4): probe linearly from the key's hash
// bucket, remembering the first tombstone seen; return it if the probe
// reaches a truly empty slot without finding the key, otherwise return the
// empty slot itself (no tombstone was seen) or the slot holding the key.
func findSlot[K Key](entries []entry[K], hash uint32, key K) int {
	capacity := len(entries)
	index := int(hash) % capacity
	var tombstone = -1
	for {
		e := &entries[index]
		switch e.state {
		case stateEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return index
		case stateTombstone:
			if tombstone == -1 {
				tombstone = index
			}
		case stateOccupied:
			if e.key == key {
				return index
			}
		}
		index = (index + 1) % capacity
	}
}

func (t *Table[K]) ensureCapacity() {
	if len(t.entries) == 0 {
		t.entries = make([]entry[K], initialCapacity)
		return
	}
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow(len(t.entries) * 2)
	}
}

// Set inserts or overwrites the value for key. It reports whether this was
// a new key (true) as opposed to overwriting an existing one (false),
// mirroring clox's tableSet return value.
func (t *Table[K]) Set(key K, v value.Value) bool {
	t.ensureCapacity()
	index := findSlot(t.entries, hashKey(key), key)
	e := &t.entries[index]
	isNew := e.state != stateOccupied
	if isNew && e.state == stateEmpty {
		t.count++
	}
	if isNew {
		t.live++
	}
	e.key = key
	e.value = v
	e.state = stateOccupied
	return isNew
}

// Get looks up key, reporting whether it was found.
func (t *Table[K]) Get(key K) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil(), false
	}
	index := findSlot(t.entries, hashKey(key), key)
	e := &t.entries[index]
	if e.state != stateOccupied {
		return value.Nil(), false
	}
	return e.value, true
}

// Delete removes key, leaving a tombstone in its slot so later probes for
// other keys that collided with it still find them.
func (t *Table[K]) Delete(key K) bool {
	if len(t.entries) == 0 {
		return false
	}
	index := findSlot(t.entries, hashKey(key), key)
	e := &t.entries[index]
	if e.state != stateOccupied {
		return false
	}
	var zeroKey K
	e.key = zeroKey
	e.state = stateTombstone
	t.live--
	return true
}

// AddAllFrom copies every live entry of src into t, overwriting collisions.
// Used when a subclass inherits its superclass's method table (§4.1 INHERIT).
func (t *Table[K]) AddAllFrom(src *Table[K]) {
	for _, e := range src.entries {
		if e.state == stateOccupied {
			t.Set(e.key, e.value)
		}
	}
}

// Each calls fn for every live entry, in table (not insertion) order.
func (t *Table[K]) Each(fn func(key K, v value.Value)) {
	for _, e := range t.entries {
		if e.state == stateOccupied {
			fn(e.key, e.value)
		}
	}
}

// FindKey scans linearly for the first live entry whose value equals v,
// returning its key. Used to recover a global's name for runtime error
// messages (tableFindKey, §4.4).
func (t *Table[K]) FindKey(v value.Value) (K, bool) {
	for _, e := range t.entries {
		if e.state == stateOccupied && value.Equal(e.value, v) {
			return e.key, true
		}
	}
	var zero K
	return zero, false
}

// FindString implements tableFindString (§4.4): content- and hash-addressed
// lookup for the interning path, which cannot assume identity since the
// candidate string doesn't exist as an object yet. match reports whether a
// live entry's key content equals the probed bytes.
func (t *Table[K]) FindString(hash uint32, match func(K) bool) (K, bool) {
	var zero K
	if len(t.entries) == 0 {
		return zero, false
	}
	capacity := len(t.entries)
	index := int(hash) % capacity
	for {
		e := &t.entries[index]
		switch e.state {
		case stateEmpty:
			return zero, false
		case stateOccupied:
			if match(e.key) {
				return e.key, true
			}
		}
		index = (index + 1) % capacity
	}
}

// DeleteUnmarkedFunc removes every live entry whose key fails the supplied
// marked predicate. This is the weak-reference sweep of the interning table
// (§4.3 step 3): gc.Heap calls it through a small adapter in lang/object's
// allocator so this package stays independent of gc.
func (t *Table[K]) DeleteUnmarkedFunc(marked func(K) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.state == stateOccupied && !marked(e.key) {
			var zeroKey K
			e.key = zeroKey
			e.state = stateTombstone
			t.live--
		}
	}
}
