package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

// key is a minimal Hasher-implementing comparable type, standing in for
// *object.String so this package's tests don't depend on lang/object.
type key struct {
	s string
	h uint32
}

func newKey(s string) key {
	var h uint32 = 2166136261
	for _, c := range []byte(s) {
		h ^= uint32(c)
		h *= 16777619
	}
	return key{s: s, h: h}
}

func (k key) Hash() uint32   { return k.h }
func (k key) String() string { return k.s }

func TestSetReportsNewVsOverwrite(t *testing.T) {
	tbl := table.New[key]()

	assert.True(t, tbl.Set(newKey("a"), value.Number(1)))
	assert.False(t, tbl.Set(newKey("a"), value.Number(2)))

	v, ok := tbl.Get(newKey("a"))
	require.True(t, ok)
	assert.Equal(t, value.Number(2), v)
	assert.Equal(t, 1, tbl.Len())
}

func TestGetMissingKey(t *testing.T) {
	tbl := table.New[key]()
	_, ok := tbl.Get(newKey("missing"))
	assert.False(t, ok)
}

func TestDeleteLeavesTombstoneThatDoesNotBreakLaterProbes(t *testing.T) {
	tbl := table.New[key]()
	a, b := newKey("a"), newKey("b")
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))

	require.True(t, tbl.Delete(a))
	assert.False(t, tbl.Delete(a), "deleting twice reports not-found")

	// b must still be reachable even though a's slot (which may be on b's
	// probe chain) is now a tombstone rather than truly empty.
	v, ok := tbl.Get(b)
	require.True(t, ok)
	assert.Equal(t, value.Number(2), v)
	assert.Equal(t, 1, tbl.Len())
}

func TestGrowthSurvivesManyInsertions(t *testing.T) {
	tbl := table.New[key]()
	const n = 200
	for i := 0; i < n; i++ {
		tbl.Set(newKey(string(rune('a'))+itoa(i)), value.Number(float64(i)))
	}
	assert.Equal(t, n, tbl.Len())
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(newKey(string(rune('a')) + itoa(i)))
		require.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestAddAllFromCopiesLiveEntriesOnly(t *testing.T) {
	src := table.New[key]()
	src.Set(newKey("a"), value.Number(1))
	src.Set(newKey("b"), value.Number(2))
	src.Delete(newKey("b"))

	dst := table.New[key]()
	dst.Set(newKey("a"), value.Number(99)) // overwritten by AddAllFrom
	dst.Set(newKey("c"), value.Number(3))

	dst.AddAllFrom(src)

	v, ok := dst.Get(newKey("a"))
	require.True(t, ok)
	assert.Equal(t, value.Number(1), v)

	_, ok = dst.Get(newKey("b"))
	assert.False(t, ok, "tombstoned entry in src must not be copied")

	v, ok = dst.Get(newKey("c"))
	require.True(t, ok)
	assert.Equal(t, value.Number(3), v)
}

func TestEachVisitsOnlyLiveEntries(t *testing.T) {
	tbl := table.New[key]()
	tbl.Set(newKey("a"), value.Number(1))
	tbl.Set(newKey("b"), value.Number(2))
	tbl.Delete(newKey("b"))

	seen := map[string]value.Value{}
	tbl.Each(func(k key, v value.Value) { seen[k.s] = v })

	assert.Len(t, seen, 1)
	assert.Equal(t, value.Number(1), seen["a"])
}

func TestFindKeyReturnsKeyForMatchingValue(t *testing.T) {
	tbl := table.New[key]()
	tbl.Set(newKey("a"), value.Number(1))
	tbl.Set(newKey("b"), value.Number(2))

	k, ok := tbl.FindKey(value.Number(2))
	require.True(t, ok)
	assert.Equal(t, "b", k.s)

	_, ok = tbl.FindKey(value.Number(99))
	assert.False(t, ok)
}

func TestFindStringLocatesByContentBeforeKeyExists(t *testing.T) {
	tbl := table.New[key]()
	a := newKey("hello")
	tbl.Set(a, value.Bool(true))

	found, ok := tbl.FindString(a.h, func(k key) bool { return k.s == "hello" })
	require.True(t, ok)
	assert.Equal(t, a, found)

	_, ok = tbl.FindString(newKey("world").h, func(k key) bool { return k.s == "world" })
	assert.False(t, ok)
}

func TestDeleteUnmarkedFuncDropsOnlyUnmarked(t *testing.T) {
	tbl := table.New[key]()
	tbl.Set(newKey("keep"), value.Bool(true))
	tbl.Set(newKey("drop"), value.Bool(true))

	tbl.DeleteUnmarkedFunc(func(k key) bool { return k.s == "keep" })

	_, ok := tbl.Get(newKey("keep"))
	assert.True(t, ok)
	_, ok = tbl.Get(newKey("drop"))
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}

func TestEmptyTableIsUsableBeforeAnyInsert(t *testing.T) {
	tbl := &table.Table[key]{}
	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.Get(newKey("x"))
	assert.False(t, ok)
	assert.False(t, tbl.Delete(newKey("x")))
}
