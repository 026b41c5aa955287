package object

import "github.com/emberlang/ember/lang/gc"

// String is ember's only text type: an immutical byte sequence (strings are
// byte sequences, not Unicode-aware) with its FNV-1a hash precomputed at
// construction. Strings are interned: Allocator
// guarantees at most one String object per distinct byte content exists at
// a time (§3).
type String struct {
	header gc.Header
	bytes  []byte
	hash   uint32
}

var _ gc.Obj = (*String)(nil)

func (s *String) Header() *gc.Header        { return &s.header }
func (s *String) Trace(mark func(gc.Obj))   {} // no outgoing references
func (s *String) Size() uintptr             { return uintptr(len(s.bytes)) + 32 }
func (s *String) Free()                     {}
func (s *String) String() string            { return string(s.bytes) }
func (s *String) Bytes() []byte             { return s.bytes }
func (s *String) Len() int                  { return len(s.bytes) }
func (s *String) Hash() uint32              { return s.hash }

// fnv1a implements the FNV-1a hash used for string content and interning
// (§3, §4.4).
func fnv1a(b []byte) uint32 {
	var h uint32 = 2166136261
	for _, c := range b {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

func newStringUninterned(b []byte) *String {
	s := &String{bytes: b, hash: fnv1a(b)}
	s.header.Init(gc.KindString)
	return s
}
