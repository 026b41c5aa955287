// Package value implements ember's Value type: the tagged sum of Nil, Bool,
// Number, Undefined and Obj (§3).
//
// Two physical representations are supported behind the same exported API,
// selected at build time:
//
//   - the default build (no tags) uses a tagged-union struct, the
//     straightforward representation and the one every other package in
//     this module is written against;
//   - the "nanbox" build tag (`go build -tags nanbox`) swaps in a NaN-boxed
//     64-bit word encoding, trading struct-copy size (40 bytes vs 8) for a
//     representation that exercises the same API. See value_nanbox.go for
//     the encoding and the safety argument for why it's sound in Go despite
//     squirrelling a raw pointer away in an integer.
//
// Callers never see the difference: both files export the same Value type
// name, the same constructors (Nil, Bool, Number, Undefined, FromObj) and
// the same accessors (Kind, IsNil, AsNumber, ...), so every other package
// compiles unmodified under either tag.
package value

import "fmt"

// Kind identifies which alternative of the Value sum type a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindUndefined
	KindObj
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindUndefined:
		return "undefined"
	case KindObj:
		return "obj"
	default:
		return fmt.Sprintf("<invalid kind %d>", uint8(k))
	}
}
