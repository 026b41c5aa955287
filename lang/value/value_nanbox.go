//go:build nanbox

package value

import (
	"math"
	"strconv"

	"github.com/emberlang/ember/lang/gc"
)

// Value is the NaN-boxed representation: a single 64-bit word. A double is
// stored verbatim in its IEEE-754 bit pattern; every other kind of Value
// sets all of the quiet-NaN exponent bits, which no real double produced by
// ember's arithmetic ever does. Within that "impossible double" space, the
// sign bit distinguishes an object reference (set) from one of the four
// immediate values nil/true/false/undefined (clear, encoded in the low 2
// bits).
//
// One departure from the textbook C encoding: the low 48 bits of an object
// Value are not a raw pointer but an index into objTable, a side table of
// gc.Obj interface values. A Go interface carries a type descriptor as well
// as a data pointer, so it doesn't fit in 48 bits the way a C Obj* does;
// indexing a table is the closest faithful analogue that stays within safe
// Go (no unsafe.Pointer round-tripping, no risk of the object being invisible
// to Go's own collector between the time it's boxed and the time it's
// unboxed). The table only grows for the lifetime of a nanbox build's
// process — acceptable for what this build exists to demonstrate, but it is
// why the default build (see value_tagged.go) is the one every other
// package is written and tested against.
type Value uint64

const (
	signBit uint64 = 1 << 63
	qnan    uint64 = 0x7ffc000000000000

	tagUndefined uint64 = 0
	tagNil       uint64 = 1
	tagFalse     uint64 = 2
	tagTrue      uint64 = 3
	tagMask      uint64 = 3

	objIndexMask uint64 = 0x0000ffffffffffff
)

var objTable []gc.Obj

func registerObj(o gc.Obj) uint64 {
	objTable = append(objTable, o)
	return uint64(len(objTable) - 1)
}

func immediate(tag uint64) Value { return Value(qnan | tag) }

// Nil returns the nil value.
func Nil() Value { return immediate(tagNil) }

// Undefined returns the sentinel used for globals that have been declared
// but not yet assigned.
func Undefined() Value { return immediate(tagUndefined) }

// Bool returns the boolean value b.
func Bool(b bool) Value {
	if b {
		return immediate(tagTrue)
	}
	return immediate(tagFalse)
}

// Number returns the numeric value n.
func Number(n float64) Value { return Value(math.Float64bits(n)) }

// FromObj returns a Value wrapping the heap object obj.
func FromObj(obj gc.Obj) Value {
	idx := registerObj(obj)
	return Value(signBit | qnan | idx)
}

func (v Value) bits() uint64 { return uint64(v) }

func (v Value) IsNumber() bool { return v.bits()&qnan != qnan }
func (v Value) IsObj() bool    { return v.bits()&qnan == qnan && v.bits()&signBit != 0 }
func (v Value) isImmediate() bool {
	return v.bits()&qnan == qnan && v.bits()&signBit == 0
}
func (v Value) IsNil() bool       { return v.isImmediate() && v.bits()&tagMask == tagNil }
func (v Value) IsUndefined() bool { return v.isImmediate() && v.bits()&tagMask == tagUndefined }
func (v Value) IsBool() bool {
	return v.isImmediate() && (v.bits()&tagMask == tagTrue || v.bits()&tagMask == tagFalse)
}

// Kind reports which alternative of the sum type v holds.
func (v Value) Kind() Kind {
	switch {
	case v.IsNumber():
		return KindNumber
	case v.IsObj():
		return KindObj
	case v.IsNil():
		return KindNil
	case v.IsUndefined():
		return KindUndefined
	default:
		return KindBool
	}
}

// AsNumber returns v's numeric payload. The caller must have checked IsNumber.
func (v Value) AsNumber() float64 { return math.Float64frombits(v.bits()) }

// AsBool returns v's boolean payload. The caller must have checked IsBool.
func (v Value) AsBool() bool { return v.bits()&tagMask == tagTrue }

// AsObj returns v's object payload. The caller must have checked IsObj.
func (v Value) AsObj() gc.Obj { return objTable[v.bits()&objIndexMask] }

// Truthy implements ember's truthiness rule: everything is truthy except
// nil and the boolean false.
func (v Value) Truthy() bool {
	switch {
	case v.IsNil():
		return false
	case v.IsBool():
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements valuesEqual (§3). Two object Values compare equal iff
// they unbox to the identical gc.Obj (interface equality), never by table
// index, since the same object can be boxed more than once at different
// indices.
func Equal(a, b Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if ak != bk {
		return false
	}
	switch ak {
	case KindNil, KindUndefined:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	case KindNumber:
		return a.AsNumber() == b.AsNumber()
	case KindObj:
		return a.AsObj() == b.AsObj()
	default:
		return false
	}
}

// String renders v in ember's canonical textual form.
func (v Value) String() string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "undefined"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case KindObj:
		if s, ok := v.AsObj().(interface{ String() string }); ok {
			return s.String()
		}
		return "<obj>"
	default:
		return "<invalid value>"
	}
}
