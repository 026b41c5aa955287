//go:build !nanbox

package value

import (
	"fmt"
	"strconv"

	"github.com/emberlang/ember/lang/gc"
)

// Value is the tagged-union representation: an explicit kind discriminator
// plus one payload field per alternative. This is the default
// representation; see value_nanbox.go for the alternative encoding enabled
// by the "nanbox" build tag.
type Value struct {
	kind Kind
	num  float64
	b    bool
	obj  gc.Obj
}

var (
	nilValue       = Value{kind: KindNil}
	undefinedValue = Value{kind: KindUndefined}
	trueValue      = Value{kind: KindBool, b: true}
	falseValue     = Value{kind: KindBool, b: false}
)

// Nil returns the nil value.
func Nil() Value { return nilValue }

// Undefined returns the sentinel used for globals that have been declared
// but not yet assigned (§3, §8 scenario "var x; x;").
func Undefined() Value { return undefinedValue }

// Bool returns the boolean value b.
func Bool(b bool) Value {
	if b {
		return trueValue
	}
	return falseValue
}

// Number returns the numeric value n.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// FromObj returns a Value wrapping the heap object obj. obj must not be nil;
// use Nil() for the absence of an object.
func FromObj(obj gc.Obj) Value { return Value{kind: KindObj, obj: obj} }

// Kind reports which alternative of the sum type v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool       { return v.kind == KindNil }
func (v Value) IsBool() bool      { return v.kind == KindBool }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsObj() bool       { return v.kind == KindObj }

// AsBool returns v's boolean payload. The caller must have checked IsBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns v's numeric payload. The caller must have checked IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsObj returns v's object payload. The caller must have checked IsObj.
func (v Value) AsObj() gc.Obj { return v.obj }

// Truthy implements ember's truthiness rule: everything is truthy except
// nil and the boolean false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements valuesEqual (§3): same kind required, numbers compare by
// IEEE equality, objects (including strings, thanks to interning) compare
// by identity.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil, KindUndefined:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v in ember's canonical textual form, as produced by the
// PRINT opcode (§8 property 2).
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "undefined"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindObj:
		if s, ok := v.obj.(fmt.Stringer); ok {
			return s.String()
		}
		return "<obj>"
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
