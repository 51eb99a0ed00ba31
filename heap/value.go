// Package heap provides the value representation and object storage shared
// by both virtual machines: NaN-boxed values, a handle-based object arena
// with a tracing mark-sweep collector, and weak references.
package heap

import (
	"math"
)

// Value represents a runtime value using NaN-boxing.
//
// All values are 64-bit IEEE 754 doubles. Non-float values are encoded in
// the quiet-NaN space using tag bits:
//   - Float: native IEEE 754 double (any non-tagged bit pattern)
//   - Int: quiet NaN + tagInt + 32-bit signed payload
//   - Uint: quiet NaN + tagUint + 32-bit unsigned payload
//   - Object: quiet NaN + tagObject + 32-bit object handle
//   - String: quiet NaN + tagString + 32-bit interned-string handle
//   - Special: quiet NaN + tagSpecial + id (undefined/null/true/false)
type Value uint64

// NaN-boxing constants.
const (
	nanBits uint64 = 0x7FF8000000000000

	tagMask     uint64 = 0x0007000000000000
	payloadMask uint64 = 0x00000000FFFFFFFF

	tagObject  uint64 = 0x0001000000000000
	tagInt     uint64 = 0x0002000000000000
	tagUint    uint64 = 0x0003000000000000
	tagString  uint64 = 0x0004000000000000
	tagSpecial uint64 = 0x0005000000000000
)

// Special value payloads.
const (
	specialUndefined uint64 = 0
	specialNull      uint64 = 1
	specialTrue      uint64 = 2
	specialFalse     uint64 = 3
)

// Pre-defined singleton values.
const (
	Undefined Value = Value(nanBits | tagSpecial | specialUndefined)
	Null      Value = Value(nanBits | tagSpecial | specialNull)
	True      Value = Value(nanBits | tagSpecial | specialTrue)
	False     Value = Value(nanBits | tagSpecial | specialFalse)
)

// NaNValue is the canonical boxed NaN double.
var NaNValue = FromFloat(math.NaN())

// Handle identifies an object in an ObjectSpace. Zero is never a valid
// handle.
type Handle uint32

// StrHandle identifies an interned string in an ObjectSpace's string table.
// Zero is the empty string.
type StrHandle uint32

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat reports whether v holds a float64. Real NaNs and infinities are
// floats; only our tagged quiet NaNs are not.
func (v Value) IsFloat() bool {
	bits := uint64(v)
	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true // +/- Inf
	}
	if (bits & nanBits) != nanBits {
		return true // signaling NaN
	}
	return bits&tagMask == 0
}

func (v Value) hasTag(tag uint64) bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tag)
}

// IsInt reports whether v holds a signed 32-bit integer.
func (v Value) IsInt() bool { return v.hasTag(tagInt) }

// IsUint reports whether v holds an unsigned 32-bit integer.
func (v Value) IsUint() bool { return v.hasTag(tagUint) }

// IsNumber reports whether v holds any numeric value.
func (v Value) IsNumber() bool { return v.IsFloat() || v.IsInt() || v.IsUint() }

// IsObject reports whether v holds an object handle.
func (v Value) IsObject() bool { return v.hasTag(tagObject) }

// IsString reports whether v holds a string handle.
func (v Value) IsString() bool { return v.hasTag(tagString) }

// IsUndefined reports whether v is the undefined value.
func (v Value) IsUndefined() bool { return v == Undefined }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v == Null }

// IsBool reports whether v is true or false.
func (v Value) IsBool() bool { return v == True || v == False }

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// FromFloat boxes a float64. NaN inputs are canonicalized so they cannot
// alias a tagged value.
func FromFloat(f float64) Value {
	if math.IsNaN(f) {
		return Value(nanBits)
	}
	return Value(math.Float64bits(f))
}

// FromInt boxes a signed 32-bit integer.
func FromInt(i int32) Value {
	return Value(nanBits | tagInt | uint64(uint32(i)))
}

// FromUint boxes an unsigned 32-bit integer.
func FromUint(u uint32) Value {
	return Value(nanBits | tagUint | uint64(u))
}

// FromBool boxes a boolean.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromObject boxes an object handle.
func FromObject(h Handle) Value {
	return Value(nanBits | tagObject | uint64(h))
}

// FromString boxes an interned-string handle.
func FromString(h StrHandle) Value {
	return Value(nanBits | tagString | uint64(h))
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Float64 returns v as a float64. Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("heap: Value.Float64 on non-float")
	}
	return math.Float64frombits(uint64(v))
}

// Int32 returns the signed integer payload. Panics if v is not an int.
func (v Value) Int32() int32 {
	if !v.IsInt() {
		panic("heap: Value.Int32 on non-int")
	}
	return int32(uint32(uint64(v) & payloadMask))
}

// Uint32 returns the unsigned integer payload. Panics if v is not a uint.
func (v Value) Uint32() uint32 {
	if !v.IsUint() {
		panic("heap: Value.Uint32 on non-uint")
	}
	return uint32(uint64(v) & payloadMask)
}

// Bool returns the boolean payload. Panics if v is not a boolean.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	}
	panic("heap: Value.Bool on non-boolean")
}

// Object returns the object handle. Panics if v is not an object.
func (v Value) Object() Handle {
	if !v.IsObject() {
		panic("heap: Value.Object on non-object")
	}
	return Handle(uint64(v) & payloadMask)
}

// Str returns the string handle. Panics if v is not a string.
func (v Value) Str() StrHandle {
	if !v.IsString() {
		panic("heap: Value.Str on non-string")
	}
	return StrHandle(uint64(v) & payloadMask)
}

// NumberValue returns the numeric value of any boxed number.
// Panics on non-numbers.
func (v Value) NumberValue() float64 {
	switch {
	case v.IsInt():
		return float64(v.Int32())
	case v.IsUint():
		return float64(v.Uint32())
	default:
		return v.Float64()
	}
}

// MarkValue calls mark with v's object handle if v references an object.
// Used by Traceable implementations.
func MarkValue(v Value, mark func(Handle)) {
	if v.IsObject() {
		mark(v.Object())
	}
}
