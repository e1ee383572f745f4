// Package avm models the host-facing value and object surface shared by the
// dynamic containers.
//
// A Value is a tagged union over the states an element slot can be in. Empty
// (a hole) and Undefined are both first-class: a hole has never been
// assigned, while an undefined slot is present but reads as undefined. The
// distinction drives hasProperty, enumeration and prototype fallback.
package avm

import (
	"fmt"
	"math"
)

// Kind enumerates the states of a Value.
type Kind uint8

const (
	KindEmpty Kind = iota // a hole; no value was ever assigned
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
)

// Value is a runtime-typed AS3 value.
//
// The zero Value is Empty.
type Value struct {
	kind Kind
	num  float64
	str  string
	ref  any
}

// Empty returns the hole value.
func Empty() Value { return Value{} }

// Undefined returns the undefined value.
func Undefined() Value { return Value{kind: KindUndefined} }

// Null returns the null object reference.
func Null() Value { return Value{kind: KindNull} }

// Bool boxes a boolean.
func Bool(b bool) Value {
	var n float64
	if b {
		n = 1
	}
	return Value{kind: KindBoolean, num: n}
}

// Number boxes a float64.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int boxes a signed integer.
func Int(n int32) Value { return Number(float64(n)) }

// UInt boxes an unsigned integer.
func UInt(n uint32) Value { return Number(float64(n)) }

// String boxes a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// ObjectOf boxes an object reference. A nil object boxes to Null.
func ObjectOf(o Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, ref: o}
}

// CallableOf boxes a callable reference.
func CallableOf(c Callable) Value {
	if c == nil {
		return Null()
	}
	return Value{kind: KindObject, ref: c}
}

// Kind returns the state of this value.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty returns true if this value is a hole.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsUndefined returns true if this value is undefined.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull returns true if this value is the null reference.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNullOrUndefined returns true for null, undefined and holes.
func (v Value) IsNullOrUndefined() bool {
	return v.kind == KindEmpty || v.kind == KindUndefined || v.kind == KindNull
}

// IsNumber returns true if this value is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString returns true if this value is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsObject returns true if this value is a non-null object reference.
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean payload. Valid only for KindBoolean.
func (v Value) AsBool() bool { return v.num != 0 }

// AsNumber returns the numeric payload. Valid only for KindNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload. Valid only for KindString.
func (v Value) AsString() string { return v.str }

// AsObject returns the object payload, or nil if the value is not an object
// (or is an object that does not implement Object).
func (v Value) AsObject() Object {
	o, _ := v.ref.(Object)
	return o
}

// AsCallable returns the callable payload, or nil.
func (v Value) AsCallable() Callable {
	c, _ := v.ref.(Callable)
	return c
}

// OrUndefined maps a hole to undefined and leaves every other value alone.
// This is the read-side projection of a slot to AS3 code.
func (v Value) OrUndefined() Value {
	if v.kind == KindEmpty {
		return Undefined()
	}
	return v
}

// StrictEquals implements the ES strict equality operator.
//
// Holes compare unequal to everything, including other holes. NaN compares
// unequal to itself. Objects compare by reference identity.
func StrictEquals(a, b Value) bool {
	if a.kind == KindEmpty || b.kind == KindEmpty {
		return false
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.num == b.num
	case KindNumber:
		return a.num == b.num // NaN != NaN for free
	case KindString:
		return a.str == b.str
	default:
		return a.ref == b.ref
	}
}

// String implements [fmt.Stringer] for debugging. Use [ToString] for the
// ECMAScript coercion.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "<empty>"
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	default:
		return fmt.Sprintf("<object %p>", v.ref)
	}
}

// IsNaN reports whether this value is the NaN number.
func (v Value) IsNaN() bool { return v.kind == KindNumber && math.IsNaN(v.num) }
