package avm_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/flier/avmcore/pkg/avm"
)

func TestValueStates(t *testing.T) {
	Convey("Given the distinguished values", t, func() {
		Convey("Empty is a hole, not undefined", func() {
			So(Empty().IsEmpty(), ShouldBeTrue)
			So(Empty().IsUndefined(), ShouldBeFalse)
			So(Undefined().IsEmpty(), ShouldBeFalse)
			So(Undefined().IsUndefined(), ShouldBeTrue)
		})

		Convey("A hole reads as undefined through OrUndefined", func() {
			So(Empty().OrUndefined().IsUndefined(), ShouldBeTrue)
			So(String("x").OrUndefined().AsString(), ShouldEqual, "x")
		})

		Convey("Null is not a hole and not undefined", func() {
			So(Null().IsNull(), ShouldBeTrue)
			So(Null().IsEmpty(), ShouldBeFalse)
			So(Null().IsNullOrUndefined(), ShouldBeTrue)
		})
	})
}

func TestStrictEquals(t *testing.T) {
	Convey("Given strict equality", t, func() {
		Convey("Primitives compare by value", func() {
			So(StrictEquals(Number(3), Number(3)), ShouldBeTrue)
			So(StrictEquals(String("a"), String("a")), ShouldBeTrue)
			So(StrictEquals(Bool(true), Bool(true)), ShouldBeTrue)
			So(StrictEquals(Number(3), String("3")), ShouldBeFalse)
		})

		Convey("NaN is unequal to itself", func() {
			So(StrictEquals(Number(math.NaN()), Number(math.NaN())), ShouldBeFalse)
		})

		Convey("Holes compare unequal to everything, including holes", func() {
			So(StrictEquals(Empty(), Empty()), ShouldBeFalse)
			So(StrictEquals(Empty(), Undefined()), ShouldBeFalse)
		})

		Convey("Undefined and null equal themselves but not each other", func() {
			So(StrictEquals(Undefined(), Undefined()), ShouldBeTrue)
			So(StrictEquals(Null(), Null()), ShouldBeTrue)
			So(StrictEquals(Null(), Undefined()), ShouldBeFalse)
		})

		Convey("Objects compare by identity", func() {
			a := NewDynamicObject(nil)
			b := NewDynamicObject(nil)
			So(StrictEquals(ObjectOf(a), ObjectOf(a)), ShouldBeTrue)
			So(StrictEquals(ObjectOf(a), ObjectOf(b)), ShouldBeFalse)
		})
	})
}

func TestCoercions(t *testing.T) {
	Convey("Given the ECMAScript coercions", t, func() {
		Convey("ToNumber", func() {
			So(ToNumber(Null()), ShouldEqual, 0)
			So(math.IsNaN(ToNumber(Undefined())), ShouldBeTrue)
			So(ToNumber(Bool(true)), ShouldEqual, 1)
			So(ToNumber(String("  42  ")), ShouldEqual, 42)
			So(ToNumber(String("0x10")), ShouldEqual, 16)
			So(ToNumber(String("")), ShouldEqual, 0)
			So(math.IsNaN(ToNumber(String("4x"))), ShouldBeTrue)
			So(ToNumber(String("-Infinity")), ShouldEqual, math.Inf(-1))
		})

		Convey("ToString", func() {
			So(ToString(Undefined()), ShouldEqual, "undefined")
			So(ToString(Null()), ShouldEqual, "null")
			So(ToString(Number(3)), ShouldEqual, "3")
			So(ToString(Number(3.5)), ShouldEqual, "3.5")
			So(ToString(Number(-0.25)), ShouldEqual, "-0.25")
			So(ToString(Number(math.NaN())), ShouldEqual, "NaN")
			So(ToString(Number(math.Inf(1))), ShouldEqual, "Infinity")
			So(ToString(Number(1e21)), ShouldEqual, "1e+21")
			So(ToString(Bool(false)), ShouldEqual, "false")
		})

		Convey("ToBoolean", func() {
			So(ToBoolean(Number(0)), ShouldBeFalse)
			So(ToBoolean(Number(math.NaN())), ShouldBeFalse)
			So(ToBoolean(String("")), ShouldBeFalse)
			So(ToBoolean(String("0")), ShouldBeTrue)
			So(ToBoolean(ObjectOf(NewDynamicObject(nil))), ShouldBeTrue)
		})

		Convey("ToUint32 and ToInt32 wrap modulo 2^32", func() {
			So(ToUint32(Number(-1)), ShouldEqual, uint32(0xFFFFFFFF))
			So(ToUint32(Number(1<<32+5)), ShouldEqual, uint32(5))
			So(ToInt32(Number(1<<31)), ShouldEqual, int32(math.MinInt32))
			So(ToUint32(Number(math.NaN())), ShouldEqual, uint32(0))
			So(ToUint32(String("7")), ShouldEqual, uint32(7))
		})
	})
}

func TestParseArrayIndex(t *testing.T) {
	Convey("Given the canonical index parser", t, func() {
		Convey("Canonical decimals parse", func() {
			So(ParseArrayIndex("0", false).Unwrap(), ShouldEqual, uint32(0))
			So(ParseArrayIndex("1000000", false).Unwrap(), ShouldEqual, uint32(1000000))
			So(ParseArrayIndex("4294967294", false).Unwrap(), ShouldEqual, uint32(4294967294))
		})

		Convey("The all-ones u32 is never an index", func() {
			So(ParseArrayIndex("4294967295", false).IsNone(), ShouldBeTrue)
			So(ParseArrayIndex("4294967296", false).IsNone(), ShouldBeTrue)
		})

		Convey("Non-canonical forms are rejected", func() {
			So(ParseArrayIndex("", false).IsNone(), ShouldBeTrue)
			So(ParseArrayIndex("01", false).IsNone(), ShouldBeTrue)
			So(ParseArrayIndex("-1", false).IsNone(), ShouldBeTrue)
			So(ParseArrayIndex("1.5", false).IsNone(), ShouldBeTrue)
			So(ParseArrayIndex("1e3", false).IsNone(), ShouldBeTrue)
		})

		Convey("Leading zeroes parse when allowed", func() {
			So(ParseArrayIndex("01", true).Unwrap(), ShouldEqual, uint32(1))
			So(ParseArrayIndex("0000000012", true).Unwrap(), ShouldEqual, uint32(12))
		})
	})
}

func TestIndexOfValue(t *testing.T) {
	Convey("Given runtime keys", t, func() {
		Convey("Whole non-negative doubles are indices", func() {
			So(IndexOfValue(Number(5)).Unwrap(), ShouldEqual, uint32(5))
			So(IndexOfValue(Number(0)).Unwrap(), ShouldEqual, uint32(0))
		})

		Convey("Everything else falls through to the property path", func() {
			So(IndexOfValue(Number(-1)).IsNone(), ShouldBeTrue)
			So(IndexOfValue(Number(1.5)).IsNone(), ShouldBeTrue)
			So(IndexOfValue(Number(4294967295)).IsNone(), ShouldBeTrue)
			So(IndexOfValue(String("abc")).IsNone(), ShouldBeTrue)
			So(IndexOfValue(Null()).IsNone(), ShouldBeTrue)
		})

		Convey("Index-shaped strings are indices", func() {
			So(IndexOfValue(String("42")).Unwrap(), ShouldEqual, uint32(42))
			So(IndexOfValue(String("042")).IsNone(), ShouldBeTrue)
		})
	})
}

func TestDynamicObject(t *testing.T) {
	Convey("Given a prototype chain", t, func() {
		proto := NewDynamicObject(nil)
		proto.TrySetProperty(PublicName("inherited"), String("base"))
		obj := NewDynamicObject(proto)
		obj.TrySetProperty(PublicName("own"), Number(1))

		Convey("Own properties resolve locally", func() {
			v, ok := obj.TryGetProperty(PublicName("own"))
			So(ok, ShouldBeTrue)
			So(v.AsNumber(), ShouldEqual, 1)
		})

		Convey("Misses walk the chain", func() {
			So(obj.HasProperty(PublicName("inherited")), ShouldBeFalse)
			So(HasPropertyChain(obj, PublicName("inherited")), ShouldBeTrue)
			So(GetPropertyChain(obj, PublicName("inherited")).AsString(), ShouldEqual, "base")
			So(GetPropertyChain(obj, PublicName("missing")).IsUndefined(), ShouldBeTrue)
		})

		Convey("Deletion removes the key and its enumeration slot", func() {
			So(obj.DeleteProperty(PublicName("own")), ShouldBeTrue)
			So(obj.HasProperty(PublicName("own")), ShouldBeFalse)
			So(obj.OwnKeys(), ShouldBeEmpty)
		})
	})
}

func TestMethodClosureInvoke(t *testing.T) {
	Convey("Given a method closure", t, func() {
		recv := ObjectOf(NewDynamicObject(nil))
		m := &MethodClosure{
			Receiver: recv,
			Fn: func(this Value, args []Value) (Value, error) {
				So(StrictEquals(this, recv), ShouldBeTrue)
				return Number(7), nil
			},
		}

		Convey("Invoking with a null this uses the bound receiver", func() {
			r, err := Invoke(m, Null(), nil)
			So(err, ShouldBeNil)
			So(r.AsNumber(), ShouldEqual, 7)
		})

		Convey("Invoking with a foreign this fails", func() {
			_, err := Invoke(m, ObjectOf(NewDynamicObject(nil)), nil)
			So(CodeOf(err), ShouldEqual, CodeCallbackMethodThisNotNull)
		})
	})
}
