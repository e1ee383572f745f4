package array_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/avm/array"
)

func numbers(ns ...float64) *array.Array {
	vals := make([]avm.Value, len(ns))
	for i, n := range ns {
		vals[i] = avm.Number(n)
	}
	return array.NewOf(vals...)
}

// snapshot renders the hole-resolved string form of every element.
func snapshot(a *array.Array) []string {
	out := make([]string, a.Length())
	for i := uint32(0); i < a.Length(); i++ {
		if !a.Has(i) {
			out[i] = "<hole>"
			continue
		}
		out[i] = avm.ToString(a.Get(i))
	}
	return out
}

func TestPushPopShiftUnshift(t *testing.T) {
	Convey("Given a small dense array", t, func() {
		a := numbers(1, 2, 3)

		Convey("Push appends and reports the new length", func() {
			So(a.Push(avm.Number(4), avm.Number(5)), ShouldEqual, uint32(5))
			So(a.ToString(), ShouldEqual, "1,2,3,4,5")
		})

		Convey("Pop removes the tail", func() {
			So(a.Pop().AsNumber(), ShouldEqual, 3)
			So(a.Length(), ShouldEqual, uint32(2))
			So(a.ToString(), ShouldEqual, "1,2")
		})

		Convey("Shift removes the head and slides everything down", func() {
			So(a.Shift().AsNumber(), ShouldEqual, 1)
			So(a.ToString(), ShouldEqual, "2,3")
		})

		Convey("Unshift inserts at the front", func() {
			So(a.Unshift(avm.Number(-1), avm.Number(0)), ShouldEqual, uint32(5))
			So(a.ToString(), ShouldEqual, "-1,0,1,2,3")
		})

		Convey("Popping an empty array yields undefined", func() {
			empty := array.New()
			So(empty.Pop().IsUndefined(), ShouldBeTrue)
			So(empty.Shift().IsUndefined(), ShouldBeTrue)
		})
	})
}

func TestSpliceSameCountInPlace(t *testing.T) {
	Convey("Given [10,20,30,40,50]", t, func() {
		a := numbers(10, 20, 30, 40, 50)

		Convey("splice(1, 2, 99, 98) overwrites in place", func() {
			removed := a.Splice(1, 2, avm.Number(99), avm.Number(98))

			So(snapshot(removed), ShouldResemble, []string{"20", "30"})
			So(snapshot(a), ShouldResemble, []string{"10", "99", "98", "40", "50"})
			So(a.IsHashStorage(), ShouldBeFalse)
		})

		Convey("splice with fewer inserts shifts the tail left", func() {
			removed := a.Splice(1, 3, avm.Number(7))

			So(snapshot(removed), ShouldResemble, []string{"20", "30", "40"})
			So(snapshot(a), ShouldResemble, []string{"10", "7", "50"})
		})

		Convey("splice with more inserts shifts the tail right", func() {
			removed := a.Splice(2, 1, avm.Number(7), avm.Number(8), avm.Number(9))

			So(snapshot(removed), ShouldResemble, []string{"30"})
			So(snapshot(a), ShouldResemble, []string{"10", "20", "7", "8", "9", "40", "50"})
		})

		Convey("negative start counts from the end", func() {
			a.Splice(-2, 2)
			So(snapshot(a), ShouldResemble, []string{"10", "20", "30"})
		})
	})
}

func TestSliceAndConcat(t *testing.T) {
	Convey("Given [1,2,3,4,5]", t, func() {
		a := numbers(1, 2, 3, 4, 5)

		Convey("slice extracts a half-open range into a fresh dense array", func() {
			s := a.Slice(1, 3)
			So(snapshot(s), ShouldResemble, []string{"2", "3"})
			So(s.IsHashStorage(), ShouldBeFalse)

			s.Set(0, avm.Number(99))
			So(a.Get(1).AsNumber(), ShouldEqual, 2)
		})

		Convey("negative slice bounds count from the end", func() {
			So(snapshot(a.Slice(-2, 5)), ShouldResemble, []string{"4", "5"})
			So(a.Slice(3, 1).Length(), ShouldEqual, uint32(0))
		})

		Convey("concat with no arguments clones", func() {
			c := a.Concat()
			So(snapshot(c), ShouldResemble, snapshot(a))

			c.Set(0, avm.Number(99))
			So(a.Get(0).AsNumber(), ShouldEqual, 1)
		})

		Convey("concat appends container elements individually", func() {
			c := a.Concat(numbers(6, 7).Value(), avm.String("x"))
			So(snapshot(c), ShouldResemble, []string{"1", "2", "3", "4", "5", "6", "7", "x"})
		})

		Convey("slicing and concatenating reassembles the array", func() {
			got := a.Slice(0, 2).Concat(a.Slice(2, 4).Value(), a.Slice(4, 5).Value())
			if diff := cmp.Diff(snapshot(a), snapshot(got)); diff != "" {
				t.Errorf("reassembled array differs (-want +got):\n%s", diff)
			}
		})
	})
}

func TestReverseRoundTrip(t *testing.T) {
	Convey("Given arrays with and without holes", t, func() {
		Convey("reverse reverses", func() {
			a := numbers(1, 2, 3)
			So(snapshot(a.Reverse()), ShouldResemble, []string{"3", "2", "1"})
		})

		Convey("reverse twice is the identity", func() {
			a := numbers(1, 2, 3, 4)
			a.Delete(2)
			want := snapshot(a)
			So(snapshot(a.Reverse().Reverse()), ShouldResemble, want)
		})

		Convey("holes swap positions like values", func() {
			a := numbers(1, 2, 3)
			a.Delete(0)
			a.Reverse()
			So(a.Has(2), ShouldBeFalse)
			So(a.Get(0).AsNumber(), ShouldEqual, 3)
		})
	})
}

func TestCloneLaw(t *testing.T) {
	Convey("Given any array, clone is value-equal with independent storage", t, func() {
		a := numbers(1, 2, 3)
		a.Delete(1)

		c := a.Clone()
		So(snapshot(c), ShouldResemble, snapshot(a))

		c.Set(0, avm.Number(99))
		So(a.Get(0).AsNumber(), ShouldEqual, 1)
	})
}

func TestIndexOfLaws(t *testing.T) {
	Convey("Given [10,20,10,\"s\"]", t, func() {
		a := numbers(10, 20, 10)
		a.Push(avm.String("s"))

		Convey("indexOf finds the first strict match", func() {
			i := a.IndexOf(avm.Number(10), 0)
			So(i, ShouldEqual, int64(0))
			So(avm.StrictEquals(a.Get(uint32(i)), avm.Number(10)), ShouldBeTrue)

			So(a.IndexOf(avm.Number(10), 1), ShouldEqual, int64(2))
			So(a.IndexOf(avm.String("10"), 0), ShouldEqual, int64(-1))
			So(a.IndexOf(avm.Number(99), 0), ShouldEqual, int64(-1))
		})

		Convey("lastIndexOf scans backwards", func() {
			So(a.LastIndexOf(avm.Number(10), 1<<31), ShouldEqual, int64(2))
			So(a.LastIndexOf(avm.Number(10), 1), ShouldEqual, int64(0))
			So(a.LastIndexOf(avm.Number(99), 1<<31), ShouldEqual, int64(-1))
		})
	})
}

func TestJoinAndToString(t *testing.T) {
	Convey("Given mixed elements", t, func() {
		a := array.NewOf(avm.Number(1), avm.Null(), avm.Undefined(), avm.String("x"))

		Convey("null and undefined render empty", func() {
			So(a.Join("-"), ShouldEqual, "1---x")
			So(a.ToString(), ShouldEqual, "1,,,x")
		})

		Convey("holes render empty too", func() {
			b := numbers(1, 2)
			b.SetLength(4)
			So(b.ToString(), ShouldEqual, "1,2,,")
		})
	})
}

func TestHoleResolutionThroughPrototype(t *testing.T) {
	Convey("Given an array with a prototype carrying index 1", t, func() {
		proto := avm.NewDynamicObject(nil)
		proto.TrySetProperty(avm.PublicName("1"), avm.String("inherited"))

		a := numbers(10, 20, 30)
		a.SetProto(proto)
		a.Delete(1)

		Convey("reads surface the inherited value for holes only", func() {
			So(a.ValueAt(1).AsString(), ShouldEqual, "inherited")
			So(a.ValueAt(0).AsNumber(), ShouldEqual, 10)
			So(a.Has(1), ShouldBeFalse)
		})

		Convey("slice bakes the resolution into its output", func() {
			s := a.Slice(0, 3)
			So(s.Get(1).AsString(), ShouldEqual, "inherited")
			So(s.Has(1), ShouldBeTrue)
		})
	})
}

func TestIterationCallbacks(t *testing.T) {
	Convey("Given [1,2,3,4]", t, func() {
		a := numbers(1, 2, 3, 4)

		even := avm.Func(func(_ avm.Value, args []avm.Value) (avm.Value, error) {
			n := int64(args[0].AsNumber())
			return avm.Bool(n%2 == 0), nil
		})
		double := avm.Func(func(_ avm.Value, args []avm.Value) (avm.Value, error) {
			return avm.Number(args[0].AsNumber() * 2), nil
		})

		Convey("every / some", func() {
			all, err := a.Every(even, avm.Null())
			So(err, ShouldBeNil)
			So(all, ShouldBeFalse)

			any, err := a.Some(even, avm.Null())
			So(err, ShouldBeNil)
			So(any, ShouldBeTrue)
		})

		Convey("filter keeps the accepted elements", func() {
			f, err := a.Filter(even, avm.Null())
			So(err, ShouldBeNil)
			So(snapshot(f), ShouldResemble, []string{"2", "4"})
		})

		Convey("map transforms every element", func() {
			m, err := a.Map(double, avm.Null())
			So(err, ShouldBeNil)
			So(snapshot(m), ShouldResemble, []string{"2", "4", "6", "8"})
		})

		Convey("forEach visits in order with (value, index, array)", func() {
			var got []float64
			visit := avm.Func(func(_ avm.Value, args []avm.Value) (avm.Value, error) {
				So(args, ShouldHaveLength, 3)
				got = append(got, args[0].AsNumber())
				So(args[1].AsNumber(), ShouldEqual, float64(len(got)-1))
				return avm.Undefined(), nil
			})
			So(a.ForEach(visit, avm.Null()), ShouldBeNil)
			So(got, ShouldResemble, []float64{1, 2, 3, 4})
		})

		Convey("a callback error propagates and leaves the array valid", func() {
			boom := avm.NewError(avm.CodeUndefinedReference, "boom")
			bad := avm.Func(func(avm.Value, []avm.Value) (avm.Value, error) {
				return avm.Undefined(), boom
			})
			_, err := a.Filter(bad, avm.Null())
			So(err, ShouldEqual, boom)
			So(a.Length(), ShouldEqual, uint32(4))
		})

		Convey("a method-closure callback rejects a foreign this", func() {
			m := &avm.MethodClosure{
				Receiver: avm.ObjectOf(avm.NewDynamicObject(nil)),
				Fn: func(avm.Value, []avm.Value) (avm.Value, error) {
					return avm.Bool(true), nil
				},
			}
			_, err := a.Every(m, avm.ObjectOf(avm.NewDynamicObject(nil)))
			So(avm.CodeOf(err), ShouldEqual, avm.CodeCallbackMethodThisNotNull)
		})
	})
}

func TestPropertyBridge(t *testing.T) {
	Convey("Given the name-based bridge", t, func() {
		a := numbers(1, 2, 3)

		Convey("index-shaped names address storage", func() {
			So(a.GetProperty(avm.PublicName("1")).AsNumber(), ShouldEqual, 2)
			So(a.SetProperty(avm.PublicName("3"), avm.Number(4)), ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(4))
		})

		Convey("length is live", func() {
			So(a.GetProperty(avm.PublicName("length")).AsNumber(), ShouldEqual, 3)
			So(a.SetProperty(avm.PublicName("length"), avm.Number(1)), ShouldBeNil)
			So(a.ToString(), ShouldEqual, "1")

			err := a.SetProperty(avm.PublicName("length"), avm.Number(-1))
			So(avm.CodeOf(err), ShouldEqual, avm.CodeArrayLengthNotPositiveInteger)
		})

		Convey("the all-ones u32 routes to the dynamic path", func() {
			So(a.SetProperty(avm.PublicName("4294967295"), avm.String("x")), ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(3))
			So(a.GetProperty(avm.PublicName("4294967295")).AsString(), ShouldEqual, "x")
		})

		Convey("non-index keys land on dynamic properties", func() {
			So(a.SetKey(avm.Number(-1), avm.String("neg")), ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(3))
			So(a.GetKey(avm.Number(-1)).AsString(), ShouldEqual, "neg")
			So(a.DeleteKey(avm.Number(-1)), ShouldBeTrue)
		})

		Convey("float keys that are whole numbers are indices", func() {
			So(a.SetKey(avm.Number(1), avm.String("one")), ShouldBeNil)
			So(a.Get(1).AsString(), ShouldEqual, "one")
		})
	})
}

func TestConstructorArguments(t *testing.T) {
	Convey("Given the constructor surface", t, func() {
		Convey("a single number is a length", func() {
			a, err := array.NewFromArgs(avm.Number(5))
			So(err, ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(5))
			So(a.NonEmptyCount(), ShouldEqual, 0)
		})

		Convey("a fractional or negative length throws", func() {
			_, err := array.NewFromArgs(avm.Number(1.5))
			So(avm.CodeOf(err), ShouldEqual, avm.CodeArrayLengthNotPositiveInteger)

			_, err = array.NewFromArgs(avm.Number(-3))
			So(avm.CodeOf(err), ShouldEqual, avm.CodeArrayLengthNotPositiveInteger)
		})

		Convey("multiple arguments are elements", func() {
			a, err := array.NewFromArgs(avm.Number(1), avm.String("x"))
			So(err, ShouldBeNil)
			So(snapshot(a), ShouldResemble, []string{"1", "x"})
		})

		Convey("a very large length starts with empty storage", func() {
			a, err := array.NewFromArgs(avm.Number(1 << 24))
			So(err, ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(1<<24))
		})
	})
}
