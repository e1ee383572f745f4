package array_test

import (
	"math/rand"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/avm/array"
)

func TestSortFlags(t *testing.T) {
	Convey("Given default and flagged sorts", t, func() {
		Convey("the default sort is lexicographic on string forms", func() {
			a := numbers(10, 9, 1)
			r, err := a.Sort()
			So(err, ShouldBeNil)
			So(avm.StrictEquals(r, a.Value()), ShouldBeTrue)
			So(a.ToString(), ShouldEqual, "1,10,9")
		})

		Convey("NUMERIC sorts on numeric keys", func() {
			a := numbers(10, 9, 1)
			_, err := a.Sort(avm.Int(array.Numeric))
			So(err, ShouldBeNil)
			So(a.ToString(), ShouldEqual, "1,9,10")
		})

		Convey("DESCENDING reverses the sorted prefix", func() {
			a := numbers(2, 3, 1)
			_, err := a.Sort(avm.Int(array.Numeric | array.Descending))
			So(err, ShouldBeNil)
			So(a.ToString(), ShouldEqual, "3,2,1")
		})

		Convey("CASEINSENSITIVE folds string keys", func() {
			a := array.NewOf(avm.String("b"), avm.String("A"), avm.String("C"))
			_, err := a.Sort(avm.Int(array.CaseInsensitive))
			So(err, ShouldBeNil)
			So(a.ToString(), ShouldEqual, "A,b,C")
		})

		Convey("undefineds sort after values, holes after undefineds", func() {
			a := array.NewOf(avm.String("b"), avm.Undefined(), avm.String("a"))
			a.SetLength(5)

			_, err := a.Sort()
			So(err, ShouldBeNil)
			So(a.Get(0).AsString(), ShouldEqual, "a")
			So(a.Get(1).AsString(), ShouldEqual, "b")
			So(a.Get(2).IsUndefined(), ShouldBeTrue)
			So(a.Has(3), ShouldBeFalse)
			So(a.Has(4), ShouldBeFalse)
			So(a.Length(), ShouldEqual, uint32(5))
		})
	})
}

func TestSortComparator(t *testing.T) {
	Convey("Given a comparator sort", t, func() {
		byNumber := avm.Func(func(_ avm.Value, args []avm.Value) (avm.Value, error) {
			return avm.Number(args[0].AsNumber() - args[1].AsNumber()), nil
		})

		Convey("the comparator drives the order", func() {
			a := numbers(3, 1, 2)
			_, err := a.Sort(avm.CallableOf(byNumber))
			So(err, ShouldBeNil)
			So(a.ToString(), ShouldEqual, "1,2,3")
		})

		Convey("a comparator error propagates and leaves the array valid", func() {
			boom := avm.NewError(avm.CodeUndefinedReference, "boom")
			bad := avm.Func(func(avm.Value, []avm.Value) (avm.Value, error) {
				return avm.Undefined(), boom
			})

			a := numbers(3, 1, 2)
			_, err := a.Sort(avm.CallableOf(bad))
			So(err, ShouldEqual, boom)
			So(a.Length(), ShouldEqual, uint32(3))
			So(a.NonEmptyCount(), ShouldEqual, 3)
		})

		Convey("an ill-behaved comparator cannot corrupt the array", func() {
			rng := rand.New(rand.NewSource(7))
			chaos := avm.Func(func(avm.Value, []avm.Value) (avm.Value, error) {
				return avm.Number(float64(rng.Intn(3) - 1)), nil
			})

			a := numbers(3, 1, 2)
			_, err := a.Sort(avm.CallableOf(chaos))
			So(err, ShouldBeNil)
			So(a.Length(), ShouldEqual, uint32(3))

			// the original elements survive as a multiset
			var got []float64
			for i := uint32(0); i < a.Length(); i++ {
				got = append(got, a.Get(i).AsNumber())
			}
			sort.Float64s(got)
			So(got, ShouldResemble, []float64{1, 2, 3})
		})
	})
}

func TestSortUnique(t *testing.T) {
	Convey("Given UNIQUESORT", t, func() {
		Convey("a duplicate returns the numeric 0 and leaves the array untouched", func() {
			a := numbers(2, 1, 2)
			r, err := a.Sort(avm.Int(array.UniqueSort | array.Numeric))
			So(err, ShouldBeNil)
			So(r.AsNumber(), ShouldEqual, 0)
			So(a.ToString(), ShouldEqual, "2,1,2")
		})

		Convey("all-distinct elements sort normally", func() {
			a := numbers(2, 1, 3)
			r, err := a.Sort(avm.Int(array.UniqueSort | array.Numeric))
			So(err, ShouldBeNil)
			So(avm.StrictEquals(r, a.Value()), ShouldBeTrue)
			So(a.ToString(), ShouldEqual, "1,2,3")
		})
	})
}

func TestSortReturnIndexedArray(t *testing.T) {
	Convey("Given RETURNINDEXEDARRAY", t, func() {
		a := numbers(30, 10, 20)
		r, err := a.Sort(avm.Int(array.ReturnIndexedArray | array.Numeric))
		So(err, ShouldBeNil)

		Convey("the source is untouched", func() {
			So(a.ToString(), ShouldEqual, "30,10,20")
		})

		Convey("the result is the sorting permutation of [0, length)", func() {
			perm, ok := avm.ContainerOf(r)
			So(ok, ShouldBeTrue)
			So(perm.Length(), ShouldEqual, uint32(3))

			got := make([]float64, 3)
			seen := map[float64]bool{}
			for i := uint32(0); i < 3; i++ {
				got[i] = perm.ValueAt(i).AsNumber()
				seen[got[i]] = true
			}
			So(got, ShouldResemble, []float64{1, 2, 0})
			So(len(seen), ShouldEqual, 3)
		})
	})
}

func TestSortOn(t *testing.T) {
	obj := func(pairs map[string]avm.Value) avm.Value {
		return avm.ObjectOf(avm.NewObjectWith(pairs))
	}

	Convey("Given records with k and n fields", t, func() {
		a := array.NewOf(
			obj(map[string]avm.Value{"k": avm.Number(2), "n": avm.String("bb")}),
			obj(map[string]avm.Value{"k": avm.Number(1), "n": avm.String("cc")}),
			obj(map[string]avm.Value{"k": avm.Number(2), "n": avm.String("aa")}),
		)

		readK := func(i uint32) float64 {
			o := a.Get(i).AsObject()
			v, _ := o.TryGetProperty(avm.PublicName("k"))
			return v.AsNumber()
		}
		readN := func(i uint32) string {
			o := a.Get(i).AsObject()
			v, _ := o.TryGetProperty(avm.PublicName("n"))
			return v.AsString()
		}

		Convey("a single numeric key orders the records", func() {
			_, err := a.SortOn(avm.String("k"), avm.Int(array.Numeric))
			So(err, ShouldBeNil)
			So(readK(0), ShouldEqual, 1)
			So(readK(1), ShouldEqual, 2)
			So(readK(2), ShouldEqual, 2)
		})

		Convey("two keys break ties with the second", func() {
			names := array.NewOf(avm.String("k"), avm.String("n"))
			opts := array.NewOf(avm.Int(array.Numeric), avm.Int(0))

			_, err := a.SortOn(names.Value(), opts.Value())
			So(err, ShouldBeNil)
			So(readK(0), ShouldEqual, 1)
			So(readN(1), ShouldEqual, "aa")
			So(readN(2), ShouldEqual, "bb")
		})

		Convey("per-key DESCENDING flips only its key", func() {
			names := array.NewOf(avm.String("k"), avm.String("n"))
			opts := array.NewOf(avm.Int(array.Numeric|array.Descending), avm.Int(0))

			_, err := a.SortOn(names.Value(), opts.Value())
			So(err, ShouldBeNil)
			So(readK(0), ShouldEqual, 2)
			So(readN(0), ShouldEqual, "aa")
			So(readN(1), ShouldEqual, "bb")
			So(readK(2), ShouldEqual, 1)
		})

		Convey("a mismatched options array falls back to all-zero options", func() {
			names := array.NewOf(avm.String("k"), avm.String("n"))
			opts := array.NewOf(avm.Int(array.Numeric))

			_, err := a.SortOn(names.Value(), opts.Value())
			So(err, ShouldBeNil)
			// string ordering on k: "1" < "2"
			So(readK(0), ShouldEqual, 1)
		})
	})

	Convey("Given records with duplicate keys", t, func() {
		a := array.NewOf(
			obj(map[string]avm.Value{"k": avm.Number(1)}),
			obj(map[string]avm.Value{"k": avm.Number(2)}),
			obj(map[string]avm.Value{"k": avm.Number(1)}),
		)
		before := a.Get(0)

		Convey("UNIQUESORT|NUMERIC returns the number 0 and leaves the array untouched", func() {
			r, err := a.SortOn(avm.String("k"), avm.Int(array.UniqueSort|array.Numeric))
			So(err, ShouldBeNil)
			So(r.IsNumber(), ShouldBeTrue)
			So(r.AsNumber(), ShouldEqual, 0)
			So(avm.StrictEquals(a.Get(0), before), ShouldBeTrue)
		})
	})

	Convey("Given records holding nulls", t, func() {
		a := array.NewOf(
			obj(map[string]avm.Value{"k": avm.Number(5)}),
			avm.Null(),
			obj(map[string]avm.Value{"k": avm.Number(1)}),
		)

		Convey("nulls join the undefined block at the tail", func() {
			_, err := a.SortOn(avm.String("k"), avm.Int(array.Numeric))
			So(err, ShouldBeNil)
			So(a.Get(2).IsNull(), ShouldBeTrue)
		})
	})
}
