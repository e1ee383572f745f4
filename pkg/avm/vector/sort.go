package vector

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/avm/array"
	"github.com/flier/avmcore/pkg/avm/sortkit"
)

// Sort sorts the vector in place.
//
// A function argument is used as the comparator; an integer argument is
// interpreted as the Array sort flags, except RETURNINDEXEDARRAY, which is
// ignored. The comparator runs through the safe sort kernel: an
// inconsistent comparator yields some permutation, never a fault.
func (v *Vector[T]) Sort(args ...avm.Value) (avm.Value, error) {
	var comparator avm.Callable
	var flags int32

	if len(args) > 0 {
		if c := args[0].AsCallable(); c != nil {
			comparator = c
			if len(args) > 1 {
				flags = avm.ToInt32(args[1])
			}
			flags &^= array.CaseInsensitive | array.Numeric
		} else {
			flags = avm.ToInt32(args[0])
		}
	}
	flags &^= array.ReturnIndexedArray

	cmp := v.comparator(comparator, flags)

	data := v.data[:v.n]
	if flags&array.UniqueSort != 0 {
		// sort a scratch copy so a duplicate leaves the vector untouched
		scratch := make([]T, len(data))
		copy(scratch, data)
		if err := sortkit.Sort(scratch, cmp); err != nil {
			return avm.Undefined(), err
		}
		for i := 1; i < len(scratch); i++ {
			if c, err := cmp(scratch[i-1], scratch[i]); err != nil {
				return avm.Undefined(), err
			} else if c == 0 {
				return avm.Number(0), nil
			}
		}
		copy(data, scratch)
	} else if err := sortkit.Sort(data, cmp); err != nil {
		return avm.Undefined(), err
	}

	if flags&array.Descending != 0 {
		v.Reverse()
	}
	return v.Value(), nil
}

func (v *Vector[T]) comparator(comparator avm.Callable, flags int32) func(x, y T) (int, error) {
	switch {
	case comparator != nil:
		return func(x, y T) (int, error) {
			r, err := avm.Invoke(comparator, avm.Null(), []avm.Value{v.elem.Box(x), v.elem.Box(y)})
			if err != nil {
				return 0, err
			}
			n := avm.ToNumber(r)
			switch {
			case n < 0:
				return -1, nil
			case n > 0:
				return 1, nil
			default:
				return 0, nil
			}
		}

	case flags&array.Numeric != 0:
		return func(x, y T) (int, error) {
			nx, ny := avm.ToNumber(v.elem.Box(x)), avm.ToNumber(v.elem.Box(y))
			switch {
			case nx < ny:
				return -1, nil
			case nx > ny:
				return 1, nil
			case nx == ny:
				return 0, nil
			case nx == nx: // ny is NaN
				return -1, nil
			case ny == ny: // nx is NaN
				return 1, nil
			default:
				return 0, nil
			}
		}

	default:
		fold := func(s string) string { return s }
		if flags&array.CaseInsensitive != 0 {
			fold = cases.Fold().String
		}
		return func(x, y T) (int, error) {
			return strings.Compare(fold(avm.ToString(v.elem.Box(x))), fold(avm.ToString(v.elem.Box(y)))), nil
		}
	}
}
