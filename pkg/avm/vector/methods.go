package vector

import (
	"strings"

	"github.com/flier/avmcore/pkg/avm"
)

// Push appends the given values and returns the new length.
func (v *Vector[T]) Push(values ...avm.Value) (uint32, error) {
	if v.fixed {
		return v.n, v.fixedError()
	}

	for _, val := range values {
		x, err := v.elem.Coerce(val)
		if err != nil {
			return v.n, err
		}
		v.grow(v.n + 1)
		v.data[v.n] = x
		v.n++
	}
	return v.n, nil
}

// Pop removes and returns the last element.
func (v *Vector[T]) Pop() (avm.Value, error) {
	if v.fixed {
		return avm.Undefined(), v.fixedError()
	}
	if v.n == 0 {
		return avm.Undefined(), nil
	}

	v.n--
	x := v.data[v.n]
	v.data[v.n] = v.elem.Zero
	return v.elem.Box(x), nil
}

// Shift removes and returns the first element.
func (v *Vector[T]) Shift() (avm.Value, error) {
	if v.fixed {
		return avm.Undefined(), v.fixedError()
	}
	if v.n == 0 {
		return avm.Undefined(), nil
	}

	x := v.data[0]
	copy(v.data[:v.n-1], v.data[1:v.n])
	v.n--
	v.data[v.n] = v.elem.Zero
	return v.elem.Box(x), nil
}

// Unshift inserts the given values at the front and returns the new
// length.
func (v *Vector[T]) Unshift(values ...avm.Value) (uint32, error) {
	if v.fixed {
		return v.n, v.fixedError()
	}
	if len(values) == 0 {
		return v.n, nil
	}

	elems := make([]T, len(values))
	for i, val := range values {
		x, err := v.elem.Coerce(val)
		if err != nil {
			return v.n, err
		}
		elems[i] = x
	}

	k := uint32(len(elems))
	v.grow(v.n + k)
	copy(v.data[k:v.n+k], v.data[:v.n])
	copy(v.data[:k], elems)
	v.n += k
	return v.n, nil
}

// Reverse reverses the vector in place and returns it.
func (v *Vector[T]) Reverse() *Vector[T] {
	for i, j := uint32(0), v.n; i+1 < j; i, j = i+1, j-1 {
		v.data[i], v.data[j-1] = v.data[j-1], v.data[i]
	}
	return v
}

// Concat returns a fresh vector holding this vector's elements followed by
// each argument's; container arguments contribute their elements
// individually, coerced to this vector's element type.
func (v *Vector[T]) Concat(args ...avm.Value) (*Vector[T], error) {
	out := Of(v.elem, v.data[:v.n]...)
	for _, arg := range args {
		if c, ok := avm.ContainerOf(arg); ok {
			n := c.Length()
			for i := uint32(0); i < n; i++ {
				x, err := v.elem.Coerce(c.ValueAt(i))
				if err != nil {
					return nil, err
				}
				out.grow(out.n + 1)
				out.data[out.n] = x
				out.n++
			}
			continue
		}

		x, err := v.elem.Coerce(arg)
		if err != nil {
			return nil, err
		}
		out.grow(out.n + 1)
		out.data[out.n] = x
		out.n++
	}
	return out, nil
}

// Slice returns a fresh vector of the elements in [start, end); negative
// bounds count back from the end.
func (v *Vector[T]) Slice(start, end int64) *Vector[T] {
	s := normalizeBound(start, v.n)
	e := normalizeBound(end, v.n)
	if e < s {
		e = s
	}
	return Of(v.elem, v.data[s:e]...)
}

// Splice removes deleteCount elements at start, inserts the given values
// and returns the removed elements. A fixed vector accepts only a splice
// that keeps the length unchanged.
func (v *Vector[T]) Splice(start, deleteCount int64, insert ...avm.Value) (*Vector[T], error) {
	s := normalizeBound(start, v.n)
	if deleteCount < 0 {
		deleteCount = 0
	}
	del := uint32(deleteCount)
	if del > v.n-s {
		del = v.n - s
	}

	if v.fixed && int(del) != len(insert) {
		return nil, v.fixedError()
	}

	elems := make([]T, len(insert))
	for i, val := range insert {
		x, err := v.elem.Coerce(val)
		if err != nil {
			return nil, err
		}
		elems[i] = x
	}

	removed := Of(v.elem, v.data[s:s+del]...)

	ins := uint32(len(elems))
	newLen := v.n - del + ins
	v.grow(newLen)
	if del != ins {
		copy(v.data[s+ins:newLen], v.data[s+del:v.n])
	}
	copy(v.data[s:s+ins], elems)
	for i := newLen; i < v.n; i++ {
		v.data[i] = v.elem.Zero
	}
	v.n = newLen
	return removed, nil
}

// IndexOf returns the first index at or after fromIndex whose element is
// strictly equal to search, or -1.
func (v *Vector[T]) IndexOf(search avm.Value, fromIndex int64) int64 {
	for i := normalizeBound(fromIndex, v.n); i < v.n; i++ {
		if avm.StrictEquals(v.elem.Box(v.data[i]), search) {
			return int64(i)
		}
	}
	return -1
}

// LastIndexOf returns the last index at or before fromIndex whose element
// is strictly equal to search, or -1.
func (v *Vector[T]) LastIndexOf(search avm.Value, fromIndex int64) int64 {
	from := fromIndex
	if from < 0 {
		from += int64(v.n)
	}
	if from >= int64(v.n) {
		from = int64(v.n) - 1
	}

	for i := from; i >= 0; i-- {
		if avm.StrictEquals(v.elem.Box(v.data[i]), search) {
			return i
		}
	}
	return -1
}

// Join concatenates the elements' string forms with sep.
func (v *Vector[T]) Join(sep string) string {
	var sb strings.Builder
	for i := uint32(0); i < v.n; i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(avm.ToString(v.elem.Box(v.data[i])))
	}
	return sb.String()
}

// ToString renders the vector as its comma-joined elements.
func (v *Vector[T]) ToString() string { return v.Join(",") }

func (v *Vector[T]) callbackArgs(i uint32) []avm.Value {
	return []avm.Value{v.elem.Box(v.data[i]), avm.UInt(i), v.Value()}
}

// Every calls the callback on each element until one returns false.
func (v *Vector[T]) Every(callback avm.Callable, thisObject avm.Value) (bool, error) {
	for i := uint32(0); i < v.n; i++ {
		r, err := avm.Invoke(callback, thisObject, v.callbackArgs(i))
		if err != nil {
			return false, err
		}
		if !avm.ToBoolean(r) {
			return false, nil
		}
	}
	return true, nil
}

// Some calls the callback on each element until one returns true.
func (v *Vector[T]) Some(callback avm.Callable, thisObject avm.Value) (bool, error) {
	for i := uint32(0); i < v.n; i++ {
		r, err := avm.Invoke(callback, thisObject, v.callbackArgs(i))
		if err != nil {
			return false, err
		}
		if avm.ToBoolean(r) {
			return true, nil
		}
	}
	return false, nil
}

// Filter returns a fresh vector of the elements the callback accepts.
func (v *Vector[T]) Filter(callback avm.Callable, thisObject avm.Value) (*Vector[T], error) {
	out := New(v.elem, 0, false)
	for i := uint32(0); i < v.n; i++ {
		r, err := avm.Invoke(callback, thisObject, v.callbackArgs(i))
		if err != nil {
			return nil, err
		}
		if avm.ToBoolean(r) {
			out.grow(out.n + 1)
			out.data[out.n] = v.data[i]
			out.n++
		}
	}
	return out, nil
}

// Map returns a fresh vector of the callback's results, coerced to the
// element type.
func (v *Vector[T]) Map(callback avm.Callable, thisObject avm.Value) (*Vector[T], error) {
	out := New(v.elem, v.n, false)
	for i := uint32(0); i < v.n; i++ {
		r, err := avm.Invoke(callback, thisObject, v.callbackArgs(i))
		if err != nil {
			return nil, err
		}
		x, err := v.elem.Coerce(r)
		if err != nil {
			return nil, err
		}
		out.data[i] = x
	}
	return out, nil
}

// ForEach calls the callback on each element.
func (v *Vector[T]) ForEach(callback avm.Callable, thisObject avm.Value) error {
	for i := uint32(0); i < v.n; i++ {
		if _, err := avm.Invoke(callback, thisObject, v.callbackArgs(i)); err != nil {
			return err
		}
	}
	return nil
}

func normalizeBound(i int64, length uint32) uint32 {
	if i < 0 {
		i += int64(length)
		if i < 0 {
			return 0
		}
	}
	if i > int64(length) {
		return length
	}
	return uint32(i)
}
