// Package vector implements the AS3 Vector: a dense, mono-typed array
// with strict range checking and an optionally locked length.
//
// Element typing runs through an [Elem] descriptor, which carries the
// per-type coercion applied to every foreign value crossing the surface.
package vector

import (
	"github.com/flier/avmcore/pkg/avm"
)

// Elem describes the element type of a Vector.
type Elem[T any] struct {
	// Coerce converts a host value into an element. Numeric and string
	// targets cannot fail; reference targets report CastError.
	Coerce func(avm.Value) (T, error)

	// Box converts an element back into a host value.
	Box func(T) avm.Value

	// Zero is the value uninitialised cells read as.
	Zero T
}

// Vector is an AS3 Vector instance.
//
// Cells in [0, Length) are always initialised: growing fills new cells
// with the element type's zero value.
type Vector[T any] struct {
	data  []T
	n     uint32
	fixed bool
	elem  Elem[T]
}

// New creates a Vector of the given length.
func New[T any](elem Elem[T], length uint32, fixed bool) *Vector[T] {
	v := &Vector[T]{elem: elem, fixed: fixed}
	v.grow(length)
	v.n = length
	return v
}

// Of creates an unfixed Vector holding the given elements.
func Of[T any](elem Elem[T], elems ...T) *Vector[T] {
	v := New(elem, 0, false)
	v.data = append(v.data, elems...)
	v.n = uint32(len(elems))
	return v
}

// Length returns the logical length.
func (v *Vector[T]) Length() uint32 { return v.n }

// Fixed reports whether the length is locked.
func (v *Vector[T]) Fixed() bool { return v.fixed }

// SetFixed locks or unlocks the length.
func (v *Vector[T]) SetFixed(fixed bool) { v.fixed = fixed }

// Get returns the element at index i.
func (v *Vector[T]) Get(i uint32) (T, error) {
	if i >= v.n {
		return v.elem.Zero, v.rangeError(i)
	}
	return v.data[i], nil
}

// Set assigns the element at index i, coercing the value to the element
// type. Assigning one past the end appends when the length is not fixed.
func (v *Vector[T]) Set(i uint32, val avm.Value) error {
	x, err := v.elem.Coerce(val)
	if err != nil {
		return err
	}
	return v.SetElem(i, x)
}

// SetElem assigns an already-typed element at index i.
func (v *Vector[T]) SetElem(i uint32, x T) error {
	switch {
	case i < v.n:
		v.data[i] = x
		return nil
	case i == v.n:
		if v.fixed {
			return v.fixedError()
		}
		v.grow(v.n + 1)
		v.data[i] = x
		v.n++
		return nil
	default:
		return v.rangeError(i)
	}
}

// Delete is a no-op on vectors; cells cannot become holes.
func (v *Vector[T]) Delete(uint32) bool { return false }

// SetLength resizes the vector. New cells read as the element zero value.
func (v *Vector[T]) SetLength(n uint32) error {
	if v.fixed {
		return v.fixedError()
	}

	if n > v.n {
		v.grow(n)
	} else {
		// release the tail so references drop
		for i := n; i < v.n; i++ {
			v.data[i] = v.elem.Zero
		}
	}
	v.n = n
	return nil
}

// ValueAt returns the boxed element at i, or undefined out of range.
// Implements the container walking interface.
func (v *Vector[T]) ValueAt(i uint32) avm.Value {
	if i >= v.n {
		return avm.Undefined()
	}
	return v.elem.Box(v.data[i])
}

// Value boxes this vector as a host value.
func (v *Vector[T]) Value() avm.Value { return avm.ObjectOf(v) }

// grow extends the backing buffer to cover n cells, doubling geometrically
// and zero-filling every new cell.
func (v *Vector[T]) grow(n uint32) {
	if int(n) <= len(v.data) {
		if int(n) > int(v.n) {
			for i := v.n; i < n; i++ {
				v.data[i] = v.elem.Zero
			}
		}
		return
	}

	newCap := len(v.data) * 2
	if newCap < int(n) {
		newCap = int(n)
	}
	if newCap < 4 {
		newCap = 4
	}

	data := make([]T, newCap)
	copy(data, v.data[:v.n])
	for i := int(v.n); i < newCap; i++ {
		data[i] = v.elem.Zero
	}
	v.data = data
}

func (v *Vector[T]) rangeError(i uint32) error {
	return avm.NewError(avm.CodeVectorIndexOutOfRange,
		"index %d is out of range for a vector of length %d", i, v.n)
}

func (v *Vector[T]) fixedError() error {
	return avm.NewError(avm.CodeVectorFixedLengthChange,
		"cannot change the length of a fixed vector")
}

// avm.Object implementation: index-shaped public names address elements,
// the public name "length" reads and sets the length, and everything else
// misses (vectors are sealed).

func (v *Vector[T]) HasProperty(name avm.Name) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return i.Unwrap() < v.n
	}
	return name.IsPublic() && name.Local == "length"
}

func (v *Vector[T]) TryGetProperty(name avm.Name) (avm.Value, bool) {
	if i := avm.IndexOfName(name); i.IsSome() {
		if i.Unwrap() < v.n {
			return v.elem.Box(v.data[i.Unwrap()]), true
		}
		return avm.Undefined(), false
	}
	if name.IsPublic() && name.Local == "length" {
		return avm.UInt(v.n), true
	}
	return avm.Undefined(), false
}

func (v *Vector[T]) TrySetProperty(name avm.Name, val avm.Value) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return v.Set(i.Unwrap(), val) == nil
	}
	if name.IsPublic() && name.Local == "length" {
		return v.SetLength(avm.ToUint32(val)) == nil
	}
	return false
}

func (v *Vector[T]) DeleteProperty(avm.Name) bool { return false }

func (v *Vector[T]) Proto() avm.Object { return nil }

// StringValue implements the host string coercion.
func (v *Vector[T]) StringValue() string { return v.Join(",") }

// Enumeration surface. Every cell in [0, Length) is live, so iteration is
// a plain ascending walk over one-based positions.

// NextIndex returns the next live position after prev, or 0 at the end.
func (v *Vector[T]) NextIndex(prev int) int {
	if prev < int(v.n) {
		return prev + 1
	}
	return 0
}

// NameAtIndex returns the key at the one-based position i.
func (v *Vector[T]) NameAtIndex(i int) avm.Value {
	if i <= 0 || i > int(v.n) {
		return avm.Undefined()
	}
	return avm.UInt(uint32(i - 1))
}

// ValueAtIndex returns the value at the one-based position i.
func (v *Vector[T]) ValueAtIndex(i int) avm.Value {
	if i <= 0 || i > int(v.n) {
		return avm.Undefined()
	}
	return v.elem.Box(v.data[i-1])
}
