// Package array implements the AS3 Array: a sparse, index-addressable
// container with adaptive storage.
//
// Storage is either dense (a contiguous cell buffer, key == slot) or hash
// (an open-chained index table overlaid on the same cell buffer, with a
// sidecar link array). Transitions between the two are driven by the load
// factor relative to the logical length; a dense-to-hash transition reuses
// the values buffer, so it costs only the sidecar allocation.
package array

import (
	"math"

	"github.com/flier/avmcore/pkg/avm"
)

// Array is an AS3 Array instance.
type Array struct {
	values       []avm.Value
	links        []hashLink // nil in dense mode
	length       uint32
	nonEmpty     int32
	totalCount   int32
	freelistHead int32

	proto avm.Object
	dyn   *avm.DynamicObject // out-of-band string-keyed properties
}

// New creates an empty Array.
func New() *Array {
	return &Array{freelistHead: noSlot}
}

// NewWithLength creates an Array of the given logical length with all
// slots empty. Preallocation is capped; longer arrays start with empty
// storage and grow on demand.
func NewWithLength(length uint32) *Array {
	a := New()
	a.length = length
	if int64(length) > maxDenseLength {
		a.links = []hashLink{}
		return a
	}
	if n := int(length); n <= maxPrealloc {
		a.values = make([]avm.Value, n)
	}
	return a
}

// NewFromArgs creates an Array from constructor arguments: a single
// numeric argument is a length, anything else is an element list.
func NewFromArgs(args ...avm.Value) (*Array, error) {
	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].AsNumber()
		if n < 0 || n != math.Trunc(n) || n > maxLength {
			return nil, avm.NewError(avm.CodeArrayLengthNotPositiveInteger,
				"array length %v is not a positive integer", n)
		}
		return NewWithLength(uint32(n)), nil
	}
	return NewOf(args...), nil
}

// NewOf creates a dense Array holding the given elements.
func NewOf(elems ...avm.Value) *Array {
	a := New()
	a.values = make([]avm.Value, len(elems))
	copy(a.values, elems)
	a.length = uint32(len(elems))
	a.totalCount = int32(len(elems))
	for _, v := range elems {
		if !v.IsEmpty() {
			a.nonEmpty++
		}
	}
	a.trimDenseTail()
	return a
}

// SetProto sets the prototype used for hole resolution and the dynamic
// property chain.
func (a *Array) SetProto(proto avm.Object) { a.proto = proto }

// Length returns the logical length.
func (a *Array) Length() uint32 { return a.length }

// Get returns the cell at index, or Empty for a hole or an out-of-range
// index. It never faults on any u32.
func (a *Array) Get(index uint32) avm.Value {
	if index >= a.length {
		return avm.Empty()
	}

	if a.isHash() {
		return a.hashGet(index)
	}

	if int64(index) >= int64(a.totalCount) {
		return avm.Empty()
	}
	return a.values[index]
}

// Has returns true iff the cell at index is not a hole.
func (a *Array) Has(index uint32) bool {
	return !a.Get(index).IsEmpty()
}

// ValueAt returns the hole-resolved value at index: a hole reads through
// the prototype chain under the index's string form, surfacing undefined
// when nothing is found.
func (a *Array) ValueAt(index uint32) avm.Value {
	if v := a.Get(index); !v.IsEmpty() {
		return v
	}
	return avm.GetPropertyChain(a.proto, avm.PublicName(avm.IndexToString(index)))
}

// Set assigns the cell at index and extends the length to cover it.
//
// The reserved all-ones index is not a valid array index; callers route it
// to the string-keyed property path before reaching storage.
func (a *Array) Set(index uint32, v avm.Value) {
	if index > avm.MaxIndex {
		return
	}
	if v.IsEmpty() {
		v = avm.Undefined()
	}

	newLength := a.length
	if index+1 > newLength {
		newLength = index + 1
	}

	if a.isHash() {
		a.hashSet(index, v)
		a.length = newLength
		a.reshape()
		a.checkInvariants()
		return
	}

	// Dense path. Writing far past the tail can force a representation
	// switch before the write.
	newTotal := int64(a.totalCount)
	if int64(index) >= newTotal {
		newTotal = int64(index) + 1
	}
	if denseTooSparse(int64(a.nonEmpty)+1, newTotal, uint64(newLength)) {
		a.toHash()
		a.hashSet(index, v)
		a.length = newLength
		a.checkInvariants()
		return
	}

	a.ensureDense(int(index) + 1)
	if a.values[index].IsEmpty() {
		a.nonEmpty++
	}
	a.values[index] = v
	if int32(index) >= a.totalCount {
		a.totalCount = int32(index) + 1
	}
	a.length = newLength
	a.checkInvariants()
}

// Delete clears the cell at index, leaving a hole. The length does not
// shrink. Returns true if a live cell was removed.
func (a *Array) Delete(index uint32) bool {
	if index >= a.length {
		return false
	}

	if a.isHash() {
		if !a.hashDelete(index) {
			return false
		}
		a.checkInvariants()
		return true
	}

	if int64(index) >= int64(a.totalCount) || a.values[index].IsEmpty() {
		return false
	}

	a.values[index] = avm.Empty()
	a.nonEmpty--
	if int64(index) == int64(a.totalCount)-1 {
		a.trimDenseTail()
	}
	a.shrinkDense()
	a.reshape()
	a.checkInvariants()
	return true
}

// SetLength resizes the logical length, deleting every cell at or past the
// new length when shrinking.
func (a *Array) SetLength(n uint32) {
	switch {
	case n < a.length:
		if a.isHash() {
			for i := int32(0); i < a.totalCount; i++ {
				if !a.values[i].IsEmpty() && a.links[i].key >= n {
					a.values[i] = avm.Empty()
					a.nonEmpty--
				}
			}
			a.resetChains()
		} else {
			if int64(n) < int64(a.totalCount) {
				for i := int32(n); i < a.totalCount; i++ {
					if !a.values[i].IsEmpty() {
						a.values[i] = avm.Empty()
						a.nonEmpty--
					}
				}
				a.totalCount = int32(n)
				a.trimDenseTail()
				a.shrinkDense()
			}
		}
	case n > a.length:
		// growing just widens the hole tail
	}

	a.length = n
	a.reshape()
	a.checkInvariants()
}

// Clone returns a value-equal Array with independent storage.
func (a *Array) Clone() *Array {
	c := *a
	c.values = make([]avm.Value, len(a.values))
	copy(c.values, a.values)
	if a.links != nil {
		c.links = make([]hashLink, len(a.links))
		copy(c.links, a.links)
	}
	c.dyn = nil
	return &c
}

// NonEmptyCount returns the number of live cells.
func (a *Array) NonEmptyCount() int { return int(a.nonEmpty) }

// IsHashStorage reports whether the array currently uses hash storage.
func (a *Array) IsHashStorage() bool { return a.isHash() }

// Value boxes this array as a host value.
func (a *Array) Value() avm.Value { return avm.ObjectOf(a) }
