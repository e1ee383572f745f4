package array

import (
	"github.com/flier/avmcore/pkg/avm"
)

// callbackArgs assembles the (value, index, array) triple passed to the
// iteration callbacks.
func (a *Array) callbackArgs(i uint32) []avm.Value {
	return []avm.Value{a.ValueAt(i), avm.UInt(i), a.Value()}
}

// Every calls the callback on each element until one returns false.
//
// The length is snapshotted at entry; a callback that mutates the array
// yields unspecified but memory-safe results. A callback error propagates
// and leaves the array valid.
func (a *Array) Every(callback avm.Callable, thisObject avm.Value) (bool, error) {
	n := a.length
	for i := uint32(0); i < n; i++ {
		r, err := avm.Invoke(callback, thisObject, a.callbackArgs(i))
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
func (a *Array) Some(callback avm.Callable, thisObject avm.Value) (bool, error) {
	n := a.length
	for i := uint32(0); i < n; i++ {
		r, err := avm.Invoke(callback, thisObject, a.callbackArgs(i))
		if err != nil {
			return false, err
		}
		if avm.ToBoolean(r) {
			return true, nil
		}
	}
	return false, nil
}

// Filter returns a fresh dense Array of the elements the callback accepts.
func (a *Array) Filter(callback avm.Callable, thisObject avm.Value) (*Array, error) {
	out := New()
	n := a.length
	for i := uint32(0); i < n; i++ {
		v := a.ValueAt(i)
		r, err := avm.Invoke(callback, thisObject, []avm.Value{v, avm.UInt(i), a.Value()})
		if err != nil {
			return nil, err
		}
		if avm.ToBoolean(r) {
			out.Push(v)
		}
	}
	return out, nil
}

// Map returns a fresh dense Array of the callback's results.
func (a *Array) Map(callback avm.Callable, thisObject avm.Value) (*Array, error) {
	n := a.length
	out := NewWithLength(n)
	for i := uint32(0); i < n; i++ {
		r, err := avm.Invoke(callback, thisObject, a.callbackArgs(i))
		if err != nil {
			return nil, err
		}
		out.Set(i, r)
	}
	return out, nil
}

// ForEach calls the callback on each element.
func (a *Array) ForEach(callback avm.Callable, thisObject avm.Value) error {
	n := a.length
	for i := uint32(0); i < n; i++ {
		if _, err := avm.Invoke(callback, thisObject, a.callbackArgs(i)); err != nil {
			return err
		}
	}
	return nil
}

// Enumeration surface. Iteration order is: live dense slots by ascending
// index, live hash slots in storage order, then the host's dynamic
// properties in insertion order. Positions are one-based; 0 starts a walk
// and 0 ends it.

// NextIndex returns the next live position after prev.
func (a *Array) NextIndex(prev int) int {
	slots := int(a.totalCount)
	i := prev // prev is one-based; the next candidate slot is prev's cell + 1
	for ; i < slots; i++ {
		if !a.values[i].IsEmpty() {
			return i + 1
		}
	}

	if a.dyn != nil {
		di := i - slots
		if di < len(a.dyn.OwnKeys()) {
			return i + 1
		}
	}
	return 0
}

// NameAtIndex returns the key at the one-based position i.
func (a *Array) NameAtIndex(i int) avm.Value {
	if i <= 0 {
		return avm.Undefined()
	}

	slot := i - 1
	if slot < int(a.totalCount) {
		if a.isHash() {
			return avm.UInt(a.links[slot].key)
		}
		return avm.UInt(uint32(slot))
	}

	if a.dyn != nil {
		keys := a.dyn.OwnKeys()
		if di := slot - int(a.totalCount); di < len(keys) {
			return avm.String(keys[di])
		}
	}
	return avm.Undefined()
}

// ValueAtIndex returns the value at the one-based position i.
func (a *Array) ValueAtIndex(i int) avm.Value {
	if i <= 0 {
		return avm.Undefined()
	}

	slot := i - 1
	if slot < int(a.totalCount) {
		return a.values[slot].OrUndefined()
	}

	if a.dyn != nil {
		keys := a.dyn.OwnKeys()
		if di := slot - int(a.totalCount); di < len(keys) {
			v, _ := a.dyn.TryGetProperty(avm.PublicName(keys[di]))
			return v
		}
	}
	return avm.Undefined()
}
