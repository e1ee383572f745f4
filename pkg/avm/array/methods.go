package array

import (
	"strings"

	"github.com/flier/avmcore/internal/debug"
	"github.com/flier/avmcore/pkg/avm"
)

// Push appends the given values at the tail and returns the new length.
// If the length would overflow, the argument list is truncated to fit.
func (a *Array) Push(values ...avm.Value) uint32 {
	room := uint64(maxLength) - uint64(a.length)
	if uint64(len(values)) > room {
		values = values[:room]
	}
	if len(values) == 0 {
		return a.length
	}

	if !a.isHash() {
		// Appending past a hole tail turns the holes into real cells;
		// that can push the load below the dense threshold.
		newTotal := int64(a.length) + int64(len(values))
		newLength := uint64(a.length) + uint64(len(values))
		if denseTooSparse(int64(a.nonEmpty)+int64(len(values)), newTotal, newLength) {
			a.toHash()
		}
	}

	if a.isHash() {
		for _, v := range values {
			a.hashSet(a.length, v.OrUndefined())
			a.length++
		}
		a.reshape()
		a.checkInvariants()
		return a.length
	}

	a.ensureDense(int(a.length) + len(values))
	for _, v := range values {
		a.values[a.length] = v.OrUndefined()
		a.length++
		a.nonEmpty++
	}
	a.totalCount = int32(a.length)
	a.checkInvariants()
	return a.length
}

// Pop removes and returns the last element. Popping a tail hole just
// shrinks the length.
func (a *Array) Pop() avm.Value {
	if a.length == 0 {
		return avm.Undefined()
	}

	last := a.length - 1

	if a.isHash() {
		v := a.hashGet(last)
		a.hashDelete(last)
		a.length = last
		a.reshape()
		a.checkInvariants()
		return v.OrUndefined()
	}

	if int64(last) >= int64(a.totalCount) {
		// tail hole: nothing stored there
		a.length = last
		a.checkInvariants()
		return avm.Undefined()
	}

	v := a.values[last]
	if !v.IsEmpty() {
		a.nonEmpty--
	}
	a.values[last] = avm.Empty()
	a.totalCount = int32(last)
	a.trimDenseTail()
	a.length = last
	a.shrinkDense()
	a.checkInvariants()
	return v.OrUndefined()
}

// Shift removes and returns the first element, sliding every key down by
// one.
func (a *Array) Shift() avm.Value {
	if a.length == 0 {
		return avm.Undefined()
	}

	if a.isHash() {
		v := a.hashGet(0)
		a.hashDelete(0)
		for i := int32(0); i < a.totalCount; i++ {
			if !a.values[i].IsEmpty() {
				a.links[i].key--
			}
		}
		a.resetChains()
		a.length--
		a.reshape()
		a.checkInvariants()
		return v.OrUndefined()
	}

	var v avm.Value
	if a.totalCount > 0 {
		v = a.values[0]
		copy(a.values[:a.totalCount], a.values[1:a.totalCount])
		a.values[a.totalCount-1] = avm.Empty()
		a.totalCount--
		if !v.IsEmpty() {
			a.nonEmpty--
		}
		a.trimDenseTail()
	}
	a.length--
	a.shrinkDense()
	a.reshape()
	a.checkInvariants()
	return v.OrUndefined()
}

// Unshift inserts the given values at the front and returns the new
// length. The length is clamped at the u32 limit; keys that would slide
// past it are discarded.
func (a *Array) Unshift(values ...avm.Value) uint32 {
	if len(values) == 0 {
		return a.length
	}

	k := uint32(len(values))
	newLength := uint64(a.length) + uint64(k)
	if newLength > maxLength {
		newLength = maxLength
	}

	if !a.isHash() && denseTooSparse(int64(a.nonEmpty)+int64(k), int64(a.totalCount)+int64(k), newLength) {
		a.toHash()
	}

	if a.isHash() {
		for i := int32(0); i < a.totalCount; i++ {
			if a.values[i].IsEmpty() {
				continue
			}
			shifted := uint64(a.links[i].key) + uint64(k)
			if shifted > uint64(avm.MaxIndex) {
				// slid past the addressable range
				a.values[i] = avm.Empty()
				a.nonEmpty--
				continue
			}
			a.links[i].key = uint32(shifted)
		}
		a.resetChains()
		for i, v := range values {
			a.hashSet(uint32(i), v.OrUndefined())
		}
		a.length = uint32(newLength)
		a.reshape()
		a.checkInvariants()
		return a.length
	}

	a.ensureDense(int(a.totalCount) + int(k))
	copy(a.values[k:a.totalCount+int32(k)], a.values[:a.totalCount])
	for i, v := range values {
		a.values[i] = v.OrUndefined()
	}
	a.totalCount += int32(k)
	a.nonEmpty += int32(k)
	a.length = uint32(newLength)
	a.checkInvariants()
	return a.length
}

// Reverse reverses the array in place and returns it.
func (a *Array) Reverse() *Array {
	if a.length == 0 {
		return a
	}

	if a.isHash() {
		for i := int32(0); i < a.totalCount; i++ {
			if !a.values[i].IsEmpty() {
				a.links[i].key = a.length - 1 - a.links[i].key
			}
		}
		a.resetChains()
		a.checkInvariants()
		return a
	}

	// The buffer must span the full logical length so tail holes swap
	// into the front as holes.
	a.ensureDense(int(a.length))
	for i, j := 0, int(a.length)-1; i < j; i, j = i+1, j-1 {
		a.values[i], a.values[j] = a.values[j], a.values[i]
	}
	a.totalCount = int32(a.length)
	a.trimDenseTail()
	a.reshape()
	a.checkInvariants()
	return a
}

// Slice returns a fresh dense Array holding the elements of [start, end).
// Negative bounds count back from the end. Holes are resolved through the
// prototype chain.
func (a *Array) Slice(start, end int64) *Array {
	s := normalizeBound(start, a.length)
	e := normalizeBound(end, a.length)
	if e < s {
		e = s
	}
	if e-s > maxDenseLength {
		e = s + maxDenseLength
	}

	out := make([]avm.Value, e-s)
	for i := range out {
		out[i] = a.ValueAt(uint32(s + uint64(i))).OrUndefined()
	}
	return NewOf(out...)
}

// Concat returns a fresh Array holding this array's elements followed by
// each argument; an argument that is itself an index-addressable container
// contributes its elements individually, anything else is appended as a
// single element. No deep flatten.
func (a *Array) Concat(args ...avm.Value) *Array {
	total := uint64(a.length)
	for _, arg := range args {
		if c, ok := avm.ContainerOf(arg); ok {
			total += uint64(c.Length())
		} else {
			total++
		}
	}
	if total > maxLength {
		total = maxLength
	}

	out := New()
	out.length = uint32(total)

	// the combined load factor decides the result representation up front
	if denseTooSparse(int64(a.nonEmpty)+int64(total-uint64(a.length)), int64(total), total) {
		out.values = make([]avm.Value, 0)
		out.toHash()
	} else if total <= maxPrealloc {
		out.values = make([]avm.Value, total)
	}

	pos := uint64(0)
	appendOne := func(v avm.Value) {
		if pos >= total {
			return
		}
		if !v.IsEmpty() {
			out.storeAt(uint32(pos), v)
		}
		pos++
	}

	for i := uint32(0); i < a.length; i++ {
		appendOne(a.Get(i))
	}
	for _, arg := range args {
		if c, ok := avm.ContainerOf(arg); ok {
			n := c.Length()
			for i := uint32(0); i < n; i++ {
				appendOne(c.ValueAt(i))
			}
		} else {
			appendOne(arg.OrUndefined())
		}
	}

	out.reshape()
	out.checkInvariants()
	return out
}

// storeAt writes a live value during bulk construction without the
// per-write transition checks of Set.
func (a *Array) storeAt(index uint32, v avm.Value) {
	if a.isHash() {
		a.hashSet(index, v)
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
}

// Splice removes deleteCount elements at start, inserts the given values
// in their place, and returns the removed elements as a fresh Array.
func (a *Array) Splice(start, deleteCount int64, insert ...avm.Value) *Array {
	s := normalizeBound(start, a.length)
	if deleteCount < 0 {
		deleteCount = 0
	}
	del := uint64(deleteCount)
	if del > uint64(a.length)-s {
		del = uint64(a.length) - s
	}
	ins := uint64(len(insert))

	removed := a.Slice(int64(s), int64(s+del))

	debug.Log(nil, "splice", "start=%d delete=%d insert=%d hash=%v", s, del, ins, a.isHash())

	if !a.isHash() && del == ins {
		// same-count overwrite runs in place with no key motion
		for i := uint64(0); i < ins; i++ {
			a.Set(uint32(s+i), insert[i].OrUndefined())
		}
		a.checkInvariants()
		return removed
	}

	delta := int64(ins) - int64(del)
	newLength := uint64(int64(a.length) + delta)
	if newLength > maxLength {
		newLength = maxLength
	}

	if a.isHash() {
		for i := int32(0); i < a.totalCount; i++ {
			if a.values[i].IsEmpty() {
				continue
			}
			key := uint64(a.links[i].key)
			switch {
			case key < s:
			case key < s+del:
				a.values[i] = avm.Empty()
				a.nonEmpty--
			case int64(key)+delta > int64(avm.MaxIndex):
				// slid past the addressable range
				a.values[i] = avm.Empty()
				a.nonEmpty--
			default:
				a.links[i].key = uint32(int64(key) + delta)
			}
		}
		a.resetChains()
		for i := uint64(0); i < ins; i++ {
			a.hashSet(uint32(s+i), insert[i].OrUndefined())
		}
		a.length = uint32(newLength)
		a.reshape()
		a.checkInvariants()
		return removed
	}

	// dense general case: drop the deleted span, then slide the tail
	oldTotal := int64(a.totalCount)
	newTotal := oldTotal + delta
	if newTotal < int64(s+ins) {
		newTotal = int64(s + ins)
	}
	if newTotal < 0 {
		newTotal = 0
	}
	a.ensureDense(int(newTotal))

	if tail := oldTotal - int64(s+del); tail > 0 {
		copy(a.values[int64(s)+int64(ins):], a.values[s+del:oldTotal])
	}
	for i := newTotal; i < oldTotal; i++ {
		a.values[i] = avm.Empty()
	}
	for i := uint64(0); i < ins; i++ {
		a.values[s+i] = insert[i].OrUndefined()
	}

	a.totalCount = int32(newTotal)
	a.trimDenseTail()
	a.nonEmpty = 0
	for i := int32(0); i < a.totalCount; i++ {
		if !a.values[i].IsEmpty() {
			a.nonEmpty++
		}
	}
	a.length = uint32(newLength)
	a.shrinkDense()
	a.reshape()
	a.checkInvariants()
	return removed
}

// IndexOf returns the first index at or after fromIndex whose value is
// strictly equal to search, or -1.
func (a *Array) IndexOf(search avm.Value, fromIndex int64) int64 {
	from := normalizeBound(fromIndex, a.length)
	for i := from; i < uint64(a.length); i++ {
		if avm.StrictEquals(a.ValueAt(uint32(i)), search) {
			return int64(i)
		}
	}
	return -1
}

// LastIndexOf returns the last index at or before fromIndex whose value is
// strictly equal to search, or -1.
func (a *Array) LastIndexOf(search avm.Value, fromIndex int64) int64 {
	if a.length == 0 {
		return -1
	}

	from := fromIndex
	if from < 0 {
		from += int64(a.length)
	}
	if from >= int64(a.length) {
		from = int64(a.length) - 1
	}

	for i := from; i >= 0; i-- {
		if avm.StrictEquals(a.ValueAt(uint32(i)), search) {
			return i
		}
	}
	return -1
}

// Join concatenates the elements' string forms with sep. Holes, null and
// undefined render as the empty string.
func (a *Array) Join(sep string) string {
	var sb strings.Builder
	for i := uint32(0); i < a.length; i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		v := a.ValueAt(i)
		if v.IsNullOrUndefined() {
			continue
		}
		sb.WriteString(avm.ToString(v))
	}
	return sb.String()
}

// ToString renders the array as its comma-joined elements.
func (a *Array) ToString() string { return a.Join(",") }

// ToLocaleString renders the array joining each element's toLocaleString
// form.
func (a *Array) ToLocaleString() string {
	var sb strings.Builder
	for i := uint32(0); i < a.length; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		v := a.ValueAt(i)
		if v.IsNullOrUndefined() {
			continue
		}
		sb.WriteString(avm.ToLocaleString(v))
	}
	return sb.String()
}

// StringValue implements the host string coercion.
func (a *Array) StringValue() string { return a.ToString() }

// normalizeBound maps a possibly-negative relative bound onto [0, length].
func normalizeBound(i int64, length uint32) uint64 {
	if i < 0 {
		i += int64(length)
		if i < 0 {
			return 0
		}
	}
	if i > int64(length) {
		return uint64(length)
	}
	return uint64(i)
}
