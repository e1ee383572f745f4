package array

import (
	"math"

	"github.com/flier/avmcore/internal/debug"
	"github.com/flier/avmcore/pkg/avm"
)

// Storage tunables. Load factors are numerators over loadDenom, measured
// against the logical length.
const (
	denseSmall      = 16      // below this totalCount, always remain dense
	denseToHashLoad = 32      // of 64: dense is too sparse below this load
	hashToDenseLoad = 36      // of 64: hash converts back to dense above this load
	loadDenom       = 64
	maxPrealloc     = 1 << 20 // cap on constructor preallocation
	maxDenseLength  = math.MaxInt32
	maxLength       = math.MaxUint32
)

const noSlot = -1

// hashLink is the sidecar chain record paired with a value slot in hash
// mode. Slot i's bucket membership threads through next; the chain of the
// bucket whose number equals i is anchored at chainHead.
type hashLink struct {
	key       uint32
	next      int32
	chainHead int32
}

func (a *Array) isHash() bool { return a.links != nil }

func (a *Array) bucket(key uint32) int32 {
	return int32((key & 0x7FFFFFFF) % uint32(len(a.links)))
}

// hashFind returns the slot holding key and its chain predecessor, or
// noSlot.
func (a *Array) hashFind(key uint32) (slot, prev int32) {
	if len(a.links) == 0 {
		return noSlot, noSlot
	}

	prev = noSlot
	for slot = a.links[a.bucket(key)].chainHead; slot != noSlot; slot = a.links[slot].next {
		if a.links[slot].key == key {
			return
		}
		prev = slot
	}
	return noSlot, noSlot
}

func (a *Array) hashGet(key uint32) avm.Value {
	slot, _ := a.hashFind(key)
	if slot == noSlot {
		return avm.Empty()
	}
	return a.values[slot]
}

func (a *Array) hashSet(key uint32, v avm.Value) {
	if slot, _ := a.hashFind(key); slot != noSlot {
		a.values[slot] = v
		return
	}

	var slot int32
	switch {
	case a.freelistHead != noSlot:
		slot = a.freelistHead
		a.freelistHead = a.links[slot].next
	default:
		if int(a.totalCount) == len(a.values) {
			a.growHash()
		}
		slot = a.totalCount
		a.totalCount++
	}

	b := a.bucket(key)
	a.links[slot].key = key
	a.links[slot].next = a.links[b].chainHead
	a.links[b].chainHead = slot
	a.values[slot] = v
	a.nonEmpty++
}

func (a *Array) hashDelete(key uint32) bool {
	slot, prev := a.hashFind(key)
	if slot == noSlot {
		return false
	}

	if prev == noSlot {
		a.links[a.bucket(key)].chainHead = a.links[slot].next
	} else {
		a.links[prev].next = a.links[slot].next
	}

	a.values[slot] = avm.Empty()
	a.links[slot].next = a.freelistHead
	a.freelistHead = slot
	a.nonEmpty--
	return true
}

// growHash doubles the value and link buffers and rebuilds the chains.
func (a *Array) growHash() {
	newCap := len(a.values) * 2
	if newCap < 4 {
		newCap = 4
	}

	values := make([]avm.Value, newCap)
	copy(values, a.values)
	a.values = values

	links := make([]hashLink, newCap)
	copy(links, a.links)
	a.links = links

	debug.Log(nil, "grow hash", "cap=%d total=%d live=%d", newCap, a.totalCount, a.nonEmpty)
	a.resetChains()
}

// resetChains rebuilds the bucket and freelist chains from the values and
// slot keys alone. Required after any bulk key rewrite (reverse, splice,
// unshift) and after bucket-count changes.
func (a *Array) resetChains() {
	for i := range a.links {
		a.links[i].chainHead = noSlot
	}

	a.freelistHead = noSlot
	for i := int32(0); i < a.totalCount; i++ {
		if a.values[i].IsEmpty() {
			a.links[i].next = a.freelistHead
			a.freelistHead = i
			continue
		}

		b := a.bucket(a.links[i].key)
		a.links[i].next = a.links[b].chainHead
		a.links[b].chainHead = i
	}
}

// denseTooSparse applies the dense-mode representation rule for a
// prospective shape: dense is disallowed beyond the 2³¹−1 length limit,
// and below the load threshold unless the array is small.
func denseTooSparse(nonEmpty int64, totalCount int64, length uint64) bool {
	if length > maxDenseLength {
		return true
	}
	if totalCount <= denseSmall {
		return false
	}
	return nonEmpty*loadDenom < denseToHashLoad*int64(length)
}

// hashPrefersDense applies the hash-mode transition rule.
func hashPrefersDense(nonEmpty int64, length uint64) bool {
	if length <= denseSmall {
		return true
	}
	return length <= maxDenseLength && nonEmpty*loadDenom >= hashToDenseLoad*int64(length)
}

// toHash converts dense storage to hash storage in place, reusing the
// values buffer. Dense index i becomes key i; Empty cells join the
// freelist.
func (a *Array) toHash() {
	debug.Log(nil, "to hash", "len=%d total=%d live=%d", a.length, a.totalCount, a.nonEmpty)

	a.links = make([]hashLink, len(a.values))
	for i := int32(0); i < a.totalCount; i++ {
		a.links[i].key = uint32(i)
	}
	a.resetChains()

	a.checkInvariants()
}

// toDense converts hash storage back to a fresh dense buffer, placing each
// live value at the index equal to its key.
func (a *Array) toDense() {
	debug.Log(nil, "to dense", "len=%d total=%d live=%d", a.length, a.totalCount, a.nonEmpty)

	values := make([]avm.Value, a.length)
	total := int32(0)
	for i := int32(0); i < a.totalCount; i++ {
		if a.values[i].IsEmpty() {
			continue
		}
		key := a.links[i].key
		values[key] = a.values[i]
		if int32(key)+1 > total {
			total = int32(key) + 1
		}
	}

	a.values = values
	a.links = nil
	a.freelistHead = noSlot
	a.totalCount = total

	a.checkInvariants()
}

// reshape applies the representation rules after a mutation.
func (a *Array) reshape() {
	if a.isHash() {
		if hashPrefersDense(int64(a.nonEmpty), uint64(a.length)) {
			a.toDense()
		}
		return
	}

	if denseTooSparse(int64(a.nonEmpty), int64(a.totalCount), uint64(a.length)) {
		a.toHash()
	}
}

// ensureDense grows the dense values buffer to hold at least n cells.
func (a *Array) ensureDense(n int) {
	if n <= len(a.values) {
		return
	}

	newCap := len(a.values) * 2
	if newCap < n {
		newCap = n
	}
	if newCap < 4 {
		newCap = 4
	}

	values := make([]avm.Value, newCap)
	copy(values, a.values)
	a.values = values
}

// shrinkDense halves the dense buffer when three quarters of it sit past
// the tail.
func (a *Array) shrinkDense() {
	if len(a.values) > denseSmall && int(a.totalCount) <= len(a.values)/4 {
		values := make([]avm.Value, len(a.values)/2)
		copy(values, a.values[:a.totalCount])
		a.values = values
	}
}

// trimDenseTail walks totalCount back over trailing Empty cells.
func (a *Array) trimDenseTail() {
	for a.totalCount > 0 && a.values[a.totalCount-1].IsEmpty() {
		a.totalCount--
	}
}

// checkInvariants asserts the §3 storage invariants in debug builds.
func (a *Array) checkInvariants() {
	if !debug.Enabled {
		return
	}

	debug.Assert(int(a.totalCount) <= len(a.values), "totalCount %d > buffer %d", a.totalCount, len(a.values))
	debug.Assert(a.nonEmpty <= a.totalCount, "nonEmpty %d > totalCount %d", a.nonEmpty, a.totalCount)

	live := int32(0)
	for i := int32(0); i < a.totalCount; i++ {
		if !a.values[i].IsEmpty() {
			live++
		}
	}
	debug.Assert(live == a.nonEmpty, "live %d != nonEmpty %d", live, a.nonEmpty)

	if !a.isHash() {
		debug.Assert(a.totalCount == 0 || !a.values[a.totalCount-1].IsEmpty(),
			"dense tail cell is empty")
		for i := int(a.totalCount); i < len(a.values); i++ {
			debug.Assert(a.values[i].IsEmpty(), "cell %d past totalCount is live", i)
		}
	} else {
		debug.Assert(len(a.links) == len(a.values), "links %d != values %d", len(a.links), len(a.values))
		for i := int32(0); i < a.totalCount; i++ {
			if a.values[i].IsEmpty() {
				continue
			}
			slot, _ := a.hashFind(a.links[i].key)
			debug.Assert(slot == i, "slot %d unreachable from its bucket chain", i)
			debug.Assert(uint32(a.length) > a.links[i].key, "key %d >= length %d", a.links[i].key, a.length)
		}
	}
}
