package array

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/flier/avmcore/internal/debug"
	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/avm/sortkit"
)

// Sort option flags.
const (
	CaseInsensitive    int32 = 1
	Descending         int32 = 2
	UniqueSort         int32 = 4
	ReturnIndexedArray int32 = 8
	Numeric            int32 = 16
)

// sortItem is one row of the sort buffer: the element, its original index
// and its precomputed keys.
type sortItem struct {
	value avm.Value
	idx   uint32
	num   float64
	str   string
}

// Sort sorts the array.
//
// If the first argument is a function it is used as the comparator and the
// second argument supplies flags; otherwise the first argument is coerced
// to integer flags. CASEINSENSITIVE and NUMERIC are ignored when a
// comparator is supplied.
//
// The result is this array, the numeric 0 when UNIQUESORT detects a
// duplicate, or a fresh index-permutation Array under RETURNINDEXEDARRAY
// (in which case the instance is not mutated).
func (a *Array) Sort(args ...avm.Value) (avm.Value, error) {
	var comparator avm.Callable
	var flags int32

	if len(args) > 0 {
		if c := args[0].AsCallable(); c != nil {
			comparator = c
			if len(args) > 1 {
				flags = avm.ToInt32(args[1])
			}
			flags &^= CaseInsensitive | Numeric
		} else {
			flags = avm.ToInt32(args[0])
		}
	}

	if int64(a.length) > maxDenseLength {
		return a.Value(), nil
	}

	items, tail, holeIdx := a.sortBuffer(nil)

	cmp := buildKeys(items, comparator, flags)
	if err := sortkit.Sort(items, cmp); err != nil {
		return avm.Undefined(), err
	}

	if flags&UniqueSort != 0 {
		for i := 1; i < len(items); i++ {
			if c, err := cmp(items[i-1], items[i]); err != nil {
				return avm.Undefined(), err
			} else if c == 0 {
				return avm.Number(0), nil
			}
		}
	}

	if flags&Descending != 0 {
		reverseItems(items)
	}

	if flags&ReturnIndexedArray != 0 {
		return a.permutation(items, tail, holeIdx).Value(), nil
	}

	a.writeBack(items, tail)
	return a.Value(), nil
}

// sortBuffer materialises the sort buffer: every index in [0, length) is
// read with prototype hole resolution and partitioned into sortable
// values, a trailing non-sortable block and a trailing hole block.
//
// isTail extends the tail predicate beyond undefined (sortOn sends nulls
// there too).
func (a *Array) sortBuffer(isTail func(avm.Value) bool) (items, tail []sortItem, holeIdx []uint32) {
	n := a.length
	items = make([]sortItem, 0, a.nonEmpty)

	protoName := func(i uint32) avm.Name {
		return avm.PublicName(avm.IndexToString(i))
	}

	for i := uint32(0); i < n; i++ {
		v := a.Get(i)
		if v.IsEmpty() {
			if avm.HasPropertyChain(a.proto, protoName(i)) {
				v = avm.GetPropertyChain(a.proto, protoName(i))
			} else {
				holeIdx = append(holeIdx, i)
				continue
			}
		}
		if v.IsUndefined() || (isTail != nil && isTail(v)) {
			tail = append(tail, sortItem{value: v, idx: i})
			continue
		}
		items = append(items, sortItem{value: v, idx: i})
	}
	return
}

// buildKeys precomputes the per-element sort keys and returns the element
// comparator: numeric sorts key on ToNumber, string sorts on (possibly
// case-folded) ToString, comparator sorts compare the values directly.
func buildKeys(items []sortItem, comparator avm.Callable, flags int32) func(x, y sortItem) (int, error) {
	switch {
	case comparator != nil:
		return func(x, y sortItem) (int, error) {
			r, err := avm.Invoke(comparator, avm.Null(), []avm.Value{x.value, y.value})
			if err != nil {
				return 0, err
			}
			return signOf(avm.ToNumber(r)), nil
		}

	case flags&Numeric != 0:
		for i := range items {
			items[i].num = avm.ToNumber(items[i].value)
		}
		return func(x, y sortItem) (int, error) {
			return compareNumericKeys(x.num, y.num), nil
		}

	default:
		fold := foldFor(flags)
		for i := range items {
			items[i].str = fold(avm.ToString(items[i].value))
		}
		return func(x, y sortItem) (int, error) {
			return strings.Compare(x.str, y.str), nil
		}
	}
}

func foldFor(flags int32) func(string) string {
	if flags&CaseInsensitive == 0 {
		return func(s string) string { return s }
	}
	caser := cases.Fold()
	return caser.String
}

// compareNumericKeys orders floats with every NaN after every number.
func compareNumericKeys(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	case x == y:
		return 0
	case x == x: // y is NaN
		return -1
	case y == y: // x is NaN
		return 1
	default:
		return 0
	}
}

func signOf(n float64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func reverseItems(items []sortItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// permutation builds the RETURNINDEXEDARRAY result: the sorted prefix's
// original indices followed by the tail block's and the hole block's.
func (a *Array) permutation(items, tail []sortItem, holeIdx []uint32) *Array {
	out := make([]avm.Value, 0, len(items)+len(tail)+len(holeIdx))
	for _, it := range items {
		out = append(out, avm.UInt(it.idx))
	}
	for _, it := range tail {
		out = append(out, avm.UInt(it.idx))
	}
	for _, i := range holeIdx {
		out = append(out, avm.UInt(i))
	}
	return NewOf(out...)
}

// writeBack replaces the array's cells with the sorted buffer: sorted
// values first, then the tail block, then holes out to the logical length.
// The representation is chosen by how densely the live prefix fills the
// length.
func (a *Array) writeBack(items, tail []sortItem) {
	live := len(items) + len(tail)
	n := a.length

	debug.Log(nil, "sort writeback", "sorted=%d tail=%d len=%d", len(items), len(tail), n)

	if denseTooSparse(int64(live), int64(live), uint64(n)) {
		values := make([]avm.Value, nextPow2(live))
		links := make([]hashLink, len(values))
		for i, it := range items {
			values[i] = it.value
			links[i].key = uint32(i)
		}
		for i, it := range tail {
			values[len(items)+i] = it.value
			links[len(items)+i].key = uint32(len(items) + i)
		}
		a.values = values
		a.links = links
		a.totalCount = int32(live)
		a.nonEmpty = int32(live)
		a.resetChains()
		a.checkInvariants()
		return
	}

	values := a.values
	if len(values) < live || a.isHash() {
		values = make([]avm.Value, live)
	}
	for i, it := range items {
		values[i] = it.value
	}
	for i, it := range tail {
		values[len(items)+i] = it.value
	}
	for i := live; i < len(values); i++ {
		values[i] = avm.Empty()
	}

	a.values = values
	a.links = nil
	a.freelistHead = noSlot
	a.totalCount = int32(live)
	a.nonEmpty = int32(live)
	a.checkInvariants()
}

func nextPow2(n int) int {
	p := 4
	for p < n {
		p *= 2
	}
	return p
}

// sortOnField is one parsed (property name, flags) pair.
type sortOnField struct {
	name  string
	flags int32
}

// SortOn sorts the array on up to N element properties.
//
// names is a property name or an Array of names; options is an integer, an
// Array of integers parallel to names, or absent. A mismatched options
// array falls back to all-zero options. UNIQUESORT and RETURNINDEXEDARRAY
// are taken from the first field's options.
func (a *Array) SortOn(names avm.Value, options avm.Value) (avm.Value, error) {
	fields := parseSortOnFields(names, options)
	if len(fields) == 0 {
		return a.Value(), nil
	}

	if int64(a.length) > maxDenseLength {
		return a.Value(), nil
	}

	global := fields[0].flags

	// nulls join the undefined block for sortOn
	items, tail, holeIdx := a.sortBuffer(func(v avm.Value) bool { return v.IsNull() })

	uniform := true
	for _, f := range fields[1:] {
		if f.flags&(Numeric|CaseInsensitive|Descending) != fields[0].flags&(Numeric|CaseInsensitive|Descending) {
			uniform = false
			break
		}
	}

	var cmp func(x, y sortItem) (int, error)
	if uniform {
		// flat N×K key matrix, one block comparator for every column
		k := len(fields)
		nums := make([]float64, len(items)*k)
		strs := make([]string, len(items)*k)
		rowOf := make(map[uint32]int, len(items))
		fold := foldFor(global)
		numeric := global&Numeric != 0
		for i := range items {
			rowOf[items[i].idx] = i
			for j, f := range fields {
				pv := fieldValue(items[i].value, f.name)
				if numeric {
					nums[i*k+j] = avm.ToNumber(pv)
				} else {
					strs[i*k+j] = fold(avm.ToString(pv))
				}
			}
		}
		cmp = func(x, y sortItem) (int, error) {
			rx, ry := rowOf[x.idx]*k, rowOf[y.idx]*k
			for j := 0; j < k; j++ {
				var c int
				if numeric {
					c = compareNumericKeys(nums[rx+j], nums[ry+j])
				} else {
					c = strings.Compare(strs[rx+j], strs[ry+j])
				}
				if c != 0 {
					return c, nil
				}
			}
			return 0, nil
		}
	} else {
		// mixed flags: coerce per property at comparison time; DESCENDING
		// is honoured per key and no final reverse is applied
		folds := make([]func(string) string, len(fields))
		for i, f := range fields {
			folds[i] = foldFor(f.flags)
		}
		cmp = func(x, y sortItem) (int, error) {
			for j, f := range fields {
				px := fieldValue(x.value, f.name)
				py := fieldValue(y.value, f.name)
				var c int
				if f.flags&Numeric != 0 {
					c = compareNumericKeys(avm.ToNumber(px), avm.ToNumber(py))
				} else {
					c = strings.Compare(folds[j](avm.ToString(px)), folds[j](avm.ToString(py)))
				}
				if f.flags&Descending != 0 {
					c = -c
				}
				if c != 0 {
					return c, nil
				}
			}
			return 0, nil
		}
	}

	if err := sortkit.Sort(items, cmp); err != nil {
		return avm.Undefined(), err
	}

	if global&UniqueSort != 0 {
		for i := 1; i < len(items); i++ {
			if c, _ := cmp(items[i-1], items[i]); c == 0 {
				return avm.Number(0), nil
			}
		}
	}

	if uniform && global&Descending != 0 {
		reverseItems(items)
	}

	if global&ReturnIndexedArray != 0 {
		return a.permutation(items, tail, holeIdx).Value(), nil
	}

	a.writeBack(items, tail)
	return a.Value(), nil
}

// fieldValue reads the named property from an element, surfacing undefined
// for non-objects and misses.
func fieldValue(v avm.Value, name string) avm.Value {
	o := v.AsObject()
	if o == nil {
		return avm.Undefined()
	}
	return avm.GetPropertyChain(o, avm.PublicName(name))
}

// parseSortOnFields normalises the sortOn argument shapes.
func parseSortOnFields(names avm.Value, options avm.Value) []sortOnField {
	var fields []sortOnField

	if c, ok := avm.ContainerOf(names); ok {
		n := c.Length()
		fields = make([]sortOnField, 0, n)
		for i := uint32(0); i < n; i++ {
			fields = append(fields, sortOnField{name: avm.ToString(c.ValueAt(i))})
		}
	} else if !names.IsNullOrUndefined() {
		fields = []sortOnField{{name: avm.ToString(names)}}
	}

	if len(fields) == 0 {
		return nil
	}

	if c, ok := avm.ContainerOf(options); ok {
		if int(c.Length()) == len(fields) {
			for i := range fields {
				fields[i].flags = avm.ToInt32(c.ValueAt(uint32(i)))
			}
		}
		// mismatched lengths silently fall back to all-zero options
	} else if options.IsNumber() {
		f := avm.ToInt32(options)
		for i := range fields {
			fields[i].flags = f
		}
	}

	return fields
}
