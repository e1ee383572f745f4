package avm

// IndexedContainer is implemented by the index-addressable containers
// (Array, Vector, XMLList). Bulk operations such as concat use it to walk
// another container's elements without knowing its concrete type.
type IndexedContainer interface {
	Length() uint32

	// ValueAt returns the hole-resolved value at i.
	ValueAt(i uint32) Value
}

// ContainerOf extracts the container boxed in v, if any.
func ContainerOf(v Value) (IndexedContainer, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	c, ok := v.ref.(IndexedContainer)
	return c, ok
}
