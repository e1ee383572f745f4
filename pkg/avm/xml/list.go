package xml

import (
	"github.com/flier/avmcore/pkg/avm"
	"github.com/flier/avmcore/pkg/opt"
)

// List is an XMLList: an ordered sequence of node references, possibly
// drawn from multiple trees.
//
// A list produced by a property access is linked: it remembers the target
// and the generalised name of the access, so that writes into the list can
// materialise new nodes on the target. Lists produced by constructors and
// bulk operations are unlinked; linked and unlinked lists differ only in
// the materialising append step.
type List struct {
	items []*Node
	link  opt.Option[Link]
}

// Link is the back-reference of a linked list: the equivalent of "the list
// you would get from reading target[uri::localName]".
type Link struct {
	targetNode *Node
	targetList *List
	name       GenName
}

// NewList creates an unlinked list over the given nodes.
func NewList(items ...*Node) *List {
	return &List{items: append([]*Node(nil), items...)}
}

// Query returns the linked list of n's nodes selected by the generalised
// name.
func (n *Node) Query(g GenName) *List {
	var items []*Node
	n.fetchNodes(g, &items)
	return &List{
		items: items,
		link:  opt.Some(Link{targetNode: n, name: g}),
	}
}

// Query maps the generalised name over each item and concatenates the
// results into a list linked to this one.
func (l *List) Query(g GenName) *List {
	var items []*Node
	for _, n := range l.items {
		n.fetchNodes(g, &items)
	}
	return &List{
		items: items,
		link:  opt.Some(Link{targetList: l, name: g}),
	}
}

// Length returns the number of items.
func (l *List) Length() uint32 { return uint32(len(l.items)) }

// IsLinked reports whether the list is a live projection of a property
// access.
func (l *List) IsLinked() bool { return l.link.IsSome() }

// ItemAt returns the node at index i, or nil out of range.
func (l *List) ItemAt(i int) *Node {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// ValueAt returns the boxed node at i, or undefined out of range.
// Implements the container walking interface.
func (l *List) ValueAt(i uint32) avm.Value {
	if int(i) >= len(l.items) {
		return avm.Undefined()
	}
	return avm.ObjectOf(l.items[i])
}

// Value boxes this list as a host value.
func (l *List) Value() avm.Value { return avm.ObjectOf(l) }

// Copy returns an unlinked deep copy of the list.
func (l *List) Copy() *List {
	out := &List{items: make([]*Node, len(l.items))}
	for i, n := range l.items {
		out.items[i] = n.DeepCopy()
	}
	return out
}

// Concat returns a fresh unlinked list of this list's items followed by
// the other's.
func (l *List) Concat(other *List) *List {
	out := NewList(l.items...)
	out.items = append(out.items, other.items...)
	return out
}

// Contains reports whether some item deep-equals the given node.
func (l *List) Contains(n *Node) bool {
	for _, it := range l.items {
		if DeepEquals(it, n) {
			return true
		}
	}
	return false
}

// DeepEquals compares two lists pairwise on their items.
func (l *List) DeepEquals(other *List) bool {
	if len(l.items) != len(other.items) {
		return false
	}
	for i := range l.items {
		if !DeepEquals(l.items[i], other.items[i]) {
			return false
		}
	}
	return true
}

// HasSimpleContent reports whether the list has simple content: an empty
// list does, a one-item list defers to its item, and a multi-item list
// does iff it holds no elements.
func (l *List) HasSimpleContent() bool {
	switch len(l.items) {
	case 0:
		return true
	case 1:
		return l.items[0].HasSimpleContent()
	default:
		for _, n := range l.items {
			if n.kind == ElementNode {
				return false
			}
		}
		return true
	}
}

// HasComplexContent is the complement of HasSimpleContent for non-empty
// lists.
func (l *List) HasComplexContent() bool {
	return len(l.items) > 0 && !l.HasSimpleContent()
}

// Read queries. Each maps a selection over the items and concatenates the
// results into a fresh unlinked list.

// Attribute returns the attributes selected by the generalised name.
func (l *List) Attribute(g GenName) *List {
	g.Attribute = true
	var items []*Node
	for _, n := range l.items {
		n.fetchNodes(g, &items)
	}
	return &List{items: items}
}

// Attributes returns every attribute of every item.
func (l *List) Attributes() *List {
	return l.Attribute(AnyAttribute())
}

// Child returns the element children selected by the generalised name.
func (l *List) Child(g GenName) *List {
	var items []*Node
	for _, n := range l.items {
		n.fetchNodes(g, &items)
	}
	return &List{items: items}
}

// ChildAt returns the i-th child of each item.
func (l *List) ChildAt(i int) *List {
	var items []*Node
	for _, n := range l.items {
		if c := n.ChildAt(i); c != nil {
			items = append(items, c)
		}
	}
	return &List{items: items}
}

// Children returns every child of every item, of any kind.
func (l *List) Children() *List {
	var items []*Node
	for _, n := range l.items {
		items = append(items, n.children...)
	}
	return &List{items: items}
}

// Descendants returns every descendant selected by the generalised name.
func (l *List) Descendants(g GenName) *List {
	var items []*Node
	for _, n := range l.items {
		n.fetchDescendants(g, &items)
	}
	return &List{items: items}
}

// Elements returns the element children selected by the generalised name.
func (l *List) Elements(g GenName) *List {
	return l.Child(g)
}

// Text returns the text and CDATA children of every item.
func (l *List) Text() *List {
	return l.childrenOfKind(func(k NodeKind) bool { return k == TextNode || k == CDATANode })
}

// Comments returns the comment children of every item.
func (l *List) Comments() *List {
	return l.childrenOfKind(func(k NodeKind) bool { return k == CommentNode })
}

// ProcessingInstructions returns the PI children selected by the
// generalised name.
func (l *List) ProcessingInstructions(g GenName) *List {
	var items []*Node
	for _, n := range l.items {
		for _, c := range n.children {
			if c.kind == ProcessingInstructionNode && g.Matches(c) {
				items = append(items, c)
			}
		}
	}
	return &List{items: items}
}

func (l *List) childrenOfKind(accept func(NodeKind) bool) *List {
	var items []*Node
	for _, n := range l.items {
		for _, c := range n.children {
			if accept(c.kind) {
				items = append(items, c)
			}
		}
	}
	return &List{items: items}
}

// avm.Object implementation: index-shaped public names address items,
// everything else is a query producing a linked child (or attribute) list.

func (l *List) HasProperty(name avm.Name) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return int(i.Unwrap()) < len(l.items)
	}
	return l.Query(genNameOf(name)).Length() > 0
}

func (l *List) TryGetProperty(name avm.Name) (avm.Value, bool) {
	if i := avm.IndexOfName(name); i.IsSome() {
		if int(i.Unwrap()) < len(l.items) {
			return avm.ObjectOf(l.items[i.Unwrap()]), true
		}
		return avm.Undefined(), false
	}
	return l.Query(genNameOf(name)).Value(), true
}

func (l *List) TrySetProperty(name avm.Name, v avm.Value) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return l.SetIndex(i.Unwrap(), v) == nil
	}
	return putByName(l.Query(genNameOf(name)), v)
}

func (l *List) DeleteProperty(name avm.Name) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return l.DeleteIndex(i.Unwrap())
	}
	l.DeleteByName(genNameOf(name))
	return true
}

func (l *List) Proto() avm.Object { return nil }

// StringValue implements the host string coercion.
func (l *List) StringValue() string { return l.ToString() }

// Node's avm.Object implementation mirrors the list surface over a single
// node.

func (n *Node) HasProperty(name avm.Name) bool {
	return n.Query(genNameOf(name)).Length() > 0
}

func (n *Node) TryGetProperty(name avm.Name) (avm.Value, bool) {
	return n.Query(genNameOf(name)).Value(), true
}

func (n *Node) TrySetProperty(name avm.Name, v avm.Value) bool {
	return putByName(n.Query(genNameOf(name)), v)
}

// putByName implements the non-index put over a query result: the first
// match is replaced (or materialised) and any remaining matches are
// deleted.
func putByName(sub *List, v avm.Value) bool {
	if sub.SetIndex(0, v) != nil {
		return false
	}
	for sub.Length() > 1 {
		sub.DeleteIndex(1)
	}
	return true
}

func (n *Node) DeleteProperty(name avm.Name) bool {
	n.deleteByGenName(genNameOf(name))
	return true
}

func (n *Node) Proto() avm.Object { return nil }

// StringValue implements the host string coercion.
func (n *Node) StringValue() string {
	if n.HasSimpleContent() {
		return n.TextContent()
	}
	return n.XMLString()
}

// genNameOf maps a binding-layer qualified name onto a generalised node
// name; "*" wildcards the local part.
func genNameOf(name avm.Name) GenName {
	g := GenName{URI: name.NS, Local: opt.Some(name.Local), Attribute: name.Attr}
	if name.Local == "*" {
		g.Local = opt.None[string]()
	}
	if opt.Equal(name.NS, opt.Some("")) {
		// the public namespace matches any URI in E4X child lookups
		g.URI = opt.None[string]()
	}
	return g
}
