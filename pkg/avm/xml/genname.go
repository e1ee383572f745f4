package xml

import (
	"github.com/flier/avmcore/pkg/opt"
)

// GenName is a generalised node name used by queries and list links: a
// (uri, localName, isAttribute) triple where a None component acts as a
// wildcard on that field.
type GenName struct {
	URI       opt.Option[string]
	Local     opt.Option[string]
	Attribute bool
}

// AnyChild matches every element regardless of name.
func AnyChild() GenName {
	return GenName{URI: opt.None[string](), Local: opt.None[string]()}
}

// AnyAttribute matches every attribute regardless of name.
func AnyAttribute() GenName {
	g := AnyChild()
	g.Attribute = true
	return g
}

// ChildNamed matches elements with the given local name in any namespace.
func ChildNamed(local string) GenName {
	return GenName{URI: opt.None[string](), Local: opt.Some(local)}
}

// QualifiedChild matches elements with the given namespace and local name.
func QualifiedChild(uri, local string) GenName {
	return GenName{URI: opt.Some(uri), Local: opt.Some(local)}
}

// AttributeNamed matches attributes with the given local name in any
// namespace.
func AttributeNamed(local string) GenName {
	g := ChildNamed(local)
	g.Attribute = true
	return g
}

// Matches reports whether the name components accept n's qualified name.
// The node kind (attribute or not) is checked by the caller.
func (g GenName) Matches(n *Node) bool {
	if g.Local.IsSomeAnd(func(l string) bool { return l != n.name.Local }) {
		return false
	}
	if g.URI.IsSomeAnd(func(u string) bool { return u != n.name.URI }) {
		return false
	}
	return true
}

// IsAnyName reports whether both components are wildcards.
func (g GenName) IsAnyName() bool {
	return g.URI.IsNone() && g.Local.IsNone()
}

// fetchNodes appends to out every directly-owned node of n that the
// generalised name selects: attributes when g is attribute-typed, element
// children otherwise.
func (n *Node) fetchNodes(g GenName, out *[]*Node) {
	if g.Attribute {
		for _, a := range n.attrs {
			if g.Matches(a) {
				*out = append(*out, a)
			}
		}
		return
	}

	for _, c := range n.children {
		if c.kind == ElementNode && g.Matches(c) {
			*out = append(*out, c)
		}
	}
}

// fetchDescendants appends every descendant (depth-first, document order)
// the generalised name selects.
func (n *Node) fetchDescendants(g GenName, out *[]*Node) {
	for _, c := range n.children {
		if g.Attribute {
			c.fetchNodes(g, out)
		} else if c.kind == ElementNode && g.Matches(c) {
			*out = append(*out, c)
		}
		c.fetchDescendants(g, out)
	}
}
