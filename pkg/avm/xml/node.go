// Package xml implements the E4X node model consumed by the XMLList
// container: XML nodes with parent links, attributes and namespaces, and
// the XMLList live-view collection over them.
//
// There is no text parser here; trees are built programmatically through
// the node constructors.
package xml

import (
	"strings"
)

// NodeKind enumerates the node kinds.
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
	CDATANode
	CommentNode
	ProcessingInstructionNode
	AttributeNode
)

func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CDATANode:
		return "text" // CDATA reports as text at the surface
	case CommentNode:
		return "comment"
	case ProcessingInstructionNode:
		return "processing-instruction"
	case AttributeNode:
		return "attribute"
	default:
		return "unknown"
	}
}

// Name is a qualified node name.
type Name struct {
	URI   string
	Local string
}

// Namespace is a prefix-to-URI binding declared on an element.
type Namespace struct {
	Prefix string
	URI    string
}

// Node is a node in an XML tree.
//
// Ownership: a node has at most one parent; insertion into a tree detaches
// it from any previous parent first.
type Node struct {
	kind       NodeKind
	name       Name
	text       string // text / CDATA / comment / PI content / attribute value
	parent     *Node
	children   []*Node
	attrs      []*Node
	namespaces []Namespace
}

// NewElement creates an element node.
func NewElement(name Name) *Node { return &Node{kind: ElementNode, name: name} }

// NewText creates a text node.
func NewText(text string) *Node { return &Node{kind: TextNode, text: text} }

// NewCDATA creates a CDATA node.
func NewCDATA(text string) *Node { return &Node{kind: CDATANode, text: text} }

// NewComment creates a comment node.
func NewComment(text string) *Node { return &Node{kind: CommentNode, text: text} }

// NewProcessingInstruction creates a processing instruction node.
func NewProcessingInstruction(name Name, content string) *Node {
	return &Node{kind: ProcessingInstructionNode, name: name, text: content}
}

// NewAttribute creates a detached attribute node.
func NewAttribute(name Name, value string) *Node {
	return &Node{kind: AttributeNode, name: name, text: value}
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the qualified name.
func (n *Node) Name() Name { return n.name }

// SetName replaces the qualified name.
func (n *Node) SetName(name Name) { n.name = name }

// LocalName returns the local part of the name.
func (n *Node) LocalName() string { return n.name.Local }

// SetLocalName replaces the local part of the name.
func (n *Node) SetLocalName(local string) { n.name.Local = local }

// NamespaceURI returns the namespace URI of the name.
func (n *Node) NamespaceURI() string { return n.name.URI }

// SetNamespaceURI replaces the namespace URI of the name.
func (n *Node) SetNamespaceURI(uri string) { n.name.URI = uri }

// Parent returns the parent node, or nil at a root.
func (n *Node) Parent() *Node { return n.parent }

// Text returns the character content of a text, CDATA, comment, PI or
// attribute node.
func (n *Node) Text() string { return n.text }

// SetText replaces the character content.
func (n *Node) SetText(text string) { n.text = text }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// ChildAt returns the child at index i, or nil out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildIndex returns the position of child under its parent, or -1.
func (n *Node) ChildIndex() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// detach removes the node from its current parent, if any.
func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if n.kind == AttributeNode {
		for i, a := range p.attrs {
			if a == n {
				p.attrs = append(p.attrs[:i], p.attrs[i+1:]...)
				break
			}
		}
	} else {
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = nil
}

// AppendChild appends child to this element and returns it.
func (n *Node) AppendChild(child *Node) *Node {
	child.detach()
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// PrependChild inserts child at position 0.
func (n *Node) PrependChild(child *Node) *Node {
	return n.insertChildAt(0, child)
}

func (n *Node) insertChildAt(i int, child *Node) *Node {
	child.detach()
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	return child
}

// InsertChildAfter inserts child immediately after ref; a nil ref prepends.
// Returns false if ref is not a child of this node.
func (n *Node) InsertChildAfter(ref, child *Node) bool {
	if ref == nil {
		n.insertChildAt(0, child)
		return true
	}
	for i, c := range n.children {
		if c == ref {
			n.insertChildAt(i+1, child)
			return true
		}
	}
	return false
}

// InsertChildBefore inserts child immediately before ref; a nil ref
// appends. Returns false if ref is not a child of this node.
func (n *Node) InsertChildBefore(ref, child *Node) bool {
	if ref == nil {
		n.AppendChild(child)
		return true
	}
	for i, c := range n.children {
		if c == ref {
			n.insertChildAt(i, child)
			return true
		}
	}
	return false
}

// ReplaceChild swaps old for replacement in this node's child list,
// keeping the position. Returns false if old is not a child.
func (n *Node) ReplaceChild(old, replacement *Node) bool {
	for i, c := range n.children {
		if c == old {
			replacement.detach()
			replacement.parent = n
			n.children[i] = replacement
			old.parent = nil
			return true
		}
	}
	return false
}

// DeleteChildOrAttr removes child from this node's child or attribute
// list. Returns false if it is owned by someone else.
func (n *Node) DeleteChildOrAttr(child *Node) bool {
	if child.parent != n {
		return false
	}
	child.detach()
	return true
}

// AttributeCount returns the number of attributes.
func (n *Node) AttributeCount() int { return len(n.attrs) }

// AttributeAt returns the attribute at index i, or nil out of range.
func (n *Node) AttributeAt(i int) *Node {
	if i < 0 || i >= len(n.attrs) {
		return nil
	}
	return n.attrs[i]
}

// SetAttribute sets (or creates) the attribute with the given name and
// returns its node.
func (n *Node) SetAttribute(name Name, value string) *Node {
	for _, a := range n.attrs {
		if a.name == name {
			a.text = value
			return a
		}
	}
	a := NewAttribute(name, value)
	a.parent = n
	n.attrs = append(n.attrs, a)
	return a
}

// AddNamespace declares a namespace on this element.
func (n *Node) AddNamespace(ns Namespace) {
	for i, d := range n.namespaces {
		if d.Prefix == ns.Prefix {
			n.namespaces[i] = ns
			return
		}
	}
	n.namespaces = append(n.namespaces, ns)
}

// RemoveNamespace removes the declaration with the given URI. Returns
// whether one was removed.
func (n *Node) RemoveNamespace(uri string) bool {
	for i, d := range n.namespaces {
		if d.URI == uri {
			n.namespaces = append(n.namespaces[:i], n.namespaces[i+1:]...)
			return true
		}
	}
	return false
}

// NamespaceDeclarations returns the namespaces declared on this element.
func (n *Node) NamespaceDeclarations() []Namespace {
	out := make([]Namespace, len(n.namespaces))
	copy(out, n.namespaces)
	return out
}

// InScopeNamespaces returns the namespaces in scope at this element: its
// own declarations plus every ancestor's, nearest declaration winning per
// prefix.
func (n *Node) InScopeNamespaces() []Namespace {
	var out []Namespace
	seen := map[string]bool{}
	for e := n; e != nil; e = e.parent {
		for _, d := range e.namespaces {
			if !seen[d.Prefix] {
				seen[d.Prefix] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// HasSimpleContent reports whether the node has simple content: attribute
// and character nodes always do, an element does iff it has no element
// children.
func (n *Node) HasSimpleContent() bool {
	switch n.kind {
	case CommentNode, ProcessingInstructionNode:
		return false
	case ElementNode:
		for _, c := range n.children {
			if c.kind == ElementNode {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// TextContent returns the concatenated character data of the node: the
// value for character and attribute nodes, the concatenated text and
// CDATA children for an element.
func (n *Node) TextContent() string {
	switch n.kind {
	case ElementNode:
		var sb strings.Builder
		for _, c := range n.children {
			if c.kind == TextNode || c.kind == CDATANode {
				sb.WriteString(c.text)
			}
		}
		return sb.String()
	default:
		return n.text
	}
}

// Normalize merges runs of adjacent text and CDATA children into single
// text nodes, drops empty ones, and recurses into element children.
// Removed nodes are detached from the tree.
func (n *Node) Normalize() {
	if n.kind != ElementNode {
		return
	}

	out := n.children[:0]
	i := 0
	for i < len(n.children) {
		c := n.children[i]
		if c.kind != TextNode && c.kind != CDATANode {
			c.Normalize()
			out = append(out, c)
			i++
			continue
		}

		// collapse the full run of character nodes starting here
		var sb strings.Builder
		j := i
		for j < len(n.children) && (n.children[j].kind == TextNode || n.children[j].kind == CDATANode) {
			sb.WriteString(n.children[j].text)
			j++
		}
		if s := sb.String(); s != "" {
			c.kind = TextNode
			c.text = s
			out = append(out, c)
			for k := i + 1; k < j; k++ {
				n.children[k].parent = nil
			}
		} else {
			for k := i; k < j; k++ {
				n.children[k].parent = nil
			}
		}
		i = j
	}

	// clear the trimmed tail so dropped nodes are not retained
	for k := len(out); k < len(n.children); k++ {
		n.children[k] = nil
	}
	n.children = out
}

// DeepCopy clones the subtree rooted at this node. The copy is detached.
func (n *Node) DeepCopy() *Node {
	c := &Node{kind: n.kind, name: n.name, text: n.text}
	c.namespaces = append(c.namespaces, n.namespaces...)
	for _, a := range n.attrs {
		ac := &Node{kind: AttributeNode, name: a.name, text: a.text, parent: c}
		c.attrs = append(c.attrs, ac)
	}
	for _, ch := range n.children {
		cc := ch.DeepCopy()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// DeepEquals compares two subtrees structurally.
func DeepEquals(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind || a.name != b.name || a.text != b.text {
		return false
	}
	if len(a.attrs) != len(b.attrs) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.attrs {
		if a.attrs[i].name != b.attrs[i].name || a.attrs[i].text != b.attrs[i].text {
			return false
		}
	}
	for i := range a.children {
		if !DeepEquals(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
