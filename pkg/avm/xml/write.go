package xml

import (
	"github.com/flier/avmcore/internal/debug"
	"github.com/flier/avmcore/pkg/avm"
)

// listOf extracts the List boxed in v, if any.
func listOf(v avm.Value) (*List, bool) {
	if o := v.AsObject(); o != nil {
		if l, ok := o.(*List); ok {
			return l, true
		}
	}
	return nil, false
}

// nodeOf extracts the Node boxed in v, if any. A one-item list collapses
// to its element.
func nodeOf(v avm.Value) (*Node, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	switch x := o.(type) {
	case *Node:
		return x, true
	case *List:
		if len(x.items) == 1 {
			return x.items[0], true
		}
	}
	return nil, false
}

// resolveTarget resolves a link to the element writes materialise on.
//
// A list target recurses: a one-item list collapses to its element, an
// empty linked list materialises its own element first, and a multi-item
// list blocks materialisation.
func (lk Link) resolveTarget() *Node {
	if lk.targetNode != nil {
		if lk.targetNode.kind != ElementNode {
			return nil
		}
		return lk.targetNode
	}

	tl := lk.targetList
	if tl == nil {
		return nil
	}

	switch len(tl.items) {
	case 1:
		if tl.items[0].kind == ElementNode {
			return tl.items[0]
		}
		return nil
	case 0:
		if tl.link.IsNone() {
			return nil
		}
		link := tl.link.Unwrap()
		parent := link.resolveTarget()
		if parent == nil || link.name.Attribute || link.name.Local.IsNone() {
			return nil
		}
		child := NewElement(Name{
			URI:   link.name.URI.UnwrapOrDefault(),
			Local: link.name.Local.Unwrap(),
		})
		parent.AppendChild(child)
		tl.items = append(tl.items, child)
		return child
	default:
		return nil
	}
}

// SetIndex assigns the item at index i, materialising on the link target
// when appending to a linked list. Assignments to nodes that sit in a tree
// edit the parent's child list in lockstep.
func (l *List) SetIndex(i uint32, v avm.Value) error {
	if int64(i) >= int64(len(l.items)) {
		return l.appendValue(v)
	}

	old := l.items[i]

	// an empty XMLList deletes the slot
	if vl, ok := listOf(v); ok && len(vl.items) == 0 {
		l.DeleteIndex(i)
		return nil
	}

	// a multi-item XMLList replaces the slot with its first element and
	// splices the rest in right after, in both the list and the tree
	if vl, ok := listOf(v); ok && len(vl.items) > 1 {
		if err := l.replaceItem(i, vl.items[0]); err != nil {
			return err
		}
		prev := l.items[i]
		rest := vl.items[1:]
		tail := make([]*Node, 0, len(rest))
		for _, n := range rest {
			if p := prev.parent; p != nil {
				p.InsertChildAfter(prev, n)
			}
			tail = append(tail, n)
			prev = n
		}
		l.items = append(l.items[:i+1], append(tail, l.items[i+1:]...)...)
		return nil
	}

	if node, ok := nodeOf(v); ok {
		return l.replaceItem(i, node)
	}

	// primitive assignment
	s := avm.ToString(v)
	switch old.kind {
	case AttributeNode:
		old.SetText(s)
	case ElementNode:
		// the element keeps its identity; its content becomes one text node
		for _, c := range old.children {
			c.parent = nil
		}
		old.children = old.children[:0]
		old.AppendChild(NewText(s))
	default:
		repl := NewText(s)
		if p := old.parent; p != nil {
			p.ReplaceChild(old, repl)
		}
		l.items[i] = repl
	}
	return nil
}

// replaceItem swaps the node at slot i, splicing through the parent's
// child list when the slot's node sits in a tree.
func (l *List) replaceItem(i uint32, n *Node) error {
	old := l.items[i]
	if old == n {
		return nil
	}
	if p := old.parent; p != nil {
		if old.kind == AttributeNode {
			p.DeleteChildOrAttr(old)
			p.AppendChild(n)
		} else {
			p.ReplaceChild(old, n)
		}
	}
	l.items[i] = n
	return nil
}

// appendValue implements the past-the-end write.
func (l *List) appendValue(v avm.Value) error {
	if l.link.IsNone() {
		// pure sequence append
		if vl, ok := listOf(v); ok {
			l.items = append(l.items, vl.items...)
			return nil
		}
		if node, ok := nodeOf(v); ok {
			l.items = append(l.items, node)
			return nil
		}
		l.items = append(l.items, NewText(avm.ToString(v)))
		return nil
	}

	link := l.link.Unwrap()
	target := link.resolveTarget()
	if target == nil {
		// materialisation is blocked; the write is dropped
		debug.Log(nil, "xmllist append", "materialisation blocked")
		return nil
	}

	if link.name.Attribute {
		local := link.name.Local.UnwrapOrDefault()
		if local == "" {
			return nil
		}
		attr := target.SetAttribute(Name{URI: link.name.URI.UnwrapOrDefault(), Local: local}, avm.ToString(v))
		l.items = append(l.items, attr)
		return nil
	}

	if vl, ok := listOf(v); ok {
		for _, n := range vl.items {
			target.AppendChild(n)
			l.items = append(l.items, n)
		}
		return nil
	}

	if node, ok := nodeOf(v); ok {
		target.AppendChild(node)
		l.items = append(l.items, node)
		return nil
	}

	if link.name.Local.IsNone() {
		// a wildcard link cannot name a new element; the value lands as text
		text := target.AppendChild(NewText(avm.ToString(v)))
		l.items = append(l.items, text)
		return nil
	}

	child := NewElement(Name{URI: link.name.URI.UnwrapOrDefault(), Local: link.name.Local.Unwrap()})
	child.AppendChild(NewText(avm.ToString(v)))
	target.AppendChild(child)
	l.items = append(l.items, child)
	return nil
}

// DeleteIndex removes the item at index i from the list and, when it sits
// in a tree, from its parent's child list.
func (l *List) DeleteIndex(i uint32) bool {
	if int64(i) >= int64(len(l.items)) {
		return false
	}

	n := l.items[i]
	if p := n.parent; p != nil {
		p.DeleteChildOrAttr(n)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// DeleteByName delegates a query-name deletion to each item.
func (l *List) DeleteByName(g GenName) {
	for _, n := range l.items {
		n.deleteByGenName(g)
	}
}

// deleteByGenName removes every directly-owned node the generalised name
// selects.
func (n *Node) deleteByGenName(g GenName) {
	if g.Attribute {
		kept := n.attrs[:0]
		for _, a := range n.attrs {
			if g.Matches(a) {
				a.parent = nil
			} else {
				kept = append(kept, a)
			}
		}
		for i := len(kept); i < len(n.attrs); i++ {
			n.attrs[i] = nil
		}
		n.attrs = kept
		return
	}

	kept := n.children[:0]
	for _, c := range n.children {
		if c.kind == ElementNode && g.Matches(c) {
			c.parent = nil
		} else {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(n.children); i++ {
		n.children[i] = nil
	}
	n.children = kept
}

// Normalize merges runs of consecutive text and CDATA items into one text
// node, drops empty runs, and recursively normalises element items.
// Removed nodes are detached from their parents.
func (l *List) Normalize() *List {
	out := l.items[:0]
	i := 0
	for i < len(l.items) {
		n := l.items[i]
		if n.kind == ElementNode {
			n.Normalize()
			out = append(out, n)
			i++
			continue
		}
		if n.kind != TextNode && n.kind != CDATANode {
			out = append(out, n)
			i++
			continue
		}

		text := ""
		j := i
		for j < len(l.items) && (l.items[j].kind == TextNode || l.items[j].kind == CDATANode) {
			text += l.items[j].text
			j++
		}
		if text != "" {
			n.kind = TextNode
			n.text = text
			out = append(out, n)
			for k := i + 1; k < j; k++ {
				l.detachItem(l.items[k])
			}
		} else {
			for k := i; k < j; k++ {
				l.detachItem(l.items[k])
			}
		}
		i = j
	}

	for k := len(out); k < len(l.items); k++ {
		l.items[k] = nil
	}
	l.items = out
	return l
}

func (l *List) detachItem(n *Node) {
	if p := n.parent; p != nil {
		p.DeleteChildOrAttr(n)
	}
}

// Single-item methods. Each fails unless the list holds exactly one item.

func (l *List) oneItem() (*Node, error) {
	if len(l.items) != 1 {
		return nil, avm.NewError(avm.CodeXMLListOneItemOnly,
			"the method can only be called on an XMLList with one item (have %d)", len(l.items))
	}
	return l.items[0], nil
}

// AddNamespace declares a namespace on the single item.
func (l *List) AddNamespace(ns Namespace) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	n.AddNamespace(ns)
	return nil
}

// AppendChild appends a child to the single item.
func (l *List) AppendChild(v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	if vl, ok := listOf(v); ok {
		for _, c := range vl.items {
			n.AppendChild(c)
		}
		return nil
	}
	if c, ok := nodeOf(v); ok {
		n.AppendChild(c)
		return nil
	}
	n.AppendChild(NewText(avm.ToString(v)))
	return nil
}

// PrependChild prepends a child to the single item.
func (l *List) PrependChild(v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	if c, ok := nodeOf(v); ok {
		n.PrependChild(c)
		return nil
	}
	n.PrependChild(NewText(avm.ToString(v)))
	return nil
}

// ChildIndex returns the single item's position under its parent.
func (l *List) ChildIndex() (int, error) {
	n, err := l.oneItem()
	if err != nil {
		return -1, err
	}
	return n.ChildIndex(), nil
}

// LocalName returns the single item's local name.
func (l *List) LocalName() (string, error) {
	n, err := l.oneItem()
	if err != nil {
		return "", err
	}
	return n.LocalName(), nil
}

// Name returns the single item's qualified name.
func (l *List) Name() (Name, error) {
	n, err := l.oneItem()
	if err != nil {
		return Name{}, err
	}
	return n.Name(), nil
}

// Namespace returns the single item's namespace URI.
func (l *List) Namespace() (string, error) {
	n, err := l.oneItem()
	if err != nil {
		return "", err
	}
	return n.NamespaceURI(), nil
}

// NamespaceDeclarations returns the single item's declared namespaces.
func (l *List) NamespaceDeclarations() ([]Namespace, error) {
	n, err := l.oneItem()
	if err != nil {
		return nil, err
	}
	return n.NamespaceDeclarations(), nil
}

// InScopeNamespaces returns the namespaces in scope at the single item.
func (l *List) InScopeNamespaces() ([]Namespace, error) {
	n, err := l.oneItem()
	if err != nil {
		return nil, err
	}
	return n.InScopeNamespaces(), nil
}

// NodeKind returns the single item's kind.
func (l *List) NodeKind() (string, error) {
	n, err := l.oneItem()
	if err != nil {
		return "", err
	}
	return n.Kind().String(), nil
}

// RemoveNamespace removes a namespace declaration from the single item.
func (l *List) RemoveNamespace(uri string) (bool, error) {
	n, err := l.oneItem()
	if err != nil {
		return false, err
	}
	return n.RemoveNamespace(uri), nil
}

// Replace replaces the children of the single item selected by the
// generalised name with the given value.
func (l *List) Replace(g GenName, v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}

	matched := n.Query(g)
	if len(matched.items) == 0 {
		return nil
	}

	first := matched.items[0]
	var repl *Node
	if c, ok := nodeOf(v); ok {
		repl = c
	} else {
		repl = NewText(avm.ToString(v))
	}
	n.ReplaceChild(first, repl)
	for _, rest := range matched.items[1:] {
		n.DeleteChildOrAttr(rest)
	}
	return nil
}

// SetChildren replaces all children of the single item with the given
// value.
func (l *List) SetChildren(v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}

	for _, c := range n.children {
		c.parent = nil
	}
	n.children = n.children[:0]

	if vl, ok := listOf(v); ok {
		for _, c := range vl.items {
			n.AppendChild(c)
		}
		return nil
	}
	if c, ok := nodeOf(v); ok {
		n.AppendChild(c)
		return nil
	}
	n.AppendChild(NewText(avm.ToString(v)))
	return nil
}

// SetLocalName replaces the single item's local name.
func (l *List) SetLocalName(local string) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	n.SetLocalName(local)
	return nil
}

// SetName replaces the single item's qualified name.
func (l *List) SetName(name Name) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	n.SetName(name)
	return nil
}

// SetNamespace replaces the single item's namespace URI.
func (l *List) SetNamespace(uri string) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	n.SetNamespaceURI(uri)
	return nil
}

// InsertChildAfter inserts a child into the single item after ref; a nil
// ref prepends.
func (l *List) InsertChildAfter(ref *Node, v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	child, ok := nodeOf(v)
	if !ok {
		child = NewText(avm.ToString(v))
	}
	n.InsertChildAfter(ref, child)
	return nil
}

// InsertChildBefore inserts a child into the single item before ref; a nil
// ref appends.
func (l *List) InsertChildBefore(ref *Node, v avm.Value) error {
	n, err := l.oneItem()
	if err != nil {
		return err
	}
	child, ok := nodeOf(v)
	if !ok {
		child = NewText(avm.ToString(v))
	}
	n.InsertChildBefore(ref, child)
	return nil
}
