package xml

import (
	"strings"
)

const indentStep = "  "

// XMLString serialises the subtree rooted at this node, pretty-printed
// with two-space indentation in the E4X manner: an element with simple
// content renders on one line, child elements each on their own.
func (n *Node) XMLString() string {
	var sb strings.Builder
	n.writeXML(&sb, 0)
	return sb.String()
}

func (n *Node) writeXML(sb *strings.Builder, depth int) {
	indent := strings.Repeat(indentStep, depth)

	switch n.kind {
	case TextNode:
		sb.WriteString(indent)
		sb.WriteString(escapeText(strings.TrimSpace(n.text)))
	case CDATANode:
		sb.WriteString(indent)
		sb.WriteString("<![CDATA[")
		sb.WriteString(n.text)
		sb.WriteString("]]>")
	case CommentNode:
		sb.WriteString(indent)
		sb.WriteString("<!--")
		sb.WriteString(n.text)
		sb.WriteString("-->")
	case ProcessingInstructionNode:
		sb.WriteString(indent)
		sb.WriteString("<?")
		sb.WriteString(n.name.Local)
		if n.text != "" {
			sb.WriteString(" ")
			sb.WriteString(n.text)
		}
		sb.WriteString("?>")
	case AttributeNode:
		sb.WriteString(indent)
		sb.WriteString(escapeAttribute(n.text))
	case ElementNode:
		n.writeElement(sb, depth, indent)
	}
}

func (n *Node) writeElement(sb *strings.Builder, depth int, indent string) {
	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(n.tagName())
	for _, ns := range n.namespaces {
		if ns.Prefix == "" {
			sb.WriteString(` xmlns="` + escapeAttribute(ns.URI) + `"`)
		} else {
			sb.WriteString(" xmlns:" + ns.Prefix + `="` + escapeAttribute(ns.URI) + `"`)
		}
	}
	for _, a := range n.attrs {
		sb.WriteString(" ")
		sb.WriteString(a.name.Local)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttribute(a.text))
		sb.WriteString(`"`)
	}

	if len(n.children) == 0 {
		sb.WriteString("/>")
		return
	}

	if n.HasSimpleContent() {
		sb.WriteString(">")
		sb.WriteString(escapeText(n.TextContent()))
		sb.WriteString("</")
		sb.WriteString(n.tagName())
		sb.WriteString(">")
		return
	}

	sb.WriteString(">")
	for _, c := range n.children {
		sb.WriteString("\n")
		c.writeXML(sb, depth+1)
	}
	sb.WriteString("\n")
	sb.WriteString(indent)
	sb.WriteString("</")
	sb.WriteString(n.tagName())
	sb.WriteString(">")
}

// tagName renders the qualified tag, using an in-scope prefix for the
// namespace URI when one is declared.
func (n *Node) tagName() string {
	if n.name.URI == "" {
		return n.name.Local
	}
	for _, ns := range n.InScopeNamespaces() {
		if ns.URI == n.name.URI && ns.Prefix != "" {
			return ns.Prefix + ":" + n.name.Local
		}
	}
	return n.name.Local
}

// ToString renders the list: concatenated text content when the list has
// simple content, the full serialisation otherwise.
func (l *List) ToString() string {
	if l.HasSimpleContent() {
		var sb strings.Builder
		for _, n := range l.items {
			if n.kind == CommentNode || n.kind == ProcessingInstructionNode {
				continue
			}
			sb.WriteString(n.TextContent())
		}
		return sb.String()
	}
	return l.ToXMLString()
}

// ToXMLString always serialises, one item per line.
func (l *List) ToXMLString() string {
	parts := make([]string, len(l.items))
	for i, n := range l.items {
		parts[i] = n.XMLString()
	}
	return strings.Join(parts, "\n")
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttribute(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;", "\n", "&#xA;", "\t", "&#x9;")
	return r.Replace(s)
}
