package avm

import (
	"github.com/flier/avmcore/pkg/opt"
)

// Name is a qualified property name as seen by the binding layer.
//
// NS is None when the lookup runs over the open namespace set (which always
// includes the public namespace); a Some holds a single namespace URI, with
// "" being public. Attr marks attribute lookups (E4X `@name`).
type Name struct {
	NS    opt.Option[string]
	Local string
	Attr  bool
}

// PublicName returns a name in the public namespace.
func PublicName(local string) Name {
	return Name{NS: opt.Some(""), Local: local}
}

// AnyName returns a name that matches over the open namespace set.
func AnyName(local string) Name {
	return Name{NS: opt.None[string](), Local: local}
}

// AttributeName returns an attribute name in the public namespace.
func AttributeName(local string) Name {
	return Name{NS: opt.Some(""), Local: local, Attr: true}
}

// QualifiedName returns a name in the given namespace.
func QualifiedName(uri, local string) Name {
	return Name{NS: opt.Some(uri), Local: local}
}

// IsPublic returns true if the name resolves in the public namespace.
func (n Name) IsPublic() bool {
	return n.NS.IsNone() || opt.Equal(n.NS, opt.Some(""))
}

// String implements [fmt.Stringer].
func (n Name) String() string {
	s := n.Local
	if n.NS.IsSomeAnd(func(uri string) bool { return uri != "" }) {
		s = n.NS.Unwrap() + "::" + s
	}
	if n.Attr {
		s = "@" + s
	}
	return s
}
