package avm

import (
	"github.com/flier/avmcore/pkg/avm/propmap"
)

// Object is the host object surface the containers depend on.
//
// The methods operate on the object's own properties only; use
// [GetPropertyChain] to walk the prototype chain.
type Object interface {
	HasProperty(name Name) bool
	TryGetProperty(name Name) (Value, bool)
	TrySetProperty(name Name, v Value) bool
	DeleteProperty(name Name) bool
	Proto() Object
}

// GetPropertyChain resolves name on o and then up its prototype chain,
// surfacing undefined when nothing is found.
func GetPropertyChain(o Object, name Name) Value {
	for ; o != nil; o = o.Proto() {
		if v, ok := o.TryGetProperty(name); ok {
			return v
		}
	}
	return Undefined()
}

// HasPropertyChain reports whether name resolves on o or its prototypes.
func HasPropertyChain(o Object, name Name) bool {
	for ; o != nil; o = o.Proto() {
		if o.HasProperty(name) {
			return true
		}
	}
	return false
}

// DynamicObject is a prototype-chained object with a dynamic property
// table. It backs the out-of-band property storage of the containers and
// serves as the plain "{}" object of the host model.
type DynamicObject struct {
	proto Object
	props *propmap.Map[string, Value]
	keys  []string // insertion order, for enumeration
}

// NewDynamicObject creates an empty dynamic object with the given prototype.
func NewDynamicObject(proto Object) *DynamicObject {
	return &DynamicObject{
		proto: proto,
		props: propmap.New[string, Value](8),
	}
}

// NewObjectWith creates a dynamic object holding the given properties.
func NewObjectWith(pairs map[string]Value) *DynamicObject {
	o := NewDynamicObject(nil)
	for k, v := range pairs {
		o.TrySetProperty(PublicName(k), v)
	}
	return o
}

func (o *DynamicObject) Proto() Object { return o.proto }

func (o *DynamicObject) HasProperty(name Name) bool {
	if !name.IsPublic() || name.Attr {
		return false
	}
	return o.props.Has(name.Local)
}

func (o *DynamicObject) TryGetProperty(name Name) (Value, bool) {
	if !name.IsPublic() || name.Attr {
		return Undefined(), false
	}
	return o.props.Get(name.Local)
}

func (o *DynamicObject) TrySetProperty(name Name, v Value) bool {
	if !name.IsPublic() || name.Attr {
		return false
	}
	if !o.props.Has(name.Local) {
		o.keys = append(o.keys, name.Local)
	}
	o.props.Put(name.Local, v)
	return true
}

func (o *DynamicObject) DeleteProperty(name Name) bool {
	if !name.IsPublic() || name.Attr {
		return false
	}
	if !o.props.Delete(name.Local) {
		return false
	}
	for i, k := range o.keys {
		if k == name.Local {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// OwnKeys returns the object's own enumerable keys in insertion order.
func (o *DynamicObject) OwnKeys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}
