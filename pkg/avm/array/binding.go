package array

import (
	"github.com/flier/avmcore/pkg/avm"
)

// Property-binding bridge. Name and key lookups route to index storage
// when the name parses as an array index in the public namespace, and fall
// through to the dynamic property table otherwise. The reserved all-ones
// u32 never parses as an index, so it lands on the string path
// unconditionally.

func (a *Array) ensureDyn() *avm.DynamicObject {
	if a.dyn == nil {
		a.dyn = avm.NewDynamicObject(a.proto)
	}
	return a.dyn
}

// GetProperty resolves a qualified name on this array, walking the
// prototype chain for misses.
func (a *Array) GetProperty(name avm.Name) avm.Value {
	if i := avm.IndexOfName(name); i.IsSome() {
		return a.ValueAt(i.Unwrap())
	}
	if name.IsPublic() && name.Local == "length" {
		return avm.UInt(a.length)
	}
	if a.dyn != nil {
		if v, ok := a.dyn.TryGetProperty(name); ok {
			return v
		}
	}
	return avm.GetPropertyChain(a.proto, name)
}

// SetProperty assigns a qualified name on this array.
func (a *Array) SetProperty(name avm.Name, v avm.Value) error {
	if i := avm.IndexOfName(name); i.IsSome() {
		a.Set(i.Unwrap(), v)
		return nil
	}
	if name.IsPublic() && name.Local == "length" {
		n := avm.ToNumber(v)
		u := avm.ToUint32(v)
		if float64(u) != n {
			return avm.NewError(avm.CodeArrayLengthNotPositiveInteger,
				"array length %v is not a positive integer", n)
		}
		a.SetLength(u)
		return nil
	}
	a.ensureDyn().TrySetProperty(name, v)
	return nil
}

// GetKey resolves a runtime key (integer, unsigned, double or string).
func (a *Array) GetKey(key avm.Value) avm.Value {
	if i := avm.IndexOfValue(key); i.IsSome() {
		return a.ValueAt(i.Unwrap())
	}
	return a.GetProperty(avm.PublicName(avm.ToString(key)))
}

// SetKey assigns a runtime key.
func (a *Array) SetKey(key, v avm.Value) error {
	if i := avm.IndexOfValue(key); i.IsSome() {
		a.Set(i.Unwrap(), v)
		return nil
	}
	return a.SetProperty(avm.PublicName(avm.ToString(key)), v)
}

// DeleteKey removes a runtime key.
func (a *Array) DeleteKey(key avm.Value) bool {
	if i := avm.IndexOfValue(key); i.IsSome() {
		return a.Delete(i.Unwrap())
	}
	if a.dyn == nil {
		return false
	}
	return a.dyn.DeleteProperty(avm.PublicName(avm.ToString(key)))
}

// avm.Object implementation, so an Array can sit on a prototype chain and
// be the receiver of generic host property traffic.

func (a *Array) HasProperty(name avm.Name) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return a.Has(i.Unwrap())
	}
	if name.IsPublic() && name.Local == "length" {
		return true
	}
	return a.dyn != nil && a.dyn.HasProperty(name)
}

func (a *Array) TryGetProperty(name avm.Name) (avm.Value, bool) {
	if i := avm.IndexOfName(name); i.IsSome() {
		if v := a.Get(i.Unwrap()); !v.IsEmpty() {
			return v, true
		}
		return avm.Undefined(), false
	}
	if name.IsPublic() && name.Local == "length" {
		return avm.UInt(a.length), true
	}
	if a.dyn != nil {
		return a.dyn.TryGetProperty(name)
	}
	return avm.Undefined(), false
}

func (a *Array) TrySetProperty(name avm.Name, v avm.Value) bool {
	return a.SetProperty(name, v) == nil
}

func (a *Array) DeleteProperty(name avm.Name) bool {
	if i := avm.IndexOfName(name); i.IsSome() {
		return a.Delete(i.Unwrap())
	}
	return a.dyn != nil && a.dyn.DeleteProperty(name)
}

func (a *Array) Proto() avm.Object { return a.proto }
