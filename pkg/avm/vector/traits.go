package vector

import (
	"math"

	"github.com/flier/avmcore/pkg/avm"
)

// Int32Elem is the element descriptor for Vector.<int>.
func Int32Elem() Elem[int32] {
	return Elem[int32]{
		Coerce: func(v avm.Value) (int32, error) { return avm.ToInt32(v), nil },
		Box:    avm.Int,
	}
}

// UInt32Elem is the element descriptor for Vector.<uint>.
func UInt32Elem() Elem[uint32] {
	return Elem[uint32]{
		Coerce: func(v avm.Value) (uint32, error) { return avm.ToUint32(v), nil },
		Box:    avm.UInt,
	}
}

// NumberElem is the element descriptor for Vector.<Number>. Uninitialised
// cells read as NaN.
func NumberElem() Elem[float64] {
	return Elem[float64]{
		Coerce: func(v avm.Value) (float64, error) { return avm.ToNumber(v), nil },
		Box:    avm.Number,
		Zero:   math.NaN(),
	}
}

// BooleanElem is the element descriptor for Vector.<Boolean>.
func BooleanElem() Elem[bool] {
	return Elem[bool]{
		Coerce: func(v avm.Value) (bool, error) { return avm.ToBoolean(v), nil },
		Box:    avm.Bool,
	}
}

// StringElem is the element descriptor for Vector.<String>. Null and
// undefined coerce to the empty string, which is also the cell zero value.
func StringElem() Elem[string] {
	return Elem[string]{
		Coerce: func(v avm.Value) (string, error) {
			if v.IsNullOrUndefined() {
				return "", nil
			}
			return avm.ToString(v), nil
		},
		Box: avm.String,
	}
}

// AnyElem is the element descriptor for Vector.<*>. Uninitialised cells
// read as null.
func AnyElem() Elem[avm.Value] {
	return Elem[avm.Value]{
		Coerce: func(v avm.Value) (avm.Value, error) { return v.OrUndefined(), nil },
		Box:    func(v avm.Value) avm.Value { return v },
		Zero:   avm.Null(),
	}
}

// ObjectElem is the element descriptor for a reference-typed vector whose
// elements must satisfy the given cast. A failing cast reports CastError.
func ObjectElem(cast func(avm.Object) bool) Elem[avm.Object] {
	return Elem[avm.Object]{
		Coerce: func(v avm.Value) (avm.Object, error) {
			if v.IsNullOrUndefined() {
				return nil, nil
			}
			o := v.AsObject()
			if o == nil || (cast != nil && !cast(o)) {
				return nil, avm.NewError(avm.CodeCastError, "value cannot be cast to the vector element type")
			}
			return o, nil
		},
		Box: avm.ObjectOf,
	}
}
