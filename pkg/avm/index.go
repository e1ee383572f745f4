package avm

import (
	"math"

	"github.com/flier/avmcore/pkg/opt"
)

// MaxIndex is the largest valid array index. The all-ones u32 is reserved as
// a non-index, so indices live in [0, MaxIndex].
const MaxIndex uint32 = math.MaxUint32 - 1

// ParseArrayIndex parses a canonical decimal array index from a string.
//
// A valid index string is a decimal representation of a value in
// [0, 2³²−1). Unless allowLeadingZeroes is set, "0" is the only string that
// may start with a zero digit.
func ParseArrayIndex(s string, allowLeadingZeroes bool) opt.Option[uint32] {
	if s == "" || len(s) > 10 && !allowLeadingZeroes {
		return opt.None[uint32]()
	}

	if !allowLeadingZeroes && s[0] == '0' && len(s) > 1 {
		return opt.None[uint32]()
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return opt.None[uint32]()
		}
		n = n*10 + uint64(c-'0')
		if n > math.MaxUint32 {
			return opt.None[uint32]()
		}
	}

	if n == math.MaxUint32 {
		return opt.None[uint32]()
	}
	return opt.Some(uint32(n))
}

// IndexOfValue maps a value to an array index when the ECMAScript coercion
// rules allow it.
//
// Integer and floating-point keys map iff u32(key) == key and the result is
// not the reserved all-ones index. String keys map through
// [ParseArrayIndex]. Everything else falls through to the generic dynamic
// property path.
func IndexOfValue(v Value) opt.Option[uint32] {
	switch v.kind {
	case KindNumber:
		n := v.num
		if n < 0 || n != math.Trunc(n) || n >= math.MaxUint32 || math.IsNaN(n) {
			return opt.None[uint32]()
		}
		return opt.Some(uint32(n))
	case KindString:
		return ParseArrayIndex(v.str, false)
	default:
		return opt.None[uint32]()
	}
}

// IndexOfName maps a qualified property name to an array index.
//
// Only public-namespace names participate in index addressing.
func IndexOfName(name Name) opt.Option[uint32] {
	if !name.IsPublic() || name.Attr {
		return opt.None[uint32]()
	}
	return ParseArrayIndex(name.Local, false)
}

// IndexToString renders an index as its canonical property-name string.
func IndexToString(i uint32) string {
	return formatNumber(float64(i))
}
