// Package xerrors provides small generics-friendly helpers over the
// standard errors package.
package xerrors

import "errors"

// AsA unwraps err as the concrete error type T, searching the wrap chain
// the way [errors.As] does. The zero T is returned when no error in the
// chain has that type.
func AsA[T error](err error) (e T, ok bool) {
	ok = errors.As(err, &e)
	return
}
