package avm

import (
	"fmt"

	"github.com/flier/avmcore/pkg/xerrors"
)

// Code identifies a class of runtime error raised by the containers.
//
// The numeric values are host-defined; only the identifiers are part of the
// surface contract.
type Code int

const (
	CodeArrayLengthNotPositiveInteger Code = 1000 + iota
	CodeArgumentOutOfRange
	CodeVectorIndexOutOfRange
	CodeVectorFixedLengthChange
	CodeCallbackMethodThisNotNull
	CodeXMLListOneItemOnly
	CodeUndefinedReference
	CodeCastError
	CodeOutOfMemory
)

var codeNames = map[Code]string{
	CodeArrayLengthNotPositiveInteger: "ArrayLengthNotPositiveInteger",
	CodeArgumentOutOfRange:            "ArgumentOutOfRange",
	CodeVectorIndexOutOfRange:         "VectorIndexOutOfRange",
	CodeVectorFixedLengthChange:       "VectorFixedLengthChange",
	CodeCallbackMethodThisNotNull:     "CallbackMethodThisNotNull",
	CodeXMLListOneItemOnly:            "XMLListOneItemOnly",
	CodeUndefinedReference:            "UndefinedReference",
	CodeCastError:                     "CastError",
	CodeOutOfMemory:                   "OutOfMemory",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a runtime error raised at the container surface.
type Error struct {
	Code    Code
	Message string
}

// NewError creates an Error with the given code and message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from an error chain, or 0.
func CodeOf(err error) Code {
	if e, ok := xerrors.AsA[*Error](err); ok {
		return e.Code
	}
	return 0
}
