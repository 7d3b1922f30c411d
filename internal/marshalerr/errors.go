// Package marshalerr defines the error taxonomy shared by every marshaling
// package.
//
// Each failure is reported as an *Error carrying a Kind. The Kind decides the
// stable message fragment that prefixes the error text, so callers can match
// on either errors.Is with a kind sentinel or on the fragment itself:
//
//	if errors.Is(err, marshalerr.ErrShapeMismatch) {
//	    // byte length and declared shape disagree
//	}
package marshalerr

import (
	"errors"
	"fmt"
)

// Kind classifies a marshaling failure.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidDimension
	ShapeMismatch
	IndexOutOfRange
	InvalidPermutation
	UnsupportedRank
	TypeMismatch
	EmptyCommand
	CardinalityViolation
	EngineFailure
	OutOfMemory
)

var kindFragments = map[Kind]string{
	KindUnknown:          "unknown error",
	InvalidDimension:     "invalid dimension",
	ShapeMismatch:        "shape mismatch",
	IndexOutOfRange:      "index out of range",
	InvalidPermutation:   "invalid permutation",
	UnsupportedRank:      "unsupported rank",
	TypeMismatch:         "type mismatch",
	EmptyCommand:         "empty command",
	CardinalityViolation: "cardinality violation",
	EngineFailure:        "engine failure",
	OutOfMemory:          "out of memory",
}

// String returns the greppable fragment used in error messages of this kind.
func (k Kind) String() string {
	if s, ok := kindFragments[k]; ok {
		return s
	}
	return kindFragments[KindUnknown]
}

// Error is a classified marshaling error.
type Error struct {
	Kind Kind   // failure class
	Op   string // operation that failed, e.g. "pixel.New"
	Msg  string // detail message
	Err  error  // underlying cause, if any
}

// Error implements the error interface.
//
// The format is "<op>: <kind fragment>: <msg>", with empty parts omitted.
// EngineFailure messages carry the engine's text verbatim after the fragment.
func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	} else if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrInvalidDimension     = &Error{Kind: InvalidDimension}
	ErrShapeMismatch        = &Error{Kind: ShapeMismatch}
	ErrIndexOutOfRange      = &Error{Kind: IndexOutOfRange}
	ErrInvalidPermutation   = &Error{Kind: InvalidPermutation}
	ErrUnsupportedRank      = &Error{Kind: UnsupportedRank}
	ErrTypeMismatch         = &Error{Kind: TypeMismatch}
	ErrEmptyCommand         = &Error{Kind: EmptyCommand}
	ErrCardinalityViolation = &Error{Kind: CardinalityViolation}
	ErrEngineFailure        = &Error{Kind: EngineFailure}
	ErrOutOfMemory          = &Error{Kind: OutOfMemory}
)

// New returns an *Error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind wrapping err. The message is err's
// text unchanged.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: err.Error(), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
