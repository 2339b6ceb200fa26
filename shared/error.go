package shared

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindResourceNotFound
	KindInvalidState
	KindInvalidArgument
	KindContextAcquisition
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindResourceNotFound:
		return "resource_not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindContextAcquisition:
		return "context_acquisition"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error carries a failure kind together with either a fixed human readable
// message or the underlying error. When Message is empty the wrapped error's
// text is reported unchanged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewResourceNotFound(message string) *Error {
	return &Error{Kind: KindResourceNotFound, Message: message}
}

func NewInvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func NewInvalidArgument(format string, a ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, a...)}
}

func Wrap(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match for any *Error of the same kind, so callers can test
// with errors.Is(err, &shared.Error{Kind: shared.KindInvalidState}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
