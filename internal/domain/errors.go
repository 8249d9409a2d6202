package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindStoreUnavailable Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "store_unavailable"
	}
}

var (
	ErrBadRequest        = &Error{Kind: KindBadRequest, Err: errors.New("bad request")}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Err: errors.New("unauthenticated")}
	ErrForbidden         = &Error{Kind: KindForbidden, Err: errors.New("forbidden")}
	ErrNotFound          = &Error{Kind: KindNotFound, Err: errors.New("cart not found")}
	ErrAlreadyCheckedOut = &Error{Kind: KindConflict, Err: errors.New("cart is already checked out")}

	// ErrStateMismatch is returned by a conditional state update whose precondition no longer holds.
	ErrStateMismatch = &Error{Kind: KindConflict, Err: errors.New("cart state precondition failed")}
)

// Error carries a Kind through wrapping so that the transport can classify failures.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a kinded error for op wrapping err.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// DecodeError reports a stored row that does not satisfy the cart schema.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode field[%s]: %s", e.Field, e.Reason)
}

// KindOf classifies err by the outermost kinded error in its chain. Anything else,
// including a bare DecodeError from a stored row, is a store failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreUnavailable
}
