package van

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a high-level error category, grounded on the teacher's
// UblkErrorCode classification but retextured to the cable/endpoint
// domain: there is no kernel device or errno here, so categories
// describe contract violations and resource exhaustion instead of I/O
// syscall failures.
type Code string

const (
	CodeContractViolation Code = "contract violation"
	CodeResourceLimit     Code = "resource limit exceeded"
	CodeNotFound          Code = "not found"
	CodeAlreadyOpen       Code = "already open"
	CodeIOError           Code = "i/o error"
)

// Error is a structured error carrying the failing operation, the
// endpoint it concerns (if any), and a category usable with IsCode.
type Error struct {
	Op         string
	EndpointID int // -1 if not applicable
	Code       Code
	Msg        string
	Inner      error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.EndpointID >= 0 {
		parts = append(parts, fmt.Sprintf("endpoint=%d", e.EndpointID))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("van: %s (%s)", msg, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("van: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates an error with no associated endpoint.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, EndpointID: -1, Code: code, Msg: msg}
}

// NewEndpointError creates an error scoped to a specific endpoint.
func NewEndpointError(op string, endpointID int, code Code, msg string) *Error {
	return &Error{Op: op, EndpointID: endpointID, Code: code, Msg: msg}
}

// WrapError wraps an arbitrary error (typically a shm/semaphore syscall
// failure) with van context, defaulting to CodeIOError.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if ve, ok := inner.(*Error); ok {
		return &Error{Op: op, EndpointID: ve.EndpointID, Code: ve.Code, Msg: ve.Msg, Inner: ve.Inner}
	}
	return &Error{Op: op, EndpointID: -1, Code: CodeIOError, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is (or wraps) a *Error with the given code.
func IsCode(err error, code Code) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
