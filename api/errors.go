// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the multiplexer, the dispatch loop and the countdown timer.

package api

import (
	"errors"
	"fmt"
)

// ErrInterrupted reports a wait cut short by a transient signal.
// The dispatch loop treats it as zero ready events and never surfaces it.
var ErrInterrupted = errors.New("wait interrupted")

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodeInternal
	// ErrCodeInit: the kernel polling context could not be created.
	ErrCodeInit
	// ErrCodeRegister: the kernel (or the slot table) rejected an add.
	ErrCodeRegister
	// ErrCodeDeregister: the kernel rejected a remove.
	ErrCodeDeregister
	// ErrCodeTimerCreate: no kernel timer descriptor could be allocated.
	ErrCodeTimerCreate
	// ErrCodeWaitFatal: the wait primitive failed for a non-transient reason.
	ErrCodeWaitFatal
)

// String returns the lower-case name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeNotSupported:
		return "not supported"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeInit:
		return "init"
	case ErrCodeRegister:
		return "register"
	case ErrCodeDeregister:
		return "deregister"
	case ErrCodeTimerCreate:
		return "timer create"
	case ErrCodeWaitFatal:
		return "wait fatal"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error represents a structured error with code, context and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) != 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause, usually a syscall errno.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap records err as the cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
