// File: api/timer.go
// Author: momentics <momentics@gmail.com>
//
// Kernel timer object contract used by the countdown timer.

package api

import (
	"errors"
	"time"
)

// ErrWouldBlock reports a non-blocking read with nothing to return.
var ErrWouldBlock = errors.New("operation would block")

// TimerSource is a readable one-shot kernel timer.
type TimerSource interface {
	// Fd returns the descriptor the multiplexer watches.
	Fd() int

	// Arm starts a one-shot countdown of d, discarding pending expirations.
	// A zero d disarms the timer.
	Arm(d time.Duration) error

	// Remaining returns the time left, zero once elapsed or when disarmed.
	Remaining() (time.Duration, error)

	// Read reads the 8-byte expiration counter without blocking and returns
	// ErrWouldBlock when the timer has not fired.
	Read(p []byte) (int, error)

	Close() error
}
