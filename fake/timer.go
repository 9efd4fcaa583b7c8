// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/momentics/hioload-loop/api"
)

// ErrTimerClosed is returned by calls on a closed Timer.
var ErrTimerClosed = errors.New("fake: timer closed")

// Timer is an api.TimerSource driven by Elapse instead of a clock.
type Timer struct {
	fd        int
	remaining time.Duration
	fired     uint64
	closed    bool

	// Reads counts Read calls.
	Reads int
	// Arms records every armed duration.
	Arms []time.Duration
	// ReadErr, ArmErr and GetErr, when set, are returned by the matching call.
	ReadErr error
	ArmErr  error
	GetErr  error
	// ShortRead makes a fired timer return fewer than 8 bytes.
	ShortRead bool
}

// NewTimer returns a disarmed timer reporting fd.
func NewTimer(fd int) *Timer {
	return &Timer{fd: fd}
}

// Fd returns the descriptor given to NewTimer.
func (t *Timer) Fd() int {
	return t.fd
}

// Arm records d, restarts the countdown and drops unread expirations.
func (t *Timer) Arm(d time.Duration) error {
	if t.closed {
		return ErrTimerClosed
	}
	if t.ArmErr != nil {
		return t.ArmErr
	}
	t.Arms = append(t.Arms, d)
	t.remaining = d
	t.fired = 0
	return nil
}

// Elapse advances the countdown by d and fires it when it reaches zero.
func (t *Timer) Elapse(d time.Duration) {
	if t.remaining <= 0 {
		return
	}
	if d >= t.remaining {
		t.remaining = 0
		t.fired++
		return
	}
	t.remaining -= d
}

// Remaining returns the time left, or GetErr when set.
func (t *Timer) Remaining() (time.Duration, error) {
	if t.GetErr != nil {
		return 0, t.GetErr
	}
	return t.remaining, nil
}

// Read returns the expiration count once fired and api.ErrWouldBlock before.
func (t *Timer) Read(p []byte) (int, error) {
	t.Reads++
	switch {
	case t.closed:
		return 0, ErrTimerClosed
	case t.ReadErr != nil:
		return 0, t.ReadErr
	case t.fired == 0:
		return 0, api.ErrWouldBlock
	}
	if len(p) < 8 {
		return 0, errors.New("fake: buffer too small")
	}
	binary.NativeEndian.PutUint64(p, t.fired)
	t.fired = 0
	if t.ShortRead {
		return 4, nil
	}
	return 8, nil
}

// Closed reports whether Close was called.
func (t *Timer) Closed() bool {
	return t.closed
}

// Close marks the timer closed; a second call fails.
func (t *Timer) Close() error {
	if t.closed {
		return ErrTimerClosed
	}
	t.closed = true
	return nil
}
