// File: timer/countdown.go
// Author: momentics <momentics@gmail.com>
//
// One-shot countdown with an idempotent expiry latch and whole-second
// remaining-time queries.

package timer

import (
	"errors"
	"time"

	"github.com/momentics/hioload-loop/api"
	"github.com/momentics/hioload-loop/reactor"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

type options struct {
	src api.TimerSource
	log zerolog.Logger
}

// Option configures a Countdown.
type Option func(*options)

// WithSource replaces the kernel timer descriptor.
func WithSource(src api.TimerSource) Option {
	return func(o *options) { o.src = src }
}

// WithLogger sets the logger for descriptor anomalies.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Countdown is used from the loop goroutine only.
type Countdown struct {
	src     api.TimerSource
	reg     *reactor.Registration
	expired bool // fired since the last Start
	closed  bool
	log     zerolog.Logger
}

// New allocates a timer descriptor and registers it with mux for read
// readiness. The countdown starts disarmed.
func New(mux *reactor.Multiplexer, opts ...Option) (*Countdown, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	src := o.src
	if src == nil {
		var err error
		if src, err = newSource(); err != nil {
			o.log.Error().Err(err).Msg("timerfd create failed")
			return nil, api.NewError(api.ErrCodeTimerCreate, "create timer descriptor").Wrap(err)
		}
	}

	c := &Countdown{src: src, log: o.log}
	c.reg = reactor.NewRegistration(src.Fd(), nil, c)
	if err := mux.Add(c.reg); err != nil {
		return nil, multierr.Append(err, src.Close())
	}
	return c, nil
}

// Registration returns the multiplexer registration of the descriptor.
func (c *Countdown) Registration() *reactor.Registration {
	return c.reg
}

// Close closes the descriptor. Remove the registration from the multiplexer
// first if it is still active.
func (c *Countdown) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.src.Close()
}

// Start arms a one-shot countdown of seconds and clears the expiry latch,
// even when a previous expiry was never observed. Start(0) leaves the timer
// disarmed.
func (c *Countdown) Start(seconds int) {
	c.expired = false
	if seconds < 0 {
		seconds = 0
	}
	if err := c.src.Arm(time.Duration(seconds) * time.Second); err != nil {
		c.log.Error().Err(err).Int("fd", c.reg.FD).Msg("timerfd settime failed")
	}
}

// Stop disarms the timer. The latch is left as is.
func (c *Countdown) Stop() {
	if err := c.src.Arm(0); err != nil {
		c.log.Error().Err(err).Int("fd", c.reg.FD).Msg("timerfd settime failed")
	}
}

// Expired reports whether the countdown has fired since the last Start.
// Once true it stays true without touching the descriptor again, so repeated
// and speculative checks agree. Read anomalies are logged and treated as
// "still running".
func (c *Countdown) Expired() bool {
	if c.expired {
		return true
	}

	var buf [8]byte
	n, err := c.src.Read(buf[:])
	switch {
	case err == nil && n == len(buf):
		c.expired = true
		return true
	case errors.Is(err, api.ErrWouldBlock):
	case err != nil:
		c.log.Error().Err(err).Int("fd", c.reg.FD).Msg("timerfd read failed")
	default:
		c.log.Error().Int("fd", c.reg.FD).Int("bytes", n).Msg("timerfd short read")
	}
	return false
}

// SecondsRemaining returns which second of the countdown is running: the
// remaining time rounded up to whole seconds, 0 once elapsed. Callers
// counting discrete ticks see 3, 2, 1, 0 for Start(3).
func (c *Countdown) SecondsRemaining() int {
	d, err := c.src.Remaining()
	if err != nil {
		c.log.Error().Err(err).Int("fd", c.reg.FD).Msg("timerfd gettime failed")
		return 0
	}
	return ceilSeconds(d)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	s := d / time.Second
	if d%time.Second != 0 {
		s++
	}
	return int(s)
}
