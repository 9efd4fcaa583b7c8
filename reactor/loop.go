// File: reactor/loop.go
// Author: momentics <momentics@gmail.com>
//
// Dispatch loop: one goroutine waits on the multiplexer, dispatches ready
// handlers and runs the periodic tick, resynchronizing the tick schedule
// after clock discontinuities instead of replaying missed ticks.

package reactor

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/momentics/hioload-loop/api"
	"github.com/momentics/hioload-loop/control"
	"github.com/rs/zerolog"
)

// maxWaitMs bounds a single wait so the schedule is rechecked at least once
// a second whatever the configured slack.
const maxWaitMs = 1000

// Loop drives a Multiplexer. Run must be called from a single goroutine.
type Loop struct {
	mux     *Multiplexer
	tick    api.TickFunc
	clock   clock.Clock
	cfg     control.LoopConfig
	metrics *control.LoopMetrics
	log     zerolog.Logger

	next time.Time
}

// NewLoop creates a loop over mux invoking tick once per tick interval.
// A nil tick is allowed.
func NewLoop(mux *Multiplexer, tick api.TickFunc, opts ...LoopOption) *Loop {
	if tick == nil {
		tick = func() {}
	}
	l := &Loop{
		mux:   mux,
		tick:  tick,
		clock: clock.New(),
		cfg:   control.DefaultLoopConfig(),
		log:   mux.log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run iterates until quit is observed set at the top of an iteration.
// An iteration in progress always completes. Run fails with
// api.ErrCodeInvalidArgument on a bad schedule and api.ErrCodeWaitFatal on a
// non-transient wait failure.
func (l *Loop) Run(quit *atomic.Bool) error {
	if quit == nil {
		quit = new(atomic.Bool)
	}
	return l.run(quit.Load)
}

// RunContext runs the loop until ctx is done. Cancellation is observed at the
// top of the next iteration, like the quit flag of Run.
func (l *Loop) RunContext(ctx context.Context) error {
	return l.run(func() bool { return ctx.Err() != nil })
}

func (l *Loop) run(stopped func() bool) error {
	if err := l.cfg.ValidateSchedule(); err != nil {
		return api.NewError(api.ErrCodeInvalidArgument, "loop config").Wrap(err)
	}
	l.next = l.clock.Now().Add(l.cfg.TickInterval)
	l.log.Debug().
		Dur("tick_interval", l.cfg.TickInterval).
		Int("registrations", l.mux.Len()).
		Msg("dispatch loop started")

	for !stopped() {
		if err := l.iterate(); err != nil {
			return err
		}
	}
	l.log.Debug().Msg("dispatch loop stopped")
	return nil
}

// NextDeadline returns the instant of the next scheduled tick.
func (l *Loop) NextDeadline() time.Time {
	return l.next
}

// RegisterProbes exposes loop state through dp.
func (l *Loop) RegisterProbes(dp *control.DebugProbes) {
	dp.RegisterProbe("reactor.registrations", func() any { return l.mux.Len() })
	dp.RegisterProbe("loop.next_deadline", func() any { return l.next })
	dp.RegisterProbe("loop.metrics", func() any { return l.metrics.Snapshot() })
}

func (l *Loop) iterate() error {
	timeout := l.schedule(l.clock.Now())

	start := l.clock.Now()
	n, err := l.mux.Wait(timeout)
	l.metrics.Waited(l.clock.Since(start))
	if err != nil {
		if errors.Is(err, api.ErrInterrupted) {
			l.metrics.Interrupted()
			return nil
		}
		l.log.Error().Err(err).Msg("epoll wait failed")
		return api.NewError(api.ErrCodeWaitFatal, "wait for readiness").Wrap(err)
	}
	if n == 0 {
		return nil
	}
	stats := l.mux.Dispatch()
	l.metrics.Dispatched(stats.Invoked, stats.Retired)
	return nil
}

// schedule runs the tick when its deadline is due or out of range and
// returns the wait timeout in milliseconds.
//
// A deadline more than MaxSlackMs ahead means the clock went backwards; one
// missed by more than MaxLagMs means it jumped forward. Either way a single
// tick runs and the schedule restarts from now.
func (l *Loop) schedule(now time.Time) int {
	diff := saturateMs(l.next.Sub(now))
	if diff >= 0 && diff <= l.cfg.MaxSlackMs {
		return min(diff, maxWaitMs)
	}

	l.tick()
	l.metrics.Tick()
	l.next = l.next.Add(l.cfg.TickInterval)

	if diff < -l.cfg.MaxLagMs || diff > l.cfg.MaxSlackMs {
		l.next = now.Add(l.cfg.TickInterval)
		l.metrics.Resync()
		l.log.Warn().Int("diff_ms", diff).Msg("clock discontinuity, tick schedule resynchronized")
	}
	return 0
}

func saturateMs(d time.Duration) int {
	ms := d.Milliseconds()
	switch {
	case ms > math.MaxInt32:
		return math.MaxInt32
	case ms < math.MinInt32:
		return math.MinInt32
	}
	return int(ms)
}
