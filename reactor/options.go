// File: reactor/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for the multiplexer and the dispatch loop.

package reactor

import (
	"github.com/benbjohnson/clock"
	"github.com/momentics/hioload-loop/api"
	"github.com/momentics/hioload-loop/control"
	"github.com/rs/zerolog"
)

type muxOptions struct {
	poller    api.Poller
	batchSize int
	log       zerolog.Logger
}

// Option configures a Multiplexer.
type Option func(*muxOptions)

// WithPoller replaces the kernel polling backend.
func WithPoller(p api.Poller) Option {
	return func(o *muxOptions) { o.poller = p }
}

// WithBatchSize sets the number of readiness slots fetched per wait.
func WithBatchSize(n int) Option {
	return func(o *muxOptions) { o.batchSize = n }
}

// WithLogger sets the logger of the multiplexer and of loops built on it.
func WithLogger(l zerolog.Logger) Option {
	return func(o *muxOptions) { o.log = l }
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock replaces the monotonic clock.
func WithClock(c clock.Clock) LoopOption {
	return func(l *Loop) { l.clock = c }
}

// WithLoopConfig sets the tick interval and the clock discontinuity thresholds.
func WithLoopConfig(cfg control.LoopConfig) LoopOption {
	return func(l *Loop) { l.cfg = cfg }
}

// WithMetrics records loop counters in m. Nil disables metrics.
func WithMetrics(m *control.LoopMetrics) LoopOption {
	return func(l *Loop) { l.metrics = m }
}

// WithLoopLogger overrides the logger inherited from the multiplexer.
func WithLoopLogger(log zerolog.Logger) LoopOption {
	return func(l *Loop) { l.log = log }
}
