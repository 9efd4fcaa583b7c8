// File: reactor/multiplexer.go
// Author: momentics <momentics@gmail.com>
//
// Multiplexer owns the kernel polling context and dispatches one batch of
// ready registrations at a time.

package reactor

import (
	"github.com/momentics/hioload-loop/api"
	"github.com/momentics/hioload-loop/control"
	"github.com/rs/zerolog"
)

type readySlot struct {
	reg    *Registration
	events api.Events
}

// DispatchStats describes one dispatch cycle.
type DispatchStats struct {
	Invoked int // handler callbacks run
	Retired int // slots skipped because their registration was gone
}

// Multiplexer is not safe for concurrent use; every method must be called
// from the loop goroutine, handlers included.
type Multiplexer struct {
	poller api.Poller
	slots  slotTable
	byFD   map[int]*Registration

	raw     []api.Event
	batch   []readySlot
	pending int

	dispatching bool
	closed      bool
	log         zerolog.Logger
}

// New creates the polling context.
func New(opts ...Option) (*Multiplexer, error) {
	o := muxOptions{
		batchSize: control.DefaultBatchSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.batchSize <= 0 {
		return nil, api.NewError(api.ErrCodeInit, "invalid batch size").WithContext("batch_size", o.batchSize)
	}

	p := o.poller
	if p == nil {
		var err error
		if p, err = newPoller(); err != nil {
			o.log.Error().Err(err).Msg("epoll create failed")
			return nil, api.NewError(api.ErrCodeInit, "create polling context").Wrap(err)
		}
	}

	return &Multiplexer{
		poller: p,
		byFD:   make(map[int]*Registration),
		raw:    make([]api.Event, o.batchSize),
		batch:  make([]readySlot, o.batchSize),
		log:    o.log,
	}, nil
}

// Add registers reg.FD for read readiness. On error reg stays inactive.
func (m *Multiplexer) Add(reg *Registration) error {
	if reg == nil {
		return api.NewError(api.ErrCodeRegister, "nil registration")
	}
	if m.closed {
		return api.NewError(api.ErrCodeRegister, "multiplexer closed").WithContext("fd", reg.FD)
	}
	if reg.active {
		return api.NewError(api.ErrCodeRegister, "registration already added").WithContext("fd", reg.FD)
	}
	if _, ok := m.byFD[reg.FD]; ok {
		return api.NewError(api.ErrCodeRegister, "descriptor already registered").WithContext("fd", reg.FD)
	}

	tok := m.slots.alloc(reg)
	if err := m.poller.Add(reg.FD, api.EventRead, uint64(tok)); err != nil {
		m.slots.release(tok)
		m.log.Error().Err(err).Int("fd", reg.FD).Msg("epoll ctl add failed")
		return api.NewError(api.ErrCodeRegister, "epoll ctl add").WithContext("fd", reg.FD).Wrap(err)
	}

	reg.token = tok
	reg.active = true
	reg.backRef = noSlot
	m.byFD[reg.FD] = reg
	return nil
}

// Remove deregisters reg. If reg is pending in the batch being dispatched its
// slot is emptied, so its handler is not called later in the same cycle.
// On kernel failure reg stays registered.
func (m *Multiplexer) Remove(reg *Registration) error {
	if reg == nil || !reg.active {
		return api.NewError(api.ErrCodeDeregister, "registration not added")
	}
	if m.closed {
		return api.NewError(api.ErrCodeDeregister, "multiplexer closed").WithContext("fd", reg.FD)
	}
	if err := m.poller.Remove(reg.FD); err != nil {
		m.log.Error().Err(err).Int("fd", reg.FD).Msg("epoll ctl del failed")
		return api.NewError(api.ErrCodeDeregister, "epoll ctl del").WithContext("fd", reg.FD).Wrap(err)
	}

	m.slots.release(reg.token)
	delete(m.byFD, reg.FD)
	reg.active = false
	if i := reg.backRef; i != noSlot && i < m.pending && m.batch[i].reg == reg {
		m.batch[i].reg = nil
	}
	reg.backRef = noSlot
	return nil
}

// Wait blocks for up to timeoutMs and loads the ready registrations into the
// batch consumed by Dispatch. It returns api.ErrInterrupted untouched.
func (m *Multiplexer) Wait(timeoutMs int) (int, error) {
	if m.closed {
		return 0, api.NewError(api.ErrCodeInternal, "multiplexer closed")
	}
	if m.dispatching {
		return 0, api.NewError(api.ErrCodeInternal, "wait called from a handler")
	}
	m.pending = 0
	n, err := m.poller.Wait(m.raw, timeoutMs)
	if err != nil {
		return 0, err
	}
	if n > len(m.raw) {
		n = len(m.raw)
	}
	for i := 0; i < n; i++ {
		m.batch[i] = readySlot{
			reg:    m.slots.resolve(token(m.raw[i].Key)),
			events: m.raw[i].Events,
		}
	}
	m.pending = n
	return n, nil
}

// Dispatch runs the handlers of the batch loaded by the last Wait.
//
// Back-references are set for the whole batch before any handler runs, so a
// handler removing another registration of the same batch empties that slot
// and the removed handler is skipped. Back-references are cleared once all
// handlers have returned.
func (m *Multiplexer) Dispatch() DispatchStats {
	var stats DispatchStats
	n := m.pending
	if n == 0 {
		return stats
	}
	m.dispatching = true
	defer func() {
		for i := 0; i < n; i++ {
			if reg := m.batch[i].reg; reg != nil {
				reg.backRef = noSlot
			}
			m.batch[i] = readySlot{}
		}
		m.pending = 0
		m.dispatching = false
	}()

	for i := 0; i < n; i++ {
		if reg := m.batch[i].reg; reg != nil {
			reg.backRef = i
		}
	}

	for i := 0; i < n; i++ {
		reg := m.batch[i].reg
		if reg == nil {
			stats.Retired++
			continue
		}
		if reg.Handler == nil {
			continue
		}
		reg.Handler.HandleEvents(m.batch[i].events, reg)
		stats.Invoked++
	}
	return stats
}

// Len returns the number of active registrations.
func (m *Multiplexer) Len() int {
	return m.slots.live
}

// Close releases the polling context. Registered descriptors stay open; their
// owners close them.
func (m *Multiplexer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.poller.Close()
}
