// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides scripted stand-ins for kernel resources in tests.
package fake

import (
	"errors"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-loop/api"
)

// Errors returned by Poller, mirroring the kernel failures they stand for.
var (
	ErrClosed        = errors.New("fake: poller closed")
	ErrExists        = errors.New("fake: descriptor already registered")
	ErrNotRegistered = errors.New("fake: descriptor not registered")
)

// Ready scripts readiness of a registered descriptor.
type Ready struct {
	FD     int
	Events api.Events
}

type step struct {
	ready []Ready
	raw   []api.Event
	err   error
}

// Poller is an api.Poller whose Wait results are scripted in FIFO order.
// A Wait with nothing scripted reports zero events.
type Poller struct {
	keys   map[int]uint64
	script *queue.Queue
	carry  []api.Event
	closed bool

	// Timeouts records the timeout of every Wait call.
	Timeouts []int
	// OnWait runs at the start of every Wait, before the script is consulted.
	OnWait func(timeoutMs int)
	// AddErr and RemoveErr, when set, are returned instead of registering.
	AddErr    error
	RemoveErr error
}

// NewPoller returns an empty scripted poller.
func NewPoller() *Poller {
	return &Poller{
		keys:   make(map[int]uint64),
		script: queue.New(),
	}
}

// Push scripts one wait result. Descriptors not registered when the wait
// happens are dropped, as the kernel would.
func (p *Poller) Push(ready ...Ready) {
	p.script.Add(step{ready: ready})
}

// PushRaw scripts one wait result carrying payloads verbatim.
func (p *Poller) PushRaw(events ...api.Event) {
	p.script.Add(step{raw: events})
}

// PushErr scripts a failing wait.
func (p *Poller) PushErr(err error) {
	p.script.Add(step{err: err})
}

// Pending returns the number of scripted waits not consumed yet.
func (p *Poller) Pending() int {
	return p.script.Length()
}

// Key returns the payload stored for fd.
func (p *Poller) Key(fd int) (uint64, bool) {
	k, ok := p.keys[fd]
	return k, ok
}

// Registered reports whether fd is in the interest set.
func (p *Poller) Registered(fd int) bool {
	_, ok := p.keys[fd]
	return ok
}

// Closed reports whether Close was called.
func (p *Poller) Closed() bool {
	return p.closed
}

// Add stores key for fd, failing with AddErr when set.
func (p *Poller) Add(fd int, _ api.Events, key uint64) error {
	switch {
	case p.closed:
		return ErrClosed
	case p.AddErr != nil:
		return p.AddErr
	}
	if _, ok := p.keys[fd]; ok {
		return ErrExists
	}
	p.keys[fd] = key
	return nil
}

// Remove drops fd, failing with RemoveErr when set.
func (p *Poller) Remove(fd int) error {
	switch {
	case p.closed:
		return ErrClosed
	case p.RemoveErr != nil:
		return p.RemoveErr
	}
	if _, ok := p.keys[fd]; !ok {
		return ErrNotRegistered
	}
	delete(p.keys, fd)
	return nil
}

// Wait reports at most len(out) events; the remainder is carried over to the
// next call before the script is consulted again.
func (p *Poller) Wait(out []api.Event, timeoutMs int) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	p.Timeouts = append(p.Timeouts, timeoutMs)
	if p.OnWait != nil {
		p.OnWait(timeoutMs)
	}

	events := p.carry
	p.carry = nil
	if len(events) == 0 && p.script.Length() > 0 {
		s := p.script.Remove().(step)
		if s.err != nil {
			return 0, s.err
		}
		events = s.raw
		for _, r := range s.ready {
			if key, ok := p.keys[r.FD]; ok {
				events = append(events, api.Event{Key: key, Events: r.Events})
			}
		}
	}

	n := copy(out, events)
	if n < len(events) {
		p.carry = append(p.carry, events[n:]...)
	}
	return n, nil
}

// Close marks the poller closed; a second call fails.
func (p *Poller) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	return nil
}
