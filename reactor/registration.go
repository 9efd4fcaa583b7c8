// File: reactor/registration.go
// Author: momentics <momentics@gmail.com>
//
// Registration binds a descriptor to a handler for the multiplexer.

package reactor

import "github.com/momentics/hioload-loop/api"

// Handler is invoked on the loop goroutine for a ready registration.
// It may Add or Remove registrations, including reg itself.
type Handler interface {
	HandleEvents(ev api.Events, reg *Registration)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev api.Events, reg *Registration)

// HandleEvents calls f(ev, reg).
func (f HandlerFunc) HandleEvents(ev api.Events, reg *Registration) {
	f(ev, reg)
}

const noSlot = -1

// Registration is owned by its creator; the multiplexer only references it
// while it is added.
type Registration struct {
	FD      int
	Handler Handler // nil registrations are never called
	Arg     any

	token   token
	active  bool
	backRef int // index of the batch slot referencing this registration, or noSlot
}

// NewRegistration returns an inactive registration for fd.
func NewRegistration(fd int, h Handler, arg any) *Registration {
	return &Registration{
		FD:      fd,
		Handler: h,
		Arg:     arg,
		backRef: noSlot,
	}
}

// Active reports whether the registration is currently added.
func (r *Registration) Active() bool {
	return r.active
}

// InBatch reports whether the registration is referenced by the batch being
// dispatched.
func (r *Registration) InBatch() bool {
	return r.backRef != noSlot
}
