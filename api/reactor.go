// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract poller backend the multiplexer drives, the readiness
// bitmask it reports and the periodic tick contract of the dispatch loop.

package api

// Events is a readiness bitmask delivered to handlers.
type Events uint32

const (
	EventRead Events = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// Has reports whether all bits of want are set.
func (e Events) Has(want Events) bool {
	return e&want == want
}

// Event encapsulates one OS-level readiness notification.
type Event struct {
	Key    uint64 // opaque payload stored at registration time
	Events Events
}

// Poller defines the kernel polling context behind a multiplexer.
type Poller interface {
	// Add registers fd for the given readiness and stores key as its payload.
	Add(fd int, events Events, key uint64) error

	// Remove deregisters fd.
	Remove(fd int) error

	// Wait blocks for up to timeoutMs (negative blocks indefinitely) and fills
	// out with ready events. Transient interruption returns ErrInterrupted.
	Wait(out []Event, timeoutMs int) (int, error)

	// Close releases the polling context. Registered descriptors are untouched.
	Close() error
}

// TickFunc is invoked once per elapsed second by the dispatch loop.
// It must not block and must not drive the loop recursively.
type TickFunc func()
