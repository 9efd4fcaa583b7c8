// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Point-in-time views of loop and platform state. Probe names are
// "<component>.<field>" (reactor.registrations, loop.next_deadline,
// platform.cpus); tickd logs the full set when the loop stops.

package control

import (
	"sort"
	"sync"
)

// DebugProbes maps probe names to readers of loop or platform state.
//
// Readers are invoked on the goroutine calling Probe or DumpState. Loop state
// is not synchronized, so dump loop probes from the loop goroutine (a tick) or
// after Run has returned.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes returns an empty registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]func() any)}
}

// RegisterProbe binds name to fn. Registering a name twice keeps the last
// reader, so a restarted loop can re-register its probes.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	dp.probes[name] = fn
	dp.mu.Unlock()
}

// Probe reads a single probe.
func (dp *DebugProbes) Probe(name string) (any, bool) {
	dp.mu.RLock()
	fn, ok := dp.probes[name]
	dp.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names lists the registered probes, sorted.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	names := make([]string, 0, len(dp.probes))
	for name := range dp.probes {
		names = append(names, name)
	}
	dp.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DumpState reads every probe.
func (dp *DebugProbes) DumpState() map[string]any {
	names := dp.Names()
	state := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := dp.Probe(name); ok {
			state[name] = v
		}
	}
	return state
}
