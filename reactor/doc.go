// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-threaded epoll multiplexer and the
// dispatch loop that drives it together with a once-per-second tick.
//
// Handlers run on the loop goroutine and may add or remove registrations,
// their own included, while a batch is being dispatched; a registration
// removed mid-batch is never called for the rest of that batch.
package reactor
