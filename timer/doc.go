// Package timer implements countdown timers backed by kernel timer
// descriptors registered with a reactor multiplexer.
//
// A Countdown has no handler: protocol code polls Expired and
// SecondsRemaining, usually from the loop tick.
package timer
