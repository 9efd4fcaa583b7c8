// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for the reactor core.
//
// Provides:
//   - TOML configuration with defaults for the dispatch loop tuning constants
//   - Prometheus collectors for ticks, clock resyncs and dispatch activity
//   - Named debug probes dumped on demand
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
