//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probes.

package control

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// RegisterPlatformProbes sets Linux-specific debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.monotonic_resolution", func() any {
		var ts unix.Timespec
		if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &ts); err != nil {
			return err.Error()
		}
		return time.Duration(ts.Nano()).String()
	})
}
