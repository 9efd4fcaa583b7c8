//go:build !linux
// +build !linux

// File: timer/timerfd_stub.go
// Author: momentics <momentics@gmail.com>

package timer

import "github.com/momentics/hioload-loop/api"

func newSource() (api.TimerSource, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "timer: this platform is not supported")
}
