//go:build !linux
// +build !linux

// File: reactor/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub backend for unsupported platforms.

package reactor

import "github.com/momentics/hioload-loop/api"

func newPoller() (api.Poller, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor: this platform is not supported")
}
