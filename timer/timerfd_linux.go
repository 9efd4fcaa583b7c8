//go:build linux
// +build linux

// File: timer/timerfd_linux.go
// Author: momentics <momentics@gmail.com>
//
// timerfd(2) source on CLOCK_MONOTONIC.

package timer

import (
	"errors"
	"time"

	"github.com/momentics/hioload-loop/api"
	"golang.org/x/sys/unix"
)

type timerfd struct {
	fd int
}

func newSource() (api.TimerSource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &timerfd{fd: fd}, nil
}

func (t *timerfd) Fd() int {
	return t.fd
}

func (t *timerfd) Arm(d time.Duration) error {
	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(d.Nanoseconds()),
	}
	return unix.TimerfdSettime(t.fd, 0, &spec, nil)
}

func (t *timerfd) Remaining() (time.Duration, error) {
	var cur unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &cur); err != nil {
		return 0, err
	}
	return time.Duration(cur.Value.Nano()), nil
}

func (t *timerfd) Read(p []byte) (int, error) {
	n, err := unix.Read(t.fd, p)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, api.ErrWouldBlock
		}
		return 0, err
	}
	return n, nil
}

func (t *timerfd) Close() error {
	return unix.Close(t.fd)
}
