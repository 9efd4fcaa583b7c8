//go:build linux
// +build linux

// File: reactor/poller_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) polling backend.

package reactor

import (
	"errors"

	"github.com/momentics/hioload-loop/api"
	"golang.org/x/sys/unix"
)

// epollPoller stores the registration token in the event payload: the low
// word in Fd, the high word in Pad.
type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newPoller() (api.Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd}, nil
}

func (p *epollPoller) Add(fd int, events api.Events, key uint64) error {
	ev := unix.EpollEvent{
		Events: toEpoll(events),
		Fd:     int32(uint32(key)),
		Pad:    int32(uint32(key >> 32)),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait maps EINTR to api.ErrInterrupted.
func (p *epollPoller) Wait(out []api.Event, timeoutMs int) (int, error) {
	if len(out) == 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "empty event buffer")
	}
	if cap(p.events) < len(out) {
		p.events = make([]unix.EpollEvent, len(out))
	}
	raw := p.events[:len(out)]

	n, err := unix.EpollWait(p.epfd, raw, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, api.ErrInterrupted
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		out[i] = api.Event{
			Key:    uint64(uint32(raw[i].Fd)) | uint64(uint32(raw[i].Pad))<<32,
			Events: fromEpoll(raw[i].Events),
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}

func toEpoll(ev api.Events) uint32 {
	var out uint32
	if ev&api.EventRead != 0 {
		out |= unix.EPOLLIN
	}
	if ev&api.EventWrite != 0 {
		out |= unix.EPOLLOUT
	}
	return out
}

func fromEpoll(ev uint32) api.Events {
	var out api.Events
	if ev&unix.EPOLLIN != 0 {
		out |= api.EventRead
	}
	if ev&unix.EPOLLOUT != 0 {
		out |= api.EventWrite
	}
	if ev&unix.EPOLLERR != 0 {
		out |= api.EventError
	}
	if ev&unix.EPOLLHUP != 0 {
		out |= api.EventHangup
	}
	return out
}
