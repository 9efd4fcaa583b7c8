//go:build linux

package reactor

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/momentics/hioload-loop/api"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newEventfd(t *testing.T) int {
	t.Helper()
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func signalEventfd(t *testing.T, fd int) {
	t.Helper()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(fd, buf[:])
	require.NoError(t, err)
}

func drainEventfd(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

func TestEpollPollerRoundTripsKey(t *testing.T) {
	p, err := newPoller()
	require.NoError(t, err)
	defer p.Close()

	fd := newEventfd(t)
	const key = uint64(0xdeadbeef)<<32 | 0x80000003
	require.NoError(t, p.Add(fd, api.EventRead, key))
	signalEventfd(t, fd)

	out := make([]api.Event, 4)
	n, err := p.Wait(out, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, key, out[0].Key)
	require.True(t, out[0].Events.Has(api.EventRead))

	require.NoError(t, p.Remove(fd))
	require.ErrorIs(t, p.Remove(fd), unix.ENOENT)
}

func TestEpollPollerTimesOut(t *testing.T) {
	p, err := newPoller()
	require.NoError(t, err)
	defer p.Close()

	n, err := p.Wait(make([]api.Event, 8), 0)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMultiplexerOverEpoll(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	defer m.Close()

	a, b := newEventfd(t), newEventfd(t)
	var calls []int
	regB := NewRegistration(b, HandlerFunc(func(api.Events, *Registration) {
		calls = append(calls, b)
	}), nil)
	regA := NewRegistration(a, HandlerFunc(func(ev api.Events, reg *Registration) {
		require.True(t, ev.Has(api.EventRead))
		drainEventfd(reg.FD)
		calls = append(calls, a)
		if regB.Active() {
			require.NoError(t, m.Remove(regB))
		}
	}), nil)
	require.NoError(t, m.Add(regA))
	require.NoError(t, m.Add(regB))

	signalEventfd(t, a)
	signalEventfd(t, b)
	n, err := m.Wait(1000)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	stats := m.Dispatch()

	// Kernel order is unspecified: b runs only if it came first.
	if calls[0] == a {
		require.Equal(t, []int{a}, calls)
		require.Equal(t, DispatchStats{Invoked: 1, Retired: 1}, stats)
	} else {
		require.Equal(t, []int{b, a}, calls)
		require.Equal(t, DispatchStats{Invoked: 2}, stats)
	}
	require.False(t, regB.Active())
}

func TestMultiplexerKernelRejectsBadDescriptor(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	defer m.Close()

	reg := NewRegistration(-1, nil, nil)
	err = m.Add(reg)
	require.True(t, api.IsCode(err, api.ErrCodeRegister))
	require.ErrorIs(t, err, unix.EBADF)
	require.False(t, reg.Active())
}

func TestLoopOverEpoll(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	defer m.Close()

	var quit atomic.Bool
	fd := newEventfd(t)
	reg := NewRegistration(fd, HandlerFunc(func(_ api.Events, reg *Registration) {
		drainEventfd(reg.FD)
		quit.Store(true)
	}), nil)
	require.NoError(t, m.Add(reg))
	signalEventfd(t, fd)

	require.NoError(t, NewLoop(m, nil).Run(&quit))
	require.NoError(t, m.Remove(reg))
}
