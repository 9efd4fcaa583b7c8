package control

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLoopMetricsCountAndSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewLoopMetrics(reg)
	require.NoError(t, err)

	m.Tick()
	m.Tick()
	m.Resync()
	m.Interrupted()
	m.Dispatched(3, 1)
	m.Waited(20 * time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.ticks))
	snap := m.Snapshot()
	require.Equal(t, 2.0, snap["ticks"])
	require.Equal(t, 1.0, snap["clock_resyncs"])
	require.Equal(t, 1.0, snap["wait_interrupted"])
	require.Equal(t, 3.0, snap["callbacks"])
	require.Equal(t, 1.0, snap["retired_slots"])
	require.Equal(t, uint64(1), snap["waits"])

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 6, n)
}

func TestLoopMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewLoopMetrics(reg)
	require.NoError(t, err)
	second, err := NewLoopMetrics(reg)
	require.NoError(t, err)

	first.Tick()
	require.Equal(t, 1.0, second.Snapshot()["ticks"])
}

func TestNilLoopMetricsIsNoop(t *testing.T) {
	var m *LoopMetrics
	m.Tick()
	m.Resync()
	m.Interrupted()
	m.Dispatched(1, 1)
	m.Waited(time.Second)
	require.Empty(t, m.Snapshot())
}

func TestDebugProbesDump(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	dp.RegisterProbe("loop.registrations", func() any { return 3 })

	require.Contains(t, dp.Names(), "platform.cpus")
	state := dp.DumpState()
	require.Equal(t, 3, state["loop.registrations"])
	require.Positive(t, state["platform.cpus"])
}

func TestDebugProbesReadAndReplace(t *testing.T) {
	dp := NewDebugProbes()
	_, ok := dp.Probe("loop.next_deadline")
	require.False(t, ok)

	dp.RegisterProbe("reactor.registrations", func() any { return 1 })
	dp.RegisterProbe("reactor.registrations", func() any { return 2 })
	v, ok := dp.Probe("reactor.registrations")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, []string{"reactor.registrations"}, dp.Names())
}
