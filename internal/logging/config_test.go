package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel(" Warning ")
	require.True(t, ok)
	require.Equal(t, zerolog.WarnLevel, lvl)

	_, ok = ParseLevel("")
	require.False(t, ok)
	_, ok = ParseLevel("loud")
	require.False(t, ok)

	lvl, ok = ParseLevel("off")
	require.True(t, ok)
	require.Equal(t, zerolog.Disabled, lvl)
}

func TestNewHonoursLevelAndEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogNoColor, "true")
	var buf bytes.Buffer
	log := New(&buf, "tickd", ProfileRuntime, "warn")
	log.Info().Msg("hidden")
	log.Warn().Int("diff_ms", -9000).Msg("clock jump")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "clock jump")
	require.Contains(t, out, "diff_ms=-9000")
	require.Contains(t, out, "app=tickd")

	t.Setenv(EnvLogLevel, "error")
	buf.Reset()
	log = New(&buf, "tickd", ProfileRuntime, "debug")
	log.Warn().Msg("suppressed by env")
	require.Empty(t, buf.String())
}

func TestForTest(t *testing.T) {
	log := ForTest(t)
	require.Equal(t, zerolog.DebugLevel, log.GetLevel())
}
