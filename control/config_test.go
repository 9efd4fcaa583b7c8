package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigMatchesLoopConstants(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8, cfg.Loop.BatchSize)
	require.Equal(t, time.Second, cfg.Loop.TickInterval)
	require.Equal(t, 1000, cfg.Loop.MaxSlackMs)
	require.Equal(t, 4000, cfg.Loop.MaxLagMs)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.MetricsAddr)
	require.Equal(t, -1, cfg.LoopCPU)
}

func TestLoadConfigOverridesOnlyDefinedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.toml")
	data := `
batch_size = 16
log_level = " DEBUG "
metrics_addr = "127.0.0.1:9108"
loop_cpu = 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Loop.BatchSize)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "127.0.0.1:9108", cfg.MetricsAddr)
	require.Equal(t, 2, cfg.LoopCPU)
	require.Equal(t, time.Second, cfg.Loop.TickInterval)
	require.Equal(t, DefaultMaxLagMs, cfg.Loop.MaxLagMs)
}

func TestParseConfigTickInterval(t *testing.T) {
	cfg, err := ParseConfig(`tick_interval = "500ms"`)
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, cfg.Loop.TickInterval)

	_, err = ParseConfig(`tick_interval = "soon"`)
	require.ErrorContains(t, err, "parse tick_interval")
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero batch":       `batch_size = 0`,
		"negative tick":    `tick_interval = "-1s"`,
		"zero slack":       `max_slack_ms = 0`,
		"negative lag":     `max_lag_ms = -4000`,
		"unknown key":      `batchsize = 4`,
		"bad cpu":          `loop_cpu = -2`,
		"tick over slack":  `tick_interval = "2s"`,
		"slack under tick": `max_slack_ms = 500`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(data)
			require.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.ErrorContains(t, err, "config load failed")
}

func TestParseConfigLongTickNeedsSlack(t *testing.T) {
	cfg, err := ParseConfig(`
tick_interval = "2s"
max_slack_ms = 2000
`)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Loop.TickInterval)
}

func TestValidateScheduleIgnoresBatchSize(t *testing.T) {
	cfg := DefaultLoopConfig()
	cfg.BatchSize = 0
	require.NoError(t, cfg.ValidateSchedule())
	require.Error(t, cfg.Validate())
}
