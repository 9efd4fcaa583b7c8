// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Daemon configuration: loop tuning constants, logging and metrics endpoint.

package control

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultBatchSize is the number of readiness slots fetched per wait call.
	// It bounds a single batch, not the number of registrations.
	DefaultBatchSize = 8

	// DefaultTickInterval is the period of the protocol tick.
	DefaultTickInterval = time.Second

	// DefaultMaxSlackMs: a deadline further away than this means the clock
	// went backwards.
	DefaultMaxSlackMs = 1000

	// DefaultMaxLagMs: a deadline missed by more than this means the clock
	// jumped forward (suspend, stall) and the schedule is resynchronized.
	DefaultMaxLagMs = 4000
)

// LoopConfig carries the dispatch loop tuning constants. Downstream protocol
// timing assumes the defaults.
type LoopConfig struct {
	BatchSize    int
	TickInterval time.Duration
	MaxSlackMs   int
	MaxLagMs     int
}

// Config is the full daemon configuration.
type Config struct {
	Loop        LoopConfig
	LogLevel    string
	MetricsAddr string
	// LoopCPU pins the loop thread to one CPU; negative leaves it unpinned.
	LoopCPU int
}

type fileConfig struct {
	BatchSize    int    `toml:"batch_size"`
	TickInterval string `toml:"tick_interval"`
	MaxSlackMs   int    `toml:"max_slack_ms"`
	MaxLagMs     int    `toml:"max_lag_ms"`
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
	LoopCPU      int    `toml:"loop_cpu"`
}

// DefaultLoopConfig returns the loop constants.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		BatchSize:    DefaultBatchSize,
		TickInterval: DefaultTickInterval,
		MaxSlackMs:   DefaultMaxSlackMs,
		MaxLagMs:     DefaultMaxLagMs,
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Loop:     DefaultLoopConfig(),
		LogLevel: "info",
		LoopCPU:  -1,
	}
}

// LoadConfig reads a TOML file and applies the keys it defines over the defaults.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	return buildConfig(raw, meta)
}

// ParseConfig is LoadConfig for in-memory TOML.
func ParseConfig(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	return buildConfig(raw, meta)
}

func buildConfig(raw fileConfig, meta toml.MetaData) (Config, error) {
	cfg := DefaultConfig()

	if keys := meta.Undecoded(); len(keys) > 0 {
		return Config{}, fmt.Errorf("config has unknown keys: %v", keys)
	}
	if meta.IsDefined("batch_size") {
		cfg.Loop.BatchSize = raw.BatchSize
	}
	if meta.IsDefined("tick_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.TickInterval))
		if err != nil {
			return Config{}, fmt.Errorf("parse tick_interval: %w", err)
		}
		cfg.Loop.TickInterval = d
	}
	if meta.IsDefined("max_slack_ms") {
		cfg.Loop.MaxSlackMs = raw.MaxSlackMs
	}
	if meta.IsDefined("max_lag_ms") {
		cfg.Loop.MaxLagMs = raw.MaxLagMs
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("loop_cpu") {
		cfg.LoopCPU = raw.LoopCPU
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the loop cannot run with.
func (c Config) Validate() error {
	if c.LoopCPU < -1 {
		return fmt.Errorf("loop_cpu must be -1 or a CPU index, got %d", c.LoopCPU)
	}
	return c.Loop.Validate()
}

// Validate rejects values the multiplexer or the loop cannot run with.
func (c LoopConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	return c.ValidateSchedule()
}

// ValidateSchedule checks the tick settings alone. A regular tick must land
// inside the slack window, otherwise every tick reads as a backward clock jump.
func (c LoopConfig) ValidateSchedule() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.MaxSlackMs <= 0 {
		return fmt.Errorf("max_slack_ms must be positive, got %d", c.MaxSlackMs)
	}
	if c.MaxLagMs <= 0 {
		return fmt.Errorf("max_lag_ms must be positive, got %d", c.MaxLagMs)
	}
	if c.TickInterval > time.Duration(c.MaxSlackMs)*time.Millisecond {
		return fmt.Errorf("tick_interval %s exceeds max_slack_ms %d", c.TickInterval, c.MaxSlackMs)
	}
	return nil
}
