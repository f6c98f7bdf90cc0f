package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

const (
	minIntervalMS           = 100
	maxIntervalMS           = 60_000
	minProcessEveryTicks    = 1
	maxProcessEveryTicks    = 3600
	minHistoryLength        = 2
	maxHistoryLength        = 3600
	minStageDelayMS         = 0
	maxStageDelayMS         = 10_000
	minPollIntervalMS       = 10
	maxPollIntervalMS       = 1000
	minRetentionDays        = 1
	maxRetentionDays        = 3650
	minCleanupIntervalHours = 1
	maxCleanupIntervalHours = 720
)

// AppName names the per-user config directory.
const AppName = "gnome-system-monitor"

type Config struct {
	Sampling SamplingConfig `toml:"sampling"`
	Startup  StartupConfig  `toml:"startup"`
	Record   RecordConfig   `toml:"record"`
}

type SamplingConfig struct {
	IntervalMS         int    `toml:"interval_ms"`
	ProcessEveryTicks  int    `toml:"process_every_ticks"`
	HistoryLength      int    `toml:"history_length"`
	DiskPath           string `toml:"disk_path"`
	ClampNegativeRates bool   `toml:"clamp_negative_rates"`
}

type StartupConfig struct {
	StageDelayMS   int `toml:"stage_delay_ms"`
	PollIntervalMS int `toml:"poll_interval_ms"`
}

type RecordConfig struct {
	Enabled              bool   `toml:"enabled"`
	DBPath               string `toml:"db_path"`
	RetentionDays        int    `toml:"retention_days"`
	CleanupIntervalHours int    `toml:"cleanup_interval_hours"`
}

func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			IntervalMS:         1000,
			ProcessEveryTicks:  5,
			HistoryLength:      60,
			DiskPath:           "/",
			ClampNegativeRates: true,
		},
		Startup: StartupConfig{
			StageDelayMS:   300,
			PollIntervalMS: 100,
		},
		Record: RecordConfig{
			Enabled:              false,
			DBPath:               "/var/lib/gnome-system-monitor/samples.db",
			RetentionDays:        7,
			CleanupIntervalHours: 24,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gnome-system-monitor/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

// LoadOrDefault is Load, except a missing file yields DefaultConfig.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	var err error
	sanitized.Sampling.DiskPath, err = sanitizePath("sampling.disk_path", sanitized.Sampling.DiskPath)
	if err != nil {
		return nil, err
	}
	sanitized.Record.DBPath, err = sanitizePath("record.db_path", sanitized.Record.DBPath)
	if err != nil {
		return nil, err
	}

	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"sampling.interval_ms", sanitized.Sampling.IntervalMS, minIntervalMS, maxIntervalMS},
		{"sampling.process_every_ticks", sanitized.Sampling.ProcessEveryTicks, minProcessEveryTicks, maxProcessEveryTicks},
		{"sampling.history_length", sanitized.Sampling.HistoryLength, minHistoryLength, maxHistoryLength},
		{"startup.stage_delay_ms", sanitized.Startup.StageDelayMS, minStageDelayMS, maxStageDelayMS},
		{"startup.poll_interval_ms", sanitized.Startup.PollIntervalMS, minPollIntervalMS, maxPollIntervalMS},
		{"record.retention_days", sanitized.Record.RetentionDays, minRetentionDays, maxRetentionDays},
		{"record.cleanup_interval_hours", sanitized.Record.CleanupIntervalHours, minCleanupIntervalHours, maxCleanupIntervalHours},
	}
	for _, c := range checks {
		if err := validateRange(c.name, c.value, c.min, c.max); err != nil {
			return nil, err
		}
	}

	return &sanitized, nil
}

// SamplerOptions converts the sampling section.
func (c *Config) SamplerOptions() sampler.Options {
	return sampler.Options{
		Interval:      time.Duration(c.Sampling.IntervalMS) * time.Millisecond,
		ProcessEvery:  c.Sampling.ProcessEveryTicks,
		HistoryLength: c.Sampling.HistoryLength,
		DiskPath:      c.Sampling.DiskPath,
		ClampNegative: c.Sampling.ClampNegativeRates,
	}
}

func (c *Config) StageDelay() time.Duration {
	return time.Duration(c.Startup.StageDelayMS) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Startup.PollIntervalMS) * time.Millisecond
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Record.RetentionDays) * 24 * time.Hour
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Record.CleanupIntervalHours) * time.Hour
}

func Save(path string, cfg *Config) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("config path must not be empty")
	}

	sanitized, err := NormalizeAndValidate(cfg)
	if err != nil {
		return err
	}

	var data bytes.Buffer
	if err := toml.NewEncoder(&data).Encode(sanitized); err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}

	dir := filepath.Dir(trimmedPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, trimmedPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpPath = ""

	return nil
}

func sanitizePath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
