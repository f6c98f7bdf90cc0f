package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sampling.IntervalMS != 1000 {
		t.Fatalf("unexpected IntervalMS: %d", cfg.Sampling.IntervalMS)
	}
	if cfg.Sampling.ProcessEveryTicks != 5 {
		t.Fatalf("unexpected ProcessEveryTicks: %d", cfg.Sampling.ProcessEveryTicks)
	}
	if cfg.Sampling.HistoryLength != 60 {
		t.Fatalf("unexpected HistoryLength: %d", cfg.Sampling.HistoryLength)
	}
	if cfg.Sampling.DiskPath != "/" {
		t.Fatalf("unexpected DiskPath: %q", cfg.Sampling.DiskPath)
	}
	if !cfg.Sampling.ClampNegativeRates {
		t.Fatal("ClampNegativeRates = false, want true")
	}
	if cfg.Startup.StageDelayMS != 300 || cfg.Startup.PollIntervalMS != 100 {
		t.Fatalf("unexpected Startup: %+v", cfg.Startup)
	}
	if cfg.Record.Enabled {
		t.Fatal("Record.Enabled = true, want false")
	}
	if _, err := NormalizeAndValidate(cfg); err != nil {
		t.Fatalf("NormalizeAndValidate(default) error = %v", err)
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()

	opts := cfg.SamplerOptions()
	if opts.Interval != time.Second || opts.ProcessEvery != 5 || opts.HistoryLength != 60 || opts.DiskPath != "/" || !opts.ClampNegative {
		t.Errorf("SamplerOptions() = %+v", opts)
	}
	if got := cfg.StageDelay(); got != 300*time.Millisecond {
		t.Errorf("StageDelay() = %v", got)
	}
	if got := cfg.PollInterval(); got != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", got)
	}
	if got := cfg.Retention(); got != 7*24*time.Hour {
		t.Errorf("Retention() = %v", got)
	}
	if got := cfg.CleanupInterval(); got != 24*time.Hour {
		t.Errorf("CleanupInterval() = %v", got)
	}
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[sampling]
interval_ms = 500
disk_path = "/home/"

[record]
enabled = true
db_path = "/tmp/test.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sampling.IntervalMS != 500 {
		t.Fatalf("IntervalMS = %d, want 500", cfg.Sampling.IntervalMS)
	}
	if cfg.Sampling.DiskPath != "/home" {
		t.Fatalf("DiskPath = %q, want cleaned /home", cfg.Sampling.DiskPath)
	}
	if cfg.Sampling.ProcessEveryTicks != 5 {
		t.Fatalf("ProcessEveryTicks = %d, want default 5", cfg.Sampling.ProcessEveryTicks)
	}
	if !cfg.Sampling.ClampNegativeRates {
		t.Fatal("ClampNegativeRates = false, want default true")
	}
	if !cfg.Record.Enabled || cfg.Record.DBPath != "/tmp/test.db" {
		t.Fatalf("Record = %+v, want enabled at /tmp/test.db", cfg.Record)
	}
	if cfg.Record.RetentionDays != 7 {
		t.Fatalf("RetentionDays = %d, want default 7", cfg.Record.RetentionDays)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Fatal("Load() error = nil, want missing file error")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("Load() error = %v, want not-exist error", err)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("LoadOrDefault() = %+v, want defaults", cfg)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "not = [valid")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want TOML parse error")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		contents   string
		wantErrSub string
	}{
		{
			name: "interval_ms too small",
			contents: `
[sampling]
interval_ms = 10
`,
			wantErrSub: "sampling.interval_ms must be between 100 and 60000",
		},
		{
			name: "process_every_ticks zero",
			contents: `
[sampling]
process_every_ticks = 0
`,
			wantErrSub: "sampling.process_every_ticks must be between",
		},
		{
			name: "history_length too large",
			contents: `
[sampling]
history_length = 100000
`,
			wantErrSub: "sampling.history_length must be between",
		},
		{
			name: "relative disk path",
			contents: `
[sampling]
disk_path = "home"
`,
			wantErrSub: "sampling.disk_path must be an absolute path",
		},
		{
			name: "poll interval too large",
			contents: `
[startup]
poll_interval_ms = 5000
`,
			wantErrSub: "startup.poll_interval_ms must be between",
		},
		{
			name: "empty db path",
			contents: `
[record]
db_path = "  "
`,
			wantErrSub: "record.db_path must not be empty",
		},
		{
			name: "retention_days zero",
			contents: `
[record]
retention_days = 0
`,
			wantErrSub: "record.retention_days must be between",
		},
		{
			name: "cleanup_interval_hours zero",
			contents: `
[record]
cleanup_interval_hours = 0
`,
			wantErrSub: "record.cleanup_interval_hours must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.contents)

			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load() error = nil, want error containing %q", tt.wantErrSub)
			}
			if !strings.Contains(err.Error(), tt.wantErrSub) {
				t.Fatalf("Load() error = %q, want contains %q", err.Error(), tt.wantErrSub)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Sampling.IntervalMS = 2000
	cfg.Sampling.ClampNegativeRates = false
	cfg.Record.Enabled = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("Load() = %+v, want %+v", got, cfg)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only config.toml", len(entries))
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Sampling.IntervalMS = 0

	if err := Save(path, cfg); err == nil {
		t.Fatal("Save() error = nil, want validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat() error = %v, want not-exist", err)
	}
	if err := Save(" ", DefaultConfig()); err == nil {
		t.Fatal("Save(empty path) error = nil")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join(AppName, "config.toml")) {
		t.Fatalf("DefaultPath() = %q", got)
	}
}
