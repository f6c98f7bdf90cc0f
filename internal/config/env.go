package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides, applied on top of the TOML file.
const (
	EnvIntervalMS    = "SYSMON_INTERVAL_MS"
	EnvProcessEvery  = "SYSMON_PROCESS_EVERY"
	EnvHistoryLength = "SYSMON_HISTORY_LENGTH"
	EnvDiskPath      = "SYSMON_DISK_PATH"
	EnvRecord        = "SYSMON_RECORD"
	EnvRecordDB      = "SYSMON_RECORD_DB"
)

// Env reads KEY=VALUE pairs from the given dotenv files, then overlays the
// process environment, which wins. Missing files are skipped. The process
// environment itself is not modified.
func Env(files ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "SYSMON_") {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv returns a copy of cfg with SYSMON_* overrides applied and validated.
// Empty values are ignored.
func ApplyEnv(cfg *Config, env map[string]string) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	out := *cfg

	ints := []struct {
		key string
		dst *int
	}{
		{EnvIntervalMS, &out.Sampling.IntervalMS},
		{EnvProcessEvery, &out.Sampling.ProcessEveryTicks},
		{EnvHistoryLength, &out.Sampling.HistoryLength},
	}
	for _, f := range ints {
		v := strings.TrimSpace(env[f.key])
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", f.key, v)
		}
		*f.dst = n
	}

	if v := strings.TrimSpace(env[EnvDiskPath]); v != "" {
		out.Sampling.DiskPath = v
	}
	if v := strings.TrimSpace(env[EnvRecordDB]); v != "" {
		out.Record.DBPath = v
	}
	if v := strings.TrimSpace(env[EnvRecord]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", EnvRecord, v)
		}
		out.Record.Enabled = b
	}

	return NormalizeAndValidate(&out)
}
