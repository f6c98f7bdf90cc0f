package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/config"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/startup"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/storage"
)

func main() {
	defaultConfig, _ := config.DefaultPath()
	configPath := flag.String("config", defaultConfig, "path to config.toml (missing file means defaults)")
	envFile := flag.String("env", ".env", "optional dotenv file with SYSMON_* overrides")
	verbose := flag.Bool("verbose", false, "enable all verbose logging (equivalent to -log=all)")
	logFlag := flag.String("log", "", "comma-separated log topics: sampler,process,startup,resume,record (or 'all')")
	record := flag.Bool("record", false, "record samples to SQLite regardless of config")
	resetDB := flag.Bool("reset-db", false, "delete the recording database and exit")
	dumpDB := flag.Bool("dump", false, "print recorded samples and process events, then exit")
	since := flag.Duration("since", time.Hour, "with -dump, how far back to print")
	writeConfig := flag.Bool("write-config", false, "write the effective config to -config and exit")
	flag.Parse()

	logger := logging.New(os.Stderr, *logFlag, *verbose)

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		logger.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if *record {
		cfg.Record.Enabled = true
	}

	if *resetDB {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(cfg.Record.DBPath + suffix); err != nil && !os.IsNotExist(err) {
				logger.Error("delete database", "err", err)
				os.Exit(1)
			}
		}
		logger.Info("database deleted", "path", cfg.Record.DBPath)
		return
	}

	if *writeConfig {
		if *configPath == "" {
			logger.Error("write config: no -config path")
			os.Exit(1)
		}
		if err := config.Save(*configPath, cfg); err != nil {
			logger.Error("write config", "err", err)
			os.Exit(1)
		}
		logger.Info("config written", "path", *configPath)
		return
	}

	if *dumpDB {
		store, err := storage.Open(cfg.Record.DBPath)
		if err != nil {
			logger.Error("open database", "err", err)
			os.Exit(1)
		}
		defer store.Close()
		now := time.Now()
		if err := dump(os.Stdout, store, now.Add(-*since), now); err != nil {
			logger.Error("dump", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("sysmond", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path, envFile string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadOrDefault(path); err != nil {
			return nil, err
		}
	}
	env, err := config.Env(envFile)
	if err != nil {
		return nil, err
	}
	return config.ApplyEnv(cfg, env)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	src := collector.NewSystemSource()

	// No loading screen here, so stages run back to back.
	seq, err := startup.NewSequencer(startup.DefaultStages(src),
		startup.WithStageDelay(0),
		startup.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := seq.Start(ctx); err != nil {
		return err
	}
	<-seq.Done()
	if err := seq.Err(); err != nil {
		return err
	}

	opts := []sampler.Option{sampler.WithLogger(logger)}

	if cfg.Record.Enabled {
		store, err := openStore(cfg.Record.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		recLog := logger.With("topic", logging.TopicRecord)
		logLastSample(store, recLog)

		cleanupCtx, stopCleanup := context.WithCancel(ctx)
		wait := startCleanup(cleanupCtx, store, cfg.CleanupInterval(), cfg.Retention(), recLog)
		defer func() {
			stopCleanup()
			wait()
		}()

		opts = append(opts, sampler.WithRecorder(store))
		logger.Info("recording enabled", "path", cfg.Record.DBPath, "retention_days", cfg.Record.RetentionDays)
	}

	resumeMon, err := collector.NewResumeMonitor(logger.With("topic", logging.TopicResume))
	if err != nil {
		logger.Warn("resume monitor unavailable", "err", err)
	} else {
		defer resumeMon.Close()
		opts = append(opts, sampler.WithResume(resumeMon.Resumed()))
	}

	s := sampler.New(src, newLogDisplay(logger), cfg.SamplerOptions(), opts...)
	logger.Info("sysmond started",
		"interval", s.Options().Interval,
		"process_every", s.Options().ProcessEvery,
		"disk", s.Options().DiskPath)

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func openStore(path string) (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// startCleanup runs runCleanup on its own goroutine. The returned func blocks
// until that goroutine has exited; call it after cancelling ctx and before
// closing store.
func startCleanup(ctx context.Context, store *storage.DB, interval, retention time.Duration, logger *slog.Logger) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runCleanup(ctx, store, interval, retention, logger)
	}()
	return func() { <-done }
}

// runCleanup deletes recorded rows older than retention, once at start and
// then every interval.
func runCleanup(ctx context.Context, store *storage.DB, interval, retention time.Duration, logger *slog.Logger) {
	cleanup := func() {
		cutoff := time.Now().Add(-retention).Unix()
		n, err := store.DeleteOlderThan(cutoff)
		if err != nil {
			logger.Error("cleanup", "err", err)
			return
		}
		logger.Info("cleanup", "deleted", n, "before", cutoff)
	}

	cleanup()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cleanup()
		case <-ctx.Done():
			return
		}
	}
}
