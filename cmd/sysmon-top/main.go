package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	ui "github.com/gizak/termui/v3"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/config"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/startup"
)

func main() {
	defaultConfig, _ := config.DefaultPath()
	configPath := flag.String("config", defaultConfig, "path to config.toml (missing file means defaults)")
	envFile := flag.String("env", ".env", "optional dotenv file with SYSMON_* overrides")
	logFile := flag.String("logfile", "", "write logs here; the terminal is owned by the dashboard")
	logFlag := flag.String("log", "", "comma-separated log topics: sampler,process,startup,resume (or 'all')")
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, *logFlag, false)

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to init termui: %v", err)
	}
	defer ui.Close()

	if err := run(cfg, logger); err != nil {
		ui.Close()
		fmt.Fprintln(os.Stderr, err)
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

// run drives the termui event loop. Startup progress is polled on a ticker
// from this loop; the sampler starts once the sequencer reports ready.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := collector.NewSystemSource()
	seq, err := startup.NewSequencer(startup.DefaultStages(src),
		startup.WithStageDelay(cfg.StageDelay()),
		startup.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := seq.Start(ctx); err != nil {
		return err
	}

	dash := newDashboard()
	w, h := ui.TerminalDimensions()
	dash.Resize(w, h)
	ui.Render(dash.loading)

	disp := newChanDisplay()
	var s *sampler.Sampler

	events := ui.PollEvents()
	poll := time.NewTicker(cfg.PollInterval())
	defer poll.Stop()

	for {
		select {
		case e := <-events:
			switch {
			case e.Type == ui.KeyboardEvent && (e.ID == "q" || e.ID == "<C-c>"):
				if s != nil {
					s.Stop()
				}
				return nil
			case e.Type == ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				dash.Resize(payload.Width, payload.Height)
				ui.Clear()
			case e.Type == ui.KeyboardEvent && s != nil:
				if col, ok := sortKeys[e.ID]; ok {
					dash.SortBy(col)
				}
			}
		case <-poll.C:
			st := seq.Status()
			dash.ShowStartup(st)
			if st.Err != nil {
				return st.Err
			}
			if seq.Ready() {
				poll.Stop()
				s = startSampler(ctx, cfg, src, disp, logger)
				ui.Clear()
			}
		case f := <-disp.frames:
			dash.ShowFrame(f)
		case r := <-disp.procs:
			dash.ShowProcesses(r)
		case err := <-disp.errs:
			dash.ShowError(err)
		}

		if s != nil {
			ui.Render(dash.grid)
		} else {
			ui.Render(dash.loading)
		}
	}
}

func startSampler(ctx context.Context, cfg *config.Config, src collector.Source, disp sampler.Display, logger *slog.Logger) *sampler.Sampler {
	opts := []sampler.Option{sampler.WithLogger(logger)}
	if resumeMon, err := collector.NewResumeMonitor(logger.With("topic", logging.TopicResume)); err != nil {
		logger.Warn("resume monitor unavailable", "err", err)
	} else {
		go func() {
			<-ctx.Done()
			resumeMon.Close()
		}()
		opts = append(opts, sampler.WithResume(resumeMon.Resumed()))
	}

	s := sampler.New(src, disp, cfg.SamplerOptions(), opts...)
	go func() {
		if err := s.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("sampler", "err", err)
		}
	}()
	return s
}
