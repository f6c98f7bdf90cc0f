package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/config"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/startup"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sysinfo"
)

const appID = "io.github.cptspacemanspiff.SystemMonitor"

func main() {
	defaultConfig, _ := config.DefaultPath()
	configPath := flag.String("config", defaultConfig, "path to config.toml (missing file means defaults)")
	envFile := flag.String("env", ".env", "optional dotenv file with SYSMON_* overrides")
	verbose := flag.Bool("verbose", false, "enable all verbose logging (equivalent to -log=all)")
	logFlag := flag.String("log", "", "comma-separated log topics: sampler,process,startup,resume (or 'all')")
	flag.Parse()

	logger := logging.New(os.Stderr, *logFlag, *verbose)

	cfg, err := loadConfig(*configPath, *envFile)
	if err != nil {
		logger.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.NewWithID(appID)
	src := collector.NewSystemSource()

	seq, err := startup.NewSequencer(startup.DefaultStages(src),
		startup.WithStageDelay(cfg.StageDelay()),
		startup.WithLogger(logger))
	if err != nil {
		logger.Error("startup stages", "err", err)
		os.Exit(1)
	}

	loading := newLoadingScreen(a)
	loading.win.Show()
	if err := seq.Start(ctx); err != nil {
		logger.Error("start", "err", err)
		os.Exit(1)
	}

	go func() {
		_, err := startup.Poll(ctx, seq, cfg.PollInterval(), func(st startup.Status) bool {
			fyne.DoAndWait(func() { loading.Update(st) })
			return true
		})
		if err != nil {
			fyne.Do(func() { showStartupError(a, loading.win, err) })
			return
		}

		sections := sysinfo.Collect(ctx, cfg.Sampling.DiskPath)
		fyne.Do(func() {
			m := newMainWindow(a, cfg, sections)
			m.win.Show()
			loading.win.Close()
			m.start(ctx, src, logger)
		})
	}()

	a.Run()
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

func showStartupError(a fyne.App, win fyne.Window, err error) {
	d := dialog.NewError(err, win)
	d.SetOnClosed(a.Quit)
	d.Show()
}

type mainWindow struct {
	win     fyne.Window
	cfg     *config.Config
	perf    *performanceTab
	procs   *processTab
	status  *widget.Label
	sampler *sampler.Sampler
}

func newMainWindow(a fyne.App, cfg *config.Config, sections []sysinfo.Section) *mainWindow {
	m := &mainWindow{
		win:    a.NewWindow("System Monitor"),
		cfg:    cfg,
		perf:   newPerformanceTab(cfg.Sampling.HistoryLength),
		procs:  newProcessTab(),
		status: widget.NewLabel("Waiting for first sample..."),
	}
	m.perf.SetCores(coreCount(sections))

	tabs := container.NewAppTabs(
		container.NewTabItem("Processes", m.procs.table),
		container.NewTabItem("Performance", m.perf.box),
		container.NewTabItem("System Details", newDetailsTab(sections)),
	)
	statusBar := container.NewBorder(nil, nil, m.procs.count, nil, m.status)

	m.win.SetContent(container.NewBorder(nil, statusBar, nil, nil, tabs))
	m.win.Resize(fyne.NewSize(1000, 700))
	m.win.SetMaster()
	return m
}

// start launches the sampler. Closing the window stops it.
func (m *mainWindow) start(ctx context.Context, src collector.Source, logger *slog.Logger) {
	disp := &guiDisplay{perf: m.perf, procs: m.procs, status: m.status}
	opts := []sampler.Option{sampler.WithLogger(logger)}

	resumeMon, err := collector.NewResumeMonitor(logger.With("topic", logging.TopicResume))
	if err != nil {
		logger.Warn("resume monitor unavailable", "err", err)
	} else {
		opts = append(opts, sampler.WithResume(resumeMon.Resumed()))
	}

	m.sampler = sampler.New(src, disp, m.cfg.SamplerOptions(), opts...)
	m.win.SetOnClosed(func() {
		m.sampler.Stop()
		if resumeMon != nil {
			resumeMon.Close()
		}
	})

	go func() {
		if err := m.sampler.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("sampler", "err", err)
		}
	}()
}
