// Package sampler drives periodic collection: a fast tick for CPU, memory,
// disk and network rates, and a slower process refresh every few ticks.
package sampler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
)

// Options controls sampling cadence and derived values.
type Options struct {
	Interval      time.Duration
	ProcessEvery  int
	HistoryLength int
	DiskPath      string
	// ClampNegative reports counter resets as 0 instead of a negative rate.
	// Unlike the other fields, its zero value is not replaced by the default.
	ClampNegative bool
}

// DefaultOptions returns a 1s fast tick with a process refresh every 5 ticks.
func DefaultOptions() Options {
	return Options{
		Interval:      time.Second,
		ProcessEvery:  5,
		HistoryLength: history.DefaultCapacity,
		DiskPath:      "/",
		ClampNegative: true,
	}
}

func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	if o.ProcessEvery <= 0 {
		o.ProcessEvery = def.ProcessEvery
	}
	if o.HistoryLength <= 0 {
		o.HistoryLength = def.HistoryLength
	}
	if o.DiskPath == "" {
		o.DiskPath = def.DiskPath
	}
	return o
}

// State is owned by the sampling goroutine.
type State struct {
	History   *history.Set
	Last      *collector.CounterReading
	Displayed []int32
	Ticks     uint64
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger. Records are tagged with the sampler and process topics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		s.log = l.With("topic", logging.TopicSampler)
		s.procLog = l.With("topic", logging.TopicProcess)
	}
}

// WithRecorder attaches a recorder that receives every frame and process result.
func WithRecorder(r Recorder) Option {
	return func(s *Sampler) { s.rec = r }
}

// WithResume drops the network baseline whenever ch fires, so the first
// tick after a suspend does not report the whole sleep as one spike.
func WithResume(ch <-chan struct{}) Option {
	return func(s *Sampler) { s.resume = ch }
}

// Sampler polls a collector.Source on a timer and pushes results to a Display.
type Sampler struct {
	src  collector.Source
	disp Display
	opts Options

	log     *slog.Logger
	procLog *slog.Logger
	rec     Recorder
	resume  <-chan struct{}
	now     func() time.Time

	state State

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Sampler. Zero Interval, ProcessEvery, HistoryLength and
// DiskPath fall back to DefaultOptions. ClampNegative is used as given, so
// callers that want clamping start from DefaultOptions or set it explicitly.
func New(src collector.Source, disp Display, opts Options, options ...Option) *Sampler {
	opts = opts.normalize()
	s := &Sampler{
		src:  src,
		disp: disp,
		opts: opts,
		now:  time.Now,
		state: State{
			History: history.NewSet(opts.HistoryLength),
		},
		stop: make(chan struct{}),
	}
	WithLogger(logging.Discard())(s)
	for _, o := range options {
		o(s)
	}
	return s
}

// Options returns the normalized options in use.
func (s *Sampler) Options() Options { return s.opts }

// Run primes the network baseline and then ticks until Stop is called or ctx
// is done. The next tick is armed only after the current one returns, so a
// slow query delays the schedule instead of overlapping it. Run returns nil
// after Stop and ctx.Err() after cancellation.
func (s *Sampler) Run(ctx context.Context) error {
	s.prime(ctx)

	timer := time.NewTimer(s.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-s.resume:
			s.log.Info("resume detected, resetting network baseline")
			s.resetBaseline()
		case <-timer.C:
			s.tick(ctx)
			select {
			case <-s.stop:
				return nil
			default:
			}
			timer.Reset(s.opts.Interval)
		}
	}
}

// Stop ends Run. No tick starts after Stop returns. Safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Sampler) prime(ctx context.Context) {
	reading, err := s.src.NetCounters(ctx)
	if err != nil {
		s.fail(MetricNetwork, err)
		return
	}
	s.state.Last = &reading
}

func (s *Sampler) resetBaseline() {
	s.state.Last = nil
}

func (s *Sampler) tick(ctx context.Context) {
	s.state.Ticks++
	now := s.now()

	frame := Frame{Tick: s.state.Ticks, Timestamp: now}
	values := make(map[history.Series]float64, len(history.AllSeries))

	if cpu, err := s.src.CPUPercent(ctx); err != nil {
		s.fail(MetricCPU, err)
	} else {
		values[history.CPU] = cpu
	}

	if m, err := s.src.Memory(ctx); err != nil {
		s.fail(MetricMemory, err)
	} else {
		frame.Memory = m
		values[history.Memory] = m.Percent
	}

	if d, err := s.src.Disk(ctx, s.opts.DiskPath); err != nil {
		s.fail(MetricDisk, err)
	} else {
		frame.Disk = d
		values[history.Disk] = d.Percent
	}

	if reading, err := s.src.NetCounters(ctx); err != nil {
		s.fail(MetricNetwork, err)
	} else {
		if last := s.state.Last; last != nil {
			up, down := s.netRates(*last, reading)
			values[history.NetUp] = up
			values[history.NetDown] = down
		}
		s.state.Last = &reading
	}

	for _, series := range history.AllSeries {
		v, ok := values[series]
		if ok {
			s.state.History.Append(series, v)
		}
		frame.Points = append(frame.Points, Point{
			Series:  series,
			Value:   v,
			OK:      ok,
			History: s.state.History.Values(series),
		})
	}

	s.log.Debug("tick", "n", frame.Tick, "cpu", values[history.CPU], "sampled", len(values))
	s.disp.ShowFrame(frame)
	if s.rec != nil {
		if err := s.rec.RecordFrame(frame); err != nil {
			s.log.Warn("record frame", "err", err)
		}
	}

	if s.state.Ticks%uint64(s.opts.ProcessEvery) == 0 {
		s.refreshProcesses(ctx, now)
	}
}

func (s *Sampler) netRates(prev, cur collector.CounterReading) (up, down float64) {
	elapsed := cur.CapturedAt.Sub(prev.CapturedAt).Seconds()
	if elapsed <= 0 {
		elapsed = s.opts.Interval.Seconds()
	}
	up = Rate(cur.BytesSent, prev.BytesSent, elapsed) / KiB
	down = Rate(cur.BytesRecv, prev.BytesRecv, elapsed) / KiB
	if s.opts.ClampNegative {
		up = max(up, 0)
		down = max(down, 0)
	}
	return up, down
}

func (s *Sampler) refreshProcesses(ctx context.Context, at time.Time) {
	snap, err := s.src.Processes(ctx)
	if err != nil {
		s.fail(MetricProcesses, err)
		return
	}

	res := reconcile.Reconcile(s.state.Displayed, snap)
	s.state.Displayed = res.Displayed()
	s.procLog.Debug("processes reconciled",
		"updates", len(res.Updates), "inserts", len(res.Inserts), "removals", len(res.Removals))

	s.disp.ShowProcesses(res)
	if s.rec != nil {
		if err := s.rec.RecordProcesses(at, res); err != nil {
			s.procLog.Warn("record processes", "err", err)
		}
	}
}

func (s *Sampler) fail(metric string, err error) {
	merr := &MetricError{Metric: metric, Err: err}
	s.log.Warn("metric unavailable", "metric", metric, "err", err)
	s.disp.ShowError(merr)
}
