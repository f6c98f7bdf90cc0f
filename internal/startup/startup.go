// Package startup runs the staged initialisation shown on the loading screen.
//
// The sequence runs on its own goroutine. Hosts never wait on it directly;
// they poll Ready or Status on a short interval from their UI thread.
package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
)

// DefaultStageDelay is the pause before each stage.
const DefaultStageDelay = 300 * time.Millisecond

// DefaultPollInterval is how often hosts check for readiness.
const DefaultPollInterval = 100 * time.Millisecond

var (
	// ErrAlreadyStarted is returned by Start on a second call.
	ErrAlreadyStarted = errors.New("startup sequence already started")
	// ErrPollStopped is returned by Poll when its callback asks to stop.
	ErrPollStopped = errors.New("polling stopped")
)

// Stage is one step of the sequence. Work is optional.
type Stage struct {
	Progress int
	Message  string
	Work     func(ctx context.Context) error
}

// Status is the latest published state of a sequence.
type Status struct {
	Progress int
	Message  string
	Ready    bool
	Err      error
}

// Done reports whether the sequence has finished, successfully or not.
func (s Status) Done() bool { return s.Ready || s.Err != nil }

// DefaultStages returns the loading-screen script. When src is non-nil the
// stages also warm up the source so the first sample has baselines.
func DefaultStages(src collector.Source) []Stage {
	stages := []Stage{
		{Progress: 10, Message: "Loading system modules..."},
		{Progress: 25, Message: "Analyzing hardware..."},
		{Progress: 40, Message: "Initializing monitors..."},
		{Progress: 60, Message: "Scanning network..."},
		{Progress: 75, Message: "Preparing process manager..."},
		{Progress: 90, Message: "Finalizing UI..."},
		{Progress: 100, Message: "Ready!"},
	}
	if src == nil {
		return stages
	}
	stages[1].Work = func(ctx context.Context) error {
		_, err := src.Memory(ctx)
		return err
	}
	stages[2].Work = func(ctx context.Context) error {
		_, err := src.CPUPercent(ctx)
		return err
	}
	stages[3].Work = func(ctx context.Context) error {
		_, err := src.NetCounters(ctx)
		return err
	}
	stages[4].Work = func(ctx context.Context) error {
		_, err := src.Processes(ctx)
		return err
	}
	return stages
}

// Validate checks that progress stays within 0..100, never decreases, and
// ends at 100.
func Validate(stages []Stage) error {
	if len(stages) == 0 {
		return errors.New("no stages")
	}
	prev := 0
	for i, st := range stages {
		if st.Progress < 0 || st.Progress > 100 {
			return fmt.Errorf("stage %d progress must be between 0 and 100, got %d", i, st.Progress)
		}
		if st.Progress < prev {
			return fmt.Errorf("stage %d progress %d is below previous %d", i, st.Progress, prev)
		}
		prev = st.Progress
	}
	if last := stages[len(stages)-1].Progress; last != 100 {
		return fmt.Errorf("last stage progress must be 100, got %d", last)
	}
	return nil
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithStageDelay sets the pause before each stage.
func WithStageDelay(d time.Duration) Option {
	return func(s *Sequencer) { s.delay = d }
}

// WithLogger sets the logger used for stage transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.log = l.With("topic", logging.TopicStartup) }
}

// Sequencer runs stages in order and then raises a readiness flag.
type Sequencer struct {
	stages []Stage
	delay  time.Duration
	log    *slog.Logger

	status  atomic.Pointer[Status]
	ready   atomic.Bool
	started atomic.Bool
	done    chan struct{}
}

// NewSequencer validates stages and returns an unstarted sequencer.
func NewSequencer(stages []Stage, opts ...Option) (*Sequencer, error) {
	if err := Validate(stages); err != nil {
		return nil, fmt.Errorf("validate stages: %w", err)
	}
	s := &Sequencer{
		stages: append([]Stage(nil), stages...),
		delay:  DefaultStageDelay,
		done:   make(chan struct{}),
	}
	WithLogger(logging.Discard())(s)
	for _, o := range opts {
		o(s)
	}
	s.status.Store(&Status{})
	return s, nil
}

// Start launches the sequence on a new goroutine and returns immediately.
// Cancelling ctx aborts the sequence with ctx's error.
func (s *Sequencer) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go s.run(ctx)
	return nil
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.done)

	for i, st := range s.stages {
		if err := sleep(ctx, s.delay); err != nil {
			s.fail(i, st, err)
			return
		}
		if st.Work != nil {
			if err := st.Work(ctx); err != nil {
				s.fail(i, st, err)
				return
			}
		}
		s.status.Store(&Status{Progress: st.Progress, Message: st.Message})
		s.log.Debug("stage complete", "stage", i, "progress", st.Progress, "message", st.Message)
	}

	last := s.stages[len(s.stages)-1]
	s.status.Store(&Status{Progress: last.Progress, Message: last.Message, Ready: true})
	s.ready.Store(true)
	s.log.Info("startup complete")
}

func (s *Sequencer) fail(i int, st Stage, err error) {
	prev := s.status.Load()
	err = fmt.Errorf("startup stage %q: %w", st.Message, err)
	s.status.Store(&Status{Progress: prev.Progress, Message: prev.Message, Err: err})
	s.log.Error("startup failed", "stage", i, "err", err)
}

// Ready reports whether every stage has completed.
func (s *Sequencer) Ready() bool { return s.ready.Load() }

// Status returns the latest published status.
func (s *Sequencer) Status() Status { return *s.status.Load() }

// Err returns the error that halted the sequence, if any.
func (s *Sequencer) Err() error { return s.status.Load().Err }

// Done is closed when the sequence finishes, successfully or not. Headless
// hosts may block on it; UI hosts should use Poll.
func (s *Sequencer) Done() <-chan struct{} { return s.done }

// Poll calls fn with the current status every interval until the sequence
// finishes, fn returns false, or ctx is done. The final call to fn sees the
// terminal status. It returns that status and, when it stopped early, the
// reason.
func Poll(ctx context.Context, seq *Sequencer, interval time.Duration, fn func(Status) bool) (Status, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st := seq.Status()
		if !fn(st) {
			return st, ErrPollStopped
		}
		if st.Done() {
			return st, st.Err
		}
		select {
		case <-ctx.Done():
			return seq.Status(), ctx.Err()
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
