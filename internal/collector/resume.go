package collector

import (
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	logindInterface   = "org.freedesktop.login1.Manager"
	prepareForSleep   = logindInterface + ".PrepareForSleep"
	prepareForSleepID = "PrepareForSleep"
)

// ResumeMonitor listens for systemd-logind PrepareForSleep(false) and reports
// each resume on a channel. Cumulative counters keep running while suspended,
// so consumers use the signal to drop stale baselines.
type ResumeMonitor struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	resumed chan struct{}
	done    chan struct{}
	once    sync.Once
	log     *slog.Logger
}

// NewResumeMonitor connects to the system bus and starts listening.
func NewResumeMonitor(logger *slog.Logger) (*ResumeMonitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(prepareForSleepID),
	)
	if err != nil {
		return nil, err
	}

	m := &ResumeMonitor{
		conn:    conn,
		signals: make(chan *dbus.Signal, 16),
		resumed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     logger,
	}
	conn.Signal(m.signals)
	go m.listen()
	return m, nil
}

// Resumed returns a channel that receives a value after each wake from sleep.
// Wakes that arrive before the previous one is consumed are coalesced.
func (m *ResumeMonitor) Resumed() <-chan struct{} {
	return m.resumed
}

// Close stops the monitor. It is safe to call more than once.
func (m *ResumeMonitor) Close() {
	m.once.Do(func() {
		close(m.done)
		m.conn.RemoveSignal(m.signals)
	})
}

func (m *ResumeMonitor) listen() {
	for {
		select {
		case sig := <-m.signals:
			if sig == nil || sig.Name != prepareForSleep || len(sig.Body) < 1 {
				continue
			}
			sleeping, ok := sig.Body[0].(bool)
			if !ok {
				continue
			}
			if sleeping {
				m.log.Info("system going to sleep")
				continue
			}
			m.log.Info("system resumed")
			notify(m.resumed)
		case <-m.done:
			return
		}
	}
}

// notify performs a non-blocking send on a 1-buffered channel.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
