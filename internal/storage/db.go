package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

const schema = `
CREATE TABLE IF NOT EXISTS perf_samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	tick INTEGER NOT NULL,
	cpu_pct REAL,
	memory_pct REAL,
	disk_pct REAL,
	net_up_kbps REAL,
	net_down_kbps REAL
);
CREATE INDEX IF NOT EXISTS idx_perf_ts ON perf_samples(timestamp);

CREATE TABLE IF NOT EXISTS process_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp INTEGER NOT NULL,
	pid INTEGER NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_process_events_ts ON process_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_process_events_pid ON process_events(pid);
`

// Process event kinds.
const (
	ProcessStarted = "start"
	ProcessExited  = "exit"
)

// PerfSample is one recorded frame. A nil field was not sampled on that tick.
type PerfSample struct {
	Timestamp   int64    `json:"timestamp"`
	Tick        uint64   `json:"tick"`
	CPUPct      *float64 `json:"cpu_pct"`
	MemoryPct   *float64 `json:"memory_pct"`
	DiskPct     *float64 `json:"disk_pct"`
	NetUpKBps   *float64 `json:"net_up_kbps"`
	NetDownKBps *float64 `json:"net_down_kbps"`
}

// ProcessEvent records a process appearing in or leaving the table.
type ProcessEvent struct {
	Timestamp int64  `json:"timestamp"`
	PID       int32  `json:"pid"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
}

// DB wraps a SQLite database of recorded samples.
type DB struct {
	db *sql.DB
}

var _ sampler.Recorder = (*DB)(nil)

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// RecordFrame inserts one perf sample for the frame.
func (d *DB) RecordFrame(f sampler.Frame) error {
	value := func(s history.Series) any {
		if v, ok := f.Value(s); ok {
			return v
		}
		return nil
	}
	_, err := d.db.Exec(
		"INSERT INTO perf_samples (timestamp, tick, cpu_pct, memory_pct, disk_pct, net_up_kbps, net_down_kbps) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.Timestamp.Unix(), int64(f.Tick),
		value(history.CPU), value(history.Memory), value(history.Disk), value(history.NetUp), value(history.NetDown),
	)
	if err != nil {
		return fmt.Errorf("insert perf sample: %w", err)
	}
	return nil
}

// RecordProcesses stores inserts and removals from a reconcile pass in a
// single transaction. Exit events take the name of the pid's latest start.
func (d *DB) RecordProcesses(at time.Time, r reconcile.Result) error {
	if len(r.Inserts) == 0 && len(r.Removals) == 0 {
		return nil
	}
	ts := at.Unix()

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	start, err := tx.Prepare("INSERT INTO process_events (timestamp, pid, name, kind) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer start.Close()
	exit, err := tx.Prepare(
		"INSERT INTO process_events (timestamp, pid, name, kind) SELECT ?, ?, COALESCE((SELECT name FROM process_events WHERE pid = ? AND kind = ? ORDER BY id DESC LIMIT 1), ''), ?",
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer exit.Close()

	for _, rec := range r.Inserts {
		if _, err := start.Exec(ts, rec.PID, rec.Name, ProcessStarted); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert start event pid %d: %w", rec.PID, err)
		}
	}
	for _, pid := range r.Removals {
		if _, err := exit.Exec(ts, pid, pid, ProcessStarted, ProcessExited); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert exit event pid %d: %w", pid, err)
		}
	}
	return tx.Commit()
}

// LatestPerfSample returns the most recent perf sample, or nil if none exist.
func (d *DB) LatestPerfSample() (*PerfSample, error) {
	row := d.db.QueryRow("SELECT timestamp, tick, cpu_pct, memory_pct, disk_pct, net_up_kbps, net_down_kbps FROM perf_samples ORDER BY id DESC LIMIT 1")
	s, err := scanPerf(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PerfSamplesInRange returns perf samples within the given time range.
func (d *DB) PerfSamplesInRange(from, to int64) ([]PerfSample, error) {
	rows, err := d.db.Query(
		"SELECT timestamp, tick, cpu_pct, memory_pct, disk_pct, net_up_kbps, net_down_kbps FROM perf_samples WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp, id",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var samples []PerfSample
	for rows.Next() {
		s, err := scanPerf(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// ProcessEventsInRange returns process events within the given time range.
func (d *DB) ProcessEventsInRange(from, to int64) ([]ProcessEvent, error) {
	rows, err := d.db.Query(
		"SELECT timestamp, pid, name, kind FROM process_events WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp, id",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []ProcessEvent
	for rows.Next() {
		var e ProcessEvent
		if err := rows.Scan(&e.Timestamp, &e.PID, &e.Name, &e.Kind); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerf(row scanner) (PerfSample, error) {
	var (
		s                        PerfSample
		tick                     int64
		cpu, mem, disk, up, down sql.NullFloat64
	)
	if err := row.Scan(&s.Timestamp, &tick, &cpu, &mem, &disk, &up, &down); err != nil {
		return PerfSample{}, err
	}
	s.Tick = uint64(tick)
	s.CPUPct = nullable(cpu)
	s.MemoryPct = nullable(mem)
	s.DiskPct = nullable(disk)
	s.NetUpKBps = nullable(up)
	s.NetDownKBps = nullable(down)
	return s, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
