package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})

	return db
}

func frame(ts int64, tick uint64, cpu float64, netOK bool) sampler.Frame {
	return sampler.Frame{
		Tick:      tick,
		Timestamp: time.Unix(ts, 0),
		Points: []sampler.Point{
			{Series: history.CPU, Value: cpu, OK: true},
			{Series: history.Memory, Value: 40, OK: true},
			{Series: history.Disk, OK: false},
			{Series: history.NetUp, Value: 1.5, OK: netOK},
			{Series: history.NetDown, Value: 3, OK: netOK},
		},
	}
}

func TestPerfSampleRoundTrip(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestPerfSample()
	if err != nil {
		t.Fatalf("LatestPerfSample() error = %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestPerfSample() = %#v on empty db, want nil", latest)
	}

	if err := db.RecordFrame(frame(10, 1, 12.5, false)); err != nil {
		t.Fatalf("RecordFrame(1) error = %v", err)
	}
	if err := db.RecordFrame(frame(20, 2, 30, true)); err != nil {
		t.Fatalf("RecordFrame(2) error = %v", err)
	}

	latest, err = db.LatestPerfSample()
	if err != nil {
		t.Fatalf("LatestPerfSample() error = %v", err)
	}
	if latest == nil || latest.Tick != 2 || latest.CPUPct == nil || *latest.CPUPct != 30 {
		t.Fatalf("LatestPerfSample() = %#v, want tick=2 cpu=30", latest)
	}
	if latest.NetUpKBps == nil || *latest.NetUpKBps != 1.5 {
		t.Fatalf("NetUpKBps = %v, want 1.5", latest.NetUpKBps)
	}

	ranged, err := db.PerfSamplesInRange(10, 15)
	if err != nil {
		t.Fatalf("PerfSamplesInRange() error = %v", err)
	}
	if len(ranged) != 1 || ranged[0].Timestamp != 10 {
		t.Fatalf("PerfSamplesInRange() = %#v, want one row at ts=10", ranged)
	}
	first := ranged[0]
	if first.DiskPct != nil || first.NetUpKBps != nil || first.NetDownKBps != nil {
		t.Fatalf("unsampled fields = %v/%v/%v, want nil", first.DiskPct, first.NetUpKBps, first.NetDownKBps)
	}
	if first.MemoryPct == nil || *first.MemoryPct != 40 {
		t.Fatalf("MemoryPct = %v, want 40", first.MemoryPct)
	}
}

func TestRecordProcesses(t *testing.T) {
	db := openTestDB(t)

	first := reconcile.Reconcile(nil, collector.ProcessSnapshot{
		1: {PID: 1, Name: "init"},
		2: {PID: 2, Name: "bash"},
	})
	if err := db.RecordProcesses(time.Unix(100, 0), first); err != nil {
		t.Fatalf("RecordProcesses(first) error = %v", err)
	}

	second := reconcile.Reconcile(first.Displayed(), collector.ProcessSnapshot{
		1: {PID: 1, Name: "init"},
		3: {PID: 3, Name: "vim"},
	})
	if err := db.RecordProcesses(time.Unix(105, 0), second); err != nil {
		t.Fatalf("RecordProcesses(second) error = %v", err)
	}

	// Updates only: nothing to record.
	if err := db.RecordProcesses(time.Unix(110, 0), reconcile.Reconcile(second.Displayed(), collector.ProcessSnapshot{
		1: {PID: 1, Name: "init"},
		3: {PID: 3, Name: "vim"},
	})); err != nil {
		t.Fatalf("RecordProcesses(third) error = %v", err)
	}

	events, err := db.ProcessEventsInRange(0, 200)
	if err != nil {
		t.Fatalf("ProcessEventsInRange() error = %v", err)
	}
	want := []ProcessEvent{
		{Timestamp: 100, PID: 1, Name: "init", Kind: ProcessStarted},
		{Timestamp: 100, PID: 2, Name: "bash", Kind: ProcessStarted},
		{Timestamp: 105, PID: 3, Name: "vim", Kind: ProcessStarted},
		{Timestamp: 105, PID: 2, Name: "bash", Kind: ProcessExited},
	}
	if len(events) != len(want) {
		t.Fatalf("ProcessEventsInRange() = %#v, want %#v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event[%d] = %#v, want %#v", i, events[i], want[i])
		}
	}
}

func TestRecordProcesses_UnknownExit(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordProcesses(time.Unix(5, 0), reconcile.Result{Removals: []int32{42}}); err != nil {
		t.Fatalf("RecordProcesses() error = %v", err)
	}
	events, err := db.ProcessEventsInRange(0, 10)
	if err != nil {
		t.Fatalf("ProcessEventsInRange() error = %v", err)
	}
	if len(events) != 1 || events[0].Name != "" || events[0].Kind != ProcessExited {
		t.Fatalf("ProcessEventsInRange() = %#v, want one unnamed exit", events)
	}
}
