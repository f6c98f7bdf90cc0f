package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/storage"
)

func openTestStore(t *testing.T) *storage.DB {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "samples.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return store
}

func recordFrame(t *testing.T, store *storage.DB, at time.Time, tick uint64, cpu float64) {
	t.Helper()

	err := store.RecordFrame(sampler.Frame{
		Tick:      tick,
		Timestamp: at,
		Points: []sampler.Point{
			{Series: history.CPU, Value: cpu, OK: true},
			{Series: history.Memory, Value: 40, OK: true},
			{Series: history.Disk, Value: 50, OK: true},
			{Series: history.NetUp, OK: false},
			{Series: history.NetDown, OK: false},
		},
	})
	if err != nil {
		t.Fatalf("RecordFrame() error = %v", err)
	}
}

func TestDump(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recordFrame(t, store, base.Add(-2*time.Hour), 1, 99)
	recordFrame(t, store, base, 2, 12.5)
	if err := store.RecordProcesses(base, reconcile.Result{
		Inserts: []collector.ProcessRecord{{PID: 7, Name: "vim"}},
	}); err != nil {
		t.Fatalf("RecordProcesses() error = %v", err)
	}
	if err := store.RecordProcesses(base.Add(time.Second), reconcile.Result{Removals: []int32{7}}); err != nil {
		t.Fatalf("RecordProcesses() error = %v", err)
	}

	var buf bytes.Buffer
	if err := dump(&buf, store, base.Add(-time.Hour), base.Add(time.Minute)); err != nil {
		t.Fatalf("dump() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"samples: 1\n",
		"2024-03-01 12:00:00 tick=2 cpu=12.5% mem=40.0% disk=50.0% up=-- down=--\n",
		"process events: 2\n",
		`2024-03-01 12:00:00 start pid=7 name="vim"`,
		`2024-03-01 12:00:01 exit  pid=7 name="vim"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "tick=1") {
		t.Errorf("dump output includes sample outside range:\n%s", out)
	}
}

func TestLogLastSample(t *testing.T) {
	store := openTestStore(t)
	defer store.Close()

	var buf bytes.Buffer
	logger := logging.New(&buf, "record", false).With("topic", logging.TopicRecord)

	logLastSample(store, logger)
	if !strings.Contains(buf.String(), "recording database is empty") {
		t.Errorf("empty database log = %q", buf.String())
	}

	buf.Reset()
	recordFrame(t, store, time.Now().Add(-time.Minute), 42, 1)
	logLastSample(store, logger)
	if out := buf.String(); !strings.Contains(out, "last recorded sample") || !strings.Contains(out, "tick=42") {
		t.Errorf("last sample log = %q", out)
	}
}

func TestStartCleanup_WaitsBeforeClose(t *testing.T) {
	store := openTestStore(t)
	recordFrame(t, store, time.Now().Add(-48*time.Hour), 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	wait := startCleanup(ctx, store, time.Hour, 24*time.Hour, logging.Discard())

	deadline := time.Now().Add(5 * time.Second)
	for {
		samples, err := store.PerfSamplesInRange(0, time.Now().Unix())
		if err != nil {
			t.Fatalf("PerfSamplesInRange() error = %v", err)
		}
		if len(samples) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial cleanup did not delete the expired sample")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	waited := make(chan struct{})
	go func() {
		wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup goroutine did not exit after cancel")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
