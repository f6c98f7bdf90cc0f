package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
)

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()

	var n int
	row := db.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&n); err != nil {
		t.Fatalf("count rows in %s: %v", table, err)
	}
	return n
}

func TestDeleteOlderThan(t *testing.T) {
	db := openTestDB(t)

	const (
		oldTs    int64 = 50
		cutoffTs int64 = 100
		newTs    int64 = 150
	)

	for i, ts := range []int64{oldTs, cutoffTs, newTs} {
		if err := db.RecordFrame(frame(ts, uint64(i+1), 10, true)); err != nil {
			t.Fatalf("RecordFrame(ts=%d): %v", ts, err)
		}
		res := reconcile.Result{Inserts: []collector.ProcessRecord{{PID: int32(i + 1), Name: "p"}}}
		if err := db.RecordProcesses(time.Unix(ts, 0), res); err != nil {
			t.Fatalf("RecordProcesses(ts=%d): %v", ts, err)
		}
	}

	deleted, err := db.DeleteOlderThan(cutoffTs)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 2 {
		t.Fatalf("DeleteOlderThan() deleted = %d, want 2 (one old row per table)", deleted)
	}

	for _, table := range []string{"perf_samples", "process_events"} {
		if got := countRows(t, db, table); got != 2 {
			t.Fatalf("%s row count after cleanup = %d, want 2 (cutoff+new)", table, got)
		}
	}
}
