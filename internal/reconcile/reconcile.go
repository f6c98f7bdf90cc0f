// Package reconcile diffs process snapshots into in-place table operations.
package reconcile

import (
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
)

// Result lists the operations that turn the displayed rows into the fresh snapshot.
type Result struct {
	Updates  []collector.ProcessRecord `json:"updates"`
	Inserts  []collector.ProcessRecord `json:"inserts"`
	Removals []int32                   `json:"removals"`
}

// Reconcile compares the displayed pids with a fresh snapshot. Displayed pids
// still present become updates carrying the fresh metrics, in displayed order.
// Displayed pids that are gone become removals. Fresh pids not displayed become
// inserts, ordered by pid. A pid repeated in displayed is only considered once.
// fresh is not modified.
func Reconcile(displayed []int32, fresh collector.ProcessSnapshot) Result {
	var r Result

	seen := make(map[int32]struct{}, len(displayed))
	for _, pid := range displayed {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}

		if rec, ok := fresh[pid]; ok {
			r.Updates = append(r.Updates, rec)
			continue
		}
		r.Removals = append(r.Removals, pid)
	}

	for _, pid := range fresh.PIDs() {
		if _, shown := seen[pid]; !shown {
			r.Inserts = append(r.Inserts, fresh[pid])
		}
	}

	return r
}

// Displayed returns the pids shown after applying r: surviving rows in their
// existing order followed by inserts.
func (r Result) Displayed() []int32 {
	pids := make([]int32, 0, len(r.Updates)+len(r.Inserts))
	for _, rec := range r.Updates {
		pids = append(pids, rec.PID)
	}
	for _, rec := range r.Inserts {
		pids = append(pids, rec.PID)
	}
	return pids
}
