package reconcile

import (
	"sort"
	"strings"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
)

// Column identifies a sortable process table column.
type Column string

const (
	ColumnName   Column = "name"
	ColumnPID    Column = "pid"
	ColumnStatus Column = "status"
	ColumnCPU    Column = "cpu"
	ColumnMemory Column = "memory"
)

// Table is the displayed process list. Rows keep their position across
// Apply calls so the view neither flickers nor loses its scroll offset.
// Table is not safe for concurrent use; keep it on the UI thread.
type Table struct {
	rows  []collector.ProcessRecord
	index map[int32]int

	sortBy  Column
	reverse bool
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[int32]int)}
}

// Apply updates rows in place and appends inserts. After Apply the table
// holds exactly r.Displayed(): any row outside it is dropped whether or not
// r lists it as a removal, so a Result lost on the way heals on the next one.
// Inserts for a pid already present are treated as updates.
func (t *Table) Apply(r Result) {
	want := make(map[int32]struct{}, len(r.Updates)+len(r.Inserts))
	for _, pid := range r.Displayed() {
		want[pid] = struct{}{}
	}

	kept := t.rows[:0]
	for _, rec := range t.rows {
		if _, ok := want[rec.PID]; ok {
			kept = append(kept, rec)
		}
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	t.reindex()

	for _, recs := range [][]collector.ProcessRecord{r.Updates, r.Inserts} {
		for _, rec := range recs {
			if i, ok := t.index[rec.PID]; ok {
				t.rows[i] = rec
				continue
			}
			t.index[rec.PID] = len(t.rows)
			t.rows = append(t.rows, rec)
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) collector.ProcessRecord { return t.rows[i] }

// PIDs returns the displayed pids in display order.
func (t *Table) PIDs() []int32 {
	pids := make([]int32, len(t.rows))
	for i, rec := range t.rows {
		pids[i] = rec.PID
	}
	return pids
}

// SortBy orders rows by column. Selecting the current column again flips
// the direction; a new column starts ascending. Ties break on pid.
func (t *Table) SortBy(col Column) {
	if t.sortBy == col {
		t.reverse = !t.reverse
	} else {
		t.sortBy = col
		t.reverse = false
	}
	t.sort()
}

// Resort reapplies the active sort after rows changed. Unsorted tables keep
// their order.
func (t *Table) Resort() {
	t.sort()
}

// Sorting returns the active sort column and direction.
func (t *Table) Sorting() (Column, bool) {
	return t.sortBy, t.reverse
}

func (t *Table) sort() {
	less := lessFunc(t.sortBy)
	if less == nil {
		return
	}
	sort.SliceStable(t.rows, func(i, j int) bool {
		a, b := t.rows[i], t.rows[j]
		if t.reverse {
			a, b = b, a
		}
		return less(a, b)
	})
	t.reindex()
}

func lessFunc(col Column) func(a, b collector.ProcessRecord) bool {
	switch col {
	case ColumnName:
		return func(a, b collector.ProcessRecord) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an == bn {
				return a.PID < b.PID
			}
			return an < bn
		}
	case ColumnStatus:
		return func(a, b collector.ProcessRecord) bool {
			if a.Status == b.Status {
				return a.PID < b.PID
			}
			return a.Status < b.Status
		}
	case ColumnPID:
		return func(a, b collector.ProcessRecord) bool { return a.PID < b.PID }
	case ColumnCPU:
		return func(a, b collector.ProcessRecord) bool {
			if a.CPUPercent == b.CPUPercent {
				return a.PID < b.PID
			}
			return a.CPUPercent < b.CPUPercent
		}
	case ColumnMemory:
		return func(a, b collector.ProcessRecord) bool {
			if a.MemoryPercent == b.MemoryPercent {
				return a.PID < b.PID
			}
			return a.MemoryPercent < b.MemoryPercent
		}
	}
	return nil
}

func (t *Table) reindex() {
	clear(t.index)
	for i, rec := range t.rows {
		t.index[rec.PID] = i
	}
}
