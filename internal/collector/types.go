package collector

import (
	"sort"
	"time"
)

// MemoryStat holds virtual memory totals in bytes.
type MemoryStat struct {
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
}

// DiskStat holds usage for the filesystem mounted at Path.
type DiskStat struct {
	Path    string  `json:"path"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// CounterReading is a cumulative network byte counter pair captured at one instant.
type CounterReading struct {
	BytesSent  uint64    `json:"bytes_sent"`
	BytesRecv  uint64    `json:"bytes_recv"`
	CapturedAt time.Time `json:"captured_at"`
}

// ProcessRecord is one row of the process table, keyed by PID.
type ProcessRecord struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// ProcessSnapshot maps pid to record for one enumeration. It is not modified
// after Processes returns it.
type ProcessSnapshot map[int32]ProcessRecord

// PIDs returns the snapshot's pids in ascending order.
func (s ProcessSnapshot) PIDs() []int32 {
	pids := make([]int32, 0, len(s))
	for pid := range s {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
