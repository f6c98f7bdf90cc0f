package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Source is the set of OS counter queries the sampler depends on. Every call
// may fail independently; callers treat a failure as affecting that call only.
type Source interface {
	CPUPercent(ctx context.Context) (float64, error)
	Memory(ctx context.Context) (MemoryStat, error)
	Disk(ctx context.Context, path string) (DiskStat, error)
	NetCounters(ctx context.Context) (CounterReading, error)
	Processes(ctx context.Context) (ProcessSnapshot, error)
}

// SystemSource reads counters from the local host through gopsutil.
type SystemSource struct {
	mu sync.Mutex
	// pid -> handle, kept across enumerations so per-process CPU percent is
	// computed against the previous call instead of process lifetime.
	procs map[int32]*process.Process
	now   func() time.Time
}

// NewSystemSource creates a SystemSource with an empty process cache.
func NewSystemSource() *SystemSource {
	return &SystemSource{
		procs: make(map[int32]*process.Process),
		now:   time.Now,
	}
}

// CPUPercent returns system-wide utilisation since the previous call. The
// first call after start returns the utilisation since boot.
func (s *SystemSource) CPUPercent(ctx context.Context) (float64, error) {
	percent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("read cpu percent: %w", err)
	}
	if len(percent) == 0 {
		return 0, fmt.Errorf("read cpu percent: no data")
	}
	return percent[0], nil
}

// Memory returns virtual memory usage.
func (s *SystemSource) Memory(ctx context.Context) (MemoryStat, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStat{}, fmt.Errorf("read virtual memory: %w", err)
	}
	return MemoryStat{
		Total:     vm.Total,
		Used:      vm.Used,
		Available: vm.Available,
		Percent:   vm.UsedPercent,
	}, nil
}

// Disk returns usage of the filesystem mounted at path.
func (s *SystemSource) Disk(ctx context.Context, path string) (DiskStat, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskStat{}, fmt.Errorf("read disk usage %s: %w", path, err)
	}
	return DiskStat{
		Path:    path,
		Total:   usage.Total,
		Used:    usage.Used,
		Free:    usage.Free,
		Percent: usage.UsedPercent,
	}, nil
}

// NetCounters returns bytes sent/received since boot, summed over all interfaces.
func (s *SystemSource) NetCounters(ctx context.Context) (CounterReading, error) {
	counters, err := gopsnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return CounterReading{}, fmt.Errorf("read net counters: %w", err)
	}
	if len(counters) == 0 {
		return CounterReading{}, fmt.Errorf("read net counters: no interfaces")
	}
	return CounterReading{
		BytesSent:  counters[0].BytesSent,
		BytesRecv:  counters[0].BytesRecv,
		CapturedAt: s.now(),
	}, nil
}

// Processes enumerates running processes. A process that exits between
// enumeration and the metric reads is left out of the snapshot.
func (s *SystemSource) Processes(ctx context.Context) (ProcessSnapshot, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pids: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(ProcessSnapshot, len(pids))
	alive := make(map[int32]bool, len(pids))
	for _, pid := range pids {
		if pid <= 0 {
			continue
		}
		alive[pid] = true

		proc, ok := s.procs[pid]
		if !ok {
			proc, err = process.NewProcessWithContext(ctx, pid)
			if err != nil {
				continue
			}
			s.procs[pid] = proc
		}

		record, err := readProcess(ctx, proc)
		if err != nil {
			// Gone, or not ours to read.
			delete(s.procs, pid)
			continue
		}
		snapshot[pid] = record
	}

	for pid := range s.procs {
		if !alive[pid] {
			delete(s.procs, pid)
		}
	}

	return snapshot, nil
}

func readProcess(ctx context.Context, proc *process.Process) (ProcessRecord, error) {
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return ProcessRecord{}, err
	}

	status := "unknown"
	if st, err := proc.StatusWithContext(ctx); err == nil && len(st) > 0 {
		status = strings.Join(st, ",")
	}

	cpuPct, err := proc.PercentWithContext(ctx, 0)
	if err != nil {
		cpuPct = 0
	}

	memPct, err := proc.MemoryPercentWithContext(ctx)
	if err != nil {
		memPct = 0
	}

	return ProcessRecord{
		PID:           proc.Pid,
		Name:          name,
		Status:        status,
		CPUPercent:    cpuPct,
		MemoryPercent: float64(memPct),
	}, nil
}
