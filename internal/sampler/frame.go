package sampler

import (
	"time"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
)

// Point is one series' result for a tick. OK is false when the metric failed
// or, for the network series, when no baseline reading existed yet. History
// is a copy of the series buffer after the tick, oldest first.
type Point struct {
	Series  history.Series `json:"series"`
	Value   float64        `json:"value"`
	OK      bool           `json:"ok"`
	History []float64      `json:"history"`
}

// Frame is everything a display needs to render one fast tick. It holds only
// copies, so it may be handed to another goroutine.
type Frame struct {
	Tick      uint64               `json:"tick"`
	Timestamp time.Time            `json:"timestamp"`
	Points    []Point              `json:"points"`
	Memory    collector.MemoryStat `json:"memory"`
	Disk      collector.DiskStat   `json:"disk"`
}

// Point returns the point for series, if the frame has one.
func (f Frame) Point(series history.Series) (Point, bool) {
	for _, p := range f.Points {
		if p.Series == series {
			return p, true
		}
	}
	return Point{}, false
}

// Value returns the tick's value for series and whether it was sampled.
func (f Frame) Value(series history.Series) (float64, bool) {
	p, ok := f.Point(series)
	if !ok || !p.OK {
		return 0, false
	}
	return p.Value, true
}

// Display receives sampler output. Implementations are called from the
// sampler goroutine and must not block; UI hosts marshal onto their own thread.
type Display interface {
	ShowFrame(Frame)
	ShowProcesses(reconcile.Result)
	ShowError(error)
}

// Recorder optionally persists sampler output. Errors are logged and ignored.
type Recorder interface {
	RecordFrame(Frame) error
	RecordProcesses(at time.Time, r reconcile.Result) error
}
