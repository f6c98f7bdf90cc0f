package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/display"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/storage"
)

const dumpTimeFormat = "2006-01-02 15:04:05"

// dump prints recorded samples, then process churn, between from and to.
// Times are UTC.
func dump(w io.Writer, store *storage.DB, from, to time.Time) error {
	samples, err := store.PerfSamplesInRange(from.Unix(), to.Unix())
	if err != nil {
		return fmt.Errorf("query samples: %w", err)
	}
	events, err := store.ProcessEventsInRange(from.Unix(), to.Unix())
	if err != nil {
		return fmt.Errorf("query process events: %w", err)
	}

	fmt.Fprintf(w, "samples: %d\n", len(samples))
	for _, s := range samples {
		fmt.Fprintf(w, "%s tick=%d cpu=%s mem=%s disk=%s up=%s down=%s\n",
			stamp(s.Timestamp), s.Tick,
			optional(s.CPUPct, "%"), optional(s.MemoryPct, "%"), optional(s.DiskPct, "%"),
			optional(s.NetUpKBps, " KB/s"), optional(s.NetDownKBps, " KB/s"))
	}

	fmt.Fprintf(w, "process events: %d\n", len(events))
	for _, e := range events {
		fmt.Fprintf(w, "%s %-5s pid=%d name=%q\n", stamp(e.Timestamp), e.Kind, e.PID, e.Name)
	}
	return nil
}

// logLastSample reports where an existing recording left off.
func logLastSample(store *storage.DB, logger *slog.Logger) {
	last, err := store.LatestPerfSample()
	if err != nil {
		logger.Warn("read last sample", "err", err)
		return
	}
	if last == nil {
		logger.Info("recording database is empty")
		return
	}
	at := time.Unix(last.Timestamp, 0)
	logger.Info("last recorded sample", "at", at.Format(time.RFC3339), "ago", humanize.Time(at), "tick", last.Tick)
}

func stamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(dumpTimeFormat)
}

func optional(v *float64, unit string) string {
	if v == nil {
		return display.Placeholder
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}
