package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/logging"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

// logDisplay writes sampler output to slog instead of a screen.
type logDisplay struct {
	frameLog *slog.Logger
	procLog  *slog.Logger
}

func newLogDisplay(logger *slog.Logger) *logDisplay {
	return &logDisplay{
		frameLog: logger.With("topic", logging.TopicSampler),
		procLog:  logger.With("topic", logging.TopicProcess),
	}
}

func (d *logDisplay) ShowFrame(f sampler.Frame) {
	attrs := []any{"tick", f.Tick}
	for _, p := range f.Points {
		if p.OK {
			attrs = append(attrs, string(p.Series), fmt.Sprintf("%.1f", p.Value))
		}
	}
	if f.Memory.Total > 0 {
		attrs = append(attrs, "mem_used", humanize.IBytes(f.Memory.Used))
	}
	if f.Disk.Total > 0 {
		attrs = append(attrs, "disk_free", humanize.IBytes(f.Disk.Free))
	}
	d.frameLog.Info("sample", attrs...)
}

func (d *logDisplay) ShowProcesses(r reconcile.Result) {
	d.procLog.Info("sample",
		"active", len(r.Updates)+len(r.Inserts),
		"started", len(r.Inserts),
		"exited", len(r.Removals))
	for _, rec := range r.Inserts {
		d.procLog.Debug("process started", "pid", rec.PID, "name", rec.Name)
	}
	for _, pid := range r.Removals {
		d.procLog.Debug("process exited", "pid", pid)
	}
	if top, ok := busiest(r.Updates); ok {
		d.procLog.Debug("busiest process", "pid", top.PID, "name", top.Name, "cpu", fmt.Sprintf("%.1f", top.CPUPercent))
	}
}

// ShowError is a no-op beyond debug output; the sampler already logs failures.
func (d *logDisplay) ShowError(err error) {
	d.frameLog.Debug("tick error", "err", err)
}

var _ sampler.Display = (*logDisplay)(nil)

func busiest(recs []collector.ProcessRecord) (collector.ProcessRecord, bool) {
	if len(recs) == 0 {
		return collector.ProcessRecord{}, false
	}
	top := recs[0]
	for _, rec := range recs[1:] {
		if rec.CPUPercent > top.CPUPercent {
			top = rec
		}
	}
	return top, true
}
