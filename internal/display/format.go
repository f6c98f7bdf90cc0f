// Package display holds the text and scaling rules shared by the GUI and
// terminal hosts.
package display

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

// Card is one performance panel.
type Card struct {
	Title  string
	Series history.Series
	Unit   string
}

// Cards lists the performance panels in display order. Network charts upload.
var Cards = []Card{
	{Title: "CPU", Series: history.CPU, Unit: "%"},
	{Title: "Memory", Series: history.Memory, Unit: "%"},
	{Title: "Disk", Series: history.Disk, Unit: "%"},
	{Title: "Network", Series: history.NetUp, Unit: " KB/s"},
}

// Placeholder is shown before a value has been sampled.
const Placeholder = "--"

// Headline formats the card's current value, e.g. "42.0%".
func Headline(c Card, f sampler.Frame) string {
	v, ok := f.Value(c.Series)
	if !ok {
		return Placeholder + c.Unit
	}
	return fmt.Sprintf("%.1f%s", v, c.Unit)
}

// Detail formats the line under the headline.
func Detail(c Card, f sampler.Frame, cores int) string {
	switch c.Series {
	case history.CPU:
		return fmt.Sprintf("Cores: %d | Usage: %s", cores, percent(f, history.CPU))
	case history.Memory:
		return fmt.Sprintf("Used: %s / %s | %s",
			humanize.IBytes(f.Memory.Used), humanize.IBytes(f.Memory.Total), percent(f, history.Memory))
	case history.Disk:
		return fmt.Sprintf("Used: %s / %s | %s",
			humanize.IBytes(f.Disk.Used), humanize.IBytes(f.Disk.Total), percent(f, history.Disk))
	case history.NetUp, history.NetDown:
		return fmt.Sprintf("↑ %s KB/s | ↓ %s KB/s", rate(f, history.NetUp), rate(f, history.NetDown))
	}
	return ""
}

func percent(f sampler.Frame, s history.Series) string {
	if v, ok := f.Value(s); ok {
		return fmt.Sprintf("%.1f%%", v)
	}
	return Placeholder
}

func rate(f sampler.Frame, s history.Series) string {
	if v, ok := f.Value(s); ok {
		return fmt.Sprintf("%.1f", v)
	}
	return Placeholder
}

// ChartCeiling returns the y-axis maximum: 20% headroom over the largest
// value, or 100 when every value is zero or there are none.
func ChartCeiling(values []float64) float64 {
	var peak float64
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak <= 0 {
		return 100
	}
	return peak * 1.2
}

// Column describes one process table column.
type Column struct {
	Key   reconcile.Column
	Label string
	Width float32
}

// Columns lists the process table columns in display order.
var Columns = []Column{
	{Key: reconcile.ColumnName, Label: "Name", Width: 220},
	{Key: reconcile.ColumnPID, Label: "PID", Width: 80},
	{Key: reconcile.ColumnStatus, Label: "Status", Width: 100},
	{Key: reconcile.ColumnCPU, Label: "CPU %", Width: 80},
	{Key: reconcile.ColumnMemory, Label: "Memory %", Width: 90},
}

// HeaderLabel appends a sort arrow to the active column's label.
func HeaderLabel(col Column, active reconcile.Column, reverse bool) string {
	if col.Key != active {
		return col.Label
	}
	if reverse {
		return col.Label + " ↓"
	}
	return col.Label + " ↑"
}

// Cells formats a process row in Columns order.
func Cells(rec collector.ProcessRecord) []string {
	return []string{
		rec.Name,
		fmt.Sprint(rec.PID),
		rec.Status,
		fmt.Sprintf("%.1f", rec.CPUPercent),
		fmt.Sprintf("%.1f", rec.MemoryPercent),
	}
}
