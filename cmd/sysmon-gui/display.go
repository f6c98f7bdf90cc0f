package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

// guiDisplay hands sampler output to the fyne UI thread.
type guiDisplay struct {
	perf   *performanceTab
	procs  *processTab
	status *widget.Label

	// Sampler goroutine only.
	pending []error
}

var _ sampler.Display = (*guiDisplay)(nil)

func (g *guiDisplay) ShowFrame(f sampler.Frame) {
	errs := g.pending
	g.pending = nil
	fyne.Do(func() {
		g.perf.Update(f)
		g.status.SetText(statusLine(f.Timestamp, errs))
	})
}

func (g *guiDisplay) ShowProcesses(r reconcile.Result) {
	fyne.Do(func() { g.procs.Apply(r) })
}

// ShowError queues err for the next status line. Failures on a single tick
// are not worth a dialog.
func (g *guiDisplay) ShowError(err error) {
	g.pending = append(g.pending, err)
}

func statusLine(at time.Time, errs []error) string {
	stamp := at.Format("15:04:05")
	switch len(errs) {
	case 0:
		return "Updated " + stamp
	case 1:
		return fmt.Sprintf("Updated %s, %v", stamp, errs[0])
	default:
		return fmt.Sprintf("Updated %s, %v (+%d more)", stamp, errs[0], len(errs)-1)
	}
}

func countLabel(n int) string {
	return fmt.Sprintf("Processes: %d", n)
}
