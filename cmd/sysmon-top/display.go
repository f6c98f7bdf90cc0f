package main

import (
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

// chanDisplay forwards sampler output into the termui event loop. Sends never
// block: when the loop falls behind only the newest frame is kept. Process
// results queue up; if that queue overflows, the next result that gets
// through still brings the table in line with the sampler.
type chanDisplay struct {
	frames chan sampler.Frame
	procs  chan reconcile.Result
	errs   chan error
}

var _ sampler.Display = (*chanDisplay)(nil)

func newChanDisplay() *chanDisplay {
	return &chanDisplay{
		frames: make(chan sampler.Frame, 1),
		procs:  make(chan reconcile.Result, 64),
		errs:   make(chan error, 8),
	}
}

func (d *chanDisplay) ShowFrame(f sampler.Frame) {
	select {
	case d.frames <- f:
		return
	default:
	}
	// Replace the stale frame with the newer one.
	select {
	case <-d.frames:
	default:
	}
	select {
	case d.frames <- f:
	default:
	}
}

func (d *chanDisplay) ShowProcesses(r reconcile.Result) {
	select {
	case d.procs <- r:
	default:
	}
}

func (d *chanDisplay) ShowError(err error) {
	select {
	case d.errs <- err:
	default:
	}
}
