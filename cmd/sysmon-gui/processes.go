package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/display"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
)

// processTab shows the reconciled process table. Rows are updated in place
// so selection and scroll survive refreshes. Header buttons sort.
type processTab struct {
	rows  *reconcile.Table
	table *widget.Table
	count *widget.Label
}

func newProcessTab() *processTab {
	p := &processTab{
		rows:  reconcile.NewTable(),
		count: widget.NewLabel("Processes: --"),
	}

	p.table = widget.NewTableWithHeaders(
		func() (int, int) { return p.rows.Len(), len(display.Columns) },
		func() fyne.CanvasObject { return widget.NewLabel("template process name") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			if id.Row < 0 || id.Row >= p.rows.Len() {
				return
			}
			obj.(*widget.Label).SetText(display.Cells(p.rows.Row(id.Row))[id.Col])
		},
	)
	p.table.ShowHeaderColumn = false
	p.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	p.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col < 0 || id.Col >= len(display.Columns) {
			return
		}
		col := display.Columns[id.Col]
		active, reverse := p.rows.Sorting()
		btn := obj.(*widget.Button)
		btn.SetText(display.HeaderLabel(col, active, reverse))
		btn.OnTapped = func() {
			p.rows.SortBy(col.Key)
			p.table.Refresh()
		}
	}
	for i, col := range display.Columns {
		p.table.SetColumnWidth(i, col.Width)
	}
	return p
}

// Apply merges a reconcile result. Call on the UI thread.
func (p *processTab) Apply(r reconcile.Result) {
	p.rows.Apply(r)
	p.rows.Resort()
	p.count.SetText(countLabel(p.rows.Len()))
	p.table.Refresh()
}
