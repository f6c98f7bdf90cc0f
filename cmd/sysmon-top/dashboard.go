package main

import (
	"fmt"
	"runtime"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/display"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/startup"
)

// maxTableRows bounds the rows handed to termui; it clips anything that
// does not fit anyway.
const maxTableRows = 200

// sortKeys maps keyboard shortcuts to process table columns.
var sortKeys = map[string]reconcile.Column{
	"n": reconcile.ColumnName,
	"p": reconcile.ColumnPID,
	"s": reconcile.ColumnStatus,
	"c": reconcile.ColumnCPU,
	"m": reconcile.ColumnMemory,
}

var cardColors = []ui.Color{ui.ColorCyan, ui.ColorGreen, ui.ColorRed, ui.ColorMagenta}

type dashboard struct {
	grid    *ui.Grid
	loading *widgets.Gauge

	sparks []*widgets.Sparkline
	groups []*widgets.SparklineGroup
	down   *widgets.Sparkline
	table  *widgets.Table
	status *widgets.Paragraph

	rows  *reconcile.Table
	cores int
}

func newDashboard() *dashboard {
	d := &dashboard{
		loading: widgets.NewGauge(),
		table:   widgets.NewTable(),
		status:  widgets.NewParagraph(),
		rows:    reconcile.NewTable(),
		cores:   runtime.NumCPU(),
	}

	d.loading.Title = " System Monitor "
	d.loading.BarColor = ui.ColorCyan
	d.loading.Label = "Starting..."

	for i, c := range display.Cards {
		sl := widgets.NewSparkline()
		sl.LineColor = cardColors[i%len(cardColors)]
		sl.Title = display.Placeholder
		grp := widgets.NewSparklineGroup(sl)
		grp.Title = " " + c.Title + " "
		grp.BorderStyle.Fg = sl.LineColor
		d.sparks = append(d.sparks, sl)
		d.groups = append(d.groups, grp)
	}
	// The network card also plots download under upload.
	d.down = widgets.NewSparkline()
	d.down.LineColor = ui.ColorGreen
	netGroup := d.groups[len(d.groups)-1]
	netGroup.Sparklines = append(netGroup.Sparklines, d.down)

	d.table.Title = " Processes [n]ame [p]id [s]tatus [c]pu [m]emory, [q]uit "
	d.table.TextStyle = ui.NewStyle(ui.ColorWhite)
	d.table.RowSeparator = false
	d.table.BorderStyle.Fg = ui.ColorYellow
	d.table.RowStyles[0] = ui.NewStyle(ui.ColorYellow, ui.ColorClear, ui.ModifierBold)
	d.table.Rows = tableRows(d.rows, maxTableRows)

	d.status.Border = false
	d.status.Text = "Waiting for first sample..."

	d.grid = ui.NewGrid()
	d.grid.Set(
		ui.NewRow(0.35,
			ui.NewCol(0.25, d.groups[0]),
			ui.NewCol(0.25, d.groups[1]),
			ui.NewCol(0.25, d.groups[2]),
			ui.NewCol(0.25, d.groups[3]),
		),
		ui.NewRow(0.6, ui.NewCol(1.0, d.table)),
		ui.NewRow(0.05, ui.NewCol(1.0, d.status)),
	)
	return d
}

func (d *dashboard) Resize(w, h int) {
	d.grid.SetRect(0, 0, w, h)
	d.loading.SetRect(w/4, h/2-2, w*3/4, h/2+1)
}

func (d *dashboard) ShowStartup(st startup.Status) {
	d.loading.Percent = st.Progress
	d.loading.Label = fmt.Sprintf("%d%% %s", st.Progress, st.Message)
}

func (d *dashboard) ShowFrame(f sampler.Frame) {
	for i, c := range display.Cards {
		p, _ := f.Point(c.Series)
		d.sparks[i].Data = p.History
		d.sparks[i].MaxVal = display.ChartCeiling(p.History)
		d.sparks[i].Title = display.Headline(c, f) + "  " + display.Detail(c, f, d.cores)
	}
	if p, ok := f.Point(history.NetDown); ok {
		d.down.Data = p.History
		d.down.MaxVal = display.ChartCeiling(p.History)
	}
	d.status.Text = "Updated " + f.Timestamp.Format("15:04:05")
}

func (d *dashboard) ShowProcesses(r reconcile.Result) {
	d.rows.Apply(r)
	d.rows.Resort()
	d.table.Rows = tableRows(d.rows, maxTableRows)
}

func (d *dashboard) ShowError(err error) {
	d.status.Text = fmt.Sprintf("[%v](fg:red)", err)
}

func (d *dashboard) SortBy(col reconcile.Column) {
	d.rows.SortBy(col)
	d.table.Rows = tableRows(d.rows, maxTableRows)
}

// tableRows renders a header row followed by at most limit process rows.
func tableRows(t *reconcile.Table, limit int) [][]string {
	active, reverse := t.Sorting()
	header := make([]string, len(display.Columns))
	for i, col := range display.Columns {
		header[i] = display.HeaderLabel(col, active, reverse)
	}

	n := min(t.Len(), limit)
	rows := make([][]string, 0, n+1)
	rows = append(rows, header)
	for i := 0; i < n; i++ {
		rows = append(rows, display.Cells(t.Row(i)))
	}
	return rows
}
