package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/display"
)

var (
	colGraphBg = color.NRGBA{R: 30, G: 30, B: 30, A: 230}
	colGrid    = color.NRGBA{R: 255, G: 255, B: 255, A: 20}
)

const chartMinHeight = 90

// lineChart draws a rolling series left to right, newest at the right edge.
// The x axis always spans the history capacity so a short series starts
// part way across.
type lineChart struct {
	widget.BaseWidget

	line     color.Color
	capacity int
	values   []float64
}

func newLineChart(line color.Color, capacity int) *lineChart {
	c := &lineChart{line: line, capacity: capacity}
	c.ExtendBaseWidget(c)
	return c
}

// SetValues replaces the plotted series. Call on the UI thread.
func (c *lineChart) SetValues(values []float64) {
	if c.capacity > 0 && len(values) > c.capacity {
		values = values[len(values)-c.capacity:]
	}
	c.values = values
	c.Refresh()
}

func (c *lineChart) CreateRenderer() fyne.WidgetRenderer {
	r := &lineChartRenderer{
		chart: c,
		bg:    canvas.NewRectangle(colGraphBg),
	}
	for i := range r.grid {
		r.grid[i] = canvas.NewLine(colGrid)
	}
	r.rebuild()
	return r
}

type lineChartRenderer struct {
	chart    *lineChart
	bg       *canvas.Rectangle
	grid     [3]*canvas.Line
	segments []*canvas.Line
	objects  []fyne.CanvasObject
}

func (r *lineChartRenderer) rebuild() {
	n := max(len(r.chart.values)-1, 0)
	for len(r.segments) < n {
		seg := canvas.NewLine(r.chart.line)
		seg.StrokeWidth = 1.5
		r.segments = append(r.segments, seg)
	}
	r.segments = r.segments[:n]

	r.objects = r.objects[:0]
	r.objects = append(r.objects, r.bg)
	for _, g := range r.grid {
		r.objects = append(r.objects, g)
	}
	for _, seg := range r.segments {
		r.objects = append(r.objects, seg)
	}
}

func (r *lineChartRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	for i, g := range r.grid {
		y := size.Height * float32(i+1) / float32(len(r.grid)+1)
		g.Position1 = fyne.NewPos(0, y)
		g.Position2 = fyne.NewPos(size.Width, y)
	}

	ceiling := float32(display.ChartCeiling(r.chart.values))
	pts := chartPoints(r.chart.values, r.chart.capacity, ceiling, size.Width, size.Height)
	for i, seg := range r.segments {
		seg.Position1 = pts[i]
		seg.Position2 = pts[i+1]
	}
}

func (r *lineChartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(160, chartMinHeight)
}

func (r *lineChartRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.chart.Size())
	for _, o := range r.objects {
		o.Refresh()
	}
}

func (r *lineChartRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *lineChartRenderer) Destroy() {}

// chartPoints maps values onto a w×h box. Slot i of capacity sits at
// x = i*w/(capacity-1); values are right-aligned so the newest is at x = w.
func chartPoints(values []float64, capacity int, ceiling, w, h float32) []fyne.Position {
	if capacity < 2 {
		capacity = 2
	}
	if ceiling <= 0 {
		ceiling = 100
	}
	if len(values) > capacity {
		values = values[len(values)-capacity:]
	}
	offset := capacity - len(values)
	step := w / float32(capacity-1)
	pts := make([]fyne.Position, len(values))
	for i, v := range values {
		y := h - float32(v)/ceiling*h
		y = min(max(y, 0), h)
		pts[i] = fyne.NewPos(float32(offset+i)*step, y)
	}
	return pts
}
