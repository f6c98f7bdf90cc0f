package main

import (
	"image/color"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/display"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

var cardColors = []color.NRGBA{
	{R: 0, G: 120, B: 212, A: 255},   // cpu
	{R: 16, G: 124, B: 16, A: 255},   // memory
	{R: 216, G: 59, B: 1, A: 255},    // disk
	{R: 107, G: 105, B: 214, A: 255}, // network
}

type perfCard struct {
	card     display.Card
	headline *canvas.Text
	detail   *widget.Label
	chart    *lineChart
	box      fyne.CanvasObject
}

// performanceTab is a 2×2 grid of cards, each with a headline value,
// a detail line and a rolling chart.
type performanceTab struct {
	cards []*perfCard
	cores int
	box   fyne.CanvasObject
}

func newPerformanceTab(historyLength int) *performanceTab {
	t := &performanceTab{cores: runtime.NumCPU()}
	objs := make([]fyne.CanvasObject, 0, len(display.Cards))
	for i, card := range display.Cards {
		c := &perfCard{
			card:     card,
			headline: canvas.NewText(display.Placeholder+card.Unit, cardColors[i%len(cardColors)]),
			detail:   widget.NewLabel(""),
			chart:    newLineChart(cardColors[i%len(cardColors)], historyLength),
		}
		c.headline.TextSize = 18
		c.headline.TextStyle = fyne.TextStyle{Bold: true}
		c.box = widget.NewCard(card.Title, "", container.NewBorder(
			container.NewVBox(c.headline, c.detail), nil, nil, nil, c.chart))
		t.cards = append(t.cards, c)
		objs = append(objs, c.box)
	}
	t.box = container.NewGridWithColumns(2, objs...)
	return t
}

// SetCores sets the core count shown on the CPU card.
func (t *performanceTab) SetCores(n int) {
	if n > 0 {
		t.cores = n
	}
}

// Update renders a frame. Call on the UI thread.
func (t *performanceTab) Update(f sampler.Frame) {
	for _, c := range t.cards {
		c.headline.Text = display.Headline(c.card, f)
		c.headline.Refresh()
		c.detail.SetText(display.Detail(c.card, f, t.cores))
		if p, ok := f.Point(c.card.Series); ok {
			c.chart.SetValues(p.History)
		}
	}
}
