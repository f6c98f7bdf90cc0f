package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/startup"
)

// loadingScreen is the borderless splash shown while the startup sequence runs.
type loadingScreen struct {
	win     fyne.Window
	bar     *widget.ProgressBar
	percent *widget.Label
	message *widget.Label
}

func newLoadingScreen(app fyne.App) *loadingScreen {
	l := &loadingScreen{
		bar:     widget.NewProgressBar(),
		percent: widget.NewLabelWithStyle("0%", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		message: widget.NewLabelWithStyle("Starting...", fyne.TextAlignCenter, fyne.TextStyle{}),
	}
	l.bar.Max = 100
	l.bar.TextFormatter = func() string { return "" }

	title := widget.NewLabelWithStyle("System Monitor", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	content := container.NewPadded(container.NewVBox(title, l.bar, l.percent, l.message))

	if drv, ok := app.Driver().(desktop.Driver); ok {
		l.win = drv.CreateSplashWindow()
	} else {
		l.win = app.NewWindow("System Monitor")
	}
	l.win.SetContent(content)
	l.win.Resize(fyne.NewSize(400, 200))
	l.win.CenterOnScreen()
	return l
}

// Update shows st. Call on the UI thread.
func (l *loadingScreen) Update(st startup.Status) {
	l.bar.SetValue(float64(st.Progress))
	l.percent.SetText(fmt.Sprintf("%d%%", st.Progress))
	if st.Message != "" {
		l.message.SetText(st.Message)
	}
}
