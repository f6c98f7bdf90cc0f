package main

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sysinfo"
)

// newDetailsTab renders static system information, one card per section.
func newDetailsTab(sections []sysinfo.Section) fyne.CanvasObject {
	cards := make([]fyne.CanvasObject, 0, len(sections))
	for _, s := range sections {
		form := container.New(layout.NewFormLayout())
		for _, f := range s.Fields {
			key := widget.NewLabelWithStyle(f.Key+":", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})
			val := widget.NewLabel(f.Value)
			val.Wrapping = fyne.TextWrapWord
			form.Add(key)
			form.Add(val)
		}
		cards = append(cards, widget.NewCard(s.Title, "", form))
	}
	return container.NewVScroll(container.NewVBox(cards...))
}

// coreCount reads the "Total Cores" field, or 0.
func coreCount(sections []sysinfo.Section) int {
	for _, s := range sections {
		if v, ok := s.Get("Total Cores"); ok {
			n, _ := strconv.Atoi(v)
			return n
		}
	}
	return 0
}
