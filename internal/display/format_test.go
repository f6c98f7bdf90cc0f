package display

import (
	"reflect"
	"testing"

	"github.com/cptspacemanspiff/gnome-system-monitor/internal/collector"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/history"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/reconcile"
	"github.com/cptspacemanspiff/gnome-system-monitor/internal/sampler"
)

func testFrame() sampler.Frame {
	return sampler.Frame{
		Points: []sampler.Point{
			{Series: history.CPU, Value: 12.345, OK: true},
			{Series: history.Memory, Value: 25, OK: true},
			{Series: history.Disk, OK: false},
			{Series: history.NetUp, Value: 1.24, OK: true},
			{Series: history.NetDown, Value: 10, OK: true},
		},
		Memory: collector.MemoryStat{Total: 8 << 30, Used: 2 << 30, Percent: 25},
	}
}

func TestHeadline(t *testing.T) {
	f := testFrame()
	tests := []struct {
		card Card
		want string
	}{
		{Cards[0], "12.3%"},
		{Cards[2], "--%"},
		{Cards[3], "1.2 KB/s"},
	}
	for _, tt := range tests {
		if got := Headline(tt.card, f); got != tt.want {
			t.Errorf("Headline(%s) = %q, want %q", tt.card.Title, got, tt.want)
		}
	}
}

func TestDetail(t *testing.T) {
	f := testFrame()
	tests := []struct {
		card Card
		want string
	}{
		{Cards[0], "Cores: 8 | Usage: 12.3%"},
		{Cards[1], "Used: 2.0 GiB / 8.0 GiB | 25.0%"},
		{Cards[2], "Used: 0 B / 0 B | --"},
		{Cards[3], "↑ 1.2 KB/s | ↓ 10.0 KB/s"},
	}
	for _, tt := range tests {
		if got := Detail(tt.card, f, 8); got != tt.want {
			t.Errorf("Detail(%s) = %q, want %q", tt.card.Title, got, tt.want)
		}
	}
}

func TestChartCeiling(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 100},
		{[]float64{0, 0}, 100},
		{[]float64{10, 50, 20}, 60},
	}
	for _, tt := range tests {
		if got := ChartCeiling(tt.values); got != tt.want {
			t.Errorf("ChartCeiling(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestHeaderLabel(t *testing.T) {
	cpu := Columns[3]
	if got := HeaderLabel(cpu, reconcile.ColumnName, false); got != "CPU %" {
		t.Errorf("inactive HeaderLabel() = %q", got)
	}
	if got := HeaderLabel(cpu, reconcile.ColumnCPU, false); got != "CPU % ↑" {
		t.Errorf("ascending HeaderLabel() = %q", got)
	}
	if got := HeaderLabel(cpu, reconcile.ColumnCPU, true); got != "CPU % ↓" {
		t.Errorf("descending HeaderLabel() = %q", got)
	}
}

func TestCells(t *testing.T) {
	got := Cells(collector.ProcessRecord{PID: 42, Name: "vim", Status: "sleep", CPUPercent: 1.26, MemoryPercent: 0.5})
	want := []string{"vim", "42", "sleep", "1.3", "0.5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cells() = %v, want %v", got, want)
	}
	if len(got) != len(Columns) {
		t.Errorf("len(Cells()) = %d, want %d", len(got), len(Columns))
	}
}
