// Package sysinfo gathers the static facts shown on the System Details tab.
package sysinfo

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// Placeholders for facts that could not be read.
const (
	NotDetected  = "Not detected"
	NotConnected = "Not connected"
	Unavailable  = "Unavailable"
)

// sysfsRoot is overridden in tests.
var sysfsRoot = "/sys"

// Field is one key/value line. Value may span several lines.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a titled group of fields.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Get returns the value for key and whether it exists.
func (s Section) Get(key string) (string, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Collect reads operating system, hardware, boot, network and disk details.
// Individual failures become placeholder values; Collect never fails.
func Collect(ctx context.Context, diskPath string) []Section {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		info = &host.InfoStat{}
	}
	return []Section{
		osSection(info),
		hardwareSection(ctx),
		bootSection(info.BootTime, time.Now()),
		networkSection(ctx, info.Hostname),
		diskSection(ctx, diskPath),
	}
}

func osSection(info *host.InfoStat) Section {
	return Section{Title: "Operating System", Fields: []Field{
		{"System", orUnavailable(info.OS)},
		{"Node Name", orUnavailable(info.Hostname)},
		{"Release", orUnavailable(info.KernelVersion)},
		{"Version", orUnavailable(strings.TrimSpace(info.Platform + " " + info.PlatformVersion))},
		{"Machine", orUnavailable(info.KernelArch)},
	}}
}

func hardwareSection(ctx context.Context) Section {
	physical := Unavailable
	if n, err := cpu.CountsWithContext(ctx, false); err == nil && n > 0 {
		physical = fmt.Sprint(n)
	}
	logical := fmt.Sprint(runtime.NumCPU())
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		logical = fmt.Sprint(n)
	}

	model, freq := Unavailable, Unavailable
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		model = orUnavailable(infos[0].ModelName)
		var maxMHz float64
		for _, ci := range infos {
			maxMHz = max(maxMHz, ci.Mhz)
		}
		if maxMHz > 0 {
			freq = fmt.Sprintf("%.2f MHz", maxMHz)
		}
	}

	ram := Unavailable
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		ram = humanize.IBytes(vm.Total)
	}

	return Section{Title: "Hardware Information", Fields: []Field{
		{"Processor", model},
		{"Physical Cores", physical},
		{"Total Cores", logical},
		{"Max Frequency", freq},
		{"Total RAM", ram},
		{"GPU", detectGPU(sysfsRoot)},
	}}
}

func bootSection(bootTime uint64, now time.Time) Section {
	if bootTime == 0 {
		return Section{Title: "Boot Information", Fields: []Field{
			{"Boot Time", Unavailable},
			{"Up Time", Unavailable},
		}}
	}
	boot := time.Unix(int64(bootTime), 0)
	return Section{Title: "Boot Information", Fields: []Field{
		{"Boot Time", boot.Format("2006-01-02 15:04:05")},
		{"Up Time", formatUptime(now.Sub(boot))},
	}}
}

func networkSection(ctx context.Context, hostname string) Section {
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	addrs := NotConnected
	if ifaces, err := gopsnet.InterfacesWithContext(ctx); err == nil {
		if lines := ipv4Addresses(ifaces); len(lines) > 0 {
			addrs = strings.Join(lines, "\n")
		}
	}

	listen := NotDetected
	if conns, err := gopsnet.ConnectionsWithContext(ctx, "inet"); err == nil {
		if lines := listening(conns); len(lines) > 0 {
			listen = strings.Join(lines, "\n")
		}
	}

	return Section{Title: "Network Information", Fields: []Field{
		{"Hostname", orUnavailable(hostname)},
		{"IP Addresses", addrs},
		{"Listening", listen},
	}}
}

func diskSection(ctx context.Context, path string) Section {
	parts := NotDetected
	if ps, err := disk.PartitionsWithContext(ctx, false); err == nil && len(ps) > 0 {
		lines := make([]string, 0, len(ps))
		for _, p := range ps {
			lines = append(lines, fmt.Sprintf("%s (%s)", p.Device, p.Mountpoint))
		}
		parts = strings.Join(lines, "\n")
	}

	total, used, free := Unavailable, Unavailable, Unavailable
	if u, err := disk.UsageWithContext(ctx, path); err == nil {
		total = humanize.IBytes(u.Total)
		used = humanize.IBytes(u.Used)
		free = humanize.IBytes(u.Free)
	}

	return Section{Title: "Disk Information", Fields: []Field{
		{"Partitions", parts},
		{"Total Space", total},
		{"Used Space", used},
		{"Free Space", free},
	}}
}

// ipv4Addresses lists "iface: addr" for every IPv4 address, in interface order.
func ipv4Addresses(ifaces []gopsnet.InterfaceStat) []string {
	var out []string
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			ip, _, err := net.ParseCIDR(a.Addr)
			if err != nil {
				ip = net.ParseIP(a.Addr)
			}
			if ip == nil || ip.To4() == nil {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", iface.Name, ip))
		}
	}
	return out
}

// listening lists unique "ip:port" for sockets in LISTEN state, sorted.
func listening(conns []gopsnet.ConnectionStat) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range conns {
		if c.Status != "LISTEN" {
			continue
		}
		s := net.JoinHostPort(c.Laddr.IP, fmt.Sprint(c.Laddr.Port))
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// detectGPU reports the driver and PCI id of the first DRM card under root.
func detectGPU(root string) string {
	matches, err := filepath.Glob(filepath.Join(root, "class/drm/card[0-9]*/device/uevent"))
	if err != nil || len(matches) == 0 {
		return NotDetected
	}
	sort.Strings(matches)
	for _, path := range matches {
		// Skip connector entries such as card0-DP-1.
		card := filepath.Base(filepath.Dir(filepath.Dir(path)))
		if strings.Contains(card, "-") {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		props := parseUevent(string(data))
		driver := props["DRIVER"]
		if driver == "" {
			continue
		}
		if id := props["PCI_ID"]; id != "" {
			return fmt.Sprintf("%s (%s)", driver, id)
		}
		return driver
	}
	return NotDetected
}

func parseUevent(data string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			props[k] = v
		}
	}
	return props
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		return fmt.Sprintf("%d days, %s", days, clock(d))
	}
	return clock(d)
}

func clock(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}

func orUnavailable(s string) string {
	if s == "" {
		return Unavailable
	}
	return s
}
