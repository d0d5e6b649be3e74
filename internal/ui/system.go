package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/google/sysmonitor/internal/metrics"
	"github.com/google/sysmonitor/internal/monitor"
)

// SystemModel renders the host, memory, disk and network sections.
// Hidden sections are skipped entirely.
type SystemModel struct {
	width  int
	height int
	snap   metrics.Snapshot
	prev   metrics.Snapshot
	show   map[monitor.Category]bool
}

func NewSystemModel() SystemModel {
	return SystemModel{show: map[monitor.Category]bool{}}
}

// SetSnapshot keeps the previous reading so network rates can be shown.
func (m *SystemModel) SetSnapshot(s metrics.Snapshot) {
	if s.Timestamp.Equal(m.snap.Timestamp) {
		m.snap = s
		return
	}
	m.prev = m.snap
	m.snap = s
}

func (m *SystemModel) SetVisible(c monitor.Category, visible bool) {
	m.show[c] = visible
}

// Empty reports whether every section is hidden.
func (m SystemModel) Empty() bool {
	for _, c := range []monitor.Category{monitor.CategoryHost, monitor.CategoryMemory, monitor.CategoryDisk, monitor.CategoryNetwork} {
		if m.show[c] {
			return false
		}
	}
	return true
}

func (m *SystemModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m SystemModel) View() string {
	if m.width == 0 || m.height == 0 || m.Empty() {
		return ""
	}

	style := panelStyle(m.width, m.height)
	barWidth := m.width - 4

	var sections []string
	if m.show[monitor.CategoryHost] {
		h := m.snap.Host
		sections = append(sections,
			TitleStyle.Render("Host: "+orUnknown(h.HostName)),
			MetricLabelStyle.Render(fmt.Sprintf("%s %s | kernel %s",
				orUnknown(h.SystemName), h.OSVersion, orUnknown(h.KernelVersion))),
		)
	}

	if m.show[monitor.CategoryMemory] {
		mem := m.snap.MemoryUsedPercent()
		swap := m.snap.SwapUsedPercent()
		sections = append(sections,
			TitleStyle.Render("Memory"),
			renderBar(int(mem), 100, barWidth, fmt.Sprintf("Mem %s/%s",
				formatBytes(m.snap.MemoryUsedBytes), formatBytes(m.snap.MemoryTotalBytes))),
			renderBar(int(swap), 100, barWidth, fmt.Sprintf("Swap %s/%s",
				formatBytes(m.snap.SwapUsedBytes), formatBytes(m.snap.SwapTotalBytes))),
		)
	}

	if m.show[monitor.CategoryDisk] {
		sections = append(sections,
			TitleStyle.Render("Disk"),
			renderBar(int(m.snap.DiskUsedPercent()), 100, barWidth, fmt.Sprintf("All %s/%s",
				formatBytes(m.snap.DiskUsedBytes), formatBytes(m.snap.DiskTotalBytes))),
			m.renderDisks(),
		)
	}

	if m.show[monitor.CategoryNetwork] {
		sections = append(sections,
			TitleStyle.Render("Network"),
			MetricValueStyle.Render(fmt.Sprintf("↑ %s  ↓ %s",
				formatBytes(m.snap.NetworkSentBytes), formatBytes(m.snap.NetworkReceivedBytes))),
		)
		if up, down, ok := m.rates(); ok {
			sections = append(sections, MetricLabelStyle.Render(fmt.Sprintf("↑ %s/s  ↓ %s/s",
				formatBytes(up), formatBytes(down))))
		}
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m SystemModel) renderDisks() string {
	if len(m.snap.Disks) == 0 {
		return MetricLabelStyle.Render("No disks")
	}
	var sb strings.Builder
	for i, d := range m.snap.Disks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(MetricLabelStyle.Render(fmt.Sprintf("%-12s %-6s %5.1f%% %s free",
			d.MountPoint, d.Kind, d.UsedPercent, formatBytes(d.FreeBytes))))
	}
	return sb.String()
}

// rates derives per-second network throughput from the last two readings.
func (m SystemModel) rates() (up, down uint64, ok bool) {
	if m.prev.Timestamp.IsZero() {
		return 0, 0, false
	}
	secs := m.snap.Timestamp.Sub(m.prev.Timestamp).Seconds()
	if secs <= 0 ||
		m.snap.NetworkSentBytes < m.prev.NetworkSentBytes ||
		m.snap.NetworkReceivedBytes < m.prev.NetworkReceivedBytes {
		return 0, 0, false
	}
	up = uint64(float64(m.snap.NetworkSentBytes-m.prev.NetworkSentBytes) / secs)
	down = uint64(float64(m.snap.NetworkReceivedBytes-m.prev.NetworkReceivedBytes) / secs)
	return up, down, true
}
