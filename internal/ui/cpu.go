package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/google/sysmonitor/internal/metrics"
)

type CPUModel struct {
	width  int
	height int
	snap   metrics.Snapshot
}

func NewCPUModel() CPUModel {
	return CPUModel{}
}

func (m *CPUModel) SetSnapshot(s metrics.Snapshot) {
	m.snap = s
}

func (m *CPUModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m CPUModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := panelStyle(m.width, m.height)

	header := TitleStyle.Render(fmt.Sprintf("CPU: %.1f%%", m.snap.CPUUsagePercent))

	physical := "?"
	if m.snap.PhysicalCores > 0 {
		physical = fmt.Sprintf("%d", m.snap.PhysicalCores)
	}
	counts := MetricLabelStyle.Render(fmt.Sprintf("Cores: %s physical / %d logical | Processes: %d",
		physical, m.snap.LogicalProcessors, m.snap.ProcessCount))

	total := renderBar(int(m.snap.CPUUsagePercent), 100, m.width-4, "Total")
	cores := renderCores(m.snap.PerCore, m.width-4)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		counts,
		total,
		cores,
	))
}

func renderCores(cores []metrics.CoreUsage, width int) string {
	if len(cores) == 0 {
		return "No CPU Data"
	}

	colWidth := (width / 2) - 2
	if colWidth < 10 {
		colWidth = width // single column
	}

	label := func(c metrics.CoreUsage) string {
		if c.FrequencyMHz > 0 {
			return fmt.Sprintf("%s %.0fMHz", c.Label, c.FrequencyMHz)
		}
		return c.Label
	}

	var sb strings.Builder
	for i := 0; i < len(cores); i += 2 {
		bar1 := renderBarCompact(int(cores[i].Percent), 100, colWidth, label(cores[i]))

		if i+1 < len(cores) && colWidth != width {
			bar2 := renderBarCompact(int(cores[i+1].Percent), 100, colWidth, label(cores[i+1]))

			padding := width - lipgloss.Width(bar1) - lipgloss.Width(bar2)
			if padding < 0 {
				padding = 0
			}
			sb.WriteString(bar1 + strings.Repeat(" ", padding) + bar2 + "\n")
		} else {
			sb.WriteString(bar1 + "\n")
			if i+1 < len(cores) {
				sb.WriteString(renderBarCompact(int(cores[i+1].Percent), 100, colWidth, label(cores[i+1])) + "\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
