package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/google/sysmonitor/internal/metrics"
)

// hotGPUCelsius turns the panel border red.
const hotGPUCelsius = 85

type GPUModel struct {
	width  int
	height int
	stats  metrics.GPUInfo
}

func NewGPUModel() GPUModel {
	return GPUModel{}
}

func (m *GPUModel) SetStats(stats metrics.GPUInfo) {
	m.stats = stats
}

func (m *GPUModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m GPUModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := panelStyle(m.width, m.height)

	if !m.stats.Available {
		content := lipgloss.Place(m.width-4, m.height-2, lipgloss.Center, lipgloss.Center,
			"GPU Unavailable\n(Run with --mock to see demo)")
		return style.Render(content)
	}

	if m.stats.Temperature >= hotGPUCelsius {
		style = sized(AlertPanelStyle, m.width, m.height)
	}

	header := TitleStyle.Render(fmt.Sprintf("GPU: %s", m.stats.Name))

	barWidth := m.width - 4
	if barWidth < 10 {
		barWidth = 10
	}

	utilBar := renderBar(int(m.stats.Utilization), 100, barWidth, fmt.Sprintf("Util %d%%", m.stats.Utilization))

	memPercent := int(metrics.Percent(m.stats.MemoryUsed, m.stats.MemoryTotal))
	memBar := renderBar(memPercent, 100, barWidth, fmt.Sprintf("VRAM %d/%d MB",
		m.stats.MemoryUsed/1024/1024, m.stats.MemoryTotal/1024/1024))

	tempBar := renderBar(int(m.stats.Temperature), 100, barWidth, fmt.Sprintf("Temp %d°C", m.stats.Temperature))
	powerLabel := MetricLabelStyle.Render(fmt.Sprintf("Power %dW", m.stats.PowerUsage/1000)) // mW -> W

	graphHeight := m.height - 8 // Header + bars + title + border
	if graphHeight < 3 {
		graphHeight = 3
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		utilBar,
		memBar,
		tempBar,
		powerLabel,
		m.renderGraph(graphHeight),
	))
}

func (m GPUModel) renderGraph(height int) string {
	if len(m.stats.HistoricalUtil) == 0 {
		return "Waiting for data..."
	}

	maxPoints := m.width - 4
	if maxPoints < 1 {
		maxPoints = 1
	}

	window := m.stats.HistoricalUtil
	if len(window) > maxPoints {
		window = window[len(window)-maxPoints:]
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", len(window)))
	}

	for x, val := range window {
		h := int((val / 100.0) * float64(height))
		if h > height {
			h = height
		}
		for y := 0; y < h; y++ {
			grid[height-1-y][x] = '█'
		}
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Utilization History"))
	for _, row := range grid {
		sb.WriteString("\n" + BarStyle.Render(string(row)))
	}
	return sb.String()
}
