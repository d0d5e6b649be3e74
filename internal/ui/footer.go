package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FooterStatus is what the status line reports about the monitor.
type FooterStatus struct {
	Monitoring    bool
	Logging       bool          // Switched on by the user
	LoggingPeriod time.Duration // 0 when the logging tick is not running
	Records       uint64
	LogPath       string
	IntervalView  string // Rendered interval input
	Problem       string // Diagnostic or last error
}

type FooterModel struct {
	width  int
	help   string
	status FooterStatus
	now    func() time.Time
}

func NewFooterModel() FooterModel {
	return FooterModel{now: time.Now}
}

func (m *FooterModel) SetSize(w int) {
	m.width = w
}

// SetHelp replaces the status line with a tooltip. Empty restores it.
func (m *FooterModel) SetHelp(h string) {
	m.help = h
}

func (m *FooterModel) SetStatus(s FooterStatus) {
	m.status = s
}

// Height is the number of lines View renders.
func (m FooterModel) Height() int {
	if m.help == "" && m.status.Problem != "" {
		return 2
	}
	return 1
}

func (m FooterModel) View() string {
	if m.width == 0 {
		return ""
	}

	style := FooterStyle.Width(m.width)

	if m.help != "" {
		return style.Render(fmt.Sprintf("INFO: %s", m.help))
	}

	left := fmt.Sprintf("sysmonitor | %s | %s | %s", m.now().Format("15:04:05"), m.monitoringLabel(), m.loggingLabel())

	right := "q: Quit | m: Monitor | l: Log | i: Interval | 1-7: Panels | /: Filter | s: Sort"

	spacerWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	line := style.Render(left + strings.Repeat(" ", spacerWidth) + right)

	if m.status.Problem == "" {
		return line
	}
	problem := AlertStyle.Width(m.width).Render("! " + m.status.Problem)
	return lipgloss.JoinVertical(lipgloss.Left, line, problem)
}

func (m FooterModel) monitoringLabel() string {
	if m.status.Monitoring {
		return RunningStyle.Render("● MONITORING")
	}
	return "○ PAUSED"
}

func (m FooterModel) loggingLabel() string {
	s := m.status
	label := "Log off"
	switch {
	case s.Logging && s.LoggingPeriod > 0:
		label = fmt.Sprintf("Log every %s → %s (%d)", s.LoggingPeriod, s.LogPath, s.Records)
	case s.Logging:
		label = "Log idle"
	}
	if s.IntervalView != "" {
		label += " " + s.IntervalView
	}
	return label
}
