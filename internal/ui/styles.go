package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors, a cold dark palette
const (
	ColorMidnightBlack = "#0A001F" // Background
	ColorIceBlue       = "#81A1C1" // Primary UI/Text
	ColorSteelGray     = "#4C566A" // Panels/Borders
	ColorPaleBlue      = "#8FBCBB" // Graphs/Normal Metrics
	ColorBloodCrimson  = "#C41E3A" // Alerts/Errors
	ColorFrostGreen    = "#A3BE8C" // Running indicators
)

var (
	// Panel styles
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorSteelGray)).
			Padding(0, 1)

	AlertPanelStyle = PanelStyle.
			BorderForeground(lipgloss.Color(ColorBloodCrimson))

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorIceBlue)).
			Bold(true)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSteelGray))

	MetricValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorPaleBlue))

	// Status styles
	AlertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBloodCrimson)).
			Bold(true)

	RunningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorFrostGreen)).
			Bold(true)

	// Bar styles
	BarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPaleBlue))

	AlertBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBloodCrimson))

	FooterStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(ColorSteelGray)).
			Foreground(lipgloss.Color(ColorMidnightBlack)).
			Padding(0, 1)
)

// panelStyle sizes PanelStyle so the bordered box is exactly w x h.
func panelStyle(w, h int) lipgloss.Style {
	return sized(PanelStyle, w, h)
}

func sized(base lipgloss.Style, w, h int) lipgloss.Style {
	return base.Width(max(w-2, 0)).Height(max(h-2, 0))
}
