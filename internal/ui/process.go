package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/google/sysmonitor/internal/metrics"
)

type SortBy int

const (
	SortMem SortBy = iota
	SortCPU
	SortPID
)

func (s SortBy) String() string {
	switch s {
	case SortCPU:
		return "CPU"
	case SortPID:
		return "PID"
	default:
		return "MEM"
	}
}

type ProcessModel struct {
	table     table.Model
	width     int
	height    int
	procs     []metrics.ProcessInfo
	total     int
	sortBy    SortBy
	filter    string
	filtering bool
	textInput textinput.Model
}

func NewProcessModel(sortBy SortBy) ProcessModel {
	columns := []table.Column{
		{Title: "PID", Width: 7},
		{Title: "CPU%", Width: 6},
		{Title: "Mem%", Width: 6},
		{Title: "Mem", Width: 9},
		{Title: "Name", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color(ColorSteelGray)).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ColorMidnightBlack)).
		Background(lipgloss.Color(ColorIceBlue)).
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/"
	ti.CharLimit = 30
	ti.Width = 20

	return ProcessModel{
		table:     t,
		sortBy:    sortBy,
		textInput: ti,
	}
}

// Filtering reports whether the filter prompt owns the keyboard.
func (m ProcessModel) Filtering() bool { return m.filtering }

func (m ProcessModel) Update(msg tea.Msg) (ProcessModel, tea.Cmd) {
	var cmd tea.Cmd

	if m.filtering {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter = m.textInput.Value()
				m.textInput.Blur()
				m.table.Focus()
				return m, nil
			}
		}
		m.textInput, cmd = m.textInput.Update(msg)
		m.filter = m.textInput.Value() // Live filter
		m.refreshRows()
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "/":
			m.filtering = true
			m.table.Blur()
			return m, m.textInput.Focus()
		case "s":
			m.sortBy = (m.sortBy + 1) % 3
			m.refreshRows()
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// SetProcesses replaces the listed processes. total is the unfiltered
// process count of the snapshot.
func (m *ProcessModel) SetProcesses(procs []metrics.ProcessInfo, total int) {
	m.procs = procs
	m.total = total
	m.refreshRows()
}

func (m *ProcessModel) refreshRows() {
	var filtered []metrics.ProcessInfo
	if m.filter != "" {
		lowerFilter := strings.ToLower(m.filter)
		for _, p := range m.procs {
			if strings.Contains(strings.ToLower(p.Name), lowerFilter) ||
				strconv.Itoa(int(p.PID)) == lowerFilter {
				filtered = append(filtered, p)
			}
		}
	} else {
		filtered = make([]metrics.ProcessInfo, len(m.procs))
		copy(filtered, m.procs)
	}

	switch m.sortBy {
	case SortMem:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].MemoryPercent > filtered[j].MemoryPercent
		})
	case SortCPU:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CPUPercent > filtered[j].CPUPercent
		})
	case SortPID:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].PID < filtered[j].PID
		})
	}

	rows := make([]table.Row, len(filtered))
	for i, p := range filtered {
		rows[i] = table.Row{
			strconv.Itoa(int(p.PID)),
			fmt.Sprintf("%.1f", p.CPUPercent),
			fmt.Sprintf("%.2f", p.MemoryPercent),
			formatBytes(p.MemoryBytes),
			p.Name,
		}
	}
	m.table.SetRows(rows)
}

func (m *ProcessModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Border, title line and the two-line table header.
	tableHeight := h - 5
	if tableHeight < 1 {
		tableHeight = 1
	}
	m.table.SetHeight(tableHeight)

	cols := m.table.Columns()
	usedWidth := 7 + 6 + 6 + 9 + 12 // + padding
	remaining := w - usedWidth
	if remaining < 10 {
		remaining = 10
	}
	cols[4].Width = remaining
	m.table.SetColumns(cols)
}

func (m ProcessModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := panelStyle(m.width, m.height)

	title := fmt.Sprintf("Processes %d/%d", len(m.table.Rows()), m.total)
	if m.filtering {
		title = m.textInput.View()
	} else if m.filter != "" {
		title = fmt.Sprintf("Filter: %s (%d)", m.filter, len(m.table.Rows()))
	}

	sortStr := fmt.Sprintf("[%s]", m.sortBy)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(sortStr) - 4
	if gap < 1 {
		gap = 1
	}

	header := TitleStyle.Render(title) + strings.Repeat(" ", gap) + MetricLabelStyle.Render(sortStr)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.table.View(),
	))
}
