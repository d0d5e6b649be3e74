package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"github.com/google/sysmonitor/internal/config"
	"github.com/google/sysmonitor/internal/logger"
	"github.com/google/sysmonitor/internal/monitor"
	"github.com/google/sysmonitor/internal/recorder"
	"github.com/google/sysmonitor/internal/scheduler"
)

// Options wires the model to the rest of the monitor.
type Options struct {
	State     monitor.State
	Source    monitor.Source
	Scheduler *scheduler.Scheduler
	Recorder  *recorder.Recorder
	Config    *config.ProfileConfiguration
	Log       hclog.Logger
}

// RootModel owns the monitor state. Every change goes through
// monitor.Apply from inside Update, so the Bubble Tea loop is the only
// writer.
type RootModel struct {
	state  monitor.State
	source monitor.Source
	sched  *scheduler.Scheduler
	rec    *recorder.Recorder
	config *config.ProfileConfiguration
	log    hclog.Logger

	// Sub-models
	cpu     CPUModel
	system  SystemModel
	process ProcessModel
	gpu     GPUModel
	footer  FooterModel

	interval        textinput.Model
	editingInterval bool

	// Layout state
	width, height int
	col1Pct       float64 // Left column (CPU and system)
	col2Pct       float64 // Middle column (processes)
	// Right column (GPU) takes remaining

	// Tooltip state
	mouseX, mouseY int
}

func NewRootModel(opts Options) RootModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.New(cfg.LogFile)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.New(cfg.Refresh(), log)
	}

	sortBy := SortCPU
	if opts.State.SortByMemory {
		sortBy = SortMem
	}

	ti := textinput.New()
	ti.Prompt = "every "
	ti.Placeholder = "secs"
	ti.CharLimit = 10
	ti.Width = 6
	ti.SetValue(opts.State.IntervalText)

	m := RootModel{
		state:    opts.State,
		source:   opts.Source,
		sched:    sched,
		rec:      rec,
		config:   cfg,
		log:      log.Named("ui"),
		cpu:      NewCPUModel(),
		system:   NewSystemModel(),
		process:  NewProcessModel(sortBy),
		gpu:      NewGPUModel(),
		footer:   NewFooterModel(),
		interval: ti,
		col1Pct:  cfg.ColumnWidths.Left,
		col2Pct:  cfg.ColumnWidths.Process,
	}
	m.syncPanels()
	return m
}

// State returns the current monitor state.
func (m RootModel) State() monitor.State { return m.state }

func (m RootModel) Init() tea.Cmd {
	return m.sched.Reconcile(m.state)
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editingInterval {
			return m, m.updateInterval(msg)
		}
		if m.process.Filtering() {
			m.process, cmd = m.process.Update(msg)
			return m, cmd
		}

		switch key := msg.String(); key {
		case "q":
			return m, tea.Quit
		case "m":
			cmds = append(cmds, m.apply(monitor.ToggleMonitoring{}))
		case "l":
			cmds = append(cmds, m.apply(monitor.ToggleLogging{Enabled: !m.state.LoggingEnabled}))
		case "i":
			m.editingInterval = true
			cmds = append(cmds, m.interval.Focus())
		case "1", "2", "3", "4", "5", "6", "7":
			c := monitor.Categories[key[0]-'1']
			cmds = append(cmds, m.apply(monitor.ToggleVisibility{Category: c, Visible: !m.state.Visible(c)}))
		case "[": // Shrink Left Col
			m.col1Pct -= 0.05
			if m.col1Pct < 0.1 {
				m.col1Pct = 0.1
			}
			m.resizeModules()
		case "]": // Expand Left Col
			m.col1Pct += 0.05
			if m.col1Pct+m.col2Pct > 0.9 {
				m.col1Pct = 0.9 - m.col2Pct
			}
			m.resizeModules()
		case "{": // Shrink Middle Col (effectively expands Right)
			m.col2Pct -= 0.05
			if m.col2Pct < 0.1 {
				m.col2Pct = 0.1
			}
			m.resizeModules()
		case "}": // Expand Middle Col
			m.col2Pct += 0.05
			if m.col1Pct+m.col2Pct > 0.9 {
				m.col2Pct = 0.9 - m.col1Pct
			}
			m.resizeModules()
		default:
			// Scrolling, sorting and filtering belong to the process list.
			m.process, cmd = m.process.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncPanels()

	case scheduler.DisplayTickMsg, scheduler.LogTickMsg:
		ev, next, ok := m.sched.Accept(msg)
		if !ok {
			return m, nil
		}
		cmds = append(cmds, next, m.apply(ev))

	case tea.MouseMsg:
		m.mouseX = msg.X
		m.mouseY = msg.Y

		if m.config.ShowTooltips {
			m.footer.SetHelp(tooltipContent(m.determineMouseRegion()))
		} else {
			m.footer.SetHelp("")
		}

		m.process, cmd = m.process.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// apply runs one event through the transition, executes any effect and
// re-arms the timers for the new state.
func (m *RootModel) apply(ev monitor.Event) tea.Cmd {
	next, eff := monitor.Apply(m.state, ev, m.source)
	m.state = next

	if eff.Kind == monitor.EffectAppend {
		var result monitor.Event = monitor.RecordWritten{}
		if err := m.rec.Append(eff.Snapshot); err != nil {
			m.log.Warn("skipping log record", "path", m.rec.Path(), "error", err)
			result = monitor.RecordFailed{Err: err}
		}
		m.state, _ = monitor.Apply(m.state, result, m.source)
	}

	cmd := m.sched.Reconcile(m.state)
	m.syncPanels()
	return cmd
}

func (m *RootModel) updateInterval(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		m.editingInterval = false
		m.interval.Blur()
		m.syncPanels()
		return nil
	}

	var cmd tea.Cmd
	before := m.interval.Value()
	m.interval, cmd = m.interval.Update(msg)
	if text := m.interval.Value(); text != before {
		return tea.Batch(cmd, m.apply(monitor.IntervalChanged{Text: text}))
	}
	m.syncPanels()
	return cmd
}

// syncPanels pushes the state into the sub-models.
func (m *RootModel) syncPanels() {
	s := m.state.Snapshot
	m.cpu.SetSnapshot(s)
	m.system.SetSnapshot(s)
	m.process.SetProcesses(s.Processes, s.ProcessCount)
	m.gpu.SetStats(s.GPU)

	for _, c := range []monitor.Category{monitor.CategoryHost, monitor.CategoryMemory, monitor.CategoryDisk, monitor.CategoryNetwork} {
		m.system.SetVisible(c, m.state.Visible(c))
	}

	problem := m.sched.Diagnostic()
	if problem == "" {
		problem = m.state.LastError
	}
	intervalView := ""
	if m.editingInterval || m.state.LoggingEnabled {
		intervalView = m.interval.View()
	}
	m.footer.SetStatus(FooterStatus{
		Monitoring:    m.state.Monitoring,
		Logging:       m.state.LoggingEnabled,
		LoggingPeriod: m.sched.LoggingPeriod(),
		Records:       m.state.RecordsWritten,
		LogPath:       m.rec.Path(),
		IntervalView:  intervalView,
		Problem:       problem,
	})
	m.resizeModules()
}

// columns returns the widths of the left, middle and right columns.
// Hidden columns get zero and their share goes to the others.
func (m RootModel) columns() (w1, w2, w3 int) {
	leftShown := m.state.Visible(monitor.CategoryCPU) || !m.system.Empty()
	weights := [3]float64{m.col1Pct, m.col2Pct, 1 - m.col1Pct - m.col2Pct}
	shown := [3]bool{leftShown, m.state.Visible(monitor.CategoryProcesses), m.state.Visible(monitor.CategoryGPU)}

	total, last := 0.0, -1
	for i := range weights {
		if shown[i] {
			total += weights[i]
			last = i
		}
	}
	if last < 0 || total <= 0 {
		return 0, 0, 0
	}

	var w [3]int
	used := 0
	for i := range weights {
		if !shown[i] {
			continue
		}
		if i == last {
			w[i] = m.width - used
			break
		}
		w[i] = int(float64(m.width) * weights[i] / total)
		used += w[i]
	}
	return w[0], w[1], w[2]
}

func (m *RootModel) resizeModules() {
	if m.width == 0 || m.height == 0 {
		return
	}

	w1, w2, w3 := m.columns()

	// Height available for columns (minus footer)
	h := m.height - m.footer.Height()
	if h < 1 {
		h = 1
	}

	// The left column stacks CPU over the system sections.
	cpuH, sysH := h, h
	switch {
	case !m.state.Visible(monitor.CategoryCPU):
		cpuH = 0
	case m.system.Empty():
		sysH = 0
	default:
		cpuH = (len(m.state.Snapshot.PerCore)+1)/2 + 5
		if cpuH > h/2 {
			cpuH = h / 2
		}
		sysH = h - cpuH
	}

	m.cpu.SetSize(w1, cpuH)
	m.system.SetSize(w1, sysH)
	m.process.SetSize(w2, h)
	m.gpu.SetSize(w3, h)
	m.footer.SetSize(m.width)
}

func (m RootModel) determineMouseRegion() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	w1, w2, _ := m.columns()
	footerRow := m.height - m.footer.Height()

	switch {
	case m.mouseY >= footerRow:
		return "footer"
	case m.mouseX < w1:
		if m.mouseY < m.cpu.height {
			return "cpu"
		}
		return "system"
	case m.mouseX < w1+w2:
		return "process"
	case m.mouseX < m.width:
		return "gpu"
	}
	return ""
}

func tooltipContent(region string) string {
	switch region {
	case "cpu":
		return "CPU: global and per-core usage since the previous sample, with core counts."
	case "system":
		return "System: host identity, memory and swap, disk totals and network counters since boot."
	case "process":
		return "Processes: / filters by name or PID, s cycles the sort, arrows scroll."
	case "gpu":
		return "GPU: utilization, VRAM, temperature and power with a utilization history."
	case "footer":
		return "m starts/stops sampling, l toggles the JSON log, i edits the log interval in seconds. [ ] { } resize."
	default:
		return ""
	}
}

func (m RootModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.cpuView(), m.system.View())

	var cols []string
	for _, v := range []string{left, m.processView(), m.gpuView()} {
		if v != "" {
			cols = append(cols, v)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		m.footer.View(),
	)
}

func (m RootModel) cpuView() string {
	if !m.state.Visible(monitor.CategoryCPU) {
		return ""
	}
	return m.cpu.View()
}

func (m RootModel) processView() string {
	if !m.state.Visible(monitor.CategoryProcesses) {
		return ""
	}
	return m.process.View()
}

func (m RootModel) gpuView() string {
	if !m.state.Visible(monitor.CategoryGPU) {
		return ""
	}
	return m.gpu.View()
}
