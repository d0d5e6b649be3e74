package ui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/sysmonitor/internal/config"
	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
	metricstesting "github.com/google/sysmonitor/internal/metrics/testing"
	"github.com/google/sysmonitor/internal/monitor"
	"github.com/google/sysmonitor/internal/recorder"
	"github.com/google/sysmonitor/internal/sampler"
	"github.com/google/sysmonitor/internal/scheduler"
)

type harness struct {
	model   RootModel
	sched   *scheduler.Scheduler
	logPath string
}

func newHarness(t *testing.T, logPath string, frames ...metricstesting.Frame) *harness {
	t.Helper()
	if logPath == "" {
		logPath = filepath.Join(t.TempDir(), recorder.DefaultPath)
	}
	src := sampler.New(metricstesting.NewFakeProvider(frames...), sampler.DefaultOptions(), nil)
	sched := scheduler.New(time.Second, nil)

	st := monitor.New(metrics.Snapshot{}, nil)
	st.SortByMemory = true

	h := &harness{sched: sched, logPath: logPath}
	h.model = NewRootModel(Options{
		State:     st,
		Source:    src,
		Scheduler: sched,
		Recorder:  recorder.New(logPath),
	})
	h.model.Init()
	h.send(tea.WindowSizeMsg{Width: 160, Height: 48})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(RootModel)
	return cmd
}

func (h *harness) keys(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) enter() { h.send(tea.KeyMsg{Type: tea.KeyEnter}) }

func (h *harness) displayTick() { h.send(h.sched.PendingDisplayTick(time.Now())) }

func (h *harness) logTick() { h.send(h.sched.PendingLogTick(time.Now())) }

func TestRoot_StartsIdle(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(3, 10))

	assert.False(t, h.model.State().Monitoring)
	assert.False(t, h.sched.DisplayActive())

	// Nothing is sampled while stopped.
	h.displayTick()
	assert.Zero(t, h.model.State().Samples)
}

func TestRoot_MonitoringToggle(t *testing.T) {
	h := newHarness(t, "",
		metricstesting.ProcessFrame(3, 10),
		metricstesting.ProcessFrame(5, 20),
	)

	h.keys("m")
	require.True(t, h.model.State().Monitoring)
	require.True(t, h.sched.DisplayActive())

	h.displayTick()
	assert.Equal(t, uint64(1), h.model.State().Samples)
	assert.Equal(t, 3, h.model.State().Snapshot.ProcessCount)

	h.displayTick()
	assert.Equal(t, 5, h.model.State().Snapshot.ProcessCount)

	stale := h.sched.PendingDisplayTick(time.Now())
	h.keys("m")
	assert.False(t, h.sched.DisplayActive())
	h.send(stale)
	assert.Equal(t, uint64(2), h.model.State().Samples, "tick after stop is ignored")
}

func TestRoot_LoggingWritesRecords(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(4, 10))

	h.keys("m")
	h.keys("l")
	h.keys("i")
	h.keys("2")
	h.enter()

	st := h.model.State()
	require.True(t, st.LoggingEnabled)
	require.Equal(t, "2", st.IntervalText)
	require.Equal(t, 2*time.Second, h.sched.LoggingPeriod())

	h.displayTick()
	h.logTick()
	h.logTick()

	records, _, err := recorder.ReadRecords(h.logPath)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, uint64(2), h.model.State().RecordsWritten)
}

func TestRoot_InvalidIntervalStopsLogging(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(2, 10))

	h.keys("m")
	h.keys("l")
	h.keys("i")
	h.keys("5")
	require.True(t, h.sched.LoggingActive())

	stale := h.sched.PendingLogTick(time.Now())
	h.keys("x")
	h.enter()

	assert.Equal(t, "5x", h.model.State().IntervalText)
	assert.False(t, h.sched.LoggingActive())
	assert.NotEmpty(t, h.sched.Diagnostic())

	h.send(stale)
	_, _, err := recorder.ReadRecords(h.logPath)
	assert.Error(t, err, "no log file was created")
}

func TestRoot_StartsWithUnusableConfiguredInterval(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), recorder.DefaultPath)
	sched := scheduler.New(time.Second, nil)

	cfg := config.DefaultConfig()
	cfg.LoggingEnabled = true
	cfg.LoggingInterval = "abc"
	require.NoError(t, config.Validate(cfg))

	st := monitor.New(metrics.Snapshot{}, nil)
	st.LoggingEnabled = cfg.LoggingEnabled
	st.IntervalText = cfg.LoggingInterval

	model := NewRootModel(Options{
		State:     st,
		Scheduler: sched,
		Recorder:  recorder.New(logPath),
		Config:    cfg,
	})
	model.Init()
	next, _ := model.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	model = next.(RootModel)

	assert.Equal(t, "abc", model.State().IntervalText)
	assert.False(t, sched.LoggingActive())
	assert.NotEmpty(t, sched.Diagnostic())
	assert.Contains(t, model.View(), "abc")
}

func TestRoot_RecordFailureIsShown(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "log.json")
	h := newHarness(t, missing, metricstesting.ProcessFrame(2, 10))

	h.keys("m")
	h.keys("l")
	h.keys("i")
	h.keys("1")
	h.enter()
	h.logTick()

	st := h.model.State()
	assert.Equal(t, smerrors.ErrRecord, st.LastErrorCode)
	assert.NotEmpty(t, st.LastError)
	assert.True(t, st.Monitoring, "a failed write does not stop monitoring")
}

func TestRoot_VisibilityKeys(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(2, 10))

	h.keys("7")
	assert.False(t, h.model.State().Visible(monitor.CategoryGPU))

	w1, w2, w3 := h.model.columns()
	assert.Zero(t, w3)
	assert.Equal(t, 160, w1+w2)

	h.keys("6")
	w1, w2, _ = h.model.columns()
	assert.Zero(t, w2)
	assert.Equal(t, 160, w1)

	h.keys("7")
	assert.True(t, h.model.State().Visible(monitor.CategoryGPU))
}

func TestRoot_FilterOwnsKeyboard(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(2, 10))

	h.keys("/")
	h.keys("m")
	assert.False(t, h.model.State().Monitoring, "typed into the filter")
	h.enter()

	h.keys("m")
	assert.True(t, h.model.State().Monitoring)
}

func TestRoot_ViewRenders(t *testing.T) {
	h := newHarness(t, "", metricstesting.ProcessFrame(3, 10))
	h.keys("m")
	h.displayTick()

	view := h.model.View()
	assert.Contains(t, view, "CPU")
	assert.Contains(t, view, "Processes")
	assert.Contains(t, view, "MONITORING")
}

func TestRoot_ViewBeforeSize(t *testing.T) {
	m := NewRootModel(Options{State: monitor.New(metrics.Snapshot{}, nil)})
	assert.Equal(t, "Initializing...", m.View())
}

func TestProcessModel_FilterAndSort(t *testing.T) {
	m := NewProcessModel(SortMem)
	m.SetSize(80, 20)
	m.SetProcesses([]metrics.ProcessInfo{
		{PID: 10, Name: "postgres", CPUPercent: 1, MemoryPercent: 9},
		{PID: 20, Name: "nginx", CPUPercent: 7, MemoryPercent: 2},
		{PID: 30, Name: "postgres-wal", CPUPercent: 3, MemoryPercent: 4},
	}, 3)

	assert.Equal(t, "10", m.table.Rows()[0][0])

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.Equal(t, SortCPU, m.sortBy)
	assert.Equal(t, "20", m.table.Rows()[0][0])

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.Filtering())
	for _, r := range "post" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Filtering())
	assert.Len(t, m.table.Rows(), 2)

	m.SetProcesses(nil, 0)
	assert.Empty(t, m.table.Rows())
}
