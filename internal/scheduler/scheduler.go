// Package scheduler drives the display and logging timers.
//
// Each timer is a chain of one-shot tea.Tick commands. A chain is cancelled
// by bumping its generation: messages from an older generation are dropped
// and not re-armed, so at most one chain per timer is ever live and nothing
// wakes up while a timer is inactive.
package scheduler

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/logger"
	"github.com/google/sysmonitor/internal/monitor"
)

// MinDisplayPeriod is the fastest the display tick may run.
const MinDisplayPeriod = time.Second

// DisplayTickMsg is delivered when the display timer fires.
type DisplayTickMsg struct {
	Gen uint64
	At  time.Time
}

// LogTickMsg is delivered when the logging timer fires.
type LogTickMsg struct {
	Gen uint64
	At  time.Time
}

type source struct {
	gen    uint64
	active bool
	period time.Duration
}

// Scheduler tracks which timers should be running for a given state.
type Scheduler struct {
	display source
	logging source

	displayPeriod time.Duration
	log           hclog.Logger

	diagnosed  string // interval text already reported
	diagnostic string
}

// New creates a scheduler. Periods under MinDisplayPeriod are raised to it.
func New(displayPeriod time.Duration, log hclog.Logger) *Scheduler {
	if displayPeriod < MinDisplayPeriod {
		displayPeriod = MinDisplayPeriod
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		displayPeriod: displayPeriod,
		log:           log.Named("scheduler"),
	}
}

// Reconcile starts or stops timers to match st and returns the commands
// for any newly started chain.
func (s *Scheduler) Reconcile(st monitor.State) tea.Cmd {
	var cmds []tea.Cmd

	switch {
	case st.Monitoring && !s.display.active:
		s.display.gen++
		s.display.active = true
		s.display.period = s.displayPeriod
		s.log.Debug("display tick started", "period", s.displayPeriod)
		cmds = append(cmds, s.displayCmd())
	case !st.Monitoring && s.display.active:
		s.display.gen++
		s.display.active = false
		s.log.Debug("display tick stopped")
	}

	period, ok := s.loggingPeriod(st)
	switch {
	case ok && (!s.logging.active || s.logging.period != period):
		s.logging.gen++
		s.logging.active = true
		s.logging.period = period
		s.log.Info("logging tick started", "period", period)
		cmds = append(cmds, s.logCmd())
	case !ok && s.logging.active:
		s.logging.gen++
		s.logging.active = false
		s.logging.period = 0
		s.log.Info("logging tick stopped")
	}

	return tea.Batch(cmds...)
}

// loggingPeriod decides whether the logging timer should run. An unusable
// interval while logging is switched on is reported once per distinct text.
func (s *Scheduler) loggingPeriod(st monitor.State) (time.Duration, bool) {
	if !st.LoggingEnabled {
		s.diagnostic, s.diagnosed = "", ""
		return 0, false
	}
	period, err := st.LoggingInterval()
	if err != nil {
		s.diagnostic = smerrors.Summary(err)
		if s.diagnosed != st.IntervalText {
			s.diagnosed = st.IntervalText
			s.log.Warn("logging disabled: invalid interval", "text", st.IntervalText, "error", s.diagnostic)
		}
		return 0, false
	}
	s.diagnostic, s.diagnosed = "", ""
	return period, st.Monitoring
}

// Accept converts a live timer message into an event and re-arms its
// chain. Stale or foreign messages return ok == false.
func (s *Scheduler) Accept(msg tea.Msg) (monitor.Event, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case DisplayTickMsg:
		if !s.display.active || msg.Gen != s.display.gen {
			return nil, nil, false
		}
		return monitor.Tick{}, s.displayCmd(), true
	case LogTickMsg:
		if !s.logging.active || msg.Gen != s.logging.gen {
			return nil, nil, false
		}
		return monitor.LogTick{}, s.logCmd(), true
	}
	return nil, nil, false
}

// DisplayActive reports whether the display timer is running.
func (s *Scheduler) DisplayActive() bool { return s.display.active }

// DisplayPeriod is the display timer's period.
func (s *Scheduler) DisplayPeriod() time.Duration { return s.displayPeriod }

// LoggingActive reports whether the logging timer is running.
func (s *Scheduler) LoggingActive() bool { return s.logging.active }

// LoggingPeriod is the logging timer's period, or 0 when inactive.
func (s *Scheduler) LoggingPeriod() time.Duration { return s.logging.period }

// Diagnostic describes why logging is switched on but not running.
func (s *Scheduler) Diagnostic() string { return s.diagnostic }

// PendingDisplayTick is the message the live display chain delivers next.
func (s *Scheduler) PendingDisplayTick(at time.Time) DisplayTickMsg {
	return DisplayTickMsg{Gen: s.display.gen, At: at}
}

// PendingLogTick is the message the live logging chain delivers next.
func (s *Scheduler) PendingLogTick(at time.Time) LogTickMsg {
	return LogTickMsg{Gen: s.logging.gen, At: at}
}

func (s *Scheduler) displayCmd() tea.Cmd {
	gen := s.display.gen
	return tea.Tick(s.display.period, func(t time.Time) tea.Msg {
		return DisplayTickMsg{Gen: gen, At: t}
	})
}

func (s *Scheduler) logCmd() tea.Cmd {
	gen := s.logging.gen
	return tea.Tick(s.logging.period, func(t time.Time) tea.Msg {
		return LogTickMsg{Gen: gen, At: t}
	})
}
