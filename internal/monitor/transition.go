package monitor

import (
	"errors"
	"sort"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
)

// Source produces a fresh snapshot on demand.
type Source interface {
	Sample() (metrics.Snapshot, error)
}

// Event is an input to Apply. Timers and the user interface both speak it.
type Event interface {
	event()
}

// Tick asks for a new sample while monitoring.
type Tick struct{}

// ToggleMonitoring flips monitoring on or off.
type ToggleMonitoring struct{}

// ToggleVisibility shows or hides one category.
type ToggleVisibility struct {
	Category Category
	Visible  bool
}

// IntervalChanged carries the logging interval text exactly as typed.
type IntervalChanged struct {
	Text string
}

// ToggleLogging turns persistence on or off.
type ToggleLogging struct {
	Enabled bool
}

// LogTick asks for the current snapshot to be persisted.
type LogTick struct{}

// RecordWritten reports a successful append.
type RecordWritten struct{}

// RecordFailed reports an append that was skipped; the next LogTick retries.
type RecordFailed struct {
	Err error
}

func (Tick) event()             {}
func (ToggleMonitoring) event() {}
func (ToggleVisibility) event() {}
func (IntervalChanged) event()  {}
func (ToggleLogging) event()    {}
func (LogTick) event()          {}
func (RecordWritten) event()    {}
func (RecordFailed) event()     {}

// EffectKind names a side effect requested by Apply.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectAppend asks the caller to persist Effect.Snapshot.
	EffectAppend
)

// Effect is the side effect the caller must run after a transition.
type Effect struct {
	Kind     EffectKind
	Snapshot metrics.Snapshot
}

// Apply is the only place State changes. It runs to completion and never
// performs I/O itself; a Tick reads from src, and a LogTick returns an
// EffectAppend for the caller to execute.
func Apply(s State, ev Event, src Source) (State, Effect) {
	switch ev := ev.(type) {
	case Tick:
		if !s.Monitoring || src == nil {
			return s, Effect{}
		}
		snap, err := src.Sample()
		if err != nil {
			s = s.withError(err, smerrors.ErrProvider)
			return s, Effect{}
		}
		if s.SortByMemory {
			SortByMemory(snap.Processes)
		}
		s.Snapshot = snap
		s.Samples++
		s = s.clearError(smerrors.ErrProvider)

	case ToggleMonitoring:
		s.Monitoring = !s.Monitoring

	case ToggleVisibility:
		if s.Visibility == nil {
			s.Visibility = AllVisible()
		} else {
			s.Visibility = s.Visibility.clone()
		}
		s.Visibility[ev.Category] = ev.Visible

	case IntervalChanged:
		s.IntervalText = ev.Text

	case ToggleLogging:
		s.LoggingEnabled = ev.Enabled

	case LogTick:
		if !s.LoggingEnabled {
			return s, Effect{}
		}
		return s, Effect{Kind: EffectAppend, Snapshot: s.Snapshot}

	case RecordWritten:
		s.RecordsWritten++
		s = s.clearError(smerrors.ErrRecord)

	case RecordFailed:
		s = s.withError(ev.Err, smerrors.ErrRecord)
	}

	return s, Effect{}
}

// SortByMemory orders processes by descending memory share. Ties keep the
// provider's order.
func SortByMemory(procs []metrics.ProcessInfo) {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].MemoryPercent > procs[j].MemoryPercent
	})
}

// withError records err for display. code is used when err carries none.
func (s State) withError(err error, code string) State {
	s.LastError = smerrors.Summary(err)
	s.LastErrorCode = code
	var smErr *smerrors.Error
	if errors.As(err, &smErr) && smErr.Code != "" {
		s.LastErrorCode = smErr.Code
	}
	return s
}

// clearError drops the displayed error if it was raised with code.
func (s State) clearError(code string) State {
	if s.LastErrorCode == code {
		s.LastError, s.LastErrorCode = "", ""
	}
	return s
}
