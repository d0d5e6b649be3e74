// Package monitor holds the in-memory model of the monitor and the single
// transition function that changes it.
//
// State is a plain value: Apply takes one State and returns the next one.
// Nothing here touches timers or files; side effects such as appending to
// the log are returned as an Effect for the caller to run.
package monitor

import (
	"math"
	"strconv"
	"strings"
	"time"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
)

// Category is a displayable group of metrics.
type Category int

const (
	CategoryHost Category = iota
	CategoryCPU
	CategoryMemory
	CategoryDisk
	CategoryNetwork
	CategoryProcesses
	CategoryGPU
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHost,
	CategoryCPU,
	CategoryMemory,
	CategoryDisk,
	CategoryNetwork,
	CategoryProcesses,
	CategoryGPU,
}

// String returns the category's config/module name.
func (c Category) String() string {
	switch c {
	case CategoryHost:
		return "host"
	case CategoryCPU:
		return "cpu"
	case CategoryMemory:
		return "memory"
	case CategoryDisk:
		return "disk"
	case CategoryNetwork:
		return "net"
	case CategoryProcesses:
		return "process"
	case CategoryGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// ParseCategory maps a module name back to its Category.
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// Visibility holds one display flag per category. It only filters what is
// rendered; the sampler always computes every category.
type Visibility map[Category]bool

// AllVisible returns visibility with every category shown.
func AllVisible() Visibility {
	v := make(Visibility, len(Categories))
	for _, c := range Categories {
		v[c] = true
	}
	return v
}

// VisibilityFromModules shows exactly the named modules. Unknown names are ignored.
func VisibilityFromModules(modules []string) Visibility {
	v := make(Visibility, len(Categories))
	for _, c := range Categories {
		v[c] = false
	}
	for _, m := range modules {
		if c, ok := ParseCategory(m); ok {
			v[c] = true
		}
	}
	return v
}

func (v Visibility) clone() Visibility {
	out := make(Visibility, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// State is the aggregate model of the monitor.
type State struct {
	Snapshot       metrics.Snapshot
	Visibility     Visibility
	Monitoring     bool
	LoggingEnabled bool
	IntervalText   string // Raw user input; parsed by LoggingInterval
	SortByMemory   bool

	Samples        uint64 // Successful samples taken by ticks
	RecordsWritten uint64
	LastError      string
	LastErrorCode  string
}

// New creates the initial state around the first snapshot. Monitoring starts off.
func New(initial metrics.Snapshot, visibility Visibility) State {
	if visibility == nil {
		visibility = AllVisible()
	}
	return State{
		Snapshot:   initial,
		Visibility: visibility.clone(),
	}
}

// Visible reports whether a category should be rendered. Categories
// missing from the map are shown.
func (s State) Visible(c Category) bool {
	v, ok := s.Visibility[c]
	return !ok || v
}

// LoggingInterval parses IntervalText as a whole number of seconds.
// Empty, non-numeric, zero and negative values are rejected.
func (s State) LoggingInterval() (time.Duration, error) {
	return ParseInterval(s.IntervalText)
}

// LoggingActive reports whether the logging tick should be running.
func (s State) LoggingActive() bool {
	if !s.Monitoring || !s.LoggingEnabled {
		return false
	}
	_, err := s.LoggingInterval()
	return err == nil
}

// ParseInterval parses a positive integer number of seconds. Only digits
// are accepted, with surrounding whitespace ignored, so signs and decimals
// are rejected.
func ParseInterval(text string) (time.Duration, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, smerrors.New(smerrors.ErrInterval,
			"Logging interval is empty",
			"Enter a whole number of seconds, for example 5")
	}
	if strings.Trim(trimmed, "0123456789") != "" {
		return 0, smerrors.New(smerrors.ErrInterval,
			"Logging interval "+strconv.Quote(text)+" is not a whole number",
			"Enter a whole number of seconds, for example 5")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, smerrors.WrapWithCode(err, smerrors.ErrInterval,
			"Logging interval "+strconv.Quote(text)+" is not a number",
			"Enter a whole number of seconds, for example 5")
	}
	if n <= 0 {
		return 0, smerrors.New(smerrors.ErrInterval,
			"Logging interval must be positive, got "+trimmed,
			"Enter a whole number of seconds, for example 5")
	}
	if int64(n) > math.MaxInt64/int64(time.Second) {
		return 0, smerrors.New(smerrors.ErrInterval,
			"Logging interval "+trimmed+" is too large",
			"Enter a whole number of seconds, for example 5")
	}
	return time.Duration(n) * time.Second, nil
}
