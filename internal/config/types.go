package config

import (
	"time"

	"github.com/google/sysmonitor/internal/logger"
	"github.com/google/sysmonitor/internal/recorder"
)

// MinRefreshInterval is the fastest display refresh, in milliseconds.
const MinRefreshInterval = 1000

// ProfileConfiguration defines the user-configurable settings for sysmonitor.
type ProfileConfiguration struct {
	RefreshInterval  int          `json:"refresh_interval" mapstructure:"refresh_interval"` // In milliseconds
	LoggingInterval  string       `json:"logging_interval" mapstructure:"logging_interval"` // Whole seconds, as typed
	LoggingEnabled   bool         `json:"logging_enabled" mapstructure:"logging_enabled"`
	LogFile          string       `json:"log_file" mapstructure:"log_file"`
	MinMemoryPercent float64      `json:"min_memory_percent" mapstructure:"min_memory_percent"`
	MaxProcesses     int          `json:"max_processes" mapstructure:"max_processes"` // 0 means no cap
	SortByMemory     bool         `json:"sort_by_memory" mapstructure:"sort_by_memory"`
	SettleInterval   int          `json:"settle_interval" mapstructure:"settle_interval"` // In milliseconds
	ColumnWidths     ColumnWidths `json:"column_widths" mapstructure:"column_widths"`
	ShowTooltips     bool         `json:"show_tooltips" mapstructure:"show_tooltips"`
	EnabledModules   []string     `json:"enabled_modules" mapstructure:"enabled_modules"`
	GPUHistoryLength int          `json:"gpu_history_length" mapstructure:"gpu_history_length"`
	LogLevel         string       `json:"log_level" mapstructure:"log_level"`
	DebugLog         string       `json:"debug_log" mapstructure:"debug_log"`
}

// ColumnWidths are fractions of the terminal width.
type ColumnWidths struct {
	Left    float64 `json:"left" mapstructure:"left"`
	Process float64 `json:"process" mapstructure:"process"`
}

// DefaultConfig returns the hardcoded default configuration.
func DefaultConfig() *ProfileConfiguration {
	return &ProfileConfiguration{
		RefreshInterval:  1000,
		LogFile:          recorder.DefaultPath,
		MinMemoryPercent: 0.01,
		SortByMemory:     true,
		SettleInterval:   1000,
		ColumnWidths: ColumnWidths{
			Left:    0.55,
			Process: 0.45,
		},
		ShowTooltips:     true,
		EnabledModules:   []string{"host", "cpu", "memory", "disk", "net", "process", "gpu"},
		GPUHistoryLength: 60,
		LogLevel:         "info",
		DebugLog:         logger.DefaultFile,
	}
}

// Refresh is the display refresh period.
func (c *ProfileConfiguration) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// Settle is the sampler warm-up wait.
func (c *ProfileConfiguration) Settle() time.Duration {
	return time.Duration(c.SettleInterval) * time.Millisecond
}
