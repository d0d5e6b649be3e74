// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/monitor"
)

const (
	// ConfigName is the config file name without extension.
	ConfigName = "sysmonitor"
	// EnvPrefix prefixes every environment override, e.g. SYSMONITOR_LOG_FILE.
	EnvPrefix = "SYSMONITOR"
)

// configExts are tried in order for each search directory.
var configExts = []string{".json", ".yaml", ".yml"}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. sysmonitor.{json,yaml,yml} in the current directory
// 3. The same names next to the executable
//
// Returns an empty string if nothing was found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", smerrors.WrapWithCode(err, smerrors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", smerrors.WrapWithCode(err, smerrors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	dirs := []string{"."}
	if exePath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exePath))
	}
	for _, dir := range dirs {
		for _, ext := range configExts {
			path := filepath.Join(dir, ConfigName+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", nil
}

// LoadEnvFile seeds the environment from a .env file. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Failed to read "+path,
			"Check the file uses KEY=value lines")
	}
	return nil
}

// LoadConfig loads and validates configuration from path. An empty path
// yields the defaults with environment overrides applied.
func LoadConfig(path string) (*ProfileConfiguration, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, smerrors.WrapWithCode(err, smerrors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file is valid JSON or YAML")
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Invalid config format",
			"Check the value types in "+displayPath(path))
	}

	if err := Validate(cfg); err != nil {
		return nil, smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Invalid configuration in "+displayPath(path),
			"Fix the value or remove it to use the default")
	}
	return cfg, nil
}

// LoadDefaultConfig finds and loads the config, falling back to defaults
// when no file exists. It returns the path it used, if any.
func LoadDefaultConfig(explicit string, log hclog.Logger) (*ProfileConfiguration, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	if log != nil {
		if path == "" {
			log.Debug("no config file found, using defaults")
		} else {
			log.Debug("loaded config", "path", path)
		}
		if cfg.LoggingInterval != "" {
			if _, err := monitor.ParseInterval(cfg.LoggingInterval); err != nil {
				log.Warn("logging interval is not usable, logging stays off until it is fixed",
					"logging_interval", cfg.LoggingInterval, "error", smerrors.Summary(err))
			}
		}
	}
	return cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for env overrides to reach Unmarshal.
	def := DefaultConfig()
	v.SetDefault("refresh_interval", def.RefreshInterval)
	v.SetDefault("logging_interval", def.LoggingInterval)
	v.SetDefault("logging_enabled", def.LoggingEnabled)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("min_memory_percent", def.MinMemoryPercent)
	v.SetDefault("max_processes", def.MaxProcesses)
	v.SetDefault("sort_by_memory", def.SortByMemory)
	v.SetDefault("settle_interval", def.SettleInterval)
	v.SetDefault("column_widths.left", def.ColumnWidths.Left)
	v.SetDefault("column_widths.process", def.ColumnWidths.Process)
	v.SetDefault("show_tooltips", def.ShowTooltips)
	v.SetDefault("enabled_modules", def.EnabledModules)
	v.SetDefault("gpu_history_length", def.GPUHistoryLength)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("debug_log", def.DebugLog)
	return v
}

// Validate normalizes cfg in place and rejects values that cannot be
// repaired.
func Validate(cfg *ProfileConfiguration) error {
	if cfg.RefreshInterval < MinRefreshInterval {
		cfg.RefreshInterval = MinRefreshInterval
	}
	if cfg.SettleInterval < 0 {
		return fmt.Errorf("settle_interval can't be negative")
	}
	if cfg.MaxProcesses < 0 {
		return fmt.Errorf("max_processes can't be negative - use 0 for no limit")
	}
	if cfg.MinMemoryPercent < 0 || cfg.MinMemoryPercent > 100 {
		return fmt.Errorf("min_memory_percent %v must be between 0 and 100", cfg.MinMemoryPercent)
	}
	if cfg.GPUHistoryLength <= 0 {
		cfg.GPUHistoryLength = DefaultConfig().GPUHistoryLength
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultConfig().LogFile
	}

	if err := validateWidths(cfg.ColumnWidths); err != nil {
		return err
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("log_level '%s' isn't valid - use trace, debug, info, warn, error, or off", cfg.LogLevel)
	}

	for _, m := range cfg.EnabledModules {
		if _, ok := monitor.ParseCategory(m); !ok {
			return fmt.Errorf("enabled_modules has unknown module '%s'", m)
		}
	}
	// logging_interval is kept as typed. A bad value only disables the
	// logging tick once the monitor is running.
	return nil
}

func validateWidths(w ColumnWidths) error {
	for name, f := range map[string]float64{"left": w.Left, "process": w.Process} {
		if f <= 0 || f >= 1 {
			return fmt.Errorf("column_widths.%s %v must be between 0 and 1", name, f)
		}
	}
	if w.Left+w.Process > 1.0001 {
		return fmt.Errorf("column_widths add up to more than the screen width")
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "environment"
	}
	return path
}
