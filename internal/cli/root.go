// Package cli wires the sysmonitor commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/google/sysmonitor/internal/config"
	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/logger"
	"github.com/google/sysmonitor/internal/metrics"
	"github.com/google/sysmonitor/internal/monitor"
	"github.com/google/sysmonitor/internal/recorder"
	"github.com/google/sysmonitor/internal/sampler"
	"github.com/google/sysmonitor/internal/scheduler"
	"github.com/google/sysmonitor/internal/ui"
)

// Global flags
var (
	mockFlag     bool
	configFlag   string
	logFileFlag  string
	debugLogFlag string
	envFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "sysmonitor",
	Short: "Terminal system monitor with optional JSON Lines logging",
	Long: `sysmonitor shows CPU, memory, disk, network, process, host and GPU
metrics in the terminal.

Press m to start or stop sampling. Press l to log a snapshot to
system_log.json every N seconds, where N is set with i.

Settings are read from sysmonitor.json or sysmonitor.yaml in the current
directory or next to the binary, and from SYSMONITOR_* environment variables.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default: sysmonitor.{json,yaml} in cwd or binary dir)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "environment file to load before reading config")
	rootCmd.Flags().BoolVar(&mockFlag, "mock", false, "run with simulated data")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "JSON Lines file for logged snapshots (default: system_log.json)")
	rootCmd.Flags().StringVar(&debugLogFlag, "debug-log", "", "diagnostic log file (default: sysmonitor-debug.log)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadConfig reads .env, the config file and flag overrides.
func loadConfig() (*config.ProfileConfiguration, error) {
	if err := config.LoadEnvFile(envFileFlag); err != nil {
		return nil, err
	}
	cfg, _, err := config.LoadDefaultConfig(configFlag, nil)
	if err != nil {
		return nil, err
	}
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}
	if debugLogFlag != "" {
		cfg.DebugLog = debugLogFlag
	}
	return cfg, nil
}

func newProvider(log hclog.Logger) metrics.Provider {
	if mockFlag {
		log.Info("starting in mock mode")
		return &metrics.MockProvider{}
	}
	return &metrics.RealProvider{Log: log.Named("provider")}
}

func runMonitor(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, logFile, err := logger.OpenFile(cfg.DebugLog, cfg.LogLevel)
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Failed to open debug log "+cfg.DebugLog,
			"Pass --debug-log with a writable path")
	}
	defer logFile.Close()

	provider := newProvider(log)
	if err := provider.Init(); err != nil {
		log.Error("provider init failed", "error", err)
		return smerrors.WrapWithCode(err, smerrors.ErrProvider,
			"Failed to initialize metrics provider",
			"Run with --mock to try the interface with simulated data")
	}
	defer provider.Shutdown()

	s := sampler.New(provider, sampler.Options{
		SettleInterval:   cfg.Settle(),
		MinMemoryPercent: cfg.MinMemoryPercent,
		MaxProcesses:     cfg.MaxProcesses,
		GPUHistoryLength: cfg.GPUHistoryLength,
	}, log)

	initial, err := s.Warmup(ctx)
	if err != nil {
		return err
	}

	state := monitor.New(initial, monitor.VisibilityFromModules(cfg.EnabledModules))
	state.LoggingEnabled = cfg.LoggingEnabled
	state.IntervalText = cfg.LoggingInterval
	state.SortByMemory = cfg.SortByMemory
	if state.SortByMemory {
		monitor.SortByMemory(state.Snapshot.Processes)
	}

	model := ui.NewRootModel(ui.Options{
		State:     state,
		Source:    s,
		Scheduler: scheduler.New(cfg.Refresh(), log),
		Recorder:  recorder.New(cfg.LogFile),
		Config:    cfg,
		Log:       log,
	})

	log.Info("starting", "refresh", cfg.Refresh(), "log_file", cfg.LogFile, "mock", mockFlag)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			log.Info("stopped by signal")
			return nil
		}
		return fmt.Errorf("error running sysmonitor: %w", err)
	}
	log.Info("exited")
	return nil
}
