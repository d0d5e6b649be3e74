package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
	"github.com/google/sysmonitor/internal/recorder"
)

var (
	tailFileFlag  string
	tailLinesFlag int
)

// tailCmd prints the most recent logged snapshots.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the last logged snapshots",
	Long: `Read the JSON Lines log written by the monitor and print the newest
records as a table.

Examples:
  sysmonitor tail
  sysmonitor tail -n 20
  sysmonitor tail --file /var/tmp/metrics.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := tailFileFlag
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.LogFile
		}

		records, skipped, err := recorder.ReadRecords(path)
		if err != nil && len(records) == 0 {
			return err
		}
		printRecords(cmd.OutOrStdout(), records, tailLinesFlag)
		if skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed line(s) in %s\n", skipped, path)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "stopped early: %v\n", smerrors.Summary(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().StringVarP(&tailFileFlag, "file", "f", "", "log file to read (default: configured log_file)")
	tailCmd.Flags().IntVarP(&tailLinesFlag, "lines", "n", 10, "number of records to show, 0 for all")
}

var tailHeaderStyle = lipgloss.NewStyle().Bold(true)

func printRecords(w io.Writer, records []recorder.Record, n int) {
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}

	fmt.Fprintln(w, tailHeaderStyle.Render(fmt.Sprintf("%-19s %6s %6s %6s %6s %12s %12s",
		"TIME", "CPU%", "MEM%", "SWAP%", "DISK%", "SENT", "RECV")))
	for _, r := range records {
		fmt.Fprintf(w, "%-19s %6.1f %6.1f %6.1f %6.1f %12d %12d\n",
			r.Timestamp,
			r.CPUUsagePercent,
			metrics.Percent(r.MemoryUsageBytes[0], r.MemoryUsageBytes[1]),
			metrics.Percent(r.SwapMemoryUsageBytes[0], r.SwapMemoryUsageBytes[1]),
			metrics.Percent(r.DiskUsageBytes[0], r.DiskUsageBytes[1]),
			r.NetworkSentBytes,
			r.NetworkReceivedBytes,
		)
	}
}
