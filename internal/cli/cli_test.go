package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/sysmonitor/internal/metrics"
	"github.com/google/sysmonitor/internal/recorder"
)

func writeRecords(t *testing.T, path string, n int) {
	t.Helper()
	r := recorder.New(path)
	for i := 0; i < n; i++ {
		require.NoError(t, r.Append(metrics.Snapshot{
			Timestamp:        time.Date(2026, 3, 1, 12, 0, i, 0, time.Local),
			CPUUsagePercent:  float64(i),
			MemoryUsedBytes:  1,
			MemoryTotalBytes: 4,
		}))
	}
}

func TestPrintRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	writeRecords(t, path, 5)
	records, _, err := recorder.ReadRecords(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	printRecords(&buf, records, 2)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TIME")
	assert.Contains(t, lines[1], "2026-03-01T12:00:03")
	assert.Contains(t, lines[2], "2026-03-01T12:00:04")
	assert.Contains(t, lines[2], "25.0")
}

func TestPrintRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, nil, 10)
	assert.Equal(t, "no records\n", buf.String())
}

func TestTailCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	writeRecords(t, path, 3)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"tail", "--file", path, "-n", "0"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		tailFileFlag, tailLinesFlag = "", 10
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 4, strings.Count(out.String(), "\n"))
}

func TestTailCommand_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	writeRecords(t, path, 1)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	writeRecords(t, path, 2)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"tail", "--file", path, "-n", "0"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		tailFileFlag, tailLinesFlag = "", 10
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 4, strings.Count(out.String(), "\n"), "header plus the three good records")
	assert.Contains(t, errOut.String(), "skipped 1 malformed line")
}

func TestTailCommand_MissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"tail", "--file", filepath.Join(t.TempDir(), "none.json")})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		tailFileFlag = ""
	})

	assert.Error(t, rootCmd.Execute())
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"mock", "log-file", "debug-log"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	envFileFlag = filepath.Join(dir, ".env")
	logFileFlag = filepath.Join(dir, "metrics.json")
	debugLogFlag = filepath.Join(dir, "debug.log")
	t.Cleanup(func() {
		envFileFlag, logFileFlag, debugLogFlag = ".env", "", ""
	})

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, logFileFlag, cfg.LogFile)
	assert.Equal(t, debugLogFlag, cfg.DebugLog)
}
