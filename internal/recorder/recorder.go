// Package recorder appends snapshots to a JSON Lines file.
package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
)

// DefaultPath is the log file name, relative to the working directory.
const DefaultPath = "system_log.json"

// TimestampLayout is second precision, local time.
const TimestampLayout = "2006-01-02T15:04:05"

// Record is one line of the log file.
type Record struct {
	Timestamp            string    `json:"timestamp"`
	CPUUsagePercent      float64   `json:"cpu_usage_percent"`
	MemoryUsageBytes     [2]uint64 `json:"memory_usage_bytes"`
	SwapMemoryUsageBytes [2]uint64 `json:"swap_memory_usage_bytes"`
	DiskUsageBytes       [2]uint64 `json:"disk_usage_bytes"`
	NetworkSentBytes     uint64    `json:"network_sent_bytes"`
	NetworkReceivedBytes uint64    `json:"network_received_bytes"`
}

// NewRecord flattens a snapshot into its persisted form.
func NewRecord(s metrics.Snapshot) Record {
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Record{
		Timestamp:            ts.Local().Format(TimestampLayout),
		CPUUsagePercent:      s.CPUUsagePercent,
		MemoryUsageBytes:     [2]uint64{s.MemoryUsedBytes, s.MemoryTotalBytes},
		SwapMemoryUsageBytes: [2]uint64{s.SwapUsedBytes, s.SwapTotalBytes},
		DiskUsageBytes:       [2]uint64{s.DiskUsedBytes, s.DiskTotalBytes},
		NetworkSentBytes:     s.NetworkSentBytes,
		NetworkReceivedBytes: s.NetworkReceivedBytes,
	}
}

// Recorder appends records to a single file. It keeps no file handle
// between calls: every Append opens, writes, syncs and closes.
type Recorder struct {
	path string
}

// New returns a recorder for path, or DefaultPath when path is empty.
func New(path string) *Recorder {
	if path == "" {
		path = DefaultPath
	}
	return &Recorder{path: path}
}

// Path returns the file the recorder appends to.
func (r *Recorder) Path() string { return r.path }

// Append writes exactly one line for the snapshot. The file is created if
// missing and only ever appended to. On error nothing is retried here;
// the caller skips this tick and tries again on the next one.
func (r *Recorder) Append(s metrics.Snapshot) error {
	line, err := json.Marshal(NewRecord(s))
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to encode log record", "")
	}
	line = append(line, '\n')

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to open log file "+r.path,
			"Check write permissions for the working directory")
	}

	if _, err := f.Write(line); err != nil {
		f.Close()
		return smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to append log record to "+r.path, "")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to flush log file "+r.path, "")
	}
	if err := f.Close(); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to close log file "+r.path, "")
	}
	return nil
}

// ReadRecords parses every line of a log file. Blank lines are skipped.
// Lines that do not decode, such as a torn write, are skipped too and
// counted in skipped so later records stay readable.
func ReadRecords(path string) (records []Record, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, skipped, smerrors.WrapWithCode(err, smerrors.ErrRecord,
			"Failed to read "+path, "")
	}
	return records, skipped, nil
}
