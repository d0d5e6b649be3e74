// Package sampler turns raw provider counters into normalized snapshots.
package sampler

import (
	"context"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/logger"
	"github.com/google/sysmonitor/internal/metrics"
)

// DefaultSettleInterval is how long the startup warm-up waits between its
// two CPU readings.
const DefaultSettleInterval = time.Second

// DefaultMinMemoryPercent drops processes using less memory than this.
const DefaultMinMemoryPercent = 0.01

// Options tune snapshot construction.
type Options struct {
	SettleInterval   time.Duration
	MinMemoryPercent float64 // 0 keeps every process
	MaxProcesses     int     // 0 keeps every process
	GPUHistoryLength int
	Now              func() time.Time
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SettleInterval:   DefaultSettleInterval,
		MinMemoryPercent: DefaultMinMemoryPercent,
		GPUHistoryLength: 60,
		Now:              time.Now,
	}
}

// Sampler pulls counters from a provider and keeps the little state needed
// across samples: the warm-up CPU delta and the GPU utilization history.
type Sampler struct {
	provider metrics.Provider
	opts     Options
	log      hclog.Logger

	warmed     bool
	cpuDelta   float64
	gpuHistory []float64
}

// New creates a sampler. Zero-valued options fall back to defaults.
func New(provider metrics.Provider, opts Options, log hclog.Logger) *Sampler {
	if opts.SettleInterval <= 0 {
		opts.SettleInterval = DefaultSettleInterval
	}
	if opts.MinMemoryPercent < 0 {
		opts.MinMemoryPercent = 0
	}
	if opts.MaxProcesses < 0 {
		opts.MaxProcesses = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Sampler{
		provider: provider,
		opts:     opts,
		log:      log.Named("sampler"),
	}
}

// Warmup takes a baseline CPU reading, waits for the settle interval and
// returns the first snapshot. Process CPU percentages in that snapshot are
// zeroed when global usage did not move during the wait, since a first
// reading without a previous one is meaningless. Later samples report the
// provider's values unchanged.
//
// The wait honours ctx, so an interrupt during startup returns promptly.
func (s *Sampler) Warmup(ctx context.Context) (metrics.Snapshot, error) {
	if err := s.refresh(); err != nil {
		return metrics.Snapshot{}, err
	}
	before := s.provider.GlobalCPUUsage()

	timer := time.NewTimer(s.opts.SettleInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return metrics.Snapshot{}, smerrors.WrapWithCode(ctx.Err(), smerrors.ErrProvider,
			"Startup interrupted while measuring CPU usage", "")
	case <-timer.C:
	}

	if err := s.refresh(); err != nil {
		return metrics.Snapshot{}, err
	}
	s.cpuDelta = s.provider.GlobalCPUUsage() - before
	s.warmed = true
	s.log.Debug("warm-up complete", "cpu_delta", s.cpuDelta)

	snap := s.build()
	if s.cpuDelta <= 0 {
		for i := range snap.Processes {
			snap.Processes[i].CPUPercent = 0
		}
	}
	return snap, nil
}

// Sample refreshes the provider once and builds a snapshot from that refresh.
func (s *Sampler) Sample() (metrics.Snapshot, error) {
	if err := s.refresh(); err != nil {
		return metrics.Snapshot{}, err
	}
	return s.build(), nil
}

// Warmed reports whether Warmup has completed.
func (s *Sampler) Warmed() bool { return s.warmed }

// CPUDelta is the change in global CPU usage measured during warm-up.
func (s *Sampler) CPUDelta() float64 { return s.cpuDelta }

func (s *Sampler) refresh() error {
	if err := s.provider.RefreshAll(); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrProvider,
			"Failed to refresh system metrics", "")
	}
	return nil
}

func (s *Sampler) build() metrics.Snapshot {
	p := s.provider
	snap := metrics.Snapshot{
		Timestamp:        s.opts.Now(),
		CPUUsagePercent:  clampPercent(p.GlobalCPUUsage()),
		MemoryUsedBytes:  p.UsedMemory(),
		MemoryTotalBytes: p.TotalMemory(),
		SwapUsedBytes:    p.UsedSwap(),
		SwapTotalBytes:   p.TotalSwap(),
		Host:             s.hostInfo(),
	}

	cpus := p.CPUs()
	snap.PerCore = make([]metrics.CoreUsage, len(cpus))
	for i, c := range cpus {
		snap.PerCore[i] = metrics.CoreUsage{Label: c.Label, Percent: c.Usage, FrequencyMHz: c.Frequency}
	}
	snap.LogicalProcessors = len(cpus)

	if physical, ok := p.PhysicalCoreCount(); ok {
		snap.PhysicalCores = physical
	} else {
		s.log.Debug("physical core count unavailable, reporting 0")
	}

	snap.Disks, snap.DiskUsedBytes, snap.DiskTotalBytes = buildDisks(p.Disks())

	for _, n := range p.Networks() {
		snap.NetworkSentBytes += n.Transmitted
		snap.NetworkReceivedBytes += n.Received
	}

	procs := p.Processes()
	snap.ProcessCount = len(procs)
	snap.Processes = s.buildProcesses(procs, snap.MemoryTotalBytes)

	snap.GPU = s.buildGPU()
	return snap
}

// buildDisks keys disks by name, keeping the first entry for a duplicate,
// and totals used and total space.
func buildDisks(raw []metrics.Disk) ([]metrics.DiskInfo, uint64, uint64) {
	seen := make(map[string]bool, len(raw))
	disks := make([]metrics.DiskInfo, 0, len(raw))
	var used, total uint64
	for _, d := range raw {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true

		disks = append(disks, metrics.DiskInfo{
			Name:        d.Name,
			Kind:        d.Kind,
			MountPoint:  d.Mount,
			TotalBytes:  d.Total,
			FreeBytes:   d.Available,
			UsedPercent: metrics.UsedPercentOf(d.Total, d.Available),
		})
		total += d.Total
		if d.Available < d.Total {
			used += d.Total - d.Available
		}
	}
	return disks, used, total
}

func (s *Sampler) buildProcesses(raw []metrics.Process, totalMemory uint64) []metrics.ProcessInfo {
	procs := make([]metrics.ProcessInfo, 0, len(raw))
	for _, rp := range raw {
		memPct := metrics.Percent(rp.MemoryBytes, totalMemory)
		if s.opts.MinMemoryPercent > 0 && memPct < s.opts.MinMemoryPercent {
			continue
		}
		procs = append(procs, metrics.ProcessInfo{
			PID:           rp.PID,
			Name:          rp.Name,
			CPUPercent:    rp.CPUUsage,
			MemoryPercent: memPct,
			MemoryBytes:   rp.MemoryBytes,
		})
		if s.opts.MaxProcesses > 0 && len(procs) >= s.opts.MaxProcesses {
			break
		}
	}
	return procs
}

func (s *Sampler) hostInfo() metrics.HostInfo {
	var h metrics.HostInfo
	h.SystemName, _ = s.provider.SystemName()
	h.OSVersion, _ = s.provider.OSVersion()
	h.KernelVersion, _ = s.provider.KernelVersion()
	h.HostName, _ = s.provider.HostName()
	return h
}

func (s *Sampler) buildGPU() metrics.GPUInfo {
	reading, ok := s.provider.GPU()
	if !ok {
		return metrics.GPUInfo{}
	}

	s.gpuHistory = append(s.gpuHistory, float64(reading.Utilization))
	if limit := s.opts.GPUHistoryLength; limit > 0 && len(s.gpuHistory) > limit {
		s.gpuHistory = s.gpuHistory[len(s.gpuHistory)-limit:]
	}
	history := make([]float64, len(s.gpuHistory))
	copy(history, s.gpuHistory)

	return metrics.GPUInfo{
		Available:      true,
		Name:           reading.Name,
		Utilization:    reading.Utilization,
		MemoryTotal:    reading.MemoryTotal,
		MemoryUsed:     reading.MemoryUsed,
		Temperature:    reading.Temperature,
		PowerUsage:     reading.PowerUsage,
		HistoricalUtil: history,
	}
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
