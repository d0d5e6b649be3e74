package sampler

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smerrors "github.com/google/sysmonitor/internal/errors"
	"github.com/google/sysmonitor/internal/metrics"
	metricstesting "github.com/google/sysmonitor/internal/metrics/testing"
)

var fixedNow = time.Date(2026, 10, 15, 12, 30, 45, 0, time.UTC)

func testOptions() Options {
	opts := DefaultOptions()
	opts.SettleInterval = time.Millisecond
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func TestSample_NormalizesEverySubDomain(t *testing.T) {
	gpu := metrics.GPUReading{Name: "Test GPU", Utilization: 40, MemoryTotal: 100, MemoryUsed: 25}
	provider := metricstesting.NewFakeProvider(metricstesting.Frame{
		GlobalCPU: 37.5,
		CPUs: []metrics.CPU{
			{Label: "cpu0", Usage: 50, Frequency: 3000},
			{Label: "cpu1", Usage: 25, Frequency: 3100},
		},
		PhysicalCores: 1,
		TotalMemory:   1000,
		UsedMemory:    400,
		TotalSwap:     200,
		UsedSwap:      50,
		Disks: []metrics.Disk{
			{Name: "sda1", Kind: "ext4", Mount: "/", Total: 1000, Available: 250},
			{Name: "sdb1", Kind: "xfs", Mount: "/data", Total: 3000, Available: 3000},
		},
		Networks: []metrics.NetworkInterface{
			{Name: "eth0", Transmitted: 10, Received: 20},
			{Name: "wlan0", Transmitted: 5, Received: 7},
		},
		Processes: []metrics.Process{
			{PID: 1, Name: "init", CPUUsage: 1.5, MemoryBytes: 100},
			{PID: 2, Name: "shell", CPUUsage: 0.5, MemoryBytes: 50},
		},
		SystemName:    "Linux",
		OSVersion:     "24.04",
		KernelVersion: "6.8.0",
		HostName:      "box",
		GPU:           &gpu,
	})

	s := New(provider, testOptions(), nil)
	snap, err := s.Sample()
	require.NoError(t, err)

	assert.Equal(t, fixedNow, snap.Timestamp)
	assert.Equal(t, 37.5, snap.CPUUsagePercent)
	assert.Equal(t, []metrics.CoreUsage{
		{Label: "cpu0", Percent: 50, FrequencyMHz: 3000},
		{Label: "cpu1", Percent: 25, FrequencyMHz: 3100},
	}, snap.PerCore)
	assert.Equal(t, 1, snap.PhysicalCores)
	assert.Equal(t, 2, snap.LogicalProcessors)

	assert.Equal(t, uint64(400), snap.MemoryUsedBytes)
	assert.Equal(t, uint64(1000), snap.MemoryTotalBytes)
	assert.Equal(t, uint64(50), snap.SwapUsedBytes)
	assert.Equal(t, uint64(200), snap.SwapTotalBytes)

	assert.Equal(t, uint64(750), snap.DiskUsedBytes)
	assert.Equal(t, uint64(4000), snap.DiskTotalBytes)
	require.Len(t, snap.Disks, 2)
	assert.InDelta(t, 75.0, snap.Disks[0].UsedPercent, 1e-9)
	assert.Equal(t, "/", snap.Disks[0].MountPoint)
	assert.Equal(t, 0.0, snap.Disks[1].UsedPercent)

	assert.Equal(t, uint64(15), snap.NetworkSentBytes)
	assert.Equal(t, uint64(27), snap.NetworkReceivedBytes)

	assert.Equal(t, 2, snap.ProcessCount)
	require.Len(t, snap.Processes, 2)
	assert.InDelta(t, 10.0, snap.Processes[0].MemoryPercent, 1e-9)
	assert.InDelta(t, 5.0, snap.Processes[1].MemoryPercent, 1e-9)
	assert.Equal(t, 1.5, snap.Processes[0].CPUPercent)

	assert.Equal(t, metrics.HostInfo{SystemName: "Linux", OSVersion: "24.04", KernelVersion: "6.8.0", HostName: "box"}, snap.Host)

	assert.True(t, snap.GPU.Available)
	assert.Equal(t, []float64{40}, snap.GPU.HistoricalUtil)
}

func TestSample_ZeroTotalsNeverDivideByZero(t *testing.T) {
	provider := metricstesting.NewFakeProvider(metricstesting.Frame{
		UsedMemory: 10,
		Disks: []metrics.Disk{
			{Name: "a", Total: 0, Available: 0},
			{Name: "b", Total: 0, Available: 10},
		},
		Processes: []metrics.Process{{PID: 1, Name: "p", MemoryBytes: 1 << 20}},
	})
	opts := testOptions()
	opts.MinMemoryPercent = 0
	s := New(provider, opts, nil)

	snap, err := s.Sample()
	require.NoError(t, err)

	for _, d := range snap.Disks {
		assert.Equal(t, 0.0, d.UsedPercent, "disk %s", d.Name)
	}
	require.Len(t, snap.Processes, 1)
	mp := snap.Processes[0].MemoryPercent
	assert.False(t, math.IsNaN(mp) || math.IsInf(mp, 0))
	assert.Equal(t, 0.0, mp)
	assert.Equal(t, 0.0, snap.MemoryUsedPercent())
	assert.Equal(t, 0.0, snap.DiskUsedPercent())
}

func TestSample_DuplicateDiskNamesKeepFirst(t *testing.T) {
	provider := metricstesting.NewFakeProvider(metricstesting.Frame{
		Disks: []metrics.Disk{
			{Name: "sda1", Mount: "/", Total: 100, Available: 50},
			{Name: "sda1", Mount: "/mnt/bind", Total: 100, Available: 50},
		},
	})
	snap, err := New(provider, testOptions(), nil).Sample()
	require.NoError(t, err)

	require.Len(t, snap.Disks, 1)
	assert.Equal(t, "/", snap.Disks[0].MountPoint)
	assert.Equal(t, uint64(100), snap.DiskTotalBytes)
}

func TestSample_MissingPhysicalCoresReportsZero(t *testing.T) {
	frame := metricstesting.ProcessFrame(3, 20)
	frame.PhysicalCores = 0
	snap, err := New(metricstesting.NewFakeProvider(frame), testOptions(), nil).Sample()
	require.NoError(t, err)

	assert.Equal(t, 0, snap.PhysicalCores)
	assert.Equal(t, 2, snap.LogicalProcessors)
	assert.Len(t, snap.Processes, 3)
}

func TestSample_MemoryFilterAndCap(t *testing.T) {
	provider := metricstesting.NewFakeProvider(metricstesting.Frame{
		TotalMemory: 1_000_000,
		Processes: []metrics.Process{
			{PID: 1, MemoryBytes: 50},      // 0.005%, filtered
			{PID: 2, MemoryBytes: 200},     // 0.02%, kept
			{PID: 3, MemoryBytes: 500_000}, // kept
			{PID: 4, MemoryBytes: 200_000}, // dropped by cap
		},
	})
	opts := testOptions()
	opts.MaxProcesses = 2
	snap, err := New(provider, opts, nil).Sample()
	require.NoError(t, err)

	assert.Equal(t, 4, snap.ProcessCount)
	require.Len(t, snap.Processes, 2)
	assert.Equal(t, int32(2), snap.Processes[0].PID)
	assert.Equal(t, int32(3), snap.Processes[1].PID)
}

func TestSample_ProviderFailure(t *testing.T) {
	provider := metricstesting.NewFakeProvider()
	provider.RefreshErr = fmt.Errorf("procfs unavailable")

	_, err := New(provider, testOptions(), nil).Sample()
	require.Error(t, err)
	assert.True(t, smerrors.IsCode(err, smerrors.ErrProvider))
}

func TestWarmup_ZeroesProcessCPUWhenNoDelta(t *testing.T) {
	frame := metricstesting.ProcessFrame(3, 10)
	provider := metricstesting.NewFakeProvider(frame, frame)
	s := New(provider, testOptions(), nil)

	snap, err := s.Warmup(context.Background())
	require.NoError(t, err)

	assert.True(t, s.Warmed())
	assert.Equal(t, 2, provider.Refreshes)
	for _, p := range snap.Processes {
		assert.Equal(t, 0.0, p.CPUPercent)
	}
}

func TestWarmup_KeepsProcessCPUWhenUsageMoved(t *testing.T) {
	provider := metricstesting.NewFakeProvider(
		metricstesting.ProcessFrame(3, 10),
		metricstesting.ProcessFrame(3, 30),
	)
	s := New(provider, testOptions(), nil)

	snap, err := s.Warmup(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 20.0, s.CPUDelta(), 1e-9)
	assert.Equal(t, 2.0, snap.Processes[2].CPUPercent)

	// Later samples pass provider values through unchanged.
	next, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 2.0, next.Processes[2].CPUPercent)
}

func TestWarmup_Cancelled(t *testing.T) {
	provider := metricstesting.NewFakeProvider(metricstesting.ProcessFrame(1, 5))
	opts := testOptions()
	opts.SettleInterval = time.Hour
	s := New(provider, opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := s.Warmup(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, s.Warmed())
}

func TestSample_GPUHistoryIsBounded(t *testing.T) {
	frames := make([]metricstesting.Frame, 5)
	for i := range frames {
		gpu := metrics.GPUReading{Utilization: uint32(i * 10)}
		frames[i] = metricstesting.Frame{GPU: &gpu}
	}
	opts := testOptions()
	opts.GPUHistoryLength = 3
	s := New(metricstesting.NewFakeProvider(frames...), opts, nil)

	var snap metrics.Snapshot
	for range frames {
		var err error
		snap, err = s.Sample()
		require.NoError(t, err)
	}
	assert.Equal(t, []float64{20, 30, 40}, snap.GPU.HistoricalUtil)
}

func TestSample_ClampsGlobalCPU(t *testing.T) {
	provider := metricstesting.NewFakeProvider(
		metricstesting.Frame{GlobalCPU: 130},
		metricstesting.Frame{GlobalCPU: -4},
	)
	s := New(provider, testOptions(), nil)

	snap, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.CPUUsagePercent)

	snap, err = s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.CPUUsagePercent)
}
