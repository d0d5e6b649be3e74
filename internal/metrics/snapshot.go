package metrics

import (
	"time"
)

// Snapshot is one internally consistent reading of every monitored sub-metric.
// It is built by the sampler and never modified afterwards.
type Snapshot struct {
	Timestamp time.Time

	CPUUsagePercent   float64
	PerCore           []CoreUsage
	ProcessCount      int
	PhysicalCores     int // 0 when unknown
	LogicalProcessors int

	MemoryUsedBytes  uint64
	MemoryTotalBytes uint64
	SwapUsedBytes    uint64
	SwapTotalBytes   uint64

	DiskUsedBytes  uint64
	DiskTotalBytes uint64
	Disks          []DiskInfo

	NetworkSentBytes     uint64
	NetworkReceivedBytes uint64

	Processes []ProcessInfo
	Host      HostInfo
	GPU       GPUInfo
}

// CoreUsage is the usage of one logical processor.
type CoreUsage struct {
	Label        string
	Percent      float64
	FrequencyMHz float64
}

// DiskInfo describes one mounted filesystem.
type DiskInfo struct {
	Name        string
	Kind        string
	MountPoint  string
	TotalBytes  uint64
	FreeBytes   uint64
	UsedPercent float64
}

// ProcessInfo represents a system process.
type ProcessInfo struct {
	PID           int32
	Name          string
	CPUPercent    float64 // As reported by the provider
	MemoryPercent float64 // Relative to the sample's total memory
	MemoryBytes   uint64
}

// HostInfo identifies the machine being monitored.
type HostInfo struct {
	SystemName    string
	OSVersion     string
	KernelVersion string
	HostName      string
}

// GPUInfo holds NVIDIA GPU metrics when a device is present.
type GPUInfo struct {
	Available      bool
	Name           string
	Utilization    uint32
	MemoryTotal    uint64
	MemoryUsed     uint64
	Temperature    uint32
	PowerUsage     uint32    // Milliwatts
	HistoricalUtil []float64 // Last N utilization points, oldest first
}

// Percent returns part/whole*100, or 0 when whole is 0. Results above 100
// (racy counters) are clamped.
func Percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	p := float64(part) / float64(whole) * 100
	if p > 100 {
		return 100
	}
	return p
}

// UsedPercentOf derives a disk's used percentage from total and free space.
func UsedPercentOf(total, free uint64) float64 {
	if total == 0 {
		return 0
	}
	if free > total {
		return 0
	}
	return float64(total-free) / float64(total) * 100
}

// MemoryUsedPercent is used memory relative to total memory.
func (s Snapshot) MemoryUsedPercent() float64 {
	return Percent(s.MemoryUsedBytes, s.MemoryTotalBytes)
}

// SwapUsedPercent is used swap relative to total swap.
func (s Snapshot) SwapUsedPercent() float64 {
	return Percent(s.SwapUsedBytes, s.SwapTotalBytes)
}

// DiskUsedPercent is used space across all disks.
func (s Snapshot) DiskUsedPercent() float64 {
	return Percent(s.DiskUsedBytes, s.DiskTotalBytes)
}
