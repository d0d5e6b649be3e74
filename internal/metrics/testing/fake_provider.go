// Package testing provides test doubles for the metrics package.
package testing

import (
	"github.com/google/sysmonitor/internal/metrics"
)

// Frame is everything a FakeProvider reports for one refresh.
type Frame struct {
	GlobalCPU     float64
	CPUs          []metrics.CPU
	PhysicalCores int // <= 0 reports the count as unavailable

	TotalMemory uint64
	UsedMemory  uint64
	TotalSwap   uint64
	UsedSwap    uint64

	Disks     []metrics.Disk
	Networks  []metrics.NetworkInterface
	Processes []metrics.Process

	SystemName    string
	OSVersion     string
	KernelVersion string
	HostName      string

	GPU *metrics.GPUReading
}

// FakeProvider replays scripted frames. Each RefreshAll advances to the
// next frame; once the script runs out the last frame repeats.
type FakeProvider struct {
	Frames []Frame

	// InitErr and RefreshErr, when set, are returned by Init and RefreshAll.
	InitErr    error
	RefreshErr error

	Refreshes int
	ShutDown  bool

	current Frame
}

// NewFakeProvider creates a provider replaying frames in order.
func NewFakeProvider(frames ...Frame) *FakeProvider {
	return &FakeProvider{Frames: frames}
}

func (f *FakeProvider) Init() error { return f.InitErr }

func (f *FakeProvider) RefreshAll() error {
	if f.RefreshErr != nil {
		return f.RefreshErr
	}
	if len(f.Frames) > 0 {
		idx := f.Refreshes
		if idx >= len(f.Frames) {
			idx = len(f.Frames) - 1
		}
		f.current = f.Frames[idx]
	}
	f.Refreshes++
	return nil
}

func (f *FakeProvider) GlobalCPUUsage() float64 { return f.current.GlobalCPU }

func (f *FakeProvider) CPUs() []metrics.CPU { return f.current.CPUs }

func (f *FakeProvider) PhysicalCoreCount() (int, bool) {
	return f.current.PhysicalCores, f.current.PhysicalCores > 0
}

func (f *FakeProvider) TotalMemory() uint64 { return f.current.TotalMemory }

func (f *FakeProvider) UsedMemory() uint64 { return f.current.UsedMemory }

func (f *FakeProvider) TotalSwap() uint64 { return f.current.TotalSwap }

func (f *FakeProvider) UsedSwap() uint64 { return f.current.UsedSwap }

func (f *FakeProvider) Disks() []metrics.Disk { return f.current.Disks }

func (f *FakeProvider) Networks() []metrics.NetworkInterface { return f.current.Networks }

func (f *FakeProvider) Processes() []metrics.Process { return f.current.Processes }

func (f *FakeProvider) SystemName() (string, bool) {
	return f.current.SystemName, f.current.SystemName != ""
}

func (f *FakeProvider) OSVersion() (string, bool) {
	return f.current.OSVersion, f.current.OSVersion != ""
}

func (f *FakeProvider) KernelVersion() (string, bool) {
	return f.current.KernelVersion, f.current.KernelVersion != ""
}

func (f *FakeProvider) HostName() (string, bool) {
	return f.current.HostName, f.current.HostName != ""
}

func (f *FakeProvider) GPU() (metrics.GPUReading, bool) {
	if f.current.GPU == nil {
		return metrics.GPUReading{}, false
	}
	return *f.current.GPU, true
}

func (f *FakeProvider) Shutdown() { f.ShutDown = true }

// ProcessFrame returns a frame with n processes of 1 MiB each on a 1 GiB
// machine, enough to pass the default memory filter.
func ProcessFrame(n int, globalCPU float64) Frame {
	procs := make([]metrics.Process, n)
	for i := range procs {
		procs[i] = metrics.Process{
			PID:         int32(100 + i),
			Name:        "proc",
			CPUUsage:    float64(i),
			MemoryBytes: 1 << 20,
		}
	}
	return Frame{
		GlobalCPU:     globalCPU,
		CPUs:          []metrics.CPU{{Label: "cpu0", Usage: globalCPU}, {Label: "cpu1", Usage: globalCPU}},
		PhysicalCores: 1,
		TotalMemory:   1 << 30,
		UsedMemory:    1 << 29,
		Processes:     procs,
		HostName:      "testhost",
	}
}
