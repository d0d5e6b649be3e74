package metrics

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	mockCores     = 8
	mockGiB       = 1024 * 1024 * 1024
	mockProcesses = 50
)

// MockProvider simulates a busy workstation with randomized counters.
type MockProvider struct {
	rng *rand.Rand

	globalCPU float64
	cpus      []CPU
	usedMem   uint64
	usedSwap  uint64
	sent      uint64
	received  uint64
	disks     []Disk
	processes []Process
	gpu       GPUReading
}

func (m *MockProvider) Init() error {
	m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	m.cpus = make([]CPU, mockCores)
	m.disks = []Disk{
		{Name: "/dev/nvme0n1p2", Kind: "ext4", Mount: "/", Total: 512 * mockGiB, Available: 300 * mockGiB},
		{Name: "/dev/nvme0n1p1", Kind: "vfat", Mount: "/boot/efi", Total: mockGiB / 2, Available: mockGiB / 4},
		{Name: "/dev/sda1", Kind: "xfs", Mount: "/data", Total: 2048 * mockGiB, Available: 1024 * mockGiB},
	}
	m.gpu = GPUReading{
		Name:        "NVIDIA GeForce RTX 4090",
		MemoryTotal: 24 * mockGiB,
	}
	return nil
}

func (m *MockProvider) RefreshAll() error {
	if m.rng == nil {
		if err := m.Init(); err != nil {
			return err
		}
	}

	// CPU
	m.globalCPU = 0
	for i := range m.cpus {
		usage := 10 + m.rng.Float64()*30
		m.cpus[i] = CPU{Label: fmt.Sprintf("cpu%d", i), Usage: usage, Frequency: 3600}
		m.globalCPU += usage
	}
	m.globalCPU /= float64(len(m.cpus))

	// Memory
	m.usedMem = 12*mockGiB + uint64(m.rng.Int63n(2*mockGiB))
	m.usedSwap = uint64(m.rng.Int63n(mockGiB))

	// Network counters only grow
	m.sent += uint64(m.rng.Int63n(512 * 1024))
	m.received += uint64(m.rng.Int63n(4 * 1024 * 1024))

	// Processes come and go between refreshes
	names := []string{"chrome", "code", "go", "kworker", "bash", "postgres", "systemd"}
	n := mockProcesses - 5 + m.rng.Intn(11)
	m.processes = make([]Process, n)
	for i := range m.processes {
		m.processes[i] = Process{
			PID:         int32(1000 + i),
			Name:        names[m.rng.Intn(len(names))],
			CPUUsage:    m.rng.Float64() * 5,
			MemoryBytes: uint64(m.rng.Int63n(512 * 1024 * 1024)),
		}
	}

	// GPU
	m.gpu.Utilization = uint32(50 + m.rng.Intn(30))
	m.gpu.Temperature = uint32(60 + m.rng.Intn(10))
	m.gpu.MemoryUsed = 8 * mockGiB
	m.gpu.PowerUsage = 150000
	return nil
}

func (m *MockProvider) GlobalCPUUsage() float64 { return m.globalCPU }

func (m *MockProvider) CPUs() []CPU { return m.cpus }

func (m *MockProvider) PhysicalCoreCount() (int, bool) { return mockCores / 2, true }

func (m *MockProvider) TotalMemory() uint64 { return 32 * mockGiB }

func (m *MockProvider) UsedMemory() uint64 { return m.usedMem }

func (m *MockProvider) TotalSwap() uint64 { return 8 * mockGiB }

func (m *MockProvider) UsedSwap() uint64 { return m.usedSwap }

func (m *MockProvider) Disks() []Disk { return m.disks }

func (m *MockProvider) Networks() []NetworkInterface {
	return []NetworkInterface{{Name: "eth0", Transmitted: m.sent, Received: m.received}}
}

func (m *MockProvider) Processes() []Process { return m.processes }

func (m *MockProvider) SystemName() (string, bool) { return "Mock Linux", true }

func (m *MockProvider) OSVersion() (string, bool) { return "24.04", true }

func (m *MockProvider) KernelVersion() (string, bool) { return "6.8.0-mock", true }

func (m *MockProvider) HostName() (string, bool) { return "mockhost", true }

func (m *MockProvider) GPU() (GPUReading, bool) { return m.gpu, true }

func (m *MockProvider) Shutdown() {}
