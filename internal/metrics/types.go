package metrics

// CPU is a raw per-logical-processor reading.
type CPU struct {
	Label     string
	Usage     float64 // Percent since the previous refresh
	Frequency float64 // MHz
}

// Disk is a raw mounted-filesystem reading.
type Disk struct {
	Name      string
	Kind      string
	Mount     string
	Total     uint64
	Available uint64
}

// NetworkInterface holds cumulative counters for one interface.
type NetworkInterface struct {
	Name        string
	Transmitted uint64 // Total bytes sent since boot or interface reset
	Received    uint64 // Total bytes received since boot or interface reset
}

// Process is a raw process table entry.
type Process struct {
	PID         int32
	Name        string
	CPUUsage    float64
	MemoryBytes uint64 // RSS
}

// GPUReading is a single NVIDIA device reading.
type GPUReading struct {
	Name        string
	Utilization uint32 // Percent
	MemoryTotal uint64 // Bytes
	MemoryUsed  uint64 // Bytes
	Temperature uint32 // Celsius
	PowerUsage  uint32 // Milliwatts
}

// Provider exposes raw, un-normalized OS counters.
//
// RefreshAll captures every sub-domain at once; the getters then return
// values from that refresh until the next RefreshAll. Optional values are
// reported with a false second result instead of an error.
type Provider interface {
	Init() error
	RefreshAll() error

	GlobalCPUUsage() float64
	CPUs() []CPU
	PhysicalCoreCount() (int, bool)

	TotalMemory() uint64
	UsedMemory() uint64
	TotalSwap() uint64
	UsedSwap() uint64

	Disks() []Disk
	Networks() []NetworkInterface
	Processes() []Process

	SystemName() (string, bool)
	OSVersion() (string, bool)
	KernelVersion() (string, bool)
	HostName() (string, bool)

	GPU() (GPUReading, bool)

	Shutdown()
}
