package metrics

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mindprince/gonvml"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/google/sysmonitor/internal/logger"
)

// pseudoFilesystems are skipped when listing disks.
var pseudoFilesystems = map[string]bool{
	"squashfs": true,
	"tmpfs":    true,
	"devtmpfs": true,
	"overlay":  true,
}

// RealProvider reads counters from the running host through gopsutil and,
// when available, NVML.
type RealProvider struct {
	Log hclog.Logger

	hasGPU    bool
	procCache map[int32]*process.Process

	// Values captured by the last RefreshAll.
	globalCPU     float64
	cpus          []CPU
	physicalCores int
	hasPhysical   bool
	vm            mem.VirtualMemoryStat
	swap          mem.SwapMemoryStat
	disks         []Disk
	networks      []NetworkInterface
	processes     []Process
	hostInfo      host.InfoStat
	hasHost       bool
	gpu           GPUReading
	gpuOK         bool
}

func (r *RealProvider) Init() error {
	if r.Log == nil {
		r.Log = logger.Discard()
	}
	if _, err := mem.VirtualMemory(); err != nil {
		return fmt.Errorf("failed to read virtual memory: %w", err)
	}

	if err := gonvml.Initialize(); err != nil {
		r.Log.Info("NVML initialization failed, GPU metrics unavailable", "error", err)
		r.hasGPU = false
	} else {
		r.hasGPU = true
	}
	r.procCache = make(map[int32]*process.Process)
	return nil
}

// RefreshAll re-reads every sub-domain. Only a memory read failure is
// reported; every other sub-metric falls back to its zero value.
func (r *RealProvider) RefreshAll() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("failed to read virtual memory: %w", err)
	}
	r.vm = *vm

	if sw, err := mem.SwapMemory(); err == nil {
		r.swap = *sw
	} else {
		r.swap = mem.SwapMemoryStat{}
	}

	r.refreshCPU()
	r.refreshDisks()
	r.refreshNetworks()
	r.refreshProcesses()
	r.refreshHost()
	r.refreshGPU()
	return nil
}

func (r *RealProvider) refreshCPU() {
	r.globalCPU = 0
	if total, err := cpu.Percent(0, false); err == nil && len(total) > 0 {
		r.globalCPU = total[0]
	}

	perCore, err := cpu.Percent(0, true)
	if err != nil {
		perCore = nil
	}
	infos, _ := cpu.Info()

	r.cpus = make([]CPU, len(perCore))
	for i, usage := range perCore {
		c := CPU{Label: fmt.Sprintf("cpu%d", i), Usage: usage}
		if i < len(infos) {
			c.Frequency = infos[i].Mhz
		}
		r.cpus[i] = c
	}

	physical, err := cpu.Counts(false)
	r.physicalCores, r.hasPhysical = physical, err == nil && physical > 0
}

func (r *RealProvider) refreshDisks() {
	r.disks = r.disks[:0]
	partitions, err := disk.Partitions(false)
	if err != nil {
		return
	}
	for _, p := range partitions {
		if pseudoFilesystems[p.Fstype] {
			continue
		}
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		r.disks = append(r.disks, Disk{
			Name:      p.Device,
			Kind:      p.Fstype,
			Mount:     p.Mountpoint,
			Total:     usage.Total,
			Available: usage.Free,
		})
	}
}

func (r *RealProvider) refreshNetworks() {
	r.networks = r.networks[:0]
	counters, err := net.IOCounters(true)
	if err != nil {
		return
	}
	for _, c := range counters {
		r.networks = append(r.networks, NetworkInterface{
			Name:        c.Name,
			Transmitted: c.BytesSent,
			Received:    c.BytesRecv,
		})
	}
}

func (r *RealProvider) refreshProcesses() {
	r.processes = r.processes[:0]
	pids, err := process.Pids()
	if err != nil {
		return
	}

	// New cache for next iteration to drop exited processes
	newCache := make(map[int32]*process.Process, len(pids))
	for _, pid := range pids {
		// Reuse existing process struct so Percent has a previous sample
		p, ok := r.procCache[pid]
		if !ok {
			p, err = process.NewProcess(pid)
			if err != nil {
				continue
			}
		}
		newCache[pid] = p

		name, _ := p.Name()
		cpuP, _ := p.Percent(0)
		rss := uint64(0)
		if memInfo, err := p.MemoryInfo(); err == nil && memInfo != nil {
			rss = memInfo.RSS
		}

		r.processes = append(r.processes, Process{
			PID:         p.Pid,
			Name:        name,
			CPUUsage:    cpuP,
			MemoryBytes: rss,
		})
	}
	r.procCache = newCache
}

func (r *RealProvider) refreshHost() {
	info, err := host.Info()
	if err != nil || info == nil {
		r.hostInfo, r.hasHost = host.InfoStat{}, false
		return
	}
	r.hostInfo, r.hasHost = *info, true
}

func (r *RealProvider) refreshGPU() {
	r.gpuOK = false
	if !r.hasGPU {
		return
	}
	count, err := gonvml.DeviceCount()
	if err != nil || count == 0 {
		return
	}
	dev, err := gonvml.DeviceHandleByIndex(0)
	if err != nil {
		return
	}
	name, _ := dev.Name()
	util, _, _ := dev.UtilizationRates()
	total, used, _ := dev.MemoryInfo()
	temp, _ := dev.Temperature()
	power, _ := dev.PowerUsage()
	r.gpu = GPUReading{
		Name:        name,
		Utilization: uint32(util),
		MemoryTotal: total,
		MemoryUsed:  used,
		Temperature: uint32(temp),
		PowerUsage:  uint32(power),
	}
	r.gpuOK = true
}

func (r *RealProvider) GlobalCPUUsage() float64 { return r.globalCPU }

func (r *RealProvider) CPUs() []CPU { return r.cpus }

func (r *RealProvider) PhysicalCoreCount() (int, bool) { return r.physicalCores, r.hasPhysical }

func (r *RealProvider) TotalMemory() uint64 { return r.vm.Total }

func (r *RealProvider) UsedMemory() uint64 { return r.vm.Used }

func (r *RealProvider) TotalSwap() uint64 { return r.swap.Total }

func (r *RealProvider) UsedSwap() uint64 { return r.swap.Used }

func (r *RealProvider) Disks() []Disk { return r.disks }

func (r *RealProvider) Networks() []NetworkInterface { return r.networks }

func (r *RealProvider) Processes() []Process { return r.processes }

func (r *RealProvider) SystemName() (string, bool) {
	return r.hostInfo.Platform, r.hasHost && r.hostInfo.Platform != ""
}

func (r *RealProvider) OSVersion() (string, bool) {
	return r.hostInfo.PlatformVersion, r.hasHost && r.hostInfo.PlatformVersion != ""
}

func (r *RealProvider) KernelVersion() (string, bool) {
	return r.hostInfo.KernelVersion, r.hasHost && r.hostInfo.KernelVersion != ""
}

func (r *RealProvider) HostName() (string, bool) {
	return r.hostInfo.Hostname, r.hasHost && r.hostInfo.Hostname != ""
}

func (r *RealProvider) GPU() (GPUReading, bool) { return r.gpu, r.gpuOK }

func (r *RealProvider) Shutdown() {
	if r.hasGPU {
		gonvml.Shutdown()
	}
}
