package realtime

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceSnapshot is one reading of process-host resource usage.
type ResourceSnapshot struct {
	CPUPercent    float64
	MemoryPercent float64
}

// ResourceSampler supplies resource readings for the system-stats pusher.
type ResourceSampler interface {
	Snapshot() (ResourceSnapshot, error)
}

// SystemSampler reads host CPU and memory usage via gopsutil.
type SystemSampler struct{}

// Snapshot implements ResourceSampler.
func (SystemSampler) Snapshot() (ResourceSnapshot, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return ResourceSnapshot{}, err
	}
	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return ResourceSnapshot{}, err
	}

	return ResourceSnapshot{CPUPercent: cpuPct, MemoryPercent: vm.UsedPercent}, nil
}
