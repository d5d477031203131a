package emulator

import (
	"github.com/shirou/gopsutil/v3/process"
)

// Stats describes the resource usage of an emulator process.
type Stats struct {
	PID        int     `json:"pid"`
	Running    bool    `json:"running"`
	CPUPercent float64 `json:"cpu_percent"`
	RSS        uint64  `json:"rss"`
}

// ProcessStats samples the process with the given pid.
func ProcessStats(pid int) (Stats, error) {
	stats := Stats{PID: pid}

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return stats, err
	}

	running, err := p.IsRunning()
	if err != nil {
		return stats, err
	}
	stats.Running = running

	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}

	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		stats.RSS = mem.RSS
	}

	return stats, nil
}
