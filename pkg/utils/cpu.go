package utils

import (
	"time"

	"github.com/shirou/gopsutil/cpu"
)

// cpuSampleWindow is how long CheckCPUUsage measures before deciding.
const cpuSampleWindow = 250 * time.Millisecond

// CheckCPUUsage reports whether system-wide CPU usage is at or below
// maxCPUUsage percent, along with the measured value. A failed measurement
// refuses new work.
func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	usage, err := cpu.Percent(cpuSampleWindow, false)
	if err != nil || len(usage) == 0 {
		return false, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}
