package utils

import (
	"github.com/shirou/gopsutil/v3/process"
)

/**
 * Sample resource usage of a running process
 * @param {int} pid - Process ID
 * @returns {uint64} Resident set size in bytes
 * @returns {float64} CPU percent since the process started
 * @returns {error} Returns error when the process can't be inspected
 */
func ProcessStats(pid int) (uint64, float64, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return 0, 0, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return mem.RSS, 0, nil
	}
	return mem.RSS, cpu, nil
}

// IsProcessRunning reports whether a pid exists on this host.
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	return process.PidExists(int32(pid))
}
