package hostinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "HostInfo")

// Summary is the host-side context shown next to the GPU list. Every
// field is best effort; a failed probe leaves its zero value.
type Summary struct {
	Hostname      string
	OS            string
	Platform      string
	KernelVersion string

	CPUModel    string
	CPUCores    int
	MemoryUsed  float64 // unit: GB
	MemoryTotal float64 // unit: GB

	Load1  float64
	Load5  float64
	Load15 float64
}

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) GetSummary() *Summary {
	summary := &Summary{}

	if info, err := host.Info(); err == nil {
		summary.Hostname = info.Hostname
		summary.OS = info.OS
		summary.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		summary.KernelVersion = info.KernelVersion
	} else {
		log.Warnf("failed to get host info: %v", err)
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		summary.CPUModel = infos[0].ModelName
	} else if err != nil {
		log.Warnf("failed to get CPU info: %v", err)
	}

	if cores, err := cpu.Counts(true); err == nil {
		summary.CPUCores = cores
	} else {
		log.Warnf("failed to get CPU count: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		summary.MemoryUsed = float64(vm.Used) / (1024 * 1024 * 1024)
		summary.MemoryTotal = float64(vm.Total) / (1024 * 1024 * 1024)
	} else {
		log.Warnf("failed to get memory info: %v", err)
	}

	if avg, err := load.Avg(); err == nil {
		summary.Load1 = avg.Load1
		summary.Load5 = avg.Load5
		summary.Load15 = avg.Load15
	} else {
		log.Warnf("failed to get load average: %v", err)
	}

	return summary
}
