package backend

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// NVMLManager drives NVIDIA GPUs through the NVML bindings. The bindings
// dlopen libnvidia-ml at Init time, so a host without the driver degrades
// to an Init error instead of a link failure.
type NVMLManager struct {
	inited bool
}

func NewNVMLManager() *NVMLManager {
	return &NVMLManager{}
}

func (m *NVMLManager) Init() error {
	if m.inited {
		return nil
	}
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return fmt.Errorf("NVML init failed: %s", nvml.ErrorString(ret))
	}
	m.inited = true
	return nil
}

func (m *NVMLManager) Shutdown() error {
	if !m.inited {
		return nil
	}
	m.inited = false
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("NVML shutdown failed: %s", nvml.ErrorString(ret))
	}
	return nil
}

func (m *NVMLManager) DriverVersion() (string, error) {
	version, ret := nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		return "", fmt.Errorf("failed to get driver version: %s", nvml.ErrorString(ret))
	}
	return version, nil
}

func (m *NVMLManager) DeviceCount() (int, error) {
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get device count: %s", nvml.ErrorString(ret))
	}
	return count, nil
}

func (m *NVMLManager) Device(index int) (Device, error) {
	handle, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("failed to get device handle %d: %s", index, nvml.ErrorString(ret))
	}
	return &NVMLDevice{handle: handle}, nil
}

type NVMLDevice struct {
	handle nvml.Device
}

func (d *NVMLDevice) Name() (string, error) {
	name, ret := d.handle.GetName()
	if ret != nvml.SUCCESS {
		return "", fmt.Errorf("failed to get device name: %s", nvml.ErrorString(ret))
	}
	return name, nil
}

func (d *NVMLDevice) Temperature() (uint32, error) {
	temp, ret := d.handle.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get temperature: %s", nvml.ErrorString(ret))
	}
	return temp, nil
}

func (d *NVMLDevice) MemoryInfo() (uint64, uint64, error) {
	memory, ret := d.handle.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return 0, 0, fmt.Errorf("failed to get memory info: %s", nvml.ErrorString(ret))
	}
	return memory.Used, memory.Total, nil
}

func (d *NVMLDevice) UtilizationRates() (uint32, uint32, error) {
	utilization, ret := d.handle.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return 0, 0, fmt.Errorf("failed to get utilization: %s", nvml.ErrorString(ret))
	}
	return utilization.Gpu, utilization.Memory, nil
}

func (d *NVMLDevice) PowerUsage() (uint32, error) {
	power, ret := d.handle.GetPowerUsage()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get power usage: %s", nvml.ErrorString(ret))
	}
	return power, nil
}

// PowerLimit reports the upper management constraint. NVML returns a
// min/max pair but the tuning path only needs the single upper bound.
func (d *NVMLDevice) PowerLimit() (uint32, error) {
	_, maxLimit, ret := d.handle.GetPowerManagementLimitConstraints()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get power limit constraints: %s", nvml.ErrorString(ret))
	}
	return maxLimit, nil
}

func (d *NVMLDevice) CoreClock() (uint32, error) {
	clock, ret := d.handle.GetClockInfo(nvml.CLOCK_GRAPHICS)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get graphics clock: %s", nvml.ErrorString(ret))
	}
	return clock, nil
}

func (d *NVMLDevice) MemoryClock() (uint32, error) {
	clock, ret := d.handle.GetClockInfo(nvml.CLOCK_MEM)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get memory clock: %s", nvml.ErrorString(ret))
	}
	return clock, nil
}

func (d *NVMLDevice) FanSpeed() (uint32, error) {
	speed, ret := d.handle.GetFanSpeed()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get fan speed: %s", nvml.ErrorString(ret))
	}
	return speed, nil
}

func (d *NVMLDevice) FanCount() (int, error) {
	count, ret := d.handle.GetNumFans()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to get fan count: %s", nvml.ErrorString(ret))
	}
	return count, nil
}

func (d *NVMLDevice) SetPowerLimit(milliwatts uint32) error {
	if ret := d.handle.SetPowerManagementLimit(milliwatts); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to set power limit: %s", nvml.ErrorString(ret))
	}
	return nil
}

func (d *NVMLDevice) SetApplicationsClocks(memClockMHz, coreClockMHz uint32) error {
	if ret := d.handle.SetApplicationsClocks(memClockMHz, coreClockMHz); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to set application clocks: %s", nvml.ErrorString(ret))
	}
	return nil
}

func (d *NVMLDevice) SetFanSpeed(fan int, duty int) error {
	if ret := d.handle.SetFanSpeed_v2(fan, duty); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to set fan %d speed: %s", fan, nvml.ErrorString(ret))
	}
	return nil
}
