package monitor

import (
	"github.com/sirupsen/logrus"

	"GPUTune/pkg/backend"
	"GPUTune/pkg/registry"
	"GPUTune/pkg/types"
)

var log = logrus.WithField("component", "Monitor")

const (
	bytesPerMB = 1024 * 1024
	mwPerW     = 1000
)

// Monitor owns the device collection: it refreshes telemetry on demand and
// validates/applies tuning requests. The backend status is decided once at
// construction; there is no re-initialization path.
//
// The monitor is synchronous and not goroutine safe. The caller drives the
// refresh cadence and must not read the device view concurrently with a
// refresh or apply call.
type Monitor struct {
	manager  backend.Manager
	registry *registry.Registry
	devices  []*types.Device
}

func NewMonitor(manager backend.Manager) *Monitor {
	m := &Monitor{
		manager:  manager,
		registry: registry.New(manager),
	}
	m.registry.Initialize()
	m.devices = m.registry.Enumerate()
	return m
}

func (m *Monitor) Status() types.BackendStatus {
	return m.registry.Status()
}

// Devices returns the live device view. Callers may stage tuning-target
// edits in place; telemetry fields belong to the monitor.
func (m *Monitor) Devices() []*types.Device {
	return m.devices
}

// RefreshDevices re-runs enumeration and replaces the device list
// wholesale. Meant for explicit "refresh devices" requests, not the
// periodic telemetry poll.
func (m *Monitor) RefreshDevices() {
	m.devices = m.registry.Enumerate()
}

// RefreshAll polls every vendor-capable device in place. A failed query
// for one field skips that field and keeps the previous value; devices
// without backend support are left untouched.
func (m *Monitor) RefreshAll() {
	if m.registry.Status() != types.BackendAvailable {
		return
	}

	for i, dev := range m.devices {
		if !dev.VendorCapable {
			continue
		}

		device, err := m.manager.Device(i)
		if err != nil {
			log.Debugf("skipping refresh of device %d: %v", i, err)
			continue
		}

		refreshDevice(dev, device)
	}
}

func refreshDevice(dev *types.Device, device backend.Device) {
	if temp, err := device.Temperature(); err == nil {
		dev.Temperature = int(temp)
	} else {
		log.Debugf("temperature read failed: %v", err)
	}

	if used, total, err := device.MemoryInfo(); err == nil {
		dev.MemoryUsed = int(used / bytesPerMB)
		dev.MemoryTotal = int(total / bytesPerMB)
	} else {
		log.Debugf("memory info read failed: %v", err)
	}

	if gpuUtil, memUtil, err := device.UtilizationRates(); err == nil {
		dev.GPUUtil = int(gpuUtil)
		dev.MemoryUtil = int(memUtil)
	} else {
		log.Debugf("utilization read failed: %v", err)
	}

	if power, err := device.PowerUsage(); err == nil {
		dev.PowerUsage = int(power / mwPerW)
	} else {
		log.Debugf("power usage read failed: %v", err)
	}

	if limit, err := device.PowerLimit(); err == nil {
		dev.PowerLimit = int(limit / mwPerW)
	} else {
		log.Debugf("power limit read failed: %v", err)
	}

	if clock, err := device.CoreClock(); err == nil {
		dev.CoreClock = int(clock)
	} else {
		log.Debugf("graphics clock read failed: %v", err)
	}

	if clock, err := device.MemoryClock(); err == nil {
		dev.MemoryClock = int(clock)
	} else {
		log.Debugf("memory clock read failed: %v", err)
	}

	if fan, err := device.FanSpeed(); err == nil {
		dev.FanSpeed = int(fan)
	} else {
		log.Debugf("fan speed read failed: %v", err)
	}
}

// ApplySettings pushes the requested operating point to one device.
// It returns false without touching the backend when the backend is
// unavailable or the index is out of range. A failed constraint call
// short-circuits with false; commonly this means missing privileges and
// the caller should tell the user to elevate.
//
// No telemetry re-read happens here; the next RefreshAll observes the
// effect.
func (m *Monitor) ApplySettings(index int, settings types.TuningSettings) bool {
	if m.registry.Status() != types.BackendAvailable {
		return false
	}
	if index < 0 || index >= len(m.devices) {
		return false
	}

	dev := m.devices[index]

	device, err := m.manager.Device(index)
	if err != nil {
		log.Errorf("failed to get device %d for apply: %v", index, err)
		return false
	}

	if settings.PowerLimit > 0 {
		watts := dev.PowerLimit * settings.PowerLimit / 100
		if err := device.SetPowerLimit(uint32(watts * mwPerW)); err != nil {
			log.Errorf("failed to apply power limit on device %d: %v", index, err)
			return false
		}
	}

	if settings.CoreClock > 0 {
		// The memory clock passes through as given, zero included.
		if err := device.SetApplicationsClocks(uint32(settings.MemoryClock), uint32(settings.CoreClock)); err != nil {
			log.Errorf("failed to apply application clocks on device %d: %v", index, err)
			return false
		}
	}

	dev.Tuning = settings

	// Fan curve application is best effort: not every device exposes
	// programmable fans and an apply must not fail because of that.
	applyFanCurve(dev, device)

	return true
}

func applyFanCurve(dev *types.Device, device backend.Device) {
	count, err := device.FanCount()
	if err != nil {
		log.Debugf("fan curve not pushed: %v", err)
		return
	}

	duty := dev.Tuning.FanCurve.DutyFor(dev.Temperature)
	for fan := 0; fan < count; fan++ {
		if err := device.SetFanSpeed(fan, duty); err != nil {
			log.Debugf("fan %d duty not pushed: %v", fan, err)
		}
	}
}

// ResetToDefault sets the device's tuning targets back to its currently
// observed operating point. Local mutation only, no backend call.
func (m *Monitor) ResetToDefault(index int) bool {
	if index < 0 || index >= len(m.devices) {
		return false
	}

	dev := m.devices[index]
	dev.Tuning.CoreClock = dev.CoreClock
	dev.Tuning.MemoryClock = dev.MemoryClock
	dev.Tuning.PowerLimit = 100
	dev.Tuning.FanCurve = types.DefaultFanCurve()
	return true
}

func (m *Monitor) Shutdown() {
	m.registry.Shutdown()
}
