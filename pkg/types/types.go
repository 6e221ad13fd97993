package types

import (
	"fmt"
	"time"
)

type BackendStatus int

const (
	BackendUnavailable BackendStatus = iota
	BackendAvailable
)

func (s BackendStatus) String() string {
	if s == BackendAvailable {
		return "available"
	}
	return "unavailable"
}

// FanPoint maps a temperature to a fan duty cycle.
type FanPoint struct {
	Temp int // unit: ℃
	Duty int // fan speed(%)
}

// FanCurve is five points ordered by ascending temperature.
type FanCurve [5]FanPoint

var defaultFanTemps = [5]int{30, 50, 65, 75, 85}
var defaultFanDuties = [5]int{30, 40, 50, 70, 85}

func DefaultFanCurve() FanCurve {
	var curve FanCurve
	for i := range curve {
		curve[i] = FanPoint{Temp: defaultFanTemps[i], Duty: defaultFanDuties[i]}
	}
	return curve
}

// Validate is called at the edit boundary; the monitor trusts curves it holds.
func (c FanCurve) Validate() error {
	for i, p := range c {
		if p.Duty < 0 || p.Duty > 100 {
			return fmt.Errorf("fan duty %d%% at point %d out of range [0, 100]", p.Duty, i)
		}
		if i > 0 && p.Temp <= c[i-1].Temp {
			return fmt.Errorf("fan curve temperatures must be ascending: point %d (%d℃) <= point %d (%d℃)",
				i, p.Temp, i-1, c[i-1].Temp)
		}
	}
	return nil
}

// DutyFor returns the duty cycle for a temperature using step lookup:
// the duty of the highest point whose temperature is not above temp.
// Below the first point the first duty applies.
func (c FanCurve) DutyFor(temp int) int {
	duty := c[0].Duty
	for _, p := range c {
		if temp >= p.Temp {
			duty = p.Duty
		}
	}
	return duty
}

// TuningSettings are user-requested operating-point values staged on a
// device until submitted through the monitor's apply path.
type TuningSettings struct {
	CoreClock   int // unit: MHz, 0 = unset
	MemoryClock int // unit: MHz, 0 = unset
	PowerLimit  int // percent of the reported power limit, default 100
	FanCurve    FanCurve
}

func DefaultTuningSettings() TuningSettings {
	return TuningSettings{
		PowerLimit: 100,
		FanCurve:   DefaultFanCurve(),
	}
}

// Device is one entry per physical GPU. Telemetry fields reflect the most
// recent successful poll; a failed read keeps the previous value.
type Device struct {
	Name          string
	DriverVersion string
	VendorCapable bool // full telemetry/tuning through the native management API

	Temperature int // unit: ℃
	MemoryUsed  int // unit: MB
	MemoryTotal int // unit: MB
	GPUUtil     int // GPU utilization(%)
	MemoryUtil  int // VRAM utilization(%)
	PowerUsage  int // unit: W
	PowerLimit  int // unit: W
	CoreClock   int // unit: MHz
	MemoryClock int // unit: MHz
	FanSpeed    int // fan speed(%)

	Tuning TuningSettings
}

func NewDevice(name, driverVersion string, vendorCapable bool) *Device {
	return &Device{
		Name:          name,
		DriverVersion: driverVersion,
		VendorCapable: vendorCapable,
		Tuning:        DefaultTuningSettings(),
	}
}

// DeviceSample is a flat timestamped copy of one device's telemetry,
// consumed by the optional history sink.
type DeviceSample struct {
	Timestamp time.Time
	Hostname  string
	Index     int
	Name      string

	Temperature int
	MemoryUsed  int
	MemoryTotal int
	GPUUtil     int
	MemoryUtil  int
	PowerUsage  int
	PowerLimit  int
	CoreClock   int
	MemoryClock int
	FanSpeed    int
}

// NewDeviceSample snapshots the current telemetry of dev.
func NewDeviceSample(hostname string, index int, dev *Device) *DeviceSample {
	return &DeviceSample{
		Timestamp:   time.Now(),
		Hostname:    hostname,
		Index:       index,
		Name:        dev.Name,
		Temperature: dev.Temperature,
		MemoryUsed:  dev.MemoryUsed,
		MemoryTotal: dev.MemoryTotal,
		GPUUtil:     dev.GPUUtil,
		MemoryUtil:  dev.MemoryUtil,
		PowerUsage:  dev.PowerUsage,
		PowerLimit:  dev.PowerLimit,
		CoreClock:   dev.CoreClock,
		MemoryClock: dev.MemoryClock,
		FanSpeed:    dev.FanSpeed,
	}
}
