package backend

// Device is the per-GPU query/constraint surface of a management backend.
// Telemetry getters return values in the vendor API's native units
// (power in mW, memory in bytes, clocks in MHz).
type Device interface {
	Name() (string, error)
	Temperature() (uint32, error)
	MemoryInfo() (used uint64, total uint64, err error)
	UtilizationRates() (gpu uint32, mem uint32, err error)
	PowerUsage() (uint32, error)
	PowerLimit() (uint32, error)
	CoreClock() (uint32, error)
	MemoryClock() (uint32, error)
	FanSpeed() (uint32, error)
	FanCount() (int, error)

	SetPowerLimit(milliwatts uint32) error
	SetApplicationsClocks(memClockMHz, coreClockMHz uint32) error
	SetFanSpeed(fan int, duty int) error
}

// Manager is the process-wide backend lifecycle. Shutdown must be
// idempotent and safe when Init failed or was never called.
type Manager interface {
	Init() error
	Shutdown() error
	DriverVersion() (string, error)
	DeviceCount() (int, error)
	Device(index int) (Device, error)
}
