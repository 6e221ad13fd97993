package registry

import (
	"fmt"
	"testing"

	"GPUTune/pkg/backend"
	"GPUTune/pkg/types"
)

type stubDevice struct {
	name    string
	nameErr error
}

func (d *stubDevice) Name() (string, error)                         { return d.name, d.nameErr }
func (d *stubDevice) Temperature() (uint32, error)                  { return 0, nil }
func (d *stubDevice) MemoryInfo() (uint64, uint64, error)           { return 0, 0, nil }
func (d *stubDevice) UtilizationRates() (uint32, uint32, error)     { return 0, 0, nil }
func (d *stubDevice) PowerUsage() (uint32, error)                   { return 0, nil }
func (d *stubDevice) PowerLimit() (uint32, error)                   { return 0, nil }
func (d *stubDevice) CoreClock() (uint32, error)                    { return 0, nil }
func (d *stubDevice) MemoryClock() (uint32, error)                  { return 0, nil }
func (d *stubDevice) FanSpeed() (uint32, error)                     { return 0, nil }
func (d *stubDevice) FanCount() (int, error)                        { return 0, nil }
func (d *stubDevice) SetPowerLimit(uint32) error                    { return nil }
func (d *stubDevice) SetApplicationsClocks(_, _ uint32) error       { return nil }
func (d *stubDevice) SetFanSpeed(int, int) error                    { return nil }

type stubManager struct {
	initErr   error
	countErr  error
	driverErr error
	driver    string
	devices   []*stubDevice
	handleErr map[int]error

	initCalls     int
	shutdownCalls int
}

func (m *stubManager) Init() error {
	m.initCalls++
	return m.initErr
}

func (m *stubManager) Shutdown() error {
	m.shutdownCalls++
	return nil
}

func (m *stubManager) DriverVersion() (string, error) {
	return m.driver, m.driverErr
}

func (m *stubManager) DeviceCount() (int, error) {
	return len(m.devices), m.countErr
}

func (m *stubManager) Device(index int) (backend.Device, error) {
	if err := m.handleErr[index]; err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.devices) {
		return nil, fmt.Errorf("invalid index %d", index)
	}
	return m.devices[index], nil
}

func TestEnumeratePreservesIndexOrder(t *testing.T) {
	mgr := &stubManager{
		driver: "550.54.14",
		devices: []*stubDevice{
			{name: "GPU 0"}, {name: "GPU 1"}, {name: "GPU 2"},
		},
	}
	r := New(mgr)

	if status := r.Initialize(); status != types.BackendAvailable {
		t.Fatalf("Initialize = %v, want available", status)
	}

	devices := r.Enumerate()
	if len(devices) != 3 {
		t.Fatalf("device count = %d, want 3", len(devices))
	}
	for i, want := range []string{"GPU 0", "GPU 1", "GPU 2"} {
		if devices[i].Name != want {
			t.Errorf("device %d = %q, want %q", i, devices[i].Name, want)
		}
		if devices[i].DriverVersion != "550.54.14" {
			t.Errorf("device %d driver = %q, want 550.54.14", i, devices[i].DriverVersion)
		}
		if !devices[i].VendorCapable {
			t.Errorf("device %d not vendor capable", i)
		}
		if devices[i].Tuning.PowerLimit != 100 {
			t.Errorf("device %d power target = %d, want default 100", i, devices[i].Tuning.PowerLimit)
		}
	}
}

func TestEnumerateSkipsFailedDevices(t *testing.T) {
	mgr := &stubManager{
		devices:   []*stubDevice{{name: "GPU 0"}, {name: "GPU 1"}, {name: "GPU 2"}},
		handleErr: map[int]error{1: fmt.Errorf("device lost")},
	}
	r := New(mgr)
	r.Initialize()

	devices := r.Enumerate()
	if len(devices) != 2 {
		t.Fatalf("device count = %d, want 2 (failed device skipped)", len(devices))
	}
	if devices[0].Name != "GPU 0" || devices[1].Name != "GPU 2" {
		t.Errorf("surviving devices = %q, %q; want GPU 0, GPU 2", devices[0].Name, devices[1].Name)
	}
}

func TestEnumerateNameFailureSkipsDevice(t *testing.T) {
	mgr := &stubManager{
		devices: []*stubDevice{
			{name: "GPU 0"},
			{name: "GPU 1", nameErr: fmt.Errorf("query failed")},
		},
	}
	r := New(mgr)
	r.Initialize()

	devices := r.Enumerate()
	if len(devices) != 1 || devices[0].Name != "GPU 0" {
		t.Fatalf("devices = %+v, want only GPU 0", devices)
	}
}

func TestEnumerateDriverVersionFailureIsNonFatal(t *testing.T) {
	mgr := &stubManager{
		driverErr: fmt.Errorf("not supported"),
		devices:   []*stubDevice{{name: "GPU 0"}},
	}
	r := New(mgr)
	r.Initialize()

	devices := r.Enumerate()
	if len(devices) != 1 {
		t.Fatalf("device count = %d, want 1", len(devices))
	}
	if devices[0].DriverVersion != "" {
		t.Errorf("driver version = %q, want empty", devices[0].DriverVersion)
	}
}

func TestEnumerateUnavailableReturnsFallbackEntry(t *testing.T) {
	mgr := &stubManager{initErr: fmt.Errorf("library not found")}
	r := New(mgr)
	r.probe = func() string { return "Virtual Display Adapter" }

	if status := r.Initialize(); status != types.BackendUnavailable {
		t.Fatalf("Initialize = %v, want unavailable", status)
	}

	devices := r.Enumerate()
	if len(devices) != 1 {
		t.Fatalf("device count = %d, want exactly 1", len(devices))
	}
	dev := devices[0]
	if dev.Name != "Virtual Display Adapter" {
		t.Errorf("name = %q, want probe result", dev.Name)
	}
	if dev.VendorCapable {
		t.Error("fallback device must not be vendor capable")
	}
	if dev.Temperature != 0 || dev.MemoryTotal != 0 || dev.PowerLimit != 0 {
		t.Errorf("fallback telemetry not zero: %+v", dev)
	}
}

func TestShutdownSafeWithoutInitialize(t *testing.T) {
	mgr := &stubManager{}
	r := New(mgr)

	r.Shutdown()
	r.Shutdown()

	if mgr.shutdownCalls != 2 {
		t.Errorf("shutdown calls = %d, want 2", mgr.shutdownCalls)
	}
	if r.Status() != types.BackendUnavailable {
		t.Errorf("status after shutdown = %v, want unavailable", r.Status())
	}
}
