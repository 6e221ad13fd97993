package registry

import (
	"github.com/sirupsen/logrus"

	"GPUTune/pkg/backend"
	"GPUTune/pkg/types"
)

var log = logrus.WithField("component", "Registry")

// Registry discovers the GPUs visible to the process and produces their
// static identity. It owns the backend lifecycle: a host without a
// supported GPU or driver degrades to read-only mode instead of failing.
type Registry struct {
	manager backend.Manager
	status  types.BackendStatus
	probe   func() string
}

func New(manager backend.Manager) *Registry {
	return &Registry{
		manager: manager,
		status:  types.BackendUnavailable,
		probe:   backend.ProbeFallbackName,
	}
}

func (r *Registry) Initialize() types.BackendStatus {
	if err := r.manager.Init(); err != nil {
		log.Infof("backend init failed or no supported GPU present: %v, running in read-only mode", err)
		r.status = types.BackendUnavailable
		return r.status
	}
	r.status = types.BackendAvailable
	return r.status
}

func (r *Registry) Status() types.BackendStatus {
	return r.status
}

// Enumerate replaces the device list wholesale. A per-device query failure
// skips that device; enumeration itself never fails.
func (r *Registry) Enumerate() []*types.Device {
	if r.status != types.BackendAvailable {
		return []*types.Device{types.NewDevice(r.probe(), "", false)}
	}

	count, err := r.manager.DeviceCount()
	if err != nil {
		log.Errorf("failed to get device count: %v", err)
		return []*types.Device{}
	}

	driverVersion, err := r.manager.DriverVersion()
	if err != nil {
		log.Warnf("failed to get driver version: %v", err)
		driverVersion = ""
	}

	devices := make([]*types.Device, 0, count)
	for i := 0; i < count; i++ {
		device, err := r.manager.Device(i)
		if err != nil {
			log.Warnf("skipping device %d: %v", i, err)
			continue
		}

		name, err := device.Name()
		if err != nil {
			log.Warnf("skipping device %d: %v", i, err)
			continue
		}

		devices = append(devices, types.NewDevice(name, driverVersion, true))
	}

	if count > 0 {
		log.Infof("detected %d GPUs, %d enumerated", count, len(devices))
	} else {
		log.Info("no GPUs detected")
	}

	return devices
}

// Shutdown is idempotent and safe to call even if Initialize failed or
// was never called.
func (r *Registry) Shutdown() {
	if err := r.manager.Shutdown(); err != nil {
		log.Errorf("error shutting down backend: %v", err)
	}
	r.status = types.BackendUnavailable
}
