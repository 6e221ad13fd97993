package gputune

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"GPUTune/internal/util"
	"GPUTune/pkg/backend"
	"GPUTune/pkg/config"
	"GPUTune/pkg/db"
	"GPUTune/pkg/monitor"
	"GPUTune/pkg/types"
)

const defaultConfigPath = "/etc/gputune/config.yaml"

func loadConfig() (*config.Config, util.GpuTuneCmdError) {
	path := FlagConfigFilePath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, util.ErrorCmdArg
	}

	util.InitLogger(cfg.Log.Level)
	config.PrintConfig(cfg)
	return cfg, util.ErrorSuccess
}

func newMonitor() *monitor.Monitor {
	return monitor.NewMonitor(backend.NewNVMLManager())
}

// Watch drives the refresh cadence: one RefreshAll per interval tick,
// rendered as a telemetry table. The monitor itself has no timer.
func Watch() util.GpuTuneCmdError {
	cfg, code := loadConfig()
	if code != util.ErrorSuccess {
		return code
	}

	interval, err := time.ParseDuration(cfg.Monitor.SamplePeriod)
	if err != nil {
		interval = time.Second
	}
	if FlagInterval != "" {
		interval, err = time.ParseDuration(FlagInterval)
		if err != nil || interval <= 0 {
			log.Errorf("invalid interval %q", FlagInterval)
			return util.ErrorCmdArg
		}
	}

	m := newMonitor()
	defer m.Shutdown()

	var sink db.DBInterface
	if cfg.DB.Enabled {
		sink, err = db.NewDatabase(cfg.DB)
		if err != nil {
			log.Warnf("history sink disabled: %v", err)
		} else {
			defer sink.Close()
		}
	}

	hostname, _ := os.Hostname()
	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var iterations uint64
	for range ticker.C {
		// Devices that failed enumeration at startup may come back.
		if m.Status() == types.BackendAvailable && len(m.Devices()) == 0 {
			m.RefreshDevices()
		}
		m.RefreshAll()

		if isTerminal {
			fmt.Print("\033[H\033[2J")
		}
		fmt.Printf("Backend: %s    %s\n\n", m.Status(), time.Now().Format("2006-01-02 15:04:05"))
		RenderTelemetryTable(os.Stdout, m.Devices())

		if sink != nil {
			for i, dev := range m.Devices() {
				if !dev.VendorCapable {
					continue
				}
				if err := sink.SaveDeviceSample(types.NewDeviceSample(hostname, i, dev)); err != nil {
					log.Warnf("failed to record sample: %v", err)
				}
			}
		}

		iterations++
		if FlagIterations > 0 && iterations >= FlagIterations {
			break
		}
	}

	return util.ErrorSuccess
}

func List() util.GpuTuneCmdError {
	if _, code := loadConfig(); code != util.ErrorSuccess {
		return code
	}

	m := newMonitor()
	defer m.Shutdown()

	m.RefreshAll()
	RenderDeviceList(os.Stdout, m.Devices())
	return util.ErrorSuccess
}

func Info() util.GpuTuneCmdError {
	if _, code := loadConfig(); code != util.ErrorSuccess {
		return code
	}

	m := newMonitor()
	defer m.Shutdown()

	RenderHostSummary(os.Stdout, m.Status(), len(m.Devices()))
	return util.ErrorSuccess
}

func Apply() util.GpuTuneCmdError {
	if _, code := loadConfig(); code != util.ErrorSuccess {
		return code
	}

	settings := types.TuningSettings{
		CoreClock:   FlagCoreClock,
		MemoryClock: FlagMemoryClock,
		PowerLimit:  FlagPowerLimit,
		FanCurve:    types.DefaultFanCurve(),
	}

	if FlagFanCurve != "" {
		curve, err := parseFanCurve(FlagFanCurve)
		if err != nil {
			log.Errorf("invalid fan curve: %v", err)
			return util.ErrorCmdArg
		}
		settings.FanCurve = curve
	}

	m := newMonitor()
	defer m.Shutdown()

	if m.Status() != types.BackendAvailable {
		log.Error("management backend is unavailable, tuning is disabled")
		return util.ErrorBackend
	}
	if FlagGpuIndex < 0 || FlagGpuIndex >= len(m.Devices()) {
		log.Errorf("GPU index %d out of range, %d devices present", FlagGpuIndex, len(m.Devices()))
		return util.ErrorCmdArg
	}

	// Power-limit percentages resolve against live telemetry.
	m.RefreshAll()

	if !m.ApplySettings(FlagGpuIndex, settings) {
		log.Error("failed to apply settings, make sure gputune runs with root privileges")
		return util.ErrorBackend
	}

	fmt.Printf("Settings applied to GPU %d (%s)\n", FlagGpuIndex, m.Devices()[FlagGpuIndex].Name)
	return util.ErrorSuccess
}

func Reset() util.GpuTuneCmdError {
	if _, code := loadConfig(); code != util.ErrorSuccess {
		return code
	}

	m := newMonitor()
	defer m.Shutdown()

	m.RefreshAll()

	if !m.ResetToDefault(FlagGpuIndex) {
		log.Errorf("GPU index %d out of range, %d devices present", FlagGpuIndex, len(m.Devices()))
		return util.ErrorCmdArg
	}

	RenderTargets(os.Stdout, FlagGpuIndex, m.Devices()[FlagGpuIndex])
	return util.ErrorSuccess
}

// parseFanCurve maps five duty percentages onto the default curve
// temperatures. The ordering invariant is enforced here, at the edit
// boundary.
func parseFanCurve(spec string) (types.FanCurve, error) {
	curve := types.DefaultFanCurve()

	parts := strings.Split(spec, ",")
	if len(parts) != len(curve) {
		return curve, fmt.Errorf("expected %d duty values, got %d", len(curve), len(parts))
	}

	for i, part := range parts {
		duty, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return curve, fmt.Errorf("duty value %q is not an integer", part)
		}
		curve[i].Duty = duty
	}

	if err := curve.Validate(); err != nil {
		return curve, err
	}
	return curve, nil
}
