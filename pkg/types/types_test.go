package types

import (
	"testing"
)

func TestDefaultFanCurve(t *testing.T) {
	curve := DefaultFanCurve()

	wantTemps := [5]int{30, 50, 65, 75, 85}
	wantDuties := [5]int{30, 40, 50, 70, 85}

	for i, p := range curve {
		if p.Temp != wantTemps[i] || p.Duty != wantDuties[i] {
			t.Errorf("point %d = %+v, want {%d %d}", i, p, wantTemps[i], wantDuties[i])
		}
	}

	if err := curve.Validate(); err != nil {
		t.Errorf("default curve invalid: %v", err)
	}
}

func TestFanCurveValidate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*FanCurve)
		expectErr bool
	}{
		{
			name:   "default",
			mutate: func(*FanCurve) {},
		},
		{
			name: "flat maximum duty",
			mutate: func(c *FanCurve) {
				for i := range c {
					c[i].Duty = 100
				}
			},
		},
		{
			name:      "duty above 100",
			mutate:    func(c *FanCurve) { c[2].Duty = 120 },
			expectErr: true,
		},
		{
			name:      "negative duty",
			mutate:    func(c *FanCurve) { c[0].Duty = -5 },
			expectErr: true,
		},
		{
			name:      "non-ascending temperature",
			mutate:    func(c *FanCurve) { c[3].Temp = c[2].Temp },
			expectErr: true,
		},
		{
			name:      "descending temperature",
			mutate:    func(c *FanCurve) { c[1].Temp = 10 },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			curve := DefaultFanCurve()
			tc.mutate(&curve)
			err := curve.Validate()
			if tc.expectErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.expectErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFanCurveDutyFor(t *testing.T) {
	curve := DefaultFanCurve()

	testCases := []struct {
		temp int
		want int
	}{
		{temp: 20, want: 30}, // below first point
		{temp: 30, want: 30},
		{temp: 49, want: 30},
		{temp: 50, want: 40},
		{temp: 72, want: 50},
		{temp: 85, want: 85},
		{temp: 100, want: 85},
	}

	for _, tc := range testCases {
		if got := curve.DutyFor(tc.temp); got != tc.want {
			t.Errorf("DutyFor(%d) = %d, want %d", tc.temp, got, tc.want)
		}
	}
}

func TestNewDeviceDefaults(t *testing.T) {
	dev := NewDevice("GeForce RTX 4080", "550.54.14", true)

	if dev.Name != "GeForce RTX 4080" || dev.DriverVersion != "550.54.14" || !dev.VendorCapable {
		t.Errorf("identity = %q/%q/%v", dev.Name, dev.DriverVersion, dev.VendorCapable)
	}
	if dev.Temperature != 0 || dev.MemoryTotal != 0 || dev.CoreClock != 0 {
		t.Errorf("telemetry not zero valued: %+v", dev)
	}
	if dev.Tuning.CoreClock != 0 || dev.Tuning.MemoryClock != 0 {
		t.Errorf("clock targets = %d/%d, want unset", dev.Tuning.CoreClock, dev.Tuning.MemoryClock)
	}
	if dev.Tuning.PowerLimit != 100 {
		t.Errorf("power limit target = %d, want 100", dev.Tuning.PowerLimit)
	}
	if dev.Tuning.FanCurve != DefaultFanCurve() {
		t.Errorf("fan curve = %v, want default", dev.Tuning.FanCurve)
	}
}

func TestNewDeviceSample(t *testing.T) {
	dev := NewDevice("GPU 0", "550.54.14", true)
	dev.Temperature = 65
	dev.MemoryUsed = 4096
	dev.MemoryTotal = 8192
	dev.PowerUsage = 150
	dev.PowerLimit = 200

	sample := NewDeviceSample("node-1", 2, dev)

	if sample.Hostname != "node-1" || sample.Index != 2 || sample.Name != "GPU 0" {
		t.Errorf("sample identity = %q/%d/%q", sample.Hostname, sample.Index, sample.Name)
	}
	if sample.Temperature != 65 || sample.MemoryUsed != 4096 || sample.PowerLimit != 200 {
		t.Errorf("sample telemetry = %+v", sample)
	}
	if sample.Timestamp.IsZero() {
		t.Error("sample timestamp not set")
	}
}
