package gputune

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"GPUTune/internal/util"
	"GPUTune/pkg/hostinfo"
	"GPUTune/pkg/types"
)

func deviceStatus(dev *types.Device) string {
	if dev.VendorCapable {
		return "Active"
	}
	return "Limited"
}

func RenderTelemetryTable(w io.Writer, devices []*types.Device) {
	table := tablewriter.NewWriter(w)
	util.SetBorderlessTable(table)

	table.SetHeader([]string{"IDX", "NAME", "TEMP", "GPU%", "MEM%", "MEMORY(MB)",
		"POWER(W)", "CORE(MHZ)", "MEM(MHZ)", "FAN%", "STATUS"})

	for i, dev := range devices {
		table.Append([]string{
			strconv.Itoa(i),
			dev.Name,
			fmt.Sprintf("%d", dev.Temperature),
			fmt.Sprintf("%d", dev.GPUUtil),
			fmt.Sprintf("%d", dev.MemoryUtil),
			fmt.Sprintf("%d/%d", dev.MemoryUsed, dev.MemoryTotal),
			fmt.Sprintf("%d/%d", dev.PowerUsage, dev.PowerLimit),
			strconv.Itoa(dev.CoreClock),
			strconv.Itoa(dev.MemoryClock),
			strconv.Itoa(dev.FanSpeed),
			deviceStatus(dev),
		})
	}

	table.Render()
}

func RenderDeviceList(w io.Writer, devices []*types.Device) {
	table := tablewriter.NewWriter(w)
	util.SetBorderTable(table)

	table.SetHeader([]string{"IDX", "NAME", "MEMORY(MB)", "DRIVER", "STATUS"})

	for i, dev := range devices {
		table.Append([]string{
			strconv.Itoa(i),
			dev.Name,
			strconv.Itoa(dev.MemoryTotal),
			dev.DriverVersion,
			deviceStatus(dev),
		})
	}

	table.Render()
}

func RenderHostSummary(w io.Writer, status types.BackendStatus, deviceCount int) {
	summary := hostinfo.NewReader().GetSummary()

	table := tablewriter.NewWriter(w)
	util.SetBorderlessTable(table)

	table.Append([]string{"Hostname:", summary.Hostname})
	table.Append([]string{"OS:", fmt.Sprintf("%s (%s)", summary.Platform, summary.KernelVersion)})
	table.Append([]string{"CPU:", fmt.Sprintf("%s, %d threads", summary.CPUModel, summary.CPUCores)})
	table.Append([]string{"Memory:", fmt.Sprintf("%.1f/%.1f GB", summary.MemoryUsed, summary.MemoryTotal)})
	table.Append([]string{"Load:", fmt.Sprintf("%.2f %.2f %.2f", summary.Load1, summary.Load5, summary.Load15)})
	table.Append([]string{"Backend:", status.String()})
	table.Append([]string{"GPUs:", strconv.Itoa(deviceCount)})

	table.Render()
}

func RenderTargets(w io.Writer, index int, dev *types.Device) {
	fmt.Fprintf(w, "Tuning targets for GPU %d (%s):\n", index, dev.Name)

	table := tablewriter.NewWriter(w)
	util.SetBorderlessTable(table)

	table.Append([]string{"Core Clock:", fmt.Sprintf("%d MHz", dev.Tuning.CoreClock)})
	table.Append([]string{"Memory Clock:", fmt.Sprintf("%d MHz", dev.Tuning.MemoryClock)})
	table.Append([]string{"Power Limit:", fmt.Sprintf("%d%%", dev.Tuning.PowerLimit)})

	curve := ""
	for i, p := range dev.Tuning.FanCurve {
		if i > 0 {
			curve += ", "
		}
		curve += fmt.Sprintf("%dC:%d%%", p.Temp, p.Duty)
	}
	table.Append([]string{"Fan Curve:", curve})

	table.Render()
}
