package util

type GpuTuneCmdError = int

const (
	ErrorSuccess GpuTuneCmdError = 0
	ErrorGeneric GpuTuneCmdError = 1
	ErrorCmdArg  GpuTuneCmdError = 2
	ErrorBackend GpuTuneCmdError = 3
)
