package db

import (
	"GPUTune/pkg/types"
)

type DBInterface interface {
	SaveDeviceSample(*types.DeviceSample) error
	Close() error
}
