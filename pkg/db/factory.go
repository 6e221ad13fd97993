package db

import (
	"fmt"

	"GPUTune/pkg/config"
)

func NewDatabase(cfg config.DBConfig) (DBInterface, error) {
	switch cfg.Type {
	case "influxdb":
		if cfg.InfluxDB == nil {
			return nil, fmt.Errorf("influxdb config is nil")
		}
		return NewInfluxDB(&cfg)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
