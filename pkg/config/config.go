package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Monitor MonitorConfig `mapstructure:"monitor"`
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
}

type MonitorConfig struct {
	SamplePeriod string `mapstructure:"sample_period"`
}

type DBConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Type      string          `mapstructure:"type"`
	BatchSize int             `mapstructure:"batch_size"`
	FlushTime string          `mapstructure:"flush_interval"`
	InfluxDB  *InfluxDBConfig `mapstructure:"influxdb"`
}

type InfluxDBConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads path if it exists, falling back to defaults for every
// unset key. A missing file is not an error: the tool must start with no
// configuration at all.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaultConfig(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("monitor.sample_period", "1s")

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.type", "influxdb")
	v.SetDefault("db.batch_size", 1)
	v.SetDefault("db.flush_interval", "30s")

	v.SetDefault("log.level", "info")
}

func validateConfig(cfg *Config) error {
	period, err := time.ParseDuration(cfg.Monitor.SamplePeriod)
	if err != nil {
		return fmt.Errorf("invalid sample period %q: %w", cfg.Monitor.SamplePeriod, err)
	}
	if period <= 0 {
		return fmt.Errorf("sample period must be positive")
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	if !cfg.DB.Enabled {
		return nil
	}

	if cfg.DB.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0")
	}

	if cfg.DB.FlushTime == "" {
		return fmt.Errorf("flush interval must be specified")
	}

	switch cfg.DB.Type {
	case "influxdb":
		if cfg.DB.InfluxDB == nil {
			return fmt.Errorf("influxdb configuration is required when type is influxdb")
		}
		if cfg.DB.InfluxDB.URL == "" || cfg.DB.InfluxDB.Token == "" ||
			cfg.DB.InfluxDB.Org == "" || cfg.DB.InfluxDB.Bucket == "" {
			return fmt.Errorf("incomplete influxdb configuration")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.DB.Type)
	}

	return nil
}

func PrintConfig(cfg *Config) {
	log.Debugf("Monitor configuration:")
	log.Debugf("  Sample Period: %v", cfg.Monitor.SamplePeriod)
	log.Debugf("  Log Level: %s", cfg.Log.Level)

	log.Debugf("History sink configuration:")
	log.Debugf("  Enabled: %v", cfg.DB.Enabled)
	if cfg.DB.Enabled {
		log.Debugf("  Type: %s", cfg.DB.Type)
		log.Debugf("  Batch Size: %d", cfg.DB.BatchSize)
		log.Debugf("  Flush Interval: %s", cfg.DB.FlushTime)
		if cfg.DB.InfluxDB != nil {
			log.Debugf("  InfluxDB URL: %s", cfg.DB.InfluxDB.URL)
			log.Debugf("  InfluxDB Org: %s", cfg.DB.InfluxDB.Org)
			log.Debugf("  InfluxDB Bucket: %s", cfg.DB.InfluxDB.Bucket)
		}
	}
}
