package db

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"GPUTune/pkg/config"
	"GPUTune/pkg/types"
)

var log = logrus.WithField("component", "InfluxDB")

type InfluxDB struct {
	client influxdb2.Client
	org    string
	bucket string

	buffer    []*types.DeviceSample
	bufferMu  sync.Mutex
	batchSize int

	stopCh chan struct{}
}

func NewInfluxDB(cfg *config.DBConfig) (*InfluxDB, error) {
	client := influxdb2.NewClient(cfg.InfluxDB.URL, cfg.InfluxDB.Token)
	if _, err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping InfluxDB: %v", err)
	}

	db := &InfluxDB{
		client:    client,
		org:       cfg.InfluxDB.Org,
		bucket:    cfg.InfluxDB.Bucket,
		batchSize: cfg.BatchSize,
		buffer:    make([]*types.DeviceSample, 0, cfg.BatchSize),
		stopCh:    make(chan struct{}),
	}

	flushTime, err := time.ParseDuration(cfg.FlushTime)
	if err != nil {
		log.Errorf("invalid flush interval: %v, using default 30s", err)
		flushTime = 30 * time.Second
	}
	go db.periodicFlush(flushTime)

	return db, nil
}

func (db *InfluxDB) SaveDeviceSample(sample *types.DeviceSample) error {
	db.bufferMu.Lock()
	db.buffer = append(db.buffer, sample)

	if len(db.buffer) >= db.batchSize {
		buffer := db.buffer
		db.buffer = make([]*types.DeviceSample, 0, db.batchSize)
		db.bufferMu.Unlock()
		return db.writeBatch(buffer)
	}

	db.bufferMu.Unlock()
	return nil
}

func (db *InfluxDB) writeBatch(samples []*types.DeviceSample) error {
	if len(samples) == 0 {
		return nil
	}

	writeAPI := db.client.WriteAPIBlocking(db.org, db.bucket)
	points := make([]*write.Point, 0, len(samples))

	for _, sample := range samples {
		tags := map[string]string{
			"hostname": sample.Hostname,
			"index":    strconv.Itoa(sample.Index),
			"name":     sample.Name,
		}

		fields := map[string]interface{}{
			"temperature_c":      sample.Temperature,
			"memory_used_mb":     sample.MemoryUsed,
			"memory_total_mb":    sample.MemoryTotal,
			"gpu_utilization":    sample.GPUUtil,
			"memory_utilization": sample.MemoryUtil,
			"power_usage_w":      sample.PowerUsage,
			"power_limit_w":      sample.PowerLimit,
			"core_clock_mhz":     sample.CoreClock,
			"memory_clock_mhz":   sample.MemoryClock,
			"fan_speed":          sample.FanSpeed,
		}

		points = append(points, influxdb2.NewPoint("gpu_telemetry", tags, fields, sample.Timestamp))
	}

	if err := writeAPI.WritePoint(context.Background(), points...); err != nil {
		return fmt.Errorf("failed to write telemetry batch: %v", err)
	}

	log.Debugf("wrote telemetry batch, count: %d", len(points))
	return nil
}

func (db *InfluxDB) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			db.flush()
		case <-db.stopCh:
			return
		}
	}
}

func (db *InfluxDB) flush() {
	db.bufferMu.Lock()
	buffer := db.buffer
	db.buffer = make([]*types.DeviceSample, 0, db.batchSize)
	db.bufferMu.Unlock()

	if len(buffer) == 0 {
		return
	}
	if err := db.writeBatch(buffer); err != nil {
		log.Errorf("periodic flush failed: %v", err)
	}
}

func (db *InfluxDB) Close() error {
	close(db.stopCh)
	db.flush()
	db.client.Close()
	return nil
}
