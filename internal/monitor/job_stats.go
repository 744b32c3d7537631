package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// JobStats accumulates the outcome of one background job's runs.
type JobStats struct {
	Name      string     `json:"name"`
	Runs      int64      `json:"runs"`
	Failures  int64      `json:"failures"`
	Processed int64      `json:"processed"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastTook  string     `json:"last_took,omitempty"`
}

// StatsReporter tracks job run outcomes and periodically publishes them
// together with host CPU and memory usage.
type StatsReporter struct {
	logger   *zap.Logger
	js       nats.JetStreamContext
	interval time.Duration
	mu       sync.RWMutex
	jobs     map[string]*JobStats
	stop     chan struct{}
}

// NewStatsReporter creates a new stats reporter
func NewStatsReporter(js nats.JetStreamContext, interval time.Duration, logger *zap.Logger) *StatsReporter {
	return &StatsReporter{
		logger:   logger.Named("stats-reporter"),
		js:       js,
		interval: interval,
		jobs:     make(map[string]*JobStats),
		stop:     make(chan struct{}),
	}
}

// Start ensures the metrics stream exists and begins the reporting loop.
func (r *StatsReporter) Start(ctx context.Context) error {
	r.logger.Info("Starting stats reporter")

	_, err := r.js.StreamInfo("METRICS")
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return fmt.Errorf("failed to get stream info: %w", err)
		}
		_, err = r.js.AddStream(&nats.StreamConfig{
			Name:     "METRICS",
			Subjects: []string{"metrics.*"},
			Storage:  nats.FileStorage,
			MaxAge:   24 * time.Hour,
			MaxMsgs:  -1,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		r.logger.Info("Created metrics stream", zap.String("name", "METRICS"))
	}

	go r.reportLoop(ctx)
	return nil
}

// Stop stops the stats reporter
func (r *StatsReporter) Stop() {
	r.logger.Info("Stopping stats reporter")
	close(r.stop)
}

// RecordRun records the outcome of one job run.
func (r *StatsReporter) RecordRun(name string, processed int, took time.Duration, err error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.jobs[name]
	if !ok {
		stats = &JobStats{Name: name}
		r.jobs[name] = stats
	}
	stats.Runs++
	stats.Processed += int64(processed)
	if err != nil {
		stats.Failures++
	}
	stats.LastRunAt = &now
	stats.LastTook = took.String()
}

// GetStats returns a snapshot of the per-job stats.
func (r *StatsReporter) GetStats() map[string]JobStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]JobStats, len(r.jobs))
	for name, stats := range r.jobs {
		out[name] = *stats
	}
	return out
}

func (r *StatsReporter) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *StatsReporter) report() {
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err != nil {
		r.logger.Error("Failed to get CPU usage", zap.Error(err))
		return
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		r.logger.Error("Failed to get memory usage", zap.Error(err))
		return
	}

	snapshot := struct {
		Timestamp   time.Time  `json:"timestamp"`
		CPUUsage    float64    `json:"cpu_usage"`
		MemoryUsage float64    `json:"memory_usage"`
		Jobs        []JobStats `json:"jobs"`
	}{
		Timestamp:   time.Now(),
		CPUUsage:    cpuPercent[0],
		MemoryUsage: memInfo.UsedPercent,
	}

	r.mu.RLock()
	for _, stats := range r.jobs {
		snapshot.Jobs = append(snapshot.Jobs, *stats)
	}
	r.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Error("Failed to marshal stats", zap.Error(err))
		return
	}

	if _, err := r.js.Publish("metrics.system", data); err != nil {
		r.logger.Error("Failed to publish stats", zap.Error(err))
		return
	}

	r.logger.Debug("Stats reported",
		zap.Float64("cpu_usage", snapshot.CPUUsage),
		zap.Float64("memory_usage", snapshot.MemoryUsage),
		zap.Int("job_count", len(snapshot.Jobs)))
}
