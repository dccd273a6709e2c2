package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/rubentanahara/chat-net-8/domain/event"
)

// TelemetryWorker periodically logs pipeline occupancy and the broker's
// own resource usage. Pure observability, no behavior depends on it.
type TelemetryWorker struct {
	Log            *slog.Logger
	events         chan event.DomainEvent
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, events chan event.DomainEvent, metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{Log: log, events: events, metricInterval: metricInterval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.Log.Debug("Failed to collect self stats", "err", err)
				continue
			}
			w.Log.Info("Broker telemetry",
				"event_queue_len", len(w.events),
				"event_queue_cap", cap(w.events),
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
