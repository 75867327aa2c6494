package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// OnlineCounter exposes the size of the presence registry without giving the
// telemetry worker access to the registry itself.
type OnlineCounter interface {
	Online() int
}

// TelemetryWorker periodically logs process health (CPU, RSS) together with
// the number of connected users. Pure observability, no side effects.
type TelemetryWorker struct {
	log      *slog.Logger
	presence OnlineCounter
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, presence OnlineCounter, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, presence: presence, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Process telemetry",
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"online_users", w.presence.Online())
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
