package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/observability"
)

// Ensure *StatsWorker implements the contract.Worker interface at
// compile time.
var _ contract.Worker = (*StatsWorker)(nil)

// StatsWorker periodically refreshes the monitoring snapshot and samples
// the server process's own CPU and RAM usage.
type StatsWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, monitor: monitor, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Debug("Error while reading process cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Debug("Error while reading process ram usage", "err", err)
				continue
			}
			w.monitor.SetProcessUsage(cpu, ram)
			w.monitor.Refresh()
		}
	}
}
