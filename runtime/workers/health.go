package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Gauge reads one named value for the health log line.
type Gauge struct {
	Name string
	Read func() int
}

// HealthWorker logs the daemon process usage along with its gauges every interval.
type HealthWorker struct {
	log      *slog.Logger
	interval time.Duration
	gauges   []Gauge
}

func NewHealthWorker(log *slog.Logger, interval time.Duration, gauges ...Gauge) *HealthWorker {
	return &HealthWorker{log: log, interval: interval, gauges: gauges}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.log.Info("Health", w.snapshot(p)...)
		}
	}
}

func (w *HealthWorker) snapshot(p *process.Process) []any {
	var attrs []any
	if cpu, err := p.CPUPercent(); err == nil {
		attrs = append(attrs, "cpu", cpu)
	} else {
		w.log.Debug("Error while reading process cpu usage", "error", err)
	}
	if ram, err := p.MemoryPercent(); err == nil {
		attrs = append(attrs, "ram", ram)
	} else {
		w.log.Debug("Error while reading process ram usage", "error", err)
	}
	for _, g := range w.gauges {
		attrs = append(attrs, g.Name, g.Read())
	}
	return attrs
}
