package workers

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/errors"
	"sync"
	"sync/atomic"
	"time"
)

const defaultRestartDelay = 200 * time.Millisecond

// Supervisor runs workers in their own goroutines and restarts the ones that
// fail or panic, until its context ends. A worker returning nil is done for good.
type Supervisor struct {
	log          *slog.Logger
	restartDelay time.Duration
	workers      []contract.Worker
	wg           sync.WaitGroup
	restarts     atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSupervisor returns a supervisor waiting restartDelay between two runs of
// a failed worker. A zero delay means 200ms.
func NewSupervisor(log *slog.Logger, restartDelay time.Duration) *Supervisor {
	if restartDelay <= 0 {
		restartDelay = defaultRestartDelay
	}
	return &Supervisor{log: log, restartDelay: restartDelay}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker and blocks until all of them have returned.
// Canceling ctx or calling Stop ends them.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start supervises one worker. A panic is recovered and reported as
// ErrWorkerPanic, then the worker is run again after the restart delay.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()
		for {
			if ctx.Err() != nil {
				s.log.Info("Worker stopping", "name", name)
				return
			}

			err := s.runOnce(ctx, worker)
			if err == nil {
				s.log.Info("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.restarts.Add(1)
			s.log.Warn("Worker failed, restarting", "name", name, "error", err, "delay", s.restartDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartDelay):
			}
		}
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels every worker. Run returns once they are all gone.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Restarts counts worker restarts since the supervisor was created.
func (s *Supervisor) Restarts() int {
	return int(s.restarts.Load())
}
