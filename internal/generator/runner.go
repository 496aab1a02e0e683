// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobRunner is what the Runner executes. *Orchestrator satisfies it.
type JobRunner interface {
	Run(ctx context.Context, jobID uuid.UUID) error
}

// Runner executes generation runs in the background, detached from the
// HTTP request that triggered them. At most one run per job is in flight
// at a time; duplicate starts while a run is active are ignored.
type Runner struct {
	orch   JobRunner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewRunner(orch JobRunner, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		orch:     orch,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Start launches a generation run for the job and returns immediately.
// It reports false when a run for the same job is already in flight or
// the runner is shutting down.
func (r *Runner) Start(jobID uuid.UUID) bool {
	if r.ctx.Err() != nil {
		return false
	}

	r.mu.Lock()
	if _, busy := r.inFlight[jobID]; busy {
		r.mu.Unlock()
		return false
	}
	r.inFlight[jobID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inFlight, jobID)
			r.mu.Unlock()
		}()

		if err := r.orch.Run(r.ctx, jobID); err != nil {
			r.logger.Error("generation run failed", "job_id", jobID, "error", err)
		}
	}()
	return true
}

// Running reports whether a run for the job is currently in flight.
func (r *Runner) Running(jobID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inFlight[jobID]
	return busy
}

// Shutdown cancels in-flight runs and waits up to timeout for them to
// finish their failure handling. Runs interrupted here still refund their
// locked credits because failure writes use a detached context.
func (r *Runner) Shutdown(timeout time.Duration) {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("all generation runs drained")
	case <-time.After(timeout):
		r.logger.Error("runner shutdown timed out", "timeout", timeout)
	}
}
