// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package installer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/backup"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Step is one unit of installation work with an optional undo action.
//
// Apply performs the forward action. Rollback undoes it when a later step
// fails; it may be nil when the backup session already covers the step's
// effects (config-file writes restore through RestoreAll). Rollback must be
// idempotent and must not fail when its target is already gone.
type Step struct {
	// Name identifies the step in logs and reports.
	Name string

	// Apply performs the forward action.
	Apply func(ctx context.Context) error

	// Rollback undoes Apply. May be nil.
	Rollback func(ctx context.Context) error

	// Timeout overrides the runner default for this step. Zero uses the
	// default.
	Timeout time.Duration
}

// RunnerConfig configures step execution.
type RunnerConfig struct {
	// StepTimeout is the default per-step timeout.
	// Default: 120 seconds (package installs are slow on cold caches).
	StepTimeout time.Duration

	// RollbackTimeout bounds each rollback action.
	// Default: 30 seconds.
	RollbackTimeout time.Duration
}

// RollbackError records one failed rollback action.
type RollbackError struct {
	Step string
	Err  error
}

// Report is the outcome of one Run.
//
// On success Completed lists every step and the remaining fields are zero.
// On failure FailedStep and Err identify the failure, RollbackErrors lists
// rollback actions that themselves failed, and Restore carries the backup
// session's restoration result.
type Report struct {
	Completed      []string
	FailedStep     string
	Err            error
	RollbackErrors []RollbackError
	Restore        *backup.RestoreResult
	Duration       time.Duration
}

// Runner executes installation steps with rollback on failure.
//
// # Description
//
// Steps run sequentially, each under its own timeout. On the first failure
// the runner rolls back completed steps in reverse order (under a fresh
// context, so a cancelled parent cannot abandon cleanup) and then asks the
// backup session to restore every captured file. Rollback failures are
// collected, never fatal: restoration must reach every step.
//
// # Thread Safety
//
// Runner methods are serialized by an internal mutex, but a runner holds
// one installation's state; build a new one per installation.
type Runner struct {
	config    RunnerConfig
	steps     []Step
	completed []Step
	backups   *backup.Session
	log       *logging.Logger
	mu        sync.Mutex
}

// NewRunner creates a runner bound to a backup session. Zero config fields
// get defaults; a nil logger falls back to the package default.
func NewRunner(session *backup.Session, logger *logging.Logger, config RunnerConfig) *Runner {
	if config.StepTimeout <= 0 {
		config.StepTimeout = 120 * time.Second
	}
	if config.RollbackTimeout <= 0 {
		config.RollbackTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		config:  config,
		backups: session,
		log:     logger,
	}
}

// Add appends a step. Steps run in the order they are added.
func (r *Runner) Add(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

// AddAll appends steps in order.
func (r *Runner) AddAll(steps []Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, steps...)
}

// StepNames returns the names of all added steps in execution order.
func (r *Runner) StepNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes every step.
//
// # Outputs
//
//   - *Report: always non-nil; on failure it carries rollback and restore
//     details
//   - error: nil when every step succeeded, otherwise the first step
//     failure wrapped with the step name
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.completed = r.completed[:0]
	report := &Report{}

	for _, step := range r.steps {
		if ctx.Err() != nil {
			report.FailedStep = step.Name
			report.Err = fmt.Errorf("installation cancelled: %w", ctx.Err())
			r.unwind(report)
			report.Duration = time.Since(start)
			return report, report.Err
		}

		if err := r.applyStep(ctx, step); err != nil {
			report.FailedStep = step.Name
			report.Err = fmt.Errorf("step %q: %w", step.Name, err)
			r.unwind(report)
			report.Duration = time.Since(start)
			return report, report.Err
		}

		r.completed = append(r.completed, step)
		report.Completed = append(report.Completed, step.Name)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// applyStep runs one step under its timeout. The step runs in a goroutine
// so a function that ignores its context still cannot hang the runner.
func (r *Runner) applyStep(ctx context.Context, step Step) error {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = r.config.StepTimeout
	}

	r.log.Info("applying step", "step", step.Name)
	start := time.Now()

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- step.Apply(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			r.log.Error("step failed", "step", step.Name, "duration", time.Since(start), "error", err)
			return err
		}
		r.log.Info("step completed", "step", step.Name, "duration", time.Since(start))
		return nil
	case <-stepCtx.Done():
		return fmt.Errorf("timed out after %v", timeout)
	}
}

// unwind rolls back completed steps in reverse order and then restores the
// backup session. Runs under a background context so cleanup survives
// parent cancellation.
func (r *Runner) unwind(report *Report) {
	if len(r.completed) > 0 {
		r.log.Warn("rolling back completed steps", "count", len(r.completed))
	}

	budget := r.config.RollbackTimeout * time.Duration(len(r.completed)+1)
	unwindCtx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	for i := len(r.completed) - 1; i >= 0; i-- {
		step := r.completed[i]
		if step.Rollback == nil {
			continue
		}

		stepCtx, stepCancel := context.WithTimeout(unwindCtx, r.config.RollbackTimeout)
		err := step.Rollback(stepCtx)
		stepCancel()

		if err != nil {
			r.log.Warn("rollback failed", "step", step.Name, "error", err)
			report.RollbackErrors = append(report.RollbackErrors, RollbackError{Step: step.Name, Err: err})
			continue
		}
		r.log.Info("rolled back step", "step", step.Name)
	}

	if r.backups != nil {
		restore := r.backups.RestoreAll()
		report.Restore = &restore
		if err := restore.Err(); err != nil {
			r.log.Error("backup restoration incomplete", "error", err)
		}
	}
}
