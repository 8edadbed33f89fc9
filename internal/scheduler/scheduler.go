package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/ferrgo/kestrel/internal/config"
	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/watchdog"
)

// watchdogJob is the distributed lock name for the compliance sweep
const watchdogJob = "compliance_watchdog"

// ErrSweepInFlight is returned by RunNow when another pod holds the sweep lock
var ErrSweepInFlight = fmt.Errorf("a compliance sweep is already in flight")

// Scheduler drives the compliance watchdog on a fixed cron cadence with
// single-flight across pods via a distributed lock. It never retries a failed
// sweep within a tick; the next tick is the retry mechanism.
type Scheduler struct {
	cfg   *config.Config
	dog   *watchdog.Watchdog
	locks *database.LockRepository
	cron  *cron.Cron
	podID string
	wg    sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, dog *watchdog.Watchdog, locks *database.LockRepository) *Scheduler {
	// Pod identifier (hostname in Kubernetes)
	podID, err := os.Hostname()
	if err != nil {
		podID = uuid.New().String() // Fallback to UUID
		slog.Warn("Failed to get hostname, using UUID as pod ID", "pod_id", podID)
	}

	return &Scheduler{
		cfg:   cfg,
		dog:   dog,
		locks: locks,
		podID: podID,
	}
}

// Start registers the cron entry and begins ticking
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.WatchdogEnabled {
		slog.Info("Watchdog is disabled by configuration")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.WatchdogSchedule, func() {
		s.wg.Add(1)
		defer s.wg.Done()
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid watchdog schedule %q: %w", s.cfg.WatchdogSchedule, err)
	}

	slog.Info("Starting watchdog scheduler",
		"pod_id", s.podID,
		"schedule", s.cfg.WatchdogSchedule,
		"lock_ttl", s.cfg.WatchdogLockTTL,
	)

	s.cron.Start()
	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight sweep
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}

	slog.Info("Stopping watchdog scheduler", "pod_id", s.podID)
	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Watchdog scheduler stopped", "pod_id", s.podID)
	case <-ctx.Done():
		slog.Warn("Timeout waiting for in-flight sweep to complete")
	}
}

// RunNow triggers an on-demand sweep, still honoring the single-flight lock.
// Returns ErrSweepInFlight when another pod holds the lock.
func (s *Scheduler) RunNow(ctx context.Context) (*watchdog.Report, error) {
	acquired, err := s.locks.Acquire(ctx, watchdogJob, s.podID, s.cfg.WatchdogLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSweepInFlight
	}
	defer s.release(ctx)

	return s.run(ctx)
}

// sweep is one scheduled tick: acquire the lock, run, release
func (s *Scheduler) sweep(ctx context.Context) {
	acquired, err := s.locks.Acquire(ctx, watchdogJob, s.podID, s.cfg.WatchdogLockTTL)
	if err != nil {
		slog.Error("Failed to acquire watchdog lock", "pod_id", s.podID, "error", err)
		return
	}
	if !acquired {
		slog.Debug("Watchdog lock held by another pod, skipping tick", "pod_id", s.podID)
		return
	}
	defer s.release(ctx)

	if _, err := s.run(ctx); err != nil {
		// Already logged with stage context; the next tick retries
		return
	}
}

// run executes one sweep under an already-held lock
func (s *Scheduler) run(ctx context.Context) (*watchdog.Report, error) {
	runID := uuid.New().String()

	slog.Info("Starting compliance sweep",
		"run_id", runID,
		"pod_id", s.podID,
	)

	report, err := s.dog.Run(ctx, runID)
	if err != nil {
		slog.Error("Compliance sweep failed",
			"run_id", runID,
			"pod_id", s.podID,
			"stage", report.Stage,
			"overdue", report.Overdue,
			"needing_alert", report.NeedingAlert,
			"alerts_created", report.AlertsCreated,
			"duration_ms", report.DurationMs,
			"error", err,
		)
		return report, err
	}

	return report, nil
}

// release releases the sweep lock owned by this pod
func (s *Scheduler) release(ctx context.Context) {
	// Use a fresh context so shutdown cancellation doesn't leak the lock
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.locks.Release(releaseCtx, watchdogJob, s.podID); err != nil {
		slog.Error("Failed to release watchdog lock",
			"pod_id", s.podID,
			"error", err,
		)
	}
}
