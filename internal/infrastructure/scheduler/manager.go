// Package scheduler runs the periodic maintenance jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	defaultSweepInterval = 24 * time.Hour
	reconcileInterval    = 5 * time.Minute
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager initializes gocron with the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log.Named("scheduler"),
	}, nil
}

// ========================================
// Subscription Jobs (start immediately)
// ========================================

// RegisterSubscriptionJobs schedules the expiry sweeper. A non-positive
// interval selects 24h.
func (m *SchedulerManager) RegisterSubscriptionJobs(expireSubscriptionsJob BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runBatch(ctx, "expired subscriptions", expireSubscriptionsJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("subscription", "expire"),
		gocron.WithName("subscription-expire"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered subscription jobs", "interval", interval.String())
	return nil
}

// ========================================
// Order Jobs (5 min interval)
// ========================================

// RegisterOrderJobs schedules polling of pending orders for gateways that
// can be queried.
func (m *SchedulerManager) RegisterOrderJobs(reconcileJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(reconcileInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), reconcileInterval)
			defer cancel()
			m.runBatch(ctx, "pending orders", reconcileJob)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("order", "reconcile"),
		gocron.WithName("order-reconcile"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered order jobs", "interval", reconcileInterval.String())
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, what string, job BatchJob) {
	m.logger.Debugw("batch job started", "job", what)

	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("batch job failed",
			"job", what,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("batch job processed items",
			"job", what,
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("batch job found nothing to process",
			"job", what,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
