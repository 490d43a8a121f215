package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultInterval = 15 * time.Minute

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	// JobTimeout bounds a single job run. Defaults to Interval.
	JobTimeout time.Duration
}

// Service runs the registered jobs every Interval. A cycle only proceeds on
// the replica holding Lock.
type Service struct {
	logg       *logger.Logger
	jobs       *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("cron: logger required")
	case p.Lock == nil:
		return nil, errors.New("cron: lock required")
	}
	s := &Service{
		logg:       p.Logger,
		jobs:       p.Registry,
		lock:       p.Lock,
		metrics:    p.Metrics,
		interval:   p.Interval,
		jobTimeout: p.JobTimeout,
	}
	if s.jobs == nil {
		s.jobs = NewRegistry()
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.jobTimeout <= 0 {
		s.jobTimeout = s.interval
	}
	return s, nil
}

// Run starts a cycle right away and then one per tick. It returns ctx.Err()
// once ctx is done; cycle errors are logged, not returned.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job once while holding the lock. A failing job does not
// stop the ones after it; all failures come back combined.
func (s *Service) RunOnce(ctx context.Context) (err error) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		s.logg.Info(ctx, "cron.skipped_locked")
		return nil
	}
	defer func() {
		if releaseErr := s.lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			err = multierr.Append(err, fmt.Errorf("release lock: %w", releaseErr))
		}
	}()

	for _, job := range s.jobs.Jobs() {
		if ctx.Err() != nil {
			return multierr.Append(err, ctx.Err())
		}
		if jobErr := s.runJob(ctx, job); jobErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", job.Name(), jobErr))
		}
	}
	return err
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	started := time.Now()
	err := job.Run(runCtx)
	took := time.Since(started)
	s.metrics.Observe(job.Name(), took, err)

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron.job_failed", err)
		return err
	}
	s.logg.Info(ctx, "cron.job_done")
	return nil
}
