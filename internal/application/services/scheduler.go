package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Job is a named background task run on a cron spec
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs background jobs. A job still running when its next tick
// fires is skipped, and a panicking job is recovered.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
}

// NewScheduler registers jobs on a new cron scheduler
func NewScheduler(location *time.Location, jobs ...Job) (*Scheduler, error) {
	if location == nil {
		location = time.Local
	}
	logger := cronLogger{logger: log.With().Str("component", "scheduler").Logger()}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{cron: c, jobs: make(map[string]cron.EntryID, len(jobs))}
	for _, job := range jobs {
		job := job
		id, err := c.AddFunc(job.Spec, func() { runJob(job) })
		if err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
		s.jobs[job.Name] = id
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop stops scheduling and waits for running jobs or ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next run time of a job
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func runJob(job Job) {
	ctx := context.Background()
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	log.Info().Str("job", job.Name).Msg("job started")
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Dur("duration", time.Since(start)).Msg("job failed")
		return
	}
	log.Info().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("job finished")
}

// CurrencySyncJob syncs every active tenant's rates
func CurrencySyncJob(spec string, svc *CurrencySyncService) Job {
	return Job{
		Name:    "currency-sync",
		Spec:    spec,
		Timeout: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			results, err := svc.SyncAll(ctx)
			if err != nil {
				return err
			}
			total := 0
			for _, r := range results {
				total += r.Updated
			}
			log.Info().Int("tenants", len(results)).Int("rates_updated", total).Msg("currency sync complete")
			return nil
		},
	}
}

// MetaLeadSyncJob imports Lead Ads submissions for every due tenant
func MetaLeadSyncJob(spec string, svc *MetaLeadSyncService) Job {
	return Job{
		Name:    "meta-lead-sync",
		Spec:    spec,
		Timeout: 4 * time.Minute,
		Run: func(ctx context.Context) error {
			results, err := svc.SyncAll(ctx)
			if err != nil {
				return err
			}
			stored := 0
			for _, r := range results {
				stored += r.Stored
			}
			log.Info().Int("configs", len(results)).Int("leads_stored", stored).Msg("meta lead sync complete")
			return nil
		},
	}
}

// RateCacheWarmJob rewrites cached rates from storage, restarting their TTL
func RateCacheWarmJob(spec string, warmer *RateCacheWarmer) Job {
	return Job{
		Name:    "rate-cache-warm",
		Spec:    spec,
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := warmer.WarmAll(ctx)
			return err
		},
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
