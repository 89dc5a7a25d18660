// Package scheduler polls the job queue and runs due jobs with bounded
// concurrency.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rivalwatch/internal/jobs"
	"rivalwatch/internal/model"
	"rivalwatch/internal/storage"
)

// Runner executes one job.
type Runner interface {
	Run(ctx context.Context, job model.Job) error
}

// Recorder observes job outcomes.
type Recorder interface {
	JobProcessed(jobType, status string, d time.Duration)
}

// Job outcomes reported to the Recorder.
const (
	StatusDone   = "done"
	StatusRetry  = "retry"
	StatusFailed = "failed"
)

// Scheduler periodically claims pending jobs and dispatches them.
type Scheduler struct {
	store  storage.Storage
	runner Runner
	log    *slog.Logger
	rec    Recorder

	tick        time.Duration
	concurrency int
	maxAttempts int
	batch       int

	feeds   []string
	planned string
	now     func() time.Time
}

// New creates a Scheduler with a 30-second poll interval.
func New(store storage.Storage, runner Runner, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:       store,
		runner:      runner,
		log:         log,
		tick:        30 * time.Second,
		concurrency: 4,
		maxAttempts: 5,
		batch:       50,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetTickInterval overrides the default poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetConcurrency sets how many jobs run at once.
func (s *Scheduler) SetConcurrency(n int) {
	s.concurrency = max(1, n)
}

// SetMaxAttempts sets how many times a job is tried before it is failed.
func (s *Scheduler) SetMaxAttempts(n int) {
	s.maxAttempts = max(1, n)
}

// SetRecorder sets the job outcome recorder.
func (s *Scheduler) SetRecorder(rec Recorder) {
	s.rec = rec
}

// SetEventFeeds sets the event calendars fetched for every location once a
// day.
func (s *Scheduler) SetEventFeeds(urls []string) {
	s.feeds = urls
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.checkAll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *Scheduler) checkAll(ctx context.Context) {
	s.planDay(ctx)

	pending, err := s.store.ListPendingJobs(ctx, s.now(), s.batch)
	if err != nil {
		s.log.Error("list pending jobs", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, job := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			s.process(gctx, job)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) process(ctx context.Context, job model.Job) {
	start := time.Now()
	err := s.runner.Run(ctx, job)
	status := s.settle(ctx, job, err)
	if s.rec != nil {
		s.rec.JobProcessed(string(job.JobType), status, time.Since(start))
	}
}

// settle records the outcome of a run and returns its status.
func (s *Scheduler) settle(ctx context.Context, job model.Job, runErr error) string {
	logArgs := []any{
		"job_id", job.ID,
		"job_type", job.JobType,
		"location_id", job.LocationID,
		"date_key", job.DateKey,
		"attempt", job.Attempt + 1,
	}

	if runErr == nil {
		if err := s.store.MarkJobDone(ctx, job.ID); err != nil {
			s.log.Error("mark job done", append(logArgs, "error", err)...)
		}
		s.log.Debug("job done", logArgs...)
		return StatusDone
	}

	if errors.Is(runErr, jobs.ErrInvalidJob) || job.Attempt+1 >= s.maxAttempts {
		if err := s.store.MarkJobFailed(ctx, job.ID, runErr.Error()); err != nil {
			s.log.Error("mark job failed", append(logArgs, "error", err)...)
		}
		s.log.Error("job failed", append(logArgs, "error", runErr)...)
		return StatusFailed
	}

	runAfter := s.now().Add(Backoff(job.Attempt))
	if err := s.store.RetryJob(ctx, job.ID, runErr.Error(), runAfter); err != nil {
		s.log.Error("retry job", append(logArgs, "error", err)...)
	}
	s.log.Warn("job will retry", append(logArgs, "run_after", runAfter, "error", runErr)...)
	return StatusRetry
}

// Backoff returns the delay before retrying a job that failed on the given
// zero-based attempt: 30s doubling per attempt, capped at one hour.
func Backoff(attempt int) time.Duration {
	d := 30 * time.Second
	for range attempt {
		d *= 2
		if d >= time.Hour {
			return time.Hour
		}
	}
	return d
}

// planDay queues the day's event feed ingestion for every location, once
// per UTC date.
func (s *Scheduler) planDay(ctx context.Context) {
	if len(s.feeds) == 0 {
		return
	}
	dateKey := s.now().Format(model.DateKeyLayout)
	if s.planned == dateKey {
		return
	}

	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		s.log.Error("list locations", "error", err)
		return
	}
	for _, loc := range locations {
		_, err := jobs.EnqueueIngest(ctx, s.store, loc.ID, nil, model.ProviderEvents, dateKey, jobs.IngestPayload{FeedURLs: s.feeds})
		if err != nil {
			s.log.Error("enqueue event ingest", "location_id", loc.ID, "date_key", dateKey, "error", err)
			return
		}
	}
	s.planned = dateKey
	s.log.Info("planned event ingestion", "date_key", dateKey, "locations", len(locations))
}
