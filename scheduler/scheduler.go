// Package scheduler runs the periodic jobs: one run per job at a time, every run recorded.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"newspaper/logging"
	"newspaper/metrics"
	"newspaper/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a run when the job sets no Timeout. It is also the lifetime of the job's lock.
const DefaultJobTimeout = time.Hour

var (
	ErrJobAlreadyRunning = errors.New("job already running")
	ErrUnknownJob        = errors.New("unknown job")
	ErrDuplicateJob      = errors.New("job already registered")
)

type Job struct {
	ID      string
	Spec    string
	Run     func(ctx context.Context) error
	Timeout time.Duration
}

func (j Job) timeout() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout
	}
	return DefaultJobTimeout
}

// ExecutionStore persists one record per run.
type ExecutionStore interface {
	Create(ctx context.Context, execution *models.JobExecution) error
}

type Options struct {
	Location   *time.Location
	Locker     Locker
	Executions ExecutionStore
	Logger     *slog.Logger
}

type Scheduler struct {
	cron       *cron.Cron
	locker     Locker
	executions ExecutionStore
	log        *slog.Logger

	mu   sync.Mutex
	jobs map[string]Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	locker := opts.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}

	cronLog := logging.CronLogger{Logger: log}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		locker:     locker,
		executions: opts.Executions,
		log:        log,
		jobs:       map[string]Job{},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Register adds a job. The schedule has six fields, seconds first, or is a descriptor such as "@every 1m".
func (s *Scheduler) Register(job Job) error {
	if job.ID == "" || job.Run == nil {
		return errors.New("job needs an id and a run function")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("%s: %w", job.ID, ErrDuplicateJob)
	}

	_, err := s.cron.AddFunc(job.Spec, func() {
		if err := s.execute(s.ctx, job); err != nil && !errors.Is(err, ErrJobAlreadyRunning) {
			s.log.Error("job failed", "job_id", job.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", job.ID, job.Spec, err)
	}

	s.jobs[job.ID] = job
	s.log.Info("job registered", "job_id", job.ID, "schedule", job.Spec)
	return nil
}

// Jobs lists the registered jobs ordered by id.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].ID < jobs[b].ID })
	return jobs
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.Jobs()))
	s.cron.Start()
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow runs a registered job immediately in the caller's goroutine, honouring the same
// single-run guard as scheduled runs.
func (s *Scheduler) RunNow(ctx context.Context, id string) error {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownJob)
	}
	return s.execute(ctx, job)
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	s.wg.Add(1)
	defer s.wg.Done()

	started := time.Now()
	release, ok, err := s.locker.TryLock(ctx, "job:"+job.ID, job.timeout())
	if err != nil {
		s.finish(ctx, job, started, models.JobStatusError, err)
		return err
	}
	if !ok {
		s.log.Warn("job skipped, previous run still active", "job_id", job.ID)
		s.finish(ctx, job, started, models.JobStatusSkipped, ErrJobAlreadyRunning)
		return ErrJobAlreadyRunning
	}
	defer release()

	runCtx, cancel := context.WithTimeout(ctx, job.timeout())
	defer cancel()

	s.log.Debug("job started", "job_id", job.ID)
	err = runSafely(runCtx, job)

	status := models.JobStatusExecuted
	if err != nil {
		status = models.JobStatusError
	}
	s.finish(ctx, job, started, status, err)
	return err
}

func runSafely(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return job.Run(ctx)
}

func (s *Scheduler) finish(ctx context.Context, job Job, started time.Time, status models.JobStatus, runErr error) {
	metrics.RecordJob(job.ID, string(status), started)

	finished := time.Now()
	execution := &models.JobExecution{
		ID:         uuid.NewString(),
		JobID:      job.ID,
		Status:     status,
		RunTime:    started.UTC(),
		Duration:   finished.Sub(started).Seconds(),
		FinishedAt: finished.UTC(),
	}
	if runErr != nil {
		execution.Exception = runErr.Error()
	}

	if status == models.JobStatusExecuted {
		s.log.Info("job executed", "job_id", job.ID, "duration", execution.Duration)
	}

	if s.executions == nil {
		return
	}
	// Record even when the run was cancelled by Stop.
	if err := s.executions.Create(context.WithoutCancel(ctx), execution); err != nil {
		s.log.Error("record job execution", "job_id", job.ID, "error", err)
	}
}
