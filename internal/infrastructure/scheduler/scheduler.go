// Package scheduler runs named background jobs on a worker pool, with
// retries and interval triggers.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc does the work of a named job
type JobFunc func(ctx context.Context) error

// Job is one run of a registered job
type Job struct {
	ID          uuid.UUID
	Name        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending run of name
func NewJob(name string, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Name:       name,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry puts a failed job back to pending
func (j *Job) ScheduleRetry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.Error = ""
}

// Config holds scheduler configuration
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     32,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

// Scheduler executes submitted jobs on a fixed pool of workers
type Scheduler struct {
	config Config
	logger *zap.Logger

	handlers map[string]JobFunc
	onFinish func(Job)

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) (*Scheduler, error) {
	if config.Workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		handlers: make(map[string]JobFunc),
		jobs:     make(chan *Job, config.QueueSize),
	}, nil
}

// Register binds fn to name. Registering after Start is allowed.
func (s *Scheduler) Register(name string, fn JobFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: job needs a name and a function", ErrInvalidConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[name]; ok {
		return fmt.Errorf("%w: job %q already registered", ErrInvalidConfig, name)
	}
	s.handlers[name] = fn
	return nil
}

// OnFinish sets a callback that receives a copy of every job once it
// succeeds or runs out of retries
func (s *Scheduler) OnFinish(fn func(Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.jobs)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a run of the job registered under name
func (s *Scheduler) Submit(name string) (*Job, error) {
	s.mu.Lock()
	_, ok := s.handlers[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	job := NewJob(name, s.config.RetryAttempts)
	if err := s.enqueue(job); err != nil {
		return nil, err
	}
	s.logger.Debug("Job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("job", name),
	)
	return job, nil
}

// enqueue holds the lock while sending so Stop never closes the channel
// under a pending send
func (s *Scheduler) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	s.mu.Lock()
	fn := s.handlers[job.Name]
	s.mu.Unlock()

	job.Start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job", job.Name),
	)
	log.Debug("Processing job")

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.run(jobCtx, fn); err != nil {
		job.Fail(err.Error())
		log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))

		if job.ShouldRetry() && ctx.Err() == nil {
			job.ScheduleRetry()
			time.AfterFunc(s.config.RetryDelay, func() {
				if err := s.enqueue(job); err != nil {
					log.Warn("Failed to re-queue job for retry", zap.Error(err))
				}
			})
			return
		}
		s.finish(job)
		return
	}

	job.Complete()
	log.Info("Job completed successfully", zap.Duration("duration", job.CompletedAt.Sub(*job.StartedAt)))
	s.finish(job)
}

// run converts a panicking job into a failure
func (s *Scheduler) run(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (s *Scheduler) finish(job *Job) {
	s.mu.Lock()
	cb := s.onFinish
	s.mu.Unlock()
	if cb != nil {
		cb(*job)
	}
}
