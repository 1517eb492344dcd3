package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pickupwatch/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job statuses
const (
	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Error variables
var (
	ErrJobNotFound = errors.New("job not found")
)

// RunFunc is the work of a scheduled job
type RunFunc func(ctx context.Context) error

// Config holds scheduler configuration
type Config struct {
	Timeout time.Duration // Per-run deadline, zero means none
}

// TaskScheduler manages scheduled jobs using cron
type TaskScheduler struct {
	cron      *cron.Cron
	config    *Config
	ctx       context.Context
	jobs      map[string]*ScheduledJob
	jobsMutex sync.RWMutex
}

// ScheduledJob represents a scheduled job
type ScheduledJob struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Cron      string       `json:"cron"`
	NextRun   time.Time    `json:"next_run"`
	LastRun   time.Time    `json:"last_run"`
	LastError string       `json:"last_error,omitempty"`
	Runs      int          `json:"runs"`
	Status    string       `json:"status"`
	EntryID   cron.EntryID `json:"-"`

	run RunFunc
}

// NewTaskScheduler creates a new task scheduler. Runs of the same job never overlap.
func NewTaskScheduler(ctx context.Context, config *Config) *TaskScheduler {
	logger.Info("Initializing task scheduler")

	cronLogger := NewCronLogger(logger.Logger)
	cronScheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	if config == nil {
		config = &Config{}
	}

	return &TaskScheduler{
		cron:   cronScheduler,
		config: config,
		ctx:    ctx,
		jobs:   make(map[string]*ScheduledJob),
	}
}

// Start starts the scheduler and blocks until its context is cancelled
func (ts *TaskScheduler) Start() error {
	logger.Info("Starting task scheduler")

	ts.cron.Start()

	ts.jobsMutex.Lock()
	for _, job := range ts.jobs {
		if err := ts.updateJobNextRunTime(job); err != nil {
			logger.Warn("Failed to update next run time after start",
				zap.String("job_name", job.Name),
				zap.Error(err))
		}
	}
	ts.jobsMutex.Unlock()

	ts.logScheduledJobs()

	<-ts.ctx.Done()
	logger.Info("Task scheduler context cancelled")

	return nil
}

// Shutdown gracefully shuts down the task scheduler
func (ts *TaskScheduler) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down task scheduler")

	cronCtx := ts.cron.Stop()

	select {
	case <-cronCtx.Done():
		logger.Info("All scheduled jobs completed")
		return nil
	case <-ctx.Done():
		logger.Warn("Scheduler shutdown timeout, some jobs may still be running")
		return ctx.Err()
	}
}

// AddJob schedules run under the cron expression schedule
func (ts *TaskScheduler) AddJob(name, schedule string, run RunFunc) (*ScheduledJob, error) {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	job := &ScheduledJob{
		ID:   uuid.New().String(),
		Name: name,
		Cron: schedule,
		run:  run,
	}

	entryID, err := ts.cron.AddFunc(schedule, ts.createJobFunction(job))
	if err != nil {
		return nil, fmt.Errorf("failed to add cron job: %w", err)
	}

	job.EntryID = entryID
	job.Status = JobStatusScheduled

	if err := ts.updateJobNextRunTime(job); err != nil {
		logger.Warn("Failed to update next run time", zap.String("job_name", job.Name), zap.Error(err))
	}

	ts.jobs[job.ID] = job

	logger.Info("Added scheduled job",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.String("cron", job.Cron),
		zap.Time("next_run", job.NextRun),
	)

	return job.snapshot(), nil
}

// TriggerJob runs a job now through the same chain as scheduled runs.
// The call is skipped when the job is already running.
func (ts *TaskScheduler) TriggerJob(jobID string) error {
	ts.jobsMutex.RLock()
	job, exists := ts.jobs[jobID]
	ts.jobsMutex.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	entry := ts.cron.Entry(job.EntryID)
	if !entry.Valid() {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	entry.WrappedJob.Run()
	return nil
}

// GetJobs returns copies of all scheduled jobs
func (ts *TaskScheduler) GetJobs() []*ScheduledJob {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	jobs := make([]*ScheduledJob, 0, len(ts.jobs))
	for _, job := range ts.jobs {
		_ = ts.updateJobNextRunTime(job)
		jobs = append(jobs, job.snapshot())
	}

	return jobs
}

// GetJob returns a copy of a specific scheduled job
func (ts *TaskScheduler) GetJob(jobID string) (*ScheduledJob, error) {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	job, exists := ts.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	return job.snapshot(), nil
}

// GetStatus returns scheduler status
func (ts *TaskScheduler) GetStatus() map[string]interface{} {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	return map[string]interface{}{
		"job_count": len(ts.jobs),
		"entries":   len(ts.cron.Entries()),
		"timestamp": time.Now().UTC(),
	}
}

// createJobFunction wraps the job's work with status bookkeeping
func (ts *TaskScheduler) createJobFunction(job *ScheduledJob) func() {
	return func() {
		logger.Info("Executing scheduled job", zap.String("job_id", job.ID), zap.String("job_name", job.Name))

		ts.jobsMutex.Lock()
		job.Status = JobStatusRunning
		job.LastRun = time.Now()
		job.Runs++
		ts.jobsMutex.Unlock()

		ctx := ts.ctx
		if ts.config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, ts.config.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := runSafely(ctx, job.run)

		ts.jobsMutex.Lock()
		defer ts.jobsMutex.Unlock()

		if err != nil {
			logger.Error("Scheduled job failed", zap.String("job_name", job.Name), zap.Error(err))
			job.Status = JobStatusFailed
			job.LastError = err.Error()
			return
		}

		logger.Info("Scheduled job completed successfully",
			zap.String("job_name", job.Name),
			zap.Duration("duration", time.Since(start)))
		job.Status = JobStatusCompleted
		job.LastError = ""
	}
}

// runSafely converts a panic in run into an error so job status stays accurate
func runSafely(ctx context.Context, run RunFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return run(ctx)
}

// logScheduledJobs logs information about all scheduled jobs
func (ts *TaskScheduler) logScheduledJobs() {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	if len(ts.jobs) == 0 {
		logger.Info("No scheduled jobs configured")
		return
	}

	for _, job := range ts.jobs {
		logger.Info("Scheduled job",
			zap.String("job_name", job.Name),
			zap.String("cron", job.Cron),
			zap.Time("next_run", job.NextRun),
			zap.String("status", job.Status),
		)
	}
}

// updateJobNextRunTime updates the next run time for a job. Callers hold jobsMutex.
func (ts *TaskScheduler) updateJobNextRunTime(job *ScheduledJob) error {
	if entry := ts.cron.Entry(job.EntryID); entry.Valid() && !entry.Next.IsZero() {
		job.NextRun = entry.Next
		return nil
	}

	// Not started yet, compute from the expression
	schedule, err := cron.ParseStandard(job.Cron)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %s: %w", job.Cron, err)
	}
	job.NextRun = schedule.Next(time.Now())
	return nil
}

func (job *ScheduledJob) snapshot() *ScheduledJob {
	cp := *job
	cp.run = nil
	return &cp
}
