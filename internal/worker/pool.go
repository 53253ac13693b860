// Package worker provides background processing for dual-analysis jobs.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

const (
	defaultJobTimeout = 2 * time.Minute
	// Finished job states are kept this long for polling.
	defaultStateTTL = time.Hour
)

var (
	// ErrQueueFull indicates the job queue had no room.
	ErrQueueFull = errors.New("worker: queue full")
	// ErrStopped indicates the pool no longer accepts jobs.
	ErrStopped = errors.New("worker: pool stopped")
)

// Comparer runs a dual analysis on two remote recordings.
type Comparer interface {
	CompareURLs(ctx context.Context, singerID, slowURL, fastURL string) (domain.Comparison, error)
}

// Job asks for the slow and fast recordings at two URLs to be compared.
type Job struct {
	ID       string `json:"id"`
	SingerID string `json:"singer_id"`
	SlowURL  string `json:"slow_url"`
	FastURL  string `json:"fast_url"`
}

// Status is the lifecycle stage of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// JobState is the observable progress of a submitted job.
type JobState struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	ComparisonID string    `json:"comparison_id,omitempty"`
	Partial      bool      `json:"partial,omitempty"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Pool manages background workers for async jobs.
type Pool struct {
	svc        Comparer
	workers    int
	jobTimeout time.Duration
	stateTTL   time.Duration
	now        func() time.Time
	logger     *zap.Logger

	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	states  map[string]JobState
}

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(svc Comparer, workers int, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		svc:        svc,
		workers:    workers,
		jobTimeout: defaultJobTimeout,
		stateTTL:   defaultStateTTL,
		now:        time.Now,
		logger:     logger,
		jobs:       make(chan Job, queueSize),
		ctx:        ctx,
		cancel:     cancel,
		states:     make(map[string]JobState),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop drains the queue, waits for workers to finish, then cancels any
// remaining work.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		p.storeLocked(JobState{ID: job.ID, Status: StatusQueued})
		return nil
	default:
		p.logger.Warn("dropping job, queue full", zap.String("job_id", job.ID))
		return ErrQueueFull
	}
}

// Status reports the state of a submitted job.
func (p *Pool) Status(id string) (JobState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.states[id]
	return s, ok
}

func (p *Pool) setState(s JobState) {
	p.mu.Lock()
	p.storeLocked(s)
	p.mu.Unlock()
}

// storeLocked records s and evicts finished jobs older than stateTTL.
// Callers hold p.mu.
func (p *Pool) storeLocked(s JobState) {
	now := p.now().UTC()
	s.UpdatedAt = now
	p.states[s.ID] = s

	cutoff := now.Add(-p.stateTTL)
	for id, st := range p.states {
		if (st.Status == StatusDone || st.Status == StatusFailed) && st.UpdatedAt.Before(cutoff) {
			delete(p.states, id)
		}
	}
}

func (p *Pool) processJob(job Job) {
	p.setState(JobState{ID: job.ID, Status: StatusRunning})

	ctx, cancel := context.WithTimeout(p.ctx, p.jobTimeout)
	defer cancel()

	cmp, err := p.svc.CompareURLs(ctx, job.SingerID, job.SlowURL, job.FastURL)
	if err != nil {
		p.logger.Warn("job failed", zap.String("job_id", job.ID), zap.Error(err))
		p.setState(JobState{ID: job.ID, Status: StatusFailed, Error: err.Error()})
		return
	}

	p.setState(JobState{ID: job.ID, Status: StatusDone, ComparisonID: cmp.ID, Partial: cmp.Result.Partial})
	p.logger.Info("job processed",
		zap.String("job_id", job.ID),
		zap.String("comparison_id", cmp.ID),
		zap.Bool("partial", cmp.Result.Partial),
	)
}
