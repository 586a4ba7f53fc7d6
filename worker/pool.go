package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"brandpulse/analyzer"
	"brandpulse/config"
	"brandpulse/jobs"
	"brandpulse/metrics"
	"brandpulse/types"

	"go.uber.org/zap"
)

// Queue is the part of the job store the pool consumes
type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*jobs.Job, error)
	MarkStarted(ctx context.Context, id string) error
	Finish(ctx context.Context, id string, result json.RawMessage) error
	Fail(ctx context.Context, id string, reason string) error
	Requeue(ctx context.Context, id string) error
}

// Archiver stores a copy of a finished job
type Archiver interface {
	Archive(ctx context.Context, ev types.JobEvent) error
}

// Publisher announces finished jobs
type Publisher interface {
	Publish(ctx context.Context, ev types.JobEvent) error
}

// Pool runs analysis jobs taken from the queue
type Pool struct {
	queue          Queue
	analyzer       analyzer.Analyzer
	archiver       Archiver
	publisher      Publisher
	workers        int
	dequeueTimeout time.Duration
	logger         *zap.Logger
}

// Option customizes a Pool
type Option func(*Pool)

// WithArchiver enables archiving of finished jobs
func WithArchiver(a Archiver) Option {
	return func(p *Pool) { p.archiver = a }
}

// WithPublisher enables job events
func WithPublisher(pub Publisher) Option {
	return func(p *Pool) { p.publisher = pub }
}

// WithDequeueTimeout sets how long a worker blocks on an empty queue before re-checking ctx
func WithDequeueTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.dequeueTimeout = d
		}
	}
}

// NewPool creates a pool of workers goroutines
func NewPool(queue Queue, a analyzer.Analyzer, workers int, logger *zap.Logger, opts ...Option) *Pool {
	if workers <= 0 {
		workers = config.DefaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		queue:          queue,
		analyzer:       a,
		workers:        workers,
		dequeueTimeout: config.DequeueTimeout,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks until ctx is cancelled and all workers have returned
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i + 1)
	}
	p.logger.Info("worker pool started", zap.Int("workers", p.workers))
	wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) loop(ctx context.Context, id int) {
	log := p.logger.With(zap.Int("worker", id))
	for ctx.Err() == nil {
		job, err := p.queue.Dequeue(ctx, p.dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("dequeue failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if job == nil {
			continue
		}
		p.Process(ctx, job)
	}
}

// Process runs one job to completion. An analyzer error finishes the job with an
// {"error": ...} payload; only a panic or a store failure marks it failed.
// If ctx is cancelled while the analysis runs, the job goes back on the queue.
func (p *Pool) Process(ctx context.Context, job *jobs.Job) {
	log := p.logger.With(zap.String("job_id", job.ID))
	// store writes must land even while shutting down
	storeCtx := context.WithoutCancel(ctx)
	start := time.Now()
	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("panic: %v", r)
			log.Error("job panicked", zap.Any("panic", r))
			if err := p.queue.Fail(storeCtx, job.ID, reason); err != nil {
				log.Error("failed to mark job failed", zap.Error(err))
			}
			metrics.JobsFailed.WithLabelValues("panic").Inc()
			p.announce(storeCtx, types.JobEvent{JobID: job.ID, Status: types.JobStatusFailed, Error: reason, FinishedAt: time.Now().UTC()})
		}
	}()

	if err := p.queue.MarkStarted(storeCtx, job.ID); err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			log.Warn("job expired before it started")
			return
		}
		log.Error("failed to mark job started", zap.Error(err))
	}

	log.Info("analyzing", zap.Int("prompt_len", len(job.Prompt)), zap.Int("input_len", len(job.Input)))

	var payload json.RawMessage
	var analysisErr string
	text, err := p.analyzer.Analyze(ctx, job.Prompt, job.Input)
	if err != nil && ctx.Err() != nil {
		log.Info("analysis interrupted by shutdown, requeueing", zap.Error(err))
		if rerr := p.queue.Requeue(storeCtx, job.ID); rerr != nil {
			log.Error("failed to requeue job", zap.Error(rerr))
		}
		return
	}
	if err != nil {
		analysisErr = err.Error()
		log.Warn("analysis error", zap.Error(err))
		payload, _ = json.Marshal(map[string]string{"error": analysisErr})
		metrics.JobsFailed.WithLabelValues("analyzer").Inc()
	} else {
		payload, _ = json.Marshal(text)
	}

	if err := p.queue.Finish(storeCtx, job.ID, payload); err != nil {
		log.Error("failed to store result", zap.Error(err))
		if ferr := p.queue.Fail(storeCtx, job.ID, err.Error()); ferr != nil {
			log.Error("failed to mark job failed", zap.Error(ferr))
		}
		metrics.JobsFailed.WithLabelValues("store").Inc()
		return
	}

	metrics.JobsCompleted.Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	log.Info("job finished", zap.Duration("took", time.Since(start)))

	p.announce(storeCtx, types.JobEvent{
		JobID:      job.ID,
		Status:     types.JobStatusCompleted,
		Result:     payload,
		Error:      analysisErr,
		FinishedAt: time.Now().UTC(),
	})
}

// announce archives and publishes the event; failures are logged only
func (p *Pool) announce(ctx context.Context, ev types.JobEvent) {
	log := p.logger.With(zap.String("job_id", ev.JobID))
	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, ev); err != nil {
			log.Warn("archive failed", zap.Error(err))
		}
	}
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, ev); err != nil {
			log.Warn("publish failed", zap.Error(err))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
