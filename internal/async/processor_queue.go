package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type ProcessorQueue struct {
	proc     Processor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	base     context.Context
	handler  ResultHandler
	observer Observer

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

// WithProcessTimeout sets the per-document deadline; zero disables it.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d >= 0 {
			q.timeout = d
		}
	}
}

// WithContext sets the parent of every per-document context, so cancelling it
// abandons in-flight documents.
func WithContext(ctx context.Context) Option {
	return func(q *ProcessorQueue) {
		if ctx != nil {
			q.base = ctx
		}
	}
}

func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) { q.handler = h }
}

func WithObserver(o Observer) Option {
	return func(q *ProcessorQueue) { q.observer = o }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		base:    context.Background(),
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(workerID int, job Job) {
	ctx, cancel := q.base, context.CancelFunc(func() {})
	if q.timeout > 0 {
		ctx, cancel = context.WithTimeout(q.base, q.timeout)
	}
	defer cancel()

	start := time.Now()
	out, err := q.proc.Run(ctx, job.Path)
	res := JobResult{
		Job:      job,
		Outcome:  out,
		Status:   StatusOf(err),
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "status", res.Status, "error", err)
	} else {
		q.logger.Info("processed file successfully", "worker_id", workerID, "path", job.Path,
			"method", out.Record.ExtractionMethod, "duration_ms", res.Duration.Milliseconds())
	}

	if q.observer != nil {
		q.observer.ObserveJob(res)
	}
	if q.handler != nil {
		q.handler(ctx, res)
	}
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "path", job.Path, "run_id", job.RunID)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
