// Package reconcile implements the generic watch, delay, fetch, resolve
// state machine shared by the reveal and death paths. An Engine takes a
// domain CheckFunc and handles everything around it: the settle delay
// before the first check, transient-failure retries with a bounded deduped
// queue, a periodic drain cycle with bounded concurrency, and abandonment
// at the attempt ceiling.
package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/pkg/x/schedule"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEngineAlreadyStarted = errors.New("engine already started")
	ErrEngineNotStarted     = errors.New("engine not started")
)

// Engine runs deferred checks for one event type.
type Engine struct {
	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	check CheckFunc

	settleDelay   time.Duration
	retryInterval time.Duration
	maxAttempts   uint
	concurrency   int

	sched     *schedule.Scheduler
	queue     *retryQueue
	onAbandon AbandonHandler
}

type config struct {
	settleDelay   time.Duration
	retryInterval time.Duration
	maxAttempts   uint
	concurrency   int
	queueCapacity int
	onAbandon     AbandonHandler
}

// Option adjusts engine behavior.
type Option func(*config)

// WithSettleDelay sets the wait between Submit and the first check,
// giving the external source time to catch up with the chain. Zero checks
// immediately. Default 15s.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.settleDelay = d
	}
}

// WithRetryInterval sets the period of the retry-drain cycle. Default 30s.
func WithRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.retryInterval = d
	}
}

// WithMaxAttempts sets the failed-check ceiling after which a job is
// abandoned. Default 5. A value of 1 disables retries entirely.
func WithMaxAttempts(n uint) Option {
	return func(c *config) {
		c.maxAttempts = n
	}
}

// WithDrainConcurrency bounds simultaneous checks during a drain cycle.
// Default 5.
func WithDrainConcurrency(n int) Option {
	return func(c *config) {
		c.concurrency = n
	}
}

// WithQueueCapacity bounds the retry queue. Default 1024.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		c.queueCapacity = n
	}
}

// WithAbandonHandler installs a callback for jobs dropped at the ceiling.
func WithAbandonHandler(h AbandonHandler) Option {
	return func(c *config) {
		c.onAbandon = h
	}
}

// New builds an Engine around check.
func New(check CheckFunc, opts ...Option) *Engine {
	cfg := config{
		settleDelay:   15 * time.Second,
		retryInterval: 30 * time.Second,
		maxAttempts:   5,
		concurrency:   5,
		queueCapacity: 1024,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		check:         check,
		settleDelay:   cfg.settleDelay,
		retryInterval: cfg.retryInterval,
		maxAttempts:   cfg.maxAttempts,
		concurrency:   cfg.concurrency,
		queue:         newRetryQueue(cfg.queueCapacity),
		onAbandon:     cfg.onAbandon,
	}
}

// Start arms the scheduler and launches the periodic retry drain. The
// engine keeps running until Close or ctx cancellation.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrEngineAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	e.ctx = ctx
	e.cancel = cancel
	e.sched = schedule.New()
	e.started = true

	go e.drainLoop(ctx)
	return nil
}

// Close cancels pending settle timers and stops the drain loop. Queued
// retry jobs are discarded; they are in-memory only by design.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return
	}

	e.sched.Close()
	e.cancel()
	e.started = false
}

// Submit schedules a check for job after the settle delay. It is
// fire-and-forget: the result surfaces through storage, notifications and
// logs, never back to the caller.
func (e *Engine) Submit(job Job) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrEngineNotStarted
	}
	ctx, sched := e.ctx, e.sched
	e.mu.Unlock()

	sched.After(e.settleDelay, func() {
		e.runCheck(ctx, job)
	})
	return nil
}

// QueuedRetries reports how many jobs await the next drain cycle.
func (e *Engine) QueuedRetries() int {
	return e.queue.len()
}

// runCheck executes one check and routes the result: success and
// legitimate "not yet" both finish the job, a transient failure consumes
// an attempt and re-enqueues below the ceiling.
func (e *Engine) runCheck(ctx context.Context, job Job) {
	checkID := uuid.Must(uuid.NewV7()).String()

	outcome, err := e.check(ctx, job)
	if err == nil {
		if outcome == OutcomePending {
			logger.Debug(ctx, "token not settled yet",
				"check_id", checkID,
				"token_id", job.TokenID,
				"owner", job.Owner,
			)
			return
		}

		logger.Debug(ctx, "token check resolved",
			"check_id", checkID,
			"token_id", job.TokenID,
			"owner", job.Owner,
			"attempts", job.Attempts,
		)
		return
	}

	job.Attempts++
	if job.Attempts >= e.maxAttempts {
		logger.Error(ctx, "token check abandoned at attempt ceiling",
			"check_id", checkID,
			"token_id", job.TokenID,
			"owner", job.Owner,
			"attempts", job.Attempts,
			"error", err,
		)
		if e.onAbandon != nil {
			e.onAbandon(ctx, job, err)
		}
		return
	}

	fresh, qErr := e.queue.enqueue(job)
	switch {
	case qErr != nil:
		logger.Error(ctx, "dropping token check, retry queue full",
			"check_id", checkID,
			"token_id", job.TokenID,
			"owner", job.Owner,
			"attempts", job.Attempts,
			"error", err,
		)
	case !fresh:
		logger.Debug(ctx, "retry already queued for token",
			"check_id", checkID,
			"token_id", job.TokenID,
			"owner", job.Owner,
		)
	default:
		logger.Warn(ctx, "token check failed, queued for retry",
			"check_id", checkID,
			"token_id", job.TokenID,
			"owner", job.Owner,
			"attempts", job.Attempts,
			"error", err,
		)
	}
}

// drainLoop periodically drains the retry queue with bounded concurrency.
func (e *Engine) drainLoop(ctx context.Context) {
	ticker := time.NewTicker(e.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.drainOnce(ctx)
		}
	}
}

func (e *Engine) drainOnce(ctx context.Context) {
	jobs := e.queue.takeAll()
	if len(jobs) == 0 {
		return
	}

	logger.Info(ctx, "draining retry queue", "jobs", len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			e.runCheck(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
}
