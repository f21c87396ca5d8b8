// Package revealwatch reconciles on-chain staking events against durable
// reveal state. A staking event arms a delayed metadata check; depending
// on what the check finds, the token either stays watched (placeholder),
// is resolved and announced (revealed), or is queued for retry (transient
// failure). The persisted revealed flag is the single source of truth:
// whichever path flips it first owns the announcement, every other path
// short-circuits to a no-op.
package revealwatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/herowatch/herowatch/internal/hero"
	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/pkg/types"
	"github.com/herowatch/herowatch/internal/reconcile"

	"golang.org/x/sync/errgroup"
)

// levelTraitName is the attribute inspected for notification suppression.
// A token that has already leveled past 1 was revealed through some other
// flow and was announced there; re-announcing it here would duplicate.
const levelTraitName = "Season 1 Level"

// StakedEvent is a decoded Staked log.
type StakedEvent struct {
	Owner     string
	TokenID   uint64
	Timestamp time.Time
}

// Service is the reveal reconciliation engine.
type Service interface {
	// Start arms the retry-drain cycle. Call Reload afterwards to seed
	// the working set.
	Start(ctx context.Context) error

	// Close stops the engine; pending settle timers and queued retries
	// are discarded.
	Close()

	// Reload rebuilds the working set from the store. It runs at startup
	// and after every transport reconnect, replacing any stale in-memory
	// view wholesale.
	Reload(ctx context.Context) error

	// HandleStaked is the live entry point for a decoded staking event.
	// It is fire-and-forget; failures surface through logs and the retry
	// queue, never to the caller.
	HandleStaked(ctx context.Context, event StakedEvent)

	// ReconcileAll runs one fetch-and-resolve pass over every unrevealed
	// token in the store, with notifications muted. Intended for one-off
	// catch-up jobs, not the live path.
	ReconcileAll(ctx context.Context) error

	// Watching reports whether the working set currently contains the
	// token.
	Watching(tokenID uint64) bool
}

type service struct {
	storage  TokenStorage
	fetcher  MetadataFetcher
	notifier RevealNotifier

	engine *reconcile.Engine

	wsMu       sync.Mutex
	workingSet types.Set[uint64]

	placeholderImage string
	bulkConcurrency  int
}

var _ Service = (*service)(nil)

type config struct {
	settleDelay     time.Duration
	retryInterval   time.Duration
	retryCeiling    uint
	drainConcurrent int
	queueCapacity   int
	bulkConcurrency int
}

// Option adjusts the engine's timing and concurrency.
type Option func(*config)

// WithSettleDelay sets the wait between a staking event and the first
// metadata check. Default 15s.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.settleDelay = d
	}
}

// WithRetryInterval sets the retry-drain period. Default 30s.
func WithRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.retryInterval = d
	}
}

// WithRetryCeiling sets the transient-failure ceiling. Default 5.
func WithRetryCeiling(n uint) Option {
	return func(c *config) {
		c.retryCeiling = n
	}
}

// WithDrainConcurrency bounds simultaneous fetches during retry drain.
// Default 5.
func WithDrainConcurrency(n int) Option {
	return func(c *config) {
		c.drainConcurrent = n
	}
}

// WithQueueCapacity bounds the retry queue. Default 1024.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		c.queueCapacity = n
	}
}

// WithBulkConcurrency bounds simultaneous fetches during ReconcileAll.
// Default 16.
func WithBulkConcurrency(n int) Option {
	return func(c *config) {
		c.bulkConcurrency = n
	}
}

// New builds the reveal engine. placeholderImage is the sentinel image
// reference the metadata source serves for unrevealed tokens; it is
// compared exactly.
func New(storage TokenStorage, fetcher MetadataFetcher, notifier RevealNotifier, placeholderImage string, opts ...Option) *service {
	cfg := config{
		settleDelay:     15 * time.Second,
		retryInterval:   30 * time.Second,
		retryCeiling:    5,
		drainConcurrent: 5,
		queueCapacity:   1024,
		bulkConcurrency: 16,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &service{
		storage:          storage,
		fetcher:          fetcher,
		notifier:         notifier,
		workingSet:       types.NewSet[uint64](),
		placeholderImage: placeholderImage,
		bulkConcurrency:  cfg.bulkConcurrency,
	}

	s.engine = reconcile.New(
		func(ctx context.Context, job reconcile.Job) (reconcile.Outcome, error) {
			return s.checkToken(ctx, job, false)
		},
		reconcile.WithSettleDelay(cfg.settleDelay),
		reconcile.WithRetryInterval(cfg.retryInterval),
		reconcile.WithMaxAttempts(cfg.retryCeiling),
		reconcile.WithDrainConcurrency(cfg.drainConcurrent),
		reconcile.WithQueueCapacity(cfg.queueCapacity),
	)

	return s
}

func (s *service) Start(ctx context.Context) error {
	return s.engine.Start(ctx)
}

func (s *service) Close() {
	s.engine.Close()
}

func (s *service) Reload(ctx context.Context) error {
	ids, err := s.storage.ListUnrevealed(ctx)
	if err != nil {
		return fmt.Errorf("listing unrevealed tokens: %w", err)
	}

	s.wsMu.Lock()
	s.workingSet = types.NewSet(ids...)
	s.wsMu.Unlock()

	logger.Info(ctx, "working set reloaded", "tokens", len(ids))
	return nil
}

func (s *service) Watching(tokenID uint64) bool {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return s.workingSet.Has(tokenID)
}

func (s *service) track(tokenID uint64) {
	s.wsMu.Lock()
	s.workingSet.Add(tokenID)
	s.wsMu.Unlock()
}

func (s *service) untrack(tokenID uint64) {
	s.wsMu.Lock()
	s.workingSet.Delete(tokenID)
	s.wsMu.Unlock()
}

func (s *service) HandleStaked(ctx context.Context, event StakedEvent) {
	if !s.Watching(event.TokenID) {
		record, err := s.storage.Get(ctx, event.TokenID)
		switch {
		case errors.Is(err, ErrTokenNotFound):
			// Unknown token: treat as unrevealed and start tracking it.
			if err := s.storage.EnsureTracked(ctx, event.TokenID); err != nil {
				logger.Error(ctx, "failed to create token record",
					"token_id", event.TokenID,
					"owner", event.Owner,
					"error", err,
				)
				return
			}
		case err != nil:
			logger.Error(ctx, "store read failed on staked event",
				"token_id", event.TokenID,
				"owner", event.Owner,
				"error", err,
			)
			return
		case record.Revealed:
			// Already resolved; nothing to do for this event.
			return
		}

		s.track(event.TokenID)
	}

	job := reconcile.Job{TokenID: event.TokenID, Owner: event.Owner}
	if err := s.engine.Submit(job); err != nil {
		logger.Error(ctx, "failed to schedule reveal check",
			"token_id", event.TokenID,
			"owner", event.Owner,
			"error", err,
		)
	}
}

func (s *service) ReconcileAll(ctx context.Context) error {
	ids, err := s.storage.ListUnrevealed(ctx)
	if err != nil {
		return fmt.Errorf("listing unrevealed tokens: %w", err)
	}

	var resolved, pending, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.bulkConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			outcome, err := s.checkToken(ctx, reconcile.Job{TokenID: id}, true)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Warn(ctx, "bulk reconcile check failed", "token_id", id, "error", err)
			case outcome == reconcile.OutcomePending:
				pending.Add(1)
			default:
				resolved.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info(ctx, "bulk reconcile finished",
		"tokens", len(ids),
		"resolved", resolved.Load(),
		"still_pending", pending.Load(),
		"failed", failed.Load(),
	)
	return nil
}

// checkToken is the single fetch-and-resolve pass shared by the live
// path, the retry drain and bulk reconciliation. mute suppresses the
// announcement (bulk catch-up must not spam).
func (s *service) checkToken(ctx context.Context, job reconcile.Job, mute bool) (reconcile.Outcome, error) {
	record, err := s.storage.Get(ctx, job.TokenID)
	if err != nil && !errors.Is(err, ErrTokenNotFound) {
		return 0, fmt.Errorf("reading token %d state: %w", job.TokenID, err)
	}
	if err == nil && record.Revealed {
		// A racing path already resolved this token. It owns the
		// announcement; this path only reconciles the cache.
		s.untrack(job.TokenID)
		return reconcile.OutcomeResolved, nil
	}

	metadata, err := s.fetcher.Fetch(ctx, job.TokenID)
	if err != nil {
		return 0, fmt.Errorf("fetching metadata for token %d: %w", job.TokenID, err)
	}

	if metadata.Image == s.placeholderImage {
		// Legitimate "not yet": the source has not caught up. Keep
		// watching without consuming a retry attempt.
		return reconcile.OutcomePending, nil
	}

	first, err := s.storage.MarkRevealed(ctx, job.TokenID, metadata.Image, metadata.Attributes)
	if err != nil {
		return 0, fmt.Errorf("persisting reveal for token %d: %w", job.TokenID, err)
	}

	s.untrack(job.TokenID)

	if !first {
		return reconcile.OutcomeResolved, nil
	}

	if mute || s.alreadyAnnounced(metadata) {
		logger.Info(ctx, "reveal recorded without announcement",
			"token_id", job.TokenID,
			"owner", job.Owner,
			"muted", mute,
		)
		return reconcile.OutcomeResolved, nil
	}

	if err := s.notifier.AnnounceReveal(ctx, job.TokenID, job.Owner, metadata.Image); err != nil {
		// Best effort: the reveal is durably recorded either way, and a
		// failed post is never retried.
		logger.Error(ctx, "reveal announcement failed",
			"token_id", job.TokenID,
			"owner", job.Owner,
			"error", err,
		)
	}

	return reconcile.OutcomeResolved, nil
}

// alreadyAnnounced reports whether the resolved metadata indicates the
// token was revealed through another flow.
func (s *service) alreadyAnnounced(metadata hero.Metadata) bool {
	attr, ok := metadata.Trait(levelTraitName)
	if !ok {
		return false
	}

	level, ok := attr.Number()
	return ok && level > 1
}
