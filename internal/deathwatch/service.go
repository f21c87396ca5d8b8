// Package deathwatch handles hero death events. It is the reveal engine's
// simpler sibling: one metadata fetch, one obituary post, no settle delay
// and no retries. Death is terminal and low volume, so a lost notification
// is accepted instead of a full retry path.
package deathwatch

import (
	"context"

	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/reconcile"
)

// levelTraitName is the attribute shown in the obituary.
const levelTraitName = "Season 1 Level"

// Service is the death reconciliation engine.
type Service interface {
	Start(ctx context.Context) error
	Close()

	// HandleDeath is the live entry point for a decoded death event.
	// Fire-and-forget: a failed fetch or post is logged and dropped.
	HandleDeath(ctx context.Context, event DeathEvent)
}

type service struct {
	fetcher  MetadataFetcher
	notifier DeathNotifier
	recorder DeathRecorder

	engine *reconcile.Engine
}

var _ Service = (*service)(nil)

type config struct {
	recorder DeathRecorder
}

// Option adjusts the death engine.
type Option func(*config)

// WithDeathRecorder wires a durable store for the death marker. Without
// it the marker is simply not persisted.
func WithDeathRecorder(r DeathRecorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// New builds the death engine.
func New(fetcher MetadataFetcher, notifier DeathNotifier, opts ...Option) *service {
	cfg := config{
		recorder: nopDeathRecorder{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &service{
		fetcher:  fetcher,
		notifier: notifier,
		recorder: cfg.recorder,
	}

	// Single attempt, no settle delay: the first failure abandons the
	// event.
	s.engine = reconcile.New(s.checkToken,
		reconcile.WithSettleDelay(0),
		reconcile.WithMaxAttempts(1),
	)

	return s
}

func (s *service) Start(ctx context.Context) error {
	return s.engine.Start(ctx)
}

func (s *service) Close() {
	s.engine.Close()
}

func (s *service) HandleDeath(ctx context.Context, event DeathEvent) {
	if err := s.engine.Submit(reconcile.Job{TokenID: event.TokenID}); err != nil {
		logger.Error(ctx, "failed to schedule death check",
			"token_id", event.TokenID,
			"error", err,
		)
	}
}

func (s *service) checkToken(ctx context.Context, job reconcile.Job) (reconcile.Outcome, error) {
	metadata, err := s.fetcher.Fetch(ctx, job.TokenID)
	if err != nil {
		return 0, err
	}

	level := 0
	if attr, ok := metadata.Trait(levelTraitName); ok {
		if n, ok := attr.Number(); ok {
			level = int(n)
		}
	}

	if err := s.notifier.AnnounceDeath(ctx, job.TokenID, metadata.Image, level); err != nil {
		logger.Error(ctx, "death announcement failed",
			"token_id", job.TokenID,
			"error", err,
		)
	}

	if err := s.recorder.MarkDeath(ctx, job.TokenID); err != nil {
		logger.Warn(ctx, "failed to record death marker",
			"token_id", job.TokenID,
			"error", err,
		)
	}

	return reconcile.OutcomeResolved, nil
}
