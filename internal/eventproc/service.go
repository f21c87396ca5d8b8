// Package eventproc wires the subscription manager to the reveal and
// death engines: it opens the contract log subscriptions, decodes each
// log, dispatches the typed events, and registers the working-set reload
// hook so the reveal engine is re-seeded after every reconnect.
package eventproc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/herowatch/herowatch/internal/chainsub"
	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/revealwatch"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// EventDecoder translates raw contract logs into typed domain events and
// supplies the subscription filters.
type EventDecoder interface {
	StakedFilter() chainsub.LogFilter
	DeathFilter() chainsub.LogFilter
	DecodeStaked(chainsub.Log) (revealwatch.StakedEvent, error)
	DecodeDeath(chainsub.Log) (deathwatch.DeathEvent, error)
}

// Service is the top-level event processing pipeline.
type Service interface {
	// Start connects the transport, starts both engines, seeds the
	// working set, and opens the Staked and Death subscriptions.
	Start(ctx context.Context) error

	// Close stops event intake, waits out the shutdown grace window so
	// in-flight checks and notifications can finish, then tears the
	// engines down. Safe to call without a prior Start.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	subs    chainsub.Service
	decoder EventDecoder
	reveal  revealwatch.Service
	death   deathwatch.Service

	shutdownGrace time.Duration
}

var _ Service = (*service)(nil)

type config struct {
	shutdownGrace time.Duration
}

// Option adjusts pipeline behavior.
type Option func(*config)

// WithShutdownGrace sets how long Close waits between stopping event
// intake and tearing down the engines. Default 2s.
func WithShutdownGrace(d time.Duration) Option {
	return func(c *config) {
		c.shutdownGrace = d
	}
}

// New wires the pipeline together.
func New(subs chainsub.Service, decoder EventDecoder, reveal revealwatch.Service, death deathwatch.Service, opts ...Option) *service {
	cfg := config{
		shutdownGrace: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		subs:          subs,
		decoder:       decoder,
		reveal:        reveal,
		death:         death,
		shutdownGrace: cfg.shutdownGrace,
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	if err := s.subs.Start(ctx); err != nil {
		cancel()
		return err
	}

	if err := s.reveal.Start(ctx); err != nil {
		s.subs.Close()
		cancel()
		return err
	}

	if err := s.death.Start(ctx); err != nil {
		s.reveal.Close()
		s.subs.Close()
		cancel()
		return err
	}

	// Seed the working set before events flow. A failure here is not
	// fatal: unknown tokens are picked up through the first-event rule.
	if err := s.reveal.Reload(ctx); err != nil {
		logger.Error(ctx, "initial working set load failed", "error", err)
	}

	// Registered before the subscriptions so that after a reconnect the
	// working set is rebuilt before any replayed subscription delivers.
	s.subs.OnReconnect("revealwatch working set reload", s.reveal.Reload)

	cancelStaked, err := s.subs.Subscribe(s.decoder.StakedFilter(), s.handleStakedLogs, nil)
	if err != nil {
		s.death.Close()
		s.reveal.Close()
		s.subs.Close()
		cancel()
		return err
	}

	cancelDeath, err := s.subs.Subscribe(s.decoder.DeathFilter(), s.handleDeathLogs, nil)
	if err != nil {
		cancelStaked()
		s.death.Close()
		s.reveal.Close()
		s.subs.Close()
		cancel()
		return err
	}

	s.closeFunc = func() {
		cancelStaked()
		cancelDeath()
		s.subs.Close()

		// Grace window: let in-flight checks and posts finish before
		// their contexts are torn down.
		time.Sleep(s.shutdownGrace)

		s.reveal.Close()
		s.death.Close()
		cancel()
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// handleStakedLogs decodes and dispatches one batch of Staked logs. Each
// log is handled independently; a bad log is logged and skipped so its
// siblings still go through.
func (s *service) handleStakedLogs(ctx context.Context, logs []chainsub.Log) {
	for _, l := range logs {
		event, err := s.decoder.DecodeStaked(l)
		if err != nil {
			logger.Error(ctx, "failed to decode staked log",
				"block", l.BlockNumber,
				"error", err,
			)
			continue
		}

		s.reveal.HandleStaked(ctx, event)
	}
}

func (s *service) handleDeathLogs(ctx context.Context, logs []chainsub.Log) {
	for _, l := range logs {
		event, err := s.decoder.DecodeDeath(l)
		if err != nil {
			logger.Error(ctx, "failed to decode death log",
				"block", l.BlockNumber,
				"error", err,
			)
			continue
		}

		s.death.HandleDeath(ctx, event)
	}
}
