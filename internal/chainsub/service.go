// Package chainsub owns the live subscriptions to on-chain contract
// events. It wraps a raw Transport so that handler failures never kill a
// subscription, connection loss is healed with capped exponential backoff,
// and every logical subscription is re-established from the registry after
// each reconnect.
package chainsub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/pkg/x/chanx"
)

var (
	ErrServiceAlreadyStarted = errors.New("service already started")
	ErrServiceNotStarted     = errors.New("service not started")
)

const logChannelBufferSize = 16

// LogsHandler consumes one batch of logs. Errors and panics inside the
// handler are recovered by the manager and must not be relied on for
// control flow.
type LogsHandler func(ctx context.Context, logs []Log)

// ErrorHandler observes transport-level subscription errors. Reconnection
// is handled by the manager; the handler is informational.
type ErrorHandler func(ctx context.Context, err error)

// ReconnectHook re-establishes one piece of logical state after the
// transport reconnects.
type ReconnectHook func(ctx context.Context) error

// CancelFunc tears down a logical subscription and removes its registry
// entry.
type CancelFunc func()

// Service is the subscription manager.
type Service interface {
	// Start connects the transport and launches the heartbeat. It must be
	// called before Subscribe.
	Start(ctx context.Context) error

	// Subscribe opens a logical subscription and registers its
	// re-establishment hook in the registry.
	Subscribe(filter LogFilter, onLogs LogsHandler, onErr ErrorHandler) (CancelFunc, error)

	// OnReconnect appends an arbitrary hook to the registry. Hooks run in
	// registration order after every successful reconnect.
	OnReconnect(name string, hook ReconnectHook)

	// Close cancels every subscription and stops the manager.
	Close()
}

type registryEntry struct {
	id   uint64
	name string
	fn   ReconnectHook
}

type managedSub struct {
	filter     LogFilter
	onLogs     LogsHandler
	onErr      ErrorHandler
	sub        Subscription
	cancelPump context.CancelFunc
}

type service struct {
	mu        sync.Mutex
	started   bool
	ctx       context.Context
	cancel    context.CancelFunc
	transport Transport

	baseDelay         time.Duration
	maxDelay          time.Duration
	heartbeatInterval time.Duration

	nextID   uint64
	registry []*registryEntry
	subs     map[uint64]*managedSub

	connected       bool
	lastConnectedAt time.Time
	reconnects      uint64
	reconnecting    bool
}

var _ Service = (*service)(nil)

type config struct {
	baseDelay         time.Duration
	maxDelay          time.Duration
	heartbeatInterval time.Duration
}

// Option adjusts the manager's reconnect and heartbeat behavior.
type Option func(*config)

// WithReconnectBaseDelay sets the first reconnect delay. Default 1s.
func WithReconnectBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.baseDelay = d
	}
}

// WithReconnectMaxDelay caps the reconnect backoff. Default 30s.
func WithReconnectMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithHeartbeatInterval sets how often connection state is logged.
// Default 60s.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *config) {
		c.heartbeatInterval = d
	}
}

// New builds a subscription manager over the given transport.
func New(transport Transport, opts ...Option) *service {
	cfg := config{
		baseDelay:         time.Second,
		maxDelay:          30 * time.Second,
		heartbeatInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		transport:         transport,
		baseDelay:         cfg.baseDelay,
		maxDelay:          cfg.maxDelay,
		heartbeatInterval: cfg.heartbeatInterval,
		subs:              make(map[uint64]*managedSub),
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := s.transport.Connect(ctx); err != nil {
		cancel()
		return err
	}

	s.ctx = ctx
	s.cancel = cancel
	s.connected = true
	s.lastConnectedAt = time.Now().UTC()
	s.started = true

	go s.heartbeat(ctx)
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	for _, ms := range s.subs {
		ms.cancelPump()
		ms.sub.Unsubscribe()
	}

	s.cancel()
	s.subs = make(map[uint64]*managedSub)
	s.registry = nil
	s.started = false
	s.connected = false
}

func (s *service) Subscribe(filter LogFilter, onLogs LogsHandler, onErr ErrorHandler) (CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrServiceNotStarted
	}

	ms := &managedSub{
		filter: filter,
		onLogs: onLogs,
		onErr:  onErr,
	}
	if err := s.openSubscription(s.ctx, ms); err != nil {
		return nil, err
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ms

	// The registry entry is what survives a reconnect: the transport
	// forgets its filters, so the hook re-opens the logical subscription.
	entry := &registryEntry{
		id:   id,
		name: "subscription:" + filter.EventTopic,
		fn: func(ctx context.Context) error {
			ms.cancelPump()
			return s.openSubscription(ctx, ms)
		},
	}
	s.registry = append(s.registry, entry)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		s.removeRegistryEntry(id)

		ms.cancelPump()
		ms.sub.Unsubscribe()
	}
	return cancel, nil
}

func (s *service) OnReconnect(name string, hook ReconnectHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &registryEntry{
		id:   s.nextID,
		name: name,
		fn:   hook,
	}
	s.nextID++
	s.registry = append(s.registry, entry)
}

func (s *service) removeRegistryEntry(id uint64) {
	for i, entry := range s.registry {
		if entry.id == id {
			s.registry = append(s.registry[:i], s.registry[i+1:]...)
			return
		}
	}
}

// openSubscription opens the transport subscription for ms and launches
// its pump and error-watch goroutines. Callers hold s.mu or run from a
// registry hook during reconnect (where subscription state is otherwise
// quiescent).
func (s *service) openSubscription(ctx context.Context, ms *managedSub) error {
	pumpCtx, cancelPump := context.WithCancel(ctx)

	sink := make(chan []Log, logChannelBufferSize)
	sub, err := s.transport.SubscribeLogs(pumpCtx, ms.filter, sink)
	if err != nil {
		cancelPump()
		return err
	}

	ms.sub = sub
	ms.cancelPump = cancelPump

	go s.pumpLogs(pumpCtx, ms, sink)
	go s.watchSubscription(pumpCtx, ms, sub)
	return nil
}

// pumpLogs forwards batches from the transport sink into the caller's
// handler, isolating the handler from the subscription.
func (s *service) pumpLogs(ctx context.Context, ms *managedSub, sink <-chan []Log) {
	for {
		logs, ok := chanx.Recv(ctx, sink)
		if !ok {
			return
		}
		s.dispatchLogs(ctx, ms, logs)
	}
}

// dispatchLogs invokes the handler with panic isolation: a bug in one
// handler must not take the subscription down with it.
func (s *service) dispatchLogs(ctx context.Context, ms *managedSub, logs []Log) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "log handler panicked",
				"panic", r,
				"filter.address", ms.filter.Address,
				"filter.topic", ms.filter.EventTopic,
			)
		}
	}()

	ms.onLogs(ctx, logs)
}

// watchSubscription waits for the transport subscription to fail and
// kicks off the reconnect loop when it does.
func (s *service) watchSubscription(ctx context.Context, ms *managedSub, sub Subscription) {
	err, ok := chanx.Recv(ctx, sub.Err())
	if !ok || err == nil {
		return
	}

	logger.Warn(ctx, "subscription transport error",
		"error", err,
		"filter.address", ms.filter.Address,
		"filter.topic", ms.filter.EventTopic,
	)

	if ms.onErr != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "error handler panicked", "panic", r)
				}
			}()
			ms.onErr(ctx, err)
		}()
	}

	s.triggerReconnect()
}

// heartbeat periodically logs connection state. Observability only; no
// correctness depends on it.
func (s *service) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			connected := s.connected
			lastConnectedAt := s.lastConnectedAt
			reconnects := s.reconnects
			active := len(s.subs)
			s.mu.Unlock()

			logger.Info(ctx, "chain subscription heartbeat",
				"connected", connected,
				"last_connected_at", lastConnectedAt,
				"reconnect_attempts", reconnects,
				"active_subscriptions", active,
			)
		}
	}
}
