package chainsub

import (
	"context"
	"slices"
	"time"

	"github.com/herowatch/herowatch/internal/pkg/logger"
)

// triggerReconnect starts the reconnect loop unless one is already
// running. Multiple failing subscriptions collapse into a single loop.
func (s *service) triggerReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.reconnecting {
		return
	}

	s.reconnecting = true
	s.connected = false

	go s.reconnectLoop(s.ctx)
}

// reconnectLoop re-establishes the transport connection with capped
// exponential backoff and unbounded attempts, then replays the registry in
// registration order so every logical subscription and reload hook is
// rebuilt. It exits only on success or context cancellation.
func (s *service) reconnectLoop(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		s.reconnects++
		s.mu.Unlock()

		delay := backoffDelay(s.baseDelay, s.maxDelay, attempt)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if err := s.transport.Connect(ctx); err != nil {
			logger.Warn(ctx, "transport reconnect failed",
				"error", err,
				"attempt", attempt,
				"next_delay", backoffDelay(s.baseDelay, s.maxDelay, attempt+1),
			)
			continue
		}

		s.mu.Lock()
		s.connected = true
		s.lastConnectedAt = time.Now().UTC()
		registry := slices.Clone(s.registry)
		s.mu.Unlock()

		logger.Info(ctx, "transport reconnected", "attempt", attempt, "registry_size", len(registry))

		for _, entry := range registry {
			if err := entry.fn(ctx); err != nil {
				logger.Error(ctx, "reconnect hook failed", "hook", entry.name, "error", err)
			}
		}

		s.mu.Lock()
		s.reconnecting = false
		s.mu.Unlock()
		return
	}
}

// backoffDelay computes base*2^(attempt-1) capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
