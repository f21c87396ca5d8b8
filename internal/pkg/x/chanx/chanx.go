// Package chanx provides context-aware channel helpers so that blocking
// sends and receives always respect cancellation.
package chanx

import "context"

// Recv waits for a value from ch or for ctx to be done. The boolean is
// false when the context was canceled or the channel was closed.
func Recv[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false
	case v, ok := <-ch:
		return v, ok
	}
}

// Send delivers v to ch unless ctx is done first. It reports whether the
// value was sent.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- v:
		return true
	}
}
