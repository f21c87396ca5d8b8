package chanx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecv(t *testing.T) {
	t.Run("delivers a value", func(t *testing.T) {
		ch := make(chan int, 1)
		ch <- 7

		v, ok := Recv(t.Context(), ch)
		require.True(t, ok)
		assert.Equal(t, 7, v)
	})

	t.Run("closed channel", func(t *testing.T) {
		ch := make(chan int)
		close(ch)

		v, ok := Recv(t.Context(), ch)
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		ch := make(chan int)
		v, ok := Recv(ctx, ch)
		assert.False(t, ok)
		assert.Zero(t, v)
	})
}

func TestSend(t *testing.T) {
	t.Run("delivers a value", func(t *testing.T) {
		ch := make(chan string, 1)

		ok := Send(t.Context(), ch, "hello")
		require.True(t, ok)
		assert.Equal(t, "hello", <-ch)
	})

	t.Run("canceled context unblocks a full channel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		ch := make(chan string) // no receiver
		ok := Send(ctx, ch, "stuck")
		assert.False(t, ok)
	})
}
