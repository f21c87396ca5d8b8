package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryQueue_Enqueue(t *testing.T) {
	t.Run("fresh insert", func(t *testing.T) {
		q := newRetryQueue(4)

		fresh, err := q.enqueue(Job{TokenID: 42, Owner: "0xabc"})
		require.NoError(t, err)
		assert.True(t, fresh)
		assert.Equal(t, 1, q.len())
	})

	t.Run("duplicate pair is a no-op", func(t *testing.T) {
		q := newRetryQueue(4)

		_, err := q.enqueue(Job{TokenID: 42, Owner: "0xabc", Attempts: 1})
		require.NoError(t, err)

		fresh, err := q.enqueue(Job{TokenID: 42, Owner: "0xabc", Attempts: 2})
		require.NoError(t, err)
		assert.False(t, fresh)
		assert.Equal(t, 1, q.len())

		// the first enqueue wins
		jobs := q.takeAll()
		require.Len(t, jobs, 1)
		assert.Equal(t, uint(1), jobs[0].Attempts)
	})

	t.Run("same token different owners queue separately", func(t *testing.T) {
		q := newRetryQueue(4)

		fresh, err := q.enqueue(Job{TokenID: 42, Owner: "0xabc"})
		require.NoError(t, err)
		require.True(t, fresh)

		fresh, err = q.enqueue(Job{TokenID: 42, Owner: "0xdef"})
		require.NoError(t, err)
		assert.True(t, fresh)
		assert.Equal(t, 2, q.len())
	})

	t.Run("full queue rejects", func(t *testing.T) {
		q := newRetryQueue(2)

		for i := uint64(1); i <= 2; i++ {
			_, err := q.enqueue(Job{TokenID: i, Owner: "0xabc"})
			require.NoError(t, err)
		}

		_, err := q.enqueue(Job{TokenID: 3, Owner: "0xabc"})
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Equal(t, 2, q.len())
	})
}

func TestRetryQueue_TakeAll(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		q := newRetryQueue(4)
		assert.Nil(t, q.takeAll())
	})

	t.Run("fifo order and reset", func(t *testing.T) {
		q := newRetryQueue(4)

		for i := uint64(1); i <= 3; i++ {
			_, err := q.enqueue(Job{TokenID: i, Owner: "0xabc"})
			require.NoError(t, err)
		}

		jobs := q.takeAll()
		require.Len(t, jobs, 3)
		for i, job := range jobs {
			assert.Equal(t, uint64(i+1), job.TokenID)
		}

		assert.Equal(t, 0, q.len())

		// the pair can queue again after being taken
		fresh, err := q.enqueue(Job{TokenID: 1, Owner: "0xabc"})
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}
