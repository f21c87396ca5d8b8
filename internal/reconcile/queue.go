package reconcile

import (
	"errors"
	"sync"
)

// ErrQueueFull is returned by enqueue when the retry queue is at capacity.
// The job is dropped, mirroring abandonment at the attempt ceiling.
var ErrQueueFull = errors.New("retry queue full")

// retryQueue is a bounded FIFO of retry jobs with at most one entry per
// (token, owner) pair. It is safe for concurrent use.
type retryQueue struct {
	mu       sync.Mutex
	capacity int
	order    []key
	jobs     map[key]Job
}

func newRetryQueue(capacity int) *retryQueue {
	return &retryQueue{
		capacity: capacity,
		jobs:     make(map[key]Job),
	}
}

// enqueue adds j unless a job for the same pair is already queued. It
// reports whether the job was freshly inserted; a duplicate is a no-op
// with fresh=false. A full queue rejects with ErrQueueFull.
func (q *retryQueue) enqueue(j Job) (fresh bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := j.key()
	if _, ok := q.jobs[k]; ok {
		return false, nil
	}

	if len(q.order) >= q.capacity {
		return false, ErrQueueFull
	}

	q.jobs[k] = j
	q.order = append(q.order, k)
	return true, nil
}

// takeAll removes and returns every queued job in FIFO order. Jobs
// re-enqueued during processing form the next cycle's batch.
func (q *retryQueue) takeAll() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return nil
	}

	out := make([]Job, 0, len(q.order))
	for _, k := range q.order {
		out = append(out, q.jobs[k])
	}

	q.order = q.order[:0]
	q.jobs = make(map[key]Job)
	return out
}

func (q *retryQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
