package reconcile

import "context"

// Job is one deferred token check. Attempts counts failed checks so far
// and is carried across retry cycles.
type Job struct {
	TokenID  uint64
	Owner    string
	Attempts uint
}

// key identifies a job for dedupe purposes: at most one job per
// (token, owner) pair may be queued at a time.
type key struct {
	tokenID uint64
	owner   string
}

func (j Job) key() key {
	return key{tokenID: j.TokenID, owner: j.Owner}
}

// Outcome classifies a check that completed without error.
type Outcome int

const (
	// OutcomeResolved means the token reached its terminal state (or a
	// racing path already resolved it); the job is done.
	OutcomeResolved Outcome = iota

	// OutcomePending means the source legitimately still reports the
	// pre-transition state. The job is done for now and no retry attempt
	// is consumed; a future trigger re-arms the token.
	OutcomePending
)

// CheckFunc performs one fetch-and-resolve pass for a job. A returned
// error is treated as transient and counts against the attempt ceiling.
type CheckFunc func(ctx context.Context, job Job) (Outcome, error)

// AbandonHandler observes a job dropped at the attempt ceiling.
type AbandonHandler func(ctx context.Context, job Job, err error)
