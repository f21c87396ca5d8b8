package revealwatch

import (
	"context"
	"errors"

	"github.com/herowatch/herowatch/internal/hero"
)

// ErrTokenNotFound is returned by TokenStorage.Get when no record exists
// for the token. The engine treats an unknown token as unrevealed and
// creates its record on the first staking event.
var ErrTokenNotFound = errors.New("token record not found")

// TokenStorage is the durable source of truth for per-token reveal state.
// The working set is only a cache of it; whenever the two disagree, the
// persisted value wins.
type TokenStorage interface {
	// Get returns the record for tokenID, or ErrTokenNotFound.
	Get(ctx context.Context, tokenID uint64) (hero.Record, error)

	// EnsureTracked creates the record with revealed=false if the token is
	// unknown. It must never downgrade an already revealed token.
	EnsureTracked(ctx context.Context, tokenID uint64) error

	// MarkRevealed atomically transitions the token to revealed=true,
	// storing image and attributes. It reports first=true only for the
	// write that performed the false-to-true transition; racing callers
	// observe first=false and must not announce.
	MarkRevealed(ctx context.Context, tokenID uint64, image string, attrs []hero.TraitAttribute) (first bool, err error)

	// ListUnrevealed returns every token currently persisted with
	// revealed=false, for bootstrap and bulk reconciliation.
	ListUnrevealed(ctx context.Context) ([]uint64, error)
}
