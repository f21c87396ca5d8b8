package deathwatch

import (
	"context"

	"github.com/herowatch/herowatch/internal/hero"
)

// DeathEvent is a decoded Death log.
type DeathEvent struct {
	TokenID uint64
}

// MetadataFetcher retrieves the metadata used to flesh out the obituary.
type MetadataFetcher interface {
	Fetch(ctx context.Context, tokenID uint64) (hero.Metadata, error)
}

// DeathNotifier emits the obituary announcement. level is the hero's last
// known level; zero means unknown and is omitted from the post.
type DeathNotifier interface {
	AnnounceDeath(ctx context.Context, tokenID uint64, image string, level int) error
}

// DeathRecorder persists the death marker on the token record. The write
// is best effort and never gates the announcement.
type DeathRecorder interface {
	MarkDeath(ctx context.Context, tokenID uint64) error
}

// nopDeathRecorder is the default when no durable store is wired.
type nopDeathRecorder struct{}

var _ DeathRecorder = nopDeathRecorder{}

func (nopDeathRecorder) MarkDeath(ctx context.Context, tokenID uint64) error {
	return nil
}
