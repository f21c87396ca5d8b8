// Package lognotify is the notifier used when no social credentials are
// configured: announcements are written to the log instead of posted.
package lognotify

import (
	"context"

	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/revealwatch"
)

type notifier struct{}

var (
	_ revealwatch.RevealNotifier = notifier{}
	_ deathwatch.DeathNotifier   = notifier{}
)

// New returns the log-only notifier.
func New() notifier {
	return notifier{}
}

func (notifier) AnnounceReveal(ctx context.Context, tokenID uint64, owner, image string) error {
	logger.Info(ctx, "reveal announcement (log only)",
		"token_id", tokenID,
		"owner", owner,
		"image", image,
	)
	return nil
}

func (notifier) AnnounceDeath(ctx context.Context, tokenID uint64, image string, level int) error {
	logger.Info(ctx, "death announcement (log only)",
		"token_id", tokenID,
		"image", image,
		"level", level,
	)
	return nil
}
