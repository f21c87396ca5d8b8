package cli

import (
	"context"

	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/urfave/cli/v3"
)

// reconcileCommand runs a single catch-up pass over every token the store
// still lists as unrevealed. Announcements are muted; the command is for
// repairing state after downtime, not for replaying the show.
//
// Usage example:
//
//	herowatch reconcile
func reconcileCommand(rw revealwatch.Service) *cli.Command {
	return &cli.Command{
		Name:        "reconcile",
		Description: "Re-checks every unrevealed token once and records any reveals found, without announcing them.",
		Usage:       "One-off bulk reconciliation against the metadata source.",
		Action: func(ctx context.Context, c *cli.Command) error {
			return rw.ReconcileAll(ctx)
		},
	}
}
