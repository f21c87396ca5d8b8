// Package cli defines the herowatch command-line interface.
package cli

import (
	"context"
	"os"

	"github.com/herowatch/herowatch/internal/eventproc"
	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/urfave/cli/v3"
)

// Run executes the herowatch CLI.
//
// Commands:
//
//   - `start`: runs the live event pipeline until interrupted.
//   - `reconcile`: one-off catch-up pass over every unrevealed token.
func Run(ctx context.Context, ep eventproc.Service, rw revealwatch.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "herowatch",
		Description:           "Watches the hero staking contract and announces reveals and deaths.",
		Usage:                 "herowatch [command] [flags]",
		Commands: []*cli.Command{
			startCommand(ep),
			reconcileCommand(rw),
		},
	}

	return app.Run(ctx, os.Args)
}
