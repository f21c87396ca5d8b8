package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/herowatch/herowatch/internal/eventproc"

	"github.com/urfave/cli/v3"
)

// startCommand runs the full live pipeline: chain subscriptions, reveal
// and death reconciliation, and announcements. The process runs until it
// receives SIGINT or SIGTERM, then shuts down with the configured grace
// window.
func startCommand(ep eventproc.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the live event pipeline: contract subscriptions, reconciliation and announcements.",
		Usage:       "Runs until interrupted; terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := ep.Start(ctx); err != nil {
				return err
			}
			defer ep.Close()

			<-quit
			return nil
		},
	}
}
