package main

import (
	"context"
	"fmt"
	"os"

	"github.com/herowatch/herowatch/internal/chainsub"
	"github.com/herowatch/herowatch/internal/config"
	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/eventproc"
	"github.com/herowatch/herowatch/internal/handlers/cli"
	blockchain "github.com/herowatch/herowatch/internal/infra/blockchain/ethereum"
	metadata "github.com/herowatch/herowatch/internal/infra/metadata/http"
	"github.com/herowatch/herowatch/internal/infra/notifier/lognotify"
	"github.com/herowatch/herowatch/internal/infra/notifier/twitter"
	"github.com/herowatch/herowatch/internal/infra/storage/memory"
	redisstorage "github.com/herowatch/herowatch/internal/infra/storage/redis"
	"github.com/herowatch/herowatch/internal/pkg/logger"
	"github.com/herowatch/herowatch/internal/pkg/resilience/retry"
	"github.com/herowatch/herowatch/internal/pkg/telemetry"
	transporthttp "github.com/herowatch/herowatch/internal/pkg/transport/http"
	"github.com/herowatch/herowatch/internal/revealwatch"
)

// tokenStore is the storage surface the pipeline needs: reveal state plus
// the best-effort death marker. Both the Redis client and the in-memory
// fallback satisfy it.
type tokenStore interface {
	revealwatch.TokenStorage
	deathwatch.DeathRecorder
}

// announcer is the combined social sink.
type announcer interface {
	revealwatch.RevealNotifier
	deathwatch.DeathNotifier
}

// connectStorage dials Redis within a bounded retry budget. When the
// store stays unreachable the process starts degraded on in-memory
// storage instead of exiting: reveals are still announced, but state does
// not survive a restart.
func connectStorage(ctx context.Context, cfg config.Config) tokenStore {
	var store tokenStore

	connect := retry.New(retry.WithAttempts(cfg.StoreConnectAttempts))
	err := connect.Execute(ctx, func() error {
		client, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		store = client
		return nil
	})
	if err != nil {
		logger.Error(ctx, "state store unreachable, starting degraded with in-memory storage",
			"addr", cfg.RedisAddr,
			"attempts", cfg.StoreConnectAttempts,
			"error", err,
		)
		return memory.New()
	}

	return store
}

func buildNotifier(ctx context.Context, cfg config.Config) announcer {
	if !cfg.TwitterConfigured() {
		logger.Warn(ctx, "twitter credentials not configured, announcements will only be logged")
		return lognotify.New()
	}

	notifier, err := twitter.NewNotifier(
		cfg.TwitterAPIKey,
		cfg.TwitterAPIKeySecret,
		cfg.TwitterAccessToken,
		cfg.TwitterAccessTokenSecret,
	)
	if err != nil {
		logger.Error(ctx, "twitter client initialization failed, announcements will only be logged", "error", err)
		return lognotify.New()
	}

	return notifier
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	var telemetryShutdown telemetry.ShutdownFunc
	if cfg.TelemetryEnabled {
		telemetryShutdown, err = telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			fmt.Fprintln(os.Stderr, "telemetry initialization failed:", err)
			os.Exit(1)
		}
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "logger initialization failed:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
		if telemetryShutdown != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
			defer cancel()
			_ = telemetryShutdown(shutdownCtx)
		}
	}()

	store := connectStorage(ctx, cfg)
	notifier := buildNotifier(ctx, cfg)
	fetcher := metadata.NewClient(cfg.MetadataBaseURL, transporthttp.WithTimeout(cfg.MetadataTimeout))

	subs := chainsub.New(blockchain.NewTransport(cfg.EthereumWSURL),
		chainsub.WithReconnectBaseDelay(cfg.ReconnectBaseDelay),
		chainsub.WithReconnectMaxDelay(cfg.ReconnectMaxDelay),
		chainsub.WithHeartbeatInterval(cfg.HeartbeatInterval),
	)

	reveal := revealwatch.New(store, fetcher, notifier, cfg.PlaceholderImage,
		revealwatch.WithSettleDelay(cfg.SettleDelay),
		revealwatch.WithRetryInterval(cfg.RetryInterval),
		revealwatch.WithRetryCeiling(cfg.RetryCeiling),
		revealwatch.WithDrainConcurrency(cfg.DrainConcurrency),
		revealwatch.WithQueueCapacity(cfg.RetryQueueCapacity),
		revealwatch.WithBulkConcurrency(cfg.BulkConcurrency),
	)

	death := deathwatch.New(fetcher, notifier, deathwatch.WithDeathRecorder(store))

	pipeline := eventproc.New(subs, blockchain.NewDecoder(cfg.StakingContract), reveal, death,
		eventproc.WithShutdownGrace(cfg.ShutdownGrace),
	)

	if err := cli.Run(ctx, pipeline, reveal); err != nil {
		logger.Fatal(ctx, "herowatch terminated", "error", err)
	}
}
