// Package config loads runtime configuration from the environment. Every
// value is supplied through HEROWATCH_-prefixed variables, falls back to a
// documented default, and is validated before the process wires anything.
package config

import (
	"time"

	"github.com/herowatch/herowatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full set of runtime knobs. Behavior lives in the
// components; only values come from the environment.
type Config struct {
	// Observability.
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	ServiceName      string `envconfig:"SERVICE_NAME" default:"herowatch"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// Chain subscription.
	EthereumWSURL      string        `envconfig:"ETHEREUM_WS_URL" validate:"required,url"`
	StakingContract    string        `envconfig:"STAKING_CONTRACT" validate:"required,eth_addr"`
	ReconnectBaseDelay time.Duration `envconfig:"RECONNECT_BASE_DELAY" default:"1s" validate:"gt=0"`
	ReconnectMaxDelay  time.Duration `envconfig:"RECONNECT_MAX_DELAY" default:"30s" validate:"gt=0"`
	HeartbeatInterval  time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"60s" validate:"gt=0"`

	// Metadata source.
	MetadataBaseURL  string        `envconfig:"METADATA_BASE_URL" validate:"required,url"`
	MetadataTimeout  time.Duration `envconfig:"METADATA_TIMEOUT" default:"10s" validate:"gt=0"`
	PlaceholderImage string        `envconfig:"PLACEHOLDER_IMAGE" validate:"required"`

	// Reveal reconciliation.
	SettleDelay        time.Duration `envconfig:"SETTLE_DELAY" default:"15s" validate:"gte=0"`
	RetryInterval      time.Duration `envconfig:"RETRY_INTERVAL" default:"30s" validate:"gt=0"`
	RetryCeiling       uint          `envconfig:"RETRY_CEILING" default:"5" validate:"gt=0"`
	DrainConcurrency   int           `envconfig:"DRAIN_CONCURRENCY" default:"5" validate:"gt=0"`
	BulkConcurrency    int           `envconfig:"BULK_CONCURRENCY" default:"16" validate:"gt=0"`
	RetryQueueCapacity int           `envconfig:"RETRY_QUEUE_CAPACITY" default:"1024" validate:"gt=0"`

	// Token state storage.
	RedisAddr            string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername        string `envconfig:"REDIS_USERNAME"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`
	RedisDB              int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	StoreConnectAttempts uint   `envconfig:"STORE_CONNECT_ATTEMPTS" default:"5" validate:"gt=0"`

	// Social sink. When the credentials are absent the process runs with a
	// log-only notifier instead of refusing to start.
	TwitterAPIKey            string `envconfig:"TWITTER_API_KEY"`
	TwitterAPIKeySecret      string `envconfig:"TWITTER_API_KEY_SECRET"`
	TwitterAccessToken       string `envconfig:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessTokenSecret string `envconfig:"TWITTER_ACCESS_TOKEN_SECRET"`

	// Process lifecycle.
	ShutdownGrace time.Duration `envconfig:"SHUTDOWN_GRACE" default:"2s" validate:"gt=0"`
}

// TwitterConfigured reports whether all four OAuth1 credentials are set.
func (c Config) TwitterConfigured() bool {
	return c.TwitterAPIKey != "" &&
		c.TwitterAPIKeySecret != "" &&
		c.TwitterAccessToken != "" &&
		c.TwitterAccessTokenSecret != ""
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("herowatch", &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
