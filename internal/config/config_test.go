package config

import (
	"testing"
	"time"

	"github.com/herowatch/herowatch/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("HEROWATCH_ETHEREUM_WS_URL", "wss://mainnet.example.com/ws")
	t.Setenv("HEROWATCH_STAKING_CONTRACT", "0x1234567890abcdef1234567890abcdef12345678")
	t.Setenv("HEROWATCH_METADATA_BASE_URL", "https://api.example.com/heroes")
	t.Setenv("HEROWATCH_PLACEHOLDER_IMAGE", "https://cdn.example.com/placeholder.png")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "herowatch", cfg.ServiceName)
		assert.False(t, cfg.TelemetryEnabled)
		assert.Equal(t, time.Second, cfg.ReconnectBaseDelay)
		assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
		assert.Equal(t, 15*time.Second, cfg.SettleDelay)
		assert.Equal(t, 30*time.Second, cfg.RetryInterval)
		assert.Equal(t, uint(5), cfg.RetryCeiling)
		assert.Equal(t, 1024, cfg.RetryQueueCapacity)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 2*time.Second, cfg.ShutdownGrace)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("HEROWATCH_LOG_LEVEL", "debug")
		t.Setenv("HEROWATCH_SETTLE_DELAY", "1m")
		t.Setenv("HEROWATCH_RETRY_CEILING", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, time.Minute, cfg.SettleDelay)
		assert.Equal(t, uint(3), cfg.RetryCeiling)
	})

	t.Run("missing required values", func(t *testing.T) {
		t.Setenv("HEROWATCH_ETHEREUM_WS_URL", "")
		t.Setenv("HEROWATCH_STAKING_CONTRACT", "")
		t.Setenv("HEROWATCH_METADATA_BASE_URL", "")
		t.Setenv("HEROWATCH_PLACEHOLDER_IMAGE", "")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a malformed contract address", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("HEROWATCH_STAKING_CONTRACT", "not-an-address")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})
}

func TestConfig_TwitterConfigured(t *testing.T) {
	t.Run("all credentials present", func(t *testing.T) {
		cfg := Config{
			TwitterAPIKey:            "key",
			TwitterAPIKeySecret:      "key-secret",
			TwitterAccessToken:       "token",
			TwitterAccessTokenSecret: "token-secret",
		}
		assert.True(t, cfg.TwitterConfigured())
	})

	t.Run("partial credentials", func(t *testing.T) {
		cfg := Config{
			TwitterAPIKey:      "key",
			TwitterAccessToken: "token",
		}
		assert.False(t, cfg.TwitterConfigured())
	})

	t.Run("no credentials", func(t *testing.T) {
		assert.False(t, Config{}.TwitterConfigured())
	})
}
