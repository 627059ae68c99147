package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Load default config when no config file is present", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "8081")
		t.Setenv("STORAGE_BUCKET", "loan-documents")
		t.Setenv("SERVER_AUTH_JWTSECRET", "test-secret")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
		assert.True(t, cfg.Server.Auth.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Server.Auth.TokenTTL)
		assert.Equal(t, "test-secret", cfg.Server.Auth.JWTSecret)
		assert.False(t, cfg.Server.Auth.IssueTokens)

		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "json", cfg.Logger.Encoding)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)

		assert.Equal(t, StoreBackendFirestore, cfg.Store.Backend)
		assert.Equal(t, "(default)", cfg.Firestore.DatabaseID)
		assert.Equal(t, "loan-documents", cfg.Storage.Bucket)
		assert.Equal(t, "loanDocument", cfg.Storage.DocumentCategory)

		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Redis.CustomerTTL)
		assert.False(t, cfg.RabbitMQ.Enabled)
		assert.Equal(t, "loan-desk", cfg.RabbitMQ.ExchangeName)

		assert.Equal(t, "*/5 * * * *", cfg.Batch.PendingQueueSchedule)
		assert.Equal(t, 2*time.Minute, cfg.Batch.PendingQueueTimeout)
		assert.Equal(t, 10, cfg.Review.LookupConcurrency)
	})

	t.Run("Config file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte("server:\n  auth:\n    jwtSecret: from-file\nstore:\n  backend: postgres\nreview:\n  lookupConcurrency: 3\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
		assert.Equal(t, 3, cfg.Review.LookupConcurrency)
		assert.Equal(t, "from-file", cfg.Server.Auth.JWTSecret)
	})

	t.Run("Return error when auth is enabled without a secret", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "server.auth.jwtSecret must be set")
	})

	t.Run("Allow an empty secret when auth is disabled", func(t *testing.T) {
		t.Setenv("SERVER_AUTH_ENABLED", "false")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.False(t, cfg.Server.Auth.Enabled)
	})

	t.Run("Return error when config file is invalid", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unclosed"), 0o644))

		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}
