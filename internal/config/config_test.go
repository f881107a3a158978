package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Init(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "5050", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
	assert.Equal(t, "mindcare:crisis_log", cfg.Crisis.LogKey)
	assert.Equal(t, 24*time.Hour, cfg.FollowUp.HighAfter)
	assert.Equal(t, 72*time.Hour, cfg.FollowUp.MediumAfter)
	assert.Equal(t, 168*time.Hour, cfg.FollowUp.DefaultAfter)
	assert.Same(t, cfg, Get())
}

func TestInit_FileAndEnvOverrides(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	yaml := []byte(`
server:
  port: "9090"
crisis:
  store: redis
  region: GB
followup:
  high_after: 12h
`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), yaml, 0o644))
	t.Setenv("MINDCARE_DATABASE_DRIVER", "postgres")
	t.Setenv("MINDCARE_SERVER_PROVIDER_SECRET", "s3cret")

	cfg, err := Init(root, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Crisis.Store)
	assert.Equal(t, "GB", cfg.Crisis.Region)
	assert.Equal(t, 12*time.Hour, cfg.FollowUp.HighAfter)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Server.ProviderSecret)
}

func TestInit_MalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte("server: [unterminated"), 0o644))

	_, err := Init(root, zap.NewNop())
	assert.Error(t, err)
}

func TestInit_ReloadsOnFileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	path := filepath.Join(root, "config", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  provider_secret: first\n"), 0o644))

	cfg, err := Init(root, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "first", cfg.Server.ProviderSecret)
	assert.Empty(t, cfg.Server.TrustedProxies)

	updated := []byte("server:\n  provider_secret: second\n  trusted_proxies: [\"10.0.0.1\"]\n")
	require.NoError(t, os.WriteFile(path, updated, 0o644))

	assert.Eventually(t, func() bool {
		return Get().Server.ProviderSecret == "second"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"10.0.0.1"}, Get().Server.TrustedProxies)
	assert.Equal(t, "first", cfg.Server.ProviderSecret, "a loaded config is never mutated")
}
