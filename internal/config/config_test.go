package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fallen-dragon-server/shared/utils"
)

// isolateSecrets points the secrets directory at an empty temp dir.
func isolateSecrets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	previous := utils.SecretsDir
	utils.SecretsDir = dir
	t.Cleanup(func() { utils.SecretsDir = previous })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateSecrets(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_PASSWORD", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "data/fallen_dragon.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.DBBusyTimeout)
	assert.Equal(t, 4, cfg.DBMaxOpenConns)
	assert.Equal(t, time.Hour, cfg.StoryCacheTTL)
	assert.Equal(t, "story_session_events", cfg.SessionEventsQueue)
	assert.False(t, cfg.AllowAdvanceAfterCompletion)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.RedisPassword)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := isolateSecrets(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("file-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redis_password"), []byte("redis-pass"), 0o600))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9090\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SERVER_PORT") })

	t.Setenv("ENV", "production")
	t.Setenv("STORY_ALLOW_ADVANCE_AFTER_COMPLETION", "true")
	t.Setenv("DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "redis-pass", cfg.RedisPassword)
	assert.True(t, cfg.AllowAdvanceAfterCompletion)
	assert.Equal(t, 250*time.Millisecond, cfg.DBBusyTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetAllowedOrigins())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	isolateSecrets(t)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig("")
	assert.ErrorIs(t, err, utils.ErrSecretNotFound)
}

func TestLoadSeedConfigWithoutJWTSecret(t *testing.T) {
	isolateSecrets(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SEED_FILE", "seed/fallen_dragon.yaml")

	cfg, err := LoadSeedConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "seed/fallen_dragon.yaml", cfg.SeedFile)
}

func TestValidate(t *testing.T) {
	cfg := Config{DBPath: "x.db", DBMaxOpenConns: 0, RedisAddr: "localhost:6379", StoryCacheTTL: 0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "STORY_CACHE_TTL")
}
