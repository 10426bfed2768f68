package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	previous := SecretsDir
	SecretsDir = dir
	t.Cleanup(func() { SecretsDir = previous })
	return dir
}

func TestReadSecretOrEnv(t *testing.T) {
	dir := withSecretsDir(t)

	t.Run("file wins over env", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte(" from-file \n"), 0o600))
		t.Setenv("JWT_SECRET", "from-env")

		secret, err := ReadSecretOrEnv("jwt_secret", "JWT_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "from-file", secret)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("REDIS_PASSWORD", "from-env")

		secret, err := ReadSecretOrEnv("redis_password", "REDIS_PASSWORD")
		require.NoError(t, err)
		assert.Equal(t, "from-env", secret)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv("MISSING_SECRET", "")

		_, err := ReadSecretOrEnv("missing_secret", "MISSING_SECRET")
		assert.ErrorIs(t, err, ErrSecretNotFound)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("  "), 0o600))
		t.Setenv("EMPTY", "ignored")

		_, err := ReadSecretOrEnv("empty", "EMPTY")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrSecretNotFound)
	})
}
