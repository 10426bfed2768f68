package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir is the Docker Secrets mount point.
var SecretsDir = "/run/secrets"

// ErrSecretNotFound is returned when neither the secret file nor the env var is set.
var ErrSecretNotFound = errors.New("secret not found")

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, filePath)
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv reads the secret file and falls back to the envKey variable
// when the file does not exist. Local runs have no secrets mount.
func ReadSecretOrEnv(secretName, envKey string) (string, error) {
	secret, err := ReadSecret(secretName)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, ErrSecretNotFound) {
		return "", err
	}
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s (file or %s env)", ErrSecretNotFound, secretName, envKey)
}
