package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.InfoLevel, parseLevel("").Level())
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG").Level())
	assert.Equal(t, zap.WarnLevel, parseLevel(" warn ").Level())
	assert.Equal(t, zap.InfoLevel, parseLevel("loud").Level())
}

func TestNewWritesJSONWithTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "info", Encoding: "yaml", OutputPath: path})
	require.NoError(t, err)

	log.Named("Test").Debug("hidden")
	log.Named("Test").Info("visible", zap.Int("act", 2))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "one JSON line expected, got %q", data)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "Test", entry["logger"])
	assert.Contains(t, entry, "timestamp")
	assert.EqualValues(t, 2, entry["act"])
}
