package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:5000/api", cfg.ServerURL)
	assert.Equal(t, "class10", cfg.SelectedClass)
	assert.Equal(t, "state", cfg.SelectedBoard)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.LogConsole)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STUDYSHELF_SERVER_URL", "http://example.com/api")
	t.Setenv("STUDYSHELF_LOG_LEVEL", "DEBUG")
	t.Setenv("STUDYSHELF_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "http://example.com/api", cfg.ServerURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.LogConsole)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.SelectedClass = "neet"
	cfg.SelectedBoard = ""
	cfg.ServerURL = "http://localhost:9000/api"
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "neet", loaded.SelectedClass)
	assert.Equal(t, "http://localhost:9000/api", loaded.ServerURL)
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "class10", cfg.SelectedClass)
}
