package iologger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, parseLevel(tt.in), tt.in)
	}
}

func TestInitFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	path := filepath.Join(dir, LogFile)

	c, err := Init(dir, cfg, false)
	require.NoError(t, err)
	slog.Info("first run", "rows", 3)
	slog.Debug("hidden")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "first run", rec["msg"])
	assert.Equal(t, float64(3), rec["rows"])

	// append keeps the log
	c, err = Init(dir, cfg, true)
	require.NoError(t, err)
	slog.Info("appended")
	require.NoError(t, c.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first run")
	assert.Contains(t, string(data), "appended")

	// a fresh run rotates the previous log away
	c, err = Init(dir, cfg, false)
	require.NoError(t, err)
	slog.Info("second run")
	require.NoError(t, c.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "first run")
	assert.Contains(t, string(data), "second run")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestInitStderr(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	dir := t.TempDir()
	c, err := Init(dir, config.LogConfig{Format: "text", Destination: "stderr"}, false)
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitBadDir(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := Init(file, config.LogConfig{Destination: "file"}, true)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CreateLogFileError, gnErr.Code)
}
