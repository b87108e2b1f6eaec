package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "json to stdout",
			cfg:  &Config{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name: "console to stderr",
			cfg:  &Config{Level: "debug", Format: "console", Output: "stderr"},
		},
		{
			name: "custom time format",
			cfg: &Config{
				Level:      "warn",
				Format:     "json",
				Output:     "stdout",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
		{
			name: "empty config falls back to defaults",
			cfg:  &Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.NotPanics(t, func() { logger.Info("configured") })
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestNewEncoder(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		encoder := newEncoder(&Config{Format: "console"})
		assert.NotNil(t, encoder)
	})

	t.Run("json format", func(t *testing.T) {
		encoder := newEncoder(&Config{Format: "json"})
		assert.NotNil(t, encoder)
	})
}

func TestNewWriter(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", "STDOUT", ""} {
		assert.NotNil(t, newWriter(output), output)
	}
}

func TestNewWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	writer := newWriter(path)
	require.NotNil(t, writer)

	_, err := writer.Write([]byte("log line\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log line")
}

func TestNewWriter_UnwritableFileFallsBack(t *testing.T) {
	// Directory path cannot be opened as a file
	writer := newWriter(t.TempDir())
	assert.NotNil(t, writer)
}

func TestSync(t *testing.T) {
	logger, err := New(&Config{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	assert.NotPanics(t, func() { _ = Sync(logger) })
}
