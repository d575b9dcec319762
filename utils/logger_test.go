package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amirphl/taskserial/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("defaults to info json on stdout", func(t *testing.T) {
		logger, err := NewLogger(config.LoggingConfig{})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
		assert.Equal(t, os.Stdout, logger.Out)
	})

	t.Run("text formatter and debug level", func(t *testing.T) {
		logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "text"})
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	})

	t.Run("file output writes to the rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: path, MaxSize: 1})
		require.NoError(t, err)

		logger.WithField("prefix", "WD").Info("allocated")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"prefix":"WD"`)
	})

	t.Run("rejects bad level", func(t *testing.T) {
		_, err := NewLogger(config.LoggingConfig{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("rejects bad output", func(t *testing.T) {
		_, err := NewLogger(config.LoggingConfig{Output: "syslog"})
		assert.Error(t, err)
	})
}
