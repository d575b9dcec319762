package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/amirphl/taskserial/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger from the logging configuration.
// File output goes through a rotating writer.
func NewLogger(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)
	logger.SetReportCaller(cfg.EnableCaller)

	switch cfg.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	rotating := func() io.Writer {
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "file":
		logger.SetOutput(rotating())
	case "both":
		logger.SetOutput(io.MultiWriter(os.Stdout, rotating()))
	default:
		return nil, fmt.Errorf("unsupported log output %q", cfg.Output)
	}

	return logger, nil
}
