package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CreateLogger builds a development logger when debug is set, otherwise a
// production logger at the configured level.
func (c *Config) CreateLogger(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug || c.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
		return logger, errors.Wrap(err, "create logger")
	}

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err = cfg.Build()
	return logger, errors.Wrap(err, "create logger")
}
