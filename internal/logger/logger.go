// Package logger builds the zap loggers used by the server, CLI and tests.
package logger

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const baseConfig = `{
  "level": "info",
  "encoding": "json",
  "outputPaths": ["stderr"],
  "errorOutputPaths": ["stderr"],
  "encoderConfig": {
    "messageKey": "message",
    "levelKey": "level",
    "timeKey": "ts",
    "callerKey": "caller",
    "levelEncoder": "lowercase",
    "timeEncoder": "iso8601",
    "callerEncoder": "short"
  }
}`

// New returns a JSON logger writing to stderr at the given level
// ("debug", "info", "warn", "error").
func New(level string) (*zap.Logger, error) {
	var cfg zap.Config
	if err := json.Unmarshal([]byte(baseConfig), &cfg); err != nil {
		return nil, fmt.Errorf("logger: parse config: %w", err)
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l, nil
}

// NewTestLogger returns a new logger and observed logs for testing.
func NewTestLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zap.DebugLevel)
	return zap.New(core), recorded
}
