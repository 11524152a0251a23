// Package logger provides structured logging using zap. It builds a JSON
// production logger with service-level context and installs it as the
// process-wide default.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init creates and returns a structured logger for the given service.
// The logger outputs JSON to stdout with the service name embedded.
func Init(service string, level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log := zap.Must(cfg.Build()).With(
		zap.String("service", service),
	)

	// Replace the global so zap.L() also uses structured output.
	zap.ReplaceGlobals(log)

	return log
}
