// Package logging builds the structured logger used across the comptime
// core and its demo driver. The core itself never constructs a logger on
// its own (comptime.Options.Logger is a constructor argument, per
// spec.md §1's driver/core boundary) — this package is where the driver
// builds one to pass in.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a development-style console logger at debug level when
// verbose is true, or a quiet logger that only surfaces warnings and
// above otherwise.
func New(verbose bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		// zap.NewDevelopmentConfig().Build() only fails on a broken sink
		// or encoder config, neither of which this constructs; fall back
		// to a no-op rather than let a logging failure take down the VM.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
