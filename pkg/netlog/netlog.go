// Package netlog builds the run's root logr.Logger: a zap.Options
// (Development, TimeEncoder) bound to flags, then bridged into logr via
// go-logr/zapr over a plain *zap.Logger, with no controller-runtime
// wrapper in the mix.
package netlog

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options is the zap.Options flag surface: development mode (console
// encoding, stack traces on warn) vs. production (JSON, stack traces on
// error only).
type Options struct {
	Development bool
}

// New builds the root logger for one run. Every package-level logger in
// this repo is a logr.Logger field threaded down from this one via
// WithName/WithValues, never a package-level global.
func New(opts Options) logr.Logger {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = func(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(d.String())
	}

	zl, err := cfg.Build()
	if err != nil {
		// Build only fails on a malformed config literal above; that's a
		// programming error, not a runtime condition to recover from.
		panic(err)
	}
	return zapr.NewLogger(zl)
}
