package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the logger package.
//
// The module provides *LoggerClient and the Logger interface and registers
// a shutdown hook that flushes buffered entries.
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		func(l *LoggerClient) Logger { return l },
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stderr sync fails on some platforms; nothing to recover there
			_ = client.Zap.Sync()
			return nil
		},
	})
}
