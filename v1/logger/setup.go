package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a wrapper around Uber's Zap logger.
type LoggerClient struct {
	// Zap is the underlying zap.Logger instance. Most logging should go
	// through the wrapper methods.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new instance of the logger based on configuration.
//
// The logger is configured with JSON encoding, ISO8601 timestamps, capital
// level names, caller information and the process id and service name as
// default fields. Output goes to stderr.
//
// If initialization fails, the function will call log.Fatal to terminate the application.
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewFromZap wraps an existing zap logger. Used by tests with zaptest/observer.
func NewFromZap(z *zap.Logger, tracingEnabled bool) *LoggerClient {
	return &LoggerClient{Zap: z.WithOptions(zap.AddCallerSkip(1)), tracingEnabled: tracingEnabled}
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
