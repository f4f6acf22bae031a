// Package logger provides structured logging for kouncil.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: Defines the contract for logging operations
//   - LoggerClient struct: Concrete implementation backed by zap
//   - NewLoggerClient constructor: Returns *LoggerClient (concrete type)
//   - FX module: Provides both *LoggerClient and Logger
//
// # Usage
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       "info",
//		ServiceName: "kouncil",
//	})
//
//	log.Info("Cluster registry ready", nil, map[string]interface{}{
//		"clusters": 3,
//	})
//	log.Warn("Could not compare hosts", err, map[string]interface{}{
//		"host_a": "broker1",
//		"host_b": "10.0.0.7",
//	})
//
// # Configuration
//
//	logger:
//	  level: debug          # debug, info, warning, error
//	  serviceName: kouncil
//	  enableTracing: true
//
// When tracing is enabled the *WithContext methods add trace_id and span_id
// taken from the active OpenTelemetry span.
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
