package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// convertToZapFields converts error and additional field maps into Zap's structured logging fields.
// If multiple fields maps contain the same key, the later maps will override earlier ones.
func (l *LoggerClient) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

func (l *LoggerClient) contextFields(ctx context.Context, err error, fields ...map[string]interface{}) []zap.Field {
	zapFields := l.convertToZapFields(err, fields...)
	if !l.tracingEnabled || ctx == nil {
		return zapFields
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		zapFields = append(zapFields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return zapFields
}

// Debug logs a debug-level message.
func (l *LoggerClient) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

// Info logs an informational message, along with an optional error and structured fields.
//
// Example:
//
//	logger.Info("Cluster registry ready", nil, map[string]interface{}{
//	    "clusters": 2,
//	})
func (l *LoggerClient) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

// Warn logs a warning message. Use it for degraded but recoverable situations.
func (l *LoggerClient) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs an error message.
func (l *LoggerClient) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// InfoWithContext logs at info level and adds trace and span ids when tracing is enabled.
func (l *LoggerClient) InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.contextFields(ctx, err, fields...)...)
}

// WarnWithContext logs at warning level and adds trace and span ids when tracing is enabled.
func (l *LoggerClient) WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.contextFields(ctx, err, fields...)...)
}

// ErrorWithContext logs at error level and adds trace and span ids when tracing is enabled.
func (l *LoggerClient) ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.contextFields(ctx, err, fields...)...)
}
