package serde

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines the logging operations used by this package.
//
//go:generate mockgen -source=configs.go -destination=mock_logger.go -package=serde
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})                             {}
func (nopLogger) Warn(string, error, ...map[string]interface{})                             {}
func (nopLogger) WarnWithContext(context.Context, string, error, ...map[string]interface{}) {}

type options struct {
	logger       Logger
	resolutions  *prometheus.CounterVec
	decodeErrors *prometheus.CounterVec
}

// Option customizes ClusterSchemas and Deserializer.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResolutionCounter counts formatter resolutions by format. The vector
// must have a single "format" label.
func WithResolutionCounter(c *prometheus.CounterVec) Option {
	return func(o *options) { o.resolutions = c }
}

// WithDecodeErrorCounter counts decode failures by format. The vector must
// have a single "format" label.
func WithDecodeErrorCounter(c *prometheus.CounterVec) Option {
	return func(o *options) { o.decodeErrors = c }
}

func newOptions(opts []Option) options {
	o := options{logger: nopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	return o
}
