package metrics

// Logger defines the logging operations used by this package.
//
//go:generate mockgen -source=interface.go -destination=mock_logger.go -package=metrics
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
