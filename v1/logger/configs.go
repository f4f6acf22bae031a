package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config holds the logger settings.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else falls
	// back to info.
	Level string `mapstructure:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `mapstructure:"serviceName"`

	// EnableTracing makes the *WithContext methods add trace_id and span_id
	// taken from the span carried by the context.
	EnableTracing bool `mapstructure:"enableTracing"`
}
