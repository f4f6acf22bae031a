package tracer

// Config holds the tracer settings.
type Config struct {
	// ServiceName is reported as service.name on every span.
	ServiceName string `mapstructure:"serviceName"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `mapstructure:"appEnv"`

	// EnableExport sends spans to an OTLP/HTTP collector. The endpoint is
	// taken from the standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool `mapstructure:"enableExport"`
}
