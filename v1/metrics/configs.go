package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// DefaultNamespace prefixes every metric of this service.
const DefaultNamespace = "kouncil"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address determines the network address where the Prometheus
	// metrics HTTP server listens.
	//
	// Example values:
	//   - ":9090"   → Listen on all interfaces, port 9090
	//   - "127.0.0.1:9100" → Listen only on localhost, port 9100
	//
	// Default: ":9090"
	Address string `mapstructure:"address"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are registered.
	EnableDefaultCollectors bool `mapstructure:"enableDefaultCollectors"`

	// Namespace sets a global prefix for all metrics registered by this service.
	//
	// Default: "kouncil"
	Namespace string `mapstructure:"namespace"`

	// ServiceName is added as a constant "service" label to all metrics.
	ServiceName string `mapstructure:"serviceName"`
}
