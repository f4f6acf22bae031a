package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics, together with the collectors the
// cluster and serde packages report to.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	Registry *prometheus.Registry

	hostResolutionFailures prometheus.Counter
	formatterResolutions   *prometheus.CounterVec
	decodeErrors           *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers the domain
// collectors and, if enabled, the default system collectors, wraps all
// metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "kouncil",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.hostResolutionFailures = createCounter(cfg.Namespace, "host_resolution_failures_total",
		"Number of host name resolutions that failed while matching brokers")
	m.formatterResolutions = createCounterVec(cfg.Namespace, "formatter_resolutions_total",
		"Number of formatter resolutions by message format", []string{"format"})
	m.decodeErrors = createCounterVec(cfg.Namespace, "decode_errors_total",
		"Number of records that could not be decoded by message format", []string{"format"})

	wrappedRegistry.MustRegister(
		m.hostResolutionFailures,
		m.formatterResolutions,
		m.decodeErrors,
	)

	// Go runtime, process and build info collectors.
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
