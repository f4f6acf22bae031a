// Package metrics exposes Prometheus metrics over HTTP and owns the
// collectors the other packages report to.
//
// Each service gets its own registry; every metric carries a constant
// "service" label and the configured namespace prefix (default "kouncil"):
//
//	kouncil_host_resolution_failures_total
//	kouncil_formatter_resolutions_total{format="AVRO"}
//	kouncil_decode_errors_total{format="PROTOBUF"}
//
// Wiring the collectors:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "kouncil"})
//
//	hosts := cluster.NewHostIdentity(cluster.WithResolutionFailures(m.HostResolutionFailures()))
//	schemas, err := serde.NewClusterSchemas(registry, formatters, sources,
//	    serde.WithResolutionCounter(m.FormatterResolutions()),
//	    serde.WithDecodeErrorCounter(m.DecodeErrors()),
//	)
//
// Metrics are served at http://<address>/metrics. With
// EnableDefaultCollectors the Go runtime, process and build info collectors
// are registered as well.
package metrics
