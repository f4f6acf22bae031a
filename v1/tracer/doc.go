// Package tracer installs the OpenTelemetry tracer provider for the
// process.
//
// The schema registry client and the deserializer create spans via
// otel.Tracer; once NewClient has run those spans are recorded by the SDK
// and, with EnableExport, shipped over OTLP/HTTP. Log lines written with a
// context carry the trace and span ids (see the logger package).
package tracer
