package serde

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
)

// DeserializedValue is the decoded key or value of one record. Err is set
// when the record could not be decoded; the record is skipped, not the
// stream.
type DeserializedValue struct {
	Format   MessageFormat
	SchemaID *int
	Value    string
	Err      error
}

// Deserializer decodes raw record keys and values of any configured
// cluster.
type Deserializer struct {
	schemas      *ClusterSchemas
	logger       Logger
	decodeErrors *prometheus.CounterVec
}

// NewDeserializer creates a Deserializer.
func NewDeserializer(schemas *ClusterSchemas, opts ...Option) *Deserializer {
	o := newOptions(opts)
	return &Deserializer{
		schemas:      schemas,
		logger:       o.logger,
		decodeErrors: o.decodeErrors,
	}
}

// Deserialize decodes a record key (isKey) or value. A Confluent header is
// honoured only on clusters with a schema registry. Nil data is a null
// record and yields an empty string value.
func (d *Deserializer) Deserialize(ctx context.Context, clusterID, topic string, isKey bool, data []byte) DeserializedValue {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "serde.Deserialize")
	defer span.End()
	span.SetAttributes(
		attribute.String("kafka.cluster", clusterID),
		attribute.String("kafka.topic", topic),
		attribute.Bool("kafka.is_key", isKey),
	)

	if data == nil {
		return DeserializedValue{Format: FormatString}
	}

	dc := DeserializationContext{Topic: topic, IsKey: isKey, Payload: data}
	source := d.schemas.source(clusterID)
	if source != nil && schema_registry.HasSchemaHeader(data) {
		id, payload, err := schema_registry.DecodeSchemaID(data)
		if err == nil {
			dc.SchemaID = &id
			dc.Payload = payload
			span.SetAttributes(attribute.Int("schema.id", id))
		}
	}

	result := DeserializedValue{SchemaID: dc.SchemaID}
	fail := func(format MessageFormat, err error) DeserializedValue {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if d.decodeErrors != nil {
			d.decodeErrors.WithLabelValues(format.String()).Inc()
		}
		d.logger.WarnWithContext(ctx, "Could not deserialize record", err, map[string]interface{}{
			"cluster": clusterID,
			"topic":   topic,
			"isKey":   isKey,
			"format":  format.String(),
		})
		result.Format = format
		result.Err = err
		return result
	}

	formatter, err := d.schemas.ResolveFormatter(ctx, clusterID, topic, dc.SchemaID, isKey)
	if err != nil {
		return fail(FormatString, err)
	}
	format := formatter.Format()

	if format != FormatString && dc.SchemaID != nil {
		md, err := source.SchemaByID(ctx, *dc.SchemaID)
		if err != nil {
			return fail(format, err)
		}
		dc.Schema = md.Schema
	}

	value, err := formatter.Deserialize(ctx, dc)
	if err != nil {
		return fail(format, err)
	}

	result.Format = format
	result.Value = value
	return result
}
