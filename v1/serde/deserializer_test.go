package serde

import (
	"context"
	"errors"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
	"github.com/Aleph-Alpha/kouncil/v1/logger"
	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
)

type alwaysEqual struct{}

func (alwaysEqual) Equivalent(context.Context, string, string) bool { return true }

func newTestRegistry(t *testing.T) *cluster.Registry {
	t.Helper()
	reg, err := cluster.Resolve(cluster.Advanced{Clusters: []cluster.ClusterDescriptor{
		{
			Name:           "prod",
			Brokers:        []cluster.BrokerConfig{{Host: "kafka-1", Port: 9092}},
			SchemaRegistry: &cluster.SchemaRegistryConfig{URL: "http://registry:8081"},
		},
		{
			Name:    "dev",
			Brokers: []cluster.BrokerConfig{{Host: "localhost", Port: 9092}},
		},
	}}, cluster.WithHostComparer(alwaysEqual{}))
	require.NoError(t, err)
	return reg
}

func sources(src SchemaSource) SourceFactory {
	return func(cluster.SchemaRegistryConfig) (SchemaSource, error) { return src, nil }
}

func TestNewClusterSchemas(t *testing.T) {
	reg := newTestRegistry(t)
	var seen []string
	schemas, err := NewClusterSchemas(reg, defaultFormatters(t), func(sr cluster.SchemaRegistryConfig) (SchemaSource, error) {
		seen = append(seen, sr.URL)
		return staticSource{1: {ID: 1, Type: schema_registry.TypeProtobuf}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://registry:8081"}, seen)

	ctx := context.Background()
	f, err := schemas.ResolveFormatter(ctx, "prod", "orders", intPtr(1), false)
	require.NoError(t, err)
	assert.Equal(t, FormatProtobuf, f.Format())

	f, err = schemas.ResolveFormatter(ctx, "prod", "orders", nil, true)
	require.NoError(t, err)
	assert.Equal(t, FormatString, f.Format())

	f, err = schemas.ResolveFormatter(ctx, "dev", "orders", intPtr(1), false)
	require.NoError(t, err)
	assert.Equal(t, FormatString, f.Format())

	_, err = schemas.ResolveFormatter(ctx, "staging", "orders", nil, false)
	assert.True(t, cluster.IsUnknownClusterError(err))
}

func TestNewClusterSchemasSourceError(t *testing.T) {
	_, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), func(cluster.SchemaRegistryConfig) (SchemaSource, error) {
		return nil, errors.New("bad url")
	})
	assert.True(t, cluster.IsConfigError(err))
}

func TestNewClusterSchemasLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := NewMockLogger(ctrl)
	logger.EXPECT().Info("Schema resolver ready", nil, gomock.Any()).Times(2)

	_, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), sources(staticSource{}), WithLogger(logger))
	require.NoError(t, err)
}

func TestDeserializer(t *testing.T) {
	codec, err := goavro.NewCodec(userAvroSchema)
	require.NoError(t, err)
	avro, err := codec.BinaryFromNative(nil, map[string]interface{}{"name": "ada", "age": 36})
	require.NoError(t, err)

	src := staticSource{
		10: {ID: 10, Schema: userAvroSchema},
		11: {ID: 11, Schema: `{"type":"object"}`, Type: schema_registry.TypeJSONSchema},
	}
	schemas, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), sources(src))
	require.NoError(t, err)

	decodeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "decode_errors_total"}, []string{"format"})
	d := NewDeserializer(schemas, WithDecodeErrorCounter(decodeErrors))
	ctx := context.Background()

	v := d.Deserialize(ctx, "prod", "users", false, append(schema_registry.EncodeSchemaID(10), avro...))
	require.NoError(t, v.Err)
	assert.Equal(t, FormatAvro, v.Format)
	require.NotNil(t, v.SchemaID)
	assert.Equal(t, 10, *v.SchemaID)
	assert.JSONEq(t, `{"name":"ada","age":36}`, v.Value)

	v = d.Deserialize(ctx, "prod", "users", true, append(schema_registry.EncodeSchemaID(11), `{"id": 1}`...))
	require.NoError(t, v.Err)
	assert.Equal(t, FormatJSONSchema, v.Format)
	assert.Equal(t, `{"id":1}`, v.Value)

	v = d.Deserialize(ctx, "prod", "users", true, []byte("user-1"))
	require.NoError(t, v.Err)
	assert.Equal(t, FormatString, v.Format)
	assert.Nil(t, v.SchemaID)
	assert.Equal(t, "user-1", v.Value)

	v = d.Deserialize(ctx, "prod", "users", false, nil)
	require.NoError(t, v.Err)
	assert.Equal(t, "", v.Value)
}

func TestDeserializerWithoutRegistryIgnoresHeader(t *testing.T) {
	schemas, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), sources(staticSource{}))
	require.NoError(t, err)
	d := NewDeserializer(schemas)

	raw := append(schema_registry.EncodeSchemaID(1), "abc"...)
	v := d.Deserialize(context.Background(), "dev", "logs", false, raw)
	require.NoError(t, v.Err)
	assert.Equal(t, FormatString, v.Format)
	assert.Nil(t, v.SchemaID)
	assert.Equal(t, string(raw), v.Value)
}

func TestDeserializerFailuresDoNotAbort(t *testing.T) {
	src := staticSource{10: {ID: 10, Schema: userAvroSchema}}
	schemas, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), sources(src))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	logger := NewMockLogger(ctrl)
	logger.EXPECT().WarnWithContext(gomock.Any(), "Could not deserialize record", gomock.Any(), gomock.Any()).Times(2)

	decodeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "decode_errors_total"}, []string{"format"})
	d := NewDeserializer(schemas, WithLogger(logger), WithDecodeErrorCounter(decodeErrors))
	ctx := context.Background()

	v := d.Deserialize(ctx, "prod", "users", false, append(schema_registry.EncodeSchemaID(10), 0x02))
	require.Error(t, v.Err)
	assert.True(t, IsDecodeError(v.Err))
	assert.Equal(t, FormatAvro, v.Format)

	v = d.Deserialize(ctx, "prod", "users", false, append(schema_registry.EncodeSchemaID(99), 0x02))
	assert.True(t, schema_registry.IsNotFoundError(v.Err))

	assert.Equal(t, float64(1), testutil.ToFloat64(decodeErrors.WithLabelValues("AVRO")))
	assert.Equal(t, float64(1), testutil.ToFloat64(decodeErrors.WithLabelValues("STRING")))
}

func TestDeserializerFailureLogCarriesTraceIDs(t *testing.T) {
	schemas, err := NewClusterSchemas(newTestRegistry(t), defaultFormatters(t), sources(staticSource{}))
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	d := NewDeserializer(schemas, WithLogger(logger.NewFromZap(zap.New(core), true)))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "browse")
	defer span.End()

	v := d.Deserialize(ctx, "dev", "logs", false, []byte{0xff, 0xfe})
	require.Error(t, v.Err)

	entries := logs.FilterMessage("Could not deserialize record").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, "logs", fields["topic"])
}
