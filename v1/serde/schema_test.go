package serde

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
)

type recordingClassifier struct {
	format MessageFormat
	err    error

	topic    string
	schemaID *int
	isKey    bool
}

func (c *recordingClassifier) Classify(_ context.Context, topic string, schemaID *int, isKey bool) (MessageFormat, error) {
	c.topic, c.schemaID, c.isKey = topic, schemaID, isKey
	return c.format, c.err
}

type staticSource map[int]*schema_registry.Metadata

func (s staticSource) SchemaByID(_ context.Context, id int) (*schema_registry.Metadata, error) {
	md, ok := s[id]
	if !ok {
		return nil, schema_registry.ErrSchemaNotFound
	}
	return md, nil
}

func intPtr(i int) *int { return &i }

func TestClusterAwareSchemaResolvesEveryFormat(t *testing.T) {
	formatters := defaultFormatters(t)
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "resolutions_total"}, []string{"format"})

	for _, format := range AllFormats() {
		for _, isKey := range []bool{true, false} {
			classifier := &recordingClassifier{format: format}
			s := NewClusterAwareSchema(classifier, formatters, counter)

			f, err := s.ResolveFormatter(context.Background(), "orders", intPtr(3), isKey)
			require.NoError(t, err)
			assert.Equal(t, format, f.Format())
			assert.Equal(t, "orders", classifier.topic)
			assert.Equal(t, isKey, classifier.isKey)
			require.NotNil(t, classifier.schemaID)
			assert.Equal(t, 3, *classifier.schemaID)
		}
		assert.Equal(t, float64(2), testutil.ToFloat64(counter.WithLabelValues(format.String())))
	}
}

func TestClusterAwareSchemaPropagatesErrors(t *testing.T) {
	boom := errors.New("registry down")
	s := NewClusterAwareSchema(&recordingClassifier{err: boom}, defaultFormatters(t), nil)

	_, err := s.ResolveFormatter(context.Background(), "orders", intPtr(1), false)
	assert.ErrorIs(t, err, boom)

	s = NewClusterAwareSchema(&recordingClassifier{format: MessageFormat(99)}, defaultFormatters(t), nil)
	_, err = s.ResolveFormatter(context.Background(), "orders", intPtr(1), false)
	assert.True(t, IsFormatterMissingError(err))
}

func TestRegistryClassifier(t *testing.T) {
	c := NewRegistryClassifier(staticSource{
		1: {ID: 1},
		2: {ID: 2, Type: schema_registry.TypeProtobuf},
		3: {ID: 3, Type: schema_registry.TypeJSONSchema},
		4: {ID: 4, Type: "XML"},
	})
	ctx := context.Background()

	format, err := c.Classify(ctx, "t", nil, false)
	require.NoError(t, err)
	assert.Equal(t, FormatString, format)

	for id, want := range map[int]MessageFormat{1: FormatAvro, 2: FormatProtobuf, 3: FormatJSONSchema} {
		format, err := c.Classify(ctx, "t", intPtr(id), true)
		require.NoError(t, err)
		assert.Equal(t, want, format)
	}

	_, err = c.Classify(ctx, "t", intPtr(4), false)
	assert.ErrorIs(t, err, ErrUnknownSchemaType)

	_, err = c.Classify(ctx, "t", intPtr(5), false)
	assert.True(t, schema_registry.IsNotFoundError(err))
}

func TestRawClassifier(t *testing.T) {
	format, err := RawClassifier{}.Classify(context.Background(), "t", intPtr(7), false)
	require.NoError(t, err)
	assert.Equal(t, FormatString, format)
}
