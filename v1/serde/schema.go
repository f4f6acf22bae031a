package serde

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
)

// SchemaClassifier decides the wire format of a record from its schema id.
// A nil schemaID means the record carries no registry schema.
type SchemaClassifier interface {
	Classify(ctx context.Context, topic string, schemaID *int, isKey bool) (MessageFormat, error)
}

// SchemaSource fetches schemas by id. *schema_registry.Client implements it.
type SchemaSource interface {
	SchemaByID(ctx context.Context, id int) (*schema_registry.Metadata, error)
}

// RawClassifier is used for clusters without a schema registry; every
// record is plain.
type RawClassifier struct{}

func (RawClassifier) Classify(context.Context, string, *int, bool) (MessageFormat, error) {
	return FormatString, nil
}

// RegistryClassifier classifies records by the type of their registry
// schema.
type RegistryClassifier struct {
	source SchemaSource
}

// NewRegistryClassifier creates a classifier backed by source.
func NewRegistryClassifier(source SchemaSource) *RegistryClassifier {
	return &RegistryClassifier{source: source}
}

func (c *RegistryClassifier) Classify(ctx context.Context, _ string, schemaID *int, _ bool) (MessageFormat, error) {
	if schemaID == nil {
		return FormatString, nil
	}
	md, err := c.source.SchemaByID(ctx, *schemaID)
	if err != nil {
		return 0, err
	}
	return ParseSchemaType(md.SchemaType())
}

// ClusterAwareSchema resolves the formatter for a record of one cluster.
type ClusterAwareSchema struct {
	classifier  SchemaClassifier
	formatters  *FormatterRegistry
	resolutions *prometheus.CounterVec
}

// NewClusterAwareSchema binds a classifier to a formatter registry.
// resolutions may be nil.
func NewClusterAwareSchema(classifier SchemaClassifier, formatters *FormatterRegistry, resolutions *prometheus.CounterVec) *ClusterAwareSchema {
	return &ClusterAwareSchema{
		classifier:  classifier,
		formatters:  formatters,
		resolutions: resolutions,
	}
}

// SchemaFormat returns the format of a record's key or value.
func (s *ClusterAwareSchema) SchemaFormat(ctx context.Context, topic string, schemaID *int, isKey bool) (MessageFormat, error) {
	return s.classifier.Classify(ctx, topic, schemaID, isKey)
}

// ResolveFormatter returns the formatter for a record's key or value. It may
// block on a registry fetch.
func (s *ClusterAwareSchema) ResolveFormatter(ctx context.Context, topic string, schemaID *int, isKey bool) (MessageFormatter, error) {
	format, err := s.SchemaFormat(ctx, topic, schemaID, isKey)
	if err != nil {
		return nil, err
	}
	f, err := s.formatters.Get(format)
	if err != nil {
		return nil, err
	}
	if s.resolutions != nil {
		s.resolutions.WithLabelValues(format.String()).Inc()
	}
	return f, nil
}
