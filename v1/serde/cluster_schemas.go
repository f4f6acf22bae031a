package serde

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// SourceFactory creates the schema source for one cluster's registry.
type SourceFactory func(cluster.SchemaRegistryConfig) (SchemaSource, error)

type clusterSchema struct {
	schema *ClusterAwareSchema
	source SchemaSource
}

// ClusterSchemas holds one ClusterAwareSchema per configured cluster. It is
// built once at startup and read-only afterwards.
type ClusterSchemas struct {
	clusters map[string]clusterSchema
}

// NewClusterSchemas builds the per-cluster resolvers. Clusters without a
// schema registry classify every record as FormatString.
func NewClusterSchemas(registry *cluster.Registry, formatters *FormatterRegistry, newSource SourceFactory, opts ...Option) (*ClusterSchemas, error) {
	if err := formatters.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	cs := &ClusterSchemas{clusters: make(map[string]clusterSchema, registry.Len())}
	for _, id := range registry.ClusterIDs() {
		sr, err := registry.SchemaRegistry(id)
		if err != nil {
			return nil, err
		}

		var (
			classifier SchemaClassifier = RawClassifier{}
			source     SchemaSource
		)
		if sr != nil {
			source, err = newSource(*sr)
			if err != nil {
				return nil, fmt.Errorf("%w: schema registry of cluster %s: %v", cluster.ErrConfig, id, err)
			}
			classifier = NewRegistryClassifier(source)
		}

		o.logger.Info("Schema resolver ready", nil, map[string]interface{}{
			"cluster":        id,
			"schemaRegistry": sr != nil,
		})
		cs.clusters[id] = clusterSchema{
			schema: NewClusterAwareSchema(classifier, formatters, o.resolutions),
			source: source,
		}
	}
	return cs, nil
}

// ForCluster returns the resolver of a cluster.
func (cs *ClusterSchemas) ForCluster(clusterID string) (*ClusterAwareSchema, error) {
	c, ok := cs.clusters[clusterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cluster.ErrUnknownCluster, clusterID)
	}
	return c.schema, nil
}

// ResolveFormatter returns the formatter for a record of the given cluster.
func (cs *ClusterSchemas) ResolveFormatter(ctx context.Context, clusterID, topic string, schemaID *int, isKey bool) (MessageFormatter, error) {
	s, err := cs.ForCluster(clusterID)
	if err != nil {
		return nil, err
	}
	return s.ResolveFormatter(ctx, topic, schemaID, isKey)
}

func (cs *ClusterSchemas) source(clusterID string) SchemaSource {
	return cs.clusters[clusterID].source
}
