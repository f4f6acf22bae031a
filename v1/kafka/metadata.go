package kafka

import (
	"context"
	"fmt"
	"sort"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

type metadataFetcher interface {
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
}

// TopicMetadata describes one topic.
type TopicMetadata struct {
	Name       string
	Partitions int
	Internal   bool
}

// BrokerDetail describes a broker as reported by the cluster, joined with
// its configuration when one matches.
type BrokerDetail struct {
	ID   int
	Host string
	Port int
	Rack string

	// Config is nil when no configured broker matches the observed one.
	Config *cluster.BrokerConfig
}

// Topics lists all topics sorted by name.
func (c *MetadataClient) Topics(ctx context.Context) ([]TopicMetadata, error) {
	md, err := c.client.Metadata(ctx, &kafka.MetadataRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata of cluster %s: %w", c.clusterID, err)
	}

	topics := make([]TopicMetadata, 0, len(md.Topics))
	for _, t := range md.Topics {
		if t.Error != nil {
			c.logger.Warn("Skipping topic with metadata error", t.Error, map[string]interface{}{
				"cluster": c.clusterID,
				"topic":   t.Name,
			})
			continue
		}
		topics = append(topics, TopicMetadata{
			Name:       t.Name,
			Partitions: len(t.Partitions),
			Internal:   t.Internal,
		})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// Brokers lists the brokers of the cluster sorted by id. Each observed
// broker is matched against the configured brokers by resolved address and
// port; the matches run concurrently but bounded, since each may block on
// name resolution.
func (c *MetadataClient) Brokers(ctx context.Context) ([]BrokerDetail, error) {
	md, err := c.client.Metadata(ctx, &kafka.MetadataRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata of cluster %s: %w", c.clusterID, err)
	}

	details := make([]BrokerDetail, len(md.Brokers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrentMatches)
	for i, b := range md.Brokers {
		details[i] = BrokerDetail{ID: b.ID, Host: b.Host, Port: b.Port, Rack: b.Rack}
		g.Go(func() error {
			cfg, ok, err := c.registry.BrokerConfigFromCluster(gctx, c.clusterID, b.Host, b.Port)
			if err != nil {
				return err
			}
			if !ok {
				c.logger.Info("Observed broker has no configuration", nil, map[string]interface{}{
					"cluster": c.clusterID,
					"broker":  b.ID,
					"host":    b.Host,
					"port":    b.Port,
				})
				return nil
			}
			details[i].Config = &cfg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}
