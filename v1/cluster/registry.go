package cluster

import (
	"context"
	"fmt"
	"sort"
)

// Registry is the resolved, read-only cluster model. It is built once by
// Resolve and safe for concurrent use without locking; every accessor
// returns copies.
type Registry struct {
	clusters map[string]ClusterConfig
	hosts    HostComparer
}

// Len returns the number of clusters.
func (r *Registry) Len() int {
	return len(r.clusters)
}

// ClusterIDs returns all cluster ids in sorted order.
func (r *Registry) ClusterIDs() []string {
	ids := make([]string, 0, len(r.clusters))
	for id := range r.clusters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cluster returns the configuration of a cluster.
func (r *Registry) Cluster(clusterID string) (ClusterConfig, error) {
	cfg, ok := r.clusters[clusterID]
	if !ok {
		return ClusterConfig{}, fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}
	return cfg.clone(), nil
}

// Clusters returns every cluster ordered by id.
func (r *Registry) Clusters() []ClusterConfig {
	out := make([]ClusterConfig, 0, len(r.clusters))
	for _, id := range r.ClusterIDs() {
		out = append(out, r.clusters[id].clone())
	}
	return out
}

// ServerByClusterID returns the address of the first known broker of a cluster.
func (r *Registry) ServerByClusterID(clusterID string) (string, error) {
	cfg, ok := r.clusters[clusterID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}
	if len(cfg.Brokers) == 0 {
		return "", fmt.Errorf("%w: cluster %s", ErrBrokerNotFound, clusterID)
	}
	return cfg.Brokers[0].Address(), nil
}

// BootstrapServers returns the addresses of all configured brokers of a cluster.
func (r *Registry) BootstrapServers(clusterID string) ([]string, error) {
	cfg, ok := r.clusters[clusterID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}
	out := make([]string, len(cfg.Brokers))
	for i, b := range cfg.Brokers {
		out[i] = b.Address()
	}
	return out, nil
}

// ManagementProperties returns the broker-client property bag of a cluster.
func (r *Registry) ManagementProperties(clusterID string) (ManagementProperties, error) {
	cfg, err := r.Cluster(clusterID)
	if err != nil {
		return nil, err
	}
	return cfg.Management, nil
}

// SchemaRegistry returns the schema registry of a cluster, or nil when the
// cluster has none.
func (r *Registry) SchemaRegistry(clusterID string) (*SchemaRegistryConfig, error) {
	cfg, err := r.Cluster(clusterID)
	if err != nil {
		return nil, err
	}
	return cfg.SchemaRegistry, nil
}

// BrokerConfigFromCluster finds the configured broker matching a broker
// identity observed on the wire. The port must match exactly; hosts are
// compared with the registry's HostComparer, so this may block on name
// resolution.
func (r *Registry) BrokerConfigFromCluster(ctx context.Context, clusterID, host string, port int) (BrokerConfig, bool, error) {
	cfg, ok := r.clusters[clusterID]
	if !ok {
		return BrokerConfig{}, false, fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}
	for _, b := range cfg.Brokers {
		if b.Port != port {
			continue
		}
		if r.hosts.Equivalent(ctx, host, b.Host) {
			return BrokerConfig{
				Host:        b.Host,
				Port:        b.Port,
				JMXPort:     clonePtr(b.JMXPort),
				JMXUser:     clonePtr(b.JMXUser),
				JMXPassword: clonePtr(b.JMXPassword),
			}, true, nil
		}
	}
	return BrokerConfig{}, false, nil
}
