package cluster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const hostPortSeparator = ":"

type resolveOptions struct {
	logger        Logger
	hosts         HostComparer
	lastWriteWins bool
}

// ResolveOption customizes Resolve.
type ResolveOption func(*resolveOptions)

// WithLogger sets the logger used during resolution.
func WithLogger(l Logger) ResolveOption {
	return func(o *resolveOptions) { o.logger = l }
}

// WithHostComparer sets the host comparer the registry uses for broker
// identity lookups. Defaults to a HostIdentity with default settings.
func WithHostComparer(h HostComparer) ResolveOption {
	return func(o *resolveOptions) { o.hosts = h }
}

// WithLastWriteWins makes clusters whose names sanitize to the same id
// silently replace the earlier entry instead of failing resolution.
func WithLastWriteWins() ResolveOption {
	return func(o *resolveOptions) { o.lastWriteWins = true }
}

// Resolve builds the cluster registry from raw configuration.
//
// Advanced input is used exclusively when present, even if it holds no
// clusters. Any error wraps ErrConfig and no registry is returned.
func Resolve(input Input, opts ...ResolveOption) (*Registry, error) {
	o := resolveOptions{logger: nopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hosts == nil {
		o.hosts = NewHostIdentity(WithHostLogger(o.logger))
	}

	var (
		clusters map[string]ClusterConfig
		err      error
	)
	switch in := input.(type) {
	case Advanced:
		clusters, err = resolveAdvanced(in, o)
	case *Advanced:
		if in == nil {
			return nil, fmt.Errorf("%w: no cluster configuration given", ErrConfig)
		}
		clusters, err = resolveAdvanced(*in, o)
	case Simple:
		clusters, err = resolveSimple(in, o)
	case *Simple:
		if in == nil {
			return nil, fmt.Errorf("%w: no cluster configuration given", ErrConfig)
		}
		clusters, err = resolveSimple(*in, o)
	default:
		return nil, fmt.Errorf("%w: no cluster configuration given", ErrConfig)
	}
	if err != nil {
		return nil, err
	}

	return &Registry{clusters: clusters, hosts: o.hosts}, nil
}

func resolveSimple(in Simple, o resolveOptions) (map[string]ClusterConfig, error) {
	o.logger.Info("Using simple cluster configuration", nil, map[string]interface{}{
		"bootstrap_servers":   in.BootstrapServers,
		"schema_registry_url": in.SchemaRegistryURL,
	})

	clusters := make(map[string]ClusterConfig, len(in.BootstrapServers))
	for _, server := range in.BootstrapServers {
		broker, err := parseBootstrapServer(server)
		if err != nil {
			return nil, err
		}
		cfg := ClusterConfig{
			Name:       server,
			ID:         SanitizeID(server),
			Brokers:    []BrokerConfig{broker},
			Management: ManagementProperties{},
		}
		if strings.TrimSpace(in.SchemaRegistryURL) != "" {
			cfg.SchemaRegistry = &SchemaRegistryConfig{URL: in.SchemaRegistryURL}
		}
		if err := put(clusters, cfg, o); err != nil {
			return nil, err
		}
	}
	return clusters, nil
}

// parseBootstrapServer splits on the first separator only, so IPv6
// literals are not supported in the simple shape.
func parseBootstrapServer(server string) (BrokerConfig, error) {
	host, rawPort, found := strings.Cut(server, hostPortSeparator)
	if !found {
		return BrokerConfig{}, fmt.Errorf("%w: could not parse bootstrap server %s", ErrConfig, server)
	}
	if host == "" || rawPort == "" {
		return BrokerConfig{}, fmt.Errorf("%w: could not parse bootstrap server %s: host and port are required", ErrConfig, server)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return BrokerConfig{}, fmt.Errorf("%w: could not parse bootstrap server %s: %v", ErrConfig, server, err)
	}
	return BrokerConfig{Host: host, Port: port}, nil
}

func resolveAdvanced(in Advanced, o resolveOptions) (map[string]ClusterConfig, error) {
	o.logger.Info("Advanced cluster configuration present", nil, map[string]interface{}{
		"clusters": len(in.Clusters),
	})

	clusters := make(map[string]ClusterConfig, len(in.Clusters))
	for _, d := range in.Clusters {
		cfg := d.toClusterConfig()
		if cfg.Management == nil {
			cfg.Management = ManagementProperties{}
		}
		if err := put(clusters, cfg, o); err != nil {
			return nil, err
		}
	}

	o.logger.Info("Propagating jmx config values from clusters to brokers", nil)
	for id, cfg := range clusters {
		propagateJMX(&cfg, o.logger)
		clusters[id] = cfg
	}
	return clusters, nil
}

func put(clusters map[string]ClusterConfig, cfg ClusterConfig, o resolveOptions) error {
	if prev, ok := clusters[cfg.ID]; ok {
		if !o.lastWriteWins {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrDuplicateClusterID, prev.Name, cfg.Name, cfg.ID)
		}
		o.logger.Warn("Cluster id collision, replacing earlier cluster", nil, map[string]interface{}{
			"cluster_id": cfg.ID,
			"replaced":   prev.Name,
			"by":         cfg.Name,
		})
	}
	clusters[cfg.ID] = cfg
	return nil
}

// propagateJMX overwrites each broker's JMX field with the cluster-level
// value whenever the latter is set. The three fields are independent.
func propagateJMX(cfg *ClusterConfig, log Logger) {
	if cfg.JMXPort != nil {
		log.Info("Propagating JMX port from cluster to brokers", nil, map[string]interface{}{
			"cluster":  cfg.Name,
			"jmx_port": *cfg.JMXPort,
		})
		for i := range cfg.Brokers {
			cfg.Brokers[i].JMXPort = clonePtr(cfg.JMXPort)
		}
	}
	if cfg.JMXUser != nil {
		log.Info("Propagating JMX user from cluster to brokers", nil, map[string]interface{}{
			"cluster":  cfg.Name,
			"jmx_user": *cfg.JMXUser,
		})
		for i := range cfg.Brokers {
			cfg.Brokers[i].JMXUser = clonePtr(cfg.JMXUser)
		}
	}
	if cfg.JMXPassword != nil {
		log.Info("Propagating JMX password from cluster to brokers", nil, map[string]interface{}{
			"cluster": cfg.Name,
		})
		for i := range cfg.Brokers {
			cfg.Brokers[i].JMXPassword = clonePtr(cfg.JMXPassword)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})                             {}
func (nopLogger) Warn(string, error, ...map[string]interface{})                             {}
func (nopLogger) WarnWithContext(context.Context, string, error, ...map[string]interface{}) {}
