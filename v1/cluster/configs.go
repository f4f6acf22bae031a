package cluster

import (
	"context"
	"net"
	"strconv"
)

// Logger defines the logging operations used by this package.
//
//go:generate mockgen -source=configs.go -destination=mock_logger.go -package=cluster
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// ManagementProperties is the opaque property bag handed to the broker
// client of a cluster (security protocol, SASL credentials, TLS material).
type ManagementProperties map[string]string

// BrokerConfig describes one configured broker.
//
// Broker identity for matching purposes is the resolved host address plus
// the port, not the host string; see HostIdentity.
type BrokerConfig struct {
	Host        string  `mapstructure:"host"`
	Port        int     `mapstructure:"port"`
	JMXPort     *int    `mapstructure:"jmxPort"`
	JMXUser     *string `mapstructure:"jmxUser"`
	JMXPassword *string `mapstructure:"jmxPassword"`
}

// Address returns host:port.
func (b BrokerConfig) Address() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// SchemaRegistryAuth holds optional basic-auth credentials.
type SchemaRegistryAuth struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SchemaRegistryConfig points a cluster at its schema registry.
type SchemaRegistryConfig struct {
	URL  string              `mapstructure:"url"`
	Auth *SchemaRegistryAuth `mapstructure:"auth"`
}

// ClusterConfig is the canonical, resolved description of a cluster.
type ClusterConfig struct {
	// Name is the operator-supplied name (or bootstrap entry for the
	// simple configuration shape).
	Name string

	// ID is SanitizeID(Name) and is the registry key.
	ID string

	// Brokers in declaration order.
	Brokers []BrokerConfig

	SchemaRegistry *SchemaRegistryConfig

	Management ManagementProperties

	// Cluster-level JMX settings. They are only defaults that get
	// propagated onto every broker during resolution.
	JMXPort     *int
	JMXUser     *string
	JMXPassword *string
}

func (c ClusterConfig) clone() ClusterConfig {
	out := c
	out.Brokers = make([]BrokerConfig, len(c.Brokers))
	for i, b := range c.Brokers {
		out.Brokers[i] = BrokerConfig{
			Host:        b.Host,
			Port:        b.Port,
			JMXPort:     clonePtr(b.JMXPort),
			JMXUser:     clonePtr(b.JMXUser),
			JMXPassword: clonePtr(b.JMXPassword),
		}
	}
	if c.SchemaRegistry != nil {
		sr := *c.SchemaRegistry
		if sr.Auth != nil {
			auth := *sr.Auth
			sr.Auth = &auth
		}
		out.SchemaRegistry = &sr
	}
	if c.Management != nil {
		out.Management = make(ManagementProperties, len(c.Management))
		for k, v := range c.Management {
			out.Management[k] = v
		}
	}
	out.JMXPort = clonePtr(c.JMXPort)
	out.JMXUser = clonePtr(c.JMXUser)
	out.JMXPassword = clonePtr(c.JMXPassword)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Input is the raw operator configuration. It is either Simple or Advanced;
// the two shapes are never merged.
type Input interface {
	isInput()
}

// Simple is the flat configuration shape: a list of host:port bootstrap
// servers, each becoming a single-broker cluster, and an optional schema
// registry URL shared by all of them.
type Simple struct {
	BootstrapServers  []string
	SchemaRegistryURL string
}

// Advanced is the structured configuration shape.
type Advanced struct {
	Clusters []ClusterDescriptor
}

func (Simple) isInput()   {}
func (Advanced) isInput() {}

// ClusterDescriptor is one entry of the advanced configuration shape.
type ClusterDescriptor struct {
	Name           string                `mapstructure:"name"`
	Brokers        []BrokerConfig        `mapstructure:"brokers"`
	SchemaRegistry *SchemaRegistryConfig `mapstructure:"schemaRegistry"`
	JMXPort        *int                  `mapstructure:"jmxPort"`
	JMXUser        *string               `mapstructure:"jmxUser"`
	JMXPassword    *string               `mapstructure:"jmxPassword"`
	Management     ManagementProperties  `mapstructure:"kafka"`
}

func (d ClusterDescriptor) toClusterConfig() ClusterConfig {
	return ClusterConfig{
		Name:           d.Name,
		ID:             SanitizeID(d.Name),
		Brokers:        d.Brokers,
		SchemaRegistry: d.SchemaRegistry,
		Management:     d.Management,
		JMXPort:        d.JMXPort,
		JMXUser:        d.JMXUser,
		JMXPassword:    d.JMXPassword,
	}.clone()
}
