package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// MetadataClient reads topic and broker metadata of one cluster.
//
// It only issues metadata requests; producing and consuming records is
// done elsewhere.
type MetadataClient struct {
	clusterID string

	// client issues metadata requests; *kafka.Client in production
	client metadataFetcher

	// transport is kept to release idle connections on shutdown
	transport *kafka.Transport

	// registry resolves observed brokers to their configuration
	registry *cluster.Registry

	logger Logger

	maxConcurrentMatches int
}

// Option customizes NewMetadataClient.
type Option func(*MetadataClient)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(c *MetadataClient) { c.logger = l }
}

// WithMaxConcurrentMatches bounds concurrent broker identity checks.
func WithMaxConcurrentMatches(n int) Option {
	return func(c *MetadataClient) { c.maxConcurrentMatches = n }
}

// NewMetadataClient creates the metadata client of a configured cluster.
// The bootstrap addresses and connection settings come from the registry.
//
// Example:
//
//	client, err := kafka.NewMetadataClient(registry, "prod")
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	topics, err := client.Topics(ctx)
func NewMetadataClient(registry *cluster.Registry, clusterID string, opts ...Option) (*MetadataClient, error) {
	brokers, err := registry.BootstrapServers(clusterID)
	if err != nil {
		return nil, err
	}
	props, err := registry.ManagementProperties(clusterID)
	if err != nil {
		return nil, err
	}
	cfg, err := ConfigFromProperties(brokers, props)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", clusterID, err)
	}

	client, transport, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", clusterID, err)
	}

	c := &MetadataClient{
		clusterID:            clusterID,
		client:               client,
		transport:            transport,
		registry:             registry,
		logger:               nopLogger{},
		maxConcurrentMatches: DefaultMaxConcurrentMatches,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	if c.maxConcurrentMatches <= 0 {
		c.maxConcurrentMatches = DefaultMaxConcurrentMatches
	}
	return c, nil
}

// ClusterID returns the id of the cluster this client reads.
func (c *MetadataClient) ClusterID() string {
	return c.clusterID
}

// Close releases idle broker connections.
func (c *MetadataClient) Close() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

func newClient(cfg Config) (*kafka.Client, *kafka.Transport, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, ErrNoBrokers
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := &kafka.Transport{
		ClientID:    "kouncil",
		DialTimeout: cfg.Timeout,
	}
	if cfg.TLS != nil {
		tlsConfig, err := createTLSConfig(*cfg.TLS)
		if err != nil {
			return nil, nil, err
		}
		transport.TLS = tlsConfig
	}
	if cfg.SASL != nil {
		mechanism, err := createSASLMechanism(*cfg.SASL)
		if err != nil {
			return nil, nil, err
		}
		transport.SASL = mechanism
	}

	return &kafka.Client{
		Addr:      kafka.TCP(cfg.Brokers...),
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, transport, nil
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSASLMechanism, cfg.Mechanism)
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{}) {}
