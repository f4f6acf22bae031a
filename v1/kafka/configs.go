package kafka

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Aleph-Alpha/kouncil/v1/cluster"
)

// Logger defines the logging operations used by this package.
//
//go:generate mockgen -source=configs.go -destination=mock_logger.go -package=kafka
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Management property keys understood by ConfigFromProperties.
const (
	PropSecurityProtocol      = "security.protocol"
	PropSASLMechanism         = "sasl.mechanism"
	PropSASLUsername          = "sasl.username"
	PropSASLPassword          = "sasl.password"
	PropSSLCALocation         = "ssl.ca.location"
	PropSSLCertificate        = "ssl.certificate.location"
	PropSSLKey                = "ssl.key.location"
	PropSSLInsecureSkipVerify = "ssl.insecure.skip.verify"
	PropRequestTimeout        = "request.timeout.ms"
)

// Security protocols.
const (
	ProtocolPlaintext     = "PLAINTEXT"
	ProtocolSSL           = "SSL"
	ProtocolSASLPlaintext = "SASL_PLAINTEXT"
	ProtocolSASLSSL       = "SASL_SSL"
)

const (
	// DefaultTimeout applies to metadata requests.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxConcurrentMatches bounds concurrent broker identity checks.
	DefaultMaxConcurrentMatches = 10
)

// Config is the connection configuration of one cluster's metadata client.
type Config struct {
	// Brokers are the bootstrap addresses (host:port).
	Brokers []string

	// Timeout for a single request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// TLS enables encrypted connections when set.
	TLS *TLSConfig

	// SASL enables authentication when set.
	SASL *SASLConfig
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// CACertPath is the path to the CA certificate file
	CACertPath string

	// ClientCertPath is the path to the client certificate file
	ClientCertPath string

	// ClientKeyPath is the path to the client key file
	ClientKeyPath string

	// InsecureSkipVerify controls whether to skip certificate verification
	InsecureSkipVerify bool
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	// Mechanism is the SASL mechanism: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512
	Mechanism string

	Username string
	Password string
}

// ConfigFromProperties builds a Config from bootstrap addresses and a
// cluster's management properties.
func ConfigFromProperties(brokers []string, props cluster.ManagementProperties) (Config, error) {
	cfg := Config{Brokers: brokers}

	if v, ok := props[PropRequestTimeout]; ok {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidProperty, PropRequestTimeout, v)
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}

	protocol := strings.ToUpper(props[PropSecurityProtocol])
	if protocol == "" {
		protocol = ProtocolPlaintext
	}

	var useTLS, useSASL bool
	switch protocol {
	case ProtocolPlaintext:
	case ProtocolSSL:
		useTLS = true
	case ProtocolSASLPlaintext:
		useSASL = true
	case ProtocolSASLSSL:
		useTLS, useSASL = true, true
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedSecurityProtocol, protocol)
	}

	if useTLS {
		tlsCfg := &TLSConfig{
			CACertPath:     props[PropSSLCALocation],
			ClientCertPath: props[PropSSLCertificate],
			ClientKeyPath:  props[PropSSLKey],
		}
		if v, ok := props[PropSSLInsecureSkipVerify]; ok {
			skip, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalidProperty, PropSSLInsecureSkipVerify, v)
			}
			tlsCfg.InsecureSkipVerify = skip
		}
		cfg.TLS = tlsCfg
	}

	if useSASL {
		mechanism := strings.ToUpper(props[PropSASLMechanism])
		if mechanism == "" {
			mechanism = "PLAIN"
		}
		cfg.SASL = &SASLConfig{
			Mechanism: mechanism,
			Username:  props[PropSASLUsername],
			Password:  props[PropSASLPassword],
		}
	}

	return cfg, nil
}
