package kafka

import "errors"

var (
	// ErrUnsupportedSecurityProtocol is returned for unknown security.protocol values.
	ErrUnsupportedSecurityProtocol = errors.New("kafka: unsupported security protocol")

	// ErrUnsupportedSASLMechanism is returned for unknown sasl.mechanism values.
	ErrUnsupportedSASLMechanism = errors.New("kafka: unsupported SASL mechanism")

	// ErrInvalidProperty is returned for management properties that cannot be parsed.
	ErrInvalidProperty = errors.New("kafka: invalid management property")

	// ErrNoBrokers is returned when a cluster has no bootstrap address.
	ErrNoBrokers = errors.New("kafka: no brokers configured")
)
