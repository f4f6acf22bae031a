package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when the raw configuration cannot be turned into
	// a registry. It is fatal at startup.
	ErrConfig = errors.New("cluster: invalid configuration")

	// ErrDuplicateClusterID is returned when two cluster names sanitize to
	// the same id and last-write-wins was not requested. It wraps ErrConfig.
	ErrDuplicateClusterID = fmt.Errorf("%w: duplicate cluster id", ErrConfig)

	// ErrUnknownCluster is returned by registry lookups for ids that were
	// never configured.
	ErrUnknownCluster = errors.New("cluster: unknown cluster id")

	// ErrBrokerNotFound is returned when a cluster has no brokers.
	ErrBrokerNotFound = errors.New("cluster: broker not found")
)

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsUnknownClusterError reports whether err is an unknown cluster lookup error.
func IsUnknownClusterError(err error) bool {
	return errors.Is(err, ErrUnknownCluster)
}
