package schema_registry

import (
	"errors"
	"fmt"
)

const tracerName = "github.com/Aleph-Alpha/kouncil/v1/schema_registry"

var (
	// ErrURLRequired is returned by NewClient when no URL is configured.
	ErrURLRequired = errors.New("schema registry: URL is required")

	// ErrInvalidURL is returned by NewClient for malformed URLs.
	ErrInvalidURL = errors.New("schema registry: invalid URL")

	// ErrSchemaNotFound is returned when the registry answers 404.
	ErrSchemaNotFound = errors.New("schema registry: schema not found")

	// ErrInvalidWireFormat is returned by DecodeSchemaID for payloads that do
	// not carry the Confluent header.
	ErrInvalidWireFormat = errors.New("schema registry: invalid wire format")
)

// StatusError is returned for unexpected registry responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schema registry returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFoundError reports whether err means the schema does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}
