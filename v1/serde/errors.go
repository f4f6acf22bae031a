package serde

import (
	"errors"
	"fmt"
)

const tracerName = "github.com/Aleph-Alpha/kouncil/v1/serde"

var (
	// ErrFormatterMissing means a MessageFormat has no registered formatter.
	// It is a startup defect, reported by NewFormatterRegistry and Validate.
	ErrFormatterMissing = errors.New("serde: formatter missing")

	// ErrDuplicateFormatter is returned when two formatters claim one format.
	ErrDuplicateFormatter = errors.New("serde: duplicate formatter")

	// ErrUnknownSchemaType is returned for registry schema types that have no
	// MessageFormat.
	ErrUnknownSchemaType = errors.New("serde: unknown schema type")

	// ErrSchemaRequired is returned by schema-based formatters called
	// without schema text.
	ErrSchemaRequired = errors.New("serde: schema required")
)

// DecodeError describes a record that could not be decoded with the format
// resolved for it. It concerns one record only.
type DecodeError struct {
	Format MessageFormat
	Topic  string
	IsKey  bool
	Err    error
}

func (e *DecodeError) Error() string {
	part := "value"
	if e.IsKey {
		part = "key"
	}
	return fmt.Sprintf("serde: decode %s %s of topic %q: %v", e.Format, part, e.Topic, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsFormatterMissingError reports whether err is ErrFormatterMissing.
func IsFormatterMissingError(err error) bool {
	return errors.Is(err, ErrFormatterMissing)
}

// IsDecodeError reports whether err is a per-record decode failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func decodeError(format MessageFormat, dc DeserializationContext, err error) error {
	return &DecodeError{Format: format, Topic: dc.Topic, IsKey: dc.IsKey, Err: err}
}
