package serde

import (
	"fmt"
)

// FormatterRegistry maps every MessageFormat to its formatter. It is built
// once and read-only afterwards.
type FormatterRegistry struct {
	formatters map[MessageFormat]MessageFormatter
}

// NewFormatterRegistry builds a registry from one formatter per format.
// It fails with ErrFormatterMissing unless every value of AllFormats is
// covered.
func NewFormatterRegistry(formatters ...MessageFormatter) (*FormatterRegistry, error) {
	r := &FormatterRegistry{formatters: make(map[MessageFormat]MessageFormatter, len(formatters))}
	for _, f := range formatters {
		if f == nil {
			continue
		}
		format := f.Format()
		if _, ok := r.formatters[format]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFormatter, format)
		}
		r.formatters[format] = f
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultFormatterRegistry returns a registry with the built-in formatters.
func DefaultFormatterRegistry() (*FormatterRegistry, error) {
	return NewFormatterRegistry(
		StringFormatter{},
		&AvroFormatter{},
		&ProtobufFormatter{},
		JSONSchemaFormatter{},
	)
}

// Get returns the formatter for format.
func (r *FormatterRegistry) Get(format MessageFormat) (MessageFormatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatterMissing, format)
	}
	return f, nil
}

// Validate checks that every format resolves to a formatter.
func (r *FormatterRegistry) Validate() error {
	for _, format := range AllFormats() {
		if _, err := r.Get(format); err != nil {
			return err
		}
	}
	return nil
}
