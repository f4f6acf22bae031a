package serde

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/kouncil/v1/schema_registry"
)

// MessageFormat is the wire encoding of a record key or value.
type MessageFormat int

const (
	// FormatString is plain bytes without a registry-managed schema.
	FormatString MessageFormat = iota
	FormatAvro
	FormatProtobuf
	FormatJSONSchema
)

var formatNames = map[MessageFormat]string{
	FormatString:     "STRING",
	FormatAvro:       "AVRO",
	FormatProtobuf:   "PROTOBUF",
	FormatJSONSchema: "JSON_SCHEMA",
}

// AllFormats lists every supported format in declaration order.
func AllFormats() []MessageFormat {
	return []MessageFormat{FormatString, FormatAvro, FormatProtobuf, FormatJSONSchema}
}

func (f MessageFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("MessageFormat(%d)", int(f))
}

// ParseSchemaType maps a schema registry type to a MessageFormat. An empty
// type is Avro, the registry's default.
func ParseSchemaType(registryType string) (MessageFormat, error) {
	switch strings.ToUpper(registryType) {
	case "", schema_registry.TypeAvro:
		return FormatAvro, nil
	case schema_registry.TypeProtobuf:
		return FormatProtobuf, nil
	case schema_registry.TypeJSONSchema:
		return FormatJSONSchema, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSchemaType, registryType)
	}
}
