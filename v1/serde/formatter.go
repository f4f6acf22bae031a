package serde

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/linkedin/goavro/v2"
)

// DeserializationContext is the input of a single decode.
type DeserializationContext struct {
	Topic string
	IsKey bool

	// SchemaID is nil for records without a registry header.
	SchemaID *int

	// Schema is the schema text for SchemaID, empty for FormatString.
	Schema string

	// Payload is the record with the wire format header removed.
	Payload []byte
}

// MessageFormatter turns the bytes of one format into display text.
type MessageFormatter interface {
	Format() MessageFormat
	Deserialize(ctx context.Context, dc DeserializationContext) (string, error)
}

// StringFormatter renders UTF-8 payloads as they are.
type StringFormatter struct{}

func (StringFormatter) Format() MessageFormat { return FormatString }

func (StringFormatter) Deserialize(_ context.Context, dc DeserializationContext) (string, error) {
	if !utf8.Valid(dc.Payload) {
		return "", decodeError(FormatString, dc, errors.New("payload is not valid UTF-8"))
	}
	return string(dc.Payload), nil
}

// AvroFormatter decodes Avro binary payloads into Avro JSON.
//
// Codecs are kept per schema text; the schema for an id never changes.
type AvroFormatter struct {
	codecs sync.Map
}

func (*AvroFormatter) Format() MessageFormat { return FormatAvro }

func (f *AvroFormatter) Deserialize(_ context.Context, dc DeserializationContext) (string, error) {
	if dc.Schema == "" {
		return "", decodeError(FormatAvro, dc, ErrSchemaRequired)
	}

	codec, err := f.codec(dc.Schema)
	if err != nil {
		return "", decodeError(FormatAvro, dc, err)
	}

	native, _, err := codec.NativeFromBinary(dc.Payload)
	if err != nil {
		return "", decodeError(FormatAvro, dc, err)
	}
	text, err := codec.TextualFromNative(nil, native)
	if err != nil {
		return "", decodeError(FormatAvro, dc, err)
	}
	return string(text), nil
}

func (f *AvroFormatter) codec(schema string) (*goavro.Codec, error) {
	if c, ok := f.codecs.Load(schema); ok {
		return c.(*goavro.Codec), nil
	}
	c, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, err
	}
	actual, _ := f.codecs.LoadOrStore(schema, c)
	return actual.(*goavro.Codec), nil
}

var compactJSON = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
}.Froze()

// JSONSchemaFormatter renders JSON payloads compactly with sorted keys.
// Validation against the JSON schema itself is left to producers.
type JSONSchemaFormatter struct{}

func (JSONSchemaFormatter) Format() MessageFormat { return FormatJSONSchema }

func (JSONSchemaFormatter) Deserialize(_ context.Context, dc DeserializationContext) (string, error) {
	var v interface{}
	if err := compactJSON.Unmarshal(dc.Payload, &v); err != nil {
		return "", decodeError(FormatJSONSchema, dc, err)
	}
	out, err := compactJSON.Marshal(v)
	if err != nil {
		return "", decodeError(FormatJSONSchema, dc, err)
	}
	return string(out), nil
}
