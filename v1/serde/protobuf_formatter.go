package serde

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const protoFileName = "schema.proto"

var errMessageIndexes = errors.New("malformed message indexes")

// ProtobufFormatter decodes Confluent-framed protobuf payloads into
// protobuf JSON.
//
// The payload starts with the message indexes that locate the record's
// message type inside the schema file: a zigzag varint count followed by
// that many zigzag varint indexes. A single zero byte is shorthand for the
// first top-level message.
type ProtobufFormatter struct {
	files sync.Map
}

func (*ProtobufFormatter) Format() MessageFormat { return FormatProtobuf }

func (f *ProtobufFormatter) Deserialize(ctx context.Context, dc DeserializationContext) (string, error) {
	if dc.Schema == "" {
		return "", decodeError(FormatProtobuf, dc, ErrSchemaRequired)
	}

	fd, err := f.file(ctx, dc.Schema)
	if err != nil {
		return "", decodeError(FormatProtobuf, dc, err)
	}

	indexes, payload, err := readMessageIndexes(dc.Payload)
	if err != nil {
		return "", decodeError(FormatProtobuf, dc, err)
	}
	md, err := messageByIndexes(fd, indexes)
	if err != nil {
		return "", decodeError(FormatProtobuf, dc, err)
	}

	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(payload, msg); err != nil {
		return "", decodeError(FormatProtobuf, dc, err)
	}
	out, err := protojson.Marshal(msg)
	if err != nil {
		return "", decodeError(FormatProtobuf, dc, err)
	}
	return string(out), nil
}

func (f *ProtobufFormatter) file(ctx context.Context, schema string) (protoreflect.FileDescriptor, error) {
	if fd, ok := f.files.Load(schema); ok {
		return fd.(protoreflect.FileDescriptor), nil
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				protoFileName: schema,
			}),
		}),
	}
	files, err := compiler.Compile(ctx, protoFileName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var fd protoreflect.FileDescriptor = files[0]
	actual, _ := f.files.LoadOrStore(schema, fd)
	return actual.(protoreflect.FileDescriptor), nil
}

func readMessageIndexes(data []byte) ([]int, []byte, error) {
	count, data, err := readZigZag(data)
	if err != nil {
		return nil, nil, err
	}
	if count == 0 {
		return []int{0}, data, nil
	}
	if count > int64(len(data)) {
		return nil, nil, errMessageIndexes
	}

	indexes := make([]int, 0, count)
	for i := int64(0); i < count; i++ {
		var idx int64
		idx, data, err = readZigZag(data)
		if err != nil {
			return nil, nil, err
		}
		indexes = append(indexes, int(idx))
	}
	return indexes, data, nil
}

func readZigZag(data []byte) (int64, []byte, error) {
	v, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return 0, nil, errMessageIndexes
	}
	x := protowire.DecodeZigZag(v)
	if x < 0 {
		return 0, nil, errMessageIndexes
	}
	return x, data[n:], nil
}

func messageByIndexes(fd protoreflect.FileDescriptor, indexes []int) (protoreflect.MessageDescriptor, error) {
	messages := fd.Messages()
	var md protoreflect.MessageDescriptor
	for _, idx := range indexes {
		if idx >= messages.Len() {
			return nil, fmt.Errorf("message index %v out of range", indexes)
		}
		md = messages.Get(idx)
		messages = md.Messages()
	}
	return md, nil
}
