package serde

import (
	"context"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const userAvroSchema = `{
	"type": "record",
	"name": "User",
	"fields": [
		{"name": "name", "type": "string"},
		{"name": "age", "type": "int"}
	]
}`

const ordersProtoSchema = `
syntax = "proto3";
package shop;

message Order {
  string id = 1;
  int64 amount = 2;
}

message Refund {
  string order_id = 1;
}
`

func TestStringFormatter(t *testing.T) {
	f := StringFormatter{}
	ctx := context.Background()

	got, err := f.Deserialize(ctx, DeserializationContext{Topic: "t", Payload: []byte("héllo")})
	require.NoError(t, err)
	assert.Equal(t, "héllo", got)

	_, err = f.Deserialize(ctx, DeserializationContext{Topic: "t", IsKey: true, Payload: []byte{0xff, 0xfe}})
	require.True(t, IsDecodeError(err))

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, FormatString, de.Format)
	assert.True(t, de.IsKey)
	assert.Equal(t, "t", de.Topic)
}

func TestAvroFormatter(t *testing.T) {
	codec, err := goavro.NewCodec(userAvroSchema)
	require.NoError(t, err)
	payload, err := codec.BinaryFromNative(nil, map[string]interface{}{"name": "ada", "age": 36})
	require.NoError(t, err)

	f := &AvroFormatter{}
	for i := 0; i < 2; i++ {
		got, err := f.Deserialize(context.Background(), DeserializationContext{
			Topic:   "users",
			Schema:  userAvroSchema,
			Payload: payload,
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"ada","age":36}`, got)
	}
}

func TestAvroFormatterErrors(t *testing.T) {
	f := &AvroFormatter{}
	ctx := context.Background()

	_, err := f.Deserialize(ctx, DeserializationContext{Payload: []byte{1}})
	assert.ErrorIs(t, err, ErrSchemaRequired)

	_, err = f.Deserialize(ctx, DeserializationContext{Schema: `{"type":`, Payload: []byte{1}})
	assert.True(t, IsDecodeError(err))

	_, err = f.Deserialize(ctx, DeserializationContext{Schema: userAvroSchema, Payload: []byte{0x02}})
	assert.True(t, IsDecodeError(err))
}

func encodeProto(t *testing.T, message string, fields map[string]interface{}) []byte {
	t.Helper()

	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{"orders.proto": ordersProtoSchema}),
		},
	}
	files, err := compiler.Compile(context.Background(), "orders.proto")
	require.NoError(t, err)

	md := files[0].Messages().ByName(protoreflect.Name(message))
	require.NotNil(t, md)

	msg := dynamicpb.NewMessage(md)
	for name, v := range fields {
		fd := md.Fields().ByName(protoreflect.Name(name))
		require.NotNil(t, fd)
		msg.Set(fd, protoreflect.ValueOf(v))
	}
	out, err := proto.Marshal(msg)
	require.NoError(t, err)
	return out
}

func messageIndexes(indexes ...int) []byte {
	if len(indexes) == 1 && indexes[0] == 0 {
		return []byte{0}
	}
	buf := protowire.AppendVarint(nil, protowire.EncodeZigZag(int64(len(indexes))))
	for _, idx := range indexes {
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(idx)))
	}
	return buf
}

func TestProtobufFormatter(t *testing.T) {
	f := &ProtobufFormatter{}
	ctx := context.Background()

	order := encodeProto(t, "Order", map[string]interface{}{"id": "o-1", "amount": int64(250)})
	got, err := f.Deserialize(ctx, DeserializationContext{
		Topic:   "orders",
		Schema:  ordersProtoSchema,
		Payload: append(messageIndexes(0), order...),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o-1","amount":"250"}`, got)

	refund := encodeProto(t, "Refund", map[string]interface{}{"order_id": "o-1"})
	got, err = f.Deserialize(ctx, DeserializationContext{
		Topic:   "orders",
		Schema:  ordersProtoSchema,
		Payload: append(messageIndexes(1), refund...),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"o-1"}`, got)
}

func TestProtobufFormatterErrors(t *testing.T) {
	f := &ProtobufFormatter{}
	ctx := context.Background()

	_, err := f.Deserialize(ctx, DeserializationContext{Payload: []byte{0}})
	assert.ErrorIs(t, err, ErrSchemaRequired)

	_, err = f.Deserialize(ctx, DeserializationContext{Schema: "message {", Payload: []byte{0}})
	assert.True(t, IsDecodeError(err))

	_, err = f.Deserialize(ctx, DeserializationContext{Schema: ordersProtoSchema, Payload: messageIndexes(5)})
	assert.True(t, IsDecodeError(err))

	_, err = f.Deserialize(ctx, DeserializationContext{Schema: ordersProtoSchema})
	assert.True(t, IsDecodeError(err))
}

func TestReadMessageIndexes(t *testing.T) {
	idx, rest, err := readMessageIndexes([]byte{0, 0xaa})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx)
	assert.Equal(t, []byte{0xaa}, rest)

	idx, rest, err = readMessageIndexes(append(messageIndexes(1, 2), 0xbb))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, idx)
	assert.Equal(t, []byte{0xbb}, rest)

	_, _, err = readMessageIndexes([]byte{0x04})
	assert.Error(t, err)
}

func TestJSONSchemaFormatter(t *testing.T) {
	f := JSONSchemaFormatter{}
	ctx := context.Background()

	got, err := f.Deserialize(ctx, DeserializationContext{Payload: []byte(`{ "b": 12345678901234567890, "a": [1, 2] }`)})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2],"b":12345678901234567890}`, got)

	_, err = f.Deserialize(ctx, DeserializationContext{Topic: "events", Payload: []byte(`{"a":`)})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, FormatJSONSchema, de.Format)
}
