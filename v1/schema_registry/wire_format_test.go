package schema_registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSchemaID(t *testing.T) {
	record := append(EncodeSchemaID(258), []byte("payload")...)

	require.True(t, HasSchemaHeader(record))
	id, payload, err := DecodeSchemaID(record)
	require.NoError(t, err)
	assert.Equal(t, 258, id)
	assert.Equal(t, []byte("payload"), payload)
}

func TestDecodeSchemaIDInvalid(t *testing.T) {
	_, _, err := DecodeSchemaID([]byte{0, 1})
	assert.ErrorIs(t, err, ErrInvalidWireFormat)

	_, _, err = DecodeSchemaID([]byte{1, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidWireFormat)

	assert.False(t, HasSchemaHeader([]byte(`{"json":true}`)))
}
