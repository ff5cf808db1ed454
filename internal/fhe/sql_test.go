package fhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_SQLRoundTrip(t *testing.T) {
	in := Value{Handle: "h-1", Viewers: []string{"0xa", "0xb"}}

	raw, err := in.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"handle":"h-1","viewers":["0xa","0xb"]}`, string(raw.([]byte)))

	var fromBytes, fromString Value
	require.NoError(t, fromBytes.Scan(raw))
	require.NoError(t, fromString.Scan(string(raw.([]byte))))
	assert.Equal(t, in, fromBytes)
	assert.Equal(t, in, fromString)
}

func TestValue_ScanRejectsGarbage(t *testing.T) {
	var v Value
	assert.ErrorIs(t, v.Scan([]byte("not json")), ErrMalformed)
	assert.Error(t, v.Scan(42))

	v = Value{Handle: "x"}
	require.NoError(t, v.Scan(nil))
	assert.True(t, v.IsZero())
}
