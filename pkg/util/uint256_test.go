package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256DecodeString(t *testing.T) {
	hexStr := "f037308fa0fb08f9b92a9bf4ae32e4da9f738a9dd972a34616e970112298f137"
	val, err := Uint256DecodeStringLE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.StringLE())

	_, err = Uint256DecodeStringLE(hexStr[1:])
	assert.Error(t, err)

	_, err = Uint256DecodeStringLE(hexStr[:64-2] + "zz")
	assert.Error(t, err)
}

func TestUint256DecodeBytes(t *testing.T) {
	b := make([]byte, Uint256Size)
	b[0] = 0xff
	val, err := Uint256DecodeBytesLE(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.BytesLE())

	_, err = Uint256DecodeBytesLE(b[1:])
	assert.Error(t, err)
}

func TestUint256Equals(t *testing.T) {
	a := Uint256{0x01}
	b := Uint256{0x02}
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(a))
	assert.Equal(t, -1, a.CompareTo(b))
	assert.Equal(t, 1, b.CompareTo(a))
	assert.Equal(t, 0, a.CompareTo(a))
}

func TestUint256MarshalJSON(t *testing.T) {
	str := "f037308fa0fb08f9b92a9bf4ae32e4da9f738a9dd972a34616e970112298f137"
	expected, err := Uint256DecodeStringLE(str)
	require.NoError(t, err)

	data, err := json.Marshal(expected)
	require.NoError(t, err)

	var u Uint256
	require.NoError(t, json.Unmarshal(data, &u))
	assert.True(t, expected.Equals(u))
}
