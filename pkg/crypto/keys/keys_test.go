package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	pub := priv.PublicKey()
	restored, err := NewPublicKeyFromBytes(pub.Bytes())
	require.NoError(t, err)
	assert.True(t, pub.Equal(restored))

	priv2, err := NewPrivateKeyFromBytes(priv.Bytes())
	require.NoError(t, err)
	assert.True(t, priv2.PublicKey().Equal(pub))
}

func TestPublicKeyString(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	s := pub.String()
	assert.Equal(t, AddressPrefix, s[:len(AddressPrefix)])

	parsed, err := NewPublicKeyFromString(s)
	require.NoError(t, err)
	assert.True(t, pub.Equal(parsed))

	_, err = NewPublicKeyFromString("XXX" + s[len(AddressPrefix):])
	assert.ErrorIs(t, err, ErrBadPrefix)

	// A corrupted checksum must be rejected.
	corrupted := s[:len(s)-1] + "1"
	if corrupted == s {
		corrupted = s[:len(s)-1] + "2"
	}
	_, err = NewPublicKeyFromString(corrupted)
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	msg := []byte("sign me")
	sig := priv.Sign(msg)
	assert.True(t, pub.Verify(sig, msg))
	assert.False(t, pub.Verify(sig, []byte("other message")))

	recovered, err := RecoverCompact(sig, msg)
	require.NoError(t, err)
	assert.True(t, pub.Equal(recovered))
}
