package handshake

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/tlscore/internal/tls/wire"
)

func TestClientKeyExchangeRoundTrip(t *testing.T) {
	k := &ClientKeyExchange{EncryptedPremaster: []byte{0x01, 0x02, 0x03}}
	body := k.Marshal()

	got, err := UnmarshalClientKeyExchange(body)
	require.NoError(t, err)
	assert.Equal(t, k.EncryptedPremaster, got.EncryptedPremaster)
}

func TestGeneratePremasterHasRequestedVersionPrefix(t *testing.T) {
	pm, err := GeneratePremaster(wire.TLS12, rand.Reader)
	require.NoError(t, err)
	assert.Len(t, pm, PremasterSize)
	assert.Equal(t, wire.TLS12.Major, pm[0])
	assert.Equal(t, wire.TLS12.Minor, pm[1])
}

func TestEncryptDecryptPremasterRoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pm, err := GeneratePremaster(wire.TLS12, rand.Reader)
	require.NoError(t, err)

	ciphertext, err := EncryptPremaster(&priv.PublicKey, pm, rand.Reader)
	require.NoError(t, err)

	decoded, err := DecryptPremaster(priv, ciphertext, wire.TLS12, rand.Reader)
	require.NoError(t, err)
	assert.Equal(t, pm, decoded)
}

func TestDecryptPremasterVersionMismatchIsRejected(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// Premaster claims a different version than what the server will
	// check against.
	pm, err := GeneratePremaster(wire.TLS11, rand.Reader)
	require.NoError(t, err)

	ciphertext, err := EncryptPremaster(&priv.PublicKey, pm, rand.Reader)
	require.NoError(t, err)

	_, err = DecryptPremaster(priv, ciphertext, wire.TLS12, rand.Reader)
	assert.Error(t, err)
}

func TestDecryptPremasterCorruptedCiphertextIsRejected(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	garbage := make([]byte, 256)
	_, err = DecryptPremaster(priv, garbage, wire.TLS12, rand.Reader)
	assert.Error(t, err)
}
