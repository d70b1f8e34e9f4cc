package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

func TestClientHelloRoundTrip(t *testing.T) {
	ch := &ClientHello{
		Version:            wire.TLS12,
		SessionID:          nil,
		CipherSuites:       []suite.Code{suite.RSA_WITH_AES_128_CBC_SHA, suite.RSA_WITH_AES_128_GCM_SHA256},
		CompressionMethods: []byte{0x00},
	}
	ch.Random[0] = 0xAA

	body := ch.Marshal()
	got, err := UnmarshalClientHello(body)
	require.NoError(t, err)

	assert.Equal(t, ch.Version, got.Version)
	assert.Equal(t, ch.Random, got.Random)
	assert.Equal(t, ch.CipherSuites, got.CipherSuites)
	assert.Equal(t, []byte{0x00}, got.CompressionMethods)
}

func TestClientHelloRoundTripWithExtensions(t *testing.T) {
	ch := &ClientHello{
		Version:            wire.TLS12,
		CipherSuites:       []suite.Code{suite.RSA_WITH_AES_128_CBC_SHA},
		CompressionMethods: []byte{0x00},
		Extensions:         []byte{0x00, 0x0D, 0x00, 0x02, 0x00, 0x01},
	}

	body := ch.Marshal()
	got, err := UnmarshalClientHello(body)
	require.NoError(t, err)
	assert.Equal(t, ch.Extensions, got.Extensions)
}

func TestUnmarshalClientHelloTruncatedIsError(t *testing.T) {
	_, err := UnmarshalClientHello([]byte{0x03})
	assert.Error(t, err)
}

func TestServerHelloRoundTrip(t *testing.T) {
	sh := &ServerHello{
		Version:           wire.TLS12,
		CipherSuite:       suite.RSA_WITH_AES_128_GCM_SHA256,
		CompressionMethod: 0,
	}
	sh.Random[3] = 0x11

	body := sh.Marshal()
	got, err := UnmarshalServerHello(body)
	require.NoError(t, err)

	assert.Equal(t, sh.Version, got.Version)
	assert.Equal(t, sh.Random, got.Random)
	assert.Equal(t, sh.CipherSuite, got.CipherSuite)
}

func TestServerHelloRejectsTrailingBytes(t *testing.T) {
	sh := &ServerHello{Version: wire.TLS12, CipherSuite: suite.RSA_WITH_AES_128_CBC_SHA}
	body := append(sh.Marshal(), 0x00, 0x01)

	_, err := UnmarshalServerHello(body)
	assert.Error(t, err)
}
