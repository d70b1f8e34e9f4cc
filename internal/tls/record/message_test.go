package record

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/tlscore/internal/tls/wire"
)

func TestHandshakeIterSingleBlock(t *testing.T) {
	body := EncodeHandshakeBlock(wire.ClientHello, []byte("hello"))
	msg := &Message{ContentType: ContentTypeHandshake, Version: TLS12, body: body}

	it, err := msg.Handshake(nil)
	require.NoError(t, err)

	block, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, wire.ClientHello, block.Type)
	assert.Equal(t, []byte("hello"), block.Body())

	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestHandshakeIterMultipleBlocks(t *testing.T) {
	body := append(
		EncodeHandshakeBlock(wire.ClientHello, []byte("one")),
		EncodeHandshakeBlock(wire.ClientKeyExchange, []byte("two"))...,
	)
	msg := &Message{ContentType: ContentTypeHandshake, Version: TLS12, body: body}

	it, err := msg.Handshake(nil)
	require.NoError(t, err)

	b1, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), b1.Body())

	b2, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), b2.Body())

	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestHandshakeIterReassemblesAcrossRecords(t *testing.T) {
	full := EncodeHandshakeBlock(wire.ClientHello, []byte("a long client hello body"))
	first, rest := full[:5], full[5:]

	calls := 0
	more := func() ([]byte, error) {
		calls++
		if calls > 1 {
			return nil, io.EOF
		}
		return rest, nil
	}

	msg := &Message{ContentType: ContentTypeHandshake, Version: TLS12, body: first}
	it, err := msg.Handshake(more)
	require.NoError(t, err)

	block, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("a long client hello body"), block.Body())
	assert.Equal(t, 1, calls)
}

func TestHandshakeIterMalformedWithNoMore(t *testing.T) {
	// Declares a 100-byte body but only 2 bytes follow the header, and
	// there is no way to fetch more -- fatal per spec §4.3.
	body := []byte{byte(wire.ClientHello), 0, 0, 100, 0x00, 0x01}
	msg := &Message{ContentType: ContentTypeHandshake, Version: TLS12, body: body}

	it, err := msg.Handshake(nil)
	require.NoError(t, err)

	_, err = it.Next()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestChangeCipherSpecValidation(t *testing.T) {
	msg := &Message{ContentType: ContentTypeChangeCipherSpec, body: []byte{0x01}}
	assert.NoError(t, msg.IsChangeCipherSpec())

	bad := &Message{ContentType: ContentTypeChangeCipherSpec, body: []byte{0x02}}
	assert.Error(t, bad.IsChangeCipherSpec())
}
