package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateRoundTrip(t *testing.T) {
	c := &Certificate{Raw: [][]byte{[]byte("leaf-der-bytes"), []byte("intermediate-der")}}

	body := c.Marshal()
	got, err := UnmarshalCertificate(body)
	require.NoError(t, err)
	assert.Equal(t, c.Raw, got.Raw)
}

func TestCertificateEmptyChain(t *testing.T) {
	c := &Certificate{}
	body := c.Marshal()

	got, err := UnmarshalCertificate(body)
	require.NoError(t, err)
	assert.Empty(t, got.Raw)

	_, err = got.Leaf()
	assert.Error(t, err)
}

func TestCertificateRejectsTrailingBytes(t *testing.T) {
	c := &Certificate{Raw: [][]byte{[]byte("leaf")}}
	body := append(c.Marshal(), 0xFF)

	_, err := UnmarshalCertificate(body)
	assert.Error(t, err)
}
