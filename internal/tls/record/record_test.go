package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	next, err := w.WriteRecord(0, ContentTypeApplicationData, TLS12, nil, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)

	r := NewReader(&buf)
	rec, err := r.ReadRecord(0, nil)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeApplicationData, rec.ContentType)
	assert.Equal(t, TLS12, rec.Version)
	assert.Equal(t, []byte("hello"), rec.Body)
}

func TestWriteRecordEmptyPlaintextIsLegal(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	_, err := w.WriteRecord(0, ContentTypeApplicationData, TLS12, nil, nil)
	require.NoError(t, err)

	r := NewReader(&buf)
	rec, err := r.ReadRecord(0, nil)
	require.NoError(t, err)
	assert.Empty(t, rec.Body)
}

func TestWriteRecordFragmentsOversizePlaintext(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	plaintext := bytes.Repeat([]byte{0x42}, MaxPlaintext+1)
	next, err := w.WriteRecord(0, ContentTypeApplicationData, TLS12, nil, plaintext)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next, "should have split across two records")

	r := NewReader(&buf)
	rec1, err := r.ReadRecord(0, nil)
	require.NoError(t, err)
	assert.Len(t, rec1.Body, MaxPlaintext)

	rec2, err := r.ReadRecord(1, nil)
	require.NoError(t, err)
	assert.Len(t, rec2.Body, 1)
}

func TestReadRecordRejectsUnknownContentType(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 3, 3, 0, 0})

	r := NewReader(&buf)
	_, err := r.ReadRecord(0, nil)
	assert.Error(t, err)
}

func TestReadRecordRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{byte(ContentTypeHandshake), 3, 3, 0xFF, 0xFF})

	r := NewReader(&buf)
	_, err := r.ReadRecord(0, nil)
	assert.Error(t, err)
}

func TestReadRecordShortReadIsTransportError(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{byte(ContentTypeHandshake), 3, 3})

	r := NewReader(&buf)
	_, err := r.ReadRecord(0, nil)
	assert.Error(t, err)
}
