package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinishedRoundTrip(t *testing.T) {
	verifyData := make([]byte, VerifyDataSize)
	for i := range verifyData {
		verifyData[i] = byte(i)
	}

	f, err := NewFinished(verifyData)
	require.NoError(t, err)

	body := f.Marshal()
	got, err := UnmarshalFinished(body)
	require.NoError(t, err)
	assert.Equal(t, f.VerifyData, got.VerifyData)
}

func TestFinishedVerifyMismatchIsFatal(t *testing.T) {
	f, err := NewFinished(make([]byte, VerifyDataSize))
	require.NoError(t, err)

	other := make([]byte, VerifyDataSize)
	other[0] = 0xFF

	assert.NoError(t, f.Verify(make([]byte, VerifyDataSize)))
	assert.Error(t, f.Verify(other))
}

func TestNewFinishedRejectsWrongLength(t *testing.T) {
	_, err := NewFinished([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestServerHelloDoneRejectsNonEmptyBody(t *testing.T) {
	_, err := UnmarshalServerHelloDone([]byte{0x00})
	assert.Error(t, err)

	_, err = UnmarshalServerHelloDone(nil)
	assert.NoError(t, err)
}
