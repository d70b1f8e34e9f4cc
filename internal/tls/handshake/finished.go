package handshake

import (
	"crypto/subtle"

	"github.com/lanikai/tlscore/internal/tls/alert"
)

// VerifyDataSize is the fixed length of a Finished message body (spec §4.4,
// §4.6).
const VerifyDataSize = 12

// Finished carries the 12-byte verify-data proving possession of the
// master secret and an unmodified transcript (spec §4.4).
type Finished struct {
	VerifyData [VerifyDataSize]byte
}

func NewFinished(verifyData []byte) (*Finished, error) {
	if len(verifyData) != VerifyDataSize {
		return nil, alert.New(alert.InternalError)
	}
	f := &Finished{}
	copy(f.VerifyData[:], verifyData)
	return f, nil
}

func (f *Finished) Marshal() []byte {
	return append([]byte(nil), f.VerifyData[:]...)
}

func UnmarshalFinished(body []byte) (*Finished, error) {
	if len(body) != VerifyDataSize {
		return nil, alert.New(alert.DecodeError)
	}
	f := &Finished{}
	copy(f.VerifyData[:], body)
	return f, nil
}

// Verify reports whether f's verify-data matches expected, comparing in
// constant time (spec §4.4: "mismatch is a fatal handshake-failure Alert").
func (f *Finished) Verify(expected []byte) error {
	if len(expected) != VerifyDataSize {
		return alert.New(alert.InternalError)
	}
	if subtle.ConstantTimeCompare(f.VerifyData[:], expected) != 1 {
		return alert.New(alert.HandshakeFailure)
	}
	return nil
}
