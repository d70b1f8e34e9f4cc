package handshake

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"io"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// ServerKeyExchange is recognized but not interpreted by this core (spec
// §4.4, §9: not used for RSA suites, but the block must still be skippable
// when a peer sends one).
type ServerKeyExchange struct {
	Raw []byte
}

func (s *ServerKeyExchange) Marshal() []byte {
	return append([]byte(nil), s.Raw...)
}

func UnmarshalServerKeyExchange(body []byte) (*ServerKeyExchange, error) {
	return &ServerKeyExchange{Raw: append([]byte(nil), body...)}, nil
}

// CertificateRequest is recognized but not honoured: this core never
// performs client certificate authentication (spec §4.4, §9 Non-goals).
type CertificateRequest struct {
	Raw []byte
}

func (r *CertificateRequest) Marshal() []byte {
	return append([]byte(nil), r.Raw...)
}

func UnmarshalCertificateRequest(body []byte) (*CertificateRequest, error) {
	return &CertificateRequest{Raw: append([]byte(nil), body...)}, nil
}

// ServerHelloDone has an empty body (spec §4.4).
type ServerHelloDone struct{}

func (ServerHelloDone) Marshal() []byte { return nil }

func UnmarshalServerHelloDone(body []byte) (ServerHelloDone, error) {
	if len(body) != 0 {
		return ServerHelloDone{}, alert.New(alert.DecodeError)
	}
	return ServerHelloDone{}, nil
}

// PremasterSize is the fixed length of an RSA premaster secret (spec §4.4).
const PremasterSize = 48

// ClientKeyExchange carries the RSA-encrypted premaster secret (spec §4.4:
// "RSA-only in this core").
type ClientKeyExchange struct {
	EncryptedPremaster []byte
}

func (k *ClientKeyExchange) Marshal() []byte {
	var b builder
	b.writeVector16(k.EncryptedPremaster)
	return b.bytes()
}

func UnmarshalClientKeyExchange(body []byte) (*ClientKeyExchange, error) {
	c := newCursor(body)
	ciphertext, err := c.vector16()
	if err != nil {
		return nil, err
	}
	if !c.atEnd() {
		return nil, alert.New(alert.DecodeError)
	}
	return &ClientKeyExchange{EncryptedPremaster: ciphertext}, nil
}

// GeneratePremaster produces a fresh 48-byte premaster secret whose leading
// two bytes equal requestedVersion, as the RSA ClientKeyExchange spec
// requires (spec §4.4, §4.7 step 6, §4.8 step 6).
func GeneratePremaster(requestedVersion wire.Version, rng io.Reader) ([]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	premaster := make([]byte, PremasterSize)
	if _, err := io.ReadFull(rng, premaster); err != nil {
		return nil, err
	}
	premaster[0] = requestedVersion.Major
	premaster[1] = requestedVersion.Minor
	return premaster, nil
}

// EncryptPremaster RSA-encrypts premaster under the server's public key
// using PKCS#1 v1.5, as classic RSA key exchange requires.
func EncryptPremaster(pub *rsa.PublicKey, premaster []byte, rng io.Reader) ([]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	return rsa.EncryptPKCS1v15(rng, pub, premaster)
}

// DecryptPremaster reverses EncryptPremaster using the server's private
// key, then verifies the requested-version bytes (spec §4.4: "the core
// rejects such premasters"). A decryption failure, a wrong-length result,
// or a version mismatch are all rejected outright with a decrypt_error
// Alert: this core does not implement the Bleichenbacher countermeasure
// of substituting a fake premaster, matching the reference
// implementation's TlsCkeyxh::decode, which throws immediately on a
// "malicious version detected" rather than masking it.
func DecryptPremaster(priv *rsa.PrivateKey, ciphertext []byte, requestedVersion wire.Version, rng io.Reader) ([]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}

	decrypted, err := rsa.DecryptPKCS1v15(rng, priv, ciphertext)
	if err != nil {
		return nil, alert.New(alert.DecryptError)
	}
	if len(decrypted) != PremasterSize {
		return nil, alert.New(alert.DecryptError)
	}
	versionOK := subtle.ConstantTimeByteEq(decrypted[0], requestedVersion.Major) &
		subtle.ConstantTimeByteEq(decrypted[1], requestedVersion.Minor)
	if versionOK != 1 {
		return nil, alert.New(alert.DecryptError)
	}
	return decrypted, nil
}
