package handshake

import (
	"crypto/x509"

	"github.com/lanikai/tlscore/internal/tls/alert"
)

// Certificate carries the peer's certificate chain, end-entity certificate
// first (spec §4.4).
type Certificate struct {
	// Raw holds each entry's DER bytes, in wire order.
	Raw [][]byte
}

// Marshal encodes the chain as a 3-byte total length followed by a
// sequence of (3-byte length, DER bytes) entries.
func (c *Certificate) Marshal() []byte {
	var entries builder
	for _, der := range c.Raw {
		entries.writeVector24(der)
	}

	var b builder
	b.writeVector24(entries.bytes())
	return b.bytes()
}

// UnmarshalCertificate decodes a Certificate body.
func UnmarshalCertificate(body []byte) (*Certificate, error) {
	c := newCursor(body)

	listBytes, err := c.vector24()
	if err != nil {
		return nil, err
	}
	if !c.atEnd() {
		return nil, alert.New(alert.DecodeError)
	}

	list := newCursor(listBytes)
	cert := &Certificate{}
	for !list.atEnd() {
		der, err := list.vector24()
		if err != nil {
			return nil, err
		}
		cert.Raw = append(cert.Raw, der)
	}
	return cert, nil
}

// Leaf parses and returns the end-entity certificate, the only one this
// core inspects (spec §4.4: "extracts the public key from the first
// certificate").
func (c *Certificate) Leaf() (*x509.Certificate, error) {
	if len(c.Raw) == 0 {
		return nil, alert.New(alert.DecodeError)
	}
	return x509.ParseCertificate(c.Raw[0])
}

// Chain parses every certificate in the list, in wire order.
func (c *Certificate) Chain() ([]*x509.Certificate, error) {
	out := make([]*x509.Certificate, 0, len(c.Raw))
	for _, der := range c.Raw {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, nil
}
