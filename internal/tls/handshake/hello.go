// Package handshake encodes and decodes the handshake body types named in
// spec §4.4: ClientHello, ServerHello, Certificate, ServerKeyExchange and
// CertificateRequest (recognized only), ServerHelloDone, ClientKeyExchange,
// and Finished.
package handshake

import (
	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// ClientHello is the client's opening handshake message (spec §4.4).
type ClientHello struct {
	Version      wire.Version
	Random       [32]byte
	SessionID    []byte
	CipherSuites []suite.Code
	// CompressionMethods always carries at least the null method (0x00);
	// this core never emits any other value.
	CompressionMethods []byte
	// Extensions is the raw, unparsed extensions blob -- retained only for
	// observability (spec §4.4: "out of scope").
	Extensions []byte
}

// Marshal encodes h into a handshake body (not including the 4-byte block
// header).
func (h *ClientHello) Marshal() []byte {
	var b builder
	b.writeUint8(h.Version.Major)
	b.writeUint8(h.Version.Minor)
	b.write(h.Random[:])
	b.writeVector8(h.SessionID)

	var suites builder
	for _, c := range h.CipherSuites {
		suites.writeUint16(uint16(c))
	}
	b.writeVector16(suites.bytes())

	compression := h.CompressionMethods
	if len(compression) == 0 {
		compression = []byte{0x00}
	}
	b.writeVector8(compression)

	if len(h.Extensions) > 0 {
		b.writeVector16(h.Extensions)
	}
	return b.bytes()
}

// UnmarshalClientHello decodes a ClientHello body.
func UnmarshalClientHello(body []byte) (*ClientHello, error) {
	c := newCursor(body)

	major, err := c.uint8()
	if err != nil {
		return nil, err
	}
	minor, err := c.uint8()
	if err != nil {
		return nil, err
	}

	randomBytes, err := c.take(32)
	if err != nil {
		return nil, err
	}

	sessionID, err := c.vector8()
	if err != nil {
		return nil, err
	}

	suitesRaw, err := c.vector16()
	if err != nil {
		return nil, err
	}
	if len(suitesRaw)%2 != 0 {
		return nil, alert.New(alert.DecodeError)
	}
	suites := make([]suite.Code, 0, len(suitesRaw)/2)
	for i := 0; i < len(suitesRaw); i += 2 {
		suites = append(suites, suite.Code(uint16(suitesRaw[i])<<8|uint16(suitesRaw[i+1])))
	}

	compression, err := c.vector8()
	if err != nil {
		return nil, err
	}

	var extensions []byte
	if !c.atEnd() {
		extensions, err = c.vector16()
		if err != nil {
			return nil, err
		}
	}
	if !c.atEnd() {
		return nil, alert.New(alert.DecodeError)
	}

	ch := &ClientHello{
		Version:            wire.Version{Major: major, Minor: minor},
		SessionID:          sessionID,
		CipherSuites:       suites,
		CompressionMethods: compression,
		Extensions:         extensions,
	}
	copy(ch.Random[:], randomBytes)
	return ch, nil
}

// ServerHello is the server's response to ClientHello (spec §4.4).
type ServerHello struct {
	Version           wire.Version
	Random            [32]byte
	SessionID         []byte
	CipherSuite       suite.Code
	CompressionMethod uint8
}

func (h *ServerHello) Marshal() []byte {
	var b builder
	b.writeUint8(h.Version.Major)
	b.writeUint8(h.Version.Minor)
	b.write(h.Random[:])
	b.writeVector8(h.SessionID)
	b.writeUint16(uint16(h.CipherSuite))
	b.writeUint8(h.CompressionMethod)
	return b.bytes()
}

// UnmarshalServerHello decodes a ServerHello body. Any trailing bytes
// (extensions) are a decode error in this core (spec §4.4).
func UnmarshalServerHello(body []byte) (*ServerHello, error) {
	c := newCursor(body)

	major, err := c.uint8()
	if err != nil {
		return nil, err
	}
	minor, err := c.uint8()
	if err != nil {
		return nil, err
	}

	randomBytes, err := c.take(32)
	if err != nil {
		return nil, err
	}

	sessionID, err := c.vector8()
	if err != nil {
		return nil, err
	}

	csHi, err := c.uint8()
	if err != nil {
		return nil, err
	}
	csLo, err := c.uint8()
	if err != nil {
		return nil, err
	}

	compression, err := c.uint8()
	if err != nil {
		return nil, err
	}

	if !c.atEnd() {
		return nil, alert.New(alert.DecodeError)
	}

	sh := &ServerHello{
		Version:           wire.Version{Major: major, Minor: minor},
		SessionID:         sessionID,
		CipherSuite:       suite.Code(uint16(csHi)<<8 | uint16(csLo)),
		CompressionMethod: compression,
	}
	copy(sh.Random[:], randomBytes)
	return sh, nil
}
