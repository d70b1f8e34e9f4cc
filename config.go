//////////////////////////////////////////////////////////////////////////////
//
// Config contains configuration data for a Connect driver.
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package tls

import (
	"crypto/rsa"
	"crypto/x509"
	"io"

	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// Config holds the parameters of one Connect call (spec §3 TlsParams).
// The zero value is usable for a client dialing with default settings; a
// server must set Certificates and PrivateKey.
type Config struct {
	// MinVersion, MaxVersion bound the protocol versions this endpoint
	// will negotiate. The zero value of each defaults to TLS 1.0 and
	// TLS 1.2 respectively.
	MinVersion, MaxVersion wire.Version

	// Certificates is this endpoint's certificate chain, leaf first. A
	// server always requires at least one entry; a client never sends
	// one, since a peer's CertificateRequest is recognized but never
	// honoured (spec §9 Non-goals).
	Certificates []*x509.Certificate

	// PrivateKey is the RSA private key matching Certificates[0]. Only
	// RSA key exchange is implemented (spec §4.4).
	PrivateKey *rsa.PrivateKey

	// CipherSuites restricts the candidate suite list to this set, in
	// preference order. Nil selects every suite in the catalogue for the
	// negotiated version.
	CipherSuites []suite.Code

	// AllowNullCiphers permits negotiating a NULL-bulk suite (spec §4.5:
	// "only selectable when explicitly enabled").
	AllowNullCiphers bool

	// DebugExtensions is copied onto the resulting State as its
	// debug-extension flag (spec §3 TlsParams.debug-extension). No
	// ClientHello extension data is stored on the State or reported by
	// State.Summary, whatever its value.
	DebugExtensions bool

	// Rand, when non-nil, is used in place of crypto/rand.Reader for
	// every random value this core generates (hello randoms, premaster
	// secrets, explicit IVs/nonces). Tests substitute a deterministic
	// reader here; production code should leave it nil.
	Rand io.Reader
}

func (c *Config) minVersion() wire.Version {
	if c.MinVersion == (wire.Version{}) {
		return wire.TLS10
	}
	return c.MinVersion
}

func (c *Config) maxVersion() wire.Version {
	if c.MaxVersion == (wire.Version{}) {
		return wire.TLS12
	}
	return c.MaxVersion
}

func (c *Config) rand() io.Reader {
	if c.Rand != nil {
		return c.Rand
	}
	return nil // nil tells downstream factories to use crypto/rand.Reader
}

// candidateSuites returns the server-preference-ordered suite rows this
// Config permits for version, optionally filtered to CipherSuites.
func (c *Config) candidateSuites(version wire.Version) []suite.CipherSuite {
	all := suite.Candidates(version, c.AllowNullCiphers)
	if len(c.CipherSuites) == 0 {
		return all
	}
	allowed := make(map[suite.Code]bool, len(c.CipherSuites))
	for _, code := range c.CipherSuites {
		allowed[code] = true
	}
	var out []suite.CipherSuite
	for _, cs := range all {
		if allowed[cs.Code] {
			out = append(out, cs)
		}
	}
	return out
}
