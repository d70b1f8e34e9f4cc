// Portions of this file are:

// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"time"

	"golang.org/x/xerrors"
)

// LoadCertificate reads a PEM-encoded certificate chain and RSA private
// key pair from disk, as a server's Config.Certificates/PrivateKey are
// normally populated (spec §3: "Certificate paths are resolved PEM files").
func LoadCertificate(certPath, keyPath string) ([]*x509.Certificate, *rsa.PrivateKey, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, nil, xerrors.Errorf("tlscore: reading certificate: %w", err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, nil, xerrors.Errorf("tlscore: reading private key: %w", err)
	}

	var chain []*x509.Certificate
	rest := certPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, nil, xerrors.Errorf("tlscore: parsing certificate: %w", err)
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, nil, errNoCertificate
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, nil, errNoPrivateKey
	}
	key, err := parseRSAPrivateKey(keyBlock)
	if err != nil {
		return nil, nil, err
	}

	return chain, key, nil
}

func parseRSAPrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, xerrors.Errorf("tlscore: parsing private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errRSAKeyRequired
	}
	return rsaKey, nil
}

// GenerateCertificate creates a self-signed RSA certificate and key, the
// way a quick local server or test fixture obtains one without touching
// disk. Only RSA key exchange is implemented by this core (spec §4.4), so
// unlike a WebRTC fingerprint certificate this generates an RSA key rather
// than ECDSA.
//
//   - 2048-bit RSA key
//   - randomly generated serial number
//   - commonName "tlscore"
//   - valid for 30 days from now
func GenerateCertificate() (certPEMBlock, keyPEMBlock []byte, err error) {
	notBefore := time.Now()
	notAfter := notBefore.Add(30 * 24 * time.Hour)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return nil, nil, xerrors.Errorf("tlscore: generating serial number: %w", err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, xerrors.Errorf("tlscore: generating RSA key: %w", err)
	}

	template := x509.Certificate{
		SignatureAlgorithm: x509.SHA256WithRSA,
		SerialNumber:       serialNumber,
		Subject:            pkix.Name{CommonName: "tlscore"},
		NotBefore:          notBefore,
		NotAfter:           notAfter,
		KeyUsage:           x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, xerrors.Errorf("tlscore: creating certificate: %w", err)
	}

	certPEMBlock = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	keyPEMBlock = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	return certPEMBlock, keyPEMBlock, nil
}
