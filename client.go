package tls

import (
	"crypto/rsa"
	"net"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/handshake"
	"github.com/lanikai/tlscore/internal/tls/prf"
	"github.com/lanikai/tlscore/internal/tls/record"
	"github.com/lanikai/tlscore/internal/tls/state"
	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/tlslog"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// Client runs the client side of the Connect driver over an already
// dialed transport connection (spec §4.8).
func Client(transport net.Conn, config *Config) (*Conn, error) {
	log := tlslog.Default.WithTag("client")
	requested := config.maxVersion()

	st := state.New(false, requested)
	st.SetDebugExtensions(config.DebugExtensions)

	rd := record.NewReader(transport)
	wr := record.NewWriter(transport)
	hs := newHandshakeStream(rd, st)

	candidates := config.candidateSuites(requested)
	offered := make([]suite.Code, len(candidates))
	for i, cs := range candidates {
		offered[i] = cs.Code
	}

	// Step 1: send ClientHello.
	random, err := handshake.NewRandom(config.rand())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ClientRandom = random

	clientHello := &handshake.ClientHello{
		Version:            requested,
		Random:             random,
		CipherSuites:       offered,
		CompressionMethods: []byte{0x00},
	}
	sent, err := writeHandshake(wr, st, requested, wire.ClientHello, clientHello.Marshal())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	// Step 2: read ServerHello.
	block, err := hs.expect(wire.ServerHello)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordReceived(st, block)

	serverHello, err := handshake.UnmarshalServerHello(block.Body())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.NegotiatedVersion = serverHello.Version
	st.ServerRandom = serverHello.Random

	if !offeredContains(offered, serverHello.CipherSuite) {
		return nil, abort(wr, st, errSuiteNotOffered)
	}
	cs, ok := suite.Info(serverHello.CipherSuite)
	if !ok {
		return nil, abort(wr, st, alert.New(alert.HandshakeFailure))
	}
	st.SelectedSuite = cs
	log.Info("negotiated %v, suite %s", st.NegotiatedVersion, cs.Name)

	var serverPub *rsa.PublicKey

	// Step 3: read Certificate (when the suite requires one).
	if cs.RequiresCertificate {
		block, err = hs.expect(wire.Certificate)
		if err != nil {
			return nil, abort(wr, st, err)
		}
		recordReceived(st, block)

		cert, err := handshake.UnmarshalCertificate(block.Body())
		if err != nil {
			return nil, abort(wr, st, err)
		}
		leaf, err := cert.Leaf()
		if err != nil {
			// A malformed peer-supplied certificate is a bad_certificate
			// condition, not a plain decode error -- matching TlsCerts'
			// rejection of a certificate it cannot map.
			return nil, abort(wr, st, alert.Wrap(err, alert.BadCertificate))
		}
		pub, ok := leaf.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, abort(wr, st, alert.New(alert.UnsupportedCertificate))
		}
		serverPub = pub
		st.PeerCertificates, err = cert.Chain()
		if err != nil {
			return nil, abort(wr, st, alert.Wrap(err, alert.BadCertificate))
		}
	}

	// Step 4: absorb optional CertificateRequest, recognized but not
	// honoured (spec §9 Non-goals: no client certificate authentication).
	peek, err := hs.next()
	if err != nil {
		return nil, abort(wr, st, err)
	}
	if peek.Type == wire.CertificateRequest {
		recordReceived(st, peek)
		if _, err := handshake.UnmarshalCertificateRequest(peek.Body()); err != nil {
			return nil, abort(wr, st, err)
		}
		peek, err = hs.next()
		if err != nil {
			return nil, abort(wr, st, err)
		}
	}

	// Step 5: read ServerHelloDone.
	if peek.Type != wire.ServerHelloDone {
		return nil, abort(wr, st, alert.New(alert.Unexpected))
	}
	recordReceived(st, peek)
	if _, err := handshake.UnmarshalServerHelloDone(peek.Body()); err != nil {
		return nil, abort(wr, st, err)
	}

	// Step 6: send ClientKeyExchange.
	if cs.RequiresCertificate && serverPub == nil {
		return nil, abort(wr, st, errNoCertificate)
	}
	premaster, err := handshake.GeneratePremaster(requested, config.rand())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	var ciphertext []byte
	if serverPub != nil {
		ciphertext, err = handshake.EncryptPremaster(serverPub, premaster, config.rand())
		if err != nil {
			return nil, abort(wr, st, err)
		}
	}
	cke := &handshake.ClientKeyExchange{EncryptedPremaster: ciphertext}
	sent, err = writeHandshake(wr, st, st.NegotiatedVersion, wire.ClientKeyExchange, cke.Marshal())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	// Step 7: derive master secret and key-block.
	deriveKeys(st, premaster)

	// Step 8: send ChangeCipherSpec, bind the new write cipher.
	if err := writeChangeCipherSpec(wr, st, st.NegotiatedVersion); err != nil {
		return nil, abort(wr, st, err)
	}
	writeCodec, err := newCodec(cs, st.ClientMACKey, st.ClientKey, st.ClientIV)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ActivateWriteCipher(writeCodec)

	// Step 9: send our own Finished.
	verifyData := finishedVerifyData(st, prf.Client)
	finished, err := handshake.NewFinished(verifyData)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	sent, err = writeHandshake(wr, st, st.NegotiatedVersion, wire.Finished, finished.Marshal())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	// Step 10: read ChangeCipherSpec, bind the new read cipher.
	if err := readChangeCipherSpec(rd, st); err != nil {
		return nil, abort(wr, st, err)
	}
	readCodec, err := newCodec(cs, st.ServerMACKey, st.ServerKey, st.ServerIV)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ActivateReadCipher(readCodec)

	// Step 11: read and verify the server's Finished.
	block, err = hs.expect(wire.Finished)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	serverFinished, err := handshake.UnmarshalFinished(block.Body())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	expected := finishedVerifyData(st, prf.Server)
	if err := serverFinished.Verify(expected); err != nil {
		log.Error("server Finished mismatch")
		return nil, abort(wr, st, err)
	}
	recordReceived(st, block)

	log.Info("handshake complete")
	return &Conn{transport: transport, state: st, rd: rd, wr: wr, log: log}, nil
}

func offeredContains(offered []suite.Code, code suite.Code) bool {
	for _, c := range offered {
		if c == code {
			return true
		}
	}
	return false
}
