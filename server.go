package tls

import (
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

// Server runs the server side of the Connect driver over an already
// accepted transport connection (spec §4.7).
func Server(transport net.Conn, config *Config) (*Conn, error) {
	if len(config.Certificates) == 0 {
		return nil, errNoCertificate
	}
	if config.PrivateKey == nil {
		return nil, errNoPrivateKey
	}

	log := tlslog.Default.WithTag("server")
	st := state.New(true, config.maxVersion())
	st.SetDebugExtensions(config.DebugExtensions)
	st.Certificates = config.Certificates
	st.PrivateKey = config.PrivateKey

	rd := record.NewReader(transport)
	wr := record.NewWriter(transport)
	hs := newHandshakeStream(rd, st)

	// Step 1: read ClientHello.
	block, err := hs.expect(wire.ClientHello)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordReceived(st, block)

	clientHello, err := handshake.UnmarshalClientHello(block.Body())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ClientRandom = clientHello.Random
	st.RequestedVersion = clientHello.Version

	negotiated, err := negotiateVersion(config, clientHello.Version)
	if err != nil {
		log.Warn("no common version: client offered %v", clientHello.Version)
		return nil, abort(wr, st, alert.New(alert.ProtocolVersion))
	}
	st.NegotiatedVersion = negotiated

	candidates := config.candidateSuites(negotiated)
	selectedCode := suite.Locate(candidates, clientHello.CipherSuites)
	if !candidatesContain(candidates, selectedCode) {
		// suite.Locate's "no match" sentinel is also a real catalogue
		// entry (NULL_WITH_NULL_NULL), so suite.Info would otherwise
		// happily resolve it even when it was never a candidate -- e.g.
		// a client offering only NULL suites against a server with
		// AllowNullCiphers false (spec §4.5, end-to-end scenario #2).
		log.Warn("no common cipher suite: client offered %v", clientHello.CipherSuites)
		return nil, abort(wr, st, alert.New(alert.HandshakeFailure))
	}
	cs, ok := suite.Info(selectedCode)
	if !ok {
		return nil, abort(wr, st, alert.New(alert.HandshakeFailure))
	}
	st.SelectedSuite = cs
	log.Info("negotiated %v, suite %s", negotiated, cs.Name)

	// Step 2: send ServerHello.
	random, err := handshake.NewRandom(config.rand())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ServerRandom = random

	serverHello := &handshake.ServerHello{
		Version:           negotiated,
		Random:            random,
		CipherSuite:       cs.Code,
		CompressionMethod: 0,
	}
	sent, err := writeHandshake(wr, st, negotiated, wire.ServerHello, serverHello.Marshal())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	// Step 3: send Certificate, if the suite requires one.
	if cs.RequiresCertificate {
		cert := &handshake.Certificate{Raw: certificateChainDER(config.Certificates)}
		sent, err = writeHandshake(wr, st, negotiated, wire.Certificate, cert.Marshal())
		if err != nil {
			return nil, abort(wr, st, err)
		}
		recordSent(st, sent)
	}

	// Step 4: ServerKeyExchange is not used for RSA suites in this core.

	// Step 5: send ServerHelloDone.
	sent, err = writeHandshake(wr, st, negotiated, wire.ServerHelloDone, nil)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	// Step 6: read ClientKeyExchange.
	block, err = hs.expect(wire.ClientKeyExchange)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordReceived(st, block)

	cke, err := handshake.UnmarshalClientKeyExchange(block.Body())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	premaster, err := handshake.DecryptPremaster(config.PrivateKey, cke.EncryptedPremaster, clientHello.Version, config.rand())
	if err != nil {
		return nil, abort(wr, st, err)
	}

	// Step 7: derive master secret and key-block.
	deriveKeys(st, premaster)

	// Step 8: read ChangeCipherSpec, bind the new read cipher.
	if err := readChangeCipherSpec(rd, st); err != nil {
		return nil, abort(wr, st, err)
	}
	readCodec, err := newCodec(cs, st.ClientMACKey, st.ClientKey, st.ClientIV)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ActivateReadCipher(readCodec)

	// Step 9: read and verify the client's Finished.
	block, err = hs.expect(wire.Finished)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	clientFinished, err := handshake.UnmarshalFinished(block.Body())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	expected := finishedVerifyData(st, prf.Client)
	if err := clientFinished.Verify(expected); err != nil {
		log.Error("client Finished mismatch")
		return nil, abort(wr, st, err)
	}
	recordReceived(st, block)

	// Step 10: send ChangeCipherSpec, bind the new write cipher.
	if err := writeChangeCipherSpec(wr, st, negotiated); err != nil {
		return nil, abort(wr, st, err)
	}
	writeCodec, err := newCodec(cs, st.ServerMACKey, st.ServerKey, st.ServerIV)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	st.ActivateWriteCipher(writeCodec)

	// Step 11: send our own Finished.
	verifyData := finishedVerifyData(st, prf.Server)
	finished, err := handshake.NewFinished(verifyData)
	if err != nil {
		return nil, abort(wr, st, err)
	}
	sent, err = writeHandshake(wr, st, negotiated, wire.Finished, finished.Marshal())
	if err != nil {
		return nil, abort(wr, st, err)
	}
	recordSent(st, sent)

	log.Info("handshake complete")
	return &Conn{transport: transport, state: st, rd: rd, wr: wr, log: log}, nil
}

// negotiateVersion lowers the negotiated version to min(requested,
// local-max), failing if that falls below local-min (spec §4.7 step 1).
func negotiateVersion(config *Config, requested wire.Version) (wire.Version, error) {
	min, max := config.minVersion(), config.maxVersion()
	negotiated := requested
	if max.Less(negotiated) {
		negotiated = max
	}
	if negotiated.Less(min) {
		return wire.Version{}, errNoCommonVersion
	}
	return negotiated, nil
}

// candidatesContain reports whether code is one of candidates, the way
// suite.Locate's result must be checked before trusting it: Locate's
// "nothing matched" sentinel is itself a valid catalogue code, so a bare
// suite.Info lookup cannot distinguish "negotiated" from "nothing offered".
func candidatesContain(candidates []suite.CipherSuite, code suite.Code) bool {
	for _, cs := range candidates {
		if cs.Code == code {
			return true
		}
	}
	return false
}
