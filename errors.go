package tls

import "errors"

var (
	errNoCommonVersion  = errors.New("tlscore: no common protocol version")
	errNoCommonSuite    = errors.New("tlscore: no common cipher suite")
	errSuiteNotOffered  = errors.New("tlscore: server selected a suite the client did not offer")
	errNoCertificate    = errors.New("tlscore: no certificate configured")
	errNoPrivateKey     = errors.New("tlscore: no private key configured")
	errRSAKeyRequired   = errors.New("tlscore: configured key is not an RSA key")
	errRenegotiation    = errors.New("tlscore: peer attempted renegotiation")
	errConnectionClosed = errors.New("tlscore: use of closed connection")
)
