// Package tls implements a standalone TLS 1.0/1.1/1.2 protocol engine:
// record layer framing, the handshake state machine, PRF/key-schedule
// derivation, and cipher/MAC binding, extracted as a self-contained core
// rather than the full state machine of a browser or server runtime.
//
// Use Client to run the client side of a handshake over an already-dialed
// net.Conn, or Server to run the server side over an already-accepted one.
// Both return a *Conn implementing net.Conn once the handshake completes.
//
// Only RSA key exchange and the cipher suites in internal/tls/suite's
// catalogue are supported; session resumption, client certificate
// authentication, and renegotiation are explicitly out of scope.
package tls
