package tls

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// certAndKeyFromPEMForTest parses the in-memory blocks GenerateCertificate
// produces, mirroring LoadCertificate's on-disk parsing.
func certAndKeyFromPEMForTest(certPEM, keyPEM []byte) ([]*x509.Certificate, *rsa.PrivateKey, error) {
	certBlock, _ := pem.Decode(certPEM)
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, err
	}
	keyBlock, _ := pem.Decode(keyPEM)
	key, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, nil, err
	}
	return []*x509.Certificate{cert}, key, nil
}

// testCertificate generates a fresh self-signed certificate and key for
// each call; none of these tests care about its contents.
func testCertificate(t *testing.T) ([]byte, []byte) {
	t.Helper()
	certPEM, keyPEM, err := GenerateCertificate()
	require.NoError(t, err)
	return certPEM, keyPEM
}

func serverConfig(t *testing.T) *Config {
	t.Helper()
	certPEM, keyPEM := testCertificate(t)
	chain, key, err := certAndKeyFromPEMForTest(certPEM, keyPEM)
	require.NoError(t, err)
	return &Config{Certificates: chain, PrivateKey: key}
}

// handshakePair dials an in-memory net.Pipe and runs Client/Server
// concurrently, returning both ends once the handshake completes (spec
// §8: full handshake success).
func handshakePair(t *testing.T, clientConfig, serverConfig *Config) (client, server *Conn) {
	t.Helper()

	c1, c2 := net.Pipe()

	type result struct {
		conn *Conn
		err  error
	}
	serverCh := make(chan result, 1)
	go func() {
		conn, err := Server(c2, serverConfig)
		serverCh <- result{conn, err}
	}()

	clientConn, clientErr := Client(c1, clientConfig)
	serverResult := <-serverCh

	require.NoError(t, clientErr)
	require.NoError(t, serverResult.err)

	return clientConn, serverResult.conn
}

func TestHandshakeEstablishesMatchingSession(t *testing.T) {
	sc := serverConfig(t)
	client, server := handshakePair(t, &Config{}, sc)
	defer client.Close()
	defer server.Close()

	assert.Equal(t, wire.TLS12, client.State().NegotiatedVersion)
	assert.Equal(t, client.State().NegotiatedVersion, server.State().NegotiatedVersion)
	assert.Equal(t, client.State().SelectedSuite.Code, server.State().SelectedSuite.Code)
}

func TestHandshakeNegotiatesLowestCommonVersion(t *testing.T) {
	sc := serverConfig(t)
	sc.MinVersion, sc.MaxVersion = wire.TLS10, wire.TLS10

	client, server := handshakePair(t, &Config{MinVersion: wire.TLS10, MaxVersion: wire.TLS12}, sc)
	defer client.Close()
	defer server.Close()

	assert.Equal(t, wire.TLS10, client.State().NegotiatedVersion)
	assert.Equal(t, wire.TLS10, server.State().NegotiatedVersion)
}

func TestHandshakeHonoursCipherSuiteRestriction(t *testing.T) {
	sc := serverConfig(t)
	sc.CipherSuites = []suite.Code{suite.RSA_WITH_AES_128_GCM_SHA256}

	client, server := handshakePair(t, &Config{
		CipherSuites: []suite.Code{suite.RSA_WITH_AES_128_GCM_SHA256, suite.RSA_WITH_AES_256_CBC_SHA},
	}, sc)
	defer client.Close()
	defer server.Close()

	assert.Equal(t, suite.RSA_WITH_AES_128_GCM_SHA256, client.State().SelectedSuite.Code)
}

func TestHandshakeRejectsIncompatibleVersionRanges(t *testing.T) {
	sc := serverConfig(t)
	sc.MinVersion, sc.MaxVersion = wire.TLS12, wire.TLS12

	c1, c2 := net.Pipe()
	errCh := make(chan error, 1)
	go func() {
		_, err := Server(c2, sc)
		errCh <- err
		c2.Close()
	}()

	// Server writes a protocol_version Alert before returning (spec §4.7
	// step 1, §7), which is what unblocks the client's read on c1.
	_, clientErr := Client(c1, &Config{MinVersion: wire.TLS10, MaxVersion: wire.TLS10})
	require.Error(t, clientErr)
	require.Error(t, <-errCh)
}

// TestApplicationDataRoundTrip exercises Read/Write once the session is
// established, the way an echoing application would.
func TestApplicationDataRoundTrip(t *testing.T) {
	sc := serverConfig(t)
	client, server := handshakePair(t, &Config{}, sc)
	defer client.Close()
	defer server.Close()

	go func() {
		buf := make([]byte, 64)
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		server.Write(buf[:n])
	}()

	msg := []byte("hello over tlscore")
	_, err := client.Write(msg)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(msg, buf[:n]))
}

func TestCloseNotifyTearsDownConnection(t *testing.T) {
	sc := serverConfig(t)
	client, server := handshakePair(t, &Config{}, sc)
	defer server.Close()

	require.NoError(t, client.Close())

	buf := make([]byte, 16)
	_, err := server.Read(buf)
	assert.Error(t, err)
}

// TestConnConformance runs the stdlib net.Conn conformance suite over a
// fully handshaken pair, proving Conn behaves like any other net.Conn for
// deadlines, half-close races, and concurrent I/O.
func TestConnConformance(t *testing.T) {
	makePipe := func() (c1, c2 net.Conn, stop func(), err error) {
		sc := serverConfig(t)
		client, server := handshakePair(t, &Config{}, sc)
		return client, server, func() {
			client.Close()
			server.Close()
		}, nil
	}
	nettest.TestConn(t, makePipe)
}

func TestDeadlineIsHonoured(t *testing.T) {
	sc := serverConfig(t)
	client, server := handshakePair(t, &Config{}, sc)
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(10*time.Millisecond)))
	buf := make([]byte, 16)
	_, err := client.Read(buf)
	assert.Error(t, err)
}
