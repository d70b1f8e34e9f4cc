package main

import (
	"bufio"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	tlscore "github.com/lanikai/tlscore"
	"github.com/lanikai/tlscore/internal/tls/tlslog"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		fmt.Println("tlsdemo (tlscore)")
		os.Exit(0)
	}

	if level, err := tlslogLevel(flagLogLevel); err == nil {
		tlslog.Default.Level = level
	} else {
		log.Fatal(err)
	}

	minV, err := parseVersion(flagMinVersion)
	if err != nil {
		log.Fatal(err)
	}
	maxV, err := parseVersion(flagMaxVersion)
	if err != nil {
		log.Fatal(err)
	}

	switch flagMode {
	case "server":
		runServer(minV, maxV)
	case "client":
		runClient(minV, maxV)
	default:
		log.Fatalf("unrecognized mode %q, want server or client", flagMode)
	}
}

func runServer(minV, maxV wire.Version) {
	config := &tlscore.Config{MinVersion: minV, MaxVersion: maxV}

	if flagCertificate != "" && flagPrivateKey != "" {
		chain, key, err := tlscore.LoadCertificate(flagCertificate, flagPrivateKey)
		if err != nil {
			log.Fatal(err)
		}
		config.Certificates, config.PrivateKey = chain, key
	} else {
		certPEM, keyPEM, err := tlscore.GenerateCertificate()
		if err != nil {
			log.Fatal(err)
		}
		chain, key, err := certAndKeyFromPEM(certPEM, keyPEM)
		if err != nil {
			log.Fatal(err)
		}
		config.Certificates, config.PrivateKey = chain, key
	}

	listener, err := net.Listen("tcp", flagAddress)
	if err != nil {
		log.Fatal(err)
	}
	defer listener.Close()
	log.Printf("listening on %s", flagAddress)

	for {
		transport, err := listener.Accept()
		if err != nil {
			log.Println(err)
			continue
		}
		go func() {
			defer transport.Close()
			conn, err := tlscore.Server(transport, config)
			if err != nil {
				log.Println("handshake failed:", err)
				return
			}
			echo(conn)
		}()
	}
}

func runClient(minV, maxV wire.Version) {
	config := &tlscore.Config{MinVersion: minV, MaxVersion: maxV}

	transport, err := net.Dial("tcp", flagAddress)
	if err != nil {
		log.Fatal(err)
	}
	defer transport.Close()

	conn, err := tlscore.Client(transport, config)
	if err != nil {
		log.Fatal("handshake failed:", err)
	}
	defer conn.Close()

	log.Printf("session established: %v", conn.State().Summary())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if _, err := conn.Write(scanner.Bytes()); err != nil {
			log.Fatal(err)
		}
	}
}

// echo reflects every line the peer sends back to them, a minimal
// demonstration of ApplicationData flowing over the negotiated session.
func echo(conn *tlscore.Conn) {
	log.Printf("session established: %v", conn.State().Summary())

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Println("connection closed:", err)
			return
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			log.Println("write failed:", err)
			return
		}
	}
}

func parseVersion(s string) (wire.Version, error) {
	switch strings.TrimSpace(s) {
	case "1.0":
		return wire.TLS10, nil
	case "1.1":
		return wire.TLS11, nil
	case "1.2":
		return wire.TLS12, nil
	default:
		return wire.Version{}, fmt.Errorf("tlsdemo: unrecognized version %q", s)
	}
}

// certAndKeyFromPEM parses the in-memory certificate and key produced by
// tlscore.GenerateCertificate, mirroring the file-based parsing in
// tlscore.LoadCertificate.
func certAndKeyFromPEM(certPEM, keyPEM []byte) ([]*x509.Certificate, *rsa.PrivateKey, error) {
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return nil, nil, fmt.Errorf("tlsdemo: no PEM block in generated certificate")
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, err
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, nil, fmt.Errorf("tlsdemo: no PEM block in generated key")
	}
	key, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, nil, err
	}

	return []*x509.Certificate{cert}, key, nil
}

func tlslogLevel(s string) (tlslog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return tlslog.Error, nil
	case "warn":
		return tlslog.Warn, nil
	case "info":
		return tlslog.Info, nil
	case "debug":
		return tlslog.Debug, nil
	default:
		return 0, fmt.Errorf("tlsdemo: unrecognized log level %q", s)
	}
}
