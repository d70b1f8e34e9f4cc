// Package state holds the per-connection State (spec §3): secrets,
// negotiated parameters, the current read/write Codecs, sequence counters,
// and the handshake transcript. It implements the readers-writer
// discipline described in spec §5: every mutating operation takes the
// write lock; every observer takes the read lock.
package state

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/lanikai/tlscore/internal/tls/record"
	"github.com/lanikai/tlscore/internal/tls/suite"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// State is the per-connection secret and negotiation store (spec §3). The
// zero value is not usable; construct with New.
type State struct {
	mu sync.RWMutex

	IsServer bool

	RequestedVersion  wire.Version
	NegotiatedVersion wire.Version

	SelectedSuite suite.CipherSuite

	ClientRandom [32]byte
	ServerRandom [32]byte

	PremasterSecret []byte // 48 bytes
	MasterSecret    []byte // 48 bytes

	// Key-block derivatives, sliced from the PRF expansion (spec §4.6).
	ClientMACKey []byte
	ServerMACKey []byte
	ClientKey    []byte
	ServerKey    []byte
	ClientIV     []byte
	ServerIV     []byte

	readCodec  record.Codec
	writeCodec record.Codec

	clientSeq uint64
	serverSeq uint64

	transcript []byte

	PeerCertificates []*x509.Certificate
	Certificates     []*x509.Certificate
	PrivateKey       crypto.PrivateKey

	debugExtensions bool
}

// New returns a fresh State for one connection.
func New(isServer bool, requestedVersion wire.Version) *State {
	return &State{IsServer: isServer, RequestedVersion: requestedVersion}
}

// SetDebugExtensions records the debug-extension flag (spec §3
// TlsParams.debug-extension), readable back through DebugExtensions. The
// State holds no extension data, and Summary does not report any.
func (s *State) SetDebugExtensions(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugExtensions = on
}

func (s *State) DebugExtensions() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugExtensions
}

// ReadCodec returns the Codec currently bound for the read direction, or
// nil before the first ChangeCipherSpec has been received.
func (s *State) ReadCodec() record.Codec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readCodec
}

// WriteCodec returns the Codec currently bound for the write direction, or
// nil before the first ChangeCipherSpec has been sent.
func (s *State) WriteCodec() record.Codec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeCodec
}

// ActivateReadCipher binds codec as the new read-direction Codec and resets
// the client/server sequence counter appropriate to this endpoint's peer
// (spec §3 invariant 2: epoch change resets the sequence number).
func (s *State) ActivateReadCipher(codec record.Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readCodec = codec
	if s.IsServer {
		s.clientSeq = 0
	} else {
		s.serverSeq = 0
	}
}

// ActivateWriteCipher binds codec as the new write-direction Codec and
// resets this endpoint's own sequence counter.
func (s *State) ActivateWriteCipher(codec record.Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCodec = codec
	if s.IsServer {
		s.serverSeq = 0
	} else {
		s.clientSeq = 0
	}
}

// NextReadSeq returns the current read-direction sequence number and
// advances it (spec §5: counters are incremented under the write lock and
// returned by value).
func (s *State) NextReadSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsServer {
		v := s.clientSeq
		s.clientSeq++
		return v
	}
	v := s.serverSeq
	s.serverSeq++
	return v
}

// NextWriteSeq returns the current write-direction sequence number and
// advances it.
func (s *State) NextWriteSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsServer {
		v := s.serverSeq
		s.serverSeq++
		return v
	}
	v := s.clientSeq
	s.clientSeq++
	return v
}

// PeekWriteSeq returns the write-direction sequence number that the next
// WriteRecord call would start from, without advancing it -- callers pass
// it to Writer.WriteRecord, which may fragment a message across
// consecutive sequence numbers, and then hand the returned next sequence
// number to AdvanceWriteSeq.
func (s *State) PeekWriteSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.IsServer {
		return s.serverSeq
	}
	return s.clientSeq
}

// AdvanceWriteSeq advances the write-direction counter to n (used after a
// Writer.WriteRecord call reports how many sequence numbers it consumed).
func (s *State) AdvanceWriteSeq(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsServer {
		s.serverSeq = n
	} else {
		s.clientSeq = n
	}
}

// AppendTranscript appends a handshake message's body (not including the
// record header) to the running transcript (spec §3 handshake-transcript).
// The driver must compute its own Finished verify-data from Transcript()
// before appending that Finished's own body, so the transcript used for
// each side's Finished check holds every handshake message except that
// side's own Finished (spec §3 invariant 4).
func (s *State) AppendTranscript(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, body...)
}

// Transcript returns a copy of the handshake transcript accumulated so far.
func (s *State) Transcript() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]byte, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Summary returns a read-only, human-readable snapshot of the negotiated
// session for observability (spec §3 "observability plist", §9 Open
// Questions: the only scripting surface this core exposes).
func (s *State) Summary() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := map[string]string{
		"negotiated_version": s.NegotiatedVersion.String(),
		"requested_version":  s.RequestedVersion.String(),
		"cipher_suite":       s.SelectedSuite.Name,
		"is_server":          fmt.Sprintf("%v", s.IsServer),
	}
	if len(s.PeerCertificates) > 0 {
		m["peer_subject"] = s.PeerCertificates[0].Subject.String()
	}
	return m
}
