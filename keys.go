package tls

import (
	"crypto/x509"

	"github.com/lanikai/tlscore/internal/tls/prf"
	"github.com/lanikai/tlscore/internal/tls/record"
	"github.com/lanikai/tlscore/internal/tls/state"
	"github.com/lanikai/tlscore/internal/tls/suite"
)

// certificateChainDER returns chain's DER bytes in wire order, leaf first.
func certificateChainDER(chain []*x509.Certificate) [][]byte {
	out := make([][]byte, len(chain))
	for i, c := range chain {
		out[i] = c.Raw
	}
	return out
}

// ivContribution returns how many bytes of the key-block this suite's IV
// comes from. ModeCBCExplicitIV suites and RC4 draw no IV from the
// key-block; ModeCBC suites draw one at every version (the record codec
// uses it only to seed TLS 1.0's chained CBC), and GCM draws its 4-byte
// implicit IV (spec §4.6).
func ivContribution(cs suite.CipherSuite) int {
	if cs.Mode == suite.ModeCBCExplicitIV {
		return 0
	}
	return cs.IVSize
}

// deriveKeys computes the master secret and key-block from st's
// premaster secret and hello randoms, and populates every key-schedule
// field on st (spec §4.6).
func deriveKeys(st *state.State, premaster []byte) {
	cs := st.SelectedSuite
	hashNew := cs.Hash.New()

	st.PremasterSecret = premaster
	st.MasterSecret = prf.MasterSecret(st.NegotiatedVersion, hashNew, premaster, st.ClientRandom[:], st.ServerRandom[:])

	macSize := 0
	if cs.UsesMAC {
		macSize = cs.Hash.Size()
	}
	ivSize := ivContribution(cs)

	keyBlock := prf.KeyBlock(st.NegotiatedVersion, hashNew, st.MasterSecret, st.ClientRandom[:], st.ServerRandom[:], macSize, cs.KeySize, ivSize)

	off := 0
	next := func(n int) []byte {
		b := keyBlock[off : off+n]
		off += n
		return b
	}

	st.ClientMACKey = next(macSize)
	st.ServerMACKey = next(macSize)
	st.ClientKey = next(cs.KeySize)
	st.ServerKey = next(cs.KeySize)
	st.ClientIV = next(ivSize)
	st.ServerIV = next(ivSize)
}

// newCodec builds the record.Codec for one direction's key material,
// dispatching on the suite's chaining mode (spec §4.2).
func newCodec(cs suite.CipherSuite, macKey, key, iv []byte) (record.Codec, error) {
	if cs.Mode == suite.ModeGCM {
		return record.NewGCMCodec(cs, key, iv)
	}
	return record.NewBlockCodec(cs, macKey, key, iv)
}

// finishedVerifyData computes this role's Finished verify-data from st's
// current transcript (spec §4.4, §4.6).
func finishedVerifyData(st *state.State, role prf.Role) []byte {
	hashNew := st.SelectedSuite.Hash.New()
	return prf.FinishedVerifyData(st.NegotiatedVersion, hashNew, st.MasterSecret, role, st.Transcript())
}
