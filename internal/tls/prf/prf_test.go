package prf

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lanikai/tlscore/internal/tls/wire"
)

func TestPRFIsDeterministic(t *testing.T) {
	secret := []byte("a shared premaster secret......")
	seed := []byte("some seed bytes")

	a := PRF(wire.TLS12, sha256.New, secret, "master secret", seed, 48)
	b := PRF(wire.TLS12, sha256.New, secret, "master secret", seed, 48)
	assert.Equal(t, a, b)
	assert.Len(t, a, 48)
}

func TestPRFDiffersAcrossVersions(t *testing.T) {
	secret := []byte("a shared premaster secret......")
	seed := []byte("some seed bytes")

	tls12 := PRF(wire.TLS12, sha256.New, secret, "master secret", seed, 48)
	tls10 := PRF(wire.TLS10, nil, secret, "master secret", seed, 48)
	assert.NotEqual(t, tls12, tls10)
}

func TestPRFDiffersAcrossLabels(t *testing.T) {
	secret := []byte("a shared premaster secret......")
	seed := []byte("some seed bytes")

	master := PRF(wire.TLS12, sha256.New, secret, "master secret", seed, 48)
	expand := PRF(wire.TLS12, sha256.New, secret, "key expansion", seed, 48)
	assert.NotEqual(t, master, expand)
}

func TestMasterSecretIs48Bytes(t *testing.T) {
	premaster := make([]byte, 48)
	clientRandom := make([]byte, 32)
	serverRandom := make([]byte, 32)

	ms := MasterSecret(wire.TLS12, sha256.New, premaster, clientRandom, serverRandom)
	assert.Len(t, ms, 48)
}

func TestKeyBlockSizedForRequestedMaterial(t *testing.T) {
	master := make([]byte, 48)
	clientRandom := make([]byte, 32)
	serverRandom := make([]byte, 32)

	kb := KeyBlock(wire.TLS12, sha256.New, master, clientRandom, serverRandom, 20, 16, 16)
	assert.Len(t, kb, 2*(20+16+16))
}

func TestFinishedVerifyDataIs12BytesAndRoleDependent(t *testing.T) {
	master := make([]byte, 48)
	transcript := []byte("the handshake transcript so far")

	clientVD := FinishedVerifyData(wire.TLS12, sha256.New, master, Client, transcript)
	serverVD := FinishedVerifyData(wire.TLS12, sha256.New, master, Server, transcript)

	assert.Len(t, clientVD, 12)
	assert.Len(t, serverVD, 12)
	assert.NotEqual(t, clientVD, serverVD)
}

func TestFinishedVerifyDataChangesWithTranscript(t *testing.T) {
	master := make([]byte, 48)

	vd1 := FinishedVerifyData(wire.TLS12, sha256.New, master, Client, []byte("transcript one"))
	vd2 := FinishedVerifyData(wire.TLS12, sha256.New, master, Client, []byte("transcript two"))
	assert.NotEqual(t, vd1, vd2)
}

func TestPRFTLS10UsesMD5SHA1Split(t *testing.T) {
	// TLS 1.0/1.1 pass a nil hashNew since the construction splits the
	// secret across MD5 and SHA1 rather than using a suite hash.
	secret := []byte("another premaster secret value.")
	seed := []byte("seed")

	out := PRF(wire.TLS10, nil, secret, "key expansion", seed, 64)
	assert.Len(t, out, 64)

	s1, s2 := split(secret)
	fullSeed := append([]byte("key expansion"), seed...)
	md5Out := pHash(md5.New, s1, fullSeed, 64)
	sha1Out := pHash(sha1.New, s2, fullSeed, 64)
	want := make([]byte, 64)
	for i := range want {
		want[i] = md5Out[i] ^ sha1Out[i]
	}
	assert.Equal(t, want, out)
}
