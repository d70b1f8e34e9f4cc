// Package prf implements the TLS pseudo-random function family (spec
// §4.6): the version-parametric key expansion used to derive the master
// secret, the key-block, and Finished verify-data.
package prf

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/lanikai/tlscore/internal/tls/wire"
)

// pHash is the HMAC expansion function P_hash(secret, seed) from RFC 5246
// §5: A(0) = seed, A(i) = HMAC_hash(secret, A(i-1)), output is the
// concatenation of HMAC_hash(secret, A(i) ‖ seed) for i = 1, 2, ... ,
// truncated to length bytes.
func pHash(newHash func() hash.Hash, secret, seed []byte, length int) []byte {
	out := make([]byte, 0, length)

	a := seed
	for len(out) < length {
		mac := hmac.New(newHash, secret)
		mac.Write(a)
		a = mac.Sum(nil)

		mac = hmac.New(newHash, secret)
		mac.Write(a)
		mac.Write(seed)
		out = append(out, mac.Sum(nil)...)
	}
	return out[:length]
}

// split divides secret into two halves for the TLS 1.0/1.1 master PRF,
// rounding up on odd lengths so the halves overlap by one byte (spec §4.6).
func split(secret []byte) (s1, s2 []byte) {
	n := (len(secret) + 1) / 2
	s1 = secret[:n]
	s2 = secret[len(secret)-n:]
	return
}

// PRF expands secret and (label, seed) into length bytes of key material,
// using the version-appropriate construction (spec §4.6):
//
//   - TLS 1.0/1.1: the result is P_MD5(first half of secret, label‖seed)
//     XORed with P_SHA1(second half of secret, label‖seed).
//   - TLS 1.2: the result is a single P_hash driven by the suite hash
//     (hashNew), with no secret splitting.
func PRF(version wire.Version, hashNew func() hash.Hash, secret []byte, label string, seed []byte, length int) []byte {
	fullSeed := append([]byte(label), seed...)

	if version == wire.TLS12 {
		if hashNew == nil {
			hashNew = sha256.New
		}
		return pHash(hashNew, secret, fullSeed, length)
	}

	s1, s2 := split(secret)
	md5Out := pHash(md5.New, s1, fullSeed, length)
	sha1Out := pHash(sha1.New, s2, fullSeed, length)

	out := make([]byte, length)
	for i := range out {
		out[i] = md5Out[i] ^ sha1Out[i]
	}
	return out
}

// MasterSecret derives the 48-byte master secret from the premaster secret
// and the two hello randoms (spec §4.6).
func MasterSecret(version wire.Version, hashNew func() hash.Hash, premaster, clientRandom, serverRandom []byte) []byte {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	return PRF(version, hashNew, premaster, "master secret", seed, 48)
}

// KeyBlock derives the key-expansion key-block, sized to cover two MAC
// keys, two bulk-cipher keys, and two IVs (spec §4.6, §8: the sum of twice
// (mac-size + key-size + iv-size) equals the key-block length).
func KeyBlock(version wire.Version, hashNew func() hash.Hash, master, clientRandom, serverRandom []byte, macSize, keySize, ivSize int) []byte {
	seed := append(append([]byte{}, serverRandom...), clientRandom...)
	length := 2 * (macSize + keySize + ivSize)
	return PRF(version, hashNew, master, "key expansion", seed, length)
}

// Role identifies which side's Finished verify-data is being computed.
type Role int

const (
	Client Role = iota
	Server
)

func (r Role) label() string {
	if r == Client {
		return "client finished"
	}
	return "server finished"
}

// FinishedVerifyData computes the 12-byte Finished verify-data (spec §4.4,
// §4.6): PRF(master, role-label, transcript-hash, 12). For TLS 1.0/1.1 the
// "transcript hash" seed is MD5(transcript) ‖ SHA1(transcript); for TLS 1.2
// it is the single suite-hash digest of the transcript.
func FinishedVerifyData(version wire.Version, hashNew func() hash.Hash, master []byte, role Role, transcript []byte) []byte {
	var seed []byte
	if version == wire.TLS12 {
		if hashNew == nil {
			hashNew = sha256.New
		}
		h := hashNew()
		h.Write(transcript)
		seed = h.Sum(nil)
	} else {
		md5h := md5.Sum(transcript)
		sha1h := sha1.Sum(transcript)
		seed = append(append([]byte{}, md5h[:]...), sha1h[:]...)
	}
	return PRF(version, hashNew, master, role.label(), seed, 12)
}

// SHA384 is exposed for suites that mandate it (e.g. AES_256_GCM_SHA384).
var SHA384 = sha512.New384
