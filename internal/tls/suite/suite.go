// Package suite holds the static cipher suite catalogue (spec §4.5) and the
// factory functions that turn a suite's algorithm identifiers into live
// crypto/* primitives for the record Codec.
package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/lanikai/tlscore/internal/tls/wire"
)

// Code is a 2-byte TLS cipher suite identifier.
type Code uint16

// Cipher suite codes recognized by this core (spec §6). Not exhaustive of
// the TLS registry, but covers the block/stream/AEAD matrix the spec names.
const (
	NULL_WITH_NULL_NULL    Code = 0x0000
	NULL_WITH_MD5          Code = 0x0001
	NULL_WITH_SHA          Code = 0x0002
	RSA_WITH_RC4_128_MD5   Code = 0x0004
	RSA_WITH_RC4_128_SHA   Code = 0x0005
	RSA_WITH_AES_128_CBC_SHA    Code = 0x002F
	RSA_WITH_AES_256_CBC_SHA    Code = 0x0035
	RSA_WITH_AES_128_CBC_SHA256 Code = 0x003C
	RSA_WITH_AES_256_CBC_SHA256 Code = 0x003D
	RSA_WITH_AES_128_GCM_SHA256 Code = 0x009C
	RSA_WITH_AES_256_GCM_SHA384 Code = 0x009D
)

// BulkAlgorithm names the bulk cipher used by a suite.
type BulkAlgorithm int

const (
	BulkNone BulkAlgorithm = iota
	BulkRC4
	BulkAES128
	BulkAES256
)

// BlockMode names how the bulk cipher is chained.
type BlockMode int

const (
	ModeNone          BlockMode = iota // stream cipher or null cipher
	ModeCBC                            // TLS 1.0 implicit chained IV
	ModeCBCExplicitIV                  // TLS 1.1+ explicit per-record IV
	ModeGCM
)

// HashAlgorithm names the suite's MAC/PRF hash.
type HashAlgorithm int

const (
	HashNone HashAlgorithm = iota
	HashMD5
	HashSHA1
	HashSHA256
	HashSHA384
)

func (h HashAlgorithm) New() func() hash.Hash {
	switch h {
	case HashMD5:
		return md5.New
	case HashSHA1:
		return sha1.New
	case HashSHA256:
		return sha256.New
	case HashSHA384:
		return sha512.New384
	default:
		return nil
	}
}

func (h HashAlgorithm) Size() int {
	switch h {
	case HashMD5:
		return md5.Size
	case HashSHA1:
		return sha1.Size
	case HashSHA256:
		return sha256.Size
	case HashSHA384:
		return sha512.Size384
	default:
		return 0
	}
}

// CipherSuite is one row of the catalogue (spec §3 CipherSuite).
type CipherSuite struct {
	Code Code
	Name string

	// MinVersion, MaxVersion bound the (major, minor) interval this suite
	// is a candidate for.
	MinVersion, MaxVersion wire.Version

	Bulk      BulkAlgorithm
	Mode      BlockMode
	KeySize   int
	BlockSize int
	IVSize    int

	Hash    HashAlgorithm
	UsesMAC bool

	RequiresCertificate bool
}

// table is the static suite catalogue, in the server's preference order
// (spec §4.5 tie-break: server preference order is authoritative).
var table = []CipherSuite{
	{
		Code: NULL_WITH_NULL_NULL, Name: "TLS_NULL_WITH_NULL_NULL",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkNone, Mode: ModeNone, Hash: HashNone, UsesMAC: false,
	},
	{
		Code: NULL_WITH_MD5, Name: "TLS_RSA_WITH_NULL_MD5",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkNone, Mode: ModeNone, Hash: HashMD5, UsesMAC: true,
		RequiresCertificate: true,
	},
	{
		Code: NULL_WITH_SHA, Name: "TLS_RSA_WITH_NULL_SHA",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkNone, Mode: ModeNone, Hash: HashSHA1, UsesMAC: true,
		RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_128_GCM_SHA256, Name: "TLS_RSA_WITH_AES_128_GCM_SHA256",
		MinVersion: wire.TLS12, MaxVersion: wire.TLS12,
		Bulk: BulkAES128, Mode: ModeGCM, KeySize: 16, BlockSize: 16, IVSize: 4,
		Hash: HashSHA256, UsesMAC: false, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_256_GCM_SHA384, Name: "TLS_RSA_WITH_AES_256_GCM_SHA384",
		MinVersion: wire.TLS12, MaxVersion: wire.TLS12,
		Bulk: BulkAES256, Mode: ModeGCM, KeySize: 32, BlockSize: 16, IVSize: 4,
		Hash: HashSHA384, UsesMAC: false, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_128_CBC_SHA256, Name: "TLS_RSA_WITH_AES_128_CBC_SHA256",
		MinVersion: wire.TLS12, MaxVersion: wire.TLS12,
		Bulk: BulkAES128, Mode: ModeCBCExplicitIV, KeySize: 16, BlockSize: 16, IVSize: 16,
		Hash: HashSHA256, UsesMAC: true, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_256_CBC_SHA256, Name: "TLS_RSA_WITH_AES_256_CBC_SHA256",
		MinVersion: wire.TLS12, MaxVersion: wire.TLS12,
		Bulk: BulkAES256, Mode: ModeCBCExplicitIV, KeySize: 32, BlockSize: 16, IVSize: 16,
		Hash: HashSHA256, UsesMAC: true, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_128_CBC_SHA, Name: "TLS_RSA_WITH_AES_128_CBC_SHA",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkAES128, Mode: ModeCBC, KeySize: 16, BlockSize: 16, IVSize: 16,
		Hash: HashSHA1, UsesMAC: true, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_AES_256_CBC_SHA, Name: "TLS_RSA_WITH_AES_256_CBC_SHA",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkAES256, Mode: ModeCBC, KeySize: 32, BlockSize: 16, IVSize: 16,
		Hash: HashSHA1, UsesMAC: true, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_RC4_128_SHA, Name: "TLS_RSA_WITH_RC4_128_SHA",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkRC4, Mode: ModeNone, KeySize: 16,
		Hash: HashSHA1, UsesMAC: true, RequiresCertificate: true,
	},
	{
		Code: RSA_WITH_RC4_128_MD5, Name: "TLS_RSA_WITH_RC4_128_MD5",
		MinVersion: wire.TLS10, MaxVersion: wire.TLS12,
		Bulk: BulkRC4, Mode: ModeNone, KeySize: 16,
		Hash: HashMD5, UsesMAC: true, RequiresCertificate: true,
	},
}

// Candidates returns every suite applicable to version, in catalogue
// (server preference) order. When allowNull is false, the NULL-bulk suites
// are excluded (spec §4.5: null suites only selectable when explicitly
// enabled).
func Candidates(version wire.Version, allowNull bool) []CipherSuite {
	var out []CipherSuite
	for _, cs := range table {
		if version.Less(cs.MinVersion) || cs.MaxVersion.Less(version) {
			continue
		}
		if !allowNull && cs.Bulk == BulkNone {
			continue
		}
		out = append(out, cs)
	}
	return out
}

// Locate returns the first code in the server's preference order (serverList)
// that also appears in peerList, or NULL_WITH_NULL_NULL if there is none
// (spec §4.5).
func Locate(serverList []CipherSuite, peerList []Code) Code {
	offered := make(map[Code]bool, len(peerList))
	for _, c := range peerList {
		offered[c] = true
	}
	for _, cs := range serverList {
		if offered[cs.Code] {
			return cs.Code
		}
	}
	return NULL_WITH_NULL_NULL
}

// Info looks up the full catalogue row for code.
func Info(code Code) (CipherSuite, bool) {
	for _, cs := range table {
		if cs.Code == code {
			return cs, true
		}
	}
	return CipherSuite{}, false
}

// NewBlockCipher constructs the block cipher for CBC-mode suites.
func NewBlockCipher(alg BulkAlgorithm, key []byte) (cipher.Block, error) {
	switch alg {
	case BulkAES128, BulkAES256:
		return aes.NewCipher(key)
	default:
		return nil, fmt.Errorf("suite: %v is not a block cipher", alg)
	}
}

// NewStreamCipher constructs the stream cipher for RC4 suites.
func NewStreamCipher(alg BulkAlgorithm, key []byte) (cipher.Stream, error) {
	switch alg {
	case BulkRC4:
		return rc4.NewCipher(key)
	default:
		return nil, fmt.Errorf("suite: %v is not a stream cipher", alg)
	}
}

// NewAEAD constructs the AEAD cipher for GCM suites.
func NewAEAD(alg BulkAlgorithm, key []byte) (cipher.AEAD, error) {
	block, err := NewBlockCipher(alg, key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// NewMAC constructs the HMAC for a suite that uses one.
func NewMAC(h HashAlgorithm, key []byte) hash.Hash {
	newHash := h.New()
	if newHash == nil {
		return nil
	}
	return hmac.New(newHash, key)
}
