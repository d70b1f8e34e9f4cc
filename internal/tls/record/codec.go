package record

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/suite"
)

// Codec encrypts and decrypts one direction's record bodies (spec §4.2). A
// Codec's lifetime is exactly one epoch: the span between two consecutive
// ChangeCipherSpec events in one direction. seq is the sequence number of
// the record being processed, supplied by the caller's State.
type Codec interface {
	Encrypt(seq uint64, contentType ContentType, version Version, plaintext []byte) ([]byte, error)
	Decrypt(seq uint64, contentType ContentType, version Version, ciphertext []byte) ([]byte, error)
}

// macInput builds seq‖type‖vmaj‖vmin‖length‖plaintext, the input to the
// MAC-then-encrypt authentication tag (spec §4.2).
func macInput(seq uint64, contentType ContentType, version Version, length int, plaintext []byte) []byte {
	b := make([]byte, 13, 13+len(plaintext))
	binary.BigEndian.PutUint64(b[0:8], seq)
	b[8] = byte(contentType)
	b[9] = version.Major
	b[10] = version.Minor
	binary.BigEndian.PutUint16(b[11:13], uint16(length))
	return append(b, plaintext...)
}

func computeMAC(newHash func() hash.Hash, key []byte, seq uint64, contentType ContentType, version Version, plaintext []byte) []byte {
	mac := hmac.New(newHash, key)
	mac.Write(macInput(seq, contentType, version, len(plaintext), plaintext))
	return mac.Sum(nil)
}

// blockCodec implements MAC-then-encrypt for block ciphers (CBC), stream
// ciphers (RC4), and the null cipher (spec §4.2 "Block/Stream with HMAC").
type blockCodec struct {
	cs      suite.CipherSuite
	macKey  []byte
	newHash func() hash.Hash

	stream cipher.Stream // RC4, persistent across the whole epoch; nil otherwise

	block      cipher.Block   // AES, nil for stream/null suites
	iv         []byte         // initial IV, used only to seed the TLS 1.0 persistent BlockMode
	encMode    cipher.BlockMode // persistent for ModeCBC (implicit chained IV); built lazily
	decMode    cipher.BlockMode

	rand io.Reader // source of explicit IVs; crypto/rand.Reader unless overridden for tests
}

// NewBlockCodec builds the Codec for a block/stream/null suite. iv is the
// per-direction IV slice from the key-block; it seeds the persistent
// CBC chain for TLS 1.0 and is unused for TLS 1.1+ (explicit per-record
// IVs), RC4, and null.
func NewBlockCodec(cs suite.CipherSuite, macKey, encKey, iv []byte) (Codec, error) {
	c := &blockCodec{cs: cs, macKey: macKey, rand: rand.Reader}
	if cs.UsesMAC {
		c.newHash = cs.Hash.New()
	}

	switch cs.Bulk {
	case suite.BulkNone:
		// Null cipher: MAC only (or nothing at all for NULL_WITH_NULL_NULL).
	case suite.BulkRC4:
		s, err := suite.NewStreamCipher(cs.Bulk, encKey)
		if err != nil {
			return nil, err
		}
		c.stream = s
	case suite.BulkAES128, suite.BulkAES256:
		block, err := suite.NewBlockCipher(cs.Bulk, encKey)
		if err != nil {
			return nil, err
		}
		c.block = block
		c.iv = iv
	default:
		return nil, fmt.Errorf("record: unsupported bulk cipher %v", cs.Bulk)
	}
	return c, nil
}

func (c *blockCodec) mac(seq uint64, contentType ContentType, version Version, plaintext []byte) []byte {
	if !c.cs.UsesMAC {
		return nil
	}
	return computeMAC(c.newHash, c.macKey, seq, contentType, version, plaintext)
}

func (c *blockCodec) Encrypt(seq uint64, contentType ContentType, version Version, plaintext []byte) ([]byte, error) {
	payload := append(append([]byte(nil), plaintext...), c.mac(seq, contentType, version, plaintext)...)

	switch {
	case c.block != nil:
		return c.encryptBlock(version, payload)
	case c.stream != nil:
		ciphertext := make([]byte, len(payload))
		c.stream.XORKeyStream(ciphertext, payload)
		return ciphertext, nil
	default:
		return payload, nil
	}
}

func (c *blockCodec) encryptBlock(version Version, payload []byte) ([]byte, error) {
	blockSize := c.cs.BlockSize
	padLen := blockSize - (len(payload) % blockSize)
	p := byte(padLen - 1)
	padded := append(payload, make([]byte, padLen)...)
	for i := len(payload); i < len(padded); i++ {
		padded[i] = p
	}

	explicit := c.cs.Mode == suite.ModeCBCExplicitIV || !version.Less(TLS11)
	var mode cipher.BlockMode
	var iv []byte
	if explicit {
		iv = make([]byte, blockSize)
		if _, err := io.ReadFull(c.rand, iv); err != nil {
			return nil, err
		}
		mode = cipher.NewCBCEncrypter(c.block, iv)
	} else {
		if c.encMode == nil {
			c.encMode = cipher.NewCBCEncrypter(c.block, c.iv)
		}
		mode = c.encMode
	}

	ciphertext := make([]byte, len(padded))
	mode.CryptBlocks(ciphertext, padded)

	if explicit {
		return append(iv, ciphertext...), nil
	}
	return ciphertext, nil
}

func (c *blockCodec) Decrypt(seq uint64, contentType ContentType, version Version, ciphertext []byte) ([]byte, error) {
	var payload []byte
	switch {
	case c.block != nil:
		p, err := c.decryptBlock(version, ciphertext)
		if err != nil {
			return nil, err
		}
		payload = p
	case c.stream != nil:
		payload = make([]byte, len(ciphertext))
		c.stream.XORKeyStream(payload, ciphertext)
	default:
		payload = ciphertext
	}

	macSize := 0
	if c.cs.UsesMAC {
		macSize = c.cs.Hash.Size()
	}
	if len(payload) < macSize {
		return nil, alert.New(alert.BadRecordMAC)
	}
	plaintext := payload[:len(payload)-macSize]
	gotMAC := payload[len(payload)-macSize:]

	if !c.cs.UsesMAC {
		return plaintext, nil
	}

	wantMAC := computeMAC(c.newHash, c.macKey, seq, contentType, version, plaintext)
	if subtle.ConstantTimeCompare(wantMAC, gotMAC) != 1 {
		return nil, alert.New(alert.BadRecordMAC)
	}
	return plaintext, nil
}

func (c *blockCodec) decryptBlock(version Version, ciphertext []byte) ([]byte, error) {
	blockSize := c.cs.BlockSize
	explicit := c.cs.Mode == suite.ModeCBCExplicitIV || !version.Less(TLS11)

	if explicit {
		if len(ciphertext) < blockSize {
			return nil, alert.New(alert.BadRecordMAC)
		}
		iv := ciphertext[:blockSize]
		ciphertext = ciphertext[blockSize:]
		if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
			return nil, alert.New(alert.BadRecordMAC)
		}
		mode := cipher.NewCBCDecrypter(c.block, iv)
		padded := make([]byte, len(ciphertext))
		mode.CryptBlocks(padded, ciphertext)
		return stripPadding(padded, blockSize)
	}

	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return nil, alert.New(alert.BadRecordMAC)
	}
	if c.decMode == nil {
		c.decMode = cipher.NewCBCDecrypter(c.block, c.iv)
	}
	padded := make([]byte, len(ciphertext))
	c.decMode.CryptBlocks(padded, ciphertext)
	return stripPadding(padded, blockSize)
}

// stripPadding validates and removes CBC padding (spec §4.2 decode step b).
// A mismatch is reported the same way regardless of exactly which byte
// differed, so as not to leak a padding-oracle timing signal.
func stripPadding(padded []byte, blockSize int) ([]byte, error) {
	if len(padded) == 0 {
		return nil, alert.New(alert.BadRecordMAC)
	}
	p := padded[len(padded)-1]
	padLen := int(p) + 1

	good := 1
	if padLen > len(padded) {
		good = 0
	}
	// Walk every byte of the buffer so the loop's shape doesn't depend on
	// padLen; only bytes inside the claimed padding region affect `good`.
	for i, b := range padded {
		distFromEnd := len(padded) - 1 - i
		inPadding := subtle.ConstantTimeLessOrEq(distFromEnd+1, padLen)
		mismatch := subtle.ConstantTimeByteEq(b, p) ^ 1
		good &= 1 - (inPadding & mismatch)
	}
	if good != 1 {
		return nil, alert.New(alert.BadRecordMAC)
	}
	return padded[:len(padded)-padLen], nil
}

// gcmCodec implements the AEAD Codec variant (spec §4.2 "AEAD (GCM)").
type gcmCodec struct {
	aead       cipher.AEAD
	implicitIV []byte // 4 bytes, from the key-block
	rand       io.Reader
}

// NewGCMCodec builds the Codec for a GCM suite. implicitIV is the 4-byte
// per-direction IV slice from the key-block.
func NewGCMCodec(cs suite.CipherSuite, key, implicitIV []byte) (Codec, error) {
	aead, err := suite.NewAEAD(cs.Bulk, key)
	if err != nil {
		return nil, err
	}
	return &gcmCodec{aead: aead, implicitIV: implicitIV, rand: rand.Reader}, nil
}

func aeadAAD(seq uint64, contentType ContentType, version Version, length int) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint64(b[0:8], seq)
	b[8] = byte(contentType)
	b[9] = version.Major
	b[10] = version.Minor
	binary.BigEndian.PutUint16(b[11:13], uint16(length))
	return b
}

func (c *gcmCodec) Encrypt(seq uint64, contentType ContentType, version Version, plaintext []byte) ([]byte, error) {
	explicitNonce := make([]byte, 8)
	if _, err := io.ReadFull(c.rand, explicitNonce); err != nil {
		return nil, err
	}
	nonce := append(append([]byte(nil), c.implicitIV...), explicitNonce...)

	aad := aeadAAD(seq, contentType, version, len(plaintext))
	sealed := c.aead.Seal(nil, nonce, plaintext, aad)
	return append(explicitNonce, sealed...), nil
}

func (c *gcmCodec) Decrypt(seq uint64, contentType ContentType, version Version, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 8+c.aead.Overhead() {
		return nil, alert.New(alert.DecryptError)
	}
	explicitNonce := ciphertext[:8]
	sealed := ciphertext[8:]
	nonce := append(append([]byte(nil), c.implicitIV...), explicitNonce...)

	aad := aeadAAD(seq, contentType, version, len(sealed)-c.aead.Overhead())
	plaintext, err := c.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, alert.New(alert.DecryptError)
	}
	return plaintext, nil
}
