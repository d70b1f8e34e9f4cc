package handshake

import (
	"crypto/rand"
	"io"
)

// NewRandom fills a 32-byte hello random from rng (crypto/rand.Reader when
// rng is nil). Unlike the gmt_unix_time-prefixed random of the original
// RFC 2246 text, this core does not special-case the first four bytes.
func NewRandom(rng io.Reader) ([32]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var out [32]byte
	_, err := io.ReadFull(rng, out[:])
	return out, err
}
