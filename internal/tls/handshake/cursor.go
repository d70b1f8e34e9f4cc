package handshake

import (
	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// cursor is a bounds-checked reader over a handshake body, replacing the
// hand-tracked byte offsets of a manual unmarshaler with a single advancing
// position. Every read that would run past the end of buf returns a
// DecodeError alert instead of panicking.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, alert.New(alert.DecodeError)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (c *cursor) uint24() (uint32, error) {
	b, err := c.take(3)
	if err != nil {
		return 0, err
	}
	return wire.Uint24(b), nil
}

// vector8 reads a <0..255>-style opaque vector with a 1-byte length prefix.
func (c *cursor) vector8() ([]byte, error) {
	n, err := c.uint8()
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

// vector16 reads a <0..65535>-style opaque vector with a 2-byte length prefix.
func (c *cursor) vector16() ([]byte, error) {
	n, err := c.uint16()
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

// vector24 reads a <0..2^24-1>-style opaque vector with a 3-byte length
// prefix, used for the Certificate message's certificate_list (spec §4.4).
func (c *cursor) vector24() ([]byte, error) {
	n, err := c.uint24()
	if err != nil {
		return nil, err
	}
	return c.take(int(n))
}

func (c *cursor) atEnd() bool {
	return c.remaining() == 0
}

// builder accumulates a handshake body the way the cursor consumes one:
// appends only, with matching vector helpers on the encode side.
type builder struct {
	buf []byte
}

func (b *builder) writeUint8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *builder) writeUint16(v uint16) {
	b.buf = append(b.buf, byte(v>>8), byte(v))
}

func (b *builder) writeUint24(v uint32) {
	tmp := make([]byte, 3)
	wire.PutUint24(tmp, v)
	b.buf = append(b.buf, tmp...)
}

func (b *builder) write(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *builder) writeVector8(p []byte) {
	b.writeUint8(uint8(len(p)))
	b.write(p)
}

func (b *builder) writeVector16(p []byte) {
	b.writeUint16(uint16(len(p)))
	b.write(p)
}

func (b *builder) writeVector24(p []byte) {
	b.writeUint24(uint32(len(p)))
	b.write(p)
}

func (b *builder) bytes() []byte {
	return b.buf
}
