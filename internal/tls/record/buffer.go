package record

// Chunk is an append-only byte sequence used to assemble a record body
// without committing to a final length until it is handed to a Writer
// (spec §3 Chunk). It is created transiently during message encoding and
// consumed (copied) into a Record.
type Chunk struct {
	buf []byte
}

// NewChunk returns an empty Chunk, optionally pre-sizing its backing array.
func NewChunk(capacity int) *Chunk {
	return &Chunk{buf: make([]byte, 0, capacity)}
}

// Write appends p, satisfying io.Writer.
func (c *Chunk) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (c *Chunk) WriteByte(b byte) error {
	c.buf = append(c.buf, b)
	return nil
}

// WriteUint16 appends the big-endian encoding of v.
func (c *Chunk) WriteUint16(v uint16) {
	c.buf = append(c.buf, byte(v>>8), byte(v))
}

// WriteUint24 appends the big-endian 24-bit encoding of v.
func (c *Chunk) WriteUint24(v uint32) {
	c.buf = append(c.buf, byte(v>>16), byte(v>>8), byte(v))
}

// Bytes returns the chunk's contents. The returned slice is owned by the
// Chunk and must be copied before further writes if the caller retains it.
func (c *Chunk) Bytes() []byte {
	return c.buf
}

// Len reports the number of bytes written so far.
func (c *Chunk) Len() int {
	return len(c.buf)
}

// Buffer is a typed byte buffer carrying record-header metadata alongside
// its payload (spec §3 Buffer): the content type and protocol version that
// will (or did) accompany this body on the wire. It is the plaintext
// counterpart of a Record. The Conn stream wrapper does not use it: Conn
// buffers received data in a bytes.Buffer and sends each Write as
// ApplicationData records immediately, without accumulating writes.
type Buffer struct {
	ContentType ContentType
	Version     Version
	data        []byte
}

// NewBuffer returns an empty Buffer tagged with the given content type and
// version.
func NewBuffer(contentType ContentType, version Version) *Buffer {
	return &Buffer{ContentType: contentType, Version: version}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Bytes returns the accumulated payload.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len reports the number of bytes accumulated.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset empties the buffer so it can be reused.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Take removes and returns up to n bytes from the front of the buffer.
func (b *Buffer) Take(n int) []byte {
	if n > len(b.data) {
		n = len(b.data)
	}
	out := make([]byte, n)
	copy(out, b.data[:n])
	b.data = b.data[n:]
	return out
}
