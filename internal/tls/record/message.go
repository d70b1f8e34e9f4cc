package record

import (
	"io"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// Message is a typed view over a Record (spec §3 Message). It is bound to
// exactly one logical message, which may have been reassembled from
// several records sharing one content type.
type Message struct {
	ContentType ContentType
	Version     Version
	body        []byte
}

// Body returns the message's raw (already-decrypted) payload.
func (m *Message) Body() []byte {
	return m.body
}

// Alert decodes m as a 2-byte Alert message.
func (m *Message) Alert() (*alert.Error, error) {
	if m.ContentType != ContentTypeAlert {
		return nil, alert.New(alert.Unexpected)
	}
	return alert.Unmarshal(m.body)
}

// IsChangeCipherSpec reports whether m is the single-byte ChangeCipherSpec
// message (spec §3 ChangeCipherSpec: "single byte 0x01").
func (m *Message) IsChangeCipherSpec() error {
	if m.ContentType != ContentTypeChangeCipherSpec {
		return alert.New(alert.Unexpected)
	}
	if len(m.body) != 1 || m.body[0] != 0x01 {
		return alert.New(alert.DecodeError)
	}
	return nil
}

// ApplicationData returns m's opaque payload.
func (m *Message) ApplicationData() ([]byte, error) {
	if m.ContentType != ContentTypeApplicationData {
		return nil, alert.New(alert.Unexpected)
	}
	return m.body, nil
}

// Handshake returns an iterator over m's HandshakeBlock entries. more, if
// non-nil, is called to fetch additional same-content-type record bodies
// when a block's declared length runs past what has been buffered so far
// (spec §4.1: a logical message may span multiple records).
func (m *Message) Handshake(more func() ([]byte, error)) (*HandshakeIter, error) {
	if m.ContentType != ContentTypeHandshake {
		return nil, alert.New(alert.Unexpected)
	}
	return &HandshakeIter{data: m.body, more: more}, nil
}

// HandshakeBlock is a (type, offset, length) view into the parent record
// bytes (spec §3 HandshakeBlock). It borrows rather than copies.
type HandshakeBlock struct {
	Type   HandshakeType
	Offset int
	Length int

	parent []byte
}

// Body returns the block's body bytes, a window into the parent buffer.
func (b HandshakeBlock) Body() []byte {
	return b.parent[b.Offset : b.Offset+b.Length]
}

// HandshakeIter walks the 4-byte-prefixed blocks making up a Handshake
// message body (spec §4.3). It is forward-only and finite.
type HandshakeIter struct {
	data []byte
	pos  int
	more func() ([]byte, error)
	done bool
}

// Next returns the next block, io.EOF when iteration has finished cleanly,
// or a fatal *alert.Error if the cumulative offset would exceed the
// available data with no way to fetch more (spec §4.3: advancing past a
// malformed boundary is fatal).
func (it *HandshakeIter) Next() (HandshakeBlock, error) {
	if it.done {
		return HandshakeBlock{}, io.EOF
	}
	for {
		if it.pos == len(it.data) {
			it.done = true
			return HandshakeBlock{}, io.EOF
		}
		if it.pos+4 <= len(it.data) {
			length := int(wire.Uint24(it.data[it.pos+1 : it.pos+4]))
			if it.pos+4+length <= len(it.data) {
				block := HandshakeBlock{
					Type:   HandshakeType(it.data[it.pos]),
					Offset: it.pos + 4,
					Length: length,
					parent: it.data,
				}
				it.pos += 4 + length
				return block, nil
			}
		}
		if it.more == nil {
			it.done = true
			return HandshakeBlock{}, alert.New(alert.DecodeError)
		}
		more, err := it.more()
		if err != nil {
			it.done = true
			return HandshakeBlock{}, err
		}
		it.data = append(it.data, more...)
	}
}

// EncodeHandshakeBlock prefixes body with its 4-byte (type, length) header.
func EncodeHandshakeBlock(typ HandshakeType, body []byte) []byte {
	out := make([]byte, 4+len(body))
	out[0] = byte(typ)
	wire.PutUint24(out[1:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

// HandshakeMoreFunc builds the "more" callback ReadMessage's caller passes
// to Message.Handshake when reassembly across records may be required.
// nextSeq must return this direction's next sequence number and advance it,
// mirroring how the State tracks sequence numbers for ordinary records.
func HandshakeMoreFunc(rd *Reader, codec Codec, nextSeq func() uint64) func() ([]byte, error) {
	return func() ([]byte, error) {
		rec, err := rd.ReadRecord(nextSeq(), codec)
		if err != nil {
			return nil, err
		}
		if rec.ContentType != ContentTypeHandshake {
			return nil, alert.New(alert.Unexpected)
		}
		return rec.Body, nil
	}
}

// ReadMessage reads one logical Message from rd, reassembling across
// further same-content-type records if the first record's content type is
// Handshake and the caller later asks the returned Message's Handshake
// iterator for more than what was initially buffered. For
// non-Handshake content types reassembly does not apply: each is already
// complete within its own record.
func ReadMessage(rd *Reader, seq uint64, codec Codec) (*Message, error) {
	rec, err := rd.ReadRecord(seq, codec)
	if err != nil {
		return nil, err
	}
	return &Message{ContentType: rec.ContentType, Version: rec.Version, body: rec.Body}, nil
}
