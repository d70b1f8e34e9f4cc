package tls

import (
	"io"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/record"
	"github.com/lanikai/tlscore/internal/tls/state"
	"github.com/lanikai/tlscore/internal/tls/wire"
)

// writeHandshake frames body as one Handshake record and sends it. It does
// not touch the transcript -- callers append the encoded block themselves,
// at the point that correctly reflects spec §3 invariant 4 (a Finished
// message's own bytes must not be in the transcript used to compute it).
func writeHandshake(wr *record.Writer, st *state.State, version record.Version, typ wire.HandshakeType, body []byte) ([]byte, error) {
	block := record.EncodeHandshakeBlock(typ, body)
	seq := st.PeekWriteSeq()
	next, err := wr.WriteRecord(seq, record.ContentTypeHandshake, version, st.WriteCodec(), block)
	if err != nil {
		return nil, err
	}
	st.AdvanceWriteSeq(next)
	return block, nil
}

// writeChangeCipherSpec sends the single-byte ChangeCipherSpec message
// (spec §3).
func writeChangeCipherSpec(wr *record.Writer, st *state.State, version record.Version) error {
	seq := st.PeekWriteSeq()
	next, err := wr.WriteRecord(seq, record.ContentTypeChangeCipherSpec, version, st.WriteCodec(), []byte{0x01})
	if err != nil {
		return err
	}
	st.AdvanceWriteSeq(next)
	return nil
}

// readChangeCipherSpec reads and validates the single-byte ChangeCipherSpec
// message.
func readChangeCipherSpec(rd *record.Reader, st *state.State) error {
	msg, err := record.ReadMessage(rd, st.NextReadSeq(), st.ReadCodec())
	if err != nil {
		return err
	}
	return msg.IsChangeCipherSpec()
}

// handshakeStream walks the Handshake blocks of a connection, transparently
// reassembling across records and across distinct Handshake-content-type
// records sent back to back in one flight (spec §4.1, §4.3). It never
// touches the transcript; callers append each returned block's encoded
// bytes once they have decided how to treat it.
type handshakeStream struct {
	rd   *record.Reader
	st   *state.State
	iter *record.HandshakeIter
}

func newHandshakeStream(rd *record.Reader, st *state.State) *handshakeStream {
	return &handshakeStream{rd: rd, st: st}
}

func (hs *handshakeStream) next() (record.HandshakeBlock, error) {
	for {
		if hs.iter != nil {
			block, err := hs.iter.Next()
			if err == nil {
				return block, nil
			}
			if err != io.EOF {
				return record.HandshakeBlock{}, err
			}
			hs.iter = nil
		}

		msg, err := record.ReadMessage(hs.rd, hs.st.NextReadSeq(), hs.st.ReadCodec())
		if err != nil {
			return record.HandshakeBlock{}, err
		}
		if msg.ContentType == record.ContentTypeAlert {
			// The peer sent a real Alert instead of the Handshake message we
			// were waiting for (e.g. a version/cipher rejection) -- surface
			// its actual description rather than fabricating Unexpected.
			al, err := msg.Alert()
			if err != nil {
				return record.HandshakeBlock{}, err
			}
			return record.HandshakeBlock{}, al
		}
		if msg.ContentType != record.ContentTypeHandshake {
			return record.HandshakeBlock{}, alert.New(alert.Unexpected)
		}
		more := record.HandshakeMoreFunc(hs.rd, hs.st.ReadCodec(), hs.st.NextReadSeq)
		iter, err := msg.Handshake(more)
		if err != nil {
			return record.HandshakeBlock{}, err
		}
		hs.iter = iter
	}
}

// expect reads the next block and requires it to have type want.
func (hs *handshakeStream) expect(want wire.HandshakeType) (record.HandshakeBlock, error) {
	block, err := hs.next()
	if err != nil {
		return block, err
	}
	if block.Type != want {
		return block, alert.New(alert.Unexpected)
	}
	return block, nil
}

// recordSent appends a block this endpoint just sent to the transcript.
func recordSent(st *state.State, block []byte) {
	st.AppendTranscript(block)
}

// recordReceived appends a block this endpoint just received to the
// transcript, reconstructing its encoded form from the HandshakeBlock.
func recordReceived(st *state.State, block record.HandshakeBlock) {
	st.AppendTranscript(record.EncodeHandshakeBlock(block.Type, block.Body()))
}

// alertVersion picks the record-layer version to stamp on an Alert sent
// before (or instead of) a negotiated version exists: the negotiated
// version once one was agreed, else whatever version the ClientHello
// requested, else the floor of the version range this core speaks.
func alertVersion(st *state.State) wire.Version {
	if st.NegotiatedVersion != (wire.Version{}) {
		return st.NegotiatedVersion
	}
	if st.RequestedVersion != (wire.Version{}) {
		return st.RequestedVersion
	}
	return wire.TLS10
}

// abort sends err to the peer as a fatal Alert, best-effort, before
// returning it to the caller (spec §7: "first attempts to send a
// corresponding Alert to the peer"). Errors that are not already an
// *alert.Error (transport failures, a connection already gone) are
// returned unchanged -- there is nothing meaningful to transmit. A failure
// to transmit the Alert itself never masks the original error.
func abort(wr *record.Writer, st *state.State, err error) error {
	ae, ok := err.(*alert.Error)
	if !ok || ae.Sent {
		return err
	}
	body := ae.Marshal()
	seq := st.PeekWriteSeq()
	next, sendErr := wr.WriteRecord(seq, record.ContentTypeAlert, alertVersion(st), st.WriteCodec(), body[:])
	if sendErr == nil {
		st.AdvanceWriteSeq(next)
		ae.Sent = true
	}
	return err
}
