// Package record implements the TLS record layer (spec §4.1): framing,
// length validation, the fragmentation boundary, sequence numbering via the
// Codec it is handed, and dispatch by content type. It also implements the
// Codec (§4.2) and Message/HandshakeBlock (§4.3) layers that sit directly
// on top of a Record.
package record

import (
	"encoding/binary"
	"io"

	"github.com/lanikai/tlscore/internal/tls/alert"
)

// headerLen is the fixed 5-byte record header: type(1) version(2) length(2).
const headerLen = 5

// Record is the lowest-level framed unit of TLS traffic (spec §3 Record).
type Record struct {
	ContentType ContentType
	Version     Version
	Body        []byte
}

// Reader reads Records off the wire, decrypting each through the Codec
// supplied to ReadRecord (nil before the first ChangeCipherSpec in a given
// direction).
type Reader struct {
	r io.Reader
}

// NewReader wraps r for record-level reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadRecord reads exactly one record from the wire. If codec is non-nil,
// the body is decrypted/verified before being returned as plaintext. A
// stream that ends before the first header byte is reported as io.EOF and
// one that ends mid-record as io.ErrUnexpectedEOF (a transport/
// connection-closed condition, spec §4.1); malformed headers are fatal
// Alerts.
func (rd *Reader) ReadRecord(seq uint64, codec Codec) (*Record, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		return nil, err
	}

	contentType := ContentType(hdr[0])
	if !contentType.Valid() {
		return nil, alert.New(alert.DecodeError)
	}
	version := Version{Major: hdr[1], Minor: hdr[2]}
	length := binary.BigEndian.Uint16(hdr[3:5])
	if length > MaxCiphertext {
		return nil, alert.New(alert.RecordOverflow)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(rd.r, body); err != nil {
		return nil, err
	}

	if codec != nil {
		plaintext, err := codec.Decrypt(seq, contentType, version, body)
		if err != nil {
			// Spec §7: all cryptographic verification failures map onto
			// bad_record_mac (or decrypt_error for AEAD) regardless of the
			// underlying reason, to avoid leaking padding-oracle signals.
			return nil, err
		}
		body = plaintext
	} else if len(body) > MaxPlaintext {
		return nil, alert.New(alert.RecordOverflow)
	}

	return &Record{ContentType: contentType, Version: version, Body: body}, nil
}

// Writer writes Records to the wire, encrypting each through the Codec
// supplied to WriteRecord, and transparently fragmenting plaintext longer
// than MaxPlaintext across multiple records (spec §4.1, §8 boundary
// behaviour).
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for record-level writing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord writes plaintext as one or more records of contentType,
// encrypting each fragment (if codec is non-nil) under consecutive sequence
// numbers starting at firstSeq. It returns the sequence number one past the
// last one consumed, so the caller's State counter can be advanced
// accordingly.
func (w *Writer) WriteRecord(firstSeq uint64, contentType ContentType, version Version, codec Codec, plaintext []byte) (nextSeq uint64, err error) {
	seq := firstSeq
	if len(plaintext) == 0 {
		if err := w.writeOne(seq, contentType, version, codec, nil); err != nil {
			return seq, err
		}
		return seq + 1, nil
	}

	for len(plaintext) > 0 {
		n := len(plaintext)
		if n > MaxPlaintext {
			n = MaxPlaintext
		}
		if err := w.writeOne(seq, contentType, version, codec, plaintext[:n]); err != nil {
			return seq, err
		}
		plaintext = plaintext[n:]
		seq++
	}
	return seq, nil
}

func (w *Writer) writeOne(seq uint64, contentType ContentType, version Version, codec Codec, plaintext []byte) error {
	body := plaintext
	if codec != nil {
		ciphertext, err := codec.Encrypt(seq, contentType, version, plaintext)
		if err != nil {
			return err
		}
		body = ciphertext
	}

	var hdr [headerLen]byte
	hdr[0] = byte(contentType)
	hdr[1] = version.Major
	hdr[2] = version.Minor
	binary.BigEndian.PutUint16(hdr[3:5], uint16(len(body)))

	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := w.w.Write(body); err != nil {
			return err
		}
	}
	return nil
}
