// Package alert defines the TLS Alert protocol message and the error type
// used to carry an alert condition up through the handshake and record
// layers to the Connect driver (during the handshake) and the Conn read
// path (after it), the places that decide whether to send it on the wire
// (see RFC 5246 §7.2).
package alert

import (
	"fmt"

	"github.com/pkg/errors"
)

// Level is the Alert level field (RFC 5246 §7.2).
type Level uint8

const (
	LevelWarning Level = 1
	LevelFatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// Description is the Alert description field (RFC 5246 §7.2).
type Description uint8

const (
	CloseNotify             Description = 0
	Unexpected              Description = 10
	BadRecordMAC            Description = 20
	DecryptionFailed        Description = 21
	RecordOverflow          Description = 22
	DecompressionFailure    Description = 30
	HandshakeFailure        Description = 40
	BadCertificate          Description = 42
	UnsupportedCertificate  Description = 43
	CertificateRevoked      Description = 44
	CertificateExpired      Description = 45
	CertificateUnknown      Description = 46
	IllegalParameter        Description = 47
	UnknownCA               Description = 48
	AccessDenied            Description = 49
	DecodeError             Description = 50
	DecryptError            Description = 51
	ExportRestriction       Description = 60
	ProtocolVersion         Description = 70
	InsufficientSecurity    Description = 71
	InternalError           Description = 80
	UserCanceled            Description = 90
	NoRenegotiation         Description = 100
)

var descriptionNames = map[Description]string{
	CloseNotify:            "close_notify",
	Unexpected:             "unexpected_message",
	BadRecordMAC:           "bad_record_mac",
	DecryptionFailed:       "decryption_failed",
	RecordOverflow:         "record_overflow",
	DecompressionFailure:   "decompression_failure",
	HandshakeFailure:       "handshake_failure",
	BadCertificate:         "bad_certificate",
	UnsupportedCertificate: "unsupported_certificate",
	CertificateRevoked:     "certificate_revoked",
	CertificateExpired:     "certificate_expired",
	CertificateUnknown:     "certificate_unknown",
	IllegalParameter:       "illegal_parameter",
	UnknownCA:              "unknown_ca",
	AccessDenied:           "access_denied",
	DecodeError:            "decode_error",
	DecryptError:           "decrypt_error",
	ExportRestriction:      "export_restriction",
	ProtocolVersion:        "protocol_version",
	InsufficientSecurity:   "insufficient_security",
	InternalError:          "internal_error",
	UserCanceled:           "user_canceled",
	NoRenegotiation:        "no_renegotiation",
}

func (d Description) String() string {
	if name, ok := descriptionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("description(%d)", uint8(d))
}

// Error is a TLS Alert carried as a Go error. The record and handshake
// layers return an *Error for every protocol-decode, cryptographic,
// policy, or state fault (see spec §7 taxonomy); the Connect driver and the
// Conn read path are what send it on the wire, setting Sent once they have.
type Error struct {
	Level       Level
	Description Description

	// Sent records whether this alert has already been transmitted to the
	// peer, so the driver does not double-send on unwind.
	Sent bool

	// cause is the underlying fault (e.g. the real reason a MAC failed),
	// kept only for local logging -- it must never be reflected on the
	// wire, to avoid leaking oracle signals (spec §7).
	cause error
}

// New builds a fatal alert with no further wrapped cause.
func New(desc Description) *Error {
	return &Error{Level: LevelFatal, Description: desc}
}

// Warning builds a warning-level alert (only close_notify is used by this
// core as a warning in practice).
func Warning(desc Description) *Error {
	return &Error{Level: LevelWarning, Description: desc}
}

// Wrap builds a fatal alert that remembers cause for local diagnostics.
func Wrap(cause error, desc Description) *Error {
	return &Error{Level: LevelFatal, Description: desc, cause: errors.Wrap(cause, desc.String())}
}

func (e *Error) Error() string {
	return fmt.Sprintf("tls: %s alert: %s", e.Level, e.Description)
}

// Cause returns the underlying fault, if any, for logging. It is never
// part of Error() and must never be sent on the wire.
func (e *Error) Cause() error {
	if e.cause == nil {
		return nil
	}
	return errors.Cause(e.cause)
}

// Fatal reports whether this alert terminates the connection.
func (e *Error) Fatal() bool {
	return e.Level == LevelFatal
}

// Marshal encodes the 2-byte wire form of the alert.
func (e *Error) Marshal() [2]byte {
	return [2]byte{byte(e.Level), byte(e.Description)}
}

// Unmarshal decodes a 2-byte alert body as received from the peer.
func Unmarshal(b []byte) (*Error, error) {
	if len(b) != 2 {
		return nil, fmt.Errorf("alert: malformed body, want 2 bytes got %d", len(b))
	}
	return &Error{Level: Level(b[0]), Description: Description(b[1]), Sent: true}, nil
}
