// Package tls implements the Connect drivers and stream wrappers of the
// TLS protocol engine (spec §4.7, §4.8, §4.9): ClientHello/ServerHello
// negotiation, RSA key exchange, Finished verification, and the
// net.Conn-shaped read/write path over an established session.
package tls

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/lanikai/tlscore/internal/tls/alert"
	"github.com/lanikai/tlscore/internal/tls/record"
	"github.com/lanikai/tlscore/internal/tls/state"
	"github.com/lanikai/tlscore/internal/tls/tlslog"
)

// Conn wraps a transport connection with a negotiated TLS session (spec
// §4.9 "Stream Wrappers"). It implements net.Conn; like net.Conn, its
// methods may be called concurrently from multiple goroutines, so the
// read half and write half each carry their own mutex.
type Conn struct {
	transport net.Conn
	state     *state.State

	rd *record.Reader
	wr *record.Writer

	log *tlslog.Logger

	readMu  sync.Mutex
	readBuf bytes.Buffer

	writeMu sync.Mutex

	closeMu sync.Mutex
	closed  bool
}

func (c *Conn) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

func (c *Conn) markClosed() {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()
}

// State returns the negotiated session state backing conn, for callers
// that want the observability plist or certificate details (spec §3
// State.Summary).
func (c *Conn) State() *state.State {
	return c.state
}

// Read implements io.Reader (spec §4.9 "Input stream"). It serves
// buffered ApplicationData first; once the buffer is drained it pulls and
// interprets the next record.
func (c *Conn) Read(b []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for c.readBuf.Len() == 0 {
		if c.isClosed() {
			return 0, errConnectionClosed
		}
		if err := c.pumpOneRecord(); err != nil {
			return 0, err
		}
	}
	return c.readBuf.Read(b)
}

// pumpOneRecord reads and interprets exactly one logical record, per the
// dispatch table in spec §4.9.
func (c *Conn) pumpOneRecord() error {
	seq := c.state.NextReadSeq()
	msg, err := record.ReadMessage(c.rd, seq, c.state.ReadCodec())
	if err != nil {
		return c.abortRead(err)
	}

	switch msg.ContentType {
	case record.ContentTypeApplicationData:
		data, err := msg.ApplicationData()
		if err != nil {
			return c.abortRead(err)
		}
		c.readBuf.Write(data)
		return nil

	case record.ContentTypeAlert:
		al, err := msg.Alert()
		if err != nil {
			return c.abortRead(err)
		}
		if al.Description == alert.CloseNotify {
			c.markClosed()
			c.transport.Close()
			return io.EOF
		}
		return al

	case record.ContentTypeHandshake:
		// A session is already established by the time Conn exists; any
		// further Handshake message is a renegotiation attempt, which
		// this core rejects outright (spec §4.9, §9 Non-goals).
		c.sendAlert(alert.NoRenegotiation, true)
		return errRenegotiation

	case record.ContentTypeChangeCipherSpec:
		// Mid-session, a ChangeCipherSpec is unexpected: both epoch
		// changes happen during the handshake, before Conn is returned.
		c.sendAlert(alert.Unexpected, true)
		return alert.New(alert.Unexpected)

	default:
		return c.abortRead(alert.New(alert.Unexpected))
	}
}

// abortRead sends err to the peer as a fatal Alert, best-effort, when err
// is one this core raised locally (a decode failure, a bad MAC, an
// unrecognized content type) -- spec §7's "first attempts to send a
// corresponding Alert to the peer" applies post-handshake exactly as it
// does during the handshake. Errors that are not already an *alert.Error
// are returned unchanged.
func (c *Conn) abortRead(err error) error {
	ae, ok := err.(*alert.Error)
	if !ok || ae.Sent {
		return err
	}
	c.sendAlert(ae.Description, ae.Level == alert.LevelFatal)
	ae.Sent = true
	return err
}

// Write implements io.Writer: it frames b as one or more ApplicationData
// records (spec §4.9).
func (c *Conn) Write(b []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.isClosed() {
		return 0, errConnectionClosed
	}
	start := c.state.PeekWriteSeq()
	next, err := c.wr.WriteRecord(start, record.ContentTypeApplicationData, c.state.NegotiatedVersion, c.state.WriteCodec(), b)
	if err != nil {
		return 0, err
	}
	c.state.AdvanceWriteSeq(next)
	return len(b), nil
}

// sendAlert writes a 2-byte Alert record, best-effort: failures to notify
// the peer of a teardown never mask the original error.
func (c *Conn) sendAlert(desc alert.Description, fatal bool) {
	lvl := alert.LevelWarning
	if fatal {
		lvl = alert.LevelFatal
	}
	body := (&alert.Error{Level: lvl, Description: desc}).Marshal()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	seq := c.state.PeekWriteSeq()
	next, err := c.wr.WriteRecord(seq, record.ContentTypeAlert, c.state.NegotiatedVersion, c.state.WriteCodec(), body[:])
	if err == nil {
		c.state.AdvanceWriteSeq(next)
	}
}

// Close sends a close_notify Alert and closes the underlying transport
// (spec §4.9: close-notify marks end-of-stream).
func (c *Conn) Close() error {
	if c.isClosed() {
		return nil
	}
	// Bound the close_notify write so Close cannot block forever on a peer
	// that is not reading (e.g. an unbuffered net.Pipe).
	c.transport.SetWriteDeadline(time.Now().Add(5 * time.Second))
	c.sendAlert(alert.CloseNotify, false)
	c.markClosed()
	return c.transport.Close()
}

func (c *Conn) LocalAddr() net.Addr                { return c.transport.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr               { return c.transport.RemoteAddr() }
func (c *Conn) SetDeadline(t time.Time) error      { return c.transport.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error   { return c.transport.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error  { return c.transport.SetWriteDeadline(t) }
