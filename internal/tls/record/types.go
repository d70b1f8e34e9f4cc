package record

import "github.com/lanikai/tlscore/internal/tls/wire"

// Re-exported so callers of this package rarely need to import wire
// directly; the record layer is the natural home for these wire types.
type (
	ContentType   = wire.ContentType
	Version       = wire.Version
	HandshakeType = wire.HandshakeType
)

const (
	ContentTypeChangeCipherSpec = wire.ContentTypeChangeCipherSpec
	ContentTypeAlert            = wire.ContentTypeAlert
	ContentTypeHandshake        = wire.ContentTypeHandshake
	ContentTypeApplicationData  = wire.ContentTypeApplicationData
)

var (
	TLS10 = wire.TLS10
	TLS11 = wire.TLS11
	TLS12 = wire.TLS12
)

const (
	MaxPlaintext           = wire.MaxPlaintext
	MaxCiphertextExpansion = wire.MaxCiphertextExpansion
	MaxCiphertext          = wire.MaxCiphertext
)
