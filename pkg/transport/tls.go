package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/peerbus/peerbus-go/pkg/version"
)

// withALPN returns a copy of conf advertising the supported peerbus ALPN
// identifiers when conf does not set its own.
func withALPN(conf *tls.Config) *tls.Config {
	if conf == nil || len(conf.NextProtos) > 0 {
		return conf
	}
	c := conf.Clone()
	c.NextProtos = version.SupportedALPNProtocols()
	return c
}

// verifyTLS completes the handshake on a TLS connection and rejects peers
// that negotiated an incompatible protocol version. Plain connections pass.
func verifyTLS(ctx context.Context, conn net.Conn) error {
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("TLS handshake failed: %w", err)
	}
	return version.CheckALPN(tlsConn.ConnectionState().NegotiatedProtocol)
}
