package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/version"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// Client sends envelopes to a Server.
type Client struct {
	conn      net.Conn
	writer    *FrameWriter
	closeOnce sync.Once
}

// Dial connects to address. A non-nil tlsConf enables TLS.
func Dial(ctx context.Context, address string, tlsConf *tls.Config) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", address, err)
	}

	if tlsConf != nil {
		tlsConn := tls.Client(conn, withALPN(tlsConf))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		if err := version.CheckALPN(tlsConn.ConnectionState().NegotiatedProtocol); err != nil {
			conn.Close()
			return nil, err
		}
		conn = tlsConn
	}

	return NewClient(conn, 0), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, maxSize uint32) *Client {
	return &Client{
		conn:   conn,
		writer: NewFrameWriter(conn, maxSize),
	}
}

// SetLogger configures protocol logging for outgoing frames.
func (c *Client) SetLogger(logger log.Logger, connID string) {
	c.writer.SetLogger(logger, connID)
}

// Send encodes env and writes it as a single frame. Safe for concurrent use.
func (c *Client) Send(env *wire.Envelope) error {
	data, err := wire.EncodeEnvelope(env)
	if err != nil {
		return err
	}
	return c.writer.WriteFrame(data)
}

// LocalAddr returns the local network address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close closes the connection. Repeated calls return nil.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
