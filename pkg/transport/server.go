package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/metrics"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// DefaultPort is the default TCP port for subscription envelopes.
const DefaultPort = 7460

// Server errors.
var (
	ErrNoHandler      = errors.New("handler is required")
	ErrAlreadyRunning = errors.New("server already running")
)

// Handler processes one decoded inbound envelope.
type Handler interface {
	Handle(ctx context.Context, env *wire.Envelope) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env *wire.Envelope) error

// Handle calls f(ctx, env).
func (f HandlerFunc) Handle(ctx context.Context, env *wire.Envelope) error {
	return f(ctx, env)
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address to listen on (e.g., ":7460" or "127.0.0.1:0").
	Address string

	// TLSConfig enables TLS on the listener when set.
	TLSConfig *tls.Config

	// MaxMessageSize is the maximum frame payload (default: 1 MB).
	MaxMessageSize uint32

	// Handler receives every decoded envelope. Required.
	Handler Handler

	// Logger is the operational logger. If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger records frames, envelopes and errors (optional).
	ProtocolLogger log.Logger

	// Metrics is optional.
	Metrics *metrics.Collector
}

// Server accepts peer bus connections and dispatches their envelopes.
type Server struct {
	config   ServerConfig
	logger   *slog.Logger
	listener net.Listener

	conns   map[*serverConn]struct{}
	connsMu sync.Mutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new Server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		config: config,
		logger: logger,
		conns:  make(map[*serverConn]struct{}),
	}, nil
}

// Start listens on the configured address and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if s.config.TLSConfig != nil {
		listener = tls.NewListener(listener, withALPN(s.config.TLSConfig))
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("transport server started", "address", listener.Addr().String(), "tls", s.config.TLSConfig != nil)
	return nil
}

// Stop closes the listener and all connections and waits for their
// goroutines to exit.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}

	s.cancel()
	s.listener.Close()

	s.connsMu.Lock()
	for c := range s.conns {
		c.conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	s.logger.Info("transport server stopped")
	return nil
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// serverConn is one inbound peer bus connection.
type serverConn struct {
	conn   net.Conn
	reader *FrameReader
	connID string
	remote string
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	c := &serverConn{
		conn:   conn,
		reader: NewFrameReader(conn, s.config.MaxMessageSize),
		connID: uuid.New().String(),
		remote: conn.RemoteAddr().String(),
	}
	if s.config.ProtocolLogger != nil {
		c.reader.SetLogger(s.config.ProtocolLogger, c.connID)
	}

	s.connsMu.Lock()
	if !s.running.Load() {
		s.connsMu.Unlock()
		conn.Close()
		return
	}
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()

	if err := verifyTLS(s.ctx, conn); err != nil {
		s.connsMu.Lock()
		delete(s.conns, c)
		s.connsMu.Unlock()
		conn.Close()
		s.logError(c, log.LayerTransport, err, "handshake")
		s.logger.Debug("rejected peer", "conn_id", c.connID, "remote", c.remote, "error", err)
		return
	}

	s.config.Metrics.ConnectionOpened()
	s.logState(c, "", "CONNECTED", "")
	s.logger.Debug("peer connected", "conn_id", c.connID, "remote", c.remote)

	reason := s.readLoop(c)

	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
	conn.Close()

	s.config.Metrics.ConnectionClosed()
	s.logState(c, "CONNECTED", "DISCONNECTED", reason)
	s.logger.Debug("peer disconnected", "conn_id", c.connID, "remote", c.remote, "reason", reason)
}

// readLoop handles frames until the connection ends and returns the reason.
func (s *Server) readLoop(c *serverConn) string {
	for {
		data, err := c.reader.ReadFrame()
		if err != nil {
			if err == io.EOF || !s.running.Load() {
				return "closed"
			}
			s.logger.Warn("read failed", "conn_id", c.connID, "error", err)
			s.logError(c, log.LayerTransport, err, "read frame")
			return err.Error()
		}

		env, err := wire.DecodeEnvelope(data)
		if err != nil {
			s.config.Metrics.DecodeFailed()
			s.logger.Warn("dropping undecodable frame", "conn_id", c.connID, "error", err)
			s.logError(c, log.LayerWire, err, "decode envelope")
			continue
		}
		s.logEnvelope(c, env)

		if err := s.config.Handler.Handle(s.ctx, env); err != nil {
			s.logger.Warn("envelope handling failed",
				"conn_id", c.connID,
				"kind", env.Kind().String(),
				"error", err,
			)
			s.logError(c, log.LayerConsumer, err, "handle "+env.Kind().String())
		}
	}
}

func (s *Server) logEnvelope(c *serverConn, env *wire.Envelope) {
	if s.config.ProtocolLogger == nil {
		return
	}
	msg := &log.MessageEvent{
		Kind:          env.Kind(),
		SourceAddress: env.SourceAddress.String(),
	}
	if refresh, ok := env.Message.(wire.SubscriptionRefresh); ok {
		msg.Entries = len(refresh.Subscriptions)
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		RemoteAddr:   c.remote,
		Network:      env.Network,
		Message:      msg,
	})
}

func (s *Server) logState(c *serverConn, oldState, newState, reason string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   c.remote,
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Server) logError(c *serverConn, layer log.Layer, err error, op string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Layer:        layer,
		Category:     log.CategoryError,
		RemoteAddr:   c.remote,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: op,
		},
	})
}
