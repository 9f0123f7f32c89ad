// Package relay implements a small line relay used for local development
// and integration tests. Raw TCP and WebSocket clients share one port; every
// chunk a client sends is forwarded to every other client.
package relay

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/rs/zerolog"
)

const (
	// DefaultPeekTimeout is how long a new connection has to send its first
	// bytes before it is treated as a raw TCP client.
	DefaultPeekTimeout = 500 * time.Millisecond

	// DefaultWriteTimeout bounds one forwarded write.
	DefaultWriteTimeout = 5 * time.Second
)

var httpGet = []byte("GET ")

// Server is a single-port relay.
type Server struct {
	address      string
	listener     net.Listener
	hub          *Hub
	logger       zerolog.Logger
	PeekTimeout  time.Duration
	WriteTimeout time.Duration

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Server for address.
func New(address string, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "relay").Logger()
	return &Server{
		address:      address,
		hub:          NewHub(logger),
		logger:       logger,
		PeekTimeout:  DefaultPeekTimeout,
		WriteTimeout: DefaultWriteTimeout,
		conns:        make(map[net.Conn]struct{}),
		quit:         make(chan struct{}),
	}
}

// Start listens and accepts connections in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	s.listener = listener
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("relay started (TCP and WebSocket)")

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Stop closes the listener and every client, then waits for all handlers.
// It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		close(s.quit)
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()

		if s.listener != nil {
			s.listener.Close()
		}
	})
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("accept failed")
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// handleConnection peeks at the first bytes to tell a WebSocket handshake
// from a raw TCP client. A client that stays silent past PeekTimeout is
// raw TCP.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	logger := s.logger.With().Str("peer", conn.RemoteAddr().String()).Logger()

	reader := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(s.PeekTimeout))
	prefix, err := reader.Peek(len(httpGet))
	_ = conn.SetReadDeadline(time.Time{})

	var peer Peer
	switch {
	case err == nil && bytes.Equal(prefix, httpGet):
		bc := &bufferedConn{Conn: conn, reader: reader}
		if _, err := ws.Upgrade(bc); err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			conn.Close()
			return
		}
		peer = &wsPeer{conn: bc}
		logger.Info().Msg("websocket client joined")
	case err == nil:
		peer = newTCPPeer(conn, reader)
		logger.Info().Msg("tcp client joined")
	case isTimeout(err):
		// Peek keeps a stale timeout in the reader; replay what arrived.
		pending := append([]byte(nil), prefix...)
		peer = newTCPPeer(conn, io.MultiReader(bytes.NewReader(pending), conn))
		logger.Info().Msg("tcp client joined")
	default:
		logger.Debug().Err(err).Msg("connection closed before first bytes")
		conn.Close()
		return
	}

	s.serveClient(NewClient(peer), logger)
}

func (s *Server) serveClient(c *Client, logger zerolog.Logger) {
	s.hub.Register(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for data := range c.Outgoing {
			ctx, cancel := context.WithTimeout(context.Background(), s.WriteTimeout)
			err := c.Peer.Write(ctx, data)
			cancel()
			if err != nil {
				logger.Warn().Err(err).Msg("failed to forward chunk")
				c.Peer.Close()
				return
			}
		}
	}()

	defer func() {
		s.hub.Unregister(c)
		close(c.Outgoing)
		<-writerDone
		c.Peer.Close()
	}()

	for {
		data, err := c.Peer.Read(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logger.Info().Msg("client left")
			} else {
				logger.Warn().Err(err).Msg("read failed")
			}
			return
		}
		logger.Debug().Int("bytes", len(data)).Msg("forwarding chunk")
		s.hub.Broadcast(data, c)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
