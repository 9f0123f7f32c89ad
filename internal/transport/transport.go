// Package transport defines the client side of a chat connection. The
// connection manager depends only on these interfaces; the tcp and ws
// subpackages provide the implementations.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrWouldBlock is returned by TryRead when no data is pending.
	ErrWouldBlock = errors.New("transport: no data available")

	// ErrSocketCreate marks dial failures that happen before any connect
	// attempt, such as an unresolvable address or a malformed URL.
	ErrSocketCreate = errors.New("transport: socket setup failed")
)

// Conn is an established connection carrying raw line bytes.
type Conn interface {
	// Write sends data in full.
	Write(ctx context.Context, data []byte) error

	// TryRead copies pending bytes into buf without waiting for more.
	// It returns ErrWouldBlock when nothing is pending and io.EOF when the
	// peer closed the connection.
	TryRead(buf []byte) (int, error)

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

// Dialer opens new connections to a fixed server.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)

	// Address returns the server the Dialer connects to.
	Address() string
}
