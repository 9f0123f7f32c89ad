// Package tcp provides the raw TCP transport.
package tcp

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/omochice/aurorachat/internal/transport"
)

// DefaultPollWindow bounds how long TryRead waits for pending bytes.
const DefaultPollWindow = time.Millisecond

// Conn adapts net.Conn to transport.Conn.
type Conn struct {
	conn       net.Conn
	pollWindow time.Duration
}

// NewConn wraps a net.Conn. A non-positive pollWindow selects DefaultPollWindow.
func NewConn(conn net.Conn, pollWindow time.Duration) *Conn {
	if pollWindow <= 0 {
		pollWindow = DefaultPollWindow
	}
	return &Conn{conn: conn, pollWindow: pollWindow}
}

// Write implements transport.Conn.
// The context deadline, if any, becomes the write deadline.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := c.conn.Write(data)
	return err
}

// TryRead implements transport.Conn.
// An already expired deadline makes net.Conn fail before reading, so the
// read gets a short window instead.
func (c *Conn) TryRead(buf []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pollWindow)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(buf)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, transport.ErrWouldBlock
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 0, transport.ErrWouldBlock
	}
	return 0, err
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
