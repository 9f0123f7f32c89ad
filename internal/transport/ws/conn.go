// Package ws provides a WebSocket transport for chat servers reachable
// only through a WebSocket gateway. Each line travels as one text frame.
package ws

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/aurorachat/internal/transport"
)

// Conn adapts a client-side gobwas/ws connection to transport.Conn.
// Frames are read by a background goroutine so that TryRead never waits.
type Conn struct {
	conn     net.Conn
	rw       io.ReadWriter
	writeMu  sync.Mutex
	incoming chan []byte
	done     chan struct{}
	doneOnce sync.Once
	readErr  error
	pending  []byte
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (lw lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// NewConn wraps an upgraded connection. br holds bytes the handshake already
// buffered and may be nil.
func NewConn(conn net.Conn, br *bufio.Reader) *Conn {
	c := &Conn{
		conn:     conn,
		incoming: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	c.rw = struct {
		io.Reader
		io.Writer
	}{r, lockedWriter{mu: &c.writeMu, w: conn}}

	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	defer close(c.incoming)
	for {
		data, _, err := wsutil.ReadServerData(c.rw)
		if err != nil {
			c.readErr = err
			return
		}
		select {
		case c.incoming <- data:
		case <-c.done:
			return
		}
	}
}

// Write implements transport.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return wsutil.WriteClientText(c.conn, data)
}

// TryRead implements transport.Conn.
// A frame larger than buf is handed out over several calls.
func (c *Conn) TryRead(buf []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(buf, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}

	select {
	case data, ok := <-c.incoming:
		if !ok {
			return 0, c.closeReason()
		}
		n := copy(buf, data)
		c.pending = data[n:]
		return n, nil
	default:
		return 0, transport.ErrWouldBlock
	}
}

func (c *Conn) closeReason() error {
	var closed wsutil.ClosedError
	if c.readErr == nil || errors.Is(c.readErr, io.EOF) || errors.As(c.readErr, &closed) {
		return io.EOF
	}
	return c.readErr
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	c.doneOnce.Do(func() {
		close(c.done)
	})

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = ws.WriteFrame(c.conn, ws.MaskFrame(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))))
	c.writeMu.Unlock()

	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
