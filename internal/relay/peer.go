package relay

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
)

// readChunkSize bounds one raw TCP read.
const readChunkSize = 4096

// Peer abstracts a relay client connection for both TCP and WebSocket.
type Peer interface {
	// Read returns the next chunk. It returns io.EOF when the peer closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends one chunk.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

func applyDeadline(ctx context.Context, set func(time.Time) error) error {
	if deadline, ok := ctx.Deadline(); ok {
		return set(deadline)
	}
	return set(time.Time{})
}

type tcpPeer struct {
	conn net.Conn
	r    io.Reader
	buf  []byte
}

func newTCPPeer(conn net.Conn, r io.Reader) *tcpPeer {
	return &tcpPeer{conn: conn, r: r, buf: make([]byte, readChunkSize)}
}

func (p *tcpPeer) Read(ctx context.Context) ([]byte, error) {
	if err := applyDeadline(ctx, p.conn.SetReadDeadline); err != nil {
		return nil, err
	}
	n, err := p.r.Read(p.buf)
	if n > 0 {
		return append([]byte(nil), p.buf[:n]...), nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return nil, err
}

func (p *tcpPeer) Write(ctx context.Context, data []byte) error {
	if err := applyDeadline(ctx, p.conn.SetWriteDeadline); err != nil {
		return err
	}
	_, err := p.conn.Write(data)
	return err
}

func (p *tcpPeer) Close() error       { return p.conn.Close() }
func (p *tcpPeer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

// bufferedConn reads through the reader that holds the peeked bytes and
// serializes writes, since control frame replies are written from the read
// path while the writer goroutine sends data frames.
type bufferedConn struct {
	net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *bufferedConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.Write(p)
}

type wsPeer struct {
	conn *bufferedConn
}

func (p *wsPeer) Read(ctx context.Context) ([]byte, error) {
	if err := applyDeadline(ctx, p.conn.SetReadDeadline); err != nil {
		return nil, err
	}
	data, _, err := wsutil.ReadClientData(p.conn)
	if err != nil {
		var closed wsutil.ClosedError
		if errors.As(err, &closed) {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (p *wsPeer) Write(ctx context.Context, data []byte) error {
	if err := applyDeadline(ctx, p.conn.SetWriteDeadline); err != nil {
		return err
	}
	return wsutil.WriteServerText(p.conn, data)
}

func (p *wsPeer) Close() error {
	_ = wsutil.WriteServerMessage(p.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
	return p.conn.Close()
}

func (p *wsPeer) RemoteAddr() string { return p.conn.RemoteAddr().String() }
