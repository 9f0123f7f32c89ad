package ws

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gobwas/ws"

	"github.com/omochice/aurorachat/internal/transport"
)

// Dialer connects to a WebSocket chat gateway.
type Dialer struct {
	url     string
	timeout time.Duration
}

// NewDialer creates a Dialer for a ws:// or wss:// URL.
func NewDialer(rawURL string, timeout time.Duration) *Dialer {
	return &Dialer{url: rawURL, timeout: timeout}
}

// Address implements transport.Dialer.
func (d *Dialer) Address() string { return d.url }

// Dial implements transport.Dialer.
func (d *Dialer) Dial(ctx context.Context) (transport.Conn, error) {
	u, err := url.Parse(d.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w: %w", d.url, transport.ErrSocketCreate, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q: %w", u.Scheme, transport.ErrSocketCreate)
	}

	dialer := ws.Dialer{Timeout: d.timeout}
	conn, br, _, err := dialer.Dial(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return NewConn(conn, br), nil
}
