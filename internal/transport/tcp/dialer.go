package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/omochice/aurorachat/internal/transport"
)

// Dialer connects to a TCP chat server.
type Dialer struct {
	address    string
	timeout    time.Duration
	pollWindow time.Duration
}

// NewDialer creates a Dialer for address ("host:port").
func NewDialer(address string, timeout, pollWindow time.Duration) *Dialer {
	return &Dialer{
		address:    address,
		timeout:    timeout,
		pollWindow: pollWindow,
	}
}

// Address implements transport.Dialer.
func (d *Dialer) Address() string { return d.address }

// Dial implements transport.Dialer.
func (d *Dialer) Dial(ctx context.Context) (transport.Conn, error) {
	raddr, err := net.ResolveTCPAddr("tcp", d.address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w: %w", d.address, transport.ErrSocketCreate, err)
	}

	nd := net.Dialer{Timeout: d.timeout}
	conn, err := nd.DialContext(ctx, "tcp", raddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return NewConn(conn, d.pollWindow), nil
}
