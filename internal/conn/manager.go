// Package conn manages the single connection to the chat server: connecting,
// sending lines with one inline reconnect on failure, and polling for
// received data without blocking.
package conn

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/omochice/aurorachat/internal/transport"
	"github.com/omochice/aurorachat/pkg/protocol"
)

// Status lines written to the StatusSink.
const (
	StatusConnected        = "Connected to chat server"
	StatusConnectFailed    = "Failed to connect to server"
	StatusSocketFailed     = "Failed to create socket"
	StatusReconnecting     = "Send failed, trying to reconnect..."
	StatusReconnected      = "Reconnected successfully!"
	StatusReconnectFailed  = "Failed to reconnect, try again."
	StatusResendFailed     = "Send failed after reconnect, try again."
	StatusPeerClosed       = "Connection closed by server"
	StatusConnectionFailed = "Connection lost"
)

var statusLines = map[string]bool{
	StatusConnected:        true,
	StatusConnectFailed:    true,
	StatusSocketFailed:     true,
	StatusReconnecting:     true,
	StatusReconnected:      true,
	StatusReconnectFailed:  true,
	StatusResendFailed:     true,
	StatusPeerClosed:       true,
	StatusConnectionFailed: true,
}

// IsStatusLine reports whether line is one of the status lines a Manager
// writes, as opposed to chat text.
func IsStatusLine(line string) bool {
	return statusLines[line]
}

var errResendDisabled = errors.New("line not resubmitted after reconnect")

// StatusSink receives human-readable status lines. The chat log is the
// usual sink.
type StatusSink interface {
	Add(line string)
}

// Options tunes a Manager.
type Options struct {
	// RecvBufferSize is the maximum number of bytes returned per poll.
	RecvBufferSize int

	// WriteTimeout bounds a single write. Zero means no timeout.
	WriteTimeout time.Duration

	// ResendAfterReconnect makes SendLine write the line on the new
	// connection after a successful inline reconnect.
	ResendAfterReconnect bool
}

// DefaultOptions returns the options used by the client binary.
func DefaultOptions() Options {
	return Options{
		RecvBufferSize:       protocol.RecvBufferSize,
		WriteTimeout:         5 * time.Second,
		ResendAfterReconnect: true,
	}
}

// Manager owns at most one transport connection and moves between the
// Connected and Disconnected states. It is driven by a single loop and is
// not safe for concurrent use.
type Manager struct {
	dialer  transport.Dialer
	status  StatusSink
	logger  zerolog.Logger
	opts    Options
	conn    transport.Conn
	state   State
	recvBuf []byte
	stats   Stats
}

// New creates a disconnected Manager.
func New(dialer transport.Dialer, status StatusSink, logger zerolog.Logger, opts Options) *Manager {
	if opts.RecvBufferSize <= 0 {
		opts.RecvBufferSize = protocol.RecvBufferSize
	}
	return &Manager{
		dialer:  dialer,
		status:  status,
		logger:  logger.With().Str("component", "conn").Str("server", dialer.Address()).Logger(),
		opts:    opts,
		recvBuf: make([]byte, opts.RecvBufferSize),
	}
}

// State returns the current connection state.
func (m *Manager) State() State { return m.state }

// Stats returns the traffic counters.
func (m *Manager) Stats() Stats { return m.stats }

// Address returns the server address.
func (m *Manager) Address() string { return m.dialer.Address() }

// Connect establishes the initial connection.
func (m *Manager) Connect(ctx context.Context) error {
	if err := m.dial(ctx); err != nil {
		if errors.Is(err, ErrSocketCreateFailed) {
			m.status.Add(StatusSocketFailed)
		} else {
			m.status.Add(StatusConnectFailed)
		}
		m.logger.Warn().Err(err).Msg("connect failed")
		return err
	}
	m.status.Add(StatusConnected)
	m.logger.Info().Msg("connected")
	return nil
}

// Reconnect tears down the current connection, if any, and dials again once.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.stats.Reconnects++
	if err := m.dial(ctx); err != nil {
		if errors.Is(err, ErrSocketCreateFailed) {
			m.status.Add(StatusSocketFailed)
		} else {
			m.status.Add(StatusReconnectFailed)
		}
		m.logger.Warn().Err(err).Int("attempt", m.stats.Reconnects).Msg("reconnect failed")
		return err
	}
	m.status.Add(StatusReconnected)
	m.logger.Info().Int("attempt", m.stats.Reconnects).Msg("reconnected")
	return nil
}

func (m *Manager) dial(ctx context.Context) error {
	m.teardown()

	c, err := m.dialer.Dial(ctx)
	if err != nil {
		kind := KindConnectFailed
		if errors.Is(err, transport.ErrSocketCreate) {
			kind = KindSocketCreateFailed
		}
		return &Error{Kind: kind, Err: err}
	}
	m.conn = c
	m.state = StateConnected
	return nil
}

// SendLine writes text followed by the line terminator. Empty text is a
// no-op. If the connection is down, or the write fails, exactly one
// reconnect is attempted; when it succeeds the line is written once more
// if ResendAfterReconnect is set.
func (m *Manager) SendLine(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	data, err := protocol.EncodeLine(text)
	if err != nil {
		return err
	}

	if m.state == StateConnected {
		err := m.write(ctx, data)
		if err == nil {
			return nil
		}
		m.logger.Warn().Err(err).Msg("send failed")
		m.teardown()
	}

	m.status.Add(StatusReconnecting)
	if err := m.Reconnect(ctx); err != nil {
		return &Error{Kind: KindNotConnected, Err: err}
	}
	if !m.opts.ResendAfterReconnect {
		return &Error{Kind: KindSendFailed, Err: errResendDisabled}
	}
	if err := m.write(ctx, data); err != nil {
		m.logger.Warn().Err(err).Msg("resend after reconnect failed")
		m.teardown()
		m.status.Add(StatusResendFailed)
		return &Error{Kind: KindSendFailed, Err: err}
	}
	return nil
}

func (m *Manager) write(ctx context.Context, data []byte) error {
	if m.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.WriteTimeout)
		defer cancel()
	}
	if err := m.conn.Write(ctx, data); err != nil {
		return err
	}
	m.stats.BytesSent += uint64(len(data))
	return nil
}

// PollReceive returns pending bytes without blocking. It returns false when
// nothing is pending or the connection is down. A closed or failed
// connection moves the Manager to Disconnected. The returned slice is a copy.
func (m *Manager) PollReceive() ([]byte, bool) {
	if m.state != StateConnected {
		return nil, false
	}

	n, err := m.conn.TryRead(m.recvBuf)
	switch {
	case err == nil && n > 0:
		m.stats.BytesReceived += uint64(n)
		return append([]byte(nil), m.recvBuf[:n]...), true
	case err == nil, errors.Is(err, transport.ErrWouldBlock):
		return nil, false
	case errors.Is(err, io.EOF):
		m.logger.Info().Err(&Error{Kind: KindPeerClosed, Err: err}).Msg("connection closed")
		m.teardown()
		m.status.Add(StatusPeerClosed)
		return nil, false
	default:
		m.logger.Warn().Err(err).Msg("receive failed")
		m.teardown()
		m.status.Add(StatusConnectionFailed)
		return nil, false
	}
}

// Close shuts the connection down and leaves the Manager disconnected.
func (m *Manager) Close() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.state = StateDisconnected
	return err
}

func (m *Manager) teardown() {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Debug().Err(err).Msg("close failed")
		}
		m.conn = nil
	}
	m.state = StateDisconnected
}
