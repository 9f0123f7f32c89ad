package conn

import (
	"strings"
	"time"

	"github.com/omochice/aurorachat/internal/transport"
	"github.com/omochice/aurorachat/internal/transport/tcp"
	"github.com/omochice/aurorachat/internal/transport/ws"
)

// NewDialer picks the transport for address: ws:// and wss:// URLs use the
// WebSocket transport, anything else is a raw TCP "host:port".
func NewDialer(address string, dialTimeout, pollWindow time.Duration) transport.Dialer {
	if strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://") {
		return ws.NewDialer(address, dialTimeout)
	}
	return tcp.NewDialer(address, dialTimeout, pollWindow)
}
