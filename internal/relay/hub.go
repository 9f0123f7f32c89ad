package relay

import (
	"sync"

	"github.com/rs/zerolog"
)

// outgoingQueue is the number of chunks buffered per client before drops.
const outgoingQueue = 32

// Client is one registered peer and its outgoing queue.
type Client struct {
	Peer     Peer
	Outgoing chan []byte
}

// NewClient wraps p with an outgoing queue.
func NewClient(p Peer) *Client {
	return &Client{Peer: p, Outgoing: make(chan []byte, outgoingQueue)}
}

// Hub tracks connected clients and fans chunks out between them. TCP and
// WebSocket peers share one Hub.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// ClientCount returns number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues data for every client except sender. A client whose
// queue is full misses the chunk.
func (h *Hub) Broadcast(data []byte, sender *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c == sender {
			continue
		}
		select {
		case c.Outgoing <- data:
		default:
			h.logger.Warn().Str("peer", c.Peer.RemoteAddr()).Msg("client queue full, dropping chunk")
		}
	}
}
