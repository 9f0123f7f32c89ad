package conn

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Stats counts traffic over the lifetime of a Manager.
type Stats struct {
	BytesSent     uint64
	BytesReceived uint64
	Reconnects    int
}
