package conn

import "fmt"

// Kind classifies connection failures.
type Kind int

const (
	KindSocketCreateFailed Kind = iota + 1
	KindConnectFailed
	KindSendFailed
	KindPeerClosed
	KindNotConnected
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindSocketCreateFailed:
		return "socket_create_failed"
	case KindConnectFailed:
		return "connect_failed"
	case KindSendFailed:
		return "send_failed"
	case KindPeerClosed:
		return "peer_closed"
	case KindNotConnected:
		return "not_connected"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Error is a connection failure with its kind and cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinel
// values below match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrSocketCreateFailed = &Error{Kind: KindSocketCreateFailed}
	ErrConnectFailed      = &Error{Kind: KindConnectFailed}
	ErrSendFailed         = &Error{Kind: KindSendFailed}
	ErrPeerClosed         = &Error{Kind: KindPeerClosed}
	ErrNotConnected       = &Error{Kind: KindNotConnected}
)
