package relay

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

type stubPeer struct{ addr string }

func (p *stubPeer) Read(context.Context) ([]byte, error) { return nil, nil }
func (p *stubPeer) Write(context.Context, []byte) error  { return nil }
func (p *stubPeer) Close() error                         { return nil }
func (p *stubPeer) RemoteAddr() string                   { return p.addr }

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := NewClient(&stubPeer{addr: "a"})

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sender := NewClient(&stubPeer{addr: "a"})
	other := NewClient(&stubPeer{addr: "b"})
	hub.Register(sender)
	hub.Register(other)

	hub.Broadcast([]byte("hi\n"), sender)

	if len(sender.Outgoing) != 0 {
		t.Error("sender received its own chunk")
	}
	select {
	case got := <-other.Outgoing:
		if string(got) != "hi\n" {
			t.Errorf("got %q, want %q", got, "hi\n")
		}
	default:
		t.Error("other client received nothing")
	}
}

func TestHub_BroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := NewClient(&stubPeer{addr: "slow"})
	hub.Register(slow)

	for i := 0; i < outgoingQueue+5; i++ {
		hub.Broadcast([]byte("x"), nil)
	}

	if len(slow.Outgoing) != outgoingQueue {
		t.Errorf("queued %d, want %d", len(slow.Outgoing), outgoingQueue)
	}
}
