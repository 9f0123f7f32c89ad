package test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omochice/aurorachat/internal/chatlog"
	"github.com/omochice/aurorachat/internal/conn"
	"github.com/omochice/aurorachat/internal/input"
	"github.com/omochice/aurorachat/internal/relay"
	"github.com/omochice/aurorachat/internal/session"
)

type client struct {
	mgr  *conn.Manager
	log  *chatlog.Log
	sess *session.Session
}

func newClient(t *testing.T, address string) *client {
	t.Helper()
	log := chatlog.New(0, 0)
	mgr := conn.New(conn.NewDialer(address, time.Second, time.Millisecond), log, zerolog.Nop(), conn.DefaultOptions())
	t.Cleanup(func() { mgr.Close() })

	if err := mgr.Connect(context.Background()); err != nil {
		t.Fatalf("Connect(%s) error = %v", address, err)
	}
	sess, err := session.New(mgr, log, session.DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return &client{mgr: mgr, log: log, sess: sess}
}

// waitForLine steps c until its chat log contains line.
func waitForLine(t *testing.T, c *client, line string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.sess.Step(context.Background(), 0)
		if slices.Contains(c.log.Lines(), line) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("chat log %q never contained %q", c.log.Lines(), line)
}

func waitForClients(t *testing.T, srv *relay.Server, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for srv.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", srv.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startRelay(t *testing.T) *relay.Server {
	t.Helper()
	srv := relay.New("127.0.0.1:0", zerolog.Nop())
	srv.PeekTimeout = 20 * time.Millisecond
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// TestIntegration_TypedLineReachesOtherClient types "0" on the grid, sends it
// with PLUS and checks that the other client logs it.
func TestIntegration_TypedLineReachesOtherClient(t *testing.T) {
	srv := startRelay(t)

	alice := newClient(t, srv.Addr())
	bob := newClient(t, srv.Addr())
	waitForClients(t, srv, 2)

	ctx := context.Background()
	alice.sess.Step(ctx, input.ButtonA)
	alice.sess.Step(ctx, input.ButtonPlus)

	if got := alice.sess.View().Input; got != "" {
		t.Errorf("alice input = %q after send, want empty", got)
	}
	waitForLine(t, bob, "0")
}

func TestIntegration_WebSocketClient(t *testing.T) {
	srv := startRelay(t)

	tcpClient := newClient(t, srv.Addr())
	wsClient := newClient(t, "ws://"+srv.Addr()+"/")
	waitForClients(t, srv, 2)

	if err := wsClient.mgr.SendLine(context.Background(), "over websocket"); err != nil {
		t.Fatalf("SendLine() error = %v", err)
	}
	waitForLine(t, tcpClient, "over websocket")

	if err := tcpClient.mgr.SendLine(context.Background(), "over tcp"); err != nil {
		t.Fatalf("SendLine() error = %v", err)
	}
	waitForLine(t, wsClient, "over tcp")
}

func TestIntegration_ServerStopAndReconnect(t *testing.T) {
	srv := startRelay(t)
	addr := srv.Addr()

	c := newClient(t, addr)
	waitForClients(t, srv, 1)

	srv.Stop()
	waitForLine(t, c, conn.StatusPeerClosed)
	if c.mgr.State() != conn.StateDisconnected {
		t.Fatalf("State() = %v, want disconnected", c.mgr.State())
	}

	// Nothing is listening now: one reconnect attempt, which fails.
	err := c.mgr.SendLine(context.Background(), "hello?")
	if err == nil {
		t.Fatal("SendLine() error = nil with the relay stopped")
	}
	lines := c.log.Lines()
	if lines[len(lines)-1] != conn.StatusReconnectFailed {
		t.Errorf("last log line = %q, want %q", lines[len(lines)-1], conn.StatusReconnectFailed)
	}

	// A relay on the same address lets the next send reconnect and resend.
	again := relay.New(addr, zerolog.Nop())
	if err := again.Start(); err != nil {
		t.Skipf("cannot rebind %s: %v", addr, err)
	}
	defer again.Stop()

	if err := c.mgr.SendLine(context.Background(), "hello?"); err != nil {
		t.Fatalf("SendLine() after restart error = %v", err)
	}
	if c.mgr.State() != conn.StateConnected {
		t.Errorf("State() = %v, want connected", c.mgr.State())
	}
	if c.mgr.Stats().Reconnects != 2 {
		t.Errorf("Reconnects = %d, want 2", c.mgr.Stats().Reconnects)
	}
}
