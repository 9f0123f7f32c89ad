package tcp_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/omochice/aurorachat/internal/transport"
	"github.com/omochice/aurorachat/internal/transport/tcp"
	"github.com/omochice/aurorachat/pkg/protocol"
)

func TestConn_ImplementsInterface(t *testing.T) {
	var _ transport.Conn = (*tcp.Conn)(nil)
}

func TestConn_TryRead(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client, 50*time.Millisecond)

	go func() {
		server.Write([]byte("alice: hi\nbob: hey\n"))
	}()

	buf := make([]byte, protocol.RecvBufferSize)
	n, err := conn.TryRead(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := protocol.DecodeChunk(buf[:n]); len(got) != 2 || got[0] != "alice: hi" || got[1] != "bob: hey" {
		t.Errorf("TryRead() decoded to %q, want [alice: hi bob: hey]", got)
	}
}

func TestConn_TryRead_WouldBlock(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client, time.Millisecond)

	start := time.Now()
	_, err := conn.TryRead(make([]byte, 16))
	if !errors.Is(err, transport.ErrWouldBlock) {
		t.Fatalf("TryRead() error = %v, want ErrWouldBlock", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("TryRead() blocked for %v", elapsed)
	}
}

func TestConn_TryRead_PeerClosed(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	conn := tcp.NewConn(client, 50*time.Millisecond)
	server.Close()

	_, err := conn.TryRead(make([]byte, 16))
	if !errors.Is(err, io.EOF) {
		t.Errorf("TryRead() error = %v, want io.EOF", err)
	}
}

func TestConn_TryRead_TruncatesToBuffer(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client, 50*time.Millisecond)

	go func() {
		server.Write([]byte("abcdefgh"))
	}()

	buf := make([]byte, 4)
	n, err := conn.TryRead(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:n]) != "abcd" {
		t.Errorf("first TryRead() = %q, want %q", buf[:n], "abcd")
	}
	n, err = conn.TryRead(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:n]) != "efgh" {
		t.Errorf("second TryRead() = %q, want %q", buf[:n], "efgh")
	}
}

// loopback returns both ends of a real TCP connection.
func loopback(t *testing.T) (server, client net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()
	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server = <-accepted
	if server == nil {
		client.Close()
		t.Fatal("accept failed")
	}
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

func TestConn_WriteChatLines(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "alice: hi"},
		{name: "utf8", text: "bob: héllo ñ"},
		{name: "largest line", text: strings.Repeat("z", protocol.MaxLineSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := loopback(t)
			conn := tcp.NewConn(client, 0)

			data, err := protocol.EncodeLine(tt.text)
			if err != nil {
				t.Fatalf("EncodeLine() error = %v", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := conn.Write(ctx, data); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			_ = server.SetReadDeadline(time.Now().Add(time.Second))
			got, err := bufio.NewReader(server).ReadString('\n')
			if err != nil {
				t.Fatalf("server read error: %v", err)
			}
			if got != tt.text+"\n" {
				t.Errorf("server received %d bytes %q, want %q", len(got), got, tt.text+"\n")
			}
		})
	}
}

func TestConn_Write_ContextDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := tcp.NewConn(client, 0)

	// Nobody reads from server, so the pipe write can only end by deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := conn.Write(ctx, []byte("stuck")); err == nil {
		t.Error("expected deadline error, got nil")
	}
}

func TestConn_CloseEndsBothDirections(t *testing.T) {
	server, client := loopback(t)
	conn := tcp.NewConn(client, 0)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := conn.TryRead(make([]byte, protocol.RecvBufferSize))
	if err == nil || errors.Is(err, transport.ErrWouldBlock) {
		t.Errorf("TryRead() after Close error = %v, want a terminal error", err)
	}
	if err := conn.Write(context.Background(), []byte("alice: still there?\n")); err == nil {
		t.Error("Write() after Close returned nil")
	}

	_ = server.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := server.Read(make([]byte, 1)); !errors.Is(err, io.EOF) {
		t.Errorf("peer read error = %v, want io.EOF", err)
	}
}

func TestConn_RemoteAddrIsServer(t *testing.T) {
	server, client := loopback(t)
	conn := tcp.NewConn(client, 0)

	if got, want := conn.RemoteAddr(), server.LocalAddr().String(); got != want {
		t.Errorf("RemoteAddr() = %q, want %q", got, want)
	}
}
