package server

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hayley-d/filehost/internal/logsink"
)

func startServer(t *testing.T) (*Server, string, <-chan struct{}) {
	t.Helper()
	h, dir := testHandlers(t)
	sink := logsink.New(io.Discard)
	srv := New(Config{
		Host:        "127.0.0.1",
		Port:        0,
		ReadTimeout: 2 * time.Second,
		MaxConns:    8,
	}, h, sink, h.Audit, NewCoordinator())

	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	served := make(chan struct{})
	go func() {
		if err := srv.Serve(context.Background()); err != nil {
			t.Errorf("Serve: %v", err)
		}
		close(served)
	}()
	t.Cleanup(func() {
		srv.Shutdown()
		select {
		case <-served:
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after Shutdown")
		}
	})
	return srv, dir, served
}

// roundTrip sends raw bytes and returns everything the server wrote
// before closing the connection.
func roundTrip(t *testing.T, addr net.Addr, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestServeStaticOverTCP(t *testing.T) {
	srv, dir, _ := startServer(t)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hi</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundTrip(t, srv.Addr(), "GET / HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line in:\n%s", resp)
	}
	if !strings.Contains(resp, "Connection: close\r\n") {
		t.Error("response missing Connection: close")
	}
	if !strings.HasSuffix(resp, "<h1>hi</h1>") {
		t.Errorf("unexpected body in:\n%s", resp)
	}
}

func TestMalformedRequestGets400(t *testing.T) {
	srv, _, _ := startServer(t)

	resp := roundTrip(t, srv.Addr(), "this is not http\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request\r\n") {
		t.Fatalf("unexpected status line in:\n%s", resp)
	}
}

func TestUnsupportedMethodOverTCP(t *testing.T) {
	srv, _, _ := startServer(t)

	resp := roundTrip(t, srv.Addr(), "PUT /thing HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 405 Method Not Allowed\r\n") {
		t.Fatalf("unexpected status line in:\n%s", resp)
	}
}

func TestSlowClientTimesOutSilently(t *testing.T) {
	h, _ := testHandlers(t)
	sink := logsink.New(io.Discard)
	srv := New(Config{
		Host:        "127.0.0.1",
		ReadTimeout: 200 * time.Millisecond,
		MaxConns:    8,
	}, h, sink, h.Audit, NewCoordinator())
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(context.Background()) }()
	defer func() {
		srv.Shutdown()
		<-served
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Send nothing. The server must close without writing a response.
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("timed-out connection received %d bytes: %q", len(data), data)
	}
}

func TestGracefulShutdownCompletesInflightRequest(t *testing.T) {
	srv, dir, served := startServer(t)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("still here"), 0o644); err != nil {
		t.Fatal(err)
	}

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Start the request so a supervisor is mid-read when shutdown fires.
	if _, err := conn.Write([]byte("GET / HT")); err != nil {
		t.Fatalf("partial write: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	srv.Shutdown()

	// No new connection is served after shutdown. A dial may still land
	// in the kernel backlog as the listener closes, but nothing accepts
	// it, so it must never produce a response.
	if late, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second); err == nil {
		late.SetReadDeadline(time.Now().Add(time.Second))
		buf := make([]byte, 1)
		if n, rerr := late.Read(buf); rerr == nil {
			t.Errorf("connection dialed after shutdown was served: read %d bytes", n)
		}
		late.Close()
	}

	// The in-flight request still completes.
	if _, err := conn.Write([]byte("TP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("finishing write: %v", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("in-flight request not served, got:\n%s", data)
	}
	if !strings.HasSuffix(string(data), "still here") {
		t.Errorf("unexpected body in:\n%s", data)
	}

	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after draining")
	}
}

func TestCompressedResponseOverTCP(t *testing.T) {
	srv, dir, _ := startServer(t)
	body := strings.Repeat("compress me ", 128)
	if err := os.WriteFile(filepath.Join(dir, "big.txt"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := roundTrip(t, srv.Addr(), "GET /big.txt HTTP/1.1\r\nAccept-Encoding: gzip\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line in:\n%s", resp)
	}
	if !strings.Contains(resp, "Content-Encoding: gzip\r\n") {
		t.Error("response missing Content-Encoding: gzip")
	}
	if strings.Contains(resp, body) {
		t.Error("body does not appear to be compressed")
	}
}
