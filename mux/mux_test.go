package mux

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sandia-minimega/jetstream/frame"
)

// serveEcho runs a minimal server loop over conn that replies to every
// frame with the same tag and a body identical to the request's, enough to
// exercise a Mux's Call against many concurrently in-flight requests.
func serveEcho(t *testing.T, conn net.Conn) {
	for {
		f, err := frame.ReadFrame(conn)
		if err != nil {
			return
		}
		if err := frame.WriteFrame(conn, f); err != nil {
			return
		}
	}
}

func TestCallRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	go serveEcho(t, server)
	defer client.Close()

	m := New(client)
	defer m.Close()

	resp, err := m.Call(context.Background(), frame.Frame{Type: 101, Body: []byte("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Body) != "hi" {
		t.Fatalf("got %q, want %q", resp.Body, "hi")
	}
}

func TestCallConcurrentRequestsMatchByTag(t *testing.T) {
	server, client := net.Pipe()
	go serveEcho(t, server)
	defer client.Close()

	m := New(client)
	defer m.Close()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			body := []byte{byte(i)}
			resp, err := m.Call(context.Background(), frame.Frame{Type: 101, Body: body})
			if err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			if len(resp.Body) != 1 || resp.Body[0] != byte(i) {
				t.Errorf("call %d: got body %v, want %v", i, resp.Body, body)
			}
		}(i)
	}
	wg.Wait()
}

func TestCallRespectsContextCancellation(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	m := New(client)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nothing reads from server, so writeLoop blocks writing the request
	// and no response ever arrives; Call must return ctx.Err() once the
	// deadline fires rather than hang.
	_, err := m.Call(ctx, frame.Frame{Type: 101, Body: []byte("stuck")})
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestCallFailsAfterStreamCloses(t *testing.T) {
	server, client := net.Pipe()
	server.Close()

	m := New(client)
	defer m.Close()

	_, err := m.Call(context.Background(), frame.Frame{Type: 101, Body: []byte("x")})
	if err == nil {
		t.Fatal("expected an error once the underlying stream is gone")
	}
}

// TestCallSurvivesShutdownRaceWithInFlightResponse drives many concurrent
// Calls against a server that stops replying partway through and then
// closes its end, forcing writeLoop's shutdown to race readLoop's delivery
// of whatever responses are still in flight. Every Call must return (with
// either a response or wireerr.ErrTransport), never hang or panic.
func TestCallSurvivesShutdownRaceWithInFlightResponse(t *testing.T) {
	server, client := net.Pipe()

	go func() {
		for i := 0; i < 50; i++ {
			f, err := frame.ReadFrame(server)
			if err != nil {
				return
			}
			if i >= 25 {
				// Stop replying and pull the rug out from under
				// whatever's still pending, so the in-flight sends in
				// mux.readLoop race mux.shutdown.
				server.Close()
				return
			}
			if err := frame.WriteFrame(server, f); err != nil {
				return
			}
		}
	}()

	m := New(client)
	defer m.Close()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m.Call(context.Background(), frame.Frame{Type: 101, Body: []byte{byte(i)}})
		}(i)
	}
	wg.Wait()
}
