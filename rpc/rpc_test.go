package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/sandia-minimega/jetstream/frame"
)

// echoService replies to every frame with the same type/tag and the body
// reversed, just enough to prove the dispatch loop actually round-trips
// frames rather than to model a real service.
type echoService struct{}

func (echoService) RPC(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	body := make([]byte, len(req.Body))
	for i, b := range req.Body {
		body[len(body)-1-i] = b
	}
	return frame.Frame{Type: req.Type, Tag: req.Tag, Body: body}, nil
}

func TestRunServesUntilClientCloses(t *testing.T) {
	server, client := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), echoService{}, server) }()

	caller := NewSimpleCaller(client)
	resp, err := caller.Call(context.Background(), frame.Frame{Type: 101, Tag: 1, Body: []byte("abc")})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Body) != "cba" {
		t.Fatalf("got %q, want %q", resp.Body, "cba")
	}

	client.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v after clean close, want nil", err)
	}
}
