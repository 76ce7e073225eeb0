// Package transport defines the byte-stream contract jetstream's framer
// runs over and the concrete bindings spec.md §6 names: tcp, pipe,
// websocket, and a nacl/secretbox-secured wrapper. QUIC/HTTP3/WebTransport
// are left as this same Stream contract (already satisfied by e.g.
// quic-go's quic.Stream) with no concrete binding, since no retrieved repo
// depends on a QUIC implementation (see DESIGN.md).
package transport

import "io"

// Stream is one bidirectional, ordered byte stream a Mux or rpc.Run loop
// can frame messages over.
type Stream interface {
	io.ReadWriteCloser
}

// Listener accepts Streams, mirroring net.Listener but over the narrower
// Stream contract so non-net.Conn bindings (e.g. a QUIC stream acceptor)
// can implement it too.
type Listener interface {
	Accept() (Stream, error)
	Close() error
	Addr() string
}

// Dialer opens a single Stream to addr.
type Dialer interface {
	Dial(addr string) (Stream, error)
}
