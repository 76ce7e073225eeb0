// Package tcp is the plain-TCP transport.Stream binding, grounded on
// meshage.Node's own dial/listener pair (net.Dial("tcp", ...) /
// net.Listen("tcp", ...) on a fixed port).
package tcp

import (
	"net"

	"github.com/sandia-minimega/jetstream/transport"
)

type listener struct {
	ln net.Listener
}

// Listen starts a TCP listener on addr (host:port, or :port for all
// interfaces, matching meshage.Node.Listen's fmt.Sprintf(":%d", PORT)
// convention).
func Listen(addr string) (transport.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &listener{ln: ln}, nil
}

func (l *listener) Accept() (transport.Stream, error) {
	return l.ln.Accept()
}

func (l *listener) Close() error { return l.ln.Close() }

func (l *listener) Addr() string { return l.ln.Addr().String() }

type dialer struct{}

// Dialer returns a transport.Dialer that opens plain TCP connections.
func Dialer() transport.Dialer { return dialer{} }

func (dialer) Dial(addr string) (transport.Stream, error) {
	return net.Dial("tcp", addr)
}
