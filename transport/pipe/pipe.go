// Package pipe is the in-process transport.Stream binding over net.Pipe,
// grounded on minitunnel_test.go's use of net.Pipe() to exercise the
// tunnel's multiplexing logic without a real socket — the same technique
// this module's own rpc/mux/router tests use directly.
package pipe

import (
	"net"

	"github.com/sandia-minimega/jetstream/transport"
)

// New returns a connected pair of in-process Streams, one for each end of
// a conversation.
func New() (a, b transport.Stream) {
	return net.Pipe()
}
