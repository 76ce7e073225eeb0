// Package rpc implements the server dispatch loop (C6) and client call
// plumbing (C7) shared by every generated service: decode one request
// Frame, dispatch it, encode the reply Frame, repeat until the stream
// closes. Its read-dispatch-write loop is grounded on
// Harvey-OS/ninep/protocol's Server.readNetPackets, generalized from a
// fixed 9P message switch to an opaque per-service Service.RPC call.
package rpc

import (
	"context"
	"errors"
	"io"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/frame"
)

// Service is implemented by generated server wrappers (e.g.
// codegen's *EchoService): given a decoded request Frame, it returns the
// response Frame to write back.
type Service interface {
	RPC(ctx context.Context, req frame.Frame) (frame.Frame, error)
}

// Caller is implemented by anything a generated client stub can issue a
// single request/response exchange through: a bare rpc.Run peer directly,
// or a mux.Mux multiplexing many concurrent calls over one stream.
type Caller interface {
	Call(ctx context.Context, req frame.Frame) (frame.Frame, error)
}

// Run drives the server side of an unmultiplexed stream: it reads frames
// from rw until the peer closes the connection, dispatches each to
// service, and writes back the response, one at a time, matching
// readNetPackets' "read header, read body, dispatch, reply, repeat" shape.
// Run returns nil on a clean peer close (io.EOF) and the triggering error
// otherwise.
func Run(ctx context.Context, service Service, rw io.ReadWriter) error {
	for {
		req, err := frame.ReadFrame(rw)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Debug("rpc: read error: %v", err)
			return err
		}

		resp, err := service.RPC(ctx, req)
		if err != nil {
			log.Debug("rpc: service error: %v", err)
			return err
		}

		if err := frame.WriteFrame(rw, resp); err != nil {
			log.Debug("rpc: write error: %v", err)
			return err
		}
	}
}

// simpleCaller adapts a bare ReadWriter into a Caller for unmultiplexed,
// strictly sequential client use (one in-flight call at a time): it writes
// the request and blocks for the single response that must follow, which
// is correct only because nothing else shares rw concurrently.
type simpleCaller struct {
	rw io.ReadWriter
}

// NewSimpleCaller wraps rw as a Caller for callers that don't need
// concurrent in-flight requests and so have no use for a mux.Mux.
func NewSimpleCaller(rw io.ReadWriter) Caller {
	return &simpleCaller{rw: rw}
}

func (c *simpleCaller) Call(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	if err := frame.WriteFrame(c.rw, req); err != nil {
		return frame.Frame{}, err
	}
	return frame.ReadFrame(c.rw)
}
