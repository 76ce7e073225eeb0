// Package router implements the router (C9): per-stream Tversion/Rversion
// negotiation that picks a registered Handler by protocol-version string,
// then hands the stream off. Generalized from
// Harvey-OS/ninep/protocol.Dispatch's single global "has Tversion been
// seen yet" gate (one fixed NineServer per connection) to a map of
// handlers keyed by negotiated protocol version, per spec.md §4.9; the
// "confirm the version even though a lower transport layer may already
// have negotiated one" detail is grounded on original_source's
// jetstream_quic/src/router.rs.
package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/frame"
	"github.com/sandia-minimega/jetstream/version"
	"github.com/sandia-minimega/jetstream/wire"
	"github.com/sandia-minimega/jetstream/wireerr"
)

// Handler is implemented by a generated *<Interface>Service (SUPPLEMENTED
// FEATURES: the type-erased entry point any_server.rs/dynamic.rs describe,
// letting a Router hold heterogeneous generated services behind one
// interface).
type Handler interface {
	// ProtocolVersion is the version string this handler serves, as
	// produced by version.ProtocolVersion.
	ProtocolVersion() string
	// Accept takes over stream after version negotiation has succeeded,
	// typically by calling rpc.Run or constructing a mux.Mux over it.
	Accept(ctx context.Context, stream io.ReadWriteCloser) error
}

// Router dispatches incoming streams to a Handler by negotiated protocol
// version. One Router instance serves every interface a process exposes.
type Router struct {
	msize uint32

	mu       sync.RWMutex
	handlers map[string]Handler // keyed by each handler's full ProtocolVersion() string
}

// New creates a Router. msize is the maximum in-band message size this
// process advertises during negotiation (version.Payload.Msize).
func New(msize uint32) *Router {
	return &Router{msize: msize, handlers: make(map[string]Handler)}
}

// Register adds h to the set of handlers Accept can dispatch to, keyed by
// h.ProtocolVersion(). Registering two handlers for the same version is a
// programming error.
func (r *Router) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.ProtocolVersion()] = h
}

// Accept reads a single Tversion frame from stream, negotiates against the
// registered handlers, writes the Rversion reply, and — on success —
// blocks inside the matched Handler's Accept until the stream is done.
// ConfirmALPN performs the same negotiation without the handoff, for
// transports (e.g. QUIC) that want to confirm an ALPN-level protocol
// choice before accepting a stream at all.
func (r *Router) Accept(ctx context.Context, stream io.ReadWriteCloser) error {
	req, err := frame.ReadFrame(stream)
	if err != nil {
		return fmt.Errorf("router: reading Tversion: %w", err)
	}
	if req.Type != frame.Tversion {
		return fmt.Errorf("router: expected Tversion, got message type %d: %w", req.Type, wireerr.ErrProtocol)
	}

	clientPayload, err := version.DecodePayload(wire.NewDecoder(bytes.NewReader(req.Body)))
	if err != nil {
		return fmt.Errorf("router: decoding Tversion: %w", err)
	}

	handler, replyPayload, ok := r.negotiate(clientPayload)

	respBody, err := encodePayload(replyPayload)
	if err != nil {
		return err
	}
	if err := frame.WriteFrame(stream, frame.Frame{Type: frame.Rversion, Tag: req.Tag, Body: respBody}); err != nil {
		return fmt.Errorf("router: writing Rversion: %w", err)
	}

	if !ok {
		log.Info("router: no handler for version %q", clientPayload.Version)
		return wireerr.ErrVersionMismatch
	}

	return handler.Accept(ctx, stream)
}

// ConfirmALPN performs the same Tversion/Rversion exchange as Accept but
// returns the matched Handler instead of invoking it, for transports that
// confirm protocol selection before the stream is handed to application
// code (SUPPLEMENTED FEATURES: jetstream_quic/src/router.rs).
func (r *Router) ConfirmALPN(stream io.ReadWriteCloser) (Handler, error) {
	req, err := frame.ReadFrame(stream)
	if err != nil {
		return nil, fmt.Errorf("router: reading Tversion: %w", err)
	}
	if req.Type != frame.Tversion {
		return nil, fmt.Errorf("router: expected Tversion: %w", wireerr.ErrProtocol)
	}

	clientPayload, err := version.DecodePayload(wire.NewDecoder(bytes.NewReader(req.Body)))
	if err != nil {
		return nil, err
	}

	handler, replyPayload, ok := r.negotiate(clientPayload)

	respBody, err := encodePayload(replyPayload)
	if err != nil {
		return nil, err
	}
	if err := frame.WriteFrame(stream, frame.Frame{Type: frame.Rversion, Tag: req.Tag, Body: respBody}); err != nil {
		return nil, err
	}
	if !ok {
		return nil, wireerr.ErrVersionMismatch
	}
	return handler, nil
}

func (r *Router) negotiate(client version.Payload) (Handler, version.Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mismatch := version.Payload{Msize: client.Msize}
	for _, h := range r.handlers {
		serverVersion := h.ProtocolVersion()
		parsed, isJetstream := version.Parse(serverVersion)
		if !isJetstream {
			continue
		}
		reply, ok := version.Negotiate(client, parsed.Interface, parsed.Semver.String(), parsed.Digest, r.msize)
		if ok {
			return h, reply, true
		}
		mismatch = reply
	}

	// No handler matched: still give the client a well-formed Rversion
	// reply, carrying a version this router does serve (empty when no
	// jetstream handler is registered), so it can report a clean version
	// mismatch instead of hanging on a short read.
	return nil, mismatch, false
}
