// Package mux implements the multiplexer (C8): many concurrent Call()
// invocations share one underlying stream by tagging each request/response
// pair with a u16 tag from a bounded pool. Its shape is grounded directly
// on minitunnel.Tunnel: a tag-keyed table of per-call return channels
// (tids), one combined reader/dispatch loop (mux), and a writer fed by a
// bounded outbound queue (out) — generalized here from minitunnel's
// gob-encoded tunnelMessage to jetstream's frame.Frame, and from an
// unbounded int32 TID space to the u16 tag pool spec.md §4.8 and
// original_source's tag/semaphor.rs describe as a bounded acquire/release
// resource.
package mux

import (
	"context"
	"io"
	"sync"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/frame"
	"github.com/sandia-minimega/jetstream/wireerr"
)

// MaxTags is the size of the tag pool: the number of requests that may be
// in flight on one Mux simultaneously. Tags are drawn from [1, MaxTags]
// per spec.md §4.8.
const MaxTags = 1 << 14

// Mux multiplexes many concurrent Call requests over one underlying
// stream, matching each response back to its caller by frame tag.
type Mux struct {
	rw io.ReadWriteCloser

	tags    chan uint16
	out     chan frame.Frame
	quit    chan struct{}
	quitErr error

	mu      sync.Mutex
	pending map[uint16]chan frame.Frame
}

// New creates a Mux over rw and starts its reader and writer goroutines.
// Callers should arrange for rw to be closed (directly, or via Mux.Close)
// once the Mux is no longer needed; outstanding Call invocations return
// wireerr.ErrTransport when that happens.
func New(rw io.ReadWriteCloser) *Mux {
	m := &Mux{
		rw:      rw,
		tags:    make(chan uint16, MaxTags),
		out:     make(chan frame.Frame, 64),
		quit:    make(chan struct{}),
		pending: make(map[uint16]chan frame.Frame),
	}
	for t := uint16(1); t <= MaxTags; t++ {
		m.tags <- t
	}

	go m.writeLoop()
	go m.readLoop()

	return m
}

// Close shuts down the Mux and the underlying stream. Any in-flight Call
// fails with wireerr.ErrTransport.
func (m *Mux) Close() error {
	return m.rw.Close()
}

func (m *Mux) writeLoop() {
	for {
		select {
		case <-m.quit:
			return
		case f := <-m.out:
			if err := frame.WriteFrame(m.rw, f); err != nil {
				log.Debug("mux: write error: %v", err)
				m.shutdown(err)
				return
			}
		}
	}
}

func (m *Mux) readLoop() {
	for {
		f, err := frame.ReadFrame(m.rw)
		if err != nil {
			m.shutdown(err)
			return
		}

		m.mu.Lock()
		c, ok := m.pending[f.Tag]
		m.mu.Unlock()

		if !ok {
			log.Info("mux: response for unknown tag %d", f.Tag)
			continue
		}

		// Guarded against m.quit: shutdown (triggered concurrently by
		// writeLoop on a write error) never closes c, but it may run
		// between the lookup above and this send, and nothing would
		// otherwise unblock this select if the caller has already given
		// up on tag.
		select {
		case c <- f:
		case <-m.quit:
			return
		}
	}
}

// shutdown marks the Mux as failed. It does not close per-call channels
// (c in readLoop/Call) since readLoop may race a send against it; callers
// unblock via the m.quit case in Call's own select instead.
func (m *Mux) shutdown(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.quit:
		return
	default:
	}
	m.quitErr = err
	close(m.quit)
	m.pending = nil
}

// Call sends req over the Mux with a freshly acquired tag and blocks until
// its matching response arrives, ctx is cancelled, or the Mux shuts down.
// If all MaxTags tags are in flight it fails at once with
// wireerr.ErrTagsExhausted. The tag is always released before Call returns.
func (m *Mux) Call(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	var tag uint16
	select {
	case tag = <-m.tags:
	case <-m.quit:
		return frame.Frame{}, wireerr.ErrTransport
	case <-ctx.Done():
		return frame.Frame{}, ctx.Err()
	default:
		return frame.Frame{}, wireerr.ErrTagsExhausted
	}

	req.Tag = tag
	c := make(chan frame.Frame, 1)

	m.mu.Lock()
	if m.pending == nil {
		m.mu.Unlock()
		m.tags <- tag
		return frame.Frame{}, wireerr.ErrTransport
	}
	m.pending[tag] = c
	m.mu.Unlock()

	defer m.release(tag)

	select {
	case m.out <- req:
	case <-m.quit:
		return frame.Frame{}, wireerr.ErrTransport
	case <-ctx.Done():
		return frame.Frame{}, ctx.Err()
	}

	select {
	case resp := <-c:
		return resp, nil
	case <-m.quit:
		return frame.Frame{}, wireerr.ErrTransport
	case <-ctx.Done():
		return frame.Frame{}, ctx.Err()
	}
}

// release removes tag's pending entry and returns the tag to the pool,
// matching minitunnel's unregisterTID/registerTID pairing.
func (m *Mux) release(tag uint16) {
	m.mu.Lock()
	if m.pending != nil {
		delete(m.pending, tag)
	}
	m.mu.Unlock()
	select {
	case m.tags <- tag:
	default:
	}
}
