package wireerr

import "errors"

// The taxonomy of error kinds the framework itself distinguishes (spec.md
// §2/§7), independent of the legacy-errno Kind table in legacy.go. These
// are sentinel errors a caller can match with errors.Is against whatever
// concrete error a component returns.
var (
	// ErrTransport is a read/write failure on the underlying byte stream.
	ErrTransport = errors.New("jetstream: transport error")
	// ErrProtocol is a framing/decoding violation: fatal for the stream.
	ErrProtocol = errors.New("jetstream: protocol error")
	// ErrVersionMismatch is returned when version negotiation fails.
	ErrVersionMismatch = errors.New("jetstream: version mismatch")
	// ErrInvalidResponse is returned when a client receives an R-message
	// variant that does not correspond to the T-message it sent.
	ErrInvalidResponse = errors.New("jetstream: invalid response")
	// ErrTagsExhausted is returned by a Mux whose tag pool is empty.
	ErrTagsExhausted = errors.New("jetstream: too many requests inflight")
)
