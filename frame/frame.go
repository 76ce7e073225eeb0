// Package frame implements the length-prefixed envelope described in
// spec.md §3/§4.3: a four-byte little-endian size (including itself), a
// one-byte message-type discriminant, a two-byte transaction tag, and a
// body. It is grounded on the vendored 9P implementation's
// readNetPackets loop (Harvey-OS/ninep/protocol), which frames messages the
// same way: a u32 LE size prefix covering the whole message, then the rest
// of the header, then the body.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the number of bytes in size+type+tag, i.e. everything in a
// Frame other than the body.
const HeaderSize = 4 + 1 + 2

// Reserved message-type codes (spec.md §6).
const (
	RJetStreamError = 5 // rich error frame
	Tlerror         = 6 // legacy numeric errno request (reserved, unused on the wire)
	Rlerror         = 7 // legacy numeric errno response
	Tversion        = 100
	Rversion        = 101
	Terror          = 106 // legacy string error request (reserved)
	Rerror          = 107 // legacy string error response

	// UserBase is the first message-type number available to a generated
	// service. Method i of an interface occupies UserBase+2*i (T) and
	// UserBase+2*i+1 (R).
	UserBase = 101
)

// ErrShortFrame is returned when a frame's declared size is too small to
// hold the header.
var ErrShortFrame = errors.New("frame: byte_size less than 7 bytes")

// Frame is the wire envelope. The on-wire size is not stored: it is always
// len(Body)+HeaderSize and is computed by WriteFrame (via Bytes).
type Frame struct {
	Type uint8
	Tag  uint16
	Body []byte
}

// byteSize returns 7 + len(body), the value written on the wire as Size.
func byteSize(body []byte) uint32 { return uint32(HeaderSize) + uint32(len(body)) }

// WriteFrame encodes f to w in a single Write call (size = 7 + len(body),
// then type, then tag, then body), so that transports which frame each
// Write as one discrete message (e.g. transport/websocket) emit exactly
// one message per Frame.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(Bytes(f))
	return err
}

// ReadFrame decodes one frame from r. It reads the 4-byte size prefix,
// rejects sizes under 7, then reads exactly size-4 further bytes (type, tag,
// body). An io.EOF returned with zero bytes read signals a clean stream
// close (§4.6 "on UnexpectedEof terminate cleanly"); any other short read is
// io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) (Frame, error) {
	var szBuf [4]byte
	if _, err := io.ReadFull(r, szBuf[:]); err != nil {
		return Frame{}, err
	}
	size := binary.LittleEndian.Uint32(szBuf[:])
	if size < HeaderSize {
		return Frame{}, fmt.Errorf("%w: got %d", ErrShortFrame, size)
	}

	rest := make([]byte, size-4)
	if _, err := io.ReadFull(r, rest); err != nil {
		if err == io.EOF {
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}

	f := Frame{
		Type: rest[0],
		Tag:  binary.LittleEndian.Uint16(rest[1:3]),
		Body: rest[3:],
	}
	return f, nil
}

// Bytes renders f as it would appear on the wire, for tests and tracing.
func Bytes(f Frame) []byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], byteSize(f.Body))
	buf[4] = f.Type
	binary.LittleEndian.PutUint16(buf[5:7], f.Tag)
	return append(buf[:], f.Body...)
}
