package frame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Scanner reads frames from a buffered stream, the way a streaming codec
// must per spec.md §4.3: buffer until size is readable, then until size
// bytes are available, then emit exactly one frame. Partial reads (e.g.
// from a TCP socket under load) accumulate in the buffer, which may also
// hold the start of the following frame; a frame larger than the buffer
// fails with bufio.ErrBufferFull.
type Scanner struct {
	r *bufio.Reader
}

// DefaultMsize is the buffer size NewScanner falls back to when no
// negotiated msize is available yet (e.g. scanning the Tversion frame
// itself, before negotiation has produced one).
const DefaultMsize = 4096

// NewScanner wraps r in buffered framing sized to hold one full frame up
// to msize bytes (the negotiated maximum in-band message size, per
// spec.md §4.4 — "Frames whose size > msize must be rejected"). A zero
// msize falls back to DefaultMsize. If r is already a *bufio.Reader with
// at least that much buffer, it is used directly.
func NewScanner(r io.Reader, msize uint32) *Scanner {
	if msize == 0 {
		msize = DefaultMsize
	}
	if br, ok := r.(*bufio.Reader); ok && br.Size() >= int(msize) {
		return &Scanner{r: br}
	}
	return &Scanner{r: bufio.NewReaderSize(r, int(msize))}
}

// Next blocks until a full frame is buffered and returns it. It returns
// io.EOF only when the stream closes cleanly between frames; any closure
// mid-frame is reported as io.ErrUnexpectedEOF.
func (s *Scanner) Next() (Frame, error) {
	szBuf, err := s.r.Peek(4)
	if err != nil {
		if err == io.EOF && len(szBuf) == 0 {
			return Frame{}, io.EOF
		}
		if err == io.EOF {
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	size := binary.LittleEndian.Uint32(szBuf)
	if size < HeaderSize {
		s.r.Discard(4)
		return Frame{}, fmt.Errorf("%w: got %d", ErrShortFrame, size)
	}

	full, err := s.r.Peek(int(size))
	if err != nil {
		if err == io.EOF {
			return Frame{}, io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}

	f := Frame{
		Type: full[4],
		Tag:  binary.LittleEndian.Uint16(full[5:7]),
		Body: append([]byte(nil), full[7:size]...),
	}
	if _, err := s.r.Discard(int(size)); err != nil {
		return Frame{}, err
	}
	return f, nil
}
