package frame

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteFrameEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	// S4: Tping request, tag 0, empty body.
	if err := WriteFrame(&buf, Frame{Type: 101, Tag: 0}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x07, 0x00, 0x00, 0x00, 0x65, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := Frame{Type: 102, Tag: 7, Body: []byte{0x00, 0x04, 0x00, 0x70, 0x6F, 0x6E, 0x67}}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, f); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != f.Type || got.Tag != f.Tag || !bytes.Equal(got.Body, f.Body) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

// S5: version negotiation frame bytes.
func TestTversionFrameBytes(t *testing.T) {
	body := []byte{0x00, 0x20, 0x00, 0x00, 0x08, 0x00, '9', 'P', '2', '0', '0', '0', '.', 'L'}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Type: Tversion, Tag: 0xFFFF, Body: body}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x15, 0x00, 0x00, 0x00, 0x64, 0xFF, 0xFF}
	want = append(want, body...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestReadFrameRejectsShortSize(t *testing.T) {
	buf := bytes.NewReader([]byte{0x03, 0x00, 0x00, 0x00})
	_, err := ReadFrame(buf)
	if err == nil {
		t.Fatal("expected error for size < 7")
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestReadFrameTruncatedMidFrame(t *testing.T) {
	buf := bytes.NewReader([]byte{0x0E, 0x00, 0x00, 0x00, 0x66, 0x00, 0x00, 0x00})
	_, err := ReadFrame(buf)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestScannerMatchesReadFrame(t *testing.T) {
	frames := []Frame{
		{Type: 101, Tag: 0},
		{Type: 102, Tag: 1, Body: []byte("pong!!")},
	}
	var buf bytes.Buffer
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatal(err)
		}
	}

	s := NewScanner(&buf, DefaultMsize)
	for _, want := range frames {
		got, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if got.Type != want.Type || got.Tag != want.Tag || !bytes.Equal(got.Body, want.Body) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestScannerHandlesFramesLargerThanDefaultMsize(t *testing.T) {
	// S5 negotiates msize up to 8192; a Scanner built for that msize must
	// not choke on a frame bigger than the old hardcoded 4096 buffer.
	body := bytes.Repeat([]byte("x"), 6000)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Type: 101, Body: body}); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(&buf, 8192)
	got, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Body, body) {
		t.Fatalf("got %d bytes, want %d", len(got.Body), len(body))
	}
}

func FuzzReadFrameNeverPanics(f *testing.F) {
	var buf bytes.Buffer
	WriteFrame(&buf, Frame{Type: 1, Tag: 2, Body: []byte("hello")})
	f.Add(buf.Bytes())
	f.Fuzz(func(t *testing.T, data []byte) {
		for n := 0; n <= len(data); n++ {
			ReadFrame(bytes.NewReader(data[:n]))
		}
	})
}
