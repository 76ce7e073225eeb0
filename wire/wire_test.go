package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// S1: primitive round-trip.
func TestU32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).U32(0x01020304); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}

	v, err := NewDecoder(&buf).U32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x01020304 {
		t.Fatalf("got %#x, want %#x", v, 0x01020304)
	}
}

// S2: string and bytes struct encoding.
func TestStringAndBytes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	if err := e.String("hi"); err != nil {
		t.Fatal(err)
	}
	if err := e.Bytes([]byte{0xAA, 0xBB}); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x02, 0x00, 0x68, 0x69, 0x02, 0x00, 0x00, 0x00, 0xAA, 0xBB}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}

	d := NewDecoder(&buf)
	s, err := d.String()
	if err != nil || s != "hi" {
		t.Fatalf("String() = %q, %v", s, err)
	}
	b, err := d.Bytes()
	if err != nil || !bytes.Equal(b, []byte{0xAA, 0xBB}) {
		t.Fatalf("Bytes() = % x, %v", b, err)
	}
}

// S3: option and seq encoding.
func TestOptionAndSeq(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)

	opt := Some("ok")
	if err := EncodeOption(e, opt, func(e *Encoder, s string) error { return e.String(s) }); err != nil {
		t.Fatal(err)
	}
	if err := EncodeSeq(e, []uint8{1, 2, 3}, func(e *Encoder, v uint8) error { return e.U8(v) }); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x01, 0x02, 0x00, 0x6F, 0x6B, 0x03, 0x00, 0x01, 0x02, 0x03}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}

	d := NewDecoder(&buf)
	gotOpt, err := DecodeOption(d, func(d *Decoder) (string, error) { return d.String() })
	if err != nil || !gotOpt.Valid || gotOpt.Value != "ok" {
		t.Fatalf("DecodeOption() = %+v, %v", gotOpt, err)
	}
	gotSeq, err := DecodeSeq(d, func(d *Decoder) (uint8, error) { return d.U8() })
	if err != nil || !bytes.Equal(gotSeq, []byte{1, 2, 3}) {
		t.Fatalf("DecodeSeq() = %v, %v", gotSeq, err)
	}
}

func TestOptionAbsent(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	if err := EncodeOption(e, None[uint32](), func(e *Encoder, v uint32) error { return e.U32(v) }); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x00}) {
		t.Fatalf("got % x, want 00", buf.Bytes())
	}
	d := NewDecoder(&buf)
	opt, err := DecodeOption(d, func(d *Decoder) (uint32, error) { return d.U32() })
	if err != nil || opt.Valid {
		t.Fatalf("DecodeOption() = %+v, %v", opt, err)
	}
}

func TestBadOptionTagIsInvalidData(t *testing.T) {
	buf := bytes.NewReader([]byte{0x02})
	_, err := DecodeOption(NewDecoder(buf), func(d *Decoder) (uint8, error) { return d.U8() })
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("got %v, want ErrInvalidData for option tag 2", err)
	}
}

func TestBadUTF8IsInvalidData(t *testing.T) {
	buf := bytes.NewReader([]byte{0x01, 0x00, 0xFF})
	_, err := NewDecoder(buf).String()
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("got %v, want ErrInvalidData for invalid utf-8", err)
	}
}

func TestTruncatedReadIsUnexpectedEOF(t *testing.T) {
	buf := bytes.NewReader([]byte{0x05, 0x00, 0x68, 0x69})
	_, err := NewDecoder(buf).String()
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}

func FuzzU64RoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(^uint64(0))
	f.Fuzz(func(t *testing.T, v uint64) {
		var buf bytes.Buffer
		if err := NewEncoder(&buf).U64(v); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 8 {
			t.Fatalf("byte_size mismatch: got %d, want 8", buf.Len())
		}
		got, err := NewDecoder(&buf).U64()
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("round trip: got %d, want %d", got, v)
		}
	})
}

func FuzzStringRoundTrip(f *testing.F) {
	f.Add("")
	f.Add("hello")
	f.Fuzz(func(t *testing.T, s string) {
		if len(s) > MaxStringLen {
			t.Skip()
		}
		var buf bytes.Buffer
		if err := NewEncoder(&buf).String(s); err != nil {
			t.Skip()
		}
		size, err := StringByteSize(s)
		if err != nil {
			t.Fatal(err)
		}
		if uint32(buf.Len()) != size {
			t.Fatalf("byte_size mismatch: got %d, want %d", buf.Len(), size)
		}
		got, err := NewDecoder(&buf).String()
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("round trip: got %q, want %q", got, s)
		}
	})
}
