package wireerr

import (
	"bytes"
	"testing"

	"github.com/sandia-minimega/jetstream/wire"
)

func encode(t *testing.T, v wire.Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := v.Encode(wire.NewEncoder(&buf)); err != nil {
		t.Fatal(err)
	}
	if uint32(buf.Len()) != v.ByteSize() {
		t.Fatalf("ByteSize() = %d, encoded %d bytes", v.ByteSize(), buf.Len())
	}
	return buf.Bytes()
}

func TestErrorRoundTrip(t *testing.T) {
	e := New("boom").WithCode("jetstream.test").WithSeverity(SeverityError).
		WithHelp("try again").WithURL("https://example.invalid/err").
		WithSpan(Span{Offset: 3, Length: 4, Label: "bad field"})

	b := encode(t, e)
	got, err := Decode(wire.NewDecoder(bytes.NewReader(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Message != e.Message || got.Code != e.Code || got.Help != e.Help || got.URL != e.URL {
		t.Fatalf("got %+v, want %+v", got, e)
	}
	if len(got.Spans) != 1 || got.Spans[0] != e.Spans[0] {
		t.Fatalf("spans: got %+v, want %+v", got.Spans, e.Spans)
	}
}

func TestErrorFrameRichRoundTrip(t *testing.T) {
	f := RichErrorFrame(New("nope"))
	b := encode(t, f)
	got, err := DecodeErrorFrame(wire.NewDecoder(bytes.NewReader(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Variant != VariantRichError || got.Rich.Message != "nope" {
		t.Fatalf("got %+v", got)
	}
}

func TestErrorFrameLegacyErrnoRoundTrip(t *testing.T) {
	e := New("no such file").WithCode(string(KindFileNotFound))
	f, ok := e.AsLegacyErrno()
	if !ok {
		t.Fatal("expected AsLegacyErrno to succeed for known kind")
	}
	b := encode(t, f)
	got, err := DecodeErrorFrame(wire.NewDecoder(bytes.NewReader(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Variant != VariantLegacyRlerror {
		t.Fatalf("got variant %v", got.Variant)
	}
	if FromErrno(got.Ecode) != KindFileNotFound {
		t.Fatalf("FromErrno(%d) = %v, want %v", got.Ecode, FromErrno(got.Ecode), KindFileNotFound)
	}
}

func TestErrorFrameLegacyStringFallback(t *testing.T) {
	e := New("weird error").WithCode("not-a-known-kind")
	if _, ok := e.AsLegacyErrno(); ok {
		t.Fatal("expected AsLegacyErrno to fail for unknown kind")
	}
	f := e.AsLegacyString()
	b := encode(t, f)
	got, err := DecodeErrorFrame(wire.NewDecoder(bytes.NewReader(b)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Variant != VariantLegacyRerror || got.Ename != "weird error" {
		t.Fatalf("got %+v", got)
	}
}

func TestUnknownErrnoMapsToOther(t *testing.T) {
	if FromErrno(0xDEAD) != KindOther {
		t.Fatalf("expected unknown errno to map to %v", KindOther)
	}
}
