package version

import (
	"bytes"
	"testing"

	"github.com/sandia-minimega/jetstream/wire"
)

func TestPayloadRoundTrip(t *testing.T) {
	p := Payload{Msize: 65536, Version: ProtocolVersion("Echo", "1.0.0", "deadbeef")}

	var buf bytes.Buffer
	if err := p.Encode(wire.NewEncoder(&buf)); err != nil {
		t.Fatal(err)
	}
	if uint32(buf.Len()) != p.ByteSize() {
		t.Fatalf("ByteSize() = %d, encoded %d bytes", p.ByteSize(), buf.Len())
	}

	got, err := DecodePayload(wire.NewDecoder(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestProtocolVersionFormatAndParse(t *testing.T) {
	s := ProtocolVersion("Echo", "1.2.3", "cafebabe")
	want := "dev.branch.jetstream.proto/echo/1.2.3-cafebabe"
	if s != want {
		t.Fatalf("got %q, want %q", s, want)
	}

	parsed, ok := Parse(s)
	if !ok {
		t.Fatal("expected Parse to succeed")
	}
	if parsed.Interface != "echo" || parsed.Digest != "cafebabe" || parsed.Semver != (Semver{1, 2, 3}) {
		t.Fatalf("got %+v", parsed)
	}
}

func TestParseRejectsLegacyAndGarbage(t *testing.T) {
	for _, s := range []string{Legacy9P2000, Legacy9P2000L, "garbage", "dev.branch.jetstream.proto/echo"} {
		if _, ok := Parse(s); ok {
			t.Fatalf("Parse(%q) unexpectedly succeeded", s)
		}
	}
	if !IsLegacy(Legacy9P2000) || !IsLegacy(Legacy9P2000L) {
		t.Fatal("expected both legacy strings to be recognized")
	}
	if IsLegacy("dev.branch.jetstream.proto/echo/1.0.0-aaaaaaaa") {
		t.Fatal("jetstream version string misidentified as legacy")
	}
}

func TestSemverCompareAndMin(t *testing.T) {
	a, err := ParseSemver("1.4.0")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseSemver("1.4.2+deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if a.Compare(b) >= 0 {
		t.Fatalf("expected %v < %v", a, b)
	}
	if a.Min(b) != a {
		t.Fatalf("Min(%v, %v) = %v, want %v", a, b, a.Min(b), a)
	}
}

func TestDigestIsDeterministicAndSensitiveToInput(t *testing.T) {
	d1 := Digest("interface Echo { ping() -> Result<String>; }")
	d2 := Digest("interface Echo { ping() -> Result<String>; }")
	d3 := Digest("interface Echo { ping(msg: String) -> Result<String>; }")
	if d1 != d2 {
		t.Fatalf("digest not deterministic: %q != %q", d1, d2)
	}
	if d1 == d3 {
		t.Fatal("digest did not change with interface text")
	}
	if len(d1) != 8 {
		t.Fatalf("want 8 hex chars, got %d (%q)", len(d1), d1)
	}
}

func TestNegotiateJetstreamAgreesOnMinSemver(t *testing.T) {
	digest := Digest("interface Echo { ping() -> Result<String>; }")
	client := Payload{Msize: 1 << 20, Version: ProtocolVersion("Echo", "1.5.0", digest)}

	reply, ok := Negotiate(client, "Echo", "1.2.0", digest, 1<<16)
	if !ok {
		t.Fatal("expected negotiation to succeed")
	}
	if reply.Msize != 1<<16 {
		t.Fatalf("got msize %d, want %d", reply.Msize, 1<<16)
	}
	parsed, ok := Parse(reply.Version)
	if !ok {
		t.Fatalf("reply version %q did not parse", reply.Version)
	}
	if parsed.Semver != (Semver{1, 2, 0}) {
		t.Fatalf("got semver %v, want 1.2.0", parsed.Semver)
	}
}

func TestNegotiateRejectsDigestMismatch(t *testing.T) {
	client := Payload{Msize: 1 << 16, Version: ProtocolVersion("Echo", "1.0.0", "11111111")}
	_, ok := Negotiate(client, "Echo", "1.0.0", "22222222", 1<<16)
	if ok {
		t.Fatal("expected digest mismatch to fail negotiation")
	}
}

func TestNegotiateAcceptsLegacyVersion(t *testing.T) {
	client := Payload{Msize: 8192, Version: Legacy9P2000L}
	reply, ok := Negotiate(client, "Echo", "1.0.0", "aaaaaaaa", 1<<16)
	if !ok {
		t.Fatal("expected legacy negotiation to succeed")
	}
	if reply.Version != Legacy9P2000L {
		t.Fatalf("got %q, want %q", reply.Version, Legacy9P2000L)
	}
	if reply.Msize != 8192 {
		t.Fatalf("got msize %d, want 8192 (min of client/server)", reply.Msize)
	}
}
