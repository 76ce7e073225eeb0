// Package version implements the version negotiation protocol of spec.md
// §4.4: the Tversion/Rversion payloads, the protocol-version string grammar
// (including the interface-text digest), and the msize/semver negotiation
// rules. Its payload shape is grounded on the vendored
// Harvey-OS/ninep/protocol package's TversionPkt/RversionPkt
// ({TMsize MaxSize; TVersion string}).
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandia-minimega/jetstream/wire"
)

// Legacy 9P version strings jetstream accepts for interop (spec.md §6).
const (
	Legacy9P2000  = "9P2000"
	Legacy9P2000L = "9P2000.L"
)

const protoPrefix = "dev.branch.jetstream.proto"

// Payload is the body of both Tversion (message-type 100) and Rversion
// (message-type 101): a proposed/agreed maximum in-band message size and a
// version string.
type Payload struct {
	Msize   uint32
	Version string
}

func (p Payload) ByteSize() uint32 {
	size, _ := wire.StringByteSize(p.Version)
	return 4 + size
}

func (p Payload) Encode(e *wire.Encoder) error {
	if err := e.U32(p.Msize); err != nil {
		return err
	}
	return e.String(p.Version)
}

func DecodePayload(d *wire.Decoder) (Payload, error) {
	var p Payload
	var err error
	if p.Msize, err = d.U32(); err != nil {
		return Payload{}, err
	}
	if p.Version, err = d.String(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Digest returns the first 8 hex characters of SHA-256 over canonical, the
// canonical textual rendering of an interface declaration (schema.Interface
// .CanonicalText). Any incompatible change to the interface changes this
// digest, per spec.md §3/§9.
func Digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:8]
}

// ProtocolVersion formats the version string embedded in Tversion/Rversion
// and used as an ALPN token: dev.branch.jetstream.proto/<iface>/<semver>-<digest8>.
func ProtocolVersion(ifaceName string, semver string, digest string) string {
	return fmt.Sprintf("%s/%s/%s-%s", protoPrefix, strings.ToLower(ifaceName), semver, digest)
}

// Parsed is a decomposed jetstream protocol-version string.
type Parsed struct {
	Interface string
	Semver    Semver
	Digest    string
}

// Parse decomposes a jetstream protocol-version string as produced by
// ProtocolVersion. It returns ok=false for legacy 9P2000/9P2000.L strings,
// which callers should check for separately (IsLegacy).
func Parse(s string) (Parsed, bool) {
	rest := strings.TrimPrefix(s, protoPrefix+"/")
	if rest == s {
		return Parsed{}, false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return Parsed{}, false
	}
	iface, semverDigest := parts[0], parts[1]

	dash := strings.LastIndexByte(semverDigest, '-')
	if dash < 0 {
		return Parsed{}, false
	}
	semverStr, digest := semverDigest[:dash], semverDigest[dash+1:]
	sv, err := ParseSemver(semverStr)
	if err != nil {
		return Parsed{}, false
	}
	return Parsed{Interface: iface, Semver: sv, Digest: digest}, true
}

// IsLegacy reports whether s is one of the reserved 9P interop strings.
func IsLegacy(s string) bool {
	return s == Legacy9P2000 || s == Legacy9P2000L
}

// Semver is a minimal major.minor.patch triple; spec.md's grammar allows an
// optional "+<8hex>" build metadata suffix which, per semver rules, plays no
// part in precedence and is therefore not retained here.
type Semver struct {
	Major, Minor, Patch int
}

func (s Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", s.Major, s.Minor, s.Patch)
}

// Compare returns -1, 0, or 1 as s is less than, equal to, or greater than
// o, by major then minor then patch.
func (s Semver) Compare(o Semver) int {
	for _, pair := range [][2]int{{s.Major, o.Major}, {s.Minor, o.Minor}, {s.Patch, o.Patch}} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Min returns the smaller of s and o by Compare.
func (s Semver) Min(o Semver) Semver {
	if s.Compare(o) <= 0 {
		return s
	}
	return o
}

// ParseSemver parses "major.minor.patch", discarding any "+build" suffix.
func ParseSemver(s string) (Semver, error) {
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("version: malformed semver %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Semver{}, fmt.Errorf("version: malformed semver %q: %w", s, err)
		}
		nums[i] = n
	}
	return Semver{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Negotiate implements the server side of spec.md §4.4: given the client's
// proposed Payload and the server's own (interface name, semver, digest),
// it returns the Payload the server should reply with and whether the
// negotiation succeeded (ok=false means the client should not proceed with
// the interface's user message-type codes).
func Negotiate(client Payload, serverIfaceName, serverSemver, serverDigest string, serverMsize uint32) (reply Payload, ok bool) {
	msize := client.Msize
	if serverMsize < msize {
		msize = serverMsize
	}

	if IsLegacy(client.Version) {
		// Legacy interop: echo back the same reserved string, no digest
		// negotiation applies.
		return Payload{Msize: msize, Version: client.Version}, true
	}

	parsed, isJetstream := Parse(client.Version)
	serverVersion := ProtocolVersion(serverIfaceName, serverSemver, serverDigest)
	if !isJetstream || !strings.EqualFold(parsed.Interface, strings.ToLower(serverIfaceName)) || parsed.Digest != serverDigest {
		return Payload{Msize: msize, Version: serverVersion}, false
	}

	serverSV, err := ParseSemver(serverSemver)
	if err != nil {
		return Payload{Msize: msize, Version: serverVersion}, false
	}
	agreed := parsed.Semver.Min(serverSV)
	return Payload{
		Msize:   msize,
		Version: ProtocolVersion(serverIfaceName, agreed.String(), serverDigest),
	}, true
}
