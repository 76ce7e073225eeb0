package codegen

const headerTemplate = `// Code generated by jsgen from {{ .SourceFile }}. DO NOT EDIT.

package {{ .Package }}

import (
	"context"
	"fmt"
	"io"

	"github.com/sandia-minimega/jetstream/frame"
	"github.com/sandia-minimega/jetstream/rpc"
	"github.com/sandia-minimega/jetstream/wire"
	"github.com/sandia-minimega/jetstream/wireerr"
)

// ProtocolVersion is the negotiated version string for {{ .Interface.Name }}
// at semver {{ .Interface.Semver }}.
const ProtocolVersion = "{{ .ProtocolVersionLiteral }}"

// Digest is the interface-text digest baked into ProtocolVersion.
const Digest = "{{ .DigestLiteral }}"

// Message-type constants for {{ .Interface.Name }}, assigned per-method at
// UserBase+2*i (T) / UserBase+2*i+1 (R).
const (
{{- range $i, $m := .Interface.Methods }}
	T{{ $m.Name }} uint8 = {{ tType $i }}
	R{{ $m.Name }} uint8 = {{ rType $i }}
{{- end }}
)
`

const methodTypesTemplate = `
{{ range $i, $m := .Interface.Methods }}
// {{ $m.Name }}Request is the request payload for {{ $.Interface.Name }}.{{ $m.Name }}:
// the {{ $i }}-th variant of the interface's Tmessage tagged union. The
// variant is carried by the frame's own message-type byte (T{{ $m.Name }}),
// so — per S4 — the body has no additional union discriminant.
type {{ $m.Name }}Request struct {
{{- range $p := $m.Params }}
	{{ paramGoName $p }} {{ paramGoType $p }}
{{- end }}
}

func (r {{ $m.Name }}Request) ByteSize() uint32 {
	var n uint32
{{- range $p := $m.Params }}
	n += {{ paramByteSize $p }}
{{- end }}
	return n
}

func (r {{ $m.Name }}Request) Encode(e *wire.Encoder) error {
{{- range $p := $m.Params }}
	if err := {{ paramEncode $p }}; err != nil {
		return err
	}
{{- end }}
	return nil
}

func Decode{{ $m.Name }}Request(d *wire.Decoder) ({{ $m.Name }}Request, error) {
	var r {{ $m.Name }}Request
	var err error
{{- range $p := $m.Params }}
	if r.{{ paramGoName $p }}, err = {{ paramDecode $p }}; err != nil {
		return {{ $m.Name }}Request{}, err
	}
{{- end }}
	return r, nil
}

// {{ $m.Name }}Response is the response payload for {{ $.Interface.Name }}.{{ $m.Name }}:
// the {{ $i }}-th variant of the interface's Rmessage tagged union.
type {{ $m.Name }}Response struct {
	Value {{ resultGoType $m }}
}

func (r {{ $m.Name }}Response) ByteSize() uint32 {
	return 1 + {{ resultByteSize $m }}
}

func (r {{ $m.Name }}Response) Encode(e *wire.Encoder) error {
	if err := e.U8({{ $i }}); err != nil {
		return err
	}
	return {{ resultEncode $m }}
}

func Decode{{ $m.Name }}Response(d *wire.Decoder) ({{ $m.Name }}Response, error) {
	var r {{ $m.Name }}Response
	disc, err := d.U8()
	if err != nil {
		return {{ $m.Name }}Response{}, err
	}
	if disc != {{ $i }} {
		return {{ $m.Name }}Response{}, fmt.Errorf("%w: Rmessage discriminant %d, want {{ $i }}", wire.ErrInvalidData, disc)
	}
	r.Value, err = {{ resultDecode $m }}
	return r, err
}
{{ end }}
`

const serviceTemplate = `
// {{ .Interface.Name }}Server is the server-side interface generated from the
// {{ .Interface.Name }} schema. Implementations are wrapped by
// New{{ .Interface.Name }}Service for use with rpc.Run or a router.Router.
type {{ .Interface.Name }}Server interface {
{{- range $m := .Interface.Methods }}
	{{ $m.Name }}(ctx context.Context, req {{ $m.Name }}Request) ({{ $m.Name }}Response, error)
{{- end }}
}

type {{ .Interface.Name }}Service struct {
	Impl {{ .Interface.Name }}Server
}

func New{{ .Interface.Name }}Service(impl {{ .Interface.Name }}Server) *{{ .Interface.Name }}Service {
	return &{{ .Interface.Name }}Service{Impl: impl}
}

func (s *{{ .Interface.Name }}Service) ProtocolVersion() string { return ProtocolVersion }

// Accept drives the server dispatch loop over stream once version
// negotiation has matched this service, satisfying router.Handler.
func (s *{{ .Interface.Name }}Service) Accept(ctx context.Context, stream io.ReadWriteCloser) error {
	return rpc.Run(ctx, s, stream)
}

// RPC dispatches a single request Frame to the matching method and returns
// the response Frame, satisfying rpc.Service.
func (s *{{ .Interface.Name }}Service) RPC(ctx context.Context, req frame.Frame) (frame.Frame, error) {
	switch req.Type {
{{- range $m := .Interface.Methods }}
	case T{{ $m.Name }}:
		decoded, err := Decode{{ $m.Name }}Request(wire.NewDecoder(bytesReader(req.Body)))
		if err != nil {
			return errorFrame(req.Tag, wireerr.FromGo(err))
		}
		resp, err := s.Impl.{{ $m.Name }}(ctx, decoded)
		if err != nil {
			return errorFrame(req.Tag, wireerr.FromGo(err))
		}
		return encodeFrame(R{{ $m.Name }}, req.Tag, resp)
{{- end }}
	default:
		return errorFrame(req.Tag, wireerr.New("unknown message type").WithCode("jetstream.unknown-method"))
	}
}
`

const clientTemplate = `
// {{ .Interface.Name }}Client is the generated client stub; it performs one
// sequential request/response per call over the supplied rpc.Caller.
type {{ .Interface.Name }}Client struct {
	Caller rpc.Caller
}

func New{{ .Interface.Name }}Client(c rpc.Caller) *{{ .Interface.Name }}Client {
	return &{{ .Interface.Name }}Client{Caller: c}
}
{{ range $m := .Interface.Methods }}
func (c *{{ $.Interface.Name }}Client) {{ $m.Name }}(ctx context.Context, req {{ $m.Name }}Request) ({{ $m.Name }}Response, error) {
	reqFrame, err := encodeFrame(T{{ $m.Name }}, 0, req)
	if err != nil {
		return {{ $m.Name }}Response{}, err
	}
	respFrame, err := c.Caller.Call(ctx, reqFrame)
	if err != nil {
		return {{ $m.Name }}Response{}, err
	}
	if respFrame.Type == frame.RJetStreamError || respFrame.Type == frame.Rlerror || respFrame.Type == frame.Rerror {
		ef, err := wireerr.DecodeErrorFrame(wire.NewDecoder(bytesReader(respFrame.Body)))
		if err != nil {
			return {{ $m.Name }}Response{}, err
		}
		return {{ $m.Name }}Response{}, ef.AsError()
	}
	if respFrame.Type != R{{ $m.Name }} {
		return {{ $m.Name }}Response{}, wireerr.ErrInvalidResponse
	}
	return Decode{{ $m.Name }}Response(wire.NewDecoder(bytesReader(respFrame.Body)))
}
{{ end }}
`

const footerTemplate = `
func bytesReader(b []byte) *byteReader { return &byteReader{b: b} }

type byteReader struct {
	b []byte
	i int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}

func encodeFrame(typ uint8, tag uint16, v wire.Value) (frame.Frame, error) {
	var buf byteWriter
	if err := v.Encode(wire.NewEncoder(&buf)); err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Type: typ, Tag: tag, Body: buf.b}, nil
}

func errorFrame(tag uint16, e *wireerr.Error) (frame.Frame, error) {
	ef := wireerr.RichErrorFrame(e)
	return encodeFrame(frame.RJetStreamError, tag, ef)
}

type byteWriter struct{ b []byte }

func (w *byteWriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func mustStringSize(s string) uint32 {
	n, _ := wire.StringByteSize(s)
	return n
}
`
