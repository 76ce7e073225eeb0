// Package wireerr implements the rich, wire-encodable diagnostic value and
// the error-frame tagged union described in spec.md §4.2/§7: a free-form
// message, an optional machine code, severity, help text, URL, and labeled
// spans, plus interop with legacy 9P-style numeric/string errors.
package wireerr

import (
	"fmt"

	"github.com/sandia-minimega/jetstream/wire"
)

// Severity is the trace/debug/info/warn/error scale of a rich Error (a
// separate scale from internal/log.Level, which has no trace level and
// adds fatal); it is carried on the wire as an Option so absence is
// distinguishable from the lowest severity.
type Severity uint8

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "trace"
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// Span is a labeled byte-offset range into a source, used to point a rich
// error at the part of a request that triggered it.
type Span struct {
	Offset uint64
	Length uint64
	Label  string
}

func (s Span) ByteSize() uint32 {
	size, _ := wire.StringByteSize(s.Label)
	return 8 + 8 + size
}

func (s Span) Encode(e *wire.Encoder) error {
	if err := e.U64(s.Offset); err != nil {
		return err
	}
	if err := e.U64(s.Length); err != nil {
		return err
	}
	return e.String(s.Label)
}

func DecodeSpan(d *wire.Decoder) (Span, error) {
	var s Span
	var err error
	if s.Offset, err = d.U64(); err != nil {
		return Span{}, err
	}
	if s.Length, err = d.U64(); err != nil {
		return Span{}, err
	}
	if s.Label, err = d.String(); err != nil {
		return Span{}, err
	}
	return s, nil
}

// Error is the rich, wire-encodable diagnostic value of spec.md §4.2. It
// implements the standard error interface so it can flow through ordinary
// Go error handling on either side of the wire boundary.
type Error struct {
	Message  string
	Code     wire.Option[string]
	Severity wire.Option[Severity]
	Help     wire.Option[string]
	URL      wire.Option[string]
	Spans    []Span
}

// New creates a bare Error with only a message, matching the teacher's
// convention of cheap, message-only errors for the common case.
func New(message string) *Error { return &Error{Message: message} }

// Newf is New with fmt.Sprintf formatting.
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

func (e *Error) WithCode(code string) *Error {
	e.Code = wire.Some(code)
	return e
}

func (e *Error) WithSeverity(sev Severity) *Error {
	e.Severity = wire.Some(sev)
	return e
}

func (e *Error) WithHelp(help string) *Error {
	e.Help = wire.Some(help)
	return e
}

func (e *Error) WithURL(url string) *Error {
	e.URL = wire.Some(url)
	return e
}

func (e *Error) WithSpan(span Span) *Error {
	e.Spans = append(e.Spans, span)
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code.Valid {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code.Value)
	}
	return e.Message
}

// FromGo wraps an arbitrary Go error as a rich Error, preserving an
// existing *Error unchanged.
func FromGo(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(err.Error())
}

func (e *Error) ByteSize() uint32 {
	msgSize, _ := wire.StringByteSize(e.Message)
	size := msgSize
	size += wire.OptionByteSize(e.Code, func(s string) uint32 {
		n, _ := wire.StringByteSize(s)
		return n
	})
	size += wire.OptionByteSize(e.Severity, func(Severity) uint32 { return 1 })
	size += wire.OptionByteSize(e.Help, func(s string) uint32 {
		n, _ := wire.StringByteSize(s)
		return n
	})
	size += wire.OptionByteSize(e.URL, func(s string) uint32 {
		n, _ := wire.StringByteSize(s)
		return n
	})
	size += wire.SeqByteSize(e.Spans, func(s Span) uint32 { return s.ByteSize() })
	return size
}

func (e *Error) Encode(enc *wire.Encoder) error {
	if err := enc.String(e.Message); err != nil {
		return err
	}
	if err := wire.EncodeOption(enc, e.Code, func(e *wire.Encoder, s string) error { return e.String(s) }); err != nil {
		return err
	}
	if err := wire.EncodeOption(enc, e.Severity, func(e *wire.Encoder, s Severity) error { return e.U8(uint8(s)) }); err != nil {
		return err
	}
	if err := wire.EncodeOption(enc, e.Help, func(e *wire.Encoder, s string) error { return e.String(s) }); err != nil {
		return err
	}
	if err := wire.EncodeOption(enc, e.URL, func(e *wire.Encoder, s string) error { return e.String(s) }); err != nil {
		return err
	}
	return wire.EncodeSeq(enc, e.Spans, func(e *wire.Encoder, s Span) error { return s.Encode(e) })
}

func Decode(d *wire.Decoder) (*Error, error) {
	e := &Error{}
	var err error
	if e.Message, err = d.String(); err != nil {
		return nil, err
	}
	if e.Code, err = wire.DecodeOption(d, func(d *wire.Decoder) (string, error) { return d.String() }); err != nil {
		return nil, err
	}
	if e.Severity, err = wire.DecodeOption(d, func(d *wire.Decoder) (Severity, error) {
		v, err := d.U8()
		return Severity(v), err
	}); err != nil {
		return nil, err
	}
	if e.Help, err = wire.DecodeOption(d, func(d *wire.Decoder) (string, error) { return d.String() }); err != nil {
		return nil, err
	}
	if e.URL, err = wire.DecodeOption(d, func(d *wire.Decoder) (string, error) { return d.String() }); err != nil {
		return nil, err
	}
	if e.Spans, err = wire.DecodeSeq(d, DecodeSpan); err != nil {
		return nil, err
	}
	return e, nil
}
