package wireerr

import (
	ninep "github.com/Harvey-OS/ninep/protocol"

	"github.com/sandia-minimega/jetstream/wire"
)

// Kind is the normalized taxonomy a legacy numeric errno maps onto. Only
// the kinds below are defined; there are no connection, would-block,
// timed-out or broken-pipe kinds, and every code outside legacyErrno
// maps to KindOther.
type Kind string

const (
	KindFileNotFound     Kind = "file-not-found"
	KindPermissionDenied Kind = "permission-denied"
	KindAlreadyExists    Kind = "already-exists"
	KindIO               Kind = "io"
	KindInvalidInput     Kind = "invalid-input"
	KindNotDirectory     Kind = "not-directory"
	KindOther            Kind = "other"
)

// legacyErrno maps the well-known 9P2000 errno values (carried here via
// Harvey-OS/ninep/protocol's reserved constants, since jetstream's legacy
// interop path targets the same peers that protocol package speaks to) onto
// Kind. Codes absent from this table normalize to KindOther.
var legacyErrno = map[uint32]Kind{
	uint32(ninep.EPERM):   KindPermissionDenied,
	uint32(ninep.ENOENT):  KindFileNotFound,
	uint32(ninep.EIO):     KindIO,
	uint32(ninep.EACCES):  KindPermissionDenied,
	uint32(ninep.EEXIST):  KindAlreadyExists,
	uint32(ninep.ENOTDIR): KindNotDirectory,
	uint32(ninep.EINVAL):  KindInvalidInput,
}

// FromErrno normalizes a legacy numeric errno to a Kind.
func FromErrno(code uint32) Kind {
	if k, ok := legacyErrno[code]; ok {
		return k
	}
	return KindOther
}

// errnoForKind is the inverse of legacyErrno, used when a rich Error's Code
// needs to be downgraded to a legacy numeric frame for a 9P2000/9P2000.L
// peer. Kinds with no corresponding errno fall back to the string variant.
var errnoForKind = map[Kind]uint32{
	KindPermissionDenied: uint32(ninep.EACCES),
	KindFileNotFound:     uint32(ninep.ENOENT),
	KindIO:               uint32(ninep.EIO),
	KindAlreadyExists:    uint32(ninep.EEXIST),
	KindNotDirectory:     uint32(ninep.ENOTDIR),
	KindInvalidInput:     uint32(ninep.EINVAL),
}

// FrameVariant discriminates the ErrorFrame tagged union (spec.md §6).
type FrameVariant uint8

const (
	VariantRichError FrameVariant = iota
	VariantLegacyRlerror
	VariantLegacyRerror
)

// ErrorFrame is the tagged union carried by an error-carrying R-frame:
// {RichError, LegacyRlerror{ecode:u32}, LegacyRerror{ename:String}}.
type ErrorFrame struct {
	Variant FrameVariant
	Rich    *Error
	Ecode   uint32
	Ename   string
}

// RichErrorFrame wraps e as the preferred (message-type 5) variant.
func RichErrorFrame(e *Error) ErrorFrame {
	return ErrorFrame{Variant: VariantRichError, Rich: e}
}

// AsLegacyErrno downgrades e to a numeric errno frame if e.Code maps onto a
// known legacy code; ok is false when no such mapping exists, in which case
// the caller should fall back to a LegacyRerror (free-form string) instead,
// per spec.md §9's "unknown codes map to other".
func (e *Error) AsLegacyErrno() (ErrorFrame, bool) {
	if !e.Code.Valid {
		return ErrorFrame{}, false
	}
	code, ok := errnoForKind[Kind(e.Code.Value)]
	if !ok {
		return ErrorFrame{}, false
	}
	return ErrorFrame{Variant: VariantLegacyRlerror, Ecode: code}, true
}

// AsLegacyString downgrades e to the free-form legacy string variant.
func (e *Error) AsLegacyString() ErrorFrame {
	return ErrorFrame{Variant: VariantLegacyRerror, Ename: e.Error()}
}

func (f ErrorFrame) ByteSize() uint32 {
	switch f.Variant {
	case VariantRichError:
		return 1 + f.Rich.ByteSize()
	case VariantLegacyRlerror:
		return 1 + 4
	case VariantLegacyRerror:
		size, _ := wire.StringByteSize(f.Ename)
		return 1 + size
	default:
		return 1
	}
}

func (f ErrorFrame) Encode(e *wire.Encoder) error {
	if err := e.U8(uint8(f.Variant)); err != nil {
		return err
	}
	switch f.Variant {
	case VariantRichError:
		return f.Rich.Encode(e)
	case VariantLegacyRlerror:
		return e.U32(f.Ecode)
	case VariantLegacyRerror:
		return e.String(f.Ename)
	default:
		return wire.ErrInvalidData
	}
}

// DecodeErrorFrame reads an ErrorFrame written by Encode, accepting all
// three variants (§9: "they must be able to accept legacy frames").
func DecodeErrorFrame(d *wire.Decoder) (ErrorFrame, error) {
	tag, err := d.U8()
	if err != nil {
		return ErrorFrame{}, err
	}
	switch FrameVariant(tag) {
	case VariantRichError:
		rich, err := Decode(d)
		if err != nil {
			return ErrorFrame{}, err
		}
		return ErrorFrame{Variant: VariantRichError, Rich: rich}, nil
	case VariantLegacyRlerror:
		code, err := d.U32()
		if err != nil {
			return ErrorFrame{}, err
		}
		return ErrorFrame{Variant: VariantLegacyRlerror, Ecode: code}, nil
	case VariantLegacyRerror:
		name, err := d.String()
		if err != nil {
			return ErrorFrame{}, err
		}
		return ErrorFrame{Variant: VariantLegacyRerror, Ename: name}, nil
	default:
		return ErrorFrame{}, wire.ErrInvalidData
	}
}

// AsError converts any ErrorFrame variant back into a rich *Error, mapping
// legacy errno codes through FromErrno.
func (f ErrorFrame) AsError() *Error {
	switch f.Variant {
	case VariantRichError:
		return f.Rich
	case VariantLegacyRlerror:
		return New(string(FromErrno(f.Ecode))).WithCode(string(FromErrno(f.Ecode)))
	case VariantLegacyRerror:
		return New(f.Ename)
	default:
		return New("unknown error frame variant")
	}
}
