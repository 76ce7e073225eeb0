package wire

import "fmt"

// Option represents an optional value: a u8 presence tag (0 absent, 1
// present) followed by the payload when present.
type Option[T any] struct {
	Valid bool
	Value T
}

func Some[T any](v T) Option[T] { return Option[T]{Valid: true, Value: v} }
func None[T any]() Option[T]    { return Option[T]{} }

// EncodeOption writes o using encode to serialize the payload when present.
func EncodeOption[T any](e *Encoder, o Option[T], encode func(*Encoder, T) error) error {
	if !o.Valid {
		return e.U8(0)
	}
	if err := e.U8(1); err != nil {
		return err
	}
	return encode(e, o.Value)
}

// DecodeOption reads an Option[T] written by EncodeOption.
func DecodeOption[T any](d *Decoder, decode func(*Decoder) (T, error)) (Option[T], error) {
	tag, err := d.U8()
	if err != nil {
		return Option[T]{}, err
	}
	switch tag {
	case 0:
		return Option[T]{}, nil
	case 1:
		v, err := decode(d)
		if err != nil {
			return Option[T]{}, err
		}
		return Option[T]{Valid: true, Value: v}, nil
	default:
		return Option[T]{}, wrapInvalid("option tag %d", tag)
	}
}

// OptionByteSize returns the encoded size of o.
func OptionByteSize[T any](o Option[T], size func(T) uint32) uint32 {
	if !o.Valid {
		return 1
	}
	return 1 + size(o.Value)
}

// EncodeSeq writes a u16 count followed by each element via encode.
func EncodeSeq[T any](e *Encoder, seq []T, encode func(*Encoder, T) error) error {
	if len(seq) > MaxSeqLen {
		return wrapInvalid("sequence of %d elements exceeds max %d", len(seq), MaxSeqLen)
	}
	if err := e.U16(uint16(len(seq))); err != nil {
		return err
	}
	for _, v := range seq {
		if err := encode(e, v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSeq reads a Seq[T] written by EncodeSeq.
func DecodeSeq[T any](d *Decoder, decode func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.U16()
	if err != nil {
		return nil, err
	}
	seq := make([]T, 0, n)
	for i := uint16(0); i < n; i++ {
		v, err := decode(d)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

// SeqByteSize returns the encoded size of seq.
func SeqByteSize[T any](seq []T, size func(T) uint32) uint32 {
	var total uint32 = 2
	for _, v := range seq {
		total += size(v)
	}
	return total
}

func wrapInvalid(format string, args ...interface{}) error {
	return &invalidDataError{msg: fmt.Sprintf(format, args...)}
}

type invalidDataError struct{ msg string }

func (e *invalidDataError) Error() string { return "wire: invalid data: " + e.msg }
func (e *invalidDataError) Unwrap() error { return ErrInvalidData }
