// Package wire implements the canonical binary encoding described in
// spec.md §3/§4.1: fixed-width little-endian primitives, length-prefixed
// strings and byte blobs, counted sequences, tagged optionals, and
// struct/union field concatenation in declaration order.
//
// Every encodable type implements Value: ByteSize reports the exact encoded
// length, Encode writes exactly that many bytes, and a matching Decode
// function (generated per type, since Go has no return-type polymorphism)
// consumes exactly that many bytes on success.
package wire

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrInvalidData is returned when the bytes on the wire cannot represent a
// value of the expected type: a bad Option tag, an out-of-range union
// discriminant, or a String that isn't valid UTF-8.
var ErrInvalidData = errors.New("wire: invalid data")

// Value is implemented by every generated struct and union body.
type Value interface {
	ByteSize() uint32
	Encode(e *Encoder) error
}

// Encoder writes primitive wire values to an underlying io.Writer.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) write(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) U8(v uint8) error  { return e.write([]byte{v}) }
func (e *Encoder) I8(v int8) error   { return e.U8(uint8(v)) }
func (e *Encoder) Bool(v bool) error {
	if v {
		return e.U8(1)
	}
	return e.U8(0)
}

func (e *Encoder) U16(v uint16) error {
	return e.write([]byte{byte(v), byte(v >> 8)})
}

func (e *Encoder) I16(v int16) error { return e.U16(uint16(v)) }

func (e *Encoder) U32(v uint32) error {
	return e.write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (e *Encoder) I32(v int32) error { return e.U32(uint32(v)) }

func (e *Encoder) U64(v uint64) error {
	return e.write([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

func (e *Encoder) I64(v int64) error { return e.U64(uint64(v)) }

// String writes a UTF-8 string as a u16 length followed by its bytes. The
// caller is responsible for ensuring len(s) <= MaxStringLen (ByteSize of an
// over-long string would silently wrap were this not checked elsewhere by
// convention); StringByteSize is the place to check before calling.
func (e *Encoder) String(s string) error {
	if err := e.U16(uint16(len(s))); err != nil {
		return err
	}
	return e.write([]byte(s))
}

// Bytes writes a byte blob as a u32 length followed by the raw bytes.
func (e *Encoder) Bytes(b []byte) error {
	if err := e.U32(uint32(len(b))); err != nil {
		return err
	}
	return e.write(b)
}

// SystemTime writes milliseconds-since-epoch as a u64.
func (e *Encoder) SystemTime(millis uint64) error { return e.U64(millis) }

const (
	MaxStringLen = 1<<16 - 1
	MaxSeqLen    = 1<<16 - 1
)

// StringByteSize returns the encoded size of s, or an error if s is too
// long to represent in a u16-prefixed String.
func StringByteSize(s string) (uint32, error) {
	if len(s) > MaxStringLen {
		return 0, fmt.Errorf("wire: string of %d bytes exceeds max %d", len(s), MaxStringLen)
	}
	return 2 + uint32(len(s)), nil
}

// BytesByteSize returns the encoded size of b.
func BytesByteSize(b []byte) uint32 { return 4 + uint32(len(b)) }

// Decoder reads primitive wire values from an underlying io.Reader.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

func (d *Decoder) read(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) I8() (int8, error) {
	v, err := d.U8()
	return int8(v), err
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, fmt.Errorf("%w: bool tag %d", ErrInvalidData, v)
	}
	return v == 1, nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func (d *Decoder) I16() (int16, error) {
	v, err := d.U16()
	return int16(v), err
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (d *Decoder) I32() (int32, error) {
	v, err := d.U32()
	return int32(v), err
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

func (d *Decoder) I64() (int64, error) {
	v, err := d.U64()
	return int64(v), err
}

func (d *Decoder) String() (string, error) {
	n, err := d.U16()
	if err != nil {
		return "", err
	}
	b, err := d.read(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string is not valid utf-8", ErrInvalidData)
	}
	return string(b), nil
}

func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	return d.read(int(n))
}

func (d *Decoder) SystemTime() (uint64, error) { return d.U64() }
