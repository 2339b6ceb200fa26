// Package stream implements the binary encoding used for transport payloads:
// unsigned LEB128 variable-length ints, 4-byte big-endian ints, length
// prefixed UTF-8 strings, and optional values guarded by a presence byte.
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	// MaxStringLength bounds the byte length accepted for a single string.
	MaxStringLength = 16 << 20

	maxVIntBytes = 5
)

var ErrMalformed = errors.New("malformed stream")

//go:generate mockgen -destination=mocks/stream_mock.go -package=mocks . Output,Input
type Output interface {
	WriteByte(b byte) error
	WriteBool(v bool) error
	WriteVInt(v int) error
	WriteInt(v int) error
	WriteString(s string) error
	WriteOptionalString(s *string) error
	WriteOptionalInt(v *int) error
}

type Input interface {
	ReadByte() (byte, error)
	ReadBool() (bool, error)
	ReadVInt() (int, error)
	ReadInt() (int, error)
	ReadString() (string, error)
	ReadOptionalString() (*string, error)
	ReadOptionalInt() (*int, error)
}

// BufferOutput accumulates written values in memory.
type BufferOutput struct {
	buf bytes.Buffer
}

var _ Output = (*BufferOutput)(nil)

func NewBufferOutput() *BufferOutput {
	return &BufferOutput{}
}

func (o *BufferOutput) Bytes() []byte {
	return o.buf.Bytes()
}

func (o *BufferOutput) WriteByte(b byte) error {
	return o.buf.WriteByte(b)
}

func (o *BufferOutput) WriteBool(v bool) error {
	if v {
		return o.buf.WriteByte(1)
	}
	return o.buf.WriteByte(0)
}

// WriteVInt encodes v as an unsigned 32-bit varint, so negative values take
// five bytes.
func (o *BufferOutput) WriteVInt(v int) error {
	if v < -1<<31 || v > 1<<31-1 {
		return fmt.Errorf("vint %d out of int32 range", v)
	}
	_, err := o.buf.Write(protowire.AppendVarint(nil, uint64(uint32(int32(v)))))
	return err
}

func (o *BufferOutput) WriteInt(v int) error {
	if v < -1<<31 || v > 1<<31-1 {
		return fmt.Errorf("int %d out of int32 range", v)
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(int32(v)))
	_, err := o.buf.Write(b[:])
	return err
}

func (o *BufferOutput) WriteString(s string) error {
	if len(s) > MaxStringLength {
		return fmt.Errorf("string of %d bytes exceeds limit of %d", len(s), MaxStringLength)
	}
	// ReadString refuses these, so never write one.
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed)
	}
	if err := o.WriteVInt(len(s)); err != nil {
		return err
	}
	_, err := o.buf.WriteString(s)
	return err
}

func (o *BufferOutput) WriteOptionalString(s *string) error {
	if s == nil {
		return o.WriteBool(false)
	}
	if err := o.WriteBool(true); err != nil {
		return err
	}
	return o.WriteString(*s)
}

func (o *BufferOutput) WriteOptionalInt(v *int) error {
	if v == nil {
		return o.WriteBool(false)
	}
	if err := o.WriteBool(true); err != nil {
		return err
	}
	return o.WriteInt(*v)
}

// Reader decodes values from an io.Reader. A stream that ends in the middle of
// a value yields io.ErrUnexpectedEOF.
type Reader struct {
	r io.Reader
}

var _ Input = (*Reader)(nil)

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func NewBytesReader(b []byte) *Reader {
	return NewReader(bytes.NewReader(b))
}

func (r *Reader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return b[0], nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid boolean byte 0x%02x", ErrMalformed, b)
	}
}

func (r *Reader) ReadVInt() (int, error) {
	raw := make([]byte, 0, maxVIntBytes)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		raw = append(raw, b)
		if b&0x80 == 0 {
			break
		}
		if len(raw) == maxVIntBytes {
			return 0, fmt.Errorf("%w: vint longer than %d bytes", ErrMalformed, maxVIntBytes)
		}
	}

	v, n := protowire.ConsumeVarint(raw)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
	}
	if v > 1<<32-1 {
		return 0, fmt.Errorf("%w: vint overflows 32 bits", ErrMalformed)
	}
	return int(int32(uint32(v))), nil
}

func (r *Reader) ReadInt() (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return int(int32(binary.BigEndian.Uint32(b[:]))), nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadVInt()
	if err != nil {
		return "", err
	}
	if n < 0 || n > MaxStringLength {
		return "", fmt.Errorf("%w: string length %d", ErrMalformed, n)
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", unexpectedEOF(err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed)
	}
	return string(b), nil
}

func (r *Reader) ReadOptionalString() (*string, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Reader) ReadOptionalInt() (*int, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
