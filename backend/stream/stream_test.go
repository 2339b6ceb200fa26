package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/will-hwang/ml-commons/shared/conv"
)

func TestVIntEncoding(t *testing.T) {
	tests := []struct {
		value int
		want  []byte
	}{
		{value: 0, want: []byte{0x00}},
		{value: 1, want: []byte{0x01}},
		{value: 127, want: []byte{0x7f}},
		{value: 128, want: []byte{0x80, 0x01}},
		{value: 300, want: []byte{0xac, 0x02}},
		{value: -1, want: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		out := NewBufferOutput()
		if err := out.WriteVInt(tt.value); err != nil {
			t.Fatalf("WriteVInt(%d): %v", tt.value, err)
		}
		if diff := cmp.Diff(tt.want, out.Bytes()); diff != "" {
			t.Errorf("WriteVInt(%d) bytes mismatch (-want +got):\n%s", tt.value, diff)
		}

		got, err := NewBytesReader(out.Bytes()).ReadVInt()
		if err != nil {
			t.Fatalf("ReadVInt: %v", err)
		}
		if got != tt.value {
			t.Errorf("ReadVInt = %d, want %d", got, tt.value)
		}
	}
}

func TestIntIsBigEndian(t *testing.T) {
	out := NewBufferOutput()
	if err := out.WriteInt(-2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xff, 0xff, 0xff, 0xfe}, out.Bytes()); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	out := NewBufferOutput()
	steps := []error{
		out.WriteString("héllo"),
		out.WriteOptionalString(nil),
		out.WriteOptionalString(conv.Ptr("")),
		out.WriteOptionalInt(conv.Ptr(-1)),
		out.WriteOptionalInt(nil),
		out.WriteBool(true),
		out.WriteInt(1 << 20),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("write step %d: %v", i, err)
		}
	}

	in := NewBytesReader(out.Bytes())

	s, err := in.ReadString()
	if err != nil || s != "héllo" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if os, err := in.ReadOptionalString(); err != nil || os != nil {
		t.Fatalf("absent optional string = %v, %v", os, err)
	}
	if os, err := in.ReadOptionalString(); err != nil || os == nil || *os != "" {
		t.Fatalf("empty optional string = %v, %v", os, err)
	}
	if oi, err := in.ReadOptionalInt(); err != nil || oi == nil || *oi != -1 {
		t.Fatalf("present optional int = %v, %v", oi, err)
	}
	if oi, err := in.ReadOptionalInt(); err != nil || oi != nil {
		t.Fatalf("absent optional int = %v, %v", oi, err)
	}
	if b, err := in.ReadBool(); err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	if v, err := in.ReadInt(); err != nil || v != 1<<20 {
		t.Fatalf("ReadInt = %d, %v", v, err)
	}

	if _, err := in.ReadByte(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("read past end error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		read  func(*Reader) error
		want  error
	}{
		{
			name:  "truncated string",
			input: []byte{0x05, 'a', 'b'},
			read:  func(r *Reader) error { _, err := r.ReadString(); return err },
			want:  io.ErrUnexpectedEOF,
		},
		{
			name:  "truncated int",
			input: []byte{0x00, 0x01},
			read:  func(r *Reader) error { _, err := r.ReadInt(); return err },
			want:  io.ErrUnexpectedEOF,
		},
		{
			name:  "bad boolean",
			input: []byte{0x02},
			read:  func(r *Reader) error { _, err := r.ReadBool(); return err },
			want:  ErrMalformed,
		},
		{
			name:  "overlong vint",
			input: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01},
			read:  func(r *Reader) error { _, err := r.ReadVInt(); return err },
			want:  ErrMalformed,
		},
		{
			name:  "invalid utf8",
			input: []byte{0x02, 0xc3, 0x28},
			read:  func(r *Reader) error { _, err := r.ReadString(); return err },
			want:  ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewBytesReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteStringRejectsInvalidUTF8(t *testing.T) {
	out := NewBufferOutput()
	if err := out.WriteString("q\xff"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want %v", err, ErrMalformed)
	}
	if err := out.WriteOptionalString(conv.Ptr("\xc3\x28")); !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want %v", err, ErrMalformed)
	}

	valid := NewBufferOutput()
	if err := valid.WriteString("héllo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := NewBytesReader(valid.Bytes()).ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "héllo" {
		t.Errorf("ReadString = %q, want héllo", got)
	}
}
