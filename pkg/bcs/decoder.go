package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrUnexpectedEOF is returned when the input ends inside a value
	ErrUnexpectedEOF = errors.New("bcs: unexpected end of input")
	// ErrNonCanonical is returned for over-long ULEB128 values and invalid booleans
	ErrNonCanonical = errors.New("bcs: non-canonical encoding")
)

// Decoder reads BCS values from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining is the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Finish fails if unread bytes remain.
func (d *Decoder) Finish() error {
	if d.Remaining() != 0 {
		return fmt.Errorf("bcs: %d trailing bytes", d.Remaining())
	}
	return nil
}

func (d *Decoder) FixedBytes(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.FixedBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	if v > 1 {
		return false, fmt.Errorf("%w: bool %d", ErrNonCanonical, v)
	}
	return v == 1, nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.FixedBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.FixedBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.FixedBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ULEB128 reads a canonical unsigned LEB128 value that fits in 32 bits.
func (d *Decoder) ULEB128() (uint32, error) {
	var v uint64
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := d.U8()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift > 0 && b == 0 {
				return 0, fmt.Errorf("%w: uleb128 trailing zero", ErrNonCanonical)
			}
			if v > 0xffffffff {
				return 0, fmt.Errorf("%w: uleb128 overflow", ErrNonCanonical)
			}
			return uint32(v), nil
		}
	}
	return 0, fmt.Errorf("%w: uleb128 too long", ErrNonCanonical)
}

// Length reads a sequence length and checks it against the remaining input.
func (d *Decoder) Length() (int, error) {
	n, err := d.ULEB128()
	if err != nil {
		return 0, err
	}
	if n > MaxSequenceLength {
		return 0, fmt.Errorf("%w: %d", ErrSequenceTooLong, n)
	}
	return int(n), nil
}

func (d *Decoder) Variant() (uint32, error) {
	return d.ULEB128()
}

// Bytes reads a length prefixed byte vector.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Length()
	if err != nil {
		return nil, err
	}
	return d.FixedBytes(n)
}

func (d *Decoder) Str() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid utf-8 string", ErrNonCanonical)
	}
	return string(b), nil
}

// Option reads the Some/None tag.
func (d *Decoder) Option() (bool, error) {
	return d.Bool()
}

// DecodeSequence reads a length prefixed vector with decode called once per element.
func DecodeSequence[T any](d *Decoder, decode func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.Length()
	if err != nil {
		return nil, err
	}
	if n > d.Remaining() {
		return nil, ErrUnexpectedEOF
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
