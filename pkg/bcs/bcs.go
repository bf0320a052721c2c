// Package bcs implements the Binary Canonical Serialization writer used by Move based
// chains (Aptos, Sui). Integers are little endian, sequence lengths and enum variants
// are ULEB128.
package bcs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	// ErrSequenceTooLong is returned for sequences above the BCS length limit
	ErrSequenceTooLong = errors.New("bcs: sequence too long")
)

// MaxSequenceLength is the largest length BCS accepts.
const MaxSequenceLength = 1<<31 - 1

// Marshaler is implemented by values that know their own BCS layout.
type Marshaler interface {
	MarshalBCS(e *Encoder) error
}

// Encoder appends BCS values to an internal buffer.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) U8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.U8(1)
	} else {
		e.U8(0)
	}
}

func (e *Encoder) U16(v uint16) {
	e.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (e *Encoder) U32(v uint32) {
	e.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (e *Encoder) U64(v uint64) {
	e.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

// U128 writes the low 128 bits of v.
func (e *Encoder) U128(v *uint256.Int) {
	b := v.Bytes32()
	for i := 31; i >= 16; i-- {
		e.buf.WriteByte(b[i])
	}
}

func (e *Encoder) U256(v *uint256.Int) {
	b := v.Bytes32()
	for i := 31; i >= 0; i-- {
		e.buf.WriteByte(b[i])
	}
}

// ULEB128 writes an unsigned LEB128 value.
func (e *Encoder) ULEB128(v uint32) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// Length writes a sequence length.
func (e *Encoder) Length(n int) error {
	if n < 0 || n > MaxSequenceLength {
		return fmt.Errorf("%w: %d", ErrSequenceTooLong, n)
	}
	e.ULEB128(uint32(n))
	return nil
}

// Variant writes an enum discriminant.
func (e *Encoder) Variant(index uint32) {
	e.ULEB128(index)
}

// FixedBytes writes b without a length prefix (fixed size arrays, addresses).
func (e *Encoder) FixedBytes(b []byte) {
	e.buf.Write(b)
}

// WriteBytes writes a length prefixed byte vector.
func (e *Encoder) WriteBytes(b []byte) error {
	if err := e.Length(len(b)); err != nil {
		return err
	}
	e.buf.Write(b)
	return nil
}

// Str writes a length prefixed UTF-8 string.
func (e *Encoder) Str(s string) error {
	return e.WriteBytes([]byte(s))
}

// Value encodes a Marshaler.
func (e *Encoder) Value(v Marshaler) error {
	return v.MarshalBCS(e)
}

// Option writes None for a nil value and Some(v) otherwise.
func (e *Encoder) Option(v Marshaler) error {
	if v == nil {
		e.U8(0)
		return nil
	}
	e.U8(1)
	return v.MarshalBCS(e)
}

// Sequence writes a length prefixed vector of Marshalers.
func Sequence[T Marshaler](e *Encoder, items []T) error {
	if err := e.Length(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := item.MarshalBCS(e); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes v into a fresh buffer.
func Marshal(v Marshaler) ([]byte, error) {
	e := NewEncoder()
	if err := v.MarshalBCS(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// U64Bytes returns the BCS encoding of a u64, the usual form of a Move call argument.
func U64Bytes(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
