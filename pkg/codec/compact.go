package codec

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

const (
	compactSingleMax = 1<<6 - 1
	compactTwoMax    = 1<<14 - 1
	compactFourMax   = 1<<30 - 1
)

// EncodeCompact encodes v with the SCALE compact integer format.
func EncodeCompact(v uint64) []byte {
	switch {
	case v <= compactSingleMax:
		return []byte{byte(v) << 2}
	case v <= compactTwoMax:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(v<<2)|0b01)
		return out
	case v <= compactFourMax:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(v<<2)|0b10)
		return out
	}
	n := (bits.Len64(v) + 7) / 8
	out := make([]byte, 1+n)
	out[0] = byte(n-4)<<2 | 0b11
	for i := 0; i < n; i++ {
		out[1+i] = byte(v >> (8 * i))
	}
	return out
}

// EncodeCompactBig encodes an unsigned 256-bit value with the SCALE compact integer format.
func EncodeCompactBig(v *uint256.Int) []byte {
	if v.IsUint64() {
		return EncodeCompact(v.Uint64())
	}
	le := v.Bytes32()
	n := (v.BitLen() + 7) / 8
	out := make([]byte, 1+n)
	out[0] = byte(n-4)<<2 | 0b11
	for i := 0; i < n; i++ {
		out[1+i] = le[31-i]
	}
	return out
}

// DecodeCompact decodes a SCALE compact integer that fits in 64 bits and
// returns the value together with the number of bytes consumed.
func DecodeCompact(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: compact: empty input", ErrInvalidEncoding)
	}
	switch b[0] & 0b11 {
	case 0b00:
		return uint64(b[0] >> 2), 1, nil
	case 0b01:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("%w: compact: truncated two-byte value", ErrInvalidEncoding)
		}
		v := uint64(binary.LittleEndian.Uint16(b) >> 2)
		if v <= compactSingleMax {
			return 0, 0, fmt.Errorf("%w: compact: non-canonical two-byte value", ErrInvalidEncoding)
		}
		return v, 2, nil
	case 0b10:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("%w: compact: truncated four-byte value", ErrInvalidEncoding)
		}
		v := uint64(binary.LittleEndian.Uint32(b) >> 2)
		if v <= compactTwoMax {
			return 0, 0, fmt.Errorf("%w: compact: non-canonical four-byte value", ErrInvalidEncoding)
		}
		return v, 4, nil
	}
	n := int(b[0]>>2) + 4
	if n > 8 {
		return 0, 0, fmt.Errorf("%w: compact: value wider than 64 bits", ErrInvalidEncoding)
	}
	if len(b) < 1+n {
		return 0, 0, fmt.Errorf("%w: compact: truncated big-integer value", ErrInvalidEncoding)
	}
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(b[1+i]) << (8 * i)
	}
	if v <= compactFourMax || b[n] == 0 {
		return 0, 0, fmt.Errorf("%w: compact: non-canonical big-integer value", ErrInvalidEncoding)
	}
	return v, 1 + n, nil
}
