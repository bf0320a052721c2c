package solana

import (
	"errors"
	"fmt"
)

var (
	// ErrShortVec is returned for malformed compact-u16 lengths
	ErrShortVec = errors.New("short_vec: invalid length")
)

const maxShortVecLen = 0xffff

// AppendShortVecLen appends n as a compact-u16.
func AppendShortVecLen(out []byte, n int) ([]byte, error) {
	if n < 0 || n > maxShortVecLen {
		return nil, fmt.Errorf("%w: %d", ErrShortVec, n)
	}
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b), nil
		}
		out = append(out, b|0x80)
	}
}

// DecodeShortVecLen reads a canonical compact-u16 and returns it with the bytes consumed.
func DecodeShortVecLen(b []byte) (int, int, error) {
	var v uint32
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("%w: truncated", ErrShortVec)
		}
		elem := b[i]
		if i > 0 && elem == 0 {
			return 0, 0, fmt.Errorf("%w: alias", ErrShortVec)
		}
		v |= uint32(elem&0x7f) << (7 * i)
		if elem&0x80 == 0 {
			if v > maxShortVecLen {
				return 0, 0, fmt.Errorf("%w: overflow", ErrShortVec)
			}
			return int(v), i + 1, nil
		}
		if i == 2 {
			return 0, 0, fmt.Errorf("%w: too long", ErrShortVec)
		}
	}
	return 0, 0, fmt.Errorf("%w: too long", ErrShortVec)
}
