// Package codec implements the text and binary encodings shared by every chain:
// hex, base32, base58, base64 and the SCALE compact integer format.
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEncoding is returned (wrapped) by every decoder on malformed input
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// DecodeHex decodes a hex string with an optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: hex: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

// EncodeHex encodes bytes as lowercase hex, optionally with a 0x prefix.
func EncodeHex(b []byte, prefixed bool) string {
	if prefixed {
		return "0x" + hex.EncodeToString(b)
	}
	return hex.EncodeToString(b)
}

// MustDecodeHex is DecodeHex for compile-time constants.
func MustDecodeHex(s string) []byte {
	out, err := DecodeHex(s)
	if err != nil {
		panic(err)
	}
	return out
}
