package codec

import (
	"encoding/base32"
	"fmt"
)

// Base32Standard is the RFC4648 alphabet
const Base32Standard = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func base32Encoding(alphabet string, padding bool) (*base32.Encoding, error) {
	if alphabet == "" {
		alphabet = Base32Standard
	}
	if len(alphabet) != 32 {
		return nil, fmt.Errorf("%w: base32 alphabet must have 32 characters", ErrInvalidEncoding)
	}
	seen := make(map[rune]struct{}, 32)
	for _, r := range alphabet {
		if r == '=' || r == '\r' || r == '\n' || r > 0x7f {
			return nil, fmt.Errorf("%w: base32 alphabet contains %q", ErrInvalidEncoding, r)
		}
		if _, dup := seen[r]; dup {
			return nil, fmt.Errorf("%w: base32 alphabet repeats %q", ErrInvalidEncoding, r)
		}
		seen[r] = struct{}{}
	}
	enc := base32.NewEncoding(alphabet)
	if !padding {
		enc = enc.WithPadding(base32.NoPadding)
	}
	return enc, nil
}

// Base32Encode encodes b with the given alphabet. An empty alphabet selects RFC4648.
func Base32Encode(b []byte, alphabet string, padding bool) (string, error) {
	enc, err := base32Encoding(alphabet, padding)
	if err != nil {
		return "", err
	}
	return enc.EncodeToString(b), nil
}

// Base32Decode is the inverse of Base32Encode.
func Base32Decode(s string, alphabet string, padding bool) ([]byte, error) {
	enc, err := base32Encoding(alphabet, padding)
	if err != nil {
		return nil, err
	}
	out, err := enc.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base32: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}
