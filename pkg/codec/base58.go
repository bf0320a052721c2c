package codec

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

var (
	// Base58Bitcoin is the alphabet used by Bitcoin, Solana and Substrate
	Base58Bitcoin = base58.BTCAlphabet
	// Base58Ripple is the alphabet used by the XRP ledger
	Base58Ripple = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")
)

// Base58Encode encodes b with the given alphabet (nil selects Bitcoin).
func Base58Encode(b []byte, alphabet *base58.Alphabet) string {
	if alphabet == nil {
		alphabet = Base58Bitcoin
	}
	return base58.FastBase58EncodingAlphabet(b, alphabet)
}

// Base58Decode decodes s with the given alphabet (nil selects Bitcoin).
func Base58Decode(s string, alphabet *base58.Alphabet) ([]byte, error) {
	if alphabet == nil {
		alphabet = Base58Bitcoin
	}
	if s == "" {
		return nil, fmt.Errorf("%w: base58: empty string", ErrInvalidEncoding)
	}
	out, err := base58.FastBase58DecodingAlphabet(s, alphabet)
	if err != nil {
		return nil, fmt.Errorf("%w: base58: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// Base58CheckEncode appends a 4-byte double-SHA256 checksum and base58 encodes the result.
func Base58CheckEncode(b []byte, alphabet *base58.Alphabet) string {
	payload := make([]byte, 0, len(b)+4)
	payload = append(payload, b...)
	payload = append(payload, checksum(b)...)
	return Base58Encode(payload, alphabet)
}

// Base58CheckDecode decodes s and verifies its checksum.
func Base58CheckDecode(s string, alphabet *base58.Alphabet) ([]byte, error) {
	raw, err := Base58Decode(s, alphabet)
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: base58check: too short", ErrInvalidEncoding)
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, fmt.Errorf("%w: base58check: checksum mismatch", ErrInvalidEncoding)
	}
	return body, nil
}
