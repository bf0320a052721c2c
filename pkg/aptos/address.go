package aptos

import (
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

const (
	addressLen = 32
	// ed25519Scheme is the single-key authentication scheme byte
	ed25519Scheme = 0x00
)

// Address is a 32-byte account address.
type Address [addressLen]byte

func (a *Address) String() string {
	return codec.EncodeHex(a[:], true)
}

func (a *Address) Bytes() []byte {
	return a[:]
}

// ParseAddress accepts 0x-prefixed hex; short forms such as 0x1 are left padded.
func ParseAddress(text string) (*Address, error) {
	body := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	if body == "" || len(body) > 2*addressLen {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not an account address", text)
	}
	if len(body)%2 == 1 {
		body = "0" + body
	}
	raw, err := codec.DecodeHex(body)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	var a Address
	copy(a[addressLen-len(raw):], raw)
	return &a, nil
}

// AddressFromPublicKey is sha3-256(public key || scheme).
func AddressFromPublicKey(publicKey []byte) (*Address, error) {
	if len(publicKey) != keypair.Ed25519.Size() {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte ed25519 key", keypair.Ed25519.Size())
	}
	var a Address
	copy(a[:], hashing.Sha3_256(append(append([]byte(nil), publicKey...), ed25519Scheme)))
	return &a, nil
}
