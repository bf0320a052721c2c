package sui

import (
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

const (
	addressLen = 32
	// ed25519Flag is the signature scheme flag of Ed25519
	ed25519Flag = 0x00
)

// Address is a 32-byte account or object id.
type Address [addressLen]byte

func (a *Address) String() string {
	return codec.EncodeHex(a[:], true)
}

func (a *Address) Bytes() []byte {
	return a[:]
}

// ParseAddress accepts 64 hex digits with an optional 0x prefix.
func ParseAddress(text string) (*Address, error) {
	body := strings.TrimPrefix(text, "0x")
	if len(body) != 2*addressLen {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not a 32-byte hex address", text)
	}
	raw, err := codec.DecodeHex(body)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	var a Address
	copy(a[:], raw)
	return &a, nil
}

// AddressFromPublicKey is blake2b-256(flag || public key).
func AddressFromPublicKey(publicKey []byte) (*Address, error) {
	if len(publicKey) != keypair.Ed25519.Size() {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte ed25519 key", keypair.Ed25519.Size())
	}
	var a Address
	copy(a[:], hashing.Blake2b256(append([]byte{ed25519Flag}, publicKey...)))
	return &a, nil
}
