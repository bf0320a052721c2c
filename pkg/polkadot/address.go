package polkadot

import (
	"bytes"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

const (
	accountIDLen   = 32
	checksumLen    = 2
	maxSS58Prefix  = 1<<14 - 1
	reservedPrefix = 46
)

var ss58Salt = []byte("SS58PRE")

// Address is an SS58 encoded account id.
type Address struct {
	network uint16
	key     [accountIDLen]byte
}

func (a *Address) Network() uint16 {
	return a.network
}

// Bytes returns the 32-byte account id.
func (a *Address) Bytes() []byte {
	return a.key[:]
}

func (a *Address) String() string {
	payload := append(encodePrefix(a.network), a.key[:]...)
	payload = append(payload, ss58Checksum(payload)...)
	return codec.Base58Encode(payload, nil)
}

func encodePrefix(network uint16) []byte {
	if network < 64 {
		return []byte{byte(network)}
	}
	first := byte((network&0b1111_1100)>>2) | 0b0100_0000
	second := byte(network>>8) | byte(network&0b11)<<6
	return []byte{first, second}
}

func ss58Checksum(payload []byte) []byte {
	h := hashing.Blake2b512(append(append([]byte(nil), ss58Salt...), payload...))
	return h[:checksumLen]
}

// NewAddress wraps a public key for the given network.
func NewAddress(publicKey []byte, network uint16) (*Address, error) {
	if len(publicKey) != accountIDLen {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte public key", accountIDLen)
	}
	if network > maxSS58Prefix || network == reservedPrefix || network == reservedPrefix+1 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "ss58 prefix %d is not usable", network)
	}
	a := &Address{network: network}
	copy(a.key[:], publicKey)
	return a, nil
}

// DecodeAddress parses an SS58 string of any network.
func DecodeAddress(text string) (*Address, error) {
	raw, err := codec.Base58Decode(text, nil)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	if len(raw) == 0 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "empty address")
	}
	var network uint16
	prefixLen := 1
	switch {
	case raw[0] < 64:
		network = uint16(raw[0])
	case raw[0] < 128:
		if len(raw) < 2 {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "truncated address %q", text)
		}
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0b0011_1111
		network = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "invalid ss58 prefix byte %#x", raw[0])
	}
	if len(raw) != prefixLen+accountIDLen+checksumLen {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q has an unexpected length", text)
	}
	body := raw[:prefixLen+accountIDLen]
	if !bytes.Equal(ss58Checksum(body), raw[prefixLen+accountIDLen:]) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidChecksum, "bad checksum in %q", text)
	}
	return NewAddress(body[prefixLen:], network)
}

// ParseAddress decodes text and requires the given network prefix.
func ParseAddress(text string, network uint16) (*Address, error) {
	a, err := DecodeAddress(text)
	if err != nil {
		return nil, err
	}
	if a.network != network {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q belongs to network %d, expected %d", text, a.network, network)
	}
	return a, nil
}

func deriveAddress(publicKey *keypair.PublicKey, network uint16) (*Address, error) {
	if publicKey == nil || publicKey.Type != keypair.Ed25519 {
		return nil, coinEntry.ErrPublicKeyTypeMismatch
	}
	return NewAddress(publicKey.Bytes, network)
}
