package ethereum

import (
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Address is a 20-byte account address rendered with the EIP-55 checksum.
type Address struct {
	addr common.Address
}

func (a *Address) String() string { return a.addr.Hex() }

func (a *Address) Bytes() []byte { return a.addr.Bytes() }

// ParseAddress accepts all-lowercase, all-uppercase or correctly checksummed addresses.
func ParseAddress(text string) (*Address, error) {
	if !common.IsHexAddress(text) || !strings.HasPrefix(text, "0x") {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not a hex address", text)
	}
	addr := common.HexToAddress(text)
	body := text[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && addr.Hex() != text {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidChecksum, "%q has an invalid EIP-55 checksum", text)
	}
	return &Address{addr: addr}, nil
}

// AddressFromPublicKey accepts compressed or uncompressed secp256k1 keys.
func AddressFromPublicKey(publicKey []byte) (*Address, error) {
	if len(publicKey) == 33 {
		pub, err := crypto.DecompressPubkey(publicKey)
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid public key")
		}
		return &Address{addr: crypto.PubkeyToAddress(*pub)}, nil
	}
	pub, err := crypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid public key")
	}
	return &Address{addr: crypto.PubkeyToAddress(*pub)}, nil
}

func deriveAddress(publicKey *keypair.PublicKey) (*Address, error) {
	if publicKey.Type != keypair.Secp256k1 && publicKey.Type != keypair.Secp256k1Extended {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a secp256k1 public key, got %s", publicKey.Type)
	}
	return AddressFromPublicKey(publicKey.Bytes)
}
