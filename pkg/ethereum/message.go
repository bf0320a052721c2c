package ethereum

import (
	"bytes"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignMessage returns the 0x-prefixed EIP-191 personal_sign signature, v in {27, 28}.
func (e *Entry) SignMessage(_ *coinEntry.CoinContext, privateKey []byte, message string) (string, error) {
	key, err := keypair.NewSecp256k1PrivateKey(privateKey)
	if err != nil {
		return "", coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid private key")
	}
	defer key.Zero()

	sig, err := key.SignCompact(accounts.TextHash([]byte(message)))
	if err != nil {
		return "", coinEntry.WrapError(coinEntry.ErrorInternal, err, "signing failed")
	}
	sig[64] += 27
	return codec.EncodeHex(sig, true), nil
}

// VerifyMessage checks a personal_sign signature against a secp256k1 public key.
func (e *Entry) VerifyMessage(_ *coinEntry.CoinContext, publicKey []byte, message string, signature string) bool {
	sig, err := codec.DecodeHex(signature)
	if err != nil {
		return false
	}
	sig, err = normalizeSignature(sig)
	if err != nil {
		return false
	}
	recovered, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return false
	}
	expected, err := AddressFromPublicKey(publicKey)
	if err != nil {
		return false
	}
	return bytes.Equal(crypto.PubkeyToAddress(*recovered).Bytes(), expected.Bytes())
}
