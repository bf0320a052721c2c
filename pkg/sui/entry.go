package sui

import (
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

// transactionIntent is (scope TransactionData, version V0, app Sui).
var transactionIntent = []byte{0x00, 0x00, 0x00}

// Entry implements coinEntry.ICoinEntry for Sui.
type Entry struct{}

var _ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)

func NewEntry() *Entry {
	return &Entry{}
}

func (e *Entry) ParseAddress(_ *coinEntry.CoinContext, text string, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return ParseAddress(text)
}

func (e *Entry) ParseAddressUnchecked(_ *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	return ParseAddress(text)
}

func (e *Entry) DeriveAddress(_ *coinEntry.CoinContext, publicKey *keypair.PublicKey, _ coinEntry.Derivation, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	if publicKey == nil || publicKey.Type != keypair.Ed25519 {
		return nil, coinEntry.ErrPublicKeyTypeMismatch
	}
	return AddressFromPublicKey(publicKey.Bytes)
}

// intentMessage prefixes the transaction bytes with the transaction intent.
func intentMessage(tx []byte) []byte {
	return append(append([]byte(nil), transactionIntent...), tx...)
}

func (e *Entry) PreImageHashes(_ *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	raw, _, err := buildTransaction(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.Data = intentMessage(raw)
	out.DataHash = hashing.Blake2b256(out.Data)
	return out
}

// SignatureInfo is the serialized user signature: flag || signature || public key.
func SignatureInfo(signature, publicKey []byte) string {
	info := make([]byte, 0, 1+len(signature)+len(publicKey))
	info = append(info, ed25519Flag)
	info = append(info, signature...)
	return codec.Base64Encode(append(info, publicKey...), false)
}

func compile(input *SigningInput, signature, publicKey []byte, out *SigningOutput) error {
	raw, tx, err := buildTransaction(input)
	if err != nil {
		return err
	}
	signer, err := AddressFromPublicKey(publicKey)
	if err != nil {
		return err
	}
	if *signer != tx.Sender {
		return coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "key belongs to %s, transaction sender is %s", signer.String(), tx.Sender.String())
	}
	if err := keypair.VerifyEd25519(publicKey, hashing.Blake2b256(intentMessage(raw)), signature); err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not verify")
	}
	out.UnsignedTx = codec.Base64Encode(raw, false)
	out.Signature = SignatureInfo(signature, publicKey)
	return nil
}

func (e *Entry) Compile(_ *coinEntry.CoinContext, input *SigningInput, signatures [][]byte, publicKeys [][]byte) *SigningOutput {
	out := &SigningOutput{}
	if len(signatures) != 1 || len(publicKeys) != 1 {
		out.SetError(coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected 1 signature and 1 public key, got %d and %d", len(signatures), len(publicKeys)))
		return out
	}
	if err := compile(input, signatures[0], publicKeys[0], out); err != nil {
		out.SetError(err)
	}
	return out
}

func (e *Entry) Sign(_ *coinEntry.CoinContext, input *SigningInput) *SigningOutput {
	out := &SigningOutput{}
	defer keypair.Zero(input.PrivateKey)

	if len(input.PrivateKey) == 0 {
		out.SetError(coinEntry.ErrMissingPrivateKey)
		return out
	}
	key, err := keypair.NewEd25519PrivateKey(input.PrivateKey)
	if err != nil {
		out.SetError(coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid private key"))
		return out
	}
	defer key.Zero()

	raw, _, err := buildTransaction(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	sig := key.Sign(hashing.Blake2b256(intentMessage(raw)))
	if err := compile(input, sig, key.PublicKey(), out); err != nil {
		out.SetError(err)
	}
	return out
}
