package polkadot

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Entry implements coinEntry.ICoinEntry for Substrate networks.
type Entry struct{}

var _ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)

func NewEntry() *Entry {
	return &Entry{}
}

// network resolves the SS58 prefix from the override or the coin context.
func network(ctx *coinEntry.CoinContext, prefix *coinEntry.AddressPrefix) uint16 {
	if prefix != nil && prefix.SS58 != nil {
		return *prefix.SS58
	}
	if ctx != nil {
		return ctx.SS58Prefix
	}
	return NetworkPolkadot
}

func (e *Entry) ParseAddress(ctx *coinEntry.CoinContext, text string, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return ParseAddress(text, network(ctx, prefix))
}

func (e *Entry) ParseAddressUnchecked(_ *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	return DecodeAddress(text)
}

func (e *Entry) DeriveAddress(ctx *coinEntry.CoinContext, publicKey *keypair.PublicKey, _ coinEntry.Derivation, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return deriveAddress(publicKey, network(ctx, prefix))
}

func prepare(input *SigningInput) ([]byte, error) {
	if err := validate.Struct(input); err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid signing input")
	}
	return encodeCall(input)
}

func (e *Entry) PreImageHashes(_ *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	call, err := prepare(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.Data = signingPayload(input, call)
	return out
}

func compile(input *SigningInput, signature, publicKey []byte, out *SigningOutput) error {
	call, err := prepare(input)
	if err != nil {
		return err
	}
	if len(publicKey) != keypair.Ed25519.Size() {
		return coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte ed25519 key", keypair.Ed25519.Size())
	}
	if err := keypair.VerifyEd25519(publicKey, signingPayload(input, call), signature); err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not verify")
	}
	out.Encoded = signedExtrinsic(input, call, publicKey, signature)
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

	call, err := prepare(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	sig := key.Sign(signingPayload(input, call))
	if err := compile(input, sig, key.PublicKey(), out); err != nil {
		out.SetError(err)
	}
	return out
}
