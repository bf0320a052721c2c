package aptos

import (
	"bytes"

	"github.com/Layr-Labs/multichain-signer/pkg/bcs"
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

const (
	aptosAccountModule = "0x1::aptos_account"
	coinTransfer       = "0x1::coin::transfer"
)

// Entry implements coinEntry.ICoinEntry for Aptos.
type Entry struct{}

var _ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)

func NewEntry() *Entry {
	return &Entry{}
}

func (e *Entry) ParseAddress(_ *coinEntry.CoinContext, text string, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	if len(text) != 2+2*addressLen {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not a full length address", text)
	}
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

func addressArg(text string) ([]byte, error) {
	addr, err := ParseAddress(text)
	if err != nil {
		return nil, err
	}
	return addr.Bytes(), nil
}

// payload builds the entry function named by exactly one of the message fields.
func payload(input *SigningInput) (*EntryFunction, error) {
	set := 0
	for _, present := range []bool{input.Transfer != nil, input.TokenTransfer != nil, input.CreateAccount != nil, input.EntryFunction != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "exactly one payload must be set, got %d", set)
	}

	switch {
	case input.Transfer != nil:
		fn, _ := parseFunctionID(aptosAccountModule + "::transfer")
		to, err := addressArg(input.Transfer.To)
		if err != nil {
			return nil, err
		}
		fn.Args = [][]byte{to, bcs.U64Bytes(input.Transfer.Amount)}
		return fn, nil
	case input.TokenTransfer != nil:
		fn, _ := parseFunctionID(coinTransfer)
		coinType, err := ParseTypeTag(input.TokenTransfer.Function)
		if err != nil {
			return nil, err
		}
		to, err := addressArg(input.TokenTransfer.To)
		if err != nil {
			return nil, err
		}
		fn.TypeArgs = []TypeTag{coinType}
		fn.Args = [][]byte{to, bcs.U64Bytes(input.TokenTransfer.Amount)}
		return fn, nil
	case input.CreateAccount != nil:
		fn, _ := parseFunctionID(aptosAccountModule + "::create_account")
		auth, err := addressArg(input.CreateAccount.AuthKey)
		if err != nil {
			return nil, err
		}
		fn.Args = [][]byte{auth}
		return fn, nil
	default:
		fn, err := parseFunctionID(input.EntryFunction.Function)
		if err != nil {
			return nil, err
		}
		for _, t := range input.EntryFunction.TypeArguments {
			tag, err := ParseTypeTag(t)
			if err != nil {
				return nil, err
			}
			fn.TypeArgs = append(fn.TypeArgs, tag)
		}
		fn.Args = input.EntryFunction.Arguments
		return fn, nil
	}
}

func rawTransaction(input *SigningInput) (*RawTransaction, []byte, error) {
	sender, err := ParseAddress(input.Sender)
	if err != nil {
		return nil, nil, err
	}
	fn, err := payload(input)
	if err != nil {
		return nil, nil, err
	}
	raw := &RawTransaction{
		Sender:                  *sender,
		SequenceNumber:          input.SequenceNumber,
		Payload:                 fn,
		MaxGasAmount:            input.MaxGasAmount,
		GasUnitPrice:            input.GasUnitPrice,
		ExpirationTimestampSecs: input.ExpirationTimestampSecs,
		ChainID:                 input.ChainID,
	}
	encoded, err := bcs.Marshal(raw)
	if err != nil {
		return nil, nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "failed to encode raw transaction")
	}
	return raw, encoded, nil
}

// SigningMessage is the domain separated message signed for a raw transaction.
func SigningMessage(raw []byte) []byte {
	salt := hashing.Sha3_256([]byte(rawTransactionSaltTag))
	return append(salt, raw...)
}

func (e *Entry) PreImageHashes(_ *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	_, raw, err := rawTransaction(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.Data = SigningMessage(raw)
	return out
}

func compile(input *SigningInput, signature, publicKey []byte, out *SigningOutput) error {
	raw, encoded, err := rawTransaction(input)
	if err != nil {
		return err
	}
	if len(publicKey) != keypair.Ed25519.Size() {
		return coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte ed25519 key", keypair.Ed25519.Size())
	}
	if err := keypair.VerifyEd25519(publicKey, SigningMessage(encoded), signature); err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not verify")
	}
	signer, err := AddressFromPublicKey(publicKey)
	if err != nil {
		return err
	}
	if *signer != raw.Sender {
		return coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "key belongs to %s, transaction sender is %s", signer.String(), raw.Sender.String())
	}

	auth := &Authenticator{PublicKey: publicKey, Signature: signature}
	enc := bcs.NewEncoder()
	enc.FixedBytes(encoded)
	if err := auth.MarshalBCS(enc); err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to encode authenticator")
	}
	out.RawTxn = encoded
	out.Authenticator = auth
	out.Encoded = bytes.Clone(enc.Bytes())
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

	_, raw, err := rawTransaction(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	sig := key.Sign(SigningMessage(raw))
	if err := compile(input, sig, key.PublicKey(), out); err != nil {
		out.SetError(err)
	}
	return out
}

// EncodeHex renders the signed transaction the way node APIs accept it.
func (o *SigningOutput) EncodeHex() string {
	return codec.EncodeHex(o.Encoded, true)
}
