package cosmos

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Entry implements coinEntry.ICoinEntry for Cosmos SDK chains.
type Entry struct {
	context *Context
}

var (
	_ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)
	_ coinEntry.IJsonSigner                                               = (*Entry)(nil)
)

// NewEntry creates an entry bound to a chain context.
func NewEntry(c *Context) *Entry {
	return &Entry{context: c}
}

// Context returns the chain context of the entry.
func (e *Entry) Context() *Context {
	return e.context
}

func (e *Entry) ParseAddress(ctx *coinEntry.CoinContext, text string, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	hrp := e.context.hrp(ctx)
	if prefix != nil && prefix.HRP != "" {
		hrp = prefix.HRP
	}
	return ParseAddress(text, hrp)
}

func (e *Entry) ParseAddressUnchecked(_ *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	return ParseAddress(text, "")
}

func (e *Entry) DeriveAddress(ctx *coinEntry.CoinContext, publicKey *keypair.PublicKey, _ coinEntry.Derivation, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	if publicKey.Type != keypair.Secp256k1 && publicKey.Type != keypair.Secp256k1Extended {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a secp256k1 public key, got %s", publicKey.Type)
	}
	prepared, err := e.context.PreparePublicKey(publicKey.Bytes)
	if err != nil {
		return nil, err
	}
	hrp := e.context.hrp(ctx)
	if prefix != nil && prefix.HRP != "" {
		hrp = prefix.HRP
	}
	return NewAddress(hrp, e.context.AddressHasher(prepared))
}

// unsigned validates the input and lowers it into an unsignedTx.
func (e *Entry) unsigned(ctx *coinEntry.CoinContext, input *SigningInput, publicKey []byte) (*unsignedTx, error) {
	if err := validate.Struct(input); err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid signing input")
	}
	if len(publicKey) == 0 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "public key is required")
	}
	prepared, err := e.context.PreparePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	hrp := e.context.hrp(ctx)
	messages := make([]IMessage, len(input.Messages))
	for i := range input.Messages {
		msg, err := input.Messages[i].Unwrap()
		if err != nil {
			return nil, err
		}
		for _, addr := range msg.Addresses() {
			if _, err := ParseAddress(addr, hrp); err != nil {
				return nil, err
			}
		}
		messages[i] = msg
	}
	for _, addr := range []string{input.Fee.Payer, input.Fee.Granter} {
		if addr == "" {
			continue
		}
		if _, err := ParseAddress(addr, hrp); err != nil {
			return nil, err
		}
	}
	return &unsignedTx{
		messages:      messages,
		memo:          input.Memo,
		timeoutHeight: input.TimeoutHeight,
		publicKey:     prepared,
		sequence:      input.Sequence,
		fee:           &input.Fee,
		chainID:       input.ChainID,
		accountNumber: input.AccountNumber,
	}, nil
}

// preimage returns the bytes to sign, for either signing mode.
func (e *Entry) preimage(tx *unsignedTx, mode SigningMode) ([]byte, error) {
	if mode == JSON {
		doc, err := buildJSONSignDoc(tx)
		if err != nil {
			return nil, err
		}
		return []byte(doc), nil
	}
	signDoc, _, _, err := e.context.buildSignDoc(tx)
	return signDoc, err
}

// PreImageHashes returns the SignDoc (or Amino document) and its digest.
func (e *Entry) PreImageHashes(ctx *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	tx, err := e.unsigned(ctx, input, input.PublicKey)
	if err != nil {
		out.SetError(err)
		return out
	}
	data, err := e.preimage(tx, input.SigningMode)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.Data = data
	out.DataHash = e.context.TxHasher(data)
	return out
}

// Compile attaches one 64-byte signature. The public key comes from publicKeys[0] or
// the input.
func (e *Entry) Compile(ctx *coinEntry.CoinContext, input *SigningInput, signatures [][]byte, publicKeys [][]byte) *SigningOutput {
	out := &SigningOutput{}
	if len(signatures) != 1 {
		out.SetError(coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected 1 signature, got %d", len(signatures)))
		return out
	}
	publicKey := input.PublicKey
	switch len(publicKeys) {
	case 0:
	case 1:
		publicKey = publicKeys[0]
	default:
		out.SetError(coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected at most 1 public key, got %d", len(publicKeys)))
		return out
	}
	tx, err := e.unsigned(ctx, input, publicKey)
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := e.compile(tx, input, signatures[0], out); err != nil {
		out.SetError(err)
	}
	return out
}

func (e *Entry) compile(tx *unsignedTx, input *SigningInput, signature []byte, out *SigningOutput) error {
	if len(signature) == 65 {
		signature = signature[:64]
	}
	if len(signature) != 64 {
		return coinEntry.NewError(coinEntry.ErrorInvalidInput, "signature must be 64 bytes, got %d", len(signature))
	}
	data, err := e.preimage(tx, input.SigningMode)
	if err != nil {
		return err
	}
	der, err := keypair.CompactToDER(signature)
	if err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid signature")
	}
	if err := keypair.VerifyECDSA(tx.publicKey, e.context.TxHasher(data), der); err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not match the sign document")
	}

	out.Signature = signature
	if input.SigningMode == JSON {
		out.JSON, out.SignatureJSON, err = e.context.buildJSONSigned(tx, input.Mode, signature)
		return err
	}
	_, body, authInfo, err := e.context.buildSignDoc(tx)
	if err != nil {
		return err
	}
	out.Serialized, err = buildProtoBroadcast(input.Mode, buildTxRaw(body, authInfo, signature))
	if err != nil {
		return err
	}
	out.SignatureJSON, err = e.context.signatureJSON(tx.publicKey, signature)
	return err
}

// Sign derives the public key from input.PrivateKey, signs and compiles.
func (e *Entry) Sign(ctx *coinEntry.CoinContext, input *SigningInput) *SigningOutput {
	out := &SigningOutput{}
	defer keypair.Zero(input.PrivateKey)

	if len(input.PrivateKey) == 0 {
		out.SetError(coinEntry.ErrMissingPrivateKey)
		return out
	}
	key, err := keypair.NewSecp256k1PrivateKey(input.PrivateKey)
	if err != nil {
		out.SetError(coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid private key"))
		return out
	}
	defer key.Zero()

	publicKey := key.PublicKey(!e.context.Uncompressed)
	if len(input.PublicKey) != 0 {
		declared, err := e.context.PreparePublicKey(input.PublicKey)
		if err != nil {
			out.SetError(err)
			return out
		}
		if !bytes.Equal(declared, publicKey) {
			out.SetError(coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "private key does not match the declared public key"))
			return out
		}
	}

	tx, err := e.unsigned(ctx, input, publicKey)
	if err != nil {
		out.SetError(err)
		return out
	}
	data, err := e.preimage(tx, input.SigningMode)
	if err != nil {
		out.SetError(err)
		return out
	}
	sig, err := key.SignCompact(e.context.TxHasher(data))
	if err != nil {
		out.SetError(coinEntry.WrapError(coinEntry.ErrorInternal, err, "signing failed"))
		return out
	}
	if err := e.compile(tx, input, sig[:64], out); err != nil {
		out.SetError(err)
	}
	return out
}

// SignJSON signs an Amino JSON request with a separately supplied key and returns the
// signed JSON envelope.
func (e *Entry) SignJSON(ctx *coinEntry.CoinContext, inputJSON string, privateKey []byte) (string, error) {
	input := new(SigningInput)
	if err := json.Unmarshal([]byte(inputJSON), input); err != nil {
		return "", fmt.Errorf("%w: %v", coinEntry.ErrMalformedInput, err)
	}
	input.SigningMode = JSON
	input.PrivateKey = append([]byte(nil), privateKey...)
	out := e.Sign(ctx, input)
	if err := out.Err(); err != nil {
		return "", err
	}
	return out.JSON, nil
}
