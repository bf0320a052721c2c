package solana

import (
	"bytes"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

// Address is a base58 encoded Ed25519 public key.
type Address struct {
	key Pubkey
}

func (a *Address) String() string {
	return a.key.String()
}

func (a *Address) Bytes() []byte {
	return a.key[:]
}

// Entry implements coinEntry.ICoinEntry for Solana.
type Entry struct{}

var _ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)

func NewEntry() *Entry {
	return &Entry{}
}

func (e *Entry) ParseAddress(_ *coinEntry.CoinContext, text string, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	k, err := ParsePubkey(text)
	if err != nil {
		return nil, err
	}
	return &Address{key: k}, nil
}

func (e *Entry) ParseAddressUnchecked(ctx *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	return e.ParseAddress(ctx, text, nil)
}

func (e *Entry) DeriveAddress(_ *coinEntry.CoinContext, publicKey *keypair.PublicKey, _ coinEntry.Derivation, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	if publicKey == nil || publicKey.Type != keypair.Ed25519 || len(publicKey.Bytes) != PubkeyLen {
		return nil, coinEntry.ErrPublicKeyTypeMismatch
	}
	a := &Address{}
	copy(a.key[:], publicKey.Bytes)
	return a, nil
}

func decodeText(text string, encoding Encoding) ([]byte, error) {
	switch encoding {
	case "", EncodingBase58:
		return codec.Base58Decode(text, nil)
	case EncodingBase64:
		return codec.Base64Decode(text, false)
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "encoding %q", encoding)
	}
}

func encodeText(b []byte, encoding Encoding) (string, error) {
	switch encoding {
	case "", EncodingBase58:
		return codec.Base58Encode(b, nil), nil
	case EncodingBase64:
		return codec.Base64Encode(b, false), nil
	default:
		return "", coinEntry.NewError(coinEntry.ErrorNotSupported, "encoding %q", encoding)
	}
}

func parseBlockhash(text string) ([HashLen]byte, error) {
	var h [HashLen]byte
	raw, err := codec.Base58Decode(text, nil)
	if err != nil || len(raw) != HashLen {
		return h, coinEntry.NewError(coinEntry.ErrorInvalidInput, "recent blockhash %q is not a 32-byte base58 value", text)
	}
	copy(h[:], raw)
	return h, nil
}

// buildMessage returns the message of the request. signer, when known, must be the
// transfer sender.
func buildMessage(input *SigningInput, signer *Pubkey) (*VersionedMessage, error) {
	if (input.Transfer == nil) == (input.RawMessage == nil) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "exactly one of transfer and raw message must be set")
	}

	if input.RawMessage != nil {
		raw, err := decodeText(input.RawMessage.Message, input.RawMessage.Encoding)
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "raw message is not decodable")
		}
		msg, err := DeserializeMessage(raw)
		if err != nil {
			return nil, err
		}
		if input.RecentBlockhash != "" {
			if msg.RecentBlockhash, err = parseBlockhash(input.RecentBlockhash); err != nil {
				return nil, err
			}
		}
		return msg, nil
	}

	var from Pubkey
	switch {
	case input.Sender != "":
		k, err := ParsePubkey(input.Sender)
		if err != nil {
			return nil, err
		}
		if signer != nil && *signer != k {
			return nil, coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "private key does not belong to %s", input.Sender)
		}
		from = k
	case signer != nil:
		from = *signer
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "sender is required without a private key")
	}
	to, err := ParsePubkey(input.Transfer.Recipient)
	if err != nil {
		return nil, err
	}
	blockhash, err := parseBlockhash(input.RecentBlockhash)
	if err != nil {
		return nil, err
	}
	instructions := []Instruction{SystemTransfer(from, to, input.Transfer.Value)}
	if input.Transfer.Memo != "" {
		instructions = append(instructions, Memo(input.Transfer.Memo))
	}
	return CompileLegacyMessage(from, instructions, blockhash)
}

func (e *Entry) PreImageHashes(_ *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	msg, err := buildMessage(input, nil)
	if err != nil {
		out.SetError(err)
		return out
	}
	if out.Data, err = msg.Serialize(); err != nil {
		out.SetError(err)
		return out
	}
	for _, s := range msg.Signers() {
		out.Signers = append(out.Signers, s.String())
	}
	return out
}

func compile(input *SigningInput, msg *VersionedMessage, signatures, publicKeys [][]byte, out *SigningOutput) error {
	signers := msg.Signers()
	if len(signatures) != len(signers) || (len(publicKeys) != 0 && len(publicKeys) != len(signers)) {
		return coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "message requires %d signatures, got %d", len(signers), len(signatures))
	}
	data, err := msg.Serialize()
	if err != nil {
		return err
	}
	tx, err := AppendShortVecLen(nil, len(signatures))
	if err != nil {
		return err
	}
	for i, sig := range signatures {
		if len(publicKeys) != 0 && !bytes.Equal(publicKeys[i], signers[i][:]) {
			return coinEntry.NewError(coinEntry.ErrorInvalidInput, "public key %d does not match signer %s", i, signers[i])
		}
		if len(sig) != SignatureLen {
			return coinEntry.NewError(coinEntry.ErrorInvalidInput, "signature %d must be %d bytes", i, SignatureLen)
		}
		if err := keypair.VerifyEd25519(signers[i][:], data, sig); err != nil {
			return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not verify")
		}
		tx = append(tx, sig...)
		out.Signatures = append(out.Signatures, codec.Base58Encode(sig, nil))
	}
	tx = append(tx, data...)
	out.Encoded, err = encodeText(tx, input.TxEncoding)
	return err
}

func (e *Entry) Compile(_ *coinEntry.CoinContext, input *SigningInput, signatures [][]byte, publicKeys [][]byte) *SigningOutput {
	out := &SigningOutput{}
	msg, err := buildMessage(input, nil)
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := compile(input, msg, signatures, publicKeys, out); err != nil {
		out.Signatures = nil
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

	var signer Pubkey
	copy(signer[:], key.PublicKey())
	msg, err := buildMessage(input, &signer)
	if err != nil {
		out.SetError(err)
		return out
	}
	signers := msg.Signers()
	if len(signers) != 1 || signers[0] != signer {
		out.SetError(coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "message requires signatures from %d accounts", len(signers)))
		return out
	}
	data, err := msg.Serialize()
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := compile(input, msg, [][]byte{key.Sign(data)}, nil, out); err != nil {
		out.Signatures = nil
		out.SetError(err)
	}
	return out
}
