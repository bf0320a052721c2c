package ethereum

import (
	"bytes"
	"math/big"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLen = 65

var erc20TransferSelector = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

// Entry implements coinEntry.ICoinEntry for Ethereum.
type Entry struct{}

var (
	_ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)
	_ coinEntry.IMessageSigner                                            = (*Entry)(nil)
)

func NewEntry() *Entry {
	return &Entry{}
}

func (e *Entry) ParseAddress(_ *coinEntry.CoinContext, text string, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return ParseAddress(text)
}

func (e *Entry) ParseAddressUnchecked(_ *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	if !common.IsHexAddress(text) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not a hex address", text)
	}
	return &Address{addr: common.HexToAddress(text)}, nil
}

func (e *Entry) DeriveAddress(_ *coinEntry.CoinContext, publicKey *keypair.PublicKey, _ coinEntry.Derivation, _ *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return deriveAddress(publicKey)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func erc20Data(t *Erc20Transfer) ([]byte, error) {
	to, err := ParseAddress(t.To)
	if err != nil {
		return nil, err
	}
	amount := orZero(t.Amount)
	if amount.Sign() < 0 || amount.BitLen() > 256 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidRequestedTokenAmount, "token amount out of range")
	}
	data := make([]byte, 0, 4+64)
	data = append(data, erc20TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	return append(data, common.LeftPadBytes(amount.Bytes(), 32)...), nil
}

// buildTx returns the unsigned transaction and its signer.
func buildTx(input *SigningInput) (*types.Transaction, types.Signer, error) {
	if input.ChainID == nil || input.ChainID.Sign() <= 0 {
		return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "chain id must be positive")
	}
	var to *common.Address
	if input.ToAddress != "" {
		addr, err := ParseAddress(input.ToAddress)
		if err != nil {
			return nil, nil, err
		}
		to = &addr.addr
	}
	data := input.Data
	if input.Erc20 != nil {
		if len(input.Data) != 0 {
			return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "call data and token transfer are exclusive")
		}
		if to == nil {
			return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "token transfer requires the contract address")
		}
		var err error
		if data, err = erc20Data(input.Erc20); err != nil {
			return nil, nil, err
		}
	}
	for _, v := range []*big.Int{input.Amount, input.GasPrice, input.MaxFeePerGas, input.MaxInclusionFeePerGas} {
		if v != nil && v.Sign() < 0 {
			return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "negative amounts are not allowed")
		}
	}

	var inner types.TxData
	switch input.TxMode {
	case Legacy:
		inner = &types.LegacyTx{
			Nonce:    input.Nonce,
			GasPrice: orZero(input.GasPrice),
			Gas:      input.GasLimit,
			To:       to,
			Value:    orZero(input.Amount),
			Data:     data,
		}
	case AccessList:
		inner = &types.AccessListTx{
			ChainID:    input.ChainID,
			Nonce:      input.Nonce,
			GasPrice:   orZero(input.GasPrice),
			Gas:        input.GasLimit,
			To:         to,
			Value:      orZero(input.Amount),
			Data:       data,
			AccessList: input.AccessList,
		}
	case Enveloped:
		inner = &types.DynamicFeeTx{
			ChainID:    input.ChainID,
			Nonce:      input.Nonce,
			GasTipCap:  orZero(input.MaxInclusionFeePerGas),
			GasFeeCap:  orZero(input.MaxFeePerGas),
			Gas:        input.GasLimit,
			To:         to,
			Value:      orZero(input.Amount),
			Data:       data,
			AccessList: input.AccessList,
		}
	default:
		return nil, nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "transaction mode %d", input.TxMode)
	}
	return types.NewTx(inner), types.LatestSignerForChainID(input.ChainID), nil
}

func (e *Entry) PreImageHashes(_ *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	tx, signer, err := buildTx(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.DataHash = signer.Hash(tx).Bytes()
	out.Data = tx.Data()
	return out
}

// normalizeSignature returns r || s || v with v in {0, 1}; 27/28 are accepted.
func normalizeSignature(sig []byte) ([]byte, error) {
	if len(sig) != signatureLen {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "signature must be %d bytes, got %d", signatureLen, len(sig))
	}
	out := append([]byte(nil), sig...)
	if out[64] >= 27 {
		out[64] -= 27
	}
	if out[64] > 1 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "invalid recovery id %d", sig[64])
	}
	return out, nil
}

func (e *Entry) Compile(_ *coinEntry.CoinContext, input *SigningInput, signatures [][]byte, publicKeys [][]byte) *SigningOutput {
	out := &SigningOutput{}
	if len(signatures) != 1 || len(publicKeys) > 1 {
		out.SetError(coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected 1 signature, got %d", len(signatures)))
		return out
	}
	var expected []byte
	if len(publicKeys) == 1 {
		addr, err := AddressFromPublicKey(publicKeys[0])
		if err != nil {
			out.SetError(err)
			return out
		}
		expected = addr.Bytes()
	}
	if err := compile(input, signatures[0], expected, out); err != nil {
		out.SetError(err)
	}
	return out
}

func compile(input *SigningInput, signature []byte, expectedSender []byte, out *SigningOutput) error {
	tx, signer, err := buildTx(input)
	if err != nil {
		return err
	}
	sig, err := normalizeSignature(signature)
	if err != nil {
		return err
	}
	signed, err := tx.WithSignature(signer, sig)
	if err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid signature")
	}
	sender, err := types.Sender(signer, signed)
	if err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "signature does not recover")
	}
	if expectedSender != nil && !bytes.Equal(sender.Bytes(), expectedSender) {
		return coinEntry.NewError(coinEntry.ErrorInvalidInput, "signature recovers to %s", sender.Hex())
	}
	encoded, err := signed.MarshalBinary()
	if err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to encode transaction")
	}
	v, r, s := signed.RawSignatureValues()
	out.Encoded = encoded
	out.V = v.Bytes()
	out.R = r.Bytes()
	out.S = s.Bytes()
	out.Data = signed.Data()
	out.TxHash = signed.Hash().Bytes()
	return nil
}

func (e *Entry) Sign(_ *coinEntry.CoinContext, input *SigningInput) *SigningOutput {
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

	tx, signer, err := buildTx(input)
	if err != nil {
		out.SetError(err)
		return out
	}
	sig, err := key.SignCompact(signer.Hash(tx).Bytes())
	if err != nil {
		out.SetError(coinEntry.WrapError(coinEntry.ErrorInternal, err, "signing failed"))
		return out
	}
	sender, err := AddressFromPublicKey(key.PublicKey(false))
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := compile(input, sig, sender.Bytes(), out); err != nil {
		out.SetError(err)
	}
	return out
}
