package bitcoin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/util"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
	"go.uber.org/zap"
)

// Entry implements coinEntry.ICoinEntry for Bitcoin and its forks. The coin context
// selects address prefixes, so one Entry serves every Bitcoin-family coin.
type Entry struct {
	logger *zap.Logger
}

var _ coinEntry.ICoinEntry[SigningInput, SigningOutput, PreSigningOutput] = (*Entry)(nil)
var _ coinEntry.IPlanBuilder = (*Entry)(nil)

// NewEntry creates a Bitcoin family entry.
//
// Parameters:
//   - l: logger for plan diagnostics
//
// Returns:
//   - *Entry: the coin entry
func NewEntry(l *zap.Logger) *Entry {
	if l == nil {
		l = zap.NewNop()
	}
	return &Entry{logger: l}
}

func (e *Entry) ParseAddress(ctx *coinEntry.CoinContext, text string, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return parseAddress(ctx, text, prefix)
}

func (e *Entry) ParseAddressUnchecked(ctx *coinEntry.CoinContext, text string) (coinEntry.Address, error) {
	return parseAddress(ctx, text, nil)
}

func (e *Entry) DeriveAddress(ctx *coinEntry.CoinContext, publicKey *keypair.PublicKey, derivation coinEntry.Derivation, prefix *coinEntry.AddressPrefix) (coinEntry.Address, error) {
	return deriveAddress(ctx, publicKey, derivation, prefix)
}

func (e *Entry) plan(ctx *coinEntry.CoinContext, input *SigningInput) (*prepared, *utxo.Plan, error) {
	p, err := prepare(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	plan, err := utxo.PreImageHashes(p.req)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Sugar().Debugw("Planned transaction",
		"coin", ctx.Name,
		"selectedInputs", len(plan.Inputs),
		"outputs", len(plan.Outputs),
		"weight", plan.WeightEstimate,
		"fee", plan.FeeEstimate,
	)
	return p, plan, nil
}

// PreImageHashes returns one sighash per selected input. The private key is never read.
func (e *Entry) PreImageHashes(ctx *coinEntry.CoinContext, input *SigningInput) *PreSigningOutput {
	out := &PreSigningOutput{}
	p, plan, err := e.plan(ctx, input)
	if err != nil {
		out.SetError(err)
		return out
	}
	out.Sighashes = plan.Sighashes
	out.UtxoInputs = plan.Inputs
	out.UtxoOutputs = p.outputMirrors(plan)
	out.WeightEstimate = plan.WeightEstimate
	out.FeeEstimate = plan.FeeEstimate
	return out
}

// Compile attaches signatures, ordered as the sighashes of PreImageHashes, to the
// transaction. ECDSA signatures may be DER or 64-byte r||s. The sighash byte is
// appended here and may be omitted by the caller.
func (e *Entry) Compile(ctx *coinEntry.CoinContext, input *SigningInput, signatures [][]byte, publicKeys [][]byte) *SigningOutput {
	out := &SigningOutput{}
	p, plan, err := e.plan(ctx, input)
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := p.finish(plan, signatures, publicKeys, out); err != nil {
		out.SetError(err)
	}
	return out
}

// Sign signs every selected input with input.PrivateKey, which is scrubbed before return.
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

	p, plan, err := e.plan(ctx, input)
	if err != nil {
		out.SetError(err)
		return out
	}
	signatures, err := p.sign(key, plan, input.FixedSchnorrAuxRand)
	if err != nil {
		out.SetError(err)
		return out
	}
	if err := p.finish(plan, signatures, nil, out); err != nil {
		out.SetError(err)
	}
	return out
}

func (p *prepared) sign(key *keypair.Secp256k1PrivateKey, plan *utxo.Plan, fixedAux bool) ([][]byte, error) {
	var opts []keypair.SchnorrOption
	if fixedAux {
		opts = append(opts, keypair.WithAuxRand([32]byte{}))
	}
	pub := key.PublicKey(true)

	signatures := make([][]byte, len(plan.Inputs))
	for i := range plan.Inputs {
		sp := p.spends[outpointOf(&plan.Inputs[i])]
		digest := plan.Sighashes[i].Sighash

		var (
			sig []byte
			err error
		)
		switch sp.kind {
		case spendP2PKH, spendP2WPKH, spendKeyPath:
			if !bytes.Equal(sp.publicKey, pub) {
				return nil, coinEntry.NewError(coinEntry.ErrorMissingPrivateKey, "no private key for input %d", i)
			}
		}
		switch {
		case sp.kind == spendKeyPath:
			tweaked := key.TweakTaproot(nil)
			sig, err = tweaked.SignSchnorr(digest, opts...)
			tweaked.Zero()
		case plan.Sighashes[i].SigningMethod.IsTaproot():
			sig, err = key.SignSchnorr(digest, opts...)
		default:
			sig, err = key.SignECDSA(digest)
		}
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, fmt.Sprintf("failed to sign input %d", i))
		}
		signatures[i] = sig
	}
	return signatures, nil
}

func (p *prepared) finish(plan *utxo.Plan, signatures [][]byte, publicKeys [][]byte, out *SigningOutput) error {
	claims, err := p.claims(plan, signatures, publicKeys)
	if err != nil {
		return err
	}
	tx, err := utxo.Compile(p.req, plan, claims)
	if err != nil {
		return err
	}
	lockTime, _ := p.req.LockTime.Value()

	out.Transaction = &Transaction{
		Version:  p.req.Version,
		LockTime: lockTime,
		Inputs: util.Map(plan.Inputs, func(in utxo.TxIn, i uint64) TransactionInput {
			return TransactionInput{
				Txid:      in.Txid,
				Vout:      in.Vout,
				Sequence:  in.Sequence,
				ScriptSig: claims[i].ScriptSig,
				Witness:   claims[i].Witness,
			}
		}),
		Outputs: p.outputMirrors(plan),
	}
	out.Encoded = tx.Encoded
	out.Txid = tx.Txid
	out.Weight = tx.Weight
	out.Vsize = tx.Vsize
	out.Fee = tx.Fee
	return nil
}

// Plan reports the selected inputs, change and fee without signing.
func (e *Entry) Plan(ctx *coinEntry.CoinContext, input []byte) ([]byte, error) {
	in := new(SigningInput)
	if err := json.Unmarshal(input, in); err != nil {
		return nil, fmt.Errorf("%w: %v", coinEntry.ErrMalformedInput, err)
	}
	keypair.Zero(in.PrivateKey)

	out := &TransactionPlan{}
	p, plan, err := e.plan(ctx, in)
	if err != nil {
		out.SetError(err)
		return json.Marshal(out)
	}
	for _, txIn := range plan.Inputs {
		out.AvailableAmount += txIn.Value
	}
	for _, txOut := range p.req.Outputs {
		out.SendAmount += txOut.Value
	}
	if plan.ChangeIndex >= 0 {
		out.Change = plan.Outputs[plan.ChangeIndex].Value
	}
	out.Inputs = plan.Inputs
	out.Outputs = p.outputMirrors(plan)
	out.FeeEstimate = plan.FeeEstimate
	out.WeightEstimate = plan.WeightEstimate
	return json.Marshal(out)
}
