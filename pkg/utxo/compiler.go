package utxo

import (
	"bytes"
	"math"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Value returns the consensus lock time value.
func (l LockTime) Value() (uint32, error) {
	switch {
	case l.Blocks != 0 && l.Seconds != 0:
		return 0, coinEntry.NewError(coinEntry.ErrorInvalidLockTime, "lock time cannot be both blocks and seconds")
	case l.Blocks != 0:
		if l.Blocks >= LockTimeThreshold {
			return 0, coinEntry.NewError(coinEntry.ErrorInvalidLockTime, "block lock time %d must be below %d", l.Blocks, LockTimeThreshold)
		}
		return l.Blocks, nil
	case l.Seconds != 0:
		if l.Seconds < LockTimeThreshold {
			return 0, coinEntry.NewError(coinEntry.ErrorInvalidLockTime, "seconds lock time %d must be at least %d", l.Seconds, LockTimeThreshold)
		}
		return l.Seconds, nil
	}
	return 0, nil
}

func toAmount(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, coinEntry.NewError(coinEntry.ErrorInvalidInput, "amount %d out of range", v)
	}
	return int64(v), nil
}

// buildTx assembles the unsigned transaction; claims may be nil.
func buildTx(version int32, lockTime uint32, inputs []TxIn, outputs []TxOut, claims []Claim) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(version)
	tx.LockTime = lockTime
	for i, in := range inputs {
		hash, err := chainhash.NewHash(in.Txid)
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid txid")
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(hash, in.Vout), nil, nil)
		txIn.Sequence = in.Sequence
		if claims != nil {
			txIn.SignatureScript = claims[i].ScriptSig
			txIn.Witness = claims[i].Witness
		}
		tx.AddTxIn(txIn)
	}
	for _, out := range outputs {
		value, err := toAmount(out.Value)
		if err != nil {
			return nil, err
		}
		tx.AddTxOut(wire.NewTxOut(value, out.ScriptPubkey))
	}
	return tx, nil
}

func txWeight(tx *wire.MsgTx) uint64 {
	return uint64(tx.SerializeSizeStripped()*3 + tx.SerializeSize())
}

func placeholders(inputs []TxIn) []Claim {
	claims := make([]Claim, len(inputs))
	for i, in := range inputs {
		claims[i] = Claim{ScriptSig: in.PlaceholderScriptSig, Witness: in.PlaceholderWitness}
	}
	return claims
}

// projectFee returns the estimated weight and fee of the transaction once signed.
func projectFee(req *Request, lockTime uint32, inputs []TxIn, outputs []TxOut) (uint64, uint64, error) {
	tx, err := buildTx(req.Version, lockTime, inputs, outputs, placeholders(inputs))
	if err != nil {
		return 0, 0, err
	}
	weight := txWeight(tx)
	vsize := (weight + 3) / 4
	return weight, vsize * req.FeePerVb, nil
}

// PreImageHashes runs the Select and Hash stages.
//
// Parameters:
//   - req: the signing request
//
// Returns:
//   - *Plan: the sighashes of the selected inputs plus the final output set
//   - error: a coinEntry.SigningError on invalid input or insufficient funds
func PreImageHashes(req *Request) (*Plan, error) {
	lockTime, err := req.LockTime.Value()
	if err != nil {
		return nil, err
	}
	for i, in := range req.Inputs {
		if len(in.Txid) != chainhash.HashSize {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "input %d: txid must be %d bytes", i, chainhash.HashSize)
		}
		if _, err := toAmount(in.Value); err != nil {
			return nil, err
		}
	}

	totalOut, err := sumOutputs(req.Outputs)
	if err != nil {
		return nil, err
	}
	selected, err := SelectInputs(req.Inputs, totalOut, req.InputSelector)
	if err != nil {
		return nil, err
	}
	totalIn, err := sumInputs(selected)
	if err != nil {
		return nil, err
	}

	outputs := make([]TxOut, len(req.Outputs), len(req.Outputs)+1)
	copy(outputs, req.Outputs)
	changeIndex := -1

	var weight, fee uint64
	if req.ChangeScriptPubkey != nil {
		withChange := append(outputs, TxOut{ScriptPubkey: req.ChangeScriptPubkey})
		weight, fee, err = projectFee(req, lockTime, selected, withChange)
		if err != nil {
			return nil, err
		}
		dust := req.DustThreshold
		if dust == 0 {
			dust = DefaultDustThreshold
		}
		if totalIn >= totalOut+fee && totalIn-totalOut-fee >= dust {
			withChange[len(withChange)-1].Value = totalIn - totalOut - fee
			outputs = withChange
			changeIndex = len(outputs) - 1
		}
	}
	if changeIndex < 0 {
		weight, fee, err = projectFee(req, lockTime, selected, outputs)
		if err != nil {
			return nil, err
		}
	}
	if totalIn < totalOut+fee {
		return nil, coinEntry.NewError(coinEntry.ErrorInsufficientFunds, "inputs %d cannot cover outputs %d plus fee %d", totalIn, totalOut, fee)
	}

	tx, err := buildTx(req.Version, lockTime, selected, outputs, nil)
	if err != nil {
		return nil, err
	}
	sighashes, err := computeSighashes(tx, selected)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Sighashes:      sighashes,
		Inputs:         selected,
		Outputs:        outputs,
		WeightEstimate: weight,
		FeeEstimate:    fee,
		ChangeIndex:    changeIndex,
	}, nil
}

// Compile runs the Serialize stage with one claim per selected input.
func Compile(req *Request, plan *Plan, claims []Claim) (*Transaction, error) {
	if len(claims) != len(plan.Inputs) {
		return nil, coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected %d claims, got %d", len(plan.Inputs), len(claims))
	}
	lockTime, err := req.LockTime.Value()
	if err != nil {
		return nil, err
	}
	tx, err := buildTx(req.Version, lockTime, plan.Inputs, plan.Outputs, claims)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to serialize transaction")
	}

	totalIn, err := sumInputs(plan.Inputs)
	if err != nil {
		return nil, err
	}
	totalOut, err := sumOutputs(plan.Outputs)
	if err != nil {
		return nil, err
	}
	if totalIn < totalOut {
		return nil, coinEntry.NewError(coinEntry.ErrorInsufficientFunds, "inputs %d below outputs %d", totalIn, totalOut)
	}

	txHash := tx.TxHash()
	txid := make([]byte, chainhash.HashSize)
	for i := range txid {
		txid[i] = txHash[chainhash.HashSize-1-i]
	}
	weight := txWeight(tx)
	return &Transaction{
		Encoded: buf.Bytes(),
		Txid:    txid,
		Weight:  weight,
		Vsize:   (weight + 3) / 4,
		Fee:     totalIn - totalOut,
	}, nil
}

// Prevouts returns a fetcher over the given inputs, used for BIP341 sighashes.
func Prevouts(inputs []TxIn) (*txscript.MultiPrevOutFetcher, error) {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for _, in := range inputs {
		hash, err := chainhash.NewHash(in.Txid)
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid txid")
		}
		value, err := toAmount(in.Value)
		if err != nil {
			return nil, err
		}
		fetcher.AddPrevOut(*wire.NewOutPoint(hash, in.Vout), wire.NewTxOut(value, in.ScriptPubkey))
	}
	return fetcher, nil
}
