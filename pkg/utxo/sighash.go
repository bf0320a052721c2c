package utxo

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

func validEcdsaSighash(t txscript.SigHashType) bool {
	switch t &^ txscript.SigHashAnyOneCanPay {
	case txscript.SigHashAll, txscript.SigHashNone, txscript.SigHashSingle:
		return t&^(txscript.SigHashAnyOneCanPay|0x03) == 0
	}
	return false
}

// ValidTaprootSighash reports whether t is one of 0x00-0x03 or 0x81-0x83.
func ValidTaprootSighash(t txscript.SigHashType) bool {
	switch t {
	case txscript.SigHashDefault, txscript.SigHashAll, txscript.SigHashNone, txscript.SigHashSingle,
		txscript.SigHashAll | txscript.SigHashAnyOneCanPay,
		txscript.SigHashNone | txscript.SigHashAnyOneCanPay,
		txscript.SigHashSingle | txscript.SigHashAnyOneCanPay:
		return true
	}
	return false
}

// NormalizeSighash returns the effective sighash flag of an input, mapping the
// unspecified value to ALL for ECDSA methods.
func NormalizeSighash(method SigningMethod, t txscript.SigHashType) (txscript.SigHashType, error) {
	if method.IsTaproot() {
		if !ValidTaprootSighash(t) {
			return 0, coinEntry.NewError(coinEntry.ErrorInvalidSighashType, "invalid taproot sighash type 0x%x", uint32(t))
		}
		return t, nil
	}
	if t == txscript.SigHashDefault {
		return txscript.SigHashAll, nil
	}
	if !validEcdsaSighash(t) {
		return 0, coinEntry.NewError(coinEntry.ErrorInvalidSighashType, "invalid sighash type 0x%x", uint32(t))
	}
	return t, nil
}

func computeSighashes(tx *wire.MsgTx, inputs []TxIn) ([]Sighash, error) {
	fetcher, err := Prevouts(inputs)
	if err != nil {
		return nil, err
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	out := make([]Sighash, len(inputs))
	for i, in := range inputs {
		hashType, err := NormalizeSighash(in.SigningMethod, in.SighashType)
		if err != nil {
			return nil, err
		}
		entry := Sighash{SigningMethod: in.SigningMethod, SighashType: hashType}

		switch in.SigningMethod {
		case Legacy:
			entry.Sighash, err = txscript.CalcSignatureHash(in.ScriptPubkey, hashType, tx, i)
		case Segwit:
			entry.Sighash, err = txscript.CalcWitnessSigHash(in.ScriptPubkey, sigHashes, hashType, tx, i, int64(in.Value))
		case TaprootAll, TaprootOnePrevout:
			if in.SigningMethod == TaprootOnePrevout && hashType&txscript.SigHashAnyOneCanPay == 0 {
				return nil, coinEntry.NewError(coinEntry.ErrorInvalidSighashType, "input %d: single prevout signing requires ANYONECANPAY", i)
			}
			if in.TapLeaf != nil {
				if len(in.TapLeaf.Script) == 0 {
					return nil, coinEntry.NewError(coinEntry.ErrorInvalidLeafHash, "input %d: empty tap leaf script", i)
				}
				leaf := txscript.NewTapLeaf(in.TapLeaf.LeafVersion(), in.TapLeaf.Script)
				leafHash := leaf.TapHash()
				entry.LeafHash = leafHash[:]
				entry.Sighash, err = txscript.CalcTapscriptSignaturehash(sigHashes, hashType, tx, i, fetcher, leaf)
			} else {
				entry.Sighash, err = txscript.CalcTaprootSignatureHash(sigHashes, hashType, tx, i, fetcher)
			}
		default:
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "input %d: unknown signing method %d", i, in.SigningMethod)
		}
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "sighash computation failed")
		}
		out[i] = entry
	}
	return out, nil
}
