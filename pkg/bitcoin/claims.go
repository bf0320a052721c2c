package bitcoin

import (
	"errors"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
)

var errSignatureMismatch = errors.New("signature does not verify")

// normalizeSignature accepts DER or 64-byte r||s for ECDSA inputs and 64-byte BIP340
// signatures for taproot inputs, optionally already suffixed with the sighash byte.
// It returns the signature without the suffix.
func normalizeSignature(sh *utxo.Sighash, sig []byte) ([]byte, error) {
	if sh.SigningMethod.IsTaproot() {
		if len(sig) == schnorrSignatureLen+1 && sh.SighashType != txscript.SigHashDefault && sig[64] == byte(sh.SighashType) {
			sig = sig[:schnorrSignatureLen]
		}
		if len(sig) != schnorrSignatureLen {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "schnorr signature must be %d bytes, got %d", schnorrSignatureLen, len(sig))
		}
		return sig, nil
	}
	if len(sig) == 64 {
		der, err := keypair.CompactToDER(sig)
		if err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid compact signature")
		}
		return der, nil
	}
	if _, err := ecdsa.ParseDERSignature(sig); err != nil {
		if len(sig) > 0 && sig[len(sig)-1] == byte(sh.SighashType) {
			if _, err := ecdsa.ParseDERSignature(sig[:len(sig)-1]); err == nil {
				return sig[:len(sig)-1], nil
			}
		}
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid DER signature")
	}
	return sig, nil
}

// withSighashFlag appends the sighash byte. BIP341 omits it for SIGHASH_DEFAULT.
func withSighashFlag(sh *utxo.Sighash, sig []byte) []byte {
	if sh.SigningMethod.IsTaproot() && sh.SighashType == txscript.SigHashDefault {
		return sig
	}
	out := make([]byte, len(sig), len(sig)+1)
	copy(out, sig)
	return append(out, byte(sh.SighashType))
}

// verificationKey returns the key a signature must verify against, or nil when the
// spend condition does not pin one and the caller supplied none.
func verificationKey(sp *spend, in *utxo.TxIn, supplied []byte) []byte {
	switch sp.kind {
	case spendP2PKH, spendP2WPKH:
		return sp.publicKey
	case spendKeyPath:
		// witness v1 program is the tweaked x-only output key
		return in.ScriptPubkey[2:]
	}
	return supplied
}

func verify(sh *utxo.Sighash, key, sig []byte) error {
	if key == nil {
		return nil
	}
	var err error
	if sh.SigningMethod.IsTaproot() {
		err = keypair.VerifySchnorr(key, sh.Sighash, sig)
	} else {
		err = keypair.VerifyECDSA(key, sh.Sighash, sig)
	}
	if err != nil {
		return coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, errSignatureMismatch.Error())
	}
	return nil
}

// claim builds the unlocking data of one input from a suffixed signature.
func claim(sp *spend, sig []byte) utxo.Claim {
	switch sp.kind {
	case spendP2PKH:
		return utxo.Claim{ScriptSig: pushOnly(sig, sp.publicKey)}
	case spendP2WPKH:
		return utxo.Claim{Witness: [][]byte{sig, sp.publicKey}}
	case spendKeyPath:
		return utxo.Claim{Witness: [][]byte{sig}}
	case spendScriptPath:
		return utxo.Claim{Witness: [][]byte{sig, sp.payload, sp.controlBlock}}
	}
	return utxo.Claim{}
}

func customClaim(in *utxo.TxIn, sig []byte) utxo.Claim {
	if in.SigningMethod == utxo.Legacy {
		return utxo.Claim{ScriptSig: pushOnly(sig)}
	}
	return utxo.Claim{Witness: [][]byte{sig}}
}

// claims verifies the signatures and turns them into per-input claims.
func (p *prepared) claims(plan *utxo.Plan, signatures [][]byte, publicKeys [][]byte) ([]utxo.Claim, error) {
	if len(signatures) != len(plan.Inputs) {
		return nil, coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected %d signatures, got %d", len(plan.Inputs), len(signatures))
	}
	if len(publicKeys) != 0 && len(publicKeys) != len(plan.Inputs) {
		return nil, coinEntry.NewError(coinEntry.ErrorUnmatchedSignatureCount, "expected %d public keys, got %d", len(plan.Inputs), len(publicKeys))
	}
	out := make([]utxo.Claim, len(plan.Inputs))
	for i := range plan.Inputs {
		in := &plan.Inputs[i]
		sh := &plan.Sighashes[i]
		sp := p.spends[outpointOf(in)]

		sig, err := normalizeSignature(sh, signatures[i])
		if err != nil {
			return nil, err
		}
		var supplied []byte
		if len(publicKeys) != 0 {
			supplied = publicKeys[i]
		}
		if err := verify(sh, verificationKey(sp, in, supplied), sig); err != nil {
			return nil, err
		}
		if sp.kind == spendCustom {
			out[i] = customClaim(in, withSighashFlag(sh, sig))
		} else {
			out[i] = claim(sp, withSighashFlag(sh, sig))
		}
	}
	return out, nil
}
