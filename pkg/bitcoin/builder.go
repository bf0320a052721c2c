package bitcoin

import (
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// DER signature upper bound plus the sighash byte
	ecdsaPlaceholderLen = 73
	schnorrSignatureLen = 64
)

type spendKind int

const (
	spendP2PKH spendKind = iota
	spendP2WPKH
	spendKeyPath
	spendScriptPath
	spendCustom
)

// spend keeps what is needed to turn a signature into a claim.
type spend struct {
	kind         spendKind
	publicKey    []byte
	payload      []byte
	controlBlock []byte
}

type outpoint struct {
	txid chainhash.Hash
	vout uint32
}

func outpointOf(in *utxo.TxIn) outpoint {
	var op outpoint
	copy(op.txid[:], in.Txid)
	op.vout = in.Vout
	return op
}

// prepared is a SigningInput lowered into a utxo request.
type prepared struct {
	req     *utxo.Request
	spends  map[outpoint]*spend
	outputs []TransactionOutput
	change  *TransactionOutput
}

func builderErr(format string, args ...any) error {
	return coinEntry.NewError(coinEntry.ErrorInvalidInput, format, args...)
}

func parseCompressedKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != btcec.PubKeyBytesLenCompressed {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected a %d-byte compressed public key, got %d bytes", btcec.PubKeyBytesLenCompressed, len(b))
	}
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid public key")
	}
	return pub, nil
}

// scriptParams is used for script construction only, where the network does not matter.
var scriptParams = &chaincfg.MainNetParams

func p2pkhScript(hash []byte) ([]byte, error) {
	addr, err := btcutil.NewAddressPubKeyHash(hash, scriptParams)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid pubkey hash")
	}
	return txscript.PayToAddrScript(addr)
}

func p2wpkhScript(hash []byte) ([]byte, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, scriptParams)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid pubkey hash")
	}
	return txscript.PayToAddrScript(addr)
}

func p2trScript(outputKey *btcec.PublicKey) ([]byte, error) {
	return txscript.PayToTaprootScript(outputKey)
}

func schnorrPlaceholderLen(t txscript.SigHashType) int {
	if t == txscript.SigHashDefault {
		return schnorrSignatureLen
	}
	return schnorrSignatureLen + 1
}

func pushOnly(items ...[]byte) []byte {
	b := txscript.NewScriptBuilder()
	for _, item := range items {
		b.AddData(item)
	}
	script, _ := b.Script()
	return script
}

func taprootMethod(in *Input) utxo.SigningMethod {
	if in.OnePrevout {
		return utxo.TaprootOnePrevout
	}
	return utxo.TaprootAll
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func buildInput(index int, in *Input) (utxo.TxIn, *spend, error) {
	txIn := utxo.TxIn{
		Txid:        in.Txid,
		Vout:        in.Vout,
		Value:       in.Value,
		Sequence:    utxo.DefaultSequence,
		SighashType: in.SighashType,
	}
	if in.Sequence != nil {
		txIn.Sequence = *in.Sequence
	}
	b := &in.Builder
	if countSet(b.P2PKH != nil, b.P2WPKH != nil, b.P2TRKeyPath != nil, b.P2TRScriptPath != nil, b.Custom != nil) != 1 {
		return txIn, nil, builderErr("input %d: exactly one spend condition must be set", index)
	}

	ecdsaPlaceholder := make([]byte, ecdsaPlaceholderLen)
	switch {
	case b.P2PKH != nil:
		if _, err := parseCompressedKey(b.P2PKH); err != nil {
			return txIn, nil, err
		}
		script, err := p2pkhScript(btcutil.Hash160(b.P2PKH))
		if err != nil {
			return txIn, nil, err
		}
		txIn.ScriptPubkey = script
		txIn.SigningMethod = utxo.Legacy
		txIn.PlaceholderScriptSig = pushOnly(ecdsaPlaceholder, b.P2PKH)
		return txIn, &spend{kind: spendP2PKH, publicKey: b.P2PKH}, nil

	case b.P2WPKH != nil:
		if _, err := parseCompressedKey(b.P2WPKH); err != nil {
			return txIn, nil, err
		}
		script, err := p2wpkhScript(btcutil.Hash160(b.P2WPKH))
		if err != nil {
			return txIn, nil, err
		}
		txIn.ScriptPubkey = script
		txIn.SigningMethod = utxo.Segwit
		txIn.PlaceholderWitness = [][]byte{ecdsaPlaceholder, b.P2WPKH}
		return txIn, &spend{kind: spendP2WPKH, publicKey: b.P2WPKH}, nil

	case b.P2TRKeyPath != nil:
		pub, err := parseCompressedKey(b.P2TRKeyPath)
		if err != nil {
			return txIn, nil, err
		}
		script, err := p2trScript(txscript.ComputeTaprootKeyNoScript(pub))
		if err != nil {
			return txIn, nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to build taproot script")
		}
		txIn.ScriptPubkey = script
		txIn.SigningMethod = taprootMethod(in)
		txIn.PlaceholderWitness = [][]byte{make([]byte, schnorrPlaceholderLen(in.SighashType))}
		return txIn, &spend{kind: spendKeyPath, publicKey: b.P2TRKeyPath}, nil

	case b.P2TRScriptPath != nil:
		sp := b.P2TRScriptPath
		if len(sp.Payload) == 0 {
			return txIn, nil, coinEntry.NewError(coinEntry.ErrorInvalidLeafHash, "input %d: empty taproot payload", index)
		}
		cb, err := txscript.ParseControlBlock(sp.ControlBlock)
		if err != nil {
			return txIn, nil, coinEntry.WrapError(coinEntry.ErrorInvalidLeafHash, err, fmt.Sprintf("input %d: invalid control block", index))
		}
		outputKey := txscript.ComputeTaprootOutputKey(cb.InternalKey, cb.RootHash(sp.Payload))
		script, err := p2trScript(outputKey)
		if err != nil {
			return txIn, nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to build taproot script")
		}
		txIn.ScriptPubkey = script
		txIn.SigningMethod = taprootMethod(in)
		txIn.TapLeaf = &utxo.TapLeaf{Script: sp.Payload, Version: cb.LeafVersion}
		txIn.PlaceholderWitness = [][]byte{make([]byte, schnorrPlaceholderLen(in.SighashType)), sp.Payload, sp.ControlBlock}
		return txIn, &spend{kind: spendScriptPath, payload: sp.Payload, controlBlock: sp.ControlBlock}, nil

	default:
		c := b.Custom
		if len(c.ScriptPubkey) == 0 {
			return txIn, nil, builderErr("input %d: empty custom script", index)
		}
		txIn.ScriptPubkey = c.ScriptPubkey
		txIn.SigningMethod = c.SigningMethod
		switch {
		case c.SigningMethod == utxo.Legacy:
			txIn.PlaceholderScriptSig = pushOnly(ecdsaPlaceholder)
		case c.SigningMethod == utxo.Segwit:
			txIn.PlaceholderWitness = [][]byte{ecdsaPlaceholder}
		case c.SigningMethod.IsTaproot():
			if in.OnePrevout {
				txIn.SigningMethod = utxo.TaprootOnePrevout
			}
			txIn.PlaceholderWitness = [][]byte{make([]byte, schnorrPlaceholderLen(in.SighashType))}
		default:
			return txIn, nil, builderErr("input %d: unknown signing method %d", index, c.SigningMethod)
		}
		return txIn, &spend{kind: spendCustom}, nil
	}
}

func keyHash(index int, k *PubkeyOrHash, requireCompressed bool) ([]byte, error) {
	switch {
	case k.PublicKey != nil && k.PubkeyHash != nil:
		return nil, builderErr("output %d: set either public key or pubkey hash", index)
	case k.PublicKey != nil:
		if requireCompressed {
			if _, err := parseCompressedKey(k.PublicKey); err != nil {
				return nil, err
			}
		} else if _, err := btcec.ParsePubKey(k.PublicKey); err != nil {
			return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid public key")
		}
		return btcutil.Hash160(k.PublicKey), nil
	case len(k.PubkeyHash) == 20:
		return k.PubkeyHash, nil
	}
	return nil, builderErr("output %d: pubkey hash must be 20 bytes", index)
}

func buildOutput(ctx *coinEntry.CoinContext, index int, out *Output) (TransactionOutput, error) {
	mirror := TransactionOutput{Value: out.Value}
	b := &out.Builder
	if countSet(b.P2PKH != nil, b.P2WPKH != nil, b.P2TRKeyPath != nil, b.P2TRScriptPath != nil,
		b.P2SH != nil, b.P2WSH != nil, b.ToAddress != "", b.CustomScript != nil) != 1 {
		return mirror, builderErr("output %d: exactly one locking condition must be set", index)
	}

	var (
		script []byte
		err    error
	)
	switch {
	case b.P2PKH != nil:
		var hash []byte
		if hash, err = keyHash(index, b.P2PKH, false); err == nil {
			script, err = p2pkhScript(hash)
		}
	case b.P2WPKH != nil:
		var hash []byte
		if hash, err = keyHash(index, b.P2WPKH, true); err == nil {
			script, err = p2wpkhScript(hash)
		}
	case b.P2TRKeyPath != nil:
		var pub *btcec.PublicKey
		if pub, err = parseCompressedKey(b.P2TRKeyPath); err == nil {
			script, err = p2trScript(txscript.ComputeTaprootKeyNoScript(pub))
		}
	case b.P2TRScriptPath != nil:
		script, mirror.ControlBlock, err = scriptPathOutput(b.P2TRScriptPath)
		mirror.TaprootPayload = b.P2TRScriptPath.Payload
	case b.P2SH != nil:
		var addr *btcutil.AddressScriptHash
		if addr, err = btcutil.NewAddressScriptHashFromHash(b.P2SH, scriptParams); err == nil {
			script, err = txscript.PayToAddrScript(addr)
		} else {
			err = coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid script hash")
		}
	case b.P2WSH != nil:
		var addr *btcutil.AddressWitnessScriptHash
		if addr, err = btcutil.NewAddressWitnessScriptHash(b.P2WSH, scriptParams); err == nil {
			script, err = txscript.PayToAddrScript(addr)
		} else {
			err = coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid witness script hash")
		}
	case b.ToAddress != "":
		var addr *Address
		if addr, err = parseAddress(ctx, b.ToAddress, nil); err == nil {
			script, err = addr.ScriptPubkey()
		}
	default:
		script = b.CustomScript
	}
	if err != nil {
		return mirror, err
	}
	mirror.ScriptPubkey = script
	return mirror, nil
}

// scriptPathOutput commits a single leaf under the internal key and returns the
// locking script plus the control block needed to spend it.
func scriptPathOutput(o *TaprootScriptPathOutput) ([]byte, []byte, error) {
	if len(o.Payload) == 0 {
		return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidLeafHash, "empty taproot payload")
	}
	internal, err := parseCompressedKey(o.InternalKey)
	if err != nil {
		return nil, nil, err
	}
	tree := txscript.AssembleTaprootScriptTree(txscript.NewBaseTapLeaf(o.Payload))
	root := tree.RootNode.TapHash()
	script, err := p2trScript(txscript.ComputeTaprootOutputKey(internal, root[:]))
	if err != nil {
		return nil, nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to build taproot script")
	}
	cb := tree.LeafMerkleProofs[0].ToControlBlock(internal)
	controlBlock, err := cb.ToBytes()
	if err != nil {
		return nil, nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to serialize control block")
	}
	return script, controlBlock, nil
}

func prepare(ctx *coinEntry.CoinContext, input *SigningInput) (*prepared, error) {
	p := &prepared{
		req: &utxo.Request{
			Version:       input.Version,
			LockTime:      input.LockTime,
			InputSelector: input.InputSelector,
			FeePerVb:      input.FeePerVb,
			DustThreshold: input.DustThreshold,
		},
		spends: make(map[outpoint]*spend, len(input.Inputs)),
	}
	for i := range input.Inputs {
		if len(input.Inputs[i].Txid) != chainhash.HashSize {
			return nil, builderErr("input %d: txid must be %d bytes", i, chainhash.HashSize)
		}
		txIn, sp, err := buildInput(i, &input.Inputs[i])
		if err != nil {
			return nil, err
		}
		op := outpointOf(&txIn)
		if _, dup := p.spends[op]; dup {
			return nil, builderErr("input %d: duplicate outpoint", i)
		}
		p.spends[op] = sp
		p.req.Inputs = append(p.req.Inputs, txIn)
	}
	for i := range input.Outputs {
		mirror, err := buildOutput(ctx, i, &input.Outputs[i])
		if err != nil {
			return nil, err
		}
		p.outputs = append(p.outputs, mirror)
		p.req.Outputs = append(p.req.Outputs, utxo.TxOut{Value: mirror.Value, ScriptPubkey: mirror.ScriptPubkey})
	}
	if input.ChangeOutput != nil && !input.DisableChangeOutput {
		change, err := buildOutput(ctx, len(input.Outputs), input.ChangeOutput)
		if err != nil {
			return nil, err
		}
		p.change = &change
		p.req.ChangeScriptPubkey = change.ScriptPubkey
	}
	return p, nil
}

// outputMirrors pairs the planned outputs with their builder metadata.
func (p *prepared) outputMirrors(plan *utxo.Plan) []TransactionOutput {
	mirrors := make([]TransactionOutput, len(plan.Outputs))
	for i, out := range plan.Outputs {
		if i == plan.ChangeIndex && p.change != nil {
			mirrors[i] = *p.change
		} else if i < len(p.outputs) {
			mirrors[i] = p.outputs[i]
		}
		mirrors[i].ScriptPubkey = out.ScriptPubkey
		mirrors[i].Value = out.Value
	}
	return mirrors
}
