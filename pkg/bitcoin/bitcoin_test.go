package bitcoin

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}

func btcContext(t *testing.T) *coinEntry.CoinContext {
	coin, err := coinRegistry.GetCoin(coinRegistry.Bitcoin)
	require.NoError(t, err)
	return coin.Context()
}

// p2pkhToP2wpkh spends a legacy output to a native segwit output.
func p2pkhToP2wpkh(t *testing.T) *SigningInput {
	return &SigningInput{
		Version:    2,
		PrivateKey: mustHex(t, "57a64865bce5d4855e99b1cce13327c46171434f2d72eeaf9da53ee075e7f90a"),
		Inputs: []Input{{
			Txid:    reversed(mustHex(t, "181c84965c9ea86a5fac32fdbd5f73a21a7a9e749fb6ab97e273af2329f6b911")),
			Vout:    0,
			Value:   5_000_000_000,
			Builder: InputBuilder{P2PKH: mustHex(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f")},
		}},
		Outputs: []Output{{
			Value:   4_999_000_000,
			Builder: OutputBuilder{P2WPKH: &PubkeyOrHash{PublicKey: mustHex(t, "025a0af1510f0f24d40dd00d7c0e51605ca504bbc177c3e19b065f373a1efdd22f")}},
		}},
		DisableChangeOutput: true,
	}
}

const (
	alice2Priv = "12ce558df23528f1aa86f1f51ac7e13a197a06bda27610fa89e13b04c40ee999"
	alice2Pub  = "0351e003fdc48e7f31c9bc94996c91f6c3273b7ef4208a1686021bedf7673bb058"
	bob2Priv   = "26c2566adcc030a1799213bfd546e615f6ab06f72085ec6806ff1761da48d227"
	bob2Pub    = "02c0938cf377023dfde55e9c96b3cff4ca8894fb6b5d2009006bd43c0bff69cac9"
)

func TestSign_P2PKHToP2WPKH(t *testing.T) {
	out := NewEntry(nil).Sign(btcContext(t), p2pkhToP2wpkh(t))
	require.False(t, out.Failed(), out.ErrorMessage)

	assert.Equal(t, "020000000111b9f62923af73e297abb69f749e7a1aa2735fbdfd32ac5f6aa89e5c96841c18000000006b483045022100df9ed0b662b759e68b89a42e7144cddf787782a7129d4df05642dd825930e6e6022051a08f577f11cc7390684bbad2951a6374072253ffcf2468d14035ed0d8cd6490121028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28fffffffff01c0aff629010000001600140d0e1cec6c2babe8badde5e9b3dea667da90036d00000000",
		hex.EncodeToString(out.Encoded))
	assert.Equal(t, uint64(1_000_000), out.Fee)
	assert.Len(t, out.Transaction.Inputs, 1)
	assert.Len(t, out.Transaction.Outputs, 1)
}

func TestSign_ScrubsPrivateKey(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	priv := in.PrivateKey
	NewEntry(nil).Sign(btcContext(t), in)
	assert.Equal(t, make([]byte, 32), priv)
}

func TestSign_TaprootRoundTrip(t *testing.T) {
	ctx := btcContext(t)
	entry := NewEntry(nil)

	// alice pays bob's taproot key path output
	fund := &SigningInput{
		Version:    2,
		PrivateKey: mustHex(t, alice2Priv),
		Inputs: []Input{{
			Txid:    reversed(mustHex(t, "c50563913e5a838f937c94232f5a8fc74e58b629fae41dfdffcc9a70f833b53a")),
			Value:   5_000_000_000,
			Builder: InputBuilder{P2PKH: mustHex(t, alice2Pub)},
		}},
		Outputs:             []Output{{Value: 4_999_000_000, Builder: OutputBuilder{P2TRKeyPath: mustHex(t, bob2Pub)}}},
		DisableChangeOutput: true,
	}
	out := entry.Sign(ctx, fund)
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, "02000000013ab533f8709accfffd1de4fa29b6584ec78f5a2f23947c938f835a3e916305c5000000006b48304502210086ab2c2192e2738529d6cd9604d8ee75c5b09b0c2f4066a5c5fa3f87a26c0af602202afc7096aaa992235c43e712146057b5ed6a776d82b9129620bc5a21991c0a5301210351e003fdc48e7f31c9bc94996c91f6c3273b7ef4208a1686021bedf7673bb058ffffffff01c0aff62901000000225120e01cfdd05da8fa1d71f987373f3790d45dea9861acb0525c86656fe50f4397a600000000",
		hex.EncodeToString(out.Encoded))

	// bob spends it back to alice through the key path
	spend := &SigningInput{
		Version:    2,
		PrivateKey: mustHex(t, bob2Priv),
		Inputs: []Input{{
			Txid:    reversed(mustHex(t, "9a582032f6a50cedaff77d3d5604b33adf8bc31bdaef8de977c2187e395860ac")),
			Value:   4_999_000_000,
			Builder: InputBuilder{P2TRKeyPath: mustHex(t, bob2Pub)},
		}},
		Outputs:             []Output{{Value: 4_998_000_000, Builder: OutputBuilder{P2TRKeyPath: mustHex(t, alice2Pub)}}},
		DisableChangeOutput: true,
		FixedSchnorrAuxRand: true,
	}
	out = entry.Sign(ctx, spend)
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, "02000000000101ac6058397e18c277e98defda1bc38bdf3ab304563d7df7afed0ca5f63220589a0000000000ffffffff01806de72901000000225120a5c027857e359d19f625e52a106b8ac6ca2d6a8728f6cf2107cd7958ee0787c20140ec2d3910d41506b60aaa20520bb72f15e2d2cbd97e3a8e26ee7bad5f4c56b0f2fb0ceaddac33cb2813a33ba017ba6b1d011bab74a0426f12a2bcf47b4ed5bc8600000000",
		hex.EncodeToString(out.Encoded))
	require.Len(t, out.Transaction.Inputs[0].Witness, 1)
	assert.Len(t, out.Transaction.Inputs[0].Witness[0], 64)
}

func TestPreImageHashesThenCompile_MatchesSign(t *testing.T) {
	ctx := btcContext(t)
	entry := NewEntry(nil)

	pre := entry.PreImageHashes(ctx, p2pkhToP2wpkh(t))
	require.False(t, pre.Failed(), pre.ErrorMessage)
	require.Len(t, pre.Sighashes, 1)
	assert.Equal(t, utxo.Legacy, pre.Sighashes[0].SigningMethod)
	assert.Equal(t, txscript.SigHashAll, pre.Sighashes[0].SighashType)

	key, err := keypair.NewSecp256k1PrivateKey(mustHex(t, "57a64865bce5d4855e99b1cce13327c46171434f2d72eeaf9da53ee075e7f90a"))
	require.NoError(t, err)
	compact, err := key.SignCompact(pre.Sighashes[0].Sighash)
	require.NoError(t, err)

	in := p2pkhToP2wpkh(t)
	in.PrivateKey = nil
	compiled := entry.Compile(ctx, in, [][]byte{compact[:64]}, nil)
	require.False(t, compiled.Failed(), compiled.ErrorMessage)

	signed := entry.Sign(ctx, p2pkhToP2wpkh(t))
	assert.Equal(t, signed.Encoded, compiled.Encoded)
	assert.Equal(t, signed.Txid, compiled.Txid)
}

func TestCompile_RejectsForeignSignature(t *testing.T) {
	ctx := btcContext(t)
	entry := NewEntry(nil)

	pre := entry.PreImageHashes(ctx, p2pkhToP2wpkh(t))
	require.False(t, pre.Failed())

	other, err := keypair.NewSecp256k1PrivateKey(mustHex(t, bob2Priv))
	require.NoError(t, err)
	der, err := other.SignECDSA(pre.Sighashes[0].Sighash)
	require.NoError(t, err)

	out := entry.Compile(ctx, p2pkhToP2wpkh(t), [][]byte{der}, nil)
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)
}

func TestCompile_UnmatchedSignatureCount(t *testing.T) {
	out := NewEntry(nil).Compile(btcContext(t), p2pkhToP2wpkh(t), nil, nil)
	assert.Equal(t, coinEntry.ErrorUnmatchedSignatureCount, out.Error)
}

func TestSign_WrongKeyIsMissingPrivateKey(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.PrivateKey = mustHex(t, bob2Priv)
	out := NewEntry(nil).Sign(btcContext(t), in)
	assert.Equal(t, coinEntry.ErrorMissingPrivateKey, out.Error)
}

func TestSign_NoPrivateKey(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.PrivateKey = nil
	out := NewEntry(nil).Sign(btcContext(t), in)
	assert.Equal(t, coinEntry.ErrorMissingPrivateKey, out.Error)
}

func TestSign_TaprootScriptPath(t *testing.T) {
	ctx := btcContext(t)
	entry := NewEntry(nil)

	alice, err := keypair.NewSecp256k1PrivateKey(mustHex(t, alice2Priv))
	require.NoError(t, err)
	xonly := alice.PublicKey(true)[1:]
	payload := append(append([]byte{0x20}, xonly...), txscript.OP_CHECKSIG)

	// lock funds behind the leaf
	lock := p2pkhToP2wpkh(t)
	lock.Outputs[0].Builder = OutputBuilder{P2TRScriptPath: &TaprootScriptPathOutput{
		InternalKey: mustHex(t, bob2Pub),
		Payload:     payload,
	}}
	locked := entry.Sign(ctx, lock)
	require.False(t, locked.Failed(), locked.ErrorMessage)
	lockedOut := locked.Transaction.Outputs[0]
	require.NotEmpty(t, lockedOut.ControlBlock)
	assert.Equal(t, payload, lockedOut.TaprootPayload)

	spend := &SigningInput{
		Version:    2,
		PrivateKey: mustHex(t, alice2Priv),
		Inputs: []Input{{
			Txid:  reversed(locked.Txid),
			Value: lockedOut.Value,
			Builder: InputBuilder{P2TRScriptPath: &TaprootScriptPathInput{
				Payload:      payload,
				ControlBlock: lockedOut.ControlBlock,
			}},
		}},
		Outputs:             []Output{{Value: lockedOut.Value - 1000, Builder: OutputBuilder{P2TRKeyPath: mustHex(t, alice2Pub)}}},
		DisableChangeOutput: true,
		FixedSchnorrAuxRand: true,
	}
	pre := entry.PreImageHashes(ctx, spend)
	require.False(t, pre.Failed(), pre.ErrorMessage)
	require.Len(t, pre.Sighashes, 1)
	assert.NotEmpty(t, pre.Sighashes[0].LeafHash)
	assert.Equal(t, lockedOut.ScriptPubkey, pre.UtxoInputs[0].ScriptPubkey)

	out := entry.Sign(ctx, spend)
	require.False(t, out.Failed(), out.ErrorMessage)
	witness := out.Transaction.Inputs[0].Witness
	require.Len(t, witness, 3)
	assert.Equal(t, payload, witness[1])
	assert.Equal(t, lockedOut.ControlBlock, witness[2])
	assert.NoError(t, keypair.VerifySchnorr(xonly, pre.Sighashes[0].Sighash, witness[0]))
}

func TestSign_ChangeOutput(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.Outputs[0].Value = 1_000_000_000
	in.FeePerVb = 10
	in.DisableChangeOutput = false
	in.ChangeOutput = &Output{Builder: OutputBuilder{P2PKH: &PubkeyOrHash{PublicKey: mustHex(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f")}}}

	out := NewEntry(nil).Sign(btcContext(t), in)
	require.False(t, out.Failed(), out.ErrorMessage)
	require.Len(t, out.Transaction.Outputs, 2)
	change := out.Transaction.Outputs[1]
	assert.Equal(t, uint64(5_000_000_000)-1_000_000_000-out.Fee, change.Value)
	assert.GreaterOrEqual(t, out.Fee, out.Vsize*10)
}

func TestSign_OnePrevoutWithoutAnyoneCanPay(t *testing.T) {
	in := &SigningInput{
		Version:    2,
		PrivateKey: mustHex(t, bob2Priv),
		Inputs: []Input{{
			Txid:       reversed(mustHex(t, "9a582032f6a50cedaff77d3d5604b33adf8bc31bdaef8de977c2187e395860ac")),
			Value:      4_999_000_000,
			OnePrevout: true,
			Builder:    InputBuilder{P2TRKeyPath: mustHex(t, bob2Pub)},
		}},
		Outputs:             []Output{{Value: 4_998_000_000, Builder: OutputBuilder{P2TRKeyPath: mustHex(t, alice2Pub)}}},
		DisableChangeOutput: true,
	}
	out := NewEntry(nil).Sign(btcContext(t), in)
	assert.Equal(t, coinEntry.ErrorInvalidSighashType, out.Error)

	in.PrivateKey = mustHex(t, bob2Priv)
	in.Inputs[0].SighashType = txscript.SigHashAll | txscript.SigHashAnyOneCanPay
	out = NewEntry(nil).Sign(btcContext(t), in)
	require.False(t, out.Failed(), out.ErrorMessage)
	sig := out.Transaction.Inputs[0].Witness[0]
	require.Len(t, sig, 65)
	assert.Equal(t, byte(0x81), sig[64])
}

func TestBuilder_RejectsAmbiguousInput(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.Inputs[0].Builder.P2WPKH = in.Inputs[0].Builder.P2PKH
	out := NewEntry(nil).PreImageHashes(btcContext(t), in)
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)
}

func TestBuilder_RejectsDuplicateOutpoint(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.Inputs = append(in.Inputs, in.Inputs[0])
	out := NewEntry(nil).PreImageHashes(btcContext(t), in)
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)
}

func TestDeriveAddress(t *testing.T) {
	ctx := btcContext(t)
	entry := NewEntry(nil)
	g, err := keypair.NewPublicKey(keypair.Secp256k1, mustHex(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"))
	require.NoError(t, err)

	segwit, err := entry.DeriveAddress(ctx, g, coinEntry.DerivationDefault, nil)
	require.NoError(t, err)
	assert.Equal(t, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", segwit.String())

	legacy, err := entry.DeriveAddress(ctx, g, coinEntry.DerivationBitcoinLegacy, nil)
	require.NoError(t, err)
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", legacy.String())

	taproot, err := entry.DeriveAddress(ctx, g, coinEntry.DerivationBitcoinTaproot, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taproot.String(), "bc1p"))
	parsed, err := entry.ParseAddress(ctx, taproot.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, taproot.Bytes(), parsed.Bytes())
	assert.Len(t, parsed.Bytes(), schnorr.PubKeyBytesLen)
}

func TestDeriveAddress_Litecoin(t *testing.T) {
	coin, err := coinRegistry.GetCoin(coinRegistry.Litecoin)
	require.NoError(t, err)
	g, err := keypair.NewPublicKey(keypair.Secp256k1, mustHex(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"))
	require.NoError(t, err)

	addr, err := NewEntry(nil).DeriveAddress(coin.Context(), g, coinEntry.DerivationDefault, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.String(), "ltc1q"))
	parsed, err := NewEntry(nil).ParseAddress(coin.Context(), addr.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, addr.Bytes(), parsed.Bytes())

	_, err = NewEntry(nil).ParseAddress(btcContext(t), addr.String(), nil)
	assert.ErrorIs(t, err, coinEntry.ErrInvalidAddress)
}

func TestDeriveAddress_WrongKeyType(t *testing.T) {
	pub := &keypair.PublicKey{Type: keypair.Ed25519, Bytes: make([]byte, 32)}
	_, err := NewEntry(nil).DeriveAddress(btcContext(t), pub, coinEntry.DerivationDefault, nil)
	assert.ErrorIs(t, err, coinEntry.ErrPublicKeyTypeMismatch)
}

func TestPlan(t *testing.T) {
	in := p2pkhToP2wpkh(t)
	in.Outputs[0].Value = 1_000_000
	in.FeePerVb = 2
	in.DisableChangeOutput = false
	in.ChangeOutput = &Output{Builder: OutputBuilder{P2WPKH: &PubkeyOrHash{PublicKey: mustHex(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f")}}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	res, err := NewEntry(nil).Plan(btcContext(t), raw)
	require.NoError(t, err)
	var plan TransactionPlan
	require.NoError(t, json.Unmarshal(res, &plan))
	require.False(t, plan.Failed(), plan.ErrorMessage)
	assert.Equal(t, uint64(5_000_000_000), plan.AvailableAmount)
	assert.Equal(t, uint64(1_000_000), plan.SendAmount)
	assert.Equal(t, plan.AvailableAmount-plan.SendAmount-plan.FeeEstimate, plan.Change)
	assert.Len(t, plan.Outputs, 2)
}
