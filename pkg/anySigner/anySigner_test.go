package anySigner

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/Layr-Labs/multichain-signer/pkg/ethereum"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/solana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	eip155Key     = "4646464646464646464646464646464646464646464646464646464646464646"
	eip155Encoded = "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	eip155Hash    = "daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func eip155Request(t *testing.T, withKey bool) []byte {
	ether, _ := new(big.Int).SetString("1000000000000000000", 10)
	in := &ethereum.SigningInput{
		ChainID:   big.NewInt(1),
		Nonce:     9,
		GasPrice:  big.NewInt(20_000_000_000),
		GasLimit:  21000,
		ToAddress: "0x3535353535353535353535353535353535353535",
		Amount:    ether,
	}
	if withKey {
		in.PrivateKey = mustHex(t, eip155Key)
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	return raw
}

func TestAnySigner_Sign_Ethereum(t *testing.T) {
	raw, err := NewAnySigner(nil).Sign(coinRegistry.Ethereum, eip155Request(t, true))
	require.NoError(t, err)

	var out ethereum.SigningOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, eip155Encoded, hex.EncodeToString(out.Encoded))
}

func TestAnySigner_PreImageThenCompile(t *testing.T) {
	signer := NewAnySigner(zap.NewNop())
	raw, err := signer.PreImageHashes(coinRegistry.Ethereum, eip155Request(t, false))
	require.NoError(t, err)

	var pre ethereum.PreSigningOutput
	require.NoError(t, json.Unmarshal(raw, &pre))
	require.False(t, pre.Failed(), pre.ErrorMessage)
	assert.Equal(t, eip155Hash, hex.EncodeToString(pre.DataHash))

	key, err := keypair.NewSecp256k1PrivateKey(mustHex(t, eip155Key))
	require.NoError(t, err)
	sig, err := key.SignCompact(pre.DataHash)
	require.NoError(t, err)

	raw, err = signer.Compile(coinRegistry.Ethereum, eip155Request(t, false), [][]byte{sig}, [][]byte{key.PublicKey(true)})
	require.NoError(t, err)
	var out ethereum.SigningOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, eip155Encoded, hex.EncodeToString(out.Encoded))
}

func TestAnySigner_FailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	signer := NewAnySigner(zap.New(core))

	raw, err := signer.Compile(coinRegistry.Ethereum, eip155Request(t, false), nil, nil)
	require.NoError(t, err)
	var out ethereum.SigningOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, coinEntry.ErrorUnmatchedSignatureCount, out.Error)

	entries := logs.FilterMessage("Operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "UnmatchedSignatureCount", entries[0].ContextMap()["code"])
	assert.Equal(t, "compile", entries[0].ContextMap()["operation"])
}

func TestAnySigner_UnknownCoin(t *testing.T) {
	signer := NewAnySigner(nil)
	_, err := signer.Sign(coinRegistry.CoinType(12345), []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnsupportedCoin)
	assert.False(t, signer.ValidateAddress(coinRegistry.CoinType(12345), "x", nil))
	assert.False(t, signer.SupportsJSON(coinRegistry.CoinType(12345)))
}

func TestAnySigner_MalformedInput(t *testing.T) {
	_, err := NewAnySigner(nil).Sign(coinRegistry.Solana, []byte(`{"transfer":`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestAnySigner_OptionalCapabilities(t *testing.T) {
	signer := NewAnySigner(nil)
	assert.True(t, signer.SupportsJSON(coinRegistry.Cosmos))
	assert.False(t, signer.SupportsJSON(coinRegistry.Solana))

	_, err := signer.Plan(coinRegistry.Ethereum, []byte(`{}`))
	assert.ErrorIs(t, err, coinEntry.ErrNotSupported)

	key := mustHex(t, eip155Key)
	_, err = signer.SignJSON(coinRegistry.Aptos, `{}`, key)
	assert.ErrorIs(t, err, coinEntry.ErrNotSupported)
	assert.Equal(t, make([]byte, 32), key, "private key is zeroed")

	_, err = signer.SignMessage(coinRegistry.Sui, mustHex(t, eip155Key), "hi")
	assert.ErrorIs(t, err, coinEntry.ErrNotSupported)
	assert.False(t, signer.VerifyMessage(coinRegistry.Sui, nil, "hi", ""))
}

func TestAnySigner_MessageSigning(t *testing.T) {
	signer := NewAnySigner(nil)
	key, err := keypair.NewSecp256k1PrivateKey(mustHex(t, eip155Key))
	require.NoError(t, err)

	sig, err := signer.SignMessage(coinRegistry.Ethereum, mustHex(t, eip155Key), "Hello World")
	require.NoError(t, err)
	assert.True(t, signer.VerifyMessage(coinRegistry.Ethereum, key.PublicKey(false), "Hello World", sig))
}

func TestAnySigner_Addresses(t *testing.T) {
	signer := NewAnySigner(nil)
	assert.True(t, signer.ValidateAddress(coinRegistry.Ethereum, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil))
	assert.False(t, signer.ValidateAddress(coinRegistry.Ethereum, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe", nil))
	assert.True(t, signer.ValidateAddress(coinRegistry.Bitcoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", nil))
	assert.False(t, signer.ValidateAddress(coinRegistry.Litecoin, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", nil))

	normalized, err := signer.NormalizeAddress(coinRegistry.Ethereum, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", normalized)

	seed := make([]byte, 32)
	ed, err := keypair.NewEd25519PrivateKey(seed)
	require.NoError(t, err)
	pub := &keypair.PublicKey{Type: keypair.Ed25519, Bytes: ed.PublicKey()}
	addr, err := signer.DeriveAddress(coinRegistry.Solana, pub, coinEntry.DerivationDefault, nil)
	require.NoError(t, err)
	assert.True(t, signer.ValidateAddress(coinRegistry.Solana, addr, nil))

	_, err = signer.DeriveAddress(coinRegistry.Bitcoin, pub, coinEntry.DerivationDefault, nil)
	assert.ErrorIs(t, err, coinEntry.ErrPublicKeyTypeMismatch)
	_, err = signer.DeriveAddress(coinRegistry.Bitcoin, nil, coinEntry.DerivationDefault, nil)
	assert.ErrorIs(t, err, coinEntry.ErrInvalidInput)
}

func TestAnySigner_ConcurrentUse(t *testing.T) {
	signer := NewAnySigner(nil)
	req := &solana.SigningInput{
		Sender:          "7v91N7iZ9mNicL8WfG6cgSCKyRXydQjLh6UYBWwm6y1Q",
		RecentBlockhash: "11111111111111111111111111111111",
		Transfer:        &solana.Transfer{Recipient: "EN2sCsJ1WDV8UFqsiTXHcUPUxQ4juE71eCknHYYMifkd", Value: 42},
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = signer.PreImageHashes(coinRegistry.Solana, raw)
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
	var pre solana.PreSigningOutput
	require.NoError(t, json.Unmarshal(results[0], &pre))
	assert.Equal(t, []string{req.Sender}, pre.Signers)
}
