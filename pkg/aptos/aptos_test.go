package aptos

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/bcs"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "5d996aa76b3212142792d9130796cd2e11e3c445a93118c08414df4f66bc60ec"
	testPubKey  = "ea526ba1710343d953461ff68641f1b7df5f23b9042ffa2d2a798d3adb3f3d6c"
	testAccount = "0x07968dab936c1bad187c60ce4082f307d030d780e91e694ae03aef16aba73f30"

	transferRaw = "07968dab936c1bad187c60ce4082f307d030d780e91e694ae03aef16aba73f3063000000000000000200000000000000000000000000000000000000000000000000000000000000010d6170746f735f6163636f756e74087472616e7366657200022007968dab936c1bad187c60ce4082f307d030d780e91e694ae03aef16aba73f3008e803000000000000fe4d3200000000006400000000000000c2276ada0000000021"
	transferSig = "5707246db31e2335edc4316a7a656a11691d1d1647f6e864d1ab12f43428aaaf806cf02120d0b608cdd89c5c904af7b137432aacdd60cc53f9fad7bd33578e01"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func transferInput(t *testing.T) *SigningInput {
	return &SigningInput{
		Sender:                  testAccount,
		SequenceNumber:          99,
		MaxGasAmount:            3296766,
		GasUnitPrice:            100,
		ExpirationTimestampSecs: 3664390082,
		ChainID:                 33,
		Transfer:                &TransferMessage{To: testAccount, Amount: 1000},
		PrivateKey:              mustHex(t, testKey),
	}
}

func TestSign_Transfer(t *testing.T) {
	in := transferInput(t)
	out := NewEntry().Sign(nil, in)
	require.False(t, out.Failed(), out.ErrorMessage)

	assert.Equal(t, transferRaw, hex.EncodeToString(out.RawTxn))
	assert.Equal(t, transferSig, hex.EncodeToString(out.Authenticator.Signature))
	assert.Equal(t, testPubKey, hex.EncodeToString(out.Authenticator.PublicKey))
	assert.Equal(t, transferRaw+"0020"+testPubKey+"40"+transferSig, hex.EncodeToString(out.Encoded))
	assert.Equal(t, "0x"+transferRaw+"0020"+testPubKey+"40"+transferSig, out.EncodeHex())
	assert.Equal(t, make([]byte, len(in.PrivateKey)), in.PrivateKey)
}

func TestPreImageHashes_DomainSeparated(t *testing.T) {
	in := transferInput(t)
	in.PrivateKey = nil
	pre := NewEntry().PreImageHashes(nil, in)
	require.False(t, pre.Failed(), pre.ErrorMessage)
	assert.Equal(t, "b5e97db07fa0bd0e5598aa3643a9bc6f6693bddc1a9fec9e674a461eaa00b193"+transferRaw, hex.EncodeToString(pre.Data))
}

func TestCompile_MatchesSign(t *testing.T) {
	entry := NewEntry()
	in := transferInput(t)
	in.PrivateKey = nil
	pre := entry.PreImageHashes(nil, in)
	require.False(t, pre.Failed())

	key, err := keypair.NewEd25519PrivateKey(mustHex(t, testKey))
	require.NoError(t, err)
	sig := key.Sign(pre.Data)

	out := entry.Compile(nil, in, [][]byte{sig}, [][]byte{key.PublicKey()})
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, transferSig, hex.EncodeToString(sig))

	out = entry.Compile(nil, in, [][]byte{sig}, nil)
	assert.Equal(t, coinEntry.ErrorUnmatchedSignatureCount, out.Error)

	bad := append([]byte(nil), sig...)
	bad[0] ^= 0xff
	out = entry.Compile(nil, in, [][]byte{bad}, [][]byte{key.PublicKey()})
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)
}

func TestSign_SenderMismatch(t *testing.T) {
	in := transferInput(t)
	in.Sender = "0x1"
	out := NewEntry().Sign(nil, in)
	assert.Equal(t, coinEntry.ErrorMissingPrivateKey, out.Error)

	in = transferInput(t)
	in.PrivateKey = nil
	out = NewEntry().Sign(nil, in)
	assert.Equal(t, coinEntry.ErrorMissingPrivateKey, out.Error)
}

func TestSign_PayloadSelection(t *testing.T) {
	in := transferInput(t)
	in.CreateAccount = &CreateAccountMessage{AuthKey: testAccount}
	out := NewEntry().Sign(nil, in)
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)

	in = transferInput(t)
	in.Transfer = nil
	out = NewEntry().Sign(nil, in)
	assert.Equal(t, coinEntry.ErrorInvalidInput, out.Error)
}

func TestSign_TokenTransfer(t *testing.T) {
	in := transferInput(t)
	in.Transfer = nil
	in.TokenTransfer = &TokenTransferMessage{To: testAccount, Amount: 1000, Function: "0x1::aptos_coin::AptosCoin"}
	out := NewEntry().Sign(nil, in)
	require.False(t, out.Failed(), out.ErrorMessage)

	raw := hex.EncodeToString(out.RawTxn)
	// module id, function name and a single struct type argument
	assert.Contains(t, raw, "0000000000000000000000000000000000000000000000000000000000000001"+"04636f696e"+"087472616e73666572"+"01"+"07")
	assert.Contains(t, raw, "0a6170746f735f636f696e"+"094170746f73436f696e"+"00")
}

func TestSign_EntryFunctionMatchesTransfer(t *testing.T) {
	in := transferInput(t)
	in.Transfer = nil
	in.EntryFunction = &EntryFunctionMessage{
		Function:  "0x1::aptos_account::transfer",
		Arguments: [][]byte{mustHex(t, strings.TrimPrefix(testAccount, "0x")), bcs.U64Bytes(1000)},
	}
	out := NewEntry().Sign(nil, in)
	require.False(t, out.Failed(), out.ErrorMessage)
	assert.Equal(t, transferSig, hex.EncodeToString(out.Authenticator.Signature))
}

func TestParseTypeTag(t *testing.T) {
	tag, err := ParseTypeTag("vector<u8>")
	require.NoError(t, err)
	b, err := bcs.Marshal(tag)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0x01}, b)

	tag, err = ParseTypeTag("0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>")
	require.NoError(t, err)
	b, err = bcs.Marshal(tag)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), b[0])
	assert.Equal(t, byte(0x01), b[1+32+5+10], "one type argument")

	for _, bad := range []string{"", "vector<u8", "0x1::coin", "0x1::coin::X<u8", "u64>"} {
		_, err := ParseTypeTag(bad)
		assert.Error(t, err, bad)
	}
}

func TestAddress(t *testing.T) {
	entry := NewEntry()
	addr, err := entry.DeriveAddress(nil, &keypair.PublicKey{Type: keypair.Ed25519, Bytes: mustHex(t, testPubKey)}, coinEntry.DerivationDefault, nil)
	require.NoError(t, err)
	assert.Equal(t, testAccount, addr.String())

	_, err = entry.DeriveAddress(nil, &keypair.PublicKey{Type: keypair.Secp256k1, Bytes: make([]byte, 33)}, coinEntry.DerivationDefault, nil)
	assert.ErrorIs(t, err, coinEntry.ErrPublicKeyTypeMismatch)

	short, err := entry.ParseAddressUnchecked(nil, "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000001", short.String())

	_, err = entry.ParseAddress(nil, "0x1", nil)
	assert.Error(t, err)
	_, err = entry.ParseAddress(nil, "0xzz68dab936c1bad187c60ce4082f307d030d780e91e694ae03aef16aba73f30", nil)
	assert.Error(t, err)
}
