package coinEntry

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInput struct {
	Value int  `json:"value"`
	Panic bool `json:"panic"`
}

type testOutput struct {
	Doubled int `json:"doubled"`
	Status
}

type testPreSigning struct {
	Hash []byte `json:"hash"`
	Status
}

type testEntry struct{}

func (testEntry) ParseAddress(*CoinContext, string, *AddressPrefix) (Address, error) {
	return nil, NewError(ErrorNotImplemented, "no addresses")
}

func (testEntry) ParseAddressUnchecked(*CoinContext, string) (Address, error) {
	return nil, NewError(ErrorNotImplemented, "no addresses")
}

func (testEntry) DeriveAddress(*CoinContext, *keypair.PublicKey, Derivation, *AddressPrefix) (Address, error) {
	return nil, NewError(ErrorNotImplemented, "no addresses")
}

func (testEntry) Sign(_ *CoinContext, in *testInput) *testOutput {
	if in.Panic {
		panic("boom")
	}
	if in.Value < 0 {
		out := &testOutput{}
		out.SetError(NewError(ErrorInvalidInput, "negative value %d", in.Value))
		return out
	}
	return &testOutput{Doubled: in.Value * 2}
}

func (testEntry) PreImageHashes(_ *CoinContext, in *testInput) *testPreSigning {
	return &testPreSigning{Hash: []byte{byte(in.Value)}}
}

func (testEntry) Compile(_ *CoinContext, in *testInput, signatures [][]byte, _ [][]byte) *testOutput {
	out := &testOutput{}
	if len(signatures) != 1 {
		out.SetError(NewError(ErrorUnmatchedSignatureCount, "expected 1 signature, got %d", len(signatures)))
		return out
	}
	out.Doubled = in.Value * 2
	return out
}

func newErased() IEntry {
	return Erase[testInput, testOutput, testPreSigning](testEntry{})
}

func TestErase_Sign_OK(t *testing.T) {
	raw, err := newErased().Sign(&CoinContext{}, []byte(`{"value":21}`))
	require.NoError(t, err)

	var out testOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 42, out.Doubled)
	assert.Equal(t, OK, out.Error)
	assert.Empty(t, out.ErrorMessage)
}

func TestErase_Sign_TypedError(t *testing.T) {
	raw, err := newErased().Sign(&CoinContext{}, []byte(`{"value":-1}`))
	require.NoError(t, err)

	var out testOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, ErrorInvalidInput, out.Error)
	assert.Equal(t, "negative value -1", out.ErrorMessage)
	assert.ErrorIs(t, out.Status.Err(), ErrInvalidInput)
}

func TestErase_Sign_PanicBecomesInternal(t *testing.T) {
	raw, err := newErased().Sign(&CoinContext{}, []byte(`{"panic":true}`))
	require.NoError(t, err)

	var out testOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, ErrorInternal, out.Error)
	assert.Contains(t, out.ErrorMessage, "boom")
}

func TestErase_MalformedInput(t *testing.T) {
	_, err := newErased().Sign(&CoinContext{}, []byte(`{"value":`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = newErased().PreImageHashes(&CoinContext{}, []byte(`[]`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestErase_Compile_UnmatchedSignatures(t *testing.T) {
	raw, err := newErased().Compile(&CoinContext{}, []byte(`{"value":3}`), nil, nil)
	require.NoError(t, err)

	var out testOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, ErrorUnmatchedSignatureCount, out.Error)
}

func TestErase_Unwrap(t *testing.T) {
	_, ok := newErased().Unwrap().(testEntry)
	assert.True(t, ok)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, ErrorInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", NewError(ErrorInsufficientFunds, "need more"))
	assert.Equal(t, ErrorInsufficientFunds, CodeOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrInsufficientFunds)
	assert.NotErrorIs(t, wrapped, ErrInvalidInput)
}

func TestSigningError_Error(t *testing.T) {
	cause := errors.New("bad hex")
	err := WrapError(ErrorInvalidInput, cause, "txid")
	assert.Equal(t, "InvalidInput: txid: bad hex", err.Error())
	assert.ErrorIs(t, err, cause)

	var st Status
	st.SetError(err)
	assert.Equal(t, ErrorInvalidInput, st.Error)
	assert.Equal(t, "txid: bad hex", st.ErrorMessage)

	st.SetError(nil)
	assert.False(t, st.Failed())
}
