package txSigner

import (
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/anySigner"
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/Layr-Labs/multichain-signer/pkg/ethereum"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/solana"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/kms/kmsiface"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	eip155Key     = "4646464646464646464646464646464646464646464646464646464646464646"
	eip155Encoded = "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"

	solanaKey  = "A7psj2GW7ZMdY4E5hJq14KMeYg7HFjULSsWSrTXZLvYr"
	solanaTx58 = "3p2kzZ1DvquqC6LApPuxpTg5CCDVPqJFokGSnGhnBHrta4uq7S2EyehV1XNUVXp51D69GxGzQZUjikfDzbWBG2aFtG3gHT1QfLzyFKHM4HQtMQMNXqay1NAeiiYZjNhx9UvMX4uAQZ4Q6rx6m2AYfQ7aoMUrejq298q1wBFdtS9XVB5QTiStnzC7zs97FUEK2T4XapjF1519EyFBViTfHpGpnf5bfizDzsW9kYUtRDW1UC2LgHr7npgq5W9TBmHf9hSmRgM9XXucjXLqubNWE7HUMhbKjuBqkirRM"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func eip155Request(t *testing.T) []byte {
	ether, _ := new(big.Int).SetString("1000000000000000000", 10)
	raw, err := json.Marshal(&ethereum.SigningInput{
		ChainID:   big.NewInt(1),
		Nonce:     9,
		GasPrice:  big.NewInt(20_000_000_000),
		GasLimit:  21000,
		ToAddress: "0x3535353535353535353535353535353535353535",
		Amount:    ether,
	})
	require.NoError(t, err)
	return raw
}

func ethereumEncoded(t *testing.T, raw []byte) string {
	var out ethereum.SigningOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	require.False(t, out.Failed(), out.ErrorMessage)
	return hex.EncodeToString(out.Encoded)
}

func TestSignExternally_PrivateKeySigner_Ethereum(t *testing.T) {
	signer, err := NewPrivateKeySignerFromHex(keypair.Secp256k1, "0x"+eip155Key)
	require.NoError(t, err)
	defer signer.Zero()

	raw, err := SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Ethereum, eip155Request(t))
	require.NoError(t, err)
	assert.Equal(t, eip155Encoded, ethereumEncoded(t, raw))
}

func TestSignExternally_PrivateKeySigner_Solana(t *testing.T) {
	seed, err := codec.Base58Decode(solanaKey, nil)
	require.NoError(t, err)
	signer, err := NewPrivateKeySigner(keypair.Ed25519, seed)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), seed, "caller key is zeroed")

	req, err := json.Marshal(&solana.SigningInput{
		Sender:          "7v91N7iZ9mNicL8WfG6cgSCKyRXydQjLh6UYBWwm6y1Q",
		RecentBlockhash: "11111111111111111111111111111111",
		Transfer:        &solana.Transfer{Recipient: "EN2sCsJ1WDV8UFqsiTXHcUPUxQ4juE71eCknHYYMifkd", Value: 42},
	})
	require.NoError(t, err)

	raw, err := SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Solana, req)
	require.NoError(t, err)
	var out solana.SigningOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, solanaTx58, out.Encoded)
}

func TestSignExternally_KeyTypeMismatch(t *testing.T) {
	signer := NewMockIDigestSigner(t)
	signer.On("PublicKey", mock.Anything).Return(make([]byte, 32), nil)

	_, err := SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Ethereum, eip155Request(t))
	assert.ErrorIs(t, err, coinEntry.ErrPublicKeyTypeMismatch)
	signer.AssertNotCalled(t, "SignDigest", mock.Anything, mock.Anything)
}

func TestSignExternally_SignerFailure(t *testing.T) {
	key, err := keypair.NewSecp256k1PrivateKey(mustHex(t, eip155Key))
	require.NoError(t, err)

	signer := NewMockIDigestSigner(t)
	signer.On("PublicKey", mock.Anything).Return(key.PublicKey(true), nil)
	signer.On("SignDigest", mock.Anything, mustHex(t, "daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53")).
		Return(nil, errors.New("hsm offline")).Once()

	_, err = SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Ethereum, eip155Request(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hsm offline")
}

func TestSignExternally_WrongSignatureIsReported(t *testing.T) {
	key, err := keypair.NewSecp256k1PrivateKey(mustHex(t, eip155Key))
	require.NoError(t, err)

	signer := NewMockIDigestSigner(t)
	signer.On("PublicKey", mock.Anything).Return(key.PublicKey(true), nil)
	signer.On("SignDigest", mock.Anything, mock.Anything).Return(make([]byte, 65), nil)

	_, err = SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Ethereum, eip155Request(t))
	var se *coinEntry.SigningError
	require.ErrorAs(t, err, &se)
	assert.NotEqual(t, coinEntry.OK, se.Code)
}

func TestSignExternally_UnknownCoin(t *testing.T) {
	signer := NewMockIDigestSigner(t)
	_, err := SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.CoinType(4242), nil)
	assert.ErrorIs(t, err, coinRegistry.ErrCoinNotFound)
}

// fakeKMS signs with a local key and answers like KMS: DER signatures, SPKI public keys.
type fakeKMS struct {
	kmsiface.KMSAPI
	key   *btcec.PrivateKey
	highS bool
	sign  []*kms.SignInput
}

func (f *fakeKMS) GetPublicKeyWithContext(_ aws.Context, _ *kms.GetPublicKeyInput, _ ...request.Option) (*kms.GetPublicKeyOutput, error) {
	curve, err := asn1.Marshal(asn1.ObjectIdentifier{1, 3, 132, 0, 10})
	if err != nil {
		return nil, err
	}
	pub := f.key.PubKey().SerializeUncompressed()
	der, err := asn1.Marshal(subjectPublicKeyInfo{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm:  asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1},
			Parameters: asn1.RawValue{FullBytes: curve},
		},
		PublicKey: asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
	})
	return &kms.GetPublicKeyOutput{PublicKey: der}, err
}

func (f *fakeKMS) SignWithContext(_ aws.Context, in *kms.SignInput, _ ...request.Option) (*kms.SignOutput, error) {
	f.sign = append(f.sign, in)
	der := ecdsa.Sign(f.key, in.Message).Serialize()
	if f.highS {
		r, s, err := parseASN1Signature(der)
		if err != nil {
			return nil, err
		}
		s.Sub(btcec.S256().N, s)
		if der, err = asn1.Marshal(ecdsaSignature{R: r, S: s}); err != nil {
			return nil, err
		}
	}
	return &kms.SignOutput{Signature: der}, nil
}

func TestAWSKMSSigner_SignExternally(t *testing.T) {
	for _, highS := range []bool{false, true} {
		key, _ := btcec.PrivKeyFromBytes(mustHex(t, eip155Key))
		client := &fakeKMS{key: key, highS: highS}
		signer, err := NewAWSKMSSignerWithClient(context.Background(), client, "alias/test")
		require.NoError(t, err)

		pub, err := signer.PublicKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, key.PubKey().SerializeCompressed(), pub)

		raw, err := SignExternally(context.Background(), signer, anySigner.NewAnySigner(nil), coinRegistry.Ethereum, eip155Request(t))
		require.NoError(t, err)
		assert.Equal(t, eip155Encoded, ethereumEncoded(t, raw), "highS=%v", highS)

		require.Len(t, client.sign, 1)
		assert.Equal(t, kms.MessageTypeDigest, aws.StringValue(client.sign[0].MessageType))
		assert.Equal(t, kms.SigningAlgorithmSpecEcdsaSha256, aws.StringValue(client.sign[0].SigningAlgorithm))
		assert.Equal(t, "alias/test", aws.StringValue(client.sign[0].KeyId))
	}
}

func TestAWSKMSSigner_RejectsShortDigest(t *testing.T) {
	key, _ := btcec.PrivKeyFromBytes(mustHex(t, eip155Key))
	signer, err := NewAWSKMSSignerWithClient(context.Background(), &fakeKMS{key: key}, "k")
	require.NoError(t, err)
	_, err = signer.SignDigest(context.Background(), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestParseASN1Signature(t *testing.T) {
	der, err := asn1.Marshal(ecdsaSignature{R: big.NewInt(7), S: big.NewInt(9)})
	require.NoError(t, err)
	r, s, err := parseASN1Signature(der)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.Int64())
	assert.Equal(t, int64(9), s.Int64())

	_, _, err = parseASN1Signature(append(der, 0x00))
	assert.Error(t, err)
	_, _, err = parseASN1Signature(der[:len(der)-1])
	assert.Error(t, err)

	der, err = asn1.Marshal(ecdsaSignature{R: big.NewInt(0), S: big.NewInt(9)})
	require.NoError(t, err)
	_, _, err = parseASN1Signature(der)
	assert.Error(t, err)
}

func TestPrivateKeySigner_DERAndZero(t *testing.T) {
	signer, err := NewPrivateKeySignerFromHex(keypair.Secp256k1, eip155Key)
	require.NoError(t, err)
	digest := mustHex(t, "daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53")

	der, err := signer.WithDER().SignDigest(context.Background(), digest)
	require.NoError(t, err)
	pub, err := signer.PublicKey(context.Background())
	require.NoError(t, err)
	assert.NoError(t, keypair.VerifyECDSA(pub, digest, der))

	signer.Zero()
	_, err = signer.SignDigest(context.Background(), digest)
	assert.Error(t, err)

	_, err = NewPrivateKeySigner(keypair.PublicKeyType(99), make([]byte, 32))
	assert.Error(t, err)
}
