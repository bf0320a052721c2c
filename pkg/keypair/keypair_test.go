package keypair

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
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

func TestSecp256k1PrivateKey_PublicKey(t *testing.T) {
	key, err := NewSecp256k1PrivateKey(mustHex(t, "57a64865bce5d4855e99b1cce13327c46171434f2d72eeaf9da53ee075e7f90a"))
	require.NoError(t, err)
	assert.Equal(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f", hex.EncodeToString(key.PublicKey(true)))
	assert.Len(t, key.PublicKey(false), 65)
}

func TestNewSecp256k1PrivateKey_Invalid(t *testing.T) {
	_, err := NewSecp256k1PrivateKey(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = NewSecp256k1PrivateKey(make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = NewSecp256k1PrivateKey(mustHex(t, "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestSecp256k1PrivateKey_SignECDSA_Verifies(t *testing.T) {
	key, err := NewSecp256k1PrivateKey(mustHex(t, "80e81ea269e66a0a05b11236df7919fb7fbeedba87452d667489d7403a02f005"))
	require.NoError(t, err)
	digest := make([]byte, 32)
	digest[0] = 1

	der, err := key.SignECDSA(digest)
	require.NoError(t, err)
	require.NoError(t, VerifyECDSA(key.PublicKey(true), digest, der))

	compact, err := key.SignCompact(digest)
	require.NoError(t, err)
	require.Len(t, compact, 65)
	assert.LessOrEqual(t, compact[64], byte(1))

	fromCompact, err := CompactToDER(compact)
	require.NoError(t, err)
	assert.Equal(t, der, fromCompact)

	digest[0] = 2
	assert.ErrorIs(t, VerifyECDSA(key.PublicKey(true), digest, der), ErrInvalidSignature)
}

func TestSecp256k1PrivateKey_SignSchnorr_Deterministic(t *testing.T) {
	key, err := NewSecp256k1PrivateKey(mustHex(t, "26c2566adcc030a1799213bfd546e615f6ab06f72085ec6806ff1761da48d227"))
	require.NoError(t, err)
	digest := make([]byte, 32)

	a, err := key.SignSchnorr(digest, WithAuxRand([32]byte{}))
	require.NoError(t, err)
	b, err := key.SignSchnorr(digest, WithAuxRand([32]byte{}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.NoError(t, VerifySchnorr(key.PublicKey(true), digest, a))

	random, err := key.SignSchnorr(digest)
	require.NoError(t, err)
	assert.NotEqual(t, a, random)
	require.NoError(t, VerifySchnorr(key.PublicKey(true), digest, random))
}

func TestSecp256k1PrivateKey_TweakTaproot_MatchesOutputKey(t *testing.T) {
	raw := mustHex(t, "26c2566adcc030a1799213bfd546e615f6ab06f72085ec6806ff1761da48d227")
	key, err := NewSecp256k1PrivateKey(raw)
	require.NoError(t, err)

	internal, err := btcec.ParsePubKey(key.PublicKey(true))
	require.NoError(t, err)
	expected := schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(internal))

	tweaked := key.TweakTaproot(nil)
	tweakedPub, err := btcec.ParsePubKey(tweaked.PublicKey(true))
	require.NoError(t, err)
	assert.Equal(t, expected, schnorr.SerializePubKey(tweakedPub))

	// the untweaked key must be left intact
	assert.Equal(t, "02c0938cf377023dfde55e9c96b3cff4ca8894fb6b5d2009006bd43c0bff69cac9", hex.EncodeToString(key.PublicKey(true)))
}

func TestSecp256k1PrivateKey_Zero(t *testing.T) {
	key, err := NewSecp256k1PrivateKey(mustHex(t, "26c2566adcc030a1799213bfd546e615f6ab06f72085ec6806ff1761da48d227"))
	require.NoError(t, err)
	key.Zero()
	assert.True(t, key.key.Key.IsZero())
}

func TestEd25519PrivateKey_SignVerify(t *testing.T) {
	// RFC8032 test 1
	key, err := NewEd25519PrivateKey(mustHex(t, "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"))
	require.NoError(t, err)
	assert.Equal(t, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a", hex.EncodeToString(key.PublicKey()))

	sig := key.Sign(nil)
	assert.Equal(t, "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b", hex.EncodeToString(sig))
	require.NoError(t, VerifyEd25519(key.PublicKey(), nil, sig))
	assert.ErrorIs(t, VerifyEd25519(key.PublicKey(), []byte{1}, sig), ErrInvalidSignature)

	key.Zero()
	assert.Equal(t, make([]byte, 64), []byte(key.key))
}

func TestPublicKey_Validate(t *testing.T) {
	_, err := NewPublicKey(Secp256k1, mustHex(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f"))
	assert.NoError(t, err)

	_, err = NewPublicKey(Ed25519, mustHex(t, "028d7dce6d72fb8f7af9566616c6436349c67ad379f2404dd66fe7085fe0fba28f"))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = NewPublicKey(Secp256k1, append([]byte{0x05}, make([]byte, 32)...))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}
