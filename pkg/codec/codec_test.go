package codec

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex_Prefix(t *testing.T) {
	withPrefix, err := DecodeHex("0xdeadbeef")
	require.NoError(t, err)
	withoutPrefix, err := DecodeHex("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, withPrefix, withoutPrefix)
	assert.Equal(t, "0xdeadbeef", EncodeHex(withPrefix, true))
}

func TestDecodeHex_Malformed(t *testing.T) {
	for _, in := range []string{"0xabc", "zz", "0x0g"} {
		_, err := DecodeHex(in)
		assert.ErrorIs(t, err, ErrInvalidEncoding, in)
	}
}

func TestBase32_RoundTrip(t *testing.T) {
	data := []byte("HelloWorld")

	std, err := Base32Encode(data, "", true)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPK5XXE3DE", std)

	custom := "abcdefghijkmnpqrstuvwxyz23456789"
	enc, err := Base32Encode(data, custom, false)
	require.NoError(t, err)
	dec, err := Base32Decode(enc, custom, false)
	require.NoError(t, err)
	assert.Equal(t, data, dec)
}

func TestBase32_InvalidAlphabet(t *testing.T) {
	_, err := Base32Encode([]byte{1}, "abc", false)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Base32Encode([]byte{1}, "aacdefghijkmnpqrstuvwxyz23456789", false)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestBase32Decode_Malformed(t *testing.T) {
	_, err := Base32Decode("JBSWY3DPK5XXE3D!", "", true)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestBase58_Alphabets(t *testing.T) {
	data := MustDecodeHex("00010966776006953d5567439e5e39f86a0d273beed61967f6")

	btc := Base58Encode(data, Base58Bitcoin)
	assert.Equal(t, "16UwLL9Risc3QfPqBUvKofHmBQ7wMtjvM", btc)

	ripple := Base58Encode(data, Base58Ripple)
	assert.NotEqual(t, btc, ripple)

	for _, tc := range []struct {
		encoded  string
		isRipple bool
	}{{btc, false}, {ripple, true}} {
		alphabet := Base58Bitcoin
		if tc.isRipple {
			alphabet = Base58Ripple
		}
		decoded, err := Base58Decode(tc.encoded, alphabet)
		require.NoError(t, err)
		assert.Equal(t, data, decoded)
	}
}

func TestBase58Decode_Malformed(t *testing.T) {
	_, err := Base58Decode("0OIl", nil)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Base58Decode("", nil)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestBase58Check_RoundTrip(t *testing.T) {
	payload := MustDecodeHex("00010966776006953d5567439e5e39f86a0d273bee")
	encoded := Base58CheckEncode(payload, nil)
	assert.Equal(t, "16UwLL9Risc3QfPqBUvKofHmBQ7wMtjvM", encoded)

	decoded, err := Base58CheckDecode(encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = Base58CheckDecode("16UwLL9Risc3QfPqBUvKofHmBQ7wMtjvN", nil)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestBase64_RoundTrip(t *testing.T) {
	data := []byte{0xfb, 0xff, 0xbf, 0x01}

	std := Base64Encode(data, false)
	assert.Equal(t, "+/+/AQ==", std)
	url := Base64Encode(data, true)
	assert.Equal(t, "-_-_AQ==", url)

	for _, tc := range []struct {
		s       string
		urlSafe bool
	}{{std, false}, {url, true}} {
		decoded, err := Base64Decode(tc.s, tc.urlSafe)
		require.NoError(t, err)
		assert.Equal(t, data, decoded)
	}

	_, err := Base64Decode(url, false)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestEncodeCompact_Vectors(t *testing.T) {
	cases := []struct {
		value    uint64
		expected string
	}{
		{0, "00"},
		{1, "04"},
		{42, "a8"},
		{63, "fc"},
		{64, "0101"},
		{69, "1501"},
		{16383, "fdff"},
		{16384, "02000100"},
		{65535, "feff0300"},
		{1073741823, "feffffff"},
		{1073741824, "0300000040"},
		{100000000000000, "0b00407a10f35a"},
	}
	for _, tc := range cases {
		encoded := EncodeCompact(tc.value)
		assert.Equal(t, tc.expected, EncodeHex(encoded, false), "value %d", tc.value)

		decoded, n, err := DecodeCompact(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.value, decoded)
		assert.Equal(t, len(encoded), n)
	}
}

func TestEncodeCompactBig_MatchesUint64(t *testing.T) {
	for _, v := range []uint64{0, 69, 65535, 100000000000000, 1<<64 - 1} {
		assert.Equal(t, EncodeCompact(v), EncodeCompactBig(uint256.NewInt(v)))
	}

	big := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	assert.Equal(t, "17000000000000000001", EncodeHex(EncodeCompactBig(big), false))
}

func TestDecodeCompact_Malformed(t *testing.T) {
	for _, in := range []string{"", "01", "0100", "02000000", "03ffffff"} {
		_, _, err := DecodeCompact(MustDecodeHex(in))
		assert.ErrorIs(t, err, ErrInvalidEncoding, in)
	}
}
