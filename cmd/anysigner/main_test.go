package main

import (
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoin(t *testing.T) {
	item, err := parseCoin("501")
	require.NoError(t, err)
	assert.Equal(t, coinRegistry.Solana, item.CoinType)

	item, err = parseCoin(" Kusama ")
	require.NoError(t, err)
	assert.Equal(t, coinRegistry.Kusama, item.CoinType)

	_, err = parseCoin("dogecoin")
	assert.ErrorIs(t, err, coinRegistry.ErrCoinNotFound)
	_, err = parseCoin("3")
	assert.ErrorIs(t, err, coinRegistry.ErrCoinNotFound)
}

func TestDecodeHexList(t *testing.T) {
	out, err := decodeHexList([]string{"0x0102", "ff"})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2}, {0xff}}, out)

	_, err = decodeHexList([]string{"zz"})
	assert.Error(t, err)
}
