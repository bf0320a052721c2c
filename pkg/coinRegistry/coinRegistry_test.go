package coinRegistry

import (
	"testing"

	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCoin_Known(t *testing.T) {
	item, err := GetCoin(Cosmos)
	require.NoError(t, err)
	assert.Equal(t, "cosmos", item.HRP)
	assert.Equal(t, BlockchainCosmos, item.Blockchain)

	ctx := item.Context()
	assert.Equal(t, uint32(118), ctx.CoinID)
	assert.Equal(t, keypair.Secp256k1, ctx.PublicKeyType)
}

func TestGetCoin_Unknown(t *testing.T) {
	_, err := GetCoin(CoinType(999999))
	assert.ErrorIs(t, err, ErrCoinNotFound)
	assert.Equal(t, Unsupported, BlockchainTypeOf(CoinType(999999)))
}

func TestCoins_SortedAndComplete(t *testing.T) {
	all := Coins()
	require.Len(t, all, 10)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].CoinType, all[i].CoinType)
	}
	for _, c := range all {
		assert.NotEqual(t, Unsupported, c.Blockchain, c.Name)
	}
}

func TestFindByID(t *testing.T) {
	item, err := FindByID("kusama")
	require.NoError(t, err)
	assert.Equal(t, uint16(2), item.SS58Prefix)

	_, err = FindByID("dogecoin")
	assert.ErrorIs(t, err, ErrCoinNotFound)
}
