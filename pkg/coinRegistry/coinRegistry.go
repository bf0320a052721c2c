// Package coinRegistry holds the static metadata of every supported coin and maps coin
// types to the blockchain implementation family that signs for them.
package coinRegistry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

var (
	// ErrCoinNotFound is returned when a coin type is not registered
	ErrCoinNotFound = errors.New("coin not found")
)

// CoinType is the SLIP-44 based coin identifier.
type CoinType uint32

const (
	Bitcoin         CoinType = 0
	Litecoin        CoinType = 2
	Ethereum        CoinType = 60
	Cosmos          CoinType = 118
	Polkadot        CoinType = 354
	Kusama          CoinType = 434
	Solana          CoinType = 501
	Aptos           CoinType = 637
	Sui             CoinType = 784
	NativeInjective CoinType = 10000060
)

// BlockchainType identifies the implementation family. Unsupported is the zero value.
type BlockchainType int

const (
	Unsupported BlockchainType = iota
	BlockchainBitcoin
	BlockchainEthereum
	BlockchainCosmos
	BlockchainNativeInjective
	BlockchainPolkadot
	BlockchainSolana
	BlockchainSui
	BlockchainAptos
)

func (b BlockchainType) String() string {
	switch b {
	case BlockchainBitcoin:
		return "Bitcoin"
	case BlockchainEthereum:
		return "Ethereum"
	case BlockchainCosmos:
		return "Cosmos"
	case BlockchainNativeInjective:
		return "NativeInjective"
	case BlockchainPolkadot:
		return "Polkadot"
	case BlockchainSolana:
		return "Solana"
	case BlockchainSui:
		return "Sui"
	case BlockchainAptos:
		return "Aptos"
	default:
		return "Unsupported"
	}
}

// CoinItem is the static description of one coin.
type CoinItem struct {
	CoinType      CoinType
	ID            string
	Name          string
	Symbol        string
	Decimals      uint8
	Blockchain    BlockchainType
	PublicKeyType keypair.PublicKeyType
	HRP           string
	SS58Prefix    uint16
	P2PKHPrefix   byte
	P2SHPrefix    byte
	ChainID       string
}

// Context builds the CoinContext handed to the coin entry.
func (c *CoinItem) Context() *coinEntry.CoinContext {
	return &coinEntry.CoinContext{
		CoinID:        uint32(c.CoinType),
		Name:          c.Name,
		PublicKeyType: c.PublicKeyType,
		HRP:           c.HRP,
		SS58Prefix:    c.SS58Prefix,
		P2PKHPrefix:   c.P2PKHPrefix,
		P2SHPrefix:    c.P2SHPrefix,
		ChainID:       c.ChainID,
	}
}

// coins is initialized once and never mutated.
var coins = map[CoinType]*CoinItem{
	Bitcoin: {
		CoinType: Bitcoin, ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Decimals: 8,
		Blockchain: BlockchainBitcoin, PublicKeyType: keypair.Secp256k1,
		HRP: "bc", P2PKHPrefix: 0x00, P2SHPrefix: 0x05,
	},
	Litecoin: {
		CoinType: Litecoin, ID: "litecoin", Name: "Litecoin", Symbol: "LTC", Decimals: 8,
		Blockchain: BlockchainBitcoin, PublicKeyType: keypair.Secp256k1,
		HRP: "ltc", P2PKHPrefix: 0x30, P2SHPrefix: 0x32,
	},
	Ethereum: {
		CoinType: Ethereum, ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Decimals: 18,
		Blockchain: BlockchainEthereum, PublicKeyType: keypair.Secp256k1Extended,
		ChainID: "1",
	},
	Cosmos: {
		CoinType: Cosmos, ID: "cosmos", Name: "Cosmos Hub", Symbol: "ATOM", Decimals: 6,
		Blockchain: BlockchainCosmos, PublicKeyType: keypair.Secp256k1,
		HRP: "cosmos", ChainID: "cosmoshub-4",
	},
	NativeInjective: {
		CoinType: NativeInjective, ID: "nativeinjective", Name: "Native Injective", Symbol: "INJ", Decimals: 18,
		Blockchain: BlockchainNativeInjective, PublicKeyType: keypair.Secp256k1Extended,
		HRP: "inj", ChainID: "injective-1",
	},
	Polkadot: {
		CoinType: Polkadot, ID: "polkadot", Name: "Polkadot", Symbol: "DOT", Decimals: 10,
		Blockchain: BlockchainPolkadot, PublicKeyType: keypair.Ed25519,
		SS58Prefix: 0,
	},
	Kusama: {
		CoinType: Kusama, ID: "kusama", Name: "Kusama", Symbol: "KSM", Decimals: 12,
		Blockchain: BlockchainPolkadot, PublicKeyType: keypair.Ed25519,
		SS58Prefix: 2,
	},
	Solana: {
		CoinType: Solana, ID: "solana", Name: "Solana", Symbol: "SOL", Decimals: 9,
		Blockchain: BlockchainSolana, PublicKeyType: keypair.Ed25519,
	},
	Aptos: {
		CoinType: Aptos, ID: "aptos", Name: "Aptos", Symbol: "APT", Decimals: 8,
		Blockchain: BlockchainAptos, PublicKeyType: keypair.Ed25519,
		ChainID: "1",
	},
	Sui: {
		CoinType: Sui, ID: "sui", Name: "Sui", Symbol: "SUI", Decimals: 9,
		Blockchain: BlockchainSui, PublicKeyType: keypair.Ed25519,
	},
}

// GetCoin returns the metadata of a coin.
//
// Parameters:
//   - coin: the coin type to look up
//
// Returns:
//   - *CoinItem: the coin metadata if registered
//   - error: ErrCoinNotFound if the coin type is unknown
func GetCoin(coin CoinType) (*CoinItem, error) {
	item, ok := coins[coin]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrCoinNotFound, uint32(coin))
	}
	return item, nil
}

// BlockchainTypeOf returns the implementation family of a coin, Unsupported if unknown.
func BlockchainTypeOf(coin CoinType) BlockchainType {
	item, ok := coins[coin]
	if !ok {
		return Unsupported
	}
	return item.Blockchain
}

// Coins lists every registered coin ordered by coin type.
func Coins() []*CoinItem {
	out := make([]*CoinItem, 0, len(coins))
	for _, c := range coins {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoinType < out[j].CoinType })
	return out
}

// FindByID looks a coin up by its string id (e.g. "bitcoin").
func FindByID(id string) (*CoinItem, error) {
	for _, c := range coins {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCoinNotFound, id)
}
