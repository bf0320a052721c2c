// Package cosmos implements the Cosmos SDK transaction engine: message encoding, the
// protobuf SignDoc / TxRaw pair used by SIGN_MODE_DIRECT and the legacy Amino JSON
// documents. Chains differ only by their Context.
package cosmos

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	secp256k1TypeURL      = "/cosmos.crypto.secp256k1.PubKey"
	secp256k1JSONType     = "tendermint/PubKeySecp256k1"
	ethSecp256k1TypeURL   = "/injective.crypto.v1beta1.ethsecp256k1.PubKey"
	ethSecp256k1JSONType  = "injective/PubKeyEthSecp256k1"
	injectiveDefaultHRP   = "inj"
	cosmosHubDefaultHRP   = "cosmos"
	ethAddressHashOffset  = 12
	ethUncompressedOffset = 1
)

// Context is the set of chain capabilities the engine is parameterized over.
type Context struct {
	// Name is used in logs and errors only
	Name string
	// DefaultHRP applies when the coin context carries none
	DefaultHRP string
	// TxHasher digests SignDoc bytes and JSON sign documents
	TxHasher hashing.Hasher
	// AddressHasher maps a prepared public key to the 20-byte account id
	AddressHasher func(publicKey []byte) []byte
	// Uncompressed selects 65-byte public keys in signer infos
	Uncompressed   bool
	PubKeyTypeURL  string
	PubKeyJSONType string
}

// StandardCosmosContext is the Cosmos Hub flavour: SHA-256 digests and
// RIPEMD160(SHA256(pubkey)) account ids.
func StandardCosmosContext() *Context {
	return &Context{
		Name:           "cosmos",
		DefaultHRP:     cosmosHubDefaultHRP,
		TxHasher:       hashing.Sha256,
		AddressHasher:  btcutil.Hash160,
		PubKeyTypeURL:  secp256k1TypeURL,
		PubKeyJSONType: secp256k1JSONType,
	}
}

// NativeInjectiveContext uses Keccak-256 digests and Ethereum style account ids.
func NativeInjectiveContext() *Context {
	return &Context{
		Name:       "nativeinjective",
		DefaultHRP: injectiveDefaultHRP,
		TxHasher:   hashing.Keccak256,
		AddressHasher: func(publicKey []byte) []byte {
			return hashing.Keccak256(publicKey[ethUncompressedOffset:])[ethAddressHashOffset:]
		},
		Uncompressed:   true,
		PubKeyTypeURL:  ethSecp256k1TypeURL,
		PubKeyJSONType: ethSecp256k1JSONType,
	}
}

// PreparePublicKey parses a secp256k1 public key in any encoding and re-serializes it in
// the form the chain expects.
func (c *Context) PreparePublicKey(publicKey []byte) ([]byte, error) {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid secp256k1 public key")
	}
	if c.Uncompressed {
		return pub.SerializeUncompressed(), nil
	}
	return pub.SerializeCompressed(), nil
}

// HashSignDoc digests serialized SignDoc bytes.
func (c *Context) HashSignDoc(signDoc []byte) []byte {
	return c.TxHasher(signDoc)
}

// HashJSONTx digests an Amino JSON sign document.
func (c *Context) HashJSONTx(doc string) []byte {
	return c.TxHasher([]byte(doc))
}

func (c *Context) hrp(ctx *coinEntry.CoinContext) string {
	if ctx != nil && ctx.HRP != "" {
		return ctx.HRP
	}
	return c.DefaultHRP
}
