// Package coinEntry defines the contract every blockchain implementation fulfils:
// address handling plus the sign / preimage / compile lifecycle.
//
// A signing attempt runs in two phases. PreImageHashes computes the digests that must be
// signed (and any bookkeeping such as selected UTXOs) without touching private keys.
// Compile combines externally produced signatures with the original input. Sign is the
// composition of both phases with a locally held private key.
package coinEntry

import (
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

// CoinContext carries the per-coin parameters threaded through every operation.
type CoinContext struct {
	// CoinID is the registry identifier (SLIP-44 coin type)
	CoinID uint32
	// Name is the human readable coin name
	Name string
	// PublicKeyType is the key type the chain signs with
	PublicKeyType keypair.PublicKeyType
	// HRP is the bech32 human readable part, if the chain uses one
	HRP string
	// SS58Prefix is the Substrate network prefix, if any
	SS58Prefix uint16
	// P2PKHPrefix and P2SHPrefix are base58check version bytes for UTXO chains
	P2PKHPrefix byte
	P2SHPrefix  byte
	// ChainID is the chain identifier string where applicable (e.g. cosmoshub-4)
	ChainID string
}

// AddressPrefix overrides the chain default prefix during parsing and derivation.
// A nil *AddressPrefix selects the coin default.
type AddressPrefix struct {
	HRP  string  `json:"hrp,omitempty"`
	SS58 *uint16 `json:"ss58,omitempty"`
}

// Derivation selects an address flavour for chains that have more than one.
type Derivation int

const (
	DerivationDefault Derivation = iota
	DerivationBitcoinSegwit
	DerivationBitcoinLegacy
	DerivationBitcoinTaproot
)

// Address is a parsed, validated chain address.
type Address interface {
	String() string
	Bytes() []byte
}

// ICoinEntry is the typed contract of a blockchain implementation.
//
// Type Parameters:
//   - I: the signing input
//   - O: the signing output, which embeds Status
//   - P: the pre-signing output, which embeds Status
type ICoinEntry[I any, O any, P any] interface {
	// ParseAddress validates text against the coin rules and the optional prefix override.
	ParseAddress(ctx *CoinContext, text string, prefix *AddressPrefix) (Address, error)

	// ParseAddressUnchecked decodes text without checking the prefix.
	ParseAddressUnchecked(ctx *CoinContext, text string) (Address, error)

	// DeriveAddress computes the address of publicKey. It is a pure function.
	DeriveAddress(ctx *CoinContext, publicKey *keypair.PublicKey, derivation Derivation, prefix *AddressPrefix) (Address, error)

	// Sign builds, signs with the embedded private key and compiles the transaction.
	Sign(ctx *CoinContext, input *I) *O

	// PreImageHashes returns the digests to sign. It never uses private key material.
	PreImageHashes(ctx *CoinContext, input *I) *P

	// Compile combines the original input with signatures ordered as the preimage hashes.
	Compile(ctx *CoinContext, input *I, signatures [][]byte, publicKeys [][]byte) *O
}

// IJsonSigner is implemented by coins that can sign a JSON encoded request with a
// separately supplied private key.
type IJsonSigner interface {
	SignJSON(ctx *CoinContext, inputJSON string, privateKey []byte) (string, error)
}

// IPlanBuilder is implemented by coins that can report a transaction plan (selected inputs,
// fee, change) before signing.
type IPlanBuilder interface {
	Plan(ctx *CoinContext, input []byte) ([]byte, error)
}

// IMessageSigner is implemented by coins that support off-chain message signing.
type IMessageSigner interface {
	SignMessage(ctx *CoinContext, privateKey []byte, message string) (string, error)
	VerifyMessage(ctx *CoinContext, publicKey []byte, message string, signature string) bool
}
