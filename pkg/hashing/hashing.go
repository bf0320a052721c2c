// Package hashing wraps the digest functions used across chains behind one
// byte-slice in, byte-slice out calling convention.
package hashing

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher is a digest function selectable per chain context
type Hasher func(data []byte) []byte

func Sha256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sha256d is sha256(sha256(data)).
func Sha256d(data []byte) []byte {
	return chainhash.DoubleHashB(data)
}

func Sha512(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// Hash160 is ripemd160(sha256(data)).
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

func Keccak256(data []byte) []byte {
	return crypto.Keccak256(data)
}

func Sha3_256(data []byte) []byte {
	sum := sha3.Sum256(data)
	return sum[:]
}

func Blake2b256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

func Blake2b512(data []byte) []byte {
	sum := blake2b.Sum512(data)
	return sum[:]
}

// TaggedHash is the BIP340 tagged hash sha256(sha256(tag) || sha256(tag) || msg...).
func TaggedHash(tag string, msgs ...[]byte) []byte {
	h := chainhash.TaggedHash([]byte(tag), msgs...)
	return h[:]
}
