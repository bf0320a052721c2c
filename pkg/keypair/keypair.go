// Package keypair provides uniform private key, public key and signature types over
// the curves used by the supported chains.
package keypair

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	// ErrInvalidPrivateKey is returned when private key bytes are malformed
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidPublicKey is returned when public key bytes do not match the expected curve or size
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidSignature is returned when signature bytes are malformed or fail verification
	ErrInvalidSignature = errors.New("invalid signature")
)

// PublicKeyType identifies the curve and serialization of a public key.
type PublicKeyType int

const (
	Secp256k1 PublicKeyType = iota
	Secp256k1Extended
	Ed25519
)

func (t PublicKeyType) String() string {
	switch t {
	case Secp256k1:
		return "secp256k1"
	case Secp256k1Extended:
		return "secp256k1Extended"
	case Ed25519:
		return "ed25519"
	default:
		return fmt.Sprintf("PublicKeyType(%d)", int(t))
	}
}

// Size returns the serialized public key length for the type.
func (t PublicKeyType) Size() int {
	switch t {
	case Secp256k1:
		return btcec.PubKeyBytesLenCompressed
	case Secp256k1Extended:
		return secp256k1.PubKeyBytesLenUncompressed
	case Ed25519:
		return 32
	default:
		return 0
	}
}

// PublicKey is a serialized public key tagged with its type.
type PublicKey struct {
	Type  PublicKeyType `json:"type"`
	Bytes []byte        `json:"bytes"`
}

// NewPublicKey validates b against the given type.
func NewPublicKey(t PublicKeyType, b []byte) (*PublicKey, error) {
	pk := &PublicKey{Type: t, Bytes: b}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// Validate checks the key length and, for secp256k1, that the point is on the curve.
func (p *PublicKey) Validate() error {
	if len(p.Bytes) != p.Type.Size() {
		return fmt.Errorf("%w: %s key must be %d bytes, got %d", ErrInvalidPublicKey, p.Type, p.Type.Size(), len(p.Bytes))
	}
	if p.Type == Secp256k1 || p.Type == Secp256k1Extended {
		if _, err := btcec.ParsePubKey(p.Bytes); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
	}
	return nil
}

// Zero overwrites b with zeros. Used for private key scrubbing.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
