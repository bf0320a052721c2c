package keypair

import (
	"crypto/ed25519"
	"fmt"
)

// Ed25519PrivateKey signs messages with pure Ed25519.
type Ed25519PrivateKey struct {
	key ed25519.PrivateKey
}

// NewEd25519PrivateKey expands a 32-byte seed. The caller keeps ownership of seed.
func NewEd25519PrivateKey(seed []byte) (*Ed25519PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(seed))
	}
	return &Ed25519PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (k *Ed25519PrivateKey) PublicKey() []byte {
	pub := k.key.Public().(ed25519.PublicKey)
	return []byte(pub)
}

func (k *Ed25519PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.key, message)
}

func (k *Ed25519PrivateKey) Zero() {
	if k != nil {
		Zero(k.key)
	}
}

// VerifyEd25519 checks a 64-byte signature.
func VerifyEd25519(publicKey, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: ed25519 key must be %d bytes", ErrInvalidPublicKey, ed25519.PublicKeySize)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: ed25519 signature must be %d bytes", ErrInvalidSignature, ed25519.SignatureSize)
	}
	if !ed25519.Verify(publicKey, message, signature) {
		return fmt.Errorf("%w: ed25519 verification failed", ErrInvalidSignature)
	}
	return nil
}
