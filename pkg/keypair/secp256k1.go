package keypair

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
)

// Secp256k1PrivateKey signs digests with ECDSA or BIP340 Schnorr.
type Secp256k1PrivateKey struct {
	key *btcec.PrivateKey
}

// NewSecp256k1PrivateKey parses a 32-byte scalar. The caller keeps ownership of b.
func NewSecp256k1PrivateKey(b []byte) (*Secp256k1PrivateKey, error) {
	if len(b) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, btcec.PrivKeyBytesLen, len(b))
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	return &Secp256k1PrivateKey{key: btcec.PrivKeyFromScalar(&scalar)}, nil
}

// PublicKey returns the compressed or uncompressed public key.
func (k *Secp256k1PrivateKey) PublicKey(compressed bool) []byte {
	if compressed {
		return k.key.PubKey().SerializeCompressed()
	}
	return k.key.PubKey().SerializeUncompressed()
}

// SignECDSA returns a DER encoded low-S RFC6979 signature over a 32-byte digest.
func (k *Secp256k1PrivateKey) SignECDSA(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return ecdsa.Sign(k.key, digest).Serialize(), nil
}

// SignCompact returns r || s || v with v the recovery id (0 or 1).
func (k *Secp256k1PrivateKey) SignCompact(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	sig := ecdsa.SignCompact(k.key, digest, true)
	// btcec prefixes 27 + 4 (compressed) + recid
	out := make([]byte, 65)
	copy(out, sig[1:])
	out[64] = sig[0] - 27 - 4
	return out, nil
}

type schnorrOptions struct {
	aux    *[32]byte
	random io.Reader
}

// SchnorrOption customizes BIP340 signing.
type SchnorrOption func(*schnorrOptions)

// WithAuxRand fixes the BIP340 auxiliary randomness. Only tests should use this.
func WithAuxRand(aux [32]byte) SchnorrOption {
	return func(o *schnorrOptions) {
		o.aux = &aux
	}
}

// WithRandomness sets the source of auxiliary randomness (crypto/rand by default).
func WithRandomness(r io.Reader) SchnorrOption {
	return func(o *schnorrOptions) {
		o.random = r
	}
}

// SignSchnorr returns a 64-byte BIP340 signature over a 32-byte digest.
func (k *Secp256k1PrivateKey) SignSchnorr(digest []byte, opts ...SchnorrOption) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	o := &schnorrOptions{random: rand.Reader}
	for _, opt := range opts {
		opt(o)
	}
	aux := o.aux
	if aux == nil {
		aux = new([32]byte)
		if _, err := io.ReadFull(o.random, aux[:]); err != nil {
			return nil, fmt.Errorf("failed to read aux randomness: %w", err)
		}
	}
	sig, err := schnorr.Sign(k.key, digest, schnorr.CustomNonce(*aux))
	if err != nil {
		return nil, fmt.Errorf("schnorr signing failed: %w", err)
	}
	return sig.Serialize(), nil
}

// TweakTaproot returns the BIP341 tweaked key for the given merkle root (nil = key path only).
func (k *Secp256k1PrivateKey) TweakTaproot(merkleRoot []byte) *Secp256k1PrivateKey {
	return &Secp256k1PrivateKey{key: txscript.TweakTaprootPrivKey(*k.key, merkleRoot)}
}

// Zero scrubs the scalar.
func (k *Secp256k1PrivateKey) Zero() {
	if k != nil && k.key != nil {
		k.key.Zero()
	}
}

// VerifyECDSA checks a DER signature against a serialized public key.
func VerifyECDSA(publicKey, digest, der []byte) error {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !sig.Verify(digest, pub) {
		return fmt.Errorf("%w: ecdsa verification failed", ErrInvalidSignature)
	}
	return nil
}

// VerifySchnorr checks a BIP340 signature against a 32-byte x-only or 33-byte compressed key.
func VerifySchnorr(publicKey, digest, signature []byte) error {
	var (
		pub *btcec.PublicKey
		err error
	)
	if len(publicKey) == schnorr.PubKeyBytesLen {
		pub, err = schnorr.ParsePubKey(publicKey)
	} else {
		pub, err = btcec.ParsePubKey(publicKey)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !sig.Verify(digest, pub) {
		return fmt.Errorf("%w: schnorr verification failed", ErrInvalidSignature)
	}
	return nil
}

// CompactToDER converts a 64-byte r || s signature into DER, normalizing s to the lower half.
func CompactToDER(compact []byte) ([]byte, error) {
	if len(compact) != 64 && len(compact) != 65 {
		return nil, fmt.Errorf("%w: compact signature must be 64 or 65 bytes", ErrInvalidSignature)
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(compact[:32]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(compact[32:64]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	return ecdsa.NewSignature(&r, &s).Serialize(), nil
}
