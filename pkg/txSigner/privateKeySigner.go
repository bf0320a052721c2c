package txSigner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

// PrivateKeySigner implements IDigestSigner with an in-memory private key
type PrivateKeySigner struct {
	secp    *keypair.Secp256k1PrivateKey
	ed      *keypair.Ed25519PrivateKey
	derForm bool
}

var _ IDigestSigner = (*PrivateKeySigner)(nil)

// NewPrivateKeySigner creates a signer from raw key bytes. The caller's slice is zeroed.
//
// Parameters:
//   - keyType: keypair.Secp256k1 (or Secp256k1Extended) or keypair.Ed25519
//   - key: the 32-byte private key or ed25519 seed
//
// Returns:
//   - *PrivateKeySigner: the signer
//   - error: An error if the key is invalid for the type
func NewPrivateKeySigner(keyType keypair.PublicKeyType, key []byte) (*PrivateKeySigner, error) {
	defer keypair.Zero(key)
	switch keyType {
	case keypair.Secp256k1, keypair.Secp256k1Extended:
		k, err := keypair.NewSecp256k1PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return &PrivateKeySigner{secp: k}, nil
	case keypair.Ed25519:
		k, err := keypair.NewEd25519PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return &PrivateKeySigner{ed: k}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %s", keyType)
	}
}

// NewPrivateKeySignerFromHex creates a signer from a hex-encoded private key
func NewPrivateKeySignerFromHex(keyType keypair.PublicKeyType, privateKeyHex string) (*PrivateKeySigner, error) {
	raw, err := codec.DecodeHex(strings.TrimSpace(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return NewPrivateKeySigner(keyType, raw)
}

// WithDER makes secp256k1 signatures DER encoded instead of r || s || v.
func (p *PrivateKeySigner) WithDER() *PrivateKeySigner {
	p.derForm = true
	return p
}

// SignDigest signs digest with the held key
func (p *PrivateKeySigner) SignDigest(_ context.Context, digest []byte) ([]byte, error) {
	switch {
	case p.secp != nil && p.derForm:
		return p.secp.SignECDSA(digest)
	case p.secp != nil:
		return p.secp.SignCompact(digest)
	case p.ed != nil:
		return p.ed.Sign(digest), nil
	default:
		return nil, fmt.Errorf("signer has been zeroed")
	}
}

// PublicKey returns the compressed secp256k1 or the ed25519 public key
func (p *PrivateKeySigner) PublicKey(_ context.Context) ([]byte, error) {
	switch {
	case p.secp != nil:
		return p.secp.PublicKey(true), nil
	case p.ed != nil:
		return p.ed.PublicKey(), nil
	default:
		return nil, fmt.Errorf("signer has been zeroed")
	}
}

// Zero scrubs the held key. The signer is unusable afterwards.
func (p *PrivateKeySigner) Zero() {
	if p.secp != nil {
		p.secp.Zero()
		p.secp = nil
	}
	if p.ed != nil {
		p.ed.Zero()
		p.ed = nil
	}
}
