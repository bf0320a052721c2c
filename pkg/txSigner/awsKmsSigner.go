package txSigner

import (
	"bytes"
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/kms/kmsiface"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
)

// AWSKMSSigner implements IDigestSigner with an ECC_SECG_P256K1 key held in AWS KMS
type AWSKMSSigner struct {
	kmsClient kmsiface.KMSAPI
	keyID     string
	publicKey *btcec.PublicKey
}

var _ IDigestSigner = (*AWSKMSSigner)(nil)

// NewAWSKMSSigner creates a new AWSKMSSigner with the specified KMS key ID and AWS region.
// The public key is fetched once and cached.
//
// Parameters:
//   - ctx: Context for the GetPublicKey call
//   - keyID: The AWS KMS key ID or ARN for signing operations
//   - region: The AWS region where the KMS key is located
//
// Returns:
//   - *AWSKMSSigner: A new AWS KMS signer instance
//   - error: An error if the AWS session cannot be created or the key is invalid
func NewAWSKMSSigner(ctx context.Context, keyID, region string) (*AWSKMSSigner, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewAWSKMSSignerWithClient(ctx, kms.New(sess), keyID)
}

// NewAWSKMSSignerWithClient creates a signer on an existing KMS client.
func NewAWSKMSSignerWithClient(ctx context.Context, client kmsiface.KMSAPI, keyID string) (*AWSKMSSigner, error) {
	publicKey, err := getPublicKeyFromKMSKey(ctx, client, keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key of KMS key: %w", err)
	}
	return &AWSKMSSigner{
		kmsClient: client,
		keyID:     keyID,
		publicKey: publicKey,
	}, nil
}

// PublicKey returns the compressed public key of the KMS key
func (a *AWSKMSSigner) PublicKey(_ context.Context) ([]byte, error) {
	return a.publicKey.SerializeCompressed(), nil
}

// SignDigest signs a 32-byte digest with KMS and returns r || s || v with low S.
func (a *AWSKMSSigner) SignDigest(ctx context.Context, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	result, err := a.kmsClient.SignWithContext(ctx, &kms.SignInput{
		KeyId:            aws.String(a.keyID),
		Message:          digest,
		MessageType:      aws.String(kms.MessageTypeDigest),
		SigningAlgorithm: aws.String(kms.SigningAlgorithmSpecEcdsaSha256),
	})
	if err != nil {
		return nil, fmt.Errorf("KMS signing failed: %w", err)
	}

	r, s, err := parseASN1Signature(result.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse KMS signature: %w", err)
	}
	n := btcec.S256().N
	if r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return nil, fmt.Errorf("KMS signature is out of range")
	}
	if s.Cmp(new(big.Int).Rsh(n, 1)) > 0 {
		s.Sub(n, s)
	}

	signature := make([]byte, 65)
	r.FillBytes(signature[0:32])
	s.FillBytes(signature[32:64])

	expected := a.publicKey.SerializeUncompressed()
	for v := byte(0); v < 2; v++ {
		signature[64] = v
		recovered, err := crypto.Ecrecover(digest, signature)
		if err != nil {
			continue
		}
		if bytes.Equal(recovered, expected) {
			return signature, nil
		}
	}
	return nil, fmt.Errorf("failed to determine recovery ID")
}

type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// getPublicKeyFromKMSKey loads the DER SubjectPublicKeyInfo of a KMS key
func getPublicKeyFromKMSKey(ctx context.Context, client kmsiface.KMSAPI, keyID string) (*btcec.PublicKey, error) {
	result, err := client.GetPublicKeyWithContext(ctx, &kms.GetPublicKeyInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key from KMS: %w", err)
	}
	var info subjectPublicKeyInfo
	rest, err := asn1.Unmarshal(result.PublicKey, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data after public key")
	}
	return btcec.ParsePubKey(info.PublicKey.RightAlign())
}

type ecdsaSignature struct {
	R, S *big.Int
}

// parseASN1Signature parses an ASN.1 DER encoded ECDSA signature into r and s values
func parseASN1Signature(signature []byte) (*big.Int, *big.Int, error) {
	var sig ecdsaSignature
	rest, err := asn1.Unmarshal(signature, &sig)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("trailing data after signature")
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return nil, nil, fmt.Errorf("signature values must be positive")
	}
	return sig.R, sig.S, nil
}
