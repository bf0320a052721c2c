// Package txSigner drives the two-phase signing flow with keys held outside the process:
// preimage hashes are computed by the coin entry, signed one digest at a time by an
// IDigestSigner, and compiled back into a transaction.
package txSigner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/aptos"
	"github.com/Layr-Labs/multichain-signer/pkg/bitcoin"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/coinRegistry"
	"github.com/Layr-Labs/multichain-signer/pkg/cosmos"
	"github.com/Layr-Labs/multichain-signer/pkg/ethereum"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/Layr-Labs/multichain-signer/pkg/polkadot"
	"github.com/Layr-Labs/multichain-signer/pkg/solana"
	"github.com/Layr-Labs/multichain-signer/pkg/sui"
	"github.com/Layr-Labs/multichain-signer/pkg/util"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
)

// IDigestSigner signs preimage digests with a key it never exposes.
type IDigestSigner interface {
	// SignDigest signs one preimage.
	//
	// Parameters:
	//   - ctx: Context for the signing call
	//   - digest: the preimage reported by the coin entry
	//
	// Returns:
	//   - []byte: r || s || v (v is the recovery id 0 or 1) for secp256k1 keys, the
	//     64-byte signature for ed25519 keys
	//   - error: An error if the backend refuses to sign
	SignDigest(ctx context.Context, digest []byte) ([]byte, error)

	// PublicKey returns the compressed secp256k1 key (33 bytes) or the ed25519 key (32 bytes).
	PublicKey(ctx context.Context) ([]byte, error)
}

// IDispatcher is the part of the anySigner dispatcher used by SignExternally.
type IDispatcher interface {
	PreImageHashes(coin coinRegistry.CoinType, input []byte) ([]byte, error)
	Compile(coin coinRegistry.CoinType, input []byte, signatures [][]byte, publicKeys [][]byte) ([]byte, error)
}

func signerKeyType(publicKey []byte) (keypair.PublicKeyType, error) {
	switch len(publicKey) {
	case 32:
		return keypair.Ed25519, nil
	case 33:
		return keypair.Secp256k1, nil
	default:
		return 0, fmt.Errorf("unrecognized signer public key of %d bytes", len(publicKey))
	}
}

func keyTypeMatches(coinKey, signerKey keypair.PublicKeyType) bool {
	if coinKey == keypair.Secp256k1Extended {
		coinKey = keypair.Secp256k1
	}
	return coinKey == signerKey
}

// digestSet is what SignExternally needs from a preimage output.
type digestSet struct {
	digests [][]byte
	// compact asks for 64-byte r || s signatures
	compact bool
}

func decodeStatus[T any](raw []byte, status func(*T) coinEntry.Status) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode preimage output: %w", err)
	}
	if err := status(out).Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// preimages extracts the digests to sign from a serialized preimage output.
func preimages(blockchain coinRegistry.BlockchainType, raw []byte) (*digestSet, error) {
	switch blockchain {
	case coinRegistry.BlockchainBitcoin:
		out, err := decodeStatus(raw, func(o *bitcoin.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		if util.Any(out.Sighashes, func(s utxo.Sighash) bool { return s.SigningMethod.IsTaproot() }) {
			return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "taproot inputs need schnorr signatures, which digest signers do not produce")
		}
		return &digestSet{
			digests: util.Map(out.Sighashes, func(s utxo.Sighash, _ uint64) []byte { return s.Sighash }),
			compact: true,
		}, nil
	case coinRegistry.BlockchainEthereum:
		out, err := decodeStatus(raw, func(o *ethereum.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		return &digestSet{digests: [][]byte{out.DataHash}}, nil
	case coinRegistry.BlockchainCosmos, coinRegistry.BlockchainNativeInjective:
		out, err := decodeStatus(raw, func(o *cosmos.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		return &digestSet{digests: [][]byte{out.DataHash}, compact: true}, nil
	case coinRegistry.BlockchainSui:
		out, err := decodeStatus(raw, func(o *sui.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		return &digestSet{digests: [][]byte{out.DataHash}}, nil
	case coinRegistry.BlockchainAptos:
		out, err := decodeStatus(raw, func(o *aptos.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		return &digestSet{digests: [][]byte{out.Data}}, nil
	case coinRegistry.BlockchainPolkadot:
		out, err := decodeStatus(raw, func(o *polkadot.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		return &digestSet{digests: [][]byte{out.Data}}, nil
	case coinRegistry.BlockchainSolana:
		out, err := decodeStatus(raw, func(o *solana.PreSigningOutput) coinEntry.Status { return o.Status })
		if err != nil {
			return nil, err
		}
		if len(out.Signers) != 1 {
			return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "message needs %d signers, a digest signer holds one key", len(out.Signers))
		}
		return &digestSet{digests: [][]byte{out.Data}}, nil
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "blockchain %s", blockchain)
	}
}

// SignExternally runs preimage, external signing and compile for one request.
//
// Parameters:
//   - ctx: Context for the signer calls
//   - signer: the key holder; its key type must match the coin
//   - dispatcher: usually an *anySigner.AnySigner
//   - coin: the coin type of the request
//   - input: the serialized signing input, without a private key
//
// Returns:
//   - []byte: the serialized signing output of the coin
//   - error: An error if any phase fails; chain failures are reported as *coinEntry.SigningError
func SignExternally(ctx context.Context, signer IDigestSigner, dispatcher IDispatcher, coin coinRegistry.CoinType, input []byte) ([]byte, error) {
	item, err := coinRegistry.GetCoin(coin)
	if err != nil {
		return nil, err
	}
	publicKey, err := signer.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get signer public key: %w", err)
	}
	keyType, err := signerKeyType(publicKey)
	if err != nil {
		return nil, err
	}
	if !keyTypeMatches(item.PublicKeyType, keyType) {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "%s signs with %s keys, signer holds %s", item.Name, item.PublicKeyType, keyType)
	}

	raw, err := dispatcher.PreImageHashes(coin, input)
	if err != nil {
		return nil, err
	}
	set, err := preimages(item.Blockchain, raw)
	if err != nil {
		return nil, err
	}

	signatures := make([][]byte, len(set.digests))
	for i, digest := range set.digests {
		sig, err := signer.SignDigest(ctx, digest)
		if err != nil {
			return nil, fmt.Errorf("failed to sign digest %d: %w", i, err)
		}
		if set.compact && len(sig) == 65 {
			sig = sig[:64]
		}
		signatures[i] = sig
	}

	out, err := dispatcher.Compile(coin, input, signatures, util.Repeat(publicKey, len(signatures)))
	if err != nil {
		return nil, err
	}
	var status coinEntry.Status
	if err := json.Unmarshal(out, &status); err != nil {
		return nil, fmt.Errorf("failed to decode signing output: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
