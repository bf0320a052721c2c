// Package anySigner dispatches serialized signing requests to the coin entry that owns a
// coin type. Requests and responses are the JSON encoded chain messages of each coin.
package anySigner

import (
	"encoding/json"
	"errors"
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
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedCoin is returned when no entry is registered for a coin type
	ErrUnsupportedCoin = errors.New("unsupported coin")

	// ErrMalformedInput is returned when a request cannot be decoded
	ErrMalformedInput = coinEntry.ErrMalformedInput
)

// AnySigner routes requests by coin type. The dispatch table is built once by
// NewAnySigner and only read afterwards, so an AnySigner is safe for concurrent use.
type AnySigner struct {
	logger  *zap.Logger
	entries map[coinRegistry.BlockchainType]coinEntry.IEntry
}

// NewAnySigner creates a dispatcher with every supported blockchain registered.
//
// Parameters:
//   - l: logger for dispatch events, nil disables logging
//
// Returns:
//   - *AnySigner: the dispatcher
func NewAnySigner(l *zap.Logger) *AnySigner {
	if l == nil {
		l = zap.NewNop()
	}
	return &AnySigner{
		logger: l,
		entries: map[coinRegistry.BlockchainType]coinEntry.IEntry{
			coinRegistry.BlockchainBitcoin: coinEntry.Erase[bitcoin.SigningInput, bitcoin.SigningOutput, bitcoin.PreSigningOutput](
				bitcoin.NewEntry(l.Named("bitcoin"))),
			coinRegistry.BlockchainEthereum: coinEntry.Erase[ethereum.SigningInput, ethereum.SigningOutput, ethereum.PreSigningOutput](
				ethereum.NewEntry()),
			coinRegistry.BlockchainCosmos: coinEntry.Erase[cosmos.SigningInput, cosmos.SigningOutput, cosmos.PreSigningOutput](
				cosmos.NewEntry(cosmos.StandardCosmosContext())),
			coinRegistry.BlockchainNativeInjective: coinEntry.Erase[cosmos.SigningInput, cosmos.SigningOutput, cosmos.PreSigningOutput](
				cosmos.NewEntry(cosmos.NativeInjectiveContext())),
			coinRegistry.BlockchainPolkadot: coinEntry.Erase[polkadot.SigningInput, polkadot.SigningOutput, polkadot.PreSigningOutput](
				polkadot.NewEntry()),
			coinRegistry.BlockchainSolana: coinEntry.Erase[solana.SigningInput, solana.SigningOutput, solana.PreSigningOutput](
				solana.NewEntry()),
			coinRegistry.BlockchainSui: coinEntry.Erase[sui.SigningInput, sui.SigningOutput, sui.PreSigningOutput](
				sui.NewEntry()),
			coinRegistry.BlockchainAptos: coinEntry.Erase[aptos.SigningInput, aptos.SigningOutput, aptos.PreSigningOutput](
				aptos.NewEntry()),
		},
	}
}

func (a *AnySigner) resolve(coin coinRegistry.CoinType, operation string) (*coinEntry.CoinContext, coinEntry.IEntry, error) {
	item, err := coinRegistry.GetCoin(coin)
	if err != nil {
		a.logger.Sugar().Warnw("Unknown coin type", zap.Uint32("coin", uint32(coin)), zap.String("operation", operation))
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedCoin, uint32(coin))
	}
	entry, ok := a.entries[item.Blockchain]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no %s entry", ErrUnsupportedCoin, item.Name, item.Blockchain)
	}
	a.logger.Debug("Dispatching request",
		zap.String("coin", item.ID),
		zap.String("operation", operation),
	)
	return item.Context(), entry, nil
}

// logStatus reports a failed output status. Only the code and message are logged.
func (a *AnySigner) logStatus(coin coinRegistry.CoinType, operation string, output []byte) {
	var status coinEntry.Status
	if err := json.Unmarshal(output, &status); err != nil || !status.Failed() {
		return
	}
	a.logger.Sugar().Warnw("Operation failed",
		zap.Uint32("coin", uint32(coin)),
		zap.String("operation", operation),
		zap.String("code", status.Error.String()),
		zap.String("message", status.ErrorMessage),
	)
}

// Sign signs a serialized request with the private key it embeds.
func (a *AnySigner) Sign(coin coinRegistry.CoinType, input []byte) ([]byte, error) {
	ctx, entry, err := a.resolve(coin, "sign")
	if err != nil {
		return nil, err
	}
	out, err := entry.Sign(ctx, input)
	if err != nil {
		return nil, err
	}
	a.logStatus(coin, "sign", out)
	return out, nil
}

// PreImageHashes returns the serialized preimage output of a request.
func (a *AnySigner) PreImageHashes(coin coinRegistry.CoinType, input []byte) ([]byte, error) {
	ctx, entry, err := a.resolve(coin, "preimage")
	if err != nil {
		return nil, err
	}
	out, err := entry.PreImageHashes(ctx, input)
	if err != nil {
		return nil, err
	}
	a.logStatus(coin, "preimage", out)
	return out, nil
}

// Compile attaches externally produced signatures to a request.
//
// Parameters:
//   - coin: the coin type
//   - input: the serialized signing input, without a private key
//   - signatures: one signature per preimage hash, in preimage order
//   - publicKeys: the matching public keys, where the chain needs them
//
// Returns:
//   - []byte: the serialized signing output
//   - error: ErrUnsupportedCoin or ErrMalformedInput; chain failures are in the output status
func (a *AnySigner) Compile(coin coinRegistry.CoinType, input []byte, signatures [][]byte, publicKeys [][]byte) ([]byte, error) {
	ctx, entry, err := a.resolve(coin, "compile")
	if err != nil {
		return nil, err
	}
	out, err := entry.Compile(ctx, input, signatures, publicKeys)
	if err != nil {
		return nil, err
	}
	a.logStatus(coin, "compile", out)
	return out, nil
}

// Plan returns the transaction plan for coins that support planning.
func (a *AnySigner) Plan(coin coinRegistry.CoinType, input []byte) ([]byte, error) {
	ctx, entry, err := a.resolve(coin, "plan")
	if err != nil {
		return nil, err
	}
	planner, ok := entry.Unwrap().(coinEntry.IPlanBuilder)
	if !ok {
		return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "coin %d does not support planning", uint32(coin))
	}
	out, err := planner.Plan(ctx, input)
	if err != nil {
		return nil, err
	}
	a.logStatus(coin, "plan", out)
	return out, nil
}

// SupportsJSON reports whether the coin accepts JSON requests through SignJSON.
func (a *AnySigner) SupportsJSON(coin coinRegistry.CoinType) bool {
	_, entry, err := a.resolve(coin, "supports_json")
	if err != nil {
		return false
	}
	_, ok := entry.Unwrap().(coinEntry.IJsonSigner)
	return ok
}

// SignJSON signs a JSON request with a separately supplied private key, which is zeroed
// before returning.
func (a *AnySigner) SignJSON(coin coinRegistry.CoinType, inputJSON string, privateKey []byte) (string, error) {
	defer keypair.Zero(privateKey)
	ctx, entry, err := a.resolve(coin, "sign_json")
	if err != nil {
		return "", err
	}
	signer, ok := entry.Unwrap().(coinEntry.IJsonSigner)
	if !ok {
		return "", coinEntry.NewError(coinEntry.ErrorNotSupported, "coin %d does not support JSON signing", uint32(coin))
	}
	return signer.SignJSON(ctx, inputJSON, privateKey)
}

// SignMessage signs an off-chain message. The private key is zeroed before returning.
func (a *AnySigner) SignMessage(coin coinRegistry.CoinType, privateKey []byte, message string) (string, error) {
	defer keypair.Zero(privateKey)
	ctx, entry, err := a.resolve(coin, "sign_message")
	if err != nil {
		return "", err
	}
	signer, ok := entry.Unwrap().(coinEntry.IMessageSigner)
	if !ok {
		return "", coinEntry.NewError(coinEntry.ErrorNotSupported, "coin %d does not support message signing", uint32(coin))
	}
	return signer.SignMessage(ctx, privateKey, message)
}

// VerifyMessage checks an off-chain message signature. Unsupported coins never verify.
func (a *AnySigner) VerifyMessage(coin coinRegistry.CoinType, publicKey []byte, message string, signature string) bool {
	ctx, entry, err := a.resolve(coin, "verify_message")
	if err != nil {
		return false
	}
	signer, ok := entry.Unwrap().(coinEntry.IMessageSigner)
	if !ok {
		return false
	}
	return signer.VerifyMessage(ctx, publicKey, message, signature)
}

// ValidateAddress reports whether text is a valid address of the coin, optionally under
// a non-default prefix.
func (a *AnySigner) ValidateAddress(coin coinRegistry.CoinType, text string, prefix *coinEntry.AddressPrefix) bool {
	ctx, entry, err := a.resolve(coin, "validate_address")
	if err != nil {
		return false
	}
	_, err = entry.ParseAddress(ctx, text, prefix)
	return err == nil
}

// NormalizeAddress parses text and returns its canonical string form.
func (a *AnySigner) NormalizeAddress(coin coinRegistry.CoinType, text string) (string, error) {
	ctx, entry, err := a.resolve(coin, "normalize_address")
	if err != nil {
		return "", err
	}
	addr, err := entry.ParseAddress(ctx, text, nil)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// DeriveAddress returns the address of publicKey.
func (a *AnySigner) DeriveAddress(coin coinRegistry.CoinType, publicKey *keypair.PublicKey, derivation coinEntry.Derivation, prefix *coinEntry.AddressPrefix) (string, error) {
	ctx, entry, err := a.resolve(coin, "derive_address")
	if err != nil {
		return "", err
	}
	if publicKey == nil {
		return "", coinEntry.NewError(coinEntry.ErrorInvalidInput, "public key is required")
	}
	addr, err := entry.DeriveAddress(ctx, publicKey, derivation, prefix)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}
