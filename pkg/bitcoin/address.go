package bitcoin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// Address is a parsed Bitcoin-family address.
type Address struct {
	addr btcutil.Address
}

func (a *Address) String() string {
	return a.addr.EncodeAddress()
}

// Bytes returns the hash or witness program committed to by the address.
func (a *Address) Bytes() []byte {
	return a.addr.ScriptAddress()
}

// ScriptPubkey returns the locking script paying to the address.
func (a *Address) ScriptPubkey() ([]byte, error) {
	return txscript.PayToAddrScript(a.addr)
}

// NetParams derives btcd network parameters from the coin context.
func NetParams(ctx *coinEntry.CoinContext, prefix *coinEntry.AddressPrefix) *chaincfg.Params {
	params := chaincfg.MainNetParams
	params.Name = ctx.Name
	params.Bech32HRPSegwit = ctx.HRP
	params.PubKeyHashAddrID = ctx.P2PKHPrefix
	params.ScriptHashAddrID = ctx.P2SHPrefix
	if prefix != nil && prefix.HRP != "" {
		params.Bech32HRPSegwit = prefix.HRP
	}
	return &params
}

// decodeSegwit decodes a BIP173/BIP350 address for params. btcutil only recognises
// segwit prefixes of registered networks, which excludes forks such as Litecoin.
func decodeSegwit(text string, params *chaincfg.Params) (btcutil.Address, error) {
	hrp, data, encoding, err := bech32.DecodeGeneric(text)
	if err != nil {
		return nil, err
	}
	if hrp != params.Bech32HRPSegwit {
		return nil, fmt.Errorf("unexpected prefix %q", hrp)
	}
	if len(data) < 1 {
		return nil, errors.New("missing witness version")
	}
	version := data[0]
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, err
	}
	switch {
	case version == 0 && encoding != bech32.Version0, version != 0 && encoding != bech32.VersionM:
		return nil, errors.New("invalid checksum variant for witness version")
	case version == 0 && len(program) == 20:
		return btcutil.NewAddressWitnessPubKeyHash(program, params)
	case version == 0 && len(program) == 32:
		return btcutil.NewAddressWitnessScriptHash(program, params)
	case version == 1 && len(program) == 32:
		return btcutil.NewAddressTaproot(program, params)
	}
	return nil, fmt.Errorf("unsupported witness program v%d of %d bytes", version, len(program))
}

func parseAddress(ctx *coinEntry.CoinContext, text string, prefix *coinEntry.AddressPrefix) (*Address, error) {
	params := NetParams(ctx, prefix)
	var (
		addr btcutil.Address
		err  error
	)
	if strings.HasPrefix(strings.ToLower(text), params.Bech32HRPSegwit+"1") {
		addr, err = decodeSegwit(text, params)
	} else {
		addr, err = btcutil.DecodeAddress(text, params)
	}
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	if _, isPubKey := addr.(*btcutil.AddressPubKey); isPubKey {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%s: raw public keys are not addresses", text)
	}
	if !addr.IsForNet(params) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%s: address is for a different network", text)
	}
	return &Address{addr: addr}, nil
}

func deriveAddress(ctx *coinEntry.CoinContext, publicKey *keypair.PublicKey, derivation coinEntry.Derivation, prefix *coinEntry.AddressPrefix) (*Address, error) {
	if publicKey.Type != keypair.Secp256k1 {
		return nil, coinEntry.NewError(coinEntry.ErrorPublicKeyTypeMismatch, "expected %s public key, got %s", keypair.Secp256k1, publicKey.Type)
	}
	pub, err := btcec.ParsePubKey(publicKey.Bytes)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorPublicKeyTypeMismatch, err, "invalid public key")
	}
	params := NetParams(ctx, prefix)

	var addr btcutil.Address
	switch derivation {
	case coinEntry.DerivationDefault, coinEntry.DerivationBitcoinSegwit:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	case coinEntry.DerivationBitcoinLegacy:
		addr, err = btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	case coinEntry.DerivationBitcoinTaproot:
		addr, err = btcutil.NewAddressTaproot(schnorr.SerializePubKey(txscript.ComputeTaprootKeyNoScript(pub)), params)
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "derivation %d is not supported", derivation)
	}
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInternal, err, "failed to build address")
	}
	return &Address{addr: addr}, nil
}
