package polkadot

import (
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/holiman/uint256"
)

const (
	NetworkPolkadot uint16 = 0
	NetworkKusama   uint16 = 2

	polkadotMultiAddressSpec = 28
	kusamaMultiAddressSpec   = 2028

	memoLen = 32
)

const (
	callBalanceTransfer         = "Balances.transfer"
	callStakingBond             = "Staking.bond"
	callStakingBondExtra        = "Staking.bond_extra"
	callStakingChill            = "Staking.chill"
	callStakingNominate         = "Staking.nominate"
	callStakingRebond           = "Staking.rebond"
	callStakingUnbond           = "Staking.unbond"
	callStakingWithdrawUnbonded = "Staking.withdraw_unbonded"
	callUtilityBatch            = "Utility.batch_all"
	callAssetsTransfer          = "Assets.transfer"
	callJoinIdentityAsKey       = "Identity.join_identity_as_key"
	callAddAuthorization        = "Identity.add_authorization"
)

type callIndex [2]byte

// callIndicesByNetwork is read only after package initialization.
var callIndicesByNetwork = map[uint16]map[string]callIndex{
	NetworkPolkadot: {
		callBalanceTransfer:         {0x05, 0x00},
		callStakingBond:             {0x07, 0x00},
		callStakingBondExtra:        {0x07, 0x01},
		callStakingChill:            {0x07, 0x06},
		callStakingNominate:         {0x07, 0x05},
		callStakingRebond:           {0x07, 0x13},
		callStakingUnbond:           {0x07, 0x02},
		callStakingWithdrawUnbonded: {0x07, 0x03},
		callUtilityBatch:            {0x1a, 0x02},
	},
	NetworkKusama: {
		callBalanceTransfer:         {0x04, 0x00},
		callStakingBond:             {0x06, 0x00},
		callStakingBondExtra:        {0x06, 0x01},
		callStakingChill:            {0x06, 0x06},
		callStakingNominate:         {0x06, 0x05},
		callStakingRebond:           {0x06, 0x13},
		callStakingUnbond:           {0x06, 0x02},
		callStakingWithdrawUnbonded: {0x06, 0x03},
		callUtilityBatch:            {0x18, 0x02},
	},
}

// callEncoder encodes calls for one signing input.
type callEncoder struct {
	input *SigningInput
}

func (c *callEncoder) index(name string, custom *CallIndices) (callIndex, error) {
	if custom != nil {
		if custom.ModuleIndex > 0xff || custom.MethodIndex > 0xff {
			return callIndex{}, coinEntry.NewError(coinEntry.ErrorInvalidCallIndex, "call index (%d, %d) out of range", custom.ModuleIndex, custom.MethodIndex)
		}
		return callIndex{byte(custom.ModuleIndex), byte(custom.MethodIndex)}, nil
	}
	idx, ok := callIndicesByNetwork[c.input.Network][name]
	if !ok {
		return callIndex{}, coinEntry.NewError(coinEntry.ErrorNotSupported, "%s has no call index on network %d; supply call indices", name, c.input.Network)
	}
	return idx, nil
}

// multiAddress reports whether account ids carry the MultiAddress::Id prefix.
func (c *callEncoder) multiAddress() bool {
	if c.input.MultiAddress {
		return true
	}
	switch c.input.Network {
	case NetworkPolkadot:
		return c.input.SpecVersion >= polkadotMultiAddressSpec
	case NetworkKusama:
		return c.input.SpecVersion > kusamaMultiAddressSpec
	default:
		return false
	}
}

func (c *callEncoder) account(text string) ([]byte, error) {
	addr, err := DecodeAddress(text)
	if err != nil {
		return nil, err
	}
	if c.multiAddress() {
		return append([]byte{0x00}, addr.Bytes()...), nil
	}
	return addr.Bytes(), nil
}

func compactValue(v *uint256.Int) []byte {
	if v == nil {
		return codec.EncodeCompact(0)
	}
	return codec.EncodeCompactBig(v)
}

func (c *callEncoder) transfer(t *Transfer) ([]byte, error) {
	idx, err := c.index(callBalanceTransfer, t.CallIndices)
	if err != nil {
		return nil, err
	}
	to, err := c.account(t.ToAddress)
	if err != nil {
		return nil, err
	}
	out := append(idx[:], to...)
	out = append(out, compactValue(t.Value)...)
	if t.Memo != "" {
		if len(t.Memo) > memoLen {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "memo longer than %d bytes", memoLen)
		}
		memo := make([]byte, memoLen)
		copy(memo, t.Memo)
		out = append(append(out, 0x01), memo...)
	}
	return out, nil
}

func (c *callEncoder) assetTransfer(t *AssetTransfer) ([]byte, error) {
	idx, err := c.index(callAssetsTransfer, t.CallIndices)
	if err != nil {
		return nil, err
	}
	out := idx[:]
	if t.AssetID != 0 {
		out = append(out, codec.EncodeCompact(uint64(t.AssetID))...)
	}
	to, err := c.account(t.ToAddress)
	if err != nil {
		return nil, err
	}
	out = append(out, to...)
	return append(out, compactValue(t.Value)...), nil
}

func (c *callEncoder) batch(calls [][]byte, custom *CallIndices) ([]byte, error) {
	idx, err := c.index(callUtilityBatch, custom)
	if err != nil {
		return nil, err
	}
	out := append(idx[:], codec.EncodeCompact(uint64(len(calls)))...)
	for _, call := range calls {
		out = append(out, call...)
	}
	return out, nil
}

func (c *callEncoder) balance(b *Balance) ([]byte, error) {
	switch {
	case b.Transfer != nil:
		return c.transfer(b.Transfer)
	case b.BatchTransfer != nil:
		calls := make([][]byte, 0, len(b.BatchTransfer.Transfers))
		for i := range b.BatchTransfer.Transfers {
			call, err := c.transfer(&b.BatchTransfer.Transfers[i])
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
		}
		return c.batch(calls, b.BatchTransfer.CallIndices)
	case b.AssetTransfer != nil:
		return c.assetTransfer(b.AssetTransfer)
	case b.BatchAssetTransfer != nil:
		calls := make([][]byte, 0, len(b.BatchAssetTransfer.Transfers))
		for i := range b.BatchAssetTransfer.Transfers {
			call, err := c.assetTransfer(&b.BatchAssetTransfer.Transfers[i])
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
		}
		return c.batch(calls, b.BatchAssetTransfer.CallIndices)
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "empty balance call")
	}
}

func (c *callEncoder) bond(b *Bond) ([]byte, error) {
	idx, err := c.index(callStakingBond, b.CallIndices)
	if err != nil {
		return nil, err
	}
	out := idx[:]
	if b.Controller != "" {
		controller, err := c.account(b.Controller)
		if err != nil {
			return nil, err
		}
		out = append(out, controller...)
	}
	out = append(out, compactValue(b.Value)...)
	return append(out, byte(b.RewardDestination)), nil
}

func (c *callEncoder) valueCall(name string, v *uint256.Int, custom *CallIndices) ([]byte, error) {
	idx, err := c.index(name, custom)
	if err != nil {
		return nil, err
	}
	return append(idx[:], compactValue(v)...), nil
}

func (c *callEncoder) nominate(n *Nominate) ([]byte, error) {
	idx, err := c.index(callStakingNominate, n.CallIndices)
	if err != nil {
		return nil, err
	}
	out := append(idx[:], codec.EncodeCompact(uint64(len(n.Nominators)))...)
	for _, nominator := range n.Nominators {
		account, err := c.account(nominator)
		if err != nil {
			return nil, err
		}
		out = append(out, account...)
	}
	return out, nil
}

func (c *callEncoder) chill(custom *CallIndices) ([]byte, error) {
	idx, err := c.index(callStakingChill, custom)
	if err != nil {
		return nil, err
	}
	return idx[:], nil
}

func (c *callEncoder) staking(s *Staking) ([]byte, error) {
	switch {
	case s.Bond != nil:
		return c.bond(s.Bond)
	case s.BondAndNominate != nil:
		ban := s.BondAndNominate
		bond, err := c.bond(&Bond{Controller: ban.Controller, Value: ban.Value, RewardDestination: ban.RewardDestination, CallIndices: ban.CallIndices})
		if err != nil {
			return nil, err
		}
		nominate, err := c.nominate(&Nominate{Nominators: ban.Nominators, CallIndices: ban.CallIndices})
		if err != nil {
			return nil, err
		}
		return c.batch([][]byte{bond, nominate}, ban.CallIndices)
	case s.BondExtra != nil:
		return c.valueCall(callStakingBondExtra, s.BondExtra.Value, s.BondExtra.CallIndices)
	case s.Unbond != nil:
		return c.valueCall(callStakingUnbond, s.Unbond.Value, s.Unbond.CallIndices)
	case s.Rebond != nil:
		return c.valueCall(callStakingRebond, s.Rebond.Value, s.Rebond.CallIndices)
	case s.WithdrawUnbonded != nil:
		idx, err := c.index(callStakingWithdrawUnbonded, s.WithdrawUnbonded.CallIndices)
		if err != nil {
			return nil, err
		}
		spans := s.WithdrawUnbonded.SlashingSpans
		return append(idx[:], byte(spans), byte(spans>>8), byte(spans>>16), byte(spans>>24)), nil
	case s.Nominate != nil:
		return c.nominate(s.Nominate)
	case s.Chill != nil:
		return c.chill(s.Chill.CallIndices)
	case s.ChillAndUnbond != nil:
		cau := s.ChillAndUnbond
		chill, err := c.chill(cau.CallIndices)
		if err != nil {
			return nil, err
		}
		unbond, err := c.valueCall(callStakingUnbond, cau.Value, cau.CallIndices)
		if err != nil {
			return nil, err
		}
		return c.batch([][]byte{chill, unbond}, cau.CallIndices)
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "empty staking call")
	}
}

// authScope writes Some(data) or None.
func authScope(out []byte, data []byte) []byte {
	if data == nil {
		return append(out, 0x00)
	}
	return append(append(out, 0x01), data...)
}

func (c *callEncoder) identity(i *Identity) ([]byte, error) {
	switch {
	case i.JoinIdentityAsKey != nil:
		idx, err := c.index(callJoinIdentityAsKey, i.JoinIdentityAsKey.CallIndices)
		if err != nil {
			return nil, err
		}
		id := i.JoinIdentityAsKey.AuthID
		out := idx[:]
		for shift := 0; shift < 64; shift += 8 {
			out = append(out, byte(id>>shift))
		}
		return out, nil
	case i.AddAuthorization != nil:
		a := i.AddAuthorization
		idx, err := c.index(callAddAuthorization, a.CallIndices)
		if err != nil {
			return nil, err
		}
		target, err := DecodeAddress(a.Target)
		if err != nil {
			return nil, err
		}
		// Signatory::Account(target), AuthorizationType::JoinIdentity
		out := append(idx[:], 0x01)
		out = append(out, target.Bytes()...)
		out = append(out, 0x05)
		if a.Data != nil {
			out = authScope(out, a.Data.Asset)
			out = authScope(out, a.Data.Extrinsic)
			out = authScope(out, a.Data.Portfolio)
		} else {
			out = append(out, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00)
		}
		return append(out, codec.EncodeCompact(a.Expiry)...), nil
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "empty identity call")
	}
}

// encodeCall returns the SCALE call of the input.
func encodeCall(input *SigningInput) ([]byte, error) {
	set := 0
	for _, present := range []bool{input.BalanceCall != nil, input.StakingCall != nil, input.IdentityCall != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "exactly one call must be set, got %d", set)
	}
	c := &callEncoder{input: input}
	switch {
	case input.BalanceCall != nil:
		return c.balance(input.BalanceCall)
	case input.StakingCall != nil:
		return c.staking(input.StakingCall)
	default:
		return c.identity(input.IdentityCall)
	}
}
