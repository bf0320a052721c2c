// Package polkadot implements the Substrate coin entry for Polkadot, Kusama and other
// SS58 networks: SCALE encoded calls located by per-network call indices, wrapped in a
// signed version 4 extrinsic.
package polkadot

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/holiman/uint256"
)

// CallIndices overrides the (module, method) pair of a call.
type CallIndices struct {
	ModuleIndex uint32 `json:"module_index"`
	MethodIndex uint32 `json:"method_index"`
}

// Era is a mortal era anchored at BlockNumber. A nil era is immortal.
type Era struct {
	BlockNumber uint64 `json:"block_number"`
	Period      uint64 `json:"period"`
}

// RewardDestination of a staking bond.
type RewardDestination uint8

const (
	RewardStaked RewardDestination = iota
	RewardStash
	RewardController
)

type Transfer struct {
	ToAddress   string       `json:"to_address" validate:"required"`
	Value       *uint256.Int `json:"value" validate:"required"`
	Memo        string       `json:"memo,omitempty" validate:"max=32"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type BatchTransfer struct {
	Transfers   []Transfer   `json:"transfers" validate:"required,min=1,dive"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type AssetTransfer struct {
	ToAddress   string       `json:"to_address" validate:"required"`
	Value       *uint256.Int `json:"value" validate:"required"`
	AssetID     uint32       `json:"asset_id,omitempty"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type BatchAssetTransfer struct {
	Transfers   []AssetTransfer `json:"transfers" validate:"required,min=1,dive"`
	CallIndices *CallIndices    `json:"call_indices,omitempty"`
}

// Balance holds exactly one balance call.
type Balance struct {
	Transfer           *Transfer           `json:"transfer,omitempty"`
	BatchTransfer      *BatchTransfer      `json:"batch_transfer,omitempty"`
	AssetTransfer      *AssetTransfer      `json:"asset_transfer,omitempty"`
	BatchAssetTransfer *BatchAssetTransfer `json:"batch_asset_transfer,omitempty"`
}

type Bond struct {
	// Controller is optional; newer runtimes dropped the argument
	Controller        string            `json:"controller,omitempty"`
	Value             *uint256.Int      `json:"value" validate:"required"`
	RewardDestination RewardDestination `json:"reward_destination"`
	CallIndices       *CallIndices      `json:"call_indices,omitempty"`
}

type BondAndNominate struct {
	Controller        string            `json:"controller,omitempty"`
	Value             *uint256.Int      `json:"value" validate:"required"`
	RewardDestination RewardDestination `json:"reward_destination"`
	Nominators        []string          `json:"nominators" validate:"required,min=1"`
	CallIndices       *CallIndices      `json:"call_indices,omitempty"`
}

type BondExtra struct {
	Value       *uint256.Int `json:"value" validate:"required"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type Unbond struct {
	Value       *uint256.Int `json:"value" validate:"required"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type Rebond struct {
	Value       *uint256.Int `json:"value" validate:"required"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type WithdrawUnbonded struct {
	SlashingSpans uint32       `json:"slashing_spans"`
	CallIndices   *CallIndices `json:"call_indices,omitempty"`
}

type Nominate struct {
	Nominators  []string     `json:"nominators" validate:"required,min=1"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type Chill struct {
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

type ChillAndUnbond struct {
	Value       *uint256.Int `json:"value" validate:"required"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

// Staking holds exactly one staking call.
type Staking struct {
	Bond             *Bond             `json:"bond,omitempty"`
	BondAndNominate  *BondAndNominate  `json:"bond_and_nominate,omitempty"`
	BondExtra        *BondExtra        `json:"bond_extra,omitempty"`
	Unbond           *Unbond           `json:"unbond,omitempty"`
	Rebond           *Rebond           `json:"rebond,omitempty"`
	WithdrawUnbonded *WithdrawUnbonded `json:"withdraw_unbonded,omitempty"`
	Nominate         *Nominate         `json:"nominate,omitempty"`
	Chill            *Chill            `json:"chill,omitempty"`
	ChillAndUnbond   *ChillAndUnbond   `json:"chill_and_unbond,omitempty"`
}

type JoinIdentityAsKey struct {
	AuthID      uint64       `json:"auth_id"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

// AuthData restricts an authorization. A nil field leaves that scope unrestricted.
type AuthData struct {
	Asset     []byte `json:"asset,omitempty"`
	Extrinsic []byte `json:"extrinsic,omitempty"`
	Portfolio []byte `json:"portfolio,omitempty"`
}

type AddAuthorization struct {
	Target      string       `json:"target" validate:"required"`
	Data        *AuthData    `json:"data,omitempty"`
	Expiry      uint64       `json:"expiry,omitempty"`
	CallIndices *CallIndices `json:"call_indices,omitempty"`
}

// Identity holds exactly one identity call.
type Identity struct {
	JoinIdentityAsKey *JoinIdentityAsKey `json:"join_identity_as_key,omitempty"`
	AddAuthorization  *AddAuthorization  `json:"add_authorization,omitempty"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile. Exactly one
// of BalanceCall, StakingCall and IdentityCall is set.
type SigningInput struct {
	BlockHash          []byte       `json:"block_hash" validate:"len=32"`
	GenesisHash        []byte       `json:"genesis_hash" validate:"len=32"`
	Nonce              uint64       `json:"nonce"`
	SpecVersion        uint32       `json:"spec_version"`
	TransactionVersion uint32       `json:"transaction_version"`
	Tip                *uint256.Int `json:"tip,omitempty"`
	Era                *Era         `json:"era,omitempty"`
	// Network is the SS58 prefix; it selects the call index table
	Network uint16 `json:"network"`
	// MultiAddress forces the MultiAddress account encoding regardless of SpecVersion
	MultiAddress bool      `json:"multi_address,omitempty"`
	BalanceCall  *Balance  `json:"balance_call,omitempty"`
	StakingCall  *Staking  `json:"staking_call,omitempty"`
	IdentityCall *Identity `json:"identity_call,omitempty"`
	PrivateKey   []byte    `json:"private_key,omitempty"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	// Encoded is the length prefixed signed extrinsic
	Encoded []byte `json:"encoded,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the payload that is signed, already hashed when it exceeds
// 256 bytes.
type PreSigningOutput struct {
	Data []byte `json:"data,omitempty"`
	coinEntry.Status
}
