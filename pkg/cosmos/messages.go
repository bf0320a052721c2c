package cosmos

import (
	"encoding/json"
	"strconv"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"google.golang.org/protobuf/encoding/protowire"
)

// Coin is an amount of a denomination. Amount is a base-10 integer string.
type Coin struct {
	Denom  string `json:"denom" validate:"required"`
	Amount string `json:"amount" validate:"required,number"`
}

func (c *Coin) proto() []byte {
	var b []byte
	b = appendString(b, 1, c.Denom)
	b = appendString(b, 2, c.Amount)
	return b
}

// aminoCoin orders keys the way Amino JSON expects.
type aminoCoin struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

func (c *Coin) amino() aminoCoin {
	return aminoCoin{Amount: c.Amount, Denom: c.Denom}
}

func aminoCoins(coins []Coin) []aminoCoin {
	out := make([]aminoCoin, len(coins))
	for i := range coins {
		out[i] = coins[i].amino()
	}
	return out
}

// aminoMsg is the {"type", "value"} envelope of Amino JSON messages.
type aminoMsg struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// IMessage is a transaction message encodable in both signing modes.
type IMessage interface {
	// TypeURL is the protobuf Any type url
	TypeURL() string
	// ProtoValue is the serialized message, wrapped into an Any by the body builder
	ProtoValue() ([]byte, error)
	// AminoJSON returns the legacy JSON form
	AminoJSON() (any, error)
	// Addresses lists the account addresses to validate against the chain prefix
	Addresses() []string
}

// MsgSend transfers coins between accounts.
type MsgSend struct {
	FromAddress string `json:"from_address" validate:"required"`
	ToAddress   string `json:"to_address" validate:"required"`
	Amount      []Coin `json:"amount" validate:"required,min=1,dive"`
	// TypePrefix overrides the Amino type, e.g. for chains with a custom bank module
	TypePrefix string `json:"type_prefix,omitempty"`
}

func (m *MsgSend) TypeURL() string { return "/cosmos.bank.v1beta1.MsgSend" }

func (m *MsgSend) ProtoValue() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.FromAddress)
	b = appendString(b, 2, m.ToAddress)
	for i := range m.Amount {
		b = appendMessage(b, 3, m.Amount[i].proto())
	}
	return b, nil
}

func (m *MsgSend) AminoJSON() (any, error) {
	msgType := "cosmos-sdk/MsgSend"
	if m.TypePrefix != "" {
		msgType = m.TypePrefix
	}
	return aminoMsg{Type: msgType, Value: struct {
		Amount      []aminoCoin `json:"amount"`
		FromAddress string      `json:"from_address"`
		ToAddress   string      `json:"to_address"`
	}{aminoCoins(m.Amount), m.FromAddress, m.ToAddress}}, nil
}

func (m *MsgSend) Addresses() []string { return []string{m.FromAddress, m.ToAddress} }

// MsgDelegate stakes coins with a validator.
type MsgDelegate struct {
	DelegatorAddress string `json:"delegator_address" validate:"required"`
	ValidatorAddress string `json:"validator_address" validate:"required"`
	Amount           Coin   `json:"amount"`
}

func (m *MsgDelegate) TypeURL() string { return "/cosmos.staking.v1beta1.MsgDelegate" }

func (m *MsgDelegate) ProtoValue() ([]byte, error) {
	return delegationProto(m.DelegatorAddress, m.ValidatorAddress, &m.Amount), nil
}

func (m *MsgDelegate) AminoJSON() (any, error) {
	return aminoMsg{Type: "cosmos-sdk/MsgDelegate", Value: delegationAmino(m.DelegatorAddress, m.ValidatorAddress, &m.Amount)}, nil
}

func (m *MsgDelegate) Addresses() []string {
	return []string{m.DelegatorAddress, m.ValidatorAddress}
}

// MsgUndelegate unbonds coins from a validator.
type MsgUndelegate struct {
	DelegatorAddress string `json:"delegator_address" validate:"required"`
	ValidatorAddress string `json:"validator_address" validate:"required"`
	Amount           Coin   `json:"amount"`
}

func (m *MsgUndelegate) TypeURL() string { return "/cosmos.staking.v1beta1.MsgUndelegate" }

func (m *MsgUndelegate) ProtoValue() ([]byte, error) {
	return delegationProto(m.DelegatorAddress, m.ValidatorAddress, &m.Amount), nil
}

func (m *MsgUndelegate) AminoJSON() (any, error) {
	return aminoMsg{Type: "cosmos-sdk/MsgUndelegate", Value: delegationAmino(m.DelegatorAddress, m.ValidatorAddress, &m.Amount)}, nil
}

func (m *MsgUndelegate) Addresses() []string {
	return []string{m.DelegatorAddress, m.ValidatorAddress}
}

func delegationProto(delegator, validator string, amount *Coin) []byte {
	var b []byte
	b = appendString(b, 1, delegator)
	b = appendString(b, 2, validator)
	return appendMessage(b, 3, amount.proto())
}

func delegationAmino(delegator, validator string, amount *Coin) any {
	return struct {
		Amount           aminoCoin `json:"amount"`
		DelegatorAddress string    `json:"delegator_address"`
		ValidatorAddress string    `json:"validator_address"`
	}{amount.amino(), delegator, validator}
}

// MsgBeginRedelegate moves a delegation between validators.
type MsgBeginRedelegate struct {
	DelegatorAddress    string `json:"delegator_address" validate:"required"`
	ValidatorSrcAddress string `json:"validator_src_address" validate:"required"`
	ValidatorDstAddress string `json:"validator_dst_address" validate:"required"`
	Amount              Coin   `json:"amount"`
}

func (m *MsgBeginRedelegate) TypeURL() string { return "/cosmos.staking.v1beta1.MsgBeginRedelegate" }

func (m *MsgBeginRedelegate) ProtoValue() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.DelegatorAddress)
	b = appendString(b, 2, m.ValidatorSrcAddress)
	b = appendString(b, 3, m.ValidatorDstAddress)
	return appendMessage(b, 4, m.Amount.proto()), nil
}

func (m *MsgBeginRedelegate) AminoJSON() (any, error) {
	return aminoMsg{Type: "cosmos-sdk/MsgBeginRedelegate", Value: struct {
		Amount              aminoCoin `json:"amount"`
		DelegatorAddress    string    `json:"delegator_address"`
		ValidatorDstAddress string    `json:"validator_dst_address"`
		ValidatorSrcAddress string    `json:"validator_src_address"`
	}{m.Amount.amino(), m.DelegatorAddress, m.ValidatorDstAddress, m.ValidatorSrcAddress}}, nil
}

func (m *MsgBeginRedelegate) Addresses() []string {
	return []string{m.DelegatorAddress, m.ValidatorSrcAddress, m.ValidatorDstAddress}
}

// MsgWithdrawDelegatorReward claims staking rewards from one validator.
type MsgWithdrawDelegatorReward struct {
	DelegatorAddress string `json:"delegator_address" validate:"required"`
	ValidatorAddress string `json:"validator_address" validate:"required"`
}

func (m *MsgWithdrawDelegatorReward) TypeURL() string {
	return "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
}

func (m *MsgWithdrawDelegatorReward) ProtoValue() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.DelegatorAddress)
	return appendString(b, 2, m.ValidatorAddress), nil
}

func (m *MsgWithdrawDelegatorReward) AminoJSON() (any, error) {
	return aminoMsg{Type: "cosmos-sdk/MsgWithdrawDelegationReward", Value: struct {
		DelegatorAddress string `json:"delegator_address"`
		ValidatorAddress string `json:"validator_address"`
	}{m.DelegatorAddress, m.ValidatorAddress}}, nil
}

func (m *MsgWithdrawDelegatorReward) Addresses() []string {
	return []string{m.DelegatorAddress, m.ValidatorAddress}
}

// VoteOption is a governance vote choice.
type VoteOption int32

const (
	VoteUnspecified VoteOption = iota
	VoteYes
	VoteAbstain
	VoteNo
	VoteNoWithVeto
)

// MsgVote casts a governance vote.
type MsgVote struct {
	ProposalID uint64     `json:"proposal_id" validate:"required"`
	Voter      string     `json:"voter" validate:"required"`
	Option     VoteOption `json:"option" validate:"min=0,max=4"`
}

func (m *MsgVote) TypeURL() string { return "/cosmos.gov.v1beta1.MsgVote" }

func (m *MsgVote) ProtoValue() ([]byte, error) {
	var b []byte
	b = appendVarint(b, 1, m.ProposalID)
	b = appendString(b, 2, m.Voter)
	return appendVarint(b, 3, uint64(m.Option)), nil
}

func (m *MsgVote) AminoJSON() (any, error) {
	return aminoMsg{Type: "cosmos-sdk/MsgVote", Value: struct {
		Option     VoteOption `json:"option"`
		ProposalID string     `json:"proposal_id"`
		Voter      string     `json:"voter"`
	}{m.Option, strconv.FormatUint(m.ProposalID, 10), m.Voter}}, nil
}

func (m *MsgVote) Addresses() []string { return []string{m.Voter} }

// RawJSON is an arbitrary Amino message. It cannot be used in protobuf mode.
type RawJSON struct {
	Type  string          `json:"type" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

func (m *RawJSON) TypeURL() string { return "" }

func (m *RawJSON) ProtoValue() ([]byte, error) {
	return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "raw JSON message %q has no protobuf form", m.Type)
}

func (m *RawJSON) AminoJSON() (any, error) {
	if !json.Valid(m.Value) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "raw JSON message %q is not valid JSON", m.Type)
	}
	return aminoMsg{Type: m.Type, Value: m.Value}, nil
}

func (m *RawJSON) Addresses() []string { return nil }

// RawProto is an already serialized protobuf message. It cannot be used in JSON mode.
type RawProto struct {
	TypeURLValue string `json:"type_url" validate:"required"`
	Value        []byte `json:"value"`
}

func (m *RawProto) TypeURL() string { return m.TypeURLValue }

func (m *RawProto) ProtoValue() ([]byte, error) { return m.Value, nil }

func (m *RawProto) AminoJSON() (any, error) {
	return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "protobuf message %q has no Amino form", m.TypeURLValue)
}

func (m *RawProto) Addresses() []string { return nil }

// Message is the tagged union carried by SigningInput. Exactly one field is set.
type Message struct {
	Send                    *MsgSend                    `json:"send,omitempty" validate:"omitempty"`
	Delegate                *MsgDelegate                `json:"delegate,omitempty" validate:"omitempty"`
	Undelegate              *MsgUndelegate              `json:"undelegate,omitempty" validate:"omitempty"`
	BeginRedelegate         *MsgBeginRedelegate         `json:"begin_redelegate,omitempty" validate:"omitempty"`
	WithdrawDelegatorReward *MsgWithdrawDelegatorReward `json:"withdraw_delegator_reward,omitempty" validate:"omitempty"`
	Vote                    *MsgVote                    `json:"vote,omitempty" validate:"omitempty"`
	RawJSON                 *RawJSON                    `json:"raw_json,omitempty" validate:"omitempty"`
	RawProto                *RawProto                   `json:"raw_proto,omitempty" validate:"omitempty"`
}

// Unwrap returns the single message variant that is set.
func (m *Message) Unwrap() (IMessage, error) {
	var set []IMessage
	if m.Send != nil {
		set = append(set, m.Send)
	}
	if m.Delegate != nil {
		set = append(set, m.Delegate)
	}
	if m.Undelegate != nil {
		set = append(set, m.Undelegate)
	}
	if m.BeginRedelegate != nil {
		set = append(set, m.BeginRedelegate)
	}
	if m.WithdrawDelegatorReward != nil {
		set = append(set, m.WithdrawDelegatorReward)
	}
	if m.Vote != nil {
		set = append(set, m.Vote)
	}
	if m.RawJSON != nil {
		set = append(set, m.RawJSON)
	}
	if m.RawProto != nil {
		set = append(set, m.RawProto)
	}
	if len(set) != 1 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "message must set exactly one variant, got %d", len(set))
	}
	return set[0], nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always emits the field, even for an empty sub-message.
func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
