package cosmos

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

// SigningMode selects the document the signer commits to.
type SigningMode int

const (
	// Protobuf is SIGN_MODE_DIRECT over a SignDoc
	Protobuf SigningMode = iota
	// JSON is the legacy Amino JSON sign document
	JSON
)

// BroadcastMode is echoed into the broadcast envelope.
type BroadcastMode int

const (
	BroadcastBlock BroadcastMode = iota
	BroadcastSync
	BroadcastAsync
)

func (m BroadcastMode) jsonName() string {
	switch m {
	case BroadcastSync:
		return "sync"
	case BroadcastAsync:
		return "async"
	default:
		return "block"
	}
}

func (m BroadcastMode) protoName() string {
	switch m {
	case BroadcastSync:
		return "BROADCAST_MODE_SYNC"
	case BroadcastAsync:
		return "BROADCAST_MODE_ASYNC"
	default:
		return "BROADCAST_MODE_BLOCK"
	}
}

// Fee is the transaction fee. Payer and granter are optional addresses.
type Fee struct {
	Amounts []Coin `json:"amounts" validate:"dive"`
	Gas     uint64 `json:"gas"`
	Payer   string `json:"payer,omitempty"`
	Granter string `json:"granter,omitempty"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile.
type SigningInput struct {
	SigningMode   SigningMode   `json:"signing_mode" validate:"min=0,max=1"`
	AccountNumber uint64        `json:"account_number"`
	ChainID       string        `json:"chain_id" validate:"required"`
	Fee           Fee           `json:"fee"`
	Memo          string        `json:"memo,omitempty"`
	Sequence      uint64        `json:"sequence"`
	TimeoutHeight uint64        `json:"timeout_height,omitempty"`
	Messages      []Message     `json:"messages" validate:"required,min=1,dive"`
	Mode          BroadcastMode `json:"mode" validate:"min=0,max=2"`
	// PublicKey is required by PreImageHashes and Compile; Sign derives it
	PublicKey []byte `json:"public_key,omitempty"`
	// PrivateKey is only read by Sign and scrubbed before it returns
	PrivateKey []byte `json:"private_key,omitempty"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	// Signature is the 64-byte r || s signature
	Signature []byte `json:"signature,omitempty"`
	// Serialized is the protobuf broadcast envelope {"mode", "tx_bytes"}
	Serialized string `json:"serialized,omitempty"`
	// JSON is the Amino broadcast envelope {"mode", "tx"}
	JSON string `json:"json,omitempty"`
	// SignatureJSON is the signatures array of the Amino transaction
	SignatureJSON string `json:"signature_json,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the preimage and its digest.
type PreSigningOutput struct {
	// Data is the serialized SignDoc or the Amino JSON document
	Data     []byte `json:"data,omitempty"`
	DataHash []byte `json:"data_hash,omitempty"`
	coinEntry.Status
}
