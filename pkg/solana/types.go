// Package solana implements the Solana coin entry over legacy and V0 versioned messages.
package solana

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

// Encoding selects the text form of serialized transactions and raw messages.
type Encoding string

const (
	EncodingBase58 Encoding = "base58"
	EncodingBase64 Encoding = "base64"
)

// Transfer moves lamports with the system program.
type Transfer struct {
	Recipient string `json:"recipient"`
	Value     uint64 `json:"value"`
	Memo      string `json:"memo,omitempty"`
}

// RawMessage signs a caller supplied serialized message.
type RawMessage struct {
	Message  string   `json:"message"`
	Encoding Encoding `json:"encoding,omitempty"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile. Exactly one
// of Transfer and RawMessage is set.
type SigningInput struct {
	// Sender is required to build a transfer without a private key
	Sender string `json:"sender,omitempty"`
	// RecentBlockhash is base58; it replaces the blockhash of a raw message when set
	RecentBlockhash string      `json:"recent_blockhash,omitempty"`
	Transfer        *Transfer   `json:"transfer,omitempty"`
	RawMessage      *RawMessage `json:"raw_message,omitempty"`
	// TxEncoding is the encoding of SigningOutput.Encoded, base58 by default
	TxEncoding Encoding `json:"tx_encoding,omitempty"`
	PrivateKey []byte   `json:"private_key,omitempty"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	Encoded string `json:"encoded,omitempty"`
	// Signatures are base58, one per required signer
	Signatures []string `json:"signatures,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the message bytes and the accounts that must sign them.
type PreSigningOutput struct {
	Data    []byte   `json:"data,omitempty"`
	Signers []string `json:"signers,omitempty"`
	coinEntry.Status
}
