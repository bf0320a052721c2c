// Package aptos implements the Aptos coin entry: BCS encoded RawTransaction with entry
// function payloads, signed with Ed25519 under the "APTOS::RawTransaction" domain.
package aptos

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

// TransferMessage moves APT through 0x1::aptos_account::transfer.
type TransferMessage struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// TokenTransferMessage moves a coin type through 0x1::coin::transfer<T>.
type TokenTransferMessage struct {
	To       string `json:"to"`
	Amount   uint64 `json:"amount"`
	Function string `json:"function"`
}

// CreateAccountMessage calls 0x1::aptos_account::create_account.
type CreateAccountMessage struct {
	AuthKey string `json:"auth_key"`
}

// EntryFunctionMessage is an arbitrary entry function call with pre-encoded BCS arguments.
type EntryFunctionMessage struct {
	// Function is "address::module::name"
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments,omitempty"`
	Arguments     [][]byte `json:"arguments,omitempty"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile.
type SigningInput struct {
	Sender                  string                `json:"sender"`
	SequenceNumber          uint64                `json:"sequence_number"`
	MaxGasAmount            uint64                `json:"max_gas_amount"`
	GasUnitPrice            uint64                `json:"gas_unit_price"`
	ExpirationTimestampSecs uint64                `json:"expiration_timestamp_secs"`
	ChainID                 uint8                 `json:"chain_id"`
	Transfer                *TransferMessage      `json:"transfer,omitempty"`
	TokenTransfer           *TokenTransferMessage `json:"token_transfer,omitempty"`
	CreateAccount           *CreateAccountMessage `json:"create_account,omitempty"`
	EntryFunction           *EntryFunctionMessage `json:"entry_function,omitempty"`
	PrivateKey              []byte                `json:"private_key,omitempty"`
}

// Authenticator is the Ed25519 transaction authenticator.
type Authenticator struct {
	PublicKey []byte `json:"public_key"`
	Signature []byte `json:"signature"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	RawTxn        []byte         `json:"raw_txn,omitempty"`
	Authenticator *Authenticator `json:"authenticator,omitempty"`
	// Encoded is the BCS SignedTransaction
	Encoded []byte `json:"encoded,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the domain separated signing message.
type PreSigningOutput struct {
	Data []byte `json:"data,omitempty"`
	coinEntry.Status
}
