// Package sui implements the Sui coin entry. Transactions are BCS TransactionData values,
// either supplied by the caller (SignDirect) or built here as programmable transactions.
// Signatures commit to blake2b-256 of the intent message.
package sui

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

// ObjectRef points at an owned object version.
type ObjectRef struct {
	ObjectID string `json:"object_id"`
	Version  uint64 `json:"version"`
	// ObjectDigest is base58
	ObjectDigest string `json:"object_digest"`
}

// SignDirect signs caller supplied transaction bytes.
type SignDirect struct {
	// UnsignedTxMsg is base64 BCS TransactionData
	UnsignedTxMsg string `json:"unsigned_tx_msg"`
}

// PaySui splits the gas coin and sends one amount per recipient.
type PaySui struct {
	InputCoins []ObjectRef `json:"input_coins"`
	Recipients []string    `json:"recipients"`
	Amounts    []uint64    `json:"amounts"`
}

// PayAllSui sends the whole gas coin to one recipient.
type PayAllSui struct {
	InputCoins []ObjectRef `json:"input_coins"`
	Recipient  string      `json:"recipient"`
}

// TransferObject moves one owned object, paying gas with a separate coin.
type TransferObject struct {
	Object    ObjectRef `json:"object"`
	Recipient string    `json:"recipient"`
	Gas       ObjectRef `json:"gas"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile. Exactly one
// transaction variant is set.
type SigningInput struct {
	SignDirect        *SignDirect     `json:"sign_direct,omitempty"`
	PaySui            *PaySui         `json:"pay_sui,omitempty"`
	PayAllSui         *PayAllSui      `json:"pay_all_sui,omitempty"`
	TransferObject    *TransferObject `json:"transfer_object,omitempty"`
	Signer            string          `json:"signer,omitempty"`
	GasBudget         uint64          `json:"gas_budget,omitempty"`
	ReferenceGasPrice uint64          `json:"reference_gas_price,omitempty"`
	PrivateKey        []byte          `json:"private_key,omitempty"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	// UnsignedTx is base64 BCS TransactionData
	UnsignedTx string `json:"unsigned_tx,omitempty"`
	// Signature is base64(flag || signature || public key)
	Signature string `json:"signature,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the intent message and the digest to sign.
type PreSigningOutput struct {
	Data     []byte `json:"data,omitempty"`
	DataHash []byte `json:"data_hash,omitempty"`
	coinEntry.Status
}
