// Package ethereum implements the Ethereum coin entry on go-ethereum transaction types:
// legacy (EIP-155), access list (EIP-2930) and dynamic fee (EIP-1559) transactions,
// plus EIP-191 personal message signing.
package ethereum

import (
	"math/big"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxMode is the transaction envelope.
type TxMode int

const (
	Legacy TxMode = iota
	AccessList
	Enveloped
)

// Erc20Transfer builds the call data of transfer(address,uint256).
type Erc20Transfer struct {
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

// SigningInput is the request accepted by Sign, PreImageHashes and Compile.
type SigningInput struct {
	ChainID  *big.Int `json:"chain_id"`
	Nonce    uint64   `json:"nonce"`
	TxMode   TxMode   `json:"tx_mode"`
	GasLimit uint64   `json:"gas_limit"`
	// GasPrice applies to Legacy and AccessList transactions
	GasPrice *big.Int `json:"gas_price,omitempty"`
	// MaxInclusionFeePerGas and MaxFeePerGas apply to Enveloped transactions
	MaxInclusionFeePerGas *big.Int `json:"max_inclusion_fee_per_gas,omitempty"`
	MaxFeePerGas          *big.Int `json:"max_fee_per_gas,omitempty"`
	// ToAddress is the recipient or token contract; empty deploys a contract
	ToAddress  string           `json:"to_address,omitempty"`
	Amount     *big.Int         `json:"amount,omitempty"`
	Data       []byte           `json:"data,omitempty"`
	Erc20      *Erc20Transfer   `json:"erc20_transfer,omitempty"`
	AccessList types.AccessList `json:"access_list,omitempty"`
	PrivateKey []byte           `json:"private_key,omitempty"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	Encoded []byte `json:"encoded,omitempty"`
	V       []byte `json:"v,omitempty"`
	R       []byte `json:"r,omitempty"`
	S       []byte `json:"s,omitempty"`
	// Data is the call data of the transaction
	Data   []byte `json:"data,omitempty"`
	TxHash []byte `json:"tx_hash,omitempty"`
	coinEntry.Status
}

// PreSigningOutput carries the signing hash.
type PreSigningOutput struct {
	DataHash []byte `json:"data_hash,omitempty"`
	Data     []byte `json:"data,omitempty"`
	coinEntry.Status
}
