// Package bitcoin implements the Bitcoin family coin entry (Bitcoin, Litecoin) on top of
// the generic utxo engine. It owns spend-condition specific script construction: P2PKH,
// P2WPKH, taproot key path and script path inputs plus the matching outputs.
package bitcoin

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/Layr-Labs/multichain-signer/pkg/utxo"
	"github.com/btcsuite/btcd/txscript"
)

// SigningInput is the request accepted by Sign, PreImageHashes and Compile.
type SigningInput struct {
	Version int32 `json:"version"`
	// PrivateKey signs every input; only Sign uses it
	PrivateKey    []byte             `json:"private_key,omitempty"`
	LockTime      utxo.LockTime      `json:"lock_time"`
	Inputs        []Input            `json:"inputs"`
	Outputs       []Output           `json:"outputs"`
	InputSelector utxo.InputSelector `json:"input_selector"`
	FeePerVb      uint64             `json:"fee_per_vb"`
	// ChangeOutput receives the change unless DisableChangeOutput is set
	ChangeOutput        *Output `json:"change_output,omitempty"`
	DisableChangeOutput bool    `json:"disable_change_output"`
	DustThreshold       uint64  `json:"dust_threshold,omitempty"`
	// FixedSchnorrAuxRand makes taproot signatures deterministic
	FixedSchnorrAuxRand bool `json:"fixed_schnorr_aux_rand"`
}

// Input is a spendable output.
type Input struct {
	// Txid is in internal byte order
	Txid  []byte `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value uint64 `json:"value"`
	// Sequence defaults to 0xffffffff
	Sequence    *uint32              `json:"sequence,omitempty"`
	SighashType txscript.SigHashType `json:"sighash_type"`
	// OnePrevout commits the taproot sighash to this input only (requires ANYONECANPAY)
	OnePrevout bool         `json:"one_prevout"`
	Builder    InputBuilder `json:"builder"`
}

// InputBuilder describes how the input is locked. Exactly one field must be set.
type InputBuilder struct {
	P2PKH          []byte                  `json:"p2pkh,omitempty"`
	P2WPKH         []byte                  `json:"p2wpkh,omitempty"`
	P2TRKeyPath    []byte                  `json:"p2tr_key_path,omitempty"`
	P2TRScriptPath *TaprootScriptPathInput `json:"p2tr_script_path,omitempty"`
	Custom         *CustomInput            `json:"custom,omitempty"`
}

// TaprootScriptPathInput spends a taproot output through a revealed leaf.
type TaprootScriptPathInput struct {
	Payload      []byte `json:"payload"`
	ControlBlock []byte `json:"control_block"`
}

// CustomInput spends an arbitrary script. The claim carries only the signature.
type CustomInput struct {
	ScriptPubkey  []byte             `json:"script_pubkey"`
	SigningMethod utxo.SigningMethod `json:"signing_method"`
}

// Output is a requested payment.
type Output struct {
	Value   uint64        `json:"value"`
	Builder OutputBuilder `json:"builder"`
}

// PubkeyOrHash identifies a key either directly or by its HASH160.
type PubkeyOrHash struct {
	PublicKey  []byte `json:"public_key,omitempty"`
	PubkeyHash []byte `json:"pubkey_hash,omitempty"`
}

// OutputBuilder describes the locking condition of an output. Exactly one field must be set.
type OutputBuilder struct {
	P2PKH          *PubkeyOrHash            `json:"p2pkh,omitempty"`
	P2WPKH         *PubkeyOrHash            `json:"p2wpkh,omitempty"`
	P2TRKeyPath    []byte                   `json:"p2tr_key_path,omitempty"`
	P2TRScriptPath *TaprootScriptPathOutput `json:"p2tr_script_path,omitempty"`
	P2SH           []byte                   `json:"p2sh,omitempty"`
	P2WSH          []byte                   `json:"p2wsh,omitempty"`
	ToAddress      string                   `json:"to_address,omitempty"`
	CustomScript   []byte                   `json:"custom_script,omitempty"`
}

// TaprootScriptPathOutput commits to a single leaf script under the internal key.
type TaprootScriptPathOutput struct {
	InternalKey []byte `json:"internal_key"`
	Payload     []byte `json:"payload"`
}

// TransactionInput mirrors a serialized input.
type TransactionInput struct {
	Txid      []byte   `json:"txid"`
	Vout      uint32   `json:"vout"`
	Sequence  uint32   `json:"sequence"`
	ScriptSig []byte   `json:"script_sig,omitempty"`
	Witness   [][]byte `json:"witness,omitempty"`
}

// TransactionOutput mirrors a serialized output. Taproot script path outputs also carry
// the leaf payload and control block needed to spend them later.
type TransactionOutput struct {
	ScriptPubkey   []byte `json:"script_pubkey"`
	Value          uint64 `json:"value"`
	TaprootPayload []byte `json:"taproot_payload,omitempty"`
	ControlBlock   []byte `json:"control_block,omitempty"`
}

// Transaction mirrors the compiled transaction.
type Transaction struct {
	Version  int32               `json:"version"`
	LockTime uint32              `json:"lock_time"`
	Inputs   []TransactionInput  `json:"inputs"`
	Outputs  []TransactionOutput `json:"outputs"`
}

// SigningOutput is returned by Sign and Compile.
type SigningOutput struct {
	Transaction *Transaction `json:"transaction,omitempty"`
	Encoded     []byte       `json:"encoded,omitempty"`
	// Txid is in display byte order
	Txid   []byte `json:"txid,omitempty"`
	Weight uint64 `json:"weight"`
	Vsize  uint64 `json:"vsize"`
	Fee    uint64 `json:"fee"`
	coinEntry.Status
}

// PreSigningOutput is returned by PreImageHashes.
type PreSigningOutput struct {
	Sighashes      []utxo.Sighash      `json:"sighashes,omitempty"`
	UtxoInputs     []utxo.TxIn         `json:"utxo_inputs,omitempty"`
	UtxoOutputs    []TransactionOutput `json:"utxo_outputs,omitempty"`
	WeightEstimate uint64              `json:"weight_estimate"`
	FeeEstimate    uint64              `json:"fee_estimate"`
	coinEntry.Status
}

// TransactionPlan is returned by Plan.
type TransactionPlan struct {
	Inputs          []utxo.TxIn         `json:"inputs,omitempty"`
	Outputs         []TransactionOutput `json:"outputs,omitempty"`
	AvailableAmount uint64              `json:"available_amount"`
	SendAmount      uint64              `json:"send_amount"`
	Change          uint64              `json:"change"`
	FeeEstimate     uint64              `json:"fee_estimate"`
	WeightEstimate  uint64              `json:"weight_estimate"`
	coinEntry.Status
}
