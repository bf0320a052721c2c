// Package utxo implements the chain agnostic part of UTXO transaction signing:
// input selection, fee projection, sighash computation and final serialization.
// Spend-condition specific script and witness construction is left to the caller.
package utxo

import (
	"github.com/btcsuite/btcd/txscript"
)

// SigningMethod selects the sighash algorithm of an input.
type SigningMethod int

const (
	Legacy SigningMethod = iota
	Segwit
	TaprootAll
	TaprootOnePrevout
)

// IsTaproot reports whether the method is one of the BIP341 variants.
func (m SigningMethod) IsTaproot() bool {
	return m == TaprootAll || m == TaprootOnePrevout
}

func (m SigningMethod) String() string {
	switch m {
	case Legacy:
		return "legacy"
	case Segwit:
		return "segwit"
	case TaprootAll:
		return "taproot_all"
	case TaprootOnePrevout:
		return "taproot_one_prevout"
	default:
		return "unknown"
	}
}

// InputSelector is the coin selection strategy.
type InputSelector int

const (
	// SelectInOrder greedily consumes inputs in the order given
	SelectInOrder InputSelector = iota
	SelectAscending
	SelectDescending
	UseAll
)

const (
	// LockTimeThreshold separates block heights from unix timestamps
	LockTimeThreshold = 500_000_000
	// DefaultDustThreshold is the minimum change value worth creating an output for
	DefaultDustThreshold = 546
	// DefaultSequence disables relative lock time and replace-by-fee
	DefaultSequence = 0xffffffff
)

// LockTime is either a block height or a unix timestamp. Both zero means no lock time.
type LockTime struct {
	Blocks  uint32 `json:"blocks,omitempty"`
	Seconds uint32 `json:"seconds,omitempty"`
}

// TapLeaf is the revealed script of a taproot script path spend.
type TapLeaf struct {
	Script  []byte                        `json:"script"`
	Version txscript.TapscriptLeafVersion `json:"version"`
}

// LeafVersion returns the leaf version, defaulting to the base tapscript version.
func (l *TapLeaf) LeafVersion() txscript.TapscriptLeafVersion {
	if l.Version == 0 {
		return txscript.BaseLeafVersion
	}
	return l.Version
}

// TxIn is an input candidate.
type TxIn struct {
	// Txid is the previous transaction id in internal byte order
	Txid          []byte               `json:"txid"`
	Vout          uint32               `json:"vout"`
	Value         uint64               `json:"value"`
	Sequence      uint32               `json:"sequence"`
	ScriptPubkey  []byte               `json:"script_pubkey"`
	SigningMethod SigningMethod        `json:"signing_method"`
	SighashType   txscript.SigHashType `json:"sighash_type"`
	// TapLeaf is set for taproot script path spends
	TapLeaf *TapLeaf `json:"tap_leaf,omitempty"`
	// Placeholder claim used for weight projection before signatures exist
	PlaceholderScriptSig []byte   `json:"placeholder_script_sig,omitempty"`
	PlaceholderWitness   [][]byte `json:"placeholder_witness,omitempty"`
}

// TxOut is a transaction output.
type TxOut struct {
	Value        uint64 `json:"value"`
	ScriptPubkey []byte `json:"script_pubkey"`
}

// Request describes one signing attempt.
type Request struct {
	Version  int32    `json:"version"`
	LockTime LockTime `json:"lock_time"`
	Inputs   []TxIn   `json:"inputs"`
	Outputs  []TxOut  `json:"outputs"`
	// InputSelector picks the input subset; SelectInOrder by default
	InputSelector InputSelector `json:"input_selector"`
	// FeePerVb is the fee rate in satoshis per virtual byte
	FeePerVb uint64 `json:"fee_per_vb"`
	// ChangeScriptPubkey receives the change; nil disables the change output
	ChangeScriptPubkey []byte `json:"change_script_pubkey,omitempty"`
	// DustThreshold overrides DefaultDustThreshold when non-zero
	DustThreshold uint64 `json:"dust_threshold,omitempty"`
}

// Sighash is a digest to be signed for one selected input.
type Sighash struct {
	Sighash       []byte               `json:"sighash"`
	SigningMethod SigningMethod        `json:"signing_method"`
	SighashType   txscript.SigHashType `json:"sighash_type"`
	// LeafHash is set for taproot script path spends
	LeafHash []byte `json:"leaf_hash,omitempty"`
}

// Plan is the outcome of the Select and Hash stages.
type Plan struct {
	Sighashes []Sighash `json:"sighashes"`
	// Inputs is the selected input subset, in signing order
	Inputs []TxIn `json:"inputs"`
	// Outputs includes the change output when one was created
	Outputs        []TxOut `json:"outputs"`
	WeightEstimate uint64  `json:"weight_estimate"`
	FeeEstimate    uint64  `json:"fee_estimate"`
	// ChangeIndex is the index of the change output or -1
	ChangeIndex int `json:"change_index"`
}

// Claim unlocks one input.
type Claim struct {
	ScriptSig []byte   `json:"script_sig,omitempty"`
	Witness   [][]byte `json:"witness,omitempty"`
}

// Transaction is the compiled result.
type Transaction struct {
	Encoded []byte `json:"encoded"`
	// Txid is in display (reversed) byte order
	Txid   []byte `json:"txid"`
	Weight uint64 `json:"weight"`
	Vsize  uint64 `json:"vsize"`
	Fee    uint64 `json:"fee"`
}
