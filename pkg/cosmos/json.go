package cosmos

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

type aminoFee struct {
	Amount []aminoCoin `json:"amount"`
	Gas    string      `json:"gas"`
}

// aminoSignDoc fields are declared in lexicographic order; Amino sign bytes are
// sorted JSON.
type aminoSignDoc struct {
	AccountNumber string   `json:"account_number"`
	ChainID       string   `json:"chain_id"`
	Fee           aminoFee `json:"fee"`
	Memo          string   `json:"memo"`
	Msgs          []any    `json:"msgs"`
	Sequence      string   `json:"sequence"`
}

type aminoPubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type aminoSignature struct {
	PubKey    aminoPubKey `json:"pub_key"`
	Signature string      `json:"signature"`
}

type aminoTx struct {
	Fee        aminoFee         `json:"fee"`
	Memo       string           `json:"memo"`
	Msg        []any            `json:"msg"`
	Signatures []aminoSignature `json:"signatures"`
}

type aminoBroadcast struct {
	Mode string  `json:"mode"`
	Tx   aminoTx `json:"tx"`
}

type protoBroadcast struct {
	Mode    string `json:"mode"`
	TxBytes string `json:"tx_bytes"`
}

// marshalCompact encodes v without HTML escaping or a trailing newline.
func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", coinEntry.WrapError(coinEntry.ErrorInternal, err, "json serialization failed")
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func aminoMessages(messages []IMessage) ([]any, error) {
	out := make([]any, len(messages))
	for i, msg := range messages {
		v, err := msg.AminoJSON()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func aminoFeeOf(fee *Fee) aminoFee {
	return aminoFee{Amount: aminoCoins(fee.Amounts), Gas: strconv.FormatUint(fee.Gas, 10)}
}

func buildJSONSignDoc(tx *unsignedTx) (string, error) {
	msgs, err := aminoMessages(tx.messages)
	if err != nil {
		return "", err
	}
	return marshalCompact(aminoSignDoc{
		AccountNumber: strconv.FormatUint(tx.accountNumber, 10),
		ChainID:       tx.chainID,
		Fee:           aminoFeeOf(tx.fee),
		Memo:          tx.memo,
		Msgs:          msgs,
		Sequence:      strconv.FormatUint(tx.sequence, 10),
	})
}

func (c *Context) aminoSignature(publicKey, signature []byte) aminoSignature {
	return aminoSignature{
		PubKey:    aminoPubKey{Type: c.PubKeyJSONType, Value: codec.Base64Encode(publicKey, false)},
		Signature: codec.Base64Encode(signature, false),
	}
}

func (c *Context) signatureJSON(publicKey, signature []byte) (string, error) {
	return marshalCompact([]aminoSignature{c.aminoSignature(publicKey, signature)})
}

// buildJSONSigned returns the broadcast envelope and the signatures array.
func (c *Context) buildJSONSigned(tx *unsignedTx, mode BroadcastMode, signature []byte) (string, string, error) {
	msgs, err := aminoMessages(tx.messages)
	if err != nil {
		return "", "", err
	}
	sigs := []aminoSignature{c.aminoSignature(tx.publicKey, signature)}
	envelope, err := marshalCompact(aminoBroadcast{
		Mode: mode.jsonName(),
		Tx: aminoTx{
			Fee:        aminoFeeOf(tx.fee),
			Memo:       tx.memo,
			Msg:        msgs,
			Signatures: sigs,
		},
	})
	if err != nil {
		return "", "", err
	}
	sigJSON, err := c.signatureJSON(tx.publicKey, signature)
	if err != nil {
		return "", "", err
	}
	return envelope, sigJSON, nil
}

func buildProtoBroadcast(mode BroadcastMode, txRaw []byte) (string, error) {
	return marshalCompact(protoBroadcast{Mode: mode.protoName(), TxBytes: codec.Base64Encode(txRaw, false)})
}
