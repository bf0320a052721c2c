package cosmos

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// signModeDirect is cosmos.tx.signing.v1beta1.SignMode SIGN_MODE_DIRECT.
const signModeDirect = 1

// unsignedTx is the chain agnostic transaction, already validated.
type unsignedTx struct {
	messages      []IMessage
	memo          string
	timeoutHeight uint64
	publicKey     []byte
	sequence      uint64
	fee           *Fee
	chainID       string
	accountNumber uint64
}

func anyProto(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	return appendBytes(b, 2, value)
}

func (c *Context) publicKeyAny(publicKey []byte) []byte {
	return anyProto(c.PubKeyTypeURL, appendBytes(nil, 1, publicKey))
}

func buildTxBody(tx *unsignedTx) ([]byte, error) {
	var b []byte
	for _, msg := range tx.messages {
		value, err := msg.ProtoValue()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 1, anyProto(msg.TypeURL(), value))
	}
	b = appendString(b, 2, tx.memo)
	return appendVarint(b, 3, tx.timeoutHeight), nil
}

func (c *Context) buildSignerInfo(tx *unsignedTx) []byte {
	single := protowire.AppendTag(nil, 1, protowire.VarintType)
	single = protowire.AppendVarint(single, signModeDirect)
	modeInfo := appendMessage(nil, 1, single)

	var b []byte
	b = appendMessage(b, 1, c.publicKeyAny(tx.publicKey))
	b = appendMessage(b, 2, modeInfo)
	return appendVarint(b, 3, tx.sequence)
}

func buildFee(fee *Fee) []byte {
	var b []byte
	for i := range fee.Amounts {
		b = appendMessage(b, 1, fee.Amounts[i].proto())
	}
	b = appendVarint(b, 2, fee.Gas)
	b = appendString(b, 3, fee.Payer)
	return appendString(b, 4, fee.Granter)
}

// buildAuthInfo encodes a single signer. Tips are not supported.
func (c *Context) buildAuthInfo(tx *unsignedTx) []byte {
	var b []byte
	b = appendMessage(b, 1, c.buildSignerInfo(tx))
	return appendMessage(b, 2, buildFee(tx.fee))
}

// buildSignDoc returns the SignDoc bytes plus the body and auth info it embeds.
func (c *Context) buildSignDoc(tx *unsignedTx) (signDoc, body, authInfo []byte, err error) {
	body, err = buildTxBody(tx)
	if err != nil {
		return nil, nil, nil, err
	}
	authInfo = c.buildAuthInfo(tx)

	signDoc = appendBytes(signDoc, 1, body)
	signDoc = appendBytes(signDoc, 2, authInfo)
	signDoc = appendString(signDoc, 3, tx.chainID)
	signDoc = appendVarint(signDoc, 4, tx.accountNumber)
	return signDoc, body, authInfo, nil
}

func buildTxRaw(body, authInfo, signature []byte) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	return appendMessage(b, 3, signature)
}
