package polkadot

import (
	"encoding/binary"
	"math/bits"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/hashing"
)

const (
	extrinsicVersion = 4
	signedBit        = 0x80
	ed25519SigType   = 0x00
	// maxPayloadLen is the longest payload signed verbatim; longer payloads are hashed
	maxPayloadLen = 256
)

// EncodeEra returns the immortal era for a nil era and the two-byte mortal era otherwise.
func EncodeEra(era *Era) []byte {
	if era == nil || era.Period == 0 {
		return []byte{0x00}
	}
	period := uint64(1) << bits.Len64(era.Period-1)
	period = min(max(period, 4), 1<<16)
	phase := era.BlockNumber % period
	quantizeFactor := max(period>>12, 1)
	quantizedPhase := phase / quantizeFactor * quantizeFactor
	trailingZeros := uint64(bits.TrailingZeros64(period))
	encoded := min(max(trailingZeros-1, 1), 15) | (quantizedPhase/quantizeFactor)<<4
	return []byte{byte(encoded), byte(encoded >> 8)}
}

// extra is era || compact(nonce) || compact(tip).
func extra(input *SigningInput) []byte {
	out := EncodeEra(input.Era)
	out = append(out, codec.EncodeCompact(input.Nonce)...)
	return append(out, compactValue(input.Tip)...)
}

// signingPayload returns the bytes the signer signs.
func signingPayload(input *SigningInput, call []byte) []byte {
	payload := append(append([]byte(nil), call...), extra(input)...)
	payload = binary.LittleEndian.AppendUint32(payload, input.SpecVersion)
	payload = binary.LittleEndian.AppendUint32(payload, input.TransactionVersion)
	payload = append(payload, input.GenesisHash...)
	payload = append(payload, input.BlockHash...)
	if len(payload) > maxPayloadLen {
		return hashing.Blake2b256(payload)
	}
	return payload
}

// signedExtrinsic is compact(len) || version || signer || signature || extra || call.
func signedExtrinsic(input *SigningInput, call, publicKey, signature []byte) []byte {
	c := &callEncoder{input: input}
	body := []byte{extrinsicVersion | signedBit}
	if c.multiAddress() {
		body = append(body, 0x00)
	}
	body = append(body, publicKey...)
	body = append(body, ed25519SigType)
	body = append(body, signature...)
	body = append(body, extra(input)...)
	body = append(body, call...)
	return append(codec.EncodeCompact(uint64(len(body))), body...)
}
