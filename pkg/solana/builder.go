package solana

import (
	"encoding/binary"

	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

const systemTransferInstruction = 2

var (
	// SystemProgramID is the all-zero key
	SystemProgramID = Pubkey{}
	MemoProgramID   = mustPubkey("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

func mustPubkey(text string) Pubkey {
	k, err := ParsePubkey(text)
	if err != nil {
		panic(err)
	}
	return k
}

// ParsePubkey decodes a base58 account key.
func ParsePubkey(text string) (Pubkey, error) {
	raw, err := codec.Base58Decode(text, nil)
	if err != nil {
		return Pubkey{}, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	if len(raw) != PubkeyLen {
		return Pubkey{}, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%q is not a 32-byte key", text)
	}
	var k Pubkey
	copy(k[:], raw)
	return k, nil
}

func (k Pubkey) String() string {
	return codec.Base58Encode(k[:], nil)
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is an uncompiled instruction.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// SystemTransfer returns a system program transfer of lamports.
func SystemTransfer(from, to Pubkey, lamports uint64) Instruction {
	data := binary.LittleEndian.AppendUint32(nil, systemTransferInstruction)
	data = binary.LittleEndian.AppendUint64(data, lamports)
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

// Memo returns a memo program instruction without signer accounts.
func Memo(text string) Instruction {
	return Instruction{ProgramID: MemoProgramID, Data: []byte(text)}
}

// CompileLegacyMessage orders accounts as writable signers, read-only signers, writable
// non-signers and read-only non-signers, each by first appearance with the fee payer first.
func CompileLegacyMessage(payer Pubkey, instructions []Instruction, blockhash [HashLen]byte) (*VersionedMessage, error) {
	type meta struct {
		signer, writable bool
	}
	order := []Pubkey{payer}
	metas := map[Pubkey]*meta{payer: {signer: true, writable: true}}
	touch := func(k Pubkey, signer, writable bool) {
		m, ok := metas[k]
		if !ok {
			m = &meta{}
			metas[k] = m
			order = append(order, k)
		}
		m.signer = m.signer || signer
		m.writable = m.writable || writable
	}
	for _, ix := range instructions {
		for _, a := range ix.Accounts {
			touch(a.Pubkey, a.IsSigner, a.IsWritable)
		}
		touch(ix.ProgramID, false, false)
	}

	var keys []Pubkey
	var header MessageHeader
	for _, class := range []meta{{true, true}, {true, false}, {false, true}, {false, false}} {
		for _, k := range order {
			if *metas[k] != class {
				continue
			}
			keys = append(keys, k)
			switch class {
			case meta{true, true}:
				header.NumRequiredSignatures++
			case meta{true, false}:
				header.NumRequiredSignatures++
				header.NumReadonlySignedAccounts++
			case meta{false, false}:
				header.NumReadonlyUnsignedAccounts++
			}
		}
	}
	if len(keys) > 0xff {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "too many accounts: %d", len(keys))
	}
	index := make(map[Pubkey]uint8, len(keys))
	for i, k := range keys {
		index[k] = uint8(i)
	}

	msg := &VersionedMessage{Version: Legacy, Header: header, AccountKeys: keys, RecentBlockhash: blockhash}
	for _, ix := range instructions {
		compiled := CompiledInstruction{ProgramIDIndex: index[ix.ProgramID], Data: ix.Data, Accounts: []uint8{}}
		for _, a := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, index[a.Pubkey])
		}
		msg.Instructions = append(msg.Instructions, compiled)
	}
	return msg, nil
}
