package solana

import (
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

const (
	PubkeyLen    = 32
	SignatureLen = 64
	HashLen      = 32

	// MessageVersionPrefix marks a versioned message
	MessageVersionPrefix = 0x80
	offChainVersion      = 127
)

// Pubkey is an account address.
type Pubkey [PubkeyLen]byte

// MessageHeader counts the signer and read-only accounts.
type MessageHeader struct {
	NumRequiredSignatures       uint8 `json:"num_required_signatures"`
	NumReadonlySignedAccounts   uint8 `json:"num_readonly_signed_accounts"`
	NumReadonlyUnsignedAccounts uint8 `json:"num_readonly_unsigned_accounts"`
}

// CompiledInstruction references accounts by index into the account keys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// AddressTableLookup loads extra accounts from an address lookup table (V0 only).
type AddressTableLookup struct {
	AccountKey      Pubkey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// MessageVersion is Legacy or V0.
type MessageVersion int

const (
	Legacy MessageVersion = iota
	V0
)

// VersionedMessage is a legacy or V0 message. AddressTableLookups is always empty for
// legacy messages.
type VersionedMessage struct {
	Version             MessageVersion
	Header              MessageHeader
	AccountKeys         []Pubkey
	RecentBlockhash     [HashLen]byte
	Instructions        []CompiledInstruction
	AddressTableLookups []AddressTableLookup
}

func appendBytes(out []byte, b []byte) ([]byte, error) {
	out, err := AppendShortVecLen(out, len(b))
	if err != nil {
		return nil, err
	}
	return append(out, b...), nil
}

// Serialize returns the wire form of the message, which is also the signed payload.
func (m *VersionedMessage) Serialize() ([]byte, error) {
	var out []byte
	switch m.Version {
	case Legacy:
		if len(m.AddressTableLookups) != 0 {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "legacy messages cannot use address lookup tables")
		}
	case V0:
		out = append(out, MessageVersionPrefix)
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorNotSupported, "message version %d", m.Version)
	}
	out = append(out, m.Header.NumRequiredSignatures, m.Header.NumReadonlySignedAccounts, m.Header.NumReadonlyUnsignedAccounts)

	out, err := AppendShortVecLen(out, len(m.AccountKeys))
	if err != nil {
		return nil, err
	}
	for _, k := range m.AccountKeys {
		out = append(out, k[:]...)
	}
	out = append(out, m.RecentBlockhash[:]...)

	if out, err = AppendShortVecLen(out, len(m.Instructions)); err != nil {
		return nil, err
	}
	for _, ix := range m.Instructions {
		out = append(out, ix.ProgramIDIndex)
		if out, err = appendBytes(out, ix.Accounts); err != nil {
			return nil, err
		}
		if out, err = appendBytes(out, ix.Data); err != nil {
			return nil, err
		}
	}

	if m.Version == V0 {
		if out, err = AppendShortVecLen(out, len(m.AddressTableLookups)); err != nil {
			return nil, err
		}
		for _, l := range m.AddressTableLookups {
			out = append(out, l.AccountKey[:]...)
			if out, err = appendBytes(out, l.WritableIndexes); err != nil {
				return nil, err
			}
			if out, err = appendBytes(out, l.ReadonlyIndexes); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// reader walks a serialized message.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, fmt.Errorf("unexpected end of message at offset %d", r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) length() (int, error) {
	n, used, err := DecodeShortVecLen(r.data[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += used
	return n, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *reader) pubkey() (Pubkey, error) {
	var k Pubkey
	b, err := r.next(PubkeyLen)
	copy(k[:], b)
	return k, err
}

// DeserializeMessage parses a legacy or V0 message. Version 127 is the off-chain message
// domain and is refused.
func DeserializeMessage(raw []byte) (*VersionedMessage, error) {
	m, err := deserializeMessage(raw)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid message")
	}
	return m, nil
}

func deserializeMessage(raw []byte) (*VersionedMessage, error) {
	r := &reader{data: raw}
	m := &VersionedMessage{}
	prefix, err := r.u8()
	if err != nil {
		return nil, err
	}
	if prefix&MessageVersionPrefix != 0 {
		switch version := prefix &^ MessageVersionPrefix; version {
		case 0:
			m.Version = V0
		case offChainVersion:
			return nil, fmt.Errorf("off-chain messages are not accepted")
		default:
			return nil, fmt.Errorf("unsupported message version %d", version)
		}
		if prefix, err = r.u8(); err != nil {
			return nil, err
		}
	}
	m.Header.NumRequiredSignatures = prefix
	if m.Header.NumReadonlySignedAccounts, err = r.u8(); err != nil {
		return nil, err
	}
	if m.Header.NumReadonlyUnsignedAccounts, err = r.u8(); err != nil {
		return nil, err
	}

	n, err := r.length()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		k, err := r.pubkey()
		if err != nil {
			return nil, err
		}
		m.AccountKeys = append(m.AccountKeys, k)
	}
	hash, err := r.next(HashLen)
	if err != nil {
		return nil, err
	}
	copy(m.RecentBlockhash[:], hash)

	if n, err = r.length(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var ix CompiledInstruction
		if ix.ProgramIDIndex, err = r.u8(); err != nil {
			return nil, err
		}
		if ix.Accounts, err = r.bytes(); err != nil {
			return nil, err
		}
		if ix.Data, err = r.bytes(); err != nil {
			return nil, err
		}
		m.Instructions = append(m.Instructions, ix)
	}

	if m.Version == V0 {
		if n, err = r.length(); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			var l AddressTableLookup
			if l.AccountKey, err = r.pubkey(); err != nil {
				return nil, err
			}
			if l.WritableIndexes, err = r.bytes(); err != nil {
				return nil, err
			}
			if l.ReadonlyIndexes, err = r.bytes(); err != nil {
				return nil, err
			}
			m.AddressTableLookups = append(m.AddressTableLookups, l)
		}
	}
	if r.pos != len(raw) {
		return nil, fmt.Errorf("%d trailing bytes", len(raw)-r.pos)
	}
	if int(m.Header.NumRequiredSignatures) > len(m.AccountKeys) {
		return nil, fmt.Errorf("%d signers for %d accounts", m.Header.NumRequiredSignatures, len(m.AccountKeys))
	}
	return m, nil
}

// Signers returns the accounts whose signatures the message requires, in order.
func (m *VersionedMessage) Signers() []Pubkey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}
