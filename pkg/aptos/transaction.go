package aptos

import (
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/bcs"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

const (
	payloadEntryFunction  = 2
	authenticatorEd25519  = 0
	typeTagVector         = 6
	typeTagStruct         = 7
	rawTransactionSaltTag = "APTOS::RawTransaction"
)

var primitiveTypeTags = map[string]uint32{
	"bool":    0,
	"u8":      1,
	"u64":     2,
	"u128":    3,
	"address": 4,
	"signer":  5,
	"u16":     8,
	"u32":     9,
	"u256":    10,
}

// TypeTag is a Move type argument.
type TypeTag struct {
	primitive *uint32
	vector    *TypeTag
	strct     *StructTag
}

// StructTag names a Move struct type.
type StructTag struct {
	Address  Address
	Module   string
	Name     string
	TypeArgs []TypeTag
}

func (t TypeTag) MarshalBCS(e *bcs.Encoder) error {
	switch {
	case t.primitive != nil:
		e.Variant(*t.primitive)
		return nil
	case t.vector != nil:
		e.Variant(typeTagVector)
		return t.vector.MarshalBCS(e)
	default:
		e.Variant(typeTagStruct)
		return t.strct.MarshalBCS(e)
	}
}

func (s *StructTag) MarshalBCS(e *bcs.Encoder) error {
	e.FixedBytes(s.Address[:])
	if err := e.Str(s.Module); err != nil {
		return err
	}
	if err := e.Str(s.Name); err != nil {
		return err
	}
	return bcs.Sequence(e, s.TypeArgs)
}

// ParseTypeTag parses "u64", "vector<u8>" or "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>".
func ParseTypeTag(s string) (TypeTag, error) {
	tag, rest, err := parseTypeTag(strings.TrimSpace(s))
	if err != nil {
		return TypeTag{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return TypeTag{}, coinEntry.NewError(coinEntry.ErrorInvalidInput, "trailing input in type tag %q", s)
	}
	return tag, nil
}

func parseTypeTag(s string) (TypeTag, string, error) {
	end := strings.IndexAny(s, "<>,")
	if end < 0 {
		end = len(s)
	}
	head := strings.TrimSpace(s[:end])
	rest := s[end:]

	if v, ok := primitiveTypeTags[head]; ok {
		return TypeTag{primitive: &v}, rest, nil
	}
	if head == "vector" {
		if !strings.HasPrefix(rest, "<") {
			return TypeTag{}, "", coinEntry.NewError(coinEntry.ErrorInvalidInput, "vector without element type")
		}
		elem, after, err := parseTypeTag(strings.TrimSpace(rest[1:]))
		if err != nil {
			return TypeTag{}, "", err
		}
		if !strings.HasPrefix(after, ">") {
			return TypeTag{}, "", coinEntry.NewError(coinEntry.ErrorInvalidInput, "unterminated vector type")
		}
		return TypeTag{vector: &elem}, after[1:], nil
	}

	parts := strings.Split(head, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return TypeTag{}, "", coinEntry.NewError(coinEntry.ErrorInvalidInput, "invalid struct tag %q", head)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return TypeTag{}, "", err
	}
	st := &StructTag{Address: *addr, Module: parts[1], Name: parts[2]}
	if strings.HasPrefix(rest, "<") {
		rest = rest[1:]
		for {
			arg, after, err := parseTypeTag(strings.TrimSpace(rest))
			if err != nil {
				return TypeTag{}, "", err
			}
			st.TypeArgs = append(st.TypeArgs, arg)
			after = strings.TrimSpace(after)
			if strings.HasPrefix(after, ",") {
				rest = after[1:]
				continue
			}
			if !strings.HasPrefix(after, ">") {
				return TypeTag{}, "", coinEntry.NewError(coinEntry.ErrorInvalidInput, "unterminated type arguments in %q", s)
			}
			rest = after[1:]
			break
		}
	}
	return TypeTag{strct: st}, rest, nil
}

// EntryFunction is the payload of a script-less transaction.
type EntryFunction struct {
	ModuleAddress Address
	ModuleName    string
	Function      string
	TypeArgs      []TypeTag
	Args          [][]byte
}

func (f *EntryFunction) MarshalBCS(e *bcs.Encoder) error {
	e.Variant(payloadEntryFunction)
	e.FixedBytes(f.ModuleAddress[:])
	if err := e.Str(f.ModuleName); err != nil {
		return err
	}
	if err := e.Str(f.Function); err != nil {
		return err
	}
	if err := bcs.Sequence(e, f.TypeArgs); err != nil {
		return err
	}
	if err := e.Length(len(f.Args)); err != nil {
		return err
	}
	for _, arg := range f.Args {
		if err := e.WriteBytes(arg); err != nil {
			return err
		}
	}
	return nil
}

// parseFunctionID splits "address::module::function".
func parseFunctionID(id string) (*EntryFunction, error) {
	parts := strings.Split(id, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "invalid function id %q", id)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return nil, err
	}
	return &EntryFunction{ModuleAddress: *addr, ModuleName: parts[1], Function: parts[2]}, nil
}

// RawTransaction is the unsigned transaction.
type RawTransaction struct {
	Sender                  Address
	SequenceNumber          uint64
	Payload                 *EntryFunction
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

func (t *RawTransaction) MarshalBCS(e *bcs.Encoder) error {
	e.FixedBytes(t.Sender[:])
	e.U64(t.SequenceNumber)
	if err := t.Payload.MarshalBCS(e); err != nil {
		return err
	}
	e.U64(t.MaxGasAmount)
	e.U64(t.GasUnitPrice)
	e.U64(t.ExpirationTimestampSecs)
	e.U8(t.ChainID)
	return nil
}

func (a *Authenticator) MarshalBCS(e *bcs.Encoder) error {
	e.Variant(authenticatorEd25519)
	if err := e.WriteBytes(a.PublicKey); err != nil {
		return err
	}
	return e.WriteBytes(a.Signature)
}
