package sui

import (
	"fmt"
	"strings"

	"github.com/Layr-Labs/multichain-signer/pkg/bcs"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

const digestLen = 32

// ArgumentKind selects what a command argument refers to.
type ArgumentKind uint32

const (
	ArgGasCoin ArgumentKind = iota
	ArgInput
	ArgResult
	ArgNestedResult
)

// Argument is a command operand.
type Argument struct {
	Kind   ArgumentKind
	Index  uint16
	Nested uint16
}

func (a Argument) MarshalBCS(e *bcs.Encoder) error {
	e.Variant(uint32(a.Kind))
	switch a.Kind {
	case ArgGasCoin:
	case ArgInput, ArgResult:
		e.U16(a.Index)
	case ArgNestedResult:
		e.U16(a.Index)
		e.U16(a.Nested)
	default:
		return fmt.Errorf("unknown argument kind %d", a.Kind)
	}
	return nil
}

func decodeArgument(d *bcs.Decoder) (Argument, error) {
	kind, err := d.Variant()
	if err != nil {
		return Argument{}, err
	}
	a := Argument{Kind: ArgumentKind(kind)}
	switch a.Kind {
	case ArgGasCoin:
	case ArgInput, ArgResult:
		a.Index, err = d.U16()
	case ArgNestedResult:
		if a.Index, err = d.U16(); err == nil {
			a.Nested, err = d.U16()
		}
	default:
		err = fmt.Errorf("unknown argument kind %d", kind)
	}
	return a, err
}

// ObjectReference is (id, version, digest).
type ObjectReference struct {
	ID      Address
	Version uint64
	Digest  [digestLen]byte
}

func (r ObjectReference) MarshalBCS(e *bcs.Encoder) error {
	e.FixedBytes(r.ID[:])
	e.U64(r.Version)
	return e.WriteBytes(r.Digest[:])
}

func decodeObjectReference(d *bcs.Decoder) (ObjectReference, error) {
	var r ObjectReference
	id, err := d.FixedBytes(addressLen)
	if err != nil {
		return r, err
	}
	copy(r.ID[:], id)
	if r.Version, err = d.U64(); err != nil {
		return r, err
	}
	digest, err := d.Bytes()
	if err != nil {
		return r, err
	}
	if len(digest) != digestLen {
		return r, fmt.Errorf("object digest must be %d bytes", digestLen)
	}
	copy(r.Digest[:], digest)
	return r, nil
}

// ObjectArgKind distinguishes owned, shared and receiving object inputs.
type ObjectArgKind uint32

const (
	ObjectImmOrOwned ObjectArgKind = iota
	ObjectShared
	ObjectReceiving
)

// CallArg is a transaction input: pure BCS bytes or an object.
type CallArg struct {
	Pure       []byte
	ObjectKind ObjectArgKind
	Object     *ObjectReference
	// shared object fields
	InitialSharedVersion uint64
	Mutable              bool
}

func (c CallArg) MarshalBCS(e *bcs.Encoder) error {
	if c.Object == nil {
		e.Variant(0)
		return e.WriteBytes(c.Pure)
	}
	e.Variant(1)
	e.Variant(uint32(c.ObjectKind))
	switch c.ObjectKind {
	case ObjectImmOrOwned, ObjectReceiving:
		return c.Object.MarshalBCS(e)
	case ObjectShared:
		e.FixedBytes(c.Object.ID[:])
		e.U64(c.InitialSharedVersion)
		e.Bool(c.Mutable)
		return nil
	default:
		return fmt.Errorf("unknown object argument kind %d", c.ObjectKind)
	}
}

func decodeCallArg(d *bcs.Decoder) (CallArg, error) {
	kind, err := d.Variant()
	if err != nil {
		return CallArg{}, err
	}
	switch kind {
	case 0:
		pure, err := d.Bytes()
		return CallArg{Pure: pure}, err
	case 1:
	default:
		return CallArg{}, fmt.Errorf("unsupported call argument %d", kind)
	}
	objKind, err := d.Variant()
	if err != nil {
		return CallArg{}, err
	}
	c := CallArg{ObjectKind: ObjectArgKind(objKind)}
	switch c.ObjectKind {
	case ObjectImmOrOwned, ObjectReceiving:
		ref, err := decodeObjectReference(d)
		c.Object = &ref
		return c, err
	case ObjectShared:
		id, err := d.FixedBytes(addressLen)
		if err != nil {
			return c, err
		}
		c.Object = &ObjectReference{}
		copy(c.Object.ID[:], id)
		if c.InitialSharedVersion, err = d.U64(); err != nil {
			return c, err
		}
		c.Mutable, err = d.Bool()
		return c, err
	default:
		return c, fmt.Errorf("unknown object argument kind %d", objKind)
	}
}

// CommandKind enumerates programmable transaction commands.
type CommandKind uint32

const (
	CmdMoveCall CommandKind = iota
	CmdTransferObjects
	CmdSplitCoins
	CmdMergeCoins
	CmdPublish
	CmdMakeMoveVec
	CmdUpgrade
)

// Command is one programmable transaction step. Only the fields of its kind are set.
type Command struct {
	Kind CommandKind
	// MoveCall target "package::module::function"
	Target        string
	TypeArguments []string
	// Arguments of MoveCall, TransferObjects objects, SplitCoins amounts, MergeCoins sources
	// and MakeMoveVec elements
	Arguments []Argument
	// Subject is the TransferObjects recipient, the SplitCoins coin or the MergeCoins target
	Subject Argument
	// Modules and Dependencies are set for Publish and Upgrade
	Modules      [][]byte
	Dependencies []Address
}

func (c Command) MarshalBCS(e *bcs.Encoder) error {
	e.Variant(uint32(c.Kind))
	switch c.Kind {
	case CmdTransferObjects:
		if err := bcs.Sequence(e, c.Arguments); err != nil {
			return err
		}
		return c.Subject.MarshalBCS(e)
	case CmdSplitCoins, CmdMergeCoins:
		if err := c.Subject.MarshalBCS(e); err != nil {
			return err
		}
		return bcs.Sequence(e, c.Arguments)
	default:
		return coinEntry.NewError(coinEntry.ErrorNotSupported, "building command %d", c.Kind)
	}
}

func decodeAddress(d *bcs.Decoder) (Address, error) {
	var a Address
	b, err := d.FixedBytes(addressLen)
	copy(a[:], b)
	return a, err
}

func decodeCommand(d *bcs.Decoder) (Command, error) {
	kind, err := d.Variant()
	if err != nil {
		return Command{}, err
	}
	c := Command{Kind: CommandKind(kind)}
	switch c.Kind {
	case CmdMoveCall:
		pkg, err := decodeAddress(d)
		if err != nil {
			return c, err
		}
		module, err := d.Str()
		if err != nil {
			return c, err
		}
		function, err := d.Str()
		if err != nil {
			return c, err
		}
		c.Target = strings.Join([]string{pkg.String(), module, function}, "::")
		if c.TypeArguments, err = bcs.DecodeSequence(d, decodeTypeTag); err != nil {
			return c, err
		}
		c.Arguments, err = bcs.DecodeSequence(d, decodeArgument)
		return c, err
	case CmdTransferObjects:
		if c.Arguments, err = bcs.DecodeSequence(d, decodeArgument); err != nil {
			return c, err
		}
		c.Subject, err = decodeArgument(d)
		return c, err
	case CmdSplitCoins, CmdMergeCoins:
		if c.Subject, err = decodeArgument(d); err != nil {
			return c, err
		}
		c.Arguments, err = bcs.DecodeSequence(d, decodeArgument)
		return c, err
	case CmdPublish, CmdUpgrade:
		if c.Modules, err = bcs.DecodeSequence(d, (*bcs.Decoder).Bytes); err != nil {
			return c, err
		}
		if c.Dependencies, err = bcs.DecodeSequence(d, decodeAddress); err != nil {
			return c, err
		}
		if c.Kind == CmdUpgrade {
			pkg, err := decodeAddress(d)
			if err != nil {
				return c, err
			}
			c.Target = pkg.String()
			c.Subject, err = decodeArgument(d)
			return c, err
		}
		return c, nil
	case CmdMakeMoveVec:
		some, err := d.Option()
		if err != nil {
			return c, err
		}
		if some {
			tag, err := decodeTypeTag(d)
			if err != nil {
				return c, err
			}
			c.TypeArguments = []string{tag}
		}
		c.Arguments, err = bcs.DecodeSequence(d, decodeArgument)
		return c, err
	default:
		return c, fmt.Errorf("unknown command %d", kind)
	}
}

var primitiveTypeNames = []string{"bool", "u8", "u64", "u128", "address", "signer", "", "", "u16", "u32", "u256"}

// decodeTypeTag renders a Move type tag in its canonical string form.
func decodeTypeTag(d *bcs.Decoder) (string, error) {
	kind, err := d.Variant()
	if err != nil {
		return "", err
	}
	switch {
	case kind == 6:
		inner, err := decodeTypeTag(d)
		return "vector<" + inner + ">", err
	case kind == 7:
		addr, err := decodeAddress(d)
		if err != nil {
			return "", err
		}
		module, err := d.Str()
		if err != nil {
			return "", err
		}
		name, err := d.Str()
		if err != nil {
			return "", err
		}
		params, err := bcs.DecodeSequence(d, decodeTypeTag)
		if err != nil {
			return "", err
		}
		s := addr.String() + "::" + module + "::" + name
		if len(params) > 0 {
			s += "<" + strings.Join(params, ", ") + ">"
		}
		return s, nil
	case int(kind) < len(primitiveTypeNames) && primitiveTypeNames[kind] != "":
		return primitiveTypeNames[kind], nil
	default:
		return "", fmt.Errorf("unknown type tag %d", kind)
	}
}

// GasData pays for the transaction.
type GasData struct {
	Payment []ObjectReference
	Owner   Address
	Price   uint64
	Budget  uint64
}

// TransactionData is the V1 programmable transaction with an optional epoch expiration.
type TransactionData struct {
	Inputs   []CallArg
	Commands []Command
	Sender   Address
	Gas      GasData
	// ExpirationEpoch is nil for transactions that never expire
	ExpirationEpoch *uint64
}

func (t *TransactionData) MarshalBCS(e *bcs.Encoder) error {
	e.Variant(0) // V1
	e.Variant(0) // ProgrammableTransaction
	if err := bcs.Sequence(e, t.Inputs); err != nil {
		return err
	}
	if err := bcs.Sequence(e, t.Commands); err != nil {
		return err
	}
	e.FixedBytes(t.Sender[:])
	if err := bcs.Sequence(e, t.Gas.Payment); err != nil {
		return err
	}
	e.FixedBytes(t.Gas.Owner[:])
	e.U64(t.Gas.Price)
	e.U64(t.Gas.Budget)
	if t.ExpirationEpoch == nil {
		e.Variant(0)
	} else {
		e.Variant(1)
		e.U64(*t.ExpirationEpoch)
	}
	return nil
}

// DecodeTransactionData parses BCS TransactionData. Only user programmable transactions
// are accepted.
func DecodeTransactionData(raw []byte) (*TransactionData, error) {
	t, err := decodeTransactionData(bcs.NewDecoder(raw))
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "invalid transaction data")
	}
	return t, nil
}

func decodeTransactionData(d *bcs.Decoder) (*TransactionData, error) {
	version, err := d.Variant()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported transaction data version %d", version)
	}
	kind, err := d.Variant()
	if err != nil {
		return nil, err
	}
	if kind != 0 {
		return nil, fmt.Errorf("transaction kind %d is not a programmable transaction", kind)
	}
	t := &TransactionData{}
	if t.Inputs, err = bcs.DecodeSequence(d, decodeCallArg); err != nil {
		return nil, err
	}
	if t.Commands, err = bcs.DecodeSequence(d, decodeCommand); err != nil {
		return nil, err
	}
	if t.Sender, err = decodeAddress(d); err != nil {
		return nil, err
	}
	if t.Gas.Payment, err = bcs.DecodeSequence(d, decodeObjectReference); err != nil {
		return nil, err
	}
	if t.Gas.Owner, err = decodeAddress(d); err != nil {
		return nil, err
	}
	if t.Gas.Price, err = d.U64(); err != nil {
		return nil, err
	}
	if t.Gas.Budget, err = d.U64(); err != nil {
		return nil, err
	}
	expiration, err := d.Variant()
	if err != nil {
		return nil, err
	}
	switch expiration {
	case 0:
	case 1:
		epoch, err := d.U64()
		if err != nil {
			return nil, err
		}
		t.ExpirationEpoch = &epoch
	default:
		return nil, fmt.Errorf("unknown expiration %d", expiration)
	}
	return t, d.Finish()
}
