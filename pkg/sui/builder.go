package sui

import (
	"bytes"
	"sort"

	"github.com/Layr-Labs/multichain-signer/pkg/bcs"
	"github.com/Layr-Labs/multichain-signer/pkg/codec"
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

// ptbBuilder collects inputs and commands. Identical pure inputs share one slot.
type ptbBuilder struct {
	inputs   []CallArg
	commands []Command
}

func (b *ptbBuilder) pure(value []byte) Argument {
	for i, in := range b.inputs {
		if in.Object == nil && bytes.Equal(in.Pure, value) {
			return Argument{Kind: ArgInput, Index: uint16(i)}
		}
	}
	b.inputs = append(b.inputs, CallArg{Pure: value})
	return Argument{Kind: ArgInput, Index: uint16(len(b.inputs) - 1)}
}

func (b *ptbBuilder) object(ref ObjectReference) Argument {
	b.inputs = append(b.inputs, CallArg{ObjectKind: ObjectImmOrOwned, Object: &ref})
	return Argument{Kind: ArgInput, Index: uint16(len(b.inputs) - 1)}
}

func (b *ptbBuilder) command(c Command) Argument {
	b.commands = append(b.commands, c)
	return Argument{Kind: ArgResult, Index: uint16(len(b.commands) - 1)}
}

// paySui splits the gas coin once and transfers the pieces, one transfer per distinct
// recipient in address order.
func (b *ptbBuilder) paySui(recipients []Address, amounts []uint64) error {
	if len(recipients) == 0 || len(recipients) != len(amounts) {
		return coinEntry.NewError(coinEntry.ErrorInvalidInput, "%d recipients for %d amounts", len(recipients), len(amounts))
	}
	byRecipient := make(map[Address][]uint16)
	amountArgs := make([]Argument, 0, len(amounts))
	for i, r := range recipients {
		byRecipient[r] = append(byRecipient[r], uint16(i))
		amountArgs = append(amountArgs, b.pure(bcs.U64Bytes(amounts[i])))
	}
	split := b.command(Command{Kind: CmdSplitCoins, Subject: Argument{Kind: ArgGasCoin}, Arguments: amountArgs})

	ordered := make([]Address, 0, len(byRecipient))
	for r := range byRecipient {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return bytes.Compare(ordered[i][:], ordered[j][:]) < 0 })
	for _, r := range ordered {
		r := r // per-iteration copy: Bytes() aliases the receiver
		recipient := b.pure(r.Bytes())
		coins := make([]Argument, 0, len(byRecipient[r]))
		for _, j := range byRecipient[r] {
			coins = append(coins, Argument{Kind: ArgNestedResult, Index: split.Index, Nested: j})
		}
		b.command(Command{Kind: CmdTransferObjects, Arguments: coins, Subject: recipient})
	}
	return nil
}

func (b *ptbBuilder) payAllSui(recipient Address) {
	to := b.pure(recipient.Bytes())
	b.command(Command{Kind: CmdTransferObjects, Arguments: []Argument{{Kind: ArgGasCoin}}, Subject: to})
}

func (b *ptbBuilder) transferObject(object ObjectReference, recipient Address) {
	to := b.pure(recipient.Bytes())
	obj := b.object(object)
	b.command(Command{Kind: CmdTransferObjects, Arguments: []Argument{obj}, Subject: to})
}

func parseObjectRef(ref ObjectRef) (ObjectReference, error) {
	id, err := ParseAddress(ref.ObjectID)
	if err != nil {
		return ObjectReference{}, err
	}
	digest, err := codec.Base58Decode(ref.ObjectDigest, nil)
	if err != nil || len(digest) != digestLen {
		return ObjectReference{}, coinEntry.NewError(coinEntry.ErrorInvalidInput, "object digest %q is not a 32-byte base58 value", ref.ObjectDigest)
	}
	out := ObjectReference{ID: *id, Version: ref.Version}
	copy(out.Digest[:], digest)
	return out, nil
}

func parseObjectRefs(refs []ObjectRef) ([]ObjectReference, error) {
	out := make([]ObjectReference, 0, len(refs))
	for _, r := range refs {
		ref, err := parseObjectRef(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// buildTransaction returns the transaction bytes of the request.
func buildTransaction(input *SigningInput) ([]byte, *TransactionData, error) {
	set := 0
	for _, present := range []bool{input.SignDirect != nil, input.PaySui != nil, input.PayAllSui != nil, input.TransferObject != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "exactly one transaction variant must be set, got %d", set)
	}

	if input.SignDirect != nil {
		raw, err := codec.Base64Decode(input.SignDirect.UnsignedTxMsg, false)
		if err != nil {
			return nil, nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "unsigned transaction is not base64")
		}
		tx, err := DecodeTransactionData(raw)
		if err != nil {
			return nil, nil, err
		}
		return raw, tx, nil
	}

	sender, err := ParseAddress(input.Signer)
	if err != nil {
		return nil, nil, err
	}
	b := &ptbBuilder{}
	var payment []ObjectReference
	switch {
	case input.PaySui != nil:
		if payment, err = parseObjectRefs(input.PaySui.InputCoins); err != nil {
			return nil, nil, err
		}
		recipients := make([]Address, 0, len(input.PaySui.Recipients))
		for _, r := range input.PaySui.Recipients {
			addr, err := ParseAddress(r)
			if err != nil {
				return nil, nil, err
			}
			recipients = append(recipients, *addr)
		}
		if err := b.paySui(recipients, input.PaySui.Amounts); err != nil {
			return nil, nil, err
		}
	case input.PayAllSui != nil:
		if payment, err = parseObjectRefs(input.PayAllSui.InputCoins); err != nil {
			return nil, nil, err
		}
		to, err := ParseAddress(input.PayAllSui.Recipient)
		if err != nil {
			return nil, nil, err
		}
		b.payAllSui(*to)
	default:
		object, err := parseObjectRef(input.TransferObject.Object)
		if err != nil {
			return nil, nil, err
		}
		gas, err := parseObjectRef(input.TransferObject.Gas)
		if err != nil {
			return nil, nil, err
		}
		to, err := ParseAddress(input.TransferObject.Recipient)
		if err != nil {
			return nil, nil, err
		}
		payment = []ObjectReference{gas}
		b.transferObject(object, *to)
	}
	if len(payment) == 0 {
		return nil, nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "at least one gas coin is required")
	}

	tx := &TransactionData{
		Inputs:   b.inputs,
		Commands: b.commands,
		Sender:   *sender,
		Gas: GasData{
			Payment: payment,
			Owner:   *sender,
			Price:   input.ReferenceGasPrice,
			Budget:  input.GasBudget,
		},
	}
	raw, err := bcs.Marshal(tx)
	if err != nil {
		return nil, nil, coinEntry.WrapError(coinEntry.ErrorInvalidInput, err, "failed to encode transaction")
	}
	return raw, tx, nil
}
