package coinEntry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Layr-Labs/multichain-signer/pkg/keypair"
)

var (
	// ErrMalformedInput is returned when the serialized request cannot be decoded
	ErrMalformedInput = errors.New("malformed input")
)

// IEntry is the opaque-byte form of ICoinEntry used by the dispatcher. Requests and
// responses are JSON encoded chain messages.
type IEntry interface {
	ParseAddress(ctx *CoinContext, text string, prefix *AddressPrefix) (Address, error)
	ParseAddressUnchecked(ctx *CoinContext, text string) (Address, error)
	DeriveAddress(ctx *CoinContext, publicKey *keypair.PublicKey, derivation Derivation, prefix *AddressPrefix) (Address, error)
	Sign(ctx *CoinContext, input []byte) ([]byte, error)
	PreImageHashes(ctx *CoinContext, input []byte) ([]byte, error)
	Compile(ctx *CoinContext, input []byte, signatures [][]byte, publicKeys [][]byte) ([]byte, error)
	// Unwrap returns the typed entry, for optional capability checks
	Unwrap() any
}

type statusSetter interface {
	SetError(err error)
}

type erasedEntry[I any, O any, P any, PO interface {
	*O
	statusSetter
}, PP interface {
	*P
	statusSetter
}] struct {
	entry ICoinEntry[I, O, P]
}

// Erase adapts a typed entry to the byte boundary. Panics raised by the typed entry are
// converted into ErrorInternal outputs.
func Erase[I any, O any, P any, PO interface {
	*O
	statusSetter
}, PP interface {
	*P
	statusSetter
}](entry ICoinEntry[I, O, P]) IEntry {
	return &erasedEntry[I, O, P, PO, PP]{entry: entry}
}

func (e *erasedEntry[I, O, P, PO, PP]) Unwrap() any {
	return e.entry
}

func (e *erasedEntry[I, O, P, PO, PP]) ParseAddress(ctx *CoinContext, text string, prefix *AddressPrefix) (Address, error) {
	return e.entry.ParseAddress(ctx, text, prefix)
}

func (e *erasedEntry[I, O, P, PO, PP]) ParseAddressUnchecked(ctx *CoinContext, text string) (Address, error) {
	return e.entry.ParseAddressUnchecked(ctx, text)
}

func (e *erasedEntry[I, O, P, PO, PP]) DeriveAddress(ctx *CoinContext, publicKey *keypair.PublicKey, derivation Derivation, prefix *AddressPrefix) (Address, error) {
	return e.entry.DeriveAddress(ctx, publicKey, derivation, prefix)
}

func decodeInput[I any](input []byte) (*I, error) {
	in := new(I)
	if err := json.Unmarshal(input, in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return in, nil
}

func recovered[T any, PT interface {
	*T
	statusSetter
}](r any) *T {
	out := new(T)
	PT(out).SetError(NewError(ErrorInternal, "unexpected failure: %v", r))
	return out
}

func (e *erasedEntry[I, O, P, PO, PP]) Sign(ctx *CoinContext, input []byte) ([]byte, error) {
	in, err := decodeInput[I](input)
	if err != nil {
		return nil, err
	}
	var out *O
	func() {
		defer func() {
			if r := recover(); r != nil {
				out = recovered[O, PO](r)
			}
		}()
		out = e.entry.Sign(ctx, in)
	}()
	return json.Marshal(out)
}

func (e *erasedEntry[I, O, P, PO, PP]) PreImageHashes(ctx *CoinContext, input []byte) ([]byte, error) {
	in, err := decodeInput[I](input)
	if err != nil {
		return nil, err
	}
	var out *P
	func() {
		defer func() {
			if r := recover(); r != nil {
				out = recovered[P, PP](r)
			}
		}()
		out = e.entry.PreImageHashes(ctx, in)
	}()
	return json.Marshal(out)
}

func (e *erasedEntry[I, O, P, PO, PP]) Compile(ctx *CoinContext, input []byte, signatures [][]byte, publicKeys [][]byte) ([]byte, error) {
	in, err := decodeInput[I](input)
	if err != nil {
		return nil, err
	}
	var out *O
	func() {
		defer func() {
			if r := recover(); r != nil {
				out = recovered[O, PO](r)
			}
		}()
		out = e.entry.Compile(ctx, in, signatures, publicKeys)
	}()
	return json.Marshal(out)
}
