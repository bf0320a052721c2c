package cosmos

import (
	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Address is a bech32 account or validator address.
type Address struct {
	hrp  string
	data []byte
}

func (a *Address) String() string {
	conv, err := bech32.ConvertBits(a.data, 8, 5, true)
	if err != nil {
		return ""
	}
	s, err := bech32.Encode(a.hrp, conv)
	if err != nil {
		return ""
	}
	return s
}

func (a *Address) Bytes() []byte {
	return a.data
}

// HRP returns the human readable part.
func (a *Address) HRP() string {
	return a.hrp
}

// NewAddress builds an address from raw account bytes.
func NewAddress(hrp string, data []byte) (*Address, error) {
	if hrp == "" || (len(data) != 20 && len(data) != 32) {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "invalid address payload of %d bytes", len(data))
	}
	return &Address{hrp: hrp, data: data}, nil
}

// ParseAddress decodes text and, if hrp is non-empty, checks its prefix. Validator
// operator addresses use the "valoper" suffix of the account prefix.
func ParseAddress(text string, hrp string) (*Address, error) {
	gotHRP, data, err := bech32.Decode(text)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	if hrp != "" && gotHRP != hrp && gotHRP != hrp+"valoper" {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidAddress, "%s: expected prefix %q, got %q", text, hrp, gotHRP)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, coinEntry.WrapError(coinEntry.ErrorInvalidAddress, err, text)
	}
	return NewAddress(gotHRP, raw)
}
