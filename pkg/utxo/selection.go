package utxo

import (
	"sort"

	"github.com/Layr-Labs/multichain-signer/pkg/coinEntry"
)

func sumInputs(inputs []TxIn) (uint64, error) {
	var total uint64
	for _, in := range inputs {
		if total+in.Value < total {
			return 0, coinEntry.NewError(coinEntry.ErrorInvalidInput, "input amounts overflow")
		}
		total += in.Value
	}
	return total, nil
}

func sumOutputs(outputs []TxOut) (uint64, error) {
	var total uint64
	for _, out := range outputs {
		if total+out.Value < total {
			return 0, coinEntry.NewError(coinEntry.ErrorInvalidInput, "output amounts overflow")
		}
		total += out.Value
	}
	return total, nil
}

// SelectInputs returns the input subset covering target. Selection stops as soon as the
// cumulative value reaches target, except for UseAll which keeps every input.
// The result is deterministic for a given request.
func SelectInputs(inputs []TxIn, target uint64, selector InputSelector) ([]TxIn, error) {
	if len(inputs) == 0 {
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "no inputs")
	}
	ordered := make([]TxIn, len(inputs))
	copy(ordered, inputs)

	switch selector {
	case SelectInOrder, UseAll:
	case SelectAscending:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Value < ordered[j].Value })
	case SelectDescending:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Value > ordered[j].Value })
	default:
		return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "unknown input selector %d", selector)
	}

	if selector == UseAll {
		total, err := sumInputs(ordered)
		if err != nil {
			return nil, err
		}
		if total < target {
			return nil, coinEntry.NewError(coinEntry.ErrorInsufficientFunds, "inputs total %d below required %d", total, target)
		}
		return ordered, nil
	}

	var total uint64
	for i, in := range ordered {
		if total+in.Value < total {
			return nil, coinEntry.NewError(coinEntry.ErrorInvalidInput, "input amounts overflow")
		}
		total += in.Value
		if total >= target {
			return ordered[:i+1], nil
		}
	}
	return nil, coinEntry.NewError(coinEntry.ErrorInsufficientFunds, "inputs total %d below required %d", total, target)
}
