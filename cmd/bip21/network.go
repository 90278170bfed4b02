package main

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/bitcointools/bip21"
)

const networkNone = "none"

func netParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "", networkNone:
		return nil, nil
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}

// addressValidator returns a validator checking that addresses decode
// and belong to the network, or nil when no network is selected.
func addressValidator(network string) (bip21.AddressValidator, error) {
	params, err := netParams(network)
	if err != nil || params == nil {
		return nil, err
	}

	return bip21.AddressValidatorFunc(func(_ context.Context, addr string) error {
		a, err := btcutil.DecodeAddress(addr, params)
		if err != nil {
			return fmt.Errorf("decode address %q: %w", addr, err)
		}
		if !a.IsForNet(params) {
			return fmt.Errorf("address %q is not for network %s", addr, params.Name)
		}
		return nil
	}), nil
}
