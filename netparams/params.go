// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Params groups the chain parameters of a supported network together with
// the name wallets use to select it.
type Params struct {
	*chaincfg.Params

	// Name is the canonical network name.
	Name string
}

// MainNetParams contains parameters for the main Bitcoin network.
var MainNetParams = Params{
	Params: &chaincfg.MainNetParams,
	Name:   "mainnet",
}

// TestNet3Params contains parameters for the version 3 test network.
var TestNet3Params = Params{
	Params: &chaincfg.TestNet3Params,
	Name:   "testnet",
}

// SigNetParams contains parameters for the default signet.
var SigNetParams = Params{
	Params: &chaincfg.SigNetParams,
	Name:   "signet",
}

// RegressionNetParams contains parameters for the regression test
// network.
var RegressionNetParams = Params{
	Params: &chaincfg.RegressionNetParams,
	Name:   "regtest",
}

// ByName returns the parameters of the network with the given canonical
// name.
func ByName(name string) (Params, error) {
	for _, params := range []Params{
		MainNetParams, TestNet3Params, SigNetParams,
		RegressionNetParams,
	} {
		if params.Name == name {
			return params, nil
		}
	}
	return Params{}, fmt.Errorf("unknown network %q", name)
}
