// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pkscript converts between output scripts and network-qualified
// address strings.  The network is always passed explicitly by the caller
// and never inferred from the script or address data.
package pkscript

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrNonStandardScript is returned when an output script does not
	// correspond to a standard address form for the configured network.
	ErrNonStandardScript = errors.New(
		"script is not a standard address form",
	)

	// ErrMismatchedNetwork is returned when an address string is valid
	// but encoded for a different network than the one configured.
	ErrMismatchedNetwork = errors.New(
		"address is not valid for the configured network",
	)
)

// Address extracts the address paid to by the given output script.  For the
// rare standard scripts that encode more than one address (bare multisig),
// the first address is used.  Scripts that have no standard address form
// fail with ErrNonStandardScript; callers tracking such outputs must retain
// them with an unresolved-address marker instead of dropping them.
func Address(pkScript []byte,
	chainParams *chaincfg.Params) (btcutil.Address, error) {

	class, addrs, _, err := txscript.ExtractPkScriptAddrs(
		pkScript, chainParams,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNonStandardScript, err)
	}

	if class == txscript.NonStandardTy || len(addrs) == 0 {
		return nil, ErrNonStandardScript
	}

	return addrs[0], nil
}

// AddressString extracts the address paid to by the given output script and
// renders it as a network-qualified string.
func AddressString(pkScript []byte,
	chainParams *chaincfg.Params) (string, error) {

	addr, err := Address(pkScript, chainParams)
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}

// Script returns the output script paying to the given address string.  The
// address must be valid for the configured network.
func Script(addr string, chainParams *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, chainParams)
	if err != nil {
		return nil, fmt.Errorf("failed to decode address %q: %w",
			addr, err)
	}

	if !decoded.IsForNet(chainParams) {
		return nil, ErrMismatchedNetwork
	}

	return txscript.PayToAddrScript(decoded)
}
