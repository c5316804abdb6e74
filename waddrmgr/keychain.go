// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package waddrmgr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// KeychainKind identifies which of the wallet's two descriptor keychains an
// address or output belongs to.
type KeychainKind uint8

const (
	// KeychainExternal is the keychain used for receive addresses handed
	// out to other parties.
	KeychainExternal KeychainKind = iota

	// KeychainInternal is the keychain used for change addresses.  Funds
	// on this keychain are always self-sourced.
	KeychainInternal
)

// String returns a human-readable name for the keychain kind.
func (k KeychainKind) String() string {
	switch k {
	case KeychainExternal:
		return "external"
	case KeychainInternal:
		return "internal"
	default:
		return fmt.Sprintf("unknown keychain (%d)", uint8(k))
	}
}

// valid returns whether the keychain kind is one of the two known kinds.
func (k KeychainKind) valid() bool {
	return k == KeychainExternal || k == KeychainInternal
}

// KeyPath locates a single derived key within the wallet's descriptors.
type KeyPath struct {
	// Keychain is the keychain the key belongs to.
	Keychain KeychainKind

	// Index is the derivation index of the key within its keychain.
	Index uint32
}

// Deriver is the descriptor/key provider collaborator.  Implementations
// typically wrap a descriptor parser and are free to perform their own
// caching; the manager never assumes derivation is cheap.
type Deriver interface {
	// DeriveAddress derives the address at the given index of the given
	// keychain.  It fails when the descriptor cannot produce a public key
	// at the requested index, for example a hardened-only descriptor
	// without a private key or an exhausted non-ranged descriptor.
	DeriveAddress(keychain KeychainKind, index uint32) (btcutil.Address,
		error)

	// OwnsScript reports whether the given output script pays to a key
	// controlled by the wallet's descriptors, and if so where that key
	// lives.  Returns None for scripts the wallet does not control.
	OwnsScript(pkScript []byte) fn.Option[KeyPath]
}

// AddressInfo is a derived address and the keychain index it was found at.
type AddressInfo struct {
	// Index is the derivation index of the address.
	Index uint32

	// Address is the derived address.
	Address btcutil.Address
}
