// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package waddrmgr

// AddressIndex selects the derivation index strategy used when requesting an
// address from the manager.  The four strategies carry distinct address-reuse
// risk semantics and are deliberately kept as separate types rather than
// flags.
type AddressIndex interface {
	// addressIndex restricts implementations of the strategy union to
	// this package.
	addressIndex()
}

// NewIndex returns a new address after incrementing the current keychain
// index.  Once an index has been handed out by this strategy it is never
// handed out by it again.
type NewIndex struct{}

// LastUnusedIndex returns the address for the current keychain index if it
// has not been seen in a received transaction, and otherwise behaves as
// NewIndex.
//
// Use with caution: if the backend has not yet detected that an address has
// been used, this can return an address that is already in use elsewhere.
// Whether usage is detected depends entirely on the completeness of the
// backend's scan (its stop gap); this manager makes no stronger guarantee.
// The strategy is primarily meant for situations where the caller is
// untrusted, for example deriving donation addresses on demand for a public
// web page.
type LastUnusedIndex struct{}

// PeekIndex returns the address for an arbitrary keychain index without
// changing the current index used by NewIndex and LastUnusedIndex.  It is
// read-only and safe to call any number of times.
//
// Use with caution: if the given index is lower than the current keychain
// index, the returned address may already have been used.
type PeekIndex struct {
	// Index is the derivation index to derive the address at.
	Index uint32
}

// ResetIndex returns the address for the given keychain index and resets the
// current index used by NewIndex and LastUnusedIndex to that value.
//
// Use with caution: moving the index backward risks reuse of the returned
// address and of addresses handed out by subsequent NewIndex and
// LastUnusedIndex requests.  If the index is reset to a value earlier than
// the backend's look-ahead window, a larger look-ahead (stop gap) must be
// used so all possibly used addresses stay monitored; managing that is the
// caller's responsibility.
type ResetIndex struct {
	// Index is the derivation index to reset the keychain to.
	Index uint32
}

func (NewIndex) addressIndex()        {}
func (LastUnusedIndex) addressIndex() {}
func (PeekIndex) addressIndex()       {}
func (ResetIndex) addressIndex()      {}
