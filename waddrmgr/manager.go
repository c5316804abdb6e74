// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package waddrmgr manages the wallet's address derivation state.  It keeps
// one derivation cursor per descriptor keychain together with the set of
// indices already seen in observed transactions, and answers next-address
// requests under one of four caller-selected strategies (see AddressIndex).
// The cursor and the used-index set are persisted through walletdb so a
// restarted wallet does not hand out addresses it already handed out.
package waddrmgr

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcwallet/walletdb"
)

// Manager is the address index controller.  It serializes mutating
// next-address requests per manager, while PeekIndex requests and script
// ownership checks may run concurrently with them.
type Manager struct {
	mu sync.RWMutex

	deriver Deriver

	// cursor holds the current derivation index per keychain.  Mirrors
	// the persisted state; mutated only while mu is write-locked and the
	// database write has succeeded.
	cursor map[KeychainKind]uint32

	// used holds the derivation indices seen in outputs of observed
	// transactions, per keychain.
	used map[KeychainKind]map[uint32]struct{}
}

// Create initializes the manager buckets within the given namespace.  Both
// keychain cursors start at index zero.
func Create(ns walletdb.ReadWriteBucket) error {
	return createBuckets(ns)
}

// Open loads the persisted derivation state from the given namespace and
// returns a manager using the given deriver for address derivation.
func Open(ns walletdb.ReadBucket, deriver Deriver) (*Manager, error) {
	m := &Manager{
		deriver: deriver,
		cursor:  make(map[KeychainKind]uint32),
		used: map[KeychainKind]map[uint32]struct{}{
			KeychainExternal: make(map[uint32]struct{}),
			KeychainInternal: make(map[uint32]struct{}),
		},
	}

	for _, keychain := range []KeychainKind{
		KeychainExternal, KeychainInternal,
	} {
		cursor, err := fetchCursor(ns, keychain)
		if err != nil {
			return nil, err
		}
		m.cursor[keychain] = cursor
	}

	err := forEachUsedIndex(ns, func(keychain KeychainKind,
		index uint32) error {

		if !keychain.valid() {
			str := fmt.Sprintf("unknown keychain %d in used-index "+
				"bucket", keychain)
			return managerError(ErrDatabase, str, nil)
		}
		m.used[keychain][index] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NextAddress returns an address for the given keychain according to the
// given index strategy.  PeekIndex never mutates the cursor and may run
// concurrently with the mutating strategies; NewIndex, LastUnusedIndex and
// ResetIndex are serialized against each other since they read and then
// write the cursor.
//
// The namespace must be writable for the mutating strategies; the cursor
// change and the returned address are consistent only if the enclosing
// database transaction commits.
func (m *Manager) NextAddress(ns walletdb.ReadWriteBucket,
	keychain KeychainKind, index AddressIndex) (AddressInfo, error) {

	if !keychain.valid() {
		str := fmt.Sprintf("unknown keychain %s", keychain)
		return AddressInfo{}, managerError(ErrUnknownKeychain, str, nil)
	}

	switch strategy := index.(type) {
	case PeekIndex:
		m.mu.RLock()
		defer m.mu.RUnlock()

		return m.deriveAt(keychain, strategy.Index)

	case ResetIndex:
		m.mu.Lock()
		defer m.mu.Unlock()

		return m.moveCursor(ns, keychain, strategy.Index)

	case NewIndex:
		m.mu.Lock()
		defer m.mu.Unlock()

		return m.moveCursor(ns, keychain, m.cursor[keychain]+1)

	case LastUnusedIndex:
		m.mu.Lock()
		defer m.mu.Unlock()

		current := m.cursor[keychain]
		if _, ok := m.used[keychain][current]; !ok {
			return m.deriveAt(keychain, current)
		}

		log.Debugf("Address at %s index %d already used, deriving a "+
			"new one", keychain, current)

		return m.moveCursor(ns, keychain, current+1)

	default:
		str := fmt.Sprintf("unknown address index strategy %T", index)
		return AddressInfo{}, managerError(ErrDerivation, str, nil)
	}
}

// CurrentIndex returns the current derivation index of the given keychain.
func (m *Manager) CurrentIndex(keychain KeychainKind) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cursor[keychain]
}

// OwnsScript reports whether the given output script pays to a key the
// wallet controls.  It delegates to the deriver and is safe for concurrent
// use.
func (m *Manager) OwnsScript(pkScript []byte) (KeyPath, bool) {
	path := m.deriver.OwnsScript(pkScript)
	if path.IsNone() {
		return KeyPath{}, false
	}
	return path.UnsafeFromSome(), true
}

// MarkUsed records that the address at the given keychain index has been
// seen in an output of an observed transaction.  Markers only accumulate;
// an address once marked used stays used.
func (m *Manager) MarkUsed(ns walletdb.ReadWriteBucket,
	keychain KeychainKind, index uint32) error {

	if !keychain.valid() {
		str := fmt.Sprintf("unknown keychain %s", keychain)
		return managerError(ErrUnknownKeychain, str, nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := putUsedIndex(ns, keychain, index); err != nil {
		return err
	}
	m.used[keychain][index] = struct{}{}

	return nil
}

// deriveAt derives the address at the given keychain index without touching
// the cursor.  The caller must hold at least a read lock.
func (m *Manager) deriveAt(keychain KeychainKind,
	index uint32) (AddressInfo, error) {

	addr, err := m.deriver.DeriveAddress(keychain, index)
	if err != nil {
		str := fmt.Sprintf("failed to derive address at %s index %d",
			keychain, index)
		return AddressInfo{}, managerError(ErrDerivation, str, err)
	}

	return AddressInfo{Index: index, Address: addr}, nil
}

// moveCursor derives the address at the given index and, on success,
// persists it as the new cursor position.  The caller must hold the write
// lock.  Derivation happens before the cursor write so a failed derivation
// leaves the cursor untouched.
func (m *Manager) moveCursor(ns walletdb.ReadWriteBucket,
	keychain KeychainKind, index uint32) (AddressInfo, error) {

	info, err := m.deriveAt(keychain, index)
	if err != nil {
		return AddressInfo{}, err
	}

	if err := putCursor(ns, keychain, index); err != nil {
		return AddressInfo{}, err
	}
	m.cursor[keychain] = index

	return info, nil
}
