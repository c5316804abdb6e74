// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package waddrmgr

import (
	"encoding/binary"

	"github.com/btcsuite/btcwallet/walletdb"
)

var (
	// bucketCursors stores the current derivation index of each keychain,
	// keyed by the keychain kind byte.
	bucketCursors = []byte("cursors")

	// bucketUsed stores a marker for every derivation index that has been
	// seen in an output of an observed transaction, keyed by the keychain
	// kind byte followed by the big-endian index.
	bucketUsed = []byte("used")
)

// byteOrder is the byte order used for all serialized numbers.
var byteOrder = binary.LittleEndian

// usedKey returns the key locating a used-index marker.
func usedKey(keychain KeychainKind, index uint32) []byte {
	k := make([]byte, 5)
	k[0] = byte(keychain)
	binary.BigEndian.PutUint32(k[1:], index)
	return k
}

// fetchCursor reads the persisted derivation index of a keychain.  A missing
// entry reads as index zero, which is the initial state of a fresh wallet.
func fetchCursor(ns walletdb.ReadBucket,
	keychain KeychainKind) (uint32, error) {

	bucket := ns.NestedReadBucket(bucketCursors)
	if bucket == nil {
		str := "cursor bucket does not exist"
		return 0, managerError(ErrNoExist, str, nil)
	}

	v := bucket.Get([]byte{byte(keychain)})
	if v == nil {
		return 0, nil
	}
	if len(v) != 4 {
		str := "malformed cursor entry"
		return 0, managerError(ErrDatabase, str, nil)
	}

	return byteOrder.Uint32(v), nil
}

// putCursor persists the derivation index of a keychain.
func putCursor(ns walletdb.ReadWriteBucket, keychain KeychainKind,
	index uint32) error {

	bucket := ns.NestedReadWriteBucket(bucketCursors)
	if bucket == nil {
		str := "cursor bucket does not exist"
		return managerError(ErrNoExist, str, nil)
	}

	v := make([]byte, 4)
	byteOrder.PutUint32(v, index)

	if err := bucket.Put([]byte{byte(keychain)}, v); err != nil {
		str := "failed to store cursor"
		return managerError(ErrDatabase, str, err)
	}
	return nil
}

// putUsedIndex persists a used-index marker.
func putUsedIndex(ns walletdb.ReadWriteBucket, keychain KeychainKind,
	index uint32) error {

	bucket := ns.NestedReadWriteBucket(bucketUsed)
	if bucket == nil {
		str := "used-index bucket does not exist"
		return managerError(ErrNoExist, str, nil)
	}

	if err := bucket.Put(usedKey(keychain, index), nil); err != nil {
		str := "failed to store used-index marker"
		return managerError(ErrDatabase, str, err)
	}
	return nil
}

// forEachUsedIndex invokes fn for every persisted used-index marker.
func forEachUsedIndex(ns walletdb.ReadBucket,
	fn func(keychain KeychainKind, index uint32) error) error {

	bucket := ns.NestedReadBucket(bucketUsed)
	if bucket == nil {
		str := "used-index bucket does not exist"
		return managerError(ErrNoExist, str, nil)
	}

	return bucket.ForEach(func(k, _ []byte) error {
		if len(k) != 5 {
			str := "malformed used-index key"
			return managerError(ErrDatabase, str, nil)
		}
		return fn(KeychainKind(k[0]), binary.BigEndian.Uint32(k[1:]))
	})
}

// createBuckets creates the manager buckets within the given namespace.
func createBuckets(ns walletdb.ReadWriteBucket) error {
	if _, err := ns.CreateBucketIfNotExists(bucketCursors); err != nil {
		str := "failed to create cursor bucket"
		return managerError(ErrDatabase, str, err)
	}
	if _, err := ns.CreateBucketIfNotExists(bucketUsed); err != nil {
		str := "failed to create used-index bucket"
		return managerError(ErrDatabase, str, err)
	}
	return nil
}
