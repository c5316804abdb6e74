// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Store implements the transaction and output bookkeeping of a wallet on
// top of a walletdb namespace.  All methods operate on buckets of the
// namespace passed by the caller, so a single database transaction may
// combine several store operations atomically.
type Store struct{}

// Create initializes the buckets required by an empty store within the
// given namespace.  It must only be called once per namespace.
func Create(ns walletdb.ReadWriteBucket) error {
	for _, key := range [][]byte{
		bucketUtxos, bucketTxRecords, bucketTxDetails,
		bucketSelfTxs, bucketMeta,
	} {
		if _, err := ns.CreateBucket(key); err != nil {
			str := "failed to create bucket " + string(key)
			return storeError(ErrDatabase, str, err)
		}
	}
	return nil
}

// Open returns a store bound to an existing namespace previously
// initialized by Create.
func Open(ns walletdb.ReadBucket) (*Store, error) {
	if ns.NestedReadBucket(bucketUtxos) == nil {
		str := "store buckets have not been created"
		return nil, storeError(ErrNoExist, str, nil)
	}
	return &Store{}, nil
}

// InsertCredit records a wallet-relevant output, replacing any previous
// entry for the same outpoint.  An output already marked spent never
// becomes unspent again through an insert, so replaying scan results
// cannot resurrect spendable funds.
func (s *Store) InsertCredit(ns walletdb.ReadWriteBucket, c Credit) error {
	bucket, err := fetchWriteBucket(ns, bucketUtxos)
	if err != nil {
		return err
	}

	k := canonicalOutPoint(&c.OutPoint)
	if existing := bucket.Get(k); existing != nil && len(existing) > 8 {
		if existing[8]&flagSpent != 0 {
			c.Spent = true
		}
	}

	if err := bucket.Put(k, valueCredit(&c)); err != nil {
		str := "failed to store credit"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// MarkSpent flags the credit with the given outpoint as spent.  Marking
// an already spent credit is a no-op.  An unknown outpoint results in
// ErrUnknownOutPoint.
func (s *Store) MarkSpent(ns walletdb.ReadWriteBucket,
	op wire.OutPoint) error {

	bucket, err := fetchWriteBucket(ns, bucketUtxos)
	if err != nil {
		return err
	}

	k := canonicalOutPoint(&op)
	v := bucket.Get(k)
	if v == nil {
		str := "no credit for outpoint " + op.String()
		return storeError(ErrUnknownOutPoint, str, nil)
	}
	if len(v) < 9 {
		str := "credit value truncated"
		return storeError(ErrData, str, nil)
	}
	if v[8]&flagSpent != 0 {
		return nil
	}

	spent := make([]byte, len(v))
	copy(spent, v)
	spent[8] |= flagSpent
	if err := bucket.Put(k, spent); err != nil {
		str := "failed to mark credit spent"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// GetCredit returns the credit stored for the given outpoint, or
// ErrUnknownOutPoint when the store has never seen it.
func (s *Store) GetCredit(ns walletdb.ReadBucket,
	op wire.OutPoint) (Credit, error) {

	var c Credit
	bucket, err := fetchBucket(ns, bucketUtxos)
	if err != nil {
		return c, err
	}

	k := canonicalOutPoint(&op)
	v := bucket.Get(k)
	if v == nil {
		str := "no credit for outpoint " + op.String()
		return c, storeError(ErrUnknownOutPoint, str, nil)
	}
	err = readCredit(k, v, &c)
	return c, err
}

// forEachCredit invokes f for every stored credit.
func (s *Store) forEachCredit(ns walletdb.ReadBucket,
	f func(Credit) error) error {

	bucket, err := fetchBucket(ns, bucketUtxos)
	if err != nil {
		return err
	}

	return bucket.ForEach(func(k, v []byte) error {
		var c Credit
		if err := readCredit(k, v, &c); err != nil {
			return err
		}
		return f(c)
	})
}

// AllCredits returns every credit the store tracks, spent and unspent,
// ordered by outpoint.
func (s *Store) AllCredits(ns walletdb.ReadBucket) ([]Credit, error) {
	var credits []Credit
	err := s.forEachCredit(ns, func(c Credit) error {
		credits = append(credits, c)
		return nil
	})
	return credits, err
}

// UnspentCredits returns the credits that have not been marked spent,
// ordered by outpoint.
func (s *Store) UnspentCredits(ns walletdb.ReadBucket) ([]Credit, error) {
	var credits []Credit
	err := s.forEachCredit(ns, func(c Credit) error {
		if !c.Spent {
			credits = append(credits, c)
		}
		return nil
	})
	return credits, err
}

// ReplaceCredits atomically replaces the full credit set with the given
// snapshot.  A chain resync that observed a reorganized history uses this
// to drop stale credits instead of patching them one by one.
func (s *Store) ReplaceCredits(ns walletdb.ReadWriteBucket,
	credits []Credit) error {

	if err := ns.DeleteNestedBucket(bucketUtxos); err != nil {
		str := "failed to clear credits"
		return storeError(ErrDatabase, str, err)
	}
	bucket, err := ns.CreateBucket(bucketUtxos)
	if err != nil {
		str := "failed to recreate credit bucket"
		return storeError(ErrDatabase, str, err)
	}

	for i := range credits {
		c := &credits[i]
		k := canonicalOutPoint(&c.OutPoint)
		if err := bucket.Put(k, valueCredit(c)); err != nil {
			str := "failed to store credit"
			return storeError(ErrDatabase, str, err)
		}
	}

	log.Debugf("Replaced credit set with %d credits", len(credits))
	return nil
}

// ResetTxHistory atomically clears the stored raw transactions, their
// summaries and the self-tx markers.  A resync rebuilds all three from its
// scan result alongside the replaced credit set, so transactions evicted
// by a reorganization do not linger in the history.
func (s *Store) ResetTxHistory(ns walletdb.ReadWriteBucket) error {
	for _, key := range [][]byte{
		bucketTxRecords, bucketTxDetails, bucketSelfTxs,
	} {
		if err := ns.DeleteNestedBucket(key); err != nil {
			str := "failed to clear bucket " + string(key)
			return storeError(ErrDatabase, str, err)
		}
		if _, err := ns.CreateBucket(key); err != nil {
			str := "failed to recreate bucket " + string(key)
			return storeError(ErrDatabase, str, err)
		}
	}
	return nil
}

// PutTxRecord stores the raw serialized transaction together with the
// time it was first observed.
func (s *Store) PutTxRecord(ns walletdb.ReadWriteBucket,
	rec *TxRecord) error {

	bucket, err := fetchWriteBucket(ns, bucketTxRecords)
	if err != nil {
		return err
	}
	if err := bucket.Put(rec.Hash[:], valueTxRecord(rec)); err != nil {
		str := "failed to store tx record"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// TxRecord returns the stored raw transaction with the given hash, or
// ErrNoExist when it was never recorded.
func (s *Store) TxRecord(ns walletdb.ReadBucket,
	hash *chainhash.Hash) (TxRecord, error) {

	var rec TxRecord
	bucket, err := fetchBucket(ns, bucketTxRecords)
	if err != nil {
		return rec, err
	}

	v := bucket.Get(hash[:])
	if v == nil {
		str := "no tx record for " + hash.String()
		return rec, storeError(ErrNoExist, str, nil)
	}
	err = readTxRecord(hash[:], v, &rec)
	return rec, err
}

// PutTxDetails stores the reconciled summary of a transaction, replacing
// any previous summary for the same txid.
func (s *Store) PutTxDetails(ns walletdb.ReadWriteBucket,
	d *TxDetails) error {

	bucket, err := fetchWriteBucket(ns, bucketTxDetails)
	if err != nil {
		return err
	}
	if err := bucket.Put(d.TxHash[:], valueTxDetails(d)); err != nil {
		str := "failed to store tx details"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// TxDetailsFor returns the stored summary of the transaction with the
// given hash, or ErrNoExist when no summary has been recorded.
func (s *Store) TxDetailsFor(ns walletdb.ReadBucket,
	hash *chainhash.Hash) (TxDetails, error) {

	var d TxDetails
	bucket, err := fetchBucket(ns, bucketTxDetails)
	if err != nil {
		return d, err
	}

	v := bucket.Get(hash[:])
	if v == nil {
		str := "no tx details for " + hash.String()
		return d, storeError(ErrNoExist, str, nil)
	}
	err = readTxDetails(hash[:], v, &d)
	return d, err
}

// ListTxDetails returns the summaries of every relevant transaction,
// ordered by first confirmation height and then by observation time so
// unconfirmed transactions sort last.
func (s *Store) ListTxDetails(ns walletdb.ReadBucket) ([]TxDetails, error) {
	bucket, err := fetchBucket(ns, bucketTxDetails)
	if err != nil {
		return nil, err
	}

	var details []TxDetails
	err = bucket.ForEach(func(k, v []byte) error {
		var d TxDetails
		if err := readTxDetails(k, v, &d); err != nil {
			return err
		}
		details = append(details, d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(details, func(i, j int) bool {
		bi, bj := details[i].Block, details[j].Block
		switch {
		case bi.IsSome() && bj.IsSome():
			return bi.UnsafeFromSome().Height <
				bj.UnsafeFromSome().Height
		case bi.IsSome():
			return true
		case bj.IsSome():
			return false
		default:
			return details[i].ReceivedTime.
				Before(details[j].ReceivedTime)
		}
	})
	return details, nil
}

// MarkSelfTx records that every input of the transaction with the given
// hash spends a wallet-owned output.  Change outputs of such transactions
// count as trusted while unconfirmed.
func (s *Store) MarkSelfTx(ns walletdb.ReadWriteBucket,
	hash *chainhash.Hash) error {

	bucket, err := fetchWriteBucket(ns, bucketSelfTxs)
	if err != nil {
		return err
	}
	if err := bucket.Put(hash[:], []byte{}); err != nil {
		str := "failed to mark self tx"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// IsSelfTx reports whether the transaction with the given hash has been
// marked as fully wallet-funded.
func (s *Store) IsSelfTx(ns walletdb.ReadBucket,
	hash *chainhash.Hash) bool {

	bucket := ns.NestedReadBucket(bucketSelfTxs)
	if bucket == nil {
		return false
	}
	return bucket.Get(hash[:]) != nil
}

// PutSyncedTo records the chain height of the last fully applied resync.
func (s *Store) PutSyncedTo(ns walletdb.ReadWriteBucket,
	height uint32) error {

	bucket, err := fetchWriteBucket(ns, bucketMeta)
	if err != nil {
		return err
	}

	var v [4]byte
	byteOrder.PutUint32(v[:], height)
	if err := bucket.Put(keySyncedTo, v[:]); err != nil {
		str := "failed to store synced height"
		return storeError(ErrDatabase, str, err)
	}
	return nil
}

// SyncedTo returns the chain height of the last fully applied resync, or
// None for a store that has never completed one.
func (s *Store) SyncedTo(ns walletdb.ReadBucket) fn.Option[uint32] {
	bucket := ns.NestedReadBucket(bucketMeta)
	if bucket == nil {
		return fn.None[uint32]()
	}
	v := bucket.Get(keySyncedTo)
	if len(v) != 4 {
		return fn.None[uint32]()
	}
	return fn.Some(byteOrder.Uint32(v))
}
