// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

var namespaceKey = []byte("wtxmgr")

// testStore returns a store backed by a fresh database in a temporary
// directory.
func testStore(t *testing.T) (walletdb.DB, *Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tx.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns, err := tx.CreateTopLevelBucket(namespaceKey)
		if err != nil {
			return err
		}
		return Create(ns)
	})
	require.NoError(t, err)

	var s *Store
	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		s, err = Open(tx.ReadBucket(namespaceKey))
		return err
	})
	require.NoError(t, err)

	return db, s
}

// testOutPoint returns a deterministic outpoint derived from the given
// seed values.
func testOutPoint(seed byte, index uint32) wire.OutPoint {
	var hash chainhash.Hash
	for i := range hash {
		hash[i] = seed
	}
	return wire.OutPoint{Hash: hash, Index: index}
}

// testCredit returns an unconfirmed external-keychain credit for the
// given outpoint and amount.
func testCredit(op wire.OutPoint, amount btcutil.Amount) Credit {
	return Credit{
		OutPoint: op,
		Amount:   amount,
		PkScript: []byte{0x00, 0x14, op.Hash[0], op.Hash[1]},
		Address:  fn.None[string](),
		Keychain: waddrmgr.KeychainExternal,
		Height:   fn.None[uint32](),
	}
}

func TestCreditRoundTrip(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)

	want := testCredit(testOutPoint(1, 3), 50_000)
	want.Address = fn.Some("bc1qexample")
	want.Keychain = waddrmgr.KeychainInternal
	want.Height = fn.Some(uint32(812_000))
	want.FromCoinBase = true
	want.FromSelf = true

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		return s.InsertCredit(ns, want)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		got, err := s.GetCredit(tx.ReadBucket(namespaceKey),
			want.OutPoint)
		require.NoError(t, err)
		require.Equal(t, want, got)
		return nil
	})
	require.NoError(t, err)
}

func TestMarkSpent(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)
	op := testOutPoint(2, 0)

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		if err := s.InsertCredit(ns, testCredit(op, 1000)); err != nil {
			return err
		}
		return s.MarkSpent(ns, op)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(namespaceKey)

		got, err := s.GetCredit(ns, op)
		require.NoError(t, err)
		require.True(t, got.Spent)

		unspent, err := s.UnspentCredits(ns)
		require.NoError(t, err)
		require.Empty(t, unspent)
		return nil
	})
	require.NoError(t, err)
}

func TestMarkSpentUnknownOutPoint(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		return s.MarkSpent(ns, testOutPoint(3, 7))
	})
	require.Error(t, err)

	var serr StoreError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrUnknownOutPoint, serr.ErrorCode)
}

// TestInsertNeverUnspends asserts that re-inserting a credit after it was
// marked spent does not make it spendable again.
func TestInsertNeverUnspends(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)
	op := testOutPoint(4, 1)

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		if err := s.InsertCredit(ns, testCredit(op, 5000)); err != nil {
			return err
		}
		if err := s.MarkSpent(ns, op); err != nil {
			return err
		}

		// Replay of the original unspent observation.
		return s.InsertCredit(ns, testCredit(op, 5000))
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		got, err := s.GetCredit(tx.ReadBucket(namespaceKey), op)
		require.NoError(t, err)
		require.True(t, got.Spent)
		return nil
	})
	require.NoError(t, err)
}

func TestReplaceCredits(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		for i := uint32(0); i < 3; i++ {
			c := testCredit(testOutPoint(5, i), 1000)
			if err := s.InsertCredit(ns, c); err != nil {
				return err
			}
		}

		replacement := testCredit(testOutPoint(6, 0), 42_000)
		return s.ReplaceCredits(ns, []Credit{replacement})
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		credits, err := s.AllCredits(tx.ReadBucket(namespaceKey))
		require.NoError(t, err)
		require.Len(t, credits, 1)
		require.Equal(t, testOutPoint(6, 0), credits[0].OutPoint)
		require.Equal(t, btcutil.Amount(42_000), credits[0].Amount)
		return nil
	})
	require.NoError(t, err)
}

func TestTxRecordRoundTrip(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)

	msgTx := wire.NewMsgTx(wire.TxVersion)
	msgTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))
	msgTx.AddTxOut(wire.NewTxOut(1234, []byte{0x51}))

	var buf bytes.Buffer
	require.NoError(t, msgTx.Serialize(&buf))

	rec := TxRecord{
		Hash:         msgTx.TxHash(),
		SerializedTx: buf.Bytes(),
		Received:     time.Unix(1_700_000_000, 0),
	}

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		return s.PutTxRecord(tx.ReadWriteBucket(namespaceKey), &rec)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		got, err := s.TxRecord(tx.ReadBucket(namespaceKey), &rec.Hash)
		require.NoError(t, err)
		require.Equal(t, rec, got)
		return nil
	})
	require.NoError(t, err)
}

func TestListTxDetailsOrder(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)
	base := time.Unix(1_700_000_000, 0)

	unconfirmed := TxDetails{
		TxHash:       chainhash.Hash{0xaa},
		Received:     1000,
		Fee:          fn.None[btcutil.Amount](),
		Block:        fn.None[BlockMeta](),
		ReceivedTime: base.Add(2 * time.Hour),
	}
	early := TxDetails{
		TxHash:   chainhash.Hash{0xbb},
		Received: 2000,
		Fee:      fn.Some(btcutil.Amount(150)),
		Block: fn.Some(BlockMeta{
			Height: 100, Time: base,
		}),
		ReceivedTime: base,
	}
	late := TxDetails{
		TxHash: chainhash.Hash{0xcc},
		Sent:   3000,
		Fee:    fn.None[btcutil.Amount](),
		Block: fn.Some(BlockMeta{
			Height: 200, Time: base.Add(time.Hour),
		}),
		ReceivedTime: base.Add(time.Hour),
	}

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		for _, d := range []TxDetails{unconfirmed, late, early} {
			if err := s.PutTxDetails(ns, &d); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		got, err := s.ListTxDetails(tx.ReadBucket(namespaceKey))
		require.NoError(t, err)
		require.Equal(t, []TxDetails{early, late, unconfirmed}, got)
		return nil
	})
	require.NoError(t, err)
}

// TestResetTxHistory asserts clearing the history drops records, details
// and self-tx markers while leaving the buckets usable.
func TestResetTxHistory(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)
	hash := chainhash.Hash{0xdd}

	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)

		rec := TxRecord{
			Hash:         hash,
			SerializedTx: []byte{0x01, 0x02},
			Received:     time.Unix(1_700_000_000, 0),
		}
		if err := s.PutTxRecord(ns, &rec); err != nil {
			return err
		}
		d := TxDetails{
			TxHash:       hash,
			Received:     1000,
			Fee:          fn.None[btcutil.Amount](),
			Block:        fn.None[BlockMeta](),
			ReceivedTime: rec.Received,
		}
		if err := s.PutTxDetails(ns, &d); err != nil {
			return err
		}
		if err := s.MarkSelfTx(ns, &hash); err != nil {
			return err
		}

		return s.ResetTxHistory(ns)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(namespaceKey)

		_, err := s.TxRecord(ns, &hash)
		require.Error(t, err)
		_, err = s.TxDetailsFor(ns, &hash)
		require.Error(t, err)
		require.False(t, s.IsSelfTx(ns, &hash))

		details, err := s.ListTxDetails(ns)
		require.NoError(t, err)
		require.Empty(t, details)
		return nil
	})
	require.NoError(t, err)

	// The recreated buckets accept new entries.
	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		return s.MarkSelfTx(ns, &hash)
	})
	require.NoError(t, err)
}

func TestSelfTxSet(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)
	hash := chainhash.Hash{0x01, 0x02}

	err := walletdb.View(db, func(tx walletdb.ReadTx) error {
		require.False(t, s.IsSelfTx(tx.ReadBucket(namespaceKey), &hash))
		return nil
	})
	require.NoError(t, err)

	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		return s.MarkSelfTx(tx.ReadWriteBucket(namespaceKey), &hash)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		require.True(t, s.IsSelfTx(tx.ReadBucket(namespaceKey), &hash))
		return nil
	})
	require.NoError(t, err)
}

func TestSyncedTo(t *testing.T) {
	t.Parallel()

	db, s := testStore(t)

	err := walletdb.View(db, func(tx walletdb.ReadTx) error {
		require.True(t,
			s.SyncedTo(tx.ReadBucket(namespaceKey)).IsNone())
		return nil
	})
	require.NoError(t, err)

	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(namespaceKey)
		return s.PutSyncedTo(ns, 812_345)
	})
	require.NoError(t, err)

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		height := s.SyncedTo(tx.ReadBucket(namespaceKey))
		require.Equal(t, uint32(812_345), height.UnwrapOr(0))
		return nil
	})
	require.NoError(t, err)
}
