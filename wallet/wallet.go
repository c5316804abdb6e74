// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/netparams"
	"github.com/yukibtc/bdk-go/waddrmgr"
	"github.com/yukibtc/bdk-go/wtxmgr"
)

var (
	// waddrmgrNamespaceKey is the top level bucket holding the address
	// manager state.
	waddrmgrNamespaceKey = []byte("waddrmgr")

	// wtxmgrNamespaceKey is the top level bucket holding the
	// transaction store state.
	wtxmgrNamespaceKey = []byte("wtxmgr")
)

// Config bundles everything needed to open a wallet.
type Config struct {
	// DB is the database the wallet persists its state in.
	DB walletdb.DB

	// ChainParams selects the network the wallet operates on.
	ChainParams netparams.Params

	// Deriver produces addresses for the wallet's two keychains and
	// recognizes the scripts paying them.
	Deriver waddrmgr.Deriver
}

// Wallet tracks the addresses, outputs and transactions belonging to a
// pair of descriptor keychains.  It never signs or broadcasts; chain data
// enters exclusively through Sync.
//
// All methods are safe for concurrent use.  Reads see the state of the
// most recently applied sync.
type Wallet struct {
	// mu serializes sync application against reads.  Chain scans run
	// outside this lock.
	mu sync.RWMutex

	db          walletdb.DB
	chainParams netparams.Params
	addrMgr     *waddrmgr.Manager
	txStore     *wtxmgr.Store
}

// Create initializes the wallet buckets within the given database.  It
// must be called exactly once before the first Open.
func Create(db walletdb.DB) error {
	return walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		addrNs, err := tx.CreateTopLevelBucket(waddrmgrNamespaceKey)
		if err != nil {
			return err
		}
		if err := waddrmgr.Create(addrNs); err != nil {
			return err
		}

		txNs, err := tx.CreateTopLevelBucket(wtxmgrNamespaceKey)
		if err != nil {
			return err
		}
		return wtxmgr.Create(txNs)
	})
}

// Open loads an existing wallet from the configured database.
func Open(cfg *Config) (*Wallet, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("wallet requires a database")
	}
	if cfg.Deriver == nil {
		return nil, fmt.Errorf("wallet requires a deriver")
	}

	var (
		addrMgr *waddrmgr.Manager
		txStore *wtxmgr.Store
	)
	err := walletdb.View(cfg.DB, func(tx walletdb.ReadTx) error {
		addrNs := tx.ReadBucket(waddrmgrNamespaceKey)
		if addrNs == nil {
			return fmt.Errorf("wallet is not initialized")
		}

		var err error
		addrMgr, err = waddrmgr.Open(addrNs, cfg.Deriver)
		if err != nil {
			return err
		}

		txNs := tx.ReadBucket(wtxmgrNamespaceKey)
		if txNs == nil {
			return fmt.Errorf("wallet is not initialized")
		}
		txStore, err = wtxmgr.Open(txNs)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Opened wallet on %s", cfg.ChainParams.Name)

	return &Wallet{
		db:          cfg.DB,
		chainParams: cfg.ChainParams,
		addrMgr:     addrMgr,
		txStore:     txStore,
	}, nil
}

// ChainParams returns the parameters of the network the wallet operates
// on.
func (w *Wallet) ChainParams() netparams.Params {
	return w.chainParams
}

// NewAddress returns an address of the given keychain selected by the
// given index strategy.  See the waddrmgr strategy types for the cursor
// semantics and reuse caveats of each.
func (w *Wallet) NewAddress(keychain waddrmgr.KeychainKind,
	index waddrmgr.AddressIndex) (waddrmgr.AddressInfo, error) {

	var info waddrmgr.AddressInfo
	err := walletdb.Update(w.db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(waddrmgrNamespaceKey)

		var err error
		info, err = w.addrMgr.NextAddress(ns, keychain, index)
		return err
	})
	return info, err
}

// Balance returns the wallet balance broken down by confirmation class,
// computed over the full output snapshot of the last applied sync.
func (w *Wallet) Balance() (wtxmgr.Balance, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var bal wtxmgr.Balance
	err := walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(wtxmgrNamespaceKey)
		height := w.txStore.SyncedTo(ns).UnwrapOr(0)

		var err error
		bal, err = w.txStore.Balance(ns, height,
			uint32(w.chainParams.CoinbaseMaturity))
		return err
	})
	return bal, err
}

// ListUnspent returns the wallet's unspent outputs as of the last applied
// sync.
func (w *Wallet) ListUnspent() ([]wtxmgr.Credit, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var credits []wtxmgr.Credit
	err := walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		var err error
		credits, err = w.txStore.UnspentCredits(
			tx.ReadBucket(wtxmgrNamespaceKey))
		return err
	})
	return credits, err
}

// ListTransactions returns the summaries of every wallet-relevant
// transaction, confirmed ones first in chain order.
func (w *Wallet) ListTransactions() ([]wtxmgr.TxDetails, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var details []wtxmgr.TxDetails
	err := walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		var err error
		details, err = w.txStore.ListTxDetails(
			tx.ReadBucket(wtxmgrNamespaceKey))
		return err
	})
	return details, err
}

// GetTransaction returns the summary of the wallet-relevant transaction
// with the given hash.
func (w *Wallet) GetTransaction(
	hash *chainhash.Hash) (wtxmgr.TxDetails, error) {

	w.mu.RLock()
	defer w.mu.RUnlock()

	var details wtxmgr.TxDetails
	err := walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		var err error
		details, err = w.txStore.TxDetailsFor(
			tx.ReadBucket(wtxmgrNamespaceKey), hash)
		return err
	})
	return details, err
}

// GetRawTransaction returns the raw serialized bytes of the
// wallet-relevant transaction with the given hash.
func (w *Wallet) GetRawTransaction(hash *chainhash.Hash) ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var raw []byte
	err := walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		rec, err := w.txStore.TxRecord(
			tx.ReadBucket(wtxmgrNamespaceKey), hash)
		if err != nil {
			return err
		}
		raw = rec.SerializedTx
		return nil
	})
	return raw, err
}

// SyncedTo returns the chain height of the last applied sync, or None for
// a wallet that has never synced.
func (w *Wallet) SyncedTo() fn.Option[uint32] {
	w.mu.RLock()
	defer w.mu.RUnlock()

	height := fn.None[uint32]()
	_ = walletdb.View(w.db, func(tx walletdb.ReadTx) error {
		height = w.txStore.SyncedTo(tx.ReadBucket(wtxmgrNamespaceKey))
		return nil
	})
	return height
}
