// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/chain"
	"github.com/yukibtc/bdk-go/pkscript"
	"github.com/yukibtc/bdk-go/waddrmgr"
	"github.com/yukibtc/bdk-go/wtxmgr"
)

// Sync scans the chain through the given backend and applies the result
// to the wallet.  The scan itself runs without holding any wallet lock,
// so reads keep seeing the previous state while it is in flight; the
// resulting update is then applied in a single database transaction.  A
// failed or canceled scan applies nothing.
//
// Progress events from the backend are forwarded to the observer exactly
// once each, in order.  A nil observer discards them.
func (w *Wallet) Sync(ctx context.Context, backend chain.Interface,
	observer chain.Progress) error {

	log.Infof("Starting sync through %s backend", backend.BackEnd())

	update, err := backend.Sync(ctx, chain.NewProgressBridge(observer))
	if err != nil {
		log.Warnf("Sync through %s abandoned: %v",
			backend.BackEnd(), err)
		return err
	}
	if update == nil {
		return fmt.Errorf("backend %s returned no scan update",
			backend.BackEnd())
	}

	if err := w.applyUpdate(update); err != nil {
		return err
	}

	log.Infof("Sync applied at height %d: %d outputs, %d spends, "+
		"%d transactions", update.Height, len(update.Outputs),
		len(update.Inputs), len(update.Txs))
	return nil
}

// applyUpdate commits a scan update to the database.  Everything the
// update carries lands in one transaction, so a crash mid-apply leaves
// the previous state intact.
func (w *Wallet) applyUpdate(update *chain.ScanUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	credits := make(map[wire.OutPoint]wtxmgr.Credit, len(update.Outputs))
	for _, out := range update.Outputs {
		credits[out.OutPoint] = wtxmgr.Credit{
			OutPoint:     out.OutPoint,
			Amount:       out.Value,
			PkScript:     out.PkScript,
			Address:      w.scriptAddress(out.PkScript),
			Keychain:     out.Keychain,
			FromCoinBase: out.FromCoinBase,
			Height:       out.Height,
		}
	}

	for _, in := range update.Inputs {
		c, ok := credits[in.OutPoint]
		if !ok {
			log.Warnf("Scan reported spend of unknown outpoint %v "+
				"by %v", in.OutPoint, in.SpenderHash)
			continue
		}
		c.Spent = true
		credits[in.OutPoint] = c
	}

	// A transaction funded entirely by wallet outputs cannot have been
	// double-spent by a third party, so its change is trusted while
	// unconfirmed.
	selfTxs := make(map[chainhash.Hash]struct{})
	for _, rel := range update.Txs {
		if isSelfFunded(rel.Tx, credits) {
			selfTxs[rel.Tx.TxHash()] = struct{}{}
		}
	}
	for op, c := range credits {
		if _, ok := selfTxs[op.Hash]; ok {
			c.FromSelf = true
			credits[op] = c
		}
	}

	snapshot := make([]wtxmgr.Credit, 0, len(credits))
	for _, c := range credits {
		snapshot = append(snapshot, c)
	}

	lookup := func(op wire.OutPoint) fn.Option[wtxmgr.Credit] {
		if c, ok := credits[op]; ok {
			return fn.Some(c)
		}
		return fn.None[wtxmgr.Credit]()
	}

	return walletdb.Update(w.db, func(tx walletdb.ReadWriteTx) error {
		addrNs := tx.ReadWriteBucket(waddrmgrNamespaceKey)
		txNs := tx.ReadWriteBucket(wtxmgrNamespaceKey)

		if err := w.txStore.ReplaceCredits(txNs, snapshot); err != nil {
			return err
		}

		// The scan result is the complete relevant history, so the
		// stored transactions are rebuilt from scratch along with the
		// credit set.  Keeping old entries would resurrect
		// transactions a reorganization erased.
		if err := w.txStore.ResetTxHistory(txNs); err != nil {
			return err
		}

		for _, out := range update.Outputs {
			err := w.addrMgr.MarkUsed(addrNs, out.Keychain,
				out.Index)
			if err != nil {
				return err
			}
		}

		for hash := range selfTxs {
			if err := w.txStore.MarkSelfTx(txNs, &hash); err != nil {
				return err
			}
		}

		for _, rel := range update.Txs {
			if err := w.applyRelevantTx(txNs, rel, lookup); err != nil {
				return err
			}
		}

		return w.txStore.PutSyncedTo(txNs, update.Height)
	})
}

// applyRelevantTx stores the raw transaction and its reconciled summary.
func (w *Wallet) applyRelevantTx(ns walletdb.ReadWriteBucket,
	rel chain.RelevantTx, lookup wtxmgr.CreditLookup) error {

	var buf bytes.Buffer
	buf.Grow(rel.Tx.SerializeSize())
	if err := rel.Tx.Serialize(&buf); err != nil {
		return err
	}

	block := fn.None[wtxmgr.BlockMeta]()
	receivedTime := time.Now()
	rel.Height.WhenSome(func(height uint32) {
		blockTime := time.Unix(rel.BlockTime.UnwrapOr(0), 0)
		block = fn.Some(wtxmgr.BlockMeta{
			Height: height,
			Time:   blockTime,
		})
		receivedTime = blockTime
	})

	rec := wtxmgr.TxRecord{
		Hash:         rel.Tx.TxHash(),
		SerializedTx: buf.Bytes(),
		Received:     receivedTime,
	}
	if err := w.txStore.PutTxRecord(ns, &rec); err != nil {
		return err
	}

	owns := func(pkScript []byte) fn.Option[waddrmgr.KeyPath] {
		if path, ok := w.addrMgr.OwnsScript(pkScript); ok {
			return fn.Some(path)
		}
		return fn.None[waddrmgr.KeyPath]()
	}

	details := wtxmgr.ReconcileTx(rel.Tx, block, lookup, owns,
		rel.InputValues, receivedTime)
	return w.txStore.PutTxDetails(ns, &details)
}

// scriptAddress renders the address encoding of a script, or None for
// scripts with no address form.
func (w *Wallet) scriptAddress(pkScript []byte) fn.Option[string] {
	addr, err := pkscript.AddressString(pkScript, w.chainParams.Params)
	if err != nil {
		return fn.None[string]()
	}
	return fn.Some(addr)
}

// isSelfFunded reports whether every input of the transaction spends an
// output the wallet owns.  Coinbase transactions create value instead of
// spending it and never qualify.
func isSelfFunded(msgTx *wire.MsgTx,
	credits map[wire.OutPoint]wtxmgr.Credit) bool {

	if len(msgTx.TxIn) == 0 {
		return false
	}
	for _, txIn := range msgTx.TxIn {
		if _, ok := credits[txIn.PreviousOutPoint]; !ok {
			return false
		}
	}
	return true
}
