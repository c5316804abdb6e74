// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet/walletdb"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

// ComputeBalance classifies the unspent subset of the given credits into
// balance classes relative to the given chain height.  The result is
// always derived from the full snapshot, so repeated calls over the same
// credits agree regardless of the order earlier updates arrived in.
//
// Coinbase outputs with fewer than coinbaseMaturity confirmations are
// immature.  Unconfirmed outputs are trusted when they pay an internal
// keychain address or when isSelfTx reports that every input of the
// funding transaction was wallet-owned, and untrusted otherwise.
func ComputeBalance(credits []Credit, syncHeight uint32,
	coinbaseMaturity uint32,
	isSelfTx func(*chainhash.Hash) bool) Balance {

	var bal Balance
	for i := range credits {
		c := &credits[i]
		if c.Spent {
			continue
		}

		if c.Height.IsNone() {
			trusted := c.Keychain == waddrmgr.KeychainInternal ||
				c.FromSelf
			if !trusted && isSelfTx != nil {
				trusted = isSelfTx(&c.OutPoint.Hash)
			}
			if trusted {
				bal.TrustedPending += c.Amount
			} else {
				bal.UntrustedPending += c.Amount
			}
			continue
		}

		if c.FromCoinBase {
			confs := confirms(c.Height.UnsafeFromSome(), syncHeight)
			if confs < coinbaseMaturity {
				bal.Immature += c.Amount
				continue
			}
		}
		bal.Confirmed += c.Amount
	}
	return bal
}

// Balance returns the balance of the store's credits relative to the
// given chain height.
func (s *Store) Balance(ns walletdb.ReadBucket, syncHeight uint32,
	coinbaseMaturity uint32) (Balance, error) {

	credits, err := s.AllCredits(ns)
	if err != nil {
		return Balance{}, err
	}
	isSelf := func(hash *chainhash.Hash) bool {
		return s.IsSelfTx(ns, hash)
	}
	return ComputeBalance(credits, syncHeight, coinbaseMaturity,
		isSelf), nil
}

// confirms returns the number of confirmations of an output first seen at
// txHeight when the chain tip is at curHeight.  An output in the tip
// block has one confirmation.
func confirms(txHeight, curHeight uint32) uint32 {
	if txHeight > curHeight {
		return 0
	}
	return curHeight - txHeight + 1
}
