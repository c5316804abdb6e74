// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

// ScannedOutput is a wallet-relevant output discovered during a chain
// scan.
type ScannedOutput struct {
	// OutPoint identifies the output on chain.
	OutPoint wire.OutPoint

	// Value is the output amount.
	Value btcutil.Amount

	// PkScript is the output script.
	PkScript []byte

	// Keychain is the keychain whose address the script pays.
	Keychain waddrmgr.KeychainKind

	// Index is the derivation index of the paid address.
	Index uint32

	// Height is the height of the block confirming the output, or None
	// while it only exists in the mempool.
	Height fn.Option[uint32]

	// FromCoinBase is set when the output was created by a coinbase
	// transaction.
	FromCoinBase bool
}

// SpentInput reports that an outpoint previously credited to the wallet
// was consumed by some transaction.
type SpentInput struct {
	// OutPoint identifies the consumed output.
	OutPoint wire.OutPoint

	// SpenderHash is the txid of the consuming transaction.
	SpenderHash chainhash.Hash
}

// RelevantTx carries a full transaction that pays to or spends from the
// wallet, together with its confirmation status.
type RelevantTx struct {
	// Tx is the transaction itself.
	Tx *wire.MsgTx

	// Height is the confirming block height, or None for a mempool
	// transaction.
	Height fn.Option[uint32]

	// BlockTime is the confirming block's timestamp in Unix seconds,
	// present only when Height is.
	BlockTime fn.Option[int64]

	// InputValues maps the transaction's non-wallet inputs to their
	// values when the backend was able to resolve them.
	InputValues map[wire.OutPoint]btcutil.Amount
}

// ScanUpdate is the complete result of a chain scan.  A scan produces a
// consistent snapshot as of Height; it is the caller's job to apply the
// whole update atomically or not at all.
type ScanUpdate struct {
	// Height is the chain tip the scan observed.
	Height uint32

	// Outputs are the wallet-relevant outputs at the scanned tip.
	Outputs []ScannedOutput

	// Inputs are the wallet outpoints observed as spent.
	Inputs []SpentInput

	// Txs are the full wallet-relevant transactions.
	Txs []RelevantTx
}

// Interface abstracts a chain backend capable of scanning the chain for
// activity involving a set of wallet scripts.  Implementations report
// progress through the supplied Progress and must stop early when the
// context is canceled, returning the context's error.
type Interface interface {
	// Sync scans the chain and returns the resulting update.  A nil
	// update with a nil error is not a valid return.
	Sync(ctx context.Context, progress Progress) (*ScanUpdate, error)

	// BackEnd returns the backend's name.
	BackEnd() string
}
