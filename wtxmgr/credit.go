// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

// BlockMeta identifies the block that confirmed a transaction.
type BlockMeta struct {
	// Height is the height of the block in the best chain.
	Height uint32

	// Time is the timestamp from the block header.
	Time time.Time
}

// Credit describes a transaction output which was or is spendable by the
// wallet.  A UTXO is an unspent Credit, but not all Credits are UTXOs:
// spent credits are retained for as long as the spending transaction stays
// in the wallet's history, since balances and details are recomputed from
// scratch after reorgs.
type Credit struct {
	// OutPoint is the transaction output identifier and the unique key
	// of the credit within the store.
	OutPoint wire.OutPoint

	// Amount is the value of the output.
	Amount btcutil.Amount

	// PkScript is the output script.
	PkScript []byte

	// Address is the network-qualified address string paid to by
	// PkScript.  None when the script has no standard address form; such
	// credits are retained regardless, since dropping them would corrupt
	// the balance totals.
	Address fn.Option[string]

	// Keychain is the keychain whose descriptor the output pays to.
	Keychain waddrmgr.KeychainKind

	// FromCoinBase indicates the output was created by a coinbase
	// transaction and is subject to the maturity rule.
	FromCoinBase bool

	// FromSelf indicates the funding transaction spent only wallet-owned
	// inputs.  Unconfirmed credits with this flag count as trusted
	// pending balance.
	FromSelf bool

	// Height is the height of the block that confirmed the funding
	// transaction.  None while the transaction is unconfirmed.
	Height fn.Option[uint32]

	// Spent indicates a later scan found the outpoint consumed as an
	// input.
	Spent bool
}

// TxDetails summarizes the effect of a single transaction on the wallet.
type TxDetails struct {
	// TxHash is the transaction id.
	TxHash chainhash.Hash

	// Received is the sum of the values of this transaction's outputs
	// that belong to the wallet.
	Received btcutil.Amount

	// Sent is the sum of the values of the wallet-owned inputs consumed
	// by this transaction.
	Sent btcutil.Amount

	// Fee is the transaction fee.  None exactly when the backend could
	// not resolve the value of every spent input; the absence is a
	// data-availability signal, not an error, and is propagated to
	// callers verbatim.
	Fee fn.Option[btcutil.Amount]

	// Block identifies the confirming block.  None while unconfirmed.
	Block fn.Option[BlockMeta]

	// ReceivedTime records when the wallet first observed the
	// transaction.
	ReceivedTime time.Time
}

// TxRecord is a transaction tracked by the store.  The serialized
// transaction is kept so details can be recomputed whenever the backend
// reports a changed confirmation status.
type TxRecord struct {
	// Hash is the transaction id.
	Hash chainhash.Hash

	// SerializedTx is the canonical wire encoding of the transaction.
	SerializedTx []byte

	// Received records when the wallet first observed the transaction.
	Received time.Time
}

// Balance holds the wallet funds broken down by spendability class.  All
// fields are recomputed together from a single UTXO set snapshot and are
// never patched incrementally.
type Balance struct {
	// Immature is the value of coinbase outputs which have not yet
	// reached maturity depth.
	Immature btcutil.Amount

	// TrustedPending is the value of unconfirmed outputs created by the
	// wallet's own change or self-transactions.
	TrustedPending btcutil.Amount

	// UntrustedPending is the value of unconfirmed outputs received from
	// external sources.
	UntrustedPending btcutil.Amount

	// Confirmed is the value of confirmed, mature outputs.
	Confirmed btcutil.Amount
}

// Spendable returns the balance that can be spent immediately.
func (b Balance) Spendable() btcutil.Amount {
	return b.TrustedPending + b.Confirmed
}

// Total returns the whole balance visible to the wallet.
func (b Balance) Total() btcutil.Amount {
	return b.Immature + b.TrustedPending + b.UntrustedPending +
		b.Confirmed
}

// String returns the balance classes in a human-readable form.
func (b Balance) String() string {
	return fmt.Sprintf("immature=%v trusted_pending=%v "+
		"untrusted_pending=%v confirmed=%v", b.Immature,
		b.TrustedPending, b.UntrustedPending, b.Confirmed)
}
