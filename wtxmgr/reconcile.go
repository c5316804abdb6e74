// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

// CreditLookup resolves a previously recorded credit by outpoint,
// returning None for outpoints the wallet has never tracked.
type CreditLookup func(wire.OutPoint) fn.Option[Credit]

// ScriptOwner reports whether a script pays a wallet address, and when it
// does, which derivation produced the address.
type ScriptOwner func(pkScript []byte) fn.Option[waddrmgr.KeyPath]

// ReconcileTx computes the wallet-relative summary of a transaction.
//
// The received total sums the outputs paying wallet addresses and the
// sent total sums the inputs spending wallet credits.  The fee is the
// difference between total input and output values and is only reported
// when the value of every input is known, either because the wallet owns
// the spent credit or because the caller supplied it through inputValues.
// Coinbase transactions create value rather than spend it, so their fee
// is always None.
func ReconcileTx(msgTx *wire.MsgTx, block fn.Option[BlockMeta],
	lookup CreditLookup, owns ScriptOwner,
	inputValues map[wire.OutPoint]btcutil.Amount,
	receivedTime time.Time) TxDetails {

	d := TxDetails{
		TxHash:       msgTx.TxHash(),
		Fee:          fn.None[btcutil.Amount](),
		Block:        block,
		ReceivedTime: receivedTime,
	}

	for _, txOut := range msgTx.TxOut {
		if owns(txOut.PkScript).IsSome() {
			d.Received += btcutil.Amount(txOut.Value)
		}
	}

	if blockchain.IsCoinBaseTx(msgTx) {
		return d
	}

	var inputTotal btcutil.Amount
	allInputsKnown := true
	for _, txIn := range msgTx.TxIn {
		op := txIn.PreviousOutPoint

		if credit := lookup(op); credit.IsSome() {
			value := credit.UnsafeFromSome().Amount
			d.Sent += value
			inputTotal += value
			continue
		}
		if value, ok := inputValues[op]; ok {
			inputTotal += value
			continue
		}
		allInputsKnown = false
	}

	if allInputsKnown {
		var outputTotal btcutil.Amount
		for _, txOut := range msgTx.TxOut {
			outputTotal += btcutil.Amount(txOut.Value)
		}
		d.Fee = fn.Some(inputTotal - outputTotal)
	}

	return d
}
