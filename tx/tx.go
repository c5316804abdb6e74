// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tx provides the raw transaction codec used by the wallet.  A Tx is
// an opaque, byte-exact view of a consensus-serialized bitcoin transaction:
// decoding and re-encoding a Tx always round-trips to the original bytes.
// The package also reports the transaction size, virtual size, and weight
// according to BIP141.
package tx

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/yukibtc/bdk-go/unit"
)

// witnessScaleFactor is the multiplier applied to the base (non-witness)
// transaction size when computing the total weight, per BIP141.
const witnessScaleFactor = 4

// Tx wraps a decoded wire transaction.  Construct one with NewTxFromBytes;
// the zero value is not usable.
type Tx struct {
	msgTx wire.MsgTx
}

// NewTxFromBytes decodes a consensus-serialized transaction.  The entire
// input must be consumed by the decoder: truncated or otherwise malformed
// bytes fail with a CodecError of code ErrMalformed, and any trailing bytes
// after a structurally valid transaction fail with ErrTrailingBytes.  A
// failed decode never returns a partially populated Tx.
func NewTxFromBytes(serializedTx []byte) (*Tx, error) {
	t := &Tx{}

	r := bytes.NewReader(serializedTx)
	if err := t.msgTx.Deserialize(r); err != nil {
		str := "failed to deserialize transaction"
		return nil, codecError(ErrMalformed, str, err)
	}

	// Reject rather than silently ignore trailing garbage.  Accepting it
	// would break the decode/encode round-trip guarantee.
	if r.Len() != 0 {
		str := "transaction is followed by trailing bytes"
		return nil, codecError(ErrTrailingBytes, str, nil)
	}

	return t, nil
}

// NewTxFromMsgTx wraps an already decoded wire transaction.
func NewTxFromMsgTx(msgTx *wire.MsgTx) *Tx {
	return &Tx{msgTx: *msgTx}
}

// MsgTx returns the underlying wire transaction.
func (t *Tx) MsgTx() *wire.MsgTx {
	return &t.msgTx
}

// TxHash returns the transaction hash (the txid, excluding witness data).
func (t *Tx) TxHash() chainhash.Hash {
	return t.msgTx.TxHash()
}

// Serialize encodes the transaction to its canonical binary wire form.  For
// any Tx produced by NewTxFromBytes the result is byte-identical to the
// original input.
func (t *Tx) Serialize() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, t.msgTx.SerializeSize()))
	if err := t.msgTx.Serialize(buf); err != nil {
		str := "failed to serialize transaction"
		return nil, codecError(ErrSerialize, str, err)
	}
	return buf.Bytes(), nil
}

// Size returns the total serialized size of the transaction in bytes,
// including witness data.
func (t *Tx) Size() int {
	return t.msgTx.SerializeSize()
}

// Weight returns the transaction weight, calculated as
// `base size * 3 + total size`, which is equivalent to counting witness
// bytes once and non-witness bytes four times.
func (t *Tx) Weight() unit.WeightUnit {
	baseSize := t.msgTx.SerializeSizeStripped()
	totalSize := t.msgTx.SerializeSize()

	weight := baseSize*(witnessScaleFactor-1) + totalSize

	return unit.NewWeightUnit(uint64(weight))
}

// VSize returns the virtual transaction size, defined by BIP141 as the
// weight divided by four, rounded up to the next integer.
func (t *Tx) VSize() unit.VByte {
	return t.Weight().ToVB()
}
