// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wtxmgr

import (
	"encoding/binary"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/yukibtc/bdk-go/waddrmgr"
)

var (
	// bucketUtxos stores the serialized credits keyed by canonical
	// outpoint.
	bucketUtxos = []byte("utxos")

	// bucketTxRecords stores the raw serialized transactions keyed by
	// txid.
	bucketTxRecords = []byte("txrecords")

	// bucketTxDetails stores the reconciled per-transaction summaries
	// keyed by txid.
	bucketTxDetails = []byte("txdetails")

	// bucketSelfTxs marks the txids of transactions funded entirely by
	// wallet-owned inputs.
	bucketSelfTxs = []byte("selftxs")

	// bucketMeta stores store-level metadata.
	bucketMeta = []byte("meta")

	// keySyncedTo locates the height of the last applied resync within
	// the meta bucket.
	keySyncedTo = []byte("syncedto")
)

// byteOrder is the byte order used for all serialized numbers.
var byteOrder = binary.LittleEndian

// Credit value flags.
const (
	flagSpent = 1 << iota
	flagFromCoinBase
	flagFromSelf
	flagInternalKeychain
	flagHasHeight
	flagHasAddress
)

// TxDetails value flags.
const (
	flagHasFee = 1 << iota
	flagHasBlock
)

// canonicalOutPoint returns the byte key of an outpoint: the txid followed
// by the big-endian output index.
func canonicalOutPoint(op *wire.OutPoint) []byte {
	k := make([]byte, 36)
	copy(k, op.Hash[:])
	binary.BigEndian.PutUint32(k[32:], op.Index)
	return k
}

// readCanonicalOutPoint decodes an outpoint key written by
// canonicalOutPoint.
func readCanonicalOutPoint(k []byte, op *wire.OutPoint) error {
	if len(k) != 36 {
		str := "malformed outpoint key"
		return storeError(ErrData, str, nil)
	}
	copy(op.Hash[:], k[:32])
	op.Index = binary.BigEndian.Uint32(k[32:])
	return nil
}

// valueCredit serializes the value portion of a credit.
func valueCredit(c *Credit) []byte {
	size := 8 + 1
	var flags byte

	if c.Spent {
		flags |= flagSpent
	}
	if c.FromCoinBase {
		flags |= flagFromCoinBase
	}
	if c.FromSelf {
		flags |= flagFromSelf
	}
	if c.Keychain == waddrmgr.KeychainInternal {
		flags |= flagInternalKeychain
	}
	if c.Height.IsSome() {
		flags |= flagHasHeight
		size += 4
	}

	addr := c.Address.UnwrapOr("")
	if c.Address.IsSome() {
		flags |= flagHasAddress
		size += 4 + len(addr)
	}
	size += 4 + len(c.PkScript)

	v := make([]byte, 0, size)
	var scratch [8]byte

	byteOrder.PutUint64(scratch[:], uint64(c.Amount))
	v = append(v, scratch[:]...)
	v = append(v, flags)

	c.Height.WhenSome(func(height uint32) {
		byteOrder.PutUint32(scratch[:4], height)
		v = append(v, scratch[:4]...)
	})

	byteOrder.PutUint32(scratch[:4], uint32(len(c.PkScript)))
	v = append(v, scratch[:4]...)
	v = append(v, c.PkScript...)

	if c.Address.IsSome() {
		byteOrder.PutUint32(scratch[:4], uint32(len(addr)))
		v = append(v, scratch[:4]...)
		v = append(v, addr...)
	}

	return v
}

// readCredit deserializes a credit from its key and value.
func readCredit(k, v []byte, c *Credit) error {
	if err := readCanonicalOutPoint(k, &c.OutPoint); err != nil {
		return err
	}
	if len(v) < 9 {
		str := "credit value truncated"
		return storeError(ErrData, str, nil)
	}

	c.Amount = btcutil.Amount(byteOrder.Uint64(v[:8]))
	flags := v[8]
	v = v[9:]

	c.Spent = flags&flagSpent != 0
	c.FromCoinBase = flags&flagFromCoinBase != 0
	c.FromSelf = flags&flagFromSelf != 0
	c.Keychain = waddrmgr.KeychainExternal
	if flags&flagInternalKeychain != 0 {
		c.Keychain = waddrmgr.KeychainInternal
	}

	c.Height = fn.None[uint32]()
	if flags&flagHasHeight != 0 {
		if len(v) < 4 {
			str := "credit height truncated"
			return storeError(ErrData, str, nil)
		}
		c.Height = fn.Some(byteOrder.Uint32(v[:4]))
		v = v[4:]
	}

	if len(v) < 4 {
		str := "credit script length truncated"
		return storeError(ErrData, str, nil)
	}
	scriptLen := byteOrder.Uint32(v[:4])
	v = v[4:]
	if uint32(len(v)) < scriptLen {
		str := "credit script truncated"
		return storeError(ErrData, str, nil)
	}
	c.PkScript = make([]byte, scriptLen)
	copy(c.PkScript, v[:scriptLen])
	v = v[scriptLen:]

	c.Address = fn.None[string]()
	if flags&flagHasAddress != 0 {
		if len(v) < 4 {
			str := "credit address length truncated"
			return storeError(ErrData, str, nil)
		}
		addrLen := byteOrder.Uint32(v[:4])
		v = v[4:]
		if uint32(len(v)) < addrLen {
			str := "credit address truncated"
			return storeError(ErrData, str, nil)
		}
		c.Address = fn.Some(string(v[:addrLen]))
	}

	return nil
}

// valueTxDetails serializes a transaction summary.
func valueTxDetails(d *TxDetails) []byte {
	v := make([]byte, 0, 45)
	var scratch [8]byte
	var flags byte

	if d.Fee.IsSome() {
		flags |= flagHasFee
	}
	if d.Block.IsSome() {
		flags |= flagHasBlock
	}

	byteOrder.PutUint64(scratch[:], uint64(d.Received))
	v = append(v, scratch[:]...)
	byteOrder.PutUint64(scratch[:], uint64(d.Sent))
	v = append(v, scratch[:]...)
	byteOrder.PutUint64(scratch[:], uint64(d.ReceivedTime.Unix()))
	v = append(v, scratch[:]...)
	v = append(v, flags)

	d.Fee.WhenSome(func(fee btcutil.Amount) {
		byteOrder.PutUint64(scratch[:], uint64(fee))
		v = append(v, scratch[:]...)
	})
	d.Block.WhenSome(func(block BlockMeta) {
		byteOrder.PutUint32(scratch[:4], block.Height)
		v = append(v, scratch[:4]...)
		byteOrder.PutUint64(scratch[:], uint64(block.Time.Unix()))
		v = append(v, scratch[:]...)
	})

	return v
}

// readTxDetails deserializes a transaction summary from its key and value.
func readTxDetails(k, v []byte, d *TxDetails) error {
	if len(k) != chainhash.HashSize {
		str := "malformed tx details key"
		return storeError(ErrData, str, nil)
	}
	copy(d.TxHash[:], k)

	if len(v) < 25 {
		str := "tx details value truncated"
		return storeError(ErrData, str, nil)
	}

	d.Received = btcutil.Amount(byteOrder.Uint64(v[:8]))
	d.Sent = btcutil.Amount(byteOrder.Uint64(v[8:16]))
	d.ReceivedTime = time.Unix(int64(byteOrder.Uint64(v[16:24])), 0)
	flags := v[24]
	v = v[25:]

	d.Fee = fn.None[btcutil.Amount]()
	if flags&flagHasFee != 0 {
		if len(v) < 8 {
			str := "tx details fee truncated"
			return storeError(ErrData, str, nil)
		}
		d.Fee = fn.Some(btcutil.Amount(byteOrder.Uint64(v[:8])))
		v = v[8:]
	}

	d.Block = fn.None[BlockMeta]()
	if flags&flagHasBlock != 0 {
		if len(v) < 12 {
			str := "tx details block truncated"
			return storeError(ErrData, str, nil)
		}
		d.Block = fn.Some(BlockMeta{
			Height: byteOrder.Uint32(v[:4]),
			Time:   time.Unix(int64(byteOrder.Uint64(v[4:12])), 0),
		})
	}

	return nil
}

// valueTxRecord serializes a transaction record: the observation time
// followed by the raw transaction.
func valueTxRecord(rec *TxRecord) []byte {
	v := make([]byte, 8, 8+len(rec.SerializedTx))
	byteOrder.PutUint64(v, uint64(rec.Received.Unix()))
	return append(v, rec.SerializedTx...)
}

// readTxRecord deserializes a transaction record from its key and value.
func readTxRecord(k, v []byte, rec *TxRecord) error {
	if len(k) != chainhash.HashSize {
		str := "malformed tx record key"
		return storeError(ErrData, str, nil)
	}
	if len(v) < 8 {
		str := "tx record value truncated"
		return storeError(ErrData, str, nil)
	}

	copy(rec.Hash[:], k)
	rec.Received = time.Unix(int64(byteOrder.Uint64(v[:8])), 0)
	rec.SerializedTx = make([]byte, len(v)-8)
	copy(rec.SerializedTx, v[8:])

	return nil
}

// fetchBucket returns the nested read bucket with the given key, failing
// with ErrNoExist when it is missing.
func fetchBucket(ns walletdb.ReadBucket,
	key []byte) (walletdb.ReadBucket, error) {

	bucket := ns.NestedReadBucket(key)
	if bucket == nil {
		str := "bucket " + string(key) + " does not exist"
		return nil, storeError(ErrNoExist, str, nil)
	}
	return bucket, nil
}

// fetchWriteBucket returns the nested write bucket with the given key,
// failing with ErrNoExist when it is missing.
func fetchWriteBucket(ns walletdb.ReadWriteBucket,
	key []byte) (walletdb.ReadWriteBucket, error) {

	bucket := ns.NestedReadWriteBucket(key)
	if bucket == nil {
		str := "bucket " + string(key) + " does not exist"
		return nil, storeError(ErrNoExist, str, nil)
	}
	return bucket, nil
}
