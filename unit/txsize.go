// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unit provides the units transaction sizes are expressed in.
package unit

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
)

// WeightUnit expresses a transaction size in weight units.  A transaction's
// weight is its base size (serialized without witness data) scaled by
// three, plus its total size serialized per BIP144.
type WeightUnit struct {
	val uint64
}

// NewWeightUnit creates a new WeightUnit from a uint64.
func NewWeightUnit(val uint64) WeightUnit {
	return WeightUnit{val: val}
}

// ToVB converts the weight to virtual bytes.  Per BIP141 the virtual size
// is the weight divided by the witness scale factor, rounded up.
func (wu WeightUnit) ToVB() VByte {
	const scale = blockchain.WitnessScaleFactor
	return VByte{val: (wu.val + scale - 1) / scale}
}

// Uint64 returns the weight expressed as a plain uint64.
func (wu WeightUnit) Uint64() uint64 {
	return wu.val
}

// String returns the string representation of the weight unit.
func (wu WeightUnit) String() string {
	return fmt.Sprintf("%d wu", wu.val)
}

// VByte expresses a transaction size in virtual bytes.  One virtual byte
// is one witness-scale-factor's worth of weight units.
type VByte struct {
	val uint64
}

// NewVByte creates a new VByte from a uint64.
func NewVByte(val uint64) VByte {
	return VByte{val: val}
}

// ToWU converts the virtual size to weight units.
func (vb VByte) ToWU() WeightUnit {
	return WeightUnit{val: vb.val * blockchain.WitnessScaleFactor}
}

// Uint64 returns the virtual size expressed as a plain uint64.
func (vb VByte) Uint64() uint64 {
	return vb.val
}

// String returns the string representation of the virtual byte.
func (vb VByte) String() string {
	return fmt.Sprintf("%d vb", vb.val)
}
