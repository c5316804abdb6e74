// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	t.Parallel()

	for _, want := range []Params{
		MainNetParams, TestNet3Params, SigNetParams,
		RegressionNetParams,
	} {
		got, err := ByName(want.Name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ByName("testnet4ever")
	require.Error(t, err)
}
