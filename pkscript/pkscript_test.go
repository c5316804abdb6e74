package pkscript

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func hexToBytes(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// TestAddressExtraction checks the script to address direction for the
// common standard script forms.
func TestAddressExtraction(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pkScript string
		params   *chaincfg.Params
		expected string
	}{{
		name: "p2pkh mainnet",
		pkScript: "76a914b8332d502a529571c6af4be66399cd33379071c5" +
			"88ac",
		params:   &chaincfg.MainNetParams,
		expected: "1Hnxe8yEcQafTx85EhHWoV4zpEgFUJeDvM",
	}, {
		name:     "p2sh mainnet",
		pkScript: "a91476fd7035cd26f1a32a5ab979e056713aac25796887",
		params:   &chaincfg.MainNetParams,
		expected: "3CYBGPAe72q5wbTRYa2JE7RRzqUKafn4en",
	}, {
		name: "p2wpkh mainnet",
		pkScript: "00140914414d3c94af70ac7e25407b0689e0baa10c77",
		params:   &chaincfg.MainNetParams,
		expected: "bc1qpy2yznfujjhhptr7y4q8kp5fuza2zrrh4a9ygr",
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			addr, err := AddressString(
				hexToBytes(t, tc.pkScript), tc.params,
			)
			require.NoError(t, err)
			require.Equal(t, tc.expected, addr)
		})
	}
}

// TestAddressNonStandard checks that scripts without a standard address form
// fail with ErrNonStandardScript.
func TestAddressNonStandard(t *testing.T) {
	t.Parallel()

	// OP_RETURN data push has no address form.
	_, err := Address(
		hexToBytes(t, "6a0b68656c6c6f20776f726c64"),
		&chaincfg.MainNetParams,
	)
	require.ErrorIs(t, err, ErrNonStandardScript)

	// Neither does an empty script.
	_, err = Address(nil, &chaincfg.MainNetParams)
	require.ErrorIs(t, err, ErrNonStandardScript)
}

// TestScriptRoundTrip checks that converting a script to an address and back
// yields the original script.
func TestScriptRoundTrip(t *testing.T) {
	t.Parallel()

	scripts := []string{
		"76a914b8332d502a529571c6af4be66399cd33379071c588ac",
		"a91476fd7035cd26f1a32a5ab979e056713aac25796887",
		"00140914414d3c94af70ac7e25407b0689e0baa10c77",
	}

	for _, s := range scripts {
		pkScript := hexToBytes(t, s)

		addr, err := AddressString(pkScript, &chaincfg.MainNetParams)
		require.NoError(t, err)

		back, err := Script(addr, &chaincfg.MainNetParams)
		require.NoError(t, err)
		require.Equal(t, pkScript, back)
	}
}

// TestScriptWrongNetwork checks that a testnet address is rejected when the
// configured network is mainnet.
func TestScriptWrongNetwork(t *testing.T) {
	t.Parallel()

	_, err := Script(
		"tb1qpy2yznfujjhhptr7y4q8kp5fuza2zrrhlm7hns",
		&chaincfg.MainNetParams,
	)
	require.Error(t, err)
}
