// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/jessevdk/go-flags"

	"github.com/yukibtc/bdk-go/internal/cfgutil"
	"github.com/yukibtc/bdk-go/netparams"
	"github.com/yukibtc/bdk-go/wtxmgr"
)

var wtxmgrNamespace = []byte("wtxmgr")

// Flags.
var opts = struct {
	DbPath    string             `long:"db" description:"Path to wallet database" required:"true"`
	Network   string             `long:"network" description:"Network the wallet tracks" default:"mainnet"`
	Txs       bool               `long:"txs" description:"List wallet transactions"`
	Utxos     bool               `long:"utxos" description:"List unspent outputs"`
	MinAmount *cfgutil.AmountFlag `long:"minamount" description:"Hide unspent outputs below this amount"`
	Debug     bool               `long:"debug" description:"Enable debug logging"`
}{
	MinAmount: cfgutil.NewAmountFlag(0),
}

func main() {
	os.Exit(mainInt())
}

func mainInt() int {
	if _, err := flags.Parse(&opts); err != nil {
		return 1
	}

	if opts.Debug {
		backend := btclog.NewBackend(os.Stderr)
		logger := backend.Logger("TXST")
		logger.SetLevel(btclog.LevelDebug)
		wtxmgr.UseLogger(logger)
	}

	params, err := netparams.ByName(opts.Network)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if _, err := os.Stat(opts.DbPath); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Database file does not exist")
		return 1
	}

	db, err := walletdb.Open("bdb", opts.DbPath, true, 10*time.Second, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open database:", err)
		return 1
	}
	defer db.Close()

	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(wtxmgrNamespace)
		if ns == nil {
			return fmt.Errorf("database holds no wallet state")
		}

		store, err := wtxmgr.Open(ns)
		if err != nil {
			return err
		}

		height := store.SyncedTo(ns)
		if height.IsSome() {
			fmt.Println("Synced to height:",
				height.UnsafeFromSome())
		} else {
			fmt.Println("Wallet has never synced")
		}

		bal, err := store.Balance(ns, height.UnwrapOr(0),
			uint32(params.CoinbaseMaturity))
		if err != nil {
			return err
		}
		fmt.Println("Confirmed:        ", bal.Confirmed)
		fmt.Println("Trusted pending:  ", bal.TrustedPending)
		fmt.Println("Untrusted pending:", bal.UntrustedPending)
		fmt.Println("Immature:         ", bal.Immature)
		fmt.Println("Spendable:        ", bal.Spendable())
		fmt.Println("Total:            ", bal.Total())

		if opts.Utxos {
			credits, err := store.UnspentCredits(ns)
			if err != nil {
				return err
			}
			fmt.Printf("\n%d unspent outputs:\n", len(credits))
			for _, c := range credits {
				if c.Amount < opts.MinAmount.Amount {
					continue
				}
				fmt.Printf("  %v  %v  %s (%s)\n", c.OutPoint,
					c.Amount, c.Address.UnwrapOr("<no address>"),
					c.Keychain)
			}
		}

		if opts.Txs {
			details, err := store.ListTxDetails(ns)
			if err != nil {
				return err
			}
			fmt.Printf("\n%d transactions:\n", len(details))
			for _, d := range details {
				confirmed := "unconfirmed"
				d.Block.WhenSome(func(b wtxmgr.BlockMeta) {
					confirmed = fmt.Sprintf("height %d",
						b.Height)
				})
				fee := "unknown fee"
				d.Fee.WhenSome(func(amt btcutil.Amount) {
					fee = fmt.Sprintf("fee %v", amt)
				})
				fmt.Printf("  %v  received %v, sent %v, %s, %s\n",
					d.TxHash, d.Received, d.Sent, fee,
					confirmed)
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
