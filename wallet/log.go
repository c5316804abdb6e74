// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"github.com/btcsuite/btclog"

	"github.com/yukibtc/bdk-go/chain"
	"github.com/yukibtc/bdk-go/waddrmgr"
	"github.com/yukibtc/bdk-go/wtxmgr"
)

// log is a logger that is initialized with no output filters.  This
// means the package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// The default amount of logging is none.
func init() {
	DisableLog()
}

// DisableLog disables all library log output.  Logging output is disabled
// by default until UseLogger is called.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.  The
// logger is forwarded to the packages the wallet is built from, so enabling
// wallet logging enables theirs as well.
func UseLogger(logger btclog.Logger) {
	log = logger
	waddrmgr.UseLogger(logger)
	wtxmgr.UseLogger(logger)
	chain.UseLogger(logger)
}
