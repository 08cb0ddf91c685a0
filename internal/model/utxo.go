package model

import (
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil"
)

// UTXOSetSummary is the node's gettxoutsetinfo result. Raw keeps the verbatim payload.
type UTXOSetSummary struct {
	Height         uint64
	BestBlock      string
	Transactions   uint64
	TxOuts         uint64
	BogoSize       uint64
	HashSerialized string
	DiskSize       uint64
	TotalAmount    btcutil.Amount
	Raw            json.RawMessage
}
