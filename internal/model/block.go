// Package model defines the read-only projections fetched from a Bitcoin node.
package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockHeader is the subset of a block used to derive per-block statistics.
type BlockHeader struct {
	Height uint64
	Hash   chainhash.Hash
	// PrevHash is nil for the genesis block.
	PrevHash  *chainhash.Hash
	Timestamp time.Time
	TxCount   uint64
}

// IsGenesis reports whether the header has no predecessor.
func (h BlockHeader) IsGenesis() bool {
	return h.PrevHash == nil
}
