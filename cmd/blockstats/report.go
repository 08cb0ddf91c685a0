package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
)

// reporter writes the human-readable result lines. The first write error is kept and
// later writes are skipped.
type reporter struct {
	out io.Writer
	err error
}

func newReporter(out io.Writer) *reporter {
	return &reporter{out: out}
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *reporter) UTXOSet(s *model.UTXOSetSummary) {
	r.printf("UTXO set: height=%d bestblock=%s transactions=%d txouts=%d bogosize=%d hash_serialized=%s disk_size=%d total_amount=%s",
		s.Height, s.BestBlock, s.Transactions, s.TxOuts, s.BogoSize, s.HashSerialized, s.DiskSize, s.TotalAmount)
}

func (r *reporter) LatestHeight(height uint64) {
	r.printf("Latest block height: %d", height)
}

func (r *reporter) TimeToMine(height uint64, d time.Duration) {
	r.printf("Time to mine block %d: %s", height, d)
}

func (r *reporter) TimeToMineUndefined(height uint64) {
	r.printf("Time to mine block %d: undefined (genesis block)", height)
}

func (r *reporter) TransactionCount(height uint64, count uint64) {
	r.printf("Number of transactions in block %d: %d", height, count)
}

func (r *reporter) Err() error {
	return r.err
}
