package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
)

var (
	chainTipHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "chain",
		Name:      "tip_height",
		Help:      "Height of the node's chain tip.",
	}, []string{"network"})
	blockTimeToMine = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "block",
		Name:      "time_to_mine_seconds",
		Help:      "Timestamp difference between the measured block and its predecessor.",
	}, []string{"network"})
	blockTransactions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "block",
		Name:      "transactions",
		Help:      "Number of transactions in the measured block.",
	}, []string{"network"})
	blockHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "block",
		Name:      "height",
		Help:      "Height of the measured block.",
	}, []string{"network"})
	utxoTxOuts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "utxo_set",
		Name:      "txouts",
		Help:      "Number of unspent transaction outputs.",
	}, []string{"network"})
	utxoTotalAmount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "btc_blockstats",
		Subsystem: "utxo_set",
		Name:      "total_amount_btc",
		Help:      "Total amount held by the UTXO set in BTC.",
	}, []string{"network"})
)

// BlockStats publishes the statistics computed in one run.
type BlockStats struct {
	network model.Network
}

// NewBlockStats constructs a collector labelled with network.
func NewBlockStats(network model.Network) *BlockStats {
	if network == "" {
		network = "unknown"
	}
	return &BlockStats{network: network}
}

// ObserveTip records the chain tip height.
func (m BlockStats) ObserveTip(height uint64) {
	chainTipHeight.WithLabelValues(string(m.network)).Set(float64(height))
}

// ObserveBlock records the height and transaction count of the measured block.
func (m BlockStats) ObserveBlock(height uint64, txCount uint64) {
	blockHeight.WithLabelValues(string(m.network)).Set(float64(height))
	blockTransactions.WithLabelValues(string(m.network)).Set(float64(txCount))
}

// ObserveTimeToMine records the mining time of the measured block.
func (m BlockStats) ObserveTimeToMine(d time.Duration) {
	blockTimeToMine.WithLabelValues(string(m.network)).Set(d.Seconds())
}

// ForgetTimeToMine drops the mining time series. Used when the block has no predecessor.
func (m BlockStats) ForgetTimeToMine() {
	blockTimeToMine.DeleteLabelValues(string(m.network))
}

// ObserveUTXOSet records the UTXO set summary.
func (m BlockStats) ObserveUTXOSet(summary model.UTXOSetSummary) {
	utxoTxOuts.WithLabelValues(string(m.network)).Set(float64(summary.TxOuts))
	utxoTotalAmount.WithLabelValues(string(m.network)).Set(summary.TotalAmount.ToBTC())
}
