// Package metrics holds the Prometheus collectors of a blockstats run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btc_blockstats",
		Subsystem: "rpc_client",
		Name:      "operations_total",
		Help:      "JSON-RPC calls sent to the bitcoin node, by method and outcome.",
	}, []string{"operation", "network", "status"})
	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "btc_blockstats",
		Subsystem: "rpc_client",
		Name:      "operation_duration_seconds",
		Help:      "Wall time of JSON-RPC calls to the bitcoin node, including the UTXO scan.",
		// gettxoutsetinfo scans the whole chainstate and may run for minutes.
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 240, 480},
	}, []string{"operation", "network", "status"})
)

// RPCClient implements bitcoin.RPCMetrics. Operation is the JSON-RPC method name.
type RPCClient struct {
	network model.Network
}

// NewRPCClient labels every observation with network, "unknown" when empty.
func NewRPCClient(network model.Network) *RPCClient {
	if network == "" {
		network = "unknown"
	}
	return &RPCClient{network: network}
}

// Observe counts one finished call and its latency since started.
func (m RPCClient) Observe(operation string, err error, started time.Time) {
	labels := prometheus.Labels{"operation": operation, "network": string(m.network), "status": callStatus(err)}
	rpcRequestsTotal.With(labels).Inc()
	rpcRequestDuration.With(labels).Observe(time.Since(started).Seconds())
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
