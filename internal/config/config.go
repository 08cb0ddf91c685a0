// Package config loads the command line and environment settings of the blockstats tool.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/goodnatureofminers/btc-blockstats/internal/bitcoin"
	"github.com/goodnatureofminers/btc-blockstats/internal/model"
	"github.com/goodnatureofminers/btc-blockstats/internal/pkg/validator"
)

// ErrConfiguration marks a missing or malformed setting. It is always fatal.
var ErrConfiguration = errors.New("invalid configuration")

// TipHeight selects the node's chain tip instead of a fixed height.
const TipHeight int64 = -1

// Config holds every setting of one run. Environment variables are the primary source,
// flags override them.
type Config struct {
	RPCURL          string        `long:"rpc-url" env:"BITCOIN_RPC_URL" description:"Bitcoin RPC URL" validate:"required,url"`
	RPCUser         string        `long:"rpc-user" env:"BITCOIN_RPC_USER" description:"Bitcoin RPC username" validate:"required"`
	RPCPassword     string        `long:"rpc-password" env:"BITCOIN_RPC_PASSWORD" description:"Bitcoin RPC password" validate:"required"`
	RPCTimeout      time.Duration `long:"rpc-timeout" env:"BITCOIN_RPC_TIMEOUT" description:"timeout for ordinary RPC calls" default:"30s" validate:"gt=0s"`
	RPCRateLimit    int           `long:"rpc-rate-limit" env:"BITCOIN_RPC_RATE_LIMIT" description:"max RPC calls per second, 0 disables" default:"0" validate:"gte=0"`
	UTXOScanTimeout time.Duration `long:"utxo-scan-timeout" env:"BLOCKSTATS_UTXO_SCAN_TIMEOUT" description:"timeout for the UTXO set scan" default:"8m" validate:"gt=0s"`
	SkipUTXO        bool          `long:"skip-utxo" env:"BLOCKSTATS_SKIP_UTXO" description:"skip the UTXO set scan"`
	Height          int64         `long:"height" env:"BLOCKSTATS_HEIGHT" description:"block height to measure, -1 for the chain tip" default:"-1" validate:"gte=-1"`
	Network         model.Network `long:"network" env:"BLOCKSTATS_NETWORK" description:"network label for metrics" default:"mainnet" validate:"oneof=mainnet testnet signet regtest"`
	MetricsTextfile string        `long:"metrics-textfile" env:"BLOCKSTATS_METRICS_TEXTFILE" description:"write Prometheus metrics to this file"`
}

// Load parses args (without the program name) and the environment, then validates the
// result. A help request is returned as a *flags.Error of type flags.ErrHelp.
func Load(args []string) (Config, error) {
	cfg := Config{}

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := validator.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// Connector returns the connection settings for the bitcoin connector.
func (c Config) Connector() bitcoin.Config {
	return bitcoin.Config{
		URL:       c.RPCURL,
		User:      c.RPCUser,
		Password:  c.RPCPassword,
		Timeout:   c.RPCTimeout,
		RateLimit: c.RPCRateLimit,
	}
}

// FixedHeight reports the configured height, or false when the chain tip should be used.
func (c Config) FixedHeight() (uint64, bool) {
	if c.Height <= TipHeight {
		return 0, false
	}
	return uint64(c.Height), true
}
