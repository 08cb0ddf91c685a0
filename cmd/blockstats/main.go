package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/btc-blockstats/internal/bitcoin"
	"github.com/goodnatureofminers/btc-blockstats/internal/blockstats"
	"github.com/goodnatureofminers/btc-blockstats/internal/config"
	"github.com/goodnatureofminers/btc-blockstats/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("failed to load .env file", zap.Error(err))
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, ferr.Message)
			return
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Fatal("blockstats failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, out io.Writer, logger *zap.Logger) error {
	node, err := bitcoin.Connect(cfg.Connector(), bitcoin.WithMetrics(metrics.NewRPCClient(cfg.Network)))
	if err != nil {
		return fmt.Errorf("init bitcoin connector: %w", err)
	}
	stats := metrics.NewBlockStats(cfg.Network)
	report := newReporter(out)

	if cfg.SkipUTXO {
		logger.Info("skipping utxo set scan")
	} else {
		logger.Info("scanning utxo set", zap.Duration("timeout", cfg.UTXOScanTimeout))
		summary, err := node.GetUTXOSetSummary(ctx, cfg.UTXOScanTimeout)
		if err != nil {
			return fmt.Errorf("get utxo set summary: %w", err)
		}
		stats.ObserveUTXOSet(*summary)
		report.UTXOSet(summary)
	}

	tip, err := node.GetBlockCount(ctx)
	if err != nil {
		return fmt.Errorf("get latest block height: %w", err)
	}
	stats.ObserveTip(tip)
	report.LatestHeight(tip)

	height := tip
	if fixed, ok := cfg.FixedHeight(); ok {
		height = fixed
	}

	svc := blockstats.NewService(node)

	elapsed, err := svc.TimeToMine(ctx, height)
	switch {
	case errors.Is(err, blockstats.ErrGenesisBlock):
		logger.Warn("time to mine is undefined for the genesis block", zap.Uint64("height", height))
		report.TimeToMineUndefined(height)
		stats.ForgetTimeToMine()
	case err != nil:
		return fmt.Errorf("time to mine block %d: %w", height, err)
	default:
		report.TimeToMine(height, elapsed)
		stats.ObserveTimeToMine(elapsed)
	}

	txCount, err := svc.TransactionCount(ctx, height)
	if err != nil {
		return fmt.Errorf("transaction count of block %d: %w", height, err)
	}
	report.TransactionCount(height, txCount)
	stats.ObserveBlock(height, txCount)

	if err := report.Err(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return err
		}
		logger.Info("metrics written", zap.String("path", cfg.MetricsTextfile))
	}

	return nil
}
