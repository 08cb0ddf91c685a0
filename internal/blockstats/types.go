package blockstats

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	NodeClient interface {
		GetBlockHash(ctx context.Context, height uint64) (*chainhash.Hash, error)
		GetBlock(ctx context.Context, hash *chainhash.Hash) (*model.BlockHeader, error)
	}
)
