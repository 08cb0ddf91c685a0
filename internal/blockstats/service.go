// Package blockstats derives per-block statistics from node queries.
package blockstats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
)

// ErrGenesisBlock is returned when a statistic needs the predecessor of the genesis block.
var ErrGenesisBlock = errors.New("genesis block has no previous block")

// Service computes block statistics. It keeps no state between calls.
type Service struct {
	node NodeClient
}

// NewService builds a Service reading blocks through node.
func NewService(node NodeClient) *Service {
	return &Service{node: node}
}

// TimeToMine returns the timestamp difference between the block at height and its
// predecessor. Block times are miner-supplied, so the result may be negative.
func (s *Service) TimeToMine(ctx context.Context, height uint64) (time.Duration, error) {
	if height == 0 {
		return 0, fmt.Errorf("time to mine block 0: %w", ErrGenesisBlock)
	}

	header, err := s.headerAt(ctx, height)
	if err != nil {
		return 0, err
	}
	return s.timeSincePrevious(ctx, header)
}

// TransactionCount returns the number of transactions in the block at height.
func (s *Service) TransactionCount(ctx context.Context, height uint64) (uint64, error) {
	header, err := s.headerAt(ctx, height)
	if err != nil {
		return 0, err
	}
	return header.TxCount, nil
}

func (s *Service) headerAt(ctx context.Context, height uint64) (*model.BlockHeader, error) {
	hash, err := s.node.GetBlockHash(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	header, err := s.node.GetBlock(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}
	return header, nil
}

func (s *Service) timeSincePrevious(ctx context.Context, header *model.BlockHeader) (time.Duration, error) {
	if header.IsGenesis() {
		return 0, fmt.Errorf("time to mine block %s: %w", header.Hash, ErrGenesisBlock)
	}
	prev, err := s.node.GetBlock(ctx, header.PrevHash)
	if err != nil {
		return 0, fmt.Errorf("get previous block %s: %w", header.PrevHash, err)
	}
	return header.Timestamp.Sub(prev.Timestamp), nil
}
