package bitcoin

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
	"github.com/goodnatureofminers/btc-blockstats/pkg/safe"
)

// txOutSetInfo mirrors the gettxoutsetinfo reply. Bitcoin Core renamed hash_serialized_2 to
// hash_serialized_3 in v26, so both are accepted.
type txOutSetInfo struct {
	Height          int64   `json:"height"`
	BestBlock       string  `json:"bestblock"`
	Transactions    int64   `json:"transactions"`
	TxOuts          int64   `json:"txouts"`
	BogoSize        int64   `json:"bogosize"`
	HashSerialized2 string  `json:"hash_serialized_2"`
	HashSerialized3 string  `json:"hash_serialized_3"`
	MuHash          string  `json:"muhash"`
	DiskSize        int64   `json:"disk_size"`
	TotalAmount     float64 `json:"total_amount"`
}

// BtcToAmount converts a BTC value reported by the node into a non-negative btcutil.Amount.
func BtcToAmount(value float64) (btcutil.Amount, error) {
	amt, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("negative amount: %d", amt)
	}
	return amt, nil
}

// BuildBlockHeader maps a verbose getblock result into a model.BlockHeader.
func BuildBlockHeader(src btcjson.GetBlockVerboseResult) (*model.BlockHeader, error) {
	if src.Hash == "" {
		return nil, errors.New("block hash is empty")
	}
	hash, err := chainhash.NewHashFromStr(src.Hash)
	if err != nil {
		return nil, fmt.Errorf("block hash %q: %w", src.Hash, err)
	}
	height, err := safe.Uint64(src.Height)
	if err != nil {
		return nil, fmt.Errorf("block %s height: %w", src.Hash, err)
	}

	var prev *chainhash.Hash
	if src.PreviousHash != "" {
		prev, err = chainhash.NewHashFromStr(src.PreviousHash)
		if err != nil {
			return nil, fmt.Errorf("block %s previous hash %q: %w", src.Hash, src.PreviousHash, err)
		}
	}

	if len(src.Tx) == 0 {
		return nil, fmt.Errorf("block %s has no transactions", src.Hash)
	}
	txCount, err := safe.Uint64(len(src.Tx))
	if err != nil {
		return nil, fmt.Errorf("block %s tx count: %w", src.Hash, err)
	}

	return &model.BlockHeader{
		Height:    height,
		Hash:      *hash,
		PrevHash:  prev,
		Timestamp: time.Unix(src.Time, 0).UTC(),
		TxCount:   txCount,
	}, nil
}

// BuildUTXOSetSummary decodes a gettxoutsetinfo result, keeping the raw payload.
func BuildUTXOSetSummary(raw json.RawMessage) (*model.UTXOSetSummary, error) {
	var src txOutSetInfo
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("decode utxo set info: %w", err)
	}

	height, err := safe.Uint64(src.Height)
	if err != nil {
		return nil, fmt.Errorf("utxo set height: %w", err)
	}
	transactions, err := safe.Uint64(src.Transactions)
	if err != nil {
		return nil, fmt.Errorf("utxo set transactions: %w", err)
	}
	txOuts, err := safe.Uint64(src.TxOuts)
	if err != nil {
		return nil, fmt.Errorf("utxo set txouts: %w", err)
	}
	bogoSize, err := safe.Uint64(src.BogoSize)
	if err != nil {
		return nil, fmt.Errorf("utxo set bogosize: %w", err)
	}
	diskSize, err := safe.Uint64(src.DiskSize)
	if err != nil {
		return nil, fmt.Errorf("utxo set disk size: %w", err)
	}
	total, err := BtcToAmount(src.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("utxo set total amount: %w", err)
	}

	hashSerialized := src.HashSerialized3
	if hashSerialized == "" {
		hashSerialized = src.HashSerialized2
	}
	if hashSerialized == "" {
		hashSerialized = src.MuHash
	}

	return &model.UTXOSetSummary{
		Height:         height,
		BestBlock:      src.BestBlock,
		Transactions:   transactions,
		TxOuts:         txOuts,
		BogoSize:       bogoSize,
		HashSerialized: hashSerialized,
		DiskSize:       diskSize,
		TotalAmount:    total,
		Raw:            append(json.RawMessage(nil), raw...),
	}, nil
}
