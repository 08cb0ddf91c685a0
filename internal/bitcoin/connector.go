// Package bitcoin implements a read-only JSON-RPC connector to a single Bitcoin node.
package bitcoin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/ratelimit"

	"github.com/goodnatureofminers/btc-blockstats/internal/model"
	"github.com/goodnatureofminers/btc-blockstats/pkg/safe"
)

const (
	// DefaultTimeout bounds every call that is not given its own deadline.
	DefaultTimeout = 30 * time.Second
	// DefaultUTXOScanTimeout is the budget for a full chainstate scan by gettxoutsetinfo.
	DefaultUTXOScanTimeout = 8 * time.Minute
)

const (
	methodGetBlockCount   = "getblockcount"
	methodGetBlockHash    = "getblockhash"
	methodGetBlock        = "getblock"
	methodGetTxOutSetInfo = "gettxoutsetinfo"
)

type noopMetrics struct{}

func (noopMetrics) Observe(string, error, time.Time) {}

// Config holds the connection settings. It is copied into the Connector and never mutated.
type Config struct {
	URL      string
	User     string
	Password string
	// Timeout is the default per-call deadline. Zero means DefaultTimeout.
	Timeout time.Duration
	// RateLimit caps calls per second. Zero disables limiting.
	RateLimit int
}

// Option customizes a Connector.
type Option func(*Connector)

// WithMetrics instruments every call with m.
func WithMetrics(m RPCMetrics) Option {
	return func(c *Connector) {
		if m != nil {
			c.rpcMetrics = m
		}
	}
}

// WithHTTPClient replaces the pooled HTTP client. The client must not set its own Timeout
// shorter than the longest per-call deadline.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		c.httpClient = client
	}
}

// Connector issues authenticated, deadline-bounded read calls to one node.
// Each call is a single HTTP attempt; failures are returned as *RPCError.
type Connector struct {
	endpoint   string
	user       string
	password   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    ratelimit.Limiter
	rpcMetrics RPCMetrics
	nextID     atomic.Uint64
}

// Connect validates cfg and builds a reusable transport. Credentials are checked by the
// node on the first call.
func Connect(cfg Config, opts ...Option) (*Connector, error) {
	endpoint, user, password, err := parseEndpoint(cfg.URL, cfg.User, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout %s", ErrConnection, cfg.Timeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("%w: negative rate limit %d", ErrConnection, cfg.RateLimit)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Connector{
		endpoint:   endpoint,
		user:       user,
		password:   password,
		timeout:    timeout,
		httpClient: cleanhttp.DefaultPooledClient(),
		limiter:    ratelimit.NewUnlimited(),
		rpcMetrics: noopMetrics{},
	}
	if cfg.RateLimit > 0 {
		c.limiter = ratelimit.New(cfg.RateLimit)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, fmt.Errorf("%w: nil http client", ErrConnection)
	}

	return c, nil
}

func parseEndpoint(rawURL, user, password string) (string, string, string, error) {
	if rawURL == "" {
		return "", "", "", errors.New("rpc url is empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", "", "", fmt.Errorf("rpc url scheme %q not supported, use http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", "", "", errors.New("rpc url missing host")
	}

	// Credentials embedded in the URL are used only when none were configured.
	if parsed.User != nil {
		if user == "" {
			user = parsed.User.Username()
			password, _ = parsed.User.Password()
		}
		parsed.User = nil
	}

	return parsed.String(), user, password, nil
}

// Timeout returns the default per-call deadline.
func (c *Connector) Timeout() time.Duration {
	return c.timeout
}

// GetBlockCount returns the height of the node's chain tip.
func (c *Connector) GetBlockCount(ctx context.Context) (count uint64, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(methodGetBlockCount, err, started)
	}()

	var raw int64
	if err := c.call(ctx, c.timeout, methodGetBlockCount, btcjson.NewGetBlockCountCmd(), &raw); err != nil {
		return 0, err
	}
	count, err = safe.Uint64(raw)
	if err != nil {
		return 0, newRPCError(methodGetBlockCount, ErrMalformedResponse, err)
	}
	return count, nil
}

// GetBlockHash returns the hash of the main-chain block at height.
// A height above the tip fails with ErrNotFound.
func (c *Connector) GetBlockHash(ctx context.Context, height uint64) (hash *chainhash.Hash, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(methodGetBlockHash, err, started)
	}()

	index, err := safe.Int64(height)
	if err != nil {
		return nil, newRPCError(methodGetBlockHash, ErrNotFound, fmt.Errorf("block height %d: %w", height, err))
	}

	var raw string
	if err := c.call(ctx, c.timeout, methodGetBlockHash, btcjson.NewGetBlockHashCmd(index), &raw); err != nil {
		return nil, err
	}
	hash, err = chainhash.NewHashFromStr(raw)
	if err != nil {
		return nil, newRPCError(methodGetBlockHash, ErrMalformedResponse, fmt.Errorf("block hash %q: %w", raw, err))
	}
	return hash, nil
}

// GetBlock returns the header projection of the block identified by hash.
// A hash unknown to the node fails with ErrNotFound.
func (c *Connector) GetBlock(ctx context.Context, hash *chainhash.Hash) (header *model.BlockHeader, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(methodGetBlock, err, started)
	}()

	if hash == nil {
		return nil, newRPCError(methodGetBlock, ErrNotFound, errors.New("nil block hash"))
	}

	var src btcjson.GetBlockVerboseResult
	cmd := btcjson.NewGetBlockCmd(hash.String(), btcjson.Int(1))
	if err := c.call(ctx, c.timeout, methodGetBlock, cmd, &src); err != nil {
		return nil, err
	}
	header, err = BuildBlockHeader(src)
	if err != nil {
		return nil, newRPCError(methodGetBlock, ErrMalformedResponse, err)
	}
	return header, nil
}

// GetUTXOSetSummary runs gettxoutsetinfo under its own deadline, independent of the
// connector's default timeout. A non-positive timeout means DefaultUTXOScanTimeout.
func (c *Connector) GetUTXOSetSummary(ctx context.Context, timeout time.Duration) (summary *model.UTXOSetSummary, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe(methodGetTxOutSetInfo, err, started)
	}()

	if timeout <= 0 {
		timeout = DefaultUTXOScanTimeout
	}

	var raw json.RawMessage
	if err := c.call(ctx, timeout, methodGetTxOutSetInfo, btcjson.NewGetTxOutSetInfoCmd(), &raw); err != nil {
		return nil, err
	}
	summary, err = BuildUTXOSetSummary(raw)
	if err != nil {
		return nil, newRPCError(methodGetTxOutSetInfo, ErrMalformedResponse, err)
	}
	return summary, nil
}
