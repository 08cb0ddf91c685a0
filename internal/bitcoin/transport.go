package bitcoin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcjson"
)

// response is the JSON-RPC 1.0 envelope returned by the node.
type response struct {
	Result json.RawMessage   `json:"result"`
	Error  *btcjson.RPCError `json:"error"`
	ID     any               `json:"id"`
}

// call sends one request for cmd and decodes its result into result.
// The request is bounded by timeout on top of ctx and is never retried.
func (c *Connector) call(ctx context.Context, timeout time.Duration, method string, cmd, result any) error {
	body, err := btcjson.MarshalCmd(btcjson.RpcVersion1, c.nextID.Add(1), cmd)
	if err != nil {
		return newRPCError(method, ErrTransport, fmt.Errorf("marshal request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.waitTurn(ctx); err != nil {
		return newRPCError(method, failureKind(ctx), fmt.Errorf("rate limit: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return newRPCError(method, ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return newRPCError(method, failureKind(ctx), err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return newRPCError(method, ErrUnauthorized, fmt.Errorf("http status %d", res.StatusCode))
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return newRPCError(method, failureKind(ctx), fmt.Errorf("read response: %w", err))
	}

	var envelope response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		if res.StatusCode != http.StatusOK {
			return newRPCError(method, ErrTransport, fmt.Errorf("http status %d", res.StatusCode))
		}
		return newRPCError(method, ErrMalformedResponse, fmt.Errorf("decode response: %w", err))
	}
	if envelope.Error != nil {
		return nodeError(method, envelope.Error)
	}
	if res.StatusCode != http.StatusOK {
		return newRPCError(method, ErrTransport, fmt.Errorf("http status %d", res.StatusCode))
	}

	if len(envelope.Result) == 0 || bytes.Equal(envelope.Result, []byte("null")) {
		return newRPCError(method, ErrMalformedResponse, errors.New("empty result"))
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return newRPCError(method, ErrMalformedResponse, fmt.Errorf("decode result: %w", err))
	}
	return nil
}

// waitTurn blocks until the limiter admits a call or ctx is done.
// An abandoned wait still consumes its slot when it fires.
func (c *Connector) waitTurn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	admitted := make(chan struct{})
	go func() {
		c.limiter.Take()
		close(admitted)
	}()
	select {
	case <-admitted:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failureKind(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrTransport
}
