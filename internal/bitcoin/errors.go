package bitcoin

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
)

var (
	// ErrConnection is returned by Connect when the transport cannot be built.
	ErrConnection = errors.New("bitcoin rpc connection")
	// ErrRPC matches every per-call failure returned by the Connector.
	ErrRPC = errors.New("bitcoin rpc call failed")

	// ErrTimeout marks a call aborted by its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrUnauthorized marks a call rejected for bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks a height or hash unknown to the node.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse marks a reply that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrTransport marks a network or HTTP level failure.
	ErrTransport = errors.New("transport")
	// ErrNode marks any other error reported by the node.
	ErrNode = errors.New("node error")
)

// RPCError describes a failed call. Kind is one of the Err* kind sentinels.
type RPCError struct {
	Method string
	Kind   error
	// Code is the node's JSON-RPC error code, zero when the node did not answer with one.
	Code btcjson.RPCErrorCode
	Err  error
}

func (e *RPCError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Method, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Method, e.Kind, e.Err)
}

// Unwrap exposes ErrRPC, the kind and the underlying cause to errors.Is and errors.As.
func (e *RPCError) Unwrap() []error {
	errs := []error{ErrRPC, e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newRPCError(method string, kind, err error) *RPCError {
	return &RPCError{Method: method, Kind: kind, Err: err}
}

// nodeError classifies an error object returned by the node for method.
func nodeError(method string, rpcErr *btcjson.RPCError) *RPCError {
	kind := ErrNode
	switch rpcErr.Code {
	case btcjson.ErrRPCInvalidAddressOrKey:
		kind = ErrNotFound
	case btcjson.ErrRPCInvalidParameter:
		if method == methodGetBlockHash {
			kind = ErrNotFound
		}
	}
	return &RPCError{
		Method: method,
		Kind:   kind,
		Code:   rpcErr.Code,
		Err:    fmt.Errorf("[%d] %s", rpcErr.Code, rpcErr.Message),
	}
}
