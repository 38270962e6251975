package proc

import (
	"errors"
	"fmt"
)

// Standard errors returned by the process engine adapter.
var (
	// ErrDisposed indicates the engine was disposed.
	ErrDisposed = errors.New("engine disposed")

	// ErrExited indicates the analyzer process terminated.
	ErrExited = errors.New("analyzer process exited")

	// ErrRestartsExhausted indicates the analyzer crashed more times
	// than the restart budget allows.
	ErrRestartsExhausted = errors.New("analyzer restart attempts exhausted")
)

// RPCError is a JSON-RPC error returned by the analyzer process.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
