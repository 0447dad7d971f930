// Package chain provides read-only access to the chain itself: a JSON-RPC
// client for multicall reads and a websocket watcher for new heads.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// RPCClient performs JSON-RPC 2.0 calls over HTTP.
type RPCClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	observe     func(seconds float64)
	requestID   atomic.Uint64
}

// RPCOption configures RPCClient.
type RPCOption func(*RPCClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) RPCOption {
	return func(c *RPCClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) RPCOption {
	return func(c *RPCClient) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) RPCOption {
	return func(c *RPCClient) {
		c.client = client
	}
}

// WithLatencyObserver reports the duration of each call attempt in seconds.
func WithLatencyObserver(observe func(seconds float64)) RPCOption {
	return func(c *RPCClient) {
		c.observe = observe
	}
}

// NewRPCClient creates a JSON-RPC client for the given endpoint.
func NewRPCClient(endpoint string, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *RPCClient) call(ctx context.Context, method string, params []any, result any) error {
	reqID := c.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		start := time.Now()
		lastErr = c.doCall(ctx, body, result)
		if c.observe != nil {
			c.observe(time.Since(start).Seconds())
		}
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("rpc call %s failed after %d attempts: %w", method, c.maxRetries+1, lastErr)
}

func (c *RPCClient) doCall(ctx context.Context, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// EthCall executes a read-only contract call against the latest block and
// returns the raw return data.
func (c *RPCClient) EthCall(ctx context.Context, to string, data []byte) ([]byte, error) {
	params := []any{
		map[string]string{"to": to, "data": hexPrefix(data)},
		"latest",
	}
	var out string
	if err := c.call(ctx, "eth_call", params, &out); err != nil {
		return nil, err
	}
	return parseHexBytes(out)
}
