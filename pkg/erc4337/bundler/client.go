// Provide primitive to work with a bundler RPC
// Bundler RPC is stateless
package bundler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-resty/resty/v2"

	"github.com/AvaProtocol/gasless-vote/pkg/eip1559"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/userop"
	"github.com/AvaProtocol/gasless-vote/pkg/logger"
)

const (
	methodSendUserOperation       = "eth_sendUserOperation"
	methodGetUserOperationReceipt = "eth_getUserOperationReceipt"

	DefaultTimeout = 30 * time.Second
)

// safePreview returns a truncated preview of s with ellipsis when longer than n
func safePreview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// BundlerClient submits signed user operations to an ERC-4337 bundler.
type BundlerClient struct {
	http    *resty.Client
	rpc     *rpc.Client
	url     string
	timeout time.Duration
	nextID  atomic.Uint64
	logger  logger.Logger
}

// NewBundlerClient creates a client for url. Every call is bounded by timeout
// (DefaultTimeout when zero).
func NewBundlerClient(url string, timeout time.Duration, lgr logger.Logger) (*BundlerClient, error) {
	if url == "" {
		return nil, fmt.Errorf("bundler url is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// DialHTTP is only used for read-side lookups; submission goes through resty
	// so we see the raw JSON-RPC envelope.
	c, err := rpc.DialHTTP(url)
	if err != nil {
		return nil, fmt.Errorf("Error creating bundler client: %w", err)
	}

	return &BundlerClient{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		rpc:     c,
		url:     url,
		timeout: timeout,
		logger:  logger.Component(lgr, "bundler"),
	}, nil
}

func (bc *BundlerClient) Close() {
	bc.rpc.Close()
}

// SendUserOperation issues eth_sendUserOperation with params [request, entrypoint].
// A nil error means the bundler accepted the operation into its mempool; it is
// not proof of inclusion.
func (bc *BundlerClient) SendUserOperation(
	ctx context.Context,
	op *userop.UserOperation,
	fees eip1559.Fees,
	entrypoint common.Address,
) (string, error) {
	req := NewUserOperationRequest(op, fees)

	bc.logger.Debug("sending user operation",
		"entrypoint", entrypoint.Hex(),
		"sender", req.Sender.Hex(),
		"nonce", req.Nonce,
		"callData", safePreview(req.CallData, 50),
		"paymaster", req.Paymaster,
	)

	raw, err := bc.call(ctx, methodSendUserOperation, req, entrypoint.Hex())
	if err != nil {
		return "", err
	}

	var userOpHash string
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &userOpHash); err != nil {
			return "", fmt.Errorf("failed to parse %s result: %w", methodSendUserOperation, err)
		}
	}
	if userOpHash == "" {
		bc.logger.Warn("bundler accepted user operation without returning a hash", "sender", req.Sender.Hex())
	}

	bc.logger.Info("user operation accepted by bundler", "sender", req.Sender.Hex(), "userOpHash", userOpHash)
	return userOpHash, nil
}

// GetUserOperationReceipt returns nil, nil while the operation is not yet included.
func (bc *BundlerClient) GetUserOperationReceipt(ctx context.Context, userOpHash string) (*UserOperationReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, bc.timeout)
	defer cancel()

	var receipt *UserOperationReceipt
	if err := bc.rpc.CallContext(ctx, &receipt, methodGetUserOperationReceipt, userOpHash); err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", methodGetUserOperationReceipt, ErrTimeout)
		}
		return nil, err
	}
	return receipt, nil
}

// WaitForReceipt polls until the operation is included or ctx ends.
func (bc *BundlerClient) WaitForReceipt(ctx context.Context, userOpHash string, interval time.Duration) (*UserOperationReceipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := bc.GetUserOperationReceipt(ctx, userOpHash)
		if err != nil {
			bc.logger.Warn("receipt lookup failed", "userOpHash", userOpHash, "error", err)
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (bc *BundlerClient) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, bc.timeout)
	defer cancel()

	body := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      bc.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	resp, err := bc.http.R().SetContext(ctx).SetBody(body).Post(bc.url)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s after %s: %w", method, bc.timeout, ErrTimeout)
		}
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}

	var envelope jsonRPCResponse
	if decodeErr := json.Unmarshal(resp.Body(), &envelope); decodeErr != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("%d %s: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()), safePreview(string(resp.Body()), 200))
		}
		return nil, fmt.Errorf("failed to parse JSON-RPC response: %w", decodeErr)
	}

	// Some bundlers answer 4xx with a well-formed JSON-RPC error; the envelope wins.
	if envelope.Error != nil {
		bc.logger.Warn("bundler returned JSON-RPC error", "method", method, "code", envelope.Error.Code, "message", envelope.Error.Message)
		return nil, envelope.Error
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%d %s: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()), safePreview(string(resp.Body()), 200))
	}

	return envelope.Result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
