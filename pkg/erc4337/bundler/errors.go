package bundler

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrTimeout = errors.New("bundler did not answer in time")

// RPCError is the error member of a JSON-RPC 2.0 response.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("bundler rejected user operation (code %d): %s", e.Code, e.Message)
}

// paymasterDepositPattern matches bundler messages for a paymaster whose
// EntryPoint deposit cannot cover the operation: AA31 and the prose bundlers
// use for it. Other AA3x codes are paymaster validation failures.
var (
	paymasterDepositPattern = regexp.MustCompile(
		`(?i)(\bAA31\b|paymaster deposit (is )?too low|insufficient paymaster (deposit|balance|funds)|paymaster (deposit|balance) (is )?(too low|insufficient|not enough))`,
	)
	otherPaymasterCodePattern = regexp.MustCompile(`\bAA3[02-9]\b`)
	invalidNoncePattern       = regexp.MustCompile(`(?i)(\bAA25\b|invalid (account )?nonce)`)
)

// IsPaymasterDepositError reports whether err is a bundler rejection caused by
// the paymaster deposit being below what the operation requires.
func IsPaymasterDepositError(err error) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	if otherPaymasterCodePattern.MatchString(rpcErr.Message) {
		return false
	}
	return paymasterDepositPattern.MatchString(rpcErr.Message)
}

// IsInvalidNonceError reports whether the bundler rejected the operation nonce (AA25).
func IsInvalidNonceError(err error) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return invalidNoncePattern.MatchString(rpcErr.Message)
}
