package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/AvaProtocol/gasless-vote/core/chainio/signer"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/core/wallet"
	"github.com/AvaProtocol/gasless-vote/pkg/erc4337/bundler"
)

// Kind classifies a pipeline failure for the retry decision and for the user.
type Kind string

const (
	KindEligibility           Kind = "eligibility"
	KindSigner                Kind = "signer"
	KindPaymasterInsufficient Kind = "paymaster_insufficient"
	KindBundler               Kind = "bundler"
	KindChainRead             Kind = "chain_read"
	KindTimeout               Kind = "timeout"
	KindWalletCreation        Kind = "wallet_creation"
	KindTransaction           Kind = "transaction"
)

// Error is the structured failure of one stage.
type Error struct {
	Kind  Kind
	Stage State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, stage State, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Classify recovers the Kind of err. Errors that did not come out of the
// pipeline are classified by their sentinel or type.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}

	switch {
	case errors.Is(err, vote.ErrNotEligible):
		return KindEligibility
	case errors.Is(err, signer.ErrSignatureRejected):
		return KindSigner
	case errors.Is(err, wallet.ErrWalletCreationDeclined):
		return KindWalletCreation
	case errors.Is(err, bundler.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case bundler.IsPaymasterDepositError(err):
		return KindPaymasterInsufficient
	}

	var rpcErr *bundler.RPCError
	if errors.As(err, &rpcErr) {
		return KindBundler
	}
	return KindChainRead
}

// classifySubmit maps a bundler submission failure to its Kind.
func classifySubmit(err error) Kind {
	switch {
	case errors.Is(err, bundler.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case bundler.IsPaymasterDepositError(err):
		return KindPaymasterInsufficient
	default:
		return KindBundler
	}
}
