package pipeline

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/model"
)

// State is a step of one vote attempt.
type State string

const (
	StateIdle                   State = "IDLE"
	StateEligibilityChecked     State = "ELIGIBILITY_CHECKED"
	StateCostChecked            State = "COST_CHECKED"
	StateGaslessPath            State = "GASLESS_PATH"
	StateStandardPath           State = "STANDARD_PATH"
	StateSigned                 State = "SIGNED"
	StateSubmitted              State = "SUBMITTED"
	StateSucceeded              State = "SUCCEEDED"
	StateFailed                 State = "FAILED"
	StateNoSmartWallet          State = "NO_SMART_WALLET"
	StateWalletCreationRequired State = "WALLET_CREATION_REQUIRED"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Result describes how an attempt ended. Success on the gasless path means the
// bundler accepted the operation, not that it was included.
type Result struct {
	State State
	Path  model.VotePath

	Sender     common.Address
	UserOpHash string
	TxHash     common.Hash

	// FellBack is set when a paymaster deposit rejection re-issued the vote
	// on the standard path.
	FellBack bool
	// Degraded is set when the wallet deployment check failed and the
	// configured policy decided the route.
	Degraded bool

	Eligibility vote.Eligibility
	Verdict     sponsor.Verdict

	Transitions []State
	Err         error
}

func (r *Result) moveTo(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

func (r *Result) Succeeded() bool {
	return r.State == StateSucceeded
}
