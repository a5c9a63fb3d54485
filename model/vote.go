package model

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
)

var validate = validator.New()

// VoteChoice mirrors the Azorius VoteType enum.
type VoteChoice uint8

const (
	VoteNo      VoteChoice = 0
	VoteYes     VoteChoice = 1
	VoteAbstain VoteChoice = 2
)

func (c VoteChoice) String() string {
	switch c {
	case VoteNo:
		return "no"
	case VoteYes:
		return "yes"
	case VoteAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func ParseVoteChoice(s string) (VoteChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no", "0":
		return VoteNo, nil
	case "yes", "1":
		return VoteYes, nil
	case "abstain", "2":
		return VoteAbstain, nil
	}
	return 0, fmt.Errorf("invalid vote choice %q, expected yes, no or abstain", s)
}

// ProposalState mirrors Azorius.proposalState.
type ProposalState uint8

const (
	ProposalActive ProposalState = iota
	ProposalTimelocked
	ProposalExecutable
	ProposalExecuted
	ProposalExpired
	ProposalFailed
)

func (s ProposalState) String() string {
	switch s {
	case ProposalActive:
		return "active"
	case ProposalTimelocked:
		return "timelocked"
	case ProposalExecutable:
		return "executable"
	case ProposalExecuted:
		return "executed"
	case ProposalExpired:
		return "expired"
	case ProposalFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Proposal is the chain view of a proposal needed to decide eligibility.
type Proposal struct {
	ID         uint32
	State      ProposalState
	StartBlock uint64
	EndBlock   uint64
}

// NFTVote is one token counted by an NFT weighted strategy.
type NFTVote struct {
	TokenAddress common.Address `json:"token_address" validate:"required"`
	TokenID      *big.Int       `json:"token_id" validate:"required"`
}

// VoteIntent is one ballot submission. Tokens is only used by NFT weighted strategies.
type VoteIntent struct {
	ProposalID uint32         `json:"proposal_id"`
	Choice     VoteChoice     `json:"choice" validate:"lte=2"`
	Voter      common.Address `json:"voter" validate:"required"`
	Tokens     []NFTVote      `json:"tokens,omitempty" validate:"omitempty,dive"`
}

func (i *VoteIntent) Validate() error {
	return validate.Struct(i)
}

// Key identifies the (voter, proposal) pair. Only one attempt per key may be in flight.
func (i *VoteIntent) Key() string {
	return AttemptKey(i.Voter, i.ProposalID)
}

func AttemptKey(voter common.Address, proposalID uint32) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(voter.Hex()), proposalID)
}

type VotePath string

const (
	PathGasless  VotePath = "gasless"
	PathStandard VotePath = "standard"
)

type AttemptStatus string

const (
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// VoteAttempt is the journal record of one terminal pipeline run.
type VoteAttempt struct {
	ID         string         `json:"id"`
	Voter      common.Address `json:"voter"`
	ProposalID uint32         `json:"proposal_id"`
	Choice     VoteChoice     `json:"choice"`
	Path       VotePath       `json:"path"`
	Status     AttemptStatus  `json:"status"`

	Sender     *common.Address `json:"sender,omitempty"`
	UserOpHash string          `json:"user_op_hash,omitempty"`
	TxHash     string          `json:"tx_hash,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`

	FellBack bool `json:"fell_back,omitempty"`
	Degraded bool `json:"degraded,omitempty"`

	StartedAt   int64 `json:"started_at"`
	CompletedAt int64 `json:"completed_at"`
}

// NewVoteAttempt stamps a fresh ulid for intent.
func NewVoteAttempt(intent *VoteIntent, startedAt time.Time) *VoteAttempt {
	return &VoteAttempt{
		ID:         ulid.Make().String(),
		Voter:      intent.Voter,
		ProposalID: intent.ProposalID,
		Choice:     intent.Choice,
		StartedAt:  startedAt.UnixMilli(),
	}
}

func (a *VoteAttempt) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func (a *VoteAttempt) FromStorageData(body []byte) error {
	err := json.Unmarshal(body, a)

	return err
}
